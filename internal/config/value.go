package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Value is one typed field value. The concrete type is one of int64, float64,
// bool, string (free text or a closed enumeration code), or a slice of one of
// those for list-valued fields.
type Value any

type fieldType int

const (
	ftInt fieldType = iota
	ftFloat
	ftBool
	ftString
	ftEnum
)

// Closed enumeration codes observed in the model's configuration files.
var (
	enumWaterType = []string{"FRESH", "SALT"}
	enumGridShape = []string{"RECT", "TRAP"}
	enumHeatExch  = []string{"TERM", "ET"}
	enumIceCover  = []string{"ON", "ONWB", "OFF"}
	enumIceSolve  = []string{"SIMPLE", "DETAIL"}
	enumTransport = []string{"ULTIMATE", "QUICKEST", "UPWIND"}
	enumFriction  = []string{"MANN", "CHEZY"}
	enumEddyVisc  = []string{"NICK", "PARAB", "RNG", "W2", "W2N", "TKE", "TKE1"}
	enumImpExp    = []string{"IMP", "EXP"}
)

// aliases maps file-observed field names to their canonical documented names.
// Resolution is many-to-one and deterministic: every alias names exactly one
// canonical field.
var aliases = map[string]string{
	"longit":   "long",
	"elbot":    "ebot",
	"seddiag":  "sed_diag",
	"sed diag": "sed_diag",
	"habtatc":  "habitatc",
}

// canonicalName lower-cases, trims, and alias-resolves a raw field name.
func canonicalName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if canon, ok := aliases[n]; ok {
		return canon
	}
	return n
}

// parseBool coerces the boolean token set used by the configuration files.
// ON/OFF is the native pair; T/F and TRUE/FALSE appear in older decks.
func parseBool(raw string) (bool, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "ON", "T", "TRUE":
		return true, nil
	case "OFF", "F", "FALSE":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean token %q", raw)
}

func parseEnum(raw string, allowed []string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(raw))
	for _, a := range allowed {
		if code == a {
			return code, nil
		}
	}
	return "", fmt.Errorf("invalid code %q (expected one of %s)", raw, strings.Join(allowed, ", "))
}

// coerce converts a raw cell to the field's typed value.
func coerce(f fieldSpec, raw string) (Value, error) {
	switch f.typ {
	case ftInt:
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("field %s: invalid integer %q", f.name, raw)
		}
		return n, nil
	case ftFloat:
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("field %s: invalid number %q", f.name, raw)
		}
		return v, nil
	case ftBool:
		b, err := parseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.name, err)
		}
		return b, nil
	case ftEnum:
		code, err := parseEnum(raw, f.enum)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.name, err)
		}
		return code, nil
	default:
		return strings.TrimSpace(raw), nil
	}
}

// formatValue renders a typed value back to its file representation.
// Booleans always encode as the native ON/OFF pair regardless of the token
// they were decoded from.
func formatValue(v Value) string {
	switch x := v.(type) {
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		if x {
			return "ON"
		}
		return "OFF"
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}

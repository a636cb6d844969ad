package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hydrosuite/qualw2/internal/card"
)

// DecodeFile reads and decodes a main configuration file. The format is
// extension-gated: anything but .csv is rejected before the content is read.
func DecodeFile(path string) (*File, []card.Warning, error) {
	if filepath.Ext(path) != ".csv" {
		return nil, nil, fmt.Errorf("%s: configuration files must have a .csv extension", path)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read config: %w", err)
	}
	f, warns, err := Decode(splitLines(string(raw)))
	if err != nil {
		var pe *card.ParseError
		if errors.As(err, &pe) && pe.File == "" {
			pe.File = path
		}
		return nil, warns, err
	}
	return f, warns, nil
}

// Decode drives every section decoder in the catalog's fixed order over a
// shared line cursor, starting at the corrected Title offset. Any decoder
// failure aborts the whole decode: partial configurations are not valid.
func Decode(lines []string) (*File, []card.Warning, error) {
	start, err := card.FindTitle(lines)
	if err != nil {
		return nil, nil, err
	}

	f := &File{}
	var warns []card.Warning
	cursor := start
	for _, spec := range catalog {
		section, next, w, err := decodeSection(spec, lines, cursor, f)
		if err != nil {
			return nil, warns, err
		}
		warns = append(warns, w...)
		f.Sections = append(f.Sections, section)
		cursor = next
	}
	return f, warns, nil
}

func decodeSection(spec cardSpec, lines []string, i int, f *File) (Section, int, []card.Warning, error) {
	s := Section{Kind: spec.kind, Name: spec.name}

	switch spec.layout {
	case layoutTitle:
		// The Title card is free text: its heading line plus a fixed span of
		// raw lines, joined verbatim, then a blank separator.
		if i+titleSpan+1 >= len(lines) {
			return s, 0, nil, card.Errorf("", lines, i, "unexpected end of file in Title card")
		}
		f.titleHeading = lines[i]
		s.set("title", strings.Join(lines[i+1:i+1+titleSpan], "\n"))
		return s, i + titleSpan + 2, nil, nil

	case layoutPaired:
		pairs, next, err := card.DecodePaired("", lines, i)
		if err != nil {
			return s, 0, nil, err
		}
		var warns []card.Warning
		known := make(map[string]bool, len(spec.fields))
		for _, fs := range spec.fields {
			known[fs.name] = true
		}
		var extra []string
		resolved := make(map[string]string, len(pairs))
		for name, raw := range pairs {
			canon := canonicalName(name)
			if !known[canon] {
				extra = append(extra, name)
				continue
			}
			resolved[canon] = raw
		}
		if len(extra) > 0 {
			sort.Strings(extra)
			warns = append(warns, card.Warning{
				Line:    i + 1,
				Section: spec.name,
				Message: "unrecognized fields ignored",
				Keys:    extra,
			})
		}
		for _, fs := range spec.fields {
			raw, ok := resolved[fs.name]
			if !ok {
				warns = append(warns, card.Warning{
					Line:    i + 1,
					Section: spec.name,
					Message: "declared field missing from card",
					Keys:    []string{fs.name},
				})
				continue
			}
			v, err := coerce(fs, raw)
			if err != nil {
				return s, 0, warns, card.Errorf("", lines, i+1, "%s: %v", spec.name, err)
			}
			s.set(fs.name, v)
		}
		return s, next, warns, nil

	case layoutValueList:
		// Header line, then one line of values read until the first empty cell.
		if i+1 >= len(lines) {
			return s, 0, nil, card.Errorf("", lines, i, "unexpected end of file in %s card", spec.name)
		}
		fs := spec.fields[0]
		var values []Value
		for _, cell := range card.SplitFields(lines[i+1]) {
			if cell == "" {
				break
			}
			v, err := coerce(fs, cell)
			if err != nil {
				return s, 0, nil, card.Errorf("", lines, i+1, "%s: %v", spec.name, err)
			}
			values = append(values, v)
		}
		s.set(fs.name, toTypedList(fs, values))
		return s, i + 3, nil, nil

	case layoutFlagLines:
		// Header line, then one line per field with the value in the first cell.
		if i+len(spec.fields) >= len(lines) {
			return s, 0, nil, card.Errorf("", lines, i, "unexpected end of file in %s card", spec.name)
		}
		for j, fs := range spec.fields {
			cells := card.SplitFields(lines[i+1+j])
			if len(cells) == 0 || cells[0] == "" {
				return s, 0, nil, card.Errorf("", lines, i+1+j, "%s: missing value for %s", spec.name, fs.name)
			}
			v, err := coerce(fs, cells[0])
			if err != nil {
				return s, 0, nil, card.Errorf("", lines, i+1+j, "%s: %v", spec.name, err)
			}
			s.set(fs.name, v)
		}
		return s, i + len(spec.fields) + 2, nil, nil

	case layoutRows:
		cols, next, warns, err := card.DecodeRows("", lines, i, spec.name, spec.fieldNames())
		if err != nil {
			return s, 0, warns, err
		}
		for _, fs := range spec.fields {
			raws := cols[fs.name]
			values := make([]Value, 0, len(raws))
			for r, raw := range raws {
				v, err := coerce(fs, raw)
				if err != nil {
					return s, 0, warns, card.Errorf("", lines, i+1+r, "%s: %v", spec.name, err)
				}
				values = append(values, v)
			}
			s.set(fs.name, toTypedList(fs, values))
		}
		return s, next, warns, nil
	}

	return s, 0, nil, fmt.Errorf("unhandled layout for %s", spec.name)
}

// toTypedList narrows a []Value to the concrete slice type of the field so
// callers get []int64, []float64, []bool, or []string back from Lookup.
func toTypedList(fs fieldSpec, values []Value) Value {
	switch fs.typ {
	case ftInt:
		out := make([]int64, len(values))
		for i, v := range values {
			out[i] = v.(int64)
		}
		return out
	case ftFloat:
		out := make([]float64, len(values))
		for i, v := range values {
			out[i] = v.(float64)
		}
		return out
	case ftBool:
		out := make([]bool, len(values))
		for i, v := range values {
			out[i] = v.(bool)
		}
		return out
	default:
		out := make([]string, len(values))
		for i, v := range values {
			out[i] = v.(string)
		}
		return out
	}
}

// Package config decodes and re-encodes the model's main configuration file:
// a single wide, comma-separated file carrying a fixed ordered sequence of
// heterogeneous cards. Decoding produces typed sections; encoding reconstructs
// a file the decoder reads back to the same field values.
package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrFieldNotFound is returned by Lookup when no section defines the field.
var ErrFieldNotFound = errors.New("field not found")

// Section is one decoded card: a tagged variant over the closed set of card
// kinds, owning an ordered mapping from canonical field name to typed value.
type Section struct {
	Kind Kind
	Name string

	order  []string
	values map[string]Value
}

// Field returns the typed value of a field, resolving aliases and case.
func (s *Section) Field(name string) (Value, bool) {
	v, ok := s.values[canonicalName(name)]
	return v, ok
}

// FieldNames returns the section's field names in declared order.
func (s *Section) FieldNames() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

func (s *Section) set(name string, v Value) {
	if s.values == nil {
		s.values = make(map[string]Value)
	}
	if _, exists := s.values[name]; !exists {
		s.order = append(s.order, name)
	}
	s.values[name] = v
}

// File is a decoded main configuration file: the ordered list of its sections.
type File struct {
	Sections []Section

	// titleHeading preserves the raw heading line of the Title card so that
	// encode can re-emit it unchanged.
	titleHeading string
}

// Section returns the section of the given kind, or nil if absent.
func (f *File) Section(kind Kind) *Section {
	for i := range f.Sections {
		if f.Sections[i].Kind == kind {
			return &f.Sections[i]
		}
	}
	return nil
}

// Lookup scans the sections in declared order and returns the first field
// matching name. Matching is case-insensitive and alias-resolved, so callers
// can read any named option without knowing which card owns it.
func (f *File) Lookup(name string) (Value, error) {
	canon := canonicalName(name)
	for i := range f.Sections {
		if v, ok := f.Sections[i].values[canon]; ok {
			return v, nil
		}
	}
	return nil, fmt.Errorf("%q: %w", name, ErrFieldNotFound)
}

// LookupFloat is Lookup narrowed to scalar numeric fields; integer-typed
// fields are widened.
func (f *File) LookupFloat(name string) (float64, error) {
	v, err := f.Lookup(name)
	if err != nil {
		return 0, err
	}
	switch x := v.(type) {
	case float64:
		return x, nil
	case int64:
		return float64(x), nil
	}
	return 0, fmt.Errorf("field %q is not numeric", name)
}

// LookupInt is Lookup narrowed to scalar integer fields.
func (f *File) LookupInt(name string) (int64, error) {
	v, err := f.Lookup(name)
	if err != nil {
		return 0, err
	}
	n, ok := v.(int64)
	if !ok {
		return 0, fmt.Errorf("field %q is not an integer", name)
	}
	return n, nil
}

// Title returns the free-text title block.
func (f *File) Title() string {
	v, err := f.Lookup("title")
	if err != nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

// splitLines splits raw file contents into lines, tolerating CRLF endings.
func splitLines(raw string) []string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	lines := strings.Split(raw, "\n")
	// A trailing newline yields one empty trailing element; keep it out of the
	// line list so cursor arithmetic matches the decoders' expectations.
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}

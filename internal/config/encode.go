package config

import (
	"fmt"
	"strings"
)

// lineCells is the fixed column count lines are padded to with trailing
// commas, matching the format's fixed-width comma convention.
const lineCells = 10

// padLine joins cells with commas and pads the line with trailing commas up
// to the fixed column count.
func padLine(cells []string) string {
	n := len(cells)
	if n < lineCells {
		padded := make([]string, lineCells)
		copy(padded, cells)
		cells = padded
	}
	return strings.Join(cells, ",")
}

// Encode reconstructs the configuration file: every section re-emits its own
// card exactly as the decoder expects to re-read it, including the trailing
// blank separator lines. decode(Encode(f)) reproduces f field-for-field.
func (f *File) Encode() ([]string, error) {
	var out []string
	for si := range f.Sections {
		s := &f.Sections[si]
		spec, err := specFor(s.Kind)
		if err != nil {
			return nil, err
		}
		lines, err := encodeSection(f, s, spec)
		if err != nil {
			return nil, err
		}
		out = append(out, lines...)
	}
	return out, nil
}

// Bytes renders the encoded file as raw file contents.
func (f *File) Bytes() ([]byte, error) {
	lines, err := f.Encode()
	if err != nil {
		return nil, err
	}
	return []byte(strings.Join(lines, "\n") + "\n"), nil
}

func specFor(kind Kind) (cardSpec, error) {
	for _, spec := range catalog {
		if spec.kind == kind {
			return spec, nil
		}
	}
	return cardSpec{}, fmt.Errorf("unknown card kind %d", kind)
}

func encodeSection(f *File, s *Section, spec cardSpec) ([]string, error) {
	switch spec.layout {
	case layoutTitle:
		heading := f.titleHeading
		if heading == "" {
			heading = "Title"
		}
		lines := []string{heading}
		text, _ := s.Field("title")
		title, _ := text.(string)
		body := strings.Split(title, "\n")
		if len(body) > titleSpan {
			return nil, fmt.Errorf("%s: title text spans %d lines, at most %d fit",
				spec.name, len(body), titleSpan)
		}
		for len(body) < titleSpan {
			body = append(body, "")
		}
		return append(append(lines, body...), ""), nil

	case layoutPaired:
		names := make([]string, 0, len(spec.fields))
		values := make([]string, 0, len(spec.fields))
		for _, fs := range spec.fields {
			v, ok := s.Field(fs.name)
			if !ok {
				continue
			}
			names = append(names, strings.ToUpper(fs.name))
			values = append(values, formatValue(v))
		}
		return []string{padLine(names), padLine(values), ""}, nil

	case layoutValueList:
		fs := spec.fields[0]
		header := padLine([]string{strings.ToUpper(fs.name)})
		v, _ := s.Field(fs.name)
		cells, err := listCells(fs.name, v)
		if err != nil {
			return nil, err
		}
		return []string{header, padLine(cells), ""}, nil

	case layoutFlagLines:
		names := make([]string, len(spec.fields))
		for i, fs := range spec.fields {
			names[i] = strings.ToUpper(fs.name)
		}
		lines := []string{padLine([]string{strings.Join(names, "/")})}
		for _, fs := range spec.fields {
			v, ok := s.Field(fs.name)
			if !ok {
				return nil, fmt.Errorf("%s: field %s has no value", spec.name, fs.name)
			}
			lines = append(lines, padLine([]string{formatValue(v)}))
		}
		return append(lines, ""), nil

	case layoutRows:
		names := make([]string, len(spec.fields))
		cols := make([][]string, len(spec.fields))
		rows := 0
		for i, fs := range spec.fields {
			names[i] = strings.ToUpper(fs.name)
			v, ok := s.Field(fs.name)
			if !ok {
				return nil, fmt.Errorf("%s: field %s has no value", spec.name, fs.name)
			}
			cells, err := listCells(fs.name, v)
			if err != nil {
				return nil, err
			}
			cols[i] = cells
			if i == 0 {
				rows = len(cells)
			} else if len(cells) != rows {
				return nil, fmt.Errorf("%s: field %s has %d rows, expected %d",
					spec.name, fs.name, len(cells), rows)
			}
		}
		lines := []string{padLine(names)}
		for r := 0; r < rows; r++ {
			row := make([]string, len(cols))
			for c := range cols {
				row[c] = cols[c][r]
			}
			lines = append(lines, padLine(row))
		}
		return append(lines, ""), nil
	}

	return nil, fmt.Errorf("unhandled layout for %s", spec.name)
}

// listCells renders a list-valued field back to its cells.
func listCells(name string, v Value) ([]string, error) {
	switch xs := v.(type) {
	case []int64:
		out := make([]string, len(xs))
		for i, x := range xs {
			out[i] = formatValue(x)
		}
		return out, nil
	case []float64:
		out := make([]string, len(xs))
		for i, x := range xs {
			out[i] = formatValue(x)
		}
		return out, nil
	case []bool:
		out := make([]string, len(xs))
		for i, x := range xs {
			out[i] = formatValue(x)
		}
		return out, nil
	case []string:
		out := make([]string, len(xs))
		copy(out, xs)
		return out, nil
	}
	return nil, fmt.Errorf("field %s is not list-valued", name)
}

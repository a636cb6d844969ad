// Package profile decodes and re-encodes the model's layer-dependent
// initial-condition file: named blocks of per-layer values (temperature,
// total dissolved solids, dissolved oxygen) wrapped nine to a line.
package profile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/hydrosuite/qualw2/internal/card"
)

// valuesPerLine is the fixed wrap width of a data block.
const valuesPerLine = 9

// cellWidth is the fixed column width values and block codes are right-
// aligned to.
const cellWidth = 8

// headerRe matches the first line naming the source profile the file was
// generated from.
var headerRe = regexp.MustCompile(`^Profile file: (\S+)\s*$`)

// Quantity is one named block of layer-dependent values, flattened into a
// single ordered sequence regardless of its row-wrapping in the source.
type Quantity struct {
	Name   string
	Values []float64
}

// File is a decoded profile file.
type File struct {
	// Source is the profile filename named in the header line, empty when
	// the header did not match (a recoverable condition, not an error).
	Source string

	// Comment is the second line, kept verbatim.
	Comment string

	Quantities []Quantity
}

// Quantity returns the named quantity, matching case-insensitively.
func (f *File) Quantity(name string) (*Quantity, bool) {
	for i := range f.Quantities {
		if strings.EqualFold(f.Quantities[i].Name, name) {
			return &f.Quantities[i], true
		}
	}
	return nil, false
}

// blockCode maps a quantity name to the short code repeated across its block
// header. The mapping is closed: quantities the model does not know are a
// hard error at encode time.
func blockCode(name string) (string, error) {
	n := strings.ToLower(name)
	switch {
	case strings.HasPrefix(n, "temp"):
		return "T1", nil
	case strings.HasPrefix(n, "tds"):
		return "C1", nil
	case strings.HasPrefix(n, "do"):
		return "C2", nil
	}
	return "", fmt.Errorf("no block code for quantity %q", name)
}

// DecodeFile reads and decodes a profile file. The format is extension-gated:
// anything but .npt is rejected before the content is read.
func DecodeFile(path string) (*File, []card.Warning, error) {
	if filepath.Ext(path) != ".npt" {
		return nil, nil, fmt.Errorf("%s: profile files must have a .npt extension", path)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read profile: %w", err)
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

// Decode parses a profile file: the source-name header, the verbatim comment
// line, then the sequence of named data blocks separated by blank lines.
func Decode(lines []string) (*File, []card.Warning, error) {
	if len(lines) < 2 {
		return nil, nil, card.Errorf("", lines, 0, "profile file too short: no data blocks")
	}

	f := &File{}
	var warns []card.Warning

	if m := headerRe.FindStringSubmatch(lines[0]); m != nil {
		f.Source = m[1]
	} else {
		warns = append(warns, card.Warning{
			Line:    1,
			Section: "Profile",
			Message: "cannot determine the source profile filename from the header line",
		})
	}
	f.Comment = strings.TrimSpace(lines[1])

	i := 2
	for i < len(lines) {
		if strings.TrimSpace(lines[i]) == "" {
			i++
			continue
		}
		q, next, err := decodeBlock(lines, i)
		if err != nil {
			return nil, warns, err
		}
		f.Quantities = append(f.Quantities, q)
		i = next
	}

	// Quantities in one file share a layer count; a mismatch is a
	// data-quality anomaly, not a structural failure.
	if len(f.Quantities) > 1 {
		n := len(f.Quantities[0].Values)
		for _, q := range f.Quantities[1:] {
			if len(q.Values) != n {
				warns = append(warns, card.Warning{
					Section: "Profile",
					Message: fmt.Sprintf("quantity %s has %d layers, %s has %d",
						q.Name, len(q.Values), f.Quantities[0].Name, n),
				})
			}
		}
	}

	return f, warns, nil
}

// decodeBlock parses one named block starting at lines[i]. The header line's
// whitespace-split tokens end with the block's short code repeated once per
// value column; the name is recovered by scanning backward for the first
// token that differs from that trailing code, which tolerates names with
// embedded spaces.
func decodeBlock(lines []string, i int) (Quantity, int, error) {
	tokens := strings.Fields(lines[i])
	if len(tokens) < 2 {
		return Quantity{}, 0, card.Errorf("", lines, i, "cannot extract a block name from profile header")
	}

	code := tokens[len(tokens)-1]
	name := ""
	for j := len(tokens) - 2; j >= 0; j-- {
		if tokens[j] != code {
			name = strings.Join(tokens[:j+1], " ")
			break
		}
	}
	if name == "" {
		return Quantity{}, 0, card.Errorf("", lines, i, "cannot extract a block name from profile header")
	}

	q := Quantity{Name: name}
	i++
	for i < len(lines) {
		if strings.TrimSpace(lines[i]) == "" {
			i++ // blank line ends the block
			break
		}
		for _, tok := range strings.Fields(lines[i]) {
			v, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				return Quantity{}, 0, card.Errorf("", lines, i, "block %s: invalid value %q", name, tok)
			}
			q.Values = append(q.Values, v)
		}
		i++
	}
	return q, i, nil
}

// Encode re-emits the profile file: header, comment, and each quantity's
// values re-wrapped nine per line in fixed-width columns, with a single blank
// line between blocks.
func (f *File) Encode() ([]string, error) {
	out := []string{"Profile file: " + f.Source, f.Comment}

	for qi, q := range f.Quantities {
		code, err := blockCode(q.Name)
		if err != nil {
			return nil, err
		}
		if qi > 0 {
			out = append(out, "")
		}

		var header strings.Builder
		fmt.Fprintf(&header, "%-*s", cellWidth, q.Name)
		for c := 0; c < valuesPerLine; c++ {
			fmt.Fprintf(&header, "%*s", cellWidth, code)
		}
		out = append(out, header.String())

		for start := 0; start < len(q.Values); start += valuesPerLine {
			end := start + valuesPerLine
			if end > len(q.Values) {
				end = len(q.Values)
			}
			var row strings.Builder
			for _, v := range q.Values[start:end] {
				fmt.Fprintf(&row, "%*s", cellWidth, strconv.FormatFloat(v, 'f', -1, 64))
			}
			out = append(out, row.String())
		}
	}

	return out, nil
}

// WriteFile encodes and writes the profile file, refusing non-.npt names.
func (f *File) WriteFile(path string) error {
	if filepath.Ext(path) != ".npt" {
		return fmt.Errorf("%s: profile files must have a .npt extension", path)
	}
	lines, err := f.Encode()
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644)
}

func splitLines(raw string) []string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	lines := strings.Split(raw, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}

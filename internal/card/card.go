// Package card owns the low-level line grammar shared by every section of the
// model's main configuration file: comma-delimited fields, trailing padding
// commas, and the two decoding primitives (paired header/value cards and
// row-tabulated cards) that the section decoders build on.
package card

import (
	"fmt"
	"strings"
)

// contextRadius is how many lines of surrounding context a ParseError carries.
const contextRadius = 10

// Warning is a recoverable anomaly noticed during a parse. Parsing continues
// with best-effort data; callers decide whether to surface it.
type Warning struct {
	Line    int      // 1-based line number in the source, 0 if unknown
	Section string   // destination section, if known
	Message string
	Keys    []string // offending field names, if any
}

func (w Warning) String() string {
	var b strings.Builder
	if w.Line > 0 {
		fmt.Fprintf(&b, "line %d: ", w.Line)
	}
	if w.Section != "" {
		fmt.Fprintf(&b, "[%s] ", w.Section)
	}
	b.WriteString(w.Message)
	if len(w.Keys) > 0 {
		fmt.Fprintf(&b, ": %s", strings.Join(w.Keys, ", "))
	}
	return b.String()
}

// ParseError is a structural failure that aborts the whole decode. It carries
// enough context to locate the problem in the original fixed-format file.
type ParseError struct {
	File    string // source file name, may be empty
	Line    int    // 1-based
	Message string
	Context string // snippet of surrounding lines
}

func (e *ParseError) Error() string {
	name := e.File
	if name == "" {
		name = "<input>"
	}
	return fmt.Sprintf("%s:%d: %s", name, e.Line, e.Message)
}

// Errorf builds a ParseError for the line at idx, capturing a snippet of the
// surrounding lines for diagnostics.
func Errorf(file string, lines []string, idx int, format string, args ...any) *ParseError {
	return &ParseError{
		File:    file,
		Line:    idx + 1,
		Message: fmt.Sprintf(format, args...),
		Context: snippet(lines, idx),
	}
}

func snippet(lines []string, idx int) string {
	lo := idx - contextRadius
	if lo < 0 {
		lo = 0
	}
	hi := idx + contextRadius + 1
	if hi > len(lines) {
		hi = len(lines)
	}
	var b strings.Builder
	for i := lo; i < hi; i++ {
		marker := "  "
		if i == idx {
			marker = "> "
		}
		fmt.Fprintf(&b, "%s%4d | %s\n", marker, i+1, lines[i])
	}
	return b.String()
}

// SplitFields splits a comma-delimited line into trimmed cells, dropping the
// trailing empty cells produced by the format's fixed-width comma padding.
// Interior empty cells are kept: they mark the end of data for the paired
// decoder.
func SplitFields(line string) []string {
	cells := strings.Split(line, ",")
	for i := range cells {
		cells[i] = strings.TrimSpace(cells[i])
	}
	for len(cells) > 0 && cells[len(cells)-1] == "" {
		cells = cells[:len(cells)-1]
	}
	return cells
}

// FindTitle locates the Title card, skipping any undocumented header lines
// that precede it, and returns the corrected starting index.
func FindTitle(lines []string) (int, error) {
	for i, line := range lines {
		if strings.HasPrefix(line, "Title") {
			return i, nil
		}
	}
	return 0, Errorf("", lines, 0, "no Title card found")
}

// DecodePaired decodes a two-line name/value card: a header of field names at
// lines[i] and the matching values at lines[i+1]. Names and values are zipped
// positionally, stopping at the first position where either side is empty.
// Names are lower-cased and trimmed. The returned index skips the header, the
// value line, and the blank separator line.
//
// Pairing is strict: after trailing padding is dropped, a column-count
// mismatch between the two lines is a ParseError.
func DecodePaired(file string, lines []string, i int) (map[string]string, int, error) {
	if i+1 >= len(lines) {
		return nil, 0, Errorf(file, lines, i, "unexpected end of file in name/value card")
	}
	names := SplitFields(lines[i])
	values := SplitFields(lines[i+1])
	if len(names) != len(values) {
		return nil, 0, Errorf(file, lines, i+1,
			"field/value count mismatch: %d names vs %d values", len(names), len(values))
	}
	pairs := make(map[string]string, len(names))
	for j := range names {
		if names[j] == "" || values[j] == "" {
			break
		}
		pairs[strings.ToLower(names[j])] = values[j]
	}
	return pairs, i + 3, nil
}

// DecodeRows decodes a row-tabulated card: a header at lines[i] followed by
// one comma-delimited line per configuration unit (branch, waterbody,
// structure). The destination's declared field list, not the header, names
// the columns. Reading stops at the first line whose first cell is empty;
// zero data rows is valid. A row carrying more values than declared fields
// keeps the declared columns, drops the extras, and records a warning. The
// returned index skips the header, the rows, and the terminating blank line.
func DecodeRows(file string, lines []string, i int, section string, fields []string) (map[string][]string, int, []Warning, error) {
	cols := make(map[string][]string, len(fields))
	for _, f := range fields {
		cols[f] = nil
	}
	var warns []Warning

	row := i + 1
	for row < len(lines) {
		cells := SplitFields(lines[row])
		if len(cells) == 0 || cells[0] == "" {
			break
		}
		if len(cells) > len(fields) {
			warns = append(warns, Warning{
				Line:    row + 1,
				Section: section,
				Message: fmt.Sprintf("row has %d values for %d declared fields; extras dropped", len(cells), len(fields)),
				Keys:    cells[len(fields):],
			})
			cells = cells[:len(fields)]
		}
		if len(cells) < len(fields) {
			return nil, 0, warns, Errorf(file, lines, row,
				"row has %d values for %d declared fields", len(cells), len(fields))
		}
		for j, f := range fields {
			cols[f] = append(cols[f], cells[j])
		}
		row++
	}

	consumed := row - (i + 1)
	return cols, i + consumed + 2, warns, nil
}

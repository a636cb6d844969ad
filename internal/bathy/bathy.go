// Package bathy decodes and re-encodes the model's bathymetry file: the
// per-segment geometry metadata and the layer-by-segment width matrix.
package bathy

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hydrosuite/qualw2/internal/card"
)

// commentSentinel marks the optional leading comment line.
const commentSentinel = '$'

// metadataRows is the fixed number of lines in the transposed segment block:
// a header of segment labels followed by the length, elevation, orientation,
// and friction rows.
const metadataRows = 5

// Display names for the segment metadata columns. Ingest adds human-readable
// units to three of them; encode strips the same suffixes before re-emitting
// the raw row labels.
var segmentColumns = []string{"DLX [m]", "ELWS [m]", "PHI0 [rad]", "FRIC"}

// rawLabel reverses the cosmetic unit suffixing applied on ingest.
func rawLabel(display string) string {
	if i := strings.Index(display, " ["); i >= 0 {
		return display[:i]
	}
	return display
}

// Segment is one model segment's metadata row.
type Segment struct {
	Length      float64 // DLX [m]
	SurfaceElev float64 // ELWS [m]
	Orientation float64 // PHI0 [rad]
	Friction    float64 // FRIC
}

// File is a decoded bathymetry file.
type File struct {
	// Comment is the raw leading comment line (sentinel included), empty if
	// the file carries none.
	Comment string

	// Labels are the segment identifiers from the metadata block's header row.
	Labels []string

	// corner is the header row's first cell: empty in files observed in the
	// wild, "Seg" according to the manual. Preserved for re-encoding.
	corner string

	Segments []Segment

	// Ignored is the titles line the model itself ignores, kept verbatim as
	// its token list so encode can reproduce it.
	Ignored []string

	// The layer-by-segment matrix: one row per layer.
	LayerHeights []float64   // first matrix column [m]
	Widths       [][]float64 // [layer][segment] widths [m]
	LayerIndex   []int64     // trailing layer-index column
}

// Layers returns the declared layer count of the matrix block.
func (f *File) Layers() int { return len(f.Widths) }

// SegmentCount returns the number of segments in the metadata block.
func (f *File) SegmentCount() int { return len(f.Segments) }

// Columns returns the display names of the segment metadata columns.
func Columns() []string {
	out := make([]string, len(segmentColumns))
	copy(out, segmentColumns)
	return out
}

// DecodeFile reads and decodes a bathymetry file. The format is
// extension-gated: anything but .csv is rejected before the content is read.
func DecodeFile(path string) (*File, error) {
	if filepath.Ext(path) != ".csv" {
		return nil, fmt.Errorf("%s: bathymetry files must have a .csv extension", path)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bathymetry: %w", err)
	}
	f, err := Decode(splitLines(string(raw)))
	if err != nil {
		var pe *card.ParseError
		if errors.As(err, &pe) && pe.File == "" {
			pe.File = path
		}
		return nil, err
	}
	return f, nil
}

// Decode parses the bathymetry line structure: the comment slot, the
// transposed segment metadata block, the ignored titles line, and the matrix
// block running to end of file.
func Decode(lines []string) (*File, error) {
	if len(lines) < metadataRows+2 {
		return nil, card.Errorf("", lines, 0, "bathymetry file too short: %d lines", len(lines))
	}

	f := &File{}

	// Line 0 is the comment slot; the sentinel marks an actual comment.
	if len(lines[0]) > 0 && lines[0][0] == commentSentinel {
		f.Comment = lines[0]
	}

	// Lines 1..5: segment labels then one row per metadata column, each row
	// carrying its label in the first cell and one value per segment. The
	// header's corner cell labels the row axis ("Seg" per the manual) but is
	// empty in files observed in the wild.
	header := card.SplitFields(lines[1])
	if len(header) > 0 {
		f.corner = header[0]
		f.Labels = header[1:]
	}

	rows := make([][]float64, metadataRows-1)
	for r := 0; r < metadataRows-1; r++ {
		idx := 2 + r
		cells := card.SplitFields(lines[idx])
		if len(cells) < 2 {
			return nil, card.Errorf("", lines, idx, "segment metadata row %s is empty", rawLabel(segmentColumns[r]))
		}
		want := rawLabel(segmentColumns[r])
		if !strings.EqualFold(cells[0], want) {
			return nil, card.Errorf("", lines, idx, "expected segment metadata row %s, found %q", want, cells[0])
		}
		vals, err := parseFloats(cells[1:])
		if err != nil {
			return nil, card.Errorf("", lines, idx, "segment metadata row %s: %v", want, err)
		}
		rows[r] = vals
	}
	nseg := len(rows[0])
	for r, vals := range rows {
		if len(vals) != nseg {
			return nil, card.Errorf("", lines, 2+r, "segment metadata row %s has %d values, expected %d",
				rawLabel(segmentColumns[r]), len(vals), nseg)
		}
	}

	// Transpose the metadata rows into one record per segment.
	f.Segments = make([]Segment, nseg)
	for j := 0; j < nseg; j++ {
		f.Segments[j] = Segment{
			Length:      rows[0][j],
			SurfaceElev: rows[1][j],
			Orientation: rows[2][j],
			Friction:    rows[3][j],
		}
	}

	// Line 6: titles the model ignores.
	f.Ignored = card.SplitFields(lines[6])

	// Lines 7..EOF: the matrix block. Each row ends with a layer index and a
	// spurious empty cell from delimiter padding, which SplitFields drops.
	for idx := 7; idx < len(lines); idx++ {
		if strings.TrimSpace(lines[idx]) == "" {
			continue
		}
		cells := card.SplitFields(lines[idx])
		if len(cells) != nseg+2 {
			return nil, card.Errorf("", lines, idx, "matrix row has %d columns, expected %d", len(cells), nseg+2)
		}
		h, err := strconv.ParseFloat(cells[0], 64)
		if err != nil {
			return nil, card.Errorf("", lines, idx, "layer height: %v", err)
		}
		widths, err := parseFloats(cells[1 : nseg+1])
		if err != nil {
			return nil, card.Errorf("", lines, idx, "segment widths: %v", err)
		}
		k, err := strconv.ParseInt(cells[nseg+1], 10, 64)
		if err != nil {
			return nil, card.Errorf("", lines, idx, "layer index: %v", err)
		}
		f.LayerHeights = append(f.LayerHeights, h)
		f.Widths = append(f.Widths, widths)
		f.LayerIndex = append(f.LayerIndex, k)
	}

	return f, nil
}

// Encode re-emits the bathymetry file: comment, re-transposed segment
// metadata with raw (unit-stripped) row labels, the ignored titles line, and
// the matrix block with its trailing padding cell, in that exact order.
func (f *File) Encode() []string {
	var out []string
	if f.Comment != "" {
		out = append(out, f.Comment)
	} else {
		out = append(out, "")
	}

	header := append([]string{f.corner}, f.Labels...)
	out = append(out, strings.Join(header, ","))

	rows := [][]float64{
		segmentValues(f.Segments, func(s Segment) float64 { return s.Length }),
		segmentValues(f.Segments, func(s Segment) float64 { return s.SurfaceElev }),
		segmentValues(f.Segments, func(s Segment) float64 { return s.Orientation }),
		segmentValues(f.Segments, func(s Segment) float64 { return s.Friction }),
	}
	for r, vals := range rows {
		cells := make([]string, 0, len(vals)+1)
		cells = append(cells, rawLabel(segmentColumns[r]))
		for _, v := range vals {
			cells = append(cells, formatFloat(v))
		}
		out = append(out, strings.Join(cells, ","))
	}

	out = append(out, strings.Join(f.Ignored, ","))

	for r := range f.Widths {
		cells := make([]string, 0, len(f.Widths[r])+3)
		cells = append(cells, formatFloat(f.LayerHeights[r]))
		for _, w := range f.Widths[r] {
			cells = append(cells, formatFloat(w))
		}
		cells = append(cells, strconv.FormatInt(f.LayerIndex[r], 10))
		cells = append(cells, "") // the format's trailing delimiter padding
		out = append(out, strings.Join(cells, ","))
	}

	return out
}

// WriteFile encodes and writes the bathymetry file, refusing non-.csv names.
func (f *File) WriteFile(path string) error {
	if filepath.Ext(path) != ".csv" {
		return fmt.Errorf("%s: bathymetry files must have a .csv extension", path)
	}
	content := strings.Join(f.Encode(), "\n") + "\n"
	return os.WriteFile(path, []byte(content), 0o644)
}

func segmentValues(segments []Segment, get func(Segment) float64) []float64 {
	out := make([]float64, len(segments))
	for i, s := range segments {
		out[i] = get(s)
	}
	return out
}

func parseFloats(cells []string) ([]float64, error) {
	out := make([]float64, len(cells))
	for i, c := range cells {
		v, err := strconv.ParseFloat(c, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", c)
		}
		out[i] = v
	}
	return out, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func splitLines(raw string) []string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	lines := strings.Split(raw, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}

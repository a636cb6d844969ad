package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// TimeWindow is the fast-edit view of a configuration file: it holds the raw
// file text plus the index of the one line carrying the start-time, end-time,
// and base-year values. Get and set touch only that tracked line; the rest of
// the file is never parsed or re-derived, so every other line stays
// byte-identical across an edit.
type TimeWindow struct {
	path    string
	lines   []string
	tracked int  // index of the value line under the time-control header
	crlf    bool // original line endings
	finalNL bool // original file ended with a newline
}

// OpenTimeWindow loads a configuration file and locates its time-control line.
func OpenTimeWindow(path string) (*TimeWindow, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	w, err := NewTimeWindow(string(raw))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	w.path = path
	return w, nil
}

// NewTimeWindow builds a TimeWindow from a file's full contents.
func NewTimeWindow(raw string) (*TimeWindow, error) {
	crlf := strings.Contains(raw, "\r\n")
	if crlf {
		raw = strings.ReplaceAll(raw, "\r\n", "\n")
	}
	finalNL := strings.HasSuffix(raw, "\n")
	if finalNL {
		raw = strings.TrimSuffix(raw, "\n")
	}
	lines := strings.Split(raw, "\n")

	tracked := -1
	for i, line := range lines {
		first := line
		if j := strings.IndexByte(line, ','); j >= 0 {
			first = line[:j]
		}
		if strings.EqualFold(strings.TrimSpace(first), "tmstrt") {
			tracked = i + 1
			break
		}
	}
	if tracked < 0 || tracked >= len(lines) {
		return nil, fmt.Errorf("no time-control line found")
	}
	return &TimeWindow{lines: lines, tracked: tracked, crlf: crlf, finalNL: finalNL}, nil
}

// Window returns the tracked start-time, end-time, and base-year values.
func (w *TimeWindow) Window() (start, end float64, year int, err error) {
	cells := strings.Split(w.lines[w.tracked], ",")
	if len(cells) < 3 {
		return 0, 0, 0, fmt.Errorf("time-control line %d has %d fields, want 3", w.tracked+1, len(cells))
	}
	if start, err = strconv.ParseFloat(strings.TrimSpace(cells[0]), 64); err != nil {
		return 0, 0, 0, fmt.Errorf("start time: %w", err)
	}
	if end, err = strconv.ParseFloat(strings.TrimSpace(cells[1]), 64); err != nil {
		return 0, 0, 0, fmt.Errorf("end time: %w", err)
	}
	if year, err = strconv.Atoi(strings.TrimSpace(cells[2])); err != nil {
		return 0, 0, 0, fmt.Errorf("base year: %w", err)
	}
	return start, end, year, nil
}

// SetWindow rewrites the tracked line with new start-time, end-time, and
// base-year values, preserving the line's original cell count (padding).
func (w *TimeWindow) SetWindow(start, end float64, year int) error {
	cells := strings.Split(w.lines[w.tracked], ",")
	if len(cells) < 3 {
		return fmt.Errorf("time-control line %d has %d fields, want 3", w.tracked+1, len(cells))
	}
	cells[0] = strconv.FormatFloat(start, 'f', -1, 64)
	cells[1] = strconv.FormatFloat(end, 'f', -1, 64)
	cells[2] = strconv.Itoa(year)
	w.lines[w.tracked] = strings.Join(cells, ",")
	return nil
}

// Bytes renders the (possibly edited) file contents.
func (w *TimeWindow) Bytes() []byte {
	sep := "\n"
	if w.crlf {
		sep = "\r\n"
	}
	out := strings.Join(w.lines, sep)
	if w.finalNL {
		out += sep
	}
	return []byte(out)
}

// Save writes the contents back to the file the window was opened from.
// The write is atomic: a temp file in the same directory, then a rename.
func (w *TimeWindow) Save() error {
	if w.path == "" {
		return fmt.Errorf("time window was not opened from a file")
	}
	return atomicWrite(w.path, w.Bytes())
}

func atomicWrite(path string, content []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".qualw2-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName) // best-effort cleanup
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName) // best-effort cleanup
		return fmt.Errorf("close temp: %w", err)
	}

	// Preserve original file permissions
	if info, err := os.Stat(path); err == nil {
		_ = os.Chmod(tmpName, info.Mode()) // best-effort permission sync
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName) // best-effort cleanup
		return fmt.Errorf("rename temp to %s: %w", path, err)
	}
	return nil
}

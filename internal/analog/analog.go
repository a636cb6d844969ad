// Package analog stages the time-series input files for an analog-year run:
// measured flows converted to metric, predicted temperatures for the chosen
// analog year, and hourly meteorology with the base year's Julian days
// substituted in. Each staged file is a seed file with fixed-width data rows
// appended.
package analog

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// cfsToCms converts cubic feet per second to cubic meters per second.
const cfsToCms = 0.028316847

// cellWidth is the fixed column width of appended data rows.
const cellWidth = 8

// FlowRecord is one day of measured flows, already converted to cms.
type FlowRecord struct {
	Date    time.Time
	JDay    float64
	SplOut  float64
	FkcOut  float64
	McOut   float64
	SjrOut  float64
	In      float64
	Evap    float64
}

// MetRecord is one hour of meteorological forcing.
type MetRecord struct {
	JDay  float64
	Tair  float64
	Tdew  float64
	Wind  float64
	Phi   float64
	Cloud float64
	Sro   float64
}

// table is a header-indexed CSV file.
type table struct {
	cols map[string]int
	rows [][]string
}

func readTable(path string) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: empty file", path)
	}

	cols := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		cols[strings.TrimSpace(name)] = i
	}
	return &table{cols: cols, rows: records[1:]}, nil
}

func (t *table) float(row []string, col string) (float64, error) {
	i, ok := t.cols[col]
	if !ok {
		return 0, fmt.Errorf("missing column %q", col)
	}
	if i >= len(row) {
		return 0, fmt.Errorf("row too short for column %q", col)
	}
	return strconv.ParseFloat(strings.TrimSpace(row[i]), 64)
}

// ReadFlows reads the measured-flow CSV (date index in the first column) and
// returns the records within [start, end], converted from cfs to cms. The
// inflow column is stored as a magnitude since the gauge reports reverse flow
// as negative.
func ReadFlows(path string, start, end time.Time) ([]FlowRecord, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}

	var out []FlowRecord
	for _, row := range t.rows {
		if len(row) == 0 {
			continue
		}
		date, err := parseDate(row[0])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if date.Before(start) || date.After(end) {
			continue
		}
		rec := FlowRecord{Date: date}
		for _, c := range []struct {
			name string
			dst  *float64
		}{
			{"JDAY", &rec.JDay},
			{"SPL_OUT", &rec.SplOut},
			{"FKC_OUT", &rec.FkcOut},
			{"MC_OUT", &rec.McOut},
			{"SJR_OUT", &rec.SjrOut},
			{"M_IN", &rec.In},
			{"MIL_EVAP", &rec.Evap},
		} {
			v, err := t.float(row, c.name)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			*c.dst = v
		}
		rec.SplOut *= cfsToCms
		rec.FkcOut *= cfsToCms
		rec.McOut *= cfsToCms
		rec.SjrOut *= cfsToCms
		rec.Evap *= cfsToCms
		rec.In *= cfsToCms
		if rec.In < 0 {
			rec.In = -rec.In
		}
		out = append(out, rec)
	}
	return out, nil
}

// ReadAnalogTemps reads the predicted-temperature CSV and returns the analog
// year's column for dates within [start, end]. The column is named
// "<year>_Temp".
func ReadAnalogTemps(path string, year int, start, end time.Time) ([]float64, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}
	col := fmt.Sprintf("%d_Temp", year)
	if _, ok := t.cols[col]; !ok {
		return nil, fmt.Errorf("%s: no predicted temperatures for analog year %d", path, year)
	}

	var out []float64
	for _, row := range t.rows {
		if len(row) == 0 {
			continue
		}
		date, err := parseDate(row[0])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if date.Before(start) || date.After(end) {
			continue
		}
		v, err := t.float(row, col)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// ReadMet reads the analog year's hourly meteorology, substituting the base
// year's Julian-day column so the forcing aligns with the simulated window,
// and returns the records with JDay in [startJDay, endJDay]. The two files
// are trimmed to their common length before substitution.
func ReadMet(dir string, baseYear, analogYear int, startJDay, endJDay float64) ([]MetRecord, error) {
	base, err := readTable(filepath.Join(dir, fmt.Sprintf("%d_CEQUAL_met_inputs.csv", baseYear)))
	if err != nil {
		return nil, err
	}
	analog, err := readTable(filepath.Join(dir, fmt.Sprintf("%d_CEQUAL_met_inputs.csv", analogYear)))
	if err != nil {
		return nil, err
	}

	n := len(base.rows)
	if len(analog.rows) < n {
		n = len(analog.rows)
	}

	var out []MetRecord
	for i := 0; i < n; i++ {
		jday, err := base.float(base.rows[i], "JDAY")
		if err != nil {
			return nil, fmt.Errorf("base met: %w", err)
		}
		if jday < startJDay || jday > endJDay {
			continue
		}
		rec := MetRecord{JDay: jday}
		for _, c := range []struct {
			name string
			dst  *float64
		}{
			{"TAIR", &rec.Tair},
			{"TDEW", &rec.Tdew},
			{"WIND", &rec.Wind},
			{"PHI", &rec.Phi},
			{"CLOUD", &rec.Cloud},
			{"SRO", &rec.Sro},
		} {
			v, err := analog.float(analog.rows[i], c.name)
			if err != nil {
				return nil, fmt.Errorf("analog met: %w", err)
			}
			*c.dst = v
		}
		out = append(out, rec)
	}
	return out, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01-02", "2006-01-02 15:04:05", "1/2/2006"} {
		if d, err := time.Parse(layout, s); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// Stager writes the staged time-series files: each target is its seed file
// from SeedDir with data rows appended, written into RunDir under the name
// the model expects.
type Stager struct {
	SeedDir string
	RunDir  string
	Log     *zap.Logger
}

// Stage writes all staged input files for one analog run.
func (s *Stager) Stage(flows []FlowRecord, temps []float64, met []MetRecord) error {
	if len(temps) != len(flows) {
		return fmt.Errorf("temperature series has %d rows, flow series has %d", len(temps), len(flows))
	}
	log := s.Log
	if log == nil {
		log = zap.NewNop()
	}

	type rowFn func(i int) []float64
	stage := func(name string, n int, row rowFn) error {
		var b strings.Builder
		for i := 0; i < n; i++ {
			b.WriteByte('\n')
			for _, v := range row(i) {
				fmt.Fprintf(&b, "%*s", cellWidth, strconv.FormatFloat(v, 'f', 2, 64))
			}
		}
		return s.appendToSeed(name, b.String())
	}

	if err := stage("mqot_br1", len(flows), func(i int) []float64 {
		f := flows[i]
		return []float64{f.JDay, f.SplOut, f.FkcOut, f.McOut, f.SjrOut}
	}); err != nil {
		return err
	}
	if err := stage("mqdt_br1", len(flows), func(i int) []float64 {
		return []float64{flows[i].JDay, flows[i].Evap}
	}); err != nil {
		return err
	}
	if err := stage("mqin_br1", len(flows), func(i int) []float64 {
		return []float64{flows[i].JDay, flows[i].In}
	}); err != nil {
		return err
	}
	for br := 2; br <= 4; br++ {
		name := fmt.Sprintf("mqin_br%d", br)
		if err := stage(name, len(flows), func(i int) []float64 {
			return []float64{flows[i].JDay, 0}
		}); err != nil {
			return err
		}
	}
	for br := 1; br <= 4; br++ {
		name := fmt.Sprintf("mtin_br%d", br)
		if err := stage(name, len(flows), func(i int) []float64 {
			return []float64{flows[i].JDay, temps[i]}
		}); err != nil {
			return err
		}
	}

	if err := stage("mmet3", len(met), func(i int) []float64 {
		m := met[i]
		return []float64{m.JDay, m.Tair, m.Tdew, m.Wind, m.Phi, m.Cloud, m.Sro}
	}); err != nil {
		return err
	}

	log.Info("staged analog input files",
		zap.Int("flow_rows", len(flows)),
		zap.Int("met_rows", len(met)),
		zap.String("dir", s.RunDir))
	return nil
}

// appendToSeed reads SeedDir/<name>_init.npt, appends rows, and writes the
// result to RunDir/<name>.npt.
func (s *Stager) appendToSeed(name, rows string) error {
	seed := filepath.Join(s.SeedDir, name+"_init.npt")
	content, err := os.ReadFile(seed)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}
	out := filepath.Join(s.RunDir, name+".npt")
	data := append(content, rows...)
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	return nil
}

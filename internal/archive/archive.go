// Package archive preserves completed runs: output files are copied into a
// per-year, per-run directory tree alongside the inputs that produced them,
// and each archived run is recorded in a SQLite index so past runs can be
// listed without walking the tree.
package archive

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Run describes one completed simulation to archive.
type Run struct {
	Name        string
	AnalogYear  int
	ProfileYear int
	Start       time.Time
	End         time.Time
}

// outputFiles are the model outputs copied from the run directory.
var outputFiles = []string{"two_31.csv", "qwo_31.csv", "tsr_1_seg31.csv"}

// Save copies the run's outputs and inputs from runDir into
// baseDir/<year>/<name>/. Outputs are renamed <stem>_<year>_<name>.csv so
// files from different runs can coexist after later copying; inputs go into
// an inputs/ subdirectory unrenamed. A run_details.txt summary is written
// beside the outputs. Returns the archive directory.
func Save(baseDir, runDir string, run Run) (string, error) {
	dir := filepath.Join(baseDir, fmt.Sprintf("%d", run.AnalogYear), run.Name)
	inputs := filepath.Join(dir, "inputs")
	if err := os.MkdirAll(inputs, 0o755); err != nil {
		return "", fmt.Errorf("create archive directory: %w", err)
	}

	for _, name := range outputFiles {
		stem := name[:len(name)-len(filepath.Ext(name))]
		dst := filepath.Join(dir, fmt.Sprintf("%s_%d_%s.csv", stem, run.AnalogYear, run.Name))
		if err := copyFile(filepath.Join(runDir, name), dst); err != nil {
			return "", fmt.Errorf("archive output %s: %w", name, err)
		}
	}

	npts, err := filepath.Glob(filepath.Join(runDir, "*.npt"))
	if err != nil {
		return "", err
	}
	for _, src := range npts {
		if err := copyFile(src, filepath.Join(inputs, filepath.Base(src))); err != nil {
			return "", fmt.Errorf("archive input %s: %w", filepath.Base(src), err)
		}
	}
	if err := copyFile(filepath.Join(runDir, "w2_con.csv"), filepath.Join(inputs, "w2_con.csv")); err != nil {
		return "", fmt.Errorf("archive control file: %w", err)
	}

	if err := writeDetails(dir, run); err != nil {
		return "", err
	}
	return dir, nil
}

func writeDetails(dir string, run Run) error {
	profileDate := time.Date(run.ProfileYear, run.Start.Month(), run.Start.Day(),
		0, 0, 0, 0, run.Start.Location())
	body := fmt.Sprintf(`Model Run Details
================

Run Name: %s
Start Date: %s
End Date: %s
Temperature Profile Date: %s
Flow Data Year: %d
Meteorological Data Year: %d

Run Date: %s
`,
		run.Name,
		run.Start.Format("01/02/2006 15:04"),
		run.End.Format("01/02/2006 15:04"),
		profileDate.Format("01/02/2006"),
		run.Start.Year(),
		run.AnalogYear,
		time.Now().Format("01/02/2006 15:04:05"))
	return os.WriteFile(filepath.Join(dir, "run_details.txt"), []byte(body), 0o644)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// Index is the SQLite catalog of archived runs.
type Index struct {
	db *sql.DB
}

// Record is one row of the index.
type Record struct {
	ID         string
	Name       string
	AnalogYear int
	Start      time.Time
	End        time.Time
	Dir        string
	ArchivedAt time.Time
}

// OpenIndex opens (creating if needed) the run index database.
func OpenIndex(path string) (*Index, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open index %s: %w", path, err)
	}
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		analog_year INTEGER NOT NULL,
		start_jday TEXT NOT NULL,
		end_jday TEXT NOT NULL,
		dir TEXT NOT NULL,
		archived_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_year ON runs(analog_year);
	`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create index schema: %w", err)
	}
	return &Index{db: db}, nil
}

// Close closes the underlying database.
func (ix *Index) Close() error { return ix.db.Close() }

// Record inserts a run into the index and returns its generated ID.
func (ix *Index) Record(run Run, dir string) (string, error) {
	id := uuid.NewString()
	_, err := ix.db.Exec(
		`INSERT INTO runs (id, name, analog_year, start_jday, end_jday, dir, archived_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, run.Name, run.AnalogYear,
		run.Start.Format(time.RFC3339), run.End.Format(time.RFC3339),
		dir, time.Now().Unix())
	if err != nil {
		return "", fmt.Errorf("record run: %w", err)
	}
	return id, nil
}

// List returns all indexed runs for a year, newest first. Year 0 lists all.
func (ix *Index) List(year int) ([]Record, error) {
	q := `SELECT id, name, analog_year, start_jday, end_jday, dir, archived_at
	      FROM runs`
	args := []any{}
	if year != 0 {
		q += ` WHERE analog_year = ?`
		args = append(args, year)
	}
	q += ` ORDER BY archived_at DESC`

	rows, err := ix.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var start, end string
		var archived int64
		if err := rows.Scan(&r.ID, &r.Name, &r.AnalogYear, &start, &end, &r.Dir, &archived); err != nil {
			return nil, err
		}
		r.Start, _ = time.Parse(time.RFC3339, start)
		r.End, _ = time.Parse(time.RFC3339, end)
		r.ArchivedAt = time.Unix(archived, 0)
		out = append(out, r)
	}
	return out, rows.Err()
}

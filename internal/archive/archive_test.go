package archive

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRun() Run {
	return Run{
		Name:        "baseline",
		AnalogYear:  2022,
		ProfileYear: 2022,
		Start:       time.Date(2018, 5, 15, 1, 0, 0, 0, time.UTC),
		End:         time.Date(2018, 12, 30, 23, 0, 0, 0, time.UTC),
	}
}

func populateRunDir(t *testing.T, dir string) {
	t.Helper()
	for _, name := range []string{"two_31.csv", "qwo_31.csv", "tsr_1_seg31.csv", "w2_con.csv"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(name+" data\n"), 0o644))
	}
	for _, name := range []string{"mqot_br1.npt", "mmet3.npt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(name+" data\n"), 0o644))
	}
}

func TestSave(t *testing.T) {
	runDir := t.TempDir()
	baseDir := t.TempDir()
	populateRunDir(t, runDir)

	dir, err := Save(baseDir, runDir, sampleRun())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(baseDir, "2022", "baseline"), dir)

	// Outputs are renamed with year and run name.
	data, err := os.ReadFile(filepath.Join(dir, "two_31_2022_baseline.csv"))
	require.NoError(t, err)
	assert.Equal(t, "two_31.csv data\n", string(data))
	_, err = os.Stat(filepath.Join(dir, "tsr_1_seg31_2022_baseline.csv"))
	assert.NoError(t, err)

	// Inputs keep their names under inputs/.
	for _, name := range []string{"mqot_br1.npt", "mmet3.npt", "w2_con.csv"} {
		_, err := os.Stat(filepath.Join(dir, "inputs", name))
		assert.NoError(t, err, name)
	}

	details, err := os.ReadFile(filepath.Join(dir, "run_details.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(details), "Run Name: baseline")
	assert.Contains(t, string(details), "Start Date: 05/15/2018 01:00")
	assert.Contains(t, string(details), "Meteorological Data Year: 2022")
	assert.Contains(t, string(details), "Flow Data Year: 2018")
}

func TestSave_MissingOutput(t *testing.T) {
	runDir := t.TempDir()
	populateRunDir(t, runDir)
	require.NoError(t, os.Remove(filepath.Join(runDir, "qwo_31.csv")))

	_, err := Save(t.TempDir(), runDir, sampleRun())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "qwo_31.csv")
}

func TestIndex_RecordAndList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	ix, err := OpenIndex(path)
	require.NoError(t, err)
	defer ix.Close()

	run := sampleRun()
	id1, err := ix.Record(run, "/archive/2022/baseline")
	require.NoError(t, err)
	assert.NotEmpty(t, id1)

	run2 := run
	run2.Name = "wetter"
	run2.AnalogYear = 2021
	id2, err := ix.Record(run2, "/archive/2021/wetter")
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2)

	all, err := ix.List(0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	only2021, err := ix.List(2021)
	require.NoError(t, err)
	require.Len(t, only2021, 1)
	assert.Equal(t, "wetter", only2021[0].Name)
	assert.Equal(t, 2021, only2021[0].AnalogYear)
	assert.Equal(t, "/archive/2021/wetter", only2021[0].Dir)
	assert.Equal(t, run.Start.Format(time.RFC3339), only2021[0].Start.Format(time.RFC3339))
}

func TestIndex_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	ix, err := OpenIndex(path)
	require.NoError(t, err)
	_, err = ix.Record(sampleRun(), "/a")
	require.NoError(t, err)
	require.NoError(t, ix.Close())

	ix2, err := OpenIndex(path)
	require.NoError(t, err)
	defer ix2.Close()
	all, err := ix2.List(0)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

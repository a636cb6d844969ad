package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureValues = 216

// fixtureLines builds an initial-profile file with three quantities of 216
// layer values each, wrapped nine to a line as the generator writes them.
func fixtureLines() []string {
	block := func(name, code string, vals []float64) []string {
		var header strings.Builder
		fmt.Fprintf(&header, "%-8s", name)
		for i := 0; i < 9; i++ {
			fmt.Fprintf(&header, "%8s", code)
		}
		lines := []string{header.String()}
		for start := 0; start < len(vals); start += 9 {
			end := start + 9
			if end > len(vals) {
				end = len(vals)
			}
			var row strings.Builder
			for _, v := range vals[start:end] {
				fmt.Fprintf(&row, "%8.2f", v)
			}
			lines = append(lines, row.String())
		}
		return lines
	}

	temps := make([]float64, fixtureValues)
	for i := range temps {
		temps[i] = 21 - float64(i)*0.05
	}
	temps[1] = 20.35
	temps[2] = 20.04
	temps[3] = 19.93

	tds := make([]float64, fixtureValues)
	dox := make([]float64, fixtureValues)
	for i := range tds {
		tds[i] = 30
		dox[i] = 8.5
	}

	lines := []string{
		"Profile file: 2025-05-15_profile.csv",
		"Vertical initial conditions from the May survey",
	}
	lines = append(lines, block("temp", "T1", temps)...)
	lines = append(lines, "")
	lines = append(lines, block("tds", "C1", tds)...)
	lines = append(lines, "")
	lines = append(lines, block("do", "C2", dox)...)
	return lines
}

func TestDecode(t *testing.T) {
	f, warns, err := Decode(fixtureLines())
	require.NoError(t, err)
	assert.Empty(t, warns)

	assert.Equal(t, "2025-05-15_profile.csv", f.Source)
	assert.Equal(t, "Vertical initial conditions from the May survey", f.Comment)
	require.Len(t, f.Quantities, 3)

	temp, ok := f.Quantity("temp")
	require.True(t, ok)
	require.Len(t, temp.Values, fixtureValues)
	assert.Equal(t, []float64{20.35, 20.04, 19.93}, temp.Values[1:4])

	tds, ok := f.Quantity("tds")
	require.True(t, ok)
	assert.Len(t, tds.Values, fixtureValues)

	dox, ok := f.Quantity("do")
	require.True(t, ok)
	assert.Len(t, dox.Values, fixtureValues)
}

func TestDecode_MissingHeaderWarns(t *testing.T) {
	lines := fixtureLines()
	lines[0] = "generated by hand, no provenance"

	f, warns, err := Decode(lines)
	require.NoError(t, err)
	require.Len(t, warns, 1)
	assert.Contains(t, warns[0].Message, "source profile filename")
	assert.Empty(t, f.Source)
	assert.Len(t, f.Quantities, 3)
}

func TestDecode_NameWithSpaces(t *testing.T) {
	// The block name is recovered by scanning the header tokens backward for
	// the first one that differs from the repeated code, so embedded spaces
	// survive.
	lines := []string{
		"Profile file: x.csv",
		"comment",
		"temp initial      T1      T1      T1",
		"   20.35   20.04   19.93",
	}
	f, _, err := Decode(lines)
	require.NoError(t, err)
	require.Len(t, f.Quantities, 1)
	assert.Equal(t, "temp initial", f.Quantities[0].Name)
	assert.Equal(t, []float64{20.35, 20.04, 19.93}, f.Quantities[0].Values)
}

func TestDecode_LayerCountMismatchWarns(t *testing.T) {
	lines := []string{
		"Profile file: x.csv",
		"comment",
		"temp      T1      T1",
		"   20.35   20.04",
		"",
		"tds      C1      C1",
		"   30.00",
	}
	f, warns, err := Decode(lines)
	require.NoError(t, err)
	require.Len(t, f.Quantities, 2)
	require.Len(t, warns, 1)
	assert.Contains(t, warns[0].Message, "layers")
}

func TestDecode_BadValueFails(t *testing.T) {
	lines := fixtureLines()
	lines[3] = strings.Replace(lines[3], "20.04", "2o.04", 1)
	_, _, err := Decode(lines)
	require.Error(t, err)
}

func TestEncode_RoundTrip(t *testing.T) {
	f1, _, err := Decode(fixtureLines())
	require.NoError(t, err)

	encoded, err := f1.Encode()
	require.NoError(t, err)

	f2, warns, err := Decode(encoded)
	require.NoError(t, err)
	assert.Empty(t, warns)
	assert.Empty(t, cmp.Diff(f1, f2))
}

func TestEncode_WrapsNinePerLine(t *testing.T) {
	f, _, err := Decode(fixtureLines())
	require.NoError(t, err)

	encoded, err := f.Encode()
	require.NoError(t, err)

	// 2 header lines + 3 blocks of (1 header + 24 rows) + 2 separators.
	assert.Len(t, encoded, 2+3*(1+fixtureValues/9)+2)
}

func TestEncode_UnknownQuantityFails(t *testing.T) {
	f := &File{
		Source:     "x.csv",
		Comment:    "c",
		Quantities: []Quantity{{Name: "salinity", Values: []float64{1}}},
	}
	_, err := f.Encode()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "salinity")
}

func TestBlockCodes(t *testing.T) {
	for name, want := range map[string]string{
		"temp":        "T1",
		"Temperature": "T1",
		"tds":         "C1",
		"do":          "C2",
		"DO sat":      "C2",
	} {
		code, err := blockCode(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, code, name)
	}
}

func TestWriteFile_ExtensionGate(t *testing.T) {
	dir := t.TempDir()
	f, _, err := Decode(fixtureLines())
	require.NoError(t, err)

	err = f.WriteFile(filepath.Join(dir, "profile.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), ".npt")

	path := filepath.Join(dir, "profile_init.npt")
	require.NoError(t, f.WriteFile(path))

	f2, warns, err := DecodeFile(path)
	require.NoError(t, err)
	assert.Empty(t, warns)
	assert.Empty(t, cmp.Diff(f, f2))
}

func TestDecodeFile_ExtensionGate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.csv")
	require.NoError(t, os.WriteFile(path, []byte("x\n"), 0o644))

	_, _, err := DecodeFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ".npt")
}

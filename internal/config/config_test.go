package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleLines builds a complete, well-formed main configuration file. Cards
// are appended in catalog order; most lines carry the trailing comma padding
// real exports have.
func sampleLines() []string {
	var out []string
	add := func(lines ...string) { out = append(out, lines...) }

	add("Title (TITLE C)")
	add(
		"Millerton Lake model",
		"analog year scenario base deck",
		"", "", "", "", "", "", "", "",
	)
	add("")

	add("NWB,NBR,IMX,KMX,NPROC,CLOSEC,,,,", "2,4,45,61,1,OFF,,,,", "")
	add("NTR,NST,NIW,NWD,NGT,NSP,NPI,NPU,,", "0,4,0,1,0,0,0,2,,", "")
	add("NGC,NSS,NAL,NEP,NBOD,NMC,NZP,,,", "3,1,1,1,1,1,1,,,", "")
	// Older decks spell HABITATC and SED_DIAG differently; both must resolve.
	add("NDAY,SELECTC,HABTATC,ENVIRPC,AERATEC,INITUWL,ORCC,SED DIAG,,", "100,OFF,OFF,OFF,OFF,OFF,OFF,OFF,,", "")
	add("TMSTRT,TMEND,YEAR,,,,,,,", "64.0416666667,364.958333333,2018,,,,,,,", "")
	add("NDT,DLTMIN,DLTINTR,,,,,,,", "1,1,OFF,,,,,,,", "")
	add("DLTD,,,,,,,,,", "1,60,120,180,240,,,,,", "")
	add("DLTMAX,,,,,,,,,", "3600,3600,3600,3600,3600,,,,,", "")
	add("DLTF,,,,,,,,,", "0.9,0.6,0.9,0.6,0.9,,,,,", "")
	add("VISC/CELC/DLTADD,,,,,,,,,", "ON,,,,,,,,,", "ON,,,,,,,,,", "OFF,,,,,,,,,", "")

	add("US,DS,UHS,DHS,NLMIN,SLOPE,SLOPEC,,,",
		"2,31,0,0,2,0,0,,,",
		"34,36,0,0,2,0,0,,,",
		"39,41,31,0,2,0,0,,,",
		"44,45,31,0,2,0,0,,,",
		"")
	add("LAT,LONGIT,ELBOT,BS,BE,JBDN,,,,",
		"36.99,-119.71,155,1,2,1,,,,",
		"36.99,-119.72,150,3,4,4,,,,",
		"")
	add("T2I,ICETHI,WTYPEC,GRIDC,,,,,,",
		"4,0,FRESH,RECT,,,,,,",
		"4,0,FRESH,RECT,,,,,,",
		"")
	add("VBC,EBC,MBC,PQC,EVC,PRC,,,,",
		"ON,ON,OFF,OFF,ON,OFF,,,,",
		"T,TRUE,F,FALSE,on,off,,,,",
		"")
	add("WINDC,QINC,QOUTC,HEATC,,,,,,",
		"ON,ON,ON,ON,,,,,,",
		"ON,ON,ON,ON,,,,,,",
		"")
	add("QINIC,DTRIC,HDIC,,,,,,,",
		"ON,OFF,ON,,,,,,,",
		"ON,OFF,ON,,,,,,,",
		"")
	add("SLHTC,SROC,RHEVAP,METIC,FETCHC,AFW,BFW,CFW,WINDH,",
		"TERM,OFF,OFF,ON,OFF,9.2,0.46,2,10,",
		"TERM,OFF,OFF,ON,OFF,9.2,0.46,2,10,",
		"")
	add("ICEC,SLICEC,ALBEDO,HWI,BETAI,GAMMAI,ICEMIN,ICET2,,",
		"OFF,DETAIL,0.25,10,0.6,0.07,0.05,3,,",
		"OFF,DETAIL,0.25,10,0.6,0.07,0.05,3,,",
		"")
	add("SLTRC,THETA,,,,,,,,",
		"ULTIMATE,0.55,,,,,,,,",
		"ULTIMATE,0.55,,,,,,,,",
		"")
	add("AX,DX,CBHE,TSED,FI,TSEDF,FRICC,Z0,,",
		"1,1,0.3,11.5,0.01,1,MANN,0.001,,",
		"1,1,0.3,11.5,0.01,1,MANN,0.001,,",
		"")
	add("AZC,AZSLC,AZMAX,FBC,E,ARODI,STRCKLR,BOUNDFR,TKECAL,",
		"TKE,IMP,1,3,9.535,0.43,24,10,IMP,",
		"TKE,IMP,1,3,9.535,0.43,24,10,IMP,",
		"")
	add("NSTR,DYNSTRUC,,,,,,,,",
		"4,OFF,,,,,,,,",
		"0,OFF,,,,,,,,",
		"0,OFF,,,,,,,,",
		"0,OFF,,,,,,,,",
		"")
	add("STRIC,,,,,,,,,",
		"ON,,,,,,,,,",
		"ON,,,,,,,,,",
		"ON,,,,,,,,,",
		"ON,,,,,,,,,",
		"")

	return out
}

func TestDecode_FullDeck(t *testing.T) {
	f, warns, err := Decode(sampleLines())
	require.NoError(t, err)
	assert.Empty(t, warns)
	require.Len(t, f.Sections, len(catalog))

	us, err := f.Lookup("us")
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 34, 39, 44}, us)

	ds, err := f.Lookup("ds")
	require.NoError(t, err)
	assert.Equal(t, []int64{31, 36, 41, 45}, ds)

	dltf, err := f.Lookup("dltf")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.9, 0.6, 0.9, 0.6, 0.9}, dltf)

	nstr, err := f.Lookup("nstr")
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 0, 0, 0}, nstr)

	dyn, err := f.Lookup("dynstruc")
	require.NoError(t, err)
	assert.Equal(t, []bool{false, false, false, false}, dyn)
}

func TestDecode_Scalars(t *testing.T) {
	f, _, err := Decode(sampleLines())
	require.NoError(t, err)

	start, err := f.LookupFloat("tmstrt")
	require.NoError(t, err)
	assert.InDelta(t, 64.0416666667, start, 1e-9)

	year, err := f.LookupInt("year")
	require.NoError(t, err)
	assert.Equal(t, int64(2018), year)

	nwb, err := f.LookupInt("nwb")
	require.NoError(t, err)
	assert.Equal(t, int64(2), nwb)

	assert.Contains(t, f.Title(), "Millerton Lake model")
}

func TestDecode_AliasesResolve(t *testing.T) {
	f, _, err := Decode(sampleLines())
	require.NoError(t, err)

	// The deck spells these LONGIT, ELBOT, HABTATC, and SED DIAG; lookups
	// succeed under any spelling.
	long, err := f.Lookup("longit")
	require.NoError(t, err)
	assert.Equal(t, []float64{-119.71, -119.72}, long)

	long2, err := f.Lookup("long")
	require.NoError(t, err)
	assert.Equal(t, long, long2)

	ebot, err := f.Lookup("ebot")
	require.NoError(t, err)
	assert.Equal(t, []float64{155, 150}, ebot)

	_, err = f.Lookup("habitatc")
	assert.NoError(t, err)
	_, err = f.Lookup("sed_diag")
	assert.NoError(t, err)
	_, err = f.Lookup("seddiag")
	assert.NoError(t, err)
}

func TestDecode_LookupUnknownField(t *testing.T) {
	f, _, err := Decode(sampleLines())
	require.NoError(t, err)

	_, err = f.Lookup("no_such_field")
	assert.ErrorIs(t, err, ErrFieldNotFound)
}

func TestDecode_BoolTokenVariants(t *testing.T) {
	f, _, err := Decode(sampleLines())
	require.NoError(t, err)

	// Waterbody two of the Calculations card uses T/TRUE/F/FALSE tokens.
	vbc, err := f.Lookup("vbc")
	require.NoError(t, err)
	assert.Equal(t, []bool{true, true}, vbc)

	mbc, err := f.Lookup("mbc")
	require.NoError(t, err)
	assert.Equal(t, []bool{false, false}, mbc)
}

func TestRoundTrip(t *testing.T) {
	f1, _, err := Decode(sampleLines())
	require.NoError(t, err)

	encoded, err := f1.Encode()
	require.NoError(t, err)

	f2, warns, err := Decode(encoded)
	require.NoError(t, err)
	assert.Empty(t, warns)

	opts := cmp.AllowUnexported(File{}, Section{})
	if diff := cmp.Diff(f1, f2, opts); diff != "" {
		t.Errorf("round trip changed the decoded file (-first +second):\n%s", diff)
	}
}

func TestEncode_NormalizesBoolTokens(t *testing.T) {
	f, _, err := Decode(sampleLines())
	require.NoError(t, err)

	encoded, err := f.Encode()
	require.NoError(t, err)

	for _, line := range encoded {
		assert.NotContains(t, line, "TRUE")
		assert.NotContains(t, line, "FALSE")
	}
}

func TestEncode_OverlongTitleFails(t *testing.T) {
	f, _, err := Decode(sampleLines())
	require.NoError(t, err)

	s := f.Section(KindTitle)
	require.NotNil(t, s)
	s.set("title", strings.Repeat("line\n", titleSpan)+"one too many")

	_, err = f.Encode()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "title text spans")
}

func TestDecode_ExtraRowValuesWarnNotFail(t *testing.T) {
	lines := sampleLines()
	for i, l := range lines {
		if l == "2,31,0,0,2,0,0,,," {
			lines[i] = "2,31,0,0,2,0,0,7,,"
			break
		}
	}
	f, warns, err := Decode(lines)
	require.NoError(t, err)
	require.Len(t, warns, 1)
	assert.Equal(t, "Branch Geometry", warns[0].Section)

	us, err := f.Lookup("us")
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 34, 39, 44}, us)
}

func TestDecode_ShortRowFails(t *testing.T) {
	lines := sampleLines()
	for i, l := range lines {
		if l == "34,36,0,0,2,0,0,,," {
			lines[i] = "34,36,0,,,,,,,"
			break
		}
	}
	_, _, err := Decode(lines)
	require.Error(t, err)
}

func TestDecode_BadEnumFails(t *testing.T) {
	lines := sampleLines()
	for i, l := range lines {
		if l == "4,0,FRESH,RECT,,,,,," {
			lines[i] = "4,0,BRACKISH,RECT,,,,,,"
			break
		}
	}
	_, _, err := Decode(lines)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BRACKISH")
}

func TestDecodeFile_ExtensionGate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "w2_con.npt")
	require.NoError(t, os.WriteFile(path, []byte("Title\n"), 0o644))

	_, _, err := DecodeFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ".csv")
}

func TestDecodeFile_RoundTripThroughDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "w2_con.csv")
	raw := []byte(joinNL(sampleLines()))
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	f, warns, err := DecodeFile(path)
	require.NoError(t, err)
	assert.Empty(t, warns)

	out, err := f.Bytes()
	require.NoError(t, err)

	f2, _, err := Decode(splitLines(string(out)))
	require.NoError(t, err)

	opts := cmp.AllowUnexported(File{}, Section{})
	assert.Empty(t, cmp.Diff(f, f2, opts))
}

func joinNL(lines []string) string {
	out := ""
	for _, l := range lines {
		out += l + "\n"
	}
	return out
}

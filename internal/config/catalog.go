package config

// Kind identifies one of the fixed card kinds in the main configuration file.
// The set is closed: adding a card is a schema change, not a runtime plugin.
type Kind int

const (
	KindTitle Kind = iota
	KindGridDimensions
	KindInflowOutflowDimensions
	KindConstituents
	KindMiscellaneous
	KindTimeControl
	KindTimestepControl
	KindTimestepDate
	KindMaximumTimestep
	KindTimestepFraction
	KindTimestepLimitations
	KindBranchGeometry
	KindWaterbodyDefinition
	KindInitialConditions
	KindCalculations
	KindDeadSea
	KindInterpolation
	KindHeatExchange
	KindIceCover
	KindTransportScheme
	KindHydraulicCoefficients
	KindVerticalEddyViscosity
	KindNumberOfStructures
	KindStructureInterpolation
)

// layout selects which decoding primitive a card uses.
type layout int

const (
	layoutTitle     layout = iota // fixed span of free text
	layoutPaired                  // header line + value line
	layoutValueList               // header line + one line of list values
	layoutFlagLines               // header line + one value line per field
	layoutRows                    // header line + one line per branch/waterbody/structure
)

type fieldSpec struct {
	name string // canonical lower-case field name
	typ  fieldType
	enum []string // allowed codes when typ == ftEnum
}

// cardSpec is one decoder identity: the card kind, its human name (used in
// warnings), its line layout, and its declared fields in file order.
type cardSpec struct {
	kind   Kind
	name   string
	layout layout
	fields []fieldSpec
}

// titleSpan is the fixed number of free-text lines in the Title card.
const titleSpan = 10

func fInt(n string) fieldSpec  { return fieldSpec{name: n, typ: ftInt} }
func fFlt(n string) fieldSpec  { return fieldSpec{name: n, typ: ftFloat} }
func fBool(n string) fieldSpec { return fieldSpec{name: n, typ: ftBool} }
func fStr(n string) fieldSpec  { return fieldSpec{name: n, typ: ftString} }

func fEnum(n string, codes []string) fieldSpec {
	return fieldSpec{name: n, typ: ftEnum, enum: codes}
}

// catalog is the fixed, ordered list of decoder identities. The file format
// is positional, not self-describing: each decoder only knows how many lines
// it consumes, so cards must be decoded in exactly this sequence.
var catalog = []cardSpec{
	{KindTitle, "Title", layoutTitle, []fieldSpec{fStr("title")}},
	{KindGridDimensions, "Grid Dimensions", layoutPaired, []fieldSpec{
		fInt("nwb"), fInt("nbr"), fInt("imx"), fInt("kmx"), fInt("nproc"), fBool("closec"),
	}},
	{KindInflowOutflowDimensions, "Inflow/Outflow Dimensions", layoutPaired, []fieldSpec{
		fInt("ntr"), fInt("nst"), fInt("niw"), fInt("nwd"), fInt("ngt"), fInt("nsp"), fInt("npi"), fInt("npu"),
	}},
	{KindConstituents, "Constituents", layoutPaired, []fieldSpec{
		fInt("ngc"), fInt("nss"), fInt("nal"), fInt("nep"), fInt("nbod"), fInt("nmc"), fInt("nzp"),
	}},
	{KindMiscellaneous, "Miscellaneous", layoutPaired, []fieldSpec{
		fInt("nday"), fStr("selectc"), fBool("habitatc"), fBool("envirpc"), fBool("aeratec"),
		fBool("inituwl"), fBool("orcc"), fBool("sed_diag"),
	}},
	{KindTimeControl, "Time Control", layoutPaired, []fieldSpec{
		fFlt("tmstrt"), fFlt("tmend"), fInt("year"),
	}},
	{KindTimestepControl, "Timestep Control", layoutPaired, []fieldSpec{
		fInt("ndt"), fFlt("dltmin"), fBool("dltintr"),
	}},
	{KindTimestepDate, "Timestep Date", layoutValueList, []fieldSpec{fFlt("dltd")}},
	{KindMaximumTimestep, "Maximum Timestep", layoutValueList, []fieldSpec{fFlt("dltmax")}},
	{KindTimestepFraction, "Timestep Fraction", layoutValueList, []fieldSpec{fFlt("dltf")}},
	{KindTimestepLimitations, "Timestep Limitations", layoutFlagLines, []fieldSpec{
		fBool("visc"), fBool("celc"), fBool("dltadd"),
	}},
	{KindBranchGeometry, "Branch Geometry", layoutRows, []fieldSpec{
		fInt("us"), fInt("ds"), fInt("uhs"), fInt("dhs"), fInt("nlmin"), fFlt("slope"), fFlt("slopec"),
	}},
	{KindWaterbodyDefinition, "Waterbody Definition", layoutRows, []fieldSpec{
		fFlt("lat"), fFlt("long"), fFlt("ebot"), fInt("bs"), fInt("be"), fInt("jbdn"),
	}},
	{KindInitialConditions, "Initial Conditions", layoutRows, []fieldSpec{
		fFlt("t2i"), fFlt("icethi"), fEnum("wtypec", enumWaterType), fEnum("gridc", enumGridShape),
	}},
	{KindCalculations, "Calculations", layoutRows, []fieldSpec{
		fBool("vbc"), fBool("ebc"), fBool("mbc"), fBool("pqc"), fBool("evc"), fBool("prc"),
	}},
	{KindDeadSea, "Dead Sea", layoutRows, []fieldSpec{
		fBool("windc"), fBool("qinc"), fBool("qoutc"), fBool("heatc"),
	}},
	{KindInterpolation, "Interpolation", layoutRows, []fieldSpec{
		fBool("qinic"), fBool("dtric"), fBool("hdic"),
	}},
	{KindHeatExchange, "Heat Exchange", layoutRows, []fieldSpec{
		fEnum("slhtc", enumHeatExch), fBool("sroc"), fBool("rhevap"), fBool("metic"), fBool("fetchc"),
		fFlt("afw"), fFlt("bfw"), fFlt("cfw"), fFlt("windh"),
	}},
	{KindIceCover, "Ice Cover", layoutRows, []fieldSpec{
		fEnum("icec", enumIceCover), fEnum("slicec", enumIceSolve), fFlt("albedo"), fFlt("hwi"),
		fFlt("betai"), fFlt("gammai"), fFlt("icemin"), fFlt("icet2"),
	}},
	{KindTransportScheme, "Transport Scheme", layoutRows, []fieldSpec{
		fEnum("sltrc", enumTransport), fFlt("theta"),
	}},
	{KindHydraulicCoefficients, "Hydraulic Coefficients", layoutRows, []fieldSpec{
		fFlt("ax"), fFlt("dx"), fFlt("cbhe"), fFlt("tsed"), fFlt("fi"), fFlt("tsedf"),
		fEnum("fricc", enumFriction), fFlt("z0"),
	}},
	{KindVerticalEddyViscosity, "Vertical Eddy Viscosity", layoutRows, []fieldSpec{
		fEnum("azc", enumEddyVisc), fEnum("azslc", enumImpExp), fFlt("azmax"), fInt("fbc"),
		fFlt("e"), fFlt("arodi"), fFlt("strcklr"), fFlt("boundfr"), fEnum("tkecal", enumImpExp),
	}},
	{KindNumberOfStructures, "Number of Structures", layoutRows, []fieldSpec{
		fInt("nstr"), fBool("dynstruc"),
	}},
	{KindStructureInterpolation, "Structure Interpolation", layoutRows, []fieldSpec{
		fBool("stric"),
	}},
}

func (s cardSpec) fieldNames() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.name
	}
	return names
}

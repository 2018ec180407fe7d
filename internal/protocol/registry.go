package protocol

// VariantMD is the protocol name both endpoints of an MD coupling session
// must be configured with. It is the single handshake payload; the field
// IDs below are the out-of-band convention that name implies.
const VariantMD = "md"

// Step phase message IDs for the md variant.
const (
	MsgSetup int32 = 1
	MsgStep  int32 = 2
)

// Client-to-server field IDs for the md variant.
const (
	FieldUnits   int32 = 1
	FieldDim     int32 = 2
	FieldNatoms  int32 = 3
	FieldNtypes  int32 = 4
	FieldBoxLo   int32 = 5
	FieldBoxHi   int32 = 6
	FieldBoxTilt int32 = 7
	FieldTypes   int32 = 8
	FieldCoords  int32 = 9
	FieldCharge  int32 = 10
)

// Server-to-client field IDs for the md variant.
const (
	FieldForces int32 = 1
	FieldEnergy int32 = 2
	FieldVirial int32 = 3
)

var requestFieldNames = map[int32]string{
	FieldUnits:   "units",
	FieldDim:     "dim",
	FieldNatoms:  "natoms",
	FieldNtypes:  "ntypes",
	FieldBoxLo:   "box_lo",
	FieldBoxHi:   "box_hi",
	FieldBoxTilt: "box_tilt",
	FieldTypes:   "types",
	FieldCoords:  "coords",
	FieldCharge:  "charge",
}

var responseFieldNames = map[int32]string{
	FieldForces: "forces",
	FieldEnergy: "energy",
	FieldVirial: "virial",
}

// RequestFieldName names a client-to-server md field for logging.
func RequestFieldName(id int32) (string, bool) {
	name, ok := requestFieldNames[id]
	return name, ok
}

// ResponseFieldName names a server-to-client md field for logging.
func ResponseFieldName(id int32) (string, bool) {
	name, ok := responseFieldNames[id]
	return name, ok
}

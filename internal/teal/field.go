package teal

// Field names a transaction or global field accessed by txn/gtxn/gtxns or
// global. Only the fields spec.md's field analyses (section 4.4) and index
// resolution (section 4.5) actually reason about are distinguished by
// constant; anything else is carried as FieldOther with the raw name
// preserved, since the detector driver only special-cases a handful of
// fields and treats the rest opaquely.
type Field string

const (
	FieldSender        Field = "Sender"
	FieldRekeyTo       Field = "RekeyTo"
	FieldCloseRemainderTo Field = "CloseRemainderTo"
	FieldAssetCloseTo  Field = "AssetCloseTo"
	FieldFee           Field = "Fee"
	FieldTypeEnum      Field = "TypeEnum"
	FieldType          Field = "Type"
	FieldGroupIndex    Field = "GroupIndex"
	FieldApplicationID Field = "ApplicationID"
	FieldOnCompletion  Field = "OnCompletion"
	FieldOther         Field = ""
)

// GlobalField names a global opcode field relevant to group-size reasoning
// (spec.md section 4.4's group-size lattice).
type GlobalField string

const (
	GlobalGroupSize GlobalField = "GroupSize"
	GlobalOther     GlobalField = ""
)

// knownFields maps the raw field-selector token to its typed Field; any
// name not present here is carried as FieldOther with Instruction.FieldName
// preserving the original text, so parsing never rejects a field this
// analyzer doesn't specifically reason about.
var knownFields = map[string]Field{
	"Sender":           FieldSender,
	"RekeyTo":          FieldRekeyTo,
	"CloseRemainderTo": FieldCloseRemainderTo,
	"AssetCloseTo":     FieldAssetCloseTo,
	"Fee":              FieldFee,
	"TypeEnum":         FieldTypeEnum,
	"Type":             FieldType,
	"GroupIndex":       FieldGroupIndex,
	"ApplicationID":    FieldApplicationID,
	"OnCompletion":     FieldOnCompletion,
}

func resolveField(name string) Field {
	if f, ok := knownFields[name]; ok {
		return f
	}
	return FieldOther
}

var knownGlobalFields = map[string]GlobalField{
	"GroupSize": GlobalGroupSize,
}

func resolveGlobalField(name string) GlobalField {
	if f, ok := knownGlobalFields[name]; ok {
		return f
	}
	return GlobalOther
}

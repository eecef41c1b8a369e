package context

import "github.com/crytic/tealer-go/internal/teal"

// TxnType enumerates the TEAL transaction type-enum and application
// call-config values this analyzer distinguishes: the six TypeEnum values
// spec.md section 3 names, plus the application call's seven on-chain
// completion variants (the six OnCompletion tags, plus ApplCreation for
// "ApplicationID == 0"). TypeEnum and OnCompletion/ApplicationID narrow
// different sub-universes of this one set (typeEnumUniverse,
// applicationUniverse below) — a single TypeEnum comparison can never
// directly observe which OnCompletion variant an appl call is, and vice
// versa.
type TxnType int

const (
	TxnTypePayment TxnType = iota
	TxnTypeKeyRegistration
	TxnTypeAssetConfig
	TxnTypeAssetTransfer
	TxnTypeAssetFreeze
	TxnTypeApplicationCall
	TxnTypeApplNoOp
	TxnTypeApplOptIn
	TxnTypeApplCloseOut
	TxnTypeApplClearState
	TxnTypeApplUpdateApplication
	TxnTypeApplDeleteApplication
	TxnTypeApplCreation
	txnTypeCount
)

var txnTypeNames = map[TxnType]string{
	TxnTypePayment:               "pay",
	TxnTypeKeyRegistration:       "keyreg",
	TxnTypeAssetConfig:           "acfg",
	TxnTypeAssetTransfer:         "axfer",
	TxnTypeAssetFreeze:           "afrz",
	TxnTypeApplicationCall:       "appl",
	TxnTypeApplNoOp:              "ApplNoOp",
	TxnTypeApplOptIn:             "ApplOptIn",
	TxnTypeApplCloseOut:          "ApplCloseOut",
	TxnTypeApplClearState:        "ApplClearState",
	TxnTypeApplUpdateApplication: "ApplUpdateApplication",
	TxnTypeApplDeleteApplication: "ApplDeleteApplication",
	TxnTypeApplCreation:          "ApplCreation",
}

// TxnTypeLattice tracks which transaction types are possible at a program
// point (spec.md section 4.4's transaction-type/completion analysis).
var TxnTypeLattice FieldLattice = bitsetLattice{name: "TxnType", width: uint(txnTypeCount)}

// TxnTypeIs returns the lattice value asserting the tracked key equals t.
func TxnTypeIs(t TxnType) Value {
	return singleton(uint(t))
}

func txnTypeByName(name string) (TxnType, bool) {
	for t, n := range txnTypeNames {
		if n == name {
			return t, true
		}
	}
	return 0, false
}

// typeEnumValue maps a TypeEnum immediate (1..6, the on-chain TypeEnum
// encoding) to its TxnType.
func typeEnumValue(n uint64) (TxnType, bool) {
	switch n {
	case 1:
		return TxnTypePayment, true
	case 2:
		return TxnTypeKeyRegistration, true
	case 3:
		return TxnTypeAssetConfig, true
	case 4:
		return TxnTypeAssetTransfer, true
	case 5:
		return TxnTypeAssetFreeze, true
	case 6:
		return TxnTypeApplicationCall, true
	}
	return 0, false
}

// onCompletionValue maps an OnCompletion immediate (0..5, the on-chain
// call-config encoding) to its TxnType.
func onCompletionValue(n uint64) (TxnType, bool) {
	switch n {
	case 0:
		return TxnTypeApplNoOp, true
	case 1:
		return TxnTypeApplOptIn, true
	case 2:
		return TxnTypeApplCloseOut, true
	case 3:
		return TxnTypeApplClearState, true
	case 4:
		return TxnTypeApplUpdateApplication, true
	case 5:
		return TxnTypeApplDeleteApplication, true
	}
	return 0, false
}

func typeSet(ts ...TxnType) bitsetValue {
	var v bitsetValue
	for _, t := range ts {
		v |= singleton(uint(t))
	}
	return v
}

// typeEnumUniverse is every type TypeEnum itself can directly distinguish;
// it cannot tell application call-config variants apart, so ApplNoOp..
// ApplCreation are outside it (spec.md section 4.4).
var typeEnumUniverse = typeSet(
	TxnTypePayment, TxnTypeKeyRegistration, TxnTypeAssetConfig,
	TxnTypeAssetTransfer, TxnTypeAssetFreeze, TxnTypeApplicationCall,
)

// applicationUniverse is every application call-config variant OnCompletion
// and ApplicationID narrow between; it excludes the non-appl TypeEnum
// values, which an appl-specific comparison can never produce.
var applicationUniverse = typeSet(
	TxnTypeApplNoOp, TxnTypeApplOptIn, TxnTypeApplCloseOut, TxnTypeApplClearState,
	TxnTypeApplUpdateApplication, TxnTypeApplDeleteApplication, TxnTypeApplCreation,
)

func without(universe bitsetValue, t TxnType) bitsetValue {
	return universe &^ singleton(uint(t))
}

// TxnTypeIncludes reports whether t is among the transaction types v still
// admits, for detectors (internal/detect) outside this package that need
// to ask "can this still be an UpdateApplication call" without reaching
// into the bitsetValue representation directly.
func TxnTypeIncludes(v Value, t TxnType) bool {
	bv, ok := v.(bitsetValue)
	if !ok {
		return false
	}
	return bv&singleton(uint(t)) != 0
}

// txnTypeBare implements spec.md section 4.4's bare "txn ApplicationID"
// truthy/falsy split: nonzero (any application call except creation) when
// true, exactly ApplCreation when false. Grounded on
// tealer/analyses/dataflow/transaction_context/txn_types.py's
// _get_asserted_transaction_types, which special-cases
// is_value_matches_key(..., ApplicationID) before ever looking at a
// comparison operator.
func txnTypeBare(target *teal.Instruction) (Value, Value, bool) {
	if target.Field != teal.FieldApplicationID {
		return nil, nil, false
	}
	trueVal := without(applicationUniverse, TxnTypeApplCreation)
	falseVal := TxnTypeIs(TxnTypeApplCreation)
	return trueVal, falseVal, true
}

// txnTypePairBuild implements the Eq/Neq(ApplicationID|TypeEnum|Type|
// OnCompletion, literal) forms of spec.md section 4.4, returning the exact
// true/false pair rather than a lattice negation: each field narrows a
// different sub-universe (typeEnumUniverse or applicationUniverse), so
// "not equal to X" is not simply "every other tagged value".
func txnTypePairBuild(target *teal.Instruction, op teal.Opcode, literal *teal.Instruction) (Value, Value, bool) {
	if op != teal.OpEq && op != teal.OpNeq {
		return nil, nil, false
	}

	var trueVal, falseVal bitsetValue
	switch target.Field {
	case teal.FieldApplicationID:
		n, ok := literalInt(literal)
		if !ok || n != 0 {
			return nil, nil, false
		}
		trueVal = singleton(uint(TxnTypeApplCreation))
		falseVal = without(applicationUniverse, TxnTypeApplCreation)
	case teal.FieldTypeEnum, teal.FieldType:
		t, ok := literalTxnType(literal, typeEnumValue)
		if !ok {
			return nil, nil, false
		}
		trueVal = singleton(uint(t))
		falseVal = without(typeEnumUniverse, t)
	case teal.FieldOnCompletion:
		t, ok := literalTxnType(literal, onCompletionValue)
		if !ok {
			return nil, nil, false
		}
		trueVal = singleton(uint(t))
		falseVal = without(applicationUniverse, t)
	default:
		return nil, nil, false
	}

	if op == teal.OpNeq {
		trueVal, falseVal = falseVal, trueVal
	}
	return trueVal, falseVal, true
}

// literalTxnType resolves literal to a TxnType either via its integer
// immediate (through fromInt) or, failing that, its byte-string immediate
// matched against txnTypeNames (the "Type" field and named OnCompletion
// byte constants some assemblers emit as strings rather than ints).
func literalTxnType(literal *teal.Instruction, fromInt func(uint64) (TxnType, bool)) (TxnType, bool) {
	if n, ok := literalInt(literal); ok {
		return fromInt(n)
	}
	if b, ok := literalBytes(literal); ok {
		return txnTypeByName(string(b))
	}
	return 0, false
}

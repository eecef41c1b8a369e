// Package teal parses TEAL (Algorand VM assembly) source into a flat,
// ordered sequence of typed instructions.
package teal

// Opcode names a TEAL mnemonic.
type Opcode string

// Opcode families, named the way spec.md section 9 asks for: a single
// tagged variant (Instruction, in instruction.go) with per-variant data,
// dispatched through the arity table below rather than through a class
// hierarchy per opcode.
const (
	OpErr     Opcode = "err"
	OpReturn  Opcode = "return"
	OpAssert  Opcode = "assert"
	OpB       Opcode = "b"
	OpBZ      Opcode = "bz"
	OpBNZ     Opcode = "bnz"
	OpCallSub Opcode = "callsub"
	OpRetSub  Opcode = "retsub"

	OpInt        Opcode = "int"
	OpPushInt    Opcode = "pushint"
	OpIntCBlock  Opcode = "intcblock"
	OpIntC       Opcode = "intc"
	OpIntC0      Opcode = "intc_0"
	OpIntC1      Opcode = "intc_1"
	OpIntC2      Opcode = "intc_2"
	OpIntC3      Opcode = "intc_3"
	OpByte       Opcode = "byte"
	OpPushBytes  Opcode = "pushbytes"
	OpBytecBlock Opcode = "bytecblock"
	OpBytec      Opcode = "bytec"
	OpBytec0     Opcode = "bytec_0"
	OpBytec1     Opcode = "bytec_1"
	OpBytec2     Opcode = "bytec_2"
	OpBytec3     Opcode = "bytec_3"
	OpAddr       Opcode = "addr"

	OpTxn     Opcode = "txn"
	OpTxna    Opcode = "txna"
	OpTxnas   Opcode = "txnas"
	OpGtxn    Opcode = "gtxn"
	OpGtxna   Opcode = "gtxna"
	OpGtxnas  Opcode = "gtxnas"
	OpGtxns   Opcode = "gtxns"
	OpGtxnsa  Opcode = "gtxnsa"
	OpGtxnsas Opcode = "gtxnsas"
	OpGlobal  Opcode = "global"

	OpItxnBegin  Opcode = "itxn_begin"
	OpItxnField  Opcode = "itxn_field"
	OpItxnSubmit Opcode = "itxn_submit"
	OpItxn       Opcode = "itxn"
	OpItxna      Opcode = "itxna"
	OpItxnNext   Opcode = "itxn_next"
	OpGitxn      Opcode = "gitxn"
	OpGitxna     Opcode = "gitxna"

	OpAppGlobalGet    Opcode = "app_global_get"
	OpAppGlobalPut    Opcode = "app_global_put"
	OpAppLocalGet     Opcode = "app_local_get"
	OpAppLocalPut     Opcode = "app_local_put"
	OpAppOptedIn      Opcode = "app_opted_in"
	OpAssetHoldingGet Opcode = "asset_holding_get"
	OpAssetParamsGet  Opcode = "asset_params_get"
	OpBoxCreate       Opcode = "box_create"
	OpBoxGet          Opcode = "box_get"
	OpBoxPut          Opcode = "box_put"
	OpBoxDel          Opcode = "box_del"
	OpBoxLen          Opcode = "box_len"

	OpDup    Opcode = "dup"
	OpDup2   Opcode = "dup2"
	OpSwap   Opcode = "swap"
	OpPop    Opcode = "pop"
	OpSelect Opcode = "select"
	OpCover  Opcode = "cover"
	OpUncover Opcode = "uncover"

	OpAdd Opcode = "+"
	OpSub Opcode = "-"
	OpMul Opcode = "*"
	OpDiv Opcode = "/"
	OpMod Opcode = "%"

	OpEq  Opcode = "=="
	OpNeq Opcode = "!="
	OpLt  Opcode = "<"
	OpLe  Opcode = "<="
	OpGt  Opcode = ">"
	OpGe  Opcode = ">="
	OpNot Opcode = "!"
	OpAnd Opcode = "&&"
	OpOr  Opcode = "||"

	OpLen      Opcode = "len"
	OpSHA256   Opcode = "sha256"
	OpKeccak256 Opcode = "keccak256"
	OpEd25519  Opcode = "ed25519verify"
)

// Arity describes an opcode's stack effect. Every opcode this parser
// accepts has a fixed arity; intcblock/bytecblock, whose number of
// immediates varies, still pop and push nothing.
type Arity struct {
	Pop  int
	Push int
}

// arityTable gives the static pop/push arity for opcodes whose arity does
// not depend on immediates. Opcodes not listed here either have
// immediate-dependent arity (handled in parser.go) or push/pop exactly one
// value, the overwhelmingly common case for arithmetic/comparison/hashing
// opcodes, covering TEAL versions 1 through 8 per spec.md section 6.
//
// This table is built from the TEAL language reference directly, not
// mirrored from any single prior implementation (spec.md section 9
// explicitly disclaims any canonical source table to copy).
var arityTable = map[Opcode]Arity{
	OpErr:    {0, 0},
	OpReturn: {1, 0},
	OpAssert: {1, 0},
	OpB:      {0, 0},
	OpBZ:     {1, 0},
	OpBNZ:    {1, 0},

	OpCallSub: {0, 0},
	OpRetSub:  {0, 0},

	OpInt:       {0, 1},
	OpPushInt:   {0, 1},
	OpIntCBlock: {0, 0},
	OpIntC:      {0, 1},
	OpIntC0:     {0, 1},
	OpIntC1:     {0, 1},
	OpIntC2:     {0, 1},
	OpIntC3:     {0, 1},

	OpByte:       {0, 1},
	OpPushBytes:  {0, 1},
	OpBytecBlock: {0, 0},
	OpBytec:      {0, 1},
	OpBytec0:     {0, 1},
	OpBytec1:     {0, 1},
	OpBytec2:     {0, 1},
	OpBytec3:     {0, 1},
	OpAddr:       {0, 1},

	OpTxn:    {0, 1},
	OpTxna:   {0, 1},
	OpTxnas:  {1, 1},
	OpGtxn:   {0, 1},
	OpGtxna:  {0, 1},
	OpGtxnas: {1, 1},
	OpGtxns:  {1, 1},
	OpGtxnsa: {1, 1},
	OpGtxnsas: {2, 1},
	OpGlobal: {0, 1},

	OpItxnBegin:  {0, 0},
	OpItxnField:  {1, 0},
	OpItxnSubmit: {0, 0},
	OpItxn:       {0, 1},
	OpItxna:      {0, 1},
	OpItxnNext:   {0, 0},
	OpGitxn:      {0, 1},
	OpGitxna:     {0, 1},

	OpAppGlobalGet:    {1, 1},
	OpAppGlobalPut:    {2, 0},
	OpAppLocalGet:     {2, 1},
	OpAppLocalPut:     {3, 0},
	OpAppOptedIn:      {2, 1},
	OpAssetHoldingGet: {2, 2},
	OpAssetParamsGet:  {1, 2},
	OpBoxCreate:       {2, 1},
	OpBoxGet:          {1, 2},
	OpBoxPut:          {2, 0},
	OpBoxDel:          {1, 1},
	OpBoxLen:          {1, 2},

	OpDup:    {1, 2},
	OpDup2:   {2, 4},
	OpSwap:   {2, 2},
	OpPop:    {1, 0},
	OpSelect: {3, 1},
	OpCover:  {0, 0}, // stack depth rearrangement; modeled as opaque in stackast
	OpUncover: {0, 0},

	OpAdd: {2, 1},
	OpSub: {2, 1},
	OpMul: {2, 1},
	OpDiv: {2, 1},
	OpMod: {2, 1},

	OpEq:  {2, 1},
	OpNeq: {2, 1},
	OpLt:  {2, 1},
	OpLe:  {2, 1},
	OpGt:  {2, 1},
	OpGe:  {2, 1},
	OpNot: {1, 1},
	OpAnd: {2, 1},
	OpOr:  {2, 1},

	OpLen:       {1, 1},
	OpSHA256:    {1, 1},
	OpKeccak256: {1, 1},
	OpEd25519:   {3, 1},
}

// defaultArity is used for recognized opcodes not present in arityTable:
// the overwhelming majority of TEAL opcodes (bitwise ops, type conversions,
// other hashes, other cryptographic primitives) pop one value and push one
// value transformed from it.
var defaultArity = Arity{1, 1}

// ArityOf returns the static pop/push arity of op, or false if op is not
// an opcode this parser accepts. intcblock/bytecblock are listed in
// arityTable (0/0), so the variadicArity check below never returns false
// for them; parser.go reads their immediates itself.
func ArityOf(op Opcode) (Arity, bool) {
	if a, ok := arityTable[op]; ok {
		return a, true
	}
	if _, ok := variadicArity[op]; ok {
		return Arity{}, false
	}
	if _, ok := knownOpcodes[op]; ok {
		return defaultArity, true
	}
	return Arity{}, false
}

// variadicArity lists opcodes whose number of immediates varies (e.g.
// intcblock's constant count). Their pop/push counts are fixed at 0/0.
var variadicArity = map[Opcode]struct{}{
	OpIntCBlock:  {},
	OpBytecBlock: {},
}

// knownOpcodes is every opcode this parser accepts, including ones that
// only ever use defaultArity. Grouped by family for readability; an opcode
// absent from both this set and arityTable/variadicArity is a parse error
// ("unknown opcode").
var knownOpcodes = buildKnownOpcodes()

func buildKnownOpcodes() map[Opcode]struct{} {
	m := make(map[Opcode]struct{})
	for op := range arityTable {
		m[op] = struct{}{}
	}
	for op := range variadicArity {
		m[op] = struct{}{}
	}
	extra := []Opcode{
		"bitlen", "b&", "b|", "b^", "b~", "b+", "b-", "b*", "b/", "b%",
		"b<", "b>", "b<=", "b>=", "b==", "b!=",
		"&", "|", "^", "~",
		"itob", "btoi", "concat", "substring", "substring3", "getbit",
		"setbit", "getbyte", "setbyte", "extract", "extract3",
		"extract_uint16", "extract_uint32", "extract_uint64",
		"replace2", "replace3", "base64_decode", "json_ref",
		"sha512_256", "ecdsa_verify", "ecdsa_pk_decompress",
		"ecdsa_pk_recover", "vrf_verify", "ecadd", "ecscalarmul",
		"ecpairing_check", "ecsubgroup_check",
		"balance", "min_balance", "acct_params_get",
		"log", "min", "max",
		"gload", "gloads", "gaid", "gaids",
		"load", "store", "loads", "stores", "gloadss",
		"mulw", "addw", "divmodw", "exp", "expw", "shl", "shr", "sqrt",
		"args", "arg", "arg_0", "arg_1", "arg_2", "arg_3",
		"bzero", "dig", "frame_dig", "frame_bury", "proto", "bury",
	}
	for _, op := range extra {
		m[op] = struct{}{}
	}
	return m
}

// IsTerminator reports whether op always ends a basic block by transferring
// control unconditionally (spec.md section 4.1, pass 3: "a new block starts
// ... after every multi-successor or terminator instruction").
func (op Opcode) IsTerminator() bool {
	switch op {
	case OpB, OpErr, OpReturn, OpCallSub, OpRetSub:
		return true
	}
	return false
}

// IsBranch reports whether op is a conditional or unconditional jump that
// names a label immediate.
func (op Opcode) IsBranch() bool {
	switch op {
	case OpB, OpBZ, OpBNZ, OpCallSub:
		return true
	}
	return false
}

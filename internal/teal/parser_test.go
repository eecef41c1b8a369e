package teal

import (
	"strings"
	"testing"
)

func TestParseBasic(t *testing.T) {
	src := `#pragma version 6
txn Sender
addr AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAQ
==
bz reject
int 1
return
reject:
int 0
return
`
	p, err := Parse("test.teal", strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.Version != 6 {
		t.Fatalf("version = %d, want 6", p.Version)
	}
	wantOps := []Opcode{OpTxn, OpAddr, OpEq, OpBZ, OpInt, OpReturn, "", OpInt, OpReturn}
	if len(p.Instructions) != len(wantOps) {
		t.Fatalf("got %d instructions, want %d", len(p.Instructions), len(wantOps))
	}
	for i, in := range p.Instructions {
		if in.Op != wantOps[i] {
			t.Errorf("instruction %d: op = %q, want %q", i, in.Op, wantOps[i])
		}
	}
	if p.Instructions[6].Label != "reject" {
		t.Errorf("instruction 6: label = %q, want reject", p.Instructions[6].Label)
	}
	if p.Instructions[3].Target != "reject" {
		t.Errorf("bz target = %q, want reject", p.Instructions[3].Target)
	}
	if p.Instructions[0].Field != FieldSender {
		t.Errorf("txn field = %q, want Sender", p.Instructions[0].Field)
	}
}

func TestParseUnknownOpcode(t *testing.T) {
	_, err := Parse("t.teal", strings.NewReader("bogus_op 1\n"))
	if err == nil {
		t.Fatal("expected error for unknown opcode")
	}
	var perr *Error
	if !errorsAs(err, &perr) {
		t.Fatalf("error is not *Error: %v", err)
	}
	if perr.Kind != ErrUnknownOpcode {
		t.Errorf("kind = %v, want %v", perr.Kind, ErrUnknownOpcode)
	}
}

func TestParseIntcBlock(t *testing.T) {
	p, err := Parse("t.teal", strings.NewReader("intcblock 1 2 3\nintc_0\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	block := p.Instructions[0]
	if len(block.IntImmediates) != 3 || block.IntImmediates[2] != 3 {
		t.Errorf("intcblock immediates = %v", block.IntImmediates)
	}
}

func TestDecodeBytesLiteralHex(t *testing.T) {
	b, err := decodeBytesLiteral("0x0102ff")
	if err != nil {
		t.Fatalf("decodeBytesLiteral: %v", err)
	}
	if len(b) != 3 || b[2] != 0xff {
		t.Errorf("bytes = %v", b)
	}
}

func TestDecodeBytesLiteralQuoted(t *testing.T) {
	b, err := decodeBytesLiteral(`"hello"`)
	if err != nil {
		t.Fatalf("decodeBytesLiteral: %v", err)
	}
	if string(b) != "hello" {
		t.Errorf("bytes = %q, want hello", b)
	}
}

// errorsAs avoids importing errors in every test file that just wants a
// type assertion on a freshly returned (non-wrapped) error.
func errorsAs(err error, target **Error) bool {
	e, ok := err.(*Error)
	if !ok {
		return false
	}
	*target = e
	return true
}

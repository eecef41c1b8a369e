package cfg

import (
	"strings"
	"testing"
)

const sampleContract = `#pragma version 6
txn Sender
callsub checksender
int 1
return
checksender:
txn Sender
global GroupSize
==
bz reject
retsub
reject:
err
`

func TestBuildBasicPartition(t *testing.T) {
	c, err := BuildFromSource("t.teal", strings.NewReader(sampleContract))
	if err != nil {
		t.Fatalf("BuildFromSource: %v", err)
	}
	if len(c.SubroutineOrder) != 2 {
		t.Fatalf("subroutines = %v, want 2", c.SubroutineOrder)
	}
	main := c.Main()
	if main == nil || !main.IsMain {
		t.Fatalf("Main() = %v", main)
	}
	sub, ok := c.Subroutines["checksender"]
	if !ok {
		t.Fatalf("missing checksender subroutine")
	}
	if len(sub.RetsubBlocks) != 1 {
		t.Errorf("retsub blocks = %d, want 1", len(sub.RetsubBlocks))
	}
	if len(sub.CallSites) != 1 {
		t.Errorf("call sites = %d, want 1", len(sub.CallSites))
	}

	var foundCallsub bool
	for _, b := range main.Blocks {
		if b.IsCallsub {
			foundCallsub = true
			if b.ReturnTo == nil {
				t.Errorf("callsub block has no ReturnTo")
			}
			if len(b.Succs) != 1 || b.Succs[0].Block.Subroutine != sub {
				t.Errorf("callsub successor not in checksender")
			}
		}
	}
	if !foundCallsub {
		t.Errorf("no callsub block found in main")
	}
}

func TestBuildUndefinedLabel(t *testing.T) {
	_, err := BuildFromSource("t.teal", strings.NewReader("int 1\nbnz nowhere\nint 2\nreturn\n"))
	if err == nil {
		t.Fatal("expected undefined label error")
	}
	cerr, ok := err.(*Error)
	if !ok {
		t.Fatalf("error is not *cfg.Error: %v", err)
	}
	if cerr.Kind != ErrUndefinedLabel {
		t.Errorf("kind = %v, want %v", cerr.Kind, ErrUndefinedLabel)
	}
}

func TestBuildMismatchedRetsub(t *testing.T) {
	_, err := BuildFromSource("t.teal", strings.NewReader("int 1\nretsub\n"))
	if err == nil {
		t.Fatal("expected mismatched retsub error")
	}
	cerr, ok := err.(*Error)
	if !ok {
		t.Fatalf("error is not *cfg.Error: %v", err)
	}
	if cerr.Kind != ErrMismatchedRetsub {
		t.Errorf("kind = %v, want %v", cerr.Kind, ErrMismatchedRetsub)
	}
}

func TestBuildLeafClassification(t *testing.T) {
	c, err := BuildFromSource("t.teal", strings.NewReader(sampleContract))
	if err != nil {
		t.Fatalf("BuildFromSource: %v", err)
	}
	var leafCount int
	for _, b := range c.Blocks {
		if b.IsLeaf {
			leafCount++
		}
	}
	if leafCount != 2 {
		t.Errorf("leaf blocks = %d, want 2 (return + err)", leafCount)
	}
}

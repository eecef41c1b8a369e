package context

import (
	"strings"
	"testing"

	"github.com/crytic/tealer-go/internal/cfg"
	"github.com/crytic/tealer-go/internal/stackast"
	"github.com/crytic/tealer-go/internal/teal"
)

// gtxnsInstruction builds src and returns the AST for its single block
// plus the gtxns instruction within it, for exercising ResolveIndex
// against the exact operand shape a real contract produces.
func gtxnsInstruction(t *testing.T, src string) (*stackast.BlockStackAST, *teal.Instruction) {
	t.Helper()
	c, err := cfg.BuildFromSource("t.teal", strings.NewReader(src))
	if err != nil {
		t.Fatalf("BuildFromSource: %v", err)
	}
	block := c.Blocks[0]
	ast := stackast.Build(block)
	for _, in := range block.Instructions {
		if in.Op == teal.OpGtxns {
			return ast, in
		}
	}
	t.Fatal("no gtxns instruction found")
	return nil, nil
}

func TestResolveIndexSelf(t *testing.T) {
	ast, in := gtxnsInstruction(t, `#pragma version 8
txn GroupIndex
gtxns RekeyTo
pop
int 1
return
`)
	idx := ResolveIndex(ast, in)
	if idx.Kind != IndexSelf {
		t.Errorf("ResolveIndex = %+v, want Self", idx)
	}
}

func TestResolveIndexAbsoluteLiteral(t *testing.T) {
	ast, in := gtxnsInstruction(t, `#pragma version 8
int 2
gtxns RekeyTo
pop
int 1
return
`)
	idx := ResolveIndex(ast, in)
	if idx.Kind != IndexAbsolute || idx.Value != 2 {
		t.Errorf("ResolveIndex = %+v, want Absolute(2)", idx)
	}
}

func TestResolveIndexRelativeAddGroupIndexFirst(t *testing.T) {
	ast, in := gtxnsInstruction(t, `#pragma version 8
txn GroupIndex
int 1
+
gtxns RekeyTo
pop
int 1
return
`)
	idx := ResolveIndex(ast, in)
	if idx.Kind != IndexRelative || idx.Value != 1 {
		t.Errorf("ResolveIndex = %+v, want Relative(+1)", idx)
	}
}

func TestResolveIndexRelativeAddConstantFirst(t *testing.T) {
	// spec.md section 4.5: "Add(int c, txn GroupIndex)" must resolve the
	// same as "Add(txn GroupIndex, int c)" despite the operand order on
	// the stack being reversed.
	ast, in := gtxnsInstruction(t, `#pragma version 8
int 1
txn GroupIndex
+
gtxns RekeyTo
pop
int 1
return
`)
	idx := ResolveIndex(ast, in)
	if idx.Kind != IndexRelative || idx.Value != 1 {
		t.Errorf("ResolveIndex = %+v, want Relative(+1)", idx)
	}
}

func TestResolveIndexRelativeSub(t *testing.T) {
	ast, in := gtxnsInstruction(t, `#pragma version 8
txn GroupIndex
int 1
-
gtxns RekeyTo
pop
int 1
return
`)
	idx := ResolveIndex(ast, in)
	if idx.Kind != IndexRelative || idx.Value != -1 {
		t.Errorf("ResolveIndex = %+v, want Relative(-1)", idx)
	}
}

func TestResolveIndexUnknown(t *testing.T) {
	ast, in := gtxnsInstruction(t, `#pragma version 8
txn Fee
gtxns RekeyTo
pop
int 1
return
`)
	idx := ResolveIndex(ast, in)
	if idx.Kind != IndexUnknown {
		t.Errorf("ResolveIndex = %+v, want Unknown", idx)
	}
}

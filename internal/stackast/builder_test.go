package stackast

import (
	"strings"
	"testing"

	"github.com/crytic/tealer-go/internal/cfg"
)

func TestBuildTracksLocalProducers(t *testing.T) {
	c, err := cfg.BuildFromSource("t.teal", strings.NewReader(
		"int 1\nint 2\n==\nbz reject\nint 1\nreturn\nreject:\nerr\n"))
	if err != nil {
		t.Fatalf("BuildFromSource: %v", err)
	}
	block := c.Blocks[0]
	ast := Build(block)
	if len(ast.Effects) != 4 {
		t.Fatalf("effects = %d, want 4 (int, int, ==, bz)", len(ast.Effects))
	}
	eqEffect := ast.Effects[2]
	if len(eqEffect.Operands) != 2 {
		t.Fatalf("== operands = %d, want 2", len(eqEffect.Operands))
	}
	lhs, ok := eqEffect.Operands[0].(KnownStackValue)
	if !ok {
		t.Fatalf("== operand 0 is not KnownStackValue: %#v", eqEffect.Operands[0])
	}
	if lhs.Producer.Op != "int" || lhs.Producer.IntImmediate != 2 {
		t.Errorf("== operand 0 producer = %+v, want int 2", lhs.Producer)
	}

	bzEffect := ast.Effects[3]
	bzOperand, ok := bzEffect.Operands[0].(KnownStackValue)
	if !ok || bzOperand.Producer.Op != "==" {
		t.Errorf("bz operand = %#v, want producer ==", bzEffect.Operands[0])
	}
}

func TestBuildUnknownAcrossBlockBoundary(t *testing.T) {
	c, err := cfg.BuildFromSource("t.teal", strings.NewReader(
		"int 1\nbz skip\nint 2\nskip:\npop\nint 3\nreturn\n"))
	if err != nil {
		t.Fatalf("BuildFromSource: %v", err)
	}
	var skipBlock *cfg.BasicBlock
	for _, b := range c.Blocks {
		if b.Instructions[0].Op == "pop" {
			skipBlock = b
		}
	}
	if skipBlock == nil {
		t.Fatal("could not find block starting at 'pop'")
	}
	ast := Build(skipBlock)
	popEffect := ast.Effects[0]
	if _, ok := popEffect.Operands[0].(UnknownStackValue); !ok {
		t.Errorf("pop operand = %#v, want UnknownStackValue (value came from a predecessor block)", popEffect.Operands[0])
	}
}

func TestBuildIsMemoized(t *testing.T) {
	c, err := cfg.BuildFromSource("t.teal", strings.NewReader("int 1\nreturn\n"))
	if err != nil {
		t.Fatalf("BuildFromSource: %v", err)
	}
	a := Build(c.Blocks[0])
	b := Build(c.Blocks[0])
	if a != b {
		t.Errorf("Build did not return the memoized instance on second call")
	}
}

// Package report assembles detector results into the two output shapes
// spec.md section 6 specifies: ExecutionPaths for a single function's
// vulnerable paths, and GroupTransactionOutput for a group-aware run.
// Both render to JSON (via json-iterator, matching ethpandaops-erigone's
// choice of encoder in this corpus); ExecutionPaths also renders to
// Graphviz DOT (via internal/graph.Dot, matching rtcheck/main.go's
// -lockgraph/-callgraph DOT-per-artifact style).
package report

import (
	"encoding/base32"
	"fmt"
	"strconv"
	"strings"

	"github.com/crytic/tealer-go/internal/cfg"
	"github.com/crytic/tealer-go/internal/teal"
)

// instructionText renders a single instruction the way it would appear in
// TEAL source, good enough for a human reading a reported path — it does
// not need to round-trip through the parser.
func instructionText(in *teal.Instruction) string {
	if in.IsLabel() {
		return in.Label + ":"
	}
	switch in.Op {
	case teal.OpInt, teal.OpPushInt:
		return fmt.Sprintf("%s %d", in.Op, in.IntImmediate)
	case teal.OpByte, teal.OpPushBytes:
		return fmt.Sprintf("%s 0x%x", in.Op, in.BytesImmediate)
	case teal.OpAddr:
		return fmt.Sprintf("addr %s", base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(in.BytesImmediate))
	case teal.OpIntC, teal.OpIntC0, teal.OpIntC1, teal.OpIntC2, teal.OpIntC3, teal.OpBytec, teal.OpBytec0, teal.OpBytec1, teal.OpBytec2, teal.OpBytec3:
		return string(in.Op)
	case teal.OpB, teal.OpBZ, teal.OpBNZ, teal.OpCallSub:
		return fmt.Sprintf("%s %s", in.Op, in.Target)
	case teal.OpTxn, teal.OpTxna:
		return fmt.Sprintf("%s %s", in.Op, fieldText(in))
	case teal.OpTxnas:
		return fmt.Sprintf("%s %s", in.Op, in.FieldName)
	case teal.OpGtxn, teal.OpGtxna:
		return fmt.Sprintf("%s %d %s", in.Op, in.GroupIndex, fieldText(in))
	case teal.OpGtxnas:
		return fmt.Sprintf("%s %d %s", in.Op, in.GroupIndex, in.FieldName)
	case teal.OpGtxns, teal.OpGtxnsa:
		return fmt.Sprintf("%s %s", in.Op, fieldText(in))
	case teal.OpGtxnsas:
		return fmt.Sprintf("%s %s", in.Op, in.FieldName)
	case teal.OpGlobal:
		return fmt.Sprintf("global %s", in.GlobalFieldName)
	default:
		return string(in.Op)
	}
}

func fieldText(in *teal.Instruction) string {
	if in.ArrayIndex >= 0 {
		return fmt.Sprintf("%s %d", in.FieldName, in.ArrayIndex)
	}
	return in.FieldName
}

// LineText renders "n: instr" for one instruction, the leaf element of an
// ExecutionPaths path's blocks field (spec.md section 6).
func LineText(in *teal.Instruction) string {
	return strconv.Itoa(in.Line) + ": " + instructionText(in)
}

// BlockShort renders "Bn", the short label used in a path's arrow chain
// and in DOT node labels.
func BlockShort(b *cfg.BasicBlock) string {
	return "B" + strconv.Itoa(b.ID)
}

// ShortPath renders "B0 -> B3 -> ..." for a sequence of blocks.
func ShortPath(blocks []*cfg.BasicBlock) string {
	parts := make([]string, len(blocks))
	for i, b := range blocks {
		parts[i] = BlockShort(b)
	}
	return strings.Join(parts, " -> ")
}

// BlockLines renders every instruction in b as "n: instr", skipping bare
// label markers (they carry no line worth reporting on their own).
func BlockLines(b *cfg.BasicBlock) []string {
	lines := make([]string, 0, len(b.Instructions))
	for _, in := range b.Instructions {
		if in.IsLabel() {
			continue
		}
		lines = append(lines, LineText(in))
	}
	return lines
}

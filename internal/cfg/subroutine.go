package cfg

// MainSubroutineName is the synthetic name of the pseudo-subroutine that
// owns every block reachable from program entry without passing through a
// callsub target (spec.md section 3's "Subroutine" data model: "top-level
// code is treated as an implicit main subroutine").
const MainSubroutineName = "__main__"

// Subroutine is a maximal region of blocks entered only via callsub (or,
// for __main__, via program entry) and exited only via retsub (or, for
// __main__, via a leaf block).
type Subroutine struct {
	Name   string
	IsMain bool

	Entry  *BasicBlock
	Blocks []*BasicBlock

	// ExitBlocks are leaf blocks (return/err/fallthrough off the end)
	// belonging to this subroutine.
	ExitBlocks []*BasicBlock
	// RetsubBlocks are blocks ending in retsub.
	RetsubBlocks []*BasicBlock

	// CallSites are callsub blocks, anywhere in the contract, whose
	// Target is this subroutine's Entry.
	CallSites []*BasicBlock
}

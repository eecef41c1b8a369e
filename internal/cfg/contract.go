package cfg

import (
	"io"

	"github.com/crytic/tealer-go/internal/teal"
)

// BuildFromSource parses TEAL source and builds its CFG in one step, the
// entry point internal/execmodel's contract loader calls for each
// configured contract file.
func BuildFromSource(file string, r io.Reader) (*Contract, error) {
	prog, err := teal.Parse(file, r)
	if err != nil {
		return nil, err
	}
	return Build(file, prog.Version, prog.Instructions)
}

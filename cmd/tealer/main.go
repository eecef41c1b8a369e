// Command tealer is a static analyzer for TEAL contracts and transaction
// groups: it builds each contract's control-flow graph, runs a family of
// per-field dataflow analyses over it, and reports execution paths where
// a safety-critical transaction field is never constrained.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

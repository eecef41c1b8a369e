package main

import (
	"github.com/spf13/cobra"
)

var verbose bool

// newRootCmd builds the command tree: analyze, detectors, cfg. Structured
// as subcommands rather than rtcheck/main.go's flat flag set
// (-lockgraph, -callgraph, -html) because this tool has more than one
// independently useful action.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "tealer",
		Short:         "static analyzer for TEAL contracts and transaction groups",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug-level logging")

	root.AddCommand(newAnalyzeCmd())
	root.AddCommand(newDetectorsCmd())
	root.AddCommand(newCFGCmd())
	return root
}

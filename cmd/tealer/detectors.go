package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crytic/tealer-go/internal/detect"
)

func newDetectorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "detectors",
		Short: "list registered detectors",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, d := range detect.Registered() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-16s %-12s %s (field: %s)\n", d.Name, d.Mode, d.Description, d.Analysis.Key)
			}
			return nil
		},
	}
}

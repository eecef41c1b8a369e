package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/crytic/tealer-go/internal/detect"
	"github.com/crytic/tealer-go/internal/diag"
	"github.com/crytic/tealer-go/internal/execmodel"
	"github.com/crytic/tealer-go/internal/report"
)

func newAnalyzeCmd() *cobra.Command {
	var configPath string
	var detectorNames []string
	var outDir string
	var format string
	var traceDetector string

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "run detectors against every function and group in an execution model",
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "dot" && format != "json" && format != "text" {
				return fmt.Errorf("--format must be dot, json, or text (got %q)", format)
			}
			logger, err := diag.New(verbose)
			if err != nil {
				return err
			}
			defer logger.Sync()

			model, err := execmodel.Load(configPath)
			if err != nil {
				logger.Error("loading execution model", diag.File(configPath))
				return err
			}

			detectors, err := selectDetectors(detectorNames)
			if err != nil {
				return err
			}

			w := &writer{out: cmd.OutOrStdout(), dir: outDir, format: format}
			fatal := false

			for _, contractName := range sortedContractNames(model) {
				rc := model.Contracts[contractName]
				for _, functionName := range sortedFunctionNames(rc) {
					fv := rc.Functions[functionName]
					for _, d := range detectors {
						if !modeAppliesTo(d.Mode, rc.Config.Type) {
							continue
						}
						var trace *detect.DebugTree
						if traceDetector == d.Name {
							trace = &detect.DebugTree{}
						}
						result := detect.DetectMissingTraced(fv.Subroutine, d, nil, nil, trace)
						exec := report.BuildExecutionPaths(result)
						logger.Info("ran detector",
							diag.Contract(contractName), diag.Function(fv.Name), diag.Detector(d.Name))
						name := fmt.Sprintf("%s-%s-%s", contractName, orMain(fv.Name), d.Name)
						if err := w.writeExecutionPaths(name, exec); err != nil {
							logger.Error("writing report", diag.Contract(contractName), diag.Detector(d.Name))
							fatal = true
						}
						if trace != nil {
							if err := w.writeTrace(name, trace); err != nil {
								logger.Error("writing trace", diag.Contract(contractName), diag.Detector(d.Name))
								fatal = true
							}
						}
					}
				}
			}

			for _, group := range model.Groups {
				for _, d := range detectors {
					finding := detect.GroupAware(group, d)
					out := report.BuildGroupTransactionOutput(finding)
					logger.Info("ran group-aware detector", diag.Detector(d.Name))
					name := fmt.Sprintf("group-%s-%s", group.Config.Name, d.Name)
					if err := w.writeGroupTransactionOutput(name, out); err != nil {
						logger.Error("writing group report", diag.Detector(d.Name))
						fatal = true
					}
				}
			}

			if fatal {
				return fmt.Errorf("analyze: one or more reports failed to write")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to the execution-model YAML file")
	cmd.Flags().StringArrayVar(&detectorNames, "detector", nil, "run only this detector (repeatable); default: all registered detectors")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "directory to write reports to; empty means stdout")
	cmd.Flags().StringVar(&format, "format", "text", "output format: dot, json, or text")
	cmd.Flags().StringVar(&traceDetector, "trace-detector", "", "record a DebugTree trace for this detector's single-function runs")
	cmd.MarkFlagRequired("config")
	return cmd
}

func selectDetectors(names []string) ([]*detect.Detector, error) {
	all := detect.Registered()
	if len(names) == 0 {
		return all, nil
	}
	byName := make(map[string]*detect.Detector, len(all))
	for _, d := range all {
		byName[d.Name] = d
	}
	var out []*detect.Detector
	for _, n := range names {
		d, ok := byName[n]
		if !ok {
			return nil, fmt.Errorf("unknown detector %q", n)
		}
		out = append(out, d)
	}
	return out, nil
}

func modeAppliesTo(mode detect.Mode, contractType string) bool {
	switch mode {
	case detect.LogicSigOnly:
		return contractType == "logic_sig"
	case detect.ApplicationOnly:
		return contractType == "application"
	default:
		return true
	}
}

func sortedContractNames(m *execmodel.Model) []string {
	names := make([]string, 0, len(m.Contracts))
	for n := range m.Contracts {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func sortedFunctionNames(rc *execmodel.ResolvedContract) []string {
	names := make([]string, 0, len(rc.Functions))
	for n := range rc.Functions {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func orMain(name string) string {
	if name == "" {
		return "main"
	}
	return name
}

// writer dispatches a report to stdout or a per-artifact file under dir,
// in the requested format.
type writer struct {
	out    io.Writer
	dir    string
	format string
}

// open returns the destination for one named artifact: a no-op-closing
// wrapper around stdout when dir is empty, otherwise a newly created file
// under dir.
func (w *writer) open(name, ext string) (io.WriteCloser, error) {
	if w.dir == "" {
		return nopCloser{w.out}, nil
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, err
	}
	return os.Create(filepath.Join(w.dir, name+"."+ext))
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func (w *writer) writeExecutionPaths(name string, exec report.ExecutionPaths) error {
	switch w.format {
	case "dot":
		dst, err := w.open(name, "dot")
		if err != nil {
			return err
		}
		defer dst.Close()
		return exec.WriteDot(dst, name)
	case "json":
		dst, err := w.open(name, "json")
		if err != nil {
			return err
		}
		defer dst.Close()
		return exec.WriteJSON(dst)
	default: // text
		if len(exec.Paths) == 0 {
			return nil
		}
		dst, err := w.open(name, "txt")
		if err != nil {
			return err
		}
		defer dst.Close()
		fmt.Fprintf(dst, "%s: %d vulnerable path(s)\n", name, len(exec.Paths))
		for _, p := range exec.Paths {
			fmt.Fprintf(dst, "  %s\n", p.Short)
		}
		return nil
	}
}

func (w *writer) writeGroupTransactionOutput(name string, out report.GroupTransactionOutput) error {
	if w.format == "json" {
		dst, err := w.open(name, "json")
		if err != nil {
			return err
		}
		defer dst.Close()
		return out.WriteJSON(dst)
	}
	// dot has no group-level rendering; text and dot both fall back to a
	// text summary for this output shape.
	if len(out.Transactions) == 0 {
		return nil
	}
	dst, err := w.open(name, "txt")
	if err != nil {
		return err
	}
	defer dst.Close()
	fmt.Fprintf(dst, "%s: %d vulnerable transaction(s)\n", name, len(out.Transactions))
	return nil
}

func (w *writer) writeTrace(name string, trace *detect.DebugTree) error {
	dst, err := w.open(name+"-trace", "dot")
	if err != nil {
		return err
	}
	defer dst.Close()
	trace.WriteToDot(dst)
	return nil
}

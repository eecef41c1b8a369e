// Package diag builds the structured logger cmd/tealer uses to report
// load and analysis failures, in place of rtcheck/main.go's warnl/warnp
// (fmt.Printf with a manually formatted position prefix and stack dump).
package diag

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the process-wide logger: human-readable console output at
// info level and above, matching rtcheck's plain-stdout warnings but with
// leveled, structured fields instead of interpolated text. verbose raises
// the level to debug, the structured equivalent of a -v flag.
func New(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.TimeKey = ""
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	return cfg.Build()
}

// File names the source file a diagnostic concerns.
func File(path string) zap.Field { return zap.String("file", path) }

// Line names the source line a diagnostic concerns.
func Line(n int) zap.Field { return zap.Int("line", n) }

// Contract names the contract a diagnostic concerns.
func Contract(name string) zap.Field { return zap.String("contract", name) }

// Function names the dispatch function a diagnostic concerns.
func Function(name string) zap.Field { return zap.String("function", name) }

// Block names the basic block (by ID) a diagnostic concerns.
func Block(id int) zap.Field { return zap.Int("block", id) }

// Detector names the detector that produced a diagnostic.
func Detector(name string) zap.Field { return zap.String("detector", name) }

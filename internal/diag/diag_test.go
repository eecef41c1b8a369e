package diag

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewBuildsLogger(t *testing.T) {
	logger, err := New(false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer logger.Sync()
	logger.Info("analyzing contract", Contract("approval"), Function("do_transfer"), Block(3))
}

func TestNewVerboseEnablesDebug(t *testing.T) {
	logger, err := New(true)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer logger.Sync()
	if !logger.Core().Enabled(zapcore.DebugLevel) {
		t.Errorf("verbose logger should have debug level enabled")
	}
}

func TestFieldHelpers(t *testing.T) {
	fields := []struct {
		name string
		key  string
	}{
		{"File", File("x.teal").Key},
		{"Line", Line(1).Key},
		{"Contract", Contract("c").Key},
		{"Function", Function("f").Key},
		{"Block", Block(0).Key},
		{"Detector", Detector("rekey-to").Key},
	}
	want := map[string]string{
		"File": "file", "Line": "line", "Contract": "contract",
		"Function": "function", "Block": "block", "Detector": "detector",
	}
	for _, f := range fields {
		if f.key != want[f.name] {
			t.Errorf("%s field key = %q, want %q", f.name, f.key, want[f.name])
		}
	}
}

package detect

import (
	"strings"
	"testing"
	"time"

	"github.com/crytic/tealer-go/internal/cfg"
)

func TestDetectMissingTracedRecordsDFS(t *testing.T) {
	sub := buildEntry(t, `#pragma version 8
int 1
return
`)
	trace := &DebugTree{}
	result := DetectMissingTraced(sub, rekeyDetector(), nil, nil, trace)
	if len(result.VulnerablePaths()) != 1 {
		t.Fatalf("vulnerable paths = %d, want 1", len(result.VulnerablePaths()))
	}
	var buf strings.Builder
	trace.WriteToDot(&buf)
	out := buf.String()
	if !strings.Contains(out, "digraph debug") {
		t.Errorf("trace DOT missing digraph header: %s", out)
	}
	if !strings.Contains(out, `"vulnerable"`) {
		t.Errorf("trace DOT missing vulnerable leaf: %s", out)
	}
}

func buildEntry(t *testing.T, src string) *cfg.Subroutine {
	t.Helper()
	c, err := cfg.BuildFromSource("t.teal", strings.NewReader(src))
	if err != nil {
		t.Fatalf("BuildFromSource: %v", err)
	}
	return c.Main()
}

func rekeyDetector() *Detector {
	for _, d := range Registered() {
		if d.Name == "rekey-to" {
			return d
		}
	}
	panic("rekey-to detector not registered")
}

func TestDetectMissingFlagsUncheckedRekeyTo(t *testing.T) {
	sub := buildEntry(t, `#pragma version 8
int 1
return
`)
	result := DetectMissing(sub, rekeyDetector(), nil, nil)
	if len(result.VulnerablePaths()) != 1 {
		t.Fatalf("vulnerable paths = %d, want 1", len(result.VulnerablePaths()))
	}
}

func TestDetectMissingPrunesCheckedRekeyTo(t *testing.T) {
	zero := strings.Repeat("0", 64)
	sub := buildEntry(t, `#pragma version 8
txn RekeyTo
byte 0x`+zero+`
==
assert
int 1
return
`)
	result := DetectMissing(sub, rekeyDetector(), nil, nil)
	if len(result.VulnerablePaths()) != 0 {
		t.Errorf("vulnerable paths = %d, want 0", len(result.VulnerablePaths()))
	}
}

func TestDetectMissingBranchSplitsPaths(t *testing.T) {
	zero := strings.Repeat("0", 64)
	sub := buildEntry(t, `#pragma version 8
txn RekeyTo
byte 0x`+zero+`
==
bz reject
int 1
return
reject:
err
`)
	result := DetectMissing(sub, rekeyDetector(), nil, nil)
	// The fallthrough edge (RekeyTo == zero address) is validated by the
	// bz's own condition; the "reject" edge can't be narrowed (negating a
	// finite address set isn't representable), but its block ends in
	// "err", whose value is Null. Every continuation from the entry is
	// therefore safe, and the walk is pruned before either branch.
	if len(result.VulnerablePaths()) != 0 {
		t.Fatalf("vulnerable paths = %d, want 0", len(result.VulnerablePaths()))
	}
}

func TestDetectMissingFollowsCallsubAndRetsub(t *testing.T) {
	sub := buildEntry(t, `#pragma version 8
callsub check
int 1
return
check:
int 1
retsub
`)
	result := DetectMissing(sub, rekeyDetector(), nil, nil)
	if len(result.VulnerablePaths()) != 1 {
		t.Fatalf("vulnerable paths = %d, want 1", len(result.VulnerablePaths()))
	}
	path := result.VulnerablePaths()[0]
	if len(path.Blocks) < 3 {
		t.Errorf("path through callsub/retsub has %d blocks, want at least 3", len(path.Blocks))
	}
}

func TestDetectMissingLoopTerminates(t *testing.T) {
	sub := buildEntry(t, `#pragma version 8
loop:
int 1
pop
b loop
`)
	done := make(chan struct{})
	go func() {
		DetectMissing(sub, rekeyDetector(), nil, nil)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("DetectMissing did not terminate on a loop")
	}
}

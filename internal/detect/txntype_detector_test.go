package detect

import (
	"strings"
	"testing"
)

func detectorNamed(t *testing.T, name string) *Detector {
	t.Helper()
	for _, d := range Registered() {
		if d.Name == name {
			return d
		}
	}
	t.Fatalf("%s detector not registered", name)
	return nil
}

func TestIsUpdatableFlagsUnguardedOnCompletion(t *testing.T) {
	sub := buildEntry(t, `#pragma version 8
int 1
return
`)
	result := DetectMissing(sub, detectorNamed(t, "is-updatable"), nil, nil)
	if len(result.VulnerablePaths()) != 1 {
		t.Fatalf("vulnerable paths = %d, want 1", len(result.VulnerablePaths()))
	}
}

func TestIsUpdatablePrunesWhenUpdateApplicationRejected(t *testing.T) {
	sub := buildEntry(t, `#pragma version 8
txn OnCompletion
int UpdateApplication
==
bz ok
err
ok:
int 1
return
`)
	result := DetectMissing(sub, detectorNamed(t, "is-updatable"), nil, nil)
	if len(result.VulnerablePaths()) != 0 {
		t.Errorf("vulnerable paths = %d, want 0: OnCompletion==UpdateApplication path aborts with err", len(result.VulnerablePaths()))
	}
}

func TestIsDeletableIgnoresUpdateApplicationGuard(t *testing.T) {
	// Guarding UpdateApplication alone says nothing about DeleteApplication,
	// so is-deletable should still flag this path.
	sub := buildEntry(t, `#pragma version 8
txn OnCompletion
int UpdateApplication
==
bz ok
err
ok:
int 1
return
`)
	result := DetectMissing(sub, detectorNamed(t, "is-deletable"), nil, nil)
	if len(result.VulnerablePaths()) != 1 {
		t.Errorf("vulnerable paths = %d, want 1: guarding UpdateApplication doesn't bound DeleteApplication", len(result.VulnerablePaths()))
	}
}

func TestUnprotectedUpdatableFlagsOpenSender(t *testing.T) {
	sub := buildEntry(t, `#pragma version 8
int 1
return
`)
	result := DetectMissing(sub, detectorNamed(t, "unprotected-updatable"), nil, nil)
	if len(result.VulnerablePaths()) != 1 {
		t.Fatalf("vulnerable paths = %d, want 1", len(result.VulnerablePaths()))
	}
}

func TestUnprotectedUpdatablePrunesWhenSenderRestricted(t *testing.T) {
	addr := strings.Repeat("A", 58) // placeholder address literal, not actually all-zero
	sub := buildEntry(t, `#pragma version 8
txn Sender
addr `+addr+`
==
assert
int 1
return
`)
	result := DetectMissing(sub, detectorNamed(t, "unprotected-updatable"), nil, nil)
	if len(result.VulnerablePaths()) != 0 {
		t.Errorf("vulnerable paths = %d, want 0: Sender is restricted to a single address", len(result.VulnerablePaths()))
	}
}

func TestMissingGroupSizeFlagsUncheckedPath(t *testing.T) {
	sub := buildEntry(t, `#pragma version 8
int 1
return
`)
	result := DetectMissing(sub, detectorNamed(t, "missing-group-size"), nil, nil)
	if len(result.VulnerablePaths()) != 1 {
		t.Fatalf("vulnerable paths = %d, want 1", len(result.VulnerablePaths()))
	}
}

func TestMissingGroupSizePrunesWhenBounded(t *testing.T) {
	sub := buildEntry(t, `#pragma version 8
global GroupSize
int 3
==
assert
int 1
return
`)
	result := DetectMissing(sub, detectorNamed(t, "missing-group-size"), nil, nil)
	if len(result.VulnerablePaths()) != 0 {
		t.Errorf("vulnerable paths = %d, want 0: GroupSize is asserted to equal 3", len(result.VulnerablePaths()))
	}
}

func TestUnprotectedUpdatablePrunesWhenUpdateApplicationRejected(t *testing.T) {
	sub := buildEntry(t, `#pragma version 8
txn OnCompletion
int UpdateApplication
==
bz ok
err
ok:
int 1
return
`)
	result := DetectMissing(sub, detectorNamed(t, "unprotected-updatable"), nil, nil)
	if len(result.VulnerablePaths()) != 0 {
		t.Errorf("vulnerable paths = %d, want 0: UpdateApplication path aborts regardless of Sender", len(result.VulnerablePaths()))
	}
}

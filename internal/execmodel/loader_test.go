package execmodel

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/tools/txtar"
)

// writeArchive materializes a txtar fixture (YAML model + .teal sources)
// into a temp directory and returns the model file's path.
func writeArchive(t *testing.T, data string) string {
	t.Helper()
	a := txtar.Parse([]byte(data))
	dir := t.TempDir()
	var modelPath string
	for _, f := range a.Files {
		p := filepath.Join(dir, f.Name)
		if err := os.WriteFile(p, f.Data, 0o644); err != nil {
			t.Fatalf("write %s: %v", f.Name, err)
		}
		if filepath.Ext(f.Name) == ".yaml" {
			modelPath = p
		}
	}
	if modelPath == "" {
		t.Fatal("fixture has no .yaml model file")
	}
	return modelPath
}

const singleContractFixture = `
-- model.yaml --
name: single
contracts:
  - name: approval
    file: approval.teal
    type: application
groups:
  - name: call
    transactions:
      - contract: approval
-- approval.teal --
#pragma version 8
txn Fee
int 1000
<=
assert
int 1
return
`

func TestLoadResolvesContractAndGroup(t *testing.T) {
	path := writeArchive(t, singleContractFixture)
	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	rc, ok := m.Contracts["approval"]
	if !ok {
		t.Fatalf("contract %q not resolved", "approval")
	}
	if rc.CFG.Main() == nil {
		t.Fatalf("contract has no main subroutine")
	}
	if len(m.Groups) != 1 || len(m.Groups[0].Transactions) != 1 {
		t.Fatalf("groups = %+v, want one group with one transaction", m.Groups)
	}
	txn := m.Groups[0].Transactions[0]
	if txn.Contract != rc {
		t.Errorf("group transaction contract mismatch")
	}
	if txn.Index != 0 {
		t.Errorf("index = %d, want 0", txn.Index)
	}
}

const dispatchFixture = `
-- model.yaml --
name: dispatch
contracts:
  - name: approval
    file: approval.teal
    type: application
    functions:
      - name: transfer
        path: [do_transfer]
groups:
  - name: call
    transactions:
      - contract: approval
        function: transfer
-- approval.teal --
#pragma version 8
txn ApplicationID
bz create
b do_transfer
create:
int 1
return
do_transfer:
int 1
return
`

func TestLoadResolvesDispatchPath(t *testing.T) {
	path := writeArchive(t, dispatchFixture)
	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	fv := m.Contracts["approval"].Functions["transfer"]
	if fv == nil {
		t.Fatalf("function %q not resolved", "transfer")
	}
	if fv.Subroutine == nil || fv.Subroutine.Name != "do_transfer" {
		t.Errorf("resolved subroutine = %+v, want do_transfer", fv.Subroutine)
	}
}

func TestLoadUnknownContractReference(t *testing.T) {
	path := writeArchive(t, `
-- model.yaml --
name: bad
contracts:
  - name: approval
    file: approval.teal
    type: application
groups:
  - name: call
    transactions:
      - contract: nonexistent
-- approval.teal --
#pragma version 8
int 1
return
`)
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for unknown contract reference")
	}
	ee, ok := err.(*Error)
	if !ok || ee.Kind != ErrUnknownReference {
		t.Errorf("err = %v, want ErrUnknownReference", err)
	}
}

func TestLoadUnknownDispatchSubroutine(t *testing.T) {
	path := writeArchive(t, `
-- model.yaml --
name: bad
contracts:
  - name: approval
    file: approval.teal
    type: application
    functions:
      - name: transfer
        path: [missing_sub]
groups: []
-- approval.teal --
#pragma version 8
int 1
return
`)
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for unresolvable dispatch subroutine")
	}
	ee, ok := err.(*Error)
	if !ok || ee.Kind != ErrUnknownReference {
		t.Errorf("err = %v, want ErrUnknownReference", err)
	}
}

func TestLoadMissingContractType(t *testing.T) {
	path := writeArchive(t, `
-- model.yaml --
name: bad
contracts:
  - name: approval
    file: approval.teal
groups: []
-- approval.teal --
#pragma version 8
int 1
return
`)
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for missing contract type")
	}
	ee, ok := err.(*Error)
	if !ok || ee.Kind != ErrMissingField {
		t.Errorf("err = %v, want ErrMissingField", err)
	}
}

func TestRelativeOffset(t *testing.T) {
	g := &ResolvedGroup{}
	a := &GroupTransaction{Index: 0, Group: g}
	b := &GroupTransaction{Index: 2, Group: g}
	if off := a.RelativeOffset(b); off != 2 {
		t.Errorf("a.RelativeOffset(b) = %d, want 2", off)
	}
	if off := b.RelativeOffset(a); off != -2 {
		t.Errorf("b.RelativeOffset(a) = %d, want -2", off)
	}
}

package detect

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/tools/txtar"

	"github.com/crytic/tealer-go/internal/execmodel"
)

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

const typedGroupFixture = `
-- model.yaml --
name: typed
contracts:
  - name: approval
    file: approval.teal
    type: application
groups:
  - name: call
    transactions:
      - contract: approval
        txn_type: appl
-- approval.teal --
#pragma version 8
int 1
return
`

func TestGroupAwareTypeFilterExcludesNonMatchingType(t *testing.T) {
	path := writeArchive(t, typedGroupFixture)
	m, err := execmodel.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	d := *rekeyDetector()
	d.TypeFilter = map[string]bool{"pay": true}
	finding := GroupAware(m.Groups[0], &d)
	if len(finding.Vulnerable) != 0 {
		t.Fatalf("Vulnerable = %v, want none: transaction type appl does not match filter {pay}", finding.Vulnerable)
	}
}

func TestGroupAwareTypeFilterIncludesMatchingType(t *testing.T) {
	path := writeArchive(t, typedGroupFixture)
	m, err := execmodel.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	d := *rekeyDetector()
	d.TypeFilter = map[string]bool{"appl": true}
	finding := GroupAware(m.Groups[0], &d)
	if len(finding.Vulnerable) != 1 {
		t.Fatalf("Vulnerable = %v, want 1 entry", finding.Vulnerable)
	}
}

func TestGroupAwareRejectsUnknownTxnType(t *testing.T) {
	const bad = `
-- model.yaml --
name: typed
contracts:
  - name: approval
    file: approval.teal
    type: application
groups:
  - name: call
    transactions:
      - contract: approval
        txn_type: bogus
-- approval.teal --
#pragma version 8
int 1
return
`
	path := writeArchive(t, bad)
	_, err := execmodel.Load(path)
	if err == nil {
		t.Fatal("expected error for unknown txn_type")
	}
	if !strings.Contains(err.Error(), "txn_type") {
		t.Errorf("error = %v, want mention of txn_type", err)
	}
}

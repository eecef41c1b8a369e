package report

import (
	"io"
	"sort"

	jsoniter "github.com/json-iterator/go"

	"github.com/crytic/tealer-go/internal/detect"
)

// VulnerableTransaction is one entry of GroupTransactionOutput's findings:
// the transaction's position in the group and the contract(s) a vulnerable
// path through it reached. Reported as a list per spec.md section 6 even
// though internal/execmodel's single-contract-per-position simplification
// (see DESIGN.md) means this build only ever reaches exactly one.
type VulnerableTransaction struct {
	Index     int      `json:"index"`
	Function  string   `json:"function"`
	Contracts []string `json:"contracts"`
}

// GroupTransactionOutput is the group-aware detector output shape:
// operation name plus the vulnerable transactions found, each with the
// contract(s) reached.
type GroupTransactionOutput struct {
	Check        string                  `json:"check"`
	Group        string                  `json:"group"`
	Transactions []VulnerableTransaction `json:"transactions"`
}

// BuildGroupTransactionOutput assembles the JSON-ready report from one
// detector's group-aware finding.
func BuildGroupTransactionOutput(finding detect.GroupFinding) GroupTransactionOutput {
	out := GroupTransactionOutput{
		Check: finding.Detector.Name,
		Group: finding.Group.Config.Name,
	}
	for t, contract := range finding.Vulnerable {
		name := ""
		if t.Function != nil {
			name = t.Function.Name
		}
		out.Transactions = append(out.Transactions, VulnerableTransaction{
			Index:     t.Index,
			Function:  name,
			Contracts: []string{contract.Config.Name},
		})
	}
	sort.Slice(out.Transactions, func(i, j int) bool {
		return out.Transactions[i].Index < out.Transactions[j].Index
	})
	return out
}

// WriteJSON encodes the report with json-iterator's standard-library-
// compatible config.
func (g GroupTransactionOutput) WriteJSON(w io.Writer) error {
	return jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(w).Encode(g)
}

package detect

import (
	"github.com/crytic/tealer-go/internal/context"
	"github.com/crytic/tealer-go/internal/execmodel"
)

// GroupFinding is one detector's result over one resolved group: which
// transactions, if any, are vulnerable, and which contracts ran for each.
type GroupFinding struct {
	Group      *execmodel.ResolvedGroup
	Detector   *Detector
	Vulnerable map[*execmodel.GroupTransaction]*execmodel.ResolvedContract
}

func modeMatches(mode Mode, contractType string) bool {
	switch mode {
	case LogicSigOnly:
		return contractType == "logic_sig"
	case ApplicationOnly:
		return contractType == "application"
	default:
		return true
	}
}

// protected runs DetectMissing against sub with the given analysis
// override and reports whether every leaf was validated (no vulnerable
// path survived) — the boolean contract_checks_its_field /
// contract_checks_txn_at_absolute_index / contract_checks_using_relative_
// index all reduce to in spec.md section 4.7.
func protected(sub *execmodel.FunctionView, d Detector, absoluteIndex *int) bool {
	if sub == nil || sub.Subroutine == nil {
		return false
	}
	result := DetectMissing(sub.Subroutine, &d, absoluteIndex, nil)
	return len(result.VulnerablePaths()) == 0
}

// GroupAware runs d over every transaction in group, per spec.md section
// 4.7: a transaction is safe if its own contract checks the field (with
// its absolute index folded in), or if another group member's contract
// checks the field at this transaction's absolute or relative position;
// otherwise it's recorded as vulnerable.
func GroupAware(group *execmodel.ResolvedGroup, d *Detector) GroupFinding {
	finding := GroupFinding{Group: group, Detector: d, Vulnerable: make(map[*execmodel.GroupTransaction]*execmodel.ResolvedContract)}

	for _, t := range group.Transactions {
		if !modeMatches(d.Mode, t.Contract.Config.Type) {
			continue
		}
		if !d.TypeMatches(t.Type) {
			continue
		}
		idx := t.Index
		if protected(t.Function, *d, &idx) {
			continue
		}

		peerProtected := false
		for _, o := range group.Transactions {
			if o == t {
				continue
			}
			if !modeMatches(d.Mode, o.Contract.Config.Type) {
				continue
			}
			oIdx := o.Index

			absDetector := *d
			absDetector.Analysis = context.AtAbsoluteIndex(d.Analysis, t.Index)
			if d.Extra != nil {
				extra := context.AtAbsoluteIndex(*d.Extra, t.Index)
				absDetector.Extra = &extra
			}
			if protected(o.Function, absDetector, &oIdx) {
				peerProtected = true
				break
			}

			relOffset := o.RelativeOffset(t)
			relDetector := *d
			relDetector.Analysis = context.AtRelativeOffset(d.Analysis, relOffset)
			if d.Extra != nil {
				extra := context.AtRelativeOffset(*d.Extra, relOffset)
				relDetector.Extra = &extra
			}
			if protected(o.Function, relDetector, &oIdx) {
				peerProtected = true
				break
			}
		}
		if peerProtected {
			continue
		}

		finding.Vulnerable[t] = t.Contract
	}

	return finding
}

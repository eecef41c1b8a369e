// Package detect implements the two detector drivers spec.md sections 4.6
// and 4.7 describe: a single-function DFS that finds paths reaching a
// leaf without the tracked field ever being guaranteed safe, and a
// group-aware driver layering self/peer protection over it.
package detect

import (
	"github.com/crytic/tealer-go/internal/context"
)

// Mode restricts which contract kinds a detector applies to.
type Mode int

const (
	Either Mode = iota
	LogicSigOnly
	ApplicationOnly
)

func (m Mode) String() string {
	switch m {
	case LogicSigOnly:
		return "logic_sig"
	case ApplicationOnly:
		return "application"
	default:
		return "either"
	}
}

// Detector names one vulnerability class: the field it tracks, the mode
// it applies to, and the predicate recognizing a value as "safe" — the
// field cannot take the vulnerable value given this constraint.
type Detector struct {
	Name        string
	Description string
	Help        string
	Mode        Mode
	Analysis    context.FieldAnalysis
	Safe        func(v context.Value) bool
	// TypeFilter, if non-empty, restricts GroupAware (spec.md section
	// 4.7 step 2) to transactions whose declared type is in the set;
	// a transaction with no declared type always matches.
	TypeFilter map[string]bool

	// Extra and PairSafe turn this into a two-field detector: Extra names
	// a second field tracked alongside Analysis (e.g. Sender, for
	// checks that combine "who can call this" with "what this call
	// does"), and PairSafe replaces Safe, receiving both fields'
	// guaranteed values at the same block. Both must be set together, or
	// neither.
	Extra    *context.FieldAnalysis
	PairSafe func(v, extra context.Value) bool
}

// TypeMatches reports whether txnType passes d's TypeFilter.
func (d *Detector) TypeMatches(txnType string) bool {
	if len(d.TypeFilter) == 0 || txnType == "" {
		return true
	}
	return d.TypeFilter[txnType]
}

func addressSafe(v context.Value) bool {
	return context.IsAssertedSafe(v)
}

func feeBounded(v context.Value) bool {
	f, ok := v.(context.FeeValue)
	if !ok {
		return false
	}
	return !f.Unbounded
}

// cannotBeType reports whether t is excluded from every value v's
// transaction-type lattice still admits on this path, grounded on
// tealer/detectors/is_updatable.py's "not t in block_ctx.transaction_types"
// safety check.
func cannotBeType(t context.TxnType) func(v context.Value) bool {
	return func(v context.Value) bool {
		return !context.TxnTypeIncludes(v, t)
	}
}

// senderRestricted reports whether v constrains Sender to a specific set
// of addresses (possibly empty, on a path that cannot complete) rather
// than leaving it unconstrained.
func senderRestricted(v context.Value) bool {
	av, ok := v.(context.AddressValue)
	if !ok {
		return false
	}
	return !av.Any
}

// unprotectedByType builds the two-field PairSafe predicate
// tealer/detectors/anyone_can_update.py and anyone_can_delete.py share:
// safe unless t is still reachable AND Sender is left unconstrained.
func unprotectedByType(t context.TxnType) func(v, extra context.Value) bool {
	return func(v, extra context.Value) bool {
		return cannotBeType(t)(v) || senderRestricted(extra)
	}
}

// Registered lists the detectors cmd/tealer's "detectors" subcommand and
// "analyze" (when no --detector flags are given) use by default.
func Registered() []*Detector {
	return []*Detector{
		{
			Name:        "rekey-to",
			Description: "contract does not verify RekeyTo is the zero address on every path",
			Help:        "an unchecked RekeyTo lets any transaction rekey the signing account to an address the attacker controls",
			Mode:        Either,
			Analysis:    context.RekeyToAnalysis,
			Safe:        addressSafe,
		},
		{
			Name:        "close-account",
			Description: "contract does not verify CloseRemainderTo is the zero address on every path",
			Help:        "an unchecked CloseRemainderTo lets a transaction drain the account's Algo balance to an attacker address on close",
			Mode:        Either,
			Analysis:    context.CloseRemainderAnalysis,
			Safe:        addressSafe,
		},
		{
			Name:        "close-asset",
			Description: "contract does not verify AssetCloseTo is the zero address on every path",
			Help:        "an unchecked AssetCloseTo lets a transaction send the account's entire asset balance to an attacker address on close",
			Mode:        Either,
			Analysis:    context.AssetCloseToAnalysis,
			Safe:        addressSafe,
		},
		{
			Name:        "unbounded-fee",
			Description: "contract does not bound Fee on every path",
			Help:        "an unbounded Fee lets a malicious group member set this transaction's fee arbitrarily high, draining the signer",
			Mode:        Either,
			Analysis:    context.FeeAnalysis,
			Safe:        feeBounded,
		},
		{
			Name:        "is-updatable",
			Description: "application does not reject UpdateApplication calls on every path",
			Help:        "an approved UpdateApplication call replaces the application's approval and clear programs with attacker-supplied code",
			Mode:        ApplicationOnly,
			Analysis:    context.TxnTypeAnalysis,
			Safe:        cannotBeType(context.TxnTypeApplUpdateApplication),
		},
		{
			Name:        "is-deletable",
			Description: "application does not reject DeleteApplication calls on every path",
			Help:        "an approved DeleteApplication call removes the application, along with any access controls it enforced",
			Mode:        ApplicationOnly,
			Analysis:    context.TxnTypeAnalysis,
			Safe:        cannotBeType(context.TxnTypeApplDeleteApplication),
		},
		{
			Name:        "unprotected-updatable",
			Description: "application allows UpdateApplication calls from an unconstrained Sender",
			Help:        "combining an unchecked OnCompletion with an unchecked Sender lets any address replace the application's code",
			Mode:        ApplicationOnly,
			Analysis:    context.TxnTypeAnalysis,
			Extra:       &context.SenderAnalysis,
			PairSafe:    unprotectedByType(context.TxnTypeApplUpdateApplication),
		},
		{
			Name:        "missing-group-size",
			Description: "contract never bounds GroupSize on any path",
			Help:        "an absolute or relative group-index check is meaningless against a group whose size was never constrained",
			Mode:        Either,
			Analysis:    context.GroupSizeAnalysis,
			Safe:        context.GroupSizeBounded,
		},
		{
			Name:        "unprotected-deletable",
			Description: "application allows DeleteApplication calls from an unconstrained Sender",
			Help:        "combining an unchecked OnCompletion with an unchecked Sender lets any address delete the application",
			Mode:        ApplicationOnly,
			Analysis:    context.TxnTypeAnalysis,
			Extra:       &context.SenderAnalysis,
			PairSafe:    unprotectedByType(context.TxnTypeApplDeleteApplication),
		},
	}
}

package execmodel

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/crytic/tealer-go/internal/cfg"
)

// Model is the fully resolved execution model: every contract parsed and
// its CFG built, every function's dispatch path resolved to the
// subroutine it enters, and every group's transactions bound to a
// contract (and, for applications, a function).
type Model struct {
	Config    *Config
	Contracts map[string]*ResolvedContract
	Groups    []*ResolvedGroup
}

// ResolvedContract is one contract's parsed CFG plus its named dispatch
// functions.
type ResolvedContract struct {
	Config    ContractConfig
	CFG       *cfg.Contract
	Functions map[string]*FunctionView
}

// FunctionView is one entry point into a contract: the subroutine where
// its logic begins, after any dispatch routing in __main__.
type FunctionView struct {
	Name       string
	Path       []string
	Subroutine *cfg.Subroutine
}

// ResolvedGroup is one transaction group with every member bound to a
// contract/function and its absolute position.
type ResolvedGroup struct {
	Config       GroupConfig
	Transactions []*GroupTransaction
}

// GroupTransaction is one position within a resolved group.
type GroupTransaction struct {
	Index    int
	Type     string // pay/keyreg/acfg/axfer/afrz/appl/txn, or "" if unconstrained
	Contract *ResolvedContract
	Function *FunctionView // for a contract with no functions, the unnamed view of __main__
	Group    *ResolvedGroup
}

// RelativeOffset returns other's position minus this transaction's
// position, the value a "gtxn (self ± k)" style relative access encodes
// (spec.md section 4.5's IndexRelative).
func (t *GroupTransaction) RelativeOffset(other *GroupTransaction) int {
	return other.Index - t.Index
}

// Load reads, parses, resolves, and validates the execution model at
// path, building every referenced contract's CFG along the way.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Kind: ErrReadFailure, Path: path, Message: err.Error()}
	}
	cfgDoc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return Resolve(cfgDoc, filepath.Dir(path))
}

// Resolve builds a Model from an already-parsed Config. baseDir resolves
// each contract's File relative path.
func Resolve(doc *Config, baseDir string) (*Model, error) {
	if doc.Name == "" {
		return nil, &Error{Kind: ErrMissingField, Path: "name", Message: "execution model must have a name"}
	}
	m := &Model{Config: doc, Contracts: make(map[string]*ResolvedContract, len(doc.Contracts))}

	for _, cc := range doc.Contracts {
		if cc.Name == "" {
			return nil, &Error{Kind: ErrMissingField, Path: "contracts[].name", Message: "contract must have a name"}
		}
		if cc.File == "" {
			return nil, &Error{Kind: ErrMissingField, Path: fmt.Sprintf("contracts[%s].file", cc.Name), Message: "contract must have a file"}
		}
		if cc.Type != "logic_sig" && cc.Type != "application" {
			return nil, &Error{Kind: ErrMissingField, Path: fmt.Sprintf("contracts[%s].type", cc.Name), Message: "type must be logic_sig or application"}
		}
		path := cc.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, &Error{Kind: ErrReadFailure, Path: path, Message: err.Error()}
		}
		built, err := cfg.BuildFromSource(path, f)
		f.Close()
		if err != nil {
			return nil, err
		}

		rc := &ResolvedContract{Config: cc, CFG: built, Functions: make(map[string]*FunctionView, len(cc.Functions))}
		if len(cc.Functions) == 0 {
			rc.Functions[""] = &FunctionView{Name: "", Subroutine: built.Main()}
		}
		for _, fc := range cc.Functions {
			sub := built.Main()
			if len(fc.Path) > 0 {
				last := fc.Path[len(fc.Path)-1]
				s, ok := built.Subroutines[last]
				if !ok {
					return nil, &Error{Kind: ErrUnknownReference, Path: fmt.Sprintf("contracts[%s].functions[%s].path", cc.Name, fc.Name), Message: fmt.Sprintf("subroutine %q not found in contract", last)}
				}
				sub = s
			}
			rc.Functions[fc.Name] = &FunctionView{Name: fc.Name, Path: fc.Path, Subroutine: sub}
		}
		m.Contracts[cc.Name] = rc
	}

	for _, gc := range doc.Groups {
		if len(gc.Transactions) == 0 {
			return nil, &Error{Kind: ErrMissingField, Path: fmt.Sprintf("groups[%s].transactions", gc.Name), Message: "group must have at least one transaction"}
		}
		rg := &ResolvedGroup{Config: gc}
		for i, tc := range gc.Transactions {
			rc, ok := m.Contracts[tc.Contract]
			if !ok {
				return nil, &Error{Kind: ErrUnknownReference, Path: fmt.Sprintf("groups[%s].transactions[%d].contract", gc.Name, i), Message: fmt.Sprintf("contract %q not defined", tc.Contract)}
			}
			fv, ok := rc.Functions[tc.Function]
			if !ok {
				return nil, &Error{Kind: ErrUnknownReference, Path: fmt.Sprintf("groups[%s].transactions[%d].function", gc.Name, i), Message: fmt.Sprintf("function %q not defined on contract %q", tc.Function, tc.Contract)}
			}
			if !validTxnTypes[tc.TxnType] {
				return nil, &Error{Kind: ErrMissingField, Path: fmt.Sprintf("groups[%s].transactions[%d].txn_type", gc.Name, i), Message: fmt.Sprintf("unknown transaction type %q", tc.TxnType)}
			}
			rg.Transactions = append(rg.Transactions, &GroupTransaction{Index: i, Type: tc.TxnType, Contract: rc, Function: fv, Group: rg})
		}
		m.Groups = append(m.Groups, rg)
	}

	return m, nil
}

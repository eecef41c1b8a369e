// Package execmodel loads and resolves the YAML execution model: which
// contracts exist, which functions/dispatch paths they expose, and which
// transaction groups exercise them — the input spec.md section 4.8
// describes as "Execution-Model Resolution".
//
// Grounded on DanDo385-go-edu's config.Load/Validate shape (read file,
// unmarshal, validate, return typed error), generalized from a flat
// service config to a model with cross-references (a group transaction's
// "function" names a contract's dispatch path) that Resolve must resolve.
package execmodel

import "gopkg.in/yaml.v3"

// Config is the top-level execution model document.
type Config struct {
	Name      string             `yaml:"name"`
	Contracts []ContractConfig   `yaml:"contracts"`
	Groups    []GroupConfig      `yaml:"groups"`
}

// ContractConfig names a contract source file and its dispatch surface.
type ContractConfig struct {
	Name        string             `yaml:"name"`
	File        string             `yaml:"file"`
	Type        string             `yaml:"type"` // "logic_sig" or "application"
	Version     int                `yaml:"version"`
	Subroutines []string           `yaml:"subroutines"`
	Functions   []FunctionConfig   `yaml:"functions"`
}

// FunctionConfig is one dispatch path through an application contract:
// the sequence of subroutine names executed for a given ApplicationArgs
// selector, or empty for a logic signature's single top-level path.
type FunctionConfig struct {
	Name string   `yaml:"name"`
	Path []string `yaml:"path"`
}

// GroupConfig is one transaction group to analyze.
type GroupConfig struct {
	Name         string                `yaml:"name"`
	Transactions []GroupTransactionConfig `yaml:"transactions"`
}

// GroupTransactionConfig binds one position in a transaction group to a
// contract and, for applications, a specific dispatch function.
type GroupTransactionConfig struct {
	Contract string `yaml:"contract"`
	Function string `yaml:"function"`
	// TxnType is the transaction's type (spec.md section 6's txn_type:
	// one of pay/keyreg/acfg/axfer/afrz/appl/txn), optional — empty
	// means unconstrained and matches every detector's type filter.
	TxnType string `yaml:"txn_type"`
}

// validTxnTypes are the transaction type tags spec.md section 6's
// configuration surface accepts for a group transaction's txn_type.
var validTxnTypes = map[string]bool{
	"":       true,
	"pay":    true,
	"keyreg": true,
	"acfg":   true,
	"axfer":  true,
	"afrz":   true,
	"appl":   true,
	"txn":    true,
}

// Parse unmarshals raw YAML bytes into a Config without validating it.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &Error{Kind: ErrMalformedYAML, Message: err.Error()}
	}
	return &cfg, nil
}

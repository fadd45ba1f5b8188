package models

import "github.com/ethereum/go-ethereum/common"

// ActionTemplate describes one curated DeFi action and its execution and failure semantics
type ActionTemplate struct {
	ID        string         `json:"id" yaml:"id" validate:"required"`
	Title     string         `json:"title" yaml:"title" validate:"required"`
	ChainID   uint64         `json:"chainId" yaml:"chainId" validate:"required"`
	ChainName string         `json:"chainName" yaml:"chainName"` // display only
	Category  Category       `json:"category" yaml:"category" validate:"required,oneof=Lending Staking Vault"`
	Status    TemplateStatus `json:"status" yaml:"status" validate:"required,oneof=active deprecated demo-only"`
	Version   string         `json:"version" yaml:"version"` // display only, never compared

	// Execution binding
	Executable   bool            `json:"executable" yaml:"executable"`
	ToToken      string          `json:"toToken,omitempty" yaml:"toToken,omitempty" validate:"omitempty,evmaddress"`
	FromDefaults *SourceDefaults `json:"fromDefaults,omitempty" yaml:"fromDefaults,omitempty"`

	// Semantics
	Intent      string        `json:"intent" yaml:"intent" validate:"required"`
	WhatHappens []string      `json:"whatHappens" yaml:"whatHappens"`
	YouReceive  string        `json:"youReceive" yaml:"youReceive"`
	CanFail     []FailureMode `json:"canFail" yaml:"canFail" validate:"dive"`

	// Lifecycle
	ReplacementID string `json:"replacementId,omitempty" yaml:"replacementId,omitempty"`
}

// SourceDefaults pre-fills the source side of a transfer
type SourceDefaults struct {
	ChainID uint64 `json:"chainId" yaml:"chainId" validate:"required"`
	Token   string `json:"token" yaml:"token" validate:"required,evmaddress"`
}

// FailureMode is the user-facing copy for one failure kind
type FailureMode struct {
	Code        FailureCode `json:"code" yaml:"code" validate:"required,failurecode"`
	Label       string      `json:"label" yaml:"label" validate:"required"`
	UserMessage string      `json:"userMessage" yaml:"userMessage" validate:"required"`
}

// IsExecutable reports whether the template carries everything the compiler needs.
func (t ActionTemplate) IsExecutable() bool {
	return t.Executable && t.ToToken != ""
}

// HasReplacement reports whether the template names a successor.
func (t ActionTemplate) HasReplacement() bool {
	return t.ReplacementID != ""
}

// FailureMessage returns the template's own copy for code, or the taxonomy default when it has none.
func (t ActionTemplate) FailureMessage(code FailureCode) FailureMode {
	for _, mode := range t.CanFail {
		if mode.Code == code {
			return mode
		}
	}
	return DefaultFailureMode(code)
}

// Clone returns a deep copy so snapshot records can be handed out without sharing slices.
func (t ActionTemplate) Clone() ActionTemplate {
	clone := t
	if t.FromDefaults != nil {
		defaults := *t.FromDefaults
		clone.FromDefaults = &defaults
	}
	if t.WhatHappens != nil {
		clone.WhatHappens = append([]string(nil), t.WhatHappens...)
	}
	if t.CanFail != nil {
		clone.CanFail = append([]FailureMode(nil), t.CanFail...)
	}
	return clone
}

// Normalize rewrites token addresses into EIP-55 checksum form. Invalid addresses are left untouched for validation to report.
func (t *ActionTemplate) Normalize() {
	if common.IsHexAddress(t.ToToken) {
		t.ToToken = common.HexToAddress(t.ToToken).Hex()
	}
	if t.FromDefaults != nil && common.IsHexAddress(t.FromDefaults.Token) {
		t.FromDefaults.Token = common.HexToAddress(t.FromDefaults.Token).Hex()
	}
}

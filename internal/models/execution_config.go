package models

// ExecutionConfig is the transfer-shaped binding handed to the external execution engine.
// It is a declarative description only; chain and token existence is the engine's concern.
type ExecutionConfig struct {
	Variant           string            `json:"variant"`
	Subvariant        string            `json:"subvariant"`
	SubvariantOptions SubvariantOptions `json:"subvariantOptions"`
	DestinationChain  uint64            `json:"destinationChain"`
	DestinationToken  string            `json:"destinationToken"`
	SourceChain       *uint64           `json:"sourceChain,omitempty"`
	SourceToken       string            `json:"sourceToken,omitempty"`
}

type SubvariantOptions struct {
	Custom string `json:"custom"`
}

// HasSource reports whether the source side was pre-filled.
func (c ExecutionConfig) HasSource() bool {
	return c.SourceChain != nil
}

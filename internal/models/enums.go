package models

import (
	"fmt"
	"strings"
)

// TemplateStatus controls whether a template is offered to users and whether it may be compiled.
type TemplateStatus string

// Category is the closed set of action categories shown in the picker.
type Category string

// FailureCode is the closed failure taxonomy every engine error is mapped onto before it reaches a user.
type FailureCode string

const (
	TemplateStatusActive     TemplateStatus = "active"
	TemplateStatusDeprecated TemplateStatus = "deprecated"
	TemplateStatusDemoOnly   TemplateStatus = "demo-only"
)

const (
	CategoryLending Category = "Lending"
	CategoryStaking Category = "Staking"
	CategoryVault   Category = "Vault"
)

const (
	FailureRouteUnavailable    FailureCode = "ROUTE_UNAVAILABLE"
	FailureSimulationFailed    FailureCode = "SIMULATION_FAILED"
	FailureUserRejected        FailureCode = "USER_REJECTED"
	FailureInsufficientFunds   FailureCode = "INSUFFICIENT_FUNDS"
	FailureApprovalFailed      FailureCode = "APPROVAL_FAILED"
	FailureExecutionReverted   FailureCode = "EXECUTION_REVERTED"
	FailureProtocolUnavailable FailureCode = "PROTOCOL_UNAVAILABLE"
	FailureUnknown             FailureCode = "UNKNOWN"
)

var templateStatuses = []TemplateStatus{TemplateStatusActive, TemplateStatusDeprecated, TemplateStatusDemoOnly}

var categories = []Category{CategoryLending, CategoryStaking, CategoryVault}

var failureCodes = []FailureCode{
	FailureRouteUnavailable,
	FailureSimulationFailed,
	FailureUserRejected,
	FailureInsufficientFunds,
	FailureApprovalFailed,
	FailureExecutionReverted,
	FailureProtocolUnavailable,
	FailureUnknown,
}

// defaultFailureModes is the copy used when a template does not carry its own entry for a code.
var defaultFailureModes = map[FailureCode]FailureMode{
	FailureRouteUnavailable: {
		Code:        FailureRouteUnavailable,
		Label:       "No route available",
		UserMessage: "We couldn't find a route for your selected amount. Try a different amount or asset.",
	},
	FailureSimulationFailed: {
		Code:        FailureSimulationFailed,
		Label:       "Simulation failed",
		UserMessage: "This action can't be guaranteed right now. Please try again later.",
	},
	FailureUserRejected: {
		Code:        FailureUserRejected,
		Label:       "User rejected",
		UserMessage: "Transaction was rejected in your wallet.",
	},
	FailureInsufficientFunds: {
		Code:        FailureInsufficientFunds,
		Label:       "Insufficient funds",
		UserMessage: "Your balance is too low to cover this amount and network fees.",
	},
	FailureApprovalFailed: {
		Code:        FailureApprovalFailed,
		Label:       "Approval failed",
		UserMessage: "The token approval did not go through. Nothing was moved from your wallet.",
	},
	FailureExecutionReverted: {
		Code:        FailureExecutionReverted,
		Label:       "Execution reverted",
		UserMessage: "The protocol rejected the transaction. Your funds remain in your wallet.",
	},
	FailureProtocolUnavailable: {
		Code:        FailureProtocolUnavailable,
		Label:       "Protocol unavailable",
		UserMessage: "This market is temporarily unavailable (paused or capped).",
	},
	FailureUnknown: {
		Code:        FailureUnknown,
		Label:       "Something went wrong",
		UserMessage: "The action could not be completed. Your funds remain in your wallet.",
	},
}

// ParseTemplateStatus returns an error for anything outside the closed status set.
func ParseTemplateStatus(s string) (TemplateStatus, error) {
	for _, status := range templateStatuses {
		if string(status) == s {
			return status, nil
		}
	}
	return "", fmt.Errorf("%w: status %q (expected one of %s)", ErrUnknownEnumValue, s, joinValues(templateStatuses))
}

func (s TemplateStatus) Valid() bool {
	_, err := ParseTemplateStatus(string(s))
	return err == nil
}

func (s *TemplateStatus) UnmarshalText(text []byte) error {
	parsed, err := ParseTemplateStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseCategory returns an error for anything outside the closed category set.
func ParseCategory(s string) (Category, error) {
	for _, category := range categories {
		if string(category) == s {
			return category, nil
		}
	}
	return "", fmt.Errorf("%w: category %q (expected one of %s)", ErrUnknownEnumValue, s, joinValues(categories))
}

func (c Category) Valid() bool {
	_, err := ParseCategory(string(c))
	return err == nil
}

func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseFailureCode returns an error for anything outside the failure taxonomy.
func ParseFailureCode(s string) (FailureCode, error) {
	for _, code := range failureCodes {
		if string(code) == s {
			return code, nil
		}
	}
	return "", fmt.Errorf("%w: failure code %q (expected one of %s)", ErrUnknownEnumValue, s, joinValues(failureCodes))
}

func (c FailureCode) Valid() bool {
	_, err := ParseFailureCode(string(c))
	return err == nil
}

func (c *FailureCode) UnmarshalText(text []byte) error {
	parsed, err := ParseFailureCode(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// FailureCodes lists the taxonomy in declaration order.
func FailureCodes() []FailureCode {
	codes := make([]FailureCode, len(failureCodes))
	copy(codes, failureCodes)
	return codes
}

// DefaultFailureMode returns the generic label and message for a code. Unknown codes fall back to UNKNOWN.
func DefaultFailureMode(code FailureCode) FailureMode {
	if mode, ok := defaultFailureModes[code]; ok {
		return mode
	}
	return defaultFailureModes[FailureUnknown]
}

func joinValues[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}

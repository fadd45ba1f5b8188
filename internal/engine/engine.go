package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/rxtech-lab/recipes-mcp/internal/models"
)

// Engine executes a compiled template. The registry never builds calldata itself; adapters for the
// real swap/bridge engine implement this interface.
type Engine interface {
	Execute(ctx context.Context, req ExecutionRequest) (*ExecutionReceipt, error)
}

type ExecutionRequest struct {
	TemplateID string
	Config     *models.ExecutionConfig
	Amount     string
	SessionID  string
}

type ExecutionReceipt struct {
	ID         string `json:"id"`
	TemplateID string `json:"templateId"`
}

// EngineError carries the failure code an adapter mapped from the engine's native error.
type EngineError struct {
	Code models.FailureCode
	Err  error
}

func NewEngineError(code models.FailureCode, err error) *EngineError {
	return &EngineError{Code: code, Err: err}
}

func (e *EngineError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("execution failed: %s", e.Code)
	}
	return fmt.Sprintf("execution failed: %s: %v", e.Code, e.Err)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}

// AsFailureCode maps any engine error to the closed failure taxonomy. Errors that were not
// mapped by an adapter, and unknown codes, become UNKNOWN.
func AsFailureCode(err error) models.FailureCode {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.Canceled) {
		return models.FailureUserRejected
	}
	var engineErr *EngineError
	if errors.As(err, &engineErr) && engineErr.Code.Valid() {
		return engineErr.Code
	}
	return models.FailureUnknown
}

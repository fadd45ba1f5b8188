package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rxtech-lab/recipes-mcp/internal/models"
)

var ErrMissingConfig = errors.New("execution config is required")

// SimulatedEngine stands in for the widget's engine in demos and tests. It succeeds unless a
// failure code has been set with FailWith.
type SimulatedEngine struct {
	mu       sync.Mutex
	failWith models.FailureCode
	delay    time.Duration
	requests []ExecutionRequest
}

func NewSimulatedEngine() *SimulatedEngine {
	return &SimulatedEngine{}
}

// FailWith makes every following execution fail with code. An empty code restores success.
func (e *SimulatedEngine) FailWith(code models.FailureCode) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failWith = code
}

// WithDelay sets how long Execute waits before answering.
func (e *SimulatedEngine) WithDelay(delay time.Duration) *SimulatedEngine {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.delay = delay
	return e
}

// Requests returns the requests received so far.
func (e *SimulatedEngine) Requests() []ExecutionRequest {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]ExecutionRequest, len(e.requests))
	copy(out, e.requests)
	return out
}

func (e *SimulatedEngine) Execute(ctx context.Context, req ExecutionRequest) (*ExecutionReceipt, error) {
	e.mu.Lock()
	e.requests = append(e.requests, req)
	failWith := e.failWith
	delay := e.delay
	e.mu.Unlock()

	if req.Config == nil {
		return nil, NewEngineError(models.FailureSimulationFailed, ErrMissingConfig)
	}

	if delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	if failWith != "" {
		return nil, NewEngineError(failWith, errors.New("simulated failure"))
	}
	return &ExecutionReceipt{ID: uuid.NewString(), TemplateID: req.TemplateID}, nil
}

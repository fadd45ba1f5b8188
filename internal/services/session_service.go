package services

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rxtech-lab/recipes-mcp/internal/compiler"
	"github.com/rxtech-lab/recipes-mcp/internal/engine"
	"github.com/rxtech-lab/recipes-mcp/internal/lifecycle"
	"github.com/rxtech-lab/recipes-mcp/internal/metrics"
	"github.com/rxtech-lab/recipes-mcp/internal/models"
	"github.com/rxtech-lab/recipes-mcp/internal/registry"
	"github.com/rxtech-lab/recipes-mcp/internal/telemetry"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SessionTTL is how long an action session stays usable after it was started.
const SessionTTL = 30 * time.Minute

var (
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionExpired     = errors.New("session expired")
	ErrInvalidStep        = errors.New("operation not allowed at the current step")
	ErrNoTemplateSelected = errors.New("no template selected")
	ErrInvalidAmount      = errors.New("amount must be a decimal number greater than zero")
	ErrNotExecutable      = errors.New("template is not executable")
	ErrNoReplacement      = errors.New("template has no usable replacement")
	ErrSimulationDisabled = errors.New("deprecation simulation is disabled")
)

// Review is what the user confirms before executing.
type Review struct {
	Session    *models.ActionSession   `json:"session"`
	Template   *models.ActionTemplate  `json:"template"`
	Resolution lifecycle.Resolution    `json:"resolution"`
	Config     *models.ExecutionConfig `json:"config,omitempty"`
	// FailureModes is the full failure disclosure shown before execution.
	FailureModes []models.FailureMode `json:"failureModes"`
}

// SessionService drives the select -> configure -> review -> execute flow. The flow state lives
// in the database row; the registry, compiler and resolver stay stateless.
type SessionService interface {
	Start(ctx context.Context) (*models.ActionSession, error)
	Get(ctx context.Context, sessionID string) (*models.ActionSession, error)
	Select(ctx context.Context, sessionID, templateID string) (*models.ActionSession, error)
	ToggleDeprecation(ctx context.Context, sessionID string, enabled bool) (*models.ActionSession, error)
	UseReplacement(ctx context.Context, sessionID string) (*models.ActionSession, error)
	Configure(ctx context.Context, sessionID, amount string) (*models.ActionSession, error)
	Review(ctx context.Context, sessionID string) (*Review, error)
	Execute(ctx context.Context, sessionID string, eng engine.Engine) (*models.ActionSession, error)
}

// SessionOption configures a SessionService.
type SessionOption func(*sessionService)

// WithSessionLogger sets the logger for flow transitions and engine failures.
func WithSessionLogger(logger *zap.Logger) SessionOption {
	return func(s *sessionService) { s.logger = logger }
}

// WithDeprecationSimulation enables or disables the simulate-deprecation toggle.
func WithDeprecationSimulation(allowed bool) SessionOption {
	return func(s *sessionService) { s.allowSimulation = allowed }
}

type sessionService struct {
	db              *gorm.DB
	registry        *registry.Registry
	resolver        *lifecycle.Resolver
	tracker         telemetry.Tracker
	logger          *zap.Logger
	allowSimulation bool
	now             func() time.Time
}

func NewSessionService(db *gorm.DB, reg *registry.Registry, tracker telemetry.Tracker, opts ...SessionOption) SessionService {
	s := &sessionService{
		db:              db,
		registry:        reg,
		resolver:        lifecycle.NewResolver(reg),
		tracker:         tracker,
		logger:          zap.NewNop(),
		allowSimulation: true,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *sessionService) Start(ctx context.Context) (*models.ActionSession, error) {
	now := s.now()
	session := &models.ActionSession{
		ID:        uuid.New().String(),
		Step:      models.SessionStepSelect,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(SessionTTL),
	}
	if err := s.db.WithContext(ctx).Create(session).Error; err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	metrics.SessionTransitionsTotal.WithLabelValues(string(session.Step)).Inc()
	return session, nil
}

func (s *sessionService) Get(ctx context.Context, sessionID string) (*models.ActionSession, error) {
	var session models.ActionSession
	err := s.db.WithContext(ctx).Where("id = ?", sessionID).First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	if s.now().After(session.ExpiresAt) {
		return nil, ErrSessionExpired
	}
	return &session, nil
}

// Select picks a template and moves to configure. Any earlier choice, override and outcome is
// discarded, so selecting again restarts the flow.
func (s *sessionService) Select(ctx context.Context, sessionID, templateID string) (*models.ActionSession, error) {
	session, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Step == models.SessionStepExecute {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStep, session.Step)
	}
	if _, ok := s.registry.Snapshot().GetByID(templateID); !ok {
		return nil, fmt.Errorf("%w: %s", registry.ErrTemplateNotFound, templateID)
	}

	session.TemplateID = templateID
	session.SimulateDeprecation = false
	session.ReplacedFromID = ""
	session.Amount = ""
	clearOutcome(session)
	if err := s.moveTo(ctx, session, models.SessionStepConfigure); err != nil {
		return nil, err
	}

	s.tracker.TrackForSession(ctx, session.ID, telemetry.EventTemplateSelected, telemetry.Payload{"id": templateID})
	return session, nil
}

func (s *sessionService) ToggleDeprecation(ctx context.Context, sessionID string, enabled bool) (*models.ActionSession, error) {
	if enabled && !s.allowSimulation {
		return nil, ErrSimulationDisabled
	}
	session, _, err := s.activeSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	session.SimulateDeprecation = enabled
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// UseReplacement moves a deprecated selection to its replacement. The override is cleared: the
// replacement is shown with its own stored status.
func (s *sessionService) UseReplacement(ctx context.Context, sessionID string) (*models.ActionSession, error) {
	session, tmpl, err := s.activeSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	resolution := s.resolver.Resolve(tmpl, s.overrides(session))
	if resolution.DanglingReplacement {
		s.logger.Warn("replacement does not resolve",
			zap.String("template_id", tmpl.ID),
			zap.String("replacement_id", tmpl.ReplacementID),
		)
		s.tracker.TrackForSession(ctx, session.ID, telemetry.EventReplacementDangling, telemetry.Payload{
			"id":            tmpl.ID,
			"replacementId": tmpl.ReplacementID,
		})
	}
	if resolution.Replacement == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoReplacement, tmpl.ID)
	}
	if err := lifecycle.Transition(resolution.Usability, lifecycle.UsabilitySuperseded); err != nil {
		return nil, err
	}

	session.ReplacedFromID = tmpl.ID
	session.TemplateID = resolution.Replacement.ID
	session.SimulateDeprecation = false
	clearOutcome(session)
	if err := s.moveTo(ctx, session, models.SessionStepConfigure); err != nil {
		return nil, err
	}

	s.tracker.TrackForSession(ctx, session.ID, telemetry.EventReplacementChosen, telemetry.Payload{
		"fromId": tmpl.ID,
		"toId":   resolution.Replacement.ID,
	})
	return session, nil
}

func (s *sessionService) Configure(ctx context.Context, sessionID, amount string) (*models.ActionSession, error) {
	session, _, err := s.activeSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Step != models.SessionStepConfigure && session.Step != models.SessionStepReview {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStep, session.Step)
	}

	normalized, err := parseAmount(amount)
	if err != nil {
		return nil, err
	}
	session.Amount = normalized
	if err := s.moveTo(ctx, session, models.SessionStepReview); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *sessionService) Review(ctx context.Context, sessionID string) (*Review, error) {
	session, tmpl, err := s.activeSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Step != models.SessionStepReview {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStep, session.Step)
	}

	resolution := s.resolver.Resolve(tmpl, s.overrides(session))
	config := compiler.Compile(tmpl)
	review := &Review{
		Session:      session,
		Template:     tmpl,
		Resolution:   resolution,
		Config:       config,
		FailureModes: tmpl.CanFail,
	}

	if config != nil {
		s.tracker.TrackForSession(ctx, session.ID, telemetry.EventTemplateCompiled, telemetry.Payload{
			"id":               tmpl.ID,
			"destinationChain": config.DestinationChain,
			"destinationToken": config.DestinationToken,
		})
	}
	if resolution.EffectiveStatus == models.TemplateStatusDeprecated {
		s.tracker.TrackForSession(ctx, session.ID, telemetry.EventDeprecationEncountered, telemetry.Payload{
			"id":            tmpl.ID,
			"replacementId": tmpl.ReplacementID,
			"simulated":     resolution.Simulated,
		})
	}
	if resolution.DanglingReplacement {
		s.logger.Warn("replacement does not resolve",
			zap.String("template_id", tmpl.ID),
			zap.String("replacement_id", tmpl.ReplacementID),
		)
		s.tracker.TrackForSession(ctx, session.ID, telemetry.EventReplacementDangling, telemetry.Payload{
			"id":            tmpl.ID,
			"replacementId": tmpl.ReplacementID,
		})
	}
	return review, nil
}

// Execute hands the compiled config to the engine. An engine failure is a normal outcome: the
// session ends in the failed step with the template's user-facing copy and no error is returned.
func (s *sessionService) Execute(ctx context.Context, sessionID string, eng engine.Engine) (*models.ActionSession, error) {
	session, tmpl, err := s.activeSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Step != models.SessionStepReview {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStep, session.Step)
	}
	config := compiler.Compile(tmpl)
	if config == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotExecutable, tmpl.ID)
	}

	s.tracker.TrackForSession(ctx, session.ID, telemetry.EventActionProceedClicked, telemetry.Payload{"id": tmpl.ID})
	if err := s.moveTo(ctx, session, models.SessionStepExecute); err != nil {
		return nil, err
	}

	// The outcome is recorded even when ctx ends during the engine call, otherwise the session
	// would stay in the execute step until it expires.
	outcomeCtx := context.WithoutCancel(ctx)
	receipt, execErr := eng.Execute(ctx, engine.ExecutionRequest{
		TemplateID: tmpl.ID,
		Config:     config,
		Amount:     session.Amount,
		SessionID:  session.ID,
	})
	if execErr != nil {
		code := engine.AsFailureCode(execErr)
		mode := tmpl.FailureMessage(code)
		session.FailureCode = mode.Code
		session.FailureLabel = mode.Label
		session.FailureMessage = mode.UserMessage

		metrics.ExecutionFailuresTotal.WithLabelValues(string(mode.Code)).Inc()
		s.logger.Warn("execution failed",
			zap.String("session_id", session.ID),
			zap.String("template_id", tmpl.ID),
			zap.String("code", string(mode.Code)),
			zap.Error(execErr),
		)
		if err := s.moveTo(outcomeCtx, session, models.SessionStepFailed); err != nil {
			return nil, err
		}
		s.tracker.TrackForSession(outcomeCtx, session.ID, telemetry.EventExecutionFailed, telemetry.Payload{
			"id":   tmpl.ID,
			"code": string(mode.Code),
		})
		return session, nil
	}

	session.ReceiptID = receipt.ID
	if err := s.moveTo(outcomeCtx, session, models.SessionStepSucceeded); err != nil {
		return nil, err
	}
	s.tracker.TrackForSession(outcomeCtx, session.ID, telemetry.EventExecutionSucceeded, telemetry.Payload{"id": tmpl.ID})
	return session, nil
}

// activeSession loads a session that has a selected template still present in the current
// snapshot and has not finished.
func (s *sessionService) activeSession(ctx context.Context, sessionID string) (*models.ActionSession, *models.ActionTemplate, error) {
	session, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if session.TemplateID == "" {
		return nil, nil, ErrNoTemplateSelected
	}
	if session.Step.IsTerminal() || session.Step == models.SessionStepExecute {
		return nil, nil, fmt.Errorf("%w: %s", ErrInvalidStep, session.Step)
	}
	tmpl, ok := s.registry.Snapshot().GetByID(session.TemplateID)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", registry.ErrTemplateNotFound, session.TemplateID)
	}
	return session, tmpl, nil
}

func (s *sessionService) overrides(session *models.ActionSession) lifecycle.Overrides {
	return lifecycle.Overrides{ForceDeprecated: s.allowSimulation && session.SimulateDeprecation}
}

func (s *sessionService) moveTo(ctx context.Context, session *models.ActionSession, step models.SessionStep) error {
	from := session.Step
	session.Step = step
	if err := s.save(ctx, session); err != nil {
		return err
	}
	metrics.SessionTransitionsTotal.WithLabelValues(string(step)).Inc()
	s.logger.Debug("session step changed",
		zap.String("session_id", session.ID),
		zap.String("from", string(from)),
		zap.String("to", string(step)),
	)
	return nil
}

func (s *sessionService) save(ctx context.Context, session *models.ActionSession) error {
	session.UpdatedAt = s.now()
	if err := s.db.WithContext(ctx).Save(session).Error; err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	return nil
}

func clearOutcome(session *models.ActionSession) {
	session.FailureCode = ""
	session.FailureLabel = ""
	session.FailureMessage = ""
	session.ReceiptID = ""
}

var amountPattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)

// parseAmount accepts a plain positive decimal ("100", "0.5") and returns its canonical form
// with redundant leading zeros removed.
func parseAmount(amount string) (string, error) {
	amount = strings.TrimSpace(amount)
	if !amountPattern.MatchString(amount) {
		return "", ErrInvalidAmount
	}
	value, ok := new(big.Rat).SetString(amount)
	if !ok || value.Sign() <= 0 {
		return "", ErrInvalidAmount
	}
	whole, fraction, hasFraction := strings.Cut(amount, ".")
	whole = strings.TrimLeft(whole, "0")
	if whole == "" {
		whole = "0"
	}
	if hasFraction {
		return whole + "." + fraction, nil
	}
	return whole, nil
}

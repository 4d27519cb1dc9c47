// Package classifier adapts external language-model providers into the two
// signals the triage engine consumes: an urgency score and a duplicate list.
// Every call is bounded and budgeted, and every failure resolves to a
// documented fallback instead of an error.
package classifier

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var (
	// ErrTimeout is returned when the provider did not answer within the call budget.
	ErrTimeout = errors.New("classifier: timeout")
	// ErrUnavailable is returned when no provider is configured, the rate budget is spent, or the provider failed.
	ErrUnavailable = errors.New("classifier: unavailable")
	// ErrMalformed is returned when a provider answer cannot be parsed.
	ErrMalformed = errors.New("classifier: malformed response")
)

const (
	// DefaultPriority is the urgency assumed whenever classification fails.
	DefaultPriority = 0.5
	// MaxDuplicateCandidates bounds how many candidates are presented per call.
	MaxDuplicateCandidates = 5
	// DefaultTimeout bounds a single provider call.
	DefaultTimeout = 8 * time.Second

	kindUrgency    = "urgency"
	kindDuplicates = "duplicates"
)

// Provider is a text completion backend.
type Provider interface {
	Name() string
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Recorder receives per-call outcomes for instrumentation.
type Recorder interface {
	RecordClassifierCall(kind, outcome string, duration time.Duration)
}

// Candidate is an existing complaint offered to the duplicate classifier.
type Candidate struct {
	ID          string
	Topic       string
	Description string
}

// UrgencyResult carries the urgency score and whether it is the fallback value.
type UrgencyResult struct {
	Priority float64
	Fallback bool
}

// Option customises an Adapter.
type Option func(*Adapter)

// WithTimeout overrides the per-call timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(a *Adapter) {
		if timeout > 0 {
			a.timeout = timeout
		}
	}
}

// WithRateLimit caps outgoing calls. Calls beyond the budget fail fast as unavailable.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(a *Adapter) {
		if perSecond <= 0 {
			return
		}
		if burst <= 0 {
			burst = 1
		}
		a.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithLogger sets the adapter logger.
func WithLogger(logger *zap.Logger) Option {
	return func(a *Adapter) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithRecorder wires call outcome instrumentation.
func WithRecorder(recorder Recorder) Option {
	return func(a *Adapter) {
		a.recorder = recorder
	}
}

// Adapter owns timeout, budget and fallback policy around a Provider.
type Adapter struct {
	provider Provider
	timeout  time.Duration
	limiter  *rate.Limiter
	logger   *zap.Logger
	recorder Recorder
}

// NewAdapter wraps provider. A nil provider yields an adapter that always falls back.
func NewAdapter(provider Provider, opts ...Option) *Adapter {
	a := &Adapter{provider: provider, timeout: DefaultTimeout, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Available reports whether a provider is configured.
func (a *Adapter) Available() bool {
	return a != nil && a.provider != nil
}

// Urgency scores description in [0,1]. It never fails: any classifier problem
// yields DefaultPriority with Fallback set.
func (a *Adapter) Urgency(ctx context.Context, description string) UrgencyResult {
	fallback := UrgencyResult{Priority: DefaultPriority, Fallback: true}
	if strings.TrimSpace(description) == "" {
		return fallback
	}

	start := time.Now()
	raw, err := a.complete(ctx, urgencySystemPrompt, urgencyPrompt(description))
	if err != nil {
		a.observe(kindUrgency, err, start)
		return fallback
	}

	priority, err := ParseUrgency(raw)
	if err != nil {
		a.observe(kindUrgency, err, start)
		a.logger.Debug("unparseable urgency response", zap.String("response", truncate(raw, 200)))
		return fallback
	}

	a.observe(kindUrgency, nil, start)
	return UrgencyResult{Priority: priority}
}

// Duplicates asks the provider which of the first MaxDuplicateCandidates
// candidates describe the same issue as description. It returns nil on any
// failure. Returned ids are restricted to the presented candidates and keep
// their candidate order.
func (a *Adapter) Duplicates(ctx context.Context, description string, candidates []Candidate) []string {
	if strings.TrimSpace(description) == "" || len(candidates) == 0 {
		return nil
	}
	if len(candidates) > MaxDuplicateCandidates {
		candidates = candidates[:MaxDuplicateCandidates]
	}

	start := time.Now()
	raw, err := a.complete(ctx, duplicatesSystemPrompt, duplicatesPrompt(description, candidates))
	if err != nil {
		a.observe(kindDuplicates, err, start)
		return nil
	}

	ids, err := ParseDuplicateIDs(raw)
	if err != nil {
		a.observe(kindDuplicates, err, start)
		a.logger.Debug("unparseable duplicates response", zap.String("response", truncate(raw, 200)))
		return nil
	}
	a.observe(kindDuplicates, nil, start)

	flagged := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		flagged[id] = struct{}{}
	}
	var result []string
	for _, candidate := range candidates {
		if _, ok := flagged[candidate.ID]; ok {
			result = append(result, candidate.ID)
			delete(flagged, candidate.ID)
		}
	}
	if len(flagged) > 0 {
		a.logger.Debug("classifier returned unknown candidate ids", zap.Int("discarded", len(flagged)))
	}
	return result
}

func (a *Adapter) complete(ctx context.Context, system, prompt string) (string, error) {
	if !a.Available() {
		return "", ErrUnavailable
	}
	if a.limiter != nil && !a.limiter.Allow() {
		return "", fmt.Errorf("%w: rate budget exhausted", ErrUnavailable)
	}

	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	raw, err := a.provider.Complete(callCtx, system, prompt)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %s after %s", ErrTimeout, a.provider.Name(), a.timeout)
		}
		return "", fmt.Errorf("%w: %s: %v", ErrUnavailable, a.provider.Name(), err)
	}
	return raw, nil
}

func (a *Adapter) observe(kind string, err error, start time.Time) {
	outcome := outcomeOf(err)
	duration := time.Since(start)
	if a.recorder != nil {
		a.recorder.RecordClassifierCall(kind, outcome, duration)
	}
	if err != nil {
		a.logger.Warn("classifier call degraded to fallback",
			zap.String("kind", kind),
			zap.String("outcome", outcome),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
	}
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrMalformed):
		return "malformed"
	default:
		return "unavailable"
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

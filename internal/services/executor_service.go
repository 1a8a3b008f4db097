package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Giftea/skillbazaar/internal/payments"
	"github.com/Giftea/skillbazaar/pkg/logger"
	"github.com/Giftea/skillbazaar/pkg/metrics"
)

// ErrExecutionTimeout indicates the payment call did not return within the
// execution deadline. The in-flight call is abandoned, not cancelled: the
// collaborator exposes no cancellation, so the slower branch is simply never
// awaited again.
var ErrExecutionTimeout = errors.New("executor: payment call exceeded deadline")

// UpstreamOfflineError marks a skill server that could not be reached. It
// carries the skill's declared port so callers can point at the backend that
// is down.
type UpstreamOfflineError struct {
	Skill string
	Port  int
}

func (e *UpstreamOfflineError) Error() string {
	return fmt.Sprintf("executor: skill %s offline on port %d", e.Skill, e.Port)
}

const defaultExecutionTimeout = 10 * time.Second

// ExecutorService performs exactly one paid call per invocation request:
// resolve the skill, expand its endpoint template, settle payment under a
// deadline, and account usage on success.
type ExecutorService struct {
	skills   *SkillService
	payments payments.Client
	timeout  time.Duration
	log      *zap.Logger
}

// ExecutorOption customises the ExecutorService.
type ExecutorOption func(*ExecutorService)

// WithExecutionTimeout overrides the payment call deadline.
func WithExecutionTimeout(timeout time.Duration) ExecutorOption {
	return func(s *ExecutorService) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

// NewExecutorService constructs the execution proxy.
func NewExecutorService(skills *SkillService, client payments.Client, opts ...ExecutorOption) (*ExecutorService, error) {
	if skills == nil {
		return nil, errors.New("executor: skill service is required")
	}
	if client == nil {
		return nil, errors.New("executor: payment client is required")
	}

	svc := &ExecutorService{
		skills:   skills,
		payments: client,
		timeout:  defaultExecutionTimeout,
		log:      logger.WithModule("executor"),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// ExecutionResult is the caller-facing outcome of a successful execution.
// PaidUSD reports the skill's declared price for display, not the
// collaborator's settled amount.
type ExecutionResult struct {
	Result  json.RawMessage `json:"result"`
	PaidUSD float64         `json:"paid_usd"`
	Skill   string          `json:"skill"`
}

type payOutcome struct {
	result *payments.Result
	err    error
}

// Execute runs the paid call for the named skill. param, when present, is
// substituted into the endpoint template's placeholder; templates without a
// placeholder ignore it. No retries are performed here.
func (s *ExecutorService) Execute(ctx context.Context, name, param string) (*ExecutionResult, error) {
	if s == nil {
		return nil, errors.New("executor: service not initialised")
	}
	ctx = ensuredContext(ctx)

	skill, err := s.skills.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, ErrSkillNotFound) {
			metrics.Executions.WithLabelValues(name, "not_found").Inc()
		}
		return nil, err
	}

	tmpl, err := ParseEndpointTemplate(skill.Endpoint)
	if err != nil {
		return nil, err
	}
	target := tmpl.Expand(param)

	// Price is a decimal USD value; the collaborator settles in USDC
	// micro-units, e.g. $0.05 -> 50000.
	ceiling := int64(math.Round(skill.PriceUSD * 1_000_000))

	// The payment call is detached from the caller's cancellation: an
	// abandoned HTTP request must not abort a handshake that may already
	// have settled.
	callCtx := context.WithoutCancel(ctx)

	outcome := make(chan payOutcome, 1)
	go func() {
		result, payErr := s.payments.PayAndCall(callCtx, target, http.MethodGet, ceiling)
		outcome <- payOutcome{result: result, err: payErr}
	}()

	timer := time.NewTimer(s.timeout)
	defer timer.Stop()

	var out payOutcome
	select {
	case out = <-outcome:
	case <-timer.C:
		// The slower branch keeps running to completion; its side effects
		// (a settled payment included) are not rolled back.
		metrics.Executions.WithLabelValues(skill.Name, "timeout").Inc()
		s.log.Warn("payment call abandoned after deadline",
			zap.String("skill", skill.Name),
			zap.Duration("timeout", s.timeout),
		)
		return nil, ErrExecutionTimeout
	}

	if out.err != nil {
		if payments.IsUnreachable(out.err) {
			metrics.Executions.WithLabelValues(skill.Name, "offline").Inc()
			s.log.Warn("skill server unreachable",
				zap.String("skill", skill.Name),
				zap.Int("port", skill.Port),
				zap.Error(out.err),
			)
			return nil, &UpstreamOfflineError{Skill: skill.Name, Port: skill.Port}
		}
		metrics.Executions.WithLabelValues(skill.Name, "error").Inc()
		return nil, fmt.Errorf("executor: payment call failed: %w", out.err)
	}

	if err := s.skills.IncrementUsage(ctx, skill.Name); err != nil {
		// The paid call already succeeded; losing the counter bump is
		// logged rather than surfaced as a caller failure.
		s.log.Error("usage increment failed after paid call",
			zap.String("skill", skill.Name),
			zap.Error(err),
		)
	}

	metrics.Executions.WithLabelValues(skill.Name, "success").Inc()
	metrics.PaymentMicroUnits.WithLabelValues(skill.Name).Add(float64(ceiling))
	s.log.Info("execution settled",
		zap.String("skill", skill.Name),
		zap.Int64("ceiling_micro", ceiling),
		zap.Int64("paid_micro", out.result.PaidMicro),
		zap.Duration("latency", out.result.Latency),
	)

	return &ExecutionResult{
		Result:  out.result.Body,
		PaidUSD: skill.PriceUSD,
		Skill:   skill.Name,
	}, nil
}

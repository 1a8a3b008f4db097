package prober

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/Giftea/skillbazaar/internal/services"
	"github.com/Giftea/skillbazaar/pkg/logger"
	"github.com/Giftea/skillbazaar/pkg/metrics"
)

const defaultSchedule = "@every 1m"

// Prober sweeps the catalog on a schedule, probing every registered skill
// server and publishing how many respond. Results are advisory; the execute
// path never consults them.
type Prober struct {
	skills   *services.SkillService
	health   *services.HealthService
	cron     *cron.Cron
	schedule string
	log      *zap.Logger
}

// Option customises the Prober.
type Option func(*Prober)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(p *Prober) {
		if c != nil {
			p.cron = c
		}
	}
}

// WithSchedule overrides the cron specification for the sweep.
func WithSchedule(spec string) Option {
	return func(p *Prober) {
		if spec != "" {
			p.schedule = spec
		}
	}
}

// New constructs a Prober with sensible defaults.
func New(skills *services.SkillService, health *services.HealthService, opts ...Option) *Prober {
	p := &Prober{
		skills:   skills,
		health:   health,
		schedule: defaultSchedule,
		log:      logger.WithModule("prober"),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.cron == nil {
		p.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return p
}

// Start registers the sweep job and launches the scheduler.
func (p *Prober) Start() error {
	if p.skills == nil || p.health == nil {
		return nil
	}

	if _, err := p.cron.AddFunc(p.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := p.RunOnce(ctx); err != nil {
			p.log.Warn("health sweep failed", zap.Error(err))
		}
	}); err != nil {
		return err
	}

	p.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running sweep to complete.
func (p *Prober) Stop() context.Context {
	if p.cron == nil {
		return context.Background()
	}
	return p.cron.Stop()
}

// RunOnce probes every registered skill sequentially and updates the online
// gauge. Individual probe outcomes are logged, not returned; only catalog
// read failures surface as errors.
func (p *Prober) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	skills, err := p.skills.List(ctx)
	if err != nil {
		return err
	}

	online := 0
	for i := range skills {
		skill := &skills[i]
		status := p.health.Probe(ctx, skill)
		if status.Online {
			online++
			continue
		}
		p.log.Info("skill offline",
			zap.String("skill", skill.Name),
			zap.Int("port", skill.Port),
		)
	}

	metrics.SkillsOnline.Set(float64(online))
	p.log.Debug("health sweep complete",
		zap.Int("online", online),
		zap.Int("total", len(skills)),
	)
	return nil
}

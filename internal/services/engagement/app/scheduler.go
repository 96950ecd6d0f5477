package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/raidroom/engagebot/internal/services/engagement/domain"
	"github.com/robfig/cron/v3"
)

type runIDKey struct{}

// WithRunID tags ctx with the id of one trigger firing.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey{}, runID)
}

// RunIDFrom returns the trigger run id carried by ctx, if any.
func RunIDFrom(ctx context.Context) string {
	runID, _ := ctx.Value(runIDKey{}).(string)
	return runID
}

// Fire runs the transition bound to trigger.
func (e *Engine) Fire(ctx context.Context, trigger domain.Trigger) {
	switch trigger.Kind {
	case domain.TriggerOpen:
		e.AutoOpen(ctx, trigger.Session)
	case domain.TriggerClose:
		e.Close(ctx)
	case domain.TriggerPreCheck:
		e.PreCheck(ctx)
	case domain.TriggerReport:
		e.Report(ctx)
	case domain.TriggerNotify10, domain.TriggerNotify5:
		e.Notify(ctx, trigger.Kind.Lead(), trigger.Kind == domain.TriggerNotify5)
	default:
		e.logger.WarnContext(ctx, "unknown trigger", slog.String("trigger", trigger.ID()))
	}
}

// registrar is the part of the cron scheduler that accepts jobs.
type registrar interface {
	AddFunc(spec string, cmd func()) (cron.EntryID, error)
}

// RegisterTriggers adds one daily job per schedule trigger. Every firing
// runs under a fresh run id derived from ctx.
func RegisterTriggers(ctx context.Context, r registrar, engine *Engine) error {
	for _, trigger := range engine.cfg.Schedule.Triggers() {
		if _, err := r.AddFunc(trigger.CronSpec(), func() {
			engine.fire(ctx, trigger)
		}); err != nil {
			return fmt.Errorf("register trigger %s: %w", trigger.ID(), err)
		}
	}
	return nil
}

func (e *Engine) fire(ctx context.Context, trigger domain.Trigger) {
	if ctx.Err() != nil {
		return
	}
	runID := uuid.NewString()
	ctx = WithRunID(ctx, runID)
	start := e.now()
	e.logger.InfoContext(ctx, "trigger fired",
		slog.String("trigger", trigger.ID()),
		slog.String("run_id", runID),
	)
	e.Fire(ctx, trigger)
	e.logger.DebugContext(ctx, "trigger done",
		slog.String("trigger", trigger.ID()),
		slog.String("run_id", runID),
		slog.Duration("elapsed", e.now().Sub(start)),
	)
}

// Scheduler drives the engine from the wall clock. Jobs run in UTC; a
// panicking job loses that occurrence only.
type Scheduler struct {
	cron   *cron.Cron
	engine *Engine
}

// NewScheduler creates a scheduler whose recovery output goes to logger.
func NewScheduler(engine *Engine, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelWarn))
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.Recover(cronLogger)),
		),
		engine: engine,
	}
}

// Start registers every trigger and starts the clock.
func (s *Scheduler) Start(ctx context.Context) error {
	if err := RegisterTriggers(ctx, s.cron, s.engine); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop halts the clock and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

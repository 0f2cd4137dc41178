package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/username/expensetracker/backend/src/logger"
)

// PipelineRunner is what a trigger fires: one full pipeline pass for
// every stored profile. Implemented by services.ReportService.
type PipelineRunner interface {
	RunForAllProfiles(ctx context.Context)
}

// StateStore records the last period key each trigger fired for. Persisted
// state keeps a restart inside the trigger window from firing twice.
type StateStore interface {
	LastFired(ctx context.Context, triggerName string) (string, error)
	SetLastFired(ctx context.Context, triggerName, periodKey string) error
}

// Scheduler polls wall-clock time on a fixed interval and fires each
// trigger at most once per period. It owns its trigger list and de-dup
// state; nothing is registered globally.
type Scheduler struct {
	runner       PipelineRunner
	state        StateStore
	triggers     []Trigger
	pollInterval time.Duration
	now          func() time.Time

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(runner PipelineRunner, state StateStore, pollInterval time.Duration, triggers ...Trigger) *Scheduler {
	return &Scheduler{
		runner:       runner,
		state:        state,
		triggers:     triggers,
		pollInterval: pollInterval,
		now:          time.Now,
	}
}

// Start launches the poll loop. It returns immediately; the loop runs
// until Stop is called or the parent context is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	logger.L.Info("Scheduler starting",
		"pollInterval", s.pollInterval.String(), "triggers", len(s.triggers))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				logger.L.Info("Scheduler poll loop stopping")
				return
			case <-ticker.C:
				s.checkOnce(ctx, s.now())
			}
		}
	}()
}

// Stop cancels the poll loop and waits for an in-flight check to finish.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	logger.L.Info("Scheduler stopped")
}

// checkOnce evaluates every trigger against the observed time. A trigger
// fires only when it is due and its period key has not been recorded;
// two polls landing in the same trigger minute therefore fire once.
func (s *Scheduler) checkOnce(ctx context.Context, now time.Time) {
	for _, trigger := range s.triggers {
		if !trigger.Due(now) {
			continue
		}
		key := trigger.PeriodKey(now)

		last, err := s.state.LastFired(ctx, trigger.Name())
		if err != nil {
			logger.L.Error("Failed to read scheduler state, skipping trigger this poll",
				"trigger", trigger.Name(), "error", err)
			continue
		}
		if last == key {
			continue
		}

		logger.L.Info("Trigger firing", "trigger", trigger.Name(), "periodKey", key)
		s.runner.RunForAllProfiles(ctx)

		if err := s.state.SetLastFired(ctx, trigger.Name(), key); err != nil {
			logger.L.Error("Failed to record trigger fire; a duplicate fire is possible next poll",
				"trigger", trigger.Name(), "periodKey", key, "error", err)
		}
	}
}

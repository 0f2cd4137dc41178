package scheduler

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/username/expensetracker/backend/src/logger"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	os.Exit(m.Run())
}

type countingRunner struct {
	runs int
}

func (r *countingRunner) RunForAllProfiles(ctx context.Context) {
	r.runs++
}

func newTestScheduler(runner PipelineRunner, state StateStore) *Scheduler {
	return New(runner, state, time.Minute,
		WeeklyTrigger{Weekday: time.Sunday, Hour: 20, Minute: 0},
		MonthlyTrigger{Day: 1, Hour: 9},
	)
}

// 2026-08-30 is a Sunday.
var sundayEvening = time.Date(2026, 8, 30, 20, 0, 10, 0, time.UTC)

func TestWeeklyTrigger_FiresOncePerPeriod(t *testing.T) {
	runner := &countingRunner{}
	s := newTestScheduler(runner, NewMemoryStateStore())
	ctx := context.Background()

	// Two polls landing inside the same trigger minute.
	s.checkOnce(ctx, sundayEvening)
	s.checkOnce(ctx, sundayEvening.Add(30*time.Second))

	if runner.runs != 1 {
		t.Fatalf("expected exactly 1 run for the period, got %d", runner.runs)
	}

	// Later the same evening: still the same period.
	s.checkOnce(ctx, sundayEvening.Add(2*time.Hour))
	if runner.runs != 1 {
		t.Fatalf("expected no re-fire later the same day, got %d runs", runner.runs)
	}

	// The following Sunday is a new ISO week.
	s.checkOnce(ctx, sundayEvening.AddDate(0, 0, 7))
	if runner.runs != 2 {
		t.Fatalf("expected a fire in the next period, got %d runs", runner.runs)
	}
}

func TestWeeklyTrigger_NotDueBeforeInstant(t *testing.T) {
	runner := &countingRunner{}
	s := newTestScheduler(runner, NewMemoryStateStore())

	sundayMorning := time.Date(2026, 8, 30, 8, 0, 0, 0, time.UTC)
	s.checkOnce(context.Background(), sundayMorning)
	if runner.runs != 0 {
		t.Fatalf("trigger fired before its instant, runs=%d", runner.runs)
	}
}

func TestMonthlyTrigger_FiresOncePerMonth(t *testing.T) {
	runner := &countingRunner{}
	s := New(runner, NewMemoryStateStore(), time.Minute, MonthlyTrigger{Day: 1, Hour: 9})
	ctx := context.Background()

	firstOfMonth := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	s.checkOnce(ctx, firstOfMonth)
	s.checkOnce(ctx, firstOfMonth.Add(time.Minute))
	s.checkOnce(ctx, firstOfMonth.Add(5*time.Hour))
	if runner.runs != 1 {
		t.Fatalf("expected 1 run for September, got %d", runner.runs)
	}

	s.checkOnce(ctx, firstOfMonth.AddDate(0, 1, 0))
	if runner.runs != 2 {
		t.Fatalf("expected a run for October, got %d", runner.runs)
	}
}

func TestScheduler_PersistedStateSurvivesRestart(t *testing.T) {
	state := NewMemoryStateStore()
	ctx := context.Background()

	first := &countingRunner{}
	s1 := newTestScheduler(first, state)
	s1.checkOnce(ctx, sundayEvening)
	if first.runs != 1 {
		t.Fatalf("expected initial fire, got %d runs", first.runs)
	}

	// Simulated restart inside the same trigger window: a new scheduler
	// sharing the state store must not re-fire.
	second := &countingRunner{}
	s2 := newTestScheduler(second, state)
	s2.checkOnce(ctx, sundayEvening.Add(10*time.Minute))
	if second.runs != 0 {
		t.Fatalf("expected no fire after restart within the period, got %d runs", second.runs)
	}
}

func TestScheduler_StartStop(t *testing.T) {
	runner := &countingRunner{}
	s := New(runner, NewMemoryStateStore(), 10*time.Millisecond)

	s.Start(context.Background())
	time.Sleep(30 * time.Millisecond)
	s.Stop()
	// No triggers configured: the loop must spin and stop cleanly without
	// firing anything.
	if runner.runs != 0 {
		t.Fatalf("expected no runs without triggers, got %d", runner.runs)
	}
}

package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/username/expensetracker/backend/src/config"
	"github.com/username/expensetracker/backend/src/loaders"
	"github.com/username/expensetracker/backend/src/logger"
	"github.com/username/expensetracker/backend/src/models"
	"github.com/username/expensetracker/backend/src/processors"
)

// RunResult holds everything one pipeline run produced for one user.
type RunResult struct {
	RunID          string
	Summary        *models.FinancialSummary
	WeeklyVerdict  models.BudgetVerdict
	MonthlyVerdict *models.BudgetVerdict // nil when no monthly budget is set
	Report         Report
}

// ReportService drives the full pipeline for a user: load, summarize,
// evaluate the budget, format and notify. Runs for the same user are
// serialized so a slow delivery cannot overlap a newly-triggered run.
type ReportService struct {
	loader       loaders.Loader
	summarizer   processors.SummaryProcessor
	budget       processors.BudgetProcessor
	formatter    *ReportFormatter
	notifiers    []Notifier
	profileStore ProfileStore
	resultCache  *cache.Cache

	mu        sync.Mutex
	userLocks map[int64]*sync.Mutex
}

func NewReportService(
	loader loaders.Loader,
	summarizer processors.SummaryProcessor,
	budget processors.BudgetProcessor,
	formatter *ReportFormatter,
	notifiers []Notifier,
	profileStore ProfileStore,
	resultCache *cache.Cache,
) *ReportService {
	return &ReportService{
		loader:       loader,
		summarizer:   summarizer,
		budget:       budget,
		formatter:    formatter,
		notifiers:    notifiers,
		profileStore: profileStore,
		resultCache:  resultCache,
		userLocks:    make(map[int64]*sync.Mutex),
	}
}

// Run executes one pipeline pass for the profile. A descriptive aggregation
// failure (no data, missing field, zero income) is returned as an error;
// delivery failures are logged by the notifiers and never surface here.
func (s *ReportService) Run(ctx context.Context, profile models.UserProfile) (*RunResult, error) {
	lock := s.lockFor(profile.ID)
	lock.Lock()
	defer lock.Unlock()

	runID := uuid.NewString()
	log := logger.L.With("runID", runID, "userID", profile.ID, "email", profile.Email)
	log.Info("Pipeline run starting")

	expenses := s.loader.Load(ctx, s.sourceRef(models.KindExpense, profile))
	income := s.loader.Load(ctx, s.sourceRef(models.KindIncome, profile))

	summary, err := s.summarizer.Summarize(expenses, income, profile)
	if err != nil {
		log.Warn("Pipeline run produced no summary", "reason", err)
		return nil, fmt.Errorf("summarize for %s: %w", profile.Email, err)
	}

	weeklyVerdict := s.budget.Evaluate(summary.TotalWeeklyExpense, profile.WeeklyBudget)
	var monthlyVerdict *models.BudgetVerdict
	if profile.MonthlyBudget != "" {
		v := s.budget.Evaluate(summary.TotalMonthlyExpense, profile.MonthlyBudget)
		monthlyVerdict = &v
	}

	report := s.formatter.Format(profile, summary, weeklyVerdict, monthlyVerdict, time.Now())

	result := &RunResult{
		RunID:          runID,
		Summary:        summary,
		WeeklyVerdict:  weeklyVerdict,
		MonthlyVerdict: monthlyVerdict,
		Report:         report,
	}
	s.resultCache.Set(cacheKey(profile.ID), result, cache.DefaultExpiration)

	for _, notifier := range s.notifiers {
		if err := notifier.Notify(ctx, profile, report); err != nil {
			// Notifiers swallow transport failures; anything else is
			// still not worth aborting the run over.
			log.Error("Notifier returned an error, continuing", "error", err)
		}
	}

	log.Info("Pipeline run finished",
		"overBudget", weeklyVerdict.OverBudget,
		"totalWeeklyExpense", summary.TotalWeeklyExpense.StringFixed(2))
	return result, nil
}

// RunForAllProfiles runs the pipeline for every stored profile. One user's
// failure is logged and never affects the others.
func (s *ReportService) RunForAllProfiles(ctx context.Context) {
	profiles, err := s.profileStore.List(ctx)
	if err != nil {
		logger.L.Error("Failed to list profiles for scheduled run", "error", err)
		return
	}
	if len(profiles) == 0 {
		logger.L.Info("No stored profiles, nothing to run")
		return
	}
	for _, profile := range profiles {
		if _, err := s.Run(ctx, profile); err != nil {
			logger.L.Warn("Scheduled run failed for user, continuing with others",
				"userID", profile.ID, "error", err)
		}
	}
}

// LatestResult returns the most recent cached run result for a user, if
// one is still fresh.
func (s *ReportService) LatestResult(userID int64) (*RunResult, bool) {
	if v, ok := s.resultCache.Get(cacheKey(userID)); ok {
		if result, ok := v.(*RunResult); ok {
			return result, true
		}
	}
	return nil, false
}

func (s *ReportService) sourceRef(kind models.RecordKind, profile models.UserProfile) loaders.SourceRef {
	if config.Cfg != nil && config.Cfg.DataSource == "sqlite" {
		return loaders.SourceRef{Kind: kind, UserID: profile.ID}
	}
	path := ""
	if config.Cfg != nil {
		if kind == models.KindExpense {
			path = config.Cfg.ExpensesCSVPath
		} else {
			path = config.Cfg.IncomeCSVPath
		}
	}
	return loaders.SourceRef{Kind: kind, Path: path}
}

func (s *ReportService) lockFor(userID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.userLocks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.userLocks[userID] = lock
	}
	return lock
}

func cacheKey(userID int64) string {
	return fmt.Sprintf("summary:%d", userID)
}

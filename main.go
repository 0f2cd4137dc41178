package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/expensetracker/backend/src/config"
	"github.com/username/expensetracker/backend/src/database"
	"github.com/username/expensetracker/backend/src/loaders"
	"github.com/username/expensetracker/backend/src/logger"
	"github.com/username/expensetracker/backend/src/models"
	"github.com/username/expensetracker/backend/src/processors"
	"github.com/username/expensetracker/backend/src/scheduler"
	"github.com/username/expensetracker/backend/src/services"
	"golang.org/x/time/rate"
)

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)
	logger.L.Info("ExpenseTracker starting...")

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)
	logger.L.Info("Database initialized successfully.")

	logger.L.Info("Initializing result cache...")
	resultCache := cache.New(config.Cfg.SummaryCacheTTL, 2*config.Cfg.SummaryCacheTTL)

	logger.L.Info("Initializing services...")
	var loader loaders.Loader
	if config.Cfg.DataSource == "sqlite" {
		loader = loaders.NewSQLLoader(database.DB)
	} else {
		loader = loaders.NewCSVLoader()
	}

	emailService := services.NewEmailService()
	emailLimiter := rate.NewLimiter(rate.Every(time.Minute/time.Duration(config.Cfg.EmailSendsPerMinute)), 1)
	notifiers := []services.Notifier{
		services.NewConsoleNotifier(),
		services.NewEmailNotifier(emailService, emailLimiter),
	}

	profileStore := services.NewProfileStore(database.DB)
	reportService := services.NewReportService(
		loader,
		processors.NewSummaryProcessor(),
		processors.NewBudgetProcessor(),
		services.NewReportFormatter(),
		notifiers,
		profileStore,
		resultCache,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	seedProfile(ctx, profileStore)

	logger.L.Info("Running pipeline once for all stored profiles...")
	reportService.RunForAllProfiles(ctx)

	if !config.Cfg.SchedulerEnabled {
		logger.L.Info("Scheduler disabled, exiting after one run.")
		return
	}

	sched := scheduler.New(
		reportService,
		scheduler.NewSQLiteStateStore(database.DB),
		config.Cfg.SchedulerPollInterval,
		scheduler.WeeklyTrigger{
			Weekday: config.Cfg.WeeklyTriggerWeekday,
			Hour:    config.Cfg.WeeklyTriggerHour,
			Minute:  config.Cfg.WeeklyTriggerMinute,
		},
		scheduler.MonthlyTrigger{
			Day:  config.Cfg.MonthlyTriggerDay,
			Hour: config.Cfg.MonthlyTriggerHour,
		},
	)
	sched.Start(ctx)
	logger.L.Info("Automation running",
		"weekly", config.Cfg.WeeklyTriggerWeekday.String(),
		"monthlyDay", config.Cfg.MonthlyTriggerDay)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.L.Info("Shutting down...")
	cancel()
	sched.Stop()
	logger.L.Info("Shutdown complete.")
}

// seedProfile stores the profile configured via environment, standing in
// for the interactive collection step when running unattended.
func seedProfile(ctx context.Context, store services.ProfileStore) {
	if config.Cfg.ProfileEmail == "" {
		return
	}
	profile := &models.UserProfile{
		Name:            config.Cfg.ProfileName,
		Email:           config.Cfg.ProfileEmail,
		WeeklyBudget:    config.Cfg.ProfileWeeklyBudget,
		MonthlyBudget:   config.Cfg.ProfileMonthlyBudget,
		MaritalStatus:   config.Cfg.ProfileMaritalStatus,
		TaxClass:        config.Cfg.ProfileTaxClass,
		ReligiousStatus: config.Cfg.ProfileReligiousStatus,
		TaxYear:         config.Cfg.ProfileTaxYear,
	}
	if err := store.Save(ctx, profile); err != nil {
		logger.L.Error("Failed to save seed profile", "email", profile.Email, "error", err)
		return
	}
	logger.L.Info("Seed profile stored", "userID", profile.ID, "email", profile.Email)
}

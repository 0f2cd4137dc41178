package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	DatabasePath string
	LogLevel     string

	// Data source for the pipeline: "csv" or "sqlite".
	DataSource      string
	ExpensesCSVPath string
	IncomeCSVPath   string

	EmailServiceProvider string

	SMTPServer   string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string

	MailgunDomain        string
	MailgunPrivateAPIKey string

	SenderEmail string
	SenderName  string

	// Email dispatch throttle, sends per minute across all users.
	EmailSendsPerMinute int

	SummaryCacheTTL time.Duration

	SchedulerEnabled      bool
	SchedulerPollInterval time.Duration
	WeeklyTriggerWeekday  time.Weekday
	WeeklyTriggerHour     int
	WeeklyTriggerMinute   int
	MonthlyTriggerDay     int
	MonthlyTriggerHour    int

	// Seed profile, stored on startup when set. Stands in for the
	// interactive prompt when running unattended.
	ProfileName            string
	ProfileEmail           string
	ProfileWeeklyBudget    string
	ProfileMonthlyBudget   string
	ProfileMaritalStatus   string
	ProfileTaxClass        string
	ProfileReligiousStatus string
	ProfileTaxYear         string
}

var Cfg *AppConfig

func LoadConfig() {
	errEnv := godotenv.Load()
	if errEnv != nil {
		log.Println("Info: No .env file found or error loading .env file. Relying on OS environment variables and defaults. Error (if any):", errEnv)
	} else {
		log.Println(".env file loaded successfully.")
	}

	log.Println("Loading application configuration...")

	dataSource := getEnv("DATA_SOURCE", "csv")
	if dataSource != "csv" && dataSource != "sqlite" {
		log.Printf("WARNING: Invalid DATA_SOURCE '%s'. Using default 'csv'.", dataSource)
		dataSource = "csv"
	}

	weeklyWeekday := getEnvAsInt("WEEKLY_TRIGGER_WEEKDAY", int(time.Sunday))
	if weeklyWeekday < 0 || weeklyWeekday > 6 {
		log.Printf("WARNING: Invalid WEEKLY_TRIGGER_WEEKDAY '%d'. Using default Sunday.", weeklyWeekday)
		weeklyWeekday = int(time.Sunday)
	}
	monthlyDay := getEnvAsInt("MONTHLY_TRIGGER_DAY", 1)
	if monthlyDay < 1 || monthlyDay > 28 {
		log.Printf("WARNING: Invalid MONTHLY_TRIGGER_DAY '%d'. Using default 1.", monthlyDay)
		monthlyDay = 1
	}

	emailSendsPerMinute := getEnvAsInt("EMAIL_SENDS_PER_MINUTE", 30)
	if emailSendsPerMinute < 1 {
		log.Printf("WARNING: Invalid EMAIL_SENDS_PER_MINUTE '%d'. Using default 30.", emailSendsPerMinute)
		emailSendsPerMinute = 30
	}

	Cfg = &AppConfig{
		DatabasePath: getEnv("DATABASE_PATH", "./expensetracker.db"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),

		DataSource:      dataSource,
		ExpensesCSVPath: getEnv("EXPENSES_CSV_PATH", "data/Expenses.csv"),
		IncomeCSVPath:   getEnv("INCOME_CSV_PATH", "data/Income.csv"),

		EmailServiceProvider: getEnv("EMAIL_SERVICE_PROVIDER", "mock"),

		SMTPServer:   getEnv("SMTP_SERVER", ""),
		SMTPPort:     getEnvAsInt("SMTP_PORT", 587),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		MailgunDomain:        getEnv("MAILGUN_DOMAIN", ""),
		MailgunPrivateAPIKey: getEnv("MAILGUN_PRIVATE_API_KEY", ""),

		SenderEmail: getEnv("SENDER_EMAIL", "noreply@example.com"),
		SenderName:  getEnv("SENDER_NAME", "ExpenseTracker"),

		EmailSendsPerMinute: emailSendsPerMinute,

		SummaryCacheTTL: getEnvAsDuration("SUMMARY_CACHE_TTL", 15*time.Minute),

		SchedulerEnabled:      getEnv("SCHEDULER_ENABLED", "true") == "true",
		SchedulerPollInterval: getEnvAsDuration("SCHEDULER_POLL_INTERVAL", time.Minute),
		WeeklyTriggerWeekday:  time.Weekday(weeklyWeekday),
		WeeklyTriggerHour:     getEnvAsInt("WEEKLY_TRIGGER_HOUR", 20),
		WeeklyTriggerMinute:   getEnvAsInt("WEEKLY_TRIGGER_MINUTE", 0),
		MonthlyTriggerDay:     monthlyDay,
		MonthlyTriggerHour:    getEnvAsInt("MONTHLY_TRIGGER_HOUR", 9),

		ProfileName:            getEnv("PROFILE_NAME", ""),
		ProfileEmail:           getEnv("PROFILE_EMAIL", ""),
		ProfileWeeklyBudget:    getEnv("PROFILE_WEEKLY_BUDGET", "0"),
		ProfileMonthlyBudget:   getEnv("PROFILE_MONTHLY_BUDGET", ""),
		ProfileMaritalStatus:   getEnv("PROFILE_MARITAL_STATUS", ""),
		ProfileTaxClass:        getEnv("PROFILE_TAX_CLASS", "I"),
		ProfileReligiousStatus: getEnv("PROFILE_RELIGIOUS_STATUS", "None"),
		ProfileTaxYear:         getEnv("PROFILE_TAX_YEAR", "2023"),
	}

	if Cfg.EmailServiceProvider == "mailgun" {
		if Cfg.MailgunDomain == "" {
			log.Fatalf("FATAL: MAILGUN_DOMAIN is required when EMAIL_SERVICE_PROVIDER is 'mailgun', but it's not set in environment or .env file.")
		}
		if Cfg.MailgunPrivateAPIKey == "" {
			log.Fatalf("FATAL: MAILGUN_PRIVATE_API_KEY is required when EMAIL_SERVICE_PROVIDER is 'mailgun', but it's not set in environment or .env file.")
		}
		if Cfg.SenderEmail == "noreply@example.com" || Cfg.SenderEmail == "" {
			log.Fatalf("FATAL: SENDER_EMAIL must be configured properly (e.g., your Mailgun sender) when EMAIL_SERVICE_PROVIDER is 'mailgun'.")
		}
	}
	if Cfg.EmailServiceProvider == "smtp" && Cfg.SMTPPassword == "" {
		log.Println("WARNING: SMTP_PASSWORD is empty; SMTP sends will fail. Set it in the environment, never in source.")
	}

	log.Printf("Configuration loaded: LogLevel=%s, DBPath=%s, DataSource=%s, EmailProvider=%s, Scheduler=%t",
		Cfg.LogLevel, Cfg.DatabasePath, Cfg.DataSource, Cfg.EmailServiceProvider, Cfg.SchedulerEnabled)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Printf("Environment variable %s not set, using default: %s", key, fallback)
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		log.Printf("Integer value for %s not set or empty, using default: %d", key, fallback)
		return fallback
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid integer value for %s ('%s'), using default: %d", key, valueStr, fallback)
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		log.Printf("Duration value for %s not set or empty, using default: %s", key, fallback.String())
		return fallback
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid duration value for %s ('%s'), using default: %s", key, valueStr, fallback.String())
	return fallback
}

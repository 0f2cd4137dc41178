package services

import (
	"context"
	"fmt"

	"github.com/username/expensetracker/backend/src/logger"
	"github.com/username/expensetracker/backend/src/models"
	"golang.org/x/time/rate"
)

// Notifier delivers a rendered report to one destination. Implementations
// must not let a transport failure escape: this runs unattended on a
// timer, and one failed delivery must not kill the schedule. Failures are
// logged and swallowed.
type Notifier interface {
	Notify(ctx context.Context, profile models.UserProfile, report Report) error
}

// ConsoleNotifier prints the text rendering to stdout.
type ConsoleNotifier struct{}

func NewConsoleNotifier() *ConsoleNotifier {
	return &ConsoleNotifier{}
}

func (n *ConsoleNotifier) Notify(ctx context.Context, profile models.UserProfile, report Report) error {
	fmt.Println(report.TextBody)
	return nil
}

// EmailNotifier delivers the report through the configured email
// transport, throttled so a burst of scheduled runs cannot flood the
// provider.
type EmailNotifier struct {
	emailService EmailService
	limiter      *rate.Limiter
}

func NewEmailNotifier(emailService EmailService, limiter *rate.Limiter) *EmailNotifier {
	return &EmailNotifier{emailService: emailService, limiter: limiter}
}

func (n *EmailNotifier) Notify(ctx context.Context, profile models.UserProfile, report Report) error {
	if profile.Email == "" {
		logger.L.Warn("No email address on profile, skipping email delivery", "userID", profile.ID)
		return nil
	}
	if err := n.limiter.Wait(ctx); err != nil {
		logger.L.Warn("Email dispatch cancelled while waiting on rate limiter", "userID", profile.ID, "error", err)
		return nil
	}
	if err := n.emailService.SendReportEmail(ctx, profile.Email, profile.Name, report.Subject, report.TextBody, report.HTMLBody); err != nil {
		logger.L.Error("Report delivery failed, continuing", "userID", profile.ID, "to", profile.Email, "error", err)
		return nil
	}
	return nil
}

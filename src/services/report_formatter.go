package services

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/expensetracker/backend/src/models"
)

// Report is a rendered financial summary ready for delivery.
type Report struct {
	Subject  string
	TextBody string
	HTMLBody string
}

// ReportFormatter renders a FinancialSummary plus its budget verdicts into
// plain text (console, email text part) and HTML (email).
type ReportFormatter struct{}

func NewReportFormatter() *ReportFormatter {
	return &ReportFormatter{}
}

func (f *ReportFormatter) Format(profile models.UserProfile, summary *models.FinancialSummary, weekly models.BudgetVerdict, monthly *models.BudgetVerdict, now time.Time) Report {
	return Report{
		Subject:  fmt.Sprintf("ExpenseTracker Report - %s", now.Format("January 02, 2006")),
		TextBody: f.formatText(profile, summary, weekly, monthly),
		HTMLBody: f.formatHTML(profile, summary, weekly, monthly),
	}
}

func (f *ReportFormatter) formatText(profile models.UserProfile, summary *models.FinancialSummary, weekly models.BudgetVerdict, monthly *models.BudgetVerdict) string {
	var b strings.Builder
	b.WriteString("=== EXPENSE TRACKER RESULTS ===\n\n")
	fmt.Fprintf(&b, "Hello %s!\n\n", profile.Name)

	b.WriteString("Weekly Expenses:\n")
	for _, key := range sortedWeekKeys(summary.WeeklyExpenses) {
		fmt.Fprintf(&b, "  %s: %s\n", key, summary.WeeklyExpenses[key].StringFixed(2))
	}

	fmt.Fprintf(&b, "\nTotal Weekly Expenses: %s\n", summary.TotalWeeklyExpense.StringFixed(2))
	fmt.Fprintf(&b, "Total Monthly Income: %s\n", summary.TotalMonthlyIncome.StringFixed(2))
	fmt.Fprintf(&b, "Monthly Savings: %s\n", summary.MonthlySavings.StringFixed(2))
	fmt.Fprintf(&b, "Estimated Tax Due: %s\n\n", summary.EstimatedTax.StringFixed(2))

	f.appendVerdictText(&b, "weekly", weekly)
	if monthly != nil {
		f.appendVerdictText(&b, "monthly", *monthly)
	}
	return b.String()
}

func (f *ReportFormatter) appendVerdictText(b *strings.Builder, period string, v models.BudgetVerdict) {
	if v.OverBudget {
		fmt.Fprintf(b, "[ALERT] Your %s expenses (%s) exceed your budget (%s).\n",
			period, v.Amount.StringFixed(2), v.Threshold.StringFixed(2))
		return
	}
	fmt.Fprintf(b, "[INFO] Your %s expenses (%s) are within your budget (%s).\n",
		period, v.Amount.StringFixed(2), v.Threshold.StringFixed(2))
}

func (f *ReportFormatter) formatHTML(profile models.UserProfile, summary *models.FinancialSummary, weekly models.BudgetVerdict, monthly *models.BudgetVerdict) string {
	status := "Within Budget"
	statusColor := "#27ae60"
	if weekly.OverBudget {
		status = "Budget Exceeded"
		statusColor = "#e74c3c"
	}

	rows := fmt.Sprintf(`
			<tr style="background-color: #e9ecef;">
				<td style="padding: 10px; border: 1px solid #ddd; font-weight: bold;">Total Expenses:</td>
				<td style="padding: 10px; border: 1px solid #ddd;">%s</td>
			</tr>
			<tr>
				<td style="padding: 10px; border: 1px solid #ddd; font-weight: bold;">Weekly Budget:</td>
				<td style="padding: 10px; border: 1px solid #ddd;">%s</td>
			</tr>
			<tr style="background-color: #e9ecef;">
				<td style="padding: 10px; border: 1px solid #ddd; font-weight: bold;">Difference:</td>
				<td style="padding: 10px; border: 1px solid #ddd; color: %s;">%s</td>
			</tr>
			<tr>
				<td style="padding: 10px; border: 1px solid #ddd; font-weight: bold;">Monthly Income:</td>
				<td style="padding: 10px; border: 1px solid #ddd;">%s</td>
			</tr>
			<tr style="background-color: #e9ecef;">
				<td style="padding: 10px; border: 1px solid #ddd; font-weight: bold;">Monthly Savings:</td>
				<td style="padding: 10px; border: 1px solid #ddd;">%s</td>
			</tr>
			<tr>
				<td style="padding: 10px; border: 1px solid #ddd; font-weight: bold;">Estimated Tax:</td>
				<td style="padding: 10px; border: 1px solid #ddd;">%s</td>
			</tr>`,
		weekly.Amount.StringFixed(2),
		weekly.Threshold.StringFixed(2),
		statusColor, weekly.Delta.StringFixed(2),
		summary.TotalMonthlyIncome.StringFixed(2),
		summary.MonthlySavings.StringFixed(2),
		summary.EstimatedTax.StringFixed(2))

	if monthly != nil {
		monthlyStatus := "within budget"
		if monthly.OverBudget {
			monthlyStatus = "over budget"
		}
		rows += fmt.Sprintf(`
			<tr style="background-color: #e9ecef;">
				<td style="padding: 10px; border: 1px solid #ddd; font-weight: bold;">Monthly Budget:</td>
				<td style="padding: 10px; border: 1px solid #ddd;">%s (%s)</td>
			</tr>`,
			monthly.Threshold.StringFixed(2), monthlyStatus)
	}

	return fmt.Sprintf(`
	<html>
	<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
		<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
			<h2 style="color: %s; text-align: center;">ExpenseTracker Report</h2>
			<div style="background-color: #f8f9fa; padding: 20px; border-radius: 8px; margin: 20px 0;">
				<h3>Hello %s!</h3>
				<div style="background-color: %s; color: white; padding: 15px; border-radius: 5px; text-align: center; margin: 15px 0;">
					<h3 style="margin: 0;">%s</h3>
				</div>
				<table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">%s
				</table>
			</div>
			<p style="text-align: center; color: #666; font-size: 12px;">
				This is an automated message from your ExpenseTracker system.
			</p>
		</div>
	</body>
	</html>`, statusColor, profile.Name, statusColor, status, rows)
}

func sortedWeekKeys(buckets map[models.WeekKey]decimal.Decimal) []models.WeekKey {
	keys := make([]models.WeekKey, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Year != keys[j].Year {
			return keys[i].Year < keys[j].Year
		}
		return keys[i].Week < keys[j].Week
	})
	return keys
}

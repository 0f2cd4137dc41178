package processors

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/username/expensetracker/backend/src/logger"
	"github.com/username/expensetracker/backend/src/models"
)

var (
	// ErrNoData is returned when both transaction sets are empty.
	ErrNoData = errors.New("no data available to process")

	// ErrZeroOrNegativeIncome is returned when total monthly income is not
	// positive; savings and the tax estimate are undefined in that case.
	ErrZeroOrNegativeIncome = errors.New("total income is zero or negative, cannot calculate savings")
)

// MissingFieldError reports a required field absent from a loaded set.
type MissingFieldError struct {
	Set   models.RecordKind
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("field '%s' not found in %s data", e.Field, e.Set)
}

// Flat annual tax rate applied to 12x total monthly income. Tax class,
// year and religious status are carried on the profile but do not alter
// the rate; this is a placeholder formula, not a tax table.
var annualTaxRate = decimal.NewFromFloat(0.25)

var monthsPerYear = decimal.NewFromInt(12)

type summaryProcessorImpl struct{}

// NewSummaryProcessor creates a new instance of SummaryProcessor.
func NewSummaryProcessor() SummaryProcessor {
	return &summaryProcessorImpl{}
}

// Summarize buckets expenses by ISO week and both sets by calendar month,
// then derives totals, savings and the annual tax estimate. Rows whose
// date failed to parse contribute to no bucket. Weeks 52/53 spanning two
// calendar years are kept in their ISO year as-is.
func (p *summaryProcessorImpl) Summarize(expenses, income models.TransactionSet, profile models.UserProfile) (*models.FinancialSummary, error) {
	if expenses.Empty() && income.Empty() {
		return nil, ErrNoData
	}
	if !expenses.HasColumn("amount") {
		return nil, &MissingFieldError{Set: models.KindExpense, Field: "amount"}
	}

	summary := &models.FinancialSummary{
		WeeklyExpenses:  make(map[models.WeekKey]decimal.Decimal),
		MonthlyIncome:   make(map[models.MonthKey]decimal.Decimal),
		MonthlyExpenses: make(map[models.MonthKey]decimal.Decimal),
	}

	for _, tx := range expenses.Rows {
		if !tx.DateValid {
			continue
		}
		key := models.WeekKeyOf(tx.Date)
		summary.WeeklyExpenses[key] = summary.WeeklyExpenses[key].Add(tx.Amount)
	}
	for _, sum := range summary.WeeklyExpenses {
		summary.TotalWeeklyExpense = summary.TotalWeeklyExpense.Add(sum)
	}

	if !income.HasColumn("amount") {
		return nil, &MissingFieldError{Set: models.KindIncome, Field: "amount"}
	}

	for _, tx := range income.Rows {
		if !tx.DateValid {
			continue
		}
		key := models.MonthKeyOf(tx.Date)
		summary.MonthlyIncome[key] = summary.MonthlyIncome[key].Add(tx.Amount)
	}
	for _, sum := range summary.MonthlyIncome {
		summary.TotalMonthlyIncome = summary.TotalMonthlyIncome.Add(sum)
	}

	if summary.TotalMonthlyIncome.Sign() <= 0 {
		return nil, ErrZeroOrNegativeIncome
	}

	if !expenses.HasColumn("date") {
		return nil, &MissingFieldError{Set: models.KindExpense, Field: "date"}
	}

	for _, tx := range expenses.Rows {
		if !tx.DateValid {
			continue
		}
		key := models.MonthKeyOf(tx.Date)
		summary.MonthlyExpenses[key] = summary.MonthlyExpenses[key].Add(tx.Amount)
	}
	for _, sum := range summary.MonthlyExpenses {
		summary.TotalMonthlyExpense = summary.TotalMonthlyExpense.Add(sum)
	}

	summary.MonthlySavings = summary.TotalMonthlyIncome.Sub(summary.TotalMonthlyExpense)
	summary.EstimatedTax = summary.TotalMonthlyIncome.Mul(monthsPerYear).Mul(annualTaxRate)

	logger.L.Debug("Financial summary computed",
		"weeklyBuckets", len(summary.WeeklyExpenses),
		"monthlyIncomeBuckets", len(summary.MonthlyIncome),
		"monthlyExpenseBuckets", len(summary.MonthlyExpenses),
		"savings", summary.MonthlySavings.StringFixed(2),
		"estimatedTax", summary.EstimatedTax.StringFixed(2),
		"taxYear", profile.TaxYear)
	return summary, nil
}

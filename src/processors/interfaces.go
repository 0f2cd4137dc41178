package processors

import (
	"github.com/shopspring/decimal"
	"github.com/username/expensetracker/backend/src/models"
)

// SummaryProcessor reduces the loaded transaction sets to a
// FinancialSummary, or reports a descriptive failure reason.
type SummaryProcessor interface {
	Summarize(expenses, income models.TransactionSet, profile models.UserProfile) (*models.FinancialSummary, error)
}

// BudgetProcessor compares an aggregate amount against a raw threshold.
// It never fails; bad thresholds are coerced with a logged warning.
type BudgetProcessor interface {
	Evaluate(amount decimal.Decimal, rawThreshold string) models.BudgetVerdict
}

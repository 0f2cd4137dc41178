package processors

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/username/expensetracker/backend/src/logger"
	"github.com/username/expensetracker/backend/src/models"
)

type budgetProcessorImpl struct{}

// NewBudgetProcessor creates a new instance of BudgetProcessor.
func NewBudgetProcessor() BudgetProcessor {
	return &budgetProcessorImpl{}
}

// Evaluate classifies an aggregate amount against a user-supplied
// threshold. A non-numeric or negative threshold is treated as zero (any
// positive spend is then over budget) with a logged warning.
func (p *budgetProcessorImpl) Evaluate(amount decimal.Decimal, rawThreshold string) models.BudgetVerdict {
	threshold, coerced := parseThreshold(rawThreshold)

	return models.BudgetVerdict{
		Amount:     amount,
		Threshold:  threshold,
		Delta:      amount.Sub(threshold),
		OverBudget: amount.GreaterThan(threshold),
		Coerced:    coerced,
	}
}

func parseThreshold(raw string) (decimal.Decimal, bool) {
	trimmed := strings.TrimSpace(raw)
	threshold, err := decimal.NewFromString(trimmed)
	if err != nil {
		logger.L.Warn("Invalid budget threshold, using 0", "threshold", raw)
		return decimal.Zero, true
	}
	if threshold.Sign() < 0 {
		logger.L.Warn("Negative budget threshold, using 0", "threshold", raw)
		return decimal.Zero, true
	}
	return threshold, false
}

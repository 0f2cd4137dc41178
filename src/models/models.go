package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RecordKind distinguishes the two transaction collections. Expense and
// income rows share one shape but are never mixed in one set.
type RecordKind string

const (
	KindExpense RecordKind = "expense"
	KindIncome  RecordKind = "income"
)

// Transaction is one financial event. Label holds the category for an
// expense row or the source for an income row. Rows whose date failed to
// parse keep DateValid=false and are excluded from all period buckets.
type Transaction struct {
	Date        time.Time       `json:"date"`
	RawDate     string          `json:"raw_date"`
	DateValid   bool            `json:"date_valid"`
	Amount      decimal.Decimal `json:"amount"`
	Label       string          `json:"label"`
	Description string          `json:"description,omitempty"`
}

// TransactionSet is the ordered output of one loader invocation. Columns
// records the field names the loader actually saw in the source; required
// field presence is validated downstream, not by the loader.
type TransactionSet struct {
	Rows    []Transaction
	Columns []string
}

func (s TransactionSet) Empty() bool {
	return len(s.Rows) == 0
}

func (s TransactionSet) HasColumn(name string) bool {
	for _, c := range s.Columns {
		if strings.EqualFold(c, name) {
			return true
		}
	}
	return false
}

// WeekKey is an ISO-8601 week bucket key. Weeks 52/53 that span two
// calendar years stay in their ISO year, no cross-year merge.
type WeekKey struct {
	Year int
	Week int
}

func (k WeekKey) String() string {
	return fmt.Sprintf("%04d-W%02d", k.Year, k.Week)
}

func WeekKeyOf(t time.Time) WeekKey {
	year, week := t.ISOWeek()
	return WeekKey{Year: year, Week: week}
}

// MonthKey is a calendar (year, month) bucket key.
type MonthKey struct {
	Year  int
	Month time.Month
}

func (k MonthKey) String() string {
	return fmt.Sprintf("%04d-%02d", k.Year, int(k.Month))
}

func MonthKeyOf(t time.Time) MonthKey {
	return MonthKey{Year: t.Year(), Month: t.Month()}
}

// FinancialSummary is the aggregator's output. Derived, recomputed on
// every run, never mutated after construction.
//
// TotalWeeklyExpense is the sum over every weekly bucket present in the
// loaded range, not an isolated "current week" figure. That mirrors the
// behaviour this report has always had; callers that want a single week
// can read its bucket from WeeklyExpenses.
type FinancialSummary struct {
	WeeklyExpenses  map[WeekKey]decimal.Decimal
	MonthlyIncome   map[MonthKey]decimal.Decimal
	MonthlyExpenses map[MonthKey]decimal.Decimal

	TotalWeeklyExpense  decimal.Decimal
	TotalMonthlyIncome  decimal.Decimal
	TotalMonthlyExpense decimal.Decimal
	MonthlySavings      decimal.Decimal
	EstimatedTax        decimal.Decimal
}

// BudgetVerdict classifies an aggregate amount against a threshold.
// Coerced is true when the raw threshold was non-numeric or negative and
// was replaced with zero.
type BudgetVerdict struct {
	Amount     decimal.Decimal
	Threshold  decimal.Decimal
	Delta      decimal.Decimal
	OverBudget bool
	Coerced    bool
}

// UserProfile is the long-lived per-user record. Budget fields keep the
// raw text they were collected with; coercion to a number happens at
// evaluation time so bad input warns instead of failing the pipeline.
// Tax class, year and religious/marital status are descriptive inputs to
// a fixed-rate estimate, not a tax table.
type UserProfile struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	WeeklyBudget    string    `json:"weekly_budget"`
	MonthlyBudget   string    `json:"monthly_budget"`
	MaritalStatus   string    `json:"marital_status"`
	TaxClass        string    `json:"tax_class"`
	ReligiousStatus string    `json:"religious_status"`
	TaxYear         string    `json:"tax_year"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

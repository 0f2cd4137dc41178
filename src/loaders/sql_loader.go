package loaders

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"
	"github.com/username/expensetracker/backend/src/logger"
	"github.com/username/expensetracker/backend/src/models"
	"github.com/username/expensetracker/backend/src/utils"
)

// SQLLoader reads a user's transactions from the relational store. The row
// shape matches the CSV files, so everything downstream of a Load call is
// transport-agnostic.
type SQLLoader struct {
	db *sql.DB
}

func NewSQLLoader(db *sql.DB) *SQLLoader {
	return &SQLLoader{db: db}
}

var (
	expenseColumns = []string{"date", "amount", "category", "description", "payment_method", "vendor"}
	incomeColumns  = []string{"date", "amount", "source", "type", "notes"}
)

func (l *SQLLoader) Load(ctx context.Context, ref SourceRef) models.TransactionSet {
	query := `SELECT date, amount, category, description FROM expenses WHERE user_id = ? ORDER BY date DESC`
	columns := expenseColumns
	if ref.Kind == models.KindIncome {
		query = `SELECT date, amount, source, notes FROM income WHERE user_id = ? ORDER BY date DESC`
		columns = incomeColumns
	}

	rows, err := l.db.QueryContext(ctx, query, ref.UserID)
	if err != nil {
		logger.L.Warn("Database source unreadable, continuing with empty set",
			"userID", ref.UserID, "kind", string(ref.Kind), "error", err)
		return models.TransactionSet{}
	}
	defer rows.Close()

	set := models.TransactionSet{Columns: columns}
	for rows.Next() {
		var rawDate string
		var amount float64
		var label, description sql.NullString
		if err := rows.Scan(&rawDate, &amount, &label, &description); err != nil {
			logger.L.Warn("Skipping unreadable transaction row",
				"userID", ref.UserID, "kind", string(ref.Kind), "error", err)
			continue
		}

		tx := models.Transaction{
			RawDate:     rawDate,
			Amount:      decimal.NewFromFloat(amount),
			Label:       label.String,
			Description: description.String,
		}
		if date, err := utils.ParseDate(rawDate); err == nil {
			tx.Date = date
			tx.DateValid = true
		} else {
			logger.L.Warn("Row date unparseable, excluded from period buckets",
				"userID", ref.UserID, "date", rawDate)
		}
		set.Rows = append(set.Rows, tx)
	}
	if err := rows.Err(); err != nil {
		logger.L.Warn("Error iterating transaction rows, returning partial set",
			"userID", ref.UserID, "kind", string(ref.Kind), "error", err)
	}

	logger.L.Info("Database data loaded", "userID", ref.UserID, "kind", string(ref.Kind), "rows", len(set.Rows))
	return set
}

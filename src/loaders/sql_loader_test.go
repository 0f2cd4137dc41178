package loaders

import (
	"context"
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/username/expensetracker/backend/src/models"
	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	schema := `
	CREATE TABLE expenses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		date TEXT NOT NULL,
		amount REAL NOT NULL,
		category TEXT,
		description TEXT,
		payment_method TEXT,
		vendor TEXT
	);
	CREATE TABLE income (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		date TEXT NOT NULL,
		amount REAL NOT NULL,
		source TEXT,
		type TEXT,
		notes TEXT
	);`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("failed to create test schema: %v", err)
	}
	return db
}

func TestSQLLoader_ExpensesForUser(t *testing.T) {
	db := openTestDB(t)
	insert := `INSERT INTO expenses (user_id, date, amount, category, description) VALUES (?, ?, ?, ?, ?)`
	rows := []struct {
		userID   int64
		date     string
		amount   float64
		category string
	}{
		{1, "2024-01-01", 10.5, "Food"},
		{1, "2024-01-02", 20, "Transport"},
		{2, "2024-01-03", 99, "OtherUser"},
	}
	for _, r := range rows {
		if _, err := db.Exec(insert, r.userID, r.date, r.amount, r.category, ""); err != nil {
			t.Fatalf("failed to insert test row: %v", err)
		}
	}

	l := NewSQLLoader(db)
	set := l.Load(context.Background(), SourceRef{Kind: models.KindExpense, UserID: 1})

	if len(set.Rows) != 2 {
		t.Fatalf("expected 2 rows for user 1, got %d", len(set.Rows))
	}
	if !set.HasColumn("amount") || !set.HasColumn("date") {
		t.Errorf("expected amount and date columns, got %v", set.Columns)
	}
	var total decimal.Decimal
	for _, tx := range set.Rows {
		if !tx.DateValid {
			t.Errorf("expected valid date for row %q", tx.RawDate)
		}
		total = total.Add(tx.Amount)
	}
	if !total.Equal(decimal.RequireFromString("30.5")) {
		t.Errorf("total = %s, want 30.5", total)
	}
}

func TestSQLLoader_IncomeLabelIsSource(t *testing.T) {
	db := openTestDB(t)
	if _, err := db.Exec(
		`INSERT INTO income (user_id, date, amount, source, notes) VALUES (1, '2024-02-01', 2500, 'Salary', 'February pay')`); err != nil {
		t.Fatalf("failed to insert income row: %v", err)
	}

	l := NewSQLLoader(db)
	set := l.Load(context.Background(), SourceRef{Kind: models.KindIncome, UserID: 1})
	if len(set.Rows) != 1 {
		t.Fatalf("expected 1 income row, got %d", len(set.Rows))
	}
	if set.Rows[0].Label != "Salary" {
		t.Errorf("label = %q, want Salary", set.Rows[0].Label)
	}
}

func TestSQLLoader_NoTableYieldsEmptySet(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	l := NewSQLLoader(db)
	set := l.Load(context.Background(), SourceRef{Kind: models.KindExpense, UserID: 1})
	if !set.Empty() {
		t.Fatalf("expected empty set when table is missing, got %d rows", len(set.Rows))
	}
}

package loaders

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/username/expensetracker/backend/src/logger"
	"github.com/username/expensetracker/backend/src/models"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	os.Exit(m.Run())
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write test csv: %v", err)
	}
	return path
}

func TestCSVLoader_MissingFileYieldsEmptySet(t *testing.T) {
	l := NewCSVLoader()
	set := l.Load(context.Background(), SourceRef{Kind: models.KindExpense, Path: "does/not/exist.csv"})
	if !set.Empty() {
		t.Fatalf("expected empty set for missing file, got %d rows", len(set.Rows))
	}
	if len(set.Columns) != 0 {
		t.Errorf("expected no columns for missing file, got %v", set.Columns)
	}
}

func TestCSVLoader_ExpenseRows(t *testing.T) {
	path := writeCSV(t, `Date,Category,Amount,Description,Payment_Method,Vendor
2024-01-01,Food,10.50,Lunch,Card,Cafe
bad-date,Transport,5,Bus ticket,Cash,Metro
2024-01-02,Misc,not-a-number,Broken row,Card,Shop
`)

	l := NewCSVLoader()
	set := l.Load(context.Background(), SourceRef{Kind: models.KindExpense, Path: path})

	// The unparseable-amount row is skipped entirely; the bad-date row is
	// kept but excluded from bucketing.
	if len(set.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(set.Rows))
	}
	if !set.HasColumn("amount") || !set.HasColumn("date") {
		t.Errorf("expected amount and date columns, got %v", set.Columns)
	}

	first := set.Rows[0]
	if !first.DateValid {
		t.Error("first row should have a valid date")
	}
	if !first.Amount.Equal(decimal.RequireFromString("10.50")) {
		t.Errorf("first row amount = %s, want 10.50", first.Amount)
	}
	if first.Label != "Food" || first.Description != "Lunch" {
		t.Errorf("unexpected label/description: %q/%q", first.Label, first.Description)
	}

	second := set.Rows[1]
	if second.DateValid {
		t.Error("bad-date row should be marked date-invalid")
	}
	if second.RawDate != "bad-date" {
		t.Errorf("raw date = %q, want bad-date", second.RawDate)
	}
}

func TestCSVLoader_IncomeLabelMapping(t *testing.T) {
	path := writeCSV(t, `Date,Amount,Source,Type,Notes
2024-02-01,2500,Salary,Recurring,February pay
`)

	l := NewCSVLoader()
	set := l.Load(context.Background(), SourceRef{Kind: models.KindIncome, Path: path})
	if len(set.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(set.Rows))
	}
	if set.Rows[0].Label != "Salary" {
		t.Errorf("income label = %q, want Salary", set.Rows[0].Label)
	}
	if set.Rows[0].Description != "February pay" {
		t.Errorf("income description = %q, want February pay", set.Rows[0].Description)
	}
}

func TestCSVLoader_HeaderOnlyFile(t *testing.T) {
	path := writeCSV(t, "Date,Category,Amount,Description,Payment_Method,Vendor\n")

	l := NewCSVLoader()
	set := l.Load(context.Background(), SourceRef{Kind: models.KindExpense, Path: path})
	if !set.Empty() {
		t.Fatalf("expected empty set, got %d rows", len(set.Rows))
	}
	// Columns are still reported so downstream field validation can run.
	if !set.HasColumn("amount") {
		t.Errorf("expected amount column from header, got %v", set.Columns)
	}
}

package loaders

import (
	"context"
	"encoding/csv"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/username/expensetracker/backend/src/logger"
	"github.com/username/expensetracker/backend/src/models"
	"github.com/username/expensetracker/backend/src/utils"
)

// CSVLoader reads delimited transaction files. Expense files carry
// Date, Category, Amount, Description, Payment_Method, Vendor; income
// files carry Date, Amount, Source, Type, Notes. Column positions are
// resolved from the header, not assumed.
type CSVLoader struct{}

func NewCSVLoader() *CSVLoader {
	return &CSVLoader{}
}

func (l *CSVLoader) Load(ctx context.Context, ref SourceRef) models.TransactionSet {
	file, err := os.Open(ref.Path)
	if err != nil {
		logger.L.Warn("CSV source unreadable, continuing with empty set",
			"path", ref.Path, "kind", string(ref.Kind), "error", err)
		return models.TransactionSet{}
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		logger.L.Warn("CSV source has no readable header, continuing with empty set",
			"path", ref.Path, "kind", string(ref.Kind), "error", err)
		return models.TransactionSet{}
	}

	columns := make([]string, 0, len(header))
	colIndex := make(map[string]int, len(header))
	for i, name := range header {
		trimmed := strings.TrimSpace(name)
		columns = append(columns, trimmed)
		colIndex[strings.ToLower(trimmed)] = i
	}

	records, err := reader.ReadAll()
	if err != nil {
		logger.L.Warn("CSV source malformed, continuing with empty set",
			"path", ref.Path, "kind", string(ref.Kind), "error", err)
		return models.TransactionSet{}
	}

	labelColumn := "category"
	descColumn := "description"
	if ref.Kind == models.KindIncome {
		labelColumn = "source"
		descColumn = "notes"
	}

	set := models.TransactionSet{Columns: columns}
	for _, record := range records {
		amountStr := fieldAt(record, colIndex, "amount")
		amount, err := decimal.NewFromString(strings.TrimSpace(amountStr))
		if err != nil {
			logger.L.Warn("Skipping CSV row with unparseable amount",
				"path", ref.Path, "amount", amountStr, "error", err)
			continue
		}

		tx := models.Transaction{
			RawDate:     fieldAt(record, colIndex, "date"),
			Amount:      amount,
			Label:       fieldAt(record, colIndex, labelColumn),
			Description: fieldAt(record, colIndex, descColumn),
		}
		if date, err := utils.ParseDate(tx.RawDate); err == nil {
			tx.Date = date
			tx.DateValid = true
		} else {
			logger.L.Warn("Row date unparseable, excluded from period buckets",
				"path", ref.Path, "date", tx.RawDate)
		}
		set.Rows = append(set.Rows, tx)
	}

	logger.L.Info("CSV data loaded", "path", ref.Path, "kind", string(ref.Kind), "rows", len(set.Rows))
	return set
}

func fieldAt(record []string, colIndex map[string]int, name string) string {
	i, ok := colIndex[name]
	if !ok || i >= len(record) {
		return ""
	}
	return record[i]
}

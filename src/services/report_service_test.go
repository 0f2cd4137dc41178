package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"github.com/username/expensetracker/backend/src/config"
	"github.com/username/expensetracker/backend/src/loaders"
	"github.com/username/expensetracker/backend/src/models"
	"github.com/username/expensetracker/backend/src/processors"
)

type stubLoader struct {
	expenses models.TransactionSet
	income   models.TransactionSet
	loads    int
}

func (l *stubLoader) Load(ctx context.Context, ref loaders.SourceRef) models.TransactionSet {
	l.loads++
	if ref.Kind == models.KindIncome {
		return l.income
	}
	return l.expenses
}

type capturingNotifier struct {
	reports []Report
}

func (n *capturingNotifier) Notify(ctx context.Context, profile models.UserProfile, report Report) error {
	n.reports = append(n.reports, report)
	return nil
}

type memoryProfileStore struct {
	profiles []models.UserProfile
}

func (s *memoryProfileStore) Save(ctx context.Context, profile *models.UserProfile) error {
	if profile.ID == 0 {
		profile.ID = int64(len(s.profiles) + 1)
	}
	s.profiles = append(s.profiles, *profile)
	return nil
}

func (s *memoryProfileStore) GetByEmail(ctx context.Context, email string) (*models.UserProfile, error) {
	for i := range s.profiles {
		if s.profiles[i].Email == email {
			return &s.profiles[i], nil
		}
	}
	return nil, errors.New("profile not found")
}

func (s *memoryProfileStore) List(ctx context.Context) ([]models.UserProfile, error) {
	return s.profiles, nil
}

func testTransaction(date string, amount int64) models.Transaction {
	parsed, _ := time.Parse("2006-01-02", date)
	return models.Transaction{Date: parsed, RawDate: date, DateValid: true, Amount: decimal.NewFromInt(amount)}
}

func newTestService(loader loaders.Loader, notifier Notifier, store ProfileStore) *ReportService {
	return NewReportService(
		loader,
		processors.NewSummaryProcessor(),
		processors.NewBudgetProcessor(),
		NewReportFormatter(),
		[]Notifier{notifier},
		store,
		cache.New(time.Minute, time.Minute),
	)
}

func TestRun_ProducesVerdictAndNotifies(t *testing.T) {
	loader := &stubLoader{
		expenses: models.TransactionSet{
			Rows:    []models.Transaction{testTransaction("2024-01-01", 120)},
			Columns: []string{"Date", "Amount"},
		},
		income: models.TransactionSet{
			Rows:    []models.Transaction{testTransaction("2024-01-05", 1000)},
			Columns: []string{"Date", "Amount"},
		},
	}
	notifier := &capturingNotifier{}
	svc := newTestService(loader, notifier, &memoryProfileStore{})

	profile := models.UserProfile{ID: 1, Name: "Alice", Email: "alice@example.com", WeeklyBudget: "100"}
	result, err := svc.Run(context.Background(), profile)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !result.WeeklyVerdict.OverBudget {
		t.Error("expected over-budget weekly verdict")
	}
	if !result.WeeklyVerdict.Delta.Equal(decimal.NewFromInt(20)) {
		t.Errorf("delta = %s, want 20", result.WeeklyVerdict.Delta)
	}
	if result.MonthlyVerdict != nil {
		t.Error("expected no monthly verdict without a monthly budget")
	}
	if len(notifier.reports) != 1 {
		t.Fatalf("expected 1 delivered report, got %d", len(notifier.reports))
	}
	if loader.loads != 2 {
		t.Errorf("expected 2 loads (expenses + income), got %d", loader.loads)
	}

	cached, ok := svc.LatestResult(1)
	if !ok {
		t.Fatal("expected cached result after run")
	}
	if cached.RunID != result.RunID {
		t.Error("cached result does not match returned result")
	}
}

func TestRun_DescriptiveFailureOnNoData(t *testing.T) {
	loader := &stubLoader{}
	svc := newTestService(loader, &capturingNotifier{}, &memoryProfileStore{})

	_, err := svc.Run(context.Background(), models.UserProfile{ID: 2})
	if !errors.Is(err, processors.ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
	if _, ok := svc.LatestResult(2); ok {
		t.Error("no result should be cached for a failed run")
	}
}

type perUserLoader struct {
	sets map[int64]map[models.RecordKind]models.TransactionSet
}

func (l *perUserLoader) Load(ctx context.Context, ref loaders.SourceRef) models.TransactionSet {
	return l.sets[ref.UserID][ref.Kind]
}

func TestRunForAllProfiles_OneFailureDoesNotStopOthers(t *testing.T) {
	// Route refs through user ids so the loader can fail one user only.
	config.Cfg = &config.AppConfig{DataSource: "sqlite"}
	t.Cleanup(func() { config.Cfg = nil })

	okSets := map[models.RecordKind]models.TransactionSet{
		models.KindExpense: {
			Rows:    []models.Transaction{testTransaction("2024-01-01", 50)},
			Columns: []string{"Date", "Amount"},
		},
		models.KindIncome: {
			Rows:    []models.Transaction{testTransaction("2024-01-05", 1000)},
			Columns: []string{"Date", "Amount"},
		},
	}
	loader := &perUserLoader{sets: map[int64]map[models.RecordKind]models.TransactionSet{
		1: okSets,
		// User 2 has an unreadable source: both sets come back empty.
	}}
	notifier := &capturingNotifier{}
	store := &memoryProfileStore{profiles: []models.UserProfile{
		{ID: 2, Name: "Bob", Email: "bob@example.com", WeeklyBudget: "100"},
		{ID: 1, Name: "Alice", Email: "alice@example.com", WeeklyBudget: "100"},
	}}
	svc := newTestService(loader, notifier, store)

	svc.RunForAllProfiles(context.Background())

	if len(notifier.reports) != 1 {
		t.Fatalf("expected 1 delivered report, got %d", len(notifier.reports))
	}
	if _, ok := svc.LatestResult(1); !ok {
		t.Error("expected cached result for user 1 despite user 2 failing first")
	}
	if _, ok := svc.LatestResult(2); ok {
		t.Error("no result should be cached for the failing user")
	}
}

func TestRun_MonthlyVerdictWhenBudgetSet(t *testing.T) {
	loader := &stubLoader{
		expenses: models.TransactionSet{
			Rows:    []models.Transaction{testTransaction("2024-01-01", 400)},
			Columns: []string{"Date", "Amount"},
		},
		income: models.TransactionSet{
			Rows:    []models.Transaction{testTransaction("2024-01-05", 1000)},
			Columns: []string{"Date", "Amount"},
		},
	}
	svc := newTestService(loader, &capturingNotifier{}, &memoryProfileStore{})

	profile := models.UserProfile{ID: 3, Name: "Carol", WeeklyBudget: "500", MonthlyBudget: "300"}
	result, err := svc.Run(context.Background(), profile)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.MonthlyVerdict == nil {
		t.Fatal("expected a monthly verdict")
	}
	if !result.MonthlyVerdict.OverBudget {
		t.Error("expected monthly spend 400 over budget 300")
	}
}

package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/username/expensetracker/backend/src/models"
)

// ProfileStore persists UserProfile records. Profiles are written once
// after collection and read by every scheduled run.
type ProfileStore interface {
	Save(ctx context.Context, profile *models.UserProfile) error
	GetByEmail(ctx context.Context, email string) (*models.UserProfile, error)
	List(ctx context.Context) ([]models.UserProfile, error)
}

type sqliteProfileStore struct {
	db *sql.DB
}

func NewProfileStore(db *sql.DB) ProfileStore {
	return &sqliteProfileStore{db: db}
}

// Save inserts the profile, or updates it when the email already exists.
func (s *sqliteProfileStore) Save(ctx context.Context, profile *models.UserProfile) error {
	now := time.Now()
	query := `
	INSERT INTO users (name, email, weekly_budget, monthly_budget, marital_status, tax_class, religious_status, tax_year, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(email) DO UPDATE SET
		name = excluded.name,
		weekly_budget = excluded.weekly_budget,
		monthly_budget = excluded.monthly_budget,
		marital_status = excluded.marital_status,
		tax_class = excluded.tax_class,
		religious_status = excluded.religious_status,
		tax_year = excluded.tax_year,
		updated_at = excluded.updated_at`

	_, err := s.db.ExecContext(ctx, query,
		profile.Name, profile.Email, profile.WeeklyBudget, profile.MonthlyBudget,
		profile.MaritalStatus, profile.TaxClass, profile.ReligiousStatus, profile.TaxYear,
		now, now)
	if err != nil {
		return fmt.Errorf("failed to save profile for %s: %w", profile.Email, err)
	}
	profile.UpdatedAt = now

	// LastInsertId is stale for the update arm of an upsert; resolve the
	// id by email instead.
	row := s.db.QueryRowContext(ctx, `SELECT id FROM users WHERE email = ?`, profile.Email)
	if err := row.Scan(&profile.ID); err != nil {
		return fmt.Errorf("failed to resolve profile id for %s: %w", profile.Email, err)
	}
	return nil
}

func (s *sqliteProfileStore) GetByEmail(ctx context.Context, email string) (*models.UserProfile, error) {
	row := s.db.QueryRowContext(ctx, `
	SELECT id, name, email, weekly_budget, monthly_budget, marital_status, tax_class, religious_status, tax_year, created_at, updated_at
	FROM users WHERE email = ?`, email)

	profile, err := scanProfile(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("profile not found for %s", email)
		}
		return nil, fmt.Errorf("failed to load profile for %s: %w", email, err)
	}
	return profile, nil
}

func (s *sqliteProfileStore) List(ctx context.Context) ([]models.UserProfile, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT id, name, email, weekly_budget, monthly_budget, marital_status, tax_class, religious_status, tax_year, created_at, updated_at
	FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []models.UserProfile
	for rows.Next() {
		profile, err := scanProfile(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile row: %w", err)
		}
		profiles = append(profiles, *profile)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating profile rows: %w", err)
	}
	return profiles, nil
}

func scanProfile(scan func(dest ...any) error) (*models.UserProfile, error) {
	var p models.UserProfile
	var marital, taxClass, religious, taxYear sql.NullString
	err := scan(&p.ID, &p.Name, &p.Email, &p.WeeklyBudget, &p.MonthlyBudget,
		&marital, &taxClass, &religious, &taxYear, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.MaritalStatus = marital.String
	p.TaxClass = taxClass.String
	p.ReligiousStatus = religious.String
	p.TaxYear = taxYear.String
	return &p, nil
}

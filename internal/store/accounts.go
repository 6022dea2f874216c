package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/alextreichler/storefront/internal/models"
	"github.com/google/uuid"
)

var ErrEmailTaken = errors.New("an account with this email already exists")

// GetAccountByEmail returns nil, nil when no account matches.
func (s *Store) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	row := s.q.QueryRowContext(ctx, `SELECT id, email, password, display_name, is_admin, created_at FROM accounts WHERE email = ?`, normalizeEmail(email))
	a, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return a, err
}

func (s *Store) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	row := s.q.QueryRowContext(ctx, `SELECT id, email, password, display_name, is_admin, created_at FROM accounts WHERE id = ?`, id)
	a, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return a, err
}

// CreateAccount stores an account with an already hashed password and assigns its ID.
func (s *Store) CreateAccount(ctx context.Context, a *models.Account) error {
	existing, err := s.GetAccountByEmail(ctx, a.Email)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrEmailTaken
	}

	now := s.now().UTC()
	id := uuid.NewString()
	_, err = s.q.ExecContext(ctx, `INSERT INTO accounts (id, email, password, display_name, is_admin, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, normalizeEmail(a.Email), a.Password, a.DisplayName, a.IsAdmin, now.Format(timeLayout))
	if err != nil {
		return err
	}
	a.ID = id
	a.Email = normalizeEmail(a.Email)
	a.CreatedAt = now
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func scanAccount(row rowScanner) (*models.Account, error) {
	var (
		a       models.Account
		created string
	)
	if err := row.Scan(&a.ID, &a.Email, &a.Password, &a.DisplayName, &a.IsAdmin, &created); err != nil {
		return nil, err
	}
	var err error
	if a.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	return &a, nil
}

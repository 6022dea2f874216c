package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/alextreichler/storefront/internal/apperr"
	"github.com/alextreichler/storefront/internal/models"
	"github.com/google/uuid"
)

const addressColumns = `id, account_id, label, full_name, phone_number, street_address, city, province, zip_code, country, is_default, created_at, updated_at`

func (s *Store) ListAddresses(ctx context.Context, accountID string) ([]models.Address, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT `+addressColumns+` FROM addresses WHERE account_id = ? ORDER BY created_at, id`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var addrs []models.Address
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, err
		}
		addrs = append(addrs, *a)
	}
	return addrs, rows.Err()
}

func (s *Store) GetAddress(ctx context.Context, accountID, addressID string) (*models.Address, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+addressColumns+` FROM addresses WHERE account_id = ? AND id = ?`, accountID, addressID)
	a, err := scanAddress(row)
	if err == sql.ErrNoRows {
		return nil, apperr.ErrNotFound
	}
	return a, err
}

func (s *Store) CreateAddress(ctx context.Context, accountID string, a *models.Address) error {
	now := s.timestamp()
	id := uuid.NewString()
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO addresses (id, account_id, label, full_name, phone_number, street_address, city, province, zip_code, country, is_default, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, accountID, a.Label, a.FullName, a.PhoneNumber, a.StreetAddress, a.City, a.Province, a.ZipCode, a.Country, a.IsDefault, now, now)
	if err != nil {
		return err
	}

	a.ID = id
	a.AccountID = accountID
	a.CreatedAt, _ = parseTime(now)
	a.UpdatedAt = a.CreatedAt
	return nil
}

func (s *Store) UpdateAddress(ctx context.Context, accountID string, a *models.Address) error {
	now := s.timestamp()
	res, err := s.q.ExecContext(ctx, `
		UPDATE addresses SET label = ?, full_name = ?, phone_number = ?, street_address = ?, city = ?, province = ?, zip_code = ?, country = ?, is_default = ?, updated_at = ?
		WHERE account_id = ? AND id = ?`,
		a.Label, a.FullName, a.PhoneNumber, a.StreetAddress, a.City, a.Province, a.ZipCode, a.Country, a.IsDefault, now, accountID, a.ID)
	if err := expectOne(res, err); err != nil {
		return err
	}

	a.AccountID = accountID
	a.UpdatedAt, _ = parseTime(now)
	return nil
}

func (s *Store) DeleteAddress(ctx context.Context, accountID, addressID string) error {
	_, err := s.q.ExecContext(ctx, `DELETE FROM addresses WHERE account_id = ? AND id = ?`, accountID, addressID)
	return err
}

func (s *Store) SetAddressDefault(ctx context.Context, accountID, addressID string, isDefault bool) error {
	res, err := s.q.ExecContext(ctx, `UPDATE addresses SET is_default = ?, updated_at = ? WHERE account_id = ? AND id = ?`,
		isDefault, s.timestamp(), accountID, addressID)
	return expectOne(res, err)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAddress(row rowScanner) (*models.Address, error) {
	var (
		a                models.Address
		created, updated string
	)
	if err := row.Scan(&a.ID, &a.AccountID, &a.Label, &a.FullName, &a.PhoneNumber, &a.StreetAddress, &a.City, &a.Province, &a.ZipCode, &a.Country, &a.IsDefault, &created, &updated); err != nil {
		return nil, err
	}
	var err error
	if a.CreatedAt, err = parseTime(created); err != nil {
		return nil, fmt.Errorf("address %s: bad created_at: %w", a.ID, err)
	}
	if a.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, fmt.Errorf("address %s: bad updated_at: %w", a.ID, err)
	}
	return &a, nil
}

func expectOne(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

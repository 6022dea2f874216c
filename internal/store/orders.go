package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/alextreichler/storefront/internal/apperr"
	"github.com/alextreichler/storefront/internal/models"
	"github.com/google/uuid"
)

const orderColumns = `id, account_id, order_number, items, subtotal, tax, shipping, total, address, payment_method, status, created_at`

// CreateOrder stores the order document and assigns order.ID.
func (s *Store) CreateOrder(ctx context.Context, accountID string, order *models.Order) error {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("failed to encode order items: %w", err)
	}
	addr, err := json.Marshal(order.Address)
	if err != nil {
		return fmt.Errorf("failed to encode shipping address: %w", err)
	}
	status := order.Status
	if status == "" {
		status = models.StatusProcessing
	}
	createdAt := order.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}

	id := uuid.NewString()
	_, err = s.q.ExecContext(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, accountID, order.OrderNumber, string(items), order.Subtotal, order.Tax, order.Shipping, order.Total,
		string(addr), order.PaymentMethod, status, createdAt.UTC().Format(timeLayout))
	if err != nil {
		return err
	}

	order.ID = id
	order.AccountID = accountID
	order.Status = status
	order.CreatedAt = createdAt.UTC()
	return nil
}

// ListOrders returns the account's orders, newest first.
func (s *Store) ListOrders(ctx context.Context, accountID string) ([]models.Order, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE account_id = ? ORDER BY created_at DESC, id`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrders(rows)
}

func (s *Store) GetOrder(ctx context.Context, accountID, orderID string) (*models.Order, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE account_id = ? AND id = ?`, accountID, orderID)
	o, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, apperr.ErrNotFound
	}
	return o, err
}

// GetAllOrders pages through every account's orders for the back office.
func (s *Store) GetAllOrders(ctx context.Context, limit, offset int) ([]models.Order, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC, id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrders(rows)
}

func (s *Store) GetTotalOrdersCount(ctx context.Context) (int, error) {
	var count int
	if err := s.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Store) UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus) error {
	if !status.Valid() {
		return apperr.Validation("status", fmt.Sprintf("unknown order status %q", status))
	}
	res, err := s.q.ExecContext(ctx, `UPDATE orders SET status = ? WHERE id = ?`, status, orderID)
	return expectOne(res, err)
}

func scanOrders(rows *sql.Rows) ([]models.Order, error) {
	var orders []models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func scanOrder(row rowScanner) (*models.Order, error) {
	var (
		o                    models.Order
		items, addr, created string
	)
	if err := row.Scan(&o.ID, &o.AccountID, &o.OrderNumber, &items, &o.Subtotal, &o.Tax, &o.Shipping, &o.Total, &addr, &o.PaymentMethod, &o.Status, &created); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(items), &o.Items); err != nil {
		return nil, fmt.Errorf("order %s: bad items: %w", o.ID, err)
	}
	if err := json.Unmarshal([]byte(addr), &o.Address); err != nil {
		return nil, fmt.Errorf("order %s: bad address: %w", o.ID, err)
	}
	var err error
	if o.CreatedAt, err = parseTime(created); err != nil {
		return nil, fmt.Errorf("order %s: bad created_at: %w", o.ID, err)
	}
	return &o, nil
}

package store

import (
	"context"

	"github.com/alextreichler/storefront/internal/models"
	"github.com/shopspring/decimal"
)

type DashboardStats struct {
	TotalAccounts  int                        `json:"total_accounts"`
	TotalOrders    int                        `json:"total_orders"`
	Revenue        decimal.Decimal            `json:"revenue"`
	OrdersByStatus map[models.OrderStatus]int `json:"orders_by_status"`
}

// GetDashboardStats counts accounts and orders. Revenue excludes cancelled orders.
func (s *Store) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{
		OrdersByStatus: make(map[models.OrderStatus]int),
		Revenue:        decimal.Zero,
	}

	if err := s.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&stats.TotalAccounts); err != nil {
		return nil, err
	}

	rows, err := s.q.QueryContext(ctx, `SELECT status, total FROM orders`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			status models.OrderStatus
			total  decimal.Decimal
		)
		if err := rows.Scan(&status, &total); err != nil {
			return nil, err
		}
		stats.TotalOrders++
		stats.OrdersByStatus[status]++
		if status != models.StatusCancelled {
			stats.Revenue = stats.Revenue.Add(total)
		}
	}
	return stats, rows.Err()
}

package repository

import (
	"context"
	"database/sql"

	"github.com/Neruaka/jana-distribution/internal/model"
)

// StatsRepo runs the aggregate queries behind the admin dashboard.
// Cancelled orders are excluded from every revenue figure.
type StatsRepo struct{ DB *sql.DB }

func NewStatsRepo(db *sql.DB) *StatsRepo { return &StatsRepo{DB: db} }

// OrdersByStatus counts orders per status.
func (r *StatsRepo) OrdersByStatus(ctx context.Context) ([]model.StatusCount, int64, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM orders GROUP BY status ORDER BY status`)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out := make([]model.StatusCount, 0)
	var total int64
	for rows.Next() {
		var sc model.StatusCount
		if err := rows.Scan(&sc.Status, &sc.Count); err != nil {
			return nil, 0, err
		}
		total += sc.Count
		out = append(out, sc)
	}
	return out, total, rows.Err()
}

// RevenueTotal sums total_ttc over all non-cancelled orders.
func (r *StatsRepo) RevenueTotal(ctx context.Context) (float64, error) {
	var total float64
	err := r.DB.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(total_ttc), 0) FROM orders WHERE status <> $1`,
		model.StatusCancelled).Scan(&total)
	return total, err
}

// RevenueByDay returns the last `days` days of order counts and revenue.
func (r *StatsRepo) RevenueByDay(ctx context.Context, days int) ([]model.DayRevenue, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT TO_CHAR(created_at::date, 'YYYY-MM-DD'), COUNT(*), COALESCE(SUM(total_ttc), 0)
		 FROM orders
		 WHERE status <> $1 AND created_at >= NOW() - ($2 || ' days')::interval
		 GROUP BY created_at::date
		 ORDER BY created_at::date`, model.StatusCancelled, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.DayRevenue, 0)
	for rows.Next() {
		var d model.DayRevenue
		if err := rows.Scan(&d.Day, &d.Orders, &d.Revenue); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// TopProducts ranks products by ordered quantity over non-cancelled
// orders.
func (r *StatsRepo) TopProducts(ctx context.Context, limit int) ([]model.TopProduct, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT COALESCE(ol.product_id, 0), ol.product_name,
		        SUM(ol.quantity), SUM(ol.line_total_ttc)
		 FROM order_lines ol
		 JOIN orders o ON o.id = ol.order_id
		 WHERE o.status <> $1
		 GROUP BY ol.product_id, ol.product_name
		 ORDER BY SUM(ol.quantity) DESC
		 LIMIT $2`, model.StatusCancelled, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.TopProduct, 0, limit)
	for rows.Next() {
		var t model.TopProduct
		if err := rows.Scan(&t.ProductID, &t.ProductName, &t.Quantity, &t.Revenue); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Counts returns the number of client accounts and active products.
func (r *StatsRepo) Counts(ctx context.Context) (clients int64, products int64, err error) {
	err = r.DB.QueryRowContext(ctx,
		`SELECT
		    (SELECT COUNT(*) FROM users WHERE role = $1),
		    (SELECT COUNT(*) FROM products WHERE is_active)`,
		model.RoleClient).Scan(&clients, &products)
	return
}

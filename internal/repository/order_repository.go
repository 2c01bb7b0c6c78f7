package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Neruaka/jana-distribution/internal/model"
)

// OrderRepo provides data access to the orders and order_lines tables.
// Order rows are only ever written inside transactions driven by the
// order service, together with their lines and the matching stock
// mutations.
type OrderRepo struct{ DB *sql.DB }

func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{DB: db} }

// NextOrderNumberTx draws the next value from the global order sequence
// and formats it as CMD-YYYYMMDD-NNNN.  The date prefix comes from the
// wall clock at creation; the counter itself is global, not per-day.
func (r *OrderRepo) NextOrderNumberTx(ctx context.Context, tx *sql.Tx, now time.Time) (string, error) {
	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT nextval('order_number_seq')`).Scan(&seq); err != nil {
		return "", err
	}
	return FormatOrderNumber(now, seq), nil
}

// FormatOrderNumber renders the persisted order-number format
// CMD-YYYYMMDD-NNNN with a zero-padded sequence counter.
func FormatOrderNumber(now time.Time, seq int64) string {
	return fmt.Sprintf("CMD-%s-%04d", now.Format("20060102"), seq)
}

// CreateTx inserts the order row and populates the generated fields.
// The caller commits or rolls back.
func (r *OrderRepo) CreateTx(ctx context.Context, tx *sql.Tx, o *model.Order) error {
	shipping, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return err
	}
	var billing interface{}
	if o.BillingAddress != nil {
		b, err := json.Marshal(o.BillingAddress)
		if err != nil {
			return err
		}
		billing = b
	}
	return tx.QueryRowContext(ctx,
		`INSERT INTO orders (order_number, user_id, status, shipping_address, billing_address,
		        payment_mode, subtotal_ht, total_tva, shipping_fee, total_ttc, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING id, created_at, updated_at`,
		o.OrderNumber, o.UserID, o.Status, shipping, billing,
		o.PaymentMode, o.SubtotalHT, o.TotalTVA, o.ShippingFee, o.TotalTTC, o.Notes,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
}

// CreateLinesTx inserts every order line in a single statement.  The
// caller must set OrderID on each line.  Passing an empty slice has no
// effect and returns nil.
func (r *OrderRepo) CreateLinesTx(ctx context.Context, tx *sql.Tx, lines []model.OrderLine) error {
	if len(lines) == 0 {
		return nil
	}
	query := `INSERT INTO order_lines (order_id, product_id, product_name, quantity,
		unit_price_ht, tax_rate, line_total_ht, line_tva, line_total_ttc) VALUES `
	args := make([]interface{}, 0, len(lines)*9)
	for i, l := range lines {
		if i > 0 {
			query += ","
		}
		base := i * 9
		query += fmt.Sprintf("($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9)
		args = append(args, l.OrderID, l.ProductID, l.ProductName, l.Quantity,
			l.UnitPriceHT, l.TaxRate, l.LineTotalHT, l.LineTVA, l.LineTotalTTC)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// Lines loads the lines of one order.  q may be a *sql.Tx (cancellation
// reads lines inside its transaction) or the pool.
func (r *OrderRepo) Lines(ctx context.Context, q querier, orderID uint64) ([]model.OrderLine, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, order_id, product_id, product_name, quantity, unit_price_ht,
		        tax_rate, line_total_ht, line_tva, line_total_ttc
		 FROM order_lines WHERE order_id = $1 ORDER BY id ASC`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.OrderLine, 0)
	for rows.Next() {
		l, err := scanOrderLine(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func scanOrderLine(row rowScanner) (model.OrderLine, error) {
	var l model.OrderLine
	var productID sql.NullInt64
	err := row.Scan(&l.ID, &l.OrderID, &productID, &l.ProductName, &l.Quantity,
		&l.UnitPriceHT, &l.TaxRate, &l.LineTotalHT, &l.LineTVA, &l.LineTotalTTC)
	if err != nil {
		return l, err
	}
	if productID.Valid {
		id := uint64(productID.Int64)
		l.ProductID = &id
	}
	return l, nil
}

const orderColumns = `o.id, o.order_number, o.user_id, o.status, o.shipping_address,
	o.billing_address, o.payment_mode, o.subtotal_ht, o.total_tva, o.shipping_fee,
	o.total_ttc, o.notes, o.created_at, o.updated_at`

func scanOrder(row rowScanner) (model.Order, error) {
	var o model.Order
	var userID sql.NullInt64
	var shipping []byte
	var billing []byte
	err := row.Scan(&o.ID, &o.OrderNumber, &userID, &o.Status, &shipping,
		&billing, &o.PaymentMode, &o.SubtotalHT, &o.TotalTVA, &o.ShippingFee,
		&o.TotalTTC, &o.Notes, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return o, err
	}
	if userID.Valid {
		id := uint64(userID.Int64)
		o.UserID = &id
	}
	if err := json.Unmarshal(shipping, &o.ShippingAddress); err != nil {
		return o, err
	}
	if len(billing) > 0 {
		var addr model.Address
		if err := json.Unmarshal(billing, &addr); err != nil {
			return o, err
		}
		o.BillingAddress = &addr
	}
	return o, nil
}

// GetByID loads one order with its lines.
func (r *OrderRepo) GetByID(ctx context.Context, id uint64) (model.Order, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders o WHERE o.id = $1`, id)
	o, err := scanOrder(row)
	if err != nil {
		return o, err
	}
	o.Lines, err = r.Lines(ctx, r.DB, o.ID)
	return o, err
}

// GetByIDTx loads one order (without lines) inside a transaction,
// locking the row so concurrent status changes serialize.
func (r *OrderRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Order, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders o WHERE o.id = $1 FOR UPDATE`, id)
	return scanOrder(row)
}

// UpdateStatusTx persists a status change with an updated-at touch,
// optionally replacing the notes.
func (r *OrderRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status string, notes *string) error {
	var res sql.Result
	var err error
	if notes != nil {
		res, err = tx.ExecContext(ctx,
			`UPDATE orders SET status = $1, notes = $2, updated_at = NOW() WHERE id = $3`,
			status, *notes, id)
	} else {
		res, err = tx.ExecContext(ctx,
			`UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	}
	if err != nil {
		return err
	}
	return requireRow(res)
}

// OrderListQuery defines filters and pagination for order listings.
type OrderListQuery struct {
	UserID     uint64 // 0 means all users (admin listing)
	Status     string
	Search     string // matches the order number
	Sort       string
	Descending bool
	Page       int
	PageSize   int
}

// List returns a page of orders with their lines plus the unpaginated
// total.  Lines for the whole page are fetched in a single query.
func (r *OrderRepo) List(ctx context.Context, q OrderListQuery) ([]model.Order, int64, error) {
	b := &Builder{}
	if q.UserID != 0 {
		b.Where("o.user_id = ?", q.UserID)
	}
	if q.Status != "" {
		b.Where("o.status = ?", q.Status)
	}
	if q.Search != "" {
		b.Where("o.order_number ILIKE ?", "%"+q.Search+"%")
	}

	var total int64
	if err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM orders o `+b.WhereSQL(), b.Args()...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sortCol, ok := model.Column(model.OrderFields, q.Sort)
	if !ok {
		sortCol = "o.created_at"
	}
	dir := "ASC"
	if q.Descending {
		dir = "DESC"
	}
	limit := q.PageSize
	offset := (q.Page - 1) * q.PageSize
	tail := b.Suffix(fmt.Sprintf("ORDER BY %s %s LIMIT ? OFFSET ?", sortCol, dir), limit, offset)

	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders o `+b.WhereSQL()+` `+tail, b.Args()...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	orders := make([]model.Order, 0, limit)
	index := make(map[uint64]int)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		o.Lines = []model.OrderLine{}
		index[o.ID] = len(orders)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if len(orders) == 0 {
		return orders, total, nil
	}

	// Fetch lines for the whole page in one query.
	placeholders := make([]string, 0, len(orders))
	args := make([]interface{}, 0, len(orders))
	for i, o := range orders {
		placeholders = append(placeholders, "$"+itoa(i+1))
		args = append(args, o.ID)
	}
	lineRows, err := r.DB.QueryContext(ctx,
		`SELECT id, order_id, product_id, product_name, quantity, unit_price_ht,
		        tax_rate, line_total_ht, line_tva, line_total_ttc
		 FROM order_lines WHERE order_id IN (`+strings.Join(placeholders, ",")+`)
		 ORDER BY order_id, id`, args...)
	if err != nil {
		return nil, 0, err
	}
	defer lineRows.Close()
	for lineRows.Next() {
		l, err := scanOrderLine(lineRows)
		if err != nil {
			return nil, 0, err
		}
		if idx, ok := index[l.OrderID]; ok {
			orders[idx].Lines = append(orders[idx].Lines, l)
		}
	}
	if err := lineRows.Err(); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

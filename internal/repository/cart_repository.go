package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/Neruaka/jana-distribution/internal/model"
)

// CartRow mirrors the carts table.  Items and summary are assembled by
// the service layer from ItemsWithProducts.
type CartRow struct {
	ID        uint64
	UserID    uint64
	CreatedAt sql.NullTime
	UpdatedAt sql.NullTime
}

// CartRepo provides data access to the carts and cart_items tables.
// Every mutation that must stay consistent with the one-cart-per-user
// invariant has a Tx variant so the cart service can run it under the
// user row lock.
type CartRepo struct{ DB *sql.DB }

func NewCartRepo(db *sql.DB) *CartRepo { return &CartRepo{DB: db} }

// querier is satisfied by both *sql.DB and *sql.Tx so read helpers can
// run inside or outside a transaction.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// ListByUserTx returns every cart row belonging to the user, oldest
// first.  More than one row means the duplicate-merge path must run.
func (r *CartRepo) ListByUserTx(ctx context.Context, tx *sql.Tx, userID uint64) ([]CartRow, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT id, user_id, created_at, updated_at FROM carts
		 WHERE user_id = $1 ORDER BY created_at ASC, id ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []CartRow
	for rows.Next() {
		var c CartRow
		if err := rows.Scan(&c.ID, &c.UserID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CreateTx inserts an empty cart for the user and returns the new row.
func (r *CartRepo) CreateTx(ctx context.Context, tx *sql.Tx, userID uint64) (CartRow, error) {
	var c CartRow
	err := tx.QueryRowContext(ctx,
		`INSERT INTO carts (user_id) VALUES ($1)
		 RETURNING id, user_id, created_at, updated_at`, userID,
	).Scan(&c.ID, &c.UserID, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// MergeDuplicatesTx folds every duplicate cart into the survivor: items
// are upserted into the survivor's lines, summing quantities on
// conflict, keeping the most recent add-timestamp and the incoming unit
// price.  The duplicate cart rows are then deleted, cascading their
// items.  Must run under the user row lock.
func (r *CartRepo) MergeDuplicatesTx(ctx context.Context, tx *sql.Tx, survivorID uint64, duplicateIDs []uint64) error {
	if len(duplicateIDs) == 0 {
		return nil
	}
	for _, dupID := range duplicateIDs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO cart_items (cart_id, product_id, quantity, unit_price, added_at)
			 SELECT $1, product_id, quantity, unit_price, added_at
			 FROM cart_items WHERE cart_id = $2
			 ON CONFLICT (cart_id, product_id) DO UPDATE SET
			     quantity   = cart_items.quantity + EXCLUDED.quantity,
			     unit_price = EXCLUDED.unit_price,
			     added_at   = GREATEST(cart_items.added_at, EXCLUDED.added_at)`,
			survivorID, dupID)
		if err != nil {
			return err
		}
	}
	placeholders := make([]string, 0, len(duplicateIDs))
	args := make([]interface{}, 0, len(duplicateIDs))
	for i, id := range duplicateIDs {
		placeholders = append(placeholders, "$"+itoa(i+1))
		args = append(args, id)
	}
	_, err := tx.ExecContext(ctx,
		`DELETE FROM carts WHERE id IN (`+strings.Join(placeholders, ",")+`)`, args...)
	return err
}

const cartItemSelect = `SELECT ci.id, ci.cart_id, ci.product_id, ci.quantity,
	ci.unit_price, ci.added_at,
	p.name, p.slug, p.reference, p.price, p.promo_price, p.tax_rate,
	p.stock_quantity, p.is_active
	FROM cart_items ci
	JOIN products p ON p.id = ci.product_id`

func scanCartItem(row rowScanner) (model.CartItem, error) {
	var it model.CartItem
	var promo sql.NullFloat64
	err := row.Scan(&it.ID, &it.CartID, &it.ProductID, &it.Quantity,
		&it.UnitPrice, &it.AddedAt,
		&it.ProductName, &it.ProductSlug, &it.Reference, &it.Price, &promo,
		&it.TaxRate, &it.StockQuantity, &it.IsActive)
	if err != nil {
		return it, err
	}
	if promo.Valid {
		v := promo.Float64
		it.PromoPrice = &v
	}
	return it, nil
}

// ItemsWithProducts loads the cart's items joined with live product
// data, ordered by add time.  q may be a *sql.Tx or the pool itself.
func (r *CartRepo) ItemsWithProducts(ctx context.Context, q querier, cartID uint64) ([]model.CartItem, error) {
	rows, err := q.QueryContext(ctx, cartItemSelect+` WHERE ci.cart_id = $1 ORDER BY ci.added_at ASC, ci.id ASC`, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.CartItem, 0)
	for rows.Next() {
		it, err := scanCartItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// GetItemDetail loads one cart item joined with live product data.
func (r *CartRepo) GetItemDetail(ctx context.Context, itemID uint64) (model.CartItem, error) {
	row := r.DB.QueryRowContext(ctx, cartItemSelect+` WHERE ci.id = $1`, itemID)
	return scanCartItem(row)
}

// FindItemTx returns the existing (cart, product) line if any.  The
// boolean reports presence; no error is raised for a missing line.
func (r *CartRepo) FindItemTx(ctx context.Context, tx *sql.Tx, cartID, productID uint64) (uint64, int, bool, error) {
	var id uint64
	var qty int
	err := tx.QueryRowContext(ctx,
		`SELECT id, quantity FROM cart_items WHERE cart_id = $1 AND product_id = $2`,
		cartID, productID).Scan(&id, &qty)
	if err == sql.ErrNoRows {
		return 0, 0, false, nil
	}
	if err != nil {
		return 0, 0, false, err
	}
	return id, qty, true, nil
}

// UpsertItemTx implements the add-to-cart write: a fresh line is
// inserted, an existing line gets quantity summed and unit price
// overwritten with the supplied value (last write wins).  Returns the
// line id.
func (r *CartRepo) UpsertItemTx(ctx context.Context, tx *sql.Tx, cartID, productID uint64, quantity int, unitPrice float64) (uint64, error) {
	var id uint64
	err := tx.QueryRowContext(ctx,
		`INSERT INTO cart_items (cart_id, product_id, quantity, unit_price)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (cart_id, product_id) DO UPDATE SET
		     quantity   = cart_items.quantity + EXCLUDED.quantity,
		     unit_price = EXCLUDED.unit_price,
		     added_at   = NOW()
		 RETURNING id`,
		cartID, productID, quantity, unitPrice).Scan(&id)
	return id, err
}

// GetItemMeta resolves the owning cart, product and current quantity of
// a cart item.  Returns sql.ErrNoRows when the item does not exist.
func (r *CartRepo) GetItemMeta(ctx context.Context, itemID uint64) (cartID, productID uint64, quantity int, err error) {
	err = r.DB.QueryRowContext(ctx,
		`SELECT cart_id, product_id, quantity FROM cart_items WHERE id = $1`,
		itemID).Scan(&cartID, &productID, &quantity)
	return
}

// UpdateItemQuantityTx sets the quantity of a line.  Returns false when
// the line no longer exists.
func (r *CartRepo) UpdateItemQuantityTx(ctx context.Context, tx *sql.Tx, itemID uint64, quantity int) (bool, error) {
	res, err := tx.ExecContext(ctx,
		`UPDATE cart_items SET quantity = $1 WHERE id = $2`, quantity, itemID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// RemoveItemTx deletes a line.  Returns false when the line no longer
// exists.
func (r *CartRepo) RemoveItemTx(ctx context.Context, tx *sql.Tx, itemID uint64) (bool, error) {
	res, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE id = $1`, itemID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// ClearItemsTx deletes every line of a cart.
func (r *CartRepo) ClearItemsTx(ctx context.Context, tx *sql.Tx, cartID uint64) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	return err
}

// TouchTx bumps the cart's modified timestamp.
func (r *CartRepo) TouchTx(ctx context.Context, tx *sql.Tx, cartID uint64) error {
	_, err := tx.ExecContext(ctx, `UPDATE carts SET updated_at = NOW() WHERE id = $1`, cartID)
	return err
}

// IsItemOwnedByUser reports whether the item belongs to one of the
// user's carts.  Authorization checks run through this before any
// mutating call.
func (r *CartRepo) IsItemOwnedByUser(ctx context.Context, itemID, userID uint64) (bool, error) {
	var owned bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS (
		     SELECT 1 FROM cart_items ci
		     JOIN carts c ON c.id = ci.cart_id
		     WHERE ci.id = $1 AND c.user_id = $2
		 )`, itemID, userID).Scan(&owned)
	return owned, err
}

// CountItems returns the number of distinct lines and the summed
// quantity across all of the user's carts.  Duplicate carts are counted
// together so the badge stays correct even before a merge runs.
func (r *CartRepo) CountItems(ctx context.Context, userID uint64) (int, int, error) {
	var lines, qty int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(ci.id), COALESCE(SUM(ci.quantity), 0)
		 FROM cart_items ci
		 JOIN carts c ON c.id = ci.cart_id
		 WHERE c.user_id = $1`, userID).Scan(&lines, &qty)
	return lines, qty, err
}

package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Neruaka/jana-distribution/internal/model"
)

// ProductRepo provides data access to the products table.
type ProductRepo struct{ DB *sql.DB }

func NewProductRepo(db *sql.DB) *ProductRepo { return &ProductRepo{DB: db} }

// ErrInsufficientStock is returned by DecrementStockTx when the guarded
// update matches no row, i.e. the live stock no longer covers the
// requested quantity.
var ErrInsufficientStock = errors.New("insufficient stock")

const productSelect = `SELECT p.id, p.reference, p.name, p.slug, p.description,
	p.price, p.promo_price, p.tax_rate, p.stock_quantity, p.low_stock_threshold,
	p.is_active, p.is_featured, p.labels, p.category_id, c.name,
	p.created_at, p.updated_at
	FROM products p
	LEFT JOIN categories c ON c.id = p.category_id`

func scanProduct(row rowScanner) (model.Product, error) {
	var p model.Product
	var promo sql.NullFloat64
	var catID sql.NullInt64
	var catName sql.NullString
	var labels []byte
	err := row.Scan(&p.ID, &p.Reference, &p.Name, &p.Slug, &p.Description,
		&p.Price, &promo, &p.TaxRate, &p.StockQuantity, &p.LowStockThreshold,
		&p.IsActive, &p.IsFeatured, &labels, &catID, &catName,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return p, err
	}
	if promo.Valid {
		v := promo.Float64
		p.PromoPrice = &v
	}
	if catID.Valid {
		id := uint64(catID.Int64)
		p.CategoryID = &id
	}
	if catName.Valid {
		n := catName.String
		p.CategoryName = &n
	}
	p.Labels = []string{}
	if len(labels) > 0 {
		if err := json.Unmarshal(labels, &p.Labels); err != nil {
			return p, err
		}
	}
	p.IsOnSale = p.OnSale()
	return p, nil
}

// ProductListQuery defines filters, sorting and pagination for the
// catalog listing.  Sort must be an API field name from
// model.ProductFields; unknown fields fall back to createdAt.
type ProductListQuery struct {
	CategoryID uint64
	Active     *bool
	Featured   *bool
	Label      string
	Search     string
	Sort       string
	Descending bool
	Page       int
	PageSize   int
}

// List returns a filtered, sorted page of products plus the unpaginated
// total.
func (r *ProductRepo) List(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error) {
	b := &Builder{}
	if q.CategoryID != 0 {
		b.Where("p.category_id = ?", q.CategoryID)
	}
	if q.Active != nil {
		b.Where("p.is_active = ?", *q.Active)
	}
	if q.Featured != nil {
		b.Where("p.is_featured = ?", *q.Featured)
	}
	if q.Label != "" {
		b.Where("p.labels @> ?", mustJSON([]string{q.Label}))
	}
	if q.Search != "" {
		needle := "%" + strings.ToLower(q.Search) + "%"
		b.Where("(LOWER(p.name) LIKE ? OR LOWER(p.reference) LIKE ? OR LOWER(p.description) LIKE ?)",
			needle, needle, needle)
	}

	var total int64
	countSQL := `SELECT COUNT(*) FROM products p ` + b.WhereSQL()
	if err := r.DB.QueryRowContext(ctx, countSQL, b.Args()...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sortCol, ok := model.Column(model.ProductFields, q.Sort)
	if !ok {
		sortCol = "p.created_at"
	}
	dir := "ASC"
	if q.Descending {
		dir = "DESC"
	}
	limit := q.PageSize
	offset := (q.Page - 1) * q.PageSize
	tail := b.Suffix(fmt.Sprintf("ORDER BY %s %s LIMIT ? OFFSET ?", sortCol, dir), limit, offset)

	rows, err := r.DB.QueryContext(ctx, productSelect+" "+b.WhereSQL()+" "+tail, b.Args()...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out := make([]model.Product, 0, limit)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// GetByID fetches a product with its category name.
func (r *ProductRepo) GetByID(ctx context.Context, id uint64) (model.Product, error) {
	row := r.DB.QueryRowContext(ctx, productSelect+" WHERE p.id = $1", id)
	return scanProduct(row)
}

// GetByIDTx fetches a product inside an open transaction so checkout
// reads the same snapshot its stock decrements will run against.
func (r *ProductRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Product, error) {
	row := tx.QueryRowContext(ctx, productSelect+" WHERE p.id = $1", id)
	return scanProduct(row)
}

// GetBySlug fetches a product by its unique slug.
func (r *ProductRepo) GetBySlug(ctx context.Context, slug string) (model.Product, error) {
	row := r.DB.QueryRowContext(ctx, productSelect+" WHERE p.slug = $1", slug)
	return scanProduct(row)
}

// Create inserts a product.  Unique violations on reference or slug map
// to ErrConflict.
func (r *ProductRepo) Create(ctx context.Context, p *model.Product) error {
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO products (reference, name, slug, description, price, promo_price,
		        tax_rate, stock_quantity, low_stock_threshold, is_active, is_featured,
		        labels, category_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 RETURNING id, created_at, updated_at`,
		p.Reference, p.Name, p.Slug, p.Description, p.Price, p.PromoPrice,
		p.TaxRate, p.StockQuantity, p.LowStockThreshold, p.IsActive, p.IsFeatured,
		mustJSON(p.Labels), p.CategoryID,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	return mapUnique(err)
}

// Update rewrites the mutable fields of a product.
func (r *ProductRepo) Update(ctx context.Context, p *model.Product) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE products SET reference = $1, name = $2, slug = $3, description = $4,
		        price = $5, promo_price = $6, tax_rate = $7, stock_quantity = $8,
		        low_stock_threshold = $9, is_active = $10, is_featured = $11,
		        labels = $12, category_id = $13, updated_at = NOW()
		 WHERE id = $14`,
		p.Reference, p.Name, p.Slug, p.Description, p.Price, p.PromoPrice,
		p.TaxRate, p.StockQuantity, p.LowStockThreshold, p.IsActive, p.IsFeatured,
		mustJSON(p.Labels), p.CategoryID, p.ID)
	if err != nil {
		return mapUnique(err)
	}
	return requireRow(res)
}

// SetActive toggles the soft-delete flag.
func (r *ProductRepo) SetActive(ctx context.Context, id uint64, active bool) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE products SET is_active = $1, updated_at = NOW() WHERE id = $2`, active, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// Delete removes a product row entirely.  Order lines keep their frozen
// copy (FK ON DELETE SET NULL); cart items cascade away.
func (r *ProductRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// DecrementStockTx atomically subtracts qty from the product's stock
// inside the given transaction.  The WHERE guard keeps stock from going
// negative: when the live stock no longer covers qty (a concurrent order
// won the race) no row matches and ErrInsufficientStock is returned so
// the caller rolls back the whole order.
func (r *ProductRepo) DecrementStockTx(ctx context.Context, tx *sql.Tx, productID uint64, qty int) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE products SET stock_quantity = stock_quantity - $1, updated_at = NOW()
		 WHERE id = $2 AND stock_quantity >= $1`, qty, productID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrInsufficientStock
	}
	return nil
}

// RestoreStockTx adds qty back to the product's stock inside the given
// transaction.  Mirror of DecrementStockTx, used by order cancellation.
func (r *ProductRepo) RestoreStockTx(ctx context.Context, tx *sql.Tx, productID uint64, qty int) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE products SET stock_quantity = stock_quantity + $1, updated_at = NOW()
		 WHERE id = $2`, qty, productID)
	return err
}

// LowStock returns active products at or below their alert threshold.
func (r *ProductRepo) LowStock(ctx context.Context, limit int) ([]model.Product, error) {
	rows, err := r.DB.QueryContext(ctx,
		productSelect+` WHERE p.is_active AND p.stock_quantity <= p.low_stock_threshold
		 ORDER BY p.stock_quantity ASC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Product, 0, limit)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// mustJSON marshals labels for the jsonb column.  Marshalling a string
// slice cannot fail.
func mustJSON(v []string) []byte {
	if v == nil {
		v = []string{}
	}
	b, _ := json.Marshal(v)
	return b
}

// mapUnique converts a Postgres unique violation into ErrConflict.
func mapUnique(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrConflict
	}
	return err
}

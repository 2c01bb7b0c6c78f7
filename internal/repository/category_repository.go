package repository

import (
	"context"
	"database/sql"

	"github.com/Neruaka/jana-distribution/internal/model"
)

// CategoryRepo provides data access to the categories table.
type CategoryRepo struct{ DB *sql.DB }

func NewCategoryRepo(db *sql.DB) *CategoryRepo { return &CategoryRepo{DB: db} }

// List returns all categories with their active-product counts.  When
// activeOnly is true, inactive categories are filtered out.
func (r *CategoryRepo) List(ctx context.Context, activeOnly bool) ([]model.Category, error) {
	b := &Builder{}
	if activeOnly {
		b.Where("c.is_active = ?", true)
	}
	q := `SELECT c.id, c.name, c.slug, c.description, c.is_active,
	             COUNT(p.id) FILTER (WHERE p.is_active), c.created_at, c.updated_at
	      FROM categories c
	      LEFT JOIN products p ON p.category_id = c.id ` + b.WhereSQL() + `
	      GROUP BY c.id
	      ORDER BY c.name ASC`
	rows, err := r.DB.QueryContext(ctx, q, b.Args()...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Category, 0)
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.IsActive,
			&c.ProductCount, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetByID fetches a single category.
func (r *CategoryRepo) GetByID(ctx context.Context, id uint64) (model.Category, error) {
	var c model.Category
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, name, slug, description, is_active, 0, created_at, updated_at
		 FROM categories WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.IsActive,
		&c.ProductCount, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// GetBySlug fetches a single category by its unique slug.
func (r *CategoryRepo) GetBySlug(ctx context.Context, slug string) (model.Category, error) {
	var c model.Category
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, name, slug, description, is_active, 0, created_at, updated_at
		 FROM categories WHERE slug = $1`, slug,
	).Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.IsActive,
		&c.ProductCount, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// Create inserts a category and populates the generated fields.  Unique
// violations on name or slug map to ErrConflict.
func (r *CategoryRepo) Create(ctx context.Context, c *model.Category) error {
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO categories (name, slug, description, is_active)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		c.Name, c.Slug, c.Description, c.IsActive,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	return mapUnique(err)
}

// Update rewrites the mutable fields of a category.
func (r *CategoryRepo) Update(ctx context.Context, c *model.Category) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE categories SET name = $1, slug = $2, description = $3, is_active = $4,
		        updated_at = NOW()
		 WHERE id = $5`,
		c.Name, c.Slug, c.Description, c.IsActive, c.ID)
	if err != nil {
		return mapUnique(err)
	}
	return requireRow(res)
}

// Delete removes a category.  Products referencing it keep their rows
// with category_id set to NULL (FK ON DELETE SET NULL).
func (r *CategoryRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

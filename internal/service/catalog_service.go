package service

import (
	"context"
	"database/sql"
	"regexp"
	"strings"

	"github.com/Neruaka/jana-distribution/internal/apperror"
	"github.com/Neruaka/jana-distribution/internal/model"
	"github.com/Neruaka/jana-distribution/internal/repository"
)

var slugStripRe = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL slug from a display name.  Accented characters
// common in French product names are transliterated before stripping.
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	replacer := strings.NewReplacer(
		"à", "a", "â", "a", "ä", "a",
		"é", "e", "è", "e", "ê", "e", "ë", "e",
		"î", "i", "ï", "i",
		"ô", "o", "ö", "o",
		"ù", "u", "û", "u", "ü", "u",
		"ç", "c", "œ", "oe", "æ", "ae",
	)
	s = replacer.Replace(s)
	s = slugStripRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// ProductService is a thin layer over the product repository: input
// normalization, slug derivation and error mapping.
type ProductService struct {
	Products *repository.ProductRepo
}

func NewProductService(products *repository.ProductRepo) *ProductService {
	return &ProductService{Products: products}
}

// ProductInput is the create/update payload.
type ProductInput struct {
	Reference         string   `json:"reference" validate:"required"`
	Name              string   `json:"name" validate:"required"`
	Slug              string   `json:"slug"`
	Description       string   `json:"description"`
	Price             float64  `json:"price" validate:"required,gt=0"`
	PromoPrice        *float64 `json:"promoPrice"`
	TaxRate           float64  `json:"taxRate" validate:"gte=0"`
	StockQuantity     int      `json:"stockQuantity" validate:"gte=0"`
	LowStockThreshold int      `json:"lowStockThreshold"`
	IsActive          *bool    `json:"isActive"`
	IsFeatured        bool     `json:"isFeatured"`
	Labels            []string `json:"labels"`
	CategoryID        *uint64  `json:"categoryId"`
}

func (in ProductInput) apply(p *model.Product) error {
	if in.PromoPrice != nil && *in.PromoPrice >= in.Price {
		return apperror.BadRequest("Le prix promo doit être inférieur au prix de base")
	}
	p.Reference = strings.TrimSpace(in.Reference)
	p.Name = strings.TrimSpace(in.Name)
	p.Slug = strings.TrimSpace(in.Slug)
	if p.Slug == "" {
		p.Slug = Slugify(p.Name)
	}
	p.Description = in.Description
	p.Price = in.Price
	p.PromoPrice = in.PromoPrice
	p.TaxRate = in.TaxRate
	p.StockQuantity = in.StockQuantity
	p.LowStockThreshold = in.LowStockThreshold
	p.IsActive = in.IsActive == nil || *in.IsActive
	p.IsFeatured = in.IsFeatured
	p.Labels = in.Labels
	p.CategoryID = in.CategoryID
	return nil
}

// List returns a catalog page.  Page and page size are clamped to sane
// bounds here so every caller gets the same behavior.
func (s *ProductService) List(ctx context.Context, q repository.ProductListQuery) ([]model.Product, int64, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = 20
	}
	if q.PageSize > 100 {
		q.PageSize = 100
	}
	return s.Products.List(ctx, q)
}

// Get fetches one product by numeric id or slug.
func (s *ProductService) Get(ctx context.Context, id uint64) (*model.Product, error) {
	p, err := s.Products.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("Produit introuvable")
		}
		return nil, err
	}
	return &p, nil
}

// GetBySlug fetches one product by slug.
func (s *ProductService) GetBySlug(ctx context.Context, slug string) (*model.Product, error) {
	p, err := s.Products.GetBySlug(ctx, slug)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("Produit introuvable")
		}
		return nil, err
	}
	return &p, nil
}

// Create inserts a product.
func (s *ProductService) Create(ctx context.Context, in ProductInput) (*model.Product, error) {
	var p model.Product
	if err := in.apply(&p); err != nil {
		return nil, err
	}
	if err := s.Products.Create(ctx, &p); err != nil {
		if err == repository.ErrConflict {
			return nil, apperror.Conflict("Un produit existe déjà avec cette référence ou ce slug")
		}
		return nil, err
	}
	return s.Get(ctx, p.ID)
}

// Update rewrites a product.
func (s *ProductService) Update(ctx context.Context, id uint64, in ProductInput) (*model.Product, error) {
	var p model.Product
	if err := in.apply(&p); err != nil {
		return nil, err
	}
	p.ID = id
	if err := s.Products.Update(ctx, &p); err != nil {
		switch err {
		case sql.ErrNoRows:
			return nil, apperror.NotFound("Produit introuvable")
		case repository.ErrConflict:
			return nil, apperror.Conflict("Un produit existe déjà avec cette référence ou ce slug")
		}
		return nil, err
	}
	return s.Get(ctx, id)
}

// SetActive toggles the soft-delete flag.
func (s *ProductService) SetActive(ctx context.Context, id uint64, active bool) error {
	if err := s.Products.SetActive(ctx, id, active); err != nil {
		if err == sql.ErrNoRows {
			return apperror.NotFound("Produit introuvable")
		}
		return err
	}
	return nil
}

// Delete removes a product row for good.
func (s *ProductService) Delete(ctx context.Context, id uint64) error {
	if err := s.Products.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return apperror.NotFound("Produit introuvable")
		}
		return err
	}
	return nil
}

// LowStock lists active products at or below their alert threshold.
func (s *ProductService) LowStock(ctx context.Context, limit int) ([]model.Product, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.Products.LowStock(ctx, limit)
}

// CategoryService is a thin layer over the category repository.
type CategoryService struct {
	Categories *repository.CategoryRepo
}

func NewCategoryService(categories *repository.CategoryRepo) *CategoryService {
	return &CategoryService{Categories: categories}
}

// CategoryInput is the create/update payload.
type CategoryInput struct {
	Name        string `json:"name" validate:"required"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	IsActive    *bool  `json:"isActive"`
}

// List returns categories with their active-product counts.
func (s *CategoryService) List(ctx context.Context, activeOnly bool) ([]model.Category, error) {
	return s.Categories.List(ctx, activeOnly)
}

// Get fetches one category by id.
func (s *CategoryService) Get(ctx context.Context, id uint64) (*model.Category, error) {
	c, err := s.Categories.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("Catégorie introuvable")
		}
		return nil, err
	}
	return &c, nil
}

// GetBySlug fetches one category by slug.
func (s *CategoryService) GetBySlug(ctx context.Context, slug string) (*model.Category, error) {
	c, err := s.Categories.GetBySlug(ctx, slug)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("Catégorie introuvable")
		}
		return nil, err
	}
	return &c, nil
}

// Create inserts a category.
func (s *CategoryService) Create(ctx context.Context, in CategoryInput) (*model.Category, error) {
	c := model.Category{
		Name:        strings.TrimSpace(in.Name),
		Slug:        strings.TrimSpace(in.Slug),
		Description: in.Description,
		IsActive:    in.IsActive == nil || *in.IsActive,
	}
	if c.Slug == "" {
		c.Slug = Slugify(c.Name)
	}
	if err := s.Categories.Create(ctx, &c); err != nil {
		if err == repository.ErrConflict {
			return nil, apperror.Conflict("Une catégorie existe déjà avec ce nom ou ce slug")
		}
		return nil, err
	}
	return &c, nil
}

// Update rewrites a category.
func (s *CategoryService) Update(ctx context.Context, id uint64, in CategoryInput) (*model.Category, error) {
	c := model.Category{
		ID:          id,
		Name:        strings.TrimSpace(in.Name),
		Slug:        strings.TrimSpace(in.Slug),
		Description: in.Description,
		IsActive:    in.IsActive == nil || *in.IsActive,
	}
	if c.Slug == "" {
		c.Slug = Slugify(c.Name)
	}
	if err := s.Categories.Update(ctx, &c); err != nil {
		switch err {
		case sql.ErrNoRows:
			return nil, apperror.NotFound("Catégorie introuvable")
		case repository.ErrConflict:
			return nil, apperror.Conflict("Une catégorie existe déjà avec ce nom ou ce slug")
		}
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes a category.  Products pointing at it keep their rows
// (FK ON DELETE SET NULL).
func (s *CategoryService) Delete(ctx context.Context, id uint64) error {
	if err := s.Categories.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return apperror.NotFound("Catégorie introuvable")
		}
		return err
	}
	return nil
}

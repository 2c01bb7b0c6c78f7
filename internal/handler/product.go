package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Neruaka/jana-distribution/internal/apperror"
	"github.com/Neruaka/jana-distribution/internal/repository"
	"github.com/Neruaka/jana-distribution/internal/service"
)

// ProductHandler exposes the product catalog (public reads, admin
// writes).
type ProductHandler struct {
	Products *service.ProductService
}

func NewProductHandler(products *service.ProductService) *ProductHandler {
	return &ProductHandler{Products: products}
}

// List returns a filtered catalog page.  Public callers only see active
// products; the admin listing passes active=false|all explicitly.
func (h *ProductHandler) List(c echo.Context) error {
	q := repository.ProductListQuery{
		CategoryID: queryUint(c, "categoryId"),
		Featured:   queryBoolPtr(c, "featured"),
		Label:      c.QueryParam("label"),
		Search:     c.QueryParam("search"),
		Sort:       c.QueryParam("sort"),
		Descending: c.QueryParam("order") == "desc",
		Page:       queryInt(c, "page", 1),
		PageSize:   queryInt(c, "limit", 20),
	}
	if c.QueryParam("all") == "true" {
		q.Active = queryBoolPtr(c, "active")
	} else {
		active := true
		q.Active = &active
	}
	items, total, err := h.Products.List(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return respondPage(c, http.StatusOK, items, NewPagination(q.Page, q.PageSize, total))
}

// Get fetches one product by id.
func (h *ProductHandler) Get(c echo.Context) error {
	id := pathID(c, "id")
	if id == 0 {
		return apperror.BadRequest("Identifiant de produit invalide")
	}
	p, err := h.Products.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", p)
}

// GetBySlug fetches one product by slug.
func (h *ProductHandler) GetBySlug(c echo.Context) error {
	p, err := h.Products.GetBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", p)
}

// Create inserts a product (admin).
func (h *ProductHandler) Create(c echo.Context) error {
	var in service.ProductInput
	if err := c.Bind(&in); err != nil {
		return apperror.BadRequest("Corps de requête invalide")
	}
	if err := c.Validate(&in); err != nil {
		return err
	}
	p, err := h.Products.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Produit créé", p)
}

// Update rewrites a product (admin).
func (h *ProductHandler) Update(c echo.Context) error {
	id := pathID(c, "id")
	if id == 0 {
		return apperror.BadRequest("Identifiant de produit invalide")
	}
	var in service.ProductInput
	if err := c.Bind(&in); err != nil {
		return apperror.BadRequest("Corps de requête invalide")
	}
	if err := c.Validate(&in); err != nil {
		return err
	}
	p, err := h.Products.Update(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Produit mis à jour", p)
}

type setActiveInput struct {
	IsActive *bool `json:"isActive" validate:"required"`
}

// SetActive toggles the soft-delete flag (admin).
func (h *ProductHandler) SetActive(c echo.Context) error {
	id := pathID(c, "id")
	if id == 0 {
		return apperror.BadRequest("Identifiant de produit invalide")
	}
	var in setActiveInput
	if err := c.Bind(&in); err != nil {
		return apperror.BadRequest("Corps de requête invalide")
	}
	if err := c.Validate(&in); err != nil {
		return err
	}
	if err := h.Products.SetActive(c.Request().Context(), id, *in.IsActive); err != nil {
		return err
	}
	msg := "Produit désactivé"
	if *in.IsActive {
		msg = "Produit activé"
	}
	return respond(c, http.StatusOK, msg, nil)
}

// Delete removes a product for good (admin).
func (h *ProductHandler) Delete(c echo.Context) error {
	id := pathID(c, "id")
	if id == 0 {
		return apperror.BadRequest("Identifiant de produit invalide")
	}
	if err := h.Products.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Produit supprimé", nil)
}

// LowStock lists products at or below their alert threshold (admin).
func (h *ProductHandler) LowStock(c echo.Context) error {
	items, err := h.Products.LowStock(c.Request().Context(), queryInt(c, "limit", 20))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", items)
}

package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Neruaka/jana-distribution/internal/apperror"
	"github.com/Neruaka/jana-distribution/internal/service"
)

// CategoryHandler exposes catalog categories.
type CategoryHandler struct {
	Categories *service.CategoryService
}

func NewCategoryHandler(categories *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{Categories: categories}
}

// List returns categories with their product counts.  Inactive
// categories only appear when all=true (admin browsing).
func (h *CategoryHandler) List(c echo.Context) error {
	activeOnly := c.QueryParam("all") != "true"
	out, err := h.Categories.List(c.Request().Context(), activeOnly)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", out)
}

// Get fetches one category by id.
func (h *CategoryHandler) Get(c echo.Context) error {
	id := pathID(c, "id")
	if id == 0 {
		return apperror.BadRequest("Identifiant de catégorie invalide")
	}
	cat, err := h.Categories.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", cat)
}

// GetBySlug fetches one category by slug.
func (h *CategoryHandler) GetBySlug(c echo.Context) error {
	cat, err := h.Categories.GetBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", cat)
}

// Create inserts a category (admin).
func (h *CategoryHandler) Create(c echo.Context) error {
	var in service.CategoryInput
	if err := c.Bind(&in); err != nil {
		return apperror.BadRequest("Corps de requête invalide")
	}
	if err := c.Validate(&in); err != nil {
		return err
	}
	cat, err := h.Categories.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Catégorie créée", cat)
}

// Update rewrites a category (admin).
func (h *CategoryHandler) Update(c echo.Context) error {
	id := pathID(c, "id")
	if id == 0 {
		return apperror.BadRequest("Identifiant de catégorie invalide")
	}
	var in service.CategoryInput
	if err := c.Bind(&in); err != nil {
		return apperror.BadRequest("Corps de requête invalide")
	}
	if err := c.Validate(&in); err != nil {
		return err
	}
	cat, err := h.Categories.Update(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Catégorie mise à jour", cat)
}

// Delete removes a category (admin).
func (h *CategoryHandler) Delete(c echo.Context) error {
	id := pathID(c, "id")
	if id == 0 {
		return apperror.BadRequest("Identifiant de catégorie invalide")
	}
	if err := h.Categories.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Catégorie supprimée", nil)
}

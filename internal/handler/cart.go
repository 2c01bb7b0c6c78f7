package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Neruaka/jana-distribution/internal/apperror"
	"github.com/Neruaka/jana-distribution/internal/middleware"
	"github.com/Neruaka/jana-distribution/internal/service"
)

// CartHandler exposes the per-user cart.
type CartHandler struct {
	Cart *service.CartService
}

func NewCartHandler(cart *service.CartService) *CartHandler { return &CartHandler{Cart: cart} }

// Get returns the caller's cart, creating it on first access.
func (h *CartHandler) Get(c echo.Context) error {
	cart, err := h.Cart.GetOrCreate(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", cart)
}

type addItemInput struct {
	ProductID uint64 `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gte=1"`
}

// AddItem puts a product in the cart, merging into an existing line.
func (h *CartHandler) AddItem(c echo.Context) error {
	var in addItemInput
	if err := c.Bind(&in); err != nil {
		return apperror.BadRequest("Corps de requête invalide")
	}
	if err := c.Validate(&in); err != nil {
		return err
	}
	item, err := h.Cart.AddItem(c.Request().Context(), middleware.UserID(c), in.ProductID, in.Quantity)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Article ajouté au panier", item)
}

type updateItemInput struct {
	Quantity int `json:"quantity" validate:"required,gte=1"`
}

// UpdateItem sets the absolute quantity of a cart line.
func (h *CartHandler) UpdateItem(c echo.Context) error {
	id := pathID(c, "id")
	if id == 0 {
		return apperror.BadRequest("Identifiant d'article invalide")
	}
	var in updateItemInput
	if err := c.Bind(&in); err != nil {
		return apperror.BadRequest("Corps de requête invalide")
	}
	if err := c.Validate(&in); err != nil {
		return err
	}
	item, err := h.Cart.UpdateItemQuantity(c.Request().Context(), middleware.UserID(c), id, in.Quantity)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Quantité mise à jour", item)
}

// RemoveItem deletes one cart line.
func (h *CartHandler) RemoveItem(c echo.Context) error {
	id := pathID(c, "id")
	if id == 0 {
		return apperror.BadRequest("Identifiant d'article invalide")
	}
	if err := h.Cart.RemoveItem(c.Request().Context(), middleware.UserID(c), id); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Article retiré du panier", nil)
}

// Clear empties the cart.
func (h *CartHandler) Clear(c echo.Context) error {
	if err := h.Cart.Clear(c.Request().Context(), middleware.UserID(c)); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Panier vidé", nil)
}

// Count is the badge fast path: one aggregate query, no merge.
func (h *CartHandler) Count(c echo.Context) error {
	lines, qty, err := h.Cart.Count(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", map[string]int{
		"itemCount":     lines,
		"totalQuantity": qty,
	})
}

// Validate reports what would block a checkout.
func (h *CartHandler) Validate(c echo.Context) error {
	v, err := h.Cart.Validate(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", v)
}

// Fix applies the automatic cart repairs and reports them.
func (h *CartHandler) Fix(c echo.Context) error {
	cart, fixes, err := h.Cart.Fix(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Panier ajusté", map[string]interface{}{
		"cart":  cart,
		"fixes": fixes,
	})
}

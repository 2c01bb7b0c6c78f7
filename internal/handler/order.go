package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Neruaka/jana-distribution/internal/apperror"
	"github.com/Neruaka/jana-distribution/internal/middleware"
	"github.com/Neruaka/jana-distribution/internal/repository"
	"github.com/Neruaka/jana-distribution/internal/service"
)

// OrderHandler exposes checkout and order management.
type OrderHandler struct {
	Orders *service.OrderService
}

func NewOrderHandler(orders *service.OrderService) *OrderHandler {
	return &OrderHandler{Orders: orders}
}

// Create places an order from the caller's cart.
func (h *OrderHandler) Create(c echo.Context) error {
	var in service.CreateOrderInput
	if err := c.Bind(&in); err != nil {
		return apperror.BadRequest("Corps de requête invalide")
	}
	o, err := h.Orders.Create(c.Request().Context(), middleware.UserID(c), in)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Commande "+o.OrderNumber+" enregistrée", o)
}

// List returns the caller's orders, or any user's for admins.
func (h *OrderHandler) List(c echo.Context) error {
	q := repository.OrderListQuery{
		UserID:     queryUint(c, "userId"),
		Status:     c.QueryParam("status"),
		Search:     c.QueryParam("search"),
		Sort:       c.QueryParam("sort"),
		Descending: c.QueryParam("order") != "asc",
		Page:       queryInt(c, "page", 1),
		PageSize:   queryInt(c, "limit", 20),
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 || q.PageSize > 100 {
		q.PageSize = 20
	}
	orders, total, err := h.Orders.List(c.Request().Context(), q, middleware.UserID(c), middleware.IsAdmin(c))
	if err != nil {
		return err
	}
	return respondPage(c, http.StatusOK, orders, NewPagination(q.Page, q.PageSize, total))
}

// Get fetches one order with its lines.
func (h *OrderHandler) Get(c echo.Context) error {
	id := pathID(c, "id")
	if id == 0 {
		return apperror.BadRequest("Identifiant de commande invalide")
	}
	o, err := h.Orders.Get(c.Request().Context(), id, middleware.UserID(c), middleware.IsAdmin(c))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", o)
}

type updateStatusInput struct {
	Status string  `json:"status" validate:"required"`
	Notes  *string `json:"notes"`
}

// UpdateStatus moves an order through the state machine (admin).
func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	id := pathID(c, "id")
	if id == 0 {
		return apperror.BadRequest("Identifiant de commande invalide")
	}
	var in updateStatusInput
	if err := c.Bind(&in); err != nil {
		return apperror.BadRequest("Corps de requête invalide")
	}
	if err := c.Validate(&in); err != nil {
		return err
	}
	o, err := h.Orders.UpdateStatus(c.Request().Context(), id, in.Status, in.Notes)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Statut mis à jour", o)
}

// Cancel sets an order to ANNULEE and restores its stock.
func (h *OrderHandler) Cancel(c echo.Context) error {
	id := pathID(c, "id")
	if id == 0 {
		return apperror.BadRequest("Identifiant de commande invalide")
	}
	o, err := h.Orders.Cancel(c.Request().Context(), id, middleware.UserID(c), middleware.IsAdmin(c))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Commande annulée", o)
}

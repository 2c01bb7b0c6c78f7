package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Neruaka/jana-distribution/internal/apperror"
	"github.com/Neruaka/jana-distribution/internal/model"
	"github.com/Neruaka/jana-distribution/internal/repository"
)

// UserHandler exposes admin client management.  It sits directly on the
// user repository: listing and toggling accounts carries no business
// rules beyond what the repository enforces.
type UserHandler struct {
	Users *repository.UserRepo
}

func NewUserHandler(users *repository.UserRepo) *UserHandler { return &UserHandler{Users: users} }

// List returns a searchable page of client accounts (admin).
func (h *UserHandler) List(c echo.Context) error {
	q := repository.UserListQuery{
		Role:     c.QueryParam("role"),
		Active:   queryBoolPtr(c, "active"),
		Search:   c.QueryParam("search"),
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "limit", 20),
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 || q.PageSize > 100 {
		q.PageSize = 20
	}
	users, total, err := h.Users.List(c.Request().Context(), q)
	if err != nil {
		return err
	}
	profiles := make([]model.Profile, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, u.ToProfile())
	}
	return respondPage(c, http.StatusOK, profiles, NewPagination(q.Page, q.PageSize, total))
}

type setUserActiveInput struct {
	IsActive *bool `json:"isActive" validate:"required"`
}

// SetActive activates or deactivates a client account (admin).
func (h *UserHandler) SetActive(c echo.Context) error {
	id := pathID(c, "id")
	if id == 0 {
		return apperror.BadRequest("Identifiant d'utilisateur invalide")
	}
	var in setUserActiveInput
	if err := c.Bind(&in); err != nil {
		return apperror.BadRequest("Corps de requête invalide")
	}
	if err := c.Validate(&in); err != nil {
		return err
	}
	if err := h.Users.SetActive(c.Request().Context(), id, *in.IsActive); err != nil {
		return err
	}
	msg := "Compte désactivé"
	if *in.IsActive {
		msg = "Compte activé"
	}
	return respond(c, http.StatusOK, msg, nil)
}

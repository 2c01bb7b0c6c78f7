package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Neruaka/jana-distribution/internal/apperror"
	"github.com/Neruaka/jana-distribution/internal/model"
	"github.com/Neruaka/jana-distribution/internal/service"
)

// SettingsHandler exposes typed site configuration (public reads for the
// frontend, admin writes).
type SettingsHandler struct {
	Settings *service.SettingsService
}

func NewSettingsHandler(settings *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{Settings: settings}
}

// List returns settings, optionally filtered by category.
func (h *SettingsHandler) List(c echo.Context) error {
	out, err := h.Settings.GetAll(c.Request().Context(), c.QueryParam("category"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", out)
}

// Get fetches one setting by key.
func (h *SettingsHandler) Get(c echo.Context) error {
	s, err := h.Settings.Get(c.Request().Context(), c.Param("key"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", s)
}

type settingInput struct {
	Category  string      `json:"category" validate:"required"`
	Value     interface{} `json:"value" validate:"required"`
	ValueType string      `json:"valueType" validate:"required"`
}

// Put creates or replaces a setting and invalidates its cache entry
// (admin).
func (h *SettingsHandler) Put(c echo.Context) error {
	key := c.Param("key")
	if key == "" {
		return apperror.BadRequest("Clé de paramètre manquante")
	}
	var in settingInput
	if err := c.Bind(&in); err != nil {
		return apperror.BadRequest("Corps de requête invalide")
	}
	if err := c.Validate(&in); err != nil {
		return err
	}
	switch in.ValueType {
	case model.SettingString, model.SettingNumber, model.SettingBool, model.SettingJSON:
	default:
		return apperror.BadRequest("Type de valeur invalide: %s", in.ValueType)
	}
	s := model.Setting{Key: key, Category: in.Category, Value: in.Value, ValueType: in.ValueType}
	if err := h.Settings.Put(c.Request().Context(), &s); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Paramètre enregistré", s)
}

// Delete removes a setting (admin).
func (h *SettingsHandler) Delete(c echo.Context) error {
	if err := h.Settings.Delete(c.Request().Context(), c.Param("key")); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Paramètre supprimé", nil)
}

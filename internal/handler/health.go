package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// HealthHandler reports process and database liveness.
type HealthHandler struct {
	DB *sql.DB
}

func NewHealthHandler(db *sql.DB) *HealthHandler { return &HealthHandler{DB: db} }

// Check pings the database with a short deadline.
func (h *HealthHandler) Check(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	dbStatus := "ok"
	code := http.StatusOK
	if err := h.DB.PingContext(ctx); err != nil {
		dbStatus = "unreachable"
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, envelope{Success: code == http.StatusOK, Data: map[string]string{
		"database": dbStatus,
	}})
}

package middleware

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"

	"github.com/Neruaka/jana-distribution/internal/apperror"
	"github.com/Neruaka/jana-distribution/internal/repository"
)

// errorBody is the failure envelope.  It mirrors the success envelope
// shape so clients always parse the same structure.
type errorBody struct {
	Success bool                 `json:"success"`
	Message string               `json:"message"`
	Errors  []apperror.FieldError `json:"errors,omitempty"`
}

// NewErrorHandler returns the centralized echo error handler.  Services
// raise typed operational errors; everything else is classified here so
// raw SQL or driver text never reaches a client.  In production the 500
// message is replaced with a generic one.
func NewErrorHandler(env string) echo.HTTPErrorHandler {
	prod := env == "prod" || env == "production"
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status, body := classify(err)
		if status >= http.StatusInternalServerError {
			log.Printf("ERROR: %s %s: %v", c.Request().Method, c.Request().URL.Path, err)
			if prod {
				body.Message = "Une erreur interne est survenue"
			}
		}
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, body)
	}
}

func classify(err error) (int, errorBody) {
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return appErr.Status, errorBody{Message: appErr.Message, Errors: appErr.Fields}
	}
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code, errorBody{Message: fmt.Sprint(httpErr.Message)}
	}
	switch {
	case errors.Is(err, repository.ErrInsufficientStock):
		return http.StatusBadRequest, errorBody{Message: "Stock insuffisant"}
	case errors.Is(err, repository.ErrForbidden):
		return http.StatusForbidden, errorBody{Message: "Accès interdit"}
	case errors.Is(err, repository.ErrEmailExists):
		return http.StatusConflict, errorBody{Message: "Un compte existe déjà avec cet email"}
	case errors.Is(err, repository.ErrConflict):
		return http.StatusConflict, errorBody{Message: "Cette ressource existe déjà"}
	case errors.Is(err, sql.ErrNoRows):
		return http.StatusNotFound, errorBody{Message: "Ressource introuvable"}
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return http.StatusConflict, errorBody{Message: "Cette ressource existe déjà"}
		case "23503": // foreign_key_violation
			return http.StatusBadRequest, errorBody{Message: "Référence invalide vers une autre ressource"}
		case "22P02": // invalid_text_representation
			return http.StatusBadRequest, errorBody{Message: "Identifiant mal formé"}
		}
	}
	return http.StatusInternalServerError, errorBody{Message: err.Error()}
}

package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Neruaka/jana-distribution/internal/apperror"
	"github.com/Neruaka/jana-distribution/internal/middleware"
	"github.com/Neruaka/jana-distribution/internal/service"
)

// AuthHandler exposes registration, login, the password-reset flow and
// account management.
type AuthHandler struct {
	Auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler { return &AuthHandler{Auth: auth} }

// Register creates a new client account and logs it in.
func (h *AuthHandler) Register(c echo.Context) error {
	var in service.RegisterInput
	if err := c.Bind(&in); err != nil {
		return apperror.BadRequest("Corps de requête invalide")
	}
	if err := c.Validate(&in); err != nil {
		return err
	}
	res, err := h.Auth.Register(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Compte créé", res)
}

type loginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login exchanges credentials for a signed token.
func (h *AuthHandler) Login(c echo.Context) error {
	var in loginInput
	if err := c.Bind(&in); err != nil {
		return apperror.BadRequest("Corps de requête invalide")
	}
	if err := c.Validate(&in); err != nil {
		return err
	}
	res, err := h.Auth.Login(c.Request().Context(), in.Email, in.Password)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Connexion réussie", res)
}

type forgotInput struct {
	Email string `json:"email" validate:"required,email"`
}

// ForgotPassword always answers with the same message, whether or not
// the account exists.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var in forgotInput
	if err := c.Bind(&in); err != nil {
		return apperror.BadRequest("Corps de requête invalide")
	}
	if err := c.Validate(&in); err != nil {
		return err
	}
	h.Auth.ForgotPassword(c.Request().Context(), in.Email)
	return respond(c, http.StatusOK, service.ForgotPasswordMessage, nil)
}

type resetInput struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

// ResetPassword consumes a reset token.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var in resetInput
	if err := c.Bind(&in); err != nil {
		return apperror.BadRequest("Corps de requête invalide")
	}
	if err := c.Validate(&in); err != nil {
		return err
	}
	if err := h.Auth.ResetPassword(c.Request().Context(), in.Token, in.Password); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Mot de passe réinitialisé", nil)
}

// Me returns the caller's profile.
func (h *AuthHandler) Me(c echo.Context) error {
	p, err := h.Auth.Profile(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", p)
}

// UpdateProfile rewrites the caller's identity fields.
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	var in service.UpdateProfileInput
	if err := c.Bind(&in); err != nil {
		return apperror.BadRequest("Corps de requête invalide")
	}
	if err := c.Validate(&in); err != nil {
		return err
	}
	p, err := h.Auth.UpdateProfile(c.Request().Context(), middleware.UserID(c), in)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Profil mis à jour", p)
}

type changePasswordInput struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
}

// ChangePassword replaces the caller's password.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	var in changePasswordInput
	if err := c.Bind(&in); err != nil {
		return apperror.BadRequest("Corps de requête invalide")
	}
	if err := c.Validate(&in); err != nil {
		return err
	}
	if err := h.Auth.ChangePassword(c.Request().Context(), middleware.UserID(c), in.CurrentPassword, in.NewPassword); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Mot de passe modifié", nil)
}

type deleteAccountInput struct {
	Password string `json:"password" validate:"required"`
}

// DeleteAccount anonymizes the caller's account.
func (h *AuthHandler) DeleteAccount(c echo.Context) error {
	var in deleteAccountInput
	if err := c.Bind(&in); err != nil {
		return apperror.BadRequest("Corps de requête invalide")
	}
	if err := c.Validate(&in); err != nil {
		return err
	}
	if err := h.Auth.DeleteAccount(c.Request().Context(), middleware.UserID(c), in.Password); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Compte supprimé", nil)
}

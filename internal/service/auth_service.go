package service

import (
	"context"
	"database/sql"
	"log"
	"strings"

	"github.com/Neruaka/jana-distribution/internal/apperror"
	"github.com/Neruaka/jana-distribution/internal/model"
	"github.com/Neruaka/jana-distribution/internal/queue"
	"github.com/Neruaka/jana-distribution/internal/repository"
	"github.com/Neruaka/jana-distribution/internal/utils"
)

// AuthService implements registration, login, the password-reset flow
// and profile management.
type AuthService struct {
	Users *repository.UserRepo
	Mail  mailPublisher

	JWTSecret    string
	AccessTTLMin int
	ResetTTLMin  int
	BcryptCost   int
}

func NewAuthService(users *repository.UserRepo, mail mailPublisher,
	secret string, accessTTLMin, resetTTLMin, bcryptCost int) *AuthService {
	return &AuthService{Users: users, Mail: mail, JWTSecret: secret,
		AccessTTLMin: accessTTLMin, ResetTTLMin: resetTTLMin, BcryptCost: bcryptCost}
}

// RegisterInput is the signup payload.
type RegisterInput struct {
	Email       string  `json:"email" validate:"required,email"`
	Password    string  `json:"password" validate:"required,min=8"`
	Name        string  `json:"name" validate:"required"`
	Surname     string  `json:"surname" validate:"required"`
	ClientType  string  `json:"typeClient"`
	Siret       *string `json:"siret"`
	CompanyName *string `json:"companyName"`
}

// AuthResult bundles the signed token with the user's profile.
type AuthResult struct {
	Token     string        `json:"token"`
	ExpiresAt string        `json:"expiresAt"`
	User      model.Profile `json:"user"`
}

// Register creates a CLIENT account.  BUSINESS accounts must carry a
// SIRET and a company name; INDIVIDUAL accounts must not.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	clientType := strings.ToUpper(strings.TrimSpace(in.ClientType))
	if clientType == "" {
		clientType = model.ClientIndividual
	}
	switch clientType {
	case model.ClientIndividual:
		in.Siret = nil
		in.CompanyName = nil
	case model.ClientBusiness:
		if in.Siret == nil || len(strings.TrimSpace(*in.Siret)) != 14 {
			return nil, apperror.BadRequest("Un compte professionnel requiert un SIRET à 14 chiffres")
		}
		if in.CompanyName == nil || strings.TrimSpace(*in.CompanyName) == "" {
			return nil, apperror.BadRequest("Un compte professionnel requiert une raison sociale")
		}
	default:
		return nil, apperror.BadRequest("Type de client invalide: %s", in.ClientType)
	}

	hash, err := utils.HashPassword(in.Password, s.BcryptCost)
	if err != nil {
		return nil, err
	}
	u := &model.User{
		Email:        in.Email,
		PasswordHash: hash,
		Name:         in.Name,
		Surname:      in.Surname,
		Role:         model.RoleClient,
		ClientType:   clientType,
		Siret:        in.Siret,
		CompanyName:  in.CompanyName,
	}
	if err := s.Users.Create(ctx, u); err != nil {
		if err == repository.ErrEmailExists {
			return nil, apperror.Conflict("Un compte existe déjà avec cet email")
		}
		return nil, err
	}
	return s.issueToken(*u)
}

// Login verifies credentials.  Wrong email and wrong password produce
// the same message; a deactivated account is refused explicitly.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.Unauthorized("Email ou mot de passe incorrect")
		}
		return nil, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return nil, apperror.Unauthorized("Email ou mot de passe incorrect")
	}
	if !u.IsActive {
		return nil, apperror.Forbidden("Ce compte a été désactivé")
	}
	return s.issueToken(u)
}

func (s *AuthService) issueToken(u model.User) (*AuthResult, error) {
	tok, err := utils.NewAccessToken(s.JWTSecret, u.ID, u.Email, u.Role, u.ClientType, s.AccessTTLMin)
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		Token:     tok.Token,
		ExpiresAt: tok.Exp.Format("2006-01-02T15:04:05Z07:00"),
		User:      u.ToProfile(),
	}, nil
}

// ForgotPasswordMessage is returned whether or not the email exists, so
// the endpoint cannot be used to enumerate accounts.
const ForgotPasswordMessage = "Si un compte existe avec cet email, un lien de réinitialisation a été envoyé"

// ForgotPassword stores a hashed single-use reset token and queues the
// reset email.  Every failure after input parsing is logged and
// swallowed: the caller always gets the same generic message.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if err != sql.ErrNoRows {
			log.Printf("WARN: forgot-password lookup failed: %v", err)
		}
		return
	}
	if !u.IsActive {
		return
	}
	tok, err := utils.NewResetToken(s.ResetTTLMin)
	if err != nil {
		log.Printf("WARN: reset token generation failed: %v", err)
		return
	}
	if err := s.Users.SetResetToken(ctx, u.ID, utils.HashTokenRaw(tok.Raw), tok.Exp); err != nil {
		log.Printf("WARN: reset token store failed: %v", err)
		return
	}
	fireMail(ctx, s.Mail, queue.MailMessage{
		Kind:       queue.MailPasswordReset,
		To:         u.Email,
		Name:       u.Name,
		ResetToken: tok.Raw,
	})
}

// ResetPassword consumes a reset token and replaces the password.
func (s *AuthService) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	u, err := s.Users.GetByResetToken(ctx, utils.HashTokenRaw(rawToken))
	if err != nil {
		if err == sql.ErrNoRows {
			return apperror.BadRequest("Lien de réinitialisation invalide ou expiré")
		}
		return err
	}
	hash, err := utils.HashPassword(newPassword, s.BcryptCost)
	if err != nil {
		return err
	}
	if err := s.Users.UpdatePassword(ctx, u.ID, hash); err != nil {
		return err
	}
	return s.Users.ClearResetToken(ctx, u.ID)
}

// Profile returns the caller's account.
func (s *AuthService) Profile(ctx context.Context, userID uint64) (*model.Profile, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("Utilisateur introuvable")
		}
		return nil, err
	}
	p := u.ToProfile()
	return &p, nil
}

// UpdateProfileInput carries the mutable identity fields.
type UpdateProfileInput struct {
	Name        string  `json:"name" validate:"required"`
	Surname     string  `json:"surname" validate:"required"`
	ClientType  string  `json:"typeClient"`
	Siret       *string `json:"siret"`
	CompanyName *string `json:"companyName"`
}

// UpdateProfile rewrites the caller's identity fields, applying the same
// BUSINESS/INDIVIDUAL rules as registration.
func (s *AuthService) UpdateProfile(ctx context.Context, userID uint64, in UpdateProfileInput) (*model.Profile, error) {
	clientType := strings.ToUpper(strings.TrimSpace(in.ClientType))
	if clientType == "" {
		clientType = model.ClientIndividual
	}
	switch clientType {
	case model.ClientIndividual:
		in.Siret = nil
		in.CompanyName = nil
	case model.ClientBusiness:
		if in.Siret == nil || len(strings.TrimSpace(*in.Siret)) != 14 {
			return nil, apperror.BadRequest("Un compte professionnel requiert un SIRET à 14 chiffres")
		}
		if in.CompanyName == nil || strings.TrimSpace(*in.CompanyName) == "" {
			return nil, apperror.BadRequest("Un compte professionnel requiert une raison sociale")
		}
	default:
		return nil, apperror.BadRequest("Type de client invalide: %s", in.ClientType)
	}
	if err := s.Users.UpdateProfile(ctx, userID, in.Name, in.Surname, clientType, in.Siret, in.CompanyName); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("Utilisateur introuvable")
		}
		return nil, err
	}
	return s.Profile(ctx, userID)
}

// ChangePassword replaces the caller's password after checking the
// current one.
func (s *AuthService) ChangePassword(ctx context.Context, userID uint64, current, next string) error {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return apperror.NotFound("Utilisateur introuvable")
		}
		return err
	}
	if !utils.VerifyPassword(u.PasswordHash, current) {
		return apperror.Unauthorized("Mot de passe actuel incorrect")
	}
	hash, err := utils.HashPassword(next, s.BcryptCost)
	if err != nil {
		return err
	}
	return s.Users.UpdatePassword(ctx, userID, hash)
}

// DeleteAccount anonymizes the caller's account after a password check.
// The user row stays so order history keeps its owner reference.
func (s *AuthService) DeleteAccount(ctx context.Context, userID uint64, password string) error {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return apperror.NotFound("Utilisateur introuvable")
		}
		return err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return apperror.Unauthorized("Mot de passe incorrect")
	}
	return s.Users.Anonymize(ctx, userID)
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Neruaka/jana-distribution/internal/model"
)

// UserRepo provides data access to the users table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = `id, email, password_hash, name, surname, role, client_type,
	siret, company_name, is_active, reset_token_hash, reset_token_expires,
	created_at, updated_at`

// Create inserts a user and populates the generated ID.  Emails are
// normalized to lower case before insertion; a unique violation maps to
// ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO users (email, password_hash, name, surname, role, client_type, siret, company_name)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, is_active, created_at, updated_at`,
		u.Email, u.PasswordHash, u.Name, u.Surname, u.Role, u.ClientType, u.Siret, u.CompanyName,
	).Scan(&u.ID, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrEmailExists
		}
		return err
	}
	return nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.getOne(ctx, "email = $1", email)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.getOne(ctx, "id = $1", id)
}

// GetByResetToken fetches the user holding the given reset-token hash,
// provided the token has not expired.
func (r *UserRepo) GetByResetToken(ctx context.Context, tokenHash string) (model.User, error) {
	return r.getOne(ctx, "reset_token_hash = $1 AND reset_token_expires > NOW()", tokenHash)
}

func (r *UserRepo) getOne(ctx context.Context, cond string, args ...interface{}) (model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		fmt.Sprintf("SELECT %s FROM users WHERE %s LIMIT 1", userColumns, cond), args...)
	return scanUser(row)
}

type rowScanner interface{ Scan(dest ...interface{}) error }

func scanUser(row rowScanner) (model.User, error) {
	var u model.User
	var siret, company, resetHash sql.NullString
	var resetExp sql.NullTime
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Surname, &u.Role,
		&u.ClientType, &siret, &company, &u.IsActive, &resetHash, &resetExp,
		&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return u, err
	}
	if siret.Valid {
		u.Siret = &siret.String
	}
	if company.Valid {
		u.CompanyName = &company.String
	}
	if resetHash.Valid {
		u.ResetTokenHash = &resetHash.String
	}
	if resetExp.Valid {
		t := resetExp.Time
		u.ResetTokenExp = &t
	}
	return u, nil
}

// LockTx takes a row lock on the user record inside the provided
// transaction.  The cart service uses this to serialize concurrent
// get-or-create-cart calls for the same user.
func (r *UserRepo) LockTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	var locked uint64
	err := tx.QueryRowContext(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
	return err
}

// UpdateProfile updates the mutable identity fields of a user.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, name, surname, clientType string, siret, company *string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE users SET name = $1, surname = $2, client_type = $3, siret = $4,
		        company_name = $5, updated_at = NOW()
		 WHERE id = $6`,
		name, surname, clientType, siret, company, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// UpdatePassword replaces the password hash.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, hash string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`, hash, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// SetResetToken stores the SHA-256 hash of a password-reset token and
// its expiry on the user row.
func (r *UserRepo) SetResetToken(ctx context.Context, id uint64, tokenHash string, expires time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE users SET reset_token_hash = $1, reset_token_expires = $2, updated_at = NOW()
		 WHERE id = $3`, tokenHash, expires, id)
	return err
}

// ClearResetToken removes any pending reset token from the user row.
func (r *UserRepo) ClearResetToken(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE users SET reset_token_hash = NULL, reset_token_expires = NULL, updated_at = NOW()
		 WHERE id = $1`, id)
	return err
}

// SetActive toggles the account's active flag.
func (r *UserRepo) SetActive(ctx context.Context, id uint64, active bool) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE users SET is_active = $1, updated_at = NOW() WHERE id = $2`, active, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// Anonymize overwrites personal fields and deactivates the account while
// keeping the row (and therefore the order history) in place.
func (r *UserRepo) Anonymize(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE users SET email = 'deleted-' || id || '@anonyme.local',
		        password_hash = '', name = 'Compte', surname = 'Supprimé',
		        siret = NULL, company_name = NULL, is_active = FALSE,
		        reset_token_hash = NULL, reset_token_expires = NULL,
		        updated_at = NOW()
		 WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// UserListQuery defines filters and pagination for the admin client list.
type UserListQuery struct {
	Role     string
	Active   *bool
	Search   string
	Page     int
	PageSize int
}

// List returns a page of users plus the unpaginated total.
func (r *UserRepo) List(ctx context.Context, q UserListQuery) ([]model.User, int64, error) {
	b := &Builder{}
	if q.Role != "" {
		b.Where("u.role = ?", q.Role)
	}
	if q.Active != nil {
		b.Where("u.is_active = ?", *q.Active)
	}
	if q.Search != "" {
		needle := "%" + strings.ToLower(q.Search) + "%"
		b.Where("(LOWER(u.email) LIKE ? OR LOWER(u.name) LIKE ? OR LOWER(u.surname) LIKE ? OR LOWER(COALESCE(u.company_name,'')) LIKE ?)",
			needle, needle, needle, needle)
	}

	var total int64
	countSQL := `SELECT COUNT(*) FROM users u ` + b.WhereSQL()
	if err := r.DB.QueryRowContext(ctx, countSQL, b.Args()...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := q.PageSize
	offset := (q.Page - 1) * q.PageSize
	tail := b.Suffix("ORDER BY u.created_at DESC LIMIT ? OFFSET ?", limit, offset)
	dataSQL := fmt.Sprintf("SELECT %s FROM users u %s %s", userColumns, b.WhereSQL(), tail)

	rows, err := r.DB.QueryContext(ctx, dataSQL, b.Args()...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out := make([]model.User, 0, limit)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// requireRow converts a zero-rows-affected result into sql.ErrNoRows so
// callers can map it to 404.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

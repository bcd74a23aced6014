package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/hackgods/healthcare-portal/internal/db"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("user with this email already exists")
)

const emailConstraint = "users_email_key"

type Repository interface {
	Create(ctx context.Context, in NewUser) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, id int64, p Patch) (*User, error)
	SetTwoFactor(ctx context.Context, id int64, secret *string, enabled bool) error
	SetPasswordHash(ctx context.Context, id int64, hash string) error
	List(ctx context.Context, f ListFilter) ([]User, error)
	Delete(ctx context.Context, id int64) error
}

type PgRepository struct {
	q db.Querier
}

func NewPgRepository(q db.Querier) *PgRepository {
	return &PgRepository{q: q}
}

const columns = `id, email, first_name, last_name, phone, to_char(date_of_birth, 'YYYY-MM-DD'), role,
	two_factor_enabled, profile_picture_url, created_at, updated_at, password_hash, two_factor_secret`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.Phone, &u.DateOfBirth, &u.Role,
		&u.TwoFactorEnabled, &u.ProfilePictureURL, &u.CreatedAt, &u.UpdatedAt, &u.PasswordHash, &u.TwoFactorSecret)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		if db.IsUniqueViolation(err, emailConstraint) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return &u, nil
}

func (r *PgRepository) Create(ctx context.Context, in NewUser) (*User, error) {
	return scanUser(r.q.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, first_name, last_name, phone, date_of_birth, role)
		VALUES ($1, $2, $3, $4, $5, $6::date, $7)
		RETURNING `+columns,
		in.Email, in.PasswordHash, in.FirstName, in.LastName, in.Phone, in.DateOfBirth, in.Role))
}

func (r *PgRepository) GetByID(ctx context.Context, id int64) (*User, error) {
	return scanUser(r.q.QueryRow(ctx, `SELECT `+columns+` FROM users WHERE id = $1`, id))
}

func (r *PgRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return scanUser(r.q.QueryRow(ctx, `SELECT `+columns+` FROM users WHERE email = $1`, email))
}

func (r *PgRepository) Update(ctx context.Context, id int64, p Patch) (*User, error) {
	return scanUser(r.q.QueryRow(ctx, `
		UPDATE users
		SET email               = COALESCE($2, email),
		    first_name          = COALESCE($3, first_name),
		    last_name           = COALESCE($4, last_name),
		    phone               = COALESCE($5, phone),
		    date_of_birth       = COALESCE($6::date, date_of_birth),
		    role                = COALESCE($7, role),
		    profile_picture_url = COALESCE($8, profile_picture_url),
		    updated_at          = now()
		WHERE id = $1
		RETURNING `+columns,
		id, p.Email, p.FirstName, p.LastName, p.Phone, p.DateOfBirth, p.Role, p.ProfilePictureURL))
}

func (r *PgRepository) SetTwoFactor(ctx context.Context, id int64, secret *string, enabled bool) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE users
		SET two_factor_secret = $2, two_factor_enabled = $3, updated_at = now()
		WHERE id = $1
	`, id, secret, enabled)
	if err != nil {
		return fmt.Errorf("update two factor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *PgRepository) SetPasswordHash(ctx context.Context, id int64, hash string) error {
	tag, err := r.q.Exec(ctx, `UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`, id, hash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *PgRepository) List(ctx context.Context, f ListFilter) ([]User, error) {
	search := ""
	if f.Search != "" {
		search = "%" + f.Search + "%"
	}
	rows, err := r.q.Query(ctx, `
		SELECT `+columns+`
		FROM users
		WHERE ($1 = '' OR role = $1)
		  AND ($2 = '' OR first_name ILIKE $2 OR last_name ILIKE $2 OR email ILIKE $2)
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4
	`, f.Role, search, f.Limit, (f.Page-1)*f.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

func (r *PgRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

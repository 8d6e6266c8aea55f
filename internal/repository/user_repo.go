package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"blogit/internal/domain"
)

const uniqueViolation = "23505"

var (
	ErrNotFound          = errors.New("user not found")
	ErrDuplicateEmail    = errors.New("email address already registered")
	ErrDuplicateUsername = errors.New("username already registered")
)

// UserRepository define el contrato de persistencia para usuarios.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (domain.User, error)
	FindByEmailOrUsername(ctx context.Context, identifier string) (domain.User, error)
	FindByEmailOrUsernameExcept(ctx context.Context, email, username, exceptID string) (domain.User, error)
	UpdatePasswordHash(ctx context.Context, id, hash string) error
	UpdateProfilePhoto(ctx context.Context, id string, ref *string) error
}

// Querier es el subconjunto de pgxpool.Pool que usa el repositorio.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PgUserRepository implementa UserRepository sobre pgx.
type PgUserRepository struct {
	db  Querier
	now func() time.Time
}

func NewPgUserRepository(db Querier) *PgUserRepository {
	return &PgUserRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

const userColumns = `
	id, first_name, last_name, email_address, username, password_hash,
	phone_number, occupation, bio, status, secondary_email, profile_photo,
	is_deleted, is_deactivated, created_at, updated_at
`

func (r *PgUserRepository) Create(ctx context.Context, user domain.User) error {
	const query = `
		INSERT INTO users (id, first_name, last_name, email_address, username, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query,
		user.ID,
		user.FirstName,
		user.LastName,
		user.EmailAddress,
		user.Username,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	)
	return mapWriteError(err)
}

func (r *PgUserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 AND NOT is_deleted`
	return scanUser(r.db.QueryRow(ctx, query, id))
}

// FindByEmailOrUsername resuelve el identificador de login contra ambas columnas.
func (r *PgUserRepository) FindByEmailOrUsername(ctx context.Context, identifier string) (domain.User, error) {
	query := `SELECT ` + userColumns + `
		FROM users
		WHERE (email_address = $1 OR username = $1) AND NOT is_deleted
		ORDER BY (email_address = $1) DESC
		LIMIT 1`
	return scanUser(r.db.QueryRow(ctx, query, identifier))
}

// FindByEmailOrUsernameExcept devuelve otra cuenta que ya use el email o el
// username. Si hay coincidencia de email se prioriza sobre la de username.
func (r *PgUserRepository) FindByEmailOrUsernameExcept(ctx context.Context, email, username, exceptID string) (domain.User, error) {
	query := `SELECT ` + userColumns + `
		FROM users
		WHERE (email_address = $1 OR username = $2)
		  AND NOT is_deleted
		  AND ($3 = '' OR id::text <> $3)
		ORDER BY (email_address = $1) DESC
		LIMIT 1`
	return scanUser(r.db.QueryRow(ctx, query, email, username, exceptID))
}

func (r *PgUserRepository) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	const query = `UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1 AND NOT is_deleted`
	tag, err := r.db.Exec(ctx, query, id, hash, r.now())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PgUserRepository) UpdateProfilePhoto(ctx context.Context, id string, ref *string) error {
	const query = `UPDATE users SET profile_photo = $2, updated_at = $3 WHERE id = $1 AND NOT is_deleted`
	tag, err := r.db.Exec(ctx, query, id, ref, r.now())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.FirstName,
		&u.LastName,
		&u.EmailAddress,
		&u.Username,
		&u.PasswordHash,
		&u.PhoneNumber,
		&u.Occupation,
		&u.Bio,
		&u.Status,
		&u.SecondaryEmail,
		&u.ProfilePhoto,
		&u.IsDeleted,
		&u.IsDeactivated,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, ErrNotFound
	}
	if err != nil {
		return domain.User{}, err
	}
	return u, nil
}

// mapWriteError traduce violaciones de los indices unicos a errores del dominio.
func mapWriteError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		switch pgErr.ConstraintName {
		case "users_email_address_key":
			return ErrDuplicateEmail
		case "users_username_key":
			return ErrDuplicateUsername
		}
	}
	return err
}

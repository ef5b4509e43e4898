package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"immoapp/internal/domain"
)

// ErrDuplicateEmail se devuelve cuando la restriccion unica de email falla.
var ErrDuplicateEmail = errors.New("duplicate email")

const uniqueViolation = "23505"

// AccountRepository define el contrato de persistencia para cuentas.
// Las busquedas sin resultado devuelven pgx.ErrNoRows.
type AccountRepository interface {
	Create(ctx context.Context, account domain.Account) error
	GetByID(ctx context.Context, id string) (domain.Account, error)
	GetByEmail(ctx context.Context, email string) (domain.Account, error)
	// SetVerificationToken reemplaza el token de una cuenta aun no verificada.
	SetVerificationToken(ctx context.Context, id, token string, expiresAt time.Time) error
	// ConsumeVerificationToken marca el email como verificado y limpia el token
	// en una sola sentencia; pgx.ErrNoRows si el token no existe o expiro.
	ConsumeVerificationToken(ctx context.Context, token string, now time.Time) (domain.Account, error)
	UpdateProfile(ctx context.Context, id, name, image string) error
	Delete(ctx context.Context, id string) error
}

// dbExecutor es el subconjunto de pgxpool.Pool que usan los repositorios.
type dbExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PgAccountRepository implementa AccountRepository usando pgxpool.
type PgAccountRepository struct {
	pool dbExecutor
}

func NewPgAccountRepository(pool *pgxpool.Pool) *PgAccountRepository {
	return &PgAccountRepository{pool: pool}
}

const accountColumns = `
	id, email, name, image, role, password_hash, email_verified_at,
	verification_token, verification_token_expires_at, created_at, updated_at
`

func (r *PgAccountRepository) Create(ctx context.Context, account domain.Account) error {
	const query = `
		INSERT INTO accounts (
			id, email, name, image, role, password_hash, email_verified_at,
			verification_token, verification_token_expires_at, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.pool.Exec(ctx, query,
		account.ID,
		account.Email,
		account.Name,
		account.Image,
		string(account.Role),
		account.PasswordHash,
		account.EmailVerifiedAt,
		account.VerificationToken,
		account.VerificationTokenExpiresAt,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	return err
}

func (r *PgAccountRepository) GetByID(ctx context.Context, id string) (domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return scanAccount(r.pool.QueryRow(ctx, query, id))
}

func (r *PgAccountRepository) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`
	return scanAccount(r.pool.QueryRow(ctx, query, email))
}

func (r *PgAccountRepository) SetVerificationToken(ctx context.Context, id, token string, expiresAt time.Time) error {
	const query = `
		UPDATE accounts
		SET verification_token = $2,
		    verification_token_expires_at = $3,
		    updated_at = now()
		WHERE id = $1
		  AND email_verified_at IS NULL
	`
	tag, err := r.pool.Exec(ctx, query, id, token, expiresAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgAccountRepository) ConsumeVerificationToken(ctx context.Context, token string, now time.Time) (domain.Account, error) {
	query := `
		UPDATE accounts
		SET email_verified_at = $2,
		    verification_token = NULL,
		    verification_token_expires_at = NULL,
		    updated_at = $2
		WHERE verification_token = $1
		  AND verification_token_expires_at > $2
		RETURNING ` + accountColumns
	return scanAccount(r.pool.QueryRow(ctx, query, token, now))
}

func (r *PgAccountRepository) UpdateProfile(ctx context.Context, id, name, image string) error {
	const query = `
		UPDATE accounts
		SET name = $2, image = $3, updated_at = now()
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, id, name, image)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgAccountRepository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	return err
}

func scanAccount(row pgx.Row) (domain.Account, error) {
	var (
		a    domain.Account
		role string
	)
	err := row.Scan(
		&a.ID,
		&a.Email,
		&a.Name,
		&a.Image,
		&role,
		&a.PasswordHash,
		&a.EmailVerifiedAt,
		&a.VerificationToken,
		&a.VerificationTokenExpiresAt,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return domain.Account{}, err
	}
	a.Role = domain.Role(role)
	return a, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

package directory

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound indicates no account exists for the phone number.
	ErrNotFound = errors.New("account not found")

	// ErrExists indicates an account already exists for the phone number.
	ErrExists = errors.New("account already exists")
)

// Repository persists wallet accounts.
type Repository interface {
	Create(ctx context.Context, account Account) error
	FindByPhone(ctx context.Context, phone string) (Account, error)
	UpdateAlias(ctx context.Context, phone, alias string) error
	UpdatePIN(ctx context.Context, phone string, pinHash []byte) error
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed account repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new account. The unique index on phone enforces the
// one-account-per-phone invariant even under concurrent JOINs.
func (r *PostgresRepository) Create(ctx context.Context, account Account) error {
	_, err := r.db.Exec(ctx, `INSERT INTO accounts (phone, address, encrypted_key, alias, pin_hash, created_at)
        VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6)`,
		account.Phone, account.Address, account.EncryptedKey, account.Alias, account.PINHash, account.CreatedAt.UTC())
	return err
}

// FindByPhone fetches an account by phone number.
func (r *PostgresRepository) FindByPhone(ctx context.Context, phone string) (Account, error) {
	row := r.db.QueryRow(ctx, `SELECT phone, address, encrypted_key, COALESCE(alias, ''), pin_hash, created_at
        FROM accounts WHERE phone = $1`, phone)
	var (
		account   Account
		createdAt time.Time
	)
	if err := row.Scan(&account.Phone, &account.Address, &account.EncryptedKey, &account.Alias, &account.PINHash, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrNotFound
		}
		return Account{}, err
	}
	account.CreatedAt = createdAt.UTC()
	return account, nil
}

// UpdateAlias stores the account's claimed alias.
func (r *PostgresRepository) UpdateAlias(ctx context.Context, phone, alias string) error {
	cmd, err := r.db.Exec(ctx, `UPDATE accounts SET alias = $1 WHERE phone = $2`, alias, phone)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdatePIN stores the account's PIN hash.
func (r *PostgresRepository) UpdatePIN(ctx context.Context, phone string, pinHash []byte) error {
	cmd, err := r.db.Exec(ctx, `UPDATE accounts SET pin_hash = $1 WHERE phone = $2`, pinHash, phone)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

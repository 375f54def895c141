package contact

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists per-owner contact books.
type Repository interface {
	Add(ctx context.Context, c Contact) error
	List(ctx context.Context, ownerPhone string) ([]Contact, error)
	FindByName(ctx context.Context, ownerPhone, name string) ([]Contact, error)
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed contact repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Add upserts a contact for the owner; saving an existing name overwrites it.
func (r *PostgresRepository) Add(ctx context.Context, c Contact) error {
	_, err := r.db.Exec(ctx, `INSERT INTO contacts (owner_phone, name, phone, address, created_at)
        VALUES ($1, lower($2), NULLIF($3, ''), NULLIF($4, ''), $5)
        ON CONFLICT (owner_phone, name)
        DO UPDATE SET phone = EXCLUDED.phone, address = EXCLUDED.address`,
		c.OwnerPhone, c.Name, c.Phone, c.Address, c.CreatedAt.UTC())
	return err
}

// List returns the owner's contacts, most recent first.
func (r *PostgresRepository) List(ctx context.Context, ownerPhone string) ([]Contact, error) {
	rows, err := r.db.Query(ctx, `SELECT owner_phone, name, COALESCE(phone, ''), COALESCE(address, ''), created_at
        FROM contacts WHERE owner_phone = $1 ORDER BY created_at DESC`, ownerPhone)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanContacts(rows)
}

// FindByName looks up contacts matching name, case-insensitively.
func (r *PostgresRepository) FindByName(ctx context.Context, ownerPhone, name string) ([]Contact, error) {
	rows, err := r.db.Query(ctx, `SELECT owner_phone, name, COALESCE(phone, ''), COALESCE(address, ''), created_at
        FROM contacts WHERE owner_phone = $1 AND name = lower($2)`, ownerPhone, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanContacts(rows)
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanContacts(rows rowScanner) ([]Contact, error) {
	var contacts []Contact
	for rows.Next() {
		var (
			c         Contact
			createdAt time.Time
		)
		if err := rows.Scan(&c.OwnerPhone, &c.Name, &c.Phone, &c.Address, &createdAt); err != nil {
			return nil, err
		}
		c.CreatedAt = createdAt.UTC()
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

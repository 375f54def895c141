package deposit

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Deposit is a settled credit into a user's wallet, recorded out-of-band by
// the settlement backend's notification path.
type Deposit struct {
	Phone    string
	Amount   float64
	Source   string
	Token    string
	TxHash   string
	Credited time.Time
}

// Repository reads settled deposits for history replies.
type Repository interface {
	Recent(ctx context.Context, phone string, limit int) ([]Deposit, error)
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed deposit repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Recent returns the newest deposits for phone, capped at limit.
func (r *PostgresRepository) Recent(ctx context.Context, phone string, limit int) ([]Deposit, error) {
	rows, err := r.db.Query(ctx, `SELECT phone, amount, source, token, tx_hash, credited_at
        FROM deposits WHERE phone = $1 ORDER BY credited_at DESC LIMIT $2`, phone, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deposits []Deposit
	for rows.Next() {
		var (
			d        Deposit
			credited time.Time
		)
		if err := rows.Scan(&d.Phone, &d.Amount, &d.Source, &d.Token, &d.TxHash, &credited); err != nil {
			return nil, err
		}
		d.Credited = credited.UTC()
		deposits = append(deposits, d)
	}
	return deposits, rows.Err()
}

package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/retakehq/retake/internal/billing"
)

// Compile-time check that BalanceRepository implements billing.Repository.
var _ billing.Repository = (*BalanceRepository)(nil)

// BalanceRepository persists ledger entries in the balances table.
// Entries are only ever inserted.
type BalanceRepository struct {
	db *sql.DB
}

// NewBalanceRepository creates a Postgres-backed ledger repository.
func NewBalanceRepository(db *sql.DB) *BalanceRepository {
	return &BalanceRepository{db: db}
}

// Append inserts a new ledger entry and returns its assigned ID.
func (r *BalanceRepository) Append(ctx context.Context, entry *billing.Entry) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO balances (date_created, user_id, change_type, change_reason, delta, foreign_id, expires_at, descriptor)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		entry.DateCreated,
		entry.UserID,
		string(entry.ChangeType),
		string(entry.ChangeReason),
		entry.Delta,
		entry.ForeignID,
		entry.ExpiresAt,
		entry.Descriptor,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("append balance entry: %w", err)
	}
	return id, nil
}

// SumDeltas returns the sum of all entry deltas for the user.
func (r *BalanceRepository) SumDeltas(ctx context.Context, userID string) (int64, error) {
	var sum int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(delta), 0) FROM balances WHERE user_id = $1`,
		userID,
	).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum balance deltas: %w", err)
	}
	return sum, nil
}

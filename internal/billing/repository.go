package billing

import (
	"context"
	"errors"
)

// ErrInsufficientCredits is returned when a reservation would exceed the
// user's available balance.
var ErrInsufficientCredits = errors.New("billing: insufficient credits")

// Repository defines the persistence capability the ledger depends on.
// Implementations must treat entries as append-only.
type Repository interface {
	// Append inserts a new ledger entry and returns its assigned ID.
	Append(ctx context.Context, entry *Entry) (int64, error)

	// SumDeltas returns the sum of all entry deltas for the user.
	// A user with no entries sums to zero.
	SumDeltas(ctx context.Context, userID string) (int64, error)
}

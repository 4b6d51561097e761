package billing

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/retakehq/retake/internal/metrics"
)

// Service appends ledger entries for billing events and computes balances.
//
// Reservations go through a per-user critical section so that a concurrent
// check-then-reserve for the same user cannot oversubscribe the balance.
type Service struct {
	repo    Repository
	logger  *slog.Logger
	metrics *metrics.Metrics

	mu        sync.Mutex
	userLocks map[string]*sync.Mutex
}

// ServiceOption is a function that configures a Service.
type ServiceOption func(*Service)

// WithMetrics attaches Prometheus collectors to the service.
func WithMetrics(m *metrics.Metrics) ServiceOption {
	return func(s *Service) {
		s.metrics = m
	}
}

// NewService creates a new billing Service.
func NewService(repo Repository, logger *slog.Logger, opts ...ServiceOption) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		repo:      repo,
		logger:    logger,
		userLocks: make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AvailableCredits returns the user's current balance: the sum of every
// ledger delta ever appended for the user. The ledger is a per-user audit
// log, so recomputing the sum on each call is acceptable.
func (s *Service) AvailableCredits(ctx context.Context, userID string) (int64, error) {
	return s.repo.SumDeltas(ctx, userID)
}

// Credit appends +amount tagged as a credit grant.
func (s *Service) Credit(ctx context.Context, userID string, amount int64, reason ChangeReason, foreignID, descriptor string) (int64, error) {
	return s.append(ctx, userID, amount, ChangeCredit, reason, foreignID, descriptor)
}

// Reserve appends -amount tagged as a reservation. It does not check
// sufficiency; use ReserveIfAvailable when the caller has not already
// serialized against concurrent reservations for the same user.
func (s *Service) Reserve(ctx context.Context, userID string, amount int64, reason ChangeReason, foreignID string) (int64, error) {
	return s.append(ctx, userID, -amount, ChangeReserve, reason, foreignID, "")
}

// ReserveIfAvailable reserves amount credits only if the user's balance
// covers it. The sum, check and append run under a per-user lock so two
// concurrent reservations for the same user cannot both pass the check.
// Returns ErrInsufficientCredits when the balance does not cover amount.
func (s *Service) ReserveIfAvailable(ctx context.Context, userID string, amount int64, reason ChangeReason, foreignID string) (int64, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	available, err := s.repo.SumDeltas(ctx, userID)
	if err != nil {
		return 0, err
	}
	if amount > available {
		return 0, ErrInsufficientCredits
	}

	return s.append(ctx, userID, -amount, ChangeReserve, reason, foreignID, "")
}

// Release appends +amount, returning a prior reservation to the balance.
func (s *Service) Release(ctx context.Context, userID string, amount int64, reason ChangeReason, foreignID string) (int64, error) {
	return s.append(ctx, userID, amount, ChangeRelease, reason, foreignID, "")
}

// Debit appends -amount tagged as the actual charge. The debit is
// independent of any reservation bookkeeping; callers are expected to have
// released the matching reservation first.
func (s *Service) Debit(ctx context.Context, userID string, amount int64, reason ChangeReason, foreignID, descriptor string) (int64, error) {
	return s.append(ctx, userID, -amount, ChangeDebit, reason, foreignID, descriptor)
}

// append creates one immutable ledger entry. Persistence failures propagate
// unwrapped; there is no rollback if a multi-step billing sequence fails
// partway.
func (s *Service) append(ctx context.Context, userID string, delta int64, changeType ChangeType, reason ChangeReason, foreignID, descriptor string) (int64, error) {
	entry := &Entry{
		DateCreated:  time.Now().UTC(),
		UserID:       userID,
		ChangeType:   changeType,
		ChangeReason: reason,
		Delta:        delta,
		ForeignID:    foreignID,
		Descriptor:   descriptor,
	}

	id, err := s.repo.Append(ctx, entry)
	if err != nil {
		s.logger.Error("failed to append ledger entry",
			slog.String("user_id", userID),
			slog.String("change_type", string(changeType)),
			slog.Int64("delta", delta),
			slog.String("error", err.Error()),
		)
		return 0, err
	}

	if s.metrics != nil {
		s.metrics.LedgerEntries.WithLabelValues(string(changeType)).Inc()
	}

	s.logger.Info("ledger entry appended",
		slog.Int64("entry_id", id),
		slog.String("user_id", userID),
		slog.String("change_type", string(changeType)),
		slog.String("change_reason", string(reason)),
		slog.Int64("delta", delta),
		slog.String("foreign_id", foreignID),
	)

	return id, nil
}

// userLock returns the mutex serializing reservations for a user.
func (s *Service) userLock(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.userLocks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.userLocks[userID] = lock
	}
	return lock
}

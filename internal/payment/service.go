package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/retakehq/retake/internal/billing"
)

// Service records provider deposits and credits the ledger for them.
type Service struct {
	payments Repository
	billing  *billing.Service
	logger   *slog.Logger
}

// NewService creates a new payment Service.
func NewService(payments Repository, billingSvc *billing.Service, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		payments: payments,
		billing:  billingSvc,
		logger:   logger,
	}
}

// RecordDeposit records a provider charge and credits the purchased amount
// to the user's balance. A charge already recorded under the same external
// ID is returned as-is without crediting again, so provider webhook
// redeliveries cannot double-credit.
func (s *Service) RecordDeposit(ctx context.Context, userID, externalID, currency string, amount, credits int64) (*Payment, error) {
	existing, err := s.payments.FindByExternalID(ctx, externalID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrPaymentNotFound) {
		return nil, fmt.Errorf("lookup payment: %w", err)
	}

	p := New(externalID, currency, amount)
	if err := s.payments.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("record payment: %w", err)
	}

	if _, err := s.billing.Credit(ctx, userID, credits, billing.ReasonDeposit, p.ID, externalID); err != nil {
		return nil, fmt.Errorf("credit deposit: %w", err)
	}

	s.logger.Info("deposit recorded",
		slog.String("payment_id", p.ID),
		slog.String("user_id", userID),
		slog.Int64("credits", credits),
	)

	return p, nil
}

// Package payment provides the deposit record linking a payment-provider
// charge to the credits it grants. The provider integration itself is
// stubbed; only the record and the ledger credit exist here.
package payment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Provider identifies the payment provider behind a deposit.
type Provider string

const (
	// ProviderStripe marks payments made through Stripe.
	ProviderStripe Provider = "stripe"
)

// ErrPaymentNotFound is returned when a payment cannot be found.
var ErrPaymentNotFound = errors.New("payment not found")

// Payment records one provider charge.
type Payment struct {
	// ID is the unique identifier for this payment.
	ID string
	// DateCreated is when the payment was recorded.
	DateCreated time.Time
	// Provider is the payment provider.
	Provider Provider
	// ExternalID is the provider's charge identifier; unique per payment.
	ExternalID string
	// Currency is the ISO currency code of the charge.
	Currency string
	// Amount is the charge amount in the currency's minor unit.
	Amount int64
}

// New creates a Payment record with a generated ID.
func New(externalID, currency string, amount int64) *Payment {
	return &Payment{
		ID:          uuid.NewString(),
		DateCreated: time.Now().UTC(),
		Provider:    ProviderStripe,
		ExternalID:  externalID,
		Currency:    currency,
		Amount:      amount,
	}
}

// Repository defines the interface for payment persistence.
type Repository interface {
	// Create persists a new payment.
	Create(ctx context.Context, payment *Payment) error

	// FindByExternalID retrieves a payment by the provider's charge ID.
	// Returns ErrPaymentNotFound if no such payment exists.
	FindByExternalID(ctx context.Context, externalID string) (*Payment, error)
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/retakehq/retake/internal/payment"
)

// Compile-time check that PaymentRepository implements payment.Repository.
var _ payment.Repository = (*PaymentRepository)(nil)

// PaymentRepository persists payments in the payments table.
type PaymentRepository struct {
	db *sql.DB
}

// NewPaymentRepository creates a Postgres-backed payment repository.
func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create persists a new payment.
func (r *PaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO payments (id, date_created, provider, external_id, currency, amount)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID,
		p.DateCreated,
		string(p.Provider),
		p.ExternalID,
		p.Currency,
		p.Amount,
	)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// FindByExternalID retrieves a payment by the provider's charge ID.
func (r *PaymentRepository) FindByExternalID(ctx context.Context, externalID string) (*payment.Payment, error) {
	p := &payment.Payment{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, date_created, provider, external_id, currency, amount
		FROM payments WHERE external_id = $1`,
		externalID,
	).Scan(&p.ID, &p.DateCreated, &p.Provider, &p.ExternalID, &p.Currency, &p.Amount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, payment.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("find payment: %w", err)
	}
	return p, nil
}

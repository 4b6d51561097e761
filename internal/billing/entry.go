// Package billing provides the prepaid credit ledger. Balances are kept as an
// append-only sequence of signed deltas per user; a user's available credits
// are the sum of all deltas ever appended for that user. Entries are never
// updated or deleted.
package billing

import (
	"time"
)

// ChangeType classifies the accounting effect of a ledger entry.
type ChangeType string

const (
	// ChangeCredit adds purchased or granted credits.
	ChangeCredit ChangeType = "credit"
	// ChangeReserve holds credits against an in-flight job.
	ChangeReserve ChangeType = "reserve"
	// ChangeRelease returns previously reserved credits.
	ChangeRelease ChangeType = "release"
	// ChangeDebit charges credits for completed work.
	ChangeDebit ChangeType = "debit"
)

// ChangeReason records the business event behind a ledger entry.
type ChangeReason string

const (
	// ReasonDeposit marks credits purchased through a payment provider.
	ReasonDeposit ChangeReason = "deposit"
	// ReasonVideoProcessingJob marks credits moved by a video processing job.
	ReasonVideoProcessingJob ChangeReason = "video_processing_job"
)

// Entry is a single immutable row in the credit ledger.
type Entry struct {
	// ID is assigned by the repository on append.
	ID int64
	// DateCreated is when the entry was appended.
	DateCreated time.Time
	// UserID identifies the account the delta applies to.
	UserID string
	// ChangeType is the accounting effect of this entry.
	ChangeType ChangeType
	// ChangeReason is the business event behind this entry.
	ChangeReason ChangeReason
	// Delta is the signed credit change in minutes.
	Delta int64
	// ForeignID links the entry to the job or payment that caused it.
	// Used for audit only, never for balance computation.
	ForeignID string
	// ExpiresAt optionally marks when granted credits lapse.
	ExpiresAt *time.Time
	// Descriptor is an optional human-readable reference.
	Descriptor string
}

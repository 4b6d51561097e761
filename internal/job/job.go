// Package job provides the record tracking one external compute-job
// invocation: its cost, settlement state and final result. It includes
// repository interfaces for persistence.
package job

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Type classifies the work a job performs.
type Type string

const (
	// TypeProcessVideo is frame/speech analysis of an uploaded video.
	TypeProcessVideo Type = "process_video"
)

// Provider identifies the external compute provider running the job.
type Provider string

const (
	// ProviderModal runs jobs on Modal via the Sage API.
	ProviderModal Provider = "modal"
)

// Settlement tracks how far billing has progressed for a job.
// It is the idempotency boundary for webhook-driven completion: the
// reserved credits are released exactly once, on the single transition
// from SettlementReserved to SettlementSettled.
type Settlement string

const (
	// SettlementPending means the job exists but no credits are held yet.
	SettlementPending Settlement = "pending"
	// SettlementReserved means credits are held against the job.
	SettlementReserved Settlement = "reserved"
	// SettlementSettled means the hold has been resolved (released, and
	// debited on success). Terminal.
	SettlementSettled Settlement = "settled"
)

// ErrInvalidTransition is returned when an invalid settlement transition is attempted.
var ErrInvalidTransition = errors.New("job: invalid settlement transition")

// validTransitions defines which settlement transitions are allowed.
var validTransitions = map[Settlement][]Settlement{
	SettlementPending:  {SettlementReserved},
	SettlementReserved: {SettlementSettled},
	SettlementSettled:  {},
}

// CanTransition reports whether a settlement transition is allowed.
func CanTransition(from, to Settlement) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// Job tracks one external compute-job invocation. Created at submission
// time with SettlementPending; mutated once to Completed upon webhook
// settlement and immutable thereafter.
type Job struct {
	// ID is the unique identifier for this job.
	ID string
	// DateCreated is when the job was submitted.
	DateCreated time.Time
	// Type is the kind of work the job performs.
	Type Type
	// ResourceID is the ID of the video the job operates on.
	ResourceID string
	// Provider is the external compute provider.
	Provider Provider
	// ExternalID is the remote job ID; the join key for inbound webhooks.
	ExternalID string
	// Cost is the credit charge in minutes, fixed at submission.
	Cost int64
	// Settlement is the billing progress for this job.
	Settlement Settlement
	// Completed is set once the webhook settlement has run.
	Completed bool
	// Successful records the remote outcome, valid once Completed.
	Successful bool
	// Result holds the raw remote result payload, if any.
	Result json.RawMessage
}

// New creates a Job for a video with a generated ID, pending settlement
// and the given remote ID and cost.
func New(resourceID, externalID string, cost int64) *Job {
	return &Job{
		ID:          uuid.NewString(),
		DateCreated: time.Now().UTC(),
		Type:        TypeProcessVideo,
		ResourceID:  resourceID,
		Provider:    ProviderModal,
		ExternalID:  externalID,
		Cost:        cost,
		Settlement:  SettlementPending,
	}
}

// Clone creates a deep copy of the job for safe reads.
func (j *Job) Clone() *Job {
	c := *j
	if j.Result != nil {
		c.Result = make(json.RawMessage, len(j.Result))
		copy(c.Result, j.Result)
	}
	return &c
}

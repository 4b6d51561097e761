package job

import (
	"context"
	"errors"
)

// ErrJobNotFound is returned when a job cannot be found.
var ErrJobNotFound = errors.New("job not found")

// ErrSettlementConflict is returned by TransitionSettlement when the job is
// not in the expected source state. Callers treat it as "someone else
// already settled this job".
var ErrSettlementConflict = errors.New("job: settlement state conflict")

// Repository defines the interface for job persistence.
type Repository interface {
	// Create persists a new job.
	Create(ctx context.Context, job *Job) error

	// Update persists changes to an existing job.
	// Returns ErrJobNotFound if the job does not exist.
	Update(ctx context.Context, job *Job) error

	// FindByID retrieves a job by its unique identifier.
	// Returns ErrJobNotFound if the job does not exist.
	FindByID(ctx context.Context, id string) (*Job, error)

	// FindByExternalID retrieves a job by its remote job ID.
	// Returns ErrJobNotFound if the job does not exist.
	FindByExternalID(ctx context.Context, externalID string) (*Job, error)

	// TransitionSettlement atomically moves the job's settlement state
	// from one value to another. Returns ErrSettlementConflict if the job
	// is not currently in the from state, ErrJobNotFound if it does not
	// exist.
	TransitionSettlement(ctx context.Context, id string, from, to Settlement) error
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/retakehq/retake/internal/job"
)

// Compile-time check that JobRepository implements job.Repository.
var _ job.Repository = (*JobRepository)(nil)

// JobRepository persists jobs in the jobs table.
type JobRepository struct {
	db *sql.DB
}

// NewJobRepository creates a Postgres-backed job repository.
func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create persists a new job.
func (r *JobRepository) Create(ctx context.Context, j *job.Job) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO jobs (id, date_created, type, resource_id, provider, external_id, cost, settlement, completed, successful, result)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		j.ID,
		j.DateCreated,
		string(j.Type),
		j.ResourceID,
		string(j.Provider),
		j.ExternalID,
		j.Cost,
		string(j.Settlement),
		j.Completed,
		j.Successful,
		nullableJSON(j.Result),
	)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

// Update persists changes to an existing job.
func (r *JobRepository) Update(ctx context.Context, j *job.Job) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE jobs
		SET settlement = $2, completed = $3, successful = $4, result = $5
		WHERE id = $1`,
		j.ID,
		string(j.Settlement),
		j.Completed,
		j.Successful,
		nullableJSON(j.Result),
	)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	return requireRow(res, job.ErrJobNotFound)
}

// FindByID retrieves a job by its unique identifier.
func (r *JobRepository) FindByID(ctx context.Context, id string) (*job.Job, error) {
	return r.findOne(ctx, `WHERE id = $1`, id)
}

// FindByExternalID retrieves a job by its remote job ID.
func (r *JobRepository) FindByExternalID(ctx context.Context, externalID string) (*job.Job, error) {
	return r.findOne(ctx, `WHERE external_id = $1`, externalID)
}

// TransitionSettlement atomically moves the job's settlement state using a
// conditional update; zero rows affected means another writer got there
// first.
func (r *JobRepository) TransitionSettlement(ctx context.Context, id string, from, to job.Settlement) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE jobs SET settlement = $3 WHERE id = $1 AND settlement = $2`,
		id,
		string(from),
		string(to),
	)
	if err != nil {
		return fmt.Errorf("transition settlement: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("transition settlement: %w", err)
	}
	if n == 0 {
		// Distinguish a missing job from a state conflict.
		if _, err := r.FindByID(ctx, id); errors.Is(err, job.ErrJobNotFound) {
			return job.ErrJobNotFound
		}
		return job.ErrSettlementConflict
	}
	return nil
}

// findOne loads a single job matching the filter clause.
func (r *JobRepository) findOne(ctx context.Context, where string, arg any) (*job.Job, error) {
	j := &job.Job{}
	var result []byte
	err := r.db.QueryRowContext(ctx, `
		SELECT id, date_created, type, resource_id, provider, external_id, cost, settlement, completed, successful, result
		FROM jobs `+where,
		arg,
	).Scan(
		&j.ID,
		&j.DateCreated,
		&j.Type,
		&j.ResourceID,
		&j.Provider,
		&j.ExternalID,
		&j.Cost,
		&j.Settlement,
		&j.Completed,
		&j.Successful,
		&result,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, job.ErrJobNotFound
		}
		return nil, fmt.Errorf("find job: %w", err)
	}
	j.Result = result
	return j, nil
}

// nullableJSON maps an empty payload to SQL NULL.
func nullableJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}

// requireRow converts a zero-rows-affected result into notFound.
func requireRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

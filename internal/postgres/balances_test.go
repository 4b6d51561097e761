package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retakehq/retake/internal/billing"
)

func TestBalanceRepository_Append(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	entry := &billing.Entry{
		DateCreated:  time.Now().UTC(),
		UserID:       "user-1",
		ChangeType:   billing.ChangeReserve,
		ChangeReason: billing.ReasonVideoProcessingJob,
		Delta:        -8,
		ForeignID:    "job-1",
	}

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO balances`)).
		WithArgs(entry.DateCreated, "user-1", "reserve", "video_processing_job", int64(-8), "job-1", nil, "").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	repo := NewBalanceRepository(db)
	id, err := repo.Append(context.Background(), entry)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBalanceRepository_SumDeltas(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COALESCE(SUM(delta), 0) FROM balances WHERE user_id = $1`)).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(int64(52)))

	repo := NewBalanceRepository(db)
	sum, err := repo.SumDeltas(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(52), sum)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBalanceRepository_SumDeltas_EmptyLedger(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	// COALESCE yields zero for a user with no entries.
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COALESCE(SUM(delta), 0) FROM balances`)).
		WithArgs("user-2").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(int64(0)))

	repo := NewBalanceRepository(db)
	sum, err := repo.SumDeltas(context.Background(), "user-2")
	require.NoError(t, err)
	assert.Equal(t, int64(0), sum)
}

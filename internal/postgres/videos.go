package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/retakehq/retake/internal/video"
)

// Compile-time checks that the repositories implement their interfaces.
var (
	_ video.Repository     = (*VideoRepository)(nil)
	_ video.FileRepository = (*FileRepository)(nil)
)

// VideoRepository persists videos in the videos table.
type VideoRepository struct {
	db *sql.DB
}

// NewVideoRepository creates a Postgres-backed video repository.
func NewVideoRepository(db *sql.DB) *VideoRepository {
	return &VideoRepository{db: db}
}

// Create persists a new video.
func (r *VideoRepository) Create(ctx context.Context, v *video.Video) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO videos (id, date_created, user_id, title, status, file_id)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		v.ID,
		v.DateCreated,
		v.UserID,
		v.Title,
		string(v.Status),
		nullableString(v.FileID),
	)
	if err != nil {
		return fmt.Errorf("insert video: %w", err)
	}
	return nil
}

// Update persists changes to an existing video.
func (r *VideoRepository) Update(ctx context.Context, v *video.Video) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE videos SET title = $2, status = $3, file_id = $4 WHERE id = $1`,
		v.ID,
		v.Title,
		string(v.Status),
		nullableString(v.FileID),
	)
	if err != nil {
		return fmt.Errorf("update video: %w", err)
	}
	return requireRow(res, video.ErrVideoNotFound)
}

// FindByID retrieves a video by its unique identifier.
func (r *VideoRepository) FindByID(ctx context.Context, id string) (*video.Video, error) {
	v := &video.Video{}
	var fileID sql.NullString
	err := r.db.QueryRowContext(ctx, `
		SELECT id, date_created, user_id, title, status, file_id
		FROM videos WHERE id = $1`,
		id,
	).Scan(&v.ID, &v.DateCreated, &v.UserID, &v.Title, &v.Status, &fileID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, video.ErrVideoNotFound
		}
		return nil, fmt.Errorf("find video: %w", err)
	}
	v.FileID = fileID.String
	return v, nil
}

// FileRepository persists files in the files table.
type FileRepository struct {
	db *sql.DB
}

// NewFileRepository creates a Postgres-backed file repository.
func NewFileRepository(db *sql.DB) *FileRepository {
	return &FileRepository{db: db}
}

// Create persists a new file.
func (r *FileRepository) Create(ctx context.Context, f *video.File) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO files (id, date_created, provider, uri, byte_size)
		VALUES ($1, $2, $3, $4, $5)`,
		f.ID,
		f.DateCreated,
		string(f.Provider),
		f.URI,
		f.ByteSize,
	)
	if err != nil {
		return fmt.Errorf("insert file: %w", err)
	}
	return nil
}

// FindByID retrieves a file by its unique identifier.
func (r *FileRepository) FindByID(ctx context.Context, id string) (*video.File, error) {
	f := &video.File{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, date_created, provider, uri, byte_size
		FROM files WHERE id = $1`,
		id,
	).Scan(&f.ID, &f.DateCreated, &f.Provider, &f.URI, &f.ByteSize)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, video.ErrFileNotFound
		}
		return nil, fmt.Errorf("find file: %w", err)
	}
	return f, nil
}

// nullableString maps an empty string to SQL NULL.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

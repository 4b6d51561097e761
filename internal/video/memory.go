package video

import (
	"context"
	"sync"
)

// Compile-time checks that the memory repositories implement their interfaces.
var (
	_ Repository     = (*MemoryRepository)(nil)
	_ FileRepository = (*MemoryFileRepository)(nil)
)

// MemoryRepository is an in-memory implementation of Repository.
// Suitable for development and testing; swap for Postgres in production.
type MemoryRepository struct {
	mu     sync.RWMutex
	videos map[string]*Video
}

// NewMemoryRepository creates a new in-memory video repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		videos: make(map[string]*Video),
	}
}

// Create persists a new video.
func (r *MemoryRepository) Create(_ context.Context, video *Video) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.videos[video.ID] = video.Clone()
	return nil
}

// Update persists changes to an existing video.
func (r *MemoryRepository) Update(_ context.Context, video *Video) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.videos[video.ID]; !ok {
		return ErrVideoNotFound
	}
	r.videos[video.ID] = video.Clone()
	return nil
}

// FindByID retrieves a video by its ID.
// Returns a clone to prevent external mutations.
func (r *MemoryRepository) FindByID(_ context.Context, id string) (*Video, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	video, ok := r.videos[id]
	if !ok {
		return nil, ErrVideoNotFound
	}
	return video.Clone(), nil
}

// MemoryFileRepository is an in-memory implementation of FileRepository.
type MemoryFileRepository struct {
	mu    sync.RWMutex
	files map[string]*File
}

// NewMemoryFileRepository creates a new in-memory file repository.
func NewMemoryFileRepository() *MemoryFileRepository {
	return &MemoryFileRepository{
		files: make(map[string]*File),
	}
}

// Create persists a new file.
func (r *MemoryFileRepository) Create(_ context.Context, file *File) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f := *file
	r.files[file.ID] = &f
	return nil
}

// FindByID retrieves a file by its ID.
func (r *MemoryFileRepository) FindByID(_ context.Context, id string) (*File, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	file, ok := r.files[id]
	if !ok {
		return nil, ErrFileNotFound
	}
	f := *file
	return &f, nil
}

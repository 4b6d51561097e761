// Package video provides the Video aggregate and the orchestration service
// covering upload, remote processing submission, credit reservation and
// webhook-driven settlement.
package video

import (
	"time"

	"github.com/google/uuid"
)

// Status represents the current state of a Video.
type Status string

const (
	// StatusCreated indicates the video row exists but no upload has been processed.
	StatusCreated Status = "created"
	// StatusProcessing indicates a processing submission is in flight.
	StatusProcessing Status = "processing"
	// StatusStopped indicates processing was halted by the user.
	// Present in the model; nothing in the processing core assigns it yet.
	StatusStopped Status = "stopped"
	// StatusTerminated indicates processing failed. Terminal.
	StatusTerminated Status = "terminated"
	// StatusDone indicates processing finished successfully. Terminal.
	StatusDone Status = "done"
)

// validTransitions defines which status transitions are allowed.
// Processing allows a self-transition so a failed submission can be
// re-triggered by calling process again.
var validTransitions = map[Status][]Status{
	StatusCreated:    {StatusProcessing},
	StatusProcessing: {StatusProcessing, StatusStopped, StatusTerminated, StatusDone},
	StatusStopped:    {},
	StatusTerminated: {},
	StatusDone:       {},
}

// CanTransition reports whether a status transition is allowed.
func CanTransition(from, to Status) bool {
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

// Video is a user-owned uploaded video. Mutated only by the Service.
type Video struct {
	// ID is the unique identifier for this video.
	ID string
	// DateCreated is when the video row was created.
	DateCreated time.Time
	// UserID identifies the owner.
	UserID string
	// Title is the user-supplied display title.
	Title string
	// Status is the current processing state.
	Status Status
	// FileID references the uploaded source file, once assigned.
	FileID string
}

// New creates a Video for a user with a generated ID in created state.
func New(userID, title string) *Video {
	return &Video{
		ID:          uuid.NewString(),
		DateCreated: time.Now().UTC(),
		UserID:      userID,
		Title:       title,
		Status:      StatusCreated,
	}
}

// Clone creates a copy of the video for safe reads.
func (v *Video) Clone() *Video {
	c := *v
	return &c
}

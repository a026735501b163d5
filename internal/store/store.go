// Package store persists submissions in SQLite and carries the status
// transitions the moderation and publishing flows rely on.
package store

import (
	"context"
	"errors"
	"time"

	"vestnik/internal/submission"
)

var (
	// ErrNotFound means the submission id does not exist.
	ErrNotFound = errors.New("store: submission not found")
	// ErrDecided means a status transition was attempted on a
	// submission that already left the pending state.
	ErrDecided = errors.New("store: submission already decided")
	// ErrAlreadyPublished means the publish compare-and-set found the
	// submission gone from the approved+unpublished state.
	ErrAlreadyPublished = errors.New("store: submission already published")
	// ErrTextTooLong guards the hard storage ceiling.
	ErrTextTooLong = errors.New("store: text exceeds storage limit")
)

type Config struct {
	Path        string
	BusyTimeout time.Duration
}

// Store is the persistence API for submissions.
type Store interface {
	// Insert persists a new pending submission and returns its id.
	Insert(ctx context.Context, s *submission.Submission) (int64, error)

	GetByID(ctx context.Context, id int64) (*submission.Submission, error)

	// ListApprovedUnpublished returns approved submissions that have
	// not been published yet, oldest first.
	ListApprovedUnpublished(ctx context.Context) ([]*submission.Submission, error)

	// UpdateStatus moves a pending submission to approved or rejected.
	// Returns ErrDecided when the submission is not pending anymore.
	UpdateStatus(ctx context.Context, id int64, to submission.Status) error

	// MarkPublished atomically flips approved -> published, recording
	// the publication time. Returns ErrAlreadyPublished when the row is
	// no longer in the approved+unpublished state.
	MarkPublished(ctx context.Context, id int64, at time.Time) error

	Close() error
}

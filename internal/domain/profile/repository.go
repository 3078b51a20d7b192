package profile

import (
	"context"
	"errors"
	"time"
)

var ErrSnapshotNotFound = errors.New("snapshot not found")

// Snapshot is a published, read-only copy of a profile.
type Snapshot struct {
	ShareID     string    `json:"share_id"`
	Profile     Profile   `json:"profile"`
	CompletedAt time.Time `json:"completed_at"`
}

// SessionRepository stores in-progress wizard sessions.
type SessionRepository interface {
	Load(ctx context.Context, sessionID string) (*Profile, error)
	Save(ctx context.Context, sessionID string, p *Profile) error
	Delete(ctx context.Context, sessionID string) error
}

// SnapshotRepository stores published snapshots keyed by share ID.
type SnapshotRepository interface {
	Upsert(ctx context.Context, s *Snapshot) error
	FindByShareID(ctx context.Context, shareID string) (*Snapshot, error)
}

// LocalStore is the fallback snapshot store. A snapshot saved with pending
// set still has to reach the remote store; ListPending returns those IDs.
type LocalStore interface {
	Save(ctx context.Context, s *Snapshot, pending bool) error
	FindByShareID(ctx context.Context, shareID string) (*Snapshot, error)
	MarkSynced(ctx context.Context, shareID string) error
	ListPending(ctx context.Context, limit int) ([]string, error)
}

package service

import (
	"context"
	"time"
)

const (
	ProfileEventPublished   = "profile.published"
	ProfileEventSyncPending = "snapshot.sync_pending"
)

type ProfileEvent struct {
	EventType  string    `json:"event_type"`
	ShareID    string    `json:"share_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

type EventPublisher interface {
	PublishProfileEvent(ctx context.Context, e ProfileEvent) error
}

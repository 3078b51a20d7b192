package share

import (
	"context"
	"errors"
	"time"

	"github.com/khoahotran/skillpath/internal/application/service"
	"github.com/khoahotran/skillpath/internal/config"
	"github.com/khoahotran/skillpath/internal/domain/profile"
	"github.com/khoahotran/skillpath/pkg/apperror"
	"github.com/khoahotran/skillpath/pkg/breaker"
	"github.com/khoahotran/skillpath/pkg/idgen"
	"github.com/khoahotran/skillpath/pkg/logger"
	"github.com/khoahotran/skillpath/pkg/metrics"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// Gateway writes published snapshots to the remote store and falls back to
// the local store when the remote one is missing or failing.
type Gateway struct {
	remote profile.SnapshotRepository
	local  profile.LocalStore
	events service.EventPublisher
	cb     *gobreaker.CircuitBreaker[*profile.Snapshot]
	logger logger.Logger
	now    func() time.Time
}

// NewGateway accepts a nil remote (local-only mode) and a nil events
// publisher.
func NewGateway(
	remote profile.SnapshotRepository,
	local profile.LocalStore,
	events service.EventPublisher,
	cfg config.Config,
	log logger.Logger,
) *Gateway {
	return &Gateway{
		remote: remote,
		local:  local,
		events: events,
		cb: breaker.New[*profile.Snapshot]("snapshot-remote", cfg, log,
			breaker.WithSuccess(func(err error) bool {
				return err == nil || errors.Is(err, profile.ErrSnapshotNotFound)
			}),
		),
		logger: log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

type PublishInput struct {
	Profile profile.Profile
}

type PublishOutput struct {
	ShareID     string
	CompletedAt time.Time
	Local       bool
}

// Publish reuses the profile's share ID when it has one.
func (g *Gateway) Publish(ctx context.Context, input PublishInput) (*PublishOutput, error) {
	p := input.Profile
	if p.ShareID == "" {
		p.ShareID = idgen.New()
	}
	completed := g.now()
	p.CompletedAt = &completed
	p.AssessmentDraft = nil

	snap := &profile.Snapshot{ShareID: p.ShareID, Profile: p, CompletedAt: completed}
	log := g.logger.With(zap.String("share_id", snap.ShareID))

	if g.remote != nil {
		_, err := g.cb.Execute(func() (*profile.Snapshot, error) {
			return nil, g.remote.Upsert(ctx, snap)
		})
		metrics.ObserveCall("snapshot_remote", err)
		if err == nil {
			// An older pending copy must not be replayed over this one.
			if err := g.local.Save(ctx, snap, false); err != nil {
				log.Warn("Failed to refresh local snapshot copy", zap.Error(err))
			}
			g.emit(ctx, service.ProfileEventPublished, snap.ShareID)
			log.Info("Snapshot published")
			return &PublishOutput{ShareID: snap.ShareID, CompletedAt: completed}, nil
		}
		metrics.Fallback(metrics.ComponentSnapshot)
		log.Warn("Remote snapshot store failed, saving locally", zap.Error(err))
	}

	pending := g.remote != nil
	if err := g.local.Save(ctx, snap, pending); err != nil {
		return nil, apperror.NewInternal("failed to save snapshot", err)
	}
	if pending {
		g.emit(ctx, service.ProfileEventSyncPending, snap.ShareID)
	}
	log.Info("Snapshot saved locally", zap.Bool("sync_pending", pending))
	return &PublishOutput{ShareID: snap.ShareID, CompletedAt: completed, Local: true}, nil
}

// Fetch reads remote first, then local. Demo IDs never touch a store.
func (g *Gateway) Fetch(ctx context.Context, shareID string) (*profile.Snapshot, error) {
	if profile.IsDemoShareID(shareID) {
		return profile.DemoSnapshot(shareID), nil
	}

	if g.remote != nil {
		snap, err := g.cb.Execute(func() (*profile.Snapshot, error) {
			return g.remote.FindByShareID(ctx, shareID)
		})
		switch {
		case err == nil:
			return snap, nil
		case !errors.Is(err, profile.ErrSnapshotNotFound):
			metrics.ObserveCall("snapshot_remote", err)
			g.logger.Warn("Remote snapshot lookup failed, trying local store",
				zap.String("share_id", shareID), zap.Error(err))
		}
	}

	snap, err := g.local.FindByShareID(ctx, shareID)
	if errors.Is(err, profile.ErrSnapshotNotFound) {
		return nil, apperror.NewNotFound("profile", shareID)
	}
	if err != nil {
		return nil, apperror.NewInternal("failed to read snapshot", err)
	}
	return snap, nil
}

func (g *Gateway) emit(ctx context.Context, eventType, shareID string) {
	if g.events == nil {
		return
	}
	e := service.ProfileEvent{EventType: eventType, ShareID: shareID, OccurredAt: g.now()}
	if err := g.events.PublishProfileEvent(ctx, e); err != nil {
		g.logger.Error("Failed to publish profile event", err,
			zap.String("event_type", eventType), zap.String("share_id", shareID))
	}
}

package share

import (
	"context"
	"errors"

	"github.com/khoahotran/skillpath/internal/domain/profile"
	"github.com/khoahotran/skillpath/pkg/logger"
	"go.uber.org/zap"
)

// SyncSnapshotsUseCase copies locally saved snapshots to the remote store.
type SyncSnapshotsUseCase struct {
	remote profile.SnapshotRepository
	local  profile.LocalStore
	logger logger.Logger
}

func NewSyncSnapshotsUseCase(remote profile.SnapshotRepository, local profile.LocalStore, log logger.Logger) *SyncSnapshotsUseCase {
	return &SyncSnapshotsUseCase{remote: remote, local: local, logger: log}
}

type SyncSnapshotInput struct {
	ShareID string
}

func (uc *SyncSnapshotsUseCase) Execute(ctx context.Context, input SyncSnapshotInput) error {
	snap, err := uc.local.FindByShareID(ctx, input.ShareID)
	if errors.Is(err, profile.ErrSnapshotNotFound) {
		uc.logger.Warn("Pending snapshot missing from local store", zap.String("share_id", input.ShareID))
		return nil
	}
	if err != nil {
		return err
	}

	current, err := uc.remote.FindByShareID(ctx, input.ShareID)
	switch {
	case err == nil && current.CompletedAt.After(snap.CompletedAt):
		uc.logger.Info("Remote snapshot is newer, dropping pending copy", zap.String("share_id", input.ShareID))
		return uc.local.MarkSynced(ctx, input.ShareID)
	case err != nil && !errors.Is(err, profile.ErrSnapshotNotFound):
		return err
	}

	if err := uc.remote.Upsert(ctx, snap); err != nil {
		return err
	}
	if err := uc.local.MarkSynced(ctx, input.ShareID); err != nil {
		return err
	}
	uc.logger.Info("Snapshot synced to remote store", zap.String("share_id", input.ShareID))
	return nil
}

// SyncPending sweeps up to limit pending snapshots and returns how many
// reached the remote store. It stops at the first remote failure.
func (uc *SyncSnapshotsUseCase) SyncPending(ctx context.Context, limit int) (int, error) {
	ids, err := uc.local.ListPending(ctx, limit)
	if err != nil {
		return 0, err
	}
	synced := 0
	for _, id := range ids {
		if err := uc.Execute(ctx, SyncSnapshotInput{ShareID: id}); err != nil {
			return synced, err
		}
		synced++
	}
	return synced, nil
}

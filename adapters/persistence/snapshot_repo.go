package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khoahotran/skillpath/internal/domain/profile"
)

type postgresSnapshotRepo struct {
	db *pgxpool.Pool
}

func NewPostgresSnapshotRepo(db *pgxpool.Pool) profile.SnapshotRepository {
	return &postgresSnapshotRepo{db: db}
}

var psqlSnapshot = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func (r *postgresSnapshotRepo) Upsert(ctx context.Context, s *profile.Snapshot) error {
	profileBytes, err := json.Marshal(s.Profile)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot profile: %w", err)
	}

	query, args, err := psqlSnapshot.Insert("profile_snapshots").
		Columns("share_id", "profile", "completed_at").
		Values(s.ShareID, profileBytes, s.CompletedAt).
		Suffix(`ON CONFLICT (share_id) DO UPDATE SET
			profile = EXCLUDED.profile,
			completed_at = EXCLUDED.completed_at,
			updated_at = NOW()`).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build snapshot upsert: %w", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to upsert snapshot: %w", err)
	}
	return nil
}

func (r *postgresSnapshotRepo) FindByShareID(ctx context.Context, shareID string) (*profile.Snapshot, error) {
	query, args, err := psqlSnapshot.Select("share_id", "profile", "completed_at").
		From("profile_snapshots").
		Where(sq.Eq{"share_id": shareID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build snapshot query: %w", err)
	}

	s := &profile.Snapshot{}
	var profileBytes []byte
	err = r.db.QueryRow(ctx, query, args...).Scan(&s.ShareID, &profileBytes, &s.CompletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, profile.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
	}
	if err := json.Unmarshal(profileBytes, &s.Profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot profile: %w", err)
	}
	s.CompletedAt = s.CompletedAt.UTC()
	return s, nil
}

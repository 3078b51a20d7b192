package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"github.com/khoahotran/skillpath/internal/domain/profile"
)

// LocalKeyPrefix scopes snapshot keys in the local store.
const LocalKeyPrefix = "skillpath_profile_"

func LocalKey(shareID string) string {
	return LocalKeyPrefix + shareID
}

const localSchema = `CREATE TABLE IF NOT EXISTS local_snapshots (
	key          TEXT PRIMARY KEY,
	share_id     TEXT NOT NULL,
	value        TEXT NOT NULL,
	pending      INTEGER NOT NULL DEFAULT 0,
	updated_at   DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_local_snapshots_pending ON local_snapshots (pending, updated_at);`

// SQLiteLocalStore keeps snapshots in a local SQLite file under LocalKey.
type SQLiteLocalStore struct {
	db  *sql.DB
	now func() time.Time
}

var sqliteLocal = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// OpenLocalStore opens (or creates) the SQLite file in dataDir. Pass
// ":memory:" for a throwaway store.
func OpenLocalStore(dataDir string) (*SQLiteLocalStore, error) {
	dsn := ":memory:"
	if dataDir != ":memory:" {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "skillpath.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening local store: %w", err)
	}
	// A single connection keeps :memory: databases shared and avoids lock errors.
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{"PRAGMA busy_timeout = 5000", "PRAGMA journal_mode=WAL", localSchema} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("preparing local store: %w", err)
		}
	}
	return &SQLiteLocalStore{db: db, now: func() time.Time { return time.Now().UTC() }}, nil
}

func (s *SQLiteLocalStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteLocalStore) Save(ctx context.Context, snap *profile.Snapshot, pending bool) error {
	value, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	query, args, err := sqliteLocal.Insert("local_snapshots").
		Columns("key", "share_id", "value", "pending", "updated_at").
		Values(LocalKey(snap.ShareID), snap.ShareID, string(value), pending, s.now()).
		Suffix(`ON CONFLICT (key) DO UPDATE SET
			value = excluded.value,
			pending = excluded.pending,
			updated_at = excluded.updated_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build local upsert: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to save local snapshot: %w", err)
	}
	return nil
}

func (s *SQLiteLocalStore) FindByShareID(ctx context.Context, shareID string) (*profile.Snapshot, error) {
	query, args, err := sqliteLocal.Select("value").
		From("local_snapshots").
		Where(sq.Eq{"key": LocalKey(shareID)}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build local query: %w", err)
	}

	var value string
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, profile.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to read local snapshot: %w", err)
	}

	snap := &profile.Snapshot{}
	if err := json.Unmarshal([]byte(value), snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal local snapshot: %w", err)
	}
	return snap, nil
}

func (s *SQLiteLocalStore) MarkSynced(ctx context.Context, shareID string) error {
	query, args, err := sqliteLocal.Update("local_snapshots").
		Set("pending", false).
		Where(sq.Eq{"key": LocalKey(shareID)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build local update: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to mark snapshot synced: %w", err)
	}
	return nil
}

func (s *SQLiteLocalStore) ListPending(ctx context.Context, limit int) ([]string, error) {
	builder := sqliteLocal.Select("share_id").
		From("local_snapshots").
		Where(sq.Eq{"pending": true}).
		OrderBy("updated_at ASC")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build pending query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending snapshots: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan pending row: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

package persistence

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/khoahotran/skillpath/internal/domain/profile"
	"github.com/khoahotran/skillpath/pkg/logger"
)

type SnapshotRepoIntegrationTestSuite struct {
	suite.Suite
	dbPool      *pgxpool.Pool
	pgContainer *postgres.PostgresContainer
	repo        profile.SnapshotRepository
}

func (s *SnapshotRepoIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(1*time.Minute),
		),
	)
	if err != nil {
		s.T().Fatalf("Failed to start postgres container: %s", err)
	}
	s.pgContainer = pgContainer

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		s.T().Fatalf("Failed to get connection string: %s", err)
	}

	if err := RunMigrations("file://../../migrations", dsn, logger.NewNop()); err != nil {
		s.T().Fatalf("Failed to run migrations: %s", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		s.T().Fatalf("Failed to create pgxpool: %s", err)
	}
	s.dbPool = pool
	s.repo = NewPostgresSnapshotRepo(pool)
}

func (s *SnapshotRepoIntegrationTestSuite) TearDownSuite() {
	if s.dbPool != nil {
		s.dbPool.Close()
	}
	if s.pgContainer != nil {
		if err := s.pgContainer.Terminate(context.Background()); err != nil {
			s.T().Fatalf("Failed to terminate postgres container: %s", err)
		}
	}
}

func TestSnapshotRepoIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode.")
	}
	suite.Run(t, new(SnapshotRepoIntegrationTestSuite))
}

func (s *SnapshotRepoIntegrationTestSuite) Test_Upsert_And_Find() {
	ctx := context.Background()

	snap := snapshot("pg-share-1", "Aisha")
	snap.Profile.Extra = map[string]json.RawMessage{"favorite_color": json.RawMessage(`"blue"`)}
	s.Require().NoError(s.repo.Upsert(ctx, snap))

	got, err := s.repo.FindByShareID(ctx, "pg-share-1")
	s.Require().NoError(err)
	s.Equal("Aisha", got.Profile.FullName)
	s.True(got.CompletedAt.Equal(snap.CompletedAt))
	s.JSONEq(`"blue"`, string(got.Profile.Extra["favorite_color"]))

	snap.Profile.FullName = "Aisha R."
	s.Require().NoError(s.repo.Upsert(ctx, snap))
	got, err = s.repo.FindByShareID(ctx, "pg-share-1")
	s.Require().NoError(err)
	s.Equal("Aisha R.", got.Profile.FullName)
}

func (s *SnapshotRepoIntegrationTestSuite) Test_Find_NotFound() {
	_, err := s.repo.FindByShareID(context.Background(), "does-not-exist")
	s.ErrorIs(err, profile.ErrSnapshotNotFound)
}

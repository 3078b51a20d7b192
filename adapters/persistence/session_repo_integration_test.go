package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/khoahotran/skillpath/internal/domain/profile"
)

type RedisSessionRepoIntegrationTestSuite struct {
	suite.Suite
	container *tcredis.RedisContainer
	rdb       *redis.Client
	repo      profile.SessionRepository
}

func (s *RedisSessionRepoIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		s.T().Fatalf("Failed to start redis container: %s", err)
	}
	s.container = container

	uri, err := container.ConnectionString(ctx)
	if err != nil {
		s.T().Fatalf("Failed to get connection string: %s", err)
	}
	opts, err := redis.ParseURL(uri)
	if err != nil {
		s.T().Fatalf("Failed to parse redis url: %s", err)
	}
	s.rdb = redis.NewClient(opts)
	s.repo = NewRedisSessionRepo(s.rdb, time.Minute)
}

func (s *RedisSessionRepoIntegrationTestSuite) TearDownSuite() {
	if s.rdb != nil {
		s.rdb.Close()
	}
	if s.container != nil {
		if err := s.container.Terminate(context.Background()); err != nil {
			s.T().Fatalf("Failed to terminate redis container: %s", err)
		}
	}
}

func TestRedisSessionRepoIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode.")
	}
	suite.Run(t, new(RedisSessionRepoIntegrationTestSuite))
}

func (s *RedisSessionRepoIntegrationTestSuite) Test_Save_Load_Delete() {
	ctx := context.Background()

	p := profile.Defaults()
	p.JobTitle = "Data Analyst"
	p.CurrentStep = profile.StepSalary
	s.Require().NoError(s.repo.Save(ctx, "sess-1", &p))

	ttl, err := s.rdb.TTL(ctx, "skillpath:session:sess-1").Result()
	s.Require().NoError(err)
	s.Greater(ttl, time.Duration(0))

	got, err := s.repo.Load(ctx, "sess-1")
	s.Require().NoError(err)
	s.Equal("Data Analyst", got.JobTitle)
	s.Equal(profile.StepSalary, got.CurrentStep)

	s.Require().NoError(s.repo.Delete(ctx, "sess-1"))
	_, err = s.repo.Load(ctx, "sess-1")
	s.ErrorIs(err, profile.ErrSessionNotFound)
}

package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/khoahotran/skillpath/adapters/event"
	httpAdapter "github.com/khoahotran/skillpath/adapters/http"
	"github.com/khoahotran/skillpath/adapters/llm"
	"github.com/khoahotran/skillpath/adapters/media_storage"
	"github.com/khoahotran/skillpath/adapters/persistence"
	analysisUC "github.com/khoahotran/skillpath/internal/application/usecase/analysis"
	assessmentUC "github.com/khoahotran/skillpath/internal/application/usecase/assessment"
	mediaUC "github.com/khoahotran/skillpath/internal/application/usecase/media"
	shareUC "github.com/khoahotran/skillpath/internal/application/usecase/share"
	wizardUC "github.com/khoahotran/skillpath/internal/application/usecase/wizard"
	"github.com/khoahotran/skillpath/internal/config"
	"github.com/khoahotran/skillpath/internal/domain/profile"
	"github.com/khoahotran/skillpath/pkg/auth"
	"github.com/khoahotran/skillpath/pkg/logger"
	"github.com/khoahotran/skillpath/pkg/tracing"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)
	defer appLogger.Sync()
	appLogger.Info("Starting SkillPath API Server...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(cfg, appLogger, "skillpath-api")
	if err != nil {
		appLogger.Fatal("Cannot initialize tracing", err)
	}
	defer shutdownTracing(context.Background())

	// Stores
	var remote profile.SnapshotRepository
	if cfg.RemoteStoreEnabled() {
		if err := persistence.RunMigrations(cfg.DB.Migrations, cfg.DB.DSN, appLogger); err != nil {
			appLogger.Fatal("Cannot migrate Postgres", err)
		}
		dbPool, err := persistence.NewPostgresPool(ctx, cfg, appLogger)
		if err != nil {
			appLogger.Fatal("Cannot connect Postgres", err)
		}
		defer dbPool.Close()
		remote = persistence.NewPostgresSnapshotRepo(dbPool)
	} else {
		appLogger.Info("DB_DSN not set, snapshots are stored locally only")
	}

	localStore, err := persistence.OpenLocalStore(cfg.Local.DataDir)
	if err != nil {
		appLogger.Fatal("Cannot open local store", err, zap.String("data_dir", cfg.Local.DataDir))
	}
	defer localStore.Close()

	var sessions profile.SessionRepository
	if cfg.Redis.Addr != "" {
		redisClient, err := persistence.NewRedisClient(ctx, cfg, appLogger)
		if err != nil {
			appLogger.Fatal("Cannot connect Redis", err)
		}
		defer redisClient.Close()
		sessions = persistence.NewRedisSessionRepo(redisClient, cfg.Redis.SessionTTL)
	} else {
		appLogger.Warn("REDIS_ADDR not set, sessions are kept in memory")
		sessions = persistence.NewMemorySessionRepo()
	}

	// Services
	events := event.NewEventPublisher(cfg, appLogger)
	if c, ok := events.(io.Closer); ok {
		defer c.Close()
	}

	llmService, err := llm.NewFromConfig(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Cannot initialize LLM provider", err)
	}

	uploader, err := media_storage.NewCloudinaryAdapter(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Cannot initialize uploader", err)
	}

	jwtSvc := auth.NewJWTService(cfg.Session.Secret, cfg.Session.TokenLifespan)

	// Use Cases
	questionsUseCase := assessmentUC.NewGenerateQuestionsUseCase(llmService, appLogger)
	analyzeUseCase := analysisUC.NewAnalyzeSkillsUseCase(llmService, appLogger)
	uploadUseCase := mediaUC.NewUploadDocumentsUseCase(uploader, appLogger)
	gateway := shareUC.NewGateway(remote, localStore, events, cfg, appLogger)
	controller := wizardUC.NewController(sessions, questionsUseCase, analyzeUseCase, gateway, uploadUseCase, appLogger)

	// HTTP
	var limiter *httpAdapter.LimiterManager
	if cfg.RateLimit.RequestsPerMinute > 0 {
		limiter = httpAdapter.NewLimiterManager(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst, appLogger)
		defer limiter.Close()
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := httpAdapter.NewRouter(httpAdapter.RouterDeps{
		Sessions:     httpAdapter.NewSessionHandler(controller, jwtSvc, cfg.App.PublicOrigin, appLogger),
		Shares:       httpAdapter.NewShareHandler(gateway),
		JWT:          jwtSvc,
		Limiter:      limiter,
		PublicOrigin: cfg.App.PublicOrigin,
		Logger:       appLogger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           otelhttp.NewHandler(router, "skillpath-api"),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.LLM.Timeout + 15*time.Second,
	}

	go func() {
		appLogger.Info("Server running", zap.String("port", cfg.App.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("Cannot run server", err)
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", err)
	}
}

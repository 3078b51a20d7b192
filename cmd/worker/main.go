package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/khoahotran/skillpath/adapters/event"
	"github.com/khoahotran/skillpath/adapters/persistence"
	"github.com/khoahotran/skillpath/internal/application/service"
	shareUC "github.com/khoahotran/skillpath/internal/application/usecase/share"
	"github.com/khoahotran/skillpath/internal/config"
	"github.com/khoahotran/skillpath/pkg/logger"
	"github.com/khoahotran/skillpath/pkg/tracing"
)

// The worker replays snapshots that were saved locally while the remote
// store was failing. It reacts to sync_pending events and also sweeps the
// local store on an interval, so it works without Kafka.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)
	defer appLogger.Sync()
	appLogger.Info("Starting SkillPath Worker...")

	if !cfg.RemoteStoreEnabled() {
		appLogger.Fatal("Worker needs DB_DSN: there is no remote store to sync to", nil)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(cfg, appLogger, "skillpath-worker")
	if err != nil {
		appLogger.Fatal("Cannot initialize tracing", err)
	}
	defer shutdownTracing(context.Background())

	dbPool, err := persistence.NewPostgresPool(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Cannot connect Postgres", err)
	}
	defer dbPool.Close()

	localStore, err := persistence.OpenLocalStore(cfg.Local.DataDir)
	if err != nil {
		appLogger.Fatal("Cannot open local store", err)
	}
	defer localStore.Close()

	syncUseCase := shareUC.NewSyncSnapshotsUseCase(persistence.NewPostgresSnapshotRepo(dbPool), localStore, appLogger)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		ticker := time.NewTicker(cfg.Worker.SyncInterval)
		defer ticker.Stop()
		for {
			n, err := syncUseCase.SyncPending(ctx, cfg.Worker.SyncBatch)
			if err != nil {
				appLogger.Error("Snapshot sweep stopped early", err, zap.Int("synced", n))
			} else if n > 0 {
				appLogger.Info("Snapshot sweep finished", zap.Int("synced", n))
			}
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
		}
	})

	if len(cfg.Kafka.Brokers) > 0 {
		consumer := event.NewConsumer(cfg, appLogger)
		defer consumer.Close()

		g.Go(func() error {
			return consumer.Run(ctx, func(ctx context.Context, e service.ProfileEvent) error {
				if e.EventType != service.ProfileEventSyncPending {
					return nil
				}
				return syncUseCase.Execute(ctx, shareUC.SyncSnapshotInput{ShareID: e.ShareID})
			})
		})
	} else {
		appLogger.Info("Kafka brokers not configured, relying on periodic sweep")
	}

	if err := g.Wait(); err != nil {
		appLogger.Error("Worker stopped with error", err)
	}
	appLogger.Info("Worker stopped")
}

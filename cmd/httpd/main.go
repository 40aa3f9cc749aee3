// The httpd command runs the category suggester service: HTTP API, startup
// synchronization and training, and the background change listener.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/suqly/category-suggester/internal/bootstrap"
	"github.com/suqly/category-suggester/internal/config"
	"github.com/suqly/category-suggester/internal/domain"
	"github.com/suqly/category-suggester/internal/logger"
	"github.com/suqly/category-suggester/internal/storage"
)

const startupTimeout = 2 * time.Minute

func main() {
	cfg, log, err := bootstrap.LoadConfig()
	if err != nil {
		os.Stderr.WriteString("startup failed: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("service failed", logger.Error(err))
	}
}

func run(cfg *config.Config, log logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := bootstrap.SetupDatabase(cfg, log)
	if err != nil {
		return err
	}
	defer db.DB.Close()

	startupCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	store, err := bootstrap.SetupStorage(startupCtx, cfg, log)
	if err != nil {
		return err
	}

	components := bootstrap.Build(cfg, db, store, log)

	seed(startupCtx, components, store, log)

	// Real-time updates run in the background; losing them degrades to the
	// last synced state rather than stopping the service.
	go func() {
		if err := components.Listener.Run(ctx); err != nil {
			log.Error("change listener stopped", logger.Error(err))
		}
	}()

	serverErr := make(chan error, 1)
	go func() { serverErr <- components.Server.Start() }()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Service.ShutdownTimeout)
	defer cancelShutdown()

	return components.Server.Shutdown(shutdownCtx)
}

// seed performs the startup full sync and initial model training. Neither is
// fatal: readiness is reported separately and an operator can retrigger both
// through the admin endpoints.
func seed(ctx context.Context, components *bootstrap.Components, store *storage.ElasticsearchStorage, log logger.Logger) {
	report, err := components.Syncer.FullSync(ctx)
	if err != nil {
		log.Warn("startup sync failed, serving existing documents", logger.Error(err))
	} else {
		log.Info("startup sync complete",
			logger.Int("synced", report.Synced),
			logger.Int("failed", report.Failed))
	}

	docs, err := store.GetLeafDocuments(ctx)
	if err != nil {
		log.Warn("fetching training documents failed, models not trained", logger.Error(err))
		return
	}

	for _, lang := range domain.Languages() {
		if err := components.Predictor.Train(docs, lang); err != nil {
			log.Warn("initial training failed",
				logger.String("language", string(lang)),
				logger.Error(err))
		}
	}
}

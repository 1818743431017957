// internal/app/app.go
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Corphon/NovelForge/internal/api"
	"github.com/Corphon/NovelForge/internal/config"
	"github.com/Corphon/NovelForge/internal/di"
	"github.com/Corphon/NovelForge/internal/services"
	"github.com/Corphon/NovelForge/internal/storage"
	"github.com/Corphon/NovelForge/internal/utils"
)

const shutdownTimeout = 30 * time.Second

// httpServer is the part of *http.Server the app drives.
type httpServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// App is the reference API server process.
type App struct {
	config    *config.Config
	container *di.Container
	logger    *utils.Logger
	router    http.Handler
	server    httpServer
	stopChan  chan os.Signal
}

// New creates an app over cfg. Services are registered into container by InitServices.
func New(cfg *config.Config, container *di.Container, logger *utils.Logger) *App {
	if container == nil {
		container = di.GetContainer()
	}
	if logger == nil {
		logger = utils.GetLogger()
	}
	return &App{
		config:    cfg,
		container: container,
		logger:    logger,
		stopChan:  make(chan os.Signal, 1),
	}
}

// Container returns the app's service container.
func (a *App) Container() *di.Container {
	return a.container
}

// InitServices creates and registers every service in dependency order, then
// builds the router.
func (a *App) InitServices() error {
	if err := a.config.EnsureDirs(); err != nil {
		return err
	}

	a.container.Register(di.Logger, a.logger)
	a.container.Register(di.Metrics, utils.GetMetricsCollector())

	fs, err := storage.NewFileStorage(a.config.DataDir, storage.Options{Logger: a.logger})
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	a.container.Register(di.Storage, fs)

	locks := services.NewLockManager()
	a.container.Register(di.Locks, locks)

	manuscript := services.NewManuscriptService(fs, locks, a.logger)
	a.container.Register(di.ManuscriptService, manuscript)
	a.container.Register(di.CharacterService, services.NewCharacterService(fs, locks, manuscript, a.logger))

	stats := services.NewStatsService(fs, services.StatsOptions{Logger: a.logger})
	manuscript.SetWordRecorder(stats)
	a.container.Register(di.StatsService, stats)

	router, err := api.SetupRouter(a.container, a.config)
	if err != nil {
		return fmt.Errorf("setup router: %w", err)
	}
	a.router = router

	a.logger.Info("services initialized", map[string]interface{}{
		"services": a.container.GetNames(),
		"data_dir": a.config.DataDir,
	})
	return nil
}

// Handler returns the HTTP handler built by InitServices.
func (a *App) Handler() http.Handler {
	return a.router
}

// Run serves until SIGINT/SIGTERM or a server failure, then shuts down gracefully.
func (a *App) Run() error {
	if a.server == nil {
		if a.router == nil {
			return errors.New("app: InitServices must run before Run")
		}
		a.server = &http.Server{
			Addr:              ":" + a.config.Port,
			Handler:           a.router,
			ReadHeaderTimeout: 10 * time.Second,
		}
	}

	signal.Notify(a.stopChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(a.stopChan)

	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("server listening", map[string]interface{}{"port": a.config.Port})
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			a.Cleanup()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-a.stopChan:
		a.logger.Info("shutting down", map[string]interface{}{"signal": sig.String()})
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := a.server.Shutdown(ctx)
	<-serveErr
	a.Cleanup()
	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	a.logger.Info("server stopped", nil)
	return nil
}

// Cleanup releases the background workers owned by registered services.
func (a *App) Cleanup() {
	if locks, ok := di.Lookup[*services.LockManager](a.container, di.Locks); ok {
		locks.Close()
	}
	if stats, ok := di.Lookup[*services.StatsService](a.container, di.StatsService); ok {
		if err := stats.Close(); err != nil {
			a.logger.Warn("stats flush failed", map[string]interface{}{"error": err})
		}
	}
	if fs, ok := di.Lookup[*storage.FileStorage](a.container, di.Storage); ok {
		if err := fs.Close(); err != nil {
			a.logger.Warn("storage close failed", map[string]interface{}{"error": err})
		}
	}
	_ = a.logger.Sync()
}

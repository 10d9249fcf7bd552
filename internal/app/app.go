package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/klokku/dailybudget/internal/config"
	"github.com/klokku/dailybudget/internal/database"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

const shutdownTimeout = 30 * time.Second

// Application wires configuration, database, router, and server lifecycle.
type Application struct {
	cfg       config.Application
	db        *pgxpool.Pool
	deps      *Dependencies
	router    *mux.Router
	srv       *http.Server
	scheduler *cron.Cron
}

// NewApplication constructs the full HTTP application, ready to Run().
func NewApplication(ctx context.Context, cfg config.Application) (*Application, error) {
	ConfigureLogging(cfg.Log)

	var db *pgxpool.Pool
	var scheduler *cron.Cron
	if cfg.History.Enabled {
		if err := database.Migrate(cfg.Database); err != nil {
			return nil, err
		}
		var err error
		db, err = database.Open(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
	} else {
		log.Info("Calculation history is disabled, keeping calculations in memory only")
	}

	deps := BuildDependencies(db, cfg)

	if cfg.History.Enabled {
		var err error
		scheduler, err = NewHistoryCleanup(cfg.History, deps.CalculationService)
		if err != nil {
			db.Close()
			return nil, err
		}
	}

	r := NewRouter(deps)

	srv := &http.Server{
		Handler:      r,
		Addr:         cfg.Listen,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Infof("Daily budget API available at %s (listening on %s)", cfg.Host, cfg.Listen)
	return &Application{cfg: cfg, db: db, deps: deps, router: r, srv: srv, scheduler: scheduler}, nil
}

// NewRouter builds the router with middleware and all routes registered.
func NewRouter(deps *Dependencies) *mux.Router {
	r := mux.NewRouter()
	SetupMiddleware(r)
	RegisterRoutes(r, deps)
	return r
}

// ConfigureLogging applies the configured log format. The level comes from LOG_LEVEL.
func ConfigureLogging(cfg config.Log) {
	if cfg.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

// Run starts the HTTP server and blocks until ctx is cancelled or the server fails.
func (a *Application) Run(ctx context.Context) error {
	if a.scheduler != nil {
		a.scheduler.Start()
	}
	defer a.close()

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting server on %s", a.srv.Addr)
		if err := a.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("Server exited")
	return nil
}

func (a *Application) close() {
	if a.scheduler != nil {
		<-a.scheduler.Stop().Done()
	}
	if a.db != nil {
		a.db.Close()
	}
}

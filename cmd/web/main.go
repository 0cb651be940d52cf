package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/mkallio/fitplan/internal/envstruct"
	"github.com/mkallio/fitplan/internal/errors"
	"github.com/mkallio/fitplan/internal/genai"
	"github.com/mkallio/fitplan/internal/history"
	"github.com/mkallio/fitplan/internal/logging"
	"github.com/mkallio/fitplan/internal/plan"
	"github.com/mkallio/fitplan/internal/sqlite"
)

type application struct {
	logger         *slog.Logger
	sessionManager *scs.SessionManager
	planEngine     *plan.Engine
	historyManager *history.Manager
	generator      genai.Generator
}

type config struct {
	// Addr is the address to listen on. It's possible to choose the address dynamically with localhost:0.
	Addr string `env:"FITPLAN_ADDR" envDefault:"localhost:8080"`
	// SqliteURL is the URL to the SQLite database. You can use ":memory:" for an ethereal in-memory database.
	SqliteURL string `env:"FITPLAN_SQLITE_URL" envDefault:"./fitplan.sqlite3"`
	// OpenAIAPIKey authenticates plan generation requests.
	OpenAIAPIKey string `env:"FITPLAN_OPENAI_API_KEY" envDefault:""`
	// SweepInterval controls how often finished plans are checked for archival.
	SweepInterval string `env:"FITPLAN_SWEEP_INTERVAL" envDefault:"1h"`
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var cfg config
	if err := envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}
	sweepInterval, err := time.ParseDuration(cfg.SweepInterval)
	if err != nil {
		return errors.Wrap(err, "parse sweep interval", slog.String("value", cfg.SweepInterval))
	}

	db, err := sqlite.NewDatabase(ctx, cfg.SqliteURL, logger)
	if err != nil {
		return errors.Wrap(err, "open db", slog.String("url", cfg.SqliteURL))
	}
	defer func() {
		if err = db.Close(); err != nil {
			logger.LogAttrs(ctx, slog.LevelError, "close db", errors.SlogError(err))
		}
	}()
	logger.LogAttrs(ctx, slog.LevelInfo, "connected to db")

	historyManager := history.NewManager(history.NewRepository(db, logger), logger)
	if err = historyManager.Load(ctx); err != nil {
		return errors.Wrap(err, "load history")
	}

	planEngine := plan.NewEngine(plan.NewRepository(db, logger), historyManager, logger)
	if err = planEngine.Load(ctx); err != nil && !errors.Is(err, plan.ErrCorruptData) {
		return errors.Wrap(err, "load plans")
	}
	if errors.Is(err, plan.ErrCorruptData) {
		logger.LogAttrs(ctx, slog.LevelWarn, "plan state was corrupt and has been reset")
	}

	app := application{
		logger:         logger,
		sessionManager: initializeSessionManager(db),
		planEngine:     planEngine,
		historyManager: historyManager,
		generator:      genai.NewOpenAIGenerator(cfg.OpenAIAPIKey, logger),
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return app.configureAndStartServer(groupCtx, cfg.Addr)
	})
	group.Go(func() error {
		app.sweepFinishedPlans(groupCtx, sweepInterval)
		return nil
	})
	if err = group.Wait(); err != nil {
		return errors.Wrap(err, "run application")
	}
	return nil
}

// sweepFinishedPlans periodically archives plans whose window has elapsed so
// that archival does not depend on the user opening the app.
func (app *application) sweepFinishedPlans(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		archived, err := app.planEngine.CheckForFinishedPlan(ctx)
		if err != nil {
			app.logger.LogAttrs(ctx, slog.LevelError, "finished plan sweep", errors.SlogError(err))
			continue
		}
		if archived {
			app.logger.LogAttrs(ctx, slog.LevelInfo, "sweep archived a finished plan")
		}
	}
}

func initializeSessionManager(dbs *sqlite.Database) *scs.SessionManager {
	sessionManager := scs.New()
	sessionManager.Store = sqlite3store.NewWithCleanupInterval(dbs.ReadWrite, 24*time.Hour) //nolint:mnd // day
	sessionManager.Lifetime = 12 * time.Hour                                               //nolint:mnd // half a day
	sessionManager.Cookie.Persist = true
	sessionManager.Cookie.Secure = true
	sessionManager.Cookie.HttpOnly = true
	sessionManager.Cookie.SameSite = http.SameSiteStrictMode
	return sessionManager
}

func main() {
	ctx := context.Background()
	_ = godotenv.Load()
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	logger := slog.New(loggerHandler)
	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure starting application", errors.SlogError(err))
		os.Exit(1)
	}
}

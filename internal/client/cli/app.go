// Package cli is the interactive terminal front end: a REPL over the sync
// stack with login, collection commands, a costing report and queue
// controls.
package cli

import (
	"bufio"
	"context"
	"database/sql"
	"log/slog"
	"os"

	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/client/api"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/client/app"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/client/changelog"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/client/config"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/client/conflict"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/client/realtime"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/client/repositories/queue"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/client/services"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/client/store"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/client/syncer"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/common"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/logging"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/retry"

	_ "modernc.org/sqlite"
)

// Mode is the client's connectivity state as shown in the prompt.
type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// App holds the wired client and the interactive session state.
type App struct {
	config      *config.Config
	client      api.Client
	db          *sql.DB
	store       *store.Store
	log         *changelog.Log
	syncer      *syncer.Syncer
	listener    *realtime.Listener
	authService services.AuthService
	migration   *services.MigrationService
	logger      logging.Logger

	session     *api.Session
	offlineUser string
	Mode        Mode
	reader      *bufio.Reader
}

// NewApp constructs the full client stack from configuration.
func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	db, err := app.InitDatabase(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	apiClient := api.NewHTTPClient(c.ServerURL)

	terminal := &terminalUI{}
	st := store.New(apiClient, retry.NewPolicy(), logger)
	log := changelog.New(queue.NewSQLiteRepository(db), terminal, logger)
	resolver := conflict.NewResolver(st, terminal, logger)
	sync := syncer.New(st, log, apiClient, resolver, terminal, terminal, terminal, logger)
	sync.SetProbeInterval(c.OnlineCheckInterval)
	listener := realtime.NewListener(apiClient, st, terminal, logger)

	a := &App{
		config:      c,
		client:      apiClient,
		db:          db,
		store:       st,
		log:         log,
		syncer:      sync,
		listener:    listener,
		authService: services.NewAuthService(apiClient, db),
		migration:   services.NewMigrationService(db, log, logger),
		logger:      logger,
		Mode:        ModeOnline,
		reader:      bufio.NewReader(os.Stdin),
	}
	terminal.reader = a.reader
	return a, nil
}

// Run starts the watchers and hands control to the REPL until the user
// exits.
func (a *App) Run(ctx context.Context) {
	defer a.Close(ctx)

	a.syncer.Start(ctx)
	defer a.syncer.Stop()

	a.Root(ctx)
}

// Close releases the client stack.
func (a *App) Close(ctx context.Context) {
	a.listener.Cleanup()
	_ = a.authService.Close(ctx)
	_ = a.db.Close()
}

func (a *App) isLoggedIn() bool {
	return a.session != nil || a.offlineUser != ""
}

func (a *App) setMode(mode Mode) {
	if a.Mode != mode {
		a.Mode = mode
		printlnFn("Switched to", string(mode), "mode")
	}
}

// startRealtime subscribes to every collection the UI shows. Called after a
// successful online login; a failure degrades to polling, it never blocks
// the session.
func (a *App) startRealtime(ctx context.Context) {
	collections := []string{
		common.CollectionIngredients,
		common.CollectionRecipes,
		common.CollectionStaff,
		common.CollectionSettings,
	}
	if err := a.listener.Init(ctx, collections); err != nil {
		a.logger.Warn(ctx, "realtime unavailable, continuing without push updates", "error", err)
	}
}

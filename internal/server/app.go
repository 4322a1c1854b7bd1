// Package server wires configuration, storage, services and the HTTP and
// gRPC servers together and runs them until the process is told to stop.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/tentech-me/tentech-api/internal/common"
	"github.com/tentech-me/tentech-api/internal/cryptox"
	"github.com/tentech-me/tentech-api/internal/dbx"
	"github.com/tentech-me/tentech-api/internal/logging"
	"github.com/tentech-me/tentech-api/internal/server/auth"
	"github.com/tentech-me/tentech-api/internal/server/config"
	"github.com/tentech-me/tentech-api/internal/server/mail"
	"github.com/tentech-me/tentech-api/internal/server/repositories/repomanager"
	"github.com/tentech-me/tentech-api/internal/server/seeds"
	"github.com/tentech-me/tentech-api/internal/server/services"

	gs "github.com/tentech-me/tentech-api/internal/server/grpc"
	hs "github.com/tentech-me/tentech-api/internal/server/http"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	http   *hs.Server
	health *gs.HealthServer
}

// NewApp connects to the database, migrates it, seeds the tag table and
// builds both servers.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	authority, err := newAuthority(ctx, c, logger)
	if err != nil {
		return nil, err
	}

	db, err := repomanager.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	app, err := build(ctx, c, logger, authority, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return app, nil
}

func build(ctx context.Context, c *config.Config, logger logging.Logger, authority *auth.Authority, db *sql.DB) (*App, error) {
	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migrations error: %w", err)
	}
	runner := dbx.NewSQLRunner(db)

	tagService := services.NewTagService(runner, rm, logger)
	if _, err := tagService.Seed(ctx, seeds.Tags()); err != nil {
		return nil, fmt.Errorf("seed tags error: %w", err)
	}

	menu, err := seeds.LoadMenu()
	if err != nil {
		return nil, fmt.Errorf("load menu error: %w", err)
	}

	mailer, err := mail.New(c, logger)
	if err != nil {
		return nil, fmt.Errorf("mail init error: %w", err)
	}

	productService := services.NewProductService(runner, rm)
	svc := hs.Services{
		Users:       services.NewUserService(runner, rm, authority, mailer, c.ActivationBaseURL, logger),
		Products:    productService,
		Reactions:   services.NewReactionService(runner, rm, logger),
		Tags:        tagService,
		Assets:      services.NewAssetService(c, logger),
		Suggestions: services.NewSuggestionService(menu, productService),
	}

	hs.ConfigureMode(c.LogLevel)
	app := &App{
		config: c,
		logger: logger,
		db:     db,
		http:   hs.NewServer(c.HTTPAddr, svc, auth.NewGuard(authority), c.RequestTimeout, logger),
		health: gs.NewHealthServer(c.GRPCAddr, logger),
	}
	return app, nil
}

// newAuthority builds the token authority from the configured key. Without
// a key every restart invalidates the tokens already handed out.
func newAuthority(ctx context.Context, c *config.Config, logger logging.Logger) (*auth.Authority, error) {
	encoded := c.TokenSecretKey
	if encoded == "" {
		logger.Warn(ctx, "token secret key is not configured, using a random key")
		encoded = cryptox.GenerateKey()
	}

	key, err := cryptox.ParseKey(encoded)
	if err != nil {
		return nil, fmt.Errorf("token secret key: %w", err)
	}
	defer common.WipeByteArray(key)

	cipher, err := cryptox.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return auth.NewAuthority(cipher, c.TokenValidity, nil), nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run blocks until a signal arrives, ctx is canceled or one of the servers
// fails, then stops both and closes the database.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	app.http.OnListen = func(net.Addr) { app.health.SetServing(true) }

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := app.http.Run(ctx); err != nil {
			app.logger.Error(ctx, "http server failed", "error", err)
			cancelFunc()
		}
	}()
	go func() {
		defer wg.Done()
		if err := app.health.Run(ctx); err != nil {
			app.logger.Error(ctx, "grpc server failed", "error", err)
			cancelFunc()
		}
	}()

	<-ctx.Done()
	app.health.SetServing(false)

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(context.Background(), "db close error", "error", err)
	}
	app.logger.Info(context.Background(), "App stopped")
}

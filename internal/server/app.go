// Package server wires configuration, stores, the token issuer, notifier,
// services and guards together and runs the gRPC and HTTP transports until
// the process is signalled.
package server

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/sethnnections/authkeeper/internal/cryptox"
	"github.com/sethnnections/authkeeper/internal/logging"
	"github.com/sethnnections/authkeeper/internal/server/auth"
	"github.com/sethnnections/authkeeper/internal/server/config"
	"github.com/sethnnections/authkeeper/internal/server/guard"
	"github.com/sethnnections/authkeeper/internal/server/httpapi"
	"github.com/sethnnections/authkeeper/internal/server/notify"
	"github.com/sethnnections/authkeeper/internal/server/repositories/repomanager"
	"github.com/sethnnections/authkeeper/internal/server/services"

	gs "github.com/sethnnections/authkeeper/internal/server/grpc"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	grpc    *gs.GRPCServer
	http    *httpapi.Server
	closers []io.Closer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	app := &App{config: c, logger: logging.New(c.Env, os.Stdout)}

	stores, err := app.openStores(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}

	mailer, err := app.newMailer(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}

	issuer := auth.NewIssuer(c.AccessSecret, c.RefreshSecret, auth.TTLs{
		Access:        c.AccessTokenTTL,
		Refresh:       c.RefreshTokenTTL,
		ResetPassword: c.ResetPasswordTokenTTL,
		VerifyEmail:   c.VerifyEmailTokenTTL,
	})
	perms := guard.NewPermissionGuard(c.Roles)
	authGuard := guard.NewAuthGuard(issuer, stores.Tokens)

	as := services.NewAuthService(stores, issuer, cryptox.NewArgon2(cryptox.DefaultParams), mailer, app.logger)
	acc := services.NewAccountService(stores.Users, perms, app.logger)

	app.grpc = gs.NewGRPCServer(c.EndpointAddrGRPC, app.logger, as, acc, authGuard, perms)
	app.http = httpapi.NewServer(c.EndpointAddrHTTP, app.logger, as, acc, authGuard, perms)

	return app, nil
}

func (app *App) openStores(ctx context.Context) (repomanager.Stores, error) {
	var stores repomanager.Stores

	switch app.config.Storage {
	case config.StoragePostgres:
		db, err := repomanager.OpenPostgres(ctx, app.config.DatabaseDSN)
		if err != nil {
			return stores, fmt.Errorf("db init error: %w", err)
		}
		app.closers = append(app.closers, db)

		m := repomanager.NewPostgresRepositoryManager()
		if err := m.RunMigrations(ctx, db); err != nil {
			return stores, fmt.Errorf("migrations: %w", err)
		}
		stores = repomanager.PostgresStores(m, db)
	default:
		stores = repomanager.MemoryStores()
	}

	if app.config.Ledger == config.LedgerRedis {
		rdb := redis.NewClient(&redis.Options{Addr: app.config.RedisAddr})
		app.closers = append(app.closers, rdb)
		if err := rdb.Ping(ctx).Err(); err != nil {
			return stores, fmt.Errorf("redis init error: %w", err)
		}
		stores = stores.WithRedisLedger(rdb, app.config.RedisPrefix, app.config.RefreshTokenTTL)
	}

	app.logger.Info(ctx, "stores ready", "storage", app.config.Storage, "ledger", app.config.Ledger)
	return stores, nil
}

func (app *App) newMailer(ctx context.Context) (*notify.Mailer, error) {
	c := app.config

	var sender notify.Sender
	switch c.Notifier {
	case config.NotifierRabbitMQ:
		s, err := notify.DialRabbitMQ(c.RabbitMQURL, c.RabbitMQQueue)
		if err != nil {
			return nil, err
		}
		sender = s
	case config.NotifierKafka:
		sender = notify.NewKafkaSender(c.KafkaBrokers, c.KafkaTopic)
	case config.NotifierS3:
		s, err := notify.NewS3Sender(ctx, notify.S3Options{
			User:         c.S3RootUser,
			Password:     c.S3RootPassword,
			Bucket:       c.S3Bucket,
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
		})
		if err != nil {
			return nil, err
		}
		sender = s
	default:
		sender = notify.NewLogSender(app.logger)
	}

	m := notify.NewMailer(c.ClientURL, sender)
	app.closers = append(app.closers, m)
	return m, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run blocks until ctx is cancelled, a signal arrives or either server
// fails; a failing server stops the other one too.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	for name, run := range map[string]func(context.Context) error{
		"grpc": app.grpc.Run,
		"http": app.http.Run,
	} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := run(ctx); err != nil {
				app.logger.Error(ctx, "server stopped", "server", name, "error", err)
				cancelFunc()
			}
		}()
	}

	wg.Wait()
	app.Close()
	app.logger.Info(context.Background(), "App stopped")
}

// Close releases the database, redis and notifier connections.
func (app *App) Close() {
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i].Close(); err != nil {
			app.logger.Warn(context.Background(), "close failed", "error", err)
		}
	}
	app.closers = nil
}

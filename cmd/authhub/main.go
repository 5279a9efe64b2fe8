package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	auth "github.com/authhub/go-auth"
)

func main() {
	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Trace),
		glog.WithName("authhub"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)
	logger := lgr.GetLogger("app")

	cfg, err := LoadConfig()
	if err != nil {
		logger.Error("configuration error", "error", err)
		os.Exit(1)
	}

	db, err := openDatabase(cfg.DSN)
	if err != nil {
		logger.Error("database error", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := bootstrapSchema(ctx, db); err != nil {
		logger.Error("schema bootstrap error", "error", err)
		os.Exit(1)
	}

	repo := auth.NewRepositoryManager(db)
	repo.MustValidate()

	provider := auth.NewUserProvider(repo.Users()).
		WithLogger(lgr.GetLogger("auth.provider"))

	auther, err := auth.NewAuthenticator(provider, cfg)
	if err != nil {
		logger.Error("authenticator error", "error", err)
		os.Exit(1)
	}
	auther.WithLogger(lgr.GetLogger("auth"))

	app := fiber.New(fiber.Config{
		AppName:               "authhub",
		DisableStartupMessage: true,
	})

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "authhub backend running"})
	})

	auth.RegisterAuthRoutes(app,
		auth.WithControllerAuther(auther),
		auth.WithControllerRegisterer(auth.NewRegisterUserHandler(repo)),
		auth.WithControllerValidator(auther.TokenService()),
		auth.WithControllerLogger(lgr.GetLogger("auth.http")),
	)

	go func() {
		logger.Info("listening", "addr", cfg.Addr)
		if err := app.Listen(cfg.Addr); err != nil {
			logger.Error("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	logger.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func openDatabase(dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, err
	}

	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

// bootstrapSchema creates the users table if it is missing. The unique index
// on email backs the one-record-per-normalized-email invariant.
func bootstrapSchema(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().
		Model((*auth.User)(nil)).
		IfNotExists().
		Exec(ctx)
	return err
}

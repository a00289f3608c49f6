package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"averix/config"
	"averix/internal/handlers"
	"averix/internal/repository"
	"averix/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
)

const shutdownTimeout = 10 * time.Second

// repositories is the storage handle shared by every service.
type repositories struct {
	users  services.UserRepository
	stakes services.StakeRepository
	trades services.TradeRepository
	close  func() error
}

func main() {
	level := new(slog.LevelVar)
	logger := slog.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level:      level,
		TimeFormat: time.DateTime,
	}))

	cfg, err := config.Load(logger)
	if err != nil {
		logger.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}
	level.Set(cfg.LogLevel)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.UsesDefaultSecret() {
		logger.Warn("SECRET_KEY not set, signing tokens with the development key")
	}

	repos, err := openRepositories(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := repos.close(); err != nil {
			logger.Error("close storage", slog.Any("error", err))
		}
	}()

	var hasher services.PasswordHasher = services.NewSaltedSHA256(cfg.PasswordSalt)
	if cfg.PasswordHasher == config.HasherBcrypt {
		hasher = services.NewBcryptHasher(0)
	}
	tokens := services.NewTokenIssuer(cfg.SecretKey, cfg.AccessTokenTTL)

	market := services.NewMarketDataService()
	feed := services.NewTradeFeed(logger)
	go feed.Run(ctx)

	gin.SetMode(cfg.GinMode)
	router, err := handlers.NewRouter(handlers.Deps{
		Auth:           services.NewAuthService(repos.users, hasher, tokens, logger),
		Users:          services.NewUserService(repos.stakes, repos.trades),
		Staking:        services.NewStakingService(repos.users, repos.stakes, logger),
		Orders:         services.NewOrderService(repos.users, repos.trades, market, feed, logger),
		Market:         market,
		Feed:           feed,
		Logger:         logger,
		CORSOrigins:    cfg.CORSOrigins,
		TrustedProxies: cfg.TrustedProxies,
		AuthRateLimit:  cfg.AuthRateLimit,
		AuthRateBurst:  cfg.AuthRateBurst,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Averix API listening",
			slog.String("addr", srv.Addr),
			slog.String("store", cfg.Store))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openRepositories(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*repositories, error) {
	if cfg.Store == config.StoreMemory {
		logger.Warn("using in-memory storage, data is lost on exit")
		mem := repository.NewMemory()
		return &repositories{
			users:  mem.Users,
			stakes: mem.Stakes,
			trades: mem.Trades,
			close:  func() error { return nil },
		}, nil
	}

	client, err := config.ConnectDB(ctx, cfg.MongoURI)
	if err != nil {
		return nil, err
	}
	logger.Info("connected to MongoDB", slog.String("database", cfg.DatabaseName))

	m, err := repository.NewMongo(ctx, client, cfg.DatabaseName)
	if err != nil {
		_ = config.DisconnectDB(client)
		return nil, err
	}
	return &repositories{
		users:  m.Users,
		stakes: m.Stakes,
		trades: m.Trades,
		close:  func() error { return config.DisconnectDB(client) },
	}, nil
}

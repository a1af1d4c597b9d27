package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"nodereg/internal/auth"
	"nodereg/internal/boot"
	"nodereg/internal/config"
	"nodereg/internal/domain"
	"nodereg/internal/handler"
	"nodereg/internal/loader"
	"nodereg/internal/logging"
	"nodereg/internal/metrics"
	"nodereg/internal/middleware"
	"nodereg/internal/repository/sqlite"
	"nodereg/internal/service"
	"nodereg/internal/watcher"
)

func main() {
	// Command line flags
	configPath := flag.String("config", "", "config file path (default: search standard locations)")
	hashPassword := flag.String("hash-password", "", "print the bcrypt hash of a password for the config file and exit")
	flag.Parse()

	if *hashPassword != "" {
		hash, err := auth.HashPassword(*hashPassword)
		if err != nil {
			fmt.Fprintf(os.Stderr, "hash password: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(hash)
		return
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		os.Exit(1)
	}

	cfg, path, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format)
	if path == "" {
		logger.Info("No config file found, using defaults")
	} else {
		logger.Infof("Config loaded: %s", path)
	}
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("Invalid configuration")
	}
	logger.Info(cfg.Summary())

	if err := run(cfg, path, logger); err != nil {
		logger.WithError(err).Fatal("Server stopped with error")
	}
	logger.Info("Server stopped")
}

func loadConfig(path string) (*config.Config, string, error) {
	if path != "" {
		return config.LoadFromPath(path)
	}
	return config.Load()
}

func run(cfg *config.Config, path string, logger *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	// Start backing services
	deps := boot.Deps{Config: cfg, Logger: logger, Metrics: m}
	initializer := boot.NewInitializer(logger, boot.DefaultHandles(deps)...)
	initializer.SetObserver(m)

	bundle, err := initializer.Initialize(ctx)
	if err != nil {
		return fmt.Errorf("boot: %w", err)
	}
	defer func() {
		if err := bundle.Close(); err != nil {
			logger.WithError(err).Warn("Service shutdown error")
		}
	}()
	logger.Infof("Services ready: %v", bundle.Names())

	repo := bundle.Datastore()
	if err := seed(ctx, cfg, repo, logger); err != nil {
		return err
	}

	// Connect event bus to push channel
	eventBus := service.NewEventBus()
	eventBus.Forward(bundle.PushChannel(), ctx.Done())

	nodeSvc := service.NewNodeService(repo, bundle.StorageClient(), eventBus, service.Options{
		Timeout:  cfg.HTTP.RequestTimeout.Duration(),
		Logger:   logger,
		Recorder: m,
	})

	tokens := auth.NewTokenIssuer(cfg.Auth.Secret, cfg.Auth.TokenTTL.Duration())
	authenticator := auth.NewAuthenticator(cfg.Auth.Users, tokens)
	authHandler := handler.NewAuthHandler(authenticator, logger)
	authHandler.SetRecorder(m)

	d := bundle.Dispatcher()
	handler.Routes(d.Router(), handler.NewNodeHandler(nodeSvc, logger), authHandler, m.Handler())

	authn := middleware.NewAuthenticator(tokens, cfg.Auth.Header, []string{"/login"}, logger)
	authn.SetRecorder(m)
	limiter := middleware.NewRateLimiter(cfg.HTTP.LoginRate, cfg.HTTP.LoginBurst, []string{"/login"}, logger)
	go cleanupLimiter(ctx, limiter)

	if path != "" {
		w := watcher.New(path, func() { reloadUsers(path, authenticator, logger) }, logger)
		go func() {
			if err := w.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.WithError(err).Warn("Config watcher stopped")
			}
		}()
	}

	d.Handle(middleware.Chain(d.Router(),
		middleware.Recover(logger),
		middleware.CORS,
		middleware.RequestLogger(logger),
		middleware.Metrics(m),
		authn.Handler,
		limiter.Handler,
	))

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- d.Serve()
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := d.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("Server shutdown error")
	}
	return nil
}

// seed inserts the configured nodes into an empty datastore
func seed(ctx context.Context, cfg *config.Config, repo *sqlite.Repository, logger logrus.FieldLogger) error {
	nodes := make([]*domain.Node, 0, len(cfg.Seed))
	for _, s := range cfg.Seed {
		node := domain.NewNode(s.Title)
		if s.Active != nil {
			node.Active = *s.Active
		}
		nodes = append(nodes, node)
	}
	if cfg.SeedFile != "" {
		fromFile, err := loader.LoadNodes(cfg.SeedFile)
		if err != nil {
			return err
		}
		nodes = append(nodes, fromFile...)
	}
	if len(nodes) == 0 {
		return nil
	}

	n, err := repo.SeedIfEmpty(ctx, nodes)
	if err != nil {
		return fmt.Errorf("seed datastore: %w", err)
	}
	if n > 0 {
		logger.Infof("Seeded %d nodes", n)
	}
	return nil
}

// reloadUsers swaps in the user table from a changed config file. Other
// settings need a restart.
func reloadUsers(path string, a *auth.Authenticator, logger logrus.FieldLogger) {
	cfg, _, err := config.LoadFromPath(path)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		logger.WithError(err).Warn("Config reload rejected, keeping current users")
		return
	}
	a.SetUsers(cfg.Auth.Users)
	logger.Infof("Reloaded %d users", a.UserCount())
}

func cleanupLimiter(ctx context.Context, limiter *middleware.RateLimiter) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			limiter.Cleanup(30 * time.Minute)
		case <-ctx.Done():
			return
		}
	}
}

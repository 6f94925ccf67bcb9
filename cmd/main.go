package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"product-catalog/internal/auth"
	"product-catalog/internal/config"
	"product-catalog/internal/credential"
	domainProduct "product-catalog/internal/domain/product"
	domainUser "product-catalog/internal/domain/user"
	"product-catalog/internal/infrastructure/database/postgres"
	"product-catalog/internal/infrastructure/memory"
	"product-catalog/internal/logger"
	"product-catalog/internal/notify"
	"product-catalog/internal/routes"
	"product-catalog/internal/storage"
	"product-catalog/internal/usecase/product"
	"product-catalog/internal/usecase/user"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const purgeInterval = time.Hour

type repositories struct {
	users    domainUser.Repository
	resets   domainUser.ResetTokenRepository
	products domainProduct.Repository
	db       *postgres.DB
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("Failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(cfg.Server.Environment, logger.FileConfig{Path: cfg.Log.File, MaxAge: cfg.Log.MaxAge}); err != nil {
		os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("environment", cfg.Server.Environment),
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("storage_driver", cfg.Storage.Driver),
		zap.String("notifier_driver", cfg.Notifier.Driver),
	)

	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	clock := clockwork.NewRealClock()

	repos, err := openRepositories(cfg, clock)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if repos.db != nil {
		defer func() {
			if err := repos.db.Close(); err != nil {
				logger.Error("Failed to close database connection", zap.Error(err))
			}
		}()
	}

	store, err := openStore(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize storage", zap.Error(err))
	}

	notifier, closeNotifier, err := notify.New(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize notifier", zap.Error(err))
	}
	defer closeNotifier()

	gate := auth.NewGate(cfg.JWT, clock)
	resetTokens := credential.NewResetTokens(repos.resets, clock)

	services := routes.Services{
		Users: user.NewService(
			repos.users,
			credential.NewBcryptHasher(bcrypt.DefaultCost),
			resetTokens,
			gate,
			notifier,
			cfg,
		),
		Products: product.NewService(repos.products, store, clock),
		Verifier: gate,
	}
	if repos.db != nil {
		services.DB = repos.db
	}

	background, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()
	go resetTokens.StartPurgeJob(background, purgeInterval)

	router := routes.SetupRoutes(cfg, services, background.Done())

	addr := net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting",
			zap.String("address", addr),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutdown Server ...")

	stopBackground()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown server", zap.Error(err))
		return
	}

	logger.Info("Server exited properly")
}

func openRepositories(cfg *config.Config, clock clockwork.Clock) (*repositories, error) {
	switch cfg.Database.Driver {
	case "memory":
		logger.Warn("Using in-memory repositories, data is lost on restart")
		return &repositories{
			users:    memory.NewUserRepository(),
			resets:   memory.NewResetTokenRepository(),
			products: memory.NewProductRepository(clock),
		}, nil
	case "postgres", "":
		db, err := postgres.NewDB(cfg)
		if err != nil {
			return nil, err
		}
		if cfg.Database.AutoMigrate {
			if err := db.AutoMigrate(); err != nil {
				_ = db.Close()
				return nil, err
			}
		}
		sqlxDB, err := db.SQLX()
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		return &repositories{
			users:    postgres.NewUserRepository(db, clock),
			resets:   postgres.NewResetTokenRepository(sqlxDB),
			products: postgres.NewProductRepository(db, clock),
			db:       db,
		}, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}

func openStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.Storage.Driver {
	case "local", "":
		return storage.NewLocalStore(cfg.Storage.LocalRoot), nil
	case "s3":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		client, err := storage.NewS3Client(ctx, cfg.Storage)
		if err != nil {
			return nil, err
		}
		return storage.NewS3Store(client, cfg.Storage.S3Bucket, cfg.Storage.S3Prefix), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/perchlabs/perch/internal/db"
	"github.com/perchlabs/perch/internal/monitor"
	"github.com/perchlabs/perch/internal/twitter"
	"github.com/perchlabs/perch/pkg/config"
	"github.com/perchlabs/perch/pkg/logging"
)

func main() {
	addUser := flag.String("add", "", "register a username for monitoring and exit")
	oneUser := flag.String("account", "", "ingest a single username instead of all active accounts")
	purge := flag.Bool("purge", false, "run the retention sweep after ingestion")
	flag.Parse()

	// Load .env for local development; ignore if absent
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logging.InitLogger(&cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logging.GetLogger().Sync()

	logger := logging.GetLogger()
	logger.Info("Starting Perch Monitor")

	// Initialize error reporting
	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
		}); err != nil {
			logger.Fatal("Failed to initialize Sentry", zap.Error(err))
		}
		defer sentry.Flush(2 * time.Second)
	}

	// Initialize database
	database, err := db.New(&cfg.Database, cfg.Logging.Level)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		logger.Fatal("Failed to migrate database schema", zap.Error(err))
	}

	// Initialize upstream client
	client, err := twitter.New(&cfg.Twitter)
	if err != nil {
		logger.Fatal("Failed to initialize Twitter client", zap.Error(err))
	}

	repo := db.NewRepository(database.DB)
	service := monitor.New(db.NewStore(repo), client, cfg.Twitter.PostPageSize, cfg.Twitter.ReplyPageSize, nil)

	ctx := context.Background()

	if *addUser != "" {
		account, created, err := service.AddAccount(ctx, *addUser)
		if err != nil {
			logger.Fatal("Failed to add account", zap.String("username", *addUser), zap.Error(err))
		}
		logger.Info("Account registered",
			zap.String("username", account.Username),
			zap.Bool("created", created))
		return
	}

	if *oneUser != "" {
		accountRepo := db.NewAccountRepository(repo)
		account, err := accountRepo.GetByUsername(ctx, *oneUser)
		if err != nil {
			logger.Fatal("Failed to load account", zap.Error(err))
		}
		if account == nil {
			logger.Fatal("Account is not monitored", zap.String("username", *oneUser))
		}

		result := service.Ingest(ctx, account)
		logger.Info("Ingestion finished",
			zap.String("status", string(result.Outcome)),
			zap.Int("posts", result.PostsInserted),
			zap.Int("replies", result.RepliesInserted))
	} else {
		result := service.IngestAll(ctx)
		logger.Info("Batch ingestion finished",
			zap.Int("accounts", result.TotalAccounts),
			zap.Int("succeeded", result.SuccessCount),
			zap.Int("failed", result.FailedCount))
	}

	if *purge {
		result, err := service.Purge(ctx, cfg.Monitor.RetentionDays)
		if err != nil {
			logger.Fatal("Retention sweep failed", zap.Error(err))
		}
		logger.Info("Retention sweep finished",
			zap.Int64("posts_deleted", result.PostsDeleted),
			zap.Int64("replies_deleted", result.RepliesDeleted),
			zap.Int64("logs_deleted", result.LogsDeleted))
	}
}

package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/Freeeeeet/calm_scheduler/internal/api"
	"github.com/Freeeeeet/calm_scheduler/internal/app"
	"github.com/Freeeeeet/calm_scheduler/internal/config"
	"github.com/Freeeeeet/calm_scheduler/internal/controller"
	"github.com/Freeeeeet/calm_scheduler/internal/events"
	"github.com/Freeeeeet/calm_scheduler/internal/lock"
	"github.com/Freeeeeet/calm_scheduler/internal/repository"
	"github.com/Freeeeeet/calm_scheduler/internal/repository/memory"
	"github.com/Freeeeeet/calm_scheduler/internal/schedule"
	"github.com/Freeeeeet/calm_scheduler/internal/service"
	"github.com/go-telegram/bot"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := app.NewLogger(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting calm scheduler",
		zap.String("environment", cfg.Environment),
		zap.String("store", cfg.Store),
		zap.Bool("allow_touching_slots", cfg.AllowTouchingSlots))

	var (
		store    service.SlotStore
		sessions service.SessionStore
		pool     *pgxpool.Pool
	)

	if cfg.Store == config.StoreMemory {
		logger.Warn("Using in-memory slot store, data is lost on restart")
		memStore := memory.NewSlotStore()
		store = memStore
		sessions = memory.NewSessionStore(memStore)
	} else {
		pool, err = app.OpenPool(ctx, cfg.GetDBDSN())
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer pool.Close()

		migrator, err := app.NewMigrator(pool, cfg.MigrationsDir, logger)
		if err != nil {
			logger.Fatal("Failed to create migrator", zap.Error(err))
		}
		if err := migrator.Run(ctx); err != nil {
			logger.Fatal("Failed to apply migrations", zap.Error(err))
		}
		if err := migrator.Close(); err != nil {
			logger.Warn("Failed to close migrator", zap.Error(err))
		}

		store = repository.NewSlotRepository(pool)
		sessions = repository.NewSessionRepository(pool)
	}

	var locker lock.Locker = lock.NewKeyedMutex()
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		defer func() { _ = rdb.Close() }()

		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Fatal("Failed to connect to redis", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		locker = lock.NewRedisLocker(rdb, "calm:lock", 10*time.Second, logger)
		logger.Info("Provider locks in redis", zap.String("addr", cfg.RedisAddr))
	}

	var publisher events.Publisher = events.NopPublisher{}
	if brokers := events.SplitBrokers(cfg.KafkaBrokers); len(brokers) > 0 {
		kafkaPublisher := events.NewKafkaPublisher(brokers, cfg.KafkaTopic, logger)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
		logger.Info("Publishing slot events", zap.Strings("brokers", brokers), zap.String("topic", cfg.KafkaTopic))
	}

	policy := schedule.Policy{AllowTouching: cfg.AllowTouchingSlots}
	slotService := service.NewSlotService(store, locker, publisher, policy, logger)
	sessionService := service.NewSessionService(sessions, logger)

	scheduler := app.NewScheduler(slotService, cfg.SlotRetentionDays, logger)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	server := api.NewServer(cfg.HTTPAddr, api.NewRouter(slotService, sessionService, logger), logger)
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	if cfg.TelegramToken != "" && pool != nil {
		startBot(ctx, cfg.TelegramToken, pool, slotService, logger)
	} else if cfg.TelegramToken != "" {
		logger.Warn("Telegram bot needs the postgres store, bot disabled")
	}

	select {
	case <-ctx.Done():
		logger.Info("Shutting down")
	case err := <-errCh:
		if err != nil {
			logger.Error("HTTP server stopped", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shutdown HTTP server", zap.Error(err))
	}
}

func startBot(ctx context.Context, token string, pool *pgxpool.Pool, slotService *service.SlotService, logger *zap.Logger) {
	botInstance, err := bot.New(token)
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}

	providerService := service.NewProviderService(repository.NewProviderRepository(pool), logger)
	botController := controller.NewBotController(botInstance, providerService, slotService, logger)

	if err := botController.RegisterHandlers(ctx); err != nil {
		logger.Warn("Failed to register bot commands menu", zap.Error(err))
	}

	go func() {
		if err := botController.Start(ctx); err != nil {
			logger.Error("Bot stopped", zap.Error(err))
		}
	}()
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	firebase "firebase.google.com/go/v4"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"medislot/config"
	"medislot/cron"
	"medislot/database"
	"medislot/database/cache"
	slotRepo "medislot/database/repository/slot"
	"medislot/handlers"
	"medislot/metrics"
	"medislot/middleware"
	"medislot/routes"
	"medislot/services/notification"
	"medislot/services/schedule"
	"medislot/utils"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "main: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.InitializeLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "main: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	if err := run(cfg, logger); err != nil {
		logger.Sugar().Fatalf("main: %v", err)
	}
}

// closer releases one resource on shutdown.
type closer func(ctx context.Context) error

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx := context.Background()
	var closers []closer
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](shutdownCtx); err != nil {
				logger.Warn("main: shutdown step failed", zap.Error(err))
			}
		}
	}()

	monitor := utils.NewHealthMonitor(2 * time.Second)

	// Firebase backs the Firestore store and FCM pushes.
	var fbApp *firebase.App
	if cfg.StoreBackend == config.StoreFirestore || cfg.NotificationsEnabled {
		app, err := database.NewFirebaseApp(ctx, cfg.FirebaseCredentialsFile, cfg.FirebaseProjectID)
		if err != nil {
			return err
		}
		fbApp = app
	}

	// Slot store.
	var repo slotRepo.SlotRepository
	switch cfg.StoreBackend {
	case config.StoreMongo:
		client, err := database.ConnectMongo(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return err
		}
		closers = append(closers, client.Disconnect)
		repo = slotRepo.NewMongoSlotRepo(client, cfg.DatabaseName, cfg.BookingMaxAttempts)
	case config.StoreFirestore:
		client, err := fbApp.Firestore(ctx)
		if err != nil {
			return fmt.Errorf("firestore: %w", err)
		}
		closers = append(closers, func(context.Context) error { return client.Close() })
		repo = slotRepo.NewFirestoreSlotRepo(client, cfg.BookingMaxAttempts)
	default:
		logger.Warn("main: using the in-memory slot store; data is lost on restart")
		repo = slotRepo.NewMemorySlotRepo()
	}
	if err := repo.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("ensure slot indexes: %w", err)
	}
	monitor.Register("store", repo.Ping)

	// Redis day view cache. The service runs without it if Redis is down.
	var dayCache schedule.DayViewCache
	if cfg.RedisAddr != "" {
		redisClient, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisCacheDB)
		if err != nil {
			logger.Warn("main: day view cache disabled", zap.Error(err))
		} else {
			closers = append(closers, func(context.Context) error { return redisClient.Close() })
			dayCache = cache.NewRedisDayViewCache(redisClient, cfg.DayViewCacheTTL)
			monitor.Register("redis", pingRedis(redisClient))
		}
	}

	// Cancellation notices: enqueue on asynq, deliver through FCM.
	var notifier schedule.CancellationNotifier
	if cfg.NotificationsEnabled && cfg.RedisAddr != "" {
		redisOpts := asynq.RedisClientOpt{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisQueueDB,
		}
		fcm, err := fbApp.Messaging(ctx)
		if err != nil {
			return fmt.Errorf("firebase: error getting Messaging client: %w", err)
		}
		notifSvc, err := notification.NewDefaultNotificationService(fcm, logger)
		if err != nil {
			return err
		}

		queue := asynq.NewClient(redisOpts)
		closers = append(closers, func(context.Context) error { return queue.Close() })
		if notifier, err = notification.NewQueueNotifier(queue, logger); err != nil {
			return err
		}

		worker := cron.NewCancellationWorker(redisOpts, notifSvc, logger)
		worker.Start()
		closers = append(closers, func(context.Context) error { worker.Shutdown(); return nil })
	}

	schedMetrics := metrics.NewSchedulingMetrics(prometheus.DefaultRegisterer)
	scheduleService, err := schedule.NewDefaultScheduleService(repo, dayCache, notifier, schedMetrics, logger, cfg.MaxPlanDays)
	if err != nil {
		return err
	}

	monitorCtx, stopMonitor := context.WithCancel(ctx)
	defer stopMonitor()
	monitor.Start(monitorCtx, time.Minute)

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return fmt.Errorf("invalid TRUSTED_PROXIES: %w", err)
	}
	router.Use(middleware.RequestLogging(logger))
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RateLimitMiddleware(cfg.MaxRequestsPerMin))

	handlerBundle := handlers.NewHandlerBundle(
		handlers.NewScheduleHandler(scheduleService),
		handlers.NewHealthHandler(monitor),
		gin.WrapH(promhttp.Handler()),
	)
	routes.RegisterRoutes(router, handlerBundle)

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.AppPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	logger.Sugar().Infof("Starting server on %s (store=%s)...", srv.Addr, cfg.StoreBackend)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		return fmt.Errorf("server failed to start: %w", err)
	}
	logger.Info("main: server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("main: server stopped gracefully")
	return nil
}

func pingRedis(client *redis.Client) utils.Pinger {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}

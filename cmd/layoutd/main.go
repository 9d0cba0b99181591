package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"streamgrid/internal/core/domain"
	"streamgrid/internal/core/ports"
	"streamgrid/internal/core/services"
	httphandlers "streamgrid/internal/handlers/http"
	backupinfra "streamgrid/internal/infrastructure/backup"
	distributedinfra "streamgrid/internal/infrastructure/distributed"
	"streamgrid/internal/infrastructure/input"
	"streamgrid/internal/infrastructure/middleware"
	"streamgrid/internal/infrastructure/monitoring"
	"streamgrid/internal/infrastructure/playback"
	"streamgrid/internal/infrastructure/reliability"
	repositories "streamgrid/internal/infrastructure/repositories"
	"streamgrid/pkg/backup"
	"streamgrid/pkg/circuitbreaker"
	"streamgrid/pkg/config"
	"streamgrid/pkg/distributed"
	"streamgrid/pkg/logger"
	"streamgrid/pkg/retry"
	"streamgrid/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	startTime := time.Now()

	// Try multiple config paths
	configPaths := []string{
		"configs/config.yaml",
		"./configs/config.yaml",
		"/etc/streamgrid/config.yaml",
		"config.yaml",
	}

	var cfg *config.Config
	var err error

	for _, path := range configPaths {
		cfg, err = config.Load(path)
		if err == nil {
			break
		}
	}

	if err != nil {
		// Fallback to defaults if config cannot be loaded
		cfg = config.DefaultConfig()
	}

	// Initialize logger
	zapLogger := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLogger.Sync()

	log := zapLogger.Sugar()

	instanceID := uuid.NewString()

	// Initialize tracing
	tracerProvider, err := tracing.Init(tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: "streamgrid",
		JaegerURL:   cfg.Tracing.JaegerURL,
		Environment: cfg.Tracing.Environment,
		SampleRate:  cfg.Tracing.SampleRate,
	})
	if err != nil {
		log.Fatalw("failed to initialize tracing", "error", err)
	}

	// Initialize repository factory
	repoFactory, err := repositories.NewRepositoryFactory(cfg, log)
	if err != nil {
		log.Fatalw("failed to create repository factory", "error", err)
	}
	defer repoFactory.Close()

	// Snapshot store: base backend wrapped with retry + circuit breaker,
	// then with cross-instance write events, then with read caching.
	var snapshotRepo ports.SnapshotRepository = reliability.NewSnapshotRepositoryWrapper(
		repoFactory.CreateSnapshotRepository(),
		retry.DefaultConfig(),
		circuitbreaker.DefaultConfig(),
		log,
	)

	var eventBus *distributedinfra.EventBus
	if client := repoFactory.RedisClient(); client != nil {
		eventBus = distributedinfra.NewEventBus(client, instanceID, log)
		snapshotRepo = distributedinfra.NewEventPublishingSnapshotRepository(snapshotRepo, eventBus, log)
	}

	snapshotRepo = services.NewCachedSnapshotRepository(snapshotRepo, 30*time.Second)

	streamRegistry := repoFactory.CreateStreamRegistry()

	// Initialize services
	metricsService := services.NewMetricsService()
	playbackEngine := playback.NewLoggingEngine(log)

	layoutCfg := services.LayoutConfig{
		MaxSlots:      cfg.Layout.MaxSlots,
		PaneSpacing:   cfg.Layout.PaneSpacing,
		MinPaneSize:   domain.Size{Width: cfg.Layout.MinPaneWidth, Height: cfg.Layout.MinPaneHeight},
		PiPBubbleSize: domain.Size{Width: cfg.Layout.PiPBubbleWidth, Height: cfg.Layout.PiPBubbleHeight},
		MinPinchScale: cfg.Gestures.MinPinchScale,
		MaxPinchScale: cfg.Gestures.MaxPinchScale,
		ContainerSize: domain.Size{Width: cfg.Layout.DefaultWidth, Height: cfg.Layout.DefaultHeight},
		Template:      domain.TemplateGrid2x2,
	}

	sessionManager := services.NewSessionManager(layoutCfg, playbackEngine, metricsService, log)
	authService := services.NewAuthService(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL)

	gestureCfg := services.GestureConfig{
		TapSlop:           cfg.Gestures.TapSlop,
		DoubleTapWindow:   cfg.Gestures.DoubleTapWindow,
		LongPressDuration: cfg.Gestures.LongPressDuration,
		DragCommitTimeout: cfg.Gestures.DragCommitTimeout,
		MinPinchScale:     cfg.Gestures.MinPinchScale,
		MaxPinchScale:     cfg.Gestures.MaxPinchScale,
	}

	// Monitoring
	prometheusCollector := monitoring.NewPrometheusCollector()
	metricsService.SetCollector(prometheusCollector)
	sessionManager.SetCollector(prometheusCollector)

	healthChecker := monitoring.NewHealthChecker()
	healthChecker.AddSnapshotStoreCheck(snapshotRepo, cfg.Monitoring.MetricsInterval, 2*time.Second)
	if client := repoFactory.RedisClient(); client != nil {
		healthChecker.AddRedisCheck(client, cfg.Monitoring.MetricsInterval, 2*time.Second)
	}

	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	healthChecker.StartBackgroundChecks(rootCtx)

	// Periodic gauge sync: per-session slot and PiP counts.
	go func() {
		ticker := time.NewTicker(cfg.Monitoring.MetricsInterval)
		defer ticker.Stop()
		for {
			select {
			case <-rootCtx.Done():
				return
			case <-ticker.C:
				for _, id := range sessionManager.List() {
					layout, err := sessionManager.Get(id)
					if err != nil {
						continue
					}
					state := layout.State()
					pip := layout.PiP()
					prometheusCollector.UpdateSessionLayout(id, &state, &pip)
				}
			}
		}
	}()

	// Cross-instance coordination: invalidate cached snapshots when peers
	// report writes, and keep session ownership claims fresh.
	if eventBus != nil {
		cached := snapshotRepo.(*services.CachedSnapshotRepository)
		go func() {
			err := eventBus.Subscribe(rootCtx, func(ev *distributedinfra.Event) error {
				switch ev.Type {
				case distributedinfra.EventSnapshotSaved, distributedinfra.EventSnapshotDeleted:
					cached.Invalidate(ev.Snapshot)
				case distributedinfra.EventStreamEnded:
					sessionManager.StreamEnded(ev.SessionID, ev.StreamID)
				}
				return nil
			})
			if err != nil && rootCtx.Err() == nil {
				log.Errorw("event bus subscription ended", "error", err)
			}
		}()

		sessionRegistry := distributedinfra.NewSharedSessionRegistry(repoFactory.RedisClient(), instanceID, log)
		go func() {
			ticker := time.NewTicker(time.Minute)
			defer ticker.Stop()
			for {
				select {
				case <-rootCtx.Done():
					cleanupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					sessionRegistry.CleanupInstanceSessions(cleanupCtx, instanceID)
					cancel()
					return
				case <-ticker.C:
					for _, id := range sessionManager.List() {
						if err := sessionRegistry.RegisterSession(rootCtx, id); err != nil {
							log.Warnw("failed to refresh session claim", "session_id", id, "error", err)
						}
					}
				}
			}
		}()
	}

	// Scheduled backups of the snapshot store and stream registry
	if cfg.Backup.Enabled {
		storage, err := backup.NewFileStorage(cfg.Backup.Directory)
		if err != nil {
			log.Fatalw("failed to initialize backup storage", "error", err)
		}
		scheduler := backupinfra.NewScheduler(
			backup.NewBackupService(storage, "1"),
			snapshotRepo,
			streamRegistry,
			backupinfra.Config{Interval: cfg.Backup.Interval, RetentionDays: cfg.Backup.RetentionDays},
			log,
		)
		if client := repoFactory.RedisClient(); client != nil {
			scheduler.SetLockManager(distributed.NewLockManager(client, "streamgrid:lock:"))
		}
		go scheduler.Start(rootCtx)
	}

	// Initialize HTTP handlers
	authHandler := httphandlers.NewAuthHandler(authService)
	layoutHandler := httphandlers.NewLayoutHandler(sessionManager, snapshotRepo)
	layoutHandler.SetCollector(prometheusCollector)
	registryHandler := httphandlers.NewRegistryHandler(streamRegistry)

	// Configure Gin
	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.ErrorHandlerMiddleware(log))
	router.Use(middleware.NewHTTPRateLimitMiddleware(cfg))
	if cfg.Tracing.Enabled {
		router.Use(middleware.TracingMiddleware())
	}

	// Auth routes are public, everything else requires a bearer token.
	authHandler.SetupRoutes(router)

	protected := router.Group("/", middleware.AuthMiddleware(authService))
	{
		layoutHandler.SetupRoutes(protected)
		registryHandler.SetupRoutes(protected)

		// In-memory activity counters, next to the prometheus export.
		protected.GET("/api/v1/stats", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"operations": metricsService.OperationStats(),
				"intents":    metricsService.IntentStats(),
			})
		})
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"uptime":    time.Since(startTime).String(),
			"sessions":  sessionManager.Count(),
		})
	})

	// Readiness endpoint
	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := repoFactory.HealthCheck(ctx); err != nil || !healthChecker.IsReady(ctx) {
			c.JSON(503, gin.H{
				"status":       "not_ready",
				"timestamp":    time.Now(),
				"dependencies": "unhealthy",
			})
			return
		}

		c.JSON(200, gin.H{
			"status":       "ready",
			"timestamp":    time.Now(),
			"dependencies": "ok",
		})
	})

	// Prometheus metrics endpoint
	if cfg.Monitoring.PrometheusEnabled {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
		log.Info("Prometheus metrics enabled")
	}

	// Input gateway: pointer events in, layout snapshots out.
	wsServer := input.NewWebSocketServer(sessionManager, gestureCfg, log)
	wsServer.SetCollector(prometheusCollector)
	wsServer.SetPingInterval(cfg.Input.PingInterval)
	wsServer.SetPongTimeout(cfg.Input.PongTimeout)
	wsServer.SetFlushInterval(cfg.Input.FlushInterval)
	if cfg.RateLimiting.Enabled {
		wsServer.SetEventRateLimit(cfg.RateLimiting.WebSocket.EventsPerSecond, cfg.RateLimiting.WebSocket.Burst)
		wsServer.SetMaxMessageSize(cfg.RateLimiting.WebSocket.MaxMessageSizeBytes)
	}

	inputMux := http.NewServeMux()
	inputMux.HandleFunc("/ws", wsServer.HandleWebSocket)
	inputMux.HandleFunc("/health", wsServer.HealthCheck)

	inputSrv := &http.Server{
		Addr:    cfg.Input.Address,
		Handler: inputMux,
	}

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 2)
	go func() {
		log.Infof("Starting StreamGrid layout server on %s", cfg.Server.Address)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()
	go func() {
		log.Infof("Starting StreamGrid input gateway on %s", cfg.Input.Address)
		if err := inputSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Wait for shutdown signals or server error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		log.Fatalw("Server failed", "error", err)
	case sig := <-sigChan:
		log.Infow("Received shutdown signal", "signal", sig)
	}

	log.Info("Shutting down StreamGrid layout server...")
	rootCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Error during server shutdown", "error", err)
		if closeErr := srv.Close(); closeErr != nil {
			log.Errorw("Error force closing server", "error", closeErr)
		}
	}
	if err := inputSrv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Error during input gateway shutdown", "error", err)
	}

	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Error shutting down tracer", "error", err)
	}

	if err := repoFactory.Close(); err != nil {
		log.Errorw("Error closing repository factory", "error", err)
	}

	log.Info("StreamGrid layout server stopped")
}

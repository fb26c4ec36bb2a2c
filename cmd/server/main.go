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

	"github.com/ikkim/dietprefs-client/config"
	"github.com/ikkim/dietprefs-client/internal/app/controller"
	"github.com/ikkim/dietprefs-client/internal/app/model"
	"github.com/ikkim/dietprefs-client/internal/app/repository"
	"github.com/ikkim/dietprefs-client/internal/app/service"
	"github.com/ikkim/dietprefs-client/internal/export"
	"github.com/ikkim/dietprefs-client/internal/router"
	"github.com/ikkim/dietprefs-client/internal/scheduler"
	ws "github.com/ikkim/dietprefs-client/internal/websocket"
	"github.com/ikkim/dietprefs-client/pkg/dietprefs"
	"github.com/ikkim/dietprefs-client/pkg/logger"
	redisutil "github.com/ikkim/dietprefs-client/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	logger.Initialize(logger.Config{
		Level:       cfg.Server.LogLevel,
		Format:      cfg.Server.LogFormat,
		EnableColor: cfg.Server.LogFormat == "console",
	})

	logger.Info("Starting dietprefs session server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"api":         cfg.API.BaseURL,
		"log_level":   cfg.Server.LogLevel,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Remote search client
	apiClient, err := dietprefs.NewClient(dietprefs.Config{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   cfg.API.Timeout,
		RateLimit: cfg.API.RateLimit,
		Burst:     cfg.API.Burst,
		UserAgent: "dietprefs-client/1.0",
	})
	if err != nil {
		logger.Fatal("Failed to create API client", err)
	}
	vendorRepo := repository.NewVendorRepository(apiClient)

	// Metadata cache: redis when configured, memory otherwise
	metadataCache := repository.NewMemoryMetadataCache()
	if cfg.Redis.Enabled {
		client, err := redisutil.Connect(ctx, &cfg.Redis)
		if err != nil {
			logger.Warn("Redis unavailable, caching metadata in memory", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			defer client.Close()
			metadataCache = repository.NewRedisMetadataCache(client, cfg.Redis.MetadataTTL)
		}
	}

	// Services
	configService := service.NewConfigService(vendorRepo, metadataCache)
	if err := configService.Refresh(ctx); err != nil {
		logger.Warn("Starting with fallback configuration", map[string]interface{}{
			"error":  err.Error(),
			"source": string(configService.Source()),
		})
	}
	displayService := service.NewDisplayService(configService)

	coordinator := service.NewSearchCoordinator(vendorRepo, displayService, service.CoordinatorConfig{
		PageSize: cfg.Search.PageSize,
		Debounce: cfg.Search.Debounce,
	})
	defer coordinator.Close()
	detailSession := service.NewVendorDetailSession(vendorRepo)

	var testLocation *model.Location
	if cfg.Location.UseTestLocation {
		testLocation = &model.Location{
			Latitude:  cfg.Location.Latitude,
			Longitude: cfg.Location.Longitude,
		}
	}
	locationProvider := service.NewStaticLocationProvider(testLocation)
	coordinator.RefreshLocation(ctx, locationProvider)

	// State stream
	hub := ws.NewHub(func() []ws.Event {
		return []ws.Event{
			{Type: ws.EventSession, Data: coordinator.Snapshot()},
			{Type: ws.EventDetail, Data: detailSession.Snapshot()},
		}
	})
	go hub.Run()
	defer hub.Stop()

	unsubscribeSession := coordinator.Subscribe(func(s service.SessionSnapshot) {
		if err := hub.Publish(ws.EventSession, s); err != nil {
			logger.Error("Failed to publish session snapshot", err)
		}
	})
	defer unsubscribeSession()
	unsubscribeDetail := detailSession.Subscribe(func(s service.DetailSnapshot) {
		if err := hub.Publish(ws.EventDetail, s); err != nil {
			logger.Error("Failed to publish detail snapshot", err)
		}
	})
	defer unsubscribeDetail()

	// Periodic metadata refresh
	configScheduler := scheduler.NewConfigScheduler(configService, cfg.Scheduler.ConfigRefreshSpec, cfg.API.Timeout)
	if err := configScheduler.Start(); err != nil {
		logger.Warn("Config refresh scheduler disabled", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		defer configScheduler.Stop()
	}

	// Controllers and router
	sessionController := controller.NewSessionController(
		coordinator,
		detailSession,
		displayService,
		locationProvider,
		export.NewXLSXExporter(),
	)
	configController := controller.NewConfigController(configService)
	streamController := controller.NewStreamController(hub, cfg.CORS.AllowedOrigins)

	r := router.NewRouter(sessionController, configController, streamController, cfg)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown did not complete", err)
	}
	logger.Info("Server stopped successfully")
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tobro-digital/agency-platform/internal/announcements"
	"github.com/tobro-digital/agency-platform/internal/api/router"
	"github.com/tobro-digital/agency-platform/internal/changefeed"
	appconfig "github.com/tobro-digital/agency-platform/internal/config"
	"github.com/tobro-digital/agency-platform/internal/notify"
	"github.com/tobro-digital/agency-platform/internal/observability/metrics"
	"github.com/tobro-digital/agency-platform/internal/projects"
	"github.com/tobro-digital/agency-platform/internal/queries"
	"github.com/tobro-digital/agency-platform/internal/store"
	"github.com/tobro-digital/agency-platform/internal/testimonials"
	"github.com/tobro-digital/agency-platform/internal/visitors"
	"github.com/tobro-digital/agency-platform/pkg/logging"
)

func main() {
	// Load .env in development; ignored when absent.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	var logger *logging.Logger
	if cfg.Env == "development" {
		logger = logging.NewText(cfg.LogLevel)
	} else {
		logger = logging.New(cfg.LogLevel)
	}
	logger.Info("starting agency-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Repositories: Postgres when configured, in-memory otherwise.
	var (
		queriesRepo       queries.Repository
		announcementsRepo announcements.Repository
		testimonialsRepo  testimonials.Repository
		projectsRepo      projects.Repository
		visitorsRepo      visitors.Repository
	)
	if cfg.DatabaseURL != "" {
		pool, err := store.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		queriesRepo = queries.NewPostgresRepository(pool)
		announcementsRepo = announcements.NewPostgresRepository(pool)
		testimonialsRepo = testimonials.NewPostgresRepository(pool)
		projectsRepo = projects.NewPostgresRepository(pool)
		visitorsRepo = visitors.NewPostgresRepository(pool)
	} else {
		logger.Warn("DATABASE_URL not set, using volatile in-memory storage")
		queriesRepo = queries.NewInMemoryRepository()
		announcementsRepo = announcements.NewInMemoryRepository()
		testimonialsRepo = testimonials.NewInMemoryRepository()
		projectsRepo = projects.NewInMemoryRepository()
		visitorsRepo = visitors.NewInMemoryRepository()
	}

	// Change feed: Redis pub/sub when available, in-process otherwise.
	var broker changefeed.Broker
	redisClient := store.NewRedisClient(ctx, cfg, logger)
	if redisClient != nil {
		defer redisClient.Close()
		broker = changefeed.NewRedisBroker(redisClient, logger)
		logger.Info("change feed using redis pub/sub", "addr", cfg.RedisAddr)
	} else {
		broker = changefeed.NewMemoryBroker()
		logger.Info("change feed running in-process")
	}

	// Metrics
	registry := prometheus.NewRegistry()
	siteMetrics := metrics.NewSiteMetrics(registry)
	metricsHandler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	// Lead alerts
	emailSender := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger)
	var notifier queries.Notifier
	if emailSender != nil && cfg.LeadAlertEmail != "" {
		notifier = notify.NewService(emailSender, cfg.LeadAlertEmail, logger)
	} else {
		logger.Warn("lead alerts disabled, sendgrid or alert address not configured")
	}

	// Announcement cache kept warm by the change feed; a poller covers the
	// degraded in-process mode where cross-instance notifications never arrive.
	announcementCache := changefeed.NewSubscriber(broker, changefeed.TableAnnouncements, announcementsRepo.Get, logger).
		WithMetrics(siteMetrics)
	if err := announcementCache.Start(ctx); err != nil {
		logger.Error("failed to start announcement cache", "error", err)
		os.Exit(1)
	}
	defer announcementCache.Close()
	if redisClient == nil {
		poller := changefeed.NewPoller(announcementCache.Refresh, logger).WithInterval(cfg.PollInterval)
		go poller.Start(ctx)
	}

	// WebSocket fan-out for admin dashboard tabs.
	feedHub := changefeed.NewHub(broker, []string{
		changefeed.TableQueries,
		changefeed.TableAnnouncements,
		changefeed.TableTestimonials,
		changefeed.TableProjects,
		changefeed.TableVisitors,
	}, logger).WithMetrics(siteMetrics)
	if err := feedHub.Start(ctx); err != nil {
		logger.Error("failed to start feed hub", "error", err)
		os.Exit(1)
	}

	// Handlers
	queriesHandler := queries.NewHandler(queriesRepo, broker, notifier, logger)
	announcementsHandler := announcements.NewHandler(announcementsRepo, announcementCache, broker, logger)
	testimonialsHandler := testimonials.NewHandler(testimonialsRepo, broker, logger)
	projectsHandler := projects.NewHandler(projectsRepo, broker, logger)
	visitorsHandler := visitors.NewHandler(visitorsRepo, broker, siteMetrics, logger)

	// Setup router
	routerCfg := &router.Config{
		Logger:               logger,
		QueriesHandler:       queriesHandler,
		AnnouncementsHandler: announcementsHandler,
		TestimonialsHandler:  testimonialsHandler,
		ProjectsHandler:      projectsHandler,
		VisitorsHandler:      visitorsHandler,
		FeedHub:              feedHub,
		AdminAuthSecret:      cfg.AdminJWTSecret,
		MetricsHandler:       metricsHandler,
		CORSAllowedOrigins:   cfg.CORSAllowedOrigins,
		TrackingRate:         cfg.TrackingRate,
		TrackingBurst:        cfg.TrackingBurst,
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

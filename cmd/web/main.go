package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/ubietysphere/sphere-web/internal/api/router"
	"github.com/ubietysphere/sphere-web/internal/appointments"
	"github.com/ubietysphere/sphere-web/internal/booking"
	appconfig "github.com/ubietysphere/sphere-web/internal/config"
	"github.com/ubietysphere/sphere-web/internal/documents"
	"github.com/ubietysphere/sphere-web/internal/http/handlers"
	httpmiddleware "github.com/ubietysphere/sphere-web/internal/http/middleware"
	"github.com/ubietysphere/sphere-web/internal/notify"
	"github.com/ubietysphere/sphere-web/internal/observability/metrics"
	"github.com/ubietysphere/sphere-web/internal/session"
	"github.com/ubietysphere/sphere-web/internal/slots"
	"github.com/ubietysphere/sphere-web/internal/sphere"
	"github.com/ubietysphere/sphere-web/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting sphere-web gateway",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	bookingMetrics := metrics.NewBookingMetrics(registry)

	client, err := sphere.New(cfg.SphereAPIURL, cfg.SphereAPITimeout, logger)
	if err != nil {
		logger.Error("sphere client init failed", "error", err)
		os.Exit(1)
	}
	client = client.WithMetrics(bookingMetrics)

	redisOpts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()

	{
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Error("redis unreachable", "addr", cfg.RedisAddr, "error", err)
			cancel()
			os.Exit(1)
		}
		cancel()
	}

	var sender notify.EmailSender
	if cfg.SendGridAPIKey != "" {
		sender = notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger)
	} else {
		logger.Warn("sendgrid not configured, booking emails disabled")
	}
	notifier := notify.NewService(sender, logger)

	sessions := session.NewStore(rdb, cfg.SessionCookieName, cfg.SessionTTL, cfg.SessionSecure, logger)
	flows := booking.NewFlowStore(rdb, cfg.SessionTTL, logger)

	bookingSvc := booking.NewService(client, flows, bookingMetrics, logger)
	apptSvc := appointments.NewService(client, logger)
	library := documents.NewLibrary(client, logger)
	authoring := slots.NewAuthoring(client, slots.DefaultCatalog(), logger)

	r := router.New(&router.Config{
		Logger:        logger,
		Auth:          handlers.NewAuthHandler(client, sessions, bookingMetrics, logger),
		Pages:         handlers.NewPagesHandler(),
		Booking:       handlers.NewBookingHandler(bookingSvc, notifier, cfg.StripePublishableKey, logger),
		Appointments:  handlers.NewAppointmentsHandler(apptSvc, notifier, logger),
		Documents:     handlers.NewDocumentsHandler(library, logger),
		SlotAuthoring: handlers.NewSlotAuthoringHandler(authoring, logger),
		AdminPayments: handlers.NewAdminPaymentsHandler(apptSvc, logger),
		SessionAuth:   httpmiddleware.NewSessionAuth(sessions, bookingMetrics, logger),

		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		LoginRateLimit:     cfg.LoginRateLimit,
		LoginBurst:         cfg.LoginRateBurst,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

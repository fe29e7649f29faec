package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jviciana84/dealerops-backend/api/routes"
	"github.com/jviciana84/dealerops-backend/internal/advisors"
	"github.com/jviciana84/dealerops-backend/internal/custody"
	"github.com/jviciana84/dealerops-backend/internal/extornos"
	"github.com/jviciana84/dealerops-backend/internal/incentives"
	"github.com/jviciana84/dealerops-backend/internal/notifications"
	"github.com/jviciana84/dealerops-backend/internal/vehicles"
	"github.com/jviciana84/dealerops-backend/pkg/config"
	"github.com/jviciana84/dealerops-backend/pkg/db"
	"github.com/jviciana84/dealerops-backend/pkg/logger"
	"github.com/jviciana84/dealerops-backend/pkg/mailer"
	"github.com/jviciana84/dealerops-backend/pkg/metrics"
	"github.com/jviciana84/dealerops-backend/pkg/migrate"
	"github.com/jviciana84/dealerops-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	var sender mailer.Sender
	if cfg.SMTP.Configured() {
		smtpSender, err := mailer.NewSMTP(cfg.SMTP)
		if err != nil {
			logg.Error(context.Background(), "failed to build smtp sender", err)
			os.Exit(1)
		}
		sender = smtpSender
	} else {
		logg.Warn(context.Background(), "smtp relay not configured, workflow mail disabled")
		sender = mailer.NopSender{}
	}

	httpMetrics := metrics.NewHTTPMetrics(prometheus.DefaultRegisterer)
	mailMetrics := metrics.NewMailMetrics(prometheus.DefaultRegisterer)

	gormDB := dbClient.DB()
	salesRepo := vehicles.NewSalesRepository(gormDB)
	deliveryRepo := vehicles.NewDeliveryRepository(gormDB)

	resolver, err := advisors.NewResolver(advisors.NewRepository(gormDB))
	if err != nil {
		logg.Error(context.Background(), "failed to create advisor resolver", err)
		os.Exit(1)
	}

	notifyService, err := notifications.NewService(
		notifications.NewRepository(gormDB),
		sender,
		mailMetrics,
		cfg.App,
		cfg.Incentives,
		cfg.SMTP,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	incentiveService, err := incentives.NewService(
		incentives.NewRepository(gormDB),
		salesRepo,
		deliveryRepo,
		resolver,
		notifyService,
		dbClient,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create incentives service", err)
		os.Exit(1)
	}

	custodyService, err := custody.NewService(
		custody.NewRepository(gormDB),
		salesRepo,
		notifyService,
		dbClient,
		cfg.Custody,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create custody service", err)
		os.Exit(1)
	}

	extornoService, err := extornos.NewService(extornos.NewRepository(gormDB), notifyService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create extornos service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			redisClient,
			httpMetrics,
			incentiveService,
			custodyService,
			extornoService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

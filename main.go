package main

import (
	"context"
	"net/http"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"

	"github.com/padraicbc/juniortour/config"
	"github.com/padraicbc/juniortour/db"
	"github.com/padraicbc/juniortour/engine"
	"github.com/padraicbc/juniortour/handlers"
	applog "github.com/padraicbc/juniortour/logger"
	"github.com/padraicbc/juniortour/metrics"
	mw "github.com/padraicbc/juniortour/middleware"
	"github.com/padraicbc/juniortour/notify"
	"github.com/padraicbc/juniortour/render"
	"github.com/padraicbc/juniortour/signoff"
	"github.com/padraicbc/juniortour/store"
	"github.com/padraicbc/juniortour/telemetry"
)

func main() {
	cfg := config.Load()
	logger, err := applog.New(cfg.Debug)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	tp, shutdownTracing, err := telemetry.Setup(context.Background(), cfg.OTELEndpoint, applog.Service)
	if err != nil {
		logger.Fatal("tracing setup failed", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			logger.Warn("tracing shutdown failed", zap.Error(err))
		}
	}()
	if cfg.OTELEndpoint == "" {
		logger.Info("OTEL_EXPORTER_OTLP_ENDPOINT not set, spans are not exported")
	}

	bdb := db.Setup(cfg)
	defer bdb.Close()

	if err := db.CreateTables(context.Background(), bdb); err != nil {
		logger.Fatal("create tables failed", zap.Error(err))
	}

	loc, err := time.LoadLocation(cfg.TournamentTZ)
	if err != nil {
		logger.Fatal("load timezone failed", zap.String("tz", cfg.TournamentTZ), zap.Error(err))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	var renderer render.Renderer = render.Disabled{}
	if cfg.RendererURL != "" {
		renderer = render.NewHTTPRenderer(cfg.RendererURL, cfg.RendererTimeout)
	} else {
		logger.Warn("RENDERER_URL not set, finalized scorecards will not be rendered")
	}
	var notifier notify.Notifier = notify.Disabled{}
	if cfg.RabbitMQURL != "" {
		notifier = notify.NewPublisher(cfg.RabbitMQURL, cfg.NotifyQueue, logger)
	}
	if cfg.TDPin == "" {
		logger.Warn("TD_PIN not set, director operations are disabled")
	}

	svc := engine.New(store.New(bdb), renderer, notifier, engine.Options{
		DirectorPIN: cfg.TDPin,
		Location:    loc,
		Policy:      signoff.Policy{RequireTD: cfg.FinalizeRequireTD},
		Recipients:  cfg.ScorecardRecipients,
		MailFrom:    cfg.MailFrom,
		LookupTTL:   cfg.ParCacheTTL,
		Logger:      logger,
		Metrics:     metrics.New(registry),
		Tracer:      tp.Tracer("github.com/padraicbc/juniortour"),
	})
	h := handlers.New(svc, cfg.JWTKey())

	rdb := redisClient(cfg, logger)
	if rdb != nil {
		defer rdb.Close()
	}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = handlers.ErrorHandler(logger)
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod: true,
		LogURI:    true,
		LogStatus: true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.Int("status", v.Status),
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			switch {
			case v.Status >= 500:
				logger.Error("http request", fields...)
			case v.Status >= 400:
				logger.Warn("http request", fields...)
			default:
				logger.Info("http request", fields...)
			}
			return nil
		},
	}))
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowHeaders:     []string{"*", echo.HeaderAuthorization, mw.HeaderDirectorPIN},
		AllowCredentials: true,
	}))

	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	handlers.Register(e, h, handlers.RouteOptions{
		Redis:      rdb,
		CacheTTL:   cfg.CacheTTL,
		PINLimiter: mw.NewIPRateLimiter(cfg.PinRatePerMin, cfg.PinBurst),
		Logger:     logger,
	})

	if cfg.Debug {
		logger.Info("starting server", zap.String("mode", "debug"), zap.String("addr", cfg.Port))
		if err := e.Start(cfg.Port); err != nil {
			logger.Fatal("server exited", zap.Error(err))
		}
		return
	}

	autoTLS := &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		Cache:      autocert.DirCache(".cache"),
		HostPolicy: autocert.HostWhitelist(cfg.TLSDomains...),
	}

	s := &http.Server{
		Addr:         ":443",
		Handler:      e,
		TLSConfig:    autoTLS.TLSConfig(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	if err := s.ListenAndServeTLS("", ""); err != http.ErrServerClosed {
		logger.Error("tls server exited", zap.Error(err))
		os.Exit(1)
	}
}

// redisClient connects to the response cache. Without REDIS_ADDR, or when
// the server does not answer, caching is disabled.
func redisClient(cfg *config.Config, logger *zap.Logger) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unavailable, response cache disabled", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		_ = client.Close()
		return nil
	}
	return client
}

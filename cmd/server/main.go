package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/jass/bff/docs"
	appclient "github.com/jass/bff/internal/application/client"
	appdistribution "github.com/jass/bff/internal/application/distribution"
	apporganization "github.com/jass/bff/internal/application/organization"
	apppayment "github.com/jass/bff/internal/application/payment"
	appquality "github.com/jass/bff/internal/application/quality"
	appreport "github.com/jass/bff/internal/application/report"
	"github.com/jass/bff/internal/application/resolver"
	"github.com/jass/bff/internal/application/session"
	appwaterbox "github.com/jass/bff/internal/application/waterbox"
	"github.com/jass/bff/internal/domain/report"
	"github.com/jass/bff/internal/infrastructure/auth"
	"github.com/jass/bff/internal/infrastructure/cache"
	"github.com/jass/bff/internal/infrastructure/config"
	"github.com/jass/bff/internal/infrastructure/logger"
	"github.com/jass/bff/internal/infrastructure/persistence"
	"github.com/jass/bff/internal/infrastructure/printing"
	"github.com/jass/bff/internal/infrastructure/storage"
	"github.com/jass/bff/internal/infrastructure/telemetry"
	"github.com/jass/bff/internal/infrastructure/upstream"
	"github.com/jass/bff/internal/interfaces/http/handler"
	"github.com/jass/bff/internal/interfaces/http/middleware"
	"github.com/jass/bff/internal/interfaces/http/router"
	"go.uber.org/zap"
)

//	@title			JASS Admin API
//	@version		1.0
//	@description	Backend for the administration UI of rural water boards (JASS).
//	@BasePath		/api/v1

//	@securityDefinitions.apikey	SessionID
//	@in							header
//	@name						X-Session-ID
//	@description				Session id returned by /auth/login

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Upstream access token, accepted only when its signature can be verified. Format: "Bearer {token}"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		Service:    cfg.App.Name,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting JASS admin BFF",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", cfg.App.Version),
	)

	startCtx, startCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startCancel()

	// Tracing
	tracer, err := telemetry.NewTracerProvider(startCtx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    cfg.App.Version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	metrics := telemetry.NewMetrics()

	// Redis-backed session store and lookup cache
	stores := cache.NewFactory(cfg.Redis, cache.WithLogger(log))
	if err := stores.Connect(startCtx); err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := stores.Close(); err != nil {
			log.Error("Error closing Redis", zap.Error(err))
		}
	}()

	// Upstream JASS services
	services, err := upstream.NewServices(cfg.Upstream, metrics, log)
	if err != nil {
		log.Fatal("Failed to create upstream clients", zap.Error(err))
	}

	resolverOpts := []resolver.Option{resolver.WithMetrics(metrics), resolver.WithLogger(log.Named("resolver"))}
	if cfg.Resolver.CacheEnabled {
		resolverOpts = append(resolverOpts, resolver.WithCache(stores.NameCache(), cfg.Resolver.CacheTTL))
	}
	names := resolver.New(resolverOpts...)
	catalog := resolver.Catalog{
		Directory:      services.Organizations,
		UserDirectory:  services.Users,
		Distribution:   services.Distribution,
		Infrastructure: services.Infrastructure,
		Quality:        services.Quality,
	}

	sessions := session.NewService(
		services.Auth,
		services.Users,
		stores.SessionStore(),
		auth.NewTokenInspector(cfg.JWT),
		session.Config{
			TTL:         cfg.Session.TTL,
			DirectHosts: cfg.Upstream.DirectHosts,
			LoginPath:   cfg.Session.LoginPath,
		},
		log.Named("session"),
	)

	// Application services
	organizations := apporganization.NewService(services.Organizations, names, catalog)
	clients := appclient.NewService(services.Users, services.Reniec, names, catalog, log)
	payments := apppayment.NewService(services.Payments, names, catalog, log)
	distribution := appdistribution.NewService(services.Distribution, names, catalog)
	waterBoxes := appwaterbox.NewService(services.Infrastructure, names, catalog, log)
	quality := appquality.NewService(services.Quality, names, catalog)

	// Reports
	renderer, err := printing.NewChromedpRenderer(&printing.ChromedpConfig{
		DefaultTimeout: cfg.Printing.Timeout,
		ExecPath:       cfg.Printing.ChromePath,
		NoSandbox:      cfg.Printing.NoSandbox,
		MaxConcurrent:  cfg.Printing.MaxConcurrent,
		Logger:         log.Named("printing"),
	})
	if err != nil {
		log.Fatal("Failed to create PDF renderer", zap.Error(err))
	}
	defer func() {
		_ = renderer.Close()
	}()

	reportOpts := []appreport.Option{appreport.WithMetrics(metrics), appreport.WithLogger(log.Named("report"))}
	checks := map[string]handler.HealthCheck{}
	if client := stores.Client(); client != nil {
		checks["redis"] = func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}
	}

	if cfg.Archive.Enabled {
		db, err := persistence.NewDatabase(&cfg.Archive,
			logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Archive.LogLevel), 200*time.Millisecond))
		if err != nil {
			log.Fatal("Failed to open report archive", zap.Error(err))
		}
		defer func() {
			if err := db.Close(); err != nil {
				log.Error("Error closing report archive", zap.Error(err))
			}
		}()
		archiveTracer := telemetry.NewArchiveTracer(telemetry.ArchiveTracingConfig{
			Enabled:            tracer.IsEnabled() && cfg.Telemetry.TraceArchive,
			DBName:             cfg.Archive.DBName,
			SlowQueryThreshold: cfg.Telemetry.SlowQuery,
			WithQueryVariables: cfg.App.Env == "development",
		}, log.Named("archive"))
		if err := archiveTracer.Register(db.DB); err != nil {
			log.Fatal("Failed to register archive query tracing", zap.Error(err))
		}
		if err := db.Migrate(log.Named("migration")); err != nil {
			log.Fatal("Failed to migrate report archive", zap.Error(err))
		}
		checks["archive"] = func(context.Context) error {
			return db.Ping()
		}

		objects, err := objectStore(startCtx, cfg, log)
		if err != nil {
			log.Fatal("Failed to create object storage", zap.Error(err))
		}
		reportOpts = append(reportOpts, appreport.WithArchive(persistence.NewGormArchiveRepository(db.DB), objects))
		log.Info("Report archive enabled", zap.String("driver", cfg.Archive.Driver))
	}

	reports := appreport.NewService(appreport.Sources{
		Organizations: organizations,
		Clients:       clients,
		Payments:      payments,
		Distribution:  distribution,
		WaterBoxes:    waterBoxes,
		Quality:       quality,
	}, printing.NewTemplateEngine(), renderer, reportOpts...)

	// Handlers
	sessionCfg := handler.SessionConfig{
		HeaderName:   cfg.Session.HeaderName,
		CookieName:   cfg.Session.CookieName,
		CookieDomain: cfg.Session.CookieDomain,
		CookieSecure: cfg.Session.CookieSecure,
		MaxAge:       cfg.Session.TTL,
		LoginPath:    cfg.Session.LoginPath,
	}
	base := handler.NewBaseHandler(sessions, sessionCfg)
	handlers := router.Handlers{
		System:       handler.NewSystemHandler(cfg.App.Name, cfg.App.Version, checks),
		Auth:         handler.NewAuthHandler(sessions, sessionCfg),
		Organization: handler.NewOrganizationHandler(base, organizations),
		Client:       handler.NewClientHandler(base, clients),
		Payment:      handler.NewPaymentHandler(base, payments),
		Distribution: handler.NewDistributionHandler(base, distribution),
		WaterBox:     handler.NewWaterBoxHandler(base, waterBoxes),
		Quality:      handler.NewQualityHandler(base, quality),
		Report:       handler.NewReportHandler(base, reports),
	}

	// Set Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := middleware.SetupValidator(); err != nil {
		log.Fatal("Failed to register validators", zap.Error(err))
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware order: recovery and request id first so every later
	// layer can log and trace with the id.
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     tracer.IsEnabled(),
	}))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.HTTPMetrics(metrics))

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	corsConfig.ExposeHeaders = append(corsConfig.ExposeHeaders,
		handler.ReportRowsHeader, handler.ReportWarningsHeader, handler.ReportArchiveHeader)
	engine.Use(middleware.CORSWithConfig(corsConfig))

	security := middleware.DefaultSecurityConfig()
	security.HSTSEnabled = cfg.Session.CookieSecure
	engine.Use(middleware.SecureWithConfig(security))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimitEnabled {
		engine.Use(middleware.RateLimit(middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitBurst)))
		log.Info("Rate limiting enabled",
			zap.Float64("requests_per_second", cfg.HTTP.RateLimitRequests),
			zap.Int("burst", cfg.HTTP.RateLimitBurst),
		)
	}

	sessionGuard := middleware.SessionAuth(middleware.SessionAuthConfig{
		Sessions:   sessions,
		Resolver:   names,
		HeaderName: cfg.Session.HeaderName,
		CookieName: cfg.Session.CookieName,
		LoginPath:  cfg.Session.LoginPath,
		Logger:     log,
	})
	router.Mount(engine, handlers, router.Guards{
		Session: sessionGuard,
		Docs: middleware.DocsAccess(middleware.DocsAccessConfig{
			Enabled:     cfg.Docs.Enabled,
			RequireAuth: cfg.Docs.RequireAuth,
			AllowedIPs:  cfg.Docs.AllowedIPs,
		}, sessionGuard),
	}, metrics.Handler())
	log.Info("Routes registered", zap.Int("count", len(engine.Routes())))

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := tracer.Shutdown(ctx); err != nil {
		log.Warn("Failed to flush traces", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// objectStore opens the S3 bucket that keeps archived report files
func objectStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (report.ObjectStore, error) {
	s3, err := storage.NewS3ObjectStorage(ctx, &cfg.Storage, storage.WithLogger(log.Named("storage")))
	if err != nil {
		return nil, err
	}
	if err := s3.EnsureBucket(ctx); err != nil {
		log.Warn("Failed to ensure report bucket", zap.String("bucket", s3.Bucket()), zap.Error(err))
	}
	return s3, nil
}

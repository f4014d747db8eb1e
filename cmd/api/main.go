// Package main is the entrypoint for the listing sheet API server.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/premiumcars/listingsheet/internal/auth"
	"github.com/premiumcars/listingsheet/internal/cache"
	"github.com/premiumcars/listingsheet/internal/config"
	"github.com/premiumcars/listingsheet/internal/handler"
	"github.com/premiumcars/listingsheet/internal/logging"
	"github.com/premiumcars/listingsheet/internal/metrics"
	"github.com/premiumcars/listingsheet/internal/migration"
	"github.com/premiumcars/listingsheet/internal/render"
	"github.com/premiumcars/listingsheet/internal/repository"
	"github.com/premiumcars/listingsheet/internal/server"
	"github.com/premiumcars/listingsheet/internal/service"
	"github.com/premiumcars/listingsheet/internal/storage"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	if cfg.MigrateOnStart {
		if err := migrate(cfg, logger); err != nil {
			logger.Error("failed to apply migrations", slog.String("error", logging.SanitizeError(err, cfg.DatabaseURL)))
			os.Exit(1)
		}
	}

	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", logging.SanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", logging.RedactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database")

	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", logging.SanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", logging.RedactURL(cfg.RedisURL)),
		)
		repo.Close()
		os.Exit(1)
	}
	logger.Info("connected to Redis")

	recorder := metrics.NewPrometheus()

	brand := render.DefaultBranding()
	brand.Site, brand.Email = cfg.BrandSite, cfg.BrandMail
	if cfg.LogoPath != "" {
		logo, err := render.LoadLogo(cfg.LogoPath)
		if err != nil {
			logger.Error("failed to load logo", slog.String("error", err.Error()))
			os.Exit(1)
		}
		brand.Logo = logo
	}
	doc, err := render.NewDocument(brand)
	if err != nil {
		logger.Error("failed to build document template", slog.String("error", err.Error()))
		os.Exit(1)
	}
	pdf := render.NewChromedpRenderer(render.ChromedpConfig{
		Timeout:   cfg.RenderTimeout,
		RemoteURL: cfg.ChromeRemoteURL,
		NoSandbox: cfg.ChromeNoSandbox,
		Logger:    logger,
	})

	gate := service.NewGate(repo, repo, recorder)
	recordService := service.NewRecordService(gate, repo, recorder)
	sessionService := service.NewSessionService(
		repo,
		cacheClient,
		auth.NewProviderVerifier(cfg.AuthProviderSecret, cfg.AuthProviderIssuer),
		cfg.SessionTTL,
		recorder,
	)

	checks := map[string]handler.HealthChecker{
		"database": repo,
		"redis":    cacheClient,
	}

	var exportOpts []service.ExportOption
	if cfg.ArchiveEnabled() {
		archive, err := storage.NewS3Archive(ctx, storage.Config{
			Bucket:       cfg.ExportBucket,
			Endpoint:     cfg.ExportEndpoint,
			Region:       cfg.ExportRegion,
			AccessKeyID:  cfg.ExportAccessKeyID,
			SecretKey:    cfg.ExportSecretKey,
			UsePathStyle: cfg.ExportUsePathStyle,
		}, storage.WithLogger(logger))
		if err != nil {
			logger.Error("failed to configure export archive", slog.String("error", err.Error()))
			os.Exit(1)
		}
		if err := archive.EnsureBucket(ctx); err != nil {
			logger.Error("failed to prepare export bucket",
				slog.String("bucket", archive.Bucket()),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
		exportOpts = append(exportOpts, service.WithArchive(archive, cfg.ExportURLExpiry))
		checks["storage"] = handler.HealthCheckFunc(archive.EnsureBucket)
		logger.Info("export archive enabled", slog.String("bucket", archive.Bucket()))
	}
	exportService := service.NewExportService(gate, doc, pdf, recorder, exportOpts...)

	cookies := auth.CookieConfig{
		Name:     cfg.SessionCookieName,
		Domain:   cfg.SessionCookieDomain,
		Secure:   cfg.SessionCookieSecure,
		SameSite: cfg.CookieSameSite(),
	}

	r := setupRouter(routerDeps{
		cfg:      cfg,
		logger:   logger,
		recorder: recorder,
		metrics:  recorder.Handler(),
		sessions: sessionService,
		cookies:  cookies,
		limiter:  cacheClient,
		root:     handler.New(),
		health:   handler.NewHealthHandler(checks),
		records:  handler.NewRecordHandler(recordService, logger),
		renders:  handler.NewRenderHandler(exportService, logger),
		auth:     handler.NewSessionHandler(sessionService, gate, cookies, logger),
	})

	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	// Stopped in reverse order: renderer, Redis, Postgres.
	srv.OnShutdown("postgres", func(context.Context) error {
		repo.Close()
		return nil
	})
	srv.OnShutdown("redis", func(context.Context) error {
		return cacheClient.Close()
	})
	srv.OnShutdown("renderer", func(context.Context) error {
		return pdf.Close()
	})

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"archive", cfg.ArchiveEnabled(),
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func migrate(cfg *config.Config, logger *slog.Logger) error {
	mg, err := migration.Open(cfg.DatabaseURL, cfg.MigrationsPath, logger)
	if err != nil {
		return err
	}
	defer mg.Close()

	return mg.Up()
}

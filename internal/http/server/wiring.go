// Package server arma el handler HTTP completo a partir de la configuración:
// backend del documento, store, servicio SMTP, rate limiter, métricas y router.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/mailadmin/internal/config"
	"github.com/dropDatabas3/mailadmin/internal/email"
	healthctrl "github.com/dropDatabas3/mailadmin/internal/http/controllers/health"
	resctrl "github.com/dropDatabas3/mailadmin/internal/http/controllers/resources"
	smtpctrl "github.com/dropDatabas3/mailadmin/internal/http/controllers/smtp"
	mw "github.com/dropDatabas3/mailadmin/internal/http/middlewares"
	"github.com/dropDatabas3/mailadmin/internal/http/router"
	"github.com/dropDatabas3/mailadmin/internal/observability/logger"
	"github.com/dropDatabas3/mailadmin/internal/rate"
	store "github.com/dropDatabas3/mailadmin/internal/store"
	"github.com/dropDatabas3/mailadmin/internal/store/adapters/pg"
)

// App es el resultado del wiring.
type App struct {
	Handler http.Handler
	Store   *store.Store
	Email   *email.Service

	cleanup []func() error
}

// Close libera el limiter y el backend, en orden inverso de creación.
func (a *App) Close() error {
	var errs []error
	for i := len(a.cleanup) - 1; i >= 0; i-- {
		if err := a.cleanup[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Options permite reemplazar piezas en tests.
type Options struct {
	// Backend ya abierto; nil abre el driver configurado.
	Backend store.Backend
	// Transport SMTP; nil usa go-mail.
	Transport email.Transport
	// DisableMetrics omite /metrics y el registro de collectors.
	DisableMetrics bool
}

// Build construye la aplicación. Los adapters de storage deben estar
// registrados (blank import de store/adapters/dal en main).
func Build(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	log := logger.L().With(logger.Component("wiring"))
	app := &App{}

	// 1. Backend + Store
	backend := opts.Backend
	if backend == nil {
		b, err := store.OpenBackend(ctx, adapterConfig(cfg))
		if err != nil {
			return nil, fmt.Errorf("open storage backend %q: %w", cfg.Storage.Driver, err)
		}
		backend = b
	}
	app.cleanup = append(app.cleanup, backend.Close)

	app.Store = store.New(backend, store.Options{
		CacheTTL:    cfg.StoreCacheTTL(),
		StrictReads: cfg.Storage.StrictReads,
	})
	log.Info("storage ready", logger.Backend(backend.Name()))

	// 2. Email service
	svc, err := email.NewService(email.ServiceConfig{
		Store:           app.Store,
		Transport:       opts.Transport,
		Lang:            cfg.SMTP.Lang,
		Timeout:         cfg.SMTPTimeout(),
		DefaultFromName: cfg.SMTP.DefaultFromName,
	})
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("email service init: %w", err)
	}
	app.Email = svc

	// 3. Rate limiter para /smtp/test
	limiter, closeLimiter, err := rate.New(ctx, rate.Config{
		Driver:        cfg.Rate.Driver,
		Limit:         cfg.Rate.Limit,
		Window:        cfg.RateWindow(),
		Prefix:        cfg.Rate.Prefix,
		RedisAddr:     cfg.Rate.Redis.Addr,
		RedisPassword: cfg.Rate.Redis.Password,
		RedisDB:       cfg.Rate.Redis.DB,
	})
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("rate limiter init: %w", err)
	}
	app.cleanup = append(app.cleanup, closeLimiter)

	// 4. Métricas
	var metricsHandler http.Handler
	if !opts.DisableMetrics {
		mcfg := mw.MetricsConfig{Collectors: email.Collectors()}
		if pb, ok := backend.(*pg.Backend); ok {
			mcfg.Pool = func() *pgxpool.Pool { return pb.Pool() }
		}
		metricsHandler, err = mw.RegisterMetrics(mcfg)
		if err != nil {
			_ = app.Close()
			return nil, fmt.Errorf("metrics init: %w", err)
		}
	}

	// 5. Router
	trusted, err := mw.ParseTrustedProxies(cfg.Server.TrustedProxies)
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}
	app.Handler = router.New(router.Deps{
		Resources:      resctrl.NewResourcesController(app.Store),
		SMTP:           smtpctrl.NewSMTPController(svc),
		Health:         healthctrl.NewHealthController(backend),
		MetricsHandler: metricsHandler,
		CORSOrigins:    cfg.Server.CORSAllowedOrigins,
		SMTPLimiter:    limiter,
		SMTPLimit:      cfg.Rate.Limit,
		TrustedProxies: trusted,
	})
	return app, nil
}

func adapterConfig(cfg *config.Config) store.AdapterConfig {
	s := cfg.Storage
	return store.AdapterConfig{
		Name:            s.Driver,
		Path:            s.FS.Path,
		DSN:             s.DSN,
		DocumentName:    s.Postgres.Document,
		MaxConns:        int32(s.Postgres.MaxOpenConns),
		Bucket:          s.S3.Bucket,
		Key:             s.S3.Key,
		Region:          s.S3.Region,
		Endpoint:        s.S3.Endpoint,
		AccessKeyID:     s.S3.AccessKeyID,
		SecretAccessKey: s.S3.SecretAccessKey,
		UsePathStyle:    s.S3.UsePathStyle,
	}
}

// Package router arma el árbol de rutas (chi) y los middlewares por grupo.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	healthctrl "github.com/dropDatabas3/mailadmin/internal/http/controllers/health"
	resctrl "github.com/dropDatabas3/mailadmin/internal/http/controllers/resources"
	smtpctrl "github.com/dropDatabas3/mailadmin/internal/http/controllers/smtp"
	httperrors "github.com/dropDatabas3/mailadmin/internal/http/errors"
	mw "github.com/dropDatabas3/mailadmin/internal/http/middlewares"
	"github.com/dropDatabas3/mailadmin/internal/rate"
)

// Deps contiene todas las dependencias del router.
type Deps struct {
	Resources *resctrl.ResourcesController
	SMTP      *smtpctrl.SMTPController
	Health    *healthctrl.HealthController

	// Opcionales
	MetricsHandler http.Handler
	CORSOrigins    []string
	SMTPLimiter    rate.Limiter
	SMTPLimit      int
	TrustedProxies mw.TrustedProxies
}

// New construye el handler raíz.
func New(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(
		mw.WithRecover(),
		mw.WithRequestID(),
		mw.WithMetrics(),
	)
	if len(deps.CORSOrigins) > 0 {
		r.Use(mw.WithCORS(deps.CORSOrigins))
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrRouteNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})

	// Infra: sin logging (muy frecuentes)
	if deps.Health != nil {
		r.Get("/healthz", deps.Health.Healthz)
		r.Get("/readyz", deps.Health.Readyz)
	}
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	r.Group(func(r chi.Router) {
		r.Use(
			mw.WithSecurityHeaders(),
			mw.WithLogging(),
		)

		if deps.SMTP != nil {
			registerSMTPRoutes(r, deps)
		}
		if deps.Resources != nil {
			registerResourceRoutes(r, deps.Resources)
		}
	})

	return r
}

// registerSMTPRoutes registra /smtp/*. Las rutas estáticas de chi tienen
// prioridad sobre /{resource}/{id}.
func registerSMTPRoutes(r chi.Router, deps Deps) {
	c := deps.SMTP
	r.Route("/smtp", func(r chi.Router) {
		r.Use(mw.WithNoStore())

		// GET /smtp/providers - presets de proveedores conocidos
		r.Get("/providers", c.Providers)

		// POST /smtp/test - prueba en vivo, con rate limit por IP
		r.Method(http.MethodPost, "/test", mw.Chain(http.HandlerFunc(c.Test),
			mw.WithRateLimit(mw.RateLimitConfig{
				Limiter: deps.SMTPLimiter,
				Limit:   deps.SMTPLimit,
				KeyFunc: deps.TrustedProxies.ClientIP,
			}),
		))
	})
}

// registerResourceRoutes registra el CRUD genérico y el singleton settings.
func registerResourceRoutes(r chi.Router, c *resctrl.ResourcesController) {
	// settings contiene credenciales SMTP: no-store
	r.With(mw.WithNoStore()).Get("/settings", c.GetSettings)
	r.With(mw.WithNoStore()).Put("/settings", c.UpdateSettings)
	r.With(mw.WithNoStore()).Patch("/settings", c.UpdateSettings)
	r.Post("/settings", notCollection)

	r.Get("/{resource}", c.List)
	r.Post("/{resource}", c.Create)
	r.Put("/{resource}/{id}", c.Update)
	r.Patch("/{resource}/{id}", c.Update)
	r.Delete("/{resource}/{id}", c.Delete)
}

// notCollection responde 405 a operaciones de colección sobre settings.
func notCollection(w http.ResponseWriter, _ *http.Request) {
	httperrors.WriteError(w, httperrors.ErrMethodNotAllowed.WithDetail("settings es un objeto, no una colección"))
}

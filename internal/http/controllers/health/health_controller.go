// Package health contiene el controller para health checks.
package health

import (
	"context"
	"errors"
	"net/http"
	"time"

	httperrors "github.com/dropDatabas3/mailadmin/internal/http/errors"
	"github.com/dropDatabas3/mailadmin/internal/http/helpers"
	"github.com/dropDatabas3/mailadmin/internal/observability/logger"
	store "github.com/dropDatabas3/mailadmin/internal/store"
)

// Response es el body de /healthz y /readyz.
type Response struct {
	Status  string `json:"status"` // ok | ready
	Backend string `json:"backend,omitempty"`
}

// HealthController maneja las rutas de health check.
type HealthController struct {
	backend store.Backend
	timeout time.Duration
}

// NewHealthController crea el controller. backend puede ser nil (solo liveness).
func NewHealthController(backend store.Backend) *HealthController {
	return &HealthController{backend: backend, timeout: 2 * time.Second}
}

// Healthz maneja GET /healthz (liveness).
func (c *HealthController) Healthz(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, Response{Status: "ok"})
}

// Readyz maneja GET /readyz: el backend responde (un documento inexistente
// cuenta como listo, se crea en la primera lectura).
func (c *HealthController) Readyz(w http.ResponseWriter, r *http.Request) {
	if c.backend == nil {
		helpers.WriteJSON(w, http.StatusOK, Response{Status: "ready"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), c.timeout)
	defer cancel()

	resp := Response{Status: "ready", Backend: c.backend.Name()}
	if _, err := c.backend.Read(ctx); err != nil && !errors.Is(err, store.ErrNotExist) {
		logger.From(ctx).Warn("readiness check failed",
			logger.Layer("controller"), logger.Backend(c.backend.Name()), logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrServiceUnavailable.
			WithDetail("backend "+c.backend.Name()+" no responde").WithCause(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, resp)
}

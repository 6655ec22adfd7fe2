// Package resources contiene el controller del CRUD genérico sobre las
// colecciones del documento (users, clients, notifications, email_logs) y el
// singleton settings.
package resources

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	httperrors "github.com/dropDatabas3/mailadmin/internal/http/errors"
	"github.com/dropDatabas3/mailadmin/internal/http/helpers"
	"github.com/dropDatabas3/mailadmin/internal/observability/logger"
	store "github.com/dropDatabas3/mailadmin/internal/store"
	"go.uber.org/zap"
)

// Store es lo que el controller usa del resource store.
type Store interface {
	Get(ctx context.Context, name string) (any, error)
	Create(ctx context.Context, name string, partial store.Item) (store.Item, error)
	Update(ctx context.Context, name, id string, partial store.Item) (store.Item, error)
	Remove(ctx context.Context, name, id string) error
	UpdateSettings(ctx context.Context, partial store.Item) (store.Item, error)
}

// ResourcesController maneja /{resource} y /{resource}/{id}.
type ResourcesController struct {
	store Store
}

// NewResourcesController crea el controller.
func NewResourcesController(s Store) *ResourcesController {
	return &ResourcesController{store: s}
}

// List maneja GET /{resource}: la colección completa (o el objeto settings).
func (c *ResourcesController) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	resource := chi.URLParam(r, "resource")
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("Resources.List"), logger.Resource(resource))

	v, err := c.store.Get(ctx, resource)
	if err != nil {
		writeError(w, log, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, v)
}

// Create maneja POST /{resource}: 201 con el item y su id asignado.
func (c *ResourcesController) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	resource := chi.URLParam(r, "resource")
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("Resources.Create"), logger.Resource(resource))

	item, ok := helpers.ReadItem(w, r)
	if !ok {
		return
	}
	created, err := c.store.Create(ctx, resource, item)
	if err != nil {
		writeError(w, log, err)
		return
	}
	log.Info("item created", logger.ItemID(created.ID()))
	helpers.WriteJSON(w, http.StatusCreated, created)
}

// Update maneja PUT y PATCH /{resource}/{id}: merge superficial.
func (c *ResourcesController) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	resource := chi.URLParam(r, "resource")
	id := chi.URLParam(r, "id")
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("Resources.Update"),
		logger.Resource(resource), logger.ItemID(id))

	item, ok := helpers.ReadItem(w, r)
	if !ok {
		return
	}
	merged, err := c.store.Update(ctx, resource, id, item)
	if err != nil {
		writeError(w, log, err)
		return
	}
	log.Info("item updated")
	helpers.WriteJSON(w, http.StatusOK, merged)
}

// Delete maneja DELETE /{resource}/{id}: 204 sin body.
func (c *ResourcesController) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	resource := chi.URLParam(r, "resource")
	id := chi.URLParam(r, "id")
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("Resources.Delete"),
		logger.Resource(resource), logger.ItemID(id))

	if err := c.store.Remove(ctx, resource, id); err != nil {
		writeError(w, log, err)
		return
	}
	log.Info("item deleted")
	helpers.WriteNoContent(w)
}

// GetSettings maneja GET /settings: el objeto settings completo.
func (c *ResourcesController) GetSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("Resources.GetSettings"))

	v, err := c.store.Get(ctx, store.Settings)
	if err != nil {
		writeError(w, log, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, v)
}

// UpdateSettings maneja PUT y PATCH /settings: merge superficial del singleton.
func (c *ResourcesController) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("Resources.UpdateSettings"))

	item, ok := helpers.ReadItem(w, r)
	if !ok {
		return
	}
	merged, err := c.store.UpdateSettings(ctx, item)
	if err != nil {
		writeError(w, log, err)
		return
	}
	log.Info("settings updated")
	helpers.WriteJSON(w, http.StatusOK, merged)
}

// writeError mapea el error y loguea los 5xx con la causa.
func writeError(w http.ResponseWriter, log *zap.Logger, err error) {
	appErr := httperrors.FromError(err)
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		log.Error("request failed", logger.Err(err))
	} else {
		log.Debug("request rejected", logger.String("code", appErr.Code))
	}
	httperrors.WriteError(w, appErr)
}

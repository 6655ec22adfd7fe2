// Package smtp contiene el controller de la prueba de configuración SMTP.
package smtp

import (
	"context"
	"net/http"

	"github.com/dropDatabas3/mailadmin/internal/email"
	httperrors "github.com/dropDatabas3/mailadmin/internal/http/errors"
	"github.com/dropDatabas3/mailadmin/internal/http/helpers"
	"github.com/dropDatabas3/mailadmin/internal/observability/logger"
)

// Tester es lo que el controller usa del servicio de email.
type Tester interface {
	Test(ctx context.Context, req email.Request) (email.Result, error)
	Providers() map[string]email.Provider
}

// SMTPController maneja /smtp/*.
type SMTPController struct {
	service Tester
}

// NewSMTPController crea el controller.
func NewSMTPController(s Tester) *SMTPController {
	return &SMTPController{service: s}
}

// Test maneja POST /smtp/test.
// Body: {"smtp": {...}, "testEmail": "..."}. Sin "smtp" usa settings.smtp.
// 200 {"success": true} o 500 {"success": false, "error": "..."}.
func (c *SMTPController) Test(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("SMTP.Test"))

	var req email.Request
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	req.Lang = r.Header.Get("Accept-Language")

	res, err := c.service.Test(ctx, req)
	if err != nil {
		log.Error("smtp test could not be recorded", logger.Err(err))
		httperrors.WriteError(w, err)
		return
	}

	status := http.StatusOK
	if !res.Success {
		status = http.StatusInternalServerError
	}
	helpers.WriteJSON(w, status, res)
}

// Providers maneja GET /smtp/providers.
func (c *SMTPController) Providers(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, c.service.Providers())
}

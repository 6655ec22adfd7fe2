// Package errors define el body de error de la API y el mapeo de errores de
// dominio (store, email) a status HTTP.
package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	store "github.com/dropDatabas3/mailadmin/internal/store"
)

// errorResponse es el body de todas las respuestas de error.
// "error" repite el mensaje: el panel lee solo ese campo.
type errorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// FromError convierte un error de otra capa en un AppError.
// Los errores del store se mapean a su status; el resto es 500 y la causa
// queda solo en Err (nunca en el body).
func FromError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	switch {
	case stderrors.Is(err, store.ErrResourceNotFound):
		return ErrResourceNotFound.WithCause(err)
	case stderrors.Is(err, store.ErrItemNotFound):
		return ErrItemNotFound.WithCause(err)
	case stderrors.Is(err, store.ErrNotCollection):
		return ErrMethodNotAllowed.WithCause(err).WithDetail("settings es un objeto, no una colección")
	}
	return ErrInternalServerError.WithCause(err)
}

// WriteError escribe err como JSON con el status que le corresponde.
func WriteError(w http.ResponseWriter, err error) {
	appErr := FromError(err)

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(appErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Error:   appErr.Message,
		Code:    appErr.Code,
		Message: appErr.Message,
		Detail:  appErr.Detail,
	})
}

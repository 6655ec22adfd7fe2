package helpers

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strings"

	"github.com/dropDatabas3/mailadmin/internal/http/errors"
	store "github.com/dropDatabas3/mailadmin/internal/store"
)

// MaxBodyBytes limita el body de los requests JSON.
const MaxBodyBytes = 1 << 20

// readBody valida Content-Type (vacío se acepta) y lee hasta MaxBodyBytes.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	ct := strings.ToLower(r.Header.Get("Content-Type"))
	if ct != "" && !strings.Contains(ct, "application/json") {
		errors.WriteError(w, errors.ErrInvalidContentType)
		return nil, false
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer r.Body.Close()

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		var mbe *http.MaxBytesError
		if stderrors.As(err, &mbe) {
			errors.WriteError(w, errors.ErrBodyTooLarge)
			return nil, false
		}
		errors.WriteError(w, errors.ErrBadRequest.WithCause(err))
		return nil, false
	}
	return raw, true
}

// ReadJSON decodifica JSON de forma tolerante (no falla por campos desconocidos).
// Body vacío deja v sin tocar. Devuelve false si ya escribió error HTTP.
func ReadJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	raw, ok := readBody(w, r)
	if !ok {
		return false
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return true
	}
	if err := json.Unmarshal(raw, v); err != nil {
		errors.WriteError(w, errors.ErrInvalidJSON.WithCause(err))
		return false
	}
	return true
}

// ReadItem decodifica el body como un objeto JSON (números preservados).
// Body vacío equivale a {}.
func ReadItem(w http.ResponseWriter, r *http.Request) (store.Item, bool) {
	raw, ok := readBody(w, r)
	if !ok {
		return nil, false
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return store.Item{}, true
	}
	it, err := store.DecodeItem(raw)
	if err != nil {
		errors.WriteError(w, errors.ErrInvalidJSON.WithCause(err).WithDetail("el body debe ser un objeto JSON"))
		return nil, false
	}
	return it, true
}

// WriteJSON escribe una respuesta JSON estándar.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteNoContent escribe 204 sin body.
func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dropDatabas3/mailadmin/internal/email"
	healthctrl "github.com/dropDatabas3/mailadmin/internal/http/controllers/health"
	resctrl "github.com/dropDatabas3/mailadmin/internal/http/controllers/resources"
	smtpctrl "github.com/dropDatabas3/mailadmin/internal/http/controllers/smtp"
	"github.com/dropDatabas3/mailadmin/internal/observability/logger"
	"github.com/dropDatabas3/mailadmin/internal/rate"
	store "github.com/dropDatabas3/mailadmin/internal/store"
)

func TestMain(m *testing.M) {
	restore := logger.Replace(zap.NewNop())
	code := m.Run()
	restore()
	os.Exit(code)
}

// fakeTester simula el servicio de email.
type fakeTester struct {
	res   email.Result
	err   error
	calls []email.Request
}

func (f *fakeTester) Test(_ context.Context, req email.Request) (email.Result, error) {
	f.calls = append(f.calls, req)
	return f.res, f.err
}

func (f *fakeTester) Providers() map[string]email.Provider { return email.Providers() }

type env struct {
	handler http.Handler
	backend *store.MemoryBackend
	tester  *fakeTester
}

func newEnv(t *testing.T, mutate func(*Deps)) *env {
	t.Helper()
	b := store.NewMemoryBackend(nil)
	s := store.New(b, store.Options{})
	tester := &fakeTester{res: email.Result{Success: true}}

	deps := Deps{
		Resources: resctrl.NewResourcesController(s),
		SMTP:      smtpctrl.NewSMTPController(tester),
		Health:    healthctrl.NewHealthController(b),
	}
	if mutate != nil {
		mutate(&deps)
	}
	return &env{handler: New(deps), backend: b, tester: tester}
}

func (e *env) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rdr *bytes.Reader
	switch v := body.(type) {
	case nil:
		rdr = bytes.NewReader(nil)
	case string:
		rdr = bytes.NewReader([]byte(v))
	default:
		raw, err := json.Marshal(v)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type errBody struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

func TestNotifications_CreateListDelete(t *testing.T) {
	e := newEnv(t, nil)

	rec := e.do(t, http.MethodPost, "/notifications", map[string]any{
		"subject": "Welcome",
		"content": map[string]any{"title": "Hi", "body": "Hello {{name}}"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[map[string]any](t, rec)
	id, _ := created["id"].(string)
	require.NotEmpty(t, id)
	require.Equal(t, "Welcome", created["subject"])

	rec = e.do(t, http.MethodGet, "/notifications", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]map[string]any](t, rec)
	require.Len(t, list, 1)
	require.Equal(t, id, list[0]["id"])

	rec = e.do(t, http.MethodDelete, "/notifications/"+id, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Empty(t, rec.Body.Bytes())

	rec = e.do(t, http.MethodGet, "/notifications", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[]`, rec.Body.String())
}

func TestUpdate_MergesAndKeepsID(t *testing.T) {
	e := newEnv(t, nil)

	rec := e.do(t, http.MethodPost, "/users", map[string]any{"name": "Ana", "active": true})
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode[map[string]any](t, rec)["id"].(string)

	for _, method := range []string{http.MethodPut, http.MethodPatch} {
		rec = e.do(t, method, "/users/"+id, map[string]any{"active": false, "id": "other"})
		require.Equal(t, http.StatusOK, rec.Code, method)
		got := decode[map[string]any](t, rec)
		require.Equal(t, id, got["id"])
		require.Equal(t, "Ana", got["name"])
		require.Equal(t, false, got["active"])
	}
}

func TestUnknownResource(t *testing.T) {
	e := newEnv(t, nil)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/products"},
		{http.MethodPost, "/products"},
		{http.MethodPut, "/products/1"},
		{http.MethodDelete, "/products/1"},
	} {
		var body any
		if tc.method == http.MethodPost || tc.method == http.MethodPut {
			body = map[string]any{"a": 1}
		}
		rec := e.do(t, tc.method, tc.path, body)
		require.Equal(t, http.StatusNotFound, rec.Code, tc.method+" "+tc.path)
		got := decode[errBody](t, rec)
		require.Equal(t, "RESOURCE_NOT_FOUND", got.Code)
		require.Equal(t, "Resource not found", got.Error)
	}
}

func TestMissingItem(t *testing.T) {
	e := newEnv(t, nil)

	rec := e.do(t, http.MethodPut, "/clients/nope", map[string]any{"name": "x"})
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "ITEM_NOT_FOUND", decode[errBody](t, rec).Code)

	rec = e.do(t, http.MethodDelete, "/clients/nope", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "Item not found", decode[errBody](t, rec).Error)
}

func TestSettings(t *testing.T) {
	e := newEnv(t, nil)

	rec := e.do(t, http.MethodGet, "/settings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	settings := decode[map[string]any](t, rec)
	require.Contains(t, settings, "smtp")

	rec = e.do(t, http.MethodPut, "/settings", map[string]any{"appName": "SGP"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "SGP", decode[map[string]any](t, rec)["appName"])

	rec = e.do(t, http.MethodGet, "/settings", nil)
	got := decode[map[string]any](t, rec)
	require.Equal(t, "SGP", got["appName"])
	require.Contains(t, got, "smtp", "merge must keep existing keys")

	rec = e.do(t, http.MethodPost, "/settings", map[string]any{"x": 1})
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = e.do(t, http.MethodPut, "/settings/1", map[string]any{"x": 1})
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	require.Equal(t, "METHOD_NOT_ALLOWED", decode[errBody](t, rec).Code)
}

func TestInvalidBodies(t *testing.T) {
	e := newEnv(t, nil)

	rec := e.do(t, http.MethodPost, "/users", `{"name":`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "INVALID_JSON", decode[errBody](t, rec).Code)

	rec = e.do(t, http.MethodPost, "/users", `[1,2]`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/users", bytes.NewReader([]byte(`name=x`)))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnsupportedMediaType, w.Code)

	// sin writes por requests rechazados
	require.Equal(t, 0, e.backend.Writes)
}

func TestStoreWriteFailure_Returns500(t *testing.T) {
	e := newEnv(t, nil)
	rec := e.do(t, http.MethodGet, "/users", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	e.backend.WriteErr = errors.New("read-only")
	rec = e.do(t, http.MethodPost, "/users", map[string]any{"name": "x"})
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	got := decode[errBody](t, rec)
	require.Equal(t, "INTERNAL_SERVER_ERROR", got.Code)
	require.NotContains(t, rec.Body.String(), "read-only")
}

func TestSMTPTest(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		e := newEnv(t, nil)
		req := httptest.NewRequest(http.MethodPost, "/smtp/test",
			bytes.NewReader([]byte(`{"smtp":{"host":"smtp.gmail.com","port":465,"username":"u","password":"p","fromEmail":"a@b.c"},"testEmail":"x@y.z"}`)))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept-Language", "es-AR,es;q=0.9")
		rec := httptest.NewRecorder()
		e.handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
		require.JSONEq(t, `{"success":true}`, rec.Body.String())

		require.Len(t, e.tester.calls, 1)
		call := e.tester.calls[0]
		require.NotNil(t, call.SMTP)
		require.Equal(t, "smtp.gmail.com", call.SMTP.Host)
		require.Equal(t, 465, call.SMTP.Port)
		require.Equal(t, "x@y.z", call.TestEmail)
		require.Equal(t, "es-AR,es;q=0.9", call.Lang)
	})

	t.Run("failure", func(t *testing.T) {
		e := newEnv(t, nil)
		e.tester.res = email.Result{Success: false, Error: "Conexão recusada", Category: email.CategoryRefused}
		rec := e.do(t, http.MethodPost, "/smtp/test", map[string]any{"testEmail": "x@y.z"})
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		got := decode[map[string]any](t, rec)
		require.Equal(t, false, got["success"])
		require.Equal(t, "Conexão recusada", got["error"])
	})

	t.Run("log not recorded", func(t *testing.T) {
		e := newEnv(t, nil)
		e.tester.err = email.ErrLogFailed
		rec := e.do(t, http.MethodPost, "/smtp/test", map[string]any{"testEmail": "x@y.z"})
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		require.Equal(t, "INTERNAL_SERVER_ERROR", decode[errBody](t, rec).Code)
	})

	t.Run("malformed json", func(t *testing.T) {
		e := newEnv(t, nil)
		rec := e.do(t, http.MethodPost, "/smtp/test", `{"smtp":`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Empty(t, e.tester.calls)
	})
}

func TestSMTPProviders(t *testing.T) {
	e := newEnv(t, nil)
	rec := e.do(t, http.MethodGet, "/smtp/providers", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	got := decode[map[string]email.Provider](t, rec)
	require.Equal(t, email.Provider{Host: "smtp.gmail.com", Port: 465, Secure: true}, got["gmail"])
	require.Contains(t, got, "outlook")
	require.Contains(t, got, "softec")
}

func TestSMTPTest_RateLimited(t *testing.T) {
	e := newEnv(t, func(d *Deps) {
		d.SMTPLimiter = rate.NewMemoryLimiter(2, time.Minute)
		d.SMTPLimit = 2
	})

	for i := 0; i < 2; i++ {
		rec := e.do(t, http.MethodPost, "/smtp/test", map[string]any{"testEmail": "x@y.z"})
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	}

	rec := e.do(t, http.MethodPost, "/smtp/test", map[string]any{"testEmail": "x@y.z"})
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "RATE_LIMIT_EXCEEDED", decode[errBody](t, rec).Code)
	require.NotEmpty(t, rec.Header().Get("Retry-After"))
	require.Len(t, e.tester.calls, 2)

	// el CRUD no está limitado
	rec = e.do(t, http.MethodGet, "/users", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	e := newEnv(t, func(d *Deps) { d.CORSOrigins = []string{"http://localhost:5173"} })

	req := httptest.NewRequest(http.MethodOptions, "/notifications/123", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodDelete)
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "DELETE")

	req = httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestID(t *testing.T) {
	e := newEnv(t, nil)

	rec := e.do(t, http.MethodGet, "/users", nil)
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec = httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	require.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestHealth(t *testing.T) {
	e := newEnv(t, nil)

	rec := e.do(t, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = e.do(t, http.MethodGet, "/readyz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ready","backend":"memory"}`, rec.Body.String())

	e.backend.ReadErr = errors.New("connection reset")
	rec = e.do(t, http.MethodGet, "/readyz", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decode[errBody](t, rec)
	require.Equal(t, "SERVICE_UNAVAILABLE", body.Code)
	require.Equal(t, "backend memory no responde", body.Detail)
	require.NotContains(t, rec.Body.String(), "connection reset")
}

func TestUnknownRoute(t *testing.T) {
	e := newEnv(t, nil)
	rec := e.do(t, http.MethodGet, "/a/b/c", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "ROUTE_NOT_FOUND", decode[errBody](t, rec).Code)
}

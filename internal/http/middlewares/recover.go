package middlewares

import (
	"net/http"
	"runtime/debug"

	"github.com/dropDatabas3/mailadmin/internal/http/errors"
	"github.com/dropDatabas3/mailadmin/internal/observability/logger"
)

// WithRecover convierte un panic del handler en un 500 con el body de error
// estándar. http.ErrAbortHandler se re-lanza: net/http lo usa para cortar la
// conexión sin loguear.
func WithRecover() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.From(r.Context()).Error("panic recovered",
					logger.RequestID(GetRequestID(r.Context())),
					logger.Method(r.Method),
					logger.Path(r.URL.Path),
					logger.Any("panic", rec),
					logger.String("stack", string(debug.Stack())),
				)
				errors.WriteError(w, errors.ErrInternalServerError)
			}()
			next.ServeHTTP(w, r)
		})
	}
}

package middlewares

import (
	"net/http"
	"strings"
)

// WithSecurityHeaders agrega las cabeceras de una API que solo sirve JSON:
// nada de esto se renderiza ni se embebe en frames.
func WithSecurityHeaders() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "no-referrer")
			h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")

			// HSTS solo tiene sentido detrás de TLS (directo o terminado en el proxy)
			if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
				h.Set("Strict-Transport-Security", "max-age=15552000")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithNoStore evita que proxies o el navegador guarden la respuesta.
// Va en settings (incluye la password SMTP) y en /smtp/*.
func WithNoStore() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Cache-Control", "no-store")
			h.Set("Pragma", "no-cache")
			next.ServeHTTP(w, r)
		})
	}
}

package middleware

import (
	"net/http"
	"time"

	"policyapi/application/ports"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// Metrics records per-request duration. Status and timing come from the
// wrapped writer after the handler finishes.
func Metrics(sink ports.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			sink.RequestDuration(r.Method, r.URL.Path, ww.Status(), time.Since(start))
		})
	}
}

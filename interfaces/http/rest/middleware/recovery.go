package middleware

import (
	"net/http"

	"policyapi/interfaces/http/rest/handlers"
	apperrors "policyapi/pkg/errors"

	"go.uber.org/zap"
)

// Recovery converts panics into the standard 500 error envelope instead of
// dropping the connection.
func Recovery(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("Panic recovered",
						zap.Any("panic", rec),
						zap.String("path", r.URL.Path),
						zap.Stack("stack"),
					)
					handlers.RespondError(w, r, logger, http.StatusInternalServerError,
						"Internal server error", apperrors.CodeInternalError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

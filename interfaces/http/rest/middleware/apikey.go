package middleware

import (
	"net/http"

	"policyapi/interfaces/http/rest/handlers"
	apperrors "policyapi/pkg/errors"

	"go.uber.org/zap"
)

// APIKeyHeader carries the client credential.
const APIKeyHeader = "x-api-key"

// APIKey gates every request on a static key allowlist. When the allowlist is
// not enforced the middleware passes everything through.
func APIKey(required bool, validKeys []string, logger *zap.Logger) func(http.Handler) http.Handler {
	keySet := make(map[string]bool, len(validKeys))
	for _, key := range validKeys {
		if key != "" {
			keySet[key] = true
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !required {
				next.ServeHTTP(w, r)
				return
			}

			key := r.Header.Get(APIKeyHeader)
			if key == "" || !keySet[key] {
				handlers.RespondError(w, r, logger, http.StatusUnauthorized,
					"Unauthorized - Invalid or missing API key", apperrors.CodeUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

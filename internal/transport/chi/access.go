package chi

import (
	"crypto/subtle"
	"net/http"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// APIKeyHeader carries the shared secret.
const APIKeyHeader = "X-API-Key"

// exemptPaths are routes that bypass the access gate (health, metrics).
var exemptPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// AccessGate rejects requests whose Origin is not allow-listed or whose
// X-API-Key does not match secret. Each check is skipped when its setting is
// empty; with both empty the gate is a pass-through. OPTIONS requests and
// exemptPaths always pass. Rejections are 403 with an empty body.
func AccessGate(allowedOrigins []string, secret string, logger *zap.Logger) func(http.Handler) http.Handler {
	origins := originSet(allowedOrigins)
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(next http.Handler) http.Handler {
		// Gate disabled
		if len(origins) == 0 && secret == "" {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			origin := r.Header.Get("Origin")
			key := r.Header.Get(APIKeyHeader)

			if !originAllowed(origins, origin) || !keyMatches(secret, key) {
				logger.Warn("Access denied",
					zap.String("request_id", chiMiddleware.GetReqID(r.Context())),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("origin", origin),
					zap.String("api_key", key),
				)
				w.WriteHeader(http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func originAllowed(origins map[string]struct{}, origin string) bool {
	if len(origins) == 0 {
		return true
	}
	_, ok := origins[origin]
	return ok
}

func keyMatches(secret, key string) bool {
	if secret == "" {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(secret), []byte(key)) == 1
}

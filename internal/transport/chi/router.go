package chi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/searchgw/internal/metrics"
)

// RouterConfig holds the middleware settings of the gateway router.
type RouterConfig struct {
	AllowedOrigins []string
	SharedSecret   string
	Logger         *zap.Logger
}

// NewRouter assembles the middleware chain and mounts the API routes.
// Order: recoverer, request id, canonical log line, metrics, CORS, access gate.
func NewRouter(s *Server, cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(JSONRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(WideEvent(logger))
	r.Use(metrics.Middleware())
	r.Use(CORS(cfg.AllowedOrigins))
	r.Use(AccessGate(cfg.AllowedOrigins, cfg.SharedSecret, logger))
	s.Routes(r)
	return r
}

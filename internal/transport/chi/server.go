package chi

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/searchgw/internal/domain"
	logpkg "github.com/kailas-cloud/searchgw/internal/logger"
	catalogsvc "github.com/kailas-cloud/searchgw/internal/usecase/catalog"
	healthuc "github.com/kailas-cloud/searchgw/internal/usecase/health"
)

// Error codes of JSON error bodies.
const (
	errorCodeInternal = "internal_error"
)

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// emptyObject is the body of every not-found answer.
var emptyObject = json.RawMessage(`{}`)

// Server serves the gateway HTTP API.
type Server struct {
	catalog       *catalogsvc.Service
	health        *healthuc.Service
	documentsPath string
}

// NewServer creates an HTTP API server. documentsPath is the file POST /setup ingests.
// Handlers log through the request-scoped logger installed by WideEvent.
func NewServer(catalog *catalogsvc.Service, health *healthuc.Service, documentsPath string) *Server {
	return &Server{
		catalog:       catalog,
		health:        health,
		documentsPath: documentsPath,
	}
}

// Routes registers the API on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/search", s.Search)
	r.Get("/popular-tags", s.PopularTags)
	r.Get("/details/{id}", s.Details)
	r.Post("/setup", s.Setup)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// Search handles GET /search?q=.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var q string
	if err := runtime.BindQueryParameter("form", true, false, "q", r.URL.Query(), &q); err != nil {
		logpkg.FromContext(r.Context()).Debug("Invalid q parameter", zap.Error(err))
		q = ""
	}
	writeJSON(w, http.StatusOK, s.catalog.Search(r.Context(), q))
}

// PopularTags handles GET /popular-tags.
func (s *Server) PopularTags(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.PopularTags(r.Context()))
}

// Details handles GET /details/{id}. Anything but a plain decimal id is not found.
func (s *Server) Details(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")
	var id int64
	if !isDecimal(raw) {
		writeJSON(w, http.StatusNotFound, emptyObject)
		return
	}
	err := runtime.BindStyledParameterWithOptions("simple", "id", raw, &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		writeJSON(w, http.StatusNotFound, emptyObject)
		return
	}

	doc, err := s.catalog.GetDetails(r.Context(), id)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logpkg.FromContext(r.Context()).Error("internal error", zap.Error(err))
		}
		writeJSON(w, http.StatusNotFound, emptyObject)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// Setup handles POST /setup.
func (s *Server) Setup(w http.ResponseWriter, r *http.Request) {
	res, err := s.catalog.SetupIndex(r.Context(), s.documentsPath)
	if err != nil {
		logpkg.FromContext(r.Context()).Error("Index setup failed",
			zap.String("path", s.documentsPath),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, errorCodeInternal, setupErrorMessage(err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// isDecimal reports whether s is a non-empty run of ASCII digits.
func isDecimal(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// setupErrorMessage names the failed step without exposing paths or engine internals.
func setupErrorMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidDocuments):
		return "documents file is not a JSON array"
	case errors.Is(err, fs.ErrNotExist):
		return "documents file not found"
	default:
		return "index setup failed"
	}
}

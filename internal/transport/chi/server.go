// Package chi serves the searchd admin HTTP API.
package chi

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/searchd/internal/catalog"
	"github.com/kailas-cloud/searchd/internal/errorstats"
	logpkg "github.com/kailas-cloud/searchd/internal/logger"
	"github.com/kailas-cloud/searchd/internal/metrics"
)

// Error codes returned in ErrorResponse.Code.
const (
	CodeUnauthorized  = "unauthorized"
	CodeInternalError = "internal_error"
)

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorStat is one code in ErrorStatsResponse.
type ErrorStat struct {
	Code  string `json:"code"`
	Count uint64 `json:"count"`
}

// ErrorStatsResponse is returned by GET /v1/errorstats.
type ErrorStatsResponse struct {
	Errors            []ErrorStat `json:"errors"`
	TotalErrorReplies uint64      `json:"total_error_replies"`
	Dropped           uint64      `json:"dropped"`
}

// IndexResponse describes one index in GET /v1/indexes.
type IndexResponse struct {
	Name      string    `json:"name"`
	On        string    `json:"on"`
	Prefixes  []string  `json:"prefixes"`
	Fields    []string  `json:"fields"`
	Aliases   []string  `json:"aliases"`
	CreatedAt time.Time `json:"created_at"`
}

// Server implements the admin API handlers.
type Server struct {
	errors  *errorstats.Registry
	catalog *catalog.Catalog
	version string
	logger  *zap.Logger
}

// NewServer creates an admin API server.
func NewServer(errs *errorstats.Registry, cat *catalog.Catalog, version string, logger *zap.Logger) *Server {
	return &Server{errors: errs, catalog: cat, version: version, logger: logger}
}

// Router builds the chi router with the full middleware chain. gatherer
// backs /metrics; nil uses the default registry.
func (s *Server) Router(apiKeys []string, gatherer prometheus.Gatherer) http.Handler {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()
	r.Use(JSONRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(WideEventMiddleware(s.logger))
	r.Use(BearerAuthMiddleware(apiKeys))
	r.Use(metrics.Middleware())

	r.Get("/health", s.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Route("/v1", func(r chi.Router) {
		r.Get("/errorstats", s.GetErrorStats)
		r.Get("/errorstats/info", s.GetErrorStatsInfo)
		r.Delete("/errorstats", s.ResetErrorStats)
		r.Get("/indexes", s.ListIndexes)
	})
	return r
}

// Health handles GET /health.
func (s *Server) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
		"indexes": s.catalog.Len(),
	})
}

// GetErrorStats handles GET /v1/errorstats.
func (s *Server) GetErrorStats(w http.ResponseWriter, _ *http.Request) {
	snap := s.errors.Snapshot()
	resp := ErrorStatsResponse{
		Errors:            make([]ErrorStat, 0, len(snap.Entries)),
		TotalErrorReplies: snap.TotalErrorReplies,
		Dropped:           snap.Dropped,
	}
	for _, e := range snap.Entries {
		resp.Errors = append(resp.Errors, ErrorStat{Code: e.Key, Count: e.Count})
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetErrorStatsInfo handles GET /v1/errorstats/info: the same text the
// INFO errorstats command prints.
func (s *Server) GetErrorStatsInfo(w http.ResponseWriter, _ *http.Request) {
	var b strings.Builder
	b.WriteString("# " + errorstats.Section + "\r\n")
	for _, line := range s.errors.Snapshot().Lines() {
		b.WriteString(line)
		b.WriteString("\r\n")
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(b.String()))
}

// ResetErrorStats handles DELETE /v1/errorstats.
func (s *Server) ResetErrorStats(w http.ResponseWriter, r *http.Request) {
	s.errors.Reset()
	logpkg.FromContext(r.Context()).Info("error statistics reset")
	w.WriteHeader(http.StatusNoContent)
}

// ListIndexes handles GET /v1/indexes.
func (s *Server) ListIndexes(w http.ResponseWriter, _ *http.Request) {
	names := s.catalog.List()
	out := make([]IndexResponse, 0, len(names))
	for _, name := range names {
		info, err := s.catalog.Info(name)
		if err != nil {
			// dropped between List and Info
			continue
		}
		def := info.Definition
		fields := make([]string, len(def.Fields))
		for i := range def.Fields {
			fields[i] = def.Fields[i].Identifier() + " " + def.Fields[i].Type.String()
		}
		out = append(out, IndexResponse{
			Name:      def.Name,
			On:        string(def.StorageType),
			Prefixes:  nonNil(def.Prefixes),
			Fields:    fields,
			Aliases:   nonNil(info.Aliases),
			CreatedAt: info.CreatedAt.UTC(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"indexes": out})
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

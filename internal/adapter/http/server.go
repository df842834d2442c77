package http

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/couchcryptid/tariff-events-etl/internal/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxBatchBody caps POST /v1/normalize payloads.
const maxBatchBody = 10 << 20

// ReportService builds reports from a fetched or supplied batch.
type ReportService interface {
	Report(ctx context.Context, q domain.Query, f domain.Filter) domain.Report
	Build(batch domain.RawBatch, f domain.Filter) domain.Report
}

// Server exposes health, readiness, metrics, and report HTTP endpoints.
type Server struct {
	httpServer *http.Server
	reports    ReportService
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics and the
// /v1 report routes.
func NewServer(addr string, ready sharedobs.ReadinessChecker, reports ReportService, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		reports: reports,
		logger:  logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("POST /v1/normalize", s.handleNormalize)
	mux.HandleFunc("GET /v1/report", s.handleReport)
	mux.HandleFunc("GET /v1/report.csv", s.handleReportCSV)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleNormalize(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBatchBody))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, err)
		return
	}
	batch, err := domain.DecodeBatch(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	f := parseFilter(r.URL.Query())
	sharedobs.WriteJSON(w, http.StatusOK, s.reports.Build(batch, f))
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	report, ok := s.report(w, r)
	if !ok {
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, report)
}

func (s *Server) handleReportCSV(w http.ResponseWriter, r *http.Request) {
	report, ok := s.report(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="tariff_events.csv"`)
	w.WriteHeader(http.StatusOK)
	if err := report.Table().WriteCSV(w); err != nil {
		s.logger.Error("write csv report", "error", err)
	}
}

func (s *Server) report(w http.ResponseWriter, r *http.Request) (domain.Report, bool) {
	values := r.URL.Query()
	q, err := parseQuery(values)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return domain.Report{}, false
	}
	return s.reports.Report(r.Context(), q, parseFilter(values)), true
}

// parseQuery reads upstream search criteria. List parameters accept repeated
// keys and comma-separated values.
func parseQuery(values url.Values) (domain.Query, error) {
	q := domain.Query{
		ImposingCountries: listParam(values, "imposing"),
		TargetedCountries: listParam(values, "targeted"),
		MeasureTypes:      listParam(values, "measure"),
		Industries:        listParam(values, "industry"),
		Keywords:          strings.Fields(strings.ReplaceAll(strings.Join(values["keywords"], " "), ",", " ")),
	}
	if s := values.Get("hours"); s != "" {
		hours, err := strconv.Atoi(s)
		if err != nil || hours <= 0 {
			return domain.Query{}, fmt.Errorf("invalid hours %q", s)
		}
		q.Hours = hours
	}
	if s := values.Get("min_rate"); s != "" {
		rate, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return domain.Query{}, fmt.Errorf("invalid min_rate %q", s)
		}
		q.MinTariffRate = &rate
	}
	return q, nil
}

func parseFilter(values url.Values) domain.Filter {
	return domain.Filter{
		ImposingCountries: listParam(values, "imposing_name"),
		RelevanceScores:   listParam(values, "relevance"),
		Query:             values.Get("q"),
	}
}

func listParam(values url.Values, key string) []string {
	var out []string
	for _, v := range values[key] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func writeError(w http.ResponseWriter, status int, err error) {
	sharedobs.WriteJSON(w, status, map[string]string{"error": err.Error()})
}

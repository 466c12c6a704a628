// Package http serves the form UI over the repository, report engine and
// receipt store, plus CSV download endpoints.
package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"jobtrack/internal/cache"
	"jobtrack/internal/core"
	applog "jobtrack/internal/log"
	"jobtrack/internal/middleware/ratelimit"
	"jobtrack/internal/middleware/security"
	"jobtrack/internal/receipts"
	"jobtrack/internal/report"
	"jobtrack/internal/storage"
	appweb "jobtrack/web"
)

type Server struct {
	http.Server
	repo       *storage.Repository
	engine     *report.Engine
	receipts   *receipts.Store
	categories []string
	templates  *template.Template

	// Summaries are cheap but recomputed on every dashboard render;
	// a small TTL cache keyed by project id avoids refolding between
	// mutations.
	summaryCache *cache.LRUCache[core.Summary]

	limiter  *ratelimit.Limiter
	clientIP *security.Resolver

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(addr string, repo *storage.Repository, engine *report.Engine, rcpts *receipts.Store, categories []string) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr: addr,
		},
		repo:         repo,
		engine:       engine,
		receipts:     rcpts,
		categories:   categories,
		summaryCache: cache.NewLRUCache[core.Summary](100, 5*time.Minute),
		limiter:      ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		clientIP:     security.NewResolver(),
	}

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		slog.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("/", s.withRequestLog(s.handleDashboard))
	mux.HandleFunc("/projects", s.withRequestLog(s.handleProjects))
	mux.HandleFunc("/projects/update", s.withRequestLog(s.handleUpdateProject))
	mux.HandleFunc("/projects/delete", s.withRequestLog(s.handleDeleteProject))
	mux.HandleFunc("/tasks", s.withRequestLog(s.handleTasks))
	mux.HandleFunc("/tasks/update", s.withRequestLog(s.handleUpdateTask))
	mux.HandleFunc("/tasks/delete", s.withRequestLog(s.handleDeleteTask))
	mux.HandleFunc("/expenses", s.withRequestLog(s.handleExpenses))
	mux.HandleFunc("/expenses/delete", s.withRequestLog(s.handleDeleteExpense))
	mux.HandleFunc("/receipts/", s.withRequestLog(s.handleReceipt))
	mux.HandleFunc("/income", s.withRequestLog(s.handleIncome))
	mux.HandleFunc("/income/delete", s.withRequestLog(s.handleDeleteIncome))
	mux.HandleFunc("/export/projects.csv", s.withRequestLog(s.handleExportProjects))
	mux.HandleFunc("/export/tasks.csv", s.withRequestLog(s.handleExportTasks))
	mux.HandleFunc("/export/expenses.csv", s.withRequestLog(s.handleExportExpenses))
	mux.HandleFunc("/export/incomes.csv", s.withRequestLog(s.handleExportIncomes))
	mux.HandleFunc("/export/summary.csv", s.withRequestLog(s.handleExportSummary))

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	s.Server.Handler = headers.Middleware(s.limiter.Middleware(s.clientIP.ClientIP)(mux))

	return s
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withRequestLog adds a request ID, security headers and request logging.
func (s *Server) withRequestLog(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			applog.FieldComponent, applog.ComponentHTTP,
			applog.FieldRequestID, requestID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldStatusCode, rw.statusCode,
			applog.FieldDuration, time.Since(start).Milliseconds(),
			applog.FieldClientIP, s.clientIP.ClientIP(r))
	}
}

type requestIDKey struct{}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "template", name)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution failed", "error", err, "template", name)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// SummaryCache exposes the summary cache for periodic cleanup registration.
func (s *Server) SummaryCache() cache.Cleaner {
	return s.summaryCache
}

func (s *Server) invalidateSummary(projectID int64) {
	s.summaryCache.Delete(strconv.FormatInt(projectID, 10))
}

// projectSummary serves cached summaries for the dashboard; any mutation to
// a project's rows invalidates its entry.
func (s *Server) projectSummary(ctx context.Context, projectID int64) (core.Summary, error) {
	key := strconv.FormatInt(projectID, 10)
	if summary, found := s.summaryCache.Get(key); found {
		slog.DebugContext(ctx, "Summary cache hit", "project_id", projectID)
		return summary, nil
	}
	summary, err := s.engine.ProjectSummary(ctx, projectID)
	if err != nil {
		return core.Summary{}, fmt.Errorf("project summary: %w", err)
	}
	s.summaryCache.Set(key, summary)
	return summary, nil
}

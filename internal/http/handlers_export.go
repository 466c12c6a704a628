package http

import (
	"log/slog"
	"net/http"

	"jobtrack/internal/core"
	"jobtrack/internal/export"
	"jobtrack/internal/storage"
)

// serveCSV writes a download with the standard headers. Errors after the
// first flush can only be logged; the status line is already gone.
func (s *Server) serveCSV(w http.ResponseWriter, r *http.Request, filename string, columns []string, rows []export.Row) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := export.WriteCSV(w, columns, rows); err != nil {
		slog.ErrorContext(r.Context(), "CSV export failed", "file", filename, "error", err)
	}
}

func (s *Server) handleExportProjects(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	projects, err := s.repo.ListProjects(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	s.serveCSV(w, r, "projects.csv", export.ProjectColumns, export.ProjectRows(projects))
}

func (s *Server) handleExportTasks(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	filter, err := s.taskFilterFromQuery(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	tasks, err := s.repo.ListTasks(r.Context(), filter)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	s.serveCSV(w, r, "tasks.csv", export.TaskColumns, export.TaskRows(tasks))
}

func (s *Server) handleExportExpenses(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	q := r.URL.Query()
	from, err := core.ParseDate(q.Get("from"))
	if err != nil {
		writeDomainError(w, r, &core.ValidationError{Field: "from", Reason: "must be YYYY-MM-DD"})
		return
	}
	to, err := core.ParseDate(q.Get("to"))
	if err != nil {
		writeDomainError(w, r, &core.ValidationError{Field: "to", Reason: "must be YYYY-MM-DD"})
		return
	}
	expenses, err := s.repo.ListExpenses(r.Context(), storage.ExpenseFilter{
		ProjectID: queryProjectID(r),
		Category:  sanitizeInput(q.Get("category")),
		Vendor:    sanitizeInput(q.Get("vendor")),
		From:      from,
		To:        to,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	s.serveCSV(w, r, "expenses.csv", export.ExpenseColumns, export.ExpenseRows(expenses))
}

func (s *Server) handleExportIncomes(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	q := r.URL.Query()
	from, err := core.ParseDate(q.Get("from"))
	if err != nil {
		writeDomainError(w, r, &core.ValidationError{Field: "from", Reason: "must be YYYY-MM-DD"})
		return
	}
	to, err := core.ParseDate(q.Get("to"))
	if err != nil {
		writeDomainError(w, r, &core.ValidationError{Field: "to", Reason: "must be YYYY-MM-DD"})
		return
	}
	incomes, err := s.repo.ListIncomes(r.Context(), storage.IncomeFilter{
		ProjectID: queryProjectID(r),
		From:      from,
		To:        to,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	s.serveCSV(w, r, "incomes.csv", export.IncomeColumns, export.IncomeRows(incomes))
}

// handleExportSummary requires an explicit project_id; summaries are always
// per project.
func (s *Server) handleExportSummary(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	projectID := queryProjectID(r)
	if projectID <= 0 {
		writeDomainError(w, r, &core.ValidationError{Field: "project_id", Reason: "required"})
		return
	}
	summary, err := s.engine.ProjectSummary(r.Context(), projectID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	s.serveCSV(w, r, "summary.csv", export.SummaryColumns, export.SummaryRows(summary))
}

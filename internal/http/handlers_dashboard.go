package http

import (
	"log/slog"
	"net/http"
	"sort"

	"jobtrack/internal/core"
)

type breakdownRow struct {
	Label  string
	Amount string
}

type statusRow struct {
	Status core.TaskStatus
	Count  int
}

type summaryView struct {
	EstimatedHours string
	SpentHours     string
	ExpenseTotal   string
	IncomeTotal    string
	Profit         string
	ProfitNegative bool
	TasksTotal     int
	TasksDone      int

	ByCategory []breakdownRow
	ByPayment  []breakdownRow
	ByStatus   []statusRow
}

type dashboardPage struct {
	Active          string
	Flash           string
	Error           string
	Projects        []core.Project
	SelectedProject int64
	Project         core.Project
	HasSummary      bool
	Summary         summaryView
}

// handleDashboard renders the landing page: a project picker and, once a
// project is chosen, its financial summary cards.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	projects, err := s.repo.ListProjects(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "List projects failed", "error", err)
		http.Error(w, "could not load projects", http.StatusInternalServerError)
		return
	}

	page := dashboardPage{
		Active:          "dashboard",
		Projects:        projects,
		SelectedProject: queryProjectID(r),
	}
	page.Flash, page.Error = pageFlash(r)

	if page.SelectedProject > 0 {
		project, err := s.repo.GetProject(r.Context(), page.SelectedProject)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		summary, err := s.projectSummary(r.Context(), page.SelectedProject)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		page.Project = project
		page.HasSummary = true
		page.Summary = newSummaryView(summary)
	}

	s.render(w, r, "index.html", page)
}

func newSummaryView(s core.Summary) summaryView {
	v := summaryView{
		EstimatedHours: s.EstimatedHours.String(),
		SpentHours:     s.SpentHours.String(),
		ExpenseTotal:   formatDollars(s.ExpenseTotal),
		IncomeTotal:    formatDollars(s.IncomeTotal),
		Profit:         formatDollars(s.Profit),
		ProfitNegative: s.Profit.Cents < 0,
		TasksTotal:     s.TasksTotal,
		TasksDone:      s.TasksDone,
	}

	categories := make([]string, 0, len(s.ExpenseByCategory))
	for cat := range s.ExpenseByCategory {
		categories = append(categories, cat)
	}
	sort.Strings(categories)
	for _, cat := range categories {
		v.ByCategory = append(v.ByCategory, breakdownRow{Label: cat, Amount: formatDollars(s.ExpenseByCategory[cat])})
	}

	for _, method := range core.PaymentMethods() {
		if amt, ok := s.ExpenseByPayment[method]; ok {
			v.ByPayment = append(v.ByPayment, breakdownRow{Label: string(method), Amount: formatDollars(amt)})
		}
	}

	for _, status := range core.TaskStatuses() {
		if n, ok := s.TaskCountsByStatus[status]; ok {
			v.ByStatus = append(v.ByStatus, statusRow{Status: status, Count: n})
		}
	}

	return v
}

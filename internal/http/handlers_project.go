package http

import (
	"log/slog"
	"net/http"

	"jobtrack/internal/core"
	"jobtrack/internal/storage"
)

type projectsPage struct {
	Active          string
	Flash           string
	Error           string
	Projects        []core.Project
	SelectedProject int64
	Statuses        []core.ProjectStatus
}

func (s *Server) handleProjects(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.renderProjects(w, r)
	case http.MethodPost:
		s.createProject(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) renderProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.repo.ListProjects(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "List projects failed", "error", err)
		http.Error(w, "could not load projects", http.StatusInternalServerError)
		return
	}
	flash, errMsg := pageFlash(r)
	s.render(w, r, "projects.html", projectsPage{
		Active:   "projects",
		Flash:    flash,
		Error:    errMsg,
		Projects: projects,
		Statuses: core.ProjectStatuses(),
	})
}

func (s *Server) projectFromForm(r *http.Request) (core.Project, error) {
	startDate, err := formDate(r.Form, "start_date")
	if err != nil {
		return core.Project{}, err
	}
	endDate, err := formDate(r.Form, "end_date")
	if err != nil {
		return core.Project{}, err
	}
	return core.Project{
		Name:       sanitizeInput(r.Form.Get("name")),
		ClientName: sanitizeInput(r.Form.Get("client_name")),
		Address:    sanitizeInput(r.Form.Get("address")),
		StartDate:  startDate,
		EndDate:    endDate,
		Status:     core.ProjectStatus(r.Form.Get("status")),
		Notes:      sanitizeInput(r.Form.Get("notes")),
	}, nil
}

func (s *Server) createProject(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	p, err := s.projectFromForm(r)
	if err != nil {
		redirectWithError(w, r, "/projects", err)
		return
	}
	id, err := s.repo.CreateProject(r.Context(), p)
	if err != nil {
		redirectWithError(w, r, "/projects", err)
		return
	}
	slog.InfoContext(r.Context(), "Project created via UI", "id", id, "name", p.Name)
	redirectWithFlash(w, r, "/projects", "Project added")
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	id, err := parseID(r.Form.Get("id"))
	if err != nil {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}
	p, err := s.projectFromForm(r)
	if err != nil {
		redirectWithError(w, r, "/projects", err)
		return
	}
	p.ID = id
	if err := s.repo.UpdateProject(r.Context(), p); err != nil {
		redirectWithError(w, r, "/projects", err)
		return
	}
	s.invalidateSummary(id)
	redirectWithFlash(w, r, "/projects", "Project updated")
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	id, err := parseID(r.Form.Get("id"))
	if err != nil {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}

	// Collect receipt references first so the files can be cleaned up if
	// a cascade removes the expense rows.
	expenses, err := s.repo.ListExpenses(r.Context(), storage.ExpenseFilter{ProjectID: id})
	if err != nil {
		redirectWithError(w, r, "/projects", err)
		return
	}

	if err := s.repo.DeleteProject(r.Context(), id); err != nil {
		redirectWithError(w, r, "/projects", err)
		return
	}

	for _, e := range expenses {
		if e.ReceiptPath == "" {
			continue
		}
		if err := s.receipts.Remove(e.ReceiptPath); err != nil {
			slog.WarnContext(r.Context(), "Orphaned receipt file left behind",
				"expense_id", e.ID, "receipt", e.ReceiptPath, "error", err)
		}
	}

	s.invalidateSummary(id)
	redirectWithFlash(w, r, "/projects", "Project deleted")
}

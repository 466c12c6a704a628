package http

import (
	"log/slog"
	"net/http"

	"jobtrack/internal/core"
	"jobtrack/internal/storage"
)

type tasksPage struct {
	Active          string
	Flash           string
	Error           string
	Projects        []core.Project
	SelectedProject int64
	Tasks           []core.Task
	Statuses        []core.TaskStatus

	// Echoed filter state
	FilterStatus   string
	FilterAssignee string
	FilterFrom     string
	FilterTo       string
}

func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.renderTasks(w, r)
	case http.MethodPost:
		s.createTask(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) taskFilterFromQuery(r *http.Request) (storage.TaskFilter, error) {
	q := r.URL.Query()
	from, err := core.ParseDate(q.Get("from"))
	if err != nil {
		return storage.TaskFilter{}, &core.ValidationError{Field: "from", Reason: "must be YYYY-MM-DD"}
	}
	to, err := core.ParseDate(q.Get("to"))
	if err != nil {
		return storage.TaskFilter{}, &core.ValidationError{Field: "to", Reason: "must be YYYY-MM-DD"}
	}
	return storage.TaskFilter{
		ProjectID: queryProjectID(r),
		Status:    core.TaskStatus(q.Get("status")),
		Assignee:  sanitizeInput(q.Get("assignee")),
		From:      from,
		To:        to,
	}, nil
}

func (s *Server) renderTasks(w http.ResponseWriter, r *http.Request) {
	projects, err := s.repo.ListProjects(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "List projects failed", "error", err)
		http.Error(w, "could not load projects", http.StatusInternalServerError)
		return
	}

	filter, err := s.taskFilterFromQuery(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	var tasks []core.Task
	if filter.ProjectID > 0 {
		if tasks, err = s.repo.ListTasks(r.Context(), filter); err != nil {
			slog.ErrorContext(r.Context(), "List tasks failed", "error", err, "project_id", filter.ProjectID)
			http.Error(w, "could not load tasks", http.StatusInternalServerError)
			return
		}
	}

	flash, errMsg := pageFlash(r)
	s.render(w, r, "tasks.html", tasksPage{
		Active:          "tasks",
		Flash:           flash,
		Error:           errMsg,
		Projects:        projects,
		SelectedProject: filter.ProjectID,
		Tasks:           tasks,
		Statuses:        core.TaskStatuses(),
		FilterStatus:    string(filter.Status),
		FilterAssignee:  filter.Assignee,
		FilterFrom:      filter.From.String(),
		FilterTo:        filter.To.String(),
	})
}

func (s *Server) taskFromForm(r *http.Request) (core.Task, error) {
	projectID, err := parseID(r.Form.Get("project_id"))
	if err != nil {
		return core.Task{}, &core.ValidationError{Field: "project_id", Reason: "required"}
	}
	dueDate, err := formDate(r.Form, "due_date")
	if err != nil {
		return core.Task{}, err
	}
	estimated, err := formHours(r.Form, "estimated_hours")
	if err != nil {
		return core.Task{}, err
	}
	spent, err := formHours(r.Form, "spent_hours")
	if err != nil {
		return core.Task{}, err
	}
	return core.Task{
		ProjectID:      projectID,
		Title:          sanitizeInput(r.Form.Get("title")),
		Description:    sanitizeInput(r.Form.Get("description")),
		Status:         core.TaskStatus(r.Form.Get("status")),
		DueDate:        dueDate,
		Assignee:       sanitizeInput(r.Form.Get("assignee")),
		EstimatedHours: estimated,
		SpentHours:     spent,
	}, nil
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	t, err := s.taskFromForm(r)
	if err != nil {
		redirectWithError(w, r, "/tasks", err)
		return
	}
	id, err := s.repo.CreateTask(r.Context(), t)
	if err != nil {
		redirectWithError(w, r, "/tasks", err)
		return
	}
	slog.InfoContext(r.Context(), "Task created via UI", "id", id, "project_id", t.ProjectID)
	s.invalidateSummary(t.ProjectID)
	redirectWithFlash(w, r, "/tasks", "Task added")
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
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
	t, err := s.taskFromForm(r)
	if err != nil {
		redirectWithError(w, r, "/tasks", err)
		return
	}
	t.ID = id

	// The form may move the task to another project; both the old and the
	// new project's summaries change in that case.
	prev, err := s.repo.GetTask(r.Context(), id)
	if err != nil {
		redirectWithError(w, r, "/tasks", err)
		return
	}
	if err := s.repo.UpdateTask(r.Context(), t); err != nil {
		redirectWithError(w, r, "/tasks", err)
		return
	}
	if prev.ProjectID != t.ProjectID {
		s.invalidateSummary(prev.ProjectID)
	}
	s.invalidateSummary(t.ProjectID)
	redirectWithFlash(w, r, "/tasks", "Task updated")
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
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
	task, err := s.repo.GetTask(r.Context(), id)
	if err != nil {
		redirectWithError(w, r, "/tasks", err)
		return
	}
	if err := s.repo.DeleteTask(r.Context(), id); err != nil {
		redirectWithError(w, r, "/tasks", err)
		return
	}
	s.invalidateSummary(task.ProjectID)
	redirectWithFlash(w, r, "/tasks", "Task deleted")
}

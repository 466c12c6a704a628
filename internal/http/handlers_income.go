package http

import (
	"log/slog"
	"net/http"

	"jobtrack/internal/core"
	"jobtrack/internal/storage"
)

type incomeView struct {
	ID            int64
	Source        string
	Description   string
	Amount        string
	PaymentMethod core.PaymentMethod
	Date          string
}

type incomePage struct {
	Active          string
	Flash           string
	Error           string
	Projects        []core.Project
	SelectedProject int64
	Incomes         []incomeView
	Total           string
	Methods         []core.PaymentMethod

	FilterFrom string
	FilterTo   string
}

func (s *Server) handleIncome(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.renderIncome(w, r)
	case http.MethodPost:
		s.createIncome(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) renderIncome(w http.ResponseWriter, r *http.Request) {
	projects, err := s.repo.ListProjects(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "List projects failed", "error", err)
		http.Error(w, "could not load projects", http.StatusInternalServerError)
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
	filter := storage.IncomeFilter{
		ProjectID: queryProjectID(r),
		From:      from,
		To:        to,
	}

	var views []incomeView
	var total core.Money
	if filter.ProjectID > 0 {
		incomes, err := s.repo.ListIncomes(r.Context(), filter)
		if err != nil {
			slog.ErrorContext(r.Context(), "List incomes failed", "error", err, "project_id", filter.ProjectID)
			http.Error(w, "could not load income", http.StatusInternalServerError)
			return
		}
		for _, in := range incomes {
			total = total.Add(in.Amount)
			views = append(views, incomeView{
				ID:            in.ID,
				Source:        in.Source,
				Description:   in.Description,
				Amount:        formatDollars(in.Amount),
				PaymentMethod: in.PaymentMethod,
				Date:          in.Date.String(),
			})
		}
	}

	flash, errMsg := pageFlash(r)
	s.render(w, r, "income.html", incomePage{
		Active:          "income",
		Flash:           flash,
		Error:           errMsg,
		Projects:        projects,
		SelectedProject: filter.ProjectID,
		Incomes:         views,
		Total:           formatDollars(total),
		Methods:         core.PaymentMethods(),
		FilterFrom:      filter.From.String(),
		FilterTo:        filter.To.String(),
	})
}

func (s *Server) incomeFromForm(r *http.Request) (core.Income, error) {
	projectID, err := parseID(r.Form.Get("project_id"))
	if err != nil {
		return core.Income{}, &core.ValidationError{Field: "project_id", Reason: "required"}
	}
	amount, err := formMoney(r.Form, "amount")
	if err != nil {
		return core.Income{}, err
	}
	date, err := formDate(r.Form, "date")
	if err != nil {
		return core.Income{}, err
	}
	return core.Income{
		ProjectID:     projectID,
		Source:        sanitizeInput(r.Form.Get("source")),
		Description:   sanitizeInput(r.Form.Get("description")),
		Amount:        amount,
		PaymentMethod: core.PaymentMethod(r.Form.Get("payment_method")),
		Date:          date,
	}, nil
}

func (s *Server) createIncome(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	in, err := s.incomeFromForm(r)
	if err != nil {
		redirectWithError(w, r, "/income", err)
		return
	}
	id, err := s.repo.CreateIncome(r.Context(), in)
	if err != nil {
		redirectWithError(w, r, "/income", err)
		return
	}
	slog.InfoContext(r.Context(), "Income recorded via UI",
		"id", id, "project_id", in.ProjectID, "amount_cents", in.Amount.Cents)
	s.invalidateSummary(in.ProjectID)
	redirectWithFlash(w, r, "/income", "Income recorded")
}

func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request) {
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
	in, err := s.repo.GetIncome(r.Context(), id)
	if err != nil {
		redirectWithError(w, r, "/income", err)
		return
	}
	if err := s.repo.DeleteIncome(r.Context(), id); err != nil {
		redirectWithError(w, r, "/income", err)
		return
	}
	s.invalidateSummary(in.ProjectID)
	redirectWithFlash(w, r, "/income", "Income deleted")
}

package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"jobtrack/internal/core"
	"jobtrack/internal/storage"
)

// maxUploadBytes bounds the whole multipart body, receipt included.
const maxUploadBytes = 20 << 20

type expenseView struct {
	ID            int64
	Category      string
	Vendor        string
	Description   string
	Amount        string
	PaymentMethod core.PaymentMethod
	Receipt       string
	Date          string
}

type expensesPage struct {
	Active          string
	Flash           string
	Error           string
	Projects        []core.Project
	SelectedProject int64
	Expenses        []expenseView
	Total           string
	Categories      []string
	Methods         []core.PaymentMethod

	FilterCategory string
	FilterVendor   string
	FilterFrom     string
	FilterTo       string
}

func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.renderExpenses(w, r)
	case http.MethodPost:
		s.createExpense(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) renderExpenses(w http.ResponseWriter, r *http.Request) {
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
	filter := storage.ExpenseFilter{
		ProjectID: queryProjectID(r),
		Category:  sanitizeInput(q.Get("category")),
		Vendor:    sanitizeInput(q.Get("vendor")),
		From:      from,
		To:        to,
	}

	var views []expenseView
	var total core.Money
	if filter.ProjectID > 0 {
		expenses, err := s.repo.ListExpenses(r.Context(), filter)
		if err != nil {
			slog.ErrorContext(r.Context(), "List expenses failed", "error", err, "project_id", filter.ProjectID)
			http.Error(w, "could not load expenses", http.StatusInternalServerError)
			return
		}
		for _, e := range expenses {
			total = total.Add(e.Amount)
			views = append(views, expenseView{
				ID:            e.ID,
				Category:      e.Category,
				Vendor:        e.Vendor,
				Description:   e.Description,
				Amount:        formatDollars(e.Amount),
				PaymentMethod: e.PaymentMethod,
				Receipt:       e.ReceiptPath,
				Date:          e.Date.String(),
			})
		}
	}

	flash, errMsg := pageFlash(r)
	s.render(w, r, "expenses.html", expensesPage{
		Active:          "expenses",
		Flash:           flash,
		Error:           errMsg,
		Projects:        projects,
		SelectedProject: filter.ProjectID,
		Expenses:        views,
		Total:           formatDollars(total),
		Categories:      s.categories,
		Methods:         core.PaymentMethods(),
		FilterCategory:  filter.Category,
		FilterVendor:    filter.Vendor,
		FilterFrom:      filter.From.String(),
		FilterTo:        filter.To.String(),
	})
}

func (s *Server) expenseFromForm(r *http.Request) (core.Expense, error) {
	projectID, err := parseID(r.Form.Get("project_id"))
	if err != nil {
		return core.Expense{}, &core.ValidationError{Field: "project_id", Reason: "required"}
	}
	amount, err := formMoney(r.Form, "amount")
	if err != nil {
		return core.Expense{}, err
	}
	date, err := formDate(r.Form, "date")
	if err != nil {
		return core.Expense{}, err
	}
	return core.Expense{
		ProjectID:     projectID,
		Category:      sanitizeInput(r.Form.Get("category")),
		Vendor:        sanitizeInput(r.Form.Get("vendor")),
		Description:   sanitizeInput(r.Form.Get("description")),
		Amount:        amount,
		PaymentMethod: core.PaymentMethod(r.Form.Get("payment_method")),
		Date:          date,
	}, nil
}

// createExpense persists the expense row, then the receipt file, then the
// receipt reference. The reference is only written after the file is fully
// committed on disk; if any later step fails the whole create is unwound so
// no record ends up pointing at a missing or partial file.
func (s *Server) createExpense(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	e, err := s.expenseFromForm(r)
	if err != nil {
		redirectWithError(w, r, "/expenses", err)
		return
	}

	id, err := s.repo.CreateExpense(r.Context(), e)
	if err != nil {
		redirectWithError(w, r, "/expenses", err)
		return
	}

	file, header, err := r.FormFile("receipt")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		// No receipt attached; nothing else to do.
	case err != nil:
		s.unwindExpense(r, id, "")
		redirectWithError(w, r, "/expenses", core.ErrReceiptIO)
		return
	default:
		defer file.Close()
		ref, saveErr := s.receipts.Save(id, header.Filename, file)
		if saveErr != nil {
			slog.ErrorContext(r.Context(), "Receipt save failed", "expense_id", id, "error", saveErr)
			s.unwindExpense(r, id, "")
			redirectWithError(w, r, "/expenses", saveErr)
			return
		}
		if err := s.repo.SetExpenseReceipt(r.Context(), id, ref); err != nil {
			slog.ErrorContext(r.Context(), "Receipt reference update failed", "expense_id", id, "error", err)
			s.unwindExpense(r, id, ref)
			redirectWithError(w, r, "/expenses", err)
			return
		}
	}

	slog.InfoContext(r.Context(), "Expense created via UI",
		"id", id, "project_id", e.ProjectID, "amount_cents", e.Amount.Cents)
	s.invalidateSummary(e.ProjectID)
	redirectWithFlash(w, r, "/expenses", "Expense added")
}

// unwindExpense removes a partially created expense and its file, best
// effort, so a failed create leaves nothing behind.
func (s *Server) unwindExpense(r *http.Request, id int64, ref string) {
	if ref != "" {
		if err := s.receipts.Remove(ref); err != nil {
			slog.WarnContext(r.Context(), "Could not remove receipt during unwind", "ref", ref, "error", err)
		}
	}
	if err := s.repo.DeleteExpense(r.Context(), id); err != nil {
		slog.WarnContext(r.Context(), "Could not remove expense during unwind", "id", id, "error", err)
	}
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
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

	e, err := s.repo.GetExpense(r.Context(), id)
	if err != nil {
		redirectWithError(w, r, "/expenses", err)
		return
	}
	if err := s.repo.DeleteExpense(r.Context(), id); err != nil {
		redirectWithError(w, r, "/expenses", err)
		return
	}
	if e.ReceiptPath != "" {
		if err := s.receipts.Remove(e.ReceiptPath); err != nil {
			slog.WarnContext(r.Context(), "Orphaned receipt file left behind",
				"expense_id", id, "receipt", e.ReceiptPath, "error", err)
		}
	}
	s.invalidateSummary(e.ProjectID)
	redirectWithFlash(w, r, "/expenses", "Expense deleted")
}

// handleReceipt streams a stored receipt file for download.
func (s *Server) handleReceipt(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	ref := strings.TrimPrefix(r.URL.Path, "/receipts/")
	rc, err := s.receipts.Open(ref)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="`+ref+`"`)
	if _, err := io.Copy(w, rc); err != nil {
		slog.WarnContext(r.Context(), "Receipt download aborted", "ref", ref, "error", err)
	}
}

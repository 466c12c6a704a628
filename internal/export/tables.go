package export

import (
	"sort"
	"strconv"

	"jobtrack/internal/core"
)

// Stable column orders. Downstream import mappings depend on these; append
// only, never reorder or rename.
var (
	ProjectColumns = []string{"id", "name", "client_name", "address", "start_date", "end_date", "status", "notes"}
	TaskColumns    = []string{"id", "project_id", "title", "description", "status", "due_date", "assignee", "estimated_hours", "spent_hours"}
	ExpenseColumns = []string{"id", "project_id", "category", "vendor", "description", "amount", "payment_method", "receipt", "date"}
	IncomeColumns  = []string{"id", "project_id", "source", "description", "amount", "payment_method", "date"}
	SummaryColumns = []string{"section", "key", "value"}
)

func ProjectRows(projects []core.Project) []Row {
	rows := make([]Row, 0, len(projects))
	for _, p := range projects {
		rows = append(rows, Row{
			"id":          strconv.FormatInt(p.ID, 10),
			"name":        p.Name,
			"client_name": p.ClientName,
			"address":     p.Address,
			"start_date":  p.StartDate.String(),
			"end_date":    p.EndDate.String(),
			"status":      string(p.Status),
			"notes":       p.Notes,
		})
	}
	return rows
}

func TaskRows(tasks []core.Task) []Row {
	rows := make([]Row, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, Row{
			"id":              strconv.FormatInt(t.ID, 10),
			"project_id":      strconv.FormatInt(t.ProjectID, 10),
			"title":           t.Title,
			"description":     t.Description,
			"status":          string(t.Status),
			"due_date":        t.DueDate.String(),
			"assignee":        t.Assignee,
			"estimated_hours": t.EstimatedHours.String(),
			"spent_hours":     t.SpentHours.String(),
		})
	}
	return rows
}

func ExpenseRows(expenses []core.Expense) []Row {
	rows := make([]Row, 0, len(expenses))
	for _, e := range expenses {
		rows = append(rows, Row{
			"id":             strconv.FormatInt(e.ID, 10),
			"project_id":     strconv.FormatInt(e.ProjectID, 10),
			"category":       e.Category,
			"vendor":         e.Vendor,
			"description":    e.Description,
			"amount":         e.Amount.String(),
			"payment_method": string(e.PaymentMethod),
			"receipt":        e.ReceiptPath,
			"date":           e.Date.String(),
		})
	}
	return rows
}

func IncomeRows(incomes []core.Income) []Row {
	rows := make([]Row, 0, len(incomes))
	for _, in := range incomes {
		rows = append(rows, Row{
			"id":             strconv.FormatInt(in.ID, 10),
			"project_id":     strconv.FormatInt(in.ProjectID, 10),
			"source":         in.Source,
			"description":    in.Description,
			"amount":         in.Amount.String(),
			"payment_method": string(in.PaymentMethod),
			"date":           in.Date.String(),
		})
	}
	return rows
}

// SummaryRows flattens a summary to one row per bucket: the fixed totals
// first, then category buckets (sorted for a deterministic file), then
// payment-method and task-status buckets in enum order.
func SummaryRows(s core.Summary) []Row {
	rows := []Row{
		summaryRow("totals", "estimated_hours", s.EstimatedHours.String()),
		summaryRow("totals", "spent_hours", s.SpentHours.String()),
		summaryRow("totals", "expense_total", s.ExpenseTotal.String()),
		summaryRow("totals", "income_total", s.IncomeTotal.String()),
		summaryRow("totals", "profit", s.Profit.String()),
		summaryRow("totals", "tasks_total", strconv.Itoa(s.TasksTotal)),
		summaryRow("totals", "tasks_done", strconv.Itoa(s.TasksDone)),
	}

	categories := make([]string, 0, len(s.ExpenseByCategory))
	for cat := range s.ExpenseByCategory {
		categories = append(categories, cat)
	}
	sort.Strings(categories)
	for _, cat := range categories {
		rows = append(rows, summaryRow("expense_by_category", cat, s.ExpenseByCategory[cat].String()))
	}

	for _, method := range core.PaymentMethods() {
		if amt, ok := s.ExpenseByPayment[method]; ok {
			rows = append(rows, summaryRow("expense_by_payment_method", string(method), amt.String()))
		}
	}

	for _, status := range core.TaskStatuses() {
		if n, ok := s.TaskCountsByStatus[status]; ok {
			rows = append(rows, summaryRow("task_counts_by_status", string(status), strconv.Itoa(n)))
		}
	}

	return rows
}

func summaryRow(section, key, value string) Row {
	return Row{"section": section, "key": key, "value": value}
}

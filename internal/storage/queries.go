package storage

import (
	"database/sql"
	"fmt"
	"strings"

	"jobtrack/internal/core"
)

// cond is one optional WHERE clause with its argument.
type cond struct {
	clause string
	arg    any
	apply  bool
}

// buildWhere joins the active conditions with AND. Returns an empty string
// and no args when nothing applies, so callers can always concatenate.
func buildWhere(conds ...cond) (string, []any) {
	var clauses []string
	var args []any
	for _, c := range conds {
		if c.apply {
			clauses = append(clauses, c.clause)
			args = append(args, c.arg)
		}
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// likePattern builds a case-insensitive contains pattern, escaping LIKE
// metacharacters in the user-supplied fragment.
func likePattern(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return "%" + s + "%"
}

// requireRow converts a zero-row write into core.ErrNotFound.
func requireRow(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("id %d: %w", id, core.ErrNotFound)
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanProject(s scanner) (core.Project, error) {
	var (
		p                  core.Project
		status             string
		startDate, endDate string
	)
	if err := s.Scan(&p.ID, &p.Name, &p.ClientName, &p.Address, &startDate, &endDate, &status, &p.Notes); err != nil {
		return core.Project{}, err
	}
	p.Status = core.ProjectStatus(status)
	var err error
	if p.StartDate, err = core.ParseDate(startDate); err != nil {
		return core.Project{}, fmt.Errorf("stored start date %q: %w", startDate, err)
	}
	if p.EndDate, err = core.ParseDate(endDate); err != nil {
		return core.Project{}, fmt.Errorf("stored end date %q: %w", endDate, err)
	}
	return p, nil
}

func scanTask(s scanner) (core.Task, error) {
	var (
		t       core.Task
		status  string
		dueDate string
	)
	if err := s.Scan(&t.ID, &t.ProjectID, &t.Title, &t.Description, &status, &dueDate, &t.Assignee,
		&t.EstimatedHours.Tenths, &t.SpentHours.Tenths); err != nil {
		return core.Task{}, err
	}
	t.Status = core.TaskStatus(status)
	var err error
	if t.DueDate, err = core.ParseDate(dueDate); err != nil {
		return core.Task{}, fmt.Errorf("stored due date %q: %w", dueDate, err)
	}
	return t, nil
}

func scanExpense(s scanner) (core.Expense, error) {
	var (
		e          core.Expense
		method     string
		incurredOn string
	)
	if err := s.Scan(&e.ID, &e.ProjectID, &e.Category, &e.Vendor, &e.Description, &e.Amount.Cents,
		&method, &e.ReceiptPath, &incurredOn); err != nil {
		return core.Expense{}, err
	}
	e.PaymentMethod = core.PaymentMethod(method)
	var err error
	if e.Date, err = core.ParseDate(incurredOn); err != nil {
		return core.Expense{}, fmt.Errorf("stored expense date %q: %w", incurredOn, err)
	}
	return e, nil
}

func scanIncome(s scanner) (core.Income, error) {
	var (
		in         core.Income
		method     string
		receivedOn string
	)
	if err := s.Scan(&in.ID, &in.ProjectID, &in.Source, &in.Description, &in.Amount.Cents,
		&method, &receivedOn); err != nil {
		return core.Income{}, err
	}
	in.PaymentMethod = core.PaymentMethod(method)
	var err error
	if in.Date, err = core.ParseDate(receivedOn); err != nil {
		return core.Income{}, fmt.Errorf("stored income date %q: %w", receivedOn, err)
	}
	return in, nil
}

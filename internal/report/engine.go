// Package report computes per-project financial rollups.
//
// The engine reads through the repository and folds the rows in one pass;
// no aggregation happens in SQL so the totals are trivially cross-checkable
// against the raw listings.
package report

import (
	"context"
	"fmt"

	"jobtrack/internal/core"
	"jobtrack/internal/storage"
)

// DataSource is the slice of the repository the engine reads through.
type DataSource interface {
	GetProject(ctx context.Context, id int64) (core.Project, error)
	ListTasks(ctx context.Context, f storage.TaskFilter) ([]core.Task, error)
	ListExpenses(ctx context.Context, f storage.ExpenseFilter) ([]core.Expense, error)
	ListIncomes(ctx context.Context, f storage.IncomeFilter) ([]core.Income, error)
}

type Engine struct {
	source DataSource
}

func NewEngine(source DataSource) *Engine {
	return &Engine{source: source}
}

// ProjectSummary aggregates a project's tasks, expenses and incomes.
// Grouping keys are the stored strings, matched exactly and
// case-sensitively. A project with no rows yields zero totals and empty
// maps; a project id that does not resolve yields core.ErrNotFound.
func (e *Engine) ProjectSummary(ctx context.Context, projectID int64) (core.Summary, error) {
	if _, err := e.source.GetProject(ctx, projectID); err != nil {
		return core.Summary{}, fmt.Errorf("summary project: %w", err)
	}

	tasks, err := e.source.ListTasks(ctx, storage.TaskFilter{ProjectID: projectID})
	if err != nil {
		return core.Summary{}, fmt.Errorf("summary tasks: %w", err)
	}
	expenses, err := e.source.ListExpenses(ctx, storage.ExpenseFilter{ProjectID: projectID})
	if err != nil {
		return core.Summary{}, fmt.Errorf("summary expenses: %w", err)
	}
	incomes, err := e.source.ListIncomes(ctx, storage.IncomeFilter{ProjectID: projectID})
	if err != nil {
		return core.Summary{}, fmt.Errorf("summary incomes: %w", err)
	}

	s := core.NewSummary(projectID)

	for _, t := range tasks {
		s.EstimatedHours = s.EstimatedHours.Add(t.EstimatedHours)
		s.SpentHours = s.SpentHours.Add(t.SpentHours)
		s.TaskCountsByStatus[t.Status]++
		s.TasksTotal++
		if t.Status == core.TaskDone {
			s.TasksDone++
		}
	}

	for _, ex := range expenses {
		s.ExpenseTotal = s.ExpenseTotal.Add(ex.Amount)
		s.ExpenseByCategory[ex.Category] = s.ExpenseByCategory[ex.Category].Add(ex.Amount)
		s.ExpenseByPayment[ex.PaymentMethod] = s.ExpenseByPayment[ex.PaymentMethod].Add(ex.Amount)
	}

	for _, in := range incomes {
		s.IncomeTotal = s.IncomeTotal.Add(in.Amount)
	}

	s.Profit = s.IncomeTotal.Sub(s.ExpenseTotal)
	return s, nil
}

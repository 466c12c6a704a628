package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"jobtrack/internal/core"
)

func newTestRepo(t *testing.T, opts Options) *Repository {
	t.Helper()
	repo, err := Open(filepath.Join(t.TempDir(), "jobtrack.db"), opts)
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedProject(t *testing.T, repo *Repository) int64 {
	t.Helper()
	id, err := repo.CreateProject(context.Background(), core.Project{
		Name:       "123 Main St remodel",
		ClientName: "John Smith",
		Address:    "123 Main St, Florissant, MO",
		StartDate:  core.NewDate(2025, 3, 1),
		Status:     core.ProjectActive,
	})
	if err != nil {
		t.Fatalf("seed project: %v", err)
	}
	return id
}

func TestProjectRoundTrip(t *testing.T) {
	repo := newTestRepo(t, Options{})
	ctx := context.Background()

	want := core.Project{
		Name:       "Kitchen remodel - Smith",
		ClientName: "John Smith",
		Address:    "123 Main St",
		StartDate:  core.NewDate(2025, 3, 1),
		EndDate:    core.NewDate(2025, 6, 30),
		Status:     core.ProjectPlanned,
		Notes:      "waiting on permits",
	}
	id, err := repo.CreateProject(ctx, want)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	want.ID = id

	got, err := repo.GetProject(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("project mismatch (-want +got):\n%s", diff)
	}
}

func TestGetProjectNotFound(t *testing.T) {
	repo := newTestRepo(t, Options{})
	_, err := repo.GetProject(context.Background(), 999)
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateProjectValidation(t *testing.T) {
	repo := newTestRepo(t, Options{})
	_, err := repo.CreateProject(context.Background(), core.Project{Status: core.ProjectPlanned})
	if !core.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestUpdateProjectIdempotent(t *testing.T) {
	repo := newTestRepo(t, Options{})
	ctx := context.Background()
	id := seedProject(t, repo)

	p, err := repo.GetProject(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	p.Status = core.ProjectOnHold
	p.Notes = "rain delay"

	if err := repo.UpdateProject(ctx, p); err != nil {
		t.Fatalf("first update: %v", err)
	}
	after1, err := repo.GetProject(ctx, id)
	if err != nil {
		t.Fatalf("get after first update: %v", err)
	}
	if err := repo.UpdateProject(ctx, p); err != nil {
		t.Fatalf("second update: %v", err)
	}
	after2, err := repo.GetProject(ctx, id)
	if err != nil {
		t.Fatalf("get after second update: %v", err)
	}
	if diff := cmp.Diff(after1, after2); diff != "" {
		t.Fatalf("repeated update changed state (-first +second):\n%s", diff)
	}
}

func TestUpdateMissingProject(t *testing.T) {
	repo := newTestRepo(t, Options{})
	err := repo.UpdateProject(context.Background(), core.Project{
		ID:        42,
		Name:      "ghost",
		StartDate: core.NewDate(2025, 1, 1),
		Status:    core.ProjectPlanned,
	})
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTaskForeignKeyValidation(t *testing.T) {
	repo := newTestRepo(t, Options{})
	_, err := repo.CreateTask(context.Background(), core.Task{
		ProjectID: 12345,
		Title:     "Demo cabinets",
		Status:    core.TaskTodo,
	})
	var ve *core.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for dangling project id, got %v", err)
	}
	if ve.Field != "project_id" {
		t.Fatalf("Field = %q, want project_id", ve.Field)
	}
}

func TestUpdateForeignKeyValidation(t *testing.T) {
	repo := newTestRepo(t, Options{})
	ctx := context.Background()
	id := seedProject(t, repo)

	taskID, err := repo.CreateTask(ctx, core.Task{ProjectID: id, Title: "Demo cabinets", Status: core.TaskTodo})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	expID, err := repo.CreateExpense(ctx, core.Expense{
		ProjectID: id, Category: "Tools", Amount: core.Money{Cents: 500},
		PaymentMethod: core.PayCash, Date: core.NewDate(2025, 3, 2),
	})
	if err != nil {
		t.Fatalf("create expense: %v", err)
	}
	incID, err := repo.CreateIncome(ctx, core.Income{
		ProjectID: id, Source: "Invoice #1", Amount: core.Money{Cents: 1000},
		PaymentMethod: core.PayCheck, Date: core.NewDate(2025, 3, 3),
	})
	if err != nil {
		t.Fatalf("create income: %v", err)
	}

	// Re-pointing a row at a project that does not exist must surface the
	// same typed error the create paths produce.
	updates := map[string]error{
		"task": repo.UpdateTask(ctx, core.Task{
			ID: taskID, ProjectID: 9999, Title: "Demo cabinets", Status: core.TaskTodo,
		}),
		"expense": repo.UpdateExpense(ctx, core.Expense{
			ID: expID, ProjectID: 9999, Category: "Tools", Amount: core.Money{Cents: 500},
			PaymentMethod: core.PayCash, Date: core.NewDate(2025, 3, 2),
		}),
		"income": repo.UpdateIncome(ctx, core.Income{
			ID: incID, ProjectID: 9999, Source: "Invoice #1", Amount: core.Money{Cents: 1000},
			PaymentMethod: core.PayCheck, Date: core.NewDate(2025, 3, 3),
		}),
	}
	for entity, err := range updates {
		var ve *core.ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("%s: expected ValidationError for dangling project id, got %v", entity, err)
		}
		if ve.Field != "project_id" {
			t.Fatalf("%s: Field = %q, want project_id", entity, ve.Field)
		}
	}
}

func TestDeleteProjectDependentsBlocked(t *testing.T) {
	repo := newTestRepo(t, Options{})
	ctx := context.Background()
	id := seedProject(t, repo)

	if _, err := repo.CreateTask(ctx, core.Task{ProjectID: id, Title: "Demo", Status: core.TaskTodo}); err != nil {
		t.Fatalf("create task: %v", err)
	}

	err := repo.DeleteProject(ctx, id)
	if !errors.Is(err, core.ErrHasDependents) {
		t.Fatalf("expected ErrHasDependents, got %v", err)
	}

	// Still present after the failed delete.
	if _, err := repo.GetProject(ctx, id); err != nil {
		t.Fatalf("project should survive blocked delete: %v", err)
	}
}

func TestDeleteProjectWithoutDependents(t *testing.T) {
	repo := newTestRepo(t, Options{})
	ctx := context.Background()
	id := seedProject(t, repo)

	if err := repo.DeleteProject(ctx, id); err != nil {
		t.Fatalf("delete empty project: %v", err)
	}
	if _, err := repo.GetProject(ctx, id); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestDeleteProjectCascade(t *testing.T) {
	repo := newTestRepo(t, Options{CascadeDelete: true})
	ctx := context.Background()
	id := seedProject(t, repo)

	if _, err := repo.CreateTask(ctx, core.Task{ProjectID: id, Title: "Demo", Status: core.TaskTodo}); err != nil {
		t.Fatalf("create task: %v", err)
	}
	if _, err := repo.CreateExpense(ctx, core.Expense{
		ProjectID: id, Category: "Lumber", Amount: core.Money{Cents: 500},
		PaymentMethod: core.PayCash, Date: core.NewDate(2025, 3, 5),
	}); err != nil {
		t.Fatalf("create expense: %v", err)
	}

	if err := repo.DeleteProject(ctx, id); err != nil {
		t.Fatalf("cascade delete: %v", err)
	}

	tasks, err := repo.ListTasks(ctx, TaskFilter{ProjectID: id})
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("cascade left %d tasks", len(tasks))
	}
	expenses, err := repo.ListExpenses(ctx, ExpenseFilter{ProjectID: id})
	if err != nil {
		t.Fatalf("list expenses: %v", err)
	}
	if len(expenses) != 0 {
		t.Fatalf("cascade left %d expenses", len(expenses))
	}
}

func TestListTasksFilters(t *testing.T) {
	repo := newTestRepo(t, Options{})
	ctx := context.Background()
	id := seedProject(t, repo)

	seed := []core.Task{
		{ProjectID: id, Title: "Demo cabinets", Status: core.TaskDone, Assignee: "Tyler", DueDate: core.NewDate(2025, 3, 10)},
		{ProjectID: id, Title: "Hang drywall", Status: core.TaskInProgress, Assignee: "Maria", DueDate: core.NewDate(2025, 4, 2)},
		{ProjectID: id, Title: "Order fixtures", Status: core.TaskTodo, Assignee: "tyler j"},
	}
	for _, tk := range seed {
		if _, err := repo.CreateTask(ctx, tk); err != nil {
			t.Fatalf("create task %q: %v", tk.Title, err)
		}
	}

	t.Run("by status", func(t *testing.T) {
		got, err := repo.ListTasks(ctx, TaskFilter{ProjectID: id, Status: core.TaskDone})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(got) != 1 || got[0].Title != "Demo cabinets" {
			t.Fatalf("status filter got %+v", got)
		}
	})

	t.Run("status with no matches is empty not error", func(t *testing.T) {
		got, err := repo.ListTasks(ctx, TaskFilter{ProjectID: id, Status: core.TaskBlocked})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(got) != 0 {
			t.Fatalf("expected empty result, got %d", len(got))
		}
	})

	t.Run("assignee contains is case-insensitive", func(t *testing.T) {
		got, err := repo.ListTasks(ctx, TaskFilter{ProjectID: id, Assignee: "tyler"})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("assignee filter got %d tasks, want 2", len(got))
		}
	})

	t.Run("due date range excludes undated tasks", func(t *testing.T) {
		got, err := repo.ListTasks(ctx, TaskFilter{
			ProjectID: id,
			From:      core.NewDate(2025, 3, 1),
			To:        core.NewDate(2025, 3, 31),
		})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(got) != 1 || got[0].Title != "Demo cabinets" {
			t.Fatalf("date range got %+v", got)
		}
	})

	t.Run("restartable", func(t *testing.T) {
		f := TaskFilter{ProjectID: id}
		first, err := repo.ListTasks(ctx, f)
		if err != nil {
			t.Fatalf("first list: %v", err)
		}
		second, err := repo.ListTasks(ctx, f)
		if err != nil {
			t.Fatalf("second list: %v", err)
		}
		if diff := cmp.Diff(first, second); diff != "" {
			t.Fatalf("re-running the same filter differed:\n%s", diff)
		}
	})
}

func TestListExpensesFilters(t *testing.T) {
	repo := newTestRepo(t, Options{})
	ctx := context.Background()
	id := seedProject(t, repo)

	seed := []core.Expense{
		{ProjectID: id, Category: "Lumber", Vendor: "Home Depot", Amount: core.Money{Cents: 50000}, PaymentMethod: core.PayCreditCard, Date: core.NewDate(2025, 3, 5)},
		{ProjectID: id, Category: "Lumber", Vendor: "Menards", Amount: core.Money{Cents: 25050}, PaymentMethod: core.PayCash, Date: core.NewDate(2025, 3, 20)},
		{ProjectID: id, Category: "Permits", Vendor: "City of Florissant", Amount: core.Money{Cents: 7500}, PaymentMethod: core.PayCheck, Date: core.NewDate(2025, 4, 1)},
	}
	for _, e := range seed {
		if _, err := repo.CreateExpense(ctx, e); err != nil {
			t.Fatalf("create expense: %v", err)
		}
	}

	t.Run("by category exact", func(t *testing.T) {
		got, err := repo.ListExpenses(ctx, ExpenseFilter{ProjectID: id, Category: "Lumber"})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("category filter got %d, want 2", len(got))
		}
	})

	t.Run("category match is case-sensitive", func(t *testing.T) {
		got, err := repo.ListExpenses(ctx, ExpenseFilter{ProjectID: id, Category: "lumber"})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(got) != 0 {
			t.Fatalf("lowercase category should not match, got %d", len(got))
		}
	})

	t.Run("vendor contains", func(t *testing.T) {
		got, err := repo.ListExpenses(ctx, ExpenseFilter{ProjectID: id, Vendor: "depot"})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(got) != 1 || got[0].Vendor != "Home Depot" {
			t.Fatalf("vendor filter got %+v", got)
		}
	})

	t.Run("date range inclusive", func(t *testing.T) {
		got, err := repo.ListExpenses(ctx, ExpenseFilter{
			ProjectID: id,
			From:      core.NewDate(2025, 3, 20),
			To:        core.NewDate(2025, 4, 1),
		})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("date range got %d, want 2", len(got))
		}
	})

	t.Run("ordered by date descending", func(t *testing.T) {
		got, err := repo.ListExpenses(ctx, ExpenseFilter{ProjectID: id})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(got) != 3 || got[0].Category != "Permits" {
			t.Fatalf("expected newest first, got %+v", got)
		}
	})
}

func TestSetExpenseReceipt(t *testing.T) {
	repo := newTestRepo(t, Options{})
	ctx := context.Background()
	id := seedProject(t, repo)

	expID, err := repo.CreateExpense(ctx, core.Expense{
		ProjectID: id, Category: "Tools", Amount: core.Money{Cents: 1999},
		PaymentMethod: core.PayCreditCard, Date: core.NewDate(2025, 3, 12),
	})
	if err != nil {
		t.Fatalf("create expense: %v", err)
	}

	if err := repo.SetExpenseReceipt(ctx, expID, "17.pdf"); err != nil {
		t.Fatalf("set receipt: %v", err)
	}
	e, err := repo.GetExpense(ctx, expID)
	if err != nil {
		t.Fatalf("get expense: %v", err)
	}
	if e.ReceiptPath != "17.pdf" {
		t.Fatalf("receipt path = %q", e.ReceiptPath)
	}

	if err := repo.SetExpenseReceipt(ctx, 9999, "x.pdf"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing expense, got %v", err)
	}
}

func TestIncomeRoundTrip(t *testing.T) {
	repo := newTestRepo(t, Options{})
	ctx := context.Background()
	id := seedProject(t, repo)

	want := core.Income{
		ProjectID:     id,
		Source:        "Invoice #123",
		Description:   "Deposit",
		Amount:        core.Money{Cents: 250000},
		PaymentMethod: core.PayCheck,
		Date:          core.NewDate(2025, 3, 15),
	}
	incID, err := repo.CreateIncome(ctx, want)
	if err != nil {
		t.Fatalf("create income: %v", err)
	}
	want.ID = incID

	got, err := repo.GetIncome(ctx, incID)
	if err != nil {
		t.Fatalf("get income: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("income mismatch (-want +got):\n%s", diff)
	}
}

func TestZeroAmountExpenseIsValid(t *testing.T) {
	repo := newTestRepo(t, Options{})
	ctx := context.Background()
	id := seedProject(t, repo)

	expID, err := repo.CreateExpense(ctx, core.Expense{
		ProjectID: id, Category: "Other", Amount: core.Money{},
		PaymentMethod: core.PayOther, Date: core.NewDate(2025, 3, 1),
	})
	if err != nil {
		t.Fatalf("zero amount expense rejected: %v", err)
	}
	e, err := repo.GetExpense(ctx, expID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if e.Amount.Cents != 0 {
		t.Fatalf("amount = %d", e.Amount.Cents)
	}
}

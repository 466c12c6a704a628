// Package storage persists the job tracker schema in a local SQLite file.
//
// All writes go through a single *sql.DB opened at startup and closed at
// shutdown; SQLite's own locking covers the single-writer assumption. Every
// statement commits immediately, there is no cross-call batching.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"jobtrack/internal/core"

	_ "modernc.org/sqlite"
)

// Repository is the SQLite-backed store for projects, tasks, expenses and
// incomes. Foreign keys are enforced at the connection level; creates of
// dependent rows additionally resolve the project first so a dangling
// reference surfaces as a ValidationError instead of a driver error.
type Repository struct {
	db            *sql.DB
	cascadeDelete bool
}

// Options controls repository behavior.
type Options struct {
	// CascadeDelete makes DeleteProject remove dependent tasks, expenses
	// and incomes in the same transaction. When false, deleting a project
	// that still owns rows fails with core.ErrHasDependents.
	CascadeDelete bool
}

// Open opens (creating if needed) the database at dbPath and runs pending
// migrations.
func Open(dbPath string, opts Options) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", "file:"+dbPath+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db, cascadeDelete: opts.CascadeDelete}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// TaskFilter narrows ListTasks. Zero fields are ignored. From/To bound the
// due date inclusively; tasks without a due date never match a date range.
type TaskFilter struct {
	ProjectID int64
	Status    core.TaskStatus
	Assignee  string // substring match, case-insensitive
	From      core.Date
	To        core.Date
}

// ExpenseFilter narrows ListExpenses. Zero fields are ignored. Category is
// an exact match on the stored string; Vendor is a case-insensitive
// substring match. From/To bound the incurred date inclusively.
type ExpenseFilter struct {
	ProjectID     int64
	Category      string
	Vendor        string
	PaymentMethod core.PaymentMethod
	From          core.Date
	To            core.Date
}

// IncomeFilter narrows ListIncomes. Zero fields are ignored.
type IncomeFilter struct {
	ProjectID int64
	From      core.Date
	To        core.Date
}

// projectExists resolves a project id, distinguishing a missing row from a
// query failure.
func (r *Repository) projectExists(ctx context.Context, id int64) error {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM projects WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return &core.ValidationError{Field: "project_id", Reason: fmt.Sprintf("project %d does not exist", id)}
	}
	if err != nil {
		return fmt.Errorf("resolve project %d: %w", id, err)
	}
	return nil
}

// ---- Projects ----

func (r *Repository) CreateProject(ctx context.Context, p core.Project) (int64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO projects (name, client_name, address, start_date, end_date, status, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.Name, p.ClientName, p.Address, p.StartDate.String(), p.EndDate.String(), string(p.Status), p.Notes)
	if err != nil {
		return 0, fmt.Errorf("insert project: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("project insert id: %w", err)
	}
	slog.InfoContext(ctx, "Project created", "id", id, "name", p.Name, "status", p.Status)
	return id, nil
}

func (r *Repository) GetProject(ctx context.Context, id int64) (core.Project, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, client_name, address, start_date, end_date, status, notes
		 FROM projects WHERE id = ?`, id)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Project{}, fmt.Errorf("project %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Project{}, fmt.Errorf("get project %d: %w", id, err)
	}
	return p, nil
}

// UpdateProject replaces the stored row with p (full-row update, keyed by
// p.ID). Re-issuing the same update is a no-op on the stored state.
func (r *Repository) UpdateProject(ctx context.Context, p core.Project) error {
	if err := p.Validate(); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE projects SET name = ?, client_name = ?, address = ?, start_date = ?, end_date = ?, status = ?, notes = ?
		 WHERE id = ?`,
		p.Name, p.ClientName, p.Address, p.StartDate.String(), p.EndDate.String(), string(p.Status), p.Notes, p.ID)
	if err != nil {
		return fmt.Errorf("update project %d: %w", p.ID, err)
	}
	return requireRow(res, p.ID)
}

// DeleteProject removes a project. With cascade disabled a project that
// still owns tasks, expenses or incomes fails with core.ErrHasDependents;
// with cascade enabled the dependent rows go in the same transaction.
func (r *Repository) DeleteProject(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete project %d: %w", id, err)
	}
	defer tx.Rollback()

	var dependents int64
	err = tx.QueryRowContext(ctx,
		`SELECT (SELECT COUNT(*) FROM tasks WHERE project_id = ?)
		      + (SELECT COUNT(*) FROM expenses WHERE project_id = ?)
		      + (SELECT COUNT(*) FROM incomes WHERE project_id = ?)`,
		id, id, id).Scan(&dependents)
	if err != nil {
		return fmt.Errorf("count project %d dependents: %w", id, err)
	}

	if dependents > 0 {
		if !r.cascadeDelete {
			return fmt.Errorf("project %d has %d dependent rows: %w", id, dependents, core.ErrHasDependents)
		}
		for _, table := range []string{"tasks", "expenses", "incomes"} {
			if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE project_id = ?`, id); err != nil {
				return fmt.Errorf("cascade delete %s of project %d: %w", table, id, err)
			}
		}
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete project %d: %w", id, err)
	}
	if err := requireRow(res, id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete project %d: %w", id, err)
	}
	slog.InfoContext(ctx, "Project deleted", "id", id, "cascaded_rows", dependents)
	return nil
}

func (r *Repository) ListProjects(ctx context.Context) ([]core.Project, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, client_name, address, start_date, end_date, status, notes
		 FROM projects ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []core.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// ---- Tasks ----

func (r *Repository) CreateTask(ctx context.Context, t core.Task) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}
	if err := r.projectExists(ctx, t.ProjectID); err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (project_id, title, description, status, due_date, assignee, estimated_tenths, spent_tenths)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ProjectID, t.Title, t.Description, string(t.Status), t.DueDate.String(), t.Assignee,
		t.EstimatedHours.Tenths, t.SpentHours.Tenths)
	if err != nil {
		return 0, fmt.Errorf("insert task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("task insert id: %w", err)
	}
	slog.InfoContext(ctx, "Task created", "id", id, "project_id", t.ProjectID, "title", t.Title)
	return id, nil
}

func (r *Repository) GetTask(ctx context.Context, id int64) (core.Task, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, project_id, title, description, status, due_date, assignee, estimated_tenths, spent_tenths
		 FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Task{}, fmt.Errorf("task %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Task{}, fmt.Errorf("get task %d: %w", id, err)
	}
	return t, nil
}

func (r *Repository) UpdateTask(ctx context.Context, t core.Task) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if err := r.projectExists(ctx, t.ProjectID); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET project_id = ?, title = ?, description = ?, status = ?, due_date = ?, assignee = ?,
		        estimated_tenths = ?, spent_tenths = ?
		 WHERE id = ?`,
		t.ProjectID, t.Title, t.Description, string(t.Status), t.DueDate.String(), t.Assignee,
		t.EstimatedHours.Tenths, t.SpentHours.Tenths, t.ID)
	if err != nil {
		return fmt.Errorf("update task %d: %w", t.ID, err)
	}
	return requireRow(res, t.ID)
}

func (r *Repository) DeleteTask(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	return requireRow(res, id)
}

func (r *Repository) ListTasks(ctx context.Context, f TaskFilter) ([]core.Task, error) {
	query := `SELECT id, project_id, title, description, status, due_date, assignee, estimated_tenths, spent_tenths
	          FROM tasks`
	where, args := buildWhere(
		cond{"project_id = ?", f.ProjectID, f.ProjectID > 0},
		cond{"status = ?", string(f.Status), f.Status != ""},
		cond{`assignee LIKE ? ESCAPE '\'`, likePattern(f.Assignee), f.Assignee != ""},
		cond{"due_date >= ?", f.From.String(), !f.From.IsEmpty()},
		cond{"due_date <= ? AND due_date != ''", f.To.String(), !f.To.IsEmpty()},
	)
	rows, err := r.db.QueryContext(ctx, query+where+` ORDER BY id DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []core.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// ---- Expenses ----

func (r *Repository) CreateExpense(ctx context.Context, e core.Expense) (int64, error) {
	if err := e.Validate(); err != nil {
		return 0, err
	}
	if err := r.projectExists(ctx, e.ProjectID); err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (project_id, category, vendor, description, amount_cents, payment_method, receipt_path, incurred_on)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ProjectID, e.Category, e.Vendor, e.Description, e.Amount.Cents, string(e.PaymentMethod),
		e.ReceiptPath, e.Date.String())
	if err != nil {
		return 0, fmt.Errorf("insert expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("expense insert id: %w", err)
	}
	slog.InfoContext(ctx, "Expense created",
		"id", id, "project_id", e.ProjectID, "category", e.Category, "amount_cents", e.Amount.Cents)
	return id, nil
}

func (r *Repository) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, project_id, category, vendor, description, amount_cents, payment_method, receipt_path, incurred_on
		 FROM expenses WHERE id = ?`, id)
	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, fmt.Errorf("expense %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense %d: %w", id, err)
	}
	return e, nil
}

func (r *Repository) UpdateExpense(ctx context.Context, e core.Expense) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if err := r.projectExists(ctx, e.ProjectID); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET project_id = ?, category = ?, vendor = ?, description = ?, amount_cents = ?,
		        payment_method = ?, receipt_path = ?, incurred_on = ?
		 WHERE id = ?`,
		e.ProjectID, e.Category, e.Vendor, e.Description, e.Amount.Cents, string(e.PaymentMethod),
		e.ReceiptPath, e.Date.String(), e.ID)
	if err != nil {
		return fmt.Errorf("update expense %d: %w", e.ID, err)
	}
	return requireRow(res, e.ID)
}

// SetExpenseReceipt persists the stored receipt reference for an expense.
// This runs after the file itself is fully written, so a persisted
// reference always points at a committed file.
func (r *Repository) SetExpenseReceipt(ctx context.Context, id int64, receiptPath string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE expenses SET receipt_path = ? WHERE id = ?`, receiptPath, id)
	if err != nil {
		return fmt.Errorf("set expense %d receipt: %w", id, err)
	}
	return requireRow(res, id)
}

func (r *Repository) DeleteExpense(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete expense %d: %w", id, err)
	}
	return requireRow(res, id)
}

func (r *Repository) ListExpenses(ctx context.Context, f ExpenseFilter) ([]core.Expense, error) {
	query := `SELECT id, project_id, category, vendor, description, amount_cents, payment_method, receipt_path, incurred_on
	          FROM expenses`
	where, args := buildWhere(
		cond{"project_id = ?", f.ProjectID, f.ProjectID > 0},
		cond{"category = ?", f.Category, f.Category != ""},
		cond{`vendor LIKE ? ESCAPE '\'`, likePattern(f.Vendor), f.Vendor != ""},
		cond{"payment_method = ?", string(f.PaymentMethod), f.PaymentMethod != ""},
		cond{"incurred_on >= ?", f.From.String(), !f.From.IsEmpty()},
		cond{"incurred_on <= ?", f.To.String(), !f.To.IsEmpty()},
	)
	rows, err := r.db.QueryContext(ctx, query+where+` ORDER BY incurred_on DESC, id DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// ---- Incomes ----

func (r *Repository) CreateIncome(ctx context.Context, in core.Income) (int64, error) {
	if err := in.Validate(); err != nil {
		return 0, err
	}
	if err := r.projectExists(ctx, in.ProjectID); err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO incomes (project_id, source, description, amount_cents, payment_method, received_on)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		in.ProjectID, in.Source, in.Description, in.Amount.Cents, string(in.PaymentMethod), in.Date.String())
	if err != nil {
		return 0, fmt.Errorf("insert income: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("income insert id: %w", err)
	}
	slog.InfoContext(ctx, "Income created",
		"id", id, "project_id", in.ProjectID, "source", in.Source, "amount_cents", in.Amount.Cents)
	return id, nil
}

func (r *Repository) GetIncome(ctx context.Context, id int64) (core.Income, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, project_id, source, description, amount_cents, payment_method, received_on
		 FROM incomes WHERE id = ?`, id)
	in, err := scanIncome(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Income{}, fmt.Errorf("income %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Income{}, fmt.Errorf("get income %d: %w", id, err)
	}
	return in, nil
}

func (r *Repository) UpdateIncome(ctx context.Context, in core.Income) error {
	if err := in.Validate(); err != nil {
		return err
	}
	if err := r.projectExists(ctx, in.ProjectID); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE incomes SET project_id = ?, source = ?, description = ?, amount_cents = ?, payment_method = ?, received_on = ?
		 WHERE id = ?`,
		in.ProjectID, in.Source, in.Description, in.Amount.Cents, string(in.PaymentMethod), in.Date.String(), in.ID)
	if err != nil {
		return fmt.Errorf("update income %d: %w", in.ID, err)
	}
	return requireRow(res, in.ID)
}

func (r *Repository) DeleteIncome(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM incomes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete income %d: %w", id, err)
	}
	return requireRow(res, id)
}

func (r *Repository) ListIncomes(ctx context.Context, f IncomeFilter) ([]core.Income, error) {
	query := `SELECT id, project_id, source, description, amount_cents, payment_method, received_on
	          FROM incomes`
	where, args := buildWhere(
		cond{"project_id = ?", f.ProjectID, f.ProjectID > 0},
		cond{"received_on >= ?", f.From.String(), !f.From.IsEmpty()},
		cond{"received_on <= ?", f.To.String(), !f.To.IsEmpty()},
	)
	rows, err := r.db.QueryContext(ctx, query+where+` ORDER BY received_on DESC, id DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("list incomes: %w", err)
	}
	defer rows.Close()

	var incomes []core.Income
	for rows.Next() {
		in, err := scanIncome(rows)
		if err != nil {
			return nil, fmt.Errorf("scan income: %w", err)
		}
		incomes = append(incomes, in)
	}
	return incomes, rows.Err()
}

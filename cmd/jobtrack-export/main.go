// Command jobtrack-export dumps jobtrack data as CSV without going through
// the web UI, for spreadsheets and accountant handoff.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"jobtrack/internal/cli"
	"jobtrack/internal/config"
	"jobtrack/internal/core"
	"jobtrack/internal/export"
	"jobtrack/internal/report"
	"jobtrack/internal/storage"
)

func main() {
	var (
		entity    = pflag.StringP("entity", "e", "expenses", "what to export: projects, tasks, expenses, incomes or summary")
		dbPath    = pflag.String("db", "", "database path (defaults to JOBTRACK_DB_PATH)")
		outPath   = pflag.StringP("out", "o", "-", "output file, - for stdout")
		projectID = pflag.Int64P("project", "p", 0, "restrict to one project (required for summary)")
		category  = pflag.String("category", "", "expenses: exact category match")
		vendor    = pflag.String("vendor", "", "expenses: vendor substring match")
		assignee  = pflag.String("assignee", "", "tasks: assignee substring match")
		status    = pflag.String("status", "", "tasks: status filter")
		from      = pflag.String("from", "", "date range start (YYYY-MM-DD, inclusive)")
		to        = pflag.String("to", "", "date range end (YYYY-MM-DD, inclusive)")
		verbose   = pflag.BoolP("verbose", "v", false, "log at debug level")
	)
	pflag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	cli.SetupLogger(level)
	cli.LoadEnvFile()

	if err := run(*entity, *dbPath, *outPath, *projectID, *category, *vendor, *assignee, *status, *from, *to); err != nil {
		fmt.Fprintln(os.Stderr, "jobtrack-export:", err)
		os.Exit(1)
	}
}

func run(entity, dbPath, outPath string, projectID int64, category, vendor, assignee, status, fromStr, toStr string) error {
	if dbPath == "" {
		dbPath = config.Load().DBPath
	}

	from, err := core.ParseDate(fromStr)
	if err != nil {
		return fmt.Errorf("--from: %w", err)
	}
	to, err := core.ParseDate(toStr)
	if err != nil {
		return fmt.Errorf("--to: %w", err)
	}

	repo, err := storage.Open(dbPath, storage.Options{})
	if err != nil {
		return fmt.Errorf("open database %s: %w", dbPath, err)
	}
	defer repo.Close()

	ctx := context.Background()

	var (
		columns []string
		rows    []export.Row
	)
	switch entity {
	case "projects":
		projects, err := repo.ListProjects(ctx)
		if err != nil {
			return err
		}
		columns, rows = export.ProjectColumns, export.ProjectRows(projects)
	case "tasks":
		tasks, err := repo.ListTasks(ctx, storage.TaskFilter{
			ProjectID: projectID,
			Status:    core.TaskStatus(status),
			Assignee:  assignee,
			From:      from,
			To:        to,
		})
		if err != nil {
			return err
		}
		columns, rows = export.TaskColumns, export.TaskRows(tasks)
	case "expenses":
		expenses, err := repo.ListExpenses(ctx, storage.ExpenseFilter{
			ProjectID: projectID,
			Category:  category,
			Vendor:    vendor,
			From:      from,
			To:        to,
		})
		if err != nil {
			return err
		}
		columns, rows = export.ExpenseColumns, export.ExpenseRows(expenses)
	case "incomes":
		incomes, err := repo.ListIncomes(ctx, storage.IncomeFilter{
			ProjectID: projectID,
			From:      from,
			To:        to,
		})
		if err != nil {
			return err
		}
		columns, rows = export.IncomeColumns, export.IncomeRows(incomes)
	case "summary":
		if projectID <= 0 {
			return fmt.Errorf("summary export requires --project")
		}
		summary, err := report.NewEngine(repo).ProjectSummary(ctx, projectID)
		if err != nil {
			return err
		}
		columns, rows = export.SummaryColumns, export.SummaryRows(summary)
	default:
		return fmt.Errorf("unknown entity %q", entity)
	}

	var out io.Writer = os.Stdout
	if outPath != "-" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create %s: %w", outPath, err)
		}
		defer f.Close()
		out = f
	}

	if err := export.WriteCSV(out, columns, rows); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	slog.Debug("Export complete", "entity", entity, "rows", len(rows))
	return nil
}

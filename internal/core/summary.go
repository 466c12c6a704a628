package core

// Summary is the aggregated per-project rollup produced by the report
// engine. Grouping keys are the stored strings, matched case-sensitively;
// unknown categories simply form their own bucket.
type Summary struct {
	ProjectID      int64
	EstimatedHours Hours
	SpentHours     Hours

	ExpenseTotal Money
	IncomeTotal  Money
	Profit       Money // IncomeTotal - ExpenseTotal

	ExpenseByCategory  map[string]Money
	ExpenseByPayment   map[PaymentMethod]Money
	TaskCountsByStatus map[TaskStatus]int

	TasksTotal int
	TasksDone  int
}

// NewSummary returns an empty summary for a project with all maps
// initialized. A project with no tasks or expenses keeps zero totals.
func NewSummary(projectID int64) Summary {
	return Summary{
		ProjectID:          projectID,
		ExpenseByCategory:  make(map[string]Money),
		ExpenseByPayment:   make(map[PaymentMethod]Money),
		TaskCountsByStatus: make(map[TaskStatus]int),
	}
}

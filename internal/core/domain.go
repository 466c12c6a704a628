package core

import (
	"strings"
	"time"
)

const (
	ProjectPlanned   ProjectStatus = "Planned"
	ProjectActive    ProjectStatus = "Active"
	ProjectOnHold    ProjectStatus = "OnHold"
	ProjectCompleted ProjectStatus = "Completed"
	ProjectCancelled ProjectStatus = "Cancelled"
)

const (
	TaskTodo       TaskStatus = "Todo"
	TaskInProgress TaskStatus = "InProgress"
	TaskBlocked    TaskStatus = "Blocked"
	TaskDone       TaskStatus = "Done"
)

const (
	PayCash         PaymentMethod = "Cash"
	PayCheck        PaymentMethod = "Check"
	PayCreditCard   PaymentMethod = "CreditCard"
	PayBankTransfer PaymentMethod = "BankTransfer"
	PayOther        PaymentMethod = "Other"
)

type (
	ProjectStatus string
	TaskStatus    string
	PaymentMethod string

	// Date is a calendar date without a time-of-day component.
	// Stored and rendered as YYYY-MM-DD; the zero value means "not set".
	Date struct {
		time.Time
	}

	// Project is a remodeling job for a client, owning Tasks, Expenses
	// and Incomes.
	Project struct {
		ID         int64
		Name       string
		ClientName string
		Address    string
		StartDate  Date
		EndDate    Date // optional; when set must not precede StartDate
		Status     ProjectStatus
		Notes      string
	}

	// Task is a unit of work within a Project with effort tracking.
	// Spent hours accumulate independently of the estimate; no cap.
	Task struct {
		ID             int64
		ProjectID      int64
		Title          string
		Description    string
		Status         TaskStatus
		DueDate        Date // optional
		Assignee       string
		EstimatedHours Hours
		SpentHours     Hours
	}

	// Expense is a monetary outlay attributed to a Project. Category is an
	// open string matched against the configurable chart of accounts at the
	// UI boundary; the core accepts any non-empty value.
	Expense struct {
		ID            int64
		ProjectID     int64
		Category      string
		Vendor        string
		Description   string
		Amount        Money
		PaymentMethod PaymentMethod
		ReceiptPath   string // optional reference into the receipt store
		Date          Date
	}

	// Income is a payment received for a Project.
	Income struct {
		ID            int64
		ProjectID     int64
		Source        string
		Description   string
		Amount        Money
		PaymentMethod PaymentMethod
		Date          Date
	}
)

const dateLayout = "2006-01-02"

// NewDate creates a Date from year, month, day in UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string. An empty string yields the zero Date.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// String renders the date as YYYY-MM-DD, or "" for the zero value.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

// IsEmpty reports whether the date is unset.
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

// Equal reports whether two dates name the same instant.
func (d Date) Equal(other Date) bool {
	return d.Time.Equal(other.Time)
}

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectPlanned, ProjectActive, ProjectOnHold, ProjectCompleted, ProjectCancelled:
		return true
	}
	return false
}

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskTodo, TaskInProgress, TaskBlocked, TaskDone:
		return true
	}
	return false
}

func (m PaymentMethod) Valid() bool {
	switch m {
	case PayCash, PayCheck, PayCreditCard, PayBankTransfer, PayOther:
		return true
	}
	return false
}

// ProjectStatuses lists all valid project statuses in display order.
func ProjectStatuses() []ProjectStatus {
	return []ProjectStatus{ProjectPlanned, ProjectActive, ProjectOnHold, ProjectCompleted, ProjectCancelled}
}

// TaskStatuses lists all valid task statuses in display order.
func TaskStatuses() []TaskStatus {
	return []TaskStatus{TaskTodo, TaskInProgress, TaskBlocked, TaskDone}
}

// PaymentMethods lists all valid payment methods in display order.
func PaymentMethods() []PaymentMethod {
	return []PaymentMethod{PayCash, PayCheck, PayCreditCard, PayBankTransfer, PayOther}
}

func (p Project) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return invalidField("name", "required")
	}
	if len(p.Name) > 200 {
		return invalidField("name", "too long (max 200 characters)")
	}
	if !p.Status.Valid() {
		return invalidField("status", "unknown project status")
	}
	if p.StartDate.IsEmpty() {
		return invalidField("start_date", "required")
	}
	if !p.EndDate.IsEmpty() && p.EndDate.Before(p.StartDate.Time) {
		return invalidField("end_date", "must not precede start date")
	}
	return nil
}

func (t Task) Validate() error {
	if t.ProjectID <= 0 {
		return invalidField("project_id", "required")
	}
	if strings.TrimSpace(t.Title) == "" {
		return invalidField("title", "required")
	}
	if len(t.Title) > 200 {
		return invalidField("title", "too long (max 200 characters)")
	}
	if !t.Status.Valid() {
		return invalidField("status", "unknown task status")
	}
	if t.EstimatedHours.Tenths < 0 {
		return invalidField("estimated_hours", "must not be negative")
	}
	if t.SpentHours.Tenths < 0 {
		return invalidField("spent_hours", "must not be negative")
	}
	return nil
}

func (e Expense) Validate() error {
	if e.ProjectID <= 0 {
		return invalidField("project_id", "required")
	}
	if strings.TrimSpace(e.Category) == "" {
		return invalidField("category", "required")
	}
	if e.Amount.Cents < 0 {
		return invalidField("amount", "must not be negative")
	}
	if !e.PaymentMethod.Valid() {
		return invalidField("payment_method", "unknown payment method")
	}
	if e.Date.IsEmpty() {
		return invalidField("date", "required")
	}
	return nil
}

func (i Income) Validate() error {
	if i.ProjectID <= 0 {
		return invalidField("project_id", "required")
	}
	if strings.TrimSpace(i.Source) == "" {
		return invalidField("source", "required")
	}
	if i.Amount.Cents < 0 {
		return invalidField("amount", "must not be negative")
	}
	if !i.PaymentMethod.Valid() {
		return invalidField("payment_method", "unknown payment method")
	}
	if i.Date.IsEmpty() {
		return invalidField("date", "required")
	}
	return nil
}

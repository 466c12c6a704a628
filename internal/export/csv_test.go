package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"jobtrack/internal/core"
)

func TestWriteCSVRoundTrip(t *testing.T) {
	columns := []string{"vendor", "description", "amount"}
	rows := []Row{
		{"vendor": "Home Depot", "description": "Thinset mortar, 5 bags", "amount": "75.00"},
		{"vendor": `Bob's "Discount" Lumber`, "description": "2x4s", "amount": "500.00"},
		{"vendor": "City", "description": "permit\nsecond line", "amount": "75.00"},
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, columns, rows); err != nil {
		t.Fatalf("write: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("re-parse: %v", err)
	}
	if len(records) != len(rows)+1 {
		t.Fatalf("got %d records, want %d", len(records), len(rows)+1)
	}
	if diff := cmp.Diff(columns, records[0]); diff != "" {
		t.Fatalf("header mismatch:\n%s", diff)
	}
	for i, row := range rows {
		for j, col := range columns {
			if records[i+1][j] != row[col] {
				t.Fatalf("row %d col %s = %q, want %q", i, col, records[i+1][j], row[col])
			}
		}
	}
}

func TestWriteCSVMissingValuesAreEmpty(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, []string{"a", "b", "c"}, []Row{{"a": "1", "c": "3"}})
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("re-parse: %v", err)
	}
	want := []string{"1", "", "3"}
	if diff := cmp.Diff(want, records[1]); diff != "" {
		t.Fatalf("row mismatch:\n%s", diff)
	}
}

func TestWriteCSVNoColumns(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil, nil); err == nil {
		t.Fatal("expected error for empty column list")
	}
}

func TestExpenseRows(t *testing.T) {
	rows := ExpenseRows([]core.Expense{{
		ID:            7,
		ProjectID:     1,
		Category:      "Lumber",
		Vendor:        "Home Depot",
		Amount:        core.Money{Cents: 25050},
		PaymentMethod: core.PayCreditCard,
		ReceiptPath:   "7.pdf",
		Date:          core.NewDate(2025, 3, 20),
	}})
	want := Row{
		"id": "7", "project_id": "1", "category": "Lumber", "vendor": "Home Depot",
		"description": "", "amount": "250.50", "payment_method": "CreditCard",
		"receipt": "7.pdf", "date": "2025-03-20",
	}
	if diff := cmp.Diff([]Row{want}, rows); diff != "" {
		t.Fatalf("expense rows mismatch:\n%s", diff)
	}
}

func TestSummaryRowsOrderIsStable(t *testing.T) {
	s := core.NewSummary(1)
	s.EstimatedHours = core.Hours{Tenths: 150}
	s.SpentHours = core.Hours{Tenths: 90}
	s.ExpenseTotal = core.Money{Cents: 82550}
	s.ExpenseByCategory["Permits"] = core.Money{Cents: 7500}
	s.ExpenseByCategory["Lumber"] = core.Money{Cents: 75050}
	s.ExpenseByPayment[core.PayCash] = core.Money{Cents: 25050}
	s.ExpenseByPayment[core.PayCheck] = core.Money{Cents: 7500}
	s.TaskCountsByStatus[core.TaskDone] = 1

	rows := SummaryRows(s)

	var buf bytes.Buffer
	if err := WriteCSV(&buf, SummaryColumns, rows); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()

	wantLines := []string{
		"section,key,value",
		"totals,estimated_hours,15.0",
		"totals,spent_hours,9.0",
		"totals,expense_total,825.50",
	}
	for i, line := range strings.Split(out, "\n")[:len(wantLines)] {
		if line != wantLines[i] {
			t.Fatalf("line %d = %q, want %q", i, line, wantLines[i])
		}
	}

	// Category buckets are sorted regardless of map iteration order.
	lumberIdx := strings.Index(out, "expense_by_category,Lumber")
	permitsIdx := strings.Index(out, "expense_by_category,Permits")
	if lumberIdx == -1 || permitsIdx == -1 || lumberIdx > permitsIdx {
		t.Fatalf("category rows missing or unsorted:\n%s", out)
	}

	// Payment buckets follow enum order: Cash before Check.
	cashIdx := strings.Index(out, "expense_by_payment_method,Cash")
	checkIdx := strings.Index(out, "expense_by_payment_method,Check")
	if cashIdx == -1 || checkIdx == -1 || cashIdx > checkIdx {
		t.Fatalf("payment rows missing or out of order:\n%s", out)
	}
}

func TestProjectRowsRoundTripThroughCSV(t *testing.T) {
	projects := []core.Project{{
		ID:         1,
		Name:       `Kitchen, "big" remodel`,
		ClientName: "John Smith",
		Address:    "123 Main St\nFlorissant, MO",
		StartDate:  core.NewDate(2025, 3, 1),
		Status:     core.ProjectActive,
	}}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, ProjectColumns, ProjectRows(projects)); err != nil {
		t.Fatalf("write: %v", err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("re-parse: %v", err)
	}
	if records[1][1] != projects[0].Name || records[1][3] != projects[0].Address {
		t.Fatalf("quoted fields did not survive round trip: %+v", records[1])
	}
}

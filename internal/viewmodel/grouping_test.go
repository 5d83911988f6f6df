package viewmodel

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestGroupByContractRollup(t *testing.T) {
	installments := []InstallmentRow{
		{ID: 1, PromissoryID: 10, Number: 2, Status: "PENDING", DueDate: "2025-03-01", Amount: "100.00"},
		{ID: 2, PromissoryID: 10, Number: 1, Status: "PAID", DueDate: "2025-02-01", Amount: "100.00", PaidAmount: "100.00"},
	}
	proms := map[int64]PromissoryRow{
		10: {ID: 10, ClientID: 3, Status: "ISSUED"},
	}

	groups := GroupByContract(installments, proms)
	if len(groups) != 1 {
		t.Fatalf("expected one group, got %d", len(groups))
	}

	g := groups[0]
	if g.PromissoryID != 10 {
		t.Fatalf("promissory id = %d", g.PromissoryID)
	}
	if g.TotalInstallments != 2 || g.Pending != 1 || g.Paid != 1 || g.Canceled != 0 {
		t.Fatalf("counts wrong: %+v", g)
	}
	if g.NextDueDate == nil || *g.NextDueDate != "2025-03-01" {
		t.Fatalf("next_due_date = %v", g.NextDueDate)
	}
	if !g.TotalAmountSum.Equal(decimal.RequireFromString("200.00")) {
		t.Fatalf("total_amount_sum = %s", g.TotalAmountSum)
	}
	if !g.PaidAmountSum.Equal(decimal.RequireFromString("100.00")) {
		t.Fatalf("paid_amount_sum = %s", g.PaidAmountSum)
	}
	if g.ClientID == nil || *g.ClientID != 3 {
		t.Fatalf("client_id = %v", g.ClientID)
	}
	if g.PromissoryStatus == nil || *g.PromissoryStatus != "ISSUED" {
		t.Fatalf("promissory_status = %v", g.PromissoryStatus)
	}
	// Items sorted by installment number for the detail view.
	if g.Items[0].Number != 1 || g.Items[1].Number != 2 {
		t.Fatalf("items not ordered by number: %+v", g.Items)
	}
}

func TestGroupByContractNextDueIgnoresNonPending(t *testing.T) {
	installments := []InstallmentRow{
		// Earlier dates, but PAID and CANCELED never drive the next due date.
		{ID: 1, PromissoryID: 5, Status: "PAID", DueDate: "2025-01-01", Amount: "50.00", PaidAmount: "50.00"},
		{ID: 2, PromissoryID: 5, Status: "CANCELED", DueDate: "2025-01-15", Amount: "50.00"},
		{ID: 3, PromissoryID: 5, Status: "PENDING", DueDate: "2025-06-01", Amount: "50.00"},
	}
	groups := GroupByContract(installments, nil)
	if len(groups) != 1 {
		t.Fatalf("expected one group, got %d", len(groups))
	}
	if groups[0].NextDueDate == nil || *groups[0].NextDueDate != "2025-06-01" {
		t.Fatalf("next_due_date = %v", groups[0].NextDueDate)
	}
}

func TestGroupByContractNoPendingMeansNoNextDue(t *testing.T) {
	installments := []InstallmentRow{
		{ID: 1, PromissoryID: 8, Status: "PAID", DueDate: "2025-01-01", Amount: "50.00", PaidAmount: "50.00"},
	}
	groups := GroupByContract(installments, nil)
	if groups[0].NextDueDate != nil {
		t.Fatalf("expected absent next_due_date, got %v", *groups[0].NextDueDate)
	}
}

func TestGroupByContractOrdering(t *testing.T) {
	installments := []InstallmentRow{
		// Group 1 has no pending installment, so no next due date.
		{ID: 1, PromissoryID: 1, Status: "PAID", DueDate: "2024-01-01", Amount: "10.00", PaidAmount: "10.00"},
		// Group 2 is dated later than group 3.
		{ID: 2, PromissoryID: 2, Status: "PENDING", DueDate: "2025-05-01", Amount: "10.00"},
		{ID: 3, PromissoryID: 3, Status: "PENDING", DueDate: "2025-01-01", Amount: "10.00"},
		// Group 4 ties with group 2 on date; id breaks the tie.
		{ID: 4, PromissoryID: 4, Status: "PENDING", DueDate: "2025-05-01", Amount: "10.00"},
	}

	groups := GroupByContract(installments, nil)
	order := make([]int64, 0, len(groups))
	for _, g := range groups {
		order = append(order, g.PromissoryID)
	}
	want := []int64{3, 2, 4, 1}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestGroupByContractDatedBeforeUndatedRegardlessOfID(t *testing.T) {
	installments := []InstallmentRow{
		// Lower id but undated: must sort after the dated group.
		{ID: 1, PromissoryID: 1, Status: "PAID", DueDate: "2024-12-01", Amount: "10.00", PaidAmount: "10.00"},
		{ID: 2, PromissoryID: 99, Status: "PENDING", DueDate: "2025-01-01", Amount: "10.00"},
	}
	groups := GroupByContract(installments, nil)
	if groups[0].PromissoryID != 99 || groups[1].PromissoryID != 1 {
		t.Fatalf("dated group must come first, got %+v", groups)
	}
}

func TestGroupByContractSkipsOrphanInstallments(t *testing.T) {
	installments := []InstallmentRow{
		{ID: 1, PromissoryID: 0, Status: "PENDING", DueDate: "2025-01-01", Amount: "10.00"},
		{ID: 2, PromissoryID: 7, Status: "PENDING", DueDate: "2025-02-01", Amount: "10.00"},
	}
	groups := GroupByContract(installments, nil)
	if len(groups) != 1 || groups[0].PromissoryID != 7 {
		t.Fatalf("expected the orphan row to be excluded, got %+v", groups)
	}
	for _, item := range groups[0].Items {
		if item.ID == 1 {
			t.Fatalf("orphan installment leaked into group items")
		}
	}
}

func TestGroupByContractUnknownPromissoryStaysUnresolved(t *testing.T) {
	installments := []InstallmentRow{
		{ID: 1, PromissoryID: 42, Status: "PENDING", DueDate: "2025-01-01", Amount: "10.00"},
	}
	groups := GroupByContract(installments, map[int64]PromissoryRow{})
	g := groups[0]
	if g.ClientID != nil || g.ProductID != nil || g.PromissoryStatus != nil {
		t.Fatalf("identity fields must stay unset on lookup miss, got %+v", g)
	}
	if g.TotalInstallments != 1 {
		t.Fatalf("grouping must still roll up, got %+v", g)
	}
}

func TestGroupByContractEmptyInput(t *testing.T) {
	groups := GroupByContract(nil, nil)
	if len(groups) != 0 {
		t.Fatalf("expected empty output, got %+v", groups)
	}
}

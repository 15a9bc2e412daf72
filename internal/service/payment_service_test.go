package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/billdesk/billdesk/internal/allocator"
	"github.com/billdesk/billdesk/internal/models"
	"github.com/billdesk/billdesk/internal/storage"
	"github.com/billdesk/billdesk/internal/storage/sqlite"
)

func newTestStore(t *testing.T) *sqlite.SQLiteStore {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "billdesk-service-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

// seedCustomerWithBills creates a customer with two outstanding bills:
// one of 1000 with 400 already paid, one of 200 untouched.
func seedCustomerWithBills(t *testing.T, store *sqlite.SQLiteStore) (customerID string, bills []models.Bill) {
	t.Helper()
	ctx := context.Background()

	biller := &models.Biller{Name: "Metro Water", Email: "billing@metrowater.test"}
	if err := store.CreateBiller(ctx, biller); err != nil {
		t.Fatalf("CreateBiller failed: %v", err)
	}

	customer := &models.User{
		Email:        "payer@test",
		FirstName:    "Robin",
		LastName:     "Okafor",
		PasswordHash: "x",
		IsCustomer:   true,
	}
	if err := store.CreateUser(ctx, customer); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	big := &models.Bill{
		BillerID:    biller.ID,
		CustomerID:  customer.ID,
		Description: "Water Q1",
		TotalAmount: dec(t, "1000"),
		DueDate:     4102444800,
	}
	if err := store.CreateBill(ctx, big); err != nil {
		t.Fatalf("CreateBill failed: %v", err)
	}

	// Pre-pay 400 on the big bill so its remainder is 600.
	prePay := &models.Payment{
		CustomerID: customer.ID,
		Amount:     dec(t, "400"),
		Method:     "card",
		Allocations: []models.PaymentAllocation{
			{BillID: big.ID, AmountApplied: dec(t, "400")},
		},
	}
	if err := store.ApplyPayment(ctx, prePay); err != nil {
		t.Fatalf("ApplyPayment failed: %v", err)
	}

	small := &models.Bill{
		BillerID:    biller.ID,
		CustomerID:  customer.ID,
		Description: "Water connection fee",
		TotalAmount: dec(t, "200"),
		DueDate:     4102444800,
	}
	if err := store.CreateBill(ctx, small); err != nil {
		t.Fatalf("CreateBill failed: %v", err)
	}

	bigLoaded, err := store.GetBill(ctx, big.ID)
	if err != nil {
		t.Fatalf("GetBill failed: %v", err)
	}
	smallLoaded, err := store.GetBill(ctx, small.ID)
	if err != nil {
		t.Fatalf("GetBill failed: %v", err)
	}

	return customer.ID, []models.Bill{*bigLoaded, *smallLoaded}
}

func TestPaymentServiceApply(t *testing.T) {
	store := newTestStore(t)
	payments := NewPaymentService(store)
	ctx := context.Background()

	customerID, bills := seedCustomerWithBills(t, store)

	// Select both bills: 600 remaining + 200 remaining.
	selections := allocator.SelectAll(bills)
	if !allocator.TotalSelected(selections).Equal(dec(t, "800")) {
		t.Fatalf("TotalSelected = %s, want 800", allocator.TotalSelected(selections))
	}

	sub, err := allocator.BuildSubmission(selections, "card", "REF-1", "")
	if err != nil {
		t.Fatalf("BuildSubmission failed: %v", err)
	}

	payment, err := payments.Apply(ctx, customerID, sub)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	if !payment.Amount.Equal(dec(t, "800")) {
		t.Errorf("payment amount = %s, want 800", payment.Amount)
	}
	if len(payment.Allocations) != 2 {
		t.Errorf("allocations = %d, want 2", len(payment.Allocations))
	}

	// Both bills are now fully paid and leave the eligible pool.
	billsSvc := NewBillService(store)
	outstanding, err := billsSvc.Outstanding(ctx, customerID)
	if err != nil {
		t.Fatalf("Outstanding failed: %v", err)
	}
	if len(outstanding) != 0 {
		t.Errorf("outstanding = %d bills, want 0", len(outstanding))
	}

	// Success creates a notification for the payer.
	notifications, err := store.ListNotificationsByUser(ctx, customerID)
	if err != nil {
		t.Fatalf("ListNotificationsByUser failed: %v", err)
	}
	if len(notifications) == 0 {
		t.Error("expected a payment notification")
	}
}

func TestPaymentServiceApplyEmptySelection(t *testing.T) {
	store := newTestStore(t)
	payments := NewPaymentService(store)

	_, err := payments.Apply(context.Background(), "cust-1", &allocator.Submission{
		PaymentMethod: "card",
	})
	if !errors.Is(err, allocator.ErrNoSelection) {
		t.Fatalf("expected ErrNoSelection, got %v", err)
	}

	// Refusal is local: nothing was persisted.
	all, err := payments.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("expected no payments, got %d", len(all))
	}
}

func TestPaymentServiceApplyRejectsUnknownMethod(t *testing.T) {
	store := newTestStore(t)
	payments := NewPaymentService(store)

	customerID, bills := seedCustomerWithBills(t, store)
	selections := allocator.SelectAll(bills)

	sub := &allocator.Submission{
		Allocations:   selections,
		PaymentMethod: "barter",
	}
	if _, err := payments.Apply(context.Background(), customerID, sub); err == nil {
		t.Fatal("expected validation error for unknown payment method")
	}
}

func TestPaymentServiceStaleSelectionRejected(t *testing.T) {
	store := newTestStore(t)
	payments := NewPaymentService(store)
	ctx := context.Background()

	customerID, bills := seedCustomerWithBills(t, store)

	// Capture a selection, then let another payment land on the same bill.
	selections := allocator.ToggleSelection(bills[0], nil) // 600 remaining at capture
	concurrent := &models.Payment{
		CustomerID: customerID,
		Amount:     dec(t, "500"),
		Method:     "card",
		Allocations: []models.PaymentAllocation{
			{BillID: bills[0].ID, AmountApplied: dec(t, "500")},
		},
	}
	if err := store.ApplyPayment(ctx, concurrent); err != nil {
		t.Fatalf("ApplyPayment failed: %v", err)
	}

	// The stale 600 now exceeds the 100 remainder and must be rejected.
	sub, err := allocator.BuildSubmission(selections, "card", "", "")
	if err != nil {
		t.Fatalf("BuildSubmission failed: %v", err)
	}
	if _, err := payments.Apply(ctx, customerID, sub); !errors.Is(err, storage.ErrOverAllocation) {
		t.Fatalf("expected ErrOverAllocation, got %v", err)
	}

	// Failure preserves the bill state for retry.
	bill, err := store.GetBill(ctx, bills[0].ID)
	if err != nil {
		t.Fatalf("GetBill failed: %v", err)
	}
	if !bill.PaidAmount.Equal(dec(t, "900")) {
		t.Errorf("PaidAmount = %s, want 900", bill.PaidAmount)
	}
}

func TestPaymentServiceDeleteReverses(t *testing.T) {
	store := newTestStore(t)
	payments := NewPaymentService(store)
	ctx := context.Background()

	customerID, bills := seedCustomerWithBills(t, store)

	sub, err := allocator.BuildSubmission(allocator.SelectAll(bills), "cash", "", "")
	if err != nil {
		t.Fatalf("BuildSubmission failed: %v", err)
	}
	payment, err := payments.Apply(ctx, customerID, sub)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	if err := payments.Delete(ctx, payment.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	// Both bills are outstanding again.
	billsSvc := NewBillService(store)
	outstanding, err := billsSvc.Outstanding(ctx, customerID)
	if err != nil {
		t.Fatalf("Outstanding failed: %v", err)
	}
	if len(outstanding) != 2 {
		t.Errorf("outstanding = %d bills, want 2", len(outstanding))
	}
}

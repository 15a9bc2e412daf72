package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/billdesk/billdesk/internal/models"
	"github.com/billdesk/billdesk/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "billdesk-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func mustDec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

// seedBill creates a biller, customer and bill, returning the bill and customer ID.
func seedBill(t *testing.T, store *SQLiteStore, total string) (*models.Bill, string) {
	t.Helper()
	ctx := context.Background()

	biller := &models.Biller{Name: "Acme Utilities", Email: "billing@acme.test"}
	if err := store.CreateBiller(ctx, biller); err != nil {
		t.Fatalf("CreateBiller failed: %v", err)
	}

	customer := &models.User{
		Email:        "customer-" + biller.ID + "@test",
		FirstName:    "Pat",
		LastName:     "Jones",
		PasswordHash: "x",
		IsCustomer:   true,
	}
	if err := store.CreateUser(ctx, customer); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	bill := &models.Bill{
		BillerID:    biller.ID,
		CustomerID:  customer.ID,
		Description: "March electricity",
		TotalAmount: mustDec(t, total),
		DueDate:     4102444800, // far future
	}
	if err := store.CreateBill(ctx, bill); err != nil {
		t.Fatalf("CreateBill failed: %v", err)
	}

	return bill, customer.ID
}

func TestSQLiteStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateBill generates ID and defaults", func(t *testing.T) {
		bill, _ := seedBill(t, store, "120.50")

		if bill.ID == "" {
			t.Error("Expected bill ID to be generated")
		}
		if bill.CreatedAt == 0 {
			t.Error("Expected CreatedAt to be set")
		}
		if bill.Status != models.BillPending {
			t.Errorf("Expected pending status, got %s", bill.Status)
		}
	})

	t.Run("GetBill round trips decimal amounts exactly", func(t *testing.T) {
		bill, _ := seedBill(t, store, "1000.10")

		retrieved, err := store.GetBill(ctx, bill.ID)
		if err != nil {
			t.Fatalf("GetBill failed: %v", err)
		}
		if !retrieved.TotalAmount.Equal(mustDec(t, "1000.10")) {
			t.Errorf("TotalAmount = %s, want 1000.10", retrieved.TotalAmount)
		}
		if !retrieved.PaidAmount.IsZero() {
			t.Errorf("PaidAmount = %s, want 0", retrieved.PaidAmount)
		}
	})

	t.Run("GetBill unknown ID is ErrNotFound", func(t *testing.T) {
		_, err := store.GetBill(ctx, "no-such-bill")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected storage.ErrNotFound, got %v", err)
		}
	})

	t.Run("ApplyPayment rolls bills forward", func(t *testing.T) {
		bill, customerID := seedBill(t, store, "1000")

		payment := &models.Payment{
			CustomerID: customerID,
			Amount:     mustDec(t, "400"),
			Method:     "card",
			Allocations: []models.PaymentAllocation{
				{BillID: bill.ID, AmountApplied: mustDec(t, "400")},
			},
		}
		if err := store.ApplyPayment(ctx, payment); err != nil {
			t.Fatalf("ApplyPayment failed: %v", err)
		}

		updated, err := store.GetBill(ctx, bill.ID)
		if err != nil {
			t.Fatalf("GetBill failed: %v", err)
		}
		if !updated.PaidAmount.Equal(mustDec(t, "400")) {
			t.Errorf("PaidAmount = %s, want 400", updated.PaidAmount)
		}
		if updated.Status != models.BillPartiallyPaid {
			t.Errorf("Status = %s, want partially_paid", updated.Status)
		}

		// Pay off the remainder; status becomes paid.
		second := &models.Payment{
			CustomerID: customerID,
			Amount:     mustDec(t, "600"),
			Method:     "card",
			Allocations: []models.PaymentAllocation{
				{BillID: bill.ID, AmountApplied: mustDec(t, "600")},
			},
		}
		if err := store.ApplyPayment(ctx, second); err != nil {
			t.Fatalf("ApplyPayment failed: %v", err)
		}

		paid, err := store.GetBill(ctx, bill.ID)
		if err != nil {
			t.Fatalf("GetBill failed: %v", err)
		}
		if paid.Status != models.BillPaid {
			t.Errorf("Status = %s, want paid", paid.Status)
		}
		if !paid.PaidAmount.Equal(paid.TotalAmount) {
			t.Errorf("PaidAmount = %s, want %s", paid.PaidAmount, paid.TotalAmount)
		}
	})

	t.Run("ApplyPayment rejects over-allocation and rolls back", func(t *testing.T) {
		bill, customerID := seedBill(t, store, "100")

		payment := &models.Payment{
			CustomerID: customerID,
			Amount:     mustDec(t, "150"),
			Method:     "card",
			Allocations: []models.PaymentAllocation{
				{BillID: bill.ID, AmountApplied: mustDec(t, "150")},
			},
		}
		err := store.ApplyPayment(ctx, payment)
		if !errors.Is(err, storage.ErrOverAllocation) {
			t.Fatalf("expected ErrOverAllocation, got %v", err)
		}

		// The transaction must have rolled back: no payment row, bill untouched.
		untouched, err := store.GetBill(ctx, bill.ID)
		if err != nil {
			t.Fatalf("GetBill failed: %v", err)
		}
		if !untouched.PaidAmount.IsZero() {
			t.Errorf("PaidAmount = %s, want 0 after rollback", untouched.PaidAmount)
		}
		payments, err := store.ListPaymentsByCustomer(ctx, customerID)
		if err != nil {
			t.Fatalf("ListPaymentsByCustomer failed: %v", err)
		}
		if len(payments) != 0 {
			t.Errorf("expected no payments after rollback, got %d", len(payments))
		}
	})

	t.Run("DeletePayment reverses bill amounts", func(t *testing.T) {
		bill, customerID := seedBill(t, store, "500")

		payment := &models.Payment{
			CustomerID: customerID,
			Amount:     mustDec(t, "500"),
			Method:     "bank_transfer",
			Allocations: []models.PaymentAllocation{
				{BillID: bill.ID, AmountApplied: mustDec(t, "500")},
			},
		}
		if err := store.ApplyPayment(ctx, payment); err != nil {
			t.Fatalf("ApplyPayment failed: %v", err)
		}
		if err := store.DeletePayment(ctx, payment.ID); err != nil {
			t.Fatalf("DeletePayment failed: %v", err)
		}

		reverted, err := store.GetBill(ctx, bill.ID)
		if err != nil {
			t.Fatalf("GetBill failed: %v", err)
		}
		if !reverted.PaidAmount.IsZero() {
			t.Errorf("PaidAmount = %s, want 0 after reversal", reverted.PaidAmount)
		}
		if reverted.Status == models.BillPaid {
			t.Errorf("Status = %s, should no longer be paid", reverted.Status)
		}
	})

	t.Run("Payment round trip keeps allocations and metadata", func(t *testing.T) {
		bill, customerID := seedBill(t, store, "250")

		payment := &models.Payment{
			CustomerID:      customerID,
			Amount:          mustDec(t, "250"),
			Method:          "card",
			ReferenceNumber: "REF-99",
			Notes:           "quarterly",
			Allocations: []models.PaymentAllocation{
				{BillID: bill.ID, AmountApplied: mustDec(t, "250")},
			},
		}
		if err := store.ApplyPayment(ctx, payment); err != nil {
			t.Fatalf("ApplyPayment failed: %v", err)
		}

		retrieved, err := store.GetPayment(ctx, payment.ID)
		if err != nil {
			t.Fatalf("GetPayment failed: %v", err)
		}
		if retrieved.ReferenceNumber != "REF-99" || retrieved.Notes != "quarterly" {
			t.Errorf("metadata = %q/%q, want REF-99/quarterly",
				retrieved.ReferenceNumber, retrieved.Notes)
		}
		if len(retrieved.Allocations) != 1 || retrieved.Allocations[0].BillID != bill.ID {
			t.Fatalf("allocations = %+v", retrieved.Allocations)
		}
		if !retrieved.Allocations[0].AmountApplied.Equal(mustDec(t, "250")) {
			t.Errorf("AmountApplied = %s, want 250", retrieved.Allocations[0].AmountApplied)
		}
	})
}

func TestGroupsAndPermissions(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := &models.User{
		Email:        "staff@test",
		FirstName:    "Sam",
		LastName:     "Lee",
		PasswordHash: "x",
		IsBiller:     true,
	}
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	viewers := &models.Group{Name: "Viewers", Permissions: []string{"bills.view", "payments.view"}}
	admins := &models.Group{Name: "Admins", Permissions: []string{"bills.view", "bills.delete"}}
	for _, g := range []*models.Group{viewers, admins} {
		if err := store.CreateGroup(ctx, g); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}
	}

	if err := store.AssignUserToGroup(ctx, user.ID, viewers.ID); err != nil {
		t.Fatalf("AssignUserToGroup failed: %v", err)
	}
	if err := store.AssignUserToGroup(ctx, user.ID, admins.ID); err != nil {
		t.Fatalf("AssignUserToGroup failed: %v", err)
	}
	// Assigning twice is a no-op.
	if err := store.AssignUserToGroup(ctx, user.ID, admins.ID); err != nil {
		t.Fatalf("repeat AssignUserToGroup failed: %v", err)
	}

	codes, err := store.PermissionsForUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("PermissionsForUser failed: %v", err)
	}

	// Union of both groups, de-duplicated.
	want := []string{"bills.delete", "bills.view", "payments.view"}
	if len(codes) != len(want) {
		t.Fatalf("PermissionsForUser = %v, want %v", codes, want)
	}
	for i, code := range want {
		if codes[i] != code {
			t.Errorf("codes[%d] = %q, want %q", i, codes[i], code)
		}
	}

	if err := store.RemoveUserFromGroup(ctx, user.ID, admins.ID); err != nil {
		t.Fatalf("RemoveUserFromGroup failed: %v", err)
	}
	codes, err = store.PermissionsForUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("PermissionsForUser failed: %v", err)
	}
	if len(codes) != 2 {
		t.Errorf("PermissionsForUser after removal = %v, want 2 codes", codes)
	}
}

func TestSessions(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	facts := map[string]string{
		"token":       "tok-1",
		"is_customer": "true",
		"permissions": `["bills.view"]`,
	}

	if err := store.SaveSession(ctx, "tok-1", facts, 4102444800); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}

	loaded, err := store.GetSession(ctx, "tok-1")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if loaded["is_customer"] != "true" || loaded["permissions"] != `["bills.view"]` {
		t.Errorf("loaded facts = %v", loaded)
	}

	// Expired sessions read as not found.
	if err := store.SaveSession(ctx, "tok-old", facts, 1); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}
	if _, err := store.GetSession(ctx, "tok-old"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound for expired session, got %v", err)
	}

	// Logout clears wholesale and is idempotent.
	if err := store.DeleteSession(ctx, "tok-1"); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	if _, err := store.GetSession(ctx, "tok-1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := store.DeleteSession(ctx, "tok-1"); err != nil {
		t.Errorf("repeat DeleteSession failed: %v", err)
	}
}

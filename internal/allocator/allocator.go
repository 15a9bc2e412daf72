// Package allocator implements multi-bill payment allocation: choosing a
// subset of outstanding bills and building a single payment submission that
// applies each selected bill's full remaining balance.
package allocator

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/billdesk/billdesk/internal/models"
)

// ErrNoSelection is returned by BuildSubmission when no bills are selected.
// Callers should prompt the user to select at least one bill instead of
// making a network call.
var ErrNoSelection = errors.New("select at least one bill")

// Allocation pairs a bill with the amount to apply to it. Allocations are
// ephemeral: created on select, destroyed on deselect or submission.
type Allocation struct {
	BillID        string          `json:"bill_id"`
	AmountApplied decimal.Decimal `json:"amount_applied"`
}

// Submission is the payload for the bulk payment endpoint.
type Submission struct {
	Allocations     []Allocation `json:"allocations"`
	PaymentMethod   string       `json:"payment_method"`
	ReferenceNumber string       `json:"reference_number"`
	Notes           string       `json:"notes"`
}

// ComputeRemaining returns the amount still owed on a bill:
// max(0, total - paid). A fully paid bill yields zero.
func ComputeRemaining(bill models.Bill) decimal.Decimal {
	remaining := bill.TotalAmount.Sub(bill.PaidAmount)
	if remaining.Sign() < 0 {
		return decimal.Zero
	}
	return remaining
}

// EligibleBills filters bills to the selectable pool: status is not "paid"
// and the remaining amount is positive. The amount check is authoritative;
// a bill whose remainder is zero is excluded even if its status string has
// not yet transitioned to paid.
func EligibleBills(bills []models.Bill) []models.Bill {
	var eligible []models.Bill
	for _, b := range bills {
		if b.Status == models.BillPaid {
			continue
		}
		if ComputeRemaining(b).Sign() <= 0 {
			continue
		}
		eligible = append(eligible, b)
	}
	return eligible
}

// ToggleSelection returns a new selection list with the bill removed if it
// was already selected, or appended otherwise. A new selection captures the
// bill's remaining amount at this moment; it is not re-derived if the bill
// list refreshes later.
func ToggleSelection(bill models.Bill, selections []Allocation) []Allocation {
	for i, sel := range selections {
		if sel.BillID == bill.ID {
			out := make([]Allocation, 0, len(selections)-1)
			out = append(out, selections[:i]...)
			out = append(out, selections[i+1:]...)
			return out
		}
	}

	out := make([]Allocation, len(selections), len(selections)+1)
	copy(out, selections)
	return append(out, Allocation{
		BillID:        bill.ID,
		AmountApplied: ComputeRemaining(bill),
	})
}

// SelectAll returns a selection covering every eligible bill at its full
// remaining amount.
func SelectAll(eligible []models.Bill) []Allocation {
	selections := make([]Allocation, 0, len(eligible))
	for _, b := range eligible {
		selections = append(selections, Allocation{
			BillID:        b.ID,
			AmountApplied: ComputeRemaining(b),
		})
	}
	return selections
}

// ClearAll returns an empty selection.
func ClearAll() []Allocation {
	return nil
}

// TotalSelected sums the applied amounts across the current selections.
func TotalSelected(selections []Allocation) decimal.Decimal {
	total := decimal.Zero
	for _, sel := range selections {
		total = total.Add(sel.AmountApplied)
	}
	return total
}

// BuildSubmission assembles the bulk payment payload from the current
// selections. Returns ErrNoSelection if the selection is empty.
func BuildSubmission(selections []Allocation, method, reference, notes string) (*Submission, error) {
	if len(selections) == 0 {
		return nil, ErrNoSelection
	}

	allocations := make([]Allocation, len(selections))
	copy(allocations, selections)

	return &Submission{
		Allocations:     allocations,
		PaymentMethod:   method,
		ReferenceNumber: reference,
		Notes:           notes,
	}, nil
}

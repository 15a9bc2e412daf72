package models

import (
	"github.com/shopspring/decimal"
)

// BillStatus is the lifecycle state of a bill.
type BillStatus string

const (
	// BillPending means no payment has been applied and the bill is not
	// yet past its due date.
	BillPending BillStatus = "pending"

	// BillPartiallyPaid means some amount has been applied but a positive
	// remainder is still owed.
	BillPartiallyPaid BillStatus = "partially_paid"

	// BillPaid means the full total has been applied.
	BillPaid BillStatus = "paid"

	// BillOverdue means the bill is past its due date with a positive
	// remainder and no payment applied.
	BillOverdue BillStatus = "overdue"
)

// Bill represents an amount owed by a customer to a biller.
type Bill struct {
	// ID is the unique identifier for the bill (UUID format).
	ID string

	// BillerID is the issuing organization.
	BillerID string

	// CustomerID is the user who owes this bill.
	CustomerID string

	// Description is a human-readable label (e.g. "March electricity").
	Description string

	// TotalAmount is the full amount owed.
	TotalAmount decimal.Decimal

	// PaidAmount is the sum of payment allocations applied so far.
	// Derived from payments; never edited directly.
	PaidAmount decimal.Decimal

	// DueDate is the Unix timestamp the bill is due by.
	DueDate int64

	// Status is the stored lifecycle state. Amounts are authoritative:
	// readers should prefer DeriveStatus over this field when the two
	// disagree.
	Status BillStatus

	// CreatedAt is the Unix timestamp when the bill was issued.
	CreatedAt int64
}

// DeriveStatus computes the status a bill should carry given its amounts
// and due date at the supplied time (Unix seconds).
//
// Amounts win over the stored status string: a bill whose remainder is zero
// is paid even if Status has not caught up yet.
func (b *Bill) DeriveStatus(now int64) BillStatus {
	remaining := b.TotalAmount.Sub(b.PaidAmount)
	switch {
	case remaining.Sign() <= 0:
		return BillPaid
	case b.PaidAmount.Sign() > 0:
		return BillPartiallyPaid
	case b.DueDate > 0 && now > b.DueDate:
		return BillOverdue
	default:
		return BillPending
	}
}

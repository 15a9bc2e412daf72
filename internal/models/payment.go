package models

import "github.com/shopspring/decimal"

// Payment represents money applied against one or more bills in a single
// submission. Payments are created and deleted, never edited.
type Payment struct {
	// ID is the unique identifier for the payment (UUID format).
	ID string

	// CustomerID is the paying user.
	CustomerID string

	// Amount is the total charged, equal to the sum of allocation amounts.
	Amount decimal.Decimal

	// Method is the payment method (e.g. "card", "bank_transfer", "cash").
	Method string

	// ReferenceNumber is an optional external reference.
	ReferenceNumber string

	// Notes is an optional free-text annotation.
	Notes string

	// Allocations are the per-bill portions of this payment.
	Allocations []PaymentAllocation

	// CreatedAt is the Unix timestamp when the payment was recorded.
	CreatedAt int64
}

// PaymentAllocation is the durable portion of a payment applied to one bill.
type PaymentAllocation struct {
	// BillID is the bill this portion was applied to.
	BillID string

	// AmountApplied is the portion of the payment applied to the bill.
	AmountApplied decimal.Decimal
}

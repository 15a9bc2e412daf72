package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestDeriveStatus(t *testing.T) {
	const (
		before = int64(1000)
		due    = int64(2000)
		after  = int64(3000)
	)

	tests := []struct {
		name  string
		total string
		paid  string
		now   int64
		want  BillStatus
	}{
		{"untouched before due", "1000", "0", before, BillPending},
		{"untouched past due", "1000", "0", after, BillOverdue},
		{"partial before due", "1000", "400", before, BillPartiallyPaid},
		{"partial past due stays partial", "1000", "400", after, BillPartiallyPaid},
		{"fully paid", "1000", "1000", after, BillPaid},
		{"overpaid still paid", "1000", "1200", before, BillPaid},
		{"zero total is paid", "0", "0", before, BillPaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bill := &Bill{
				TotalAmount: decimal.RequireFromString(tt.total),
				PaidAmount:  decimal.RequireFromString(tt.paid),
				DueDate:     due,
			}
			if got := bill.DeriveStatus(tt.now); got != tt.want {
				t.Errorf("DeriveStatus() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDeriveStatusIgnoresStaleStoredStatus(t *testing.T) {
	bill := &Bill{
		TotalAmount: decimal.RequireFromString("500"),
		PaidAmount:  decimal.RequireFromString("500"),
		Status:      BillPending,
	}
	if got := bill.DeriveStatus(0); got != BillPaid {
		t.Errorf("DeriveStatus() = %s, want %s", got, BillPaid)
	}
}

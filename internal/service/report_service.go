package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/billdesk/billdesk/internal/allocator"
	"github.com/billdesk/billdesk/internal/gather"
	"github.com/billdesk/billdesk/internal/models"
	"github.com/billdesk/billdesk/internal/storage"
)

// Overview is the aggregate snapshot behind the reporting dashboard.
type Overview struct {
	TotalBilled      decimal.Decimal   `json:"total_billed"`
	TotalCollected   decimal.Decimal   `json:"total_collected"`
	TotalOutstanding decimal.Decimal   `json:"total_outstanding"`
	OverdueCount     int               `json:"overdue_count"`
	BillCount        int               `json:"bill_count"`
	PaymentCount     int               `json:"payment_count"`
	RecentPayments   []*models.Payment `json:"recent_payments"`
	Degraded         bool              `json:"degraded"`
}

// ReportService assembles dashboard aggregates from independent reads.
type ReportService struct {
	store storage.Store
}

// NewReportService creates a new ReportService.
func NewReportService(store storage.Store) *ReportService {
	return &ReportService{store: store}
}

// recentLimit caps the recent-payments panel.
const recentLimit = 10

// Overview gathers the bill and payment aggregates concurrently. A failing
// source degrades its own panel to zero/empty rather than failing the page;
// Degraded reports whether that happened.
func (s *ReportService) Overview(ctx context.Context) (*Overview, error) {
	ov := &Overview{
		TotalBilled:      decimal.Zero,
		TotalCollected:   decimal.Zero,
		TotalOutstanding: decimal.Zero,
	}

	var bills []*models.Bill
	var payments []*models.Payment

	failed := gather.All(ctx,
		gather.Piece{
			Name: "bills",
			Fetch: func(ctx context.Context) error {
				var err error
				bills, err = s.store.ListBills(ctx)
				return err
			},
			Fallback: func() { bills = nil },
		},
		gather.Piece{
			Name: "payments",
			Fetch: func(ctx context.Context) error {
				var err error
				payments, err = s.store.ListPayments(ctx)
				return err
			},
			Fallback: func() { payments = nil },
		},
	)
	ov.Degraded = failed > 0

	now := time.Now().Unix()
	for _, b := range bills {
		ov.BillCount++
		ov.TotalBilled = ov.TotalBilled.Add(b.TotalAmount)
		ov.TotalOutstanding = ov.TotalOutstanding.Add(allocator.ComputeRemaining(*b))
		if b.DeriveStatus(now) == models.BillOverdue {
			ov.OverdueCount++
		}
	}

	for _, p := range payments {
		ov.PaymentCount++
		ov.TotalCollected = ov.TotalCollected.Add(p.Amount)
	}
	if len(payments) > recentLimit {
		payments = payments[:recentLimit]
	}
	ov.RecentPayments = payments

	return ov, nil
}

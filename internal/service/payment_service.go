package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/billdesk/billdesk/internal/allocator"
	"github.com/billdesk/billdesk/internal/models"
	"github.com/billdesk/billdesk/internal/storage"
	"github.com/billdesk/billdesk/internal/validate"
)

// PaymentMethods are the accepted payment method values.
var PaymentMethods = []string{"card", "bank_transfer", "cash", "mobile_money"}

var paymentSchema = validate.Schema{
	{Field: "payment_method", Required: true, Type: validate.TypeEnum, Options: PaymentMethods},
	{Field: "reference_number", MaxLen: 64},
	{Field: "notes", MaxLen: 500},
}

// PaymentService turns an allocation submission into a durable payment and
// manages payment history.
type PaymentService struct {
	store storage.Store
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(store storage.Store) *PaymentService {
	return &PaymentService{store: store}
}

// Apply records one payment covering the submission's allocations. The
// store revalidates every allocation against the bill's current remainder
// inside the transaction, so selections captured before a concurrent
// payment landed cannot overdraw a bill.
//
// On success the customer gets a "payment received" notification; a failure
// there is logged, not returned, since the payment itself already committed.
func (s *PaymentService) Apply(ctx context.Context, customerID string, sub *allocator.Submission) (*models.Payment, error) {
	if sub == nil || len(sub.Allocations) == 0 {
		return nil, allocator.ErrNoSelection
	}

	fields := map[string]string{
		"payment_method":   sub.PaymentMethod,
		"reference_number": sub.ReferenceNumber,
		"notes":            sub.Notes,
	}
	if err := paymentSchema.Apply(fields); err != nil {
		return nil, err
	}

	allocations := make([]models.PaymentAllocation, len(sub.Allocations))
	for i, a := range sub.Allocations {
		allocations[i] = models.PaymentAllocation{
			BillID:        a.BillID,
			AmountApplied: a.AmountApplied,
		}
	}

	payment := &models.Payment{
		CustomerID:      customerID,
		Amount:          allocator.TotalSelected(sub.Allocations),
		Method:          sub.PaymentMethod,
		ReferenceNumber: sub.ReferenceNumber,
		Notes:           sub.Notes,
		Allocations:     allocations,
	}

	if err := s.store.ApplyPayment(ctx, payment); err != nil {
		return nil, err
	}

	slog.Info("payment applied",
		"payment_id", payment.ID,
		"customer_id", customerID,
		"amount", payment.Amount,
		"bills", len(payment.Allocations),
	)

	notification := &models.Notification{
		UserID:  customerID,
		Title:   "Payment received",
		Message: fmt.Sprintf("Payment of %s applied across %d bill(s).", payment.Amount, len(payment.Allocations)),
	}
	if err := s.store.CreateNotification(ctx, notification); err != nil {
		slog.Warn("failed to create payment notification", "payment_id", payment.ID, "error", err)
	}

	return payment, nil
}

// Get retrieves one payment with its allocations.
func (s *PaymentService) Get(ctx context.Context, id string) (*models.Payment, error) {
	return s.store.GetPayment(ctx, id)
}

// ListForCustomer returns a customer's payment history, newest first.
func (s *PaymentService) ListForCustomer(ctx context.Context, customerID string) ([]*models.Payment, error) {
	return s.store.ListPaymentsByCustomer(ctx, customerID)
}

// ListAll returns every payment, newest first.
func (s *PaymentService) ListAll(ctx context.Context) ([]*models.Payment, error) {
	return s.store.ListPayments(ctx)
}

// Delete removes a payment and reverses its effect on the allocated bills.
func (s *PaymentService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeletePayment(ctx, id); err != nil {
		return err
	}
	slog.Info("payment deleted", "payment_id", id)
	return nil
}

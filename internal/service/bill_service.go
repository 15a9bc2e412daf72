package service

import (
	"context"
	"strconv"
	"time"

	"github.com/billdesk/billdesk/internal/allocator"
	"github.com/billdesk/billdesk/internal/models"
	"github.com/billdesk/billdesk/internal/storage"
	"github.com/billdesk/billdesk/internal/validate"
)

// billSchema is the validation shape for bill create/update forms.
var billSchema = validate.Schema{
	{Field: "biller_id", Required: true},
	{Field: "customer_id", Required: true},
	{Field: "description", Required: true, MaxLen: 200},
	{Field: "total_amount", Required: true, Type: validate.TypeDecimal},
	{Field: "due_date", Required: true, Type: validate.TypeUnix},
}

// BillService manages bill CRUD and derives statuses at read time so the
// stored status string never lies to callers.
type BillService struct {
	store storage.Store
}

// NewBillService creates a new BillService.
func NewBillService(store storage.Store) *BillService {
	return &BillService{store: store}
}

// Create validates and persists a new bill.
func (s *BillService) Create(ctx context.Context, bill *models.Bill) error {
	fields := map[string]string{
		"biller_id":    bill.BillerID,
		"customer_id":  bill.CustomerID,
		"description":  bill.Description,
		"total_amount": bill.TotalAmount.String(),
		"due_date":     strconv.FormatInt(bill.DueDate, 10),
	}
	if err := billSchema.Apply(fields); err != nil {
		return err
	}

	return s.store.CreateBill(ctx, bill)
}

// Get retrieves one bill with a freshly derived status.
func (s *BillService) Get(ctx context.Context, id string) (*models.Bill, error) {
	bill, err := s.store.GetBill(ctx, id)
	if err != nil {
		return nil, err
	}
	bill.Status = bill.DeriveStatus(time.Now().Unix())
	return bill, nil
}

func refreshStatuses(bills []*models.Bill) []*models.Bill {
	now := time.Now().Unix()
	for _, b := range bills {
		b.Status = b.DeriveStatus(now)
	}
	return bills
}

// ListForCustomer returns a customer's bills with derived statuses.
func (s *BillService) ListForCustomer(ctx context.Context, customerID string) ([]*models.Bill, error) {
	bills, err := s.store.ListBillsByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return refreshStatuses(bills), nil
}

// ListForBiller returns a biller's issued bills with derived statuses.
func (s *BillService) ListForBiller(ctx context.Context, billerID string) ([]*models.Bill, error) {
	bills, err := s.store.ListBillsByBiller(ctx, billerID)
	if err != nil {
		return nil, err
	}
	return refreshStatuses(bills), nil
}

// ListAll returns every bill with derived statuses.
func (s *BillService) ListAll(ctx context.Context) ([]*models.Bill, error) {
	bills, err := s.store.ListBills(ctx)
	if err != nil {
		return nil, err
	}
	return refreshStatuses(bills), nil
}

// Outstanding returns the selectable pool for a customer: bills that are
// not paid and still carry a positive remainder.
func (s *BillService) Outstanding(ctx context.Context, customerID string) ([]models.Bill, error) {
	bills, err := s.ListForCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	flat := make([]models.Bill, 0, len(bills))
	for _, b := range bills {
		flat = append(flat, *b)
	}
	return allocator.EligibleBills(flat), nil
}

// Update validates and persists changes to a bill's editable fields.
func (s *BillService) Update(ctx context.Context, bill *models.Bill) error {
	fields := map[string]string{
		"biller_id":    bill.BillerID,
		"customer_id":  bill.CustomerID,
		"description":  bill.Description,
		"total_amount": bill.TotalAmount.String(),
		"due_date":     strconv.FormatInt(bill.DueDate, 10),
	}
	if err := billSchema.Apply(fields); err != nil {
		return err
	}

	bill.Status = bill.DeriveStatus(time.Now().Unix())
	return s.store.UpdateBill(ctx, bill)
}

// Delete removes a bill.
func (s *BillService) Delete(ctx context.Context, id string) error {
	return s.store.DeleteBill(ctx, id)
}

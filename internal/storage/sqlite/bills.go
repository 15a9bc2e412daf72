package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/billdesk/billdesk/internal/models"
)

const billColumns = `id, biller_id, customer_id, description, total_amount,
	paid_amount, due_date, status, created_at`

// CreateBill persists a new bill. A fresh bill starts with zero paid and
// pending status unless the caller set one.
func (s *SQLiteStore) CreateBill(ctx context.Context, bill *models.Bill) error {
	if bill.ID == "" {
		bill.ID = uuid.New().String()
	}
	if bill.CreatedAt == 0 {
		bill.CreatedAt = time.Now().Unix()
	}
	if bill.Status == "" {
		bill.Status = models.BillPending
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO bills (`+billColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		bill.ID, bill.BillerID, bill.CustomerID, bill.Description,
		bill.TotalAmount.String(), bill.PaidAmount.String(),
		bill.DueDate, string(bill.Status), bill.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create bill: %w", err)
	}

	return nil
}

func scanBill(scan func(dest ...interface{}) error) (*models.Bill, error) {
	bill := &models.Bill{}
	var total, paid, status string

	if err := scan(
		&bill.ID, &bill.BillerID, &bill.CustomerID, &bill.Description,
		&total, &paid, &bill.DueDate, &status, &bill.CreatedAt,
	); err != nil {
		return nil, err
	}

	var err error
	if bill.TotalAmount, err = parseAmount(total); err != nil {
		return nil, err
	}
	if bill.PaidAmount, err = parseAmount(paid); err != nil {
		return nil, err
	}
	bill.Status = models.BillStatus(status)

	return bill, nil
}

// GetBill retrieves a bill by ID.
func (s *SQLiteStore) GetBill(ctx context.Context, id string) (*models.Bill, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+billColumns+` FROM bills WHERE id = ?`, id)

	bill, err := scanBill(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("bill not found: %s: %w", id, errNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}

	return bill, nil
}

func (s *SQLiteStore) listBills(ctx context.Context, where string, args ...interface{}) ([]*models.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills`
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY due_date, created_at"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	defer rows.Close()

	var bills []*models.Bill
	for rows.Next() {
		bill, err := scanBill(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		bills = append(bills, bill)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bills: %w", err)
	}

	return bills, nil
}

// ListBillsByCustomer retrieves all bills owed by a customer.
func (s *SQLiteStore) ListBillsByCustomer(ctx context.Context, customerID string) ([]*models.Bill, error) {
	return s.listBills(ctx, "customer_id = ?", customerID)
}

// ListBillsByBiller retrieves all bills issued by a biller.
func (s *SQLiteStore) ListBillsByBiller(ctx context.Context, billerID string) ([]*models.Bill, error) {
	return s.listBills(ctx, "biller_id = ?", billerID)
}

// ListBills retrieves every bill.
func (s *SQLiteStore) ListBills(ctx context.Context) ([]*models.Bill, error) {
	return s.listBills(ctx, "")
}

// UpdateBill updates a bill's descriptive fields and status. Paid amounts
// change only through ApplyPayment/DeletePayment.
func (s *SQLiteStore) UpdateBill(ctx context.Context, bill *models.Bill) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE bills SET description = ?, total_amount = ?, due_date = ?, status = ?
		 WHERE id = ?`,
		bill.Description, bill.TotalAmount.String(), bill.DueDate,
		string(bill.Status), bill.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update bill: %w", err)
	}
	return requireRowAffected(res, "bill", bill.ID)
}

// DeleteBill removes a bill by ID.
func (s *SQLiteStore) DeleteBill(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM bills WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete bill: %w", err)
	}
	return requireRowAffected(res, "bill", id)
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/billdesk/billdesk/internal/models"
	"github.com/billdesk/billdesk/internal/storage"
)

// ApplyPayment inserts the payment with its allocations and rolls each
// affected bill's paid amount and status forward, all in one transaction.
// An allocation that exceeds its bill's current remainder aborts the whole
// payment; selections captured before a concurrent payment landed must not
// overdraw a bill.
func (s *SQLiteStore) ApplyPayment(ctx context.Context, payment *models.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}
	if payment.CreatedAt == 0 {
		payment.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var reference, notes interface{} = nil, nil
	if payment.ReferenceNumber != "" {
		reference = payment.ReferenceNumber
	}
	if payment.Notes != "" {
		notes = payment.Notes
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO payments (id, customer_id, amount, method, reference_number, notes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		payment.ID, payment.CustomerID, payment.Amount.String(),
		payment.Method, reference, notes, payment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}

	now := time.Now().Unix()
	for _, alloc := range payment.Allocations {
		if err := s.applyAllocation(ctx, tx, payment.ID, alloc, now); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// applyAllocation inserts one allocation row and advances its bill.
func (s *SQLiteStore) applyAllocation(ctx context.Context, tx *sql.Tx, paymentID string, alloc models.PaymentAllocation, now int64) error {
	var totalRaw, paidRaw string
	var dueDate int64
	err := tx.QueryRowContext(ctx,
		"SELECT total_amount, paid_amount, due_date FROM bills WHERE id = ?",
		alloc.BillID,
	).Scan(&totalRaw, &paidRaw, &dueDate)
	if err == sql.ErrNoRows {
		return fmt.Errorf("bill not found: %s: %w", alloc.BillID, errNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to load bill for allocation: %w", err)
	}

	total, err := parseAmount(totalRaw)
	if err != nil {
		return err
	}
	paid, err := parseAmount(paidRaw)
	if err != nil {
		return err
	}

	remaining := total.Sub(paid)
	if alloc.AmountApplied.Sign() <= 0 || alloc.AmountApplied.GreaterThan(remaining) {
		return fmt.Errorf("bill %s: applied %s against remaining %s: %w",
			alloc.BillID, alloc.AmountApplied, remaining, storage.ErrOverAllocation)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO payment_allocations (payment_id, bill_id, amount_applied)
		 VALUES (?, ?, ?)`,
		paymentID, alloc.BillID, alloc.AmountApplied.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert allocation: %w", err)
	}

	newPaid := paid.Add(alloc.AmountApplied)
	updated := models.Bill{TotalAmount: total, PaidAmount: newPaid, DueDate: dueDate}
	_, err = tx.ExecContext(ctx,
		"UPDATE bills SET paid_amount = ?, status = ? WHERE id = ?",
		newPaid.String(), string(updated.DeriveStatus(now)), alloc.BillID,
	)
	if err != nil {
		return fmt.Errorf("failed to update bill paid amount: %w", err)
	}

	return nil
}

// GetPayment retrieves a payment with its allocations.
func (s *SQLiteStore) GetPayment(ctx context.Context, id string) (*models.Payment, error) {
	payment := &models.Payment{}
	var amount string
	var reference, notes sql.NullString

	err := s.db.QueryRowContext(ctx,
		`SELECT id, customer_id, amount, method, reference_number, notes, created_at
		 FROM payments WHERE id = ?`,
		id,
	).Scan(&payment.ID, &payment.CustomerID, &amount, &payment.Method,
		&reference, &notes, &payment.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("payment not found: %s: %w", id, errNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	if payment.Amount, err = parseAmount(amount); err != nil {
		return nil, err
	}
	if reference.Valid {
		payment.ReferenceNumber = reference.String
	}
	if notes.Valid {
		payment.Notes = notes.String
	}

	if err := s.loadAllocations(ctx, payment); err != nil {
		return nil, err
	}

	return payment, nil
}

// loadAllocations populates payment.Allocations.
func (s *SQLiteStore) loadAllocations(ctx context.Context, payment *models.Payment) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT bill_id, amount_applied FROM payment_allocations
		 WHERE payment_id = ? ORDER BY bill_id`,
		payment.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get allocations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var alloc models.PaymentAllocation
		var amount string
		if err := rows.Scan(&alloc.BillID, &amount); err != nil {
			return fmt.Errorf("failed to scan allocation: %w", err)
		}
		if alloc.AmountApplied, err = parseAmount(amount); err != nil {
			return err
		}
		payment.Allocations = append(payment.Allocations, alloc)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate allocations: %w", err)
	}
	return nil
}

func (s *SQLiteStore) listPayments(ctx context.Context, where string, args ...interface{}) ([]*models.Payment, error) {
	query := `SELECT id, customer_id, amount, method, reference_number, notes, created_at FROM payments`
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []*models.Payment
	for rows.Next() {
		payment := &models.Payment{}
		var amount string
		var reference, notes sql.NullString
		if err := rows.Scan(&payment.ID, &payment.CustomerID, &amount, &payment.Method,
			&reference, &notes, &payment.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		if payment.Amount, err = parseAmount(amount); err != nil {
			return nil, err
		}
		if reference.Valid {
			payment.ReferenceNumber = reference.String
		}
		if notes.Valid {
			payment.Notes = notes.String
		}
		payments = append(payments, payment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payments: %w", err)
	}

	for _, p := range payments {
		if err := s.loadAllocations(ctx, p); err != nil {
			return nil, err
		}
	}

	return payments, nil
}

// ListPaymentsByCustomer retrieves a customer's payment history, newest first.
func (s *SQLiteStore) ListPaymentsByCustomer(ctx context.Context, customerID string) ([]*models.Payment, error) {
	return s.listPayments(ctx, "customer_id = ?", customerID)
}

// ListPayments retrieves every payment, newest first.
func (s *SQLiteStore) ListPayments(ctx context.Context) ([]*models.Payment, error) {
	return s.listPayments(ctx, "")
}

// DeletePayment removes a payment and reverses its allocations' effect on
// the affected bills' paid amounts and statuses, in one transaction.
func (s *SQLiteStore) DeletePayment(ctx context.Context, id string) error {
	payment, err := s.GetPayment(ctx, id)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	for _, alloc := range payment.Allocations {
		var totalRaw, paidRaw string
		var dueDate int64
		err := tx.QueryRowContext(ctx,
			"SELECT total_amount, paid_amount, due_date FROM bills WHERE id = ?",
			alloc.BillID,
		).Scan(&totalRaw, &paidRaw, &dueDate)
		if err == sql.ErrNoRows {
			continue // bill already deleted; nothing to reverse
		}
		if err != nil {
			return fmt.Errorf("failed to load bill for reversal: %w", err)
		}

		total, err := parseAmount(totalRaw)
		if err != nil {
			return err
		}
		paid, err := parseAmount(paidRaw)
		if err != nil {
			return err
		}

		newPaid := paid.Sub(alloc.AmountApplied)
		if newPaid.Sign() < 0 {
			newPaid = decimal.Zero
		}
		reverted := models.Bill{TotalAmount: total, PaidAmount: newPaid, DueDate: dueDate}
		if _, err := tx.ExecContext(ctx,
			"UPDATE bills SET paid_amount = ?, status = ? WHERE id = ?",
			newPaid.String(), string(reverted.DeriveStatus(now)), alloc.BillID,
		); err != nil {
			return fmt.Errorf("failed to revert bill paid amount: %w", err)
		}
	}

	// Allocations cascade with the payment row.
	if _, err := tx.ExecContext(ctx, "DELETE FROM payments WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete payment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/billdesk/billdesk/internal/models"
)

// CreateBiller persists a new biller.
func (s *SQLiteStore) CreateBiller(ctx context.Context, biller *models.Biller) error {
	if biller.ID == "" {
		biller.ID = uuid.New().String()
	}
	if biller.CreatedAt == 0 {
		biller.CreatedAt = time.Now().Unix()
	}

	var phone, address interface{} = nil, nil
	if biller.Phone != "" {
		phone = biller.Phone
	}
	if biller.Address != "" {
		address = biller.Address
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO billers (id, name, email, phone, address, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		biller.ID, biller.Name, biller.Email, phone, address, biller.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create biller: %w", err)
	}

	return nil
}

// GetBiller retrieves a biller by ID.
func (s *SQLiteStore) GetBiller(ctx context.Context, id string) (*models.Biller, error) {
	biller := &models.Biller{}
	var phone, address sql.NullString

	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, phone, address, created_at FROM billers WHERE id = ?`,
		id,
	).Scan(&biller.ID, &biller.Name, &biller.Email, &phone, &address, &biller.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("biller not found: %s: %w", id, errNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get biller: %w", err)
	}

	if phone.Valid {
		biller.Phone = phone.String
	}
	if address.Valid {
		biller.Address = address.String
	}

	return biller, nil
}

// ListBillers retrieves all billers ordered by name.
func (s *SQLiteStore) ListBillers(ctx context.Context) ([]*models.Biller, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, email, phone, address, created_at FROM billers ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list billers: %w", err)
	}
	defer rows.Close()

	var billers []*models.Biller
	for rows.Next() {
		biller := &models.Biller{}
		var phone, address sql.NullString
		if err := rows.Scan(&biller.ID, &biller.Name, &biller.Email, &phone, &address, &biller.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan biller: %w", err)
		}
		if phone.Valid {
			biller.Phone = phone.String
		}
		if address.Valid {
			biller.Address = address.String
		}
		billers = append(billers, biller)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate billers: %w", err)
	}

	return billers, nil
}

// UpdateBiller updates an existing biller.
func (s *SQLiteStore) UpdateBiller(ctx context.Context, biller *models.Biller) error {
	var phone, address interface{} = nil, nil
	if biller.Phone != "" {
		phone = biller.Phone
	}
	if biller.Address != "" {
		address = biller.Address
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE billers SET name = ?, email = ?, phone = ?, address = ? WHERE id = ?`,
		biller.Name, biller.Email, phone, address, biller.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update biller: %w", err)
	}
	return requireRowAffected(res, "biller", biller.ID)
}

// DeleteBiller removes a biller by ID.
func (s *SQLiteStore) DeleteBiller(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM billers WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete biller: %w", err)
	}
	return requireRowAffected(res, "biller", id)
}

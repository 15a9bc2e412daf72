package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/billdesk/billdesk/internal/models"
)

const userColumns = `id, email, first_name, last_name, password_hash,
	is_customer, is_biller, is_superuser, biller_id, created_at, updated_at`

// CreateUser inserts a new user into the database.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt == 0 {
		user.CreatedAt = time.Now().Unix()
	}
	if user.UpdatedAt == 0 {
		user.UpdatedAt = user.CreatedAt
	}

	var billerID interface{} = nil
	if user.BillerID != "" {
		billerID = user.BillerID
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Email,
		user.FirstName,
		user.LastName,
		user.PasswordHash,
		user.IsCustomer,
		user.IsBiller,
		user.IsSuperuser,
		billerID,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (s *SQLiteStore) scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var billerID sql.NullString

	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.PasswordHash,
		&user.IsCustomer,
		&user.IsBiller,
		&user.IsSuperuser,
		&billerID,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if billerID.Valid {
		user.BillerID = billerID.String
	}

	return user, nil
}

// GetUserByEmail retrieves a user by their email address.
// Returns (nil, nil) if no user has that email.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)

	user, err := s.scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil // User not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	if err := s.loadUserGroups(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByID retrieves a user by their ID.
// Returns (nil, nil) if no user has that ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)

	user, err := s.scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil // User not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	if err := s.loadUserGroups(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ListUsers retrieves all users ordered by creation time.
func (s *SQLiteStore) ListUsers(ctx context.Context) ([]*models.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user := &models.User{}
		var billerID sql.NullString
		if err := rows.Scan(
			&user.ID,
			&user.Email,
			&user.FirstName,
			&user.LastName,
			&user.PasswordHash,
			&user.IsCustomer,
			&user.IsBiller,
			&user.IsSuperuser,
			&billerID,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		if billerID.Valid {
			user.BillerID = billerID.String
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return users, nil
}

// UpdateUser updates an existing user's mutable fields.
func (s *SQLiteStore) UpdateUser(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().Unix()

	var billerID interface{} = nil
	if user.BillerID != "" {
		billerID = user.BillerID
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET email = ?, first_name = ?, last_name = ?,
		 is_customer = ?, is_biller = ?, is_superuser = ?, biller_id = ?, updated_at = ?
		 WHERE id = ?`,
		user.Email, user.FirstName, user.LastName,
		user.IsCustomer, user.IsBiller, user.IsSuperuser, billerID, user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return requireRowAffected(res, "user", user.ID)
}

// DeleteUser removes a user by ID.
func (s *SQLiteStore) DeleteUser(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return requireRowAffected(res, "user", id)
}

// loadUserGroups populates user.GroupIDs from the user_groups join table.
func (s *SQLiteStore) loadUserGroups(ctx context.Context, user *models.User) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT group_id FROM user_groups WHERE user_id = ? ORDER BY group_id", user.ID)
	if err != nil {
		return fmt.Errorf("failed to get user groups: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var groupID string
		if err := rows.Scan(&groupID); err != nil {
			return fmt.Errorf("failed to scan user group: %w", err)
		}
		user.GroupIDs = append(user.GroupIDs, groupID)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate user groups: %w", err)
	}
	return nil
}

// requireRowAffected converts a zero-row update/delete into storage.ErrNotFound.
func requireRowAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s not found: %s: %w", entity, id, errNotFound)
	}
	return nil
}

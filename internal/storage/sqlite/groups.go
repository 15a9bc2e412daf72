package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/billdesk/billdesk/internal/models"
)

// CreateGroup persists a permission group with its codes.
func (s *SQLiteStore) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO groups (id, name, created_at) VALUES (?, ?, ?)",
		group.ID, group.Name, group.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}

	for _, code := range group.Permissions {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO group_permissions (group_id, code) VALUES (?, ?)",
			group.ID, code,
		)
		if err != nil {
			return fmt.Errorf("failed to insert group permission: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetGroup retrieves a group with its permission codes.
func (s *SQLiteStore) GetGroup(ctx context.Context, id string) (*models.Group, error) {
	group := &models.Group{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, created_at FROM groups WHERE id = ?",
		id,
	).Scan(&group.ID, &group.Name, &group.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("group not found: %s: %w", id, errNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	if err := s.loadGroupPermissions(ctx, group); err != nil {
		return nil, err
	}

	return group, nil
}

func (s *SQLiteStore) loadGroupPermissions(ctx context.Context, group *models.Group) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT code FROM group_permissions WHERE group_id = ? ORDER BY code",
		group.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get group permissions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return fmt.Errorf("failed to scan permission: %w", err)
		}
		group.Permissions = append(group.Permissions, code)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate permissions: %w", err)
	}
	return nil
}

// ListGroups retrieves all groups with their permission codes.
func (s *SQLiteStore) ListGroups(ctx context.Context) ([]*models.Group, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, created_at FROM groups ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []*models.Group
	for rows.Next() {
		group := &models.Group{}
		if err := rows.Scan(&group.ID, &group.Name, &group.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}

	for _, g := range groups {
		if err := s.loadGroupPermissions(ctx, g); err != nil {
			return nil, err
		}
	}

	return groups, nil
}

// UpdateGroup replaces a group's name and permission codes.
func (s *SQLiteStore) UpdateGroup(ctx context.Context, group *models.Group) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE groups SET name = ? WHERE id = ?", group.Name, group.ID)
	if err != nil {
		return fmt.Errorf("failed to update group: %w", err)
	}
	if err := requireRowAffected(res, "group", group.ID); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM group_permissions WHERE group_id = ?", group.ID); err != nil {
		return fmt.Errorf("failed to clear group permissions: %w", err)
	}
	for _, code := range group.Permissions {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO group_permissions (group_id, code) VALUES (?, ?)",
			group.ID, code); err != nil {
			return fmt.Errorf("failed to insert group permission: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// DeleteGroup removes a group; memberships and codes cascade.
func (s *SQLiteStore) DeleteGroup(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM groups WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	return requireRowAffected(res, "group", id)
}

// AssignUserToGroup adds a membership; adding twice is a no-op.
func (s *SQLiteStore) AssignUserToGroup(ctx context.Context, userID, groupID string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO user_groups (user_id, group_id) VALUES (?, ?)",
		userID, groupID,
	)
	if err != nil {
		return fmt.Errorf("failed to assign user to group: %w", err)
	}
	return nil
}

// RemoveUserFromGroup removes a membership.
func (s *SQLiteStore) RemoveUserFromGroup(ctx context.Context, userID, groupID string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM user_groups WHERE user_id = ? AND group_id = ?",
		userID, groupID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove user from group: %w", err)
	}
	return nil
}

// PermissionsForUser returns the union of permission codes across the
// user's groups, sorted and de-duplicated by the query.
func (s *SQLiteStore) PermissionsForUser(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT gp.code
		 FROM group_permissions gp
		 JOIN user_groups ug ON ug.group_id = gp.group_id
		 WHERE ug.user_id = ?
		 ORDER BY gp.code`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get permissions for user: %w", err)
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("failed to scan permission: %w", err)
		}
		codes = append(codes, code)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate permissions: %w", err)
	}

	return codes, nil
}

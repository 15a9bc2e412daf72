package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// SaveSession stores the login facts wholesale, keyed by token. Facts are
// serialized as a JSON object of string values. Saving an existing token
// replaces the record.
func (s *SQLiteStore) SaveSession(ctx context.Context, token string, facts map[string]string, expiresAt int64) error {
	raw, err := json.Marshal(facts)
	if err != nil {
		return fmt.Errorf("failed to encode session facts: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (token, facts, expires_at) VALUES (?, ?, ?)
		 ON CONFLICT(token) DO UPDATE SET facts = excluded.facts, expires_at = excluded.expires_at`,
		token, string(raw), expiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// GetSession retrieves the facts for a token. Expired sessions read as not
// found, same as a token that was never issued.
func (s *SQLiteStore) GetSession(ctx context.Context, token string) (map[string]string, error) {
	var raw string
	var expiresAt int64

	err := s.db.QueryRowContext(ctx,
		"SELECT facts, expires_at FROM sessions WHERE token = ?", token,
	).Scan(&raw, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("session not found: %w", errNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if expiresAt > 0 && time.Now().Unix() > expiresAt {
		return nil, fmt.Errorf("session expired: %w", errNotFound)
	}

	var facts map[string]string
	if err := json.Unmarshal([]byte(raw), &facts); err != nil {
		return nil, fmt.Errorf("failed to decode session facts: %w", err)
	}

	return facts, nil
}

// DeleteSession removes a session wholesale. Deleting an unknown token is
// not an error; logout must be idempotent.
func (s *SQLiteStore) DeleteSession(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE token = ?", token)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

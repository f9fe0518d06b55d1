package storage

import (
	"context"
	"fmt"
)

// GetOrCreateUser resolves a Tailscale login name to a user ID, creating the
// row on first sight. Refreshes last_seen and display_name on every call so
// the account reflects the latest identity info.
func (db *DB) GetOrCreateUser(ctx context.Context, login, displayName string) (int, error) {
	var id int
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO users (login, display_name) VALUES ($1, $2)
		 ON CONFLICT (login) DO UPDATE
		 SET last_seen = NOW(),
		     display_name = COALESCE(NULLIF($2, ''), users.display_name)
		 RETURNING id`,
		login, displayName).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("resolving user %s: %w", login, err)
	}
	return id, nil
}

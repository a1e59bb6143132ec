package procedure

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// UpsertUser creates or updates a directory entry keyed by email.
func (s *Store) UpsertUser(ctx context.Context, user User) (*User, error) {
	ctx = ensureContext(ctx)
	email := strings.ToLower(strings.TrimSpace(user.Email))
	if email == "" {
		return nil, errors.New("user email required")
	}

	err := retryWrite(ctx, func() error {
		_, execErr := s.db.ExecContext(ctx,
			`INSERT INTO users (email, roles, designation, full_name, created_at)
             VALUES (?, ?, ?, ?, ?)
             ON CONFLICT (email) DO UPDATE SET
                roles = excluded.roles,
                designation = excluded.designation,
                full_name = excluded.full_name`,
			email,
			joinRoles(user.Roles),
			user.Designation,
			user.FullName,
			timestamp(time.Now()),
		)
		return execErr
	})
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	return s.UserByEmail(ctx, email)
}

// UserByEmail resolves a directory entry, or ErrNotFound.
func (s *Store) UserByEmail(ctx context.Context, email string) (*User, error) {
	ctx = ensureContext(ctx)
	normalized := strings.ToLower(strings.TrimSpace(email))

	var (
		user      User
		roles     string
		createdAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, roles, designation, full_name, created_at FROM users WHERE email = ?`,
		normalized,
	).Scan(&user.ID, &user.Email, &roles, &user.Designation, &user.FullName, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", email, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	user.Roles = splitRoles(roles)
	user.CreatedAt = parseTimestamp(createdAt)
	return &user, nil
}

func joinRoles(roles []Role) string {
	parts := make([]string, 0, len(roles))
	for _, role := range roles {
		trimmed := strings.TrimSpace(string(role))
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, ",")
}

func splitRoles(value string) []Role {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	roles := make([]Role, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			roles = append(roles, Role(trimmed))
		}
	}
	return roles
}

package email

import (
	"context"
	"fmt"

	"petplaza/internal/database"
)

// RecipientSource resolves which community members receive an alert
type RecipientSource interface {
	Recipients(ctx context.Context) ([]string, error)
}

type pgRecipients struct {
	db database.Service
}

// NewPGRecipients returns a source that fans alerts out to every
// registered user.
func NewPGRecipients(db database.Service) RecipientSource {
	return &pgRecipients{db: db}
}

func (r *pgRecipients) Recipients(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT email FROM users ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to query recipients: %w", err)
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("failed to scan recipient: %w", err)
		}
		emails = append(emails, email)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read recipients: %w", err)
	}

	return emails, nil
}

// StaticRecipients is a fixed recipient list, used in tests and in
// deployments without a shared users database.
type StaticRecipients []string

func (s StaticRecipients) Recipients(ctx context.Context) ([]string, error) {
	return []string(s), nil
}

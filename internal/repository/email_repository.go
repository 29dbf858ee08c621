package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ticketmail/ticketmail/internal/database"
	"github.com/ticketmail/ticketmail/internal/model"
)

// EmailRepository handles email record persistence
type EmailRepository struct {
	db *database.Postgres
}

// NewEmailRepository creates a new EmailRepository
func NewEmailRepository(db *database.Postgres) *EmailRepository {
	return &EmailRepository{db: db}
}

// EmailUpdate carries the fields of a partial email update.
// Nil fields are left untouched.
type EmailUpdate struct {
	Subject *string
	Message *string
}

// Create inserts a new email record and fills in its generated fields
func (r *EmailRepository) Create(ctx context.Context, email *model.Email) error {
	now := time.Now().UTC()
	query := `
		INSERT INTO emails (device_id, subject, message, recipient, created_at, edited_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		email.DeviceID,
		email.Subject,
		email.Message,
		email.Recipient,
		now,
	).Scan(&email.ID)
	if err != nil {
		return fmt.Errorf("failed to create email: %w", err)
	}
	email.CreatedAt = now
	email.EditedAt = now
	return nil
}

// GetByID retrieves an email by ID, optionally scoped to a device
func (r *EmailRepository) GetByID(ctx context.Context, id int64, deviceID *string) (*model.Email, error) {
	query := `
		SELECT id, device_id, subject, message, recipient, created_at, edited_at
		FROM emails
		WHERE id = $1 AND ($2::text IS NULL OR device_id = $2)
	`
	return scanEmail(r.db.QueryRowContext(ctx, query, id, deviceID))
}

// List retrieves emails newest-edit-first, optionally scoped to a device
func (r *EmailRepository) List(ctx context.Context, deviceID *string) ([]*model.Email, error) {
	query := `
		SELECT id, device_id, subject, message, recipient, created_at, edited_at
		FROM emails
		WHERE ($1::text IS NULL OR device_id = $1)
		ORDER BY edited_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, deviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list emails: %w", err)
	}
	defer rows.Close()

	var emails []*model.Email
	for rows.Next() {
		var e model.Email
		if err := rows.Scan(&e.ID, &e.DeviceID, &e.Subject, &e.Message, &e.Recipient, &e.CreatedAt, &e.EditedAt); err != nil {
			return nil, fmt.Errorf("failed to scan email: %w", err)
		}
		emails = append(emails, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate emails: %w", err)
	}
	return emails, nil
}

// Update applies a partial update and returns the updated record
func (r *EmailRepository) Update(ctx context.Context, id int64, deviceID *string, upd EmailUpdate) (*model.Email, error) {
	query := `
		UPDATE emails
		SET subject = COALESCE($3, subject),
		    message = COALESCE($4, message),
		    edited_at = $5
		WHERE id = $1 AND ($2::text IS NULL OR device_id = $2)
		RETURNING id, device_id, subject, message, recipient, created_at, edited_at
	`
	return scanEmail(r.db.QueryRowContext(ctx, query, id, deviceID, upd.Subject, upd.Message, time.Now().UTC()))
}

// Delete removes an email record
func (r *EmailRepository) Delete(ctx context.Context, id int64, deviceID *string) error {
	query := `DELETE FROM emails WHERE id = $1 AND ($2::text IS NULL OR device_id = $2)`
	result, err := r.db.ExecContext(ctx, query, id, deviceID)
	if err != nil {
		return fmt.Errorf("failed to delete email: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanEmail(row *sql.Row) (*model.Email, error) {
	var e model.Email
	err := row.Scan(&e.ID, &e.DeviceID, &e.Subject, &e.Message, &e.Recipient, &e.CreatedAt, &e.EditedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan email: %w", err)
	}
	return &e, nil
}

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

// SubscriberRepository handles subscriber persistence.
// The subscribers table carries a UNIQUE constraint on email; Upsert
// leans on it so that concurrent syncs of the same address resolve to
// a single row.
type SubscriberRepository struct {
	db *database.Postgres
}

// NewSubscriberRepository creates a new SubscriberRepository
func NewSubscriberRepository(db *database.Postgres) *SubscriberRepository {
	return &SubscriberRepository{db: db}
}

// SubscriberUpdate carries the fields of a partial subscriber update.
// Nil fields are left untouched.
type SubscriberUpdate struct {
	Email    *string
	IsActive *bool
}

// Upsert creates a subscriber for the address, or reactivates an
// existing inactive row. Returns the row plus whether it was newly
// created or reactivated; an already-active row is returned unchanged.
func (r *SubscriberRepository) Upsert(ctx context.Context, email string, deviceID *string) (*model.Subscriber, bool, bool, error) {
	now := time.Now().UTC()

	// Atomic conditional insert; ON CONFLICT DO NOTHING returns no row
	// when the address already exists.
	insert := `
		INSERT INTO subscribers (device_id, email, is_active, created_at, updated_at)
		VALUES ($1, $2, true, $3, $3)
		ON CONFLICT (email) DO NOTHING
		RETURNING id, device_id, email, is_active, created_at, updated_at
	`
	sub, err := scanSubscriber(r.db.QueryRowContext(ctx, insert, deviceID, email, now))
	if err == nil {
		return sub, true, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, false, fmt.Errorf("failed to upsert subscriber: %w", err)
	}

	// Row exists; reactivate only if inactive.
	reactivate := `
		UPDATE subscribers
		SET is_active = true, device_id = COALESCE($2, device_id), updated_at = $3
		WHERE email = $1 AND is_active = false
		RETURNING id, device_id, email, is_active, created_at, updated_at
	`
	sub, err = scanSubscriber(r.db.QueryRowContext(ctx, reactivate, email, deviceID, now))
	if err == nil {
		return sub, false, true, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, false, fmt.Errorf("failed to reactivate subscriber: %w", err)
	}

	// Already active; return as-is.
	sub, err = r.GetByEmail(ctx, email)
	if err != nil {
		return nil, false, false, err
	}
	return sub, false, false, nil
}

// GetByID retrieves a subscriber by ID, optionally scoped to a device
func (r *SubscriberRepository) GetByID(ctx context.Context, id int64, deviceID *string) (*model.Subscriber, error) {
	query := `
		SELECT id, device_id, email, is_active, created_at, updated_at
		FROM subscribers
		WHERE id = $1 AND ($2::text IS NULL OR device_id = $2)
	`
	return scanSubscriber(r.db.QueryRowContext(ctx, query, id, deviceID))
}

// GetByEmail retrieves a subscriber by email address, ignoring device scope
func (r *SubscriberRepository) GetByEmail(ctx context.Context, email string) (*model.Subscriber, error) {
	query := `
		SELECT id, device_id, email, is_active, created_at, updated_at
		FROM subscribers
		WHERE email = $1
	`
	return scanSubscriber(r.db.QueryRowContext(ctx, query, email))
}

// ListActive retrieves active subscribers newest-first, optionally scoped to a device
func (r *SubscriberRepository) ListActive(ctx context.Context, deviceID *string) ([]*model.Subscriber, error) {
	query := `
		SELECT id, device_id, email, is_active, created_at, updated_at
		FROM subscribers
		WHERE is_active = true AND ($1::text IS NULL OR device_id = $1)
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, deviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscribers: %w", err)
	}
	defer rows.Close()

	var subs []*model.Subscriber
	for rows.Next() {
		var s model.Subscriber
		if err := rows.Scan(&s.ID, &s.DeviceID, &s.Email, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan subscriber: %w", err)
		}
		subs = append(subs, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate subscribers: %w", err)
	}
	return subs, nil
}

// Update applies a partial update and returns the updated record
func (r *SubscriberRepository) Update(ctx context.Context, id int64, deviceID *string, upd SubscriberUpdate) (*model.Subscriber, error) {
	query := `
		UPDATE subscribers
		SET email = COALESCE($3, email),
		    is_active = COALESCE($4, is_active),
		    updated_at = $5
		WHERE id = $1 AND ($2::text IS NULL OR device_id = $2)
		RETURNING id, device_id, email, is_active, created_at, updated_at
	`
	return scanSubscriber(r.db.QueryRowContext(ctx, query, id, deviceID, upd.Email, upd.IsActive, time.Now().UTC()))
}

// DeactivateByID soft-deletes a subscriber within the device scope
func (r *SubscriberRepository) DeactivateByID(ctx context.Context, id int64, deviceID *string) (*model.Subscriber, error) {
	query := `
		UPDATE subscribers
		SET is_active = false, updated_at = $3
		WHERE id = $1 AND ($2::text IS NULL OR device_id = $2)
		RETURNING id, device_id, email, is_active, created_at, updated_at
	`
	return scanSubscriber(r.db.QueryRowContext(ctx, query, id, deviceID, time.Now().UTC()))
}

// DeactivateByEmail soft-deletes a subscriber by address. Device scope
// is deliberately ignored so any caller can unsubscribe an address.
func (r *SubscriberRepository) DeactivateByEmail(ctx context.Context, email string) (*model.Subscriber, error) {
	query := `
		UPDATE subscribers
		SET is_active = false, updated_at = $2
		WHERE email = $1
		RETURNING id, device_id, email, is_active, created_at, updated_at
	`
	return scanSubscriber(r.db.QueryRowContext(ctx, query, email, time.Now().UTC()))
}

func scanSubscriber(row *sql.Row) (*model.Subscriber, error) {
	var s model.Subscriber
	err := row.Scan(&s.ID, &s.DeviceID, &s.Email, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan subscriber: %w", err)
	}
	return &s, nil
}

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

// BroadcastRepository handles broadcast log persistence
type BroadcastRepository struct {
	db *database.Postgres
}

// NewBroadcastRepository creates a new BroadcastRepository
func NewBroadcastRepository(db *database.Postgres) *BroadcastRepository {
	return &BroadcastRepository{db: db}
}

// Create inserts a new broadcast log with status=pending
func (r *BroadcastRepository) Create(ctx context.Context, log *model.BroadcastLog) error {
	now := time.Now().UTC()
	query := `
		INSERT INTO broadcast_logs (device_id, broadcast_id, subject, message,
		    sender_email, sender_name, recipients_count, sent_count, failed_count, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 0, 0, $8, $9)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		log.DeviceID,
		log.BroadcastID,
		log.Subject,
		log.Message,
		log.SenderEmail,
		log.SenderName,
		log.RecipientsCount,
		model.BroadcastStatusPending,
		now,
	).Scan(&log.ID)
	if err != nil {
		return fmt.Errorf("failed to create broadcast log: %w", err)
	}
	log.Status = model.BroadcastStatusPending
	log.CreatedAt = now
	return nil
}

// Finalize writes the outcome counts and final status. A log is
// finalized at most once; pending is the only state it moves from.
func (r *BroadcastRepository) Finalize(ctx context.Context, id int64, sent, failed int, status model.BroadcastStatus) error {
	query := `
		UPDATE broadcast_logs
		SET sent_count = $2, failed_count = $3, status = $4
		WHERE id = $1 AND status = $5
	`
	result, err := r.db.ExecContext(ctx, query, id, sent, failed, status, model.BroadcastStatusPending)
	if err != nil {
		return fmt.Errorf("failed to finalize broadcast log: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkFailed flags a pending broadcast whose transport never opened
func (r *BroadcastRepository) MarkFailed(ctx context.Context, id int64) error {
	return r.Finalize(ctx, id, 0, 0, model.BroadcastStatusFailed)
}

// List retrieves broadcast logs newest-first, optionally scoped to a device
func (r *BroadcastRepository) List(ctx context.Context, deviceID *string) ([]*model.BroadcastLog, error) {
	query := `
		SELECT id, device_id, broadcast_id, subject, message, sender_email, sender_name,
		       recipients_count, sent_count, failed_count, status, created_at
		FROM broadcast_logs
		WHERE ($1::text IS NULL OR device_id = $1)
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, deviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list broadcast logs: %w", err)
	}
	defer rows.Close()

	var logs []*model.BroadcastLog
	for rows.Next() {
		var l model.BroadcastLog
		if err := rows.Scan(&l.ID, &l.DeviceID, &l.BroadcastID, &l.Subject, &l.Message,
			&l.SenderEmail, &l.SenderName, &l.RecipientsCount, &l.SentCount, &l.FailedCount,
			&l.Status, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan broadcast log: %w", err)
		}
		logs = append(logs, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate broadcast logs: %w", err)
	}
	return logs, nil
}

// GetByBroadcastID retrieves a broadcast log by its public broadcast ID
func (r *BroadcastRepository) GetByBroadcastID(ctx context.Context, broadcastID string) (*model.BroadcastLog, error) {
	query := `
		SELECT id, device_id, broadcast_id, subject, message, sender_email, sender_name,
		       recipients_count, sent_count, failed_count, status, created_at
		FROM broadcast_logs
		WHERE broadcast_id = $1
	`
	var l model.BroadcastLog
	err := r.db.QueryRowContext(ctx, query, broadcastID).Scan(
		&l.ID, &l.DeviceID, &l.BroadcastID, &l.Subject, &l.Message,
		&l.SenderEmail, &l.SenderName, &l.RecipientsCount, &l.SentCount, &l.FailedCount,
		&l.Status, &l.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get broadcast log: %w", err)
	}
	return &l, nil
}

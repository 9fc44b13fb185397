package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type NotificationRepo struct {
	pool *pgxpool.Pool
}

func NewNotificationRepo(pool *pgxpool.Pool) *NotificationRepo {
	return &NotificationRepo{pool: pool}
}

type NotificationRecord struct {
	ID             int64
	RecipientID    int64
	Kind           string
	Title          string
	Body           string
	RelatedUserID  *int64
	RelatedMatchID *int64
	IsRead         bool
	CreatedAt      time.Time
}

func (r *NotificationRepo) Create(ctx context.Context, rec NotificationRecord) (NotificationRecord, error) {
	if rec.RecipientID <= 0 || strings.TrimSpace(rec.Kind) == "" || strings.TrimSpace(rec.Title) == "" {
		return NotificationRecord{}, fmt.Errorf("invalid notification payload")
	}
	if r.pool == nil {
		return NotificationRecord{}, fmt.Errorf("postgres pool is nil")
	}

	var out NotificationRecord
	err := r.pool.QueryRow(ctx, `
INSERT INTO notifications (
	recipient_id,
	kind,
	title,
	body,
	related_user_id,
	related_match_id,
	is_read,
	created_at
) VALUES ($1, $2, $3, $4, $5, $6, FALSE, NOW())
RETURNING id, recipient_id, kind, title, body, related_user_id, related_match_id, is_read, created_at
`, rec.RecipientID, rec.Kind, rec.Title, rec.Body, rec.RelatedUserID, rec.RelatedMatchID).Scan(
		&out.ID,
		&out.RecipientID,
		&out.Kind,
		&out.Title,
		&out.Body,
		&out.RelatedUserID,
		&out.RelatedMatchID,
		&out.IsRead,
		&out.CreatedAt,
	)
	if err != nil {
		return NotificationRecord{}, fmt.Errorf("create notification: %w", err)
	}

	return out, nil
}

func (r *NotificationRepo) ListForUser(ctx context.Context, recipientID int64, limit int) ([]NotificationRecord, error) {
	if recipientID <= 0 {
		return nil, fmt.Errorf("invalid recipient id")
	}
	if limit <= 0 {
		limit = 100
	}
	if r.pool == nil {
		return []NotificationRecord{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, recipient_id, kind, title, body, related_user_id, related_match_id, is_read, created_at
FROM notifications
WHERE recipient_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2
`, recipientID, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	items := make([]NotificationRecord, 0, limit)
	for rows.Next() {
		var item NotificationRecord
		if err := rows.Scan(
			&item.ID,
			&item.RecipientID,
			&item.Kind,
			&item.Title,
			&item.Body,
			&item.RelatedUserID,
			&item.RelatedMatchID,
			&item.IsRead,
			&item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		items = append(items, item)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate notifications: %w", rows.Err())
	}

	return items, nil
}

// MarkRead flips is_read only on rows owned by recipientID; ids belonging
// to other users are silently ignored.
func (r *NotificationRepo) MarkRead(ctx context.Context, recipientID int64, ids []int64) error {
	if recipientID <= 0 || len(ids) == 0 {
		return fmt.Errorf("invalid mark-read payload")
	}
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	if _, err := r.pool.Exec(ctx, `
UPDATE notifications
SET is_read = TRUE
WHERE recipient_id = $1 AND id = ANY($2)
`, recipientID, ids); err != nil {
		return fmt.Errorf("mark notifications read: %w", err)
	}

	return nil
}

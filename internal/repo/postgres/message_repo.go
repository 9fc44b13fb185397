package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type MessageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepo(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

type MessageRecord struct {
	ID        int64
	MatchID   int64
	SenderID  int64
	Text      string
	CreatedAt time.Time
}

func (r *MessageRepo) Create(ctx context.Context, matchID, senderID int64, text string, now time.Time) (MessageRecord, error) {
	if matchID <= 0 || senderID <= 0 || strings.TrimSpace(text) == "" {
		return MessageRecord{}, fmt.Errorf("invalid message payload")
	}
	if r.pool == nil {
		return MessageRecord{}, fmt.Errorf("postgres pool is nil")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	var rec MessageRecord
	err := r.pool.QueryRow(ctx, `
INSERT INTO messages (
	match_id,
	sender_id,
	text,
	created_at
) VALUES ($1, $2, $3, $4)
RETURNING id, match_id, sender_id, text, created_at
`, matchID, senderID, text, now.UTC()).Scan(
		&rec.ID,
		&rec.MatchID,
		&rec.SenderID,
		&rec.Text,
		&rec.CreatedAt,
	)
	if err != nil {
		return MessageRecord{}, fmt.Errorf("create message: %w", err)
	}

	return rec, nil
}

func (r *MessageRepo) ListByMatch(ctx context.Context, matchID int64, limit int) ([]MessageRecord, error) {
	if matchID <= 0 {
		return nil, fmt.Errorf("invalid match id")
	}
	if limit <= 0 {
		limit = 200
	}
	if r.pool == nil {
		return []MessageRecord{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, match_id, sender_id, text, created_at
FROM messages
WHERE match_id = $1
ORDER BY created_at ASC, id ASC
LIMIT $2
`, matchID, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	items := make([]MessageRecord, 0, limit)
	for rows.Next() {
		var item MessageRecord
		if err := rows.Scan(
			&item.ID,
			&item.MatchID,
			&item.SenderID,
			&item.Text,
			&item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		items = append(items, item)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate messages: %w", rows.Err())
	}

	return items, nil
}

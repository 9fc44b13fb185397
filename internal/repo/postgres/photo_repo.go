package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PhotoRepo struct {
	pool *pgxpool.Pool
}

func NewPhotoRepo(pool *pgxpool.Pool) *PhotoRepo {
	return &PhotoRepo{pool: pool}
}

type PhotoRecord struct {
	ID        int64
	UserID    int64
	ObjectKey string
	Position  int
	CreatedAt time.Time
}

func (r *PhotoRepo) Create(ctx context.Context, userID int64, objectKey string, position int) (PhotoRecord, error) {
	if userID <= 0 || strings.TrimSpace(objectKey) == "" {
		return PhotoRecord{}, fmt.Errorf("invalid photo payload")
	}
	if r.pool == nil {
		return PhotoRecord{}, fmt.Errorf("postgres pool is nil")
	}

	var rec PhotoRecord
	err := r.pool.QueryRow(ctx, `
INSERT INTO photos (
	user_id,
	object_key,
	position,
	created_at
) VALUES ($1, $2, $3, NOW())
RETURNING id, user_id, object_key, position, created_at
`, userID, objectKey, position).Scan(
		&rec.ID,
		&rec.UserID,
		&rec.ObjectKey,
		&rec.Position,
		&rec.CreatedAt,
	)
	if err != nil {
		return PhotoRecord{}, fmt.Errorf("create photo: %w", err)
	}

	return rec, nil
}

func (r *PhotoRepo) ListForUser(ctx context.Context, userID int64) ([]PhotoRecord, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return []PhotoRecord{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, user_id, object_key, position, created_at
FROM photos
WHERE user_id = $1
ORDER BY position ASC, id ASC
`, userID)
	if err != nil {
		return nil, fmt.Errorf("list photos: %w", err)
	}
	defer rows.Close()

	items := make([]PhotoRecord, 0, 8)
	for rows.Next() {
		var item PhotoRecord
		if err := rows.Scan(
			&item.ID,
			&item.UserID,
			&item.ObjectKey,
			&item.Position,
			&item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan photo: %w", err)
		}
		items = append(items, item)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate photos: %w", rows.Err())
	}

	return items, nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrMatchNotFound = errors.New("match not found")

type MatchRepo struct {
	pool *pgxpool.Pool
}

func NewMatchRepo(pool *pgxpool.Pool) *MatchRepo {
	return &MatchRepo{pool: pool}
}

type MatchRecord struct {
	ID        int64
	UserAID   int64
	UserBID   int64
	CreatedAt time.Time
}

type MatchWithUserRecord struct {
	ID          int64
	OtherUserID int64
	OtherName   string
	OtherEmail  string
	CreatedAt   time.Time
}

// CreateCanonical inserts the match keyed by the sorted pair. Two
// concurrent mutual swipes both reach this insert; the unique index on
// (user_a_id, user_b_id) lets exactly one row through and the loser is
// folded into the existing record instead of an error.
func (r *MatchRepo) CreateCanonical(ctx context.Context, tx pgx.Tx, userID, targetID int64) (MatchRecord, bool, error) {
	if userID <= 0 || targetID <= 0 || userID == targetID {
		return MatchRecord{}, false, fmt.Errorf("invalid match payload")
	}
	if tx == nil {
		return MatchRecord{}, false, fmt.Errorf("transaction is required")
	}

	userA, userB := CanonicalPair(userID, targetID)

	var rec MatchRecord
	err := tx.QueryRow(ctx, `
INSERT INTO matches (
	user_a_id,
	user_b_id,
	created_at
) VALUES ($1, $2, NOW())
ON CONFLICT (user_a_id, user_b_id) DO NOTHING
RETURNING id, user_a_id, user_b_id, created_at
`, userA, userB).Scan(
		&rec.ID,
		&rec.UserAID,
		&rec.UserBID,
		&rec.CreatedAt,
	)
	if err == nil {
		return rec, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return MatchRecord{}, false, fmt.Errorf("create match: %w", err)
	}

	existing, err := r.getByPair(ctx, tx, userA, userB)
	if err != nil {
		return MatchRecord{}, false, err
	}
	return existing, false, nil
}

func (r *MatchRepo) getByPair(ctx context.Context, tx pgx.Tx, userA, userB int64) (MatchRecord, error) {
	var rec MatchRecord
	err := tx.QueryRow(ctx, `
SELECT id, user_a_id, user_b_id, created_at
FROM matches
WHERE user_a_id = $1 AND user_b_id = $2
`, userA, userB).Scan(
		&rec.ID,
		&rec.UserAID,
		&rec.UserBID,
		&rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return MatchRecord{}, ErrMatchNotFound
		}
		return MatchRecord{}, fmt.Errorf("get match by pair: %w", err)
	}

	return rec, nil
}

func (r *MatchRepo) GetByID(ctx context.Context, matchID int64) (MatchRecord, error) {
	if matchID <= 0 {
		return MatchRecord{}, fmt.Errorf("invalid match id")
	}
	if r.pool == nil {
		return MatchRecord{}, fmt.Errorf("postgres pool is nil")
	}

	var rec MatchRecord
	err := r.pool.QueryRow(ctx, `
SELECT id, user_a_id, user_b_id, created_at
FROM matches
WHERE id = $1
`, matchID).Scan(
		&rec.ID,
		&rec.UserAID,
		&rec.UserBID,
		&rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return MatchRecord{}, ErrMatchNotFound
		}
		return MatchRecord{}, fmt.Errorf("get match by id: %w", err)
	}

	return rec, nil
}

func (r *MatchRepo) ListForUser(ctx context.Context, userID int64, limit int) ([]MatchWithUserRecord, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}
	if limit <= 0 {
		limit = 100
	}
	if r.pool == nil {
		return []MatchWithUserRecord{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT
	m.id,
	CASE WHEN m.user_a_id = $1 THEN m.user_b_id ELSE m.user_a_id END AS other_user_id,
	COALESCE(u.name, ''),
	COALESCE(u.email, ''),
	m.created_at
FROM matches m
JOIN users u ON u.id = CASE WHEN m.user_a_id = $1 THEN m.user_b_id ELSE m.user_a_id END
WHERE m.user_a_id = $1 OR m.user_b_id = $1
ORDER BY m.created_at DESC, m.id DESC
LIMIT $2
`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	items := make([]MatchWithUserRecord, 0, limit)
	for rows.Next() {
		var item MatchWithUserRecord
		if err := rows.Scan(
			&item.ID,
			&item.OtherUserID,
			&item.OtherName,
			&item.OtherEmail,
			&item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		items = append(items, item)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate matches: %w", rows.Err())
	}

	return items, nil
}

// CanonicalPair orders two user ids so the smaller one is always stored
// as user_a_id. Every match lookup and insert goes through this order.
func CanonicalPair(a, b int64) (int64, int64) {
	if a > b {
		return b, a
	}
	return a, b
}

func (m MatchRecord) HasParticipant(userID int64) bool {
	return m.UserAID == userID || m.UserBID == userID
}

func (m MatchRecord) OtherParticipant(userID int64) int64 {
	if m.UserAID == userID {
		return m.UserBID
	}
	return m.UserAID
}

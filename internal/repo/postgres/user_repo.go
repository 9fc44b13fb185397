package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

type UserRecord struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Bio          string
	CreatedAt    time.Time
}

func (r *UserRepo) Create(ctx context.Context, name, email, passwordHash string) (UserRecord, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" || passwordHash == "" {
		return UserRecord{}, fmt.Errorf("invalid user payload")
	}
	if r.pool == nil {
		return UserRecord{}, fmt.Errorf("postgres pool is nil")
	}

	var rec UserRecord
	err := r.pool.QueryRow(ctx, `
INSERT INTO users (
	name,
	email,
	password_hash,
	created_at
) VALUES ($1, $2, $3, NOW())
RETURNING id, name, email, password_hash, COALESCE(bio, ''), created_at
`, strings.TrimSpace(name), normalizeEmail(email), passwordHash).Scan(
		&rec.ID,
		&rec.Name,
		&rec.Email,
		&rec.PasswordHash,
		&rec.Bio,
		&rec.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return UserRecord{}, ErrEmailTaken
		}
		return UserRecord{}, fmt.Errorf("create user: %w", err)
	}

	return rec, nil
}

func (r *UserRepo) GetByID(ctx context.Context, userID int64) (UserRecord, error) {
	if userID <= 0 {
		return UserRecord{}, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return UserRecord{}, fmt.Errorf("postgres pool is nil")
	}

	var rec UserRecord
	err := r.pool.QueryRow(ctx, `
SELECT id, name, email, password_hash, COALESCE(bio, ''), created_at
FROM users
WHERE id = $1
`, userID).Scan(
		&rec.ID,
		&rec.Name,
		&rec.Email,
		&rec.PasswordHash,
		&rec.Bio,
		&rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return UserRecord{}, ErrUserNotFound
		}
		return UserRecord{}, fmt.Errorf("get user by id: %w", err)
	}

	return rec, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (UserRecord, error) {
	if strings.TrimSpace(email) == "" {
		return UserRecord{}, fmt.Errorf("invalid email")
	}
	if r.pool == nil {
		return UserRecord{}, fmt.Errorf("postgres pool is nil")
	}

	var rec UserRecord
	err := r.pool.QueryRow(ctx, `
SELECT id, name, email, password_hash, COALESCE(bio, ''), created_at
FROM users
WHERE email = $1
`, normalizeEmail(email)).Scan(
		&rec.ID,
		&rec.Name,
		&rec.Email,
		&rec.PasswordHash,
		&rec.Bio,
		&rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return UserRecord{}, ErrUserNotFound
		}
		return UserRecord{}, fmt.Errorf("get user by email: %w", err)
	}

	return rec, nil
}

func (r *UserRepo) UpdateProfile(ctx context.Context, userID int64, name, bio string) (UserRecord, error) {
	if userID <= 0 || strings.TrimSpace(name) == "" {
		return UserRecord{}, fmt.Errorf("invalid profile payload")
	}
	if r.pool == nil {
		return UserRecord{}, fmt.Errorf("postgres pool is nil")
	}

	var rec UserRecord
	err := r.pool.QueryRow(ctx, `
UPDATE users
SET name = $2, bio = $3
WHERE id = $1
RETURNING id, name, email, password_hash, COALESCE(bio, ''), created_at
`, userID, strings.TrimSpace(name), strings.TrimSpace(bio)).Scan(
		&rec.ID,
		&rec.Name,
		&rec.Email,
		&rec.PasswordHash,
		&rec.Bio,
		&rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return UserRecord{}, ErrUserNotFound
		}
		return UserRecord{}, fmt.Errorf("update profile: %w", err)
	}

	return rec, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

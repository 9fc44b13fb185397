package profiles

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	pgrepo "github.com/kevalg4g/SoulSync-backend/internal/repo/postgres"
)

var (
	ErrValidation   = errors.New("validation error")
	ErrUserNotFound = errors.New("user not found")
)

const photoURLTTL = 15 * time.Minute

type UserStore interface {
	GetByID(ctx context.Context, userID int64) (pgrepo.UserRecord, error)
	UpdateProfile(ctx context.Context, userID int64, name, bio string) (pgrepo.UserRecord, error)
}

type PhotoStore interface {
	Create(ctx context.Context, userID int64, objectKey string, position int) (pgrepo.PhotoRecord, error)
	ListForUser(ctx context.Context, userID int64) ([]pgrepo.PhotoRecord, error)
}

type PhotoStorage interface {
	PutPhoto(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type Profile struct {
	ID    int64
	Name  string
	Email string
	Bio   string
}

type Photo struct {
	ID       int64
	Position int
	URL      string
}

type Service struct {
	users   UserStore
	photos  PhotoStore
	storage PhotoStorage
}

func NewService(users UserStore, photos PhotoStore, storage PhotoStorage) *Service {
	return &Service{
		users:   users,
		photos:  photos,
		storage: storage,
	}
}

func (s *Service) Get(ctx context.Context, userID int64) (Profile, error) {
	if userID <= 0 {
		return Profile{}, ErrValidation
	}
	if s.users == nil {
		return Profile{}, fmt.Errorf("user store is nil")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return Profile{}, ErrUserNotFound
		}
		return Profile{}, err
	}

	return Profile{ID: user.ID, Name: user.Name, Email: user.Email, Bio: user.Bio}, nil
}

func (s *Service) Update(ctx context.Context, userID int64, name, bio string) (Profile, error) {
	if userID <= 0 || strings.TrimSpace(name) == "" {
		return Profile{}, ErrValidation
	}
	if s.users == nil {
		return Profile{}, fmt.Errorf("user store is nil")
	}

	user, err := s.users.UpdateProfile(ctx, userID, name, bio)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return Profile{}, ErrUserNotFound
		}
		return Profile{}, err
	}

	return Profile{ID: user.ID, Name: user.Name, Email: user.Email, Bio: user.Bio}, nil
}

func (s *Service) UploadPhoto(ctx context.Context, userID int64, body io.Reader, size int64, contentType string, position int) (Photo, error) {
	if userID <= 0 || body == nil || size <= 0 {
		return Photo{}, ErrValidation
	}
	if s.photos == nil || s.storage == nil {
		return Photo{}, fmt.Errorf("photo dependencies are not configured")
	}

	key := fmt.Sprintf("photos/%d/%d", userID, time.Now().UnixNano())
	if err := s.storage.PutPhoto(ctx, key, body, size, contentType); err != nil {
		return Photo{}, fmt.Errorf("upload photo object: %w", err)
	}

	rec, err := s.photos.Create(ctx, userID, key, position)
	if err != nil {
		return Photo{}, err
	}

	url, err := s.storage.PresignGet(ctx, rec.ObjectKey, photoURLTTL)
	if err != nil {
		return Photo{}, fmt.Errorf("presign photo url: %w", err)
	}

	return Photo{ID: rec.ID, Position: rec.Position, URL: url}, nil
}

func (s *Service) ListPhotos(ctx context.Context, userID int64) ([]Photo, error) {
	if userID <= 0 {
		return nil, ErrValidation
	}
	if s.photos == nil || s.storage == nil {
		return nil, fmt.Errorf("photo dependencies are not configured")
	}

	rows, err := s.photos.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	items := make([]Photo, 0, len(rows))
	for _, row := range rows {
		url, err := s.storage.PresignGet(ctx, row.ObjectKey, photoURLTTL)
		if err != nil {
			return nil, fmt.Errorf("presign photo url: %w", err)
		}
		items = append(items, Photo{ID: row.ID, Position: row.Position, URL: url})
	}
	return items, nil
}

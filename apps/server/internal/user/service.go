package user

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"tienlen-lite/apps/server/internal/store"
)

var ErrNotFound = errors.New("user not found")

// User is an opaque identity: no credentials, just a display name and
// join bookkeeping.
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"created_at"`
	LastJoinedAt time.Time `json:"last_joined_at"`
}

type Service struct {
	store *store.Store
}

func NewService(st *store.Store) *Service {
	return &Service{store: st}
}

func (s *Service) Create(ctx context.Context, name string) (*User, error) {
	now := time.Now().UTC()
	u := &User{ID: uuid.New(), Name: name, CreatedAt: now, LastJoinedAt: now}
	if err := s.save(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	raw, ok, err := s.store.Get(ctx, store.UserKey(id))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	var u User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// TouchOnJoin bumps last_joined_at and refreshes the record's TTL. Used
// whenever the user creates or joins a room.
func (s *Service) TouchOnJoin(ctx context.Context, id string) (*User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	u.LastJoinedAt = time.Now().UTC()
	if err := s.save(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) save(ctx context.Context, u *User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return s.store.Client().Set(ctx, store.UserKey(u.ID.String()), data, store.UserTTL).Err()
}

package user

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"tienlen-lite/apps/server/internal/store"
)

func newTestService(t *testing.T) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	st, err := store.New("redis://" + mr.Addr())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return NewService(st), mr
}

func TestCreateAndGet(t *testing.T) {
	svc, mr := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "alice")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Name != "alice" {
		t.Fatalf("name = %q", created.Name)
	}
	if created.CreatedAt.IsZero() || created.LastJoinedAt.IsZero() {
		t.Fatal("timestamps not set")
	}

	got, err := svc.Get(ctx, created.ID.String())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != created.ID || got.Name != created.Name {
		t.Fatalf("got = %+v, want %+v", got, created)
	}

	if ttl := mr.TTL(store.UserKey(created.ID.String())); ttl != store.UserTTL {
		t.Fatalf("ttl = %v, want %v", ttl, store.UserTTL)
	}
}

func TestGetMissing(t *testing.T) {
	svc, _ := newTestService(t)
	if _, err := svc.Get(context.Background(), "does-not-exist"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestTouchOnJoin(t *testing.T) {
	svc, mr := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "bob")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	mr.FastForward(store.UserTTL / 2)
	touched, err := svc.TouchOnJoin(ctx, created.ID.String())
	if err != nil {
		t.Fatalf("touch: %v", err)
	}
	if touched.LastJoinedAt.Before(created.LastJoinedAt) {
		t.Fatal("last_joined_at went backwards")
	}
	if ttl := mr.TTL(store.UserKey(created.ID.String())); ttl != store.UserTTL {
		t.Fatalf("ttl after touch = %v, want refreshed %v", ttl, store.UserTTL)
	}

	if _, err := svc.TouchOnJoin(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

package store

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	mr := miniredis.RunT(t)
	st, err := New("redis://" + mr.Addr())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestGetMissingKey(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	_, ok, err := st.Get(ctx, "nope")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Fatal("missing key reported present")
	}
}

func TestGetRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	if err := st.Client().Set(ctx, RoomMetaKey("ABC234"), "blob", RoomTTL).Err(); err != nil {
		t.Fatalf("set: %v", err)
	}
	val, ok, err := st.Get(ctx, RoomMetaKey("ABC234"))
	if err != nil || !ok {
		t.Fatalf("get: val=%q ok=%v err=%v", val, ok, err)
	}
	if val != "blob" {
		t.Fatalf("val = %q, want blob", val)
	}

	exists, err := st.Exists(ctx, RoomMetaKey("ABC234"))
	if err != nil || !exists {
		t.Fatalf("exists = %v, err = %v", exists, err)
	}
}

func TestHGet(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	if err := st.Client().HSet(ctx, RoomPlayersKey("ABC234"), "p1", "blob").Err(); err != nil {
		t.Fatalf("hset: %v", err)
	}

	val, ok, err := st.HGet(ctx, RoomPlayersKey("ABC234"), "p1")
	if err != nil || !ok || val != "blob" {
		t.Fatalf("hget: val=%q ok=%v err=%v", val, ok, err)
	}
	_, ok, err = st.HGet(ctx, RoomPlayersKey("ABC234"), "p2")
	if err != nil {
		t.Fatalf("hget missing field: %v", err)
	}
	if ok {
		t.Fatal("missing field reported present")
	}

	all, err := st.HGetAll(ctx, RoomPlayersKey("ABC234"))
	if err != nil {
		t.Fatalf("hgetall: %v", err)
	}
	if len(all) != 1 || all["p1"] != "blob" {
		t.Fatalf("hgetall = %v", all)
	}
}

func TestKeyLayout(t *testing.T) {
	if got := RoomMetaKey("XYZ789"); got != "room:XYZ789:meta" {
		t.Fatalf("meta key = %q", got)
	}
	if got := RoomPlayersKey("XYZ789"); got != "room:XYZ789:players" {
		t.Fatalf("players key = %q", got)
	}
	if got := RoomStateKey("XYZ789"); got != "room:XYZ789:state" {
		t.Fatalf("state key = %q", got)
	}
	if got := RoomHandsKey("XYZ789"); got != "room:XYZ789:hands" {
		t.Fatalf("hands key = %q", got)
	}
	if got := UserKey("abc"); got != "user:abc" {
		t.Fatalf("user key = %q", got)
	}
}

package hub

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
)

// testConn builds a Conn with no socket and no write pump; frames stay
// in the buffered channel for inspection.
func testConn(buf int) *Conn {
	return &Conn{send: make(chan []byte, buf)}
}

func drain(c *Conn) [][]byte {
	var out [][]byte
	for {
		select {
		case data := <-c.send:
			out = append(out, data)
		default:
			return out
		}
	}
}

func TestBroadcastReachesEveryConnection(t *testing.T) {
	h := New()
	p1, p2 := uuid.New(), uuid.New()
	c1, c2, c3 := testConn(4), testConn(4), testConn(4)

	h.Connect(c1, "ROOM01", p1)
	h.Connect(c2, "ROOM01", p1)
	h.Connect(c3, "ROOM01", p2)

	h.Broadcast("ROOM01", map[string]string{"type": "room:update"})

	for i, c := range []*Conn{c1, c2, c3} {
		frames := drain(c)
		if len(frames) != 1 {
			t.Fatalf("conn %d got %d frames, want 1", i, len(frames))
		}
		var decoded map[string]string
		if err := json.Unmarshal(frames[0], &decoded); err != nil {
			t.Fatalf("frame not JSON: %v", err)
		}
		if decoded["type"] != "room:update" {
			t.Fatalf("frame = %v", decoded)
		}
	}
}

func TestBroadcastIgnoresOtherRooms(t *testing.T) {
	h := New()
	c1, c2 := testConn(4), testConn(4)
	h.Connect(c1, "ROOM01", uuid.New())
	h.Connect(c2, "ROOM02", uuid.New())

	h.Broadcast("ROOM01", "ping")
	if got := len(drain(c2)); got != 0 {
		t.Fatalf("other room received %d frames", got)
	}
	if got := len(drain(c1)); got != 1 {
		t.Fatalf("target room received %d frames", got)
	}
}

func TestSendToPlayerTargetsOnlyThatPlayer(t *testing.T) {
	h := New()
	p1, p2 := uuid.New(), uuid.New()
	c1, c2 := testConn(4), testConn(4)
	h.Connect(c1, "ROOM01", p1)
	h.Connect(c2, "ROOM01", p2)

	h.SendToPlayer("ROOM01", p1, "secret")

	if got := len(drain(c1)); got != 1 {
		t.Fatalf("target got %d frames", got)
	}
	if got := len(drain(c2)); got != 0 {
		t.Fatalf("bystander got %d frames", got)
	}
}

func TestDisconnectSingleBucket(t *testing.T) {
	h := New()
	p1 := uuid.New()
	c1 := testConn(4)
	h.Connect(c1, "ROOM01", p1)

	h.Disconnect(c1, "ROOM01", p1)
	h.Broadcast("ROOM01", "ping")
	if got := len(drain(c1)); got != 0 {
		t.Fatalf("disconnected conn got %d frames", got)
	}
	if len(h.rooms) != 0 {
		t.Fatal("empty room not pruned")
	}
}

func TestDisconnectAllBuckets(t *testing.T) {
	h := New()
	p1, p2 := uuid.New(), uuid.New()
	shared := testConn(4)
	h.Connect(shared, "ROOM01", p1)
	h.Connect(shared, "ROOM01", p2)

	h.Disconnect(shared, "ROOM01", uuid.Nil)
	h.SendToPlayer("ROOM01", p1, "ping")
	h.SendToPlayer("ROOM01", p2, "ping")
	if got := len(drain(shared)); got != 0 {
		t.Fatalf("conn still wired after full disconnect, got %d frames", got)
	}
}

func TestBroadcastDetachesFullConnections(t *testing.T) {
	h := New()
	p1 := uuid.New()
	stuck := testConn(1)
	healthy := testConn(4)
	h.Connect(stuck, "ROOM01", p1)
	h.Connect(healthy, "ROOM01", uuid.New())

	stuck.Enqueue([]byte("backlog"))
	h.Broadcast("ROOM01", "ping")

	if got := len(drain(healthy)); got != 1 {
		t.Fatalf("healthy conn got %d frames", got)
	}
	h.mu.Lock()
	_, present := h.rooms["ROOM01"][p1]
	h.mu.Unlock()
	if present {
		t.Fatal("stuck conn still registered after failed send")
	}
}

func TestEnqueueAfterClose(t *testing.T) {
	c := testConn(4)
	c.Close()
	if c.Enqueue([]byte("late")) {
		t.Fatal("enqueue succeeded on a closed conn")
	}
	c.Close()
}

package protocol

import "encoding/json"

// Wire event names. Client-to-server unless noted otherwise;
// room:update, game:end and error are server-originated only.
const (
	EventRoomJoin    = "room:join"
	EventRoomLeave   = "room:leave"
	EventRoomSync    = "room:sync"
	EventRoomUpdate  = "room:update"
	EventPlayerReady = "player:ready"
	EventGameStart   = "game:start"
	EventGameEnd     = "game:end"
	EventTurnPlay    = "turn:play"
	EventTurnPass    = "turn:pass"
	EventError       = "error"
)

// Envelope is an inbound frame; payload decoding is deferred to the
// handler for the type.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Event is an outbound frame.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// ErrorPayload is the payload of an error event.
type ErrorPayload struct {
	Message string `json:"message"`
}

func ErrorEvent(message string) Event {
	return Event{Type: EventError, Payload: ErrorPayload{Message: message}}
}

package room

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NormalizeCode uppercases a client-supplied room code.
func NormalizeCode(code string) string { return strings.ToUpper(strings.TrimSpace(code)) }

// RoomStatus is the lifecycle stage of a room.
type RoomStatus string

const (
	StatusWaiting  RoomStatus = "waiting"
	StatusReady    RoomStatus = "ready"
	StatusInGame   RoomStatus = "in_game"
	StatusFinished RoomStatus = "finished"
)

// Player is a seat in a room. Score accumulates across a series of
// games; hand_count is the public shadow of the hidden hand size.
type Player struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Seat      int       `json:"seat"`
	IsHost    bool      `json:"is_host"`
	IsReady   bool      `json:"is_ready"`
	HandCount int       `json:"hand_count"`
	Score     int       `json:"score"`
	Status    string    `json:"status"`
}

// Room is the persisted metadata blob. The roster lives in its own
// hash, so Room carries no player list.
type Room struct {
	ID           uuid.UUID  `json:"id"`
	Code         string     `json:"code"`
	PasswordHash string     `json:"password_hash,omitempty"`
	HostID       uuid.UUID  `json:"host_id"`
	Status       RoomStatus `json:"status"`
	MaxPlayers   int        `json:"max_players"`
	CreatedAt    time.Time  `json:"created_at"`
	GamesPlayed  int        `json:"games_played"`
	MaxGames     int        `json:"max_games"`
}

// Public is the client-facing room payload: metadata minus the password
// hash, plus the roster sorted by seat.
type Public struct {
	ID          uuid.UUID  `json:"id"`
	Code        string     `json:"code"`
	HostID      uuid.UUID  `json:"host_id"`
	Status      RoomStatus `json:"status"`
	MaxPlayers  int        `json:"max_players"`
	Players     []Player   `json:"players"`
	CreatedAt   time.Time  `json:"created_at"`
	GamesPlayed int        `json:"games_played"`
	MaxGames    int        `json:"max_games"`
}

// Public builds the broadcast view of the room for the given roster.
func (r *Room) Public(players []Player) Public {
	sorted := make([]Player, len(players))
	copy(sorted, players)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Seat < sorted[j].Seat })
	return Public{
		ID:          r.ID,
		Code:        r.Code,
		HostID:      r.HostID,
		Status:      r.Status,
		MaxPlayers:  r.MaxPlayers,
		Players:     sorted,
		CreatedAt:   r.CreatedAt,
		GamesPlayed: r.GamesPlayed,
		MaxGames:    r.MaxGames,
	}
}

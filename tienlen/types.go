package tienlen

import (
	"github.com/google/uuid"

	"tienlen-lite/card"
)

// ComboType names the legal Tien Len card combinations.
type ComboType string

const (
	ComboSingle           ComboType = "single"
	ComboPair             ComboType = "pair"
	ComboTriple           ComboType = "triple"
	ComboFourKind         ComboType = "four_kind"
	ComboStraight         ComboType = "straight"
	ComboConsecutivePairs ComboType = "consecutive_pairs"
)

// Combo classifies a played card set. Rank is the highest rank in the
// set. Length is the pair count for consecutive pairs and the card count
// otherwise. Suit is set for singles only.
type Combo struct {
	Type   ComboType
	Rank   int
	Length int
	Suit   card.Suit
}

// MoveType is either "play" or "pass".
type MoveType string

const (
	MovePlay MoveType = "play"
	MovePass MoveType = "pass"
)

// Move is a player's attempted turn action.
type Move struct {
	Type       MoveType
	Cards      []card.Card
	ByPlayerID uuid.UUID
}

// LastPlay is the combo currently on the table, to be beaten or passed.
type LastPlay struct {
	Type       ComboType   `json:"type"`
	Cards      []card.Card `json:"cards"`
	ByPlayerID uuid.UUID   `json:"by_player_id"`
}

// GameStatus is the lifecycle stage of a single game.
type GameStatus string

const (
	GameWaiting  GameStatus = "waiting"
	GamePlaying  GameStatus = "playing"
	GameFinished GameStatus = "finished"
)

// GameState is the full broadcast state payload. Hidden hands are never
// part of it; clients see only hand counts on the roster.
type GameState struct {
	RoomID            uuid.UUID   `json:"room_id"`
	Status            GameStatus  `json:"status"`
	PlayersOrder      []uuid.UUID `json:"players_order"`
	CurrentTurn       uuid.UUID   `json:"current_turn"`
	LastPlay          *LastPlay   `json:"last_play,omitempty"`
	PassCount         int         `json:"pass_count"`
	WinnerID          *uuid.UUID  `json:"winner_id,omitempty"`
	FirstGame         bool        `json:"first_game"`
	FirstTurnRequired bool        `json:"first_turn_required"`
}

// NextPlayer returns the player after current in circular order.
func NextPlayer(order []uuid.UUID, current uuid.UUID) uuid.UUID {
	for i, id := range order {
		if id == current {
			return order[(i+1)%len(order)]
		}
	}
	return current
}

package game

import (
	"context"
	"encoding/json"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"tienlen-lite/apps/server/internal/room"
	"tienlen-lite/apps/server/internal/store"
	"tienlen-lite/card"
	"tienlen-lite/tienlen"
)

const cardsPerPlayer = 13

// Service runs the game state machine on top of the store and the room
// roster. It holds no game state in memory; every operation loads,
// mutates and writes back through the store.
type Service struct {
	store *store.Store
	rooms *room.Service

	mu  sync.Mutex
	rng *rand.Rand
}

func NewService(st *store.Store, rooms *room.Service) *Service {
	return &Service{
		store: st,
		rooms: rooms,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetSeed pins the shuffle source. Test hook.
func (s *Service) SetSeed(seed int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rng = rand.New(rand.NewSource(seed))
}

func (s *Service) shuffledDeck() []card.Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	return card.Shuffle(card.NewDeck(), s.rng)
}

// Start deals a new game in the room. maxGames >= 1 updates the series
// length; 0 leaves it alone. The returned hands are for targeted
// delivery only and are never broadcast.
func (s *Service) Start(ctx context.Context, code string, maxGames int) (*tienlen.GameState, map[uuid.UUID][]card.Card, error) {
	rm, err := s.rooms.Get(ctx, code)
	if err != nil {
		return nil, nil, err
	}
	players, err := s.rooms.Players(ctx, rm.Code)
	if err != nil {
		return nil, nil, err
	}
	if len(players) < 2 {
		return nil, nil, ErrNotEnoughPlayers
	}

	if maxGames >= 1 {
		rm.MaxGames = maxGames
	}
	rm.Status = room.StatusInGame

	sort.Slice(players, func(i, j int) bool { return players[i].Seat < players[j].Seat })
	order := make([]uuid.UUID, len(players))
	for i, p := range players {
		order[i] = p.ID
	}

	deck := s.shuffledDeck()
	hands := make(map[uuid.UUID][]card.Card, len(order))
	limit := cardsPerPlayer * len(order)
	if limit > len(deck) {
		limit = len(deck)
	}
	for i := 0; i < limit; i++ {
		id := order[i%len(order)]
		hands[id] = append(hands[id], deck[i])
	}
	for id := range hands {
		card.Sort(hands[id])
	}

	currentTurn := order[0]
	threeSpadesDealt := false
	for id, hand := range hands {
		for _, c := range hand {
			if c == card.ThreeOfSpades {
				currentTurn = id
				threeSpadesDealt = true
				break
			}
		}
		if threeSpadesDealt {
			break
		}
	}

	firstGame := rm.GamesPlayed == 0
	state := &tienlen.GameState{
		RoomID:            rm.ID,
		Status:            tienlen.GamePlaying,
		PlayersOrder:      order,
		CurrentTurn:       currentTurn,
		FirstGame:         firstGame,
		FirstTurnRequired: firstGame && threeSpadesDealt,
	}
	rm.GamesPlayed++

	stateRaw, err := json.Marshal(state)
	if err != nil {
		return nil, nil, err
	}
	metaRaw, err := json.Marshal(rm)
	if err != nil {
		return nil, nil, err
	}

	pipe := s.store.Client().TxPipeline()
	pipe.Set(ctx, store.RoomStateKey(rm.Code), stateRaw, store.RoomTTL)
	pipe.Set(ctx, store.RoomMetaKey(rm.Code), metaRaw, store.RoomTTL)
	for i := range players {
		players[i].HandCount = len(hands[players[i].ID])
		playerRaw, err := json.Marshal(players[i])
		if err != nil {
			return nil, nil, err
		}
		handRaw, err := json.Marshal(hands[players[i].ID])
		if err != nil {
			return nil, nil, err
		}
		pipe.HSet(ctx, store.RoomPlayersKey(rm.Code), players[i].ID.String(), playerRaw)
		pipe.HSet(ctx, store.RoomHandsKey(rm.Code), players[i].ID.String(), handRaw)
	}
	pipe.Expire(ctx, store.RoomPlayersKey(rm.Code), store.RoomTTL)
	pipe.Expire(ctx, store.RoomHandsKey(rm.Code), store.RoomTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, nil, err
	}

	return state, hands, nil
}

// Play applies a turn-holder's card play: validates against the last
// play, settles any chop penalty, removes the cards from the hand, and
// advances or finishes the game.
func (s *Service) Play(ctx context.Context, code string, playerID uuid.UUID, cards []card.Card) (*tienlen.GameState, error) {
	code = room.NormalizeCode(code)
	state, err := s.State(ctx, code)
	if err != nil {
		return nil, err
	}
	if state.Status != tienlen.GamePlaying {
		return nil, ErrGameFinished
	}
	if state.CurrentTurn != playerID {
		return nil, ErrNotYourTurn
	}

	hand, err := s.Hand(ctx, code, playerID)
	if err != nil {
		return nil, err
	}
	if !card.Contains(hand, cards) {
		return nil, ErrCardsNotInHand
	}
	if state.FirstTurnRequired {
		leads := false
		for _, c := range cards {
			if c == card.ThreeOfSpades {
				leads = true
				break
			}
		}
		if !leads {
			return nil, ErrMustLeadThreeSpades
		}
	}

	move := tienlen.Move{Type: tienlen.MovePlay, Cards: cards, ByPlayerID: playerID}
	newLast, err := tienlen.ValidateMove(move, state.LastPlay)
	if err != nil {
		return nil, err
	}

	players, err := s.rooms.Players(ctx, code)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*room.Player, len(players))
	for i := range players {
		byID[players[i].ID] = &players[i]
	}
	touched := make(map[uuid.UUID]bool)

	// Chop penalties settle against the outgoing last play before the
	// state mutates.
	if state.LastPlay != nil {
		candidate, cerr := tienlen.EvaluateCombo(cards)
		last, lerr := tienlen.EvaluateCombo(state.LastPlay.Cards)
		if cerr == nil && lerr == nil {
			if delta := tienlen.ChopDelta(candidate, last, state.LastPlay.Cards); delta > 0 {
				if winner, ok := byID[playerID]; ok {
					winner.Score += delta
					touched[playerID] = true
				}
				if loser, ok := byID[state.LastPlay.ByPlayerID]; ok {
					loser.Score -= delta
					touched[state.LastPlay.ByPlayerID] = true
				}
			}
		}
	}

	remaining := card.Remove(hand, cards)
	if p, ok := byID[playerID]; ok {
		p.HandCount = len(remaining)
		touched[playerID] = true
	}

	state.LastPlay = newLast
	state.PassCount = 0
	state.FirstTurnRequired = false
	if len(remaining) == 0 {
		state.Status = tienlen.GameFinished
		winner := playerID
		state.WinnerID = &winner
		if err := s.applyPlacementScores(ctx, code, state, byID, touched, playerID); err != nil {
			return nil, err
		}
	}
	state.CurrentTurn = tienlen.NextPlayer(state.PlayersOrder, playerID)

	stateRaw, err := json.Marshal(state)
	if err != nil {
		return nil, err
	}
	handRaw, err := json.Marshal(remaining)
	if err != nil {
		return nil, err
	}

	pipe := s.store.Client().TxPipeline()
	pipe.HSet(ctx, store.RoomHandsKey(code), playerID.String(), handRaw)
	pipe.Set(ctx, store.RoomStateKey(code), stateRaw, store.RoomTTL)
	for id := range touched {
		p := byID[id]
		raw, err := json.Marshal(*p)
		if err != nil {
			return nil, err
		}
		pipe.HSet(ctx, store.RoomPlayersKey(code), id.String(), raw)
	}
	pipe.Expire(ctx, store.RoomHandsKey(code), store.RoomTTL)
	pipe.Expire(ctx, store.RoomPlayersKey(code), store.RoomTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	return state, nil
}

// applyPlacementScores ranks players by remaining hand size (seat breaks
// ties) and applies the placement table for the player count.
func (s *Service) applyPlacementScores(ctx context.Context, code string, state *tienlen.GameState, byID map[uuid.UUID]*room.Player, touched map[uuid.UUID]bool, winnerID uuid.UUID) error {
	table := tienlen.PlacementScores(len(state.PlayersOrder))
	if table == nil {
		return nil
	}

	rawHands, err := s.store.HGetAll(ctx, store.RoomHandsKey(code))
	if err != nil {
		return err
	}
	counts := make(map[uuid.UUID]int, len(state.PlayersOrder))
	for _, id := range state.PlayersOrder {
		if id == winnerID {
			continue
		}
		var hand []card.Card
		if raw, ok := rawHands[id.String()]; ok {
			if err := json.Unmarshal([]byte(raw), &hand); err != nil {
				return err
			}
		}
		counts[id] = len(hand)
	}

	ranked := make([]uuid.UUID, len(state.PlayersOrder))
	copy(ranked, state.PlayersOrder)
	sort.Slice(ranked, func(i, j int) bool {
		ci, cj := counts[ranked[i]], counts[ranked[j]]
		if ci != cj {
			return ci < cj
		}
		pi, pj := byID[ranked[i]], byID[ranked[j]]
		if pi == nil || pj == nil {
			return i < j
		}
		return pi.Seat < pj.Seat
	})

	for pos, id := range ranked {
		if pos >= len(table) {
			break
		}
		if p, ok := byID[id]; ok {
			p.Score += table[pos]
			touched[id] = true
		}
	}
	return nil
}

// Pass advances the turn. When every other player has passed on the
// last play the trick resets and the last aggressor reclaims the lead.
func (s *Service) Pass(ctx context.Context, code string, playerID uuid.UUID) (*tienlen.GameState, error) {
	code = room.NormalizeCode(code)
	state, err := s.State(ctx, code)
	if err != nil {
		return nil, err
	}
	if state.CurrentTurn != playerID {
		return nil, ErrNotYourTurn
	}
	if state.LastPlay == nil {
		return nil, tienlen.ErrIllegalPass
	}

	state.PassCount++
	if state.PassCount >= len(state.PlayersOrder)-1 {
		state.PassCount = 0
		state.CurrentTurn = state.LastPlay.ByPlayerID
		state.LastPlay = nil
	} else {
		state.CurrentTurn = tienlen.NextPlayer(state.PlayersOrder, playerID)
	}

	raw, err := json.Marshal(state)
	if err != nil {
		return nil, err
	}
	if err := s.store.Client().Set(ctx, store.RoomStateKey(code), raw, store.RoomTTL).Err(); err != nil {
		return nil, err
	}
	return state, nil
}

// State loads the current game state, ErrGameNotStarted when absent.
func (s *Service) State(ctx context.Context, code string) (*tienlen.GameState, error) {
	raw, ok, err := s.store.Get(ctx, store.RoomStateKey(room.NormalizeCode(code)))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrGameNotStarted
	}
	var state tienlen.GameState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// Hand loads a player's hidden hand.
func (s *Service) Hand(ctx context.Context, code string, playerID uuid.UUID) ([]card.Card, error) {
	raw, ok, err := s.store.HGet(ctx, store.RoomHandsKey(room.NormalizeCode(code)), playerID.String())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrHandNotFound
	}
	var hand []card.Card
	if err := json.Unmarshal([]byte(raw), &hand); err != nil {
		return nil, err
	}
	return hand, nil
}

// MaybeStartNext either deals the next game of the series or, when the
// series is over, resets the room to waiting with scores preserved.
// seriesOver is true in the latter case and state/hands are nil.
func (s *Service) MaybeStartNext(ctx context.Context, code string) (*tienlen.GameState, map[uuid.UUID][]card.Card, bool, error) {
	rm, err := s.rooms.Get(ctx, code)
	if err != nil {
		return nil, nil, false, err
	}
	if rm.GamesPlayed < rm.MaxGames {
		state, hands, err := s.Start(ctx, rm.Code, 0)
		return state, hands, false, err
	}

	players, err := s.rooms.Players(ctx, rm.Code)
	if err != nil {
		return nil, nil, false, err
	}
	rm.Status = room.StatusWaiting
	rm.GamesPlayed = 0
	metaRaw, err := json.Marshal(rm)
	if err != nil {
		return nil, nil, false, err
	}

	pipe := s.store.Client().TxPipeline()
	pipe.Set(ctx, store.RoomMetaKey(rm.Code), metaRaw, store.RoomTTL)
	for i := range players {
		players[i].IsReady = false
		players[i].HandCount = 0
		raw, err := json.Marshal(players[i])
		if err != nil {
			return nil, nil, false, err
		}
		pipe.HSet(ctx, store.RoomPlayersKey(rm.Code), players[i].ID.String(), raw)
	}
	pipe.Expire(ctx, store.RoomPlayersKey(rm.Code), store.RoomTTL)
	pipe.Del(ctx, store.RoomStateKey(rm.Code))
	pipe.Del(ctx, store.RoomHandsKey(rm.Code))
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, nil, false, err
	}
	return nil, nil, true, nil
}

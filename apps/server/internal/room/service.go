package room

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"math/big"
	"time"

	"github.com/google/uuid"

	"tienlen-lite/apps/server/internal/store"
	"tienlen-lite/apps/server/internal/user"
)

// codeAlphabet omits the confusable symbols I, O, 0 and 1.
const (
	codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	codeLength   = 6

	DefaultMaxPlayers = 4
	DefaultMaxGames   = 1
)

type Service struct {
	store *store.Store
	users *user.Service
}

func NewService(st *store.Store, users *user.Service) *Service {
	return &Service{store: st, users: users}
}

func hashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

func generateCode() string {
	buf := make([]byte, codeLength)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic("room: crypto/rand unavailable: " + err.Error())
		}
		buf[i] = codeAlphabet[n.Int64()]
	}
	return string(buf)
}

// Create registers a room with the creating user seated at 0 as host.
// The password, when given, is stored as an SHA-256 hex digest.
func (s *Service) Create(ctx context.Context, userID string, maxPlayers int, password string) (Public, uuid.UUID, error) {
	u, err := s.users.TouchOnJoin(ctx, userID)
	if err != nil {
		return Public{}, uuid.Nil, err
	}

	code := generateCode()
	for {
		exists, err := s.store.Exists(ctx, store.RoomMetaKey(code))
		if err != nil {
			return Public{}, uuid.Nil, err
		}
		if !exists {
			break
		}
		code = generateCode()
	}

	host := Player{
		ID:     uuid.New(),
		Name:   u.Name,
		Seat:   0,
		IsHost: true,
		Status: "active",
	}
	rm := &Room{
		ID:         uuid.New(),
		Code:       code,
		HostID:     host.ID,
		Status:     StatusWaiting,
		MaxPlayers: maxPlayers,
		CreatedAt:  time.Now().UTC(),
		MaxGames:   DefaultMaxGames,
	}
	if password != "" {
		rm.PasswordHash = hashPassword(password)
	}

	metaRaw, err := json.Marshal(rm)
	if err != nil {
		return Public{}, uuid.Nil, err
	}
	hostRaw, err := json.Marshal(host)
	if err != nil {
		return Public{}, uuid.Nil, err
	}

	pipe := s.store.Client().TxPipeline()
	pipe.Set(ctx, store.RoomMetaKey(code), metaRaw, store.RoomTTL)
	pipe.HSet(ctx, store.RoomPlayersKey(code), host.ID.String(), hostRaw)
	pipe.Expire(ctx, store.RoomPlayersKey(code), store.RoomTTL)
	pipe.SAdd(ctx, store.RoomsActiveKey, code)
	if _, err := pipe.Exec(ctx); err != nil {
		return Public{}, uuid.Nil, err
	}

	return rm.Public([]Player{host}), host.ID, nil
}

// Join seats a user in an existing room at the lowest free seat.
func (s *Service) Join(ctx context.Context, code, userID, password string) (Public, uuid.UUID, error) {
	rm, err := s.Get(ctx, code)
	if err != nil {
		return Public{}, uuid.Nil, err
	}

	u, err := s.users.TouchOnJoin(ctx, userID)
	if err != nil {
		return Public{}, uuid.Nil, err
	}

	if rm.PasswordHash != "" {
		if password == "" || hashPassword(password) != rm.PasswordHash {
			return Public{}, uuid.Nil, ErrInvalidPassword
		}
	}

	players, err := s.Players(ctx, code)
	if err != nil {
		return Public{}, uuid.Nil, err
	}
	if len(players) >= rm.MaxPlayers {
		return Public{}, uuid.Nil, ErrRoomFull
	}

	occupied := make(map[int]bool, len(players))
	for _, p := range players {
		occupied[p.Seat] = true
	}
	seat := len(players)
	for i := 0; i < rm.MaxPlayers; i++ {
		if !occupied[i] {
			seat = i
			break
		}
	}

	p := Player{
		ID:     uuid.New(),
		Name:   u.Name,
		Seat:   seat,
		Status: "active",
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return Public{}, uuid.Nil, err
	}

	pipe := s.store.Client().TxPipeline()
	pipe.HSet(ctx, store.RoomPlayersKey(rm.Code), p.ID.String(), raw)
	pipe.Expire(ctx, store.RoomPlayersKey(rm.Code), store.RoomTTL)
	pipe.Expire(ctx, store.RoomMetaKey(rm.Code), store.RoomTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return Public{}, uuid.Nil, err
	}

	return rm.Public(append(players, p)), p.ID, nil
}

// RemovePlayer takes a player off the roster. An emptied room is torn
// down entirely; a departing host hands the role to the lowest-seat
// remaining player. The returned view is nil when the room is gone.
func (s *Service) RemovePlayer(ctx context.Context, code string, playerID uuid.UUID) (*Public, error) {
	rm, err := s.Get(ctx, code)
	if err != nil {
		return nil, err
	}

	players, err := s.Players(ctx, rm.Code)
	if err != nil {
		return nil, err
	}
	var leaver *Player
	remaining := make([]Player, 0, len(players))
	for _, p := range players {
		if p.ID == playerID {
			leaver = &p
			continue
		}
		remaining = append(remaining, p)
	}
	if leaver == nil {
		return nil, ErrPlayerNotFound
	}

	if len(remaining) == 0 {
		pipe := s.store.Client().TxPipeline()
		pipe.Del(ctx, store.RoomMetaKey(rm.Code))
		pipe.Del(ctx, store.RoomPlayersKey(rm.Code))
		pipe.Del(ctx, store.RoomStateKey(rm.Code))
		pipe.Del(ctx, store.RoomHandsKey(rm.Code))
		pipe.SRem(ctx, store.RoomsActiveKey, rm.Code)
		if _, err := pipe.Exec(ctx); err != nil {
			return nil, err
		}
		return nil, nil
	}

	pipe := s.store.Client().TxPipeline()
	if leaver.IsHost {
		newHost := remaining[0]
		for _, p := range remaining[1:] {
			if p.Seat < newHost.Seat {
				newHost = p
			}
		}
		newHost.IsHost = true
		rm.HostID = newHost.ID
		hostRaw, err := json.Marshal(newHost)
		if err != nil {
			return nil, err
		}
		metaRaw, err := json.Marshal(rm)
		if err != nil {
			return nil, err
		}
		pipe.HSet(ctx, store.RoomPlayersKey(rm.Code), newHost.ID.String(), hostRaw)
		pipe.Set(ctx, store.RoomMetaKey(rm.Code), metaRaw, store.RoomTTL)
		for i := range remaining {
			if remaining[i].ID == newHost.ID {
				remaining[i] = newHost
			}
		}
	}
	pipe.HDel(ctx, store.RoomPlayersKey(rm.Code), playerID.String())
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	view := rm.Public(remaining)
	return &view, nil
}

// Get loads room metadata by code. Codes are case-insensitive on the
// way in.
func (s *Service) Get(ctx context.Context, code string) (*Room, error) {
	code = NormalizeCode(code)
	raw, ok, err := s.store.Get(ctx, store.RoomMetaKey(code))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrRoomNotFound
	}
	var rm Room
	if err := json.Unmarshal([]byte(raw), &rm); err != nil {
		return nil, err
	}
	return &rm, nil
}

// Players loads the roster in unspecified order.
func (s *Service) Players(ctx context.Context, code string) ([]Player, error) {
	entries, err := s.store.HGetAll(ctx, store.RoomPlayersKey(NormalizeCode(code)))
	if err != nil {
		return nil, err
	}
	players := make([]Player, 0, len(entries))
	for _, raw := range entries {
		var p Player
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, nil
}

// Player loads a single roster entry.
func (s *Service) Player(ctx context.Context, code string, playerID uuid.UUID) (*Player, error) {
	raw, ok, err := s.store.HGet(ctx, store.RoomPlayersKey(NormalizeCode(code)), playerID.String())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrPlayerNotFound
	}
	var p Player
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdatePlayer writes back a roster entry and refreshes the hash TTL.
func (s *Service) UpdatePlayer(ctx context.Context, code string, p Player) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	code = NormalizeCode(code)
	pipe := s.store.Client().TxPipeline()
	pipe.HSet(ctx, store.RoomPlayersKey(code), p.ID.String(), raw)
	pipe.Expire(ctx, store.RoomPlayersKey(code), store.RoomTTL)
	_, err = pipe.Exec(ctx)
	return err
}

// SetReady toggles a player's ready flag and returns the updated view.
func (s *Service) SetReady(ctx context.Context, code string, playerID uuid.UUID, ready bool) (Public, error) {
	rm, err := s.Get(ctx, code)
	if err != nil {
		return Public{}, err
	}
	p, err := s.Player(ctx, rm.Code, playerID)
	if err != nil {
		return Public{}, err
	}
	p.IsReady = ready
	if err := s.UpdatePlayer(ctx, rm.Code, *p); err != nil {
		return Public{}, err
	}
	players, err := s.Players(ctx, rm.Code)
	if err != nil {
		return Public{}, err
	}
	return rm.Public(players), nil
}

// UpdateMeta writes back room metadata with a fresh TTL.
func (s *Service) UpdateMeta(ctx context.Context, rm *Room) error {
	raw, err := json.Marshal(rm)
	if err != nil {
		return err
	}
	return s.store.Client().Set(ctx, store.RoomMetaKey(rm.Code), raw, store.RoomTTL).Err()
}

// View assembles the public payload for broadcasts.
func (s *Service) View(ctx context.Context, code string) (Public, error) {
	rm, err := s.Get(ctx, code)
	if err != nil {
		return Public{}, err
	}
	players, err := s.Players(ctx, rm.Code)
	if err != nil {
		return Public{}, err
	}
	return rm.Public(players), nil
}

package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"tienlen-lite/apps/server/internal/game"
	"tienlen-lite/apps/server/internal/hub"
	"tienlen-lite/apps/server/internal/protocol"
	"tienlen-lite/apps/server/internal/room"
	"tienlen-lite/card"
	"tienlen-lite/tienlen"
)

const (
	readLimit = 65536
	pongWait  = 60 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // TODO: Restrict in production
	},
}

// Gateway accepts WebSocket connections and dispatches typed events to
// the room and game services.
type Gateway struct {
	hub      *hub.Hub
	rooms    *room.Service
	games    *game.Service
	handlers map[string]handler
}

type handler func(s *session, payload json.RawMessage)

// session is the per-connection dispatcher state: which room and player
// the socket is currently bound to.
type session struct {
	gw       *Gateway
	conn     *hub.Conn
	roomCode string
	playerID uuid.UUID
}

func New(h *hub.Hub, rooms *room.Service, games *game.Service) *Gateway {
	g := &Gateway{hub: h, rooms: rooms, games: games}
	g.handlers = map[string]handler{
		protocol.EventRoomJoin:    (*session).handleRoomJoin,
		protocol.EventRoomLeave:   (*session).handleRoomLeave,
		protocol.EventRoomSync:    (*session).handleRoomSync,
		protocol.EventPlayerReady: (*session).handlePlayerReady,
		protocol.EventGameStart:   (*session).handleGameStart,
		protocol.EventTurnPlay:    (*session).handleTurnPlay,
		protocol.EventTurnPass:    (*session).handleTurnPass,
	}
	return g
}

// HandleWebSocket upgrades the request and runs the event loop until
// the client goes away.
func (g *Gateway) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Gateway] Upgrade error: %v", err)
		return
	}
	conn := hub.NewConn(ws)
	s := &session{gw: g, conn: conn}

	ws.SetReadLimit(readLimit)
	ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	s.readLoop()
}

func (s *session) readLoop() {
	graceful := true
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Gateway] Handler panic: %v", r)
			s.send(protocol.ErrorEvent("internal error"))
			graceful = false
		}
		s.teardown(graceful)
	}()

	for {
		var env protocol.Envelope
		if err := s.conn.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Printf("[Gateway] Read error: %v", err)
			}
			return
		}
		h, ok := s.gw.handlers[env.Type]
		if !ok {
			s.sendError("unknown event type")
			continue
		}
		h(s, env.Payload)
	}
}

// teardown runs once the loop exits. A graceful close removes the
// player from the room roster; an abrupt handler failure only detaches
// the socket so a reconnect can resume the seat.
func (s *session) teardown(graceful bool) {
	if s.roomCode == "" {
		s.conn.Close()
		return
	}
	if graceful && s.playerID != uuid.Nil {
		view, err := s.gw.rooms.RemovePlayer(context.Background(), s.roomCode, s.playerID)
		if err != nil {
			log.Printf("[Gateway] Remove on disconnect: %v", err)
		} else {
			s.gw.hub.Broadcast(s.roomCode, protocol.Event{Type: protocol.EventRoomUpdate, Payload: roomPayload{Room: view}})
		}
	}
	s.gw.hub.Disconnect(s.conn, s.roomCode, uuid.Nil)
	s.conn.Close()
}

type joinPayload struct {
	Code     string    `json:"code"`
	PlayerID uuid.UUID `json:"player_id"`
}

type readyPayload struct {
	Code     string    `json:"code"`
	PlayerID uuid.UUID `json:"player_id"`
	IsReady  bool      `json:"is_ready"`
}

type startPayload struct {
	Code     string    `json:"code"`
	PlayerID uuid.UUID `json:"player_id"`
	MaxGames int       `json:"max_games"`
}

type playPayload struct {
	Code     string      `json:"code"`
	PlayerID uuid.UUID   `json:"player_id"`
	Cards    []card.Card `json:"cards"`
}

type roomPayload struct {
	Room *room.Public `json:"room"`
}

type statePayload struct {
	State *tienlen.GameState `json:"state"`
}

type handPayload struct {
	State *tienlen.GameState `json:"state"`
	Hand  []card.Card        `json:"hand"`
}

type endPayload struct {
	State *tienlen.GameState `json:"state"`
	Room  *room.Public       `json:"room"`
}

func (s *session) handleRoomJoin(raw json.RawMessage) {
	var p joinPayload
	if !s.decode(raw, &p) {
		return
	}
	ctx := context.Background()
	code := room.NormalizeCode(p.Code)

	if _, err := s.gw.rooms.Player(ctx, code, p.PlayerID); err != nil {
		s.serviceError(err)
		return
	}

	if s.roomCode != "" && s.roomCode != code {
		s.gw.hub.Disconnect(s.conn, s.roomCode, uuid.Nil)
	}
	s.gw.hub.Connect(s.conn, code, p.PlayerID)
	s.roomCode = code
	s.playerID = p.PlayerID

	view, err := s.gw.rooms.View(ctx, code)
	if err != nil {
		s.serviceError(err)
		return
	}
	s.gw.hub.Broadcast(code, protocol.Event{Type: protocol.EventRoomUpdate, Payload: roomPayload{Room: &view}})
	s.sendGameStateIfActive(ctx, code, p.PlayerID)
}

func (s *session) handleRoomLeave(raw json.RawMessage) {
	var p joinPayload
	if !s.decode(raw, &p) {
		return
	}
	ctx := context.Background()
	code := room.NormalizeCode(p.Code)

	view, err := s.gw.rooms.RemovePlayer(ctx, code, p.PlayerID)
	if err != nil {
		s.serviceError(err)
		return
	}
	s.gw.hub.Disconnect(s.conn, code, uuid.Nil)
	if s.roomCode == code {
		s.roomCode = ""
		s.playerID = uuid.Nil
	}
	s.gw.hub.Broadcast(code, protocol.Event{Type: protocol.EventRoomUpdate, Payload: roomPayload{Room: view}})
}

func (s *session) handleRoomSync(raw json.RawMessage) {
	var p joinPayload
	if !s.decode(raw, &p) {
		return
	}
	ctx := context.Background()
	code := room.NormalizeCode(p.Code)

	if _, err := s.gw.rooms.Player(ctx, code, p.PlayerID); err != nil {
		s.serviceError(err)
		return
	}
	view, err := s.gw.rooms.View(ctx, code)
	if err != nil {
		s.serviceError(err)
		return
	}
	s.send(protocol.Event{Type: protocol.EventRoomUpdate, Payload: roomPayload{Room: &view}})
	s.sendGameStateIfActive(ctx, code, p.PlayerID)
}

func (s *session) handlePlayerReady(raw json.RawMessage) {
	var p readyPayload
	if !s.decode(raw, &p) {
		return
	}
	view, err := s.gw.rooms.SetReady(context.Background(), p.Code, p.PlayerID, p.IsReady)
	if err != nil {
		s.serviceError(err)
		return
	}
	s.gw.hub.Broadcast(view.Code, protocol.Event{Type: protocol.EventRoomUpdate, Payload: roomPayload{Room: &view}})
}

func (s *session) handleGameStart(raw json.RawMessage) {
	var p startPayload
	if !s.decode(raw, &p) {
		return
	}
	ctx := context.Background()
	code := room.NormalizeCode(p.Code)

	rm, err := s.gw.rooms.Get(ctx, code)
	if err != nil {
		s.serviceError(err)
		return
	}
	if rm.HostID != p.PlayerID {
		s.serviceError(room.ErrNotHost)
		return
	}

	state, hands, err := s.gw.games.Start(ctx, code, p.MaxGames)
	if err != nil {
		s.serviceError(err)
		return
	}
	s.broadcastDeal(code, state, hands)
}

// broadcastDeal announces the new game to the room and delivers each
// hand over its owner's sockets only.
func (s *session) broadcastDeal(code string, state *tienlen.GameState, hands map[uuid.UUID][]card.Card) {
	s.gw.hub.Broadcast(code, protocol.Event{Type: protocol.EventGameStart, Payload: statePayload{State: state}})
	for playerID, hand := range hands {
		s.gw.hub.SendToPlayer(code, playerID, protocol.Event{
			Type:    protocol.EventGameStart,
			Payload: handPayload{State: state, Hand: hand},
		})
	}
}

func (s *session) handleTurnPlay(raw json.RawMessage) {
	var p playPayload
	if !s.decode(raw, &p) {
		return
	}
	ctx := context.Background()
	code := room.NormalizeCode(p.Code)

	state, err := s.gw.games.Play(ctx, code, p.PlayerID, p.Cards)
	if err != nil {
		s.serviceError(err)
		return
	}
	s.gw.hub.Broadcast(code, protocol.Event{Type: protocol.EventTurnPlay, Payload: statePayload{State: state}})
	if state.Status != tienlen.GameFinished {
		return
	}

	view, err := s.gw.rooms.View(ctx, code)
	if err != nil {
		s.serviceError(err)
		return
	}
	s.gw.hub.Broadcast(code, protocol.Event{Type: protocol.EventGameEnd, Payload: endPayload{State: state, Room: &view}})

	next, hands, seriesOver, err := s.gw.games.MaybeStartNext(ctx, code)
	if err != nil {
		s.serviceError(err)
		return
	}
	if seriesOver {
		reset, err := s.gw.rooms.View(ctx, code)
		if err != nil {
			s.serviceError(err)
			return
		}
		s.gw.hub.Broadcast(code, protocol.Event{Type: protocol.EventRoomUpdate, Payload: roomPayload{Room: &reset}})
		return
	}
	s.broadcastDeal(code, next, hands)
}

func (s *session) handleTurnPass(raw json.RawMessage) {
	var p joinPayload
	if !s.decode(raw, &p) {
		return
	}
	code := room.NormalizeCode(p.Code)
	state, err := s.gw.games.Pass(context.Background(), code, p.PlayerID)
	if err != nil {
		s.serviceError(err)
		return
	}
	s.gw.hub.Broadcast(code, protocol.Event{Type: protocol.EventTurnPass, Payload: statePayload{State: state}})
}

// sendGameStateIfActive re-syncs a joining socket with the in-progress
// game, including its own hidden hand.
func (s *session) sendGameStateIfActive(ctx context.Context, code string, playerID uuid.UUID) {
	state, err := s.gw.games.State(ctx, code)
	if err != nil {
		if !errors.Is(err, game.ErrGameNotStarted) {
			s.serviceError(err)
		}
		return
	}
	hand, err := s.gw.games.Hand(ctx, code, playerID)
	if err != nil && !errors.Is(err, game.ErrHandNotFound) {
		s.serviceError(err)
		return
	}
	s.send(protocol.Event{Type: protocol.EventGameStart, Payload: handPayload{State: state, Hand: hand}})
}

func (s *session) decode(raw json.RawMessage, v any) bool {
	if len(raw) == 0 {
		s.sendError("missing payload")
		return false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		s.sendError("invalid payload")
		return false
	}
	return true
}

// serviceError maps known service errors onto client-visible messages;
// anything else is logged and reported generically.
func (s *session) serviceError(err error) {
	switch {
	case errors.Is(err, room.ErrRoomNotFound),
		errors.Is(err, room.ErrPlayerNotFound),
		errors.Is(err, room.ErrInvalidPassword),
		errors.Is(err, room.ErrRoomFull),
		errors.Is(err, room.ErrNotHost),
		errors.Is(err, game.ErrGameNotStarted),
		errors.Is(err, game.ErrGameFinished),
		errors.Is(err, game.ErrNotYourTurn),
		errors.Is(err, game.ErrHandNotFound),
		errors.Is(err, game.ErrCardsNotInHand),
		errors.Is(err, game.ErrMustLeadThreeSpades),
		errors.Is(err, game.ErrNotEnoughPlayers),
		errors.Is(err, tienlen.ErrInvalidCombo),
		errors.Is(err, tienlen.ErrIllegalMove),
		errors.Is(err, tienlen.ErrIllegalPass):
		s.sendError(err.Error())
	default:
		log.Printf("[Gateway] Handler error: %v", err)
		s.sendError("internal error")
	}
}

func (s *session) sendError(message string) {
	s.send(protocol.ErrorEvent(message))
}

func (s *session) send(event protocol.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[Gateway] Marshal event: %v", err)
		return
	}
	s.conn.Enqueue(data)
}

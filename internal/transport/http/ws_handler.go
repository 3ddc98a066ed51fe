package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"trivia-game-service/internal/domain"
	"trivia-game-service/internal/game"
)

// WSHandler upgrades HTTP requests to websockets and wires the frames into
// the session engine. One connection represents one participant in one game
// chat.
type WSHandler struct {
	manager  *game.Manager
	store    game.Store
	hub      *Hub
	upgrader websocket.Upgrader
	log      *zap.Logger
}

func NewWSHandler(manager *game.Manager, store game.Store, hub *Hub, log *zap.Logger) *WSHandler {
	return &WSHandler{
		manager: manager,
		store:   store,
		hub:     hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		log: log.Named("ws"),
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage struct {
	Type      string   `json:"type"`
	MessageID int64    `json:"messageId,omitempty"`
	PollID    string   `json:"pollId,omitempty"`
	Player    string   `json:"player,omitempty"`
	Text      string   `json:"text,omitempty"`
	Options   []string `json:"options,omitempty"`
	Correct   *bool    `json:"correct,omitempty"`
}

type registerPayload struct {
	OriginChatID      int64  `json:"originChatId"`
	PackShortName     string `json:"pack"`
	ThemeOrder        []int  `json:"themeOrder"`
	Private           bool   `json:"private"`
	InviteLink        string `json:"inviteLink"`
	ProgressiveReveal bool   `json:"progressiveReveal"`
}

type answerPayload struct {
	Text string `json:"text"`
}

type targetPayload struct {
	Target string `json:"target"`
}

type votePayload struct {
	PollID string `json:"pollId"`
	Yes    bool   `json:"yes"`
}

type correctScorePayload struct {
	Player string `json:"player"`
	Delta  int    `json:"delta"`
}

type client struct {
	playerID uuid.UUID
	send     chan outboundMessage

	once   sync.Once
	closed chan struct{}
}

func (c *client) disconnect() {
	c.once.Do(func() { close(c.closed) })
}

// ServeWS handles one participant connection for its whole lifetime.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	chatID, err := strconv.ParseInt(r.URL.Query().Get("chatId"), 10, 64)
	if err != nil {
		http.Error(w, "missing or invalid chatId", http.StatusBadRequest)
		return
	}
	playerID, err := uuid.Parse(r.URL.Query().Get("playerId"))
	if err != nil {
		http.Error(w, "missing or invalid playerId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	c := &client{
		playerID: playerID,
		send:     make(chan outboundMessage, 16),
		closed:   make(chan struct{}),
	}
	if !h.hub.register(chatID, c) {
		_ = conn.WriteJSON(outboundMessage{Type: "error", Text: "removed from this game"})
		return
	}
	defer h.hub.unregister(chatID, c)
	defer c.disconnect()

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for {
			select {
			case msg := <-c.send:
				if err := conn.WriteJSON(msg); err != nil {
					h.log.Debug("ws write error", zap.Error(err))
					return
				}
			case <-c.closed:
				// flush what was queued before the disconnect
				for {
					select {
					case msg := <-c.send:
						if err := conn.WriteJSON(msg); err != nil {
							return
						}
					default:
						_ = conn.WriteControl(websocket.CloseMessage,
							websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), closeDeadline())
						return
					}
				}
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		h.dispatch(r, chatID, playerID, c, inbound)

		select {
		case <-c.closed:
			// kicked or banned mid-read
		default:
			continue
		}
		break
	}

	c.disconnect()
	<-writerDone
}

func (h *WSHandler) dispatch(r *http.Request, chatID int64, playerID uuid.UUID, c *client, inbound inboundMessage) {
	ctx := r.Context()
	var err error

	switch inbound.Type {
	case "register":
		var payload registerPayload
		if err = json.Unmarshal(inbound.Payload, &payload); err != nil {
			h.fail(c, "invalid register payload")
			return
		}
		origin := payload.OriginChatID
		if origin == 0 {
			origin = chatID
		}
		err = h.store.SaveGame(ctx, domain.GameRecord{
			ChatID:            chatID,
			OriginChatID:      origin,
			PackShortName:     payload.PackShortName,
			ThemeOrder:        payload.ThemeOrder,
			Players:           []uuid.UUID{playerID},
			Status:            domain.StatusRegistered,
			InviteLink:        payload.InviteLink,
			Private:           payload.Private,
			ProgressiveReveal: payload.ProgressiveReveal,
		})
		if err == nil {
			h.ok(c, "registered")
		}
	case "start":
		if err = h.manager.Start(ctx, chatID); err == nil {
			h.ok(c, "started")
		}
	case "stop":
		err = h.manager.Stop(ctx, chatID)
	case "abort":
		err = h.manager.Abort(ctx, chatID)
	case "join":
		err = h.manager.AddPlayer(ctx, chatID, playerID)
	case "spectate":
		err = h.manager.AddSpectator(chatID, playerID)
	case "pause":
		err = h.manager.Pause(chatID, playerID)
	case "resume":
		err = h.manager.Resume(chatID)
	case "claim":
		err = h.manager.ClaimFloor(chatID, playerID)
	case "answer":
		var payload answerPayload
		if err = json.Unmarshal(inbound.Payload, &payload); err != nil {
			h.fail(c, "invalid answer payload")
			return
		}
		var correct bool
		correct, err = h.manager.SubmitAnswer(chatID, playerID, payload.Text)
		if err == nil {
			select {
			case c.send <- outboundMessage{Type: "answerResult", Correct: &correct}:
			case <-c.closed:
			}
		}
	case "release":
		err = h.manager.ReleaseFloor(chatID, playerID)
	case "accept":
		err = h.manager.AcceptAnswer(chatID, playerID)
	case "reject":
		err = h.manager.RejectAnswer(chatID, playerID)
	case "accidental":
		err = h.manager.MarkAccidental(chatID, playerID)
	case "dispute":
		var target uuid.UUID
		if target, err = h.target(inbound.Payload); err != nil {
			h.fail(c, "invalid dispute payload")
			return
		}
		err = h.manager.OpenDispute(chatID, playerID, target)
	case "kick":
		var target uuid.UUID
		if target, err = h.target(inbound.Payload); err != nil {
			h.fail(c, "invalid kick payload")
			return
		}
		err = h.manager.OpenKickVote(chatID, playerID, target)
	case "vote":
		var payload votePayload
		if err = json.Unmarshal(inbound.Payload, &payload); err != nil {
			h.fail(c, "invalid vote payload")
			return
		}
		err = h.manager.HandlePollVote(payload.PollID, playerID, payload.Yes)
	case "correctScore":
		var payload correctScorePayload
		if err = json.Unmarshal(inbound.Payload, &payload); err != nil {
			h.fail(c, "invalid correction payload")
			return
		}
		var target uuid.UUID
		if target, err = uuid.Parse(payload.Player); err != nil {
			h.fail(c, "invalid correction payload")
			return
		}
		err = h.manager.CorrectScore(ctx, chatID, target, payload.Delta)
	default:
		h.fail(c, "unsupported message type")
		return
	}

	if err != nil {
		h.fail(c, err.Error())
	}
}

func closeDeadline() time.Time {
	return time.Now().Add(time.Second)
}

func (h *WSHandler) target(payload json.RawMessage) (uuid.UUID, error) {
	var p targetPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(p.Target)
}

func (h *WSHandler) fail(c *client, message string) {
	select {
	case c.send <- outboundMessage{Type: "error", Text: message}:
	case <-c.closed:
	}
}

func (h *WSHandler) ok(c *client, what string) {
	select {
	case c.send <- outboundMessage{Type: "ack", Text: what}:
	case <-c.closed:
	}
}

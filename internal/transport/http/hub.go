package http

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"trivia-game-service/internal/game"
)

// Hub fans engine chat traffic out to the websocket clients of each game
// chat. It is the engine-facing chat transport: message and poll identities
// are minted here, and kick/teardown bans translate to forced disconnects.
type Hub struct {
	mu     sync.Mutex
	rooms  map[int64]map[*client]struct{}
	banned map[int64]map[uuid.UUID]struct{}

	nextMsgID atomic.Int64
	log       *zap.Logger
}

var _ game.Chat = (*Hub)(nil)

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		rooms:  make(map[int64]map[*client]struct{}),
		banned: make(map[int64]map[uuid.UUID]struct{}),
		log:    log.Named("hub"),
	}
}

func (h *Hub) register(chatID int64, c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.banned[chatID][c.playerID]; ok {
		return false
	}
	room, ok := h.rooms[chatID]
	if !ok {
		room = make(map[*client]struct{})
		h.rooms[chatID] = room
	}
	room[c] = struct{}{}
	return true
}

func (h *Hub) unregister(chatID int64, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[chatID]
	if !ok {
		return
	}
	delete(room, c)
	if len(room) == 0 {
		delete(h.rooms, chatID)
	}
}

func (h *Hub) broadcast(chatID int64, msg outboundMessage) {
	h.mu.Lock()
	clients := make([]*client, 0, len(h.rooms[chatID]))
	for c := range h.rooms[chatID] {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		select {
		case c.send <- msg:
		default:
			h.log.Warn("dropping message for slow client",
				zap.Int64("chat", chatID), zap.String("player", c.playerID.String()))
		}
	}
}

func (h *Hub) SendMessage(ctx context.Context, chatID int64, text string) (int64, error) {
	id := h.nextMsgID.Add(1)
	h.broadcast(chatID, outboundMessage{
		Type:      "message",
		MessageID: id,
		Text:      text,
	})
	return id, nil
}

func (h *Hub) EditMessage(ctx context.Context, chatID int64, messageID int64, text string) error {
	h.broadcast(chatID, outboundMessage{
		Type:      "edit",
		MessageID: messageID,
		Text:      text,
	})
	return nil
}

func (h *Hub) SendPoll(ctx context.Context, chatID int64, question, yesOption, noOption string) (string, error) {
	pollID := uuid.NewString()
	h.broadcast(chatID, outboundMessage{
		Type:    "poll",
		PollID:  pollID,
		Text:    question,
		Options: []string{yesOption, noOption},
	})
	return pollID, nil
}

// BanMember disconnects the player's clients and bars reconnects until the
// ban is lifted.
func (h *Hub) BanMember(ctx context.Context, chatID int64, playerID uuid.UUID) error {
	h.mu.Lock()
	bans, ok := h.banned[chatID]
	if !ok {
		bans = make(map[uuid.UUID]struct{})
		h.banned[chatID] = bans
	}
	bans[playerID] = struct{}{}
	var evicted []*client
	for c := range h.rooms[chatID] {
		if c.playerID == playerID {
			evicted = append(evicted, c)
			delete(h.rooms[chatID], c)
		}
	}
	h.mu.Unlock()

	for _, c := range evicted {
		c.disconnect()
	}
	h.broadcast(chatID, outboundMessage{Type: "removed", Player: playerID.String()})
	return nil
}

func (h *Hub) UnbanMember(ctx context.Context, chatID int64, playerID uuid.UUID) error {
	h.mu.Lock()
	delete(h.banned[chatID], playerID)
	if len(h.banned[chatID]) == 0 {
		delete(h.banned, chatID)
	}
	h.mu.Unlock()
	return nil
}

func (h *Hub) RevokeInviteLink(ctx context.Context, chatID int64, link string) error {
	h.broadcast(chatID, outboundMessage{Type: "inviteRevoked", Text: link})
	return nil
}

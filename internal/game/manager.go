package game

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"trivia-game-service/internal/domain"
)

const finalizeTimeout = 5 * time.Minute

// Manager owns every live session and the poll routing table. All public
// entry points are safe for concurrent use; per-session state is never
// touched here, only forwarded into the session mailbox.
type Manager struct {
	mu       sync.Mutex
	sessions map[int64]*managed
	polls    map[string]int64 // poll id -> game chat id

	store Store
	packs PackRepository
	chat  Chat
	cfg   Config
	log   *zap.Logger
}

type managed struct {
	session  *Session
	cancel   context.CancelFunc
	done     chan struct{}
	finalize sync.Once
}

func NewManager(store Store, packs PackRepository, chat Chat, cfg Config, log *zap.Logger) *Manager {
	return &Manager{
		sessions: make(map[int64]*managed),
		polls:    make(map[string]int64),
		store:    store,
		packs:    packs,
		chat:     chat,
		cfg:      cfg.withDefaults(),
		log:      log.Named("game"),
	}
}

// Start loads the game bound to chatID and launches its loop. Starting an
// already-running session is a no-op.
func (m *Manager) Start(ctx context.Context, chatID int64) error {
	m.mu.Lock()
	if _, ok := m.sessions[chatID]; ok {
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()

	rec, err := m.store.GameByChat(ctx, chatID)
	if err != nil {
		return err
	}
	pack, err := m.packs.GetPack(ctx, rec.PackShortName)
	if err != nil {
		return err
	}
	cur, err := m.store.Cursor(ctx, chatID)
	if err != nil {
		return err
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	s := newSession(rec, pack, cur, m.cfg, m.store, m.chat, m, m.log)
	entry := &managed{session: s, cancel: cancel, done: make(chan struct{})}

	m.mu.Lock()
	if _, ok := m.sessions[chatID]; ok {
		m.mu.Unlock()
		cancel()
		return nil
	}
	m.sessions[chatID] = entry
	m.mu.Unlock()

	go func() {
		defer close(entry.done)
		if err := s.run(loopCtx); err != nil {
			// cancelled; Stop/Abort decides what happens next
			return
		}
		fctx, fcancel := context.WithTimeout(context.Background(), finalizeTimeout)
		defer fcancel()
		if err := m.finalizeEntry(fctx, entry, false); err != nil {
			m.log.Error("finalize failed", zap.Int64("chat", chatID), zap.Error(err))
		}
		m.remove(chatID)
	}()
	return nil
}

// Stop cancels a session's loop without settling results; durable state
// stays for a later Start to resume from.
func (m *Manager) Stop(ctx context.Context, chatID int64) error {
	entry, err := m.entry(chatID)
	if err != nil {
		return err
	}
	entry.cancel()
	select {
	case <-entry.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	m.remove(chatID)
	return nil
}

// Abort cancels a session and settles it as aborted: no rating changes,
// pack history only up to the reached theme.
func (m *Manager) Abort(ctx context.Context, chatID int64) error {
	entry, err := m.entry(chatID)
	if err != nil {
		return err
	}
	entry.cancel()
	select {
	case <-entry.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	ferr := m.finalizeEntry(ctx, entry, true)
	m.remove(chatID)
	return ferr
}

// FinalizeAll settles every live session, used on administrative shutdown.
// Each loop is cancelled, finalized once and deregistered.
func (m *Manager) FinalizeAll(ctx context.Context, aborted bool) {
	m.mu.Lock()
	chats := make([]int64, 0, len(m.sessions))
	for id := range m.sessions {
		chats = append(chats, id)
	}
	m.mu.Unlock()

	for _, id := range chats {
		entry, err := m.entry(id)
		if err != nil {
			continue
		}
		entry.cancel()
		select {
		case <-entry.done:
		case <-ctx.Done():
			return
		}
		if err := m.finalizeEntry(ctx, entry, aborted); err != nil {
			m.log.Warn("shutdown finalize failed", zap.Int64("chat", id), zap.Error(err))
		}
		m.remove(id)
	}
}

func (m *Manager) finalizeEntry(ctx context.Context, entry *managed, aborted bool) error {
	var err error
	entry.finalize.Do(func() {
		err = entry.session.finalize(ctx, aborted)
	})
	return err
}

func (m *Manager) entry(chatID int64) (*managed, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.sessions[chatID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return entry, nil
}

func (m *Manager) session(chatID int64) (*Session, error) {
	entry, err := m.entry(chatID)
	if err != nil {
		return nil, err
	}
	return entry.session, nil
}

func (m *Manager) remove(chatID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, chatID)
	for pollID, owner := range m.polls {
		if owner == chatID {
			delete(m.polls, pollID)
		}
	}
}

// registerPoll and unregisterPoll implement the session-facing poll index.

func (m *Manager) registerPoll(pollID string, chatID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.polls[pollID] = chatID
}

func (m *Manager) unregisterPoll(pollID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.polls, pollID)
}

// HandlePollVote routes a poll answer to the owning session. Votes for
// unknown polls are dropped silently; late callbacks are expected.
func (m *Manager) HandlePollVote(pollID string, voter uuid.UUID, yes bool) error {
	m.mu.Lock()
	chatID, ok := m.polls[pollID]
	m.mu.Unlock()
	if !ok {
		return nil
	}
	s, err := m.session(chatID)
	if err != nil {
		return nil
	}
	return s.handlePollVote(pollID, voter, yes)
}

// Session command forwarding. Each call resolves the live session and posts
// into its mailbox; domain.ErrSessionNotFound when no loop is running.

func (m *Manager) Pause(chatID int64, playerID uuid.UUID) error {
	s, err := m.session(chatID)
	if err != nil {
		return err
	}
	return s.Pause(playerID)
}

func (m *Manager) Resume(chatID int64) error {
	s, err := m.session(chatID)
	if err != nil {
		return err
	}
	return s.Resume()
}

// AddPlayer registers a mid-game joiner both durably and in the live roster.
func (m *Manager) AddPlayer(ctx context.Context, chatID int64, playerID uuid.UUID) error {
	s, err := m.session(chatID)
	if err != nil {
		return err
	}
	if err := m.store.AddPlayer(ctx, chatID, playerID); err != nil {
		return err
	}
	return s.AddPlayer(playerID)
}

func (m *Manager) AddSpectator(chatID int64, playerID uuid.UUID) error {
	s, err := m.session(chatID)
	if err != nil {
		return err
	}
	return s.AddSpectator(playerID)
}

func (m *Manager) IsSpectator(chatID int64, playerID uuid.UUID) bool {
	s, err := m.session(chatID)
	if err != nil {
		return false
	}
	return s.IsSpectator(playerID)
}

func (m *Manager) ClaimFloor(chatID int64, playerID uuid.UUID) error {
	s, err := m.session(chatID)
	if err != nil {
		return err
	}
	return s.ClaimFloor(playerID)
}

func (m *Manager) SubmitAnswer(chatID int64, playerID uuid.UUID, text string) (bool, error) {
	s, err := m.session(chatID)
	if err != nil {
		return false, err
	}
	return s.SubmitAnswer(playerID, text)
}

func (m *Manager) ReleaseFloor(chatID int64, playerID uuid.UUID) error {
	s, err := m.session(chatID)
	if err != nil {
		return err
	}
	return s.ReleaseFloor(playerID)
}

func (m *Manager) AcceptAnswer(chatID int64, playerID uuid.UUID) error {
	s, err := m.session(chatID)
	if err != nil {
		return err
	}
	return s.AcceptAnswer(playerID)
}

func (m *Manager) RejectAnswer(chatID int64, playerID uuid.UUID) error {
	s, err := m.session(chatID)
	if err != nil {
		return err
	}
	return s.RejectAnswer(playerID)
}

func (m *Manager) MarkAccidental(chatID int64, playerID uuid.UUID) error {
	s, err := m.session(chatID)
	if err != nil {
		return err
	}
	return s.MarkAccidental(playerID)
}

func (m *Manager) OpenDispute(chatID int64, byPlayer, target uuid.UUID) error {
	s, err := m.session(chatID)
	if err != nil {
		return err
	}
	return s.OpenDispute(byPlayer, target)
}

func (m *Manager) OpenKickVote(chatID int64, byPlayer, target uuid.UUID) error {
	s, err := m.session(chatID)
	if err != nil {
		return err
	}
	return s.OpenKickVote(byPlayer, target)
}

func (m *Manager) CorrectScore(ctx context.Context, chatID int64, playerID uuid.UUID, delta int) error {
	s, err := m.session(chatID)
	if err != nil {
		return err
	}
	return s.CorrectScore(ctx, playerID, delta)
}

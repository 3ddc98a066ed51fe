package game

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"trivia-game-service/internal/domain"
)

// pollIndex routes asynchronous poll callbacks back to the owning chat.
type pollIndex interface {
	registerPoll(pollID string, chatID int64)
	unregisterPoll(pollID string)
}

// vote is one open two-option poll: a dispute or a kick.
type vote struct {
	pollID   string
	target   uuid.UUID
	ballots  map[uuid.UUID]bool
	deadline time.Time
}

func (v *vote) tally() (yes, no int) {
	for _, b := range v.ballots {
		if b {
			yes++
		} else {
			no++
		}
	}
	return yes, no
}

// Session is one running game bound to a chat. It is an actor: the loop
// goroutine owns every mutable field, and external entry points post
// closures to the mailbox, which the pausable waits drain. A handler's
// mutation is therefore always visible to the loop's next observation.
type Session struct {
	chatID       int64
	originChatID int64
	pack         domain.Pack
	themeOrder   []int

	cfg   Config
	store Store
	chat  Chat
	polls pollIndex
	log   *zap.Logger

	ctx context.Context // loop context, set by run

	phase            Phase
	phaseBeforePause Phase
	cursor           domain.Cursor

	players    []uuid.UUID
	spectators map[uuid.UUID]struct{}
	kicked     map[uuid.UUID]struct{}

	// current question working set
	question      *domain.Question
	questionCost  int
	questionMsgID int64
	themeName     string
	answering     uuid.UUID
	floorDeadline time.Time
	outcomes      map[uuid.UUID]Outcome
	answerOrder   []uuid.UUID
	claimed       bool
	answerFired   bool
	extension     time.Duration

	// dispute / kick working set
	dispute  *vote
	kickVote *vote
	disputed map[uuid.UUID]struct{}

	// accumulators for finalization
	correct    map[uuid.UUID]int
	wrong      map[uuid.UUID]int
	earned     map[uuid.UUID]int
	joinTheme  map[uuid.UUID]int
	pausesLeft map[uuid.UUID]int
	inviteLink string
	private    bool
	reveal     bool

	commands chan func()
	closed   chan struct{}
}

func newSession(rec domain.GameRecord, pack domain.Pack, cur domain.Cursor, cfg Config,
	store Store, chat Chat, polls pollIndex, log *zap.Logger) *Session {

	s := &Session{
		chatID:       rec.ChatID,
		originChatID: rec.OriginChatID,
		pack:         pack,
		themeOrder:   rec.ThemeOrder,
		cfg:          cfg.withDefaults(),
		store:        store,
		chat:         chat,
		polls:        polls,
		log:          log.With(zap.Int64("chat", rec.ChatID)),
		ctx:          context.Background(),
		phase:        PhaseIdle,
		cursor:       cur,
		players:      append([]uuid.UUID(nil), rec.Players...),
		spectators:   make(map[uuid.UUID]struct{}),
		kicked:       make(map[uuid.UUID]struct{}),
		disputed:     make(map[uuid.UUID]struct{}),
		correct:      make(map[uuid.UUID]int),
		wrong:        make(map[uuid.UUID]int),
		earned:       make(map[uuid.UUID]int),
		joinTheme:    make(map[uuid.UUID]int),
		pausesLeft:   make(map[uuid.UUID]int),
		inviteLink:   rec.InviteLink,
		private:      rec.Private,
		reveal:       rec.ProgressiveReveal,
		commands:     make(chan func(), 64),
		closed:       make(chan struct{}),
	}
	for _, p := range s.players {
		s.joinTheme[p] = 0
		s.pausesLeft[p] = s.cfg.PauseAllowance
	}
	return s
}

// do posts fn to the session mailbox and waits until the loop executes it.
func (s *Session) do(fn func()) error {
	done := make(chan struct{})
	select {
	case s.commands <- func() { fn(); close(done) }:
	case <-s.closed:
		return domain.ErrSessionClosed
	}
	select {
	case <-done:
		return nil
	case <-s.closed:
		return domain.ErrSessionClosed
	}
}

func (s *Session) takeExtension() time.Duration {
	ext := s.extension
	s.extension = 0
	return ext
}

// isPlayer reports roster membership; spectators and kicked players are not
// counted.
func (s *Session) isPlayer(id uuid.UUID) bool {
	if _, ok := s.spectators[id]; ok {
		return false
	}
	if _, ok := s.kicked[id]; ok {
		return false
	}
	for _, p := range s.players {
		if p == id {
			return true
		}
	}
	return false
}

// activePlayers is the quorum base: the roster minus spectators and kicked
// players, matching who may claim the floor.
func (s *Session) activePlayers() []uuid.UUID {
	active := make([]uuid.UUID, 0, len(s.players))
	for _, p := range s.players {
		if _, ok := s.kicked[p]; ok {
			continue
		}
		if _, ok := s.spectators[p]; ok {
			continue
		}
		active = append(active, p)
	}
	return active
}

// allAnswered holds once every active player has an outcome this question.
func (s *Session) allAnswered() bool {
	active := s.activePlayers()
	if len(active) == 0 {
		return false
	}
	for _, p := range active {
		if _, ok := s.outcomes[p]; !ok {
			return false
		}
	}
	return true
}

// resetQuestion clears the per-question working set before a new question.
func (s *Session) resetQuestion() {
	s.answering = uuid.Nil
	s.outcomes = make(map[uuid.UUID]Outcome)
	s.answerOrder = nil
	s.claimed = false
	s.answerFired = false
	if s.dispute != nil {
		s.polls.unregisterPoll(s.dispute.pollID)
		s.dispute = nil
	}
	if s.kickVote != nil {
		s.polls.unregisterPoll(s.kickVote.pollID)
		s.kickVote = nil
	}
	s.disputed = make(map[uuid.UUID]struct{})
}

// send delivers a chat message best-effort; transport faults never abort
// the loop.
func (s *Session) send(ctx context.Context, text string) int64 {
	id, err := s.chat.SendMessage(ctx, s.chatID, text)
	if err != nil {
		s.log.Warn("send failed", zap.Error(err))
		return 0
	}
	return id
}

func (s *Session) edit(ctx context.Context, messageID int64, text string) {
	if messageID == 0 {
		return
	}
	if err := s.chat.EditMessage(ctx, s.chatID, messageID, text); err != nil {
		s.log.Warn("edit failed", zap.Error(err))
	}
}

// Phase returns the current state machine value. Safe only as a diagnostic
// snapshot; decisions belong inside mailbox commands.
func (s *Session) Phase() Phase {
	var p Phase
	if err := s.do(func() { p = s.phase }); err != nil {
		return PhaseGameOver
	}
	return p
}

// Pause enters the pause overlay, spending one unit of the player's pause
// allowance. Refused while a question is live.
func (s *Session) Pause(playerID uuid.UUID) error {
	var opErr error
	err := s.do(func() {
		switch {
		case s.phase == PhasePaused:
			opErr = domain.ErrAlreadyPaused
		case !s.phase.Pausable():
			opErr = domain.ErrWrongPhase
		default:
			left, ok := s.pausesLeft[playerID]
			if !ok {
				opErr = domain.ErrNotPlayer
				return
			}
			if left <= 0 {
				opErr = domain.ErrPauseBudget
				return
			}
			s.pausesLeft[playerID] = left - 1
			s.phaseBeforePause = s.phase
			s.phase = PhasePaused
		}
	})
	if err != nil {
		return err
	}
	return opErr
}

// Resume leaves the pause overlay, restoring the saved phase.
func (s *Session) Resume() error {
	var opErr error
	err := s.do(func() {
		if s.phase != PhasePaused {
			opErr = domain.ErrNotPaused
			return
		}
		s.phase = s.phaseBeforePause
	})
	if err != nil {
		return err
	}
	return opErr
}

// AddPlayer registers a mid-game joiner, recording the theme index they
// joined at for partial pack-history credit.
func (s *Session) AddPlayer(playerID uuid.UUID) error {
	var opErr error
	err := s.do(func() {
		for _, p := range s.players {
			if p == playerID {
				opErr = domain.ErrDuplicatePlayer
				return
			}
		}
		s.players = append(s.players, playerID)
		s.joinTheme[playerID] = s.cursor.Theme
		s.pausesLeft[playerID] = s.cfg.PauseAllowance
	})
	if err != nil {
		return err
	}
	return opErr
}

// AddSpectator registers a spectator: tracked for history, excluded from
// answering. Spectators never regain floor-claim rights.
func (s *Session) AddSpectator(playerID uuid.UUID) error {
	var opErr error
	err := s.do(func() {
		if _, ok := s.spectators[playerID]; ok {
			opErr = domain.ErrDuplicatePlayer
			return
		}
		s.spectators[playerID] = struct{}{}
		s.joinTheme[playerID] = s.cursor.Theme
	})
	if err != nil {
		return err
	}
	return opErr
}

// IsSpectator reports spectator membership.
func (s *Session) IsSpectator(playerID uuid.UUID) bool {
	var ok bool
	_ = s.do(func() { _, ok = s.spectators[playerID] })
	return ok
}

// CorrectScore applies a manual signed score correction for a player.
// Allowed only while paused, so corrections cannot race the ledger.
func (s *Session) CorrectScore(ctx context.Context, playerID uuid.UUID, delta int) error {
	var opErr error
	err := s.do(func() {
		if s.phase != PhasePaused {
			opErr = domain.ErrWrongPhase
			return
		}
		if !s.isPlayer(playerID) {
			opErr = domain.ErrNotPlayer
			return
		}
		opErr = s.store.ApplyScoreDeltas(ctx, s.chatID, map[uuid.UUID]int{playerID: delta})
	})
	if err != nil {
		return err
	}
	return opErr
}

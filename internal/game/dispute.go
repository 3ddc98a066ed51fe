package game

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"trivia-game-service/internal/domain"
)

// inCorrection holds during the score-correction window, including while
// paused out of it.
func (s *Session) inCorrection() bool {
	return s.phase == PhaseScoreCorrection ||
		(s.phase == PhasePaused && s.phaseBeforePause == PhaseScoreCorrection)
}

// AcceptAnswer is the claim-based correction: the player asserts their own
// answer was right. Earlier answerers become incorrect, later ones stop
// counting, confirmed-void tags stay untouched.
func (s *Session) AcceptAnswer(playerID uuid.UUID) error {
	return s.correction(playerID, func() error { return s.markCorrect(playerID) })
}

// RejectAnswer marks the player's own answer incorrect.
func (s *Session) RejectAnswer(playerID uuid.UUID) error {
	return s.correction(playerID, func() error { return s.markIncorrect(playerID) })
}

// MarkAccidental acknowledges an accidental submission; the tag becomes
// immune to later overrides.
func (s *Session) MarkAccidental(playerID uuid.UUID) error {
	return s.correction(playerID, func() error { return s.markAccidental(playerID) })
}

func (s *Session) correction(playerID uuid.UUID, mark func() error) error {
	var opErr error
	err := s.do(func() {
		if !s.inCorrection() {
			opErr = domain.ErrWrongPhase
			return
		}
		if opErr = mark(); opErr != nil {
			return
		}
		s.extension += s.cfg.CorrectionExtension
	})
	if err != nil {
		return err
	}
	return opErr
}

func (s *Session) markCorrect(playerID uuid.UUID) error {
	cur, ok := s.outcomes[playerID]
	if !ok {
		return domain.ErrNoOutcome
	}
	if cur == OutcomeCorrect {
		return domain.ErrAlreadyMarked
	}

	s.claimed = true
	pos := -1
	for i, pid := range s.answerOrder {
		if pid == playerID {
			pos = i
			break
		}
	}
	for i, pid := range s.answerOrder {
		switch {
		case pid == playerID:
			s.outcomes[pid] = OutcomeCorrect
		case s.outcomes[pid].locked():
			// player-acknowledged, stays
		case i < pos:
			s.outcomes[pid] = OutcomeIncorrect
		default:
			s.outcomes[pid] = OutcomeDoesNotCount
		}
	}
	return nil
}

func (s *Session) markIncorrect(playerID uuid.UUID) error {
	cur, ok := s.outcomes[playerID]
	if !ok {
		return domain.ErrNoOutcome
	}
	if cur == OutcomeIncorrect {
		return domain.ErrAlreadyMarked
	}
	s.outcomes[playerID] = OutcomeIncorrect
	return nil
}

func (s *Session) markAccidental(playerID uuid.UUID) error {
	cur, ok := s.outcomes[playerID]
	if !ok {
		return domain.ErrNoOutcome
	}
	if cur == OutcomeConfirmedDoesNotCount {
		return domain.ErrAlreadyMarked
	}
	s.outcomes[playerID] = OutcomeConfirmedDoesNotCount
	return nil
}

// OpenDispute puts target's answer to a timed majority vote. One dispute at
// a time; a player may only be disputed once per question.
func (s *Session) OpenDispute(byPlayer, target uuid.UUID) error {
	var opErr error
	err := s.do(func() { opErr = s.openDispute(s.ctx, byPlayer, target) })
	if err != nil {
		return err
	}
	return opErr
}

func (s *Session) openDispute(ctx context.Context, byPlayer, target uuid.UUID) error {
	if !s.inCorrection() {
		return domain.ErrWrongPhase
	}
	if !s.isPlayer(byPlayer) {
		return domain.ErrNotPlayer
	}
	if s.dispute != nil {
		return domain.ErrVoteActive
	}
	if _, ok := s.outcomes[target]; !ok {
		return domain.ErrNoOutcome
	}
	if _, ok := s.disputed[target]; ok {
		return domain.ErrAlreadyDisputed
	}

	answer := ""
	if s.question != nil {
		answer = s.question.Answer
	}
	pollID, err := s.chat.SendPoll(ctx, s.chatID, msgDisputeOpened(target, answer), "yes", "no")
	if err != nil {
		return fmt.Errorf("open dispute poll: %w", err)
	}

	s.dispute = &vote{
		pollID:   pollID,
		target:   target,
		ballots:  make(map[uuid.UUID]bool),
		deadline: time.Now().Add(s.cfg.DisputeWindow),
	}
	s.disputed[target] = struct{}{}
	s.polls.registerPoll(pollID, s.chatID)
	// keep the correction window open for the whole vote
	s.extension += s.cfg.DisputeWindow
	return nil
}

// OpenKickVote starts a timed vote to remove target from the session.
// Independent of any dispute; same one-at-a-time rule.
func (s *Session) OpenKickVote(byPlayer, target uuid.UUID) error {
	var opErr error
	err := s.do(func() { opErr = s.openKickVote(s.ctx, byPlayer, target) })
	if err != nil {
		return err
	}
	return opErr
}

func (s *Session) openKickVote(ctx context.Context, byPlayer, target uuid.UUID) error {
	if s.phase == PhaseIdle || s.phase == PhaseGameOver {
		return domain.ErrWrongPhase
	}
	if !s.isPlayer(byPlayer) {
		return domain.ErrNotPlayer
	}
	if s.kickVote != nil {
		return domain.ErrVoteActive
	}
	if !s.isPlayer(target) {
		return domain.ErrNotPlayer
	}

	pollID, err := s.chat.SendPoll(ctx, s.chatID, msgKickQuestion(target), "yes", "no")
	if err != nil {
		return fmt.Errorf("open kick poll: %w", err)
	}

	s.kickVote = &vote{
		pollID:   pollID,
		target:   target,
		ballots:  make(map[uuid.UUID]bool),
		deadline: time.Now().Add(s.cfg.DisputeWindow),
	}
	s.polls.registerPoll(pollID, s.chatID)
	s.extension += s.cfg.DisputeWindow
	return nil
}

// handlePollVote records one ballot and resolves the vote once every active
// player has voted; otherwise the deadline check resolves it.
func (s *Session) handlePollVote(pollID string, voter uuid.UUID, yes bool) error {
	return s.do(func() {
		if !s.isPlayer(voter) {
			return
		}
		quorum := len(s.activePlayers())
		if s.dispute != nil && s.dispute.pollID == pollID {
			s.dispute.ballots[voter] = yes
			if len(s.dispute.ballots) >= quorum {
				s.resolveDispute(s.ctx)
			}
			return
		}
		if s.kickVote != nil && s.kickVote.pollID == pollID {
			s.kickVote.ballots[voter] = yes
			if len(s.kickVote.ballots) >= quorum {
				s.resolveKick(s.ctx)
			}
		}
	})
}

// resolveDispute applies the majority outcome: yes-majority promotes the
// target via the claim rule, no-majority marks incorrect, a tie voids the
// answer with the locked tag.
func (s *Session) resolveDispute(ctx context.Context) {
	v := s.dispute
	if v == nil {
		return
	}
	yes, no := v.tally()
	switch {
	case yes > no:
		if err := s.markCorrect(v.target); err != nil {
			s.log.Debug("dispute mark correct", zap.Error(err))
		}
		s.send(ctx, msgDisputeAccepted(v.target, yes, no))
	case no > yes:
		if err := s.markIncorrect(v.target); err != nil {
			s.log.Debug("dispute mark incorrect", zap.Error(err))
		}
		s.send(ctx, msgDisputeRejected(v.target, yes, no))
	default:
		if err := s.markAccidental(v.target); err != nil {
			s.log.Debug("dispute mark accidental", zap.Error(err))
		}
		s.send(ctx, msgDisputeTied(v.target, yes, no))
	}
	s.polls.unregisterPoll(v.pollID)
	s.dispute = nil
}

// resolveKick removes the target on a strict yes-majority of votes cast;
// anything else is a no-op.
func (s *Session) resolveKick(ctx context.Context) {
	v := s.kickVote
	if v == nil {
		return
	}
	yes, no := v.tally()
	if 2*yes > yes+no {
		s.kicked[v.target] = struct{}{}
		if s.answering == v.target {
			s.dropFloor()
			s.restoreQuestion(ctx)
		}
		// removed from the chat now, unbanned at teardown
		if err := s.chat.BanMember(ctx, s.chatID, v.target); err != nil {
			s.log.Warn("kick ban failed", zap.Error(err))
		}
		s.send(ctx, msgKicked(v.target))
	} else {
		s.send(ctx, msgKickFailed(v.target))
	}
	s.polls.unregisterPoll(v.pollID)
	s.kickVote = nil
}

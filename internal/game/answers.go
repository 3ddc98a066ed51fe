package game

import (
	"context"
	"time"

	"github.com/google/uuid"

	"trivia-game-service/internal/domain"
)

// ClaimFloor grants the exclusive right to answer the open question. Only
// one claim may succeed per open floor.
func (s *Session) ClaimFloor(playerID uuid.UUID) error {
	var opErr error
	if err := s.do(func() { opErr = s.claimFloor(s.ctx, playerID) }); err != nil {
		return err
	}
	return opErr
}

// SubmitAnswer evaluates the floor holder's submission. A correct answer
// raises the answer signal so the loop stops waiting; an incorrect one
// reopens the floor for other players.
func (s *Session) SubmitAnswer(playerID uuid.UUID, text string) (bool, error) {
	var (
		correct bool
		opErr   error
	)
	if err := s.do(func() { correct, opErr = s.submitAnswer(s.ctx, playerID, text) }); err != nil {
		return false, err
	}
	return correct, opErr
}

// ReleaseFloor is the timeout path: the holder is tagged incorrect and the
// floor reopens. The loop enforces the same deadline itself; this stays
// exposed for transports running their own timers.
func (s *Session) ReleaseFloor(playerID uuid.UUID) error {
	var opErr error
	if err := s.do(func() { opErr = s.releaseFloorChecked(s.ctx, playerID) }); err != nil {
		return err
	}
	return opErr
}

func (s *Session) claimFloor(ctx context.Context, playerID uuid.UUID) error {
	if s.phase == PhasePlayerAnswering {
		return domain.ErrFloorTaken
	}
	if s.phase != PhaseWaitingAnswer {
		return domain.ErrWrongPhase
	}
	if _, ok := s.spectators[playerID]; ok {
		return domain.ErrSpectator
	}
	if _, ok := s.kicked[playerID]; ok {
		return domain.ErrSpectator
	}
	if !s.isPlayer(playerID) {
		return domain.ErrNotPlayer
	}
	if _, ok := s.outcomes[playerID]; ok {
		return domain.ErrAlreadyAnswered
	}
	if s.claimed {
		return domain.ErrQuestionClaimed
	}

	s.answering = playerID
	s.phase = PhasePlayerAnswering
	s.floorDeadline = time.Now().Add(s.cfg.FloorHold)
	s.extension += s.cfg.ClaimExtension

	s.edit(ctx, s.questionMsgID, msgQuestionHidden(s.questionCost))
	s.send(ctx, msgPlayerAnswering(playerID))
	return nil
}

func (s *Session) submitAnswer(ctx context.Context, playerID uuid.UUID, text string) (bool, error) {
	if s.phase != PhasePlayerAnswering {
		return false, domain.ErrWrongPhase
	}
	if s.answering != playerID {
		return false, domain.ErrNotFloorHolder
	}
	if s.claimed {
		s.dropFloor()
		s.restoreQuestion(ctx)
		return false, domain.ErrQuestionClaimed
	}

	correct := s.question != nil && MatchesAnswer(text, s.question.Answer)
	if correct {
		s.recordOutcome(playerID, OutcomeCorrect)
		s.claimed = true
		s.answerFired = true
	} else {
		s.recordOutcome(playerID, OutcomeIncorrect)
	}
	s.dropFloor()
	s.extension += s.cfg.SubmitExtension
	s.restoreQuestion(ctx)
	return correct, nil
}

func (s *Session) releaseFloorChecked(ctx context.Context, playerID uuid.UUID) error {
	if s.phase != PhasePlayerAnswering {
		return domain.ErrWrongPhase
	}
	if s.answering != playerID {
		return domain.ErrNotFloorHolder
	}
	s.releaseFloor(ctx, playerID)
	return nil
}

// releaseFloor tags the holder incorrect after a floor-hold timeout and
// reopens the waiting window.
func (s *Session) releaseFloor(ctx context.Context, playerID uuid.UUID) {
	s.recordOutcome(playerID, OutcomeIncorrect)
	s.dropFloor()
	s.extension += s.cfg.FloorTimeoutExtension
	s.send(ctx, msgFloorTimeout(playerID))
	s.restoreQuestion(ctx)
}

func (s *Session) dropFloor() {
	s.answering = uuid.Nil
	s.floorDeadline = time.Time{}
	s.phase = PhaseWaitingAnswer
}

// recordOutcome tags a player for the open question, keeping submission
// order for claim-based corrections.
func (s *Session) recordOutcome(playerID uuid.UUID, o Outcome) {
	if _, seen := s.outcomes[playerID]; !seen {
		s.answerOrder = append(s.answerOrder, playerID)
	}
	s.outcomes[playerID] = o
}

// restoreQuestion puts the full question text back after the floor closes.
func (s *Session) restoreQuestion(ctx context.Context) {
	if s.question == nil || s.questionMsgID == 0 {
		return
	}
	s.edit(ctx, s.questionMsgID, msgQuestion(s.questionCost, s.themeName, s.question.Text))
}

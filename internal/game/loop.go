package game

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"trivia-game-service/internal/domain"
)

// run drives the session to completion. It returns nil on a normally
// finished game and ctx.Err() on cancellation. Any other fault is announced
// once, then the loop parks in Idle and keeps serving the mailbox until it
// is cancelled, so an operator can still pause, correct and abort.
func (s *Session) run(ctx context.Context) error {
	s.ctx = ctx
	defer close(s.closed)

	err := s.play(ctx)
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	s.log.Error("game loop failed", zap.Error(err))
	s.send(ctx, msgInternalError())
	s.phase = PhaseIdle
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-s.commands:
			fn()
		}
	}
}

func (s *Session) play(ctx context.Context) error {
	if err := s.store.SetGameStatus(ctx, s.chatID, domain.StatusRunning); err != nil {
		return fmt.Errorf("set status running: %w", err)
	}

	startTheme, startQuestion := s.cursor.Theme, s.cursor.Question

	// private lobbies close as soon as the game starts; finalize revokes
	// again in case a fresh link was issued mid-game
	if s.private && s.inviteLink != "" && startTheme == 0 && startQuestion == 0 {
		if err := s.chat.RevokeInviteLink(ctx, s.chatID, s.inviteLink); err != nil {
			s.log.Warn("revoke invite failed", zap.Error(err))
		}
	}

	if s.pack.Info != "" && startTheme == 0 && startQuestion == 0 {
		s.send(ctx, msgPackInfo(s.pack.Info))
		if err := s.delay(ctx, s.cfg.PackInfoDelay); err != nil {
			return err
		}
	}

	for themeIdx := startTheme; themeIdx < len(s.themeOrder); themeIdx++ {
		packThemeIdx := s.themeOrder[themeIdx]
		if packThemeIdx < 0 || packThemeIdx >= len(s.pack.Themes) {
			s.log.Warn("theme index out of range, skipping",
				zap.Int("position", themeIdx), zap.Int("index", packThemeIdx))
			continue
		}
		theme := s.pack.Themes[packThemeIdx]

		s.phase = PhaseShowingTheme
		s.send(ctx, msgTheme(theme.Name))
		if err := s.delay(ctx, s.cfg.ThemeIntroDelay); err != nil {
			return err
		}

		firstQuestion := 0
		if themeIdx == startTheme {
			firstQuestion = startQuestion
		}
		for qIdx := firstQuestion; qIdx < len(theme.Questions); qIdx++ {
			if err := s.playQuestion(ctx, themeIdx, theme, qIdx); err != nil {
				return err
			}
		}
	}

	s.phase = PhaseGameOver
	s.send(ctx, msgGameOver())
	if err := s.store.SetGameStatus(ctx, s.chatID, domain.StatusFinished); err != nil {
		return fmt.Errorf("set status finished: %w", err)
	}
	return nil
}

func (s *Session) playQuestion(ctx context.Context, themeIdx int, theme domain.Theme, qIdx int) error {
	q := theme.Questions[qIdx]
	if q.Text == "" || q.Answer == "" {
		s.log.Warn("malformed question, skipping",
			zap.String("theme", theme.Name), zap.Int("question", qIdx))
		return nil
	}

	s.cursor = domain.Cursor{Theme: themeIdx, Question: qIdx}
	if err := s.store.SetCursor(ctx, s.chatID, s.cursor); err != nil {
		return fmt.Errorf("persist cursor: %w", err)
	}

	// early scoreboard before the endgame questions
	if themeIdx == len(s.themeOrder)-1 && qIdx == len(theme.Questions)-2 {
		s.showStandings(ctx)
	}

	s.send(ctx, msgAttention())
	if err := s.delay(ctx, s.cfg.AttentionDelay); err != nil {
		return err
	}

	cost := q.Cost
	if cost == 0 {
		cost = (qIdx + 1) * 10
	}

	s.phase = PhaseShowingQuestion
	s.question = &q
	s.questionCost = cost
	s.themeName = theme.Name
	s.questionMsgID = 0
	s.resetQuestion()

	if s.reveal && len([]rune(q.Text)) > s.cfg.RevealThreshold {
		if err := s.revealQuestion(ctx, cost, theme.Name, q.Text); err != nil {
			return err
		}
	} else {
		s.questionMsgID = s.send(ctx, msgQuestion(cost, theme.Name, q.Text))
	}

	s.phase = PhaseWaitingAnswer
	if _, err := s.waitForAnswer(ctx, s.cfg.AnswerWait); err != nil {
		return err
	}

	s.phase = PhaseShowingAnswer
	s.send(ctx, msgAnswer(q.Answer, q.Comment))

	if len(s.outcomes) > 0 {
		s.phase = PhaseScoreCorrection
		s.send(ctx, msgScoreCorrection())
		if err := s.delay(ctx, s.cfg.CorrectionWindow); err != nil {
			return err
		}
		if err := s.finalizeQuestionScores(ctx, cost); err != nil {
			return err
		}
	} else if err := s.delay(ctx, s.cfg.NoOutcomeDelay); err != nil {
		return err
	}

	s.showStandings(ctx)

	s.question = nil
	s.questionMsgID = 0
	s.resetQuestion()
	return nil
}

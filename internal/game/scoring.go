package game

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// finalizeQuestionScores closes the correction window: a still-open dispute
// is force-resolved, then every tagged player's delta is applied to the
// score store in one bulk write. The two does-not-count tags produce no
// delta.
func (s *Session) finalizeQuestionScores(ctx context.Context, cost int) error {
	if s.dispute != nil {
		s.resolveDispute(ctx)
	}
	if len(s.outcomes) == 0 {
		return nil
	}

	deltas := make(map[uuid.UUID]int)
	var lines []string
	for _, pid := range s.answerOrder {
		switch s.outcomes[pid] {
		case OutcomeCorrect:
			deltas[pid] = cost
			s.correct[pid]++
			s.earned[pid] += cost
			lines = append(lines, fmt.Sprintf("%s +%d", playerLabel(pid), cost))
		case OutcomeIncorrect:
			deltas[pid] = -cost
			s.wrong[pid]++
			lines = append(lines, fmt.Sprintf("%s -%d", playerLabel(pid), cost))
		}
	}

	if len(deltas) > 0 {
		if err := s.store.ApplyScoreDeltas(ctx, s.chatID, deltas); err != nil {
			return fmt.Errorf("apply score deltas: %w", err)
		}
	}
	if len(lines) > 0 {
		s.send(ctx, msgScoreSummary(lines))
	}
	return nil
}

// showStandings renders the interim scoreboard, score descending. Cosmetic;
// store hiccups are logged and skipped.
func (s *Session) showStandings(ctx context.Context) {
	scores, err := s.store.Scores(ctx, s.chatID)
	if err != nil {
		s.log.Warn("read scores failed", zap.Error(err))
		return
	}

	ordered := append([]uuid.UUID(nil), s.players...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return scores[ordered[i]] > scores[ordered[j]]
	})

	lines := make([]string, 0, len(ordered))
	for _, pid := range ordered {
		lines = append(lines, fmt.Sprintf("%s: %d", playerLabel(pid), scores[pid]))
	}
	if len(lines) > 0 {
		s.send(ctx, msgStandings(lines))
	}
}

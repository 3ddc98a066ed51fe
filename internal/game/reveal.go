package game

import "context"

const (
	revealParts      = 10
	revealMinPartLen = 40
)

// splitQuestionParts cuts a question into progressively longer prefixes for
// staged display. Short questions produce fewer (or one) parts.
func splitQuestionParts(text string, numParts, minPartLen int) []string {
	runes := []rune(text)
	total := len(runes)
	if total == 0 {
		return []string{""}
	}

	if total < minPartLen*numParts {
		numParts = total / minPartLen
		if numParts < 1 {
			numParts = 1
		}
	}
	if numParts == 1 {
		return []string{text}
	}

	inc := total / numParts
	if inc < minPartLen {
		inc = minPartLen
		numParts = total / inc
		if numParts < 1 {
			numParts = 1
		}
	}

	parts := make([]string, 0, numParts)
	for i := 1; i <= numParts; i++ {
		end := i * inc
		if i == numParts || end > total {
			end = total
		}
		parts = append(parts, string(runes[:end]))
	}
	return parts
}

// revealQuestion renders the question in growing prefixes on a fixed
// cadence before the answering window opens. Rendering only; timing
// semantics are untouched.
func (s *Session) revealQuestion(ctx context.Context, cost int, themeName, text string) error {
	parts := splitQuestionParts(text, revealParts, revealMinPartLen)
	s.questionMsgID = s.send(ctx, msgQuestion(cost, themeName, parts[0]))
	for _, part := range parts[1:] {
		if err := s.delay(ctx, s.cfg.RevealCadence); err != nil {
			return err
		}
		s.edit(ctx, s.questionMsgID, msgQuestion(cost, themeName, part))
	}
	return nil
}

package game

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Chat text rendered by the engine. Localization happens upstream of the
// chat transport; these are the canonical English strings.

func playerLabel(id uuid.UUID) string {
	return "player-" + id.String()[:8]
}

func msgPackInfo(info string) string {
	return "Tonight's pack:\n" + info
}

func msgTheme(name string) string {
	return "Theme: " + name
}

func msgAttention() string {
	return "Attention, question!"
}

func msgQuestion(cost int, theme, text string) string {
	return fmt.Sprintf("[%s, %d]\n%s", theme, cost, text)
}

func msgQuestionHidden(cost int) string {
	return fmt.Sprintf("[%d] Question hidden while a player answers.", cost)
}

func msgPlayerAnswering(id uuid.UUID) string {
	return playerLabel(id) + " is answering..."
}

func msgFloorTimeout(id uuid.UUID) string {
	return "Time is up for " + playerLabel(id) + "."
}

func msgAnswer(answer, comment string) string {
	if comment != "" {
		return "Answer: " + answer + "\n" + comment
	}
	return "Answer: " + answer
}

func msgScoreCorrection() string {
	return "Score correction: /yes, /no, /accidentally, or /dispute an answer."
}

func msgScoreSummary(lines []string) string {
	return "Question results: " + strings.Join(lines, "  ")
}

func msgStandings(lines []string) string {
	return "Standings:\n" + strings.Join(lines, "\n")
}

func msgDisputeOpened(target uuid.UUID, answer string) string {
	return fmt.Sprintf("Vote: count %s's answer as correct? (correct answer: %s)", playerLabel(target), answer)
}

func msgDisputeAccepted(target uuid.UUID, yes, no int) string {
	return fmt.Sprintf("Vote result: %s's answer counts (%d for, %d against)", playerLabel(target), yes, no)
}

func msgDisputeRejected(target uuid.UUID, yes, no int) string {
	return fmt.Sprintf("Vote result: %s's answer does not count (%d for, %d against)", playerLabel(target), yes, no)
}

func msgDisputeTied(target uuid.UUID, yes, no int) string {
	return fmt.Sprintf("Votes split %d:%d. %s's answer is voided.", yes, no, playerLabel(target))
}

func msgKickQuestion(target uuid.UUID) string {
	return "Vote: remove " + playerLabel(target) + " from the game?"
}

func msgKicked(target uuid.UUID) string {
	return playerLabel(target) + " was voted out of the game."
}

func msgKickFailed(target uuid.UUID) string {
	return "Vote failed, " + playerLabel(target) + " stays."
}

func msgGameOver() string {
	return "Game over!"
}

func msgFinalStandings(lines []string) string {
	return "Final results:\n" + strings.Join(lines, "\n")
}

func msgInternalError() string {
	return "Something went wrong; the game is paused pending an operator."
}

package game

// Phase is the game-loop state machine value.
type Phase string

const (
	PhaseIdle            Phase = "idle"
	PhaseShowingTheme    Phase = "showing_theme"
	PhaseShowingQuestion Phase = "showing_question"
	PhaseWaitingAnswer   Phase = "waiting_answer"
	PhasePlayerAnswering Phase = "player_answering"
	PhaseShowingAnswer   Phase = "showing_answer"
	PhaseScoreCorrection Phase = "score_correction"
	PhasePaused          Phase = "paused"
	PhaseGameOver        Phase = "game_over"
)

// Pausable reports whether the pause overlay may be entered from p. Pausing
// is refused while a question is live to avoid freezing mid-arbitration.
func (p Phase) Pausable() bool {
	switch p {
	case PhaseIdle, PhaseShowingTheme, PhaseShowingAnswer, PhaseScoreCorrection:
		return true
	case PhaseShowingQuestion, PhaseWaitingAnswer, PhasePlayerAnswering,
		PhasePaused, PhaseGameOver:
		return false
	}
	return false
}

// questionOpen reports whether the floor is live in p.
func (p Phase) questionOpen() bool {
	return p == PhaseShowingQuestion || p == PhaseWaitingAnswer || p == PhasePlayerAnswering
}

// Outcome classifies one player's answer to the current question.
type Outcome string

const (
	OutcomeCorrect               Outcome = "correct"
	OutcomeIncorrect             Outcome = "incorrect"
	OutcomeDoesNotCount          Outcome = "doesnt_count"
	OutcomeConfirmedDoesNotCount Outcome = "confirmed_doesnt_count"
)

// locked outcomes are player-acknowledged and immune to later overrides.
func (o Outcome) locked() bool {
	return o == OutcomeConfirmedDoesNotCount
}

package game

import "time"

// Config carries every timing knob of the session engine. Zero values are
// filled in by withDefaults, so partial configs are fine.
type Config struct {
	PackInfoDelay    time.Duration // beat after the pack intro message
	ThemeIntroDelay  time.Duration // ShowingTheme hold
	AttentionDelay   time.Duration // "attention, question" beat
	AnswerWait       time.Duration // WaitingAnswer budget
	FloorHold        time.Duration // per-player answering timeout
	CorrectionWindow time.Duration // ScoreCorrection hold
	NoOutcomeDelay   time.Duration // pause when nobody answered

	DisputeWindow         time.Duration // dispute/kick voting deadline
	ClaimExtension        time.Duration // added when a player claims the floor
	SubmitExtension       time.Duration // added on every submission
	FloorTimeoutExtension time.Duration // added when the floor times out
	CorrectionExtension   time.Duration // added per correction command

	TeardownCooldown time.Duration // before chat cleanup on normal completion
	AbortCooldown    time.Duration // before chat cleanup on abort

	PauseAllowance int // pauses each player may spend per game

	RevealThreshold int           // question length (runes) enabling progressive reveal
	RevealCadence   time.Duration // delay between reveal steps
}

// DefaultConfig mirrors the timings of the reference deployment.
func DefaultConfig() Config {
	return Config{
		PackInfoDelay:    3 * time.Second,
		ThemeIntroDelay:  7 * time.Second,
		AttentionDelay:   2 * time.Second,
		AnswerWait:       20 * time.Second,
		FloorHold:        10 * time.Second,
		CorrectionWindow: 10 * time.Second,
		NoOutcomeDelay:   3 * time.Second,

		DisputeWindow:         15 * time.Second,
		ClaimExtension:        15 * time.Second,
		SubmitExtension:       8 * time.Second,
		FloorTimeoutExtension: 10 * time.Second,
		CorrectionExtension:   5 * time.Second,

		TeardownCooldown: 30 * time.Second,
		AbortCooldown:    5 * time.Second,

		PauseAllowance: 3,

		RevealThreshold: 120,
		RevealCadence:   2 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.PackInfoDelay == 0 {
		c.PackInfoDelay = def.PackInfoDelay
	}
	if c.ThemeIntroDelay == 0 {
		c.ThemeIntroDelay = def.ThemeIntroDelay
	}
	if c.AttentionDelay == 0 {
		c.AttentionDelay = def.AttentionDelay
	}
	if c.AnswerWait == 0 {
		c.AnswerWait = def.AnswerWait
	}
	if c.FloorHold == 0 {
		c.FloorHold = def.FloorHold
	}
	if c.CorrectionWindow == 0 {
		c.CorrectionWindow = def.CorrectionWindow
	}
	if c.NoOutcomeDelay == 0 {
		c.NoOutcomeDelay = def.NoOutcomeDelay
	}
	if c.DisputeWindow == 0 {
		c.DisputeWindow = def.DisputeWindow
	}
	if c.ClaimExtension == 0 {
		c.ClaimExtension = def.ClaimExtension
	}
	if c.SubmitExtension == 0 {
		c.SubmitExtension = def.SubmitExtension
	}
	if c.FloorTimeoutExtension == 0 {
		c.FloorTimeoutExtension = def.FloorTimeoutExtension
	}
	if c.CorrectionExtension == 0 {
		c.CorrectionExtension = def.CorrectionExtension
	}
	if c.TeardownCooldown == 0 {
		c.TeardownCooldown = def.TeardownCooldown
	}
	if c.AbortCooldown == 0 {
		c.AbortCooldown = def.AbortCooldown
	}
	if c.PauseAllowance == 0 {
		c.PauseAllowance = def.PauseAllowance
	}
	if c.RevealThreshold == 0 {
		c.RevealThreshold = def.RevealThreshold
	}
	if c.RevealCadence == 0 {
		c.RevealCadence = def.RevealCadence
	}
	return c
}

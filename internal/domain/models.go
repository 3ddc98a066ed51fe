package domain

import "github.com/google/uuid"

// DefaultRating is the skill rating assigned to players with no history.
const DefaultRating = 1000

// GameStatus tracks a game record through its store lifecycle.
type GameStatus string

const (
	StatusRegistered GameStatus = "registered"
	StatusStarting   GameStatus = "starting"
	StatusRunning    GameStatus = "running"
	StatusFinished   GameStatus = "finished"
	StatusAborted    GameStatus = "aborted"
)

// Question is a single graded question inside a theme. Answer may hold
// several slash-separated accepted alternatives.
type Question struct {
	Text    string `json:"text"`
	Answer  string `json:"answer"`
	Comment string `json:"comment,omitempty"`
	Cost    int    `json:"cost,omitempty"` // defaults to 10 x ordinal if zero
}

// Theme is an ordered group of graded questions sharing a topic.
type Theme struct {
	Name      string     `json:"name"`
	Questions []Question `json:"questions"`
}

// Pack is the full question script assignable to games.
type Pack struct {
	ID        uuid.UUID `json:"id"`
	ShortName string    `json:"shortName"`
	Name      string    `json:"name"`
	Info      string    `json:"info,omitempty"`
	Themes    []Theme   `json:"themes"`
}

// GameRecord is the durable registration of a game bound to a chat.
type GameRecord struct {
	ChatID            int64
	OriginChatID      int64
	PackShortName     string
	ThemeOrder        []int
	Players           []uuid.UUID
	Status            GameStatus
	InviteLink        string
	Private           bool
	ProgressiveReveal bool
}

// Cursor is the durable resumption position inside a game script.
type Cursor struct {
	Theme    int `json:"theme"`
	Question int `json:"question"`
}

// PlayerStats is the cross-game record for one player.
type PlayerStats struct {
	PlayerID    uuid.UUID
	Rating      int
	GamesPlayed int
	Wins        int
	Correct     int
	Wrong       int
}

// GameResult is one player's outcome of a finished game, applied to their
// stats in a single store write.
type GameResult struct {
	Score       int
	Winner      bool
	Correct     int
	Wrong       int
	RatingDelta int
}

// Standing is one row of the final (or interim) scoreboard.
type Standing struct {
	PlayerID    uuid.UUID
	Score       int
	Earned      int // sum of costs from correct answers only, tie-break metric
	Winner      bool
	RatingDelta int
	NewRating   int
}

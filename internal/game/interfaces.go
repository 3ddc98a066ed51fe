package game

import (
	"context"

	"github.com/google/uuid"

	"trivia-game-service/internal/domain"
)

// Store abstracts the persistent keyed store behind the engine (Redis in
// production, in-memory for tests).
type Store interface {
	SaveGame(ctx context.Context, rec domain.GameRecord) error
	GameByChat(ctx context.Context, chatID int64) (domain.GameRecord, error)
	SetGameStatus(ctx context.Context, chatID int64, status domain.GameStatus) error
	AddPlayer(ctx context.Context, chatID int64, playerID uuid.UUID) error

	Cursor(ctx context.Context, chatID int64) (domain.Cursor, error)
	SetCursor(ctx context.Context, chatID int64, cur domain.Cursor) error

	Scores(ctx context.Context, chatID int64) (map[uuid.UUID]int, error)
	// ApplyScoreDeltas applies all signed deltas for one question in a single
	// bulk operation.
	ApplyScoreDeltas(ctx context.Context, chatID int64, deltas map[uuid.UUID]int) error

	PlayerStats(ctx context.Context, playerID uuid.UUID) (domain.PlayerStats, error)
	ApplyGameResult(ctx context.Context, playerID uuid.UUID, result domain.GameResult) error
	AppendPackHistory(ctx context.Context, playerID, packID uuid.UUID, themes []int) error
	TrackPlayerChat(ctx context.Context, playerID uuid.UUID, chatID int64) error

	ReleaseGameChat(ctx context.Context, chatID int64) error
	DeleteGame(ctx context.Context, chatID int64) error
}

// PackRepository loads pack content (from cache/backing store).
type PackRepository interface {
	GetPack(ctx context.Context, shortName string) (domain.Pack, error)
}

// Chat is the narrow chat-transport contract. Sends are best-effort; callers
// swallow failures.
type Chat interface {
	SendMessage(ctx context.Context, chatID int64, text string) (int64, error)
	EditMessage(ctx context.Context, chatID int64, messageID int64, text string) error
	// SendPoll opens a two-option poll and returns its identity; per-voter
	// callbacks arrive through Manager.HandlePollVote.
	SendPoll(ctx context.Context, chatID int64, question, yesOption, noOption string) (string, error)
	BanMember(ctx context.Context, chatID int64, playerID uuid.UUID) error
	UnbanMember(ctx context.Context, chatID int64, playerID uuid.UUID) error
	RevokeInviteLink(ctx context.Context, chatID int64, link string) error
}

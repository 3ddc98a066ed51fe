package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"trivia-game-service/internal/domain"
)

// GameStore keeps all per-game and per-player state in Redis.
// Layout:
//
//	game:{chatID}          JSON GameRecord
//	game:{chatID}:cursor   JSON Cursor
//	game:{chatID}:scores   HASH playerID -> score
//	player:{id}:stats      HASH rating/games/wins/correct/wrong
//	player:{id}:history    HASH packID -> theme range string
//	player:{id}:chats      SET of chat IDs
//	games:chats            SET of chat IDs bound to a game
type GameStore struct {
	client *redis.Client
}

func NewGameStore(client *redis.Client) *GameStore {
	return &GameStore{client: client}
}

func (s *GameStore) SaveGame(ctx context.Context, rec domain.GameRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal game record: %w", err)
	}
	pipe := s.client.Pipeline()
	pipe.Set(ctx, gameKey(rec.ChatID), raw, 0)
	pipe.SAdd(ctx, "games:chats", rec.ChatID)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *GameStore) GameByChat(ctx context.Context, chatID int64) (domain.GameRecord, error) {
	raw, err := s.client.Get(ctx, gameKey(chatID)).Bytes()
	if err == redis.Nil {
		return domain.GameRecord{}, domain.ErrGameNotFound
	}
	if err != nil {
		return domain.GameRecord{}, fmt.Errorf("load game record: %w", err)
	}
	var rec domain.GameRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return domain.GameRecord{}, fmt.Errorf("unmarshal game record: %w", err)
	}
	return rec, nil
}

func (s *GameStore) SetGameStatus(ctx context.Context, chatID int64, status domain.GameStatus) error {
	rec, err := s.GameByChat(ctx, chatID)
	if err != nil {
		return err
	}
	rec.Status = status
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal game record: %w", err)
	}
	return s.client.Set(ctx, gameKey(chatID), raw, 0).Err()
}

func (s *GameStore) AddPlayer(ctx context.Context, chatID int64, playerID uuid.UUID) error {
	rec, err := s.GameByChat(ctx, chatID)
	if err != nil {
		return err
	}
	for _, p := range rec.Players {
		if p == playerID {
			return domain.ErrDuplicatePlayer
		}
	}
	rec.Players = append(rec.Players, playerID)
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal game record: %w", err)
	}
	return s.client.Set(ctx, gameKey(chatID), raw, 0).Err()
}

func (s *GameStore) Cursor(ctx context.Context, chatID int64) (domain.Cursor, error) {
	raw, err := s.client.Get(ctx, cursorKey(chatID)).Bytes()
	if err == redis.Nil {
		return domain.Cursor{}, nil
	}
	if err != nil {
		return domain.Cursor{}, fmt.Errorf("load cursor: %w", err)
	}
	var cur domain.Cursor
	if err := json.Unmarshal(raw, &cur); err != nil {
		return domain.Cursor{}, fmt.Errorf("unmarshal cursor: %w", err)
	}
	return cur, nil
}

func (s *GameStore) SetCursor(ctx context.Context, chatID int64, cur domain.Cursor) error {
	raw, err := json.Marshal(cur)
	if err != nil {
		return fmt.Errorf("marshal cursor: %w", err)
	}
	return s.client.Set(ctx, cursorKey(chatID), raw, 0).Err()
}

func (s *GameStore) Scores(ctx context.Context, chatID int64) (map[uuid.UUID]int, error) {
	raw, err := s.client.HGetAll(ctx, scoresKey(chatID)).Result()
	if err != nil {
		return nil, fmt.Errorf("load scores: %w", err)
	}
	scores := make(map[uuid.UUID]int, len(raw))
	for field, val := range raw {
		id, err := uuid.Parse(field)
		if err != nil {
			continue
		}
		n, err := strconv.Atoi(val)
		if err != nil {
			continue
		}
		scores[id] = n
	}
	return scores, nil
}

func (s *GameStore) ApplyScoreDeltas(ctx context.Context, chatID int64, deltas map[uuid.UUID]int) error {
	if len(deltas) == 0 {
		return nil
	}
	pipe := s.client.Pipeline()
	for p, d := range deltas {
		pipe.HIncrBy(ctx, scoresKey(chatID), p.String(), int64(d))
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (s *GameStore) PlayerStats(ctx context.Context, playerID uuid.UUID) (domain.PlayerStats, error) {
	raw, err := s.client.HGetAll(ctx, statsKey(playerID)).Result()
	if err != nil {
		return domain.PlayerStats{}, fmt.Errorf("load player stats: %w", err)
	}
	stats := domain.PlayerStats{PlayerID: playerID, Rating: domain.DefaultRating}
	if len(raw) == 0 {
		return stats, nil
	}
	stats.Rating = hashInt(raw, "rating", domain.DefaultRating)
	stats.GamesPlayed = hashInt(raw, "games", 0)
	stats.Wins = hashInt(raw, "wins", 0)
	stats.Correct = hashInt(raw, "correct", 0)
	stats.Wrong = hashInt(raw, "wrong", 0)
	return stats, nil
}

func (s *GameStore) ApplyGameResult(ctx context.Context, playerID uuid.UUID, result domain.GameResult) error {
	key := statsKey(playerID)
	pipe := s.client.Pipeline()
	pipe.HSetNX(ctx, key, "rating", domain.DefaultRating)
	pipe.HIncrBy(ctx, key, "rating", int64(result.RatingDelta))
	pipe.HIncrBy(ctx, key, "games", 1)
	if result.Winner {
		pipe.HIncrBy(ctx, key, "wins", 1)
	}
	pipe.HIncrBy(ctx, key, "correct", int64(result.Correct))
	pipe.HIncrBy(ctx, key, "wrong", int64(result.Wrong))
	_, err := pipe.Exec(ctx)
	return err
}

func (s *GameStore) AppendPackHistory(ctx context.Context, playerID, packID uuid.UUID, themes []int) error {
	key := historyKey(playerID)
	existing, err := s.client.HGet(ctx, key, packID.String()).Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("load pack history: %w", err)
	}
	merged := domain.MergeThemeRanges(existing, themes)
	return s.client.HSet(ctx, key, packID.String(), merged).Err()
}

func (s *GameStore) TrackPlayerChat(ctx context.Context, playerID uuid.UUID, chatID int64) error {
	return s.client.SAdd(ctx, chatsKey(playerID), chatID).Err()
}

func (s *GameStore) ReleaseGameChat(ctx context.Context, chatID int64) error {
	return s.client.SRem(ctx, "games:chats", chatID).Err()
}

func (s *GameStore) DeleteGame(ctx context.Context, chatID int64) error {
	return s.client.Del(ctx, gameKey(chatID), cursorKey(chatID), scoresKey(chatID)).Err()
}

func gameKey(chatID int64) string {
	return "game:" + strconv.FormatInt(chatID, 10)
}

func cursorKey(chatID int64) string {
	return gameKey(chatID) + ":cursor"
}

func scoresKey(chatID int64) string {
	return gameKey(chatID) + ":scores"
}

func statsKey(playerID uuid.UUID) string {
	return "player:" + playerID.String() + ":stats"
}

func historyKey(playerID uuid.UUID) string {
	return "player:" + playerID.String() + ":history"
}

func chatsKey(playerID uuid.UUID) string {
	return "player:" + playerID.String() + ":chats"
}

func hashInt(raw map[string]string, field string, fallback int) int {
	val, ok := raw[field]
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return n
}

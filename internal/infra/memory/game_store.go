package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"trivia-game-service/internal/domain"
)

// GameStore is the in-memory implementation of the engine's store, used in
// tests and when no Redis is configured. All methods are safe for concurrent
// use.
type GameStore struct {
	mu      sync.RWMutex
	games   map[int64]domain.GameRecord
	cursors map[int64]domain.Cursor
	scores  map[int64]map[uuid.UUID]int
	stats   map[uuid.UUID]domain.PlayerStats
	history map[uuid.UUID]map[uuid.UUID]string // player -> pack -> theme ranges
	chats   map[uuid.UUID]map[int64]struct{}
	bound   map[int64]struct{}
}

func NewGameStore() *GameStore {
	return &GameStore{
		games:   make(map[int64]domain.GameRecord),
		cursors: make(map[int64]domain.Cursor),
		scores:  make(map[int64]map[uuid.UUID]int),
		stats:   make(map[uuid.UUID]domain.PlayerStats),
		history: make(map[uuid.UUID]map[uuid.UUID]string),
		chats:   make(map[uuid.UUID]map[int64]struct{}),
		bound:   make(map[int64]struct{}),
	}
}

func (s *GameStore) SaveGame(ctx context.Context, rec domain.GameRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[rec.ChatID] = rec
	s.bound[rec.ChatID] = struct{}{}
	return nil
}

func (s *GameStore) GameByChat(ctx context.Context, chatID int64) (domain.GameRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.games[chatID]
	if !ok {
		return domain.GameRecord{}, domain.ErrGameNotFound
	}
	return rec, nil
}

func (s *GameStore) SetGameStatus(ctx context.Context, chatID int64, status domain.GameStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.games[chatID]
	if !ok {
		return domain.ErrGameNotFound
	}
	rec.Status = status
	s.games[chatID] = rec
	return nil
}

func (s *GameStore) AddPlayer(ctx context.Context, chatID int64, playerID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.games[chatID]
	if !ok {
		return domain.ErrGameNotFound
	}
	for _, p := range rec.Players {
		if p == playerID {
			return domain.ErrDuplicatePlayer
		}
	}
	rec.Players = append(rec.Players, playerID)
	s.games[chatID] = rec
	return nil
}

func (s *GameStore) Cursor(ctx context.Context, chatID int64) (domain.Cursor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cursors[chatID], nil
}

func (s *GameStore) SetCursor(ctx context.Context, chatID int64, cur domain.Cursor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursors[chatID] = cur
	return nil
}

func (s *GameStore) Scores(ctx context.Context, chatID int64) (map[uuid.UUID]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[uuid.UUID]int, len(s.scores[chatID]))
	for p, sc := range s.scores[chatID] {
		out[p] = sc
	}
	return out, nil
}

func (s *GameStore) ApplyScoreDeltas(ctx context.Context, chatID int64, deltas map[uuid.UUID]int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	board, ok := s.scores[chatID]
	if !ok {
		board = make(map[uuid.UUID]int)
		s.scores[chatID] = board
	}
	for p, d := range deltas {
		board[p] += d
	}
	return nil
}

func (s *GameStore) PlayerStats(ctx context.Context, playerID uuid.UUID) (domain.PlayerStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats, ok := s.stats[playerID]
	if !ok {
		return domain.PlayerStats{PlayerID: playerID, Rating: domain.DefaultRating}, nil
	}
	return stats, nil
}

func (s *GameStore) ApplyGameResult(ctx context.Context, playerID uuid.UUID, result domain.GameResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats, ok := s.stats[playerID]
	if !ok {
		stats = domain.PlayerStats{PlayerID: playerID, Rating: domain.DefaultRating}
	}
	stats.GamesPlayed++
	if result.Winner {
		stats.Wins++
	}
	stats.Correct += result.Correct
	stats.Wrong += result.Wrong
	stats.Rating += result.RatingDelta
	s.stats[playerID] = stats
	return nil
}

func (s *GameStore) AppendPackHistory(ctx context.Context, playerID, packID uuid.UUID, themes []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	packs, ok := s.history[playerID]
	if !ok {
		packs = make(map[uuid.UUID]string)
		s.history[playerID] = packs
	}
	packs[packID] = domain.MergeThemeRanges(packs[packID], themes)
	return nil
}

// PackHistory returns the stored theme-range string, for matchmaking and
// tests.
func (s *GameStore) PackHistory(playerID, packID uuid.UUID) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history[playerID][packID]
}

func (s *GameStore) TrackPlayerChat(ctx context.Context, playerID uuid.UUID, chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.chats[playerID]
	if !ok {
		set = make(map[int64]struct{})
		s.chats[playerID] = set
	}
	set[chatID] = struct{}{}
	return nil
}

func (s *GameStore) ReleaseGameChat(ctx context.Context, chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.bound, chatID)
	return nil
}

func (s *GameStore) DeleteGame(ctx context.Context, chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.games, chatID)
	delete(s.cursors, chatID)
	delete(s.scores, chatID)
	return nil
}

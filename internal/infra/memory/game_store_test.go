package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"trivia-game-service/internal/domain"
)

func TestGameStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewGameStore()
	alice := uuid.New()

	if _, err := store.GameByChat(ctx, 1); !errors.Is(err, domain.ErrGameNotFound) {
		t.Fatalf("got %v, want ErrGameNotFound", err)
	}

	rec := domain.GameRecord{
		ChatID:        1,
		PackShortName: "capitals",
		Players:       []uuid.UUID{alice},
		Status:        domain.StatusRegistered,
	}
	if err := store.SaveGame(ctx, rec); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := store.GameByChat(ctx, 1)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.PackShortName != "capitals" || len(loaded.Players) != 1 {
		t.Fatalf("loaded = %+v", loaded)
	}

	if err := store.SetGameStatus(ctx, 1, domain.StatusRunning); err != nil {
		t.Fatalf("set status: %v", err)
	}
	loaded, _ = store.GameByChat(ctx, 1)
	if loaded.Status != domain.StatusRunning {
		t.Fatalf("status = %s, want %s", loaded.Status, domain.StatusRunning)
	}

	bob := uuid.New()
	if err := store.AddPlayer(ctx, 1, bob); err != nil {
		t.Fatalf("add player: %v", err)
	}
	if err := store.AddPlayer(ctx, 1, bob); !errors.Is(err, domain.ErrDuplicatePlayer) {
		t.Fatalf("duplicate add: got %v, want ErrDuplicatePlayer", err)
	}

	if err := store.DeleteGame(ctx, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.GameByChat(ctx, 1); !errors.Is(err, domain.ErrGameNotFound) {
		t.Fatalf("after delete: got %v, want ErrGameNotFound", err)
	}
}

func TestGameStoreScoresAndCursor(t *testing.T) {
	ctx := context.Background()
	store := NewGameStore()
	alice, bob := uuid.New(), uuid.New()

	if err := store.ApplyScoreDeltas(ctx, 1, map[uuid.UUID]int{alice: 30, bob: -10}); err != nil {
		t.Fatalf("apply deltas: %v", err)
	}
	if err := store.ApplyScoreDeltas(ctx, 1, map[uuid.UUID]int{alice: -5}); err != nil {
		t.Fatalf("apply deltas: %v", err)
	}

	scores, err := store.Scores(ctx, 1)
	if err != nil {
		t.Fatalf("scores: %v", err)
	}
	if scores[alice] != 25 || scores[bob] != -10 {
		t.Fatalf("scores = %d/%d, want 25/-10", scores[alice], scores[bob])
	}

	cur := domain.Cursor{Theme: 2, Question: 3}
	if err := store.SetCursor(ctx, 1, cur); err != nil {
		t.Fatalf("set cursor: %v", err)
	}
	got, err := store.Cursor(ctx, 1)
	if err != nil {
		t.Fatalf("cursor: %v", err)
	}
	if got != cur {
		t.Fatalf("cursor = %+v, want %+v", got, cur)
	}
}

func TestGameStorePlayerStats(t *testing.T) {
	ctx := context.Background()
	store := NewGameStore()
	alice := uuid.New()

	stats, err := store.PlayerStats(ctx, alice)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Rating != domain.DefaultRating {
		t.Fatalf("fresh rating = %d, want %d", stats.Rating, domain.DefaultRating)
	}

	result := domain.GameResult{Score: 80, Winner: true, Correct: 4, Wrong: 1, RatingDelta: 12}
	if err := store.ApplyGameResult(ctx, alice, result); err != nil {
		t.Fatalf("apply result: %v", err)
	}

	stats, _ = store.PlayerStats(ctx, alice)
	if stats.Rating != domain.DefaultRating+12 || stats.GamesPlayed != 1 || stats.Wins != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	if stats.Correct != 4 || stats.Wrong != 1 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestGameStorePackHistory(t *testing.T) {
	ctx := context.Background()
	store := NewGameStore()
	alice, pack := uuid.New(), uuid.New()

	if err := store.AppendPackHistory(ctx, alice, pack, []int{0, 1, 2}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := store.AppendPackHistory(ctx, alice, pack, []int{5, 6}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if got := store.PackHistory(alice, pack); got != "0-2,5-6" {
		t.Fatalf("history = %q, want %q", got, "0-2,5-6")
	}
}

func TestStaticPackLoader(t *testing.T) {
	loader := NewStaticPackLoader(map[string]domain.Pack{
		"demo": {ShortName: "demo", Name: "Demo"},
	})

	pack, err := loader.LoadPack(context.Background(), "demo")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if pack.Name != "Demo" {
		t.Fatalf("pack = %+v", pack)
	}

	if _, err := loader.LoadPack(context.Background(), "missing"); !errors.Is(err, domain.ErrPackNotFound) {
		t.Fatalf("got %v, want ErrPackNotFound", err)
	}
}

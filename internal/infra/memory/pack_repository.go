package memory

import (
	"context"
	"sync"
	"time"

	"trivia-game-service/internal/domain"
)

// PackLoader fetches pack content from a backing store (e.g., Postgres).
type PackLoader interface {
	LoadPack(ctx context.Context, shortName string) (domain.Pack, error)
}

// StaticPackLoader serves packs from a fixed map; the development fallback
// when no database is configured.
type StaticPackLoader struct {
	packs map[string]domain.Pack
}

func NewStaticPackLoader(packs map[string]domain.Pack) *StaticPackLoader {
	return &StaticPackLoader{packs: packs}
}

func (l *StaticPackLoader) LoadPack(ctx context.Context, shortName string) (domain.Pack, error) {
	pack, ok := l.packs[shortName]
	if !ok {
		return domain.Pack{}, domain.ErrPackNotFound
	}
	return pack, nil
}

// PackRepository is a process-local TTL cache in front of a loader, for
// deployments running without Redis.
type PackRepository struct {
	loader PackLoader
	ttl    time.Duration

	mu    sync.Mutex
	cache map[string]cachedPack
}

type cachedPack struct {
	pack    domain.Pack
	expires time.Time
}

func NewPackRepository(loader PackLoader, ttl time.Duration) *PackRepository {
	return &PackRepository{
		loader: loader,
		ttl:    ttl,
		cache:  make(map[string]cachedPack),
	}
}

func (r *PackRepository) GetPack(ctx context.Context, shortName string) (domain.Pack, error) {
	r.mu.Lock()
	entry, ok := r.cache[shortName]
	r.mu.Unlock()
	if ok && (r.ttl <= 0 || time.Now().Before(entry.expires)) {
		return entry.pack, nil
	}

	pack, err := r.loader.LoadPack(ctx, shortName)
	if err != nil {
		return domain.Pack{}, err
	}

	r.mu.Lock()
	r.cache[shortName] = cachedPack{pack: pack, expires: time.Now().Add(r.ttl)}
	r.mu.Unlock()
	return pack, nil
}

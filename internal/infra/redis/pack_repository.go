package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"trivia-game-service/internal/domain"
	"trivia-game-service/internal/infra/memory"
)

// PackRepository caches pack JSON in Redis and falls back to a loader on
// cache miss. Concurrent misses for the same pack collapse into one loader
// call.
type PackRepository struct {
	client *redis.Client
	loader memory.PackLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewPackRepository(client *redis.Client, loader memory.PackLoader, ttl time.Duration) *PackRepository {
	return &PackRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *PackRepository) GetPack(ctx context.Context, shortName string) (domain.Pack, error) {
	key := r.packKey(shortName)

	raw, err := r.client.Get(ctx, key).Bytes()
	if err == nil {
		return unmarshalPack(raw)
	}

	result, err, _ := r.sf.Do(shortName, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		raw, err := r.client.Get(ctx, key).Bytes()
		if err == nil {
			return unmarshalPack(raw)
		}

		pack, err := r.loader.LoadPack(ctx, shortName)
		if err != nil {
			return domain.Pack{}, err
		}

		data, err := json.Marshal(pack)
		if err != nil {
			return domain.Pack{}, fmt.Errorf("marshal pack: %w", err)
		}
		_ = r.client.Set(ctx, key, data, r.ttlWithJitter()).Err()
		return pack, nil
	})
	if err != nil {
		return domain.Pack{}, err
	}
	return result.(domain.Pack), nil
}

func (r *PackRepository) packKey(shortName string) string {
	return "pack:" + shortName
}

func (r *PackRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

func unmarshalPack(raw []byte) (domain.Pack, error) {
	var pack domain.Pack
	if err := json.Unmarshal(raw, &pack); err != nil {
		return domain.Pack{}, fmt.Errorf("unmarshal pack: %w", err)
	}
	return pack, nil
}

package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"trivia-game-service/internal/domain"
)

// PackLoader loads pack JSONB from Postgres.
type PackLoader struct {
	pool *pgxpool.Pool
}

func NewPackLoader(pool *pgxpool.Pool) *PackLoader {
	return &PackLoader{pool: pool}
}

func (l *PackLoader) LoadPack(ctx context.Context, shortName string) (domain.Pack, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM packs WHERE short_name=$1`, shortName).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Pack{}, domain.ErrPackNotFound
	}
	if err != nil {
		return domain.Pack{}, fmt.Errorf("load pack: %w", err)
	}
	var pack domain.Pack
	if err := json.Unmarshal(raw, &pack); err != nil {
		return domain.Pack{}, fmt.Errorf("unmarshal pack: %w", err)
	}
	if pack.ShortName == "" {
		pack.ShortName = shortName
	}
	return pack, nil
}

package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
	"go.uber.org/zap"

	"trivia-game-service/internal/domain"
	"trivia-game-service/internal/game"
	pgloader "trivia-game-service/internal/infra/postgres"
	pgmigrations "trivia-game-service/internal/infra/postgres/migrations"
	infraredis "trivia-game-service/internal/infra/redis"
)

func TestGameEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	seedPack(t, ctx, pgURL, samplePack())

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}

	loader := pgloader.NewPackLoader(pool)
	packs := infraredis.NewPackRepository(redisClient, loader, 5*time.Minute)
	store := infraredis.NewGameStore(redisClient)

	chat := &nullChat{}
	ms := time.Millisecond
	cfg := game.Config{
		PackInfoDelay:    ms,
		ThemeIntroDelay:  ms,
		AttentionDelay:   ms,
		AnswerWait:       5 * time.Second,
		FloorHold:        5 * time.Second,
		CorrectionWindow: 50 * ms,
		NoOutcomeDelay:   ms,

		DisputeWindow:         50 * ms,
		ClaimExtension:        ms,
		SubmitExtension:       ms,
		FloorTimeoutExtension: ms,
		CorrectionExtension:   ms,

		TeardownCooldown: ms,
		AbortCooldown:    ms,

		PauseAllowance:  3,
		RevealThreshold: 120,
		RevealCadence:   ms,
	}
	manager := game.NewManager(store, packs, chat, cfg, zap.NewNop())

	alice, bob := uuid.New(), uuid.New()
	err = store.SaveGame(ctx, domain.GameRecord{
		ChatID:        1,
		OriginChatID:  1,
		PackShortName: "capitals",
		ThemeOrder:    []int{0},
		Players:       []uuid.UUID{alice, bob},
		Status:        domain.StatusRegistered,
	})
	if err != nil {
		t.Fatalf("save game: %v", err)
	}

	if err := manager.Start(ctx, 1); err != nil {
		t.Fatalf("start: %v", err)
	}

	deadline := time.Now().Add(30 * time.Second)
	answered := false
	for !answered && time.Now().Before(deadline) {
		if err := manager.ClaimFloor(1, alice); err != nil {
			time.Sleep(5 * time.Millisecond)
			continue
		}
		correct, err := manager.SubmitAnswer(1, alice, "Paris")
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
		if !correct {
			t.Fatal("expected a correct verdict")
		}
		answered = true
	}
	if !answered {
		t.Fatal("never reached the answering window")
	}

	for time.Now().Before(deadline) {
		if _, err := store.GameByChat(ctx, 1); errors.Is(err, domain.ErrGameNotFound) {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if _, err := store.GameByChat(ctx, 1); !errors.Is(err, domain.ErrGameNotFound) {
		t.Fatalf("game not settled, err=%v", err)
	}

	stats, err := store.PlayerStats(ctx, alice)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Wins != 1 || stats.Correct != 1 {
		t.Fatalf("winner stats = %+v", stats)
	}
	if stats.Rating != domain.DefaultRating+16 {
		t.Fatalf("winner rating = %d, want %d", stats.Rating, domain.DefaultRating+16)
	}
}

// nullChat drops all outbound traffic; the engine must not depend on
// delivery.
type nullChat struct{}

func (nullChat) SendMessage(ctx context.Context, chatID int64, text string) (int64, error) {
	return 1, nil
}

func (nullChat) EditMessage(ctx context.Context, chatID, messageID int64, text string) error {
	return nil
}

func (nullChat) SendPoll(ctx context.Context, chatID int64, question, yesOption, noOption string) (string, error) {
	return uuid.NewString(), nil
}

func (nullChat) BanMember(ctx context.Context, chatID int64, playerID uuid.UUID) error { return nil }

func (nullChat) UnbanMember(ctx context.Context, chatID int64, playerID uuid.UUID) error { return nil }

func (nullChat) RevokeInviteLink(ctx context.Context, chatID int64, link string) error { return nil }

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "trivia", "POSTGRES_PASSWORD": "triviapass", "POSTGRES_DB": "triviadb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://trivia:triviapass@%s:%s/triviadb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func seedPack(t *testing.T, ctx context.Context, dsn string, pack domain.Pack) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	data, err := json.Marshal(pack)
	if err != nil {
		t.Fatalf("marshal pack: %v", err)
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO packs (id, short_name, data) VALUES (?, ?, ?::jsonb)
		 ON CONFLICT (short_name) DO UPDATE SET data=EXCLUDED.data`,
		pack.ID, pack.ShortName, string(data))
	if err != nil {
		t.Fatalf("insert pack: %v", err)
	}
}

func samplePack() domain.Pack {
	return domain.Pack{
		ID:        uuid.MustParse("b0c7f7a1-93d4-4df5-a0dd-5c9f4f9f2a11"),
		ShortName: "capitals",
		Name:      "Capitals",
		Themes: []domain.Theme{
			{
				Name: "Europe",
				Questions: []domain.Question{
					{Text: "Capital of France?", Answer: "Paris", Cost: 10},
				},
			},
		},
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}

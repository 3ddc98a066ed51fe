package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"trivia-game-service/internal/config"
	"trivia-game-service/internal/domain"
	"trivia-game-service/internal/game"
	"trivia-game-service/internal/infra/memory"
	pgloader "trivia-game-service/internal/infra/postgres"
	redisinfra "trivia-game-service/internal/infra/redis"
	transport "trivia-game-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the game server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	log, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer log.Sync()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var loader memory.PackLoader = memory.NewStaticPackLoader(samplePacks())
	if pool != nil {
		loader = pgloader.NewPackLoader(pool)
	}

	packTTL := config.Duration(cfg.Pack.TTL, 10*time.Minute)
	var packs game.PackRepository
	if redisClient != nil {
		packs = redisinfra.NewPackRepository(redisClient, loader, packTTL)
	} else {
		packs = memory.NewPackRepository(loader, packTTL)
	}

	var store game.Store
	if redisClient != nil {
		store = redisinfra.NewGameStore(redisClient)
	} else {
		store = memory.NewGameStore()
	}

	gameCfg := gameConfig(cfg)
	hub := transport.NewHub(log)
	manager := game.NewManager(store, packs, hub, gameCfg, log)
	wsHandler := transport.NewWSHandler(manager, store, hub, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info("starting trivia game service", zap.String("port", finalPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down")
	case <-ctx.Done():
		log.Info("context canceled, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	manager.FinalizeAll(shutdownCtx, true)
	return server.Shutdown(shutdownCtx)
}

func gameConfig(cfg config.Config) game.Config {
	def := game.DefaultConfig()
	return game.Config{
		PackInfoDelay:    config.Duration(cfg.Game.PackInfoDelay, def.PackInfoDelay),
		ThemeIntroDelay:  config.Duration(cfg.Game.ThemeIntroDelay, def.ThemeIntroDelay),
		AttentionDelay:   config.Duration(cfg.Game.AttentionDelay, def.AttentionDelay),
		AnswerWait:       config.Duration(cfg.Game.AnswerWait, def.AnswerWait),
		FloorHold:        config.Duration(cfg.Game.FloorHold, def.FloorHold),
		CorrectionWindow: config.Duration(cfg.Game.CorrectionWindow, def.CorrectionWindow),
		NoOutcomeDelay:   config.Duration(cfg.Game.NoOutcomeDelay, def.NoOutcomeDelay),

		DisputeWindow:         config.Duration(cfg.Game.DisputeWindow, def.DisputeWindow),
		ClaimExtension:        config.Duration(cfg.Game.ClaimExtension, def.ClaimExtension),
		SubmitExtension:       config.Duration(cfg.Game.SubmitExtension, def.SubmitExtension),
		FloorTimeoutExtension: config.Duration(cfg.Game.FloorTimeoutExtension, def.FloorTimeoutExtension),
		CorrectionExtension:   config.Duration(cfg.Game.CorrectionExtension, def.CorrectionExtension),

		TeardownCooldown: config.Duration(cfg.Game.TeardownCooldown, def.TeardownCooldown),
		AbortCooldown:    config.Duration(cfg.Game.AbortCooldown, def.AbortCooldown),
		PauseAllowance:   cfg.Game.PauseAllowance,
		RevealThreshold:  cfg.Game.RevealThreshold,
		RevealCadence:    config.Duration(cfg.Game.RevealCadence, def.RevealCadence),
	}
}

// samplePacks provides minimal pack data for running without a database.
func samplePacks() map[string]domain.Pack {
	return map[string]domain.Pack{
		"demo": {
			ID:        uuid.MustParse("6f9619ff-8b86-4d01-b42d-00cf4fc964ff"),
			ShortName: "demo",
			Name:      "Demo pack",
			Info:      "A tiny pack for smoke testing.",
			Themes: []domain.Theme{
				{
					Name: "Capitals",
					Questions: []domain.Question{
						{Text: "Capital of France?", Answer: "Paris"},
						{Text: "Capital of Japan?", Answer: "Tokyo"},
					},
				},
			},
		},
	}
}

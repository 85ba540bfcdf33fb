package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"curare-challenge/internal/app"
	"curare-challenge/internal/catalog"
	"curare-challenge/internal/config"
	"curare-challenge/internal/infra/memory"
	pgstore "curare-challenge/internal/infra/postgres"
	redisstore "curare-challenge/internal/infra/redis"
	transport "curare-challenge/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the challenge server",
		Long:  "Start the challenge server. With Postgres configured, migrations run first and the built-in challenge is stored if missing.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
		if err := ensureBuiltInChallenge(ctx, cfg); err != nil {
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
	challengeID := cfg.Challenge.ID
	if challengeID == "" {
		challengeID = catalog.ChallengeID
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}
	sessionTTL := config.TTLDuration(cfg.Redis.TTL, 2*time.Hour)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var loader memory.ChallengeLoader = memory.NewStaticChallengeLoader(catalog.Definition())
	var recorder app.ResultRecorder = memory.NewResultStore()
	if pool != nil {
		loader = pgstore.NewChallengeLoader(pool)
		recorder = pgstore.NewResultStore(pool)
	}

	challengeTTL := config.TTLDuration(cfg.Challenge.TTL, 10*time.Minute)
	var challenges app.ChallengeRepository
	if redisClient != nil {
		challenges = redisstore.NewChallengeRepository(redisClient, loader, challengeTTL)
	} else {
		challenges = memory.NewChallengeRepository(loader, challengeTTL)
	}

	var store app.SessionRepository
	if redisClient != nil {
		store = redisstore.NewSessionStore(redisClient, sessionTTL)
	} else {
		store = memory.NewSessionStore()
	}

	// Fail fast when the configured challenge is missing or malformed.
	if _, err := challenges.GetChallenge(ctx, challengeID); err != nil {
		return err
	}

	service := app.NewGameService(store, challenges, recorder)
	wsHandler := transport.NewWSHandler(service, challengeID)
	stepHandler := transport.NewStepHandler(service, challengeID)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	mux.HandleFunc("/api/step", stepHandler.ServeStep)
	mux.HandleFunc("/api/results", stepHandler.ServeResults)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting challenge service on :%s (challenge %s)", finalPort, challengeID)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

package integration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"curare-challenge/internal/app"
	"curare-challenge/internal/catalog"
	"curare-challenge/internal/domain"
	pgstore "curare-challenge/internal/infra/postgres"
	pgmigrations "curare-challenge/internal/infra/postgres/migrations"
	infraredis "curare-challenge/internal/infra/redis"
	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

func TestPlaythroughEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	seedChallenge(t, ctx, pgURL, catalog.Definition())

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	results := pgstore.NewResultStore(pool)
	challenges := infraredis.NewChallengeRepository(redisClient, pgstore.NewChallengeLoader(pool), 5*time.Minute)
	sessions := infraredis.NewSessionStore(redisClient, 5*time.Minute)
	service := app.NewGameService(sessions, challenges, results)

	session, err := service.Start(ctx, catalog.ChallengeID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	ch := catalog.Challenge()
	ts := int64(0)
	for session.Step < ch.LastStep() {
		ts += 20000
		act := domain.Action{Advance: true, Timestamp: ts, Effort: intPtr(1)}
		if step, _ := ch.StepAt(session.Step); step.Phase == domain.PhaseQuestion {
			q := ch.Questions[step.Question]
			if q.Expected.Kind == domain.KindSingle {
				act.Release = q.Expected.Value
			}
		}
		session, err = service.Advance(ctx, session.ID, "", act)
		if err != nil {
			t.Fatalf("advance at step %d: %v", session.Step, err)
		}
	}

	archived, err := results.GetResults(ctx, session.ID)
	if err != nil {
		t.Fatalf("load archived results: %v", err)
	}
	if len(archived.Matches) != 2 {
		t.Fatalf("expected two matches archived, got %d", len(archived.Matches))
	}
	for _, m := range archived.Matches {
		// Q1, Q2 and Q4 answered right; Q3 scores 0, Q5 0.4 and Q6 0 with nothing selected.
		want := []float64{1, 1, 0, 1, 0.4, 0}
		for i, got := range m.Scores {
			if got != want[i] {
				t.Fatalf("match %d question %d: score %v, want %v", m.Match, i+1, got, want[i])
			}
		}
	}

	if live, err := service.Results(ctx, session.ID); err != nil || len(live.Matches) != 2 {
		t.Fatalf("results lookup failed: %v", err)
	}

	if _, err := pgstore.NewChallengeLoader(pool).LoadChallenge(ctx, "missing"); err != domain.ErrChallengeNotFound {
		t.Fatalf("expected missing challenge error, got %v", err)
	}
}

func intPtr(v int) *int {
	return &v
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "curare", "POSTGRES_PASSWORD": "curarepass", "POSTGRES_DB": "curaredb"},
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
	dsn := fmt.Sprintf("postgres://curare:curarepass@%s:%s/curaredb?sslmode=disable", host, port.Port())
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

func seedChallenge(t *testing.T, ctx context.Context, dsn string, def domain.Definition) {
	t.Helper()
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
	inserted, err := pgstore.EnsureChallenge(ctx, db, def)
	if err != nil {
		t.Fatalf("ensure challenge: %v", err)
	}
	if !inserted {
		t.Fatalf("expected challenge inserted into an empty table")
	}
	if inserted, err = pgstore.EnsureChallenge(ctx, db, def); err != nil || inserted {
		t.Fatalf("expected existing challenge left alone, inserted=%v err=%v", inserted, err)
	}
	if err := pgstore.SeedChallenge(ctx, db, def); err != nil {
		t.Fatalf("seed challenge: %v", err)
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

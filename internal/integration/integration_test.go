package integration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"quizmaster-service/internal/app"
	"quizmaster-service/internal/domain"
	pgstore "quizmaster-service/internal/infra/postgres"
	pgmigrations "quizmaster-service/internal/infra/postgres/migrations"
	redisstore "quizmaster-service/internal/infra/redis"
)

func TestQuizCompletionEndToEndPostgres(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()

	applyMigrations(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	runCompletionFlow(t, ctx, pgstore.NewProfileStore(pool))
}

func TestQuizCompletionEndToEndRedis(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	client, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}

	runCompletionFlow(t, ctx, redisstore.NewProfileStore(client))
}

// runCompletionFlow exercises the full login → play → complete → rank
// path against a real backing store.
func runCompletionFlow(t *testing.T, ctx context.Context, store app.ProfileStore) {
	t.Helper()
	service := app.NewProfileService(store)

	profile, err := service.Login(ctx, "Alice", "alice@example.com")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	engine := app.NewEngine()
	questions := app.FallbackQuestions("general", domain.DifficultyMedium, 2)
	settings := domain.QuizSettings{
		Category:        "general",
		Difficulty:      domain.DifficultyMedium,
		QuestionCount:   2,
		TimePerQuestion: 30,
	}
	if err := engine.Start(questions, settings); err != nil {
		t.Fatalf("start: %v", err)
	}
	engine.SubmitAnswer("Paris", 5)
	engine.NextQuestion()
	engine.SubmitAnswer("London", 3)
	engine.NextQuestion()
	if engine.Status() != domain.StatusFinished {
		t.Fatalf("expected Finished, got %s", engine.Status())
	}

	updated, err := service.CompleteQuiz(ctx, engine.Session())
	if err != nil {
		t.Fatalf("complete quiz: %v", err)
	}
	if updated == nil || updated.TotalScore != 150 || updated.GamesPlayed != 1 {
		t.Fatalf("expected persisted totals, got %+v", updated)
	}

	reloaded, err := store.FindProfileByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if *reloaded != *updated {
		t.Fatalf("round trip mismatch: wrote %+v, read %+v", *updated, *reloaded)
	}
	if reloaded.ID != profile.ID {
		t.Fatalf("profile ID changed across writes: %s vs %s", profile.ID, reloaded.ID)
	}

	entries, err := store.LoadLeaderboard(ctx)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(entries) != 1 || entries[0].Rank != 1 || entries[0].Score != 150 {
		t.Fatalf("expected ranked entry with score 150, got %+v", entries)
	}
}

func applyMigrations(t *testing.T, ctx context.Context, dsn string) {
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
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
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
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
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

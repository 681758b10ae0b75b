package integration

import (
	"context"
	"database/sql"
	"errors"
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

	"smart-learning-portal/internal/app"
	"smart-learning-portal/internal/domain"
	"smart-learning-portal/internal/infra/postgres"
	pgmigrations "smart-learning-portal/internal/infra/postgres/migrations"
	infraredis "smart-learning-portal/internal/infra/redis"
)

func TestAttemptEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	runMigrations(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()
	store := postgres.NewStore(pool)

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}

	accounts := app.NewAccountService(store.Users())
	authoring := app.NewAuthoringService(store.Quizzes())
	quizSource := infraredis.NewQuizCache(redisClient, store.Quizzes(), 5*time.Minute)
	sessions := infraredis.NewSessionStore(redisClient, time.Hour)
	attempts := app.NewAttemptService(sessions, quizSource, store.Attempts())
	boards := app.NewLeaderboardService(store.Attempts())

	admin, err := accounts.SignUp(ctx, "Dana", "dana@example.com", "secret", domain.RoleAdmin, "ADM-1")
	if err != nil {
		t.Fatalf("admin signup: %v", err)
	}
	alice, err := accounts.SignUp(ctx, "Alice", "alice@example.com", "secret", domain.RoleStudent, "USN-1")
	if err != nil {
		t.Fatalf("student signup: %v", err)
	}
	bob, err := accounts.SignUp(ctx, "Bob", "bob@example.com", "secret", domain.RoleStudent, "USN-2")
	if err != nil {
		t.Fatalf("student signup: %v", err)
	}

	quiz, err := authoring.PublishQuiz(ctx, admin, []domain.Question{
		{Text: "Pick b", Options: []string{"a", "b", "c", "d"}, CorrectIndex: 1},
		{Text: "Pick a", Options: []string{"a", "b", "c", "d"}, CorrectIndex: 0},
	}, 5)
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	// Alice answers both correctly, Bob only the first.
	aliceSession, err := attempts.Start(ctx, alice)
	if err != nil {
		t.Fatalf("alice start: %v", err)
	}
	for q, opt := range map[int]int{0: 1, 1: 0} {
		if err := aliceSession.Select(q, opt); err != nil {
			t.Fatalf("alice select: %v", err)
		}
	}
	aliceAttempt, err := aliceSession.Submit(ctx)
	if err != nil {
		t.Fatalf("alice submit: %v", err)
	}
	if aliceAttempt.Score != 2 || aliceAttempt.QuizID != quiz.ID {
		t.Fatalf("unexpected alice attempt %+v", aliceAttempt)
	}

	bobSession, err := attempts.Start(ctx, bob)
	if err != nil {
		t.Fatalf("bob start: %v", err)
	}
	if err := bobSession.Select(0, 1); err != nil {
		t.Fatalf("bob select: %v", err)
	}
	if _, err := bobSession.Submit(ctx); err != nil {
		t.Fatalf("bob submit: %v", err)
	}

	attempts.Leave(alice.ID)
	attempts.Leave(bob.ID)

	// The one-attempt rule holds across a fresh session store.
	if _, err := attempts.Start(ctx, alice); !errors.Is(err, domain.ErrAlreadyAttempted) {
		t.Fatalf("expected ErrAlreadyAttempted, got %v", err)
	}

	board, err := boards.Leaderboard(ctx, "")
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(board.Entries) != 2 {
		t.Fatalf("expected two entries, got %+v", board.Entries)
	}
	if board.Entries[0].StudentID != alice.ID || board.Entries[0].Score != 2 || board.Entries[0].Rank != 1 {
		t.Fatalf("expected alice leading, got %+v", board.Entries[0])
	}
	if board.Entries[1].StudentID != bob.ID || board.Entries[1].Score != 1 {
		t.Fatalf("expected bob second, got %+v", board.Entries[1])
	}
}

func TestPublishRetiresPredecessorEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	runMigrations(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()
	store := postgres.NewStore(pool)

	accounts := app.NewAccountService(store.Users())
	authoring := app.NewAuthoringService(store.Quizzes())

	admin, err := accounts.SignUp(ctx, "Dana", "dana@example.com", "secret", domain.RoleAdmin, "ADM-1")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	question := []domain.Question{{Text: "Pick a", Options: []string{"a", "b", "c", "d"}, CorrectIndex: 0}}
	first, err := authoring.PublishQuiz(ctx, admin, question, 5)
	if err != nil {
		t.Fatalf("publish first: %v", err)
	}
	second, err := authoring.PublishQuiz(ctx, admin, question, 10)
	if err != nil {
		t.Fatalf("publish second: %v", err)
	}

	published, err := store.Published(ctx)
	if err != nil {
		t.Fatalf("published: %v", err)
	}
	if published.ID != second.ID {
		t.Fatalf("expected %s live, got %s (first was %s)", second.ID, published.ID, first.ID)
	}
}

func runMigrations(t *testing.T, ctx context.Context, dsn string) {
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
		Env:          map[string]string{"POSTGRES_USER": "portal", "POSTGRES_PASSWORD": "portalpass", "POSTGRES_DB": "portaldb"},
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
	dsn := fmt.Sprintf("postgres://portal:portalpass@%s:%s/portaldb?sslmode=disable", host, port.Port())
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

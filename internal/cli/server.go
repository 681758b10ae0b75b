package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"smart-learning-portal/internal/app"
	"smart-learning-portal/internal/config"
	"smart-learning-portal/internal/infra/memory"
	"smart-learning-portal/internal/infra/postgres"
	redisinfra "smart-learning-portal/internal/infra/redis"
	transport "smart-learning-portal/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the portal server",
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
	sessionTTL := config.TTLDuration(cfg.Redis.TTL, 2*time.Hour)
	quizTTL := config.TTLDuration(cfg.Quiz.CacheTTL, 30*time.Second)

	// Record stores: postgres when configured, in-memory otherwise.
	var (
		users     app.UserStore
		materials app.MaterialStore
		quizzes   app.QuizStore
		attempts  app.AttemptStore
		projects  app.ProjectStore
	)
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		store := postgres.NewStore(pool)
		users, materials, quizzes = store.Users(), store.Materials(), store.Quizzes()
		attempts, projects = store.Attempts(), store.Projects()
	} else {
		users = memory.NewUserStore()
		materials = memory.NewMaterialStore()
		quizzes = memory.NewQuizStore()
		attempts = memory.NewAttemptStore()
		projects = memory.NewProjectStore()
	}

	var quizSource app.PublishedQuizSource
	if redisClient != nil {
		quizSource = redisinfra.NewQuizCache(redisClient, quizzes, quizTTL)
	} else {
		quizSource = memory.NewQuizCache(quizzes, quizTTL)
	}

	var sessions app.SessionStore
	if redisClient != nil {
		sessions = redisinfra.NewSessionStore(redisClient, sessionTTL)
	} else {
		sessions = memory.NewSessionStore()
	}

	accounts := app.NewAccountService(users)
	materialSvc := app.NewMaterialService(materials)
	authoring := app.NewAuthoringService(quizzes)
	projectSvc := app.NewProjectService(projects, app.LogNotifier{})
	attemptSvc := app.NewAttemptService(sessions, quizSource, attempts)
	boards := app.NewLeaderboardService(attempts)

	wsHandler := transport.NewWSHandler(attemptSvc, boards, accounts)
	apiHandler := transport.NewAPIHandler(accounts, materialSvc, authoring, projectSvc, boards, quizSource)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws/attempt", wsHandler.ServeWS)
	apiHandler.Register(mux)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting portal on :%s", finalPort)
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

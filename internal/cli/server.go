package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"exam-scoring-service/internal/app"
	"exam-scoring-service/internal/config"
	"exam-scoring-service/internal/domain"
	"exam-scoring-service/internal/infra/memory"
	pgstore "exam-scoring-service/internal/infra/postgres"
	rediscache "exam-scoring-service/internal/infra/redis"
	"exam-scoring-service/internal/logger"
	transport "exam-scoring-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the scoring server",
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
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)

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
		defer redisClient.Close()
	}

	var loader memory.ExamLoader = memory.NewStaticExamLoader(sampleExams())
	var attempts app.AttemptStore = memory.NewAttemptStore()
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		loader = pgstore.NewExamLoader(pool)

		db := openBun(cfg.Postgres.URL)
		defer db.Close()
		attempts = pgstore.NewAttemptStore(db)
	}

	examTTL := config.TTLDuration(cfg.Exam.TTL, 10*time.Minute)
	var exams app.ExamRepository
	var cache app.ResultCache
	if redisClient != nil {
		exams = rediscache.NewExamRepository(redisClient, loader, examTTL)
		cache = rediscache.NewResultCache(redisClient, config.TTLDuration(cfg.Results.TTL, time.Minute))
	} else {
		exams = memory.NewExamRepository(loader, examTTL)
	}

	service := app.NewExamService(attempts, exams, cache)
	handler := transport.NewHandler(service)
	wsHandler := transport.NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	handler.Register(mux)
	mux.HandleFunc("GET /exams/{examID}/results/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("port", finalPort).Bool("postgres", cfg.Postgres.URL != "").
			Bool("redis", redisClient != nil).Msg("starting scoring service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("failed to start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info().Msg("shutting down server...")
	case <-ctx.Done():
		log.Info().Msg("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleExams provides a demo exam when no database is configured.
func sampleExams() map[string]domain.Exam {
	return map[string]domain.Exam{
		"exam-1": {
			ID:       "exam-1",
			Title:    "Demo assessment",
			ExamDate: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
			Mode:     domain.ParticipationRegistered,
			Sections: []domain.Section{
				{
					ID:     "math",
					ExamID: "exam-1",
					Title:  "Mathematics",
					Questions: []domain.Question{
						{
							ID:              "q1",
							SectionID:       "math",
							FullMarks:       decimal.NewFromInt(5),
							NegativeMarking: true,
							NegativeMark:    decimal.NewFromInt(1),
							Kind: domain.Objective{Options: []domain.Option{
								{ID: "o1", Text: "3", Correct: false},
								{ID: "o2", Text: "4", Correct: true},
								{ID: "o3", Text: "5", Correct: false},
							}},
						},
					},
				},
				{
					ID:     "writing",
					ExamID: "exam-1",
					Title:  "Writing",
					Questions: []domain.Question{
						{ID: "q2", SectionID: "writing", FullMarks: decimal.NewFromInt(10), Kind: domain.Subjective{}},
					},
				},
			},
		},
	}
}

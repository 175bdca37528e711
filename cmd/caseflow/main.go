package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/AnikaLegal/caseflow/internal/audit"
	"github.com/AnikaLegal/caseflow/internal/config"
	"github.com/AnikaLegal/caseflow/internal/database"
	"github.com/AnikaLegal/caseflow/internal/dispatch"
	"github.com/AnikaLegal/caseflow/internal/domain"
	"github.com/AnikaLegal/caseflow/internal/handler"
	"github.com/AnikaLegal/caseflow/internal/lifecycle"
	"github.com/AnikaLegal/caseflow/internal/logger"
	"github.com/AnikaLegal/caseflow/internal/metrics"
	"github.com/AnikaLegal/caseflow/internal/notify"
	"github.com/AnikaLegal/caseflow/internal/repository"
	"github.com/AnikaLegal/caseflow/internal/stream"
	"github.com/AnikaLegal/caseflow/internal/trigger"
)

func main() {
	app := &cli.App{
		Name:  "caseflow",
		Usage: "Case-event-driven task lifecycle engine",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:     "database-url",
				Aliases:  []string{"d"},
				Value:    config.DefaultDatabaseURL,
				Usage:    "PostgreSQL database URL",
				EnvVars:  []string{"DATABASE_URL"},
				Required: true,
			},
		},
		Before: func(c *cli.Context) error {
			logger.Setup(logger.ParseLevel(c.String("log-level")))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Run the consumer pipeline and the query API",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "port",
						Aliases: []string{"p"},
						Value:   config.DefaultPort,
						Usage:   "HTTP server port",
						EnvVars: []string{"PORT"},
					},
					&cli.StringFlag{
						Name:    "kafka-brokers",
						Value:   config.DefaultKafkaBrokers,
						Usage:   "Comma-separated Kafka broker list",
						EnvVars: []string{"KAFKA_BROKERS"},
					},
					&cli.StringFlag{
						Name:    "kafka-group",
						Value:   config.DefaultKafkaGroup,
						Usage:   "Kafka consumer group",
						EnvVars: []string{"KAFKA_GROUP"},
					},
					&cli.StringFlag{
						Name:    "case-mutation-topic",
						Value:   config.DefaultCaseMutationTopic,
						Usage:   "Topic carrying case snapshots before and after a save",
						EnvVars: []string{"CASE_MUTATION_TOPIC"},
					},
					&cli.StringFlag{
						Name:    "change-record-topic",
						Value:   config.DefaultChangeRecordTopic,
						Usage:   "Topic carrying task and request field changes",
						EnvVars: []string{"CHANGE_RECORD_TOPIC"},
					},
					&cli.StringFlag{
						Name:    "coordinator-id",
						Usage:   "Account that receives coordinator tasks",
						EnvVars: []string{"COORDINATOR_ID"},
					},
					&cli.IntFlag{
						Name:    "dispatch-shards",
						Value:   config.DefaultDispatchShards,
						Usage:   "Number of ordered dispatch workers",
						EnvVars: []string{"DISPATCH_SHARDS"},
					},
				},
				Action: runServe,
			},
			{
				Name:   "migrate",
				Usage:  "Apply pending database migrations and exit",
				Action: runMigrate,
			},
			{
				Name:  "seed-triggers",
				Usage: "Load trigger configuration from a JSON file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Path to the trigger JSON file",
						Required: true,
					},
				},
				Action: runSeedTriggers,
			},
		},
		Action: runServe,
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func runServe(c *cli.Context) error {
	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	port := c.String("port")
	if port == "" {
		port = config.DefaultPort
	}

	db, err := database.New(ctx, c.String("database-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := database.RunMigrations(ctx, db.Pool()); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	pool := db.Pool()
	m := metrics.New()

	txr := repository.NewTxRunner(pool)
	tasks := repository.NewTaskRepository(pool)
	comments := repository.NewTaskCommentRepository(pool)
	events := repository.NewTaskEventRepository(pool)
	triggers := repository.NewTriggerRepository(pool)
	requests := repository.NewTaskRequestRepository(pool)
	journal := repository.NewCaseEventRepository(pool)
	users := repository.NewUserRepository(pool)

	resolver := trigger.NewRoleResolver(c.String("coordinator-id"), users)
	matcher := trigger.NewMatcher(triggers, resolver, m)
	controller := lifecycle.NewController(txr, tasks, comments, journal, users, matcher, notify.NewLogNotifier(), m)
	synthesizer := audit.NewSynthesizer(txr, tasks, events, requests, users, m)

	dispatcher := dispatch.New(c.Int("dispatch-shards"), config.DefaultDispatchBuffer, slog.Default())
	dispatcher.Start()
	defer dispatcher.Stop()

	router := stream.NewRouter(slog.Default())
	router.Register(c.String("case-mutation-topic"), stream.NewCaseMutationHandler(controller, slog.Default()))
	router.Register(c.String("change-record-topic"), stream.NewChangeRecordHandler(synthesizer, slog.Default()))

	consumer, err := stream.NewConsumer(
		strings.Split(c.String("kafka-brokers"), ","),
		c.String("kafka-group"),
		router,
		dispatcher,
		m,
		slog.Default(),
	)
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}
	defer consumer.Close()

	h := handler.New(pool, tasks, events, comments)

	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErr := make(chan error, 1)
	consumerErr := make(chan error, 1)
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("starting server", "server_addr", "http://localhost:"+port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	go func() {
		if err := consumer.Run(ctx); err != nil && err != context.Canceled {
			consumerErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case err := <-consumerErr:
		return fmt.Errorf("consumer error: %w", err)
	case <-done:
		slog.Info("shutting down")
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("stopped")
	return nil
}

func runMigrate(c *cli.Context) error {
	ctx := c.Context

	db, err := database.New(ctx, c.String("database-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := database.RunMigrations(ctx, db.Pool()); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

func runSeedTriggers(c *cli.Context) error {
	ctx := c.Context

	db, err := database.New(ctx, c.String("database-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := database.RunMigrations(ctx, db.Pool()); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	data, err := os.ReadFile(c.String("file"))
	if err != nil {
		return fmt.Errorf("read trigger file: %w", err)
	}

	var seeds []seedTrigger
	if err := json.Unmarshal(data, &seeds); err != nil {
		return fmt.Errorf("parse trigger file: %w", err)
	}

	now := time.Now()
	repo := repository.NewTriggerRepository(db.Pool())
	for _, seed := range seeds {
		t := seed.toDomain(now)
		if err := repo.Save(ctx, t); err != nil {
			return fmt.Errorf("save trigger %s: %w", t.ID, err)
		}
		slog.Info("trigger seeded", "trigger_id", t.ID, "event_type", t.EventType, "role", t.Role)
	}

	slog.Info("trigger seeding completed", "count", len(seeds))
	return nil
}

// seedTrigger is the JSON shape of one entry in a trigger seed file.
type seedTrigger struct {
	ID         string         `json:"id"`
	Topic      string         `json:"topic"`
	EventType  string         `json:"event_type"`
	EventStage *string        `json:"event_stage"`
	Role       string         `json:"role"`
	IsActive   *bool          `json:"is_active"`
	Templates  []seedTemplate `json:"templates"`
}

type seedTemplate struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	DueInDays        int    `json:"due_in_days"`
	IsUrgent         bool   `json:"is_urgent"`
	RequiresApproval bool   `json:"requires_approval"`
}

func (s seedTrigger) toDomain(now time.Time) *domain.Trigger {
	t := &domain.Trigger{
		ID:        s.ID,
		Topic:     domain.CaseTopic(s.Topic),
		EventType: domain.CaseEventType(s.EventType),
		Role:      domain.CaseRole(s.Role),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if s.EventStage != nil {
		stage := domain.CaseStage(*s.EventStage)
		t.EventStage = &stage
	}
	if s.IsActive != nil {
		t.IsActive = *s.IsActive
	}
	for i, tpl := range s.Templates {
		t.Templates = append(t.Templates, domain.TaskTemplate{
			ID:               tpl.ID,
			TriggerID:        s.ID,
			Name:             tpl.Name,
			Description:      tpl.Description,
			DueInDays:        tpl.DueInDays,
			IsUrgent:         tpl.IsUrgent,
			RequiresApproval: tpl.RequiresApproval,
			Position:         i,
		})
	}
	return t
}

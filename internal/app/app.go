package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/RubachokBoss/knowledge-market/internal/config"
	"github.com/RubachokBoss/knowledge-market/internal/database"
	"github.com/RubachokBoss/knowledge-market/internal/delivery/httpd"
	"github.com/RubachokBoss/knowledge-market/internal/middleware"
	"github.com/RubachokBoss/knowledge-market/internal/repository"
	"github.com/RubachokBoss/knowledge-market/internal/server"
	"github.com/RubachokBoss/knowledge-market/internal/service"
	"github.com/RubachokBoss/knowledge-market/internal/service/integration"
	"github.com/RubachokBoss/knowledge-market/internal/storage"
	"github.com/RubachokBoss/knowledge-market/pkg/accesscode"
)

type App struct {
	server    *server.Server
	logger    zerolog.Logger
	config    *config.Config
	db        *sql.DB
	publisher integration.EventPublisher
}

func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	blobs, err := storage.New(cfg.Storage, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create blob store: %w", err)
	}

	var (
		db          *sql.DB
		archiveRepo = repository.NewNopArchiveRepository()
	)
	if cfg.Archive.Enabled {
		db, err = database.NewPostgres(ctx, cfg.Archive.Database, log)
		if err != nil {
			return nil, err
		}
		archiveRepo = repository.NewArchiveRepository(db, log)
	}

	publisher := integration.NewLogPublisher(log)
	if cfg.RabbitMQ.Enabled {
		rabbit, err := integration.NewRabbitMQClient(
			cfg.RabbitMQ.URL,
			cfg.RabbitMQ.Exchange,
			cfg.RabbitMQ.RoutingKey,
			cfg.RabbitMQ.QueueName,
			log,
		)
		if err != nil {
			// events are informational; the activity runs without them
			log.Error().Err(err).Msg("Failed to create RabbitMQ client, events will only be logged")
		} else {
			publisher = rabbit
		}
	}

	store := repository.NewMarketStore(log)

	marketService := service.NewMarketService(
		store,
		archiveRepo,
		blobs,
		publisher,
		accesscode.New(cfg.Market.AccessCodePrefix, cfg.Market.AccessCodeLength),
		cfg.Market.MaxGroups,
		log,
	)
	submissionService := service.NewSubmissionService(store, blobs, publisher, cfg.Market.MaxImageSize, log)
	studentService := service.NewStudentService(store, publisher, log)

	handler := httpd.NewHandler(
		marketService,
		submissionService,
		studentService,
		cfg.Market.MaxImageSize,
		log,
	)

	router := chi.NewRouter()
	handler.RegisterRoutes(router)

	srv := server.NewServer(cfg.Server, router, log)
	srv.SetupMiddleware(
		middleware.NewCORS(cfg.CORS),
		middleware.RequestLogger(log),
		middleware.Recovery(log),
		middleware.Timeout(cfg.Server.RequestTimeout),
	)

	return &App{
		server:    srv,
		logger:    log,
		config:    cfg,
		db:        db,
		publisher: publisher,
	}, nil
}

// Handler exposes the fully wired HTTP handler.
func (a *App) Handler() http.Handler {
	return a.server.Handler()
}

func (a *App) Run() error {
	return a.server.Start()
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info().Msg("Shutting down knowledge market service...")

	err := a.server.Shutdown(ctx)

	if err := a.publisher.Close(); err != nil {
		a.logger.Error().Err(err).Msg("Failed to close event publisher")
	}

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close database connection")
		}
	}

	return err
}

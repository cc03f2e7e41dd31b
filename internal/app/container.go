package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kapu/career-card-go/internal/config"
	"github.com/kapu/career-card-go/internal/corpus"
	"github.com/kapu/career-card-go/internal/pipeline"
	"github.com/kapu/career-card-go/internal/server"
	"github.com/kapu/career-card-go/internal/service/ai"
	"github.com/kapu/career-card-go/internal/service/cache"
	"github.com/kapu/career-card-go/internal/service/database"
	"github.com/kapu/career-card-go/internal/service/share"
	"github.com/kapu/career-card-go/internal/synth"
)

// Container bundles assembled services for running the HTTP front end.
type Container struct {
	Config *config.Config
	Logger *zap.Logger
	Server *server.Server

	closers []func()
}

// Close tears down infrastructure connections in reverse build order.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

// Build assembles all infrastructure services and the resolution pipeline.
// All heavy-weight initialization (DB/cache/AI/corpus) happens here so the
// server stays focused on request handling.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (container *Container, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var closers []func()
	defer func() {
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		}
	}()

	// Cache and database
	cacheSvc, err := cache.NewCacheService(cache.CacheConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache service: %w", err)
	}
	closers = append(closers, func() {
		_ = cacheSvc.Close()
	})

	postgresSvc, err := database.NewPostgresService(database.PostgresConfig{
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		Database: cfg.Postgres.Database,
		SSLMode:  cfg.Postgres.SSLMode,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres service: %w", err)
	}
	closers = append(closers, func() {
		_ = postgresSvc.Close()
	})

	shareRepo := share.NewRepository(postgresSvc, logger)
	if err := shareRepo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure share schema: %w", err)
	}

	// Static corpus
	corpusTable, err := corpus.Load(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load corpus: %w", err)
	}

	// AI stack
	modelManager, err := ai.NewModelManager(ctx, ai.ModelManagerConfig{
		GeminiAPIKey:       cfg.Gemini.APIKey,
		OpenAIAPIKey:       cfg.OpenAI.APIKey,
		DefaultGeminiModel: cfg.Gemini.TextModel,
		DefaultOpenAIModel: cfg.OpenAI.Model,
		ImageModel:         cfg.Gemini.ImageModel,
		EnableFallback:     cfg.OpenAI.EnableFallback,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create model manager: %w", err)
	}

	contentSynth := synth.NewContentSynthesizer(modelManager, logger)
	imageSynth := synth.NewImageSynthesizer(modelManager, logger)

	pipe := pipeline.New(corpusTable, cacheSvc, contentSynth, imageSynth, shareRepo, logger)
	pipe.WarmCorpus(ctx)

	handlers := server.NewHandlers(pipe, shareRepo, cacheSvc.IsConnected, postgresSvc.Ping, logger)
	srv := server.NewServer(server.ServerConfig{
		Host: cfg.Server.Host,
		Port: cfg.Server.Port,
	}, handlers, logger)

	return &Container{
		Config:  cfg,
		Logger:  logger,
		Server:  srv,
		closers: closers,
	}, nil
}

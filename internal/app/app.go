// Package app wires configuration into a ready analysis service. Both the
// HTTP server and the CLI build their pipeline here.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/johnquangdev/voice-guard/internal/adapter/repository"
	"github.com/johnquangdev/voice-guard/internal/infrastructure/cache"
	"github.com/johnquangdev/voice-guard/internal/infrastructure/database"
	"github.com/johnquangdev/voice-guard/internal/infrastructure/storage"
	"github.com/johnquangdev/voice-guard/internal/usecase/analysis"
	"github.com/johnquangdev/voice-guard/internal/usecase/language"
	pkgai "github.com/johnquangdev/voice-guard/pkg/ai"
	"github.com/johnquangdev/voice-guard/pkg/audio"
	"github.com/johnquangdev/voice-guard/pkg/config"
)

// Options selects which backing services Build connects to
type Options struct {
	// WaitForModels blocks until the spoof model server answers
	WaitForModels bool
	// Persistence connects Postgres, Redis and MinIO when they are enabled
	// in configuration
	Persistence bool
}

// App is a wired analysis service plus the resources it owns
type App struct {
	Service analysis.Service
	Spoof   *pkgai.SpoofClient

	logger  *zap.Logger
	closers []func() error
}

// Close releases every connection Build opened
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && a.logger != nil {
			a.logger.Warn("failed to close resource", zap.Error(err))
		}
	}
}

// Build constructs the pipeline collaborators from cfg
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts Options) (*App, error) {
	a := &App{logger: logger}
	deps := analysis.Deps{Probes: map[string]analysis.Probe{}}

	// Models
	if logger != nil {
		logger.Info("🤖 Initializing AI components...")
	}
	decoder := audio.NewDecoder(cfg.Analysis.FFmpegPath, cfg.Spoof.SampleRate)
	spoof := pkgai.NewSpoofClient(&cfg.Spoof, decoder)
	if opts.WaitForModels {
		if err := spoof.WaitReady(ctx, logger); err != nil {
			return nil, fmt.Errorf("spoof model server: %w", err)
		}
	}
	a.Spoof = spoof
	deps.Spoof = spoof
	deps.Probes["spoof_model"] = spoof.Ping

	switch cfg.Analysis.Transcriber {
	case "whisper":
		deps.Transcriber = pkgai.NewWhisperTranscriber(&cfg.OpenAI)
	default:
		deps.Transcriber = pkgai.NewAssemblyAITranscriber(&cfg.Assembly)
	}

	groq := pkgai.NewGroqClient(&cfg.Groq)
	detector := language.NewDetector(pkgai.NewChatTranslator(groq), logger)
	deps.Language = detector
	deps.LanguageCacheSize = detector.CacheSize

	var supervised analysis.SupervisedClassifier
	weights, err := pkgai.LoadLogisticWeights(cfg.Classifier.WeightsPath)
	if err != nil {
		if logger != nil {
			logger.Warn("⚠️  Scam classifier weights unavailable, learned score disabled",
				zap.String("path", cfg.Classifier.WeightsPath),
				zap.Error(err),
			)
		}
	} else {
		embedder := pkgai.NewOpenAIEmbedder(&cfg.OpenAI, cfg.OpenAI.EmbeddingModel)
		supervised = pkgai.NewLogisticClassifier(embedder, weights)
	}

	var perplexity analysis.PerplexityModel
	if cfg.Perplexity.BaseURL != "" {
		perplexity = pkgai.NewLogprobPerplexity(&cfg.Perplexity)
	}

	deps.Scorer = analysis.NewTextScorer(
		detector,
		pkgai.NewChatClassifier(groq, cfg.Groq.ClassifierLabel),
		supervised,
		perplexity,
		cfg.Risk,
		logger,
	)

	if opts.Persistence {
		if err := a.connectPersistence(ctx, cfg, logger, &deps); err != nil {
			a.Close()
			return nil, err
		}
	}

	a.Service = analysis.NewService(deps, cfg.Risk, cfg.Analysis, logger)
	if logger != nil {
		logger.Info("✅ Analysis service initialized",
			zap.String("transcriber", cfg.Analysis.Transcriber),
			zap.Int("workers", cfg.Analysis.Workers),
			zap.Bool("history", deps.Repo != nil),
			zap.Bool("archive", deps.Archive != nil),
		)
	}
	return a, nil
}

// connectPersistence wires history, cache and archive. Redis falls back to an
// in-process cache when disabled.
func (a *App) connectPersistence(ctx context.Context, cfg *config.Config, logger *zap.Logger, deps *analysis.Deps) error {
	if cfg.Database.Enabled {
		if logger != nil {
			logger.Info("📦 Connecting to database...")
		}
		db, err := database.ConnectWithRetry(ctx, cfg, logger)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		a.closers = append(a.closers, func() error { return database.CloseDB(db) })

		if cfg.Database.AutoMigrate {
			if cfg.Server.Environment == "production" {
				return fmt.Errorf("DB_AUTO_MIGRATE is enabled in production; manage schema with cmd/migrate")
			}
			if err := database.AutoMigrate(db, logger); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
		}

		if cfg.Analysis.StoreHistory {
			deps.Repo = repository.NewAnalysisRepository(db)
		}
		deps.Probes["database"] = func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
	}

	var store cache.Store
	if cfg.Redis.Enabled {
		if logger != nil {
			logger.Info("📦 Connecting to Redis...")
		}
		client, err := cache.NewRedisClient(ctx, cfg, logger)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, client.Close)
		store = cache.NewRedisStore(client)
		deps.Probes["redis"] = func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}
	} else {
		store = cache.NewMemoryStore()
	}
	deps.Cache = cache.NewResultCache(store, logger)

	if cfg.Storage.Enabled {
		if logger != nil {
			logger.Info("📦 Connecting to object storage...")
		}
		archive, err := storage.NewMinIOClient(ctx, &cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to connect to object storage: %w", err)
		}
		deps.Archive = archive
		deps.Probes["object_storage"] = archive.Ping
	}
	return nil
}

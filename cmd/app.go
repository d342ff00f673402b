package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/hire-ranker/internal/ai"
	"github.com/spigell/hire-ranker/internal/ai/gemini"
	"github.com/spigell/hire-ranker/internal/feedback"
	"github.com/spigell/hire-ranker/internal/filtering"
	"github.com/spigell/hire-ranker/internal/logger"
	"github.com/spigell/hire-ranker/internal/matching"
	"github.com/spigell/hire-ranker/internal/scoring"
	"github.com/spigell/hire-ranker/internal/secrets"
	"github.com/spigell/hire-ranker/internal/service"
	"github.com/spigell/hire-ranker/internal/store"
)

// application is everything a command needs after startup.
type application struct {
	config  *Config
	logger  *zap.Logger
	store   store.Store
	service *service.Service
}

func (a *application) Close() {
	if a.store == nil {
		return
	}
	closeStore(a.store, a.logger)
}

func newLogger() (*zap.Logger, error) {
	l, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		return nil, fmt.Errorf("creating a logger: %w", err)
	}
	return l, nil
}

// setup reads the config and builds the oracle chain, the store, the feedback tracker and the service.
func setup(ctx context.Context) (*application, error) {
	log, err := newLogger()
	if err != nil {
		return nil, err
	}

	config, err := getConfig()
	if err != nil {
		return nil, err
	}

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(redacted(config), "", "  ")
	log.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	oracle, err := newOracle(ctx, config.Oracle, log)
	if err != nil {
		return nil, fmt.Errorf("building similarity oracle: %w", err)
	}

	st, err := openStore(ctx, config.Store, log)
	if err != nil {
		return nil, err
	}

	tracker := feedback.NewTracker(log.Named("feedback"))
	if w := config.Scoring.BaseWeights; w != nil {
		normalized, err := tracker.UpdateWeights(*w)
		if err != nil {
			closeStore(st, log)
			return nil, fmt.Errorf("scoring.base-weights: %w", err)
		}
		log.Debug("base context weights set", zap.Any("weights", normalized))
	}

	svc := service.New(st, oracle, tracker, service.Config{
		Matching: matching.Config{Parallelism: config.Scoring.Parallelism},
		Scoring:  scoring.Config{RenormalizeOverrides: config.Scoring.RenormalizeOverrides},
		Filters: filtering.Config{
			MinimumMatchScore: config.Filters.MinimumMatchScore,
			Candidates:        config.Filters.Candidates,
			ExcludeFile:       config.Filters.ExcludeFile,
		},
	}, log)

	if config.Feedback != nil && config.Feedback.Replay {
		n, err := svc.RestoreFeedback(ctx)
		if err != nil {
			closeStore(st, log)
			return nil, err
		}
		log.Debug("feedback replayed", zap.Int("records", n))
	}

	return &application{config: config, logger: log, store: st, service: svc}, nil
}

// newOracle wraps the configured provider with the pair cache and the zero-on-failure fallback.
func newOracle(ctx context.Context, cfg *OracleConfig, log *zap.Logger) (ai.Oracle, error) {
	var inner ai.Oracle

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	switch provider {
	case "", "lexical":
		inner = ai.NewLexicalOracle()
	case "gemini":
		apiKey, err := secrets.Load(secrets.Source{
			Name: "gemini api key",
			File: cfg.Gemini.APIKeyFile,
			Env:  "GEMINI_API_KEY",
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set oracle.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
		}

		embedLogger := log.With(
			zap.String(logger.FieldOracle, "gemini"),
			zap.String("model", cfg.Gemini.Model),
			zap.Int("ai_retry_attempts", cfg.Gemini.MaxRetries),
		)

		embedder, err := gemini.NewEmbedder(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries, cfg.Gemini.MaxLogLength, embedLogger)
		if err != nil {
			return nil, err
		}
		inner = gemini.NewOracle(embedder)
	default:
		return nil, fmt.Errorf("unsupported oracle provider: %s", cfg.Provider)
	}

	if cfg.Cache {
		inner = ai.NewCachedOracle(inner)
	}

	log.Info("similarity oracle ready", zap.String(logger.FieldOracle, ai.NameOf(inner)), zap.Bool("cache", cfg.Cache))

	return ai.NewFallbackOracle(inner, cfg.Timeout, log.Named("oracle")), nil
}

// storeDriver resolves the configured driver the same way store.Open does. Empty means memory.
func storeDriver(cfg *StoreConfig) string {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" {
		return store.DriverMemory
	}
	return driver
}

func closeStore(st store.Store, log *zap.Logger) {
	if err := st.Close(); err != nil {
		log.Warn("closing store", zap.Error(err))
	}
}

func openStore(ctx context.Context, cfg *StoreConfig, log *zap.Logger) (store.Store, error) {
	driver := storeDriver(cfg)
	storeCfg := store.Config{
		Driver:  driver,
		Migrate: cfg.Migrate,
		Options: store.Options{
			MaxOpenConns:    cfg.MaxOpenConns,
			MaxIdleConns:    cfg.MaxIdleConns,
			ConnMaxLifetime: cfg.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.ConnMaxIdleTime,
			PingTimeout:     cfg.PingTimeout,
		},
	}

	if driver == store.DriverPostgres {
		url, err := resolveDatabaseURL(cfg)
		if err != nil {
			return nil, err
		}
		storeCfg.DatabaseURL = url
	}

	st, err := store.Open(ctx, storeCfg, log.Named("store"))
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", driver, err)
	}

	// The memory store starts empty, so it is seeded from the dataset on every run.
	if driver == store.DriverMemory && cfg.Dataset != "" {
		if err := seedDataset(ctx, st, cfg.Dataset, log); err != nil {
			closeStore(st, log)
			return nil, err
		}
	}

	return st, nil
}

func resolveDatabaseURL(cfg *StoreConfig) (string, error) {
	url, err := secrets.Load(secrets.Source{
		Name:  "database url",
		File:  cfg.DatabaseURLFile,
		Value: cfg.DatabaseURL,
	})
	if errors.Is(err, secrets.ErrNotConfigured) {
		return "", fmt.Errorf("%w (set store.database-url, store.database-url-file or HIRE_RANKER_DATABASE_URL)", err)
	}
	return url, err
}

func seedDataset(ctx context.Context, st store.Store, path string, log *zap.Logger) error {
	ds, err := store.LoadDataset(path)
	if err != nil {
		return err
	}
	if err := store.Seed(ctx, st, ds); err != nil {
		return fmt.Errorf("seeding dataset %q: %w", path, err)
	}
	log.Info("dataset loaded",
		zap.String("file", path),
		zap.Int("candidates", len(ds.Candidates)),
		zap.Int("jobs", len(ds.Jobs)),
		zap.Int("history", len(ds.History)),
	)
	return nil
}

// redacted returns a copy of the config that is safe to log.
func redacted(cfg *Config) *Config {
	out := *cfg
	if cfg.Store != nil && cfg.Store.DatabaseURL != "" {
		s := *cfg.Store
		s.DatabaseURL = "***"
		out.Store = &s
	}
	return &out
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Package main implements the researchkit CLI: the single operator
// surface over the strategy research pipeline (ingest, verify, validate,
// learn, synthesize, list, show, status, approve).
package main

import (
	"fmt"
	"path/filepath"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/extremevalue/research-kit/internal/config"
	"github.com/extremevalue/research-kit/pkg/dataregistry"
	"github.com/extremevalue/research-kit/pkg/llm"
	"github.com/extremevalue/research-kit/pkg/metrics"
	"github.com/extremevalue/research-kit/pkg/notify"
	"github.com/extremevalue/research-kit/pkg/persona"
	"github.com/extremevalue/research-kit/pkg/proposal"
	"github.com/extremevalue/research-kit/pkg/record"
	"github.com/extremevalue/research-kit/pkg/resilience"
	"github.com/extremevalue/research-kit/pkg/shared/logging"
	"github.com/extremevalue/research-kit/pkg/similarity"
	"github.com/extremevalue/research-kit/pkg/verify"
)

// app bundles every long-lived collaborator a command needs, built once
// per invocation from the workspace's research-kit.yaml.
type app struct {
	cfg       *config.Config
	store     *record.Store
	logger    *zap.Logger
	metrics   *metrics.Metrics
	provider  llm.Provider
	similarity similarity.Index
	verify    *verify.Engine
	personas  *persona.Orchestrator
	proposals *proposal.Queue
	notifier  notify.Notifier
}

// newApp loads cfgPath and wires every collaborator a subcommand might
// need. Commands that don't use a given collaborator simply never touch it.
func newApp(cfgPath string) (*app, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}

	store, err := record.Open(filepath.Join(cfg.WorkspaceRoot, ".data"))
	if err != nil {
		return nil, err
	}

	provider, err := llm.NewProvider(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("building llm provider: %w", err)
	}

	simIndex, err := buildSimilarityIndex(cfg.Similarity)
	if err != nil {
		return nil, err
	}

	notifier, err := notify.New(cfg.Notify)
	if err != nil {
		return nil, err
	}

	llmLimiter, err := buildLimiter(cfg.RateLimit, cfg.RateLimit.LLM, "llm")
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:        cfg,
		store:      store,
		logger:     logger,
		metrics:    metrics.New(),
		provider:   provider,
		similarity: simIndex,
		verify:     verify.New(cfg.EnabledChecks, buildDataRegistry(cfg.DataSources), nil),
		personas:   persona.NewOrchestrator(provider, cfg.Personas, llmLimiter),
		proposals:  proposal.NewQueue(store, notifier, cfg.Proposals.DeferredTTL),
		notifier:   notifier,
	}, nil
}

func buildDataRegistry(sources []config.DataSource) dataregistry.Registry {
	datasets := make([]dataregistry.Dataset, 0, len(sources))
	for _, s := range sources {
		datasets = append(datasets, dataregistry.Dataset{
			Requirement: s.Requirement,
			Source:      dataregistry.Source(s.Source),
			From:        s.From,
			To:          s.To,
		})
	}
	return dataregistry.NewStaticRegistry(datasets)
}

func buildSimilarityIndex(cfg config.Similarity) (similarity.Index, error) {
	if cfg.Store == "postgres" {
		return similarity.NewPostgresIndex(cfg.DSN)
	}
	return similarity.NewMemoryIndex(), nil
}

// buildLimiter returns a redis-backed limiter when rate.Store == "redis",
// else the default in-process token bucket (internal/config §5).
func buildLimiter(rl config.RateLimit, bucket config.RateLimitBucket, key string) (resilience.Limiter, error) {
	if bucket.RatePerSecond <= 0 {
		return resilience.NewMemoryLimiter(10, 10), nil
	}
	if rl.Store == "redis" {
		client := redis.NewClient(&redis.Options{Addr: rl.RedisAddr})
		return resilience.NewRedisLimiter(client, key, bucket.RatePerSecond, bucket.Burst), nil
	}
	return resilience.NewMemoryLimiter(bucket.RatePerSecond, bucket.Burst), nil
}

func (a *app) Close() error {
	return a.logger.Sync()
}

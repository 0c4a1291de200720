// Package bootstrap arma los servicios de la aplicación a partir de la configuración.
// Lo comparten el API HTTP y la CLI.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/jhoicas/fuel-tracker/internal/application/depletion"
	"github.com/jhoicas/fuel-tracker/internal/application/ports"
	"github.com/jhoicas/fuel-tracker/internal/application/resolution"
	"github.com/jhoicas/fuel-tracker/internal/domain/matching"
	"github.com/jhoicas/fuel-tracker/internal/domain/repository"
	infraai "github.com/jhoicas/fuel-tracker/internal/infrastructure/ai"
	"github.com/jhoicas/fuel-tracker/internal/infrastructure/cache"
	"github.com/jhoicas/fuel-tracker/internal/infrastructure/lock"
	"github.com/jhoicas/fuel-tracker/internal/infrastructure/memory"
	"github.com/jhoicas/fuel-tracker/internal/infrastructure/postgres"
	"github.com/jhoicas/fuel-tracker/internal/infrastructure/seed"
	"github.com/jhoicas/fuel-tracker/pkg/config"
	"github.com/jhoicas/fuel-tracker/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// Services componentes listos para usar.
type Services struct {
	Orders       repository.LoadingOrderRepository
	Batches      repository.StockBatchRepository
	Orchestrator *resolution.Orchestrator
	Ledger       *depletion.Ledger
	Transitions  *depletion.TransitionUseCase

	closers []func()
}

// Close libera conexiones en orden inverso de apertura.
func (s *Services) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// Build construye los servicios. Con DB_BACKEND=memory y seedDemo carga datos de demostración.
func Build(ctx context.Context, cfg *config.Config, log *logger.Logger, seedDemo bool) (*Services, error) {
	s := &Services{}
	ok := false
	defer func() {
		if !ok {
			s.Close()
		}
	}()

	var (
		txRunner   depletion.TxRunner
		depletions repository.DepletionRepository
	)
	switch cfg.DB.Backend {
	case "memory":
		store := memory.NewStore()
		s.Orders, s.Batches, depletions, txRunner = store.Orders(), store.Batches(), store.Depletions(), store.TxRunner()
		if seedDemo {
			opts := seed.DefaultOptions()
			if cfg.Resolver.IDPrefix != "" {
				opts.Prefix = cfg.Resolver.IDPrefix
			}
			if err := seed.Load(ctx, s.Orders, s.Batches, seed.Generate(opts)); err != nil {
				return nil, fmt.Errorf("datos de demostración: %w", err)
			}
			log.Info().Int("orders", opts.Orders).Int("batches", opts.Batches).Msg("store en memoria con datos de demostración")
		}
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		s.closers = append(s.closers, pool.Close)
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			return nil, err
		}
		s.Orders = postgres.NewLoadingOrderRepository(pool)
		s.Batches = postgres.NewStockBatchRepository(pool)
		depletions = postgres.NewDepletionRepository(pool)
		txRunner = postgres.NewTxRunner(pool)
	}

	var rdb *redis.Client
	redisClient := func() *redis.Client {
		if rdb == nil {
			rdb = redis.NewClient(&redis.Options{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
			s.closers = append(s.closers, func() { _ = rdb.Close() })
		}
		return rdb
	}

	var locker ports.ScopeLocker
	switch cfg.Lock.Backend {
	case "redis":
		if err := redisClient().Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis para locks: %w", err)
		}
		locker = lock.NewRedisLocker(redisClient(), cfg.Lock.TTL, cfg.Lock.Wait, log)
	default:
		locker = lock.NewLocalLocker()
	}

	var correctionCache ports.Cache
	switch cfg.Cache.Backend {
	case "redis":
		correctionCache = cache.NewRedisCache(redisClient(), log)
	default:
		// memory: badger en memoria; badger: en disco si hay directorio.
		dir := ""
		if cfg.Cache.Backend == "badger" {
			dir = cfg.Cache.BadgerDir
		}
		bc, err := cache.OpenBadgerCache(dir, log)
		if err != nil {
			return nil, fmt.Errorf("abrir badger: %w", err)
		}
		s.closers = append(s.closers, func() { _ = bc.Close() })
		correctionCache = bc
	}

	normalizer := matching.NewNormalizer(cfg.Resolver.IDPrefix)
	matcher := matching.NewLocalMatcher(matching.NewScorer(normalizer), cfg.Resolver.LocalThreshold)

	var correction *resolution.CorrectionClient
	if svc := correctionService(cfg.Correction); svc != nil {
		correction = resolution.NewCorrectionClient(svc, correctionCache, normalizer, resolution.CorrectionConfig{
			Threshold:     cfg.Resolver.AIThreshold,
			MaxCandidates: cfg.Resolver.MaxCandidates,
			CacheTTL:      cfg.Correction.CacheTTL,
			Timeout:       cfg.Correction.Timeout,
			RatePerSecond: cfg.Correction.RatePerSecond,
			Burst:         cfg.Correction.Burst,
		}, log)
	}
	log.Info().
		Str("db", cfg.DB.Backend).
		Str("lock", cfg.Lock.Backend).
		Str("cache", cfg.Cache.Backend).
		Str("correction", cfg.Correction.Provider).
		Msg("servicios configurados")

	s.Orchestrator = resolution.NewOrchestrator(s.Orders, normalizer, matcher, correction, log)
	s.Ledger = depletion.NewLedger(txRunner, s.Orders, s.Batches, depletions, locker, log)
	s.Transitions = depletion.NewTransitionUseCase(s.Orders, s.Ledger, log)
	ok = true
	return s, nil
}

func correctionService(cfg config.CorrectionConfig) ports.CorrectionService {
	switch cfg.Provider {
	case "http":
		return infraai.NewHTTPService(cfg.URL, cfg.APIKey)
	case "anthropic":
		model := cfg.Model
		if model == "" {
			model = "claude-3-5-haiku-20241022"
		}
		return infraai.NewAnthropicService(cfg.APIKey, model)
	case "gemini":
		model := cfg.Model
		if model == "" {
			model = "gemini-1.5-flash"
		}
		return infraai.NewGeminiService(cfg.APIKey, model)
	default:
		return nil
	}
}

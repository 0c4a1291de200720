package resolution

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/fuel-tracker/internal/domain"
	"github.com/jhoicas/fuel-tracker/internal/domain/entity"
	"github.com/jhoicas/fuel-tracker/internal/domain/matching"
	"github.com/jhoicas/fuel-tracker/internal/domain/repository"
	"github.com/jhoicas/fuel-tracker/pkg/logger"
	"github.com/jhoicas/fuel-tracker/pkg/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Etapas del pipeline de resolución.
const (
	StageExact      = "EXACT"
	StageLocalFuzzy = "LOCAL_FUZZY"
	StageAIFallback = "AI_FALLBACK"
)

var tracer = otel.Tracer("github.com/jhoicas/fuel-tracker/internal/application/resolution")

// Orchestrator secuencia Normalizer → exacto → difuso local → corrección IA.
// El pool de candidatos de todas las etapas son los identificadores de órdenes activas.
type Orchestrator struct {
	orders     repository.LoadingOrderRepository
	normalizer *matching.Normalizer
	matcher    *matching.LocalMatcher
	correction *CorrectionClient
	log        *logger.Logger
}

// NewOrchestrator construye el orquestador. correction puede ser nil (sin etapa IA).
func NewOrchestrator(
	orders repository.LoadingOrderRepository,
	normalizer *matching.Normalizer,
	matcher *matching.LocalMatcher,
	correction *CorrectionClient,
	log *logger.Logger,
) *Orchestrator {
	if normalizer == nil {
		normalizer = matching.NewNormalizer("")
	}
	if matcher == nil {
		matcher = matching.NewLocalMatcher(matching.NewScorer(normalizer), matching.DefaultLocalThreshold)
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Orchestrator{
		orders:     orders,
		normalizer: normalizer,
		matcher:    matcher,
		correction: correction,
		log:        log.Component("resolver"),
	}
}

// Resolve resuelve un identificador externo a su orden de carga canónica.
// Devuelve *domain.NormalizationRejectedError si la entrada no tiene forma de identificador y
// *domain.UnresolvedError (con la traza de etapas) si ninguna etapa resuelve; nunca una aproximación.
func (o *Orchestrator) Resolve(ctx context.Context, raw string) (*entity.LoadingOrder, *entity.MatchMetadata, error) {
	ctx, span := tracer.Start(ctx, "Resolve", trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()
	span.SetAttributes(attribute.String("identifier.raw", raw))

	start := time.Now()
	normalized := o.normalizer.Normalize(raw)
	if normalized == "" {
		metrics.RecordResolution("none", "rejected")
		err := &domain.NormalizationRejectedError{Raw: raw}
		span.SetStatus(codes.Error, err.Error())
		return nil, nil, err
	}

	// Lectura sin locks: la resolución es pura y local salvo esta consulta.
	active, err := o.orders.ListActive(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, nil, fmt.Errorf("listar órdenes activas: %w", err)
	}
	pool := make([]string, 0, len(active))
	byNumber := make(map[string]*entity.LoadingOrder, len(active))
	for _, ord := range active {
		if ord == nil || !ord.IsActive() {
			continue
		}
		pool = append(pool, ord.OrderNumber)
		byNumber[ord.OrderNumber] = ord
	}

	var attempts []domain.StageAttempt
	resolved := func(id, method string, confidence float64) (*entity.LoadingOrder, *entity.MatchMetadata, error) {
		meta := &entity.MatchMetadata{
			OriginalIdentifier: raw,
			ResolvedIdentifier: id,
			Method:             method,
			Confidence:         confidence,
			Elapsed:            time.Since(start),
		}
		metrics.RecordResolution(method, "resolved")
		span.SetAttributes(
			attribute.String("identifier.resolved", id),
			attribute.String("match.method", method),
			attribute.Float64("match.confidence", confidence),
		)
		o.log.Info().
			Str("original", raw).
			Str("resolved", id).
			Str("method", method).
			Float64("confidence", confidence).
			Dur("elapsed", meta.Elapsed).
			Msg("identificador resuelto")
		return byNumber[id], meta, nil
	}

	// EXACT
	stageStart := time.Now()
	id, ok := o.matcher.Exact(raw, pool)
	attempts = append(attempts, o.finishStage(StageExact, stageStart, 0, ""))
	if ok {
		return resolved(id, entity.MatchMethodExact, 1.0)
	}

	// LOCAL_FUZZY
	stageStart = time.Now()
	best, ok := o.matcher.Best(normalized, pool)
	attempts = append(attempts, o.finishStage(StageLocalFuzzy, stageStart, best.Score, best.Identifier))
	if ok {
		return resolved(best.Identifier, entity.MatchMethodLocalFuzzy, best.Score)
	}

	// AI_FALLBACK
	if o.correction != nil && len(pool) > 0 {
		stageStart = time.Now()
		ranked := o.matcher.Rank(normalized, pool, o.correction.cfg.MaxCandidates)
		ids := make([]string, len(ranked))
		for i, c := range ranked {
			ids[i] = c.Identifier
		}
		res := o.correction.Correct(ctx, raw, ids)
		attempts = append(attempts, o.finishStage(StageAIFallback, stageStart, res.Confidence, res.Outcome))
		if res.Found() {
			if _, exists := byNumber[res.Identifier]; exists {
				return resolved(res.Identifier, entity.MatchMethodAICorrection, res.Confidence)
			}
		}
	}

	err = &domain.UnresolvedError{
		Raw:        raw,
		Normalized: normalized,
		Attempts:   attempts,
		Elapsed:    time.Since(start),
	}
	metrics.RecordResolution("none", "unresolved")
	span.SetStatus(codes.Error, err.Error())
	o.log.Warn().Err(err).Str("original", raw).Msg("identificador no resuelto")
	return nil, nil, err
}

func (o *Orchestrator) finishStage(stage string, started time.Time, score float64, note string) domain.StageAttempt {
	elapsed := time.Since(started)
	metrics.ObserveStage(stage, elapsed.Seconds())
	return domain.StageAttempt{Stage: stage, Elapsed: elapsed, BestScore: score, Note: note}
}

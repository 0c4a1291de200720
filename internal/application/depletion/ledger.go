package depletion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/fuel-tracker/internal/application/dto"
	"github.com/jhoicas/fuel-tracker/internal/application/ports"
	"github.com/jhoicas/fuel-tracker/internal/domain"
	"github.com/jhoicas/fuel-tracker/internal/domain/entity"
	"github.com/jhoicas/fuel-tracker/internal/domain/inventory"
	"github.com/jhoicas/fuel-tracker/internal/domain/repository"
	"github.com/jhoicas/fuel-tracker/pkg/logger"
	"github.com/jhoicas/fuel-tracker/pkg/metrics"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("github.com/jhoicas/fuel-tracker/internal/application/depletion")

// Ledger gestor transaccional de agotamientos: aplica planes FIFO de forma atómica y los revierte.
// Commit y Reverse toman un lock exclusivo por alcance y, dentro de la transacción, bloquean la fila
// de la orden y las de los lotes (SELECT FOR UPDATE) antes de revalidar.
type Ledger struct {
	txRunner  TxRunner
	allocator *BatchAllocator
	orders    repository.LoadingOrderRepository
	batches   repository.StockBatchRepository
	depletes  repository.DepletionRepository
	locker    ports.ScopeLocker
	log       *logger.Logger
	now       func() time.Time
}

// NewLedger construye el gestor. Los repositorios sin tx se usan solo para lecturas.
func NewLedger(
	txRunner TxRunner,
	orders repository.LoadingOrderRepository,
	batches repository.StockBatchRepository,
	depletes repository.DepletionRepository,
	locker ports.ScopeLocker,
	log *logger.Logger,
) *Ledger {
	if log == nil {
		log = logger.Nop()
	}
	return &Ledger{
		txRunner:  txRunner,
		allocator: NewBatchAllocator(batches),
		orders:    orders,
		batches:   batches,
		depletes:  depletes,
		locker:    locker,
		log:       log.Component("ledger"),
		now:       time.Now,
	}
}

// Allocator expone el asignador (planes sin commit, disponibilidad).
func (l *Ledger) Allocator() *BatchAllocator {
	return l.allocator
}

func lockKey(scope entity.Scope) string {
	return "ledger:" + scope.Key()
}

// Deplete calcula el plan FIFO (sin locks) y lo confirma con Commit.
func (l *Ledger) Deplete(ctx context.Context, order *entity.LoadingOrder, quantity decimal.Decimal) (*dto.PlanSummary, error) {
	if order == nil {
		return nil, domain.ErrInvalidInput
	}
	plan, err := l.allocator.Plan(ctx, order.Scope(), quantity)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) {
			metrics.RecordLedger("commit", "insufficient")
			l.log.Warn().Err(err).Str("order", order.OrderNumber).Msg("agotamiento rechazado")
		}
		return nil, err
	}
	return l.Commit(ctx, order, plan)
}

// Commit aplica el plan como una unidad: revalida cada lote bajo lock, crea un registro por
// (lote, cantidad) y descuenta el remanente. Si la revalidación falla no se escribe nada y se
// devuelve *domain.StaleAllocationError; el caller debe recalcular desde cero.
func (l *Ledger) Commit(ctx context.Context, order *entity.LoadingOrder, plan *inventory.Plan) (*dto.PlanSummary, error) {
	if err := checkPlan(order, plan); err != nil {
		return nil, err
	}
	ctx, span := tracer.Start(ctx, "Ledger.Commit")
	defer span.End()
	span.SetAttributes(attribute.String("order.id", order.ID), attribute.String("scope", plan.Scope.Key()))

	unlock, err := l.locker.Lock(ctx, lockKey(plan.Scope))
	if err != nil {
		metrics.RecordLedger("commit", "error")
		return nil, fmt.Errorf("lock de alcance: %w", err)
	}
	defer unlock()

	now := l.now()
	err = l.txRunner.Run(ctx, func(
		orders repository.LoadingOrderRepository,
		batches repository.StockBatchRepository,
		depletions repository.DepletionRepository,
	) error {
		locked, err := lockOrder(ctx, orders, order.ID)
		if err != nil {
			return err
		}
		return commitLocked(ctx, batches, depletions, locked, plan, now)
	})
	if err != nil {
		span.RecordError(err)
		l.recordCommitError(err, order)
		return nil, err
	}
	return l.commitSummary(order, plan, now), nil
}

func checkPlan(order *entity.LoadingOrder, plan *inventory.Plan) error {
	if order == nil || plan == nil || len(plan.Allocations) == 0 {
		return domain.ErrInvalidInput
	}
	if plan.Scope != order.Scope() || !plan.Total().Equal(plan.Requested) {
		return domain.ErrInvalidInput
	}
	return nil
}

// lockOrder bloquea la fila de la orden (SELECT FOR UPDATE): serializa commits, reversas y
// transiciones de la misma orden.
func lockOrder(ctx context.Context, orders repository.LoadingOrderRepository, id string) (*entity.LoadingOrder, error) {
	locked, err := orders.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if locked == nil {
		return nil, domain.ErrNotFound
	}
	return locked, nil
}

// commitLocked escribe el plan dentro de una tx que ya tiene la orden bloqueada.
func commitLocked(
	ctx context.Context,
	batches repository.StockBatchRepository,
	depletions repository.DepletionRepository,
	order *entity.LoadingOrder,
	plan *inventory.Plan,
	now time.Time,
) error {
	if order.Scope() != plan.Scope {
		return fmt.Errorf("la orden %s cambió de alcance: %w", order.ID, domain.ErrConflict)
	}
	existing, err := depletions.ListByOrder(ctx, order.ID)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return domain.ErrAlreadyDepleted
	}

	for _, a := range plan.Allocations {
		batch, err := batches.GetForUpdate(ctx, a.BatchID)
		if err != nil {
			return err
		}
		if batch == nil || batch.Scope() != plan.Scope {
			return &domain.StaleAllocationError{BatchID: a.BatchID, Needed: a.Quantity, Remaining: decimal.Zero}
		}
		if batch.QuantityRemaining.LessThan(a.Quantity) {
			return &domain.StaleAllocationError{BatchID: a.BatchID, Needed: a.Quantity, Remaining: batch.QuantityRemaining}
		}
		if err := batches.UpdateRemaining(ctx, batch.ID, batch.QuantityRemaining.Sub(a.Quantity)); err != nil {
			return err
		}
		if err := depletions.Create(ctx, &entity.Depletion{
			ID:        uuid.New().String(),
			OrderID:   order.ID,
			BatchID:   batch.ID,
			Quantity:  a.Quantity,
			CreatedAt: now,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (l *Ledger) recordCommitError(err error, order *entity.LoadingOrder) {
	switch {
	case errors.Is(err, domain.ErrStaleAllocation):
		metrics.RecordLedger("commit", "stale")
		l.log.Warn().Err(err).Str("order", order.OrderNumber).Msg("plan obsoleto, commit abortado")
	case errors.Is(err, domain.ErrAlreadyDepleted), errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrInvalidTransition), errors.Is(err, domain.ErrConflict):
		metrics.RecordLedger("commit", "conflict")
	default:
		metrics.RecordLedger("commit", "error")
		l.log.Error().Err(err).Str("order", order.OrderNumber).Msg("commit de agotamiento")
	}
}

func (l *Ledger) commitSummary(order *entity.LoadingOrder, plan *inventory.Plan, now time.Time) *dto.PlanSummary {
	metrics.RecordLedger("commit", "ok")
	summary := &dto.PlanSummary{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		ProductID:   plan.Scope.ProductID,
		Destination: plan.Scope.DestinationID,
		Requested:   plan.Requested,
		CommittedAt: now,
	}
	for _, a := range plan.Allocations {
		summary.Allocations = append(summary.Allocations, dto.AllocationDTO{
			BatchID:    a.BatchID,
			Quantity:   a.Quantity,
			ReceivedAt: a.ReceivedAt,
		})
	}
	l.log.Info().
		Str("order", order.OrderNumber).
		Str("scope", plan.Scope.Key()).
		Str("quantity", plan.Requested.String()).
		Int("batches", len(plan.Allocations)).
		Msg("agotamiento FIFO confirmado")
	return summary
}

// Reverse restaura el remanente de cada lote referenciado por los registros de la orden y los elimina.
// Sin registros es un no-op con NothingToReverse=true, por lo que revertir dos veces es seguro.
func (l *Ledger) Reverse(ctx context.Context, order *entity.LoadingOrder) (*dto.ReversalSummary, error) {
	if order == nil {
		return nil, domain.ErrInvalidInput
	}
	ctx, span := tracer.Start(ctx, "Ledger.Reverse")
	defer span.End()
	span.SetAttributes(attribute.String("order.id", order.ID))

	unlock, err := l.locker.Lock(ctx, lockKey(order.Scope()))
	if err != nil {
		metrics.RecordLedger("reverse", "error")
		return nil, fmt.Errorf("lock de alcance: %w", err)
	}
	defer unlock()

	summary := &dto.ReversalSummary{OrderID: order.ID, Total: decimal.Zero, ReversedAt: l.now()}
	err = l.txRunner.Run(ctx, func(
		orders repository.LoadingOrderRepository,
		batches repository.StockBatchRepository,
		depletions repository.DepletionRepository,
	) error {
		if _, err := lockOrder(ctx, orders, order.ID); err != nil {
			return err
		}
		return reverseLocked(ctx, batches, depletions, order.ID, summary)
	})
	if err != nil {
		span.RecordError(err)
		l.recordReverseError(err, order)
		return nil, err
	}
	l.recordReverse(order, summary)
	return summary, nil
}

// reverseLocked restaura lotes y borra registros dentro de una tx que ya tiene la orden bloqueada.
// summary se reinicia en cada intento de fn.
func reverseLocked(
	ctx context.Context,
	batches repository.StockBatchRepository,
	depletions repository.DepletionRepository,
	orderID string,
	summary *dto.ReversalSummary,
) error {
	summary.Restored, summary.Total, summary.NothingToReverse = nil, decimal.Zero, false
	records, err := depletions.ListByOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		summary.NothingToReverse = true
		return nil
	}
	for _, d := range records {
		batch, err := batches.GetForUpdate(ctx, d.BatchID)
		if err != nil {
			return err
		}
		if batch == nil {
			return fmt.Errorf("lote %s referenciado por agotamiento %s: %w", d.BatchID, d.ID, domain.ErrNotFound)
		}
		restored := batch.QuantityRemaining.Add(d.Quantity)
		if restored.GreaterThan(batch.TotalQuantity) {
			return fmt.Errorf("lote %s quedaría en %s sobre un total de %s: %w", batch.ID, restored, batch.TotalQuantity, domain.ErrConflict)
		}
		if err := batches.UpdateRemaining(ctx, batch.ID, restored); err != nil {
			return err
		}
		summary.Restored = append(summary.Restored, dto.RestoredDTO{BatchID: batch.ID, Quantity: d.Quantity})
		summary.Total = summary.Total.Add(d.Quantity)
	}
	deleted, err := depletions.DeleteByOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if deleted != int64(len(records)) {
		return fmt.Errorf("se borraron %d de %d agotamientos: %w", deleted, len(records), domain.ErrConflict)
	}
	return nil
}

func (l *Ledger) recordReverseError(err error, order *entity.LoadingOrder) {
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidTransition) {
		metrics.RecordLedger("reverse", "conflict")
		return
	}
	metrics.RecordLedger("reverse", "error")
	l.log.Error().Err(err).Str("order", order.OrderNumber).Msg("reversa de agotamiento")
}

func (l *Ledger) recordReverse(order *entity.LoadingOrder, summary *dto.ReversalSummary) {
	if summary.NothingToReverse {
		metrics.RecordLedger("reverse", "noop")
		l.log.Info().Str("order", order.OrderNumber).Msg("nada que revertir")
		return
	}
	metrics.RecordLedger("reverse", "ok")
	l.log.Info().
		Str("order", order.OrderNumber).
		Str("quantity", summary.Total.String()).
		Int("batches", len(summary.Restored)).
		Msg("agotamiento revertido")
}

// Depletions lista los registros vigentes de una orden.
func (l *Ledger) Depletions(ctx context.Context, orderID string) ([]dto.DepletionDTO, error) {
	records, err := l.depletes.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.DepletionDTO, 0, len(records))
	for _, d := range records {
		out = append(out, dto.DepletionDTO{
			ID:        d.ID,
			OrderID:   d.OrderID,
			BatchID:   d.BatchID,
			Quantity:  d.Quantity,
			CreatedAt: d.CreatedAt,
		})
	}
	return out, nil
}

// Audit recomputa el remanente de cada lote del alcance desde los registros de agotamiento
// y marca los lotes donde total - remanente != suma de agotamientos.
func (l *Ledger) Audit(ctx context.Context, scope entity.Scope) ([]dto.BatchAuditDTO, error) {
	batches, err := l.batches.ListByScope(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("listar lotes: %w", err)
	}
	sums, err := l.depletes.SumByBatch(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("sumar agotamientos: %w", err)
	}
	out := make([]dto.BatchAuditDTO, 0, len(batches))
	for _, b := range batches {
		depleted, ok := sums[b.ID]
		if !ok {
			depleted = decimal.Zero
		}
		consistent := b.Consumed().Equal(depleted) &&
			!b.QuantityRemaining.IsNegative() &&
			!b.QuantityRemaining.GreaterThan(b.TotalQuantity)
		if !consistent {
			l.log.Error().
				Str("batch", b.ID).
				Str("remaining", b.QuantityRemaining.String()).
				Str("depleted", depleted.String()).
				Msg("lote inconsistente con sus agotamientos")
		}
		out = append(out, dto.BatchAuditDTO{
			BatchID:           b.ID,
			TotalQuantity:     b.TotalQuantity,
			QuantityRemaining: b.QuantityRemaining,
			Depleted:          depleted,
			Consistent:        consistent,
		})
	}
	return out, nil
}

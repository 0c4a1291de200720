package depletion

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhoicas/fuel-tracker/internal/application/dto"
	"github.com/jhoicas/fuel-tracker/internal/domain"
	"github.com/jhoicas/fuel-tracker/internal/domain/entity"
	"github.com/jhoicas/fuel-tracker/internal/domain/inventory"
	"github.com/jhoicas/fuel-tracker/internal/domain/repository"
	"github.com/jhoicas/fuel-tracker/pkg/logger"
	"github.com/jhoicas/fuel-tracker/pkg/metrics"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

// allowedTransitions máquina de estados de la orden de carga.
var allowedTransitions = map[string][]string{
	entity.OrderStatusPending:   {entity.OrderStatusApproved, entity.OrderStatusCancelled},
	entity.OrderStatusApproved:  {entity.OrderStatusLoading, entity.OrderStatusLoaded, entity.OrderStatusCancelled},
	entity.OrderStatusLoading:   {entity.OrderStatusLoaded, entity.OrderStatusCancelled},
	entity.OrderStatusLoaded:    {entity.OrderStatusInTransit, entity.OrderStatusCancelled},
	entity.OrderStatusInTransit: {entity.OrderStatusDelivered, entity.OrderStatusCancelled},
}

// CanTransition indica si from -> to está permitido.
func CanTransition(from, to string) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// TransitionUseCase aplica eventos de estado a las órdenes y dispara el libro:
// entrar en LOADED agota stock FIFO, entrar en CANCELLED revierte lo agotado.
type TransitionUseCase struct {
	orders repository.LoadingOrderRepository
	ledger *Ledger
	log    *logger.Logger
}

// NewTransitionUseCase construye el caso de uso.
func NewTransitionUseCase(orders repository.LoadingOrderRepository, ledger *Ledger, log *logger.Logger) *TransitionUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &TransitionUseCase{orders: orders, ledger: ledger, log: log.Component("transitions")}
}

// Apply valida y aplica la transición. El plan FIFO se calcula sin locks; el cambio de estado,
// el commit o la reversa se escriben en una sola tx con la orden bloqueada, revalidando la
// transición contra el estado leído bajo lock.
// Si la orden ya tiene agotamientos al pasar a LOADED (agotamiento directo durante LOADING)
// se conservan y solo cambia el estado.
func (uc *TransitionUseCase) Apply(ctx context.Context, orderID string, req dto.TransitionRequest) (*dto.TransitionResult, error) {
	order, err := uc.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	if !CanTransition(order.Status, req.Status) {
		return nil, fmt.Errorf("%s -> %s: %w", order.Status, req.Status, domain.ErrInvalidTransition)
	}

	var plan *inventory.Plan
	if req.Status == entity.OrderStatusLoaded {
		qty := order.RequestedQuantity
		if req.Quantity != nil {
			qty = *req.Quantity
		}
		if !qty.GreaterThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		existing, err := uc.ledger.depletes.ListByOrder(ctx, order.ID)
		if err != nil {
			return nil, err
		}
		if len(existing) == 0 {
			plan, err = uc.ledger.allocator.Plan(ctx, order.Scope(), qty)
			if err != nil {
				if errors.Is(err, domain.ErrInsufficientStock) {
					metrics.RecordLedger("commit", "insufficient")
					uc.log.Warn().Err(err).Str("order", order.OrderNumber).Msg("transición a LOADED rechazada")
				}
				return nil, err
			}
		}
	}

	result, err := uc.ledger.transition(ctx, order, req.Status, plan)
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("order", order.OrderNumber).
		Str("from", result.From).
		Str("to", result.To).
		Msg("transición aplicada")
	return result, nil
}

// transition escribe el cambio de estado junto con el commit (LOADED) o la reversa (CANCELLED)
// bajo el lock de alcance y con la fila de la orden bloqueada.
func (l *Ledger) transition(ctx context.Context, order *entity.LoadingOrder, to string, plan *inventory.Plan) (*dto.TransitionResult, error) {
	ctx, span := tracer.Start(ctx, "Ledger.Transition")
	defer span.End()
	span.SetAttributes(attribute.String("order.id", order.ID), attribute.String("to", to))

	unlock, err := l.locker.Lock(ctx, lockKey(order.Scope()))
	if err != nil {
		return nil, fmt.Errorf("lock de alcance: %w", err)
	}
	defer unlock()

	now := l.now()
	result := &dto.TransitionResult{OrderID: order.ID, To: to}
	var locked *entity.LoadingOrder
	committed := false
	err = l.txRunner.Run(ctx, func(
		orders repository.LoadingOrderRepository,
		batches repository.StockBatchRepository,
		depletions repository.DepletionRepository,
	) error {
		var err error
		locked, err = lockOrder(ctx, orders, order.ID)
		if err != nil {
			return err
		}
		if !CanTransition(locked.Status, to) {
			return fmt.Errorf("%s -> %s: %w", locked.Status, to, domain.ErrInvalidTransition)
		}
		result.From, result.Reversal, result.AlreadyDepleted = locked.Status, nil, false
		committed = false

		switch to {
		case entity.OrderStatusLoaded:
			existing, err := depletions.ListByOrder(ctx, locked.ID)
			if err != nil {
				return err
			}
			if len(existing) > 0 {
				result.AlreadyDepleted = true
				break
			}
			if plan == nil {
				return fmt.Errorf("los agotamientos de %s se revirtieron en paralelo: %w", locked.ID, domain.ErrStaleAllocation)
			}
			if err := commitLocked(ctx, batches, depletions, locked, plan, now); err != nil {
				return err
			}
			committed = true
		case entity.OrderStatusCancelled:
			reversal := &dto.ReversalSummary{OrderID: locked.ID, ReversedAt: now}
			if err := reverseLocked(ctx, batches, depletions, locked.ID, reversal); err != nil {
				return err
			}
			result.Reversal = reversal
		}
		return orders.UpdateStatus(ctx, locked.ID, to, now)
	})
	if err != nil {
		span.RecordError(err)
		switch to {
		case entity.OrderStatusLoaded:
			l.recordCommitError(err, order)
		case entity.OrderStatusCancelled:
			l.recordReverseError(err, order)
		}
		return nil, err
	}

	if committed {
		result.Plan = l.commitSummary(locked, plan, now)
	}
	if result.Reversal != nil {
		l.recordReverse(locked, result.Reversal)
	}
	return result, nil
}

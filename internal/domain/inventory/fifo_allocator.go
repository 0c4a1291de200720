package inventory

import (
	"sort"
	"time"

	"github.com/jhoicas/fuel-tracker/internal/domain"
	"github.com/jhoicas/fuel-tracker/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Allocation porción de un lote asignada a una orden.
type Allocation struct {
	BatchID    string
	Quantity   decimal.Decimal
	ReceivedAt time.Time
}

// Plan asignación FIFO completa para una cantidad solicitada. Nunca es parcial.
type Plan struct {
	Scope       entity.Scope
	Requested   decimal.Decimal
	Allocations []Allocation
}

// Total suma de las cantidades asignadas (igual a Requested en un plan válido).
func (p *Plan) Total() decimal.Decimal {
	total := decimal.Zero
	for _, a := range p.Allocations {
		total = total.Add(a.Quantity)
	}
	return total
}

// AllocateFIFO implementa la asignación FIFO (servicio de dominio, sin I/O ni locks).
// Toma los lotes del alcance con remanente > 0 del más antiguo al más nuevo y consume
// min(remanente, pendiente) de cada uno hasta cubrir requested.
// Si los lotes se agotan antes, devuelve *domain.InsufficientStockError y ningún plan.
// A igual fecha de recepción se ordena por ID de lote para que el plan sea determinista.
func AllocateFIFO(scope entity.Scope, batches []*entity.StockBatch, requested decimal.Decimal) (*Plan, error) {
	if !requested.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}

	eligible := make([]*entity.StockBatch, 0, len(batches))
	for _, b := range batches {
		if b == nil || b.Scope() != scope || !b.QuantityRemaining.GreaterThan(decimal.Zero) {
			continue
		}
		eligible = append(eligible, b)
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		if !eligible[i].ReceivedAt.Equal(eligible[j].ReceivedAt) {
			return eligible[i].ReceivedAt.Before(eligible[j].ReceivedAt)
		}
		return eligible[i].ID < eligible[j].ID
	})

	plan := &Plan{Scope: scope, Requested: requested}
	needed := requested
	available := decimal.Zero
	for _, b := range eligible {
		available = available.Add(b.QuantityRemaining)
		if needed.IsZero() {
			continue
		}
		take := decimal.Min(b.QuantityRemaining, needed)
		plan.Allocations = append(plan.Allocations, Allocation{
			BatchID:    b.ID,
			Quantity:   take,
			ReceivedAt: b.ReceivedAt,
		})
		needed = needed.Sub(take)
	}

	if needed.GreaterThan(decimal.Zero) {
		return nil, &domain.InsufficientStockError{Available: available, Requested: requested}
	}
	return plan, nil
}

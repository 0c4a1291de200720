package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/fuel-tracker/internal/domain"
	"github.com/jhoicas/fuel-tracker/internal/domain/entity"
	"github.com/shopspring/decimal"
)

type orderRepo struct {
	s  *Store
	tx *state
}

func (r *orderRepo) Create(ctx context.Context, order *entity.LoadingOrder) error {
	return r.s.do(r.tx, func(st *state) error {
		if _, ok := st.orders[order.ID]; ok {
			return fmt.Errorf("orden %s: %w", order.ID, domain.ErrConflict)
		}
		for _, o := range st.orders {
			if o.OrderNumber == order.OrderNumber {
				return fmt.Errorf("número de orden %s: %w", order.OrderNumber, domain.ErrConflict)
			}
		}
		c := *order
		st.orders[order.ID] = &c
		return nil
	})
}

func (r *orderRepo) GetByID(ctx context.Context, id string) (*entity.LoadingOrder, error) {
	var out *entity.LoadingOrder
	err := r.s.do(r.tx, func(st *state) error {
		if o, ok := st.orders[id]; ok {
			c := *o
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *orderRepo) GetByOrderNumber(ctx context.Context, orderNumber string) (*entity.LoadingOrder, error) {
	var out *entity.LoadingOrder
	err := r.s.do(r.tx, func(st *state) error {
		for _, o := range st.orders {
			if o.OrderNumber == orderNumber {
				c := *o
				out = &c
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *orderRepo) ListActive(ctx context.Context) ([]*entity.LoadingOrder, error) {
	var out []*entity.LoadingOrder
	err := r.s.do(r.tx, func(st *state) error {
		for _, o := range st.orders {
			if o.IsActive() {
				c := *o
				out = append(out, &c)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].OrderNumber < out[j].OrderNumber })
	return out, err
}

func (r *orderRepo) GetForUpdate(ctx context.Context, id string) (*entity.LoadingOrder, error) {
	return r.GetByID(ctx, id)
}

func (r *orderRepo) UpdateStatus(ctx context.Context, id, status string, at time.Time) error {
	return r.s.do(r.tx, func(st *state) error {
		o, ok := st.orders[id]
		if !ok {
			return domain.ErrNotFound
		}
		o.Status = status
		o.UpdatedAt = at
		return nil
	})
}

type batchRepo struct {
	s  *Store
	tx *state
}

func (r *batchRepo) Create(ctx context.Context, batch *entity.StockBatch) error {
	if batch.QuantityRemaining.IsNegative() || batch.QuantityRemaining.GreaterThan(batch.TotalQuantity) {
		return domain.ErrInvalidInput
	}
	return r.s.do(r.tx, func(st *state) error {
		if _, ok := st.batches[batch.ID]; ok {
			return fmt.Errorf("lote %s: %w", batch.ID, domain.ErrConflict)
		}
		c := *batch
		st.batches[batch.ID] = &c
		return nil
	})
}

func (r *batchRepo) list(scope entity.Scope, onlyAvailable bool) ([]*entity.StockBatch, error) {
	var out []*entity.StockBatch
	err := r.s.do(r.tx, func(st *state) error {
		for _, b := range st.batches {
			if b.Scope() != scope {
				continue
			}
			if onlyAvailable && !b.QuantityRemaining.GreaterThan(decimal.Zero) {
				continue
			}
			c := *b
			out = append(out, &c)
		}
		return nil
	})
	sortBatches(out)
	return out, err
}

func (r *batchRepo) ListAvailable(ctx context.Context, scope entity.Scope) ([]*entity.StockBatch, error) {
	return r.list(scope, true)
}

func (r *batchRepo) ListByScope(ctx context.Context, scope entity.Scope) ([]*entity.StockBatch, error) {
	return r.list(scope, false)
}

func (r *batchRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockBatch, error) {
	var out *entity.StockBatch
	err := r.s.do(r.tx, func(st *state) error {
		if b, ok := st.batches[id]; ok {
			c := *b
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *batchRepo) UpdateRemaining(ctx context.Context, id string, remaining decimal.Decimal) error {
	return r.s.do(r.tx, func(st *state) error {
		b, ok := st.batches[id]
		if !ok {
			return domain.ErrNotFound
		}
		// Mismo CHECK que la tabla stock_batches.
		if remaining.IsNegative() || remaining.GreaterThan(b.TotalQuantity) {
			return fmt.Errorf("lote %s remanente %s: %w", id, remaining, domain.ErrConflict)
		}
		b.QuantityRemaining = remaining
		b.UpdatedAt = time.Now()
		return nil
	})
}

type depletionRepo struct {
	s  *Store
	tx *state
}

func (r *depletionRepo) Create(ctx context.Context, d *entity.Depletion) error {
	return r.s.do(r.tx, func(st *state) error {
		if _, ok := st.depletions[d.ID]; ok {
			return fmt.Errorf("agotamiento %s: %w", d.ID, domain.ErrConflict)
		}
		if _, ok := st.orders[d.OrderID]; !ok {
			return fmt.Errorf("orden %s: %w", d.OrderID, domain.ErrNotFound)
		}
		if _, ok := st.batches[d.BatchID]; !ok {
			return fmt.Errorf("lote %s: %w", d.BatchID, domain.ErrNotFound)
		}
		c := *d
		st.depletions[d.ID] = &c
		return nil
	})
}

// ListByOrder devuelve los registros en el orden FIFO de sus lotes.
func (r *depletionRepo) ListByOrder(ctx context.Context, orderID string) ([]*entity.Depletion, error) {
	var out []*entity.Depletion
	received := make(map[string]time.Time)
	err := r.s.do(r.tx, func(st *state) error {
		for _, d := range st.depletions {
			if d.OrderID != orderID {
				continue
			}
			c := *d
			out = append(out, &c)
			if b, ok := st.batches[d.BatchID]; ok {
				received[d.BatchID] = b.ReceivedAt
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		ti, tj := received[out[i].BatchID], received[out[j].BatchID]
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return out[i].BatchID < out[j].BatchID
	})
	return out, err
}

func (r *depletionRepo) SumByBatch(ctx context.Context, scope entity.Scope) (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal)
	err := r.s.do(r.tx, func(st *state) error {
		for _, d := range st.depletions {
			b, ok := st.batches[d.BatchID]
			if !ok || b.Scope() != scope {
				continue
			}
			out[d.BatchID] = out[d.BatchID].Add(d.Quantity)
		}
		return nil
	})
	return out, err
}

func (r *depletionRepo) DeleteByOrder(ctx context.Context, orderID string) (int64, error) {
	var n int64
	err := r.s.do(r.tx, func(st *state) error {
		for id, d := range st.depletions {
			if d.OrderID == orderID {
				delete(st.depletions, id)
				n++
			}
		}
		return nil
	})
	return n, err
}

// Package memory implementa los puertos de persistencia en memoria (desarrollo, CLI y tests).
// Una transacción trabaja sobre una copia del estado y la publica solo si fn no devuelve error.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jhoicas/fuel-tracker/internal/application/depletion"
	"github.com/jhoicas/fuel-tracker/internal/domain/entity"
	"github.com/jhoicas/fuel-tracker/internal/domain/repository"
)

type state struct {
	orders     map[string]*entity.LoadingOrder
	batches    map[string]*entity.StockBatch
	depletions map[string]*entity.Depletion
}

func newState() *state {
	return &state{
		orders:     make(map[string]*entity.LoadingOrder),
		batches:    make(map[string]*entity.StockBatch),
		depletions: make(map[string]*entity.Depletion),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.orders {
		o := *v
		c.orders[k] = &o
	}
	for k, v := range s.batches {
		b := *v
		c.batches[k] = &b
	}
	for k, v := range s.depletions {
		d := *v
		c.depletions[k] = &d
	}
	return c
}

// Store estado compartido. Las transacciones son serializables: Run retiene el mutex durante fn.
type Store struct {
	mu sync.Mutex
	st *state
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{st: newState()}
}

// do ejecuta fn sobre el estado de la tx (ya bajo mutex) o sobre el estado vivo tomando el mutex.
func (s *Store) do(tx *state, fn func(st *state) error) error {
	if tx != nil {
		return fn(tx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.st)
}

// Orders repositorio de órdenes fuera de transacción.
func (s *Store) Orders() repository.LoadingOrderRepository { return &orderRepo{s: s} }

// Batches repositorio de lotes fuera de transacción.
func (s *Store) Batches() repository.StockBatchRepository { return &batchRepo{s: s} }

// Depletions repositorio de agotamientos fuera de transacción.
func (s *Store) Depletions() repository.DepletionRepository { return &depletionRepo{s: s} }

// TxRunner devuelve el ejecutor de transacciones del store.
func (s *Store) TxRunner() depletion.TxRunner { return &txRunner{s: s} }

type txRunner struct {
	s *Store
}

func (r *txRunner) Run(ctx context.Context, fn func(
	orders repository.LoadingOrderRepository,
	batches repository.StockBatchRepository,
	depletions repository.DepletionRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	tx := r.s.st.clone()
	if err := fn(&orderRepo{s: r.s, tx: tx}, &batchRepo{s: r.s, tx: tx}, &depletionRepo{s: r.s, tx: tx}); err != nil {
		return err
	}
	r.s.st = tx
	return nil
}

func sortBatches(list []*entity.StockBatch) {
	sort.Slice(list, func(i, j int) bool {
		if !list[i].ReceivedAt.Equal(list[j].ReceivedAt) {
			return list[i].ReceivedAt.Before(list[j].ReceivedAt)
		}
		return list[i].ID < list[j].ID
	})
}

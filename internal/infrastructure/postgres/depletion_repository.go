package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/fuel-tracker/internal/domain"
	"github.com/jhoicas/fuel-tracker/internal/domain/entity"
	"github.com/jhoicas/fuel-tracker/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.DepletionRepository = (*DepletionRepo)(nil)

// DepletionRepo implementación de DepletionRepository sobre PostgreSQL (usable con pool o tx).
type DepletionRepo struct {
	q Querier
}

// NewDepletionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDepletionRepository(q Querier) *DepletionRepo {
	return &DepletionRepo{q: q}
}

// Create inserta un registro de agotamiento.
func (r *DepletionRepo) Create(ctx context.Context, d *entity.Depletion) error {
	query := `
		INSERT INTO depletions (id, order_id, batch_id, quantity, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(ctx, query, d.ID, d.OrderID, d.BatchID, d.Quantity, d.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("agotamiento orden %s lote %s: %w", d.OrderID, d.BatchID, domain.ErrConflict)
		}
		return fmt.Errorf("create depletion: %w", err)
	}
	return nil
}

// ListByOrder registros de la orden en el orden FIFO de sus lotes.
func (r *DepletionRepo) ListByOrder(ctx context.Context, orderID string) ([]*entity.Depletion, error) {
	query := `
		SELECT d.id, d.order_id, d.batch_id, d.quantity, d.created_at
		FROM depletions d
		JOIN stock_batches b ON b.id = d.batch_id
		WHERE d.order_id = $1
		ORDER BY b.received_at, b.id`
	rows, err := r.q.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list depletions: %w", err)
	}
	defer rows.Close()

	var list []*entity.Depletion
	for rows.Next() {
		var d entity.Depletion
		if err := rows.Scan(&d.ID, &d.OrderID, &d.BatchID, &d.Quantity, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan depletion: %w", err)
		}
		list = append(list, &d)
	}
	return list, rows.Err()
}

// SumByBatch suma agotada por lote del alcance.
func (r *DepletionRepo) SumByBatch(ctx context.Context, scope entity.Scope) (map[string]decimal.Decimal, error) {
	query := `
		SELECT d.batch_id, SUM(d.quantity)
		FROM depletions d
		JOIN stock_batches b ON b.id = d.batch_id
		WHERE b.product_id = $1 AND b.destination_id = $2
		GROUP BY d.batch_id`
	rows, err := r.q.Query(ctx, query, scope.ProductID, scope.DestinationID)
	if err != nil {
		return nil, fmt.Errorf("sum depletions: %w", err)
	}
	defer rows.Close()

	out := make(map[string]decimal.Decimal)
	for rows.Next() {
		var batchID string
		var sum decimal.Decimal
		if err := rows.Scan(&batchID, &sum); err != nil {
			return nil, fmt.Errorf("scan depletion sum: %w", err)
		}
		out[batchID] = sum
	}
	return out, rows.Err()
}

// DeleteByOrder borra los registros de la orden.
func (r *DepletionRepo) DeleteByOrder(ctx context.Context, orderID string) (int64, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM depletions WHERE order_id = $1`, orderID)
	if err != nil {
		return 0, fmt.Errorf("delete depletions: %w", err)
	}
	return tag.RowsAffected(), nil
}

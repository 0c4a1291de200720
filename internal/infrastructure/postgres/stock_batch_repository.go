package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/fuel-tracker/internal/domain"
	"github.com/jhoicas/fuel-tracker/internal/domain/entity"
	"github.com/jhoicas/fuel-tracker/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.StockBatchRepository = (*StockBatchRepo)(nil)

const stockBatchColumns = `id, product_id, destination_id, total_quantity, quantity_remaining, received_at, updated_at`

// StockBatchRepo implementación de StockBatchRepository sobre PostgreSQL (usable con pool o tx).
type StockBatchRepo struct {
	q Querier
}

// NewStockBatchRepository construye el adaptador de lotes. Pasar pool o tx (Querier).
func NewStockBatchRepository(q Querier) *StockBatchRepo {
	return &StockBatchRepo{q: q}
}

func scanStockBatch(row pgx.Row) (*entity.StockBatch, error) {
	var b entity.StockBatch
	err := row.Scan(
		&b.ID, &b.ProductID, &b.DestinationID, &b.TotalQuantity,
		&b.QuantityRemaining, &b.ReceivedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Create registra la recepción de un lote.
func (r *StockBatchRepo) Create(ctx context.Context, b *entity.StockBatch) error {
	query := `
		INSERT INTO stock_batches (` + stockBatchColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, now())`
	_, err := r.q.Exec(ctx, query,
		b.ID, b.ProductID, b.DestinationID, b.TotalQuantity, b.QuantityRemaining, b.ReceivedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("lote %s: %w", b.ID, domain.ErrConflict)
		}
		return fmt.Errorf("create stock batch: %w", err)
	}
	return nil
}

func (r *StockBatchRepo) list(ctx context.Context, query string, scope entity.Scope) ([]*entity.StockBatch, error) {
	rows, err := r.q.Query(ctx, query, scope.ProductID, scope.DestinationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*entity.StockBatch
	for rows.Next() {
		b, err := scanStockBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock batch: %w", err)
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

// ListAvailable lotes con remanente del alcance en orden FIFO.
func (r *StockBatchRepo) ListAvailable(ctx context.Context, scope entity.Scope) ([]*entity.StockBatch, error) {
	query := `
		SELECT ` + stockBatchColumns + `
		FROM stock_batches
		WHERE product_id = $1 AND destination_id = $2 AND quantity_remaining > 0
		ORDER BY received_at, id`
	list, err := r.list(ctx, query, scope)
	if err != nil {
		return nil, fmt.Errorf("list available batches: %w", err)
	}
	return list, nil
}

// ListByScope todos los lotes del alcance en orden FIFO.
func (r *StockBatchRepo) ListByScope(ctx context.Context, scope entity.Scope) ([]*entity.StockBatch, error) {
	query := `
		SELECT ` + stockBatchColumns + `
		FROM stock_batches
		WHERE product_id = $1 AND destination_id = $2
		ORDER BY received_at, id`
	list, err := r.list(ctx, query, scope)
	if err != nil {
		return nil, fmt.Errorf("list batches by scope: %w", err)
	}
	return list, nil
}

// GetForUpdate obtiene el lote y bloquea la fila (SELECT FOR UPDATE). nil si no existe.
func (r *StockBatchRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockBatch, error) {
	query := `SELECT ` + stockBatchColumns + ` FROM stock_batches WHERE id = $1 FOR UPDATE`
	b, err := scanStockBatch(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock batch for update: %w", err)
	}
	return b, nil
}

// UpdateRemaining fija el remanente. El CHECK de la tabla rechaza valores fuera de [0, total].
func (r *StockBatchRepo) UpdateRemaining(ctx context.Context, id string, remaining decimal.Decimal) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE stock_batches SET quantity_remaining = $2, updated_at = now() WHERE id = $1`,
		id, remaining,
	)
	if err != nil {
		if isCheckViolation(err) {
			return fmt.Errorf("lote %s remanente %s: %w", id, remaining, domain.ErrConflict)
		}
		return fmt.Errorf("update batch remaining: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

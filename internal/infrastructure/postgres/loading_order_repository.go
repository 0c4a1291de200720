package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/fuel-tracker/internal/domain"
	"github.com/jhoicas/fuel-tracker/internal/domain/entity"
	"github.com/jhoicas/fuel-tracker/internal/domain/repository"
)

var _ repository.LoadingOrderRepository = (*LoadingOrderRepo)(nil)

const loadingOrderColumns = `id, order_number, status, product_id, destination_id, requested_quantity, created_at, updated_at`

// LoadingOrderRepo implementación de LoadingOrderRepository sobre PostgreSQL (usable con pool o tx).
type LoadingOrderRepo struct {
	q Querier
}

// NewLoadingOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLoadingOrderRepository(q Querier) *LoadingOrderRepo {
	return &LoadingOrderRepo{q: q}
}

func scanLoadingOrder(row pgx.Row) (*entity.LoadingOrder, error) {
	var o entity.LoadingOrder
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.Status, &o.ProductID, &o.DestinationID,
		&o.RequestedQuantity, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Create persiste una orden. order_number es único.
func (r *LoadingOrderRepo) Create(ctx context.Context, o *entity.LoadingOrder) error {
	query := `
		INSERT INTO loading_orders (` + loadingOrderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	now := time.Now()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	if o.UpdatedAt.IsZero() {
		o.UpdatedAt = o.CreatedAt
	}
	_, err := r.q.Exec(ctx, query,
		o.ID, o.OrderNumber, o.Status, o.ProductID, o.DestinationID,
		o.RequestedQuantity, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("orden %s: %w", o.OrderNumber, domain.ErrConflict)
		}
		return fmt.Errorf("create loading order: %w", err)
	}
	return nil
}

func (r *LoadingOrderRepo) getOne(ctx context.Context, query string, arg string) (*entity.LoadingOrder, error) {
	o, err := scanLoadingOrder(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return o, nil
}

// GetByID obtiene una orden por ID. Devuelve nil si no existe.
func (r *LoadingOrderRepo) GetByID(ctx context.Context, id string) (*entity.LoadingOrder, error) {
	o, err := r.getOne(ctx, `SELECT `+loadingOrderColumns+` FROM loading_orders WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("get loading order: %w", err)
	}
	return o, nil
}

// GetByOrderNumber obtiene una orden por su identificador canónico.
func (r *LoadingOrderRepo) GetByOrderNumber(ctx context.Context, orderNumber string) (*entity.LoadingOrder, error) {
	o, err := r.getOne(ctx, `SELECT `+loadingOrderColumns+` FROM loading_orders WHERE order_number = $1`, orderNumber)
	if err != nil {
		return nil, fmt.Errorf("get loading order by number: %w", err)
	}
	return o, nil
}

// ListActive órdenes en estados activos, ordenadas por order_number.
func (r *LoadingOrderRepo) ListActive(ctx context.Context) ([]*entity.LoadingOrder, error) {
	query := `
		SELECT ` + loadingOrderColumns + `
		FROM loading_orders
		WHERE status = ANY($1)
		ORDER BY order_number`
	rows, err := r.q.Query(ctx, query, entity.ActiveOrderStatuses)
	if err != nil {
		return nil, fmt.Errorf("list active orders: %w", err)
	}
	defer rows.Close()

	var list []*entity.LoadingOrder
	for rows.Next() {
		o, err := scanLoadingOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan loading order: %w", err)
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

// GetForUpdate obtiene la orden y bloquea la fila (SELECT FOR UPDATE).
func (r *LoadingOrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.LoadingOrder, error) {
	o, err := r.getOne(ctx, `SELECT `+loadingOrderColumns+` FROM loading_orders WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		return nil, fmt.Errorf("get loading order for update: %w", err)
	}
	return o, nil
}

// UpdateStatus cambia el estado de la orden.
func (r *LoadingOrderRepo) UpdateStatus(ctx context.Context, id, status string, at time.Time) error {
	tag, err := r.q.Exec(ctx, `UPDATE loading_orders SET status = $2, updated_at = $3 WHERE id = $1`, id, status, at)
	if err != nil {
		return fmt.Errorf("update loading order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

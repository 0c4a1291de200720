package repository

import (
	"context"

	"github.com/jhoicas/fuel-tracker/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// DepletionRepository define el puerto de persistencia de registros de agotamiento.
type DepletionRepository interface {
	Create(ctx context.Context, d *entity.Depletion) error
	ListByOrder(ctx context.Context, orderID string) ([]*entity.Depletion, error)
	// SumByBatch suma de agotamientos por lote para los lotes del alcance.
	SumByBatch(ctx context.Context, scope entity.Scope) (map[string]decimal.Decimal, error)
	// DeleteByOrder elimina los registros de la orden y devuelve cuántos borró.
	DeleteByOrder(ctx context.Context, orderID string) (int64, error)
}

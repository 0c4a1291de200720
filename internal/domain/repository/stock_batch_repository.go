package repository

import (
	"context"

	"github.com/jhoicas/fuel-tracker/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// StockBatchRepository define el puerto para lotes de stock por alcance (producto + destino).
type StockBatchRepository interface {
	Create(ctx context.Context, batch *entity.StockBatch) error
	// ListAvailable lotes del alcance con remanente > 0, del más antiguo al más nuevo (received_at, id).
	ListAvailable(ctx context.Context, scope entity.Scope) ([]*entity.StockBatch, error)
	// ListByScope todos los lotes del alcance, incluso agotados (auditoría).
	ListByScope(ctx context.Context, scope entity.Scope) ([]*entity.StockBatch, error)
	// GetForUpdate bloquea la fila del lote (SELECT FOR UPDATE). Devuelve nil si no existe.
	GetForUpdate(ctx context.Context, id string) (*entity.StockBatch, error)
	UpdateRemaining(ctx context.Context, id string, remaining decimal.Decimal) error
}

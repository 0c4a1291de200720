package depletion

import (
	"context"

	"github.com/jhoicas/fuel-tracker/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad para el libro de agotamiento: si fn devuelve error no queda ningún cambio.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		orders repository.LoadingOrderRepository,
		batches repository.StockBatchRepository,
		depletions repository.DepletionRepository,
	) error) error
}

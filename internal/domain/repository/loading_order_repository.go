package repository

import (
	"context"
	"time"

	"github.com/jhoicas/fuel-tracker/internal/domain/entity"
)

// LoadingOrderRepository define el puerto de persistencia para órdenes de carga (registros canónicos).
// Las órdenes las crea el módulo de toma de pedidos; aquí solo se leen y se les cambia el estado.
type LoadingOrderRepository interface {
	Create(ctx context.Context, order *entity.LoadingOrder) error
	GetByID(ctx context.Context, id string) (*entity.LoadingOrder, error)
	GetByOrderNumber(ctx context.Context, orderNumber string) (*entity.LoadingOrder, error)
	// ListActive devuelve las órdenes en estados activos (pool de candidatos de resolución).
	ListActive(ctx context.Context) ([]*entity.LoadingOrder, error)
	// GetForUpdate bloquea la fila de la orden (SELECT FOR UPDATE) dentro de una transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.LoadingOrder, error)
	UpdateStatus(ctx context.Context, id, status string, at time.Time) error
}

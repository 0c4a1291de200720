package depletion

import (
	"context"
	"fmt"

	"github.com/jhoicas/fuel-tracker/internal/application/dto"
	"github.com/jhoicas/fuel-tracker/internal/domain"
	"github.com/jhoicas/fuel-tracker/internal/domain/entity"
	"github.com/shopspring/decimal"
)

func (l *Ledger) loadOrder(ctx context.Context, orderID string) (*entity.LoadingOrder, error) {
	order, err := l.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	return order, nil
}

// DepleteOrder agota stock para la orden orderID. quantity nil usa la cantidad solicitada de la orden.
// Solo aplica a órdenes en LOADING o LOADED (reagotar tras una reversa); antes de cargar,
// el agotamiento lo dispara la transición a LOADED.
func (l *Ledger) DepleteOrder(ctx context.Context, orderID string, quantity *decimal.Decimal) (*dto.PlanSummary, error) {
	order, err := l.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != entity.OrderStatusLoading && order.Status != entity.OrderStatusLoaded {
		return nil, fmt.Errorf("agotar orden en %s: %w", order.Status, domain.ErrInvalidTransition)
	}
	qty := order.RequestedQuantity
	if quantity != nil {
		qty = *quantity
	}
	return l.Deplete(ctx, order, qty)
}

// ReverseOrder revierte los agotamientos de la orden orderID.
func (l *Ledger) ReverseOrder(ctx context.Context, orderID string) (*dto.ReversalSummary, error) {
	order, err := l.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return l.Reverse(ctx, order)
}

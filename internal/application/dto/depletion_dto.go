package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AllocationDTO porción de un lote asignada a una orden.
type AllocationDTO struct {
	BatchID    string          `json:"batch_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	ReceivedAt time.Time       `json:"received_at"`
}

// PlanSummary resultado de un agotamiento FIFO confirmado.
type PlanSummary struct {
	OrderID     string          `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	ProductID   string          `json:"product_id"`
	Destination string          `json:"destination_id"`
	Requested   decimal.Decimal `json:"requested"`
	Allocations []AllocationDTO `json:"allocations"`
	CommittedAt time.Time       `json:"committed_at"`
}

// RestoredDTO cantidad devuelta a un lote por una reversa.
type RestoredDTO struct {
	BatchID  string          `json:"batch_id"`
	Quantity decimal.Decimal `json:"quantity"`
}

// ReversalSummary resultado de una reversa. NothingToReverse indica que no había registros (no-op).
type ReversalSummary struct {
	OrderID          string          `json:"order_id"`
	Restored         []RestoredDTO   `json:"restored"`
	Total            decimal.Decimal `json:"total"`
	NothingToReverse bool            `json:"nothing_to_reverse"`
	ReversedAt       time.Time       `json:"reversed_at"`
}

// DepletionDTO registro de agotamiento vigente.
type DepletionDTO struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"order_id"`
	BatchID   string          `json:"batch_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	CreatedAt time.Time       `json:"created_at"`
}

// BatchAuditDTO consistencia de un lote: remanente cacheado vs. recomputado desde los agotamientos.
type BatchAuditDTO struct {
	BatchID           string          `json:"batch_id"`
	TotalQuantity     decimal.Decimal `json:"total_quantity"`
	QuantityRemaining decimal.Decimal `json:"quantity_remaining"`
	Depleted          decimal.Decimal `json:"depleted"`
	Consistent        bool            `json:"consistent"`
}

// AvailableDTO stock disponible en un alcance.
type AvailableDTO struct {
	ProductID     string          `json:"product_id"`
	DestinationID string          `json:"destination_id"`
	Available     decimal.Decimal `json:"available"`
}

// DepleteRequest cuerpo para agotar stock contra una orden. Quantity vacío usa la cantidad de la orden.
type DepleteRequest struct {
	Quantity *decimal.Decimal `json:"quantity"`
}

// TransitionRequest evento de cambio de estado de una orden.
type TransitionRequest struct {
	Status   string           `json:"status" validate:"required,oneof=PENDING APPROVED LOADING LOADED IN_TRANSIT DELIVERED CANCELLED"`
	Quantity *decimal.Decimal `json:"quantity"`
}

// TransitionResult resultado de aplicar un cambio de estado.
type TransitionResult struct {
	OrderID  string           `json:"order_id"`
	From     string           `json:"from"`
	To       string           `json:"to"`
	Plan     *PlanSummary     `json:"plan,omitempty"`
	Reversal *ReversalSummary `json:"reversal,omitempty"`
	// AlreadyDepleted la orden llegó a LOADED con agotamientos previos, que se conservan.
	AlreadyDepleted bool `json:"already_depleted,omitempty"`
}

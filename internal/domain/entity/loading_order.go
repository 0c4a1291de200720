package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del ciclo de vida de una orden de carga.
const (
	OrderStatusPending   = "PENDING"
	OrderStatusApproved  = "APPROVED"
	OrderStatusLoading   = "LOADING"
	OrderStatusLoaded    = "LOADED" // carga confirmada: dispara el agotamiento FIFO
	OrderStatusInTransit = "IN_TRANSIT"
	OrderStatusDelivered = "DELIVERED"
	OrderStatusCancelled = "CANCELLED"
)

// ActiveOrderStatuses estados elegibles para resolución de identificadores.
// DELIVERED y CANCELLED quedan fuera para no resolver contra órdenes cerradas.
var ActiveOrderStatuses = []string{
	OrderStatusPending,
	OrderStatusApproved,
	OrderStatusLoading,
	OrderStatusLoaded,
	OrderStatusInTransit,
}

// IsActiveStatus indica si el estado hace a la orden candidata para resolución.
func IsActiveStatus(status string) bool {
	for _, s := range ActiveOrderStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// LoadingOrder orden de carga de camión: el registro canónico al que se resuelven los identificadores externos.
type LoadingOrder struct {
	ID                string
	OrderNumber       string // identificador normalizado y único
	Status            string
	ProductID         string
	DestinationID     string
	RequestedQuantity decimal.Decimal // litros
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Scope alcance de stock del que consume la orden.
func (o *LoadingOrder) Scope() Scope {
	return Scope{ProductID: o.ProductID, DestinationID: o.DestinationID}
}

// IsActive indica si la orden participa en la resolución.
func (o *LoadingOrder) IsActive() bool {
	return IsActiveStatus(o.Status)
}

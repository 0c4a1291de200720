package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Scope producto + destino; agrupa los lotes que pueden abastecer una orden.
type Scope struct {
	ProductID     string
	DestinationID string
}

// Key representación estable del alcance (locks, logs).
func (s Scope) Key() string {
	return s.ProductID + "/" + s.DestinationID
}

// StockBatch lote de recepción de combustible. ReceivedAt es la clave de orden FIFO.
// Invariante: 0 <= QuantityRemaining <= TotalQuantity.
type StockBatch struct {
	ID                string
	ProductID         string
	DestinationID     string
	TotalQuantity     decimal.Decimal
	QuantityRemaining decimal.Decimal
	ReceivedAt        time.Time
	UpdatedAt         time.Time
}

// Scope alcance al que pertenece el lote.
func (b *StockBatch) Scope() Scope {
	return Scope{ProductID: b.ProductID, DestinationID: b.DestinationID}
}

// Consumed cantidad ya agotada del lote.
func (b *StockBatch) Consumed() decimal.Decimal {
	return b.TotalQuantity.Sub(b.QuantityRemaining)
}

package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Depletion vínculo inmutable (orden, lote, cantidad). Solo lo crea el libro de agotamiento.
type Depletion struct {
	ID        string
	OrderID   string
	BatchID   string
	Quantity  decimal.Decimal
	CreatedAt time.Time
}

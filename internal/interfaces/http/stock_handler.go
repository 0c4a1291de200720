package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/fuel-tracker/internal/application/depletion"
	"github.com/jhoicas/fuel-tracker/internal/application/dto"
	"github.com/jhoicas/fuel-tracker/internal/domain/entity"
)

// StockHandler consultas de stock por alcance (producto + destino).
type StockHandler struct {
	ledger *depletion.Ledger
}

// NewStockHandler construye el handler.
func NewStockHandler(ledger *depletion.Ledger) *StockHandler {
	return &StockHandler{ledger: ledger}
}

func scopeFromQuery(c *fiber.Ctx) (entity.Scope, bool) {
	s := entity.Scope{ProductID: c.Query("product_id"), DestinationID: c.Query("destination_id")}
	return s, s.ProductID != "" && s.DestinationID != ""
}

// Available godoc
// @Summary      Stock disponible en un alcance
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id      query  string  true  "producto"
// @Param        destination_id  query  string  true  "destino"
// @Success      200  {object}  dto.AvailableDTO
// @Router       /api/stock/available [get]
func (h *StockHandler) Available(c *fiber.Ctx) error {
	scope, ok := scopeFromQuery(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "product_id y destination_id requeridos"})
	}
	total, err := h.ledger.Allocator().Available(c.UserContext(), scope)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.AvailableDTO{ProductID: scope.ProductID, DestinationID: scope.DestinationID, Available: total})
}

// Audit godoc
// @Summary      Auditar consistencia de lotes contra agotamientos
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id      query  string  true  "producto"
// @Param        destination_id  query  string  true  "destino"
// @Success      200  {array}  dto.BatchAuditDTO
// @Router       /api/stock/audit [get]
func (h *StockHandler) Audit(c *fiber.Ctx) error {
	scope, ok := scopeFromQuery(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "product_id y destination_id requeridos"})
	}
	report, err := h.ledger.Audit(c.UserContext(), scope)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(report)
}

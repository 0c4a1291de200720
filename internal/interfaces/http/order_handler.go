package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/fuel-tracker/internal/application/depletion"
	"github.com/jhoicas/fuel-tracker/internal/application/dto"
)

// OrderHandler transiciones de estado y agotamientos de una orden.
type OrderHandler struct {
	transitions *depletion.TransitionUseCase
	ledger      *depletion.Ledger
}

// NewOrderHandler construye el handler.
func NewOrderHandler(transitions *depletion.TransitionUseCase, ledger *depletion.Ledger) *OrderHandler {
	return &OrderHandler{transitions: transitions, ledger: ledger}
}

// Transition godoc
// @Summary      Aplicar cambio de estado (LOADED agota, CANCELLED revierte)
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID de la orden"
// @Param        body  body  dto.TransitionRequest  true  "estado destino y cantidad opcional"
// @Success      200   {object}  dto.TransitionResult
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/transitions [post]
func (h *OrderHandler) Transition(c *fiber.Ctx) error {
	var in dto.TransitionRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	res, err := h.transitions.Apply(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(res)
}

// Deplete godoc
// @Summary      Agotar stock FIFO para una orden
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string              true   "ID de la orden"
// @Param        body  body  dto.DepleteRequest  false  "cantidad (vacío = la de la orden)"
// @Success      201   {object}  dto.PlanSummary
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/depletions [post]
func (h *OrderHandler) Deplete(c *fiber.Ctx) error {
	var in dto.DepleteRequest
	if len(c.Body()) > 0 {
		if ok, err := parseBody(c, &in); !ok {
			return err
		}
	}
	summary, err := h.ledger.DepleteOrder(c.UserContext(), c.Params("id"), in.Quantity)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(summary)
}

// Reverse godoc
// @Summary      Revertir agotamientos de una orden
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la orden"
// @Success      200  {object}  dto.ReversalSummary
// @Router       /api/orders/{id}/depletions [delete]
func (h *OrderHandler) Reverse(c *fiber.Ctx) error {
	summary, err := h.ledger.ReverseOrder(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(summary)
}

// Depletions godoc
// @Summary      Listar agotamientos vigentes de una orden
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la orden"
// @Success      200  {array}  dto.DepletionDTO
// @Router       /api/orders/{id}/depletions [get]
func (h *OrderHandler) Depletions(c *fiber.Ctx) error {
	list, err := h.ledger.Depletions(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list)
}

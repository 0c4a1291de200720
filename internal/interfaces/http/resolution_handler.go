package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/fuel-tracker/internal/application/dto"
	"github.com/jhoicas/fuel-tracker/internal/application/resolution"
)

// ResolutionHandler resuelve identificadores externos a órdenes de carga.
type ResolutionHandler struct {
	orchestrator *resolution.Orchestrator
}

// NewResolutionHandler construye el handler.
func NewResolutionHandler(orchestrator *resolution.Orchestrator) *ResolutionHandler {
	return &ResolutionHandler{orchestrator: orchestrator}
}

// Resolve godoc
// @Summary      Resolver identificador de orden
// @Tags         resolution
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ResolveRequest  true  "identificador crudo (OCR, mensaje)"
// @Success      200   {object}  dto.ResolveResponse
// @Failure      404   {object}  dto.UnresolvedResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/resolve [post]
func (h *ResolutionHandler) Resolve(c *fiber.Ctx) error {
	var in dto.ResolveRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	order, meta, err := h.orchestrator.Resolve(c.UserContext(), in.Identifier)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewResolveResponse(order, meta))
}

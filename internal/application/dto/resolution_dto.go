package dto

import (
	"time"

	"github.com/jhoicas/fuel-tracker/internal/domain"
	"github.com/jhoicas/fuel-tracker/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ResolveRequest identificador crudo extraído de un documento o mensaje.
type ResolveRequest struct {
	Identifier string `json:"identifier" validate:"required,max=128"`
}

// LoadingOrderDTO vista de una orden de carga.
type LoadingOrderDTO struct {
	ID                string          `json:"id"`
	OrderNumber       string          `json:"order_number"`
	Status            string          `json:"status"`
	ProductID         string          `json:"product_id"`
	DestinationID     string          `json:"destination_id"`
	RequestedQuantity decimal.Decimal `json:"requested_quantity"`
}

// MatchDTO metadatos de auditoría de la resolución.
type MatchDTO struct {
	OriginalIdentifier string  `json:"original_identifier"`
	ResolvedIdentifier string  `json:"resolved_identifier"`
	Method             string  `json:"method"`
	Confidence         float64 `json:"confidence"`
	ElapsedMs          float64 `json:"elapsed_ms"`
}

// ResolveResponse orden resuelta más metadatos.
type ResolveResponse struct {
	Order LoadingOrderDTO `json:"order"`
	Match MatchDTO        `json:"match"`
}

// StageAttemptDTO etapa intentada en una resolución fallida.
type StageAttemptDTO struct {
	Stage     string  `json:"stage"`
	ElapsedMs float64 `json:"elapsed_ms"`
	BestScore float64 `json:"best_score"`
	Note      string  `json:"note,omitempty"`
}

// UnresolvedResponse cuerpo de error cuando ninguna etapa resolvió.
type UnresolvedResponse struct {
	ErrorResponse
	Attempts []StageAttemptDTO `json:"attempts"`
}

// Ms convierte una duración a milisegundos con decimales.
func Ms(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}

// NewResolveResponse arma la respuesta de una resolución exitosa.
func NewResolveResponse(order *entity.LoadingOrder, meta *entity.MatchMetadata) ResolveResponse {
	return ResolveResponse{
		Order: LoadingOrderDTO{
			ID:                order.ID,
			OrderNumber:       order.OrderNumber,
			Status:            order.Status,
			ProductID:         order.ProductID,
			DestinationID:     order.DestinationID,
			RequestedQuantity: order.RequestedQuantity,
		},
		Match: MatchDTO{
			OriginalIdentifier: meta.OriginalIdentifier,
			ResolvedIdentifier: meta.ResolvedIdentifier,
			Method:             meta.Method,
			Confidence:         meta.Confidence,
			ElapsedMs:          Ms(meta.Elapsed),
		},
	}
}

// NewUnresolvedResponse arma el cuerpo de error con la traza de etapas.
func NewUnresolvedResponse(err *domain.UnresolvedError) UnresolvedResponse {
	body := UnresolvedResponse{
		ErrorResponse: ErrorResponse{Code: "UNRESOLVED", Message: err.Error()},
		Attempts:      make([]StageAttemptDTO, 0, len(err.Attempts)),
	}
	for _, a := range err.Attempts {
		body.Attempts = append(body.Attempts, StageAttemptDTO{
			Stage:     a.Stage,
			ElapsedMs: Ms(a.Elapsed),
			BestScore: a.BestScore,
			Note:      a.Note,
		})
	}
	return body
}

package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")

	ErrNormalizationRejected = errors.New("identificador con formato inválido")
	ErrUnresolved            = errors.New("identificador no resuelto")
	ErrStaleAllocation       = errors.New("plan de asignación obsoleto")
	ErrAlreadyDepleted       = errors.New("la orden ya tiene agotamientos registrados")
	ErrInvalidTransition     = errors.New("transición de estado no permitida")

	// ErrCorrectionUnavailable nunca sale del pipeline de resolución: se degrada a "sin corrección".
	ErrCorrectionUnavailable = errors.New("servicio de corrección no disponible")
)

// NormalizationRejectedError el identificador crudo no tiene la forma de dominio; no se intentó ninguna etapa.
type NormalizationRejectedError struct {
	Raw string
}

func (e *NormalizationRejectedError) Error() string {
	return fmt.Sprintf("%s: %q", ErrNormalizationRejected, e.Raw)
}

func (e *NormalizationRejectedError) Unwrap() error { return ErrNormalizationRejected }

// StageAttempt traza de una etapa de resolución intentada.
type StageAttempt struct {
	Stage     string
	Elapsed   time.Duration
	BestScore float64 // mejor score visto en la etapa (0 si no aplica)
	Note      string
}

// UnresolvedError todas las etapas se agotaron sin resolver.
type UnresolvedError struct {
	Raw        string
	Normalized string
	Attempts   []StageAttempt
	Elapsed    time.Duration
}

func (e *UnresolvedError) Error() string {
	stages := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		stages = append(stages, fmt.Sprintf("%s(%s)", a.Stage, a.Elapsed.Round(time.Microsecond)))
	}
	return fmt.Sprintf("%s: %q tras [%s] en %s", ErrUnresolved, e.Raw, strings.Join(stages, " -> "), e.Elapsed.Round(time.Microsecond))
}

func (e *UnresolvedError) Unwrap() error { return ErrUnresolved }

// InsufficientStockError los lotes del alcance no cubren la cantidad pedida.
type InsufficientStockError struct {
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("%s: disponible %s, solicitado %s", ErrInsufficientStock, e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// StaleAllocationError la revalidación al hacer commit detectó que otro commit consumió el remanente.
type StaleAllocationError struct {
	BatchID   string
	Needed    decimal.Decimal
	Remaining decimal.Decimal
}

func (e *StaleAllocationError) Error() string {
	return fmt.Sprintf("%s: lote %s necesita %s, quedan %s", ErrStaleAllocation, e.BatchID, e.Needed, e.Remaining)
}

func (e *StaleAllocationError) Unwrap() error { return ErrStaleAllocation }

package ports

import "context"

// CorrectionService define el puerto de salida hacia el servicio externo de corrección de identificadores
// (un LLM o un microservicio HTTP). Cualquier adaptador (HTTP genérico, Anthropic, Gemini, mock)
// debe implementar esta interfaz.
//
// La respuesta es el texto crudo del servicio; su gramática es exactamente una de:
//
//	MATCH: <id>
//	CONFIDENCE: <0-100>
//
// o la línea centinela NO_MATCH. La validación y el parseo los hace la capa de aplicación.
type CorrectionService interface {
	// Suggest envía el identificador crudo y la lista acotada de candidatos activos.
	// El contexto debe llevar un timeout para evitar bloqueos en llamadas externas.
	Suggest(ctx context.Context, identifier string, candidates []string) (string, error)
}

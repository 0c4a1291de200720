package entity

import "time"

// Métodos de resolución de identificadores.
const (
	MatchMethodExact        = "exact"
	MatchMethodLocalFuzzy   = "local_fuzzy"
	MatchMethodAICorrection = "ai_correction"
)

// MatchMetadata registro de auditoría de un intento de resolución. No se persiste; se devuelve para log.
type MatchMetadata struct {
	OriginalIdentifier string
	ResolvedIdentifier string
	Method             string
	Confidence         float64
	Elapsed            time.Duration
}

package matching

import (
	"sort"
	"strings"
)

// DefaultLocalThreshold score mínimo para aceptar un match difuso local.
const DefaultLocalThreshold = 0.7

// Candidate identificador de una orden activa con su score frente a la entrada.
type Candidate struct {
	Identifier string
	Score      float64
}

// LocalMatcher resuelve contra el pool de identificadores activos sin salir del proceso:
// primero coincidencia exacta (sin normalizar, sin umbral), luego el mejor match difuso.
type LocalMatcher struct {
	scorer    *Scorer
	threshold float64
}

// NewLocalMatcher construye el matcher. threshold <= 0 usa DefaultLocalThreshold.
func NewLocalMatcher(scorer *Scorer, threshold float64) *LocalMatcher {
	if scorer == nil {
		scorer = NewScorer(nil)
	}
	if threshold <= 0 {
		threshold = DefaultLocalThreshold
	}
	return &LocalMatcher{scorer: scorer, threshold: threshold}
}

// Threshold umbral configurado.
func (m *LocalMatcher) Threshold() float64 {
	return m.threshold
}

// Exact busca raw en el pool sin distinguir mayúsculas. Gana siempre, con confianza 1.0.
func (m *LocalMatcher) Exact(raw string, pool []string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	for _, id := range pool {
		if strings.EqualFold(raw, id) {
			return id, true
		}
	}
	return "", false
}

// Best devuelve el candidato de mayor score y si supera el umbral.
// Empates: gana el identificador lexicográficamente menor, así el resultado no depende
// del orden en que el repositorio devuelve el pool.
func (m *LocalMatcher) Best(raw string, pool []string) (Candidate, bool) {
	normalized := m.scorer.normalizer.Normalize(raw)
	if normalized == "" {
		return Candidate{}, false
	}
	var best Candidate
	found := false
	for _, id := range pool {
		score := m.scorer.Score(normalized, id)
		if !found || score > best.Score || (score == best.Score && id < best.Identifier) {
			best = Candidate{Identifier: id, Score: score}
			found = true
		}
	}
	if !found {
		return Candidate{}, false
	}
	return best, best.Score >= m.threshold
}

// Rank devuelve hasta n candidatos ordenados por score descendente (empates lexicográficos).
// Se usa para acotar la lista que se envía al servicio de corrección.
func (m *LocalMatcher) Rank(raw string, pool []string, n int) []Candidate {
	normalized := m.scorer.normalizer.Normalize(raw)
	ranked := make([]Candidate, 0, len(pool))
	for _, id := range pool {
		ranked = append(ranked, Candidate{Identifier: id, Score: m.scorer.Score(normalized, id)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Identifier < ranked[j].Identifier
	})
	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

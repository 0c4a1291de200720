package matching

// Pesos fijos de las tres heurísticas.
const (
	alignmentWeight = 0.5
	frequencyWeight = 0.3
	positionWeight  = 0.2
)

// Scorer calcula una similitud acotada en [0,1] entre dos identificadores.
// Las tres sub-métricas son simétricas, por lo que Score(a,b) == Score(b,a).
type Scorer struct {
	normalizer *Normalizer
}

// NewScorer construye el scorer sobre un normalizador (nil = normalizador por defecto).
func NewScorer(n *Normalizer) *Scorer {
	if n == nil {
		n = defaultNormalizer
	}
	return &Scorer{normalizer: n}
}

// Score normaliza ambos argumentos y devuelve la similitud; 0 si alguno normaliza a vacío.
func (s *Scorer) Score(a, b string) float64 {
	na, nb := s.normalizer.Normalize(a), s.normalizer.Normalize(b)
	if na == "" || nb == "" {
		return 0
	}
	return ScoreNormalized(na, nb)
}

// ScoreNormalized combina las sub-métricas sobre identificadores ya normalizados.
func ScoreNormalized(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	score := alignmentWeight*AlignmentScore(a, b) +
		frequencyWeight*FrequencyScore(a, b) +
		positionWeight*PositionScore(a, b)
	switch {
	case score < 0:
		return 0
	case score > 1:
		return 1
	}
	return score
}

// AlignmentScore razón basada en la subsecuencia común más larga: 2*LCS / (len(a)+len(b)).
func AlignmentScore(a, b string) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 0
	}
	return 2 * float64(lcsLength(a, b)) / float64(total)
}

// FrequencyScore fracción de caracteres compartidos entre los multiconjuntos de ambos strings.
// Solo se define con longitudes iguales (si no, 0): detecta transposiciones de dígitos sin importar la posición.
func FrequencyScore(a, b string) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var counts [256]int
	for i := 0; i < len(a); i++ {
		counts[a[i]]++
	}
	shared := 0
	for i := 0; i < len(b); i++ {
		if counts[b[i]] > 0 {
			counts[b[i]]--
			shared++
		}
	}
	return float64(shared) / float64(len(a))
}

// PositionScore fracción de posiciones (hasta la longitud menor) con el mismo carácter, menos una
// penalización proporcional a la diferencia de longitudes sobre la longitud mayor.
// Premia errores de OCR que conservan la posición pero corrompen un valor.
func PositionScore(a, b string) float64 {
	shorter, longer := len(a), len(b)
	if shorter > longer {
		shorter, longer = longer, shorter
	}
	if shorter == 0 {
		return 0
	}
	same := 0
	for i := 0; i < shorter; i++ {
		if a[i] == b[i] {
			same++
		}
	}
	score := float64(same)/float64(shorter) - float64(longer-shorter)/float64(longer)
	if score < 0 {
		return 0
	}
	return score
}

func lcsLength(a, b string) int {
	if len(a) < len(b) {
		a, b = b, a
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				curr[j] = prev[j-1] + 1
			case prev[j] >= curr[j-1]:
				curr[j] = prev[j]
			default:
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

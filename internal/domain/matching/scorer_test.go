package matching_test

import (
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/fuel-tracker/internal/domain/matching"
)

func TestScore_IdentidadEsUno(t *testing.T) {
	s := matching.NewScorer(nil)
	for _, id := range []string{"LO12345", "ab-001", "X99"} {
		assert.Equal(t, 1.0, s.Score(id, id), "score(%q,%q)", id, id)
	}
}

func TestScore_VacioEsCero(t *testing.T) {
	s := matching.NewScorer(nil)
	assert.Equal(t, 0.0, s.Score("", "LO123"))
	assert.Equal(t, 0.0, s.Score("LO123", "12345"))
}

func TestScore_Simetrico(t *testing.T) {
	gofakeit.Seed(7)
	s := matching.NewScorer(nil)
	for i := 0; i < 300; i++ {
		a := gofakeit.LetterN(uint(1+i%3)) + gofakeit.DigitN(uint(2+i%6))
		b := gofakeit.LetterN(uint(1+(i+1)%3)) + gofakeit.DigitN(uint(2+(i*7)%6))
		assert.Equal(t, s.Score(a, b), s.Score(b, a), "a=%q b=%q", a, b)
	}
}

func TestScore_TransposicionAdyacente(t *testing.T) {
	s := matching.NewScorer(nil)
	score := s.Score("LO12354", "LO12345")
	assert.GreaterOrEqual(t, score, 0.7)
	assert.Less(t, score, 1.0)
}

func TestSubScores(t *testing.T) {
	// Transposición: mismos caracteres, distinta posición.
	assert.Equal(t, 1.0, matching.FrequencyScore("LO12345", "LO12354"))
	assert.InDelta(t, 5.0/7.0, matching.PositionScore("LO12345", "LO12354"), 1e-12)
	assert.InDelta(t, 12.0/14.0, matching.AlignmentScore("LO12345", "LO12354"), 1e-12)

	// Longitudes distintas: frecuencia no definida y posición penalizada.
	assert.Equal(t, 0.0, matching.FrequencyScore("LO123", "LO1234"))
	assert.InDelta(t, 1.0-1.0/6.0, matching.PositionScore("LO123", "LO1234"), 1e-12)

	// OCR que cambia un valor conservando la posición.
	assert.InDelta(t, 6.0/7.0, matching.PositionScore("LO12845", "LO12345"), 1e-12)
}

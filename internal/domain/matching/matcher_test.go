package matching_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/fuel-tracker/internal/domain/matching"
)

var pool = []string{"LO10020", "LO12345", "LO55501", "TX12345"}

func TestExact_IgnoraMayusculasYUmbral(t *testing.T) {
	// Umbral imposible: la coincidencia exacta no pasa por él.
	m := matching.NewLocalMatcher(nil, 1.1)
	id, ok := m.Exact(" lo12345 ", pool)
	require.True(t, ok)
	assert.Equal(t, "LO12345", id)

	_, ok = m.Exact("LO-12345", pool)
	assert.False(t, ok, "la coincidencia exacta no normaliza")
}

func TestBest_TransposicionSuperaUmbral(t *testing.T) {
	m := matching.NewLocalMatcher(nil, 0)
	assert.Equal(t, matching.DefaultLocalThreshold, m.Threshold())

	best, ok := m.Best("LO-12354", pool)
	require.True(t, ok)
	assert.Equal(t, "LO12345", best.Identifier)
	assert.GreaterOrEqual(t, best.Score, 0.7)
}

func TestBest_SinCandidatoSobreUmbral(t *testing.T) {
	m := matching.NewLocalMatcher(nil, 0.7)
	best, ok := m.Best("QQ9", pool)
	assert.False(t, ok)
	assert.Less(t, best.Score, 0.7)

	_, ok = m.Best("LO12345", nil)
	assert.False(t, ok)

	_, ok = m.Best("###", pool)
	assert.False(t, ok, "entrada no normalizable nunca hace match")
}

func TestBest_EmpateLexicografico(t *testing.T) {
	m := matching.NewLocalMatcher(nil, 0.7)
	for _, p := range [][]string{{"LO1235", "LO1233"}, {"LO1233", "LO1235"}} {
		best, ok := m.Best("LO1234", p)
		require.True(t, ok)
		assert.Equal(t, "LO1233", best.Identifier, "pool %v", p)
	}
}

func TestRank_OrdenYTope(t *testing.T) {
	m := matching.NewLocalMatcher(nil, 0.7)
	ranked := m.Rank("LO12354", pool, 2)
	require.Len(t, ranked, 2)
	assert.Equal(t, "LO12345", ranked[0].Identifier)
	assert.GreaterOrEqual(t, ranked[0].Score, ranked[1].Score)

	assert.Len(t, m.Rank("LO12354", pool, 0), len(pool))
}

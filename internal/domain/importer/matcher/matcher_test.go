package matcher

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cats(names ...string) []Category {
	out := make([]Category, len(names))
	for i, n := range names {
		out[i] = Category{ID: uuid.New(), Name: n, Type: "expense"}
	}
	return out
}

func TestBestSimilarity(t *testing.T) {
	t.Run("exact normalized match scores one", func(t *testing.T) {
		m := BestSimilarity("transporte", cats("Transporte", "Lazer"), MatchThreshold)

		require.NotNil(t, m)
		assert.Equal(t, "Transporte", m.CategoryName)
		assert.Equal(t, 1.0, m.Score)
	})

	t.Run("accents and case do not matter", func(t *testing.T) {
		m := BestSimilarity("ALIMENTAÇÃO", cats("Alimentacao"), MatchThreshold)

		require.NotNil(t, m)
		assert.Equal(t, 1.0, m.Score)
	})

	t.Run("containment scores point nine", func(t *testing.T) {
		m := BestSimilarity("mercado", cats("Supermercado"), MatchThreshold)

		require.NotNil(t, m)
		assert.Equal(t, 0.9, m.Score)
	})

	t.Run("close spelling passes the threshold", func(t *testing.T) {
		m := BestSimilarity("transportes", cats("Transporte"), MatchThreshold)

		require.NotNil(t, m)
		assert.GreaterOrEqual(t, m.Score, MatchThreshold)
	})

	t.Run("distant text returns nil", func(t *testing.T) {
		assert.Nil(t, BestSimilarity("xyzqwk", cats("Transporte", "Lazer"), MatchThreshold))
	})

	t.Run("ties keep the first category", func(t *testing.T) {
		list := cats("Mercado", "Mercado")
		m := BestSimilarity("mercado", list, MatchThreshold)

		require.NotNil(t, m)
		assert.Equal(t, list[0].ID, m.CategoryID)
	})

	t.Run("empty text returns nil", func(t *testing.T) {
		assert.Nil(t, BestSimilarity("   ", cats("Lazer"), MatchThreshold))
	})

	t.Run("threshold gates acceptance", func(t *testing.T) {
		assert.Nil(t, BestSimilarity("mercado", cats("Supermercado"), 0.95))

		m := BestSimilarity("mercado", cats("Supermercado"), 0.5)
		require.NotNil(t, m)
		assert.Equal(t, 0.9, m.Score)
	})
}

func TestBestKeyword(t *testing.T) {
	t.Run("uber maps to transporte", func(t *testing.T) {
		m := BestKeyword("UBER TRIP 123", cats("Transporte"))

		require.NotNil(t, m)
		assert.Equal(t, "Transporte", m.CategoryName)
		assert.Equal(t, 0.85, m.Score)
	})

	t.Run("farmacia maps to saude", func(t *testing.T) {
		m := BestKeyword("FARMÁCIA SÃO PAULO", cats("Lazer", "Saúde"))

		require.NotNil(t, m)
		assert.Equal(t, "Saúde", m.CategoryName)
	})

	t.Run("keyword without a matching category returns nil", func(t *testing.T) {
		assert.Nil(t, BestKeyword("UBER TRIP 123", cats("Lazer")))
	})

	t.Run("no keyword hit returns nil", func(t *testing.T) {
		assert.Nil(t, BestKeyword("PIX RECEBIDO", cats("Transporte", "Casa")))
	})
}

func TestBest(t *testing.T) {
	t.Run("similarity wins over keyword fallback", func(t *testing.T) {
		m := Best("transporte", cats("Transporte"), MatchThreshold)

		require.NotNil(t, m)
		assert.Equal(t, 1.0, m.Score)
	})

	t.Run("falls back to keywords below threshold", func(t *testing.T) {
		m := Best("POSTO SHELL BR 101", cats("Transporte"), MatchThreshold)

		require.NotNil(t, m)
		assert.Equal(t, 0.85, m.Score)
	})
}

func TestRank(t *testing.T) {
	list := cats("Transporte", "Transferência", "Lazer")
	ranked := Rank("transp", list, 2)

	require.NotEmpty(t, ranked)
	assert.Equal(t, "Transporte", ranked[0].Name)
	assert.LessOrEqual(t, len(ranked), 2)
}

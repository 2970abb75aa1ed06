package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMappingPairs(t *testing.T) {
	mapping, err := parseMappingPairs([]string{"date=Data", "amount=Valor", "wallet=Conta"})
	require.NoError(t, err)
	assert.Equal(t, "Data", mapping["date"])
	assert.Equal(t, "Conta", mapping["wallet"])

	_, err = parseMappingPairs([]string{"date"})
	assert.Error(t, err)

	_, err = parseMappingPairs([]string{"bogus=Coluna"})
	assert.Error(t, err)
}

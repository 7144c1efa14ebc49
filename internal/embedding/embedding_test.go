package embedding_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mptyl/thoth-sqlgen/internal/embedding"
)

func TestEmbedReturnsUnitLengthVector(t *testing.T) {
	p := embedding.New(32)
	vec, err := p.Embed(context.Background(), "how many orders were placed last month")
	require.NoError(t, err)
	require.Len(t, vec, 32)

	var sumSq float64
	for _, v := range vec {
		sumSq += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sumSq), 1e-3)
}

func TestEmbedIsDeterministic(t *testing.T) {
	p := embedding.New(16)
	a, err := p.Embed(context.Background(), "same text")
	require.NoError(t, err)
	b, err := p.Embed(context.Background(), "same text")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestEmbedDefaultsDimensionWhenNonPositive(t *testing.T) {
	p := embedding.New(0)
	assert.Equal(t, 64, p.Dim)
}

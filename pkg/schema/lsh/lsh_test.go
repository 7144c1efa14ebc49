package lsh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryFindsExactMatch(t *testing.T) {
	idx := NewIndex()
	idx.Add("orders", "status", "shipped")
	idx.Add("orders", "status", "pending")
	idx.Add("customers", "country", "Italy")

	hits := idx.Query("shipped")
	require.NotEmpty(t, hits)
	assert.Equal(t, "orders", hits[0].Table)
	assert.Equal(t, "status", hits[0].Column)
}

func TestQueryEmptyKeywordReturnsNil(t *testing.T) {
	idx := NewIndex()
	idx.Add("orders", "status", "shipped")
	assert.Nil(t, idx.Query("  "))
}

func TestQueryUnrelatedKeywordReturnsNoMatch(t *testing.T) {
	idx := NewIndex()
	idx.Add("orders", "status", "shipped")
	hits := idx.Query("zzzqqqxxx")
	assert.Empty(t, hits)
}

func TestLenTracksAddedEntries(t *testing.T) {
	idx := NewIndex()
	assert.Equal(t, 0, idx.Len())
	idx.Add("orders", "status", "shipped")
	idx.Add("orders", "status", "pending")
	assert.Equal(t, 2, idx.Len())
}

func TestQueryIsDeterministicallySorted(t *testing.T) {
	idx := NewIndex()
	idx.Add("zeta", "col", "match")
	idx.Add("alpha", "col", "match")

	first := idx.Query("match")
	second := idx.Query("match")
	require.Equal(t, first, second)
	if len(first) == 2 {
		assert.Equal(t, "alpha", first[0].Table)
	}
}

// Package embedding provides the deterministic, dependency-free
// EmbeddingProvider used to feed pkg/vectorstore's backends. No client in
// the retrieval pack exposes an embeddings endpoint (pkg/llm.Client is
// Generate/CountTokens only), so this package builds feature-hashed
// vectors locally instead of fabricating a provider SDK dependency.
package embedding

import (
	"context"
	"hash/fnv"
	"strings"
)

// Provider is a deterministic bag-of-shingles hashing embedder: each
// token hashes into one of Dim buckets and the bucket is incremented,
// mirroring pkg/schema/lsh's saltedHash shingle scheme but producing a
// dense vector instead of a MinHash signature.
type Provider struct {
	Dim int
}

// New returns a Provider producing dim-dimensional vectors.
func New(dim int) *Provider {
	if dim <= 0 {
		dim = 64
	}
	return &Provider{Dim: dim}
}

// Embed implements vectorstore.EmbeddingProvider.
func (p *Provider) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, p.Dim)
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(tok))
		vec[int(h.Sum32())%p.Dim]++
	}
	normalize(vec)
	return vec, nil
}

func normalize(vec []float32) {
	var sumSq float32
	for _, v := range vec {
		sumSq += v * v
	}
	if sumSq == 0 {
		return
	}
	norm := sqrt32(sumSq)
	for i := range vec {
		vec[i] /= norm
	}
}

func sqrt32(v float32) float32 {
	x := v
	for i := 0; i < 20; i++ {
		x = 0.5 * (x + v/x)
	}
	return x
}

package similarity

import (
	"math"
	"sort"

	"dealscope/internal/corpus"
	"dealscope/internal/domain"
)

// Query defaults.
const (
	DefaultTopK      = 5
	DefaultThreshold = 0.4
)

// Index answers nearest-neighbor queries over the corpus by brute-force
// cosine similarity. The corpus stays small enough (hundreds to low
// thousands) that scoring every entry per query is fine.
type Index struct {
	store    *corpus.Store
	embedder domain.Embedder
}

// NewIndex creates an index over the given corpus store.
func NewIndex(store *corpus.Store, embedder domain.Embedder) *Index {
	return &Index{store: store, embedder: embedder}
}

// Query returns the topK corpus entries most similar to the listing, best
// first, keeping only scores at or above threshold and excluding the
// listing's own link. An empty corpus yields an empty result.
func (x *Index) Query(listing *domain.Listing, topK int, threshold float64) ([]domain.SimilarListing, error) {
	entries := x.store.Entries()
	if len(entries) == 0 {
		return nil, nil
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	query := listing.Embedding
	if query == nil {
		vec, err := x.embedder.Embed(listing.TextContent())
		if err != nil {
			return nil, err
		}
		listing.Embedding = vec
		query = vec
	}
	var results []domain.SimilarListing
	for i := range entries {
		score := cosine(query, entries[i].Embedding)
		if score >= threshold {
			results = append(results, domain.SimilarListing{Score: score, Entry: &entries[i]})
		}
	}
	sort.SliceStable(results, func(a, b int) bool { return results[a].Score > results[b].Score })
	// Drop the query listing itself if it is already persisted
	filtered := results[:0]
	for _, r := range results {
		if r.Entry.Link == listing.Link {
			continue
		}
		filtered = append(filtered, r)
	}
	if len(filtered) > topK {
		filtered = filtered[:topK]
	}
	return filtered, nil
}

// cosine computes cosine similarity between two vectors. Mismatched lengths
// compare the shared prefix; zero vectors score 0.
func cosine(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

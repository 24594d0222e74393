package features

import (
	"dealscope/internal/domain"
)

// EngineeredCount is the number of feature slots ahead of the embedding:
// price ratio, average similarity, max similarity, neighbor count.
const EngineeredCount = 4

// Extractor builds the fixed-width feature vector consumed by both
// classifiers: engineered price/similarity statistics followed by the
// listing's own embedding.
type Extractor struct {
	embedder domain.Embedder
}

// NewExtractor creates an extractor backed by the given embedder.
func NewExtractor(embedder domain.Embedder) *Extractor {
	return &Extractor{embedder: embedder}
}

// Width returns the feature vector width.
func (e *Extractor) Width() int {
	return EngineeredCount + e.embedder.Dimension()
}

// Extract computes the feature vector for a listing at the given price
// against its retrieved neighbors. Missing price signal is neutral, not an
// error: the ratio defaults to 1.0 when no neighbor carries a price or the
// neighbor mean is zero.
func (e *Extractor) Extract(listing *domain.Listing, price int, similar []domain.SimilarListing) ([]float64, error) {
	ratio := 1.0
	avgSim := 0.0
	maxSim := 0.0
	count := 0

	if len(similar) > 0 {
		count = len(similar)
		var priceSum float64
		priced := 0
		var simSum float64
		for _, s := range similar {
			simSum += s.Score
			if s.Score > maxSim {
				maxSim = s.Score
			}
			if p := s.Entry.Details.Price; p != nil {
				priceSum += float64(*p)
				priced++
			}
		}
		avgSim = simSum / float64(count)
		if priced > 0 {
			mean := priceSum / float64(priced)
			if mean != 0 {
				ratio = float64(price) / mean
			}
		}
	}

	embedding := listing.Embedding
	if embedding == nil {
		vec, err := e.embedder.Embed(listing.TextContent())
		if err != nil {
			return nil, err
		}
		listing.Embedding = vec
		embedding = vec
	}

	out := make([]float64, 0, EngineeredCount+len(embedding))
	out = append(out, ratio, avgSim, maxSim, float64(count))
	out = append(out, embedding...)
	return out, nil
}

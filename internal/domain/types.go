package domain

import "strings"

// Listing is a single marketplace item as produced by the scraper.
// Price is nil when the seller did not publish one.
type Listing struct {
	Link        string   `json:"link"`
	Title       string   `json:"title"`
	Price       *int     `json:"price"`
	Description string   `json:"description,omitempty"`
	Attributes  []string `json:"attributes,omitempty"`
	Location    string   `json:"location,omitempty"`
	Images      []string `json:"images,omitempty"`

	// OldPrice is set when a previously seen listing reappears at a
	// different price.
	OldPrice *int `json:"old_price,omitempty"`

	// Embedding caches the vector computed for this listing within one
	// evaluate/train call chain. Not persisted with the listing itself.
	Embedding []float64 `json:"-"`
}

// TextContent returns the text used for semantic comparison: title,
// description and attributes joined by single spaces, trimmed.
func (l *Listing) TextContent() string {
	attrs := strings.Join(l.Attributes, " ")
	return strings.TrimSpace(l.Title + " " + l.Description + " " + attrs)
}

// CorpusEntry is a listing as persisted in the comparison corpus.
type CorpusEntry struct {
	Link      string    `json:"link"`
	Title     string    `json:"title"`
	Price     *int      `json:"price"`
	Embedding []float64 `json:"embedding"`
	Details   Listing   `json:"details"`
	Reviewed  bool      `json:"reviewed"`
}

// SimilarListing is a corpus entry matched against a query listing.
type SimilarListing struct {
	Score float64
	Entry *CorpusEntry
}

// SimilarSummary is the display form of a matched neighbor.
type SimilarSummary struct {
	Title      string  `json:"title"`
	Price      *int    `json:"price"`
	Similarity float64 `json:"similarity"`
	Link       string  `json:"link"`
}

// DealStats reports the price context behind a rating. Present only when
// at least one priced neighbor exists.
type DealStats struct {
	CurrentPrice    int              `json:"current_price"`
	AveragePrice    float64          `json:"average_price"`
	PriceDifference float64          `json:"price_difference"`
	SampleSize      int              `json:"sample_size"`
	SimilarListings []SimilarSummary `json:"similar_listings"`
}

// Evaluation is the full result of scoring one listing.
type Evaluation struct {
	Rating   string
	Stats    *DealStats
	Interest string
}

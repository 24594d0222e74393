package evaluator

import (
	"fmt"
	"math"

	"dealscope/internal/corpus"
	"dealscope/internal/domain"
	"dealscope/internal/features"
	"dealscope/internal/logging"
	"dealscope/internal/similarity"
)

// Evaluator scores new listings against the corpus and absorbs human
// feedback into the two online classifiers. It owns the corpus store and
// classifier pair; construct one per process.
type Evaluator struct {
	store     *corpus.Store
	index     *similarity.Index
	extractor *features.Extractor
	dealClf   domain.OnlineClassifier
	interest  domain.OnlineClassifier
	logger    *logging.Logger
	topK      int
	threshold float64
}

// New creates an evaluator over the given components.
func New(store *corpus.Store, index *similarity.Index, extractor *features.Extractor,
	deal, interest domain.OnlineClassifier, logger *logging.Logger, topK int, threshold float64) *Evaluator {
	if topK <= 0 {
		topK = similarity.DefaultTopK
	}
	if threshold == 0 {
		threshold = similarity.DefaultThreshold
	}
	return &Evaluator{
		store:     store,
		index:     index,
		extractor: extractor,
		dealClf:   deal,
		interest:  interest,
		logger:    logger,
		topK:      topK,
		threshold: threshold,
	}
}

// AddListing ingests a listing into the corpus. Duplicate links are ignored.
func (e *Evaluator) AddListing(listing *domain.Listing) {
	e.store.Add(listing)
}

// EvaluateDeal rates a listing against its nearest corpus neighbors.
// A missing price short-circuits before any embedding work. The heuristic
// rating is always computed first; a fitted deal classifier overrides it,
// and a failed prediction keeps the heuristic value already in hand.
func (e *Evaluator) EvaluateDeal(listing *domain.Listing) domain.Evaluation {
	if listing.Price == nil {
		return domain.Evaluation{Rating: domain.RatingUnknownPrice, Interest: domain.InterestUnknown}
	}
	price := *listing.Price

	similar, err := e.index.Query(listing, e.topK, e.threshold)
	if err != nil {
		e.logger.Warn("similarity query failed for %s: %v", listing.Link, err)
	}

	rating, stats := heuristicRating(price, similar)

	// Both classifiers share one feature vector, computed even with zero
	// neighbors.
	feats, err := e.extractor.Extract(listing, price, similar)
	if err != nil {
		e.logger.Warn("feature extraction failed for %s: %v", listing.Link, err)
		return domain.Evaluation{Rating: rating, Stats: stats, Interest: domain.InterestUnknown}
	}

	if e.dealClf.IsFitted() {
		if predicted, err := e.dealClf.Predict(feats); err != nil {
			e.logger.Warn("deal prediction failed, using heuristic: %v", err)
		} else {
			rating = predicted
		}
	}

	interest := domain.InterestUnknown
	if e.interest.IsFitted() {
		if predicted, err := e.interest.Predict(feats); err != nil {
			e.logger.Warn("interest prediction failed: %v", err)
		} else {
			interest = predicted
		}
	}

	return domain.Evaluation{Rating: rating, Stats: stats, Interest: interest}
}

// TrainModel absorbs a human deal rating for the listing. Similarity and
// features are recomputed here rather than reused from a prior evaluation:
// the corpus may have grown since the listing was scored.
func (e *Evaluator) TrainModel(listing *domain.Listing, rating string) error {
	return e.train(e.dealClf, listing, rating, domain.DealClasses, "deal rating")
}

// TrainInterest absorbs a human interest label for the listing.
func (e *Evaluator) TrainInterest(listing *domain.Listing, interest string) error {
	return e.train(e.interest, listing, interest, domain.InterestClasses, "interest")
}

func (e *Evaluator) train(clf domain.OnlineClassifier, listing *domain.Listing, label string, classes []string, kind string) error {
	if listing.Price == nil {
		e.logger.Warn("cannot train on listing without price: %s", listing.Link)
		return nil
	}
	if !contains(classes, label) {
		return fmt.Errorf("label %q is not a valid %s", label, kind)
	}
	similar, err := e.index.Query(listing, e.topK, e.threshold)
	if err != nil {
		return fmt.Errorf("similarity query: %w", err)
	}
	feats, err := e.extractor.Extract(listing, *listing.Price, similar)
	if err != nil {
		return fmt.Errorf("feature extraction: %w", err)
	}
	if err := clf.PartialFit(feats, label, classes); err != nil {
		return fmt.Errorf("partial fit: %w", err)
	}
	e.store.MarkReviewed(listing.Link)
	e.logger.Info("updated %s classifier with label: %s", kind, label)
	return nil
}

// heuristicRating buckets the price against the mean of priced neighbors.
// Missing signal maps to sentinel ratings with absent stats.
func heuristicRating(price int, similar []domain.SimilarListing) (string, *domain.DealStats) {
	if len(similar) == 0 {
		return domain.RatingNoData, nil
	}
	var sum float64
	priced := 0
	for _, s := range similar {
		if p := s.Entry.Details.Price; p != nil {
			sum += float64(*p)
			priced++
		}
	}
	if priced == 0 {
		return domain.RatingNoPriceData, nil
	}
	avg := sum / float64(priced)
	if avg == 0 {
		return domain.RatingFree, &domain.DealStats{CurrentPrice: price, SampleSize: priced}
	}

	ratio := float64(price) / avg
	var rating string
	switch {
	case ratio < 0.70:
		rating = domain.RatingIncredible
	case ratio < 0.85:
		rating = domain.RatingGreat
	case ratio < 1.00:
		rating = domain.RatingGood
	case ratio < 1.15:
		rating = domain.RatingFair
	case ratio < 1.30:
		rating = domain.RatingSlightly
	default:
		rating = domain.RatingOverpriced
	}

	stats := &domain.DealStats{
		CurrentPrice:    price,
		AveragePrice:    round2(avg),
		PriceDifference: round2(float64(price) - avg),
		SampleSize:      priced,
	}
	for _, s := range similar {
		stats.SimilarListings = append(stats.SimilarListings, domain.SimilarSummary{
			Title:      s.Entry.Title,
			Price:      s.Entry.Details.Price,
			Similarity: round2(s.Score),
			Link:       s.Entry.Link,
		})
	}
	return rating, stats
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

package domain

// Embedder converts listing text into a fixed-length numeric vector.
// Embedding never fails for empty or missing text; the empty string maps
// to the zero vector.
type Embedder interface {
	Name() string
	Dimension() int
	Embed(text string) ([]float64, error)
}

// OnlineClassifier is a multi-class model updatable one example at a time.
// Predict is only meaningful once IsFitted reports true.
type OnlineClassifier interface {
	IsFitted() bool
	Predict(features []float64) (string, error)
	PartialFit(features []float64, label string, classes []string) error
}

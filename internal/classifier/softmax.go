package classifier

import (
	"encoding/gob"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"dealscope/internal/logging"
)

// Softmax is an online multinomial logistic regression classifier trained
// by per-example gradient steps on the log loss. One instance serves one
// label set; state is persisted to a single file after every update.
type Softmax struct {
	path   string
	logger *logging.Logger

	classes []string
	byClass map[string]int
	// weights holds one row per class: dim coefficients plus a bias term.
	weights [][]float64
	dim     int
	steps   int
}

// state is the gob-persisted form of a Softmax classifier.
type state struct {
	Classes []string
	Weights [][]float64
	Dim     int
	Steps   int
}

const (
	eta0  = 0.5
	decay = 0.01
)

// New loads a classifier from path. Missing or unreadable state falls back
// silently to a fresh, unfitted classifier.
func New(path string, logger *logging.Logger) *Softmax {
	s := &Softmax{path: path, logger: logger}
	s.load()
	return s
}

func (s *Softmax) load() {
	f, err := os.Open(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("failed to open classifier state %s: %v", s.path, err)
		}
		return
	}
	defer f.Close()
	var st state
	if err := gob.NewDecoder(f).Decode(&st); err != nil {
		s.logger.Warn("classifier state %s is corrupt, starting untrained: %v", s.path, err)
		return
	}
	s.classes = st.Classes
	s.weights = st.Weights
	s.dim = st.Dim
	s.steps = st.Steps
	s.byClass = make(map[string]int, len(st.Classes))
	for i, c := range st.Classes {
		s.byClass[c] = i
	}
}

func (s *Softmax) save() {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		s.logger.Error("failed to create classifier dir: %v", err)
		return
	}
	tmp := s.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		s.logger.Error("failed to write classifier state: %v", err)
		return
	}
	st := state{Classes: s.classes, Weights: s.weights, Dim: s.dim, Steps: s.steps}
	if err := gob.NewEncoder(f).Encode(&st); err != nil {
		_ = f.Close()
		s.logger.Error("failed to encode classifier state: %v", err)
		return
	}
	if err := f.Close(); err != nil {
		s.logger.Error("failed to flush classifier state: %v", err)
		return
	}
	if err := os.Rename(tmp, s.path); err != nil {
		s.logger.Error("failed to replace classifier state: %v", err)
	}
}

// IsFitted reports whether at least one training example has been absorbed.
// A cold classifier has no decision boundary and must not be asked to
// predict.
func (s *Softmax) IsFitted() bool { return s.steps > 0 }

// Predict returns the class with the highest score for the feature vector.
func (s *Softmax) Predict(features []float64) (string, error) {
	if !s.IsFitted() {
		return "", errors.New("classifier is not fitted")
	}
	if len(features) != s.dim {
		return "", fmt.Errorf("feature width mismatch: got %d, trained on %d", len(features), s.dim)
	}
	scores := s.scores(features)
	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}
	return s.classes[best], nil
}

// PartialFit absorbs one labeled example. The full class set must be passed
// on every call so per-class weights can be allocated before every class has
// been observed; a label outside that set is a caller bug and surfaces as an
// error. The updated state is persisted before returning.
func (s *Softmax) PartialFit(features []float64, label string, classes []string) error {
	if s.weights == nil {
		s.init(classes, len(features))
	}
	if len(features) != s.dim {
		return fmt.Errorf("feature width mismatch: got %d, trained on %d", len(features), s.dim)
	}
	if len(classes) != len(s.classes) {
		return fmt.Errorf("class set changed: got %d classes, trained with %d", len(classes), len(s.classes))
	}
	target, ok := s.byClass[label]
	if !ok {
		return fmt.Errorf("label %q is not in the declared class set", label)
	}

	probs := softmax(s.scores(features))
	lr := eta0 / (1 + decay*float64(s.steps))
	for c := range s.weights {
		indicator := 0.0
		if c == target {
			indicator = 1.0
		}
		g := lr * (indicator - probs[c])
		row := s.weights[c]
		for j, x := range features {
			row[j] += g * x
		}
		row[s.dim] += g // bias
	}
	s.steps++
	s.save()
	return nil
}

func (s *Softmax) init(classes []string, dim int) {
	s.classes = append([]string(nil), classes...)
	s.byClass = make(map[string]int, len(classes))
	for i, c := range classes {
		s.byClass[c] = i
	}
	s.dim = dim
	s.weights = make([][]float64, len(classes))
	for i := range s.weights {
		s.weights[i] = make([]float64, dim+1)
	}
}

func (s *Softmax) scores(features []float64) []float64 {
	out := make([]float64, len(s.weights))
	for c, row := range s.weights {
		z := row[s.dim]
		for j, x := range features {
			z += row[j] * x
		}
		out[c] = z
	}
	return out
}

func softmax(scores []float64) []float64 {
	maxZ := scores[0]
	for _, z := range scores[1:] {
		if z > maxZ {
			maxZ = z
		}
	}
	var sum float64
	out := make([]float64, len(scores))
	for i, z := range scores {
		out[i] = math.Exp(z - maxZ)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

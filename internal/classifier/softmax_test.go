package classifier

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealscope/internal/logging"
)

var classes = []string{"cheap", "fair", "expensive"}

func newTestClassifier(t *testing.T) (*Softmax, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clf.gob")
	return New(path, logging.New()), path
}

func TestColdClassifierIsNotFitted(t *testing.T) {
	clf, _ := newTestClassifier(t)
	assert.False(t, clf.IsFitted())

	_, err := clf.Predict([]float64{1, 2, 3})
	assert.Error(t, err)
}

func TestPartialFitThenPredict(t *testing.T) {
	clf, _ := newTestClassifier(t)
	features := []float64{0.5, 0.8, 0.9, 2}

	require.NoError(t, clf.PartialFit(features, "cheap", classes))
	assert.True(t, clf.IsFitted())

	label, err := clf.Predict(features)
	require.NoError(t, err)
	assert.Equal(t, "cheap", label)
}

func TestPartialFitSeparatesPatterns(t *testing.T) {
	clf, _ := newTestClassifier(t)
	low := []float64{0.4, 0.9, 0.95, 3}
	high := []float64{1.6, 0.9, 0.95, 3}

	for i := 0; i < 20; i++ {
		require.NoError(t, clf.PartialFit(low, "cheap", classes))
		require.NoError(t, clf.PartialFit(high, "expensive", classes))
	}

	label, err := clf.Predict(low)
	require.NoError(t, err)
	assert.Equal(t, "cheap", label)

	label, err = clf.Predict(high)
	require.NoError(t, err)
	assert.Equal(t, "expensive", label)
}

func TestStatePersistsAcrossInstances(t *testing.T) {
	clf, path := newTestClassifier(t)
	features := []float64{0.5, 0.8, 0.9, 2}
	require.NoError(t, clf.PartialFit(features, "fair", classes))

	reloaded := New(path, logging.New())
	assert.True(t, reloaded.IsFitted())
	label, err := reloaded.Predict(features)
	require.NoError(t, err)
	assert.Equal(t, "fair", label)
}

func TestCorruptStateFallsBackToUntrained(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clf.gob")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o644))

	clf := New(path, logging.New())
	assert.False(t, clf.IsFitted())
}

func TestPredictFeatureWidthMismatch(t *testing.T) {
	clf, _ := newTestClassifier(t)
	require.NoError(t, clf.PartialFit([]float64{1, 2, 3}, "cheap", classes))

	_, err := clf.Predict([]float64{1, 2, 3, 4, 5})
	assert.Error(t, err)
}

func TestPartialFitRejectsUnknownLabel(t *testing.T) {
	clf, _ := newTestClassifier(t)
	err := clf.PartialFit([]float64{1, 2, 3}, "not-a-class", classes)
	assert.Error(t, err)
	assert.False(t, clf.IsFitted())
}

func TestPartialFitRejectsWidthChange(t *testing.T) {
	clf, _ := newTestClassifier(t)
	require.NoError(t, clf.PartialFit([]float64{1, 2, 3}, "cheap", classes))
	assert.Error(t, clf.PartialFit([]float64{1, 2}, "cheap", classes))
}

// Package model trains and applies a single-layer logistic regression that
// predicts whether a user will like a listing.
package model

import (
	"math"
	"sort"
	"time"

	"github.com/vijay-prabhu/aptmatch/internal/features"
)

// DefaultMaxAge is how long a trained model stays usable
const DefaultMaxAge = 7 * 24 * time.Hour

// ModelWeights is the complete state of a trained classifier. It is
// replaced wholesale on retraining and never mutated in place.
type ModelWeights struct {
	// Weights is a features.Count x 1 matrix
	Weights [][]float64 `json:"weights"`
	Biases  []float64   `json:"biases"`

	// FeatureStats are the normalization bounds used at training time
	FeatureStats features.Stats `json:"featureStats"`

	TrainedAt    time.Time `json:"trainedAt"`
	TrainingSize int       `json:"trainingSize"`
	Accuracy     float64   `json:"accuracy"`

	ValidationAccuracy *float64 `json:"validationAccuracy,omitempty"`
	Loss               float64  `json:"loss"`
}

// IsValid reports whether m has every required field and is younger than
// DefaultMaxAge
func IsValid(m *ModelWeights) bool {
	return m.ValidAt(time.Now(), DefaultMaxAge)
}

// ValidAt reports whether m is well-formed and no older than maxAge at now
func (m *ModelWeights) ValidAt(now time.Time, maxAge time.Duration) bool {
	if m == nil || m.TrainedAt.IsZero() {
		return false
	}
	if len(m.Weights) != features.Count || len(m.Biases) != 1 {
		return false
	}
	for _, row := range m.Weights {
		if len(row) != 1 || !finite(row[0]) {
			return false
		}
	}
	if !finite(m.Biases[0]) {
		return false
	}
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return now.Sub(m.TrainedAt) <= maxAge
}

// Age returns how long ago m was trained
func (m *ModelWeights) Age(now time.Time) time.Duration {
	if m == nil || m.TrainedAt.IsZero() {
		return 0
	}
	return now.Sub(m.TrainedAt)
}

// weight returns the i-th feature weight, or 0 when missing
func (m *ModelWeights) weight(i int) float64 {
	if i < len(m.Weights) && len(m.Weights[i]) > 0 {
		return m.Weights[i][0]
	}
	return 0
}

// Importance is one feature's learned weight
type Importance struct {
	Feature   string  `json:"feature"`
	Weight    float64 `json:"weight"`
	Magnitude float64 `json:"magnitude"`
}

// Importances returns all feature weights ordered by magnitude descending
func (m *ModelWeights) Importances() []Importance {
	if m == nil {
		return nil
	}
	out := make([]Importance, 0, features.Count)
	for i := 0; i < features.Count; i++ {
		w := m.weight(i)
		out = append(out, Importance{Feature: features.Names[i], Weight: w, Magnitude: math.Abs(w)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Magnitude > out[j].Magnitude })
	return out
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// sigmoid is numerically stable for large |z|
func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

package model

import (
	"github.com/vijay-prabhu/aptmatch/internal/features"
	"github.com/vijay-prabhu/aptmatch/internal/listing"
)

// NeutralProbability is returned whenever a prediction cannot be made
const NeutralProbability = 0.5

// Predict returns the probability the user likes l. Features are normalized
// with the model's own stats so predictions match training. Any failure
// yields NeutralProbability.
func Predict(l *listing.Listing, m *ModelWeights, userLocation *listing.Coordinates) float64 {
	if m == nil || len(m.Biases) == 0 || len(m.Weights) < features.Count {
		return NeutralProbability
	}
	x, err := features.Extract(l, m.FeatureStats, userLocation)
	if err != nil {
		return NeutralProbability
	}

	z := m.Biases[0]
	for i := range x {
		z += x[i] * m.weight(i)
	}
	p := sigmoid(z)
	if !finite(p) {
		return NeutralProbability
	}
	return p
}

// PredictBatch maps Predict over listings
func PredictBatch(listings []listing.Listing, m *ModelWeights, userLocation *listing.Coordinates) []float64 {
	out := make([]float64, len(listings))
	for i := range listings {
		out[i] = Predict(&listings[i], m, userLocation)
	}
	return out
}

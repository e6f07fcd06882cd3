package model

import (
	"math"

	"github.com/vijay-prabhu/aptmatch/internal/features"
	"github.com/vijay-prabhu/aptmatch/internal/scoring"
)

// ratingHeuristic is the share of the largest feature importance assigned to
// rating, which has no input feature of its own
const ratingHeuristic = 0.3

// tiePenalty scales confidence when several categories share top priority
const tiePenalty = 0.7

// featureGroups maps scoring factors to feature indices
var featureGroups = map[scoring.Factor][]int{
	scoring.FactorAmenities: {
		features.WasherInUnit, features.WasherInBuilding, features.Dishwasher,
		features.AirConditioning, features.Pets, features.Fireplace, features.Gym,
		features.Parking, features.Pool, features.HasOutdoorArea, features.HasView,
	},
	scoring.FactorQuality:          {features.Price, features.Bedrooms, features.Bathrooms},
	scoring.FactorPropertyFeatures: {features.SquareFeet, features.BuildingAge, features.RenovationAge},
	scoring.FactorDistance:         {features.DistanceScore},
}

// priorityOrder breaks ties, amenities first
var priorityOrder = []scoring.Factor{
	scoring.FactorAmenities,
	scoring.FactorDistance,
	scoring.FactorPropertyFeatures,
	scoring.FactorQuality,
	scoring.FactorRating,
}

// Suggestion is a scoring-weight redistribution derived from a trained model
type Suggestion struct {
	Weights     scoring.ScoringWeights     `json:"weights"`
	TopPriority scoring.Factor             `json:"topPriority"`
	Confidence  float64                    `json:"confidence"`
	Importance  map[scoring.Factor]float64 `json:"importance"`
}

// SuggestScoringWeights converts feature-weight magnitudes into suggested
// scoring weights. Each weight is a multiple of 5 and the five always sum to
// exactly 100; rounding drift goes to the largest category.
func SuggestScoringWeights(m *ModelWeights) Suggestion {
	importance := groupImportance(m)

	var total float64
	for _, f := range priorityOrder {
		total += importance[f]
	}

	var w scoring.ScoringWeights
	if total <= 0 || !finite(total) {
		for _, f := range priorityOrder {
			_ = w.Set(f, 20)
		}
	} else {
		var sum float64
		for _, f := range priorityOrder {
			v := math.Round(importance[f]/total*100/5) * 5
			_ = w.Set(f, v)
			sum += v
		}
		if residual := 100 - sum; residual != 0 {
			largest := largestFactor(w)
			_ = w.Set(largest, w.Get(largest)+residual)
		}
	}

	top, ties := topPriority(w)
	confidence := 0.0
	if m != nil {
		confidence = math.Min(float64(m.TrainingSize)/50, 1) * m.Accuracy
	}
	if ties > 1 {
		confidence *= tiePenalty
	}

	return Suggestion{
		Weights:     w,
		TopPriority: top,
		Confidence:  math.Max(0, math.Min(1, confidence)),
		Importance:  importance,
	}
}

// groupImportance averages absolute weights within each group so groups with
// more features are not favoured
func groupImportance(m *ModelWeights) map[scoring.Factor]float64 {
	out := make(map[scoring.Factor]float64, len(priorityOrder))
	if m == nil {
		return out
	}

	var maxImportance float64
	for i := 0; i < features.Count; i++ {
		maxImportance = math.Max(maxImportance, math.Abs(m.weight(i)))
	}

	for f, idx := range featureGroups {
		var sum float64
		for _, i := range idx {
			sum += math.Abs(m.weight(i))
		}
		out[f] = sum / float64(len(idx))
	}
	out[scoring.FactorRating] = ratingHeuristic * maxImportance
	return out
}

func largestFactor(w scoring.ScoringWeights) scoring.Factor {
	best := priorityOrder[0]
	for _, f := range priorityOrder[1:] {
		if w.Get(f) > w.Get(best) {
			best = f
		}
	}
	return best
}

// topPriority returns the highest-weighted factor, preferring amenities on
// ties, and how many factors share that weight
func topPriority(w scoring.ScoringWeights) (scoring.Factor, int) {
	best := largestFactor(w)
	ties := 0
	for _, f := range priorityOrder {
		if w.Get(f) == w.Get(best) {
			ties++
		}
	}
	return best, ties
}

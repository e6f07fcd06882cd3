package scoring

import "fmt"

// Factor names one component of the match score
type Factor string

const (
	FactorDistance         Factor = "distance"
	FactorAmenities        Factor = "amenities"
	FactorPropertyFeatures Factor = "property_features"
	FactorQuality          Factor = "quality"
	FactorRating           Factor = "rating"
)

// Factors lists every factor in breakdown order
var Factors = []Factor{
	FactorDistance,
	FactorAmenities,
	FactorPropertyFeatures,
	FactorQuality,
	FactorRating,
}

// ScoringWeights are the per-factor percentages applied to sub-scores.
// They are intended to sum to 100.
type ScoringWeights struct {
	Distance         float64 `json:"distance" toml:"distance" validate:"gte=0,lte=100"`
	Amenities        float64 `json:"amenities" toml:"amenities" validate:"gte=0,lte=100"`
	PropertyFeatures float64 `json:"propertyFeatures" toml:"property_features" validate:"gte=0,lte=100"`
	Quality          float64 `json:"quality" toml:"quality" validate:"gte=0,lte=100"`
	Rating           float64 `json:"rating" toml:"rating" validate:"gte=0,lte=100"`
}

// DefaultWeights returns the stock 30/30/20/15/5 distribution
func DefaultWeights() ScoringWeights {
	return ScoringWeights{
		Distance:         30,
		Amenities:        30,
		PropertyFeatures: 20,
		Quality:          15,
		Rating:           5,
	}
}

// Sum returns the total of all five weights
func (w ScoringWeights) Sum() float64 {
	return w.Distance + w.Amenities + w.PropertyFeatures + w.Quality + w.Rating
}

// Get returns the weight for f
func (w ScoringWeights) Get(f Factor) float64 {
	switch f {
	case FactorDistance:
		return w.Distance
	case FactorAmenities:
		return w.Amenities
	case FactorPropertyFeatures:
		return w.PropertyFeatures
	case FactorQuality:
		return w.Quality
	case FactorRating:
		return w.Rating
	}
	return 0
}

// Set assigns the weight for f
func (w *ScoringWeights) Set(f Factor, v float64) error {
	switch f {
	case FactorDistance:
		w.Distance = v
	case FactorAmenities:
		w.Amenities = v
	case FactorPropertyFeatures:
		w.PropertyFeatures = v
	case FactorQuality:
		w.Quality = v
	case FactorRating:
		w.Rating = v
	default:
		return fmt.Errorf("unknown scoring factor %q", f)
	}
	return nil
}

// Validate checks that weights are non-negative and sum to 100
func (w ScoringWeights) Validate() error {
	for _, f := range Factors {
		if w.Get(f) < 0 {
			return fmt.Errorf("scoring weight %s must be non-negative, got %v", f, w.Get(f))
		}
	}
	if sum := w.Sum(); sum != 100 {
		return fmt.Errorf("scoring weights must sum to 100, got %v", sum)
	}
	return nil
}

// Package scoring computes the weighted 0-100 match score for a listing along
// with a per-factor breakdown.
package scoring

import (
	"math"
	"time"

	"github.com/vijay-prabhu/aptmatch/internal/learner"
	"github.com/vijay-prabhu/aptmatch/internal/listing"
)

// NeutralScore is returned when no factor applies to a listing
const NeutralScore = 50

// FactorScore is one factor's contribution to a match score
type FactorScore struct {
	Factor     Factor  `json:"factor"`
	Score      float64 `json:"score"`      // sub-score in [0,1]
	Percentage int     `json:"percentage"` // sub-score as 0-100
	Weight     float64 `json:"weight"`
	Label      string  `json:"label"`
	Applicable bool    `json:"applicable"`
}

// Breakdown lists factor scores in Factors order
type Breakdown []FactorScore

// Get returns the score for f
func (b Breakdown) Get(f Factor) (FactorScore, bool) {
	for _, fs := range b {
		if fs.Factor == f {
			return fs, true
		}
	}
	return FactorScore{}, false
}

// Result is a listing's match score and its explanation
type Result struct {
	Score     float64   `json:"score"`
	Breakdown Breakdown `json:"breakdown"`
}

// Engine scores listings for one user
type Engine struct {
	Weights      ScoringWeights
	UserLocation *listing.Coordinates

	// Year anchors building and renovation ages; zero means the current year
	Year int
}

// NewEngine creates an Engine with the given weights and optional home location
func NewEngine(weights ScoringWeights, userLocation *listing.Coordinates) *Engine {
	return &Engine{Weights: weights, UserLocation: userLocation}
}

func (e *Engine) year() int {
	if e.Year > 0 {
		return e.Year
	}
	return time.Now().Year()
}

// Score computes the match score for l. learned may be nil or empty, in
// which case amenity and quality factors fall back to fixed heuristics.
// The score is the weighted mean of applicable factors scaled to 0-100.
func (e *Engine) Score(l *listing.Listing, learned *learner.Preferences) Result {
	if l == nil {
		return Result{Score: NeutralScore}
	}

	year := e.year()
	breakdown := make(Breakdown, 0, len(Factors))
	var contribution, accumulated float64

	for _, f := range Factors {
		fs := FactorScore{Factor: f, Weight: e.Weights.Get(f)}

		var applicable bool
		switch f {
		case FactorDistance:
			fs.Score, fs.Label, applicable = e.distanceFactor(l)
		case FactorAmenities:
			fs.Score, fs.Label = amenityFactor(l, learned)
			applicable = true
		case FactorPropertyFeatures:
			fs.Score, fs.Label = propertyFactor(l, learned, year)
			applicable = true
		case FactorQuality:
			fs.Score, fs.Label = qualityFactor(l, learned)
			applicable = true
		case FactorRating:
			fs.Score, fs.Label = ratingFactor(l)
			applicable = true
		}

		fs.Score = clamp01(fs.Score)
		fs.Percentage = int(math.Round(fs.Score * 100))
		fs.Applicable = applicable && fs.Weight > 0

		if fs.Applicable {
			contribution += fs.Score * fs.Weight
			accumulated += fs.Weight
		}
		breakdown = append(breakdown, fs)
	}

	score := float64(NeutralScore)
	if accumulated > 0 {
		score = math.Round(contribution / accumulated * 100)
	}

	return Result{Score: score, Breakdown: breakdown}
}

// Describe returns a short human-readable verdict for a match score
func Describe(score float64) string {
	switch {
	case score >= 80:
		return "top pick"
	case score >= 60:
		return "good match"
	case score >= 40:
		return "fair match"
	default:
		return "weak match"
	}
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0.5
	}
	return math.Max(0, math.Min(1, v))
}

// closeness is 1 when value equals target and falls linearly to 0 once the
// difference reaches target
func closeness(value, target float64) float64 {
	if target <= 0 {
		return 0.5
	}
	return 1 - math.Min(1, math.Abs(value-target)/target)
}

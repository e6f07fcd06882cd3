package features

import (
	"math"

	"github.com/vijay-prabhu/aptmatch/internal/listing"
)

// default renovation-age bounds when no listing in the corpus was renovated
const (
	defaultMinRenovationAge = 0
	defaultMaxRenovationAge = 100
)

// Stats holds per-corpus normalization bounds
type Stats struct {
	MinPrice         float64 `json:"min_price"`
	MaxPrice         float64 `json:"max_price"`
	MinSqft          float64 `json:"min_sqft"`
	MaxSqft          float64 `json:"max_sqft"`
	MinAge           float64 `json:"min_age"`
	MaxAge           float64 `json:"max_age"`
	MinRenovationAge float64 `json:"min_renovation_age"`
	MaxRenovationAge float64 `json:"max_renovation_age"`

	// Year is the calendar year ages were computed against
	Year int `json:"year"`
}

func (s Stats) referenceYear() int {
	if s.Year > 0 {
		return s.Year
	}
	return currentYear()
}

// CalculateStats computes normalization bounds over the corpus using the current year
func CalculateStats(listings []listing.Listing) Stats {
	return CalculateStatsForYear(listings, currentYear())
}

// CalculateStatsForYear computes normalization bounds with ages relative to year
func CalculateStatsForYear(listings []listing.Listing, year int) Stats {
	s := Stats{Year: year}

	price := newBounds()
	sqft := newBounds()
	age := newBounds()
	renovation := newBounds()

	for i := range listings {
		l := &listings[i]
		if finite(l.Price) {
			price.add(l.Price)
		}
		if l.SquareFeet > 0 {
			sqft.add(float64(l.SquareFeet))
		}
		if l.YearBuilt > 0 {
			age.add(float64(year - l.YearBuilt))
		}
		if l.Renovated() {
			renovation.add(float64(year - l.RenovationYear))
		}
	}

	s.MinPrice, s.MaxPrice = price.get(0, 0)
	s.MinSqft, s.MaxSqft = sqft.get(0, 0)
	s.MinAge, s.MaxAge = age.get(0, 0)
	s.MinRenovationAge, s.MaxRenovationAge = renovation.get(defaultMinRenovationAge, defaultMaxRenovationAge)

	return s
}

type bounds struct {
	min, max float64
	seen     bool
}

func newBounds() *bounds {
	return &bounds{min: math.Inf(1), max: math.Inf(-1)}
}

func (b *bounds) add(v float64) {
	b.seen = true
	b.min = math.Min(b.min, v)
	b.max = math.Max(b.max, v)
}

func (b *bounds) get(defMin, defMax float64) (float64, float64) {
	if !b.seen {
		return defMin, defMax
	}
	return b.min, b.max
}

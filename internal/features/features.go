// Package features turns listings into fixed-length numeric vectors for the
// swipe classifier.
//
// The vector layout is positional and shared with the model package:
//
//	0 price            6 washerInUnit      12 gym
//	1 bedrooms (<=4)   7 washerInBuilding  13 parking
//	2 bathrooms (<=4)  8 dishwasher        14 pool
//	3 sqft             9 ac                15 hasOutdoorArea
//	4 buildingAge     10 pets              16 hasView
//	5 renovationAge   11 fireplace         17 distanceScore
//
// Continuous features are min-max normalized into [0, 1] using Stats.
package features

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/vijay-prabhu/aptmatch/internal/listing"
)

// Count is the length of every feature vector
const Count = 18

// Feature indices
const (
	Price = iota
	Bedrooms
	Bathrooms
	SquareFeet
	BuildingAge
	RenovationAge
	WasherInUnit
	WasherInBuilding
	Dishwasher
	AirConditioning
	Pets
	Fireplace
	Gym
	Parking
	Pool
	HasOutdoorArea
	HasView
	DistanceScore
)

// Names holds a short identifier for each feature index
var Names = [Count]string{
	"price", "bedrooms", "bathrooms", "sqft", "building_age", "renovation_age",
	"washer_in_unit", "washer_in_building", "dishwasher", "ac", "pets", "fireplace",
	"gym", "parking", "pool", "has_outdoor_area", "has_view", "distance_score",
}

// roomCap caps bedroom and bathroom counts before scaling
const roomCap = 4

// distanceDecayMiles is the e-folding distance of the distance feature
const distanceDecayMiles = 10.0

// neutral is used wherever a value is unknown or a range is degenerate
const neutral = 0.5

// Vector is one listing's feature values in the fixed layout
type Vector [Count]float64

// ErrNilListing is returned when Extract is given no listing
var ErrNilListing = errors.New("listing is nil")

// Extract builds the feature vector for a listing. userLocation may be nil.
func Extract(l *listing.Listing, stats Stats, userLocation *listing.Coordinates) (Vector, error) {
	var v Vector
	if l == nil {
		return v, ErrNilListing
	}
	if !finite(l.Price) || !finite(l.Bathrooms) {
		return v, fmt.Errorf("listing %s: non-finite numeric field", l.ID)
	}

	year := stats.referenceYear()

	v[Price] = Normalize(l.Price, stats.MinPrice, stats.MaxPrice)
	v[Bedrooms] = math.Min(float64(max(l.Bedrooms, 0)), roomCap) / roomCap
	v[Bathrooms] = math.Min(math.Max(l.Bathrooms, 0), roomCap) / roomCap

	if l.SquareFeet > 0 {
		v[SquareFeet] = Normalize(float64(l.SquareFeet), stats.MinSqft, stats.MaxSqft)
	} else {
		v[SquareFeet] = neutral
	}

	if l.YearBuilt > 0 {
		v[BuildingAge] = Normalize(float64(year-l.YearBuilt), stats.MinAge, stats.MaxAge)
	} else {
		v[BuildingAge] = neutral
	}

	// Never-renovated listings take the corpus maximum renovation age.
	renovationAge := stats.MaxRenovationAge
	if l.Renovated() {
		renovationAge = float64(year - l.RenovationYear)
	}
	v[RenovationAge] = Normalize(renovationAge, stats.MinRenovationAge, stats.MaxRenovationAge)

	f := listing.FlagsOf(l)
	v[WasherInUnit] = boolFeature(f.WasherInUnit)
	v[WasherInBuilding] = boolFeature(f.WasherInBuilding)
	v[Dishwasher] = boolFeature(f.Dishwasher)
	v[AirConditioning] = boolFeature(f.AirConditioning)
	v[Pets] = boolFeature(f.PetsAllowed)
	v[Fireplace] = boolFeature(f.Fireplace)
	v[Gym] = boolFeature(f.Gym)
	v[Parking] = boolFeature(f.Parking)
	v[Pool] = boolFeature(f.Pool)
	v[HasOutdoorArea] = boolFeature(f.HasOutdoorArea())
	v[HasView] = boolFeature(f.HasView())

	v[DistanceScore] = distanceFeature(l.Location, userLocation)

	return v, nil
}

// Normalize maps value into [0, 1] relative to [min, max]. A degenerate
// range yields 0.5; values outside the range are clamped.
func Normalize(value, min, max float64) float64 {
	if !finite(value) || !finite(min) || !finite(max) || max <= min {
		return neutral
	}
	n := (value - min) / (max - min)
	return math.Max(0, math.Min(1, n))
}

func distanceFeature(listingLoc, userLoc *listing.Coordinates) float64 {
	if listingLoc == nil || userLoc == nil {
		return neutral
	}
	miles := HaversineMiles(*userLoc, *listingLoc)
	return math.Exp(-miles / distanceDecayMiles)
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func currentYear() int {
	return time.Now().Year()
}

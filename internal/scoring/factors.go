package scoring

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/vijay-prabhu/aptmatch/internal/features"
	"github.com/vijay-prabhu/aptmatch/internal/learner"
	"github.com/vijay-prabhu/aptmatch/internal/listing"
)

// Cold-start and fixed-threshold constants
const (
	coldStartAmenityCount = 8
	amenityCoverageTarget = 0.5

	minSqft = 300
	maxSqft = 2500

	sqftShare        = 0.4
	buildingAgeShare = 0.3
	renovationShare  = 0.3

	neutral = 0.5
)

// ScoreByDistance converts miles into a tiered sub-score
func ScoreByDistance(miles float64) float64 {
	switch {
	case math.IsNaN(miles):
		return 0
	case miles <= 5:
		return 1.0
	case miles <= 15:
		return 0.8
	case miles <= 30:
		return 0.5
	case miles <= 50:
		return 0.2
	default:
		return 0
	}
}

func (e *Engine) distanceFactor(l *listing.Listing) (float64, string, bool) {
	if e.UserLocation == nil || l.Location == nil {
		return neutral, "Location unknown", false
	}
	miles := features.HaversineMiles(*e.UserLocation, *l.Location)
	return ScoreByDistance(miles), formatMiles(miles), true
}

func formatMiles(miles float64) string {
	if miles < 10 {
		return fmt.Sprintf("%.1f mi", miles)
	}
	return fmt.Sprintf("%.0f mi", miles)
}

func amenityFactor(l *listing.Listing, learned *learner.Preferences) (float64, string) {
	amenities := listing.ExtractAmenities(l)
	total := learned.TotalAmenityWeight()

	if total <= 0 {
		score := math.Min(1, float64(len(amenities))/coldStartAmenityCount)
		return score, amenityLabel(amenities)
	}

	type match struct {
		name   string
		weight float64
	}
	var matched []match
	var sum float64
	for _, a := range amenities {
		if w, ok := learned.PreferredAmenities[listing.NormalizeAmenity(a)]; ok && w > 0 {
			sum += w
			matched = append(matched, match{a, w})
		}
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].weight > matched[j].weight })

	names := make([]string, 0, len(matched))
	for _, m := range matched {
		names = append(names, m.name)
	}
	label := amenityLabel(names)
	if len(names) == 0 && len(amenities) > 0 {
		label = "None you usually like"
	}

	return math.Min(1, sum/(amenityCoverageTarget*total)), label
}

func amenityLabel(names []string) string {
	if len(names) == 0 {
		return "No amenities listed"
	}
	if len(names) > 3 {
		return strings.Join(names[:3], ", ") + fmt.Sprintf(" +%d", len(names)-3)
	}
	return strings.Join(names, ", ")
}

func qualityFactor(l *listing.Listing, learned *learner.Preferences) (float64, string) {
	images := float64(len(l.Images))
	desc := float64(len(l.Description))

	var imageScore, descScore float64
	if learned != nil && learned.AvgImageCount != nil && *learned.AvgImageCount > 0 {
		imageScore = closeness(images, *learned.AvgImageCount)
	} else {
		imageScore = imageThreshold(len(l.Images))
	}
	if learned != nil && learned.AvgDescriptionLength != nil && *learned.AvgDescriptionLength > 0 {
		descScore = closeness(desc, *learned.AvgDescriptionLength)
	} else {
		descScore = descriptionThreshold(len(l.Description))
	}

	return 0.5*imageScore + 0.5*descScore, fmt.Sprintf("%d photos, %d chars", len(l.Images), len(l.Description))
}

func imageThreshold(n int) float64 {
	switch {
	case n >= 5:
		return 1
	case n >= 3:
		return 0.7
	case n >= 1:
		return 0.4
	default:
		return 0
	}
}

func descriptionThreshold(n int) float64 {
	switch {
	case n > 200:
		return 1
	case n > 100:
		return 0.7
	case n > 0:
		return 0.4
	default:
		return 0
	}
}

func propertyFactor(l *listing.Listing, learned *learner.Preferences, year int) (float64, string) {
	if !l.IsNYC() {
		return neutral, "Not enough detail"
	}

	score := sqftShare*sqftScore(l, learned) +
		buildingAgeShare*buildingAgeScore(l, year) +
		renovationShare*renovationScore(l, year)

	return score, propertyLabel(l)
}

func sqftScore(l *listing.Listing, learned *learner.Preferences) float64 {
	if l.SquareFeet <= 0 {
		return neutral
	}
	sqft := float64(l.SquareFeet)
	if learned != nil {
		if target, ok := learned.AvgSqftByBedrooms[l.Bedrooms]; ok && target > 0 {
			return closeness(sqft, target)
		}
	}
	return clamp01((sqft - minSqft) / (maxSqft - minSqft))
}

// buildingAgeScore favours new construction and historic buildings over
// mid-century stock
func buildingAgeScore(l *listing.Listing, year int) float64 {
	if l.YearBuilt <= 0 {
		return neutral
	}
	age := year - l.YearBuilt
	switch {
	case age <= 5:
		return 1.0
	case age <= 10:
		return 0.95
	case age <= 20:
		return 0.85
	case age <= 40:
		return 0.6
	case age <= 80:
		return 0.5
	case age < 100:
		return 0.7
	default:
		return 0.8
	}
}

func renovationScore(l *listing.Listing, year int) float64 {
	if !l.Renovated() {
		if l.YearBuilt > 0 && year-l.YearBuilt <= 10 {
			return 0.7
		}
		return 0.4
	}
	since := year - l.RenovationYear
	switch {
	case since <= 5:
		return 1.0
	case since <= 10:
		return 0.8
	case since <= 20:
		return 0.6
	default:
		return 0.3
	}
}

func propertyLabel(l *listing.Listing) string {
	var parts []string
	if l.SquareFeet > 0 {
		parts = append(parts, fmt.Sprintf("%d sqft", l.SquareFeet))
	}
	if l.YearBuilt > 0 {
		parts = append(parts, fmt.Sprintf("Built %d", l.YearBuilt))
	}
	if l.Renovated() {
		parts = append(parts, fmt.Sprintf("Renovated %d", l.RenovationYear))
	}
	if len(parts) == 0 {
		return "Not enough detail"
	}
	return strings.Join(parts, ", ")
}

// ratingFactor never penalizes unrated listings
func ratingFactor(l *listing.Listing) (float64, string) {
	if !l.HasRating() {
		return neutral, "No reviews yet"
	}
	return *l.AverageRating / 5, fmt.Sprintf("%.1f/5 (%d reviews)", *l.AverageRating, l.TotalRatings)
}

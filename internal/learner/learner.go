// Package learner mines a user's swipe history into amenity, quality and
// size preferences.
package learner

import (
	"sort"

	"github.com/vijay-prabhu/aptmatch/internal/listing"
)

// Swipe is one entry of a user's swipe log
type Swipe struct {
	ListingID string `json:"listing_id"`
	Liked     bool   `json:"liked"`
}

// Preferences is the in-memory form of learned preferences, keyed for O(1) lookup
type Preferences struct {
	// PreferredAmenities maps a normalized amenity name to its affinity weight
	PreferredAmenities map[string]float64

	// AvgImageCount is the median photo count of liked listings, nil if unknown
	AvgImageCount *float64

	// AvgDescriptionLength is the median description length of liked listings, nil if unknown
	AvgDescriptionLength *float64

	// AvgSqftByBedrooms maps bedroom count to the median liked sqft
	AvgSqftByBedrooms map[int]float64
}

// IsEmpty reports whether nothing was learned
func (p *Preferences) IsEmpty() bool {
	return p == nil ||
		(len(p.PreferredAmenities) == 0 &&
			p.AvgImageCount == nil &&
			p.AvgDescriptionLength == nil &&
			len(p.AvgSqftByBedrooms) == 0)
}

// TotalAmenityWeight returns the sum of all learned amenity weights
func (p *Preferences) TotalAmenityWeight() float64 {
	if p == nil {
		return 0
	}
	var total float64
	for _, w := range p.PreferredAmenities {
		total += w
	}
	return total
}

// LearnFromSwipeHistory derives preferences from liked and disliked listings.
// Swipes whose listing is not in allListings are ignored. With no liked
// listings the result is empty and callers fall back to non-personalized scoring.
func LearnFromSwipeHistory(history []Swipe, allListings []listing.Listing) *Preferences {
	prefs := &Preferences{
		PreferredAmenities: make(map[string]float64),
		AvgSqftByBedrooms:  make(map[int]float64),
	}

	idx := listing.Index(allListings)
	var liked, disliked []*listing.Listing
	for _, s := range history {
		l, ok := idx[s.ListingID]
		if !ok {
			continue
		}
		if s.Liked {
			liked = append(liked, l)
		} else {
			disliked = append(disliked, l)
		}
	}

	if len(liked) == 0 {
		return prefs
	}

	prefs.PreferredAmenities = amenityAffinity(liked, disliked)
	prefs.AvgImageCount, prefs.AvgDescriptionLength = qualityAffinity(liked)
	prefs.AvgSqftByBedrooms = sizeAffinity(liked)

	return prefs
}

// amenityAffinity weights each liked amenity by likedCount * likedCount/(likedCount+dislikedCount)
func amenityAffinity(liked, disliked []*listing.Listing) map[string]float64 {
	likedCounts := countAmenities(liked)
	dislikedCounts := countAmenities(disliked)

	weights := make(map[string]float64, len(likedCounts))
	for amenity, lc := range likedCounts {
		l := float64(lc)
		d := float64(dislikedCounts[amenity])
		weights[amenity] = l * (l / (l + d))
	}
	return weights
}

func countAmenities(listings []*listing.Listing) map[string]int {
	counts := make(map[string]int)
	for _, l := range listings {
		for _, a := range listing.ExtractAmenities(l) {
			if n := listing.NormalizeAmenity(a); n != "" {
				counts[n]++
			}
		}
	}
	return counts
}

func qualityAffinity(liked []*listing.Listing) (*float64, *float64) {
	var images, descriptions []float64
	for _, l := range liked {
		if l.Images != nil {
			images = append(images, float64(len(l.Images)))
		}
		if l.Description != "" {
			descriptions = append(descriptions, float64(len(l.Description)))
		}
	}

	var avgImages, avgDescription *float64
	if len(images) > 0 {
		m := Median(images)
		avgImages = &m
	}
	if len(descriptions) > 0 {
		m := Median(descriptions)
		avgDescription = &m
	}
	return avgImages, avgDescription
}

func sizeAffinity(liked []*listing.Listing) map[int]float64 {
	byBedrooms := make(map[int][]float64)
	for _, l := range liked {
		if l.SquareFeet > 0 {
			byBedrooms[l.Bedrooms] = append(byBedrooms[l.Bedrooms], float64(l.SquareFeet))
		}
	}

	out := make(map[int]float64, len(byBedrooms))
	for beds, sizes := range byBedrooms {
		out[beds] = Median(sizes)
	}
	return out
}

// Median returns the median of values, averaging the two middle values for
// even-length input. It returns 0 for an empty slice and does not modify values.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

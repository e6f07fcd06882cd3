package learner

import (
	"sort"
	"time"
)

// AmenityWeight is one ordered entry of stored amenity preferences
type AmenityWeight struct {
	Amenity string  `json:"amenity"`
	Weight  float64 `json:"weight"`
}

// BedroomSqft is one ordered entry of stored size preferences
type BedroomSqft struct {
	Bedrooms int     `json:"bedrooms"`
	Sqft     float64 `json:"sqft"`
}

// Stored is the serializable form of learned preferences persisted with the
// user profile. Entries are kept in a deterministic order so the encoded
// form is stable.
type Stored struct {
	PreferredAmenities   []AmenityWeight `json:"preferred_amenities"`
	AvgImageCount        *float64        `json:"avg_image_count,omitempty"`
	AvgDescriptionLength *float64        `json:"avg_description_length,omitempty"`
	AvgSqftByBedrooms    []BedroomSqft   `json:"avg_sqft_by_bedrooms"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// ToStored converts preferences into their storage form. Amenities are
// ordered by weight descending, then name; sizes by bedroom count.
func ToStored(p *Preferences, updatedAt time.Time) *Stored {
	s := &Stored{
		PreferredAmenities: []AmenityWeight{},
		AvgSqftByBedrooms:  []BedroomSqft{},
		UpdatedAt:          updatedAt,
	}
	if p == nil {
		return s
	}

	for a, w := range p.PreferredAmenities {
		s.PreferredAmenities = append(s.PreferredAmenities, AmenityWeight{Amenity: a, Weight: w})
	}
	sort.Slice(s.PreferredAmenities, func(i, j int) bool {
		if s.PreferredAmenities[i].Weight != s.PreferredAmenities[j].Weight {
			return s.PreferredAmenities[i].Weight > s.PreferredAmenities[j].Weight
		}
		return s.PreferredAmenities[i].Amenity < s.PreferredAmenities[j].Amenity
	})

	for beds, sqft := range p.AvgSqftByBedrooms {
		s.AvgSqftByBedrooms = append(s.AvgSqftByBedrooms, BedroomSqft{Bedrooms: beds, Sqft: sqft})
	}
	sort.Slice(s.AvgSqftByBedrooms, func(i, j int) bool {
		return s.AvgSqftByBedrooms[i].Bedrooms < s.AvgSqftByBedrooms[j].Bedrooms
	})

	s.AvgImageCount = copyFloat(p.AvgImageCount)
	s.AvgDescriptionLength = copyFloat(p.AvgDescriptionLength)
	return s
}

// FromStored converts stored preferences back into lookup maps. A nil input
// yields nil.
func FromStored(s *Stored) *Preferences {
	if s == nil {
		return nil
	}
	p := &Preferences{
		PreferredAmenities:   make(map[string]float64, len(s.PreferredAmenities)),
		AvgSqftByBedrooms:    make(map[int]float64, len(s.AvgSqftByBedrooms)),
		AvgImageCount:        copyFloat(s.AvgImageCount),
		AvgDescriptionLength: copyFloat(s.AvgDescriptionLength),
	}
	for _, aw := range s.PreferredAmenities {
		p.PreferredAmenities[aw.Amenity] = aw.Weight
	}
	for _, bs := range s.AvgSqftByBedrooms {
		p.AvgSqftByBedrooms[bs.Bedrooms] = bs.Sqft
	}
	return p
}

// TopAmenities returns up to n amenity names with the highest weights
func (s *Stored) TopAmenities(n int) []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, n)
	for i := 0; i < len(s.PreferredAmenities) && i < n; i++ {
		out = append(out, s.PreferredAmenities[i].Amenity)
	}
	return out
}

func copyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

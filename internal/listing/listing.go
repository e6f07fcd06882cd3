package listing

import "strings"

// Shape identifies which listing format a record was published in
type Shape string

const (
	// ShapeNYC listings carry binary amenity flags, view and neighborhood data
	ShapeNYC Shape = "nyc"
	// ShapeLegacy listings carry amenities as a free-text list
	ShapeLegacy Shape = "legacy"
)

// Coordinates is a latitude/longitude pair in degrees
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// AmenityFlags holds the structured amenity data of an NYC-shaped listing
type AmenityFlags struct {
	WasherInUnit     bool   `json:"washer_in_unit"`
	WasherInBuilding bool   `json:"washer_in_building"`
	Dishwasher       bool   `json:"dishwasher"`
	AirConditioning  bool   `json:"air_conditioning"`
	PetsAllowed      bool   `json:"pets_allowed"`
	Fireplace        bool   `json:"fireplace"`
	Gym              bool   `json:"gym"`
	Parking          bool   `json:"parking"`
	Pool             bool   `json:"pool"`
	OutdoorArea      string `json:"outdoor_area,omitempty"` // none, balcony, terrace, patio, garden, roof deck
	View             string `json:"view,omitempty"`         // none, city, water, park, skyline
	Neighborhood     string `json:"neighborhood,omitempty"`
}

// HasOutdoorArea reports whether the outdoor-area category is set to something other than none
func (f AmenityFlags) HasOutdoorArea() bool {
	return categorySet(f.OutdoorArea)
}

// HasView reports whether the view category is set to something other than none
func (f AmenityFlags) HasView() bool {
	return categorySet(f.View)
}

func categorySet(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v != "" && v != "none" && v != "no"
}

// Listing is a rental listing as supplied by the listing store.
//
// Exactly one of Flags (NYC shape) or AmenityList (legacy shape) is
// meaningful; Flags takes precedence when both are present.
type Listing struct {
	ID             string        `json:"id"`
	Title          string        `json:"title,omitempty"`
	Price          float64       `json:"price"`
	Bedrooms       int           `json:"bedrooms"`
	Bathrooms      float64       `json:"bathrooms"`
	SquareFeet     int           `json:"sqft,omitempty"`
	YearBuilt      int           `json:"year_built,omitempty"`
	RenovationYear int           `json:"renovation_year,omitempty"`
	Location       *Coordinates  `json:"location,omitempty"`
	Flags          *AmenityFlags `json:"amenity_flags,omitempty"`
	AmenityList    []string      `json:"amenities,omitempty"`
	Images         []string      `json:"images,omitempty"`
	Description    string        `json:"description,omitempty"`
	AverageRating  *float64      `json:"average_rating,omitempty"`
	TotalRatings   int           `json:"total_ratings,omitempty"`
}

// Shape returns the listing's format
func (l *Listing) Shape() Shape {
	if l.Flags != nil {
		return ShapeNYC
	}
	return ShapeLegacy
}

// IsNYC reports whether the listing uses the structured NYC format
func (l *Listing) IsNYC() bool {
	return l.Shape() == ShapeNYC
}

// Renovated reports whether a renovation year is recorded
func (l *Listing) Renovated() bool {
	return l.RenovationYear > 0
}

// HasRating reports whether the listing has at least one review
func (l *Listing) HasRating() bool {
	return l.AverageRating != nil && l.TotalRatings >= 1
}

// Neighborhood returns the neighborhood of an NYC listing, or ""
func (l *Listing) Neighborhood() string {
	if l.Flags == nil {
		return ""
	}
	return l.Flags.Neighborhood
}

// View returns the view category of an NYC listing, or ""
func (l *Listing) View() string {
	if l.Flags == nil {
		return ""
	}
	return l.Flags.View
}

// Index maps listing IDs to listings for O(1) lookup
func Index(listings []Listing) map[string]*Listing {
	idx := make(map[string]*Listing, len(listings))
	for i := range listings {
		idx[listings[i].ID] = &listings[i]
	}
	return idx
}

// Float64Ptr returns a pointer to v
func Float64Ptr(v float64) *float64 {
	return &v
}

package filter

import (
	"math/rand"
	"testing"

	"github.com/vijay-prabhu/aptmatch/internal/listing"
)

func ptr(v float64) *float64 { return &v }

func TestCheck(t *testing.T) {
	nyc := &listing.Listing{
		ID: "n", Price: 3000, Bedrooms: 1, Bathrooms: 1,
		Flags: &listing.AmenityFlags{
			Dishwasher: true, Gym: true, View: "City skyline", Neighborhood: "East Village",
		},
		AverageRating: ptr(4.2), TotalRatings: 3,
	}
	legacy := &listing.Listing{
		ID: "l", Price: 2500, Bedrooms: 2, Bathrooms: 1.5,
		AmenityList: []string{"In-unit washer", "Roof deck", "No pets"},
	}

	tests := []struct {
		name     string
		l        *listing.Listing
		c        Criteria
		wantIncl bool
		wantRule Rule
	}{
		{"no criteria", nyc, Criteria{}, true, RulePass},
		{"price inside bounds", nyc, Criteria{PriceMin: ptr(3000), PriceMax: ptr(3000)}, true, RulePass},
		{"price below min", nyc, Criteria{PriceMin: ptr(3001)}, false, RulePrice},
		{"price above max", nyc, Criteria{PriceMax: ptr(2999)}, false, RulePrice},
		{"bedroom in set", nyc, Criteria{Bedrooms: []int{0, 1}}, true, RulePass},
		{"bedroom not in set", nyc, Criteria{Bedrooms: []int{2, 3}}, false, RuleBedrooms},
		{"bathroom not in set", legacy, Criteria{Bathrooms: []float64{1, 2}}, false, RuleBathrooms},
		{"rating below min", nyc, Criteria{RatingMin: ptr(4.5)}, false, RuleRating},
		{"unrated never excluded", legacy, Criteria{RatingMin: ptr(4.5)}, true, RulePass},
		{"amenity fuzzy match", nyc, Criteria{RequiredAmenities: []string{"DISH"}}, true, RulePass},
		{"amenity missing", nyc, Criteria{RequiredAmenities: []string{"pool"}}, false, RuleAmenity},
		{"legacy amenity match", legacy, Criteria{RequiredAmenities: []string{"roof deck"}}, true, RulePass},
		{"legacy negated amenity", legacy, Criteria{RequiredAmenities: []string{"pets"}}, false, RuleAmenity},
		{"view substring", nyc, Criteria{Views: []string{"skyline"}}, true, RulePass},
		{"view mismatch", nyc, Criteria{Views: []string{"water"}}, false, RuleView},
		{"view ignored for legacy", legacy, Criteria{Views: []string{"water"}}, true, RulePass},
		{"neighborhood any-of", nyc, Criteria{Neighborhoods: []string{"soho", "village"}}, true, RulePass},
		{"neighborhood mismatch", nyc, Criteria{Neighborhoods: []string{"harlem"}}, false, RuleNeighborhood},
		{"neighborhood ignored for legacy", legacy, Criteria{Neighborhoods: []string{"harlem"}}, true, RulePass},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Check(tt.l, tt.c)
			if r.Include != tt.wantIncl {
				t.Errorf("Include = %v, want %v (%s)", r.Include, tt.wantIncl, r.Reason)
			}
			if r.Rule != tt.wantRule {
				t.Errorf("Rule = %v, want %v", r.Rule, tt.wantRule)
			}
		})
	}
}

func TestExplainListsEveryFailure(t *testing.T) {
	l := &listing.Listing{ID: "x", Price: 5000, Bedrooms: 3, Flags: &listing.AmenityFlags{}}
	c := Criteria{PriceMax: ptr(4000), Bedrooms: []int{1}, RequiredAmenities: []string{"gym"}}

	failed := Explain(l, c)
	if len(failed) != 3 {
		t.Fatalf("Explain returned %d failures, want 3: %+v", len(failed), failed)
	}
	want := []Rule{RulePrice, RuleBedrooms, RuleAmenity}
	for i, r := range failed {
		if r.Rule != want[i] {
			t.Errorf("failure %d rule = %v, want %v", i, r.Rule, want[i])
		}
		if r.Reason == "" {
			t.Errorf("failure %d has no reason", i)
		}
	}
}

func TestApplyKeepsOrder(t *testing.T) {
	corpus := listing.SampleListings()
	kept := Apply(corpus, Criteria{PriceMax: ptr(3500)})

	prev := -1
	idx := make(map[string]int, len(corpus))
	for i, l := range corpus {
		idx[l.ID] = i
	}
	for _, l := range kept {
		if l.Price > 3500 {
			t.Errorf("listing %s with price %v should be filtered", l.ID, l.Price)
		}
		if idx[l.ID] <= prev {
			t.Error("Apply must preserve input order")
		}
		prev = idx[l.ID]
	}
	if len(Apply(corpus, Criteria{})) != len(corpus) {
		t.Error("empty criteria should keep every listing")
	}
}

// A listing survives Apply iff it independently satisfies each set constraint.
func TestApplyIsConjunction(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	corpus := listing.SampleListings()
	amenityPool := []string{"gym", "dishwasher", "pool", "laundry", "parking", "fireplace"}
	viewPool := []string{"city", "skyline", "water", "park"}
	hoodPool := []string{"village", "williamsburg", "midtown", "slope", "island"}

	single := func(l *listing.Listing, c Criteria) []bool {
		var parts []bool
		if c.PriceMin != nil || c.PriceMax != nil {
			parts = append(parts, Passes(l, Criteria{PriceMin: c.PriceMin, PriceMax: c.PriceMax}))
		}
		if len(c.Bedrooms) > 0 {
			parts = append(parts, Passes(l, Criteria{Bedrooms: c.Bedrooms}))
		}
		if len(c.Bathrooms) > 0 {
			parts = append(parts, Passes(l, Criteria{Bathrooms: c.Bathrooms}))
		}
		if c.RatingMin != nil || c.RatingMax != nil {
			parts = append(parts, Passes(l, Criteria{RatingMin: c.RatingMin, RatingMax: c.RatingMax}))
		}
		for _, a := range c.RequiredAmenities {
			parts = append(parts, Passes(l, Criteria{RequiredAmenities: []string{a}}))
		}
		if len(c.Views) > 0 {
			parts = append(parts, Passes(l, Criteria{Views: c.Views}))
		}
		if len(c.Neighborhoods) > 0 {
			parts = append(parts, Passes(l, Criteria{Neighborhoods: c.Neighborhoods}))
		}
		return parts
	}

	for trial := 0; trial < 300; trial++ {
		var c Criteria
		if rng.Intn(2) == 0 {
			c.PriceMin = ptr(float64(2000 + rng.Intn(2000)))
		}
		if rng.Intn(2) == 0 {
			c.PriceMax = ptr(float64(3000 + rng.Intn(3000)))
		}
		if rng.Intn(3) == 0 {
			c.Bedrooms = []int{rng.Intn(4), rng.Intn(4)}
		}
		if rng.Intn(3) == 0 {
			c.Bathrooms = []float64{1, float64(rng.Intn(3))}
		}
		if rng.Intn(3) == 0 {
			c.RatingMin = ptr(3 + rng.Float64()*2)
		}
		if rng.Intn(4) == 0 {
			c.RatingMax = ptr(4 + rng.Float64())
		}
		if rng.Intn(3) == 0 {
			c.RequiredAmenities = []string{amenityPool[rng.Intn(len(amenityPool))]}
		}
		if rng.Intn(4) == 0 {
			c.Views = []string{viewPool[rng.Intn(len(viewPool))]}
		}
		if rng.Intn(4) == 0 {
			c.Neighborhoods = []string{hoodPool[rng.Intn(len(hoodPool))]}
		}

		kept := make(map[string]bool)
		for _, l := range Apply(corpus, c) {
			kept[l.ID] = true
		}
		for i := range corpus {
			l := &corpus[i]
			want := true
			for _, ok := range single(l, c) {
				want = want && ok
			}
			if kept[l.ID] != want {
				t.Fatalf("trial %d listing %s: kept=%v, independent checks=%v, criteria=%+v",
					trial, l.ID, kept[l.ID], want, c)
			}
		}
	}
}

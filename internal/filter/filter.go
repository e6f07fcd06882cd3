// Package filter applies non-negotiable constraints to listings before they
// are scored. Unset criteria impose no constraint.
package filter

import (
	"fmt"
	"slices"
	"strings"

	"github.com/vijay-prabhu/aptmatch/internal/listing"
)

// Rule identifies which constraint made the decision
type Rule string

const (
	RulePass         Rule = "pass"
	RulePrice        Rule = "price"
	RuleBedrooms     Rule = "bedrooms"
	RuleBathrooms    Rule = "bathrooms"
	RuleRating       Rule = "rating"
	RuleAmenity      Rule = "amenity"
	RuleView         Rule = "view"
	RuleNeighborhood Rule = "neighborhood"
)

// Criteria holds a user's hard-filter bounds
type Criteria struct {
	PriceMin          *float64  `json:"price_min,omitempty" toml:"price_min" validate:"omitempty,gte=0"`
	PriceMax          *float64  `json:"price_max,omitempty" toml:"price_max" validate:"omitempty,gte=0"`
	Bedrooms          []int     `json:"bedrooms,omitempty" toml:"bedrooms" validate:"omitempty,dive,gte=0"`
	Bathrooms         []float64 `json:"bathrooms,omitempty" toml:"bathrooms" validate:"omitempty,dive,gte=0"`
	RatingMin         *float64  `json:"rating_min,omitempty" toml:"rating_min" validate:"omitempty,gte=0,lte=5"`
	RatingMax         *float64  `json:"rating_max,omitempty" toml:"rating_max" validate:"omitempty,gte=0,lte=5"`
	RequiredAmenities []string  `json:"required_amenities,omitempty" toml:"required_amenities"`
	Views             []string  `json:"views,omitempty" toml:"views"`
	Neighborhoods     []string  `json:"neighborhoods,omitempty" toml:"neighborhoods"`
}

// IsZero reports whether no constraint is set
func (c Criteria) IsZero() bool {
	return c.PriceMin == nil && c.PriceMax == nil &&
		len(c.Bedrooms) == 0 && len(c.Bathrooms) == 0 &&
		c.RatingMin == nil && c.RatingMax == nil &&
		len(c.RequiredAmenities) == 0 && len(c.Views) == 0 && len(c.Neighborhoods) == 0
}

// Result is the outcome of checking one listing against one rule
type Result struct {
	Include bool   `json:"include"`
	Rule    Rule   `json:"rule"`
	Reason  string `json:"reason"`
}

type check func(l *listing.Listing, c *Criteria) *Result

// checks run in order; Apply needs every one to pass
var checks = []check{
	checkPrice,
	checkBedrooms,
	checkBathrooms,
	checkRating,
	checkAmenities,
	checkViews,
	checkNeighborhoods,
}

// Check returns the first failing rule for l, or a passing result
func Check(l *listing.Listing, c Criteria) Result {
	for _, fn := range checks {
		if r := fn(l, &c); r != nil {
			return *r
		}
	}
	return Result{Include: true, Rule: RulePass, Reason: "meets every requirement"}
}

// Passes reports whether l satisfies every set constraint
func Passes(l *listing.Listing, c Criteria) bool {
	return Check(l, c).Include
}

// Explain returns every failing rule for l. An empty result means l passes.
func Explain(l *listing.Listing, c Criteria) []Result {
	var failed []Result
	for _, fn := range checks {
		if r := fn(l, &c); r != nil {
			failed = append(failed, *r)
		}
	}
	return failed
}

// Apply returns the listings that pass every constraint, in input order
func Apply(listings []listing.Listing, c Criteria) []listing.Listing {
	if c.IsZero() {
		return slices.Clone(listings)
	}
	kept := make([]listing.Listing, 0, len(listings))
	for i := range listings {
		if Passes(&listings[i], c) {
			kept = append(kept, listings[i])
		}
	}
	return kept
}

func reject(rule Rule, format string, args ...any) *Result {
	return &Result{Rule: rule, Reason: fmt.Sprintf(format, args...)}
}

func checkPrice(l *listing.Listing, c *Criteria) *Result {
	if c.PriceMin != nil && l.Price < *c.PriceMin {
		return reject(RulePrice, "price $%.0f below minimum $%.0f", l.Price, *c.PriceMin)
	}
	if c.PriceMax != nil && l.Price > *c.PriceMax {
		return reject(RulePrice, "price $%.0f above maximum $%.0f", l.Price, *c.PriceMax)
	}
	return nil
}

func checkBedrooms(l *listing.Listing, c *Criteria) *Result {
	if len(c.Bedrooms) > 0 && !slices.Contains(c.Bedrooms, l.Bedrooms) {
		return reject(RuleBedrooms, "%d bedrooms not in %v", l.Bedrooms, c.Bedrooms)
	}
	return nil
}

func checkBathrooms(l *listing.Listing, c *Criteria) *Result {
	if len(c.Bathrooms) > 0 && !slices.Contains(c.Bathrooms, l.Bathrooms) {
		return reject(RuleBathrooms, "%g bathrooms not in %v", l.Bathrooms, c.Bathrooms)
	}
	return nil
}

// Listings without a rating are never excluded here.
func checkRating(l *listing.Listing, c *Criteria) *Result {
	if l.AverageRating == nil {
		return nil
	}
	r := *l.AverageRating
	if c.RatingMin != nil && r < *c.RatingMin {
		return reject(RuleRating, "rating %.1f below minimum %.1f", r, *c.RatingMin)
	}
	if c.RatingMax != nil && r > *c.RatingMax {
		return reject(RuleRating, "rating %.1f above maximum %.1f", r, *c.RatingMax)
	}
	return nil
}

func checkAmenities(l *listing.Listing, c *Criteria) *Result {
	if len(c.RequiredAmenities) == 0 {
		return nil
	}
	have := listing.ExtractAmenities(l)
	for _, req := range c.RequiredAmenities {
		if strings.TrimSpace(req) == "" {
			continue
		}
		found := slices.ContainsFunc(have, func(a string) bool {
			return listing.FuzzyMatch(a, req)
		})
		if !found {
			return reject(RuleAmenity, "missing required amenity %q", req)
		}
	}
	return nil
}

func checkViews(l *listing.Listing, c *Criteria) *Result {
	if len(c.Views) == 0 || !l.IsNYC() {
		return nil
	}
	if !containsAnyFold(l.View(), c.Views) {
		return reject(RuleView, "view %q not one of %v", l.View(), c.Views)
	}
	return nil
}

func checkNeighborhoods(l *listing.Listing, c *Criteria) *Result {
	if len(c.Neighborhoods) == 0 || !l.IsNYC() {
		return nil
	}
	if !containsAnyFold(l.Neighborhood(), c.Neighborhoods) {
		return reject(RuleNeighborhood, "neighborhood %q not one of %v", l.Neighborhood(), c.Neighborhoods)
	}
	return nil
}

// containsAnyFold reports whether value contains any of wanted, ignoring case.
// An empty value matches nothing.
func containsAnyFold(value string, wanted []string) bool {
	v := listing.NormalizeAmenity(value)
	if v == "" {
		return false
	}
	for _, w := range wanted {
		if w = listing.NormalizeAmenity(w); w != "" && strings.Contains(v, w) {
			return true
		}
	}
	return false
}

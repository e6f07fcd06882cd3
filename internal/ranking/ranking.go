// Package ranking filters, scores and orders a listing corpus for one user.
package ranking

import (
	"math"
	"sort"

	"github.com/vijay-prabhu/aptmatch/internal/filter"
	"github.com/vijay-prabhu/aptmatch/internal/learner"
	"github.com/vijay-prabhu/aptmatch/internal/listing"
	"github.com/vijay-prabhu/aptmatch/internal/scoring"
)

// DefaultTopPickThreshold is the match score at which a listing is a top pick
const DefaultTopPickThreshold = 80

// UserPreferences is everything the profile collaborator knows about a user
type UserPreferences struct {
	Location *listing.Coordinates    `json:"location,omitempty"`
	Filters  filter.Criteria         `json:"filters"`
	Weights  *scoring.ScoringWeights `json:"weights,omitempty"`

	// Learned is the persisted form of learned preferences, if any
	Learned *learner.Stored `json:"learned,omitempty"`
}

// ListingWithScore is a ranked listing with its explanation
type ListingWithScore struct {
	listing.Listing
	MatchScore float64           `json:"matchScore"`
	Breakdown  scoring.Breakdown `json:"breakdown"`
	IsTopPick  bool              `json:"isTopPick"`

	// MLScore is the model's like probability scaled to 0-100, when blended
	MLScore *float64 `json:"mlScore,omitempty"`
}

// Options tune ranking beyond the user's preferences
type Options struct {
	TopPickThreshold float64

	// Year anchors building ages; zero means the current year
	Year int
}

// RankListings filters, scores and sorts listings for a user with default options
func RankListings(listings []listing.Listing, prefs UserPreferences, history []learner.Swipe) []ListingWithScore {
	return Rank(listings, prefs, history, Options{})
}

// Rank is RankListings with explicit options. Results are sorted by match
// score descending with ties broken by listing ID.
func Rank(listings []listing.Listing, prefs UserPreferences, history []learner.Swipe, opts Options) []ListingWithScore {
	threshold := opts.TopPickThreshold
	if threshold <= 0 {
		threshold = DefaultTopPickThreshold
	}

	weights := scoring.DefaultWeights()
	if prefs.Weights != nil {
		weights = *prefs.Weights
	}
	engine := scoring.NewEngine(weights, prefs.Location)
	engine.Year = opts.Year

	learned := ResolveLearned(prefs, history, listings)

	candidates := filter.Apply(listings, prefs.Filters)
	ranked := make([]ListingWithScore, 0, len(candidates))
	for i := range candidates {
		r := engine.Score(&candidates[i], learned)
		ranked = append(ranked, ListingWithScore{
			Listing:    candidates[i],
			MatchScore: r.Score,
			Breakdown:  r.Breakdown,
			IsTopPick:  r.Score >= threshold,
		})
	}

	Sort(ranked)
	return ranked
}

// ResolveLearned prefers persisted learned preferences and recomputes from
// the swipe history only when none are stored
func ResolveLearned(prefs UserPreferences, history []learner.Swipe, listings []listing.Listing) *learner.Preferences {
	if prefs.Learned != nil {
		return learner.FromStored(prefs.Learned)
	}
	if len(history) == 0 {
		return nil
	}
	return learner.LearnFromSwipeHistory(history, listings)
}

// Sort orders ranked listings by match score descending, then ID ascending
func Sort(ranked []ListingWithScore) {
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].MatchScore != ranked[j].MatchScore {
			return ranked[i].MatchScore > ranked[j].MatchScore
		}
		return ranked[i].ID < ranked[j].ID
	})
}

// Blend mixes each listing's match score with a model probability:
// final = (1-blend)*match + blend*100*p. blend is clamped to [0,1]; the top
// pick flag is recomputed on the blended score and the slice is re-sorted.
func Blend(ranked []ListingWithScore, predict func(*listing.Listing) float64, blend, threshold float64) {
	if predict == nil {
		return
	}
	blend = math.Max(0, math.Min(1, blend))
	if threshold <= 0 {
		threshold = DefaultTopPickThreshold
	}

	for i := range ranked {
		p := predict(&ranked[i].Listing)
		ml := math.Round(p * 100)
		ranked[i].MLScore = &ml
		ranked[i].MatchScore = math.Round((1-blend)*ranked[i].MatchScore + blend*100*p)
		ranked[i].IsTopPick = ranked[i].MatchScore >= threshold
	}
	Sort(ranked)
}

// ExcludeSwiped drops listings the user has already swiped on
func ExcludeSwiped(listings []listing.Listing, history []learner.Swipe) []listing.Listing {
	if len(history) == 0 {
		return listings
	}
	seen := make(map[string]struct{}, len(history))
	for _, s := range history {
		seen[s.ListingID] = struct{}{}
	}
	out := make([]listing.Listing, 0, len(listings))
	for _, l := range listings {
		if _, ok := seen[l.ID]; !ok {
			out = append(out, l)
		}
	}
	return out
}

// TopPicks returns the ranked listings flagged as top picks
func TopPicks(ranked []ListingWithScore) []ListingWithScore {
	var picks []ListingWithScore
	for _, r := range ranked {
		if r.IsTopPick {
			picks = append(picks, r)
		}
	}
	return picks
}

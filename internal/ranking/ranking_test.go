package ranking

import (
	"reflect"
	"testing"
	"time"

	"github.com/vijay-prabhu/aptmatch/internal/filter"
	"github.com/vijay-prabhu/aptmatch/internal/learner"
	"github.com/vijay-prabhu/aptmatch/internal/listing"
)

var home = &listing.Coordinates{Latitude: 40.7306, Longitude: -73.9866}

func swipes() []learner.Swipe {
	return []learner.Swipe{
		{ListingID: "1", Liked: true},
		{ListingID: "2", Liked: false},
		{ListingID: "3", Liked: true},
		{ListingID: "4", Liked: false},
		{ListingID: "5", Liked: true},
	}
}

func TestRankListingsDeterministicAndSorted(t *testing.T) {
	prefs := UserPreferences{Location: home}
	opts := Options{Year: 2026}

	first := Rank(listing.SampleListings(), prefs, swipes(), opts)
	second := Rank(listing.SampleListings(), prefs, swipes(), opts)

	if len(first) != 10 {
		t.Fatalf("ranked %d listings, want 10", len(first))
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("ranking is not deterministic")
	}
	for i := 1; i < len(first); i++ {
		if first[i-1].MatchScore < first[i].MatchScore {
			t.Fatalf("not sorted at %d: %v < %v", i, first[i-1].MatchScore, first[i].MatchScore)
		}
	}
	for _, r := range first {
		if r.IsTopPick != (r.MatchScore >= DefaultTopPickThreshold) {
			t.Errorf("listing %s: IsTopPick=%v with score %v", r.ID, r.IsTopPick, r.MatchScore)
		}
		if len(r.Breakdown) != 5 {
			t.Errorf("listing %s: breakdown has %d factors", r.ID, len(r.Breakdown))
		}
	}
}

func TestRankAppliesHardFilter(t *testing.T) {
	limit := 3000.0
	prefs := UserPreferences{Filters: filter.Criteria{PriceMax: &limit}}
	for _, r := range RankListings(listing.SampleListings(), prefs, nil) {
		if r.Price > limit {
			t.Errorf("listing %s priced %v should have been filtered", r.ID, r.Price)
		}
	}
}

func TestResolveLearnedPrefersStored(t *testing.T) {
	stored := &learner.Stored{
		PreferredAmenities: []learner.AmenityWeight{{Amenity: "fireplace", Weight: 9}},
		UpdatedAt:          time.Now(),
	}
	got := ResolveLearned(UserPreferences{Learned: stored}, swipes(), listing.SampleListings())
	if len(got.PreferredAmenities) != 1 || got.PreferredAmenities["fireplace"] != 9 {
		t.Errorf("stored preferences not used: %+v", got.PreferredAmenities)
	}

	live := ResolveLearned(UserPreferences{}, swipes(), listing.SampleListings())
	if len(live.PreferredAmenities) == 0 {
		t.Error("expected live recomputation when nothing is stored")
	}

	if ResolveLearned(UserPreferences{}, nil, listing.SampleListings()) != nil {
		t.Error("no history and nothing stored should yield nil")
	}
}

func TestSortTieBreak(t *testing.T) {
	ranked := []ListingWithScore{
		{Listing: listing.Listing{ID: "b"}, MatchScore: 70},
		{Listing: listing.Listing{ID: "a"}, MatchScore: 70},
		{Listing: listing.Listing{ID: "c"}, MatchScore: 90},
	}
	Sort(ranked)
	var ids []string
	for _, r := range ranked {
		ids = append(ids, r.ID)
	}
	if !reflect.DeepEqual(ids, []string{"c", "a", "b"}) {
		t.Errorf("order = %v", ids)
	}
}

func TestBlend(t *testing.T) {
	ranked := []ListingWithScore{
		{Listing: listing.Listing{ID: "a"}, MatchScore: 90},
		{Listing: listing.Listing{ID: "b"}, MatchScore: 60},
	}
	predict := func(l *listing.Listing) float64 {
		if l.ID == "b" {
			return 1
		}
		return 0
	}

	Blend(ranked, predict, 0.5, 80)

	if ranked[0].ID != "b" || ranked[0].MatchScore != 80 {
		t.Errorf("first = %s/%v, want b/80", ranked[0].ID, ranked[0].MatchScore)
	}
	if !ranked[0].IsTopPick || ranked[1].IsTopPick {
		t.Error("top pick flags not recomputed on blended score")
	}
	if ranked[1].MLScore == nil || *ranked[1].MLScore != 0 {
		t.Errorf("MLScore = %v, want 0", ranked[1].MLScore)
	}
}

func TestExcludeSwiped(t *testing.T) {
	out := ExcludeSwiped(listing.SampleListings(), swipes())
	if len(out) != 5 {
		t.Fatalf("got %d listings, want 5", len(out))
	}
	for _, l := range out {
		switch l.ID {
		case "1", "2", "3", "4", "5":
			t.Errorf("swiped listing %s not excluded", l.ID)
		}
	}
}

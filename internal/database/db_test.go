package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vijay-prabhu/aptmatch/internal/filter"
	"github.com/vijay-prabhu/aptmatch/internal/learner"
	"github.com/vijay-prabhu/aptmatch/internal/listing"
	"github.com/vijay-prabhu/aptmatch/internal/model"
	"github.com/vijay-prabhu/aptmatch/internal/scoring"
)

func setupTestDB(t *testing.T) (*DB, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "aptmatch-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}

	dbPath := filepath.Join(tmpDir, "test.db")
	db, err := Open(dbPath)
	if err != nil {
		os.RemoveAll(tmpDir)
		t.Fatalf("failed to open database: %v", err)
	}

	cleanup := func() {
		db.Close()
		os.RemoveAll(tmpDir)
	}

	return db, cleanup
}

func seedListings(t *testing.T, db *DB) []listing.Listing {
	t.Helper()
	corpus := listing.SampleListings()
	if err := db.UpsertListings(context.Background(), corpus); err != nil {
		t.Fatalf("UpsertListings failed: %v", err)
	}
	return corpus
}

func TestOpen(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	for _, table := range []string{"listings", "swipes", "profiles"} {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count)
		if err != nil {
			t.Fatalf("failed to query tables: %v", err)
		}
		if count != 1 {
			t.Errorf("expected %s table to exist", table)
		}
	}

	if err := db.Health(context.Background()); err != nil {
		t.Errorf("Health failed: %v", err)
	}
}

func TestListingRoundTrip(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	corpus := seedListings(t, db)

	n, err := db.CountListings(ctx)
	if err != nil {
		t.Fatalf("CountListings failed: %v", err)
	}
	if n != len(corpus) {
		t.Errorf("expected %d listings, got %d", len(corpus), n)
	}

	got, err := db.GetListing(ctx, "3")
	if err != nil {
		t.Fatalf("GetListing failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected listing 3")
	}
	if got.Shape() != listing.ShapeNYC || got.Flags == nil || got.Price != 4800 {
		t.Errorf("listing 3 did not survive storage: %+v", got)
	}

	missing, err := db.GetListing(ctx, "nope")
	if err != nil {
		t.Fatalf("GetListing failed: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for unknown listing")
	}

	// Upsert replaces in place
	changed := corpus[2]
	changed.Price = 4500
	if err := db.UpsertListings(ctx, []listing.Listing{changed}); err != nil {
		t.Fatal(err)
	}
	got, _ = db.GetListing(ctx, "3")
	if got.Price != 4500 {
		t.Errorf("expected updated price 4500, got %v", got.Price)
	}
	if n, _ := db.CountListings(ctx); n != len(corpus) {
		t.Errorf("upsert should not add rows, have %d", n)
	}
}

func TestUpsertListingsRejectsMissingID(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	batch := []listing.Listing{{ID: "a", Price: 1000}, {Price: 2000}}
	if err := db.UpsertListings(ctx, batch); err == nil {
		t.Fatal("expected error for listing without id")
	}
	if n, _ := db.CountListings(ctx); n != 0 {
		t.Errorf("failed batch should roll back, have %d rows", n)
	}
}

func TestListListings(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()
	seedListings(t, db)

	maxPrice := 3000.0
	minBeds := 1

	tests := []struct {
		name string
		opts ListOptions
		want int
	}{
		{"all", ListOptions{}, 10},
		{"limit", ListOptions{Limit: 3}, 3},
		{"offset only", ListOptions{Offset: 8}, 2},
		{"max price", ListOptions{MaxPrice: &maxPrice}, 3},
		{"max price and bedrooms", ListOptions{MaxPrice: &maxPrice, MinBedrooms: &minBeds}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.ListListings(ctx, tt.opts)
			if err != nil {
				t.Fatalf("ListListings failed: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("expected %d listings, got %d", tt.want, len(got))
			}
		})
	}
}

func TestSwipes(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	session := "s1"
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	records := []Swipe{
		{UserID: "alice", ListingID: "1", Liked: true, SessionID: &session, CreatedAt: base},
		{UserID: "alice", ListingID: "2", Liked: false, SessionID: &session, CreatedAt: base.Add(time.Minute)},
		{UserID: "alice", ListingID: "1", Liked: false, CreatedAt: base.Add(2 * time.Minute)},
		{UserID: "bob", ListingID: "3", Liked: true, CreatedAt: base},
	}
	for i := range records {
		if err := db.CreateSwipe(ctx, &records[i]); err != nil {
			t.Fatalf("CreateSwipe failed: %v", err)
		}
		if records[i].ID == "" {
			t.Error("expected swipe id to be assigned")
		}
	}

	history, err := db.SwipeHistory(ctx, "alice")
	if err != nil {
		t.Fatalf("SwipeHistory failed: %v", err)
	}
	want := []learner.Swipe{{ListingID: "1", Liked: true}, {ListingID: "2", Liked: false}, {ListingID: "1", Liked: false}}
	if len(history) != len(want) {
		t.Fatalf("expected %d swipes, got %d", len(want), len(history))
	}
	for i := range want {
		if history[i] != want[i] {
			t.Errorf("history[%d] = %+v, want %+v", i, history[i], want[i])
		}
	}

	inSession, err := db.ListSwipes(ctx, "alice", SwipeOptions{SessionID: &session})
	if err != nil {
		t.Fatal(err)
	}
	if len(inSession) != 2 {
		t.Errorf("expected 2 swipes in session, got %d", len(inSession))
	}

	n, _ := db.CountSwipes(ctx, "alice")
	if n != 3 {
		t.Errorf("expected 3 swipes, got %d", n)
	}

	stats, err := db.GetSwipeStats(ctx, "alice")
	if err != nil {
		t.Fatalf("GetSwipeStats failed: %v", err)
	}
	if stats.Total != 3 || stats.Liked != 1 || stats.Passed != 2 || stats.Listings != 2 || stats.Sessions != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if stats.FirstAt == nil || !stats.FirstAt.Equal(base) {
		t.Errorf("FirstAt = %v, want %v", stats.FirstAt, base)
	}

	empty, err := db.GetSwipeStats(ctx, "nobody")
	if err != nil {
		t.Fatal(err)
	}
	if empty.Total != 0 || empty.LikeRatio != 0 || empty.FirstAt != nil {
		t.Errorf("expected empty stats, got %+v", empty)
	}
}

func TestProfile(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	p, err := db.GetProfile(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if p != nil {
		t.Fatal("expected no profile before creation")
	}

	p, err = db.EnsureProfile(ctx, "alice")
	if err != nil {
		t.Fatalf("EnsureProfile failed: %v", err)
	}
	if p == nil || p.Learned != nil || p.Model != nil {
		t.Fatalf("expected empty profile, got %+v", p)
	}

	maxPrice := 4000.0
	weights := scoring.DefaultWeights()
	settings := Settings{
		Location: &listing.Coordinates{Latitude: 40.73, Longitude: -73.99},
		Filters:  filter.Criteria{PriceMax: &maxPrice, Bedrooms: []int{1, 2}},
		Weights:  &weights,
	}
	if err := db.SaveSettings(ctx, "alice", settings); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}

	learnedAt := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	stored := learner.ToStored(learner.LearnFromSwipeHistory(
		[]learner.Swipe{{ListingID: "1", Liked: true}, {ListingID: "4", Liked: false}},
		listing.SampleListings(),
	), learnedAt)
	if err := db.SaveLearned(ctx, "alice", stored); err != nil {
		t.Fatalf("SaveLearned failed: %v", err)
	}

	m := &model.ModelWeights{
		Weights:      make([][]float64, 18),
		Biases:       []float64{0.1},
		TrainedAt:    learnedAt,
		TrainingSize: 12,
		Accuracy:     0.75,
	}
	for i := range m.Weights {
		m.Weights[i] = []float64{float64(i) / 10}
	}
	if err := db.SaveModel(ctx, "alice", m); err != nil {
		t.Fatalf("SaveModel failed: %v", err)
	}

	p, err = db.GetProfile(ctx, "alice")
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if p.Settings.Filters.PriceMax == nil || *p.Settings.Filters.PriceMax != 4000 {
		t.Errorf("filters not stored: %+v", p.Settings.Filters)
	}
	if p.Learned == nil || len(p.Learned.PreferredAmenities) != len(stored.PreferredAmenities) {
		t.Errorf("learned preferences not stored: %+v", p.Learned)
	}
	if p.LearnedAt == nil || !p.LearnedAt.Equal(learnedAt) {
		t.Errorf("LearnedAt = %v", p.LearnedAt)
	}
	if p.Model == nil || p.Model.Weights[5][0] != 0.5 || p.Model.Accuracy != 0.75 {
		t.Errorf("model not stored: %+v", p.Model)
	}

	prefs := p.UserPreferences(nil)
	if prefs.Location == nil || prefs.Learned == nil || prefs.Weights == nil {
		t.Errorf("UserPreferences incomplete: %+v", prefs)
	}

	fallback := &listing.Coordinates{Latitude: 1, Longitude: 2}
	var none *Profile
	if got := none.UserPreferences(fallback); got.Location != fallback {
		t.Error("nil profile should use the fallback location")
	}
}

func TestGetStats(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()
	seedListings(t, db)

	for _, id := range []string{"1", "2", "3"} {
		if err := db.CreateSwipe(ctx, &Swipe{UserID: "alice", ListingID: id, Liked: id != "2"}); err != nil {
			t.Fatal(err)
		}
	}

	stats, err := db.GetStats(ctx, "alice")
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats.Listings != 10 || stats.Unswiped != 7 || stats.Swipes.Liked != 2 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if stats.HasLearned || stats.HasModel {
		t.Error("expected no learned preferences or model")
	}
}

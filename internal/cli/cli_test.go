package cli

import (
	"bytes"
	"context"
	"encoding/csv"
	"path/filepath"
	"testing"
	"time"

	"github.com/vijay-prabhu/aptmatch/internal/database"
	"github.com/vijay-prabhu/aptmatch/internal/listing"
	"github.com/vijay-prabhu/aptmatch/internal/ranking"
	"github.com/vijay-prabhu/aptmatch/internal/scoring"
	"github.com/vijay-prabhu/aptmatch/internal/tracker"
)

func setupTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.UpsertListings(context.Background(), listing.SampleListings()); err != nil {
		t.Fatalf("failed to seed listings: %v", err)
	}
	return db
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"12h", 12 * time.Hour, false},
		{"7d", 7 * 24 * time.Hour, false},
		{"2w", 14 * 24 * time.Hour, false},
		{"1m", 30 * 24 * time.Hour, false},
		{"d", 0, true},
		{"xd", 0, true},
		{"3y", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseDuration(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseLocation(t *testing.T) {
	loc, err := parseLocation("40.7306, -73.9866")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc.Latitude != 40.7306 || loc.Longitude != -73.9866 {
		t.Errorf("got %+v", loc)
	}

	for _, bad := range []string{"40.7", "a,b", "91,0", "0,181"} {
		if _, err := parseLocation(bad); err == nil {
			t.Errorf("parseLocation(%q) should fail", bad)
		}
	}
}

func TestParseWeights(t *testing.T) {
	base := scoring.DefaultWeights()

	w, err := parseWeights(base, []string{"distance=35", "rating=0"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.Distance != 35 || w.Rating != 0 || w.Sum() != 100 {
		t.Errorf("got %+v", w)
	}

	tests := []struct {
		name  string
		pairs []string
	}{
		{"missing equals", []string{"distance"}},
		{"bad number", []string{"distance=lots"}},
		{"unknown factor", []string{"vibes=10"}},
		{"bad sum", []string{"distance=50"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseWeights(base, tt.pairs); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestExport(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	for _, s := range []database.Swipe{
		{UserID: "alice", ListingID: "1", Liked: true},
		{UserID: "alice", ListingID: "2", Liked: false},
		{UserID: "alice", ListingID: "gone", Liked: true},
		{UserID: "bob", ListingID: "3", Liked: true},
	} {
		if err := db.CreateSwipe(ctx, &s); err != nil {
			t.Fatal(err)
		}
	}

	rows, err := exportRows(ctx, db, "alice", false)
	if err != nil {
		t.Fatalf("exportRows failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].Price == 0 || rows[2].Title != "" {
		t.Errorf("expected listing details only for known listings: %+v", rows)
	}

	liked, err := exportRows(ctx, db, "alice", true)
	if err != nil {
		t.Fatal(err)
	}
	if len(liked) != 2 {
		t.Errorf("expected 2 liked rows, got %d", len(liked))
	}

	var buf bytes.Buffer
	if err := exportCSV(&buf, rows); err != nil {
		t.Fatalf("exportCSV failed: %v", err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("csv not readable: %v", err)
	}
	if len(records) != 4 || records[0][1] != "listing_id" || records[1][2] != "true" {
		t.Errorf("unexpected csv: %v", records)
	}
}

func TestDetailedStats(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	now := time.Now()

	for i, id := range []string{"1", "2", "3", "4"} {
		s := database.Swipe{UserID: "alice", ListingID: id, Liked: i%2 == 0, CreatedAt: now.Add(time.Duration(i) * time.Minute)}
		if err := db.CreateSwipe(ctx, &s); err != nil {
			t.Fatal(err)
		}
	}

	basic, err := db.GetStats(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	d, err := getDetailedStats(ctx, db, basic, now.Add(time.Hour))
	if err != nil {
		t.Fatalf("getDetailedStats failed: %v", err)
	}

	total := 0
	for _, a := range d.RecentActivity {
		total += a.Count
	}
	if total != 4 {
		t.Errorf("activity counts %d swipes, want 4", total)
	}

	liked, passed := 0, 0
	for _, b := range d.ByBedrooms {
		liked += b.Liked
		passed += b.Passed
	}
	if liked != 2 || passed != 2 {
		t.Errorf("bedroom tallies = %d liked, %d passed", liked, passed)
	}
	if d.LastActivity == "" {
		t.Error("expected a last activity summary")
	}
}

func TestExportFeed(t *testing.T) {
	ml := 62.5
	feed := &tracker.Feed{
		Listings: []ranking.ListingWithScore{
			{Listing: listing.Listing{ID: "4", Price: 3100, Bedrooms: 1}, MatchScore: 88, IsTopPick: true, MLScore: &ml},
			{Listing: listing.Listing{ID: "9", Price: 2600}, MatchScore: 61.5},
		},
	}

	rows := feedRows(feed)
	if len(rows) != 2 || rows[0].Rank != 1 || rows[1].Rank != 2 {
		t.Fatalf("unexpected rows: %+v", rows)
	}

	var buf bytes.Buffer
	if err := exportFeedCSV(&buf, rows); err != nil {
		t.Fatalf("exportFeedCSV failed: %v", err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if got := records[1]; got[1] != "4" || got[6] != "88.0" || got[7] != "62.5" || got[8] != "true" {
		t.Errorf("first row = %v", got)
	}
	if got := records[2]; got[6] != "61.5" || got[7] != "" {
		t.Errorf("second row = %v", got)
	}
}

func TestAccuracyColor(t *testing.T) {
	tests := []struct {
		acc  float64
		want string
	}{
		{0, ColorGray},
		{0.3, ColorRed},
		{0.5, ColorYellow},
		{0.74, ColorYellow},
		{0.75, ColorGreen},
		{1, ColorGreen},
	}
	for _, tt := range tests {
		if got := AccuracyColor(tt.acc); got != tt.want {
			t.Errorf("AccuracyColor(%v) = %q, want %q", tt.acc, got, tt.want)
		}
	}
}

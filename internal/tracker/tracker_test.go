package tracker

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/vijay-prabhu/aptmatch/internal/config"
	"github.com/vijay-prabhu/aptmatch/internal/database"
	"github.com/vijay-prabhu/aptmatch/internal/filter"
	"github.com/vijay-prabhu/aptmatch/internal/listing"
	"github.com/vijay-prabhu/aptmatch/internal/model"
)

func setupTracker(t *testing.T) (*Tracker, *database.DB) {
	t.Helper()

	cfg := config.Default()
	cfg.Database.Path = filepath.Join(t.TempDir(), "test.db")

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.UpsertListings(context.Background(), listing.SampleListings()); err != nil {
		t.Fatalf("failed to seed listings: %v", err)
	}

	tr := New(db, cfg, zerolog.Nop())
	t.Cleanup(tr.Wait)
	return tr, db
}

// swipeAlternating likes odd listings and passes on even ones, 1..n
func swipeAlternating(t *testing.T, tr *Tracker, user string, n int) *SwipeResult {
	t.Helper()
	ids := []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10"}
	var last *SwipeResult
	for i := 0; i < n; i++ {
		res, err := tr.RecordSwipe(context.Background(), user, ids[i%len(ids)], i%2 == 0, nil)
		if err != nil {
			t.Fatalf("RecordSwipe failed: %v", err)
		}
		last = res
	}
	return last
}

func TestRecordSwipeLearnsAtMilestone(t *testing.T) {
	tr, _ := setupTracker(t)
	ctx := context.Background()

	res := swipeAlternating(t, tr, "alice", 4)
	if res.Learned != nil {
		t.Error("should not learn before the initial milestone")
	}
	if res.NextLearnIn != 1 {
		t.Errorf("NextLearnIn = %d, want 1", res.NextLearnIn)
	}

	res = swipeAlternating(t, tr, "alice", 1)
	if res.Count != 5 {
		t.Fatalf("Count = %d, want 5", res.Count)
	}
	if res.Learned == nil {
		t.Fatal("expected learned preferences at the fifth swipe")
	}
	if res.RetrainScheduled {
		t.Error("retrain should not be scheduled at 5 swipes with retrain_every=10")
	}

	stored, err := tr.Learned(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if stored == nil || len(stored.PreferredAmenities) == 0 {
		t.Fatalf("learned preferences not persisted: %+v", stored)
	}
}

func TestRecordSwipeUnknownListing(t *testing.T) {
	tr, db := setupTracker(t)
	ctx := context.Background()

	_, err := tr.RecordSwipe(ctx, "alice", "missing", true, nil)
	if !errors.Is(err, ErrListingNotFound) {
		t.Fatalf("expected ErrListingNotFound, got %v", err)
	}
	if n, _ := db.CountSwipes(ctx, "alice"); n != 0 {
		t.Errorf("rejected swipe should not be stored, have %d", n)
	}
}

func TestRecordSwipeSchedulesRetrain(t *testing.T) {
	tr, _ := setupTracker(t)
	tr.config.Training.RetrainEvery = 5

	res := swipeAlternating(t, tr, "alice", 5)
	if !res.RetrainScheduled {
		t.Fatal("expected retrain to be scheduled")
	}
	tr.Wait()

	status, err := tr.ModelStatus(context.Background(), "alice")
	if err != nil {
		t.Fatal(err)
	}
	if status != ModelFresh {
		t.Errorf("ModelStatus = %v, want %v", status, ModelFresh)
	}
}

func TestTrain(t *testing.T) {
	tr, _ := setupTracker(t)
	ctx := context.Background()

	// Too few swipes is reported in the result, not as an error
	swipeAlternating(t, tr, "alice", 2)
	res, err := tr.Train(ctx, "alice", nil)
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}
	if res.Success {
		t.Fatal("expected precondition failure")
	}
	if _, err := tr.Suggest(ctx, "alice"); !errors.Is(err, ErrNoModel) {
		t.Errorf("expected ErrNoModel, got %v", err)
	}

	swipeAlternating(t, tr, "bob", 5)
	epochs := 0
	res, err = tr.Train(ctx, "bob", func(p model.Progress) { epochs++ })
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}
	if !res.Success {
		t.Fatalf("expected success, got %q", res.Error)
	}
	if epochs != tr.config.Training.Epochs {
		t.Errorf("progress called %d times, want %d", epochs, tr.config.Training.Epochs)
	}

	s, err := tr.Suggest(ctx, "bob")
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}
	if s.Weights.Sum() != 100 {
		t.Errorf("suggested weights sum to %v", s.Weights.Sum())
	}

	p, err := tr.Predict(ctx, "bob", "3")
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if p < 0 || p > 1 {
		t.Errorf("probability %v out of [0,1]", p)
	}
}

func TestTrainInFlightGuard(t *testing.T) {
	tr, _ := setupTracker(t)

	if !tr.acquire("alice") {
		t.Fatal("first acquire should succeed")
	}
	if _, err := tr.Train(context.Background(), "alice", nil); !errors.Is(err, ErrTrainingInProgress) {
		t.Errorf("expected ErrTrainingInProgress, got %v", err)
	}
	if tr.retrainAsync("alice") {
		t.Error("background retrain should be skipped while a run is in flight")
	}
	tr.release("alice")

	if !tr.acquire("alice") {
		t.Error("acquire should succeed after release")
	}
	tr.release("alice")
}

func TestFeed(t *testing.T) {
	tr, db := setupTracker(t)
	ctx := context.Background()

	feed, err := tr.Feed(ctx, "alice", 0)
	if err != nil {
		t.Fatalf("Feed failed: %v", err)
	}
	if len(feed.Listings) != 10 || feed.Candidates != 10 {
		t.Errorf("cold start feed should rank the whole corpus, got %d", len(feed.Listings))
	}
	if feed.ModelUsed {
		t.Error("no model should be used at cold start")
	}

	swipeAlternating(t, tr, "alice", 5)

	feed, err = tr.Feed(ctx, "alice", 3)
	if err != nil {
		t.Fatalf("Feed failed: %v", err)
	}
	if feed.Candidates != 5 {
		t.Errorf("expected swiped listings excluded, candidates = %d", feed.Candidates)
	}
	if len(feed.Listings) != 3 {
		t.Errorf("expected limit 3, got %d", len(feed.Listings))
	}
	for i, l := range feed.Listings {
		switch l.ID {
		case "1", "2", "3", "4", "5":
			t.Errorf("swiped listing %s in feed", l.ID)
		}
		if i > 0 && feed.Listings[i-1].MatchScore < l.MatchScore {
			t.Error("feed not sorted by score")
		}
	}

	// Hard filters from the profile apply
	maxPrice := 3500.0
	if err := db.SaveSettings(ctx, "alice", database.Settings{Filters: filter.Criteria{PriceMax: &maxPrice}}); err != nil {
		t.Fatal(err)
	}
	feed, err = tr.Feed(ctx, "alice", 0)
	if err != nil {
		t.Fatal(err)
	}
	for _, l := range feed.Listings {
		if l.Price > maxPrice {
			t.Errorf("listing %s over max price", l.ID)
		}
	}
	if feed.Filtered+feed.Matched != feed.Candidates {
		t.Errorf("filtered %d + matched %d != candidates %d", feed.Filtered, feed.Matched, feed.Candidates)
	}
}

func TestFeedBlendsModel(t *testing.T) {
	tr, _ := setupTracker(t)
	ctx := context.Background()
	tr.config.Ranking.ModelBlend = 0.5

	swipeAlternating(t, tr, "alice", 5)
	if res, err := tr.Train(ctx, "alice", nil); err != nil || !res.Success {
		t.Fatalf("Train failed: %v %s", err, res.Error)
	}

	feed, err := tr.Feed(ctx, "alice", 0)
	if err != nil {
		t.Fatal(err)
	}
	if !feed.ModelUsed {
		t.Fatal("expected the model to be blended")
	}
	for _, l := range feed.Listings {
		if l.MLScore == nil {
			t.Errorf("listing %s missing ML score", l.ID)
		}
	}
}

func TestFeedSkipsStaleModel(t *testing.T) {
	tr, _ := setupTracker(t)
	ctx := context.Background()
	tr.config.Ranking.ModelBlend = 0.5

	swipeAlternating(t, tr, "alice", 5)
	res, err := tr.Train(ctx, "alice", nil)
	if err != nil || !res.Success {
		t.Fatalf("Train failed: %v %s", err, res.Error)
	}
	trainedAt := res.Weights.TrainedAt

	tests := []struct {
		name     string
		age      time.Duration
		wantUsed bool
	}{
		{"six days old", 6 * 24 * time.Hour, true},
		{"eight days old", 8 * 24 * time.Hour, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr.now = func() time.Time { return trainedAt.Add(tt.age) }

			feed, err := tr.Feed(ctx, "alice", 0)
			if err != nil {
				t.Fatal(err)
			}
			if feed.ModelUsed != tt.wantUsed {
				t.Fatalf("ModelUsed = %v, want %v", feed.ModelUsed, tt.wantUsed)
			}
			for _, l := range feed.Listings {
				if (l.MLScore != nil) != tt.wantUsed {
					t.Errorf("listing %s MLScore present = %v, want %v", l.ID, l.MLScore != nil, tt.wantUsed)
				}
			}
		})
	}
}

func TestExplain(t *testing.T) {
	tr, db := setupTracker(t)
	ctx := context.Background()

	maxPrice := 3000.0
	if err := db.SaveSettings(ctx, "alice", database.Settings{Filters: filter.Criteria{PriceMax: &maxPrice}}); err != nil {
		t.Fatal(err)
	}

	exp, err := tr.Explain(ctx, "alice", "3")
	if err != nil {
		t.Fatalf("Explain failed: %v", err)
	}
	if exp.Passes || len(exp.Rejections) != 1 || exp.Rejections[0].Rule != filter.RulePrice {
		t.Errorf("expected a single price rejection, got %+v", exp.Rejections)
	}
	if exp.Score.Score < 0 || exp.Score.Score > 100 || exp.Description == "" {
		t.Errorf("unexpected score: %+v", exp.Score)
	}
	if exp.Probability != nil {
		t.Error("no probability without a model")
	}

	if _, err := tr.Explain(ctx, "alice", "missing"); !errors.Is(err, ErrListingNotFound) {
		t.Errorf("expected ErrListingNotFound, got %v", err)
	}
}

func TestEndSession(t *testing.T) {
	tr, _ := setupTracker(t)
	ctx := context.Background()

	summary, err := tr.EndSession(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if summary.Swipes != 0 || summary.Learned != nil || summary.Model != nil {
		t.Errorf("empty session should do nothing: %+v", summary)
	}

	session := NewSessionID()
	for i, id := range []string{"1", "2", "3", "4", "5", "6"} {
		if _, err := tr.RecordSwipe(ctx, "alice", id, i%2 == 0, &session); err != nil {
			t.Fatal(err)
		}
	}

	summary, err = tr.EndSession(ctx, "alice")
	if err != nil {
		t.Fatalf("EndSession failed: %v", err)
	}
	if summary.Swipes != 6 || summary.Learned == nil {
		t.Errorf("unexpected summary: %+v", summary)
	}
	if summary.Model == nil || !summary.Model.Success {
		t.Errorf("expected a trained model, got %+v", summary.Model)
	}
}

// Package tracker orchestrates swipe sessions over storage: it records
// swipes, refreshes learned preferences and retrains models at milestones,
// and builds ranked feeds.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vijay-prabhu/aptmatch/internal/config"
	"github.com/vijay-prabhu/aptmatch/internal/database"
	"github.com/vijay-prabhu/aptmatch/internal/filter"
	"github.com/vijay-prabhu/aptmatch/internal/learner"
	"github.com/vijay-prabhu/aptmatch/internal/listing"
	"github.com/vijay-prabhu/aptmatch/internal/metrics"
	"github.com/vijay-prabhu/aptmatch/internal/model"
	"github.com/vijay-prabhu/aptmatch/internal/ranking"
	"github.com/vijay-prabhu/aptmatch/internal/scoring"
)

var (
	// ErrListingNotFound is returned when a swipe or lookup names an unknown listing
	ErrListingNotFound = errors.New("listing not found")
	// ErrTrainingInProgress is returned when the user already has a training run in flight
	ErrTrainingInProgress = errors.New("training already in progress")
	// ErrNoModel is returned when an operation needs a trained model
	ErrNoModel = errors.New("no trained model; run 'aptmatch train' first")
)

// Tracker is safe for concurrent use
type Tracker struct {
	db     *database.DB
	config *config.Config
	log    zerolog.Logger
	now    func() time.Time

	mu       sync.Mutex
	training map[string]bool
	wg       sync.WaitGroup
}

// New creates a new Tracker
func New(db *database.DB, cfg *config.Config, log zerolog.Logger) *Tracker {
	return &Tracker{
		db:       db,
		config:   cfg,
		log:      log.With().Str("component", "tracker").Logger(),
		now:      time.Now,
		training: make(map[string]bool),
	}
}

// Wait blocks until background training runs have finished
func (t *Tracker) Wait() {
	t.wg.Wait()
}

// NewSessionID returns an identifier grouping the swipes of one session
func NewSessionID() string {
	return uuid.New().String()
}

func (t *Tracker) milestones() Milestones {
	return Milestones{
		InitialSwipes: t.config.Learning.InitialSwipes,
		RefreshEvery:  t.config.Learning.RefreshEvery,
		RetrainEvery:  t.config.Training.RetrainEvery,
	}
}

// SwipeResult reports what recording a swipe triggered
type SwipeResult struct {
	Swipe            database.Swipe  `json:"swipe"`
	Count            int             `json:"count"`
	Learned          *learner.Stored `json:"learned,omitempty"`
	RetrainScheduled bool            `json:"retrain_scheduled"`
	NextLearnIn      int             `json:"next_learn_in"`
}

// RecordSwipe appends a swipe and runs any milestone it reaches. Preference
// learning runs inline; retraining is scheduled in the background.
func (t *Tracker) RecordSwipe(ctx context.Context, userID, listingID string, liked bool, sessionID *string) (*SwipeResult, error) {
	l, err := t.db.GetListing(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up listing: %w", err)
	}
	if l == nil {
		return nil, fmt.Errorf("%w: %s", ErrListingNotFound, listingID)
	}

	swipe := database.Swipe{
		UserID:    userID,
		ListingID: listingID,
		Liked:     liked,
		SessionID: sessionID,
		CreatedAt: t.now(),
	}
	if err := t.db.CreateSwipe(ctx, &swipe); err != nil {
		return nil, fmt.Errorf("failed to record swipe: %w", err)
	}
	metrics.RecordSwipe(liked)

	count, err := t.db.CountSwipes(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count swipes: %w", err)
	}

	result := &SwipeResult{Swipe: swipe, Count: count}
	ms := t.milestones()

	if ms.ShouldLearn(count) {
		stored, err := t.RefreshLearned(ctx, userID)
		if err != nil {
			// The swipe itself is recorded; learning catches up at the next milestone
			t.log.Warn().Err(err).Str("user", userID).Msg("failed to refresh learned preferences")
		} else {
			result.Learned = stored
		}
	}
	result.NextLearnIn = ms.NextLearn(count)

	if ms.ShouldRetrain(count) {
		result.RetrainScheduled = t.retrainAsync(userID)
	}

	t.log.Debug().
		Str("user", userID).
		Str("listing", listingID).
		Bool("liked", liked).
		Int("count", count).
		Msg("swipe recorded")

	return result, nil
}

// RefreshLearned recomputes learned preferences from the full swipe log and
// persists them
func (t *Tracker) RefreshLearned(ctx context.Context, userID string) (*learner.Stored, error) {
	corpus, history, err := t.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	prefs := learner.LearnFromSwipeHistory(history, corpus)
	stored := learner.ToStored(prefs, t.now())
	if err := t.db.SaveLearned(ctx, userID, stored); err != nil {
		return nil, fmt.Errorf("failed to save learned preferences: %w", err)
	}

	t.log.Info().
		Str("user", userID).
		Int("swipes", len(history)).
		Int("amenities", len(stored.PreferredAmenities)).
		Msg("learned preferences refreshed")

	return stored, nil
}

// Learned returns the stored learned preferences, or nil when none exist
func (t *Tracker) Learned(ctx context.Context, userID string) (*learner.Stored, error) {
	p, err := t.db.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}
	return p.Learned, nil
}

// Train retrains the user's model from scratch and stores it on success.
// Precondition failures come back in the TrainResult, not as an error.
func (t *Tracker) Train(ctx context.Context, userID string, progress model.ProgressCallback) (model.TrainResult, error) {
	if !t.acquire(userID) {
		return model.TrainResult{}, ErrTrainingInProgress
	}
	defer t.release(userID)

	return t.train(ctx, userID, progress)
}

func (t *Tracker) train(ctx context.Context, userID string, progress model.ProgressCallback) (model.TrainResult, error) {
	ctx, cancel := context.WithTimeout(ctx, t.config.Training.TimeoutDuration())
	defer cancel()

	corpus, history, err := t.load(ctx, userID)
	if err != nil {
		return model.TrainResult{}, err
	}

	start := time.Now()
	res := model.Train(ctx, corpus, history, model.TrainOptions{
		Config:       t.config.Training.TrainConfig(),
		UserLocation: t.location(ctx, userID),
		Progress:     progress,
		Now:          t.now,
	})
	elapsed := time.Since(start)

	outcome := metrics.OutcomeSuccess
	switch {
	case res.Success:
	case strings.HasPrefix(res.Error, "training cancelled"):
		outcome = metrics.OutcomeCancelled
	default:
		outcome = metrics.OutcomeRejected
	}
	metrics.RecordTraining(outcome, elapsed, res.Accuracy)

	if !res.Success {
		t.log.Info().Str("user", userID).Str("outcome", outcome).Str("reason", res.Error).Msg("model not trained")
		return res, nil
	}

	if err := t.db.SaveModel(ctx, userID, res.Weights); err != nil {
		return res, fmt.Errorf("failed to save model: %w", err)
	}

	t.log.Info().
		Str("user", userID).
		Int("examples", res.Weights.TrainingSize).
		Float64("accuracy", res.Accuracy).
		Dur("elapsed", elapsed).
		Msg("model trained")

	return res, nil
}

// retrainAsync starts a background training run unless one is in flight
func (t *Tracker) retrainAsync(userID string) bool {
	if !t.acquire(userID) {
		t.log.Debug().Str("user", userID).Msg("retrain skipped, run in flight")
		return false
	}

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		defer t.release(userID)

		if _, err := t.train(context.Background(), userID, nil); err != nil {
			t.log.Error().Err(err).Str("user", userID).Msg("background retrain failed")
		}
	}()
	return true
}

func (t *Tracker) acquire(userID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.training[userID] {
		return false
	}
	t.training[userID] = true
	return true
}

func (t *Tracker) release(userID string) {
	t.mu.Lock()
	delete(t.training, userID)
	t.mu.Unlock()
}

// SessionSummary is the result of ending a swipe session
type SessionSummary struct {
	UserID  string             `json:"user_id"`
	Swipes  int                `json:"swipes"`
	Learned *learner.Stored    `json:"learned,omitempty"`
	Model   *model.TrainResult `json:"model,omitempty"`
}

// EndSession forces a preference refresh and a synchronous retrain
func (t *Tracker) EndSession(ctx context.Context, userID string) (*SessionSummary, error) {
	count, err := t.db.CountSwipes(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count swipes: %w", err)
	}

	summary := &SessionSummary{UserID: userID, Swipes: count}
	if count == 0 {
		return summary, nil
	}

	if summary.Learned, err = t.RefreshLearned(ctx, userID); err != nil {
		return nil, err
	}

	res, err := t.Train(ctx, userID, nil)
	switch {
	case errors.Is(err, ErrTrainingInProgress):
		// The in-flight run stores its own result
	case err != nil:
		return nil, err
	default:
		summary.Model = &res
	}

	return summary, nil
}

// Feed is a ranked page of listings for one user
type Feed struct {
	UserID      string                     `json:"user_id"`
	Listings    []ranking.ListingWithScore `json:"listings"`
	Candidates  int                        `json:"candidates"`
	Filtered    int                        `json:"filtered"`
	Matched     int                        `json:"matched"`
	ModelUsed   bool                       `json:"model_used"`
	GeneratedAt time.Time                  `json:"generated_at"`
}

// Feed ranks the corpus for a user. limit <= 0 uses the configured default.
func (t *Tracker) Feed(ctx context.Context, userID string, limit int) (*Feed, error) {
	start := time.Now()

	corpus, history, err := t.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile, err := t.db.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	prefs := t.preferences(profile)

	candidates := corpus
	if t.config.Ranking.ExcludeSwiped {
		candidates = ranking.ExcludeSwiped(corpus, history)
	}

	// Learned preferences come from the full corpus, not just the candidates
	if prefs.Learned == nil && len(history) > 0 {
		prefs.Learned = learner.ToStored(learner.LearnFromSwipeHistory(history, corpus), t.now())
	}

	opts := ranking.Options{TopPickThreshold: t.config.Ranking.TopPickThreshold, Year: t.now().Year()}
	ranked := ranking.Rank(candidates, prefs, history, opts)

	feed := &Feed{
		UserID:      userID,
		Candidates:  len(candidates),
		Filtered:    len(candidates) - len(ranked),
		Matched:     len(ranked),
		GeneratedAt: t.now(),
	}

	if blend := t.config.Ranking.ModelBlend; blend > 0 && profile != nil &&
		profile.Model.ValidAt(t.now(), t.config.Training.MaxModelAge()) {
		m := profile.Model
		ranking.Blend(ranked, func(l *listing.Listing) float64 {
			return model.Predict(l, m, prefs.Location)
		}, blend, opts.TopPickThreshold)
		feed.ModelUsed = true
	}

	metrics.RecordRank(time.Since(start), len(ranked), feed.Filtered)

	if limit <= 0 {
		limit = t.config.Ranking.DefaultLimit
	}
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	feed.Listings = ranked

	return feed, nil
}

// Explanation details how one listing fares for a user
type Explanation struct {
	Listing     *listing.Listing `json:"listing"`
	Passes      bool             `json:"passes"`
	Rejections  []filter.Result  `json:"rejections,omitempty"`
	Score       scoring.Result   `json:"score"`
	Description string           `json:"description"`
	Probability *float64         `json:"probability,omitempty"`
}

// Explain reports filter rejections and the score breakdown for a listing.
// The score is computed even when the listing is filtered out.
func (t *Tracker) Explain(ctx context.Context, userID, listingID string) (*Explanation, error) {
	corpus, history, err := t.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	l := listing.Index(corpus)[listingID]
	if l == nil {
		return nil, fmt.Errorf("%w: %s", ErrListingNotFound, listingID)
	}

	profile, err := t.db.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	prefs := t.preferences(profile)

	engine := scoring.NewEngine(*prefs.Weights, prefs.Location)
	engine.Year = t.now().Year()
	score := engine.Score(l, ranking.ResolveLearned(prefs, history, corpus))

	exp := &Explanation{
		Listing:     l,
		Rejections:  filter.Explain(l, prefs.Filters),
		Score:       score,
		Description: scoring.Describe(score.Score),
	}
	exp.Passes = len(exp.Rejections) == 0

	if profile != nil && profile.Model.ValidAt(t.now(), t.config.Training.MaxModelAge()) {
		p := model.Predict(l, profile.Model, prefs.Location)
		exp.Probability = &p
	}

	return exp, nil
}

// Predict returns the model's like probability for a listing
func (t *Tracker) Predict(ctx context.Context, userID, listingID string) (float64, error) {
	l, err := t.db.GetListing(ctx, listingID)
	if err != nil {
		return 0, err
	}
	if l == nil {
		return 0, fmt.Errorf("%w: %s", ErrListingNotFound, listingID)
	}

	m, err := t.Model(ctx, userID)
	if err != nil {
		return 0, err
	}
	if m == nil {
		return 0, ErrNoModel
	}

	return model.Predict(l, m, t.location(ctx, userID)), nil
}

// Model returns the user's stored model, or nil when none exists
func (t *Tracker) Model(ctx context.Context, userID string) (*model.ModelWeights, error) {
	p, err := t.db.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}
	return p.Model, nil
}

// ModelStatus classifies the user's stored model
func (t *Tracker) ModelStatus(ctx context.Context, userID string) (ModelStatus, error) {
	m, err := t.Model(ctx, userID)
	if err != nil {
		return "", err
	}
	return ComputeModelStatus(m, t.now(), t.config.Training.MaxModelAge()), nil
}

// Suggest derives scoring weights from the user's stored model
func (t *Tracker) Suggest(ctx context.Context, userID string) (*model.Suggestion, error) {
	m, err := t.Model(ctx, userID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrNoModel
	}
	s := model.SuggestScoringWeights(m)
	return &s, nil
}

// Preferences returns the effective ranking preferences for a user
func (t *Tracker) Preferences(ctx context.Context, userID string) (ranking.UserPreferences, error) {
	p, err := t.db.GetProfile(ctx, userID)
	if err != nil {
		return ranking.UserPreferences{}, err
	}
	return t.preferences(p), nil
}

// preferences fills gaps in the profile from config
func (t *Tracker) preferences(p *database.Profile) ranking.UserPreferences {
	prefs := p.UserPreferences(t.config.User.Location())
	if prefs.Weights == nil {
		w := t.config.Scoring
		prefs.Weights = &w
	}
	return prefs
}

func (t *Tracker) location(ctx context.Context, userID string) *listing.Coordinates {
	p, err := t.db.GetProfile(ctx, userID)
	if err != nil {
		t.log.Warn().Err(err).Str("user", userID).Msg("failed to load profile, using configured location")
	}
	return t.preferences(p).Location
}

func (t *Tracker) load(ctx context.Context, userID string) ([]listing.Listing, []learner.Swipe, error) {
	corpus, err := t.db.ListListings(ctx, database.ListOptions{})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load listings: %w", err)
	}
	history, err := t.db.SwipeHistory(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load swipe history: %w", err)
	}
	return corpus, history, nil
}

// ModelReport describes a user's stored model for display
type ModelReport struct {
	UserID      string              `json:"user_id"`
	Status      ModelStatus         `json:"status"`
	Age         string              `json:"age,omitempty"`
	Model       *model.ModelWeights `json:"model,omitempty"`
	Importances []model.Importance  `json:"importances,omitempty"`
}

// ModelReport returns the stored model with its status and feature importances
func (t *Tracker) ModelReport(ctx context.Context, userID string) (*ModelReport, error) {
	m, err := t.Model(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := t.now()
	report := &ModelReport{
		UserID: userID,
		Status: ComputeModelStatus(m, now, t.config.Training.MaxModelAge()),
		Model:  m,
	}
	if m != nil {
		report.Age = m.Age(now).Round(time.Minute).String()
		report.Importances = m.Importances()
	}
	return report, nil
}

package database

import (
	"database/sql"
	"time"

	"github.com/vijay-prabhu/aptmatch/internal/filter"
	"github.com/vijay-prabhu/aptmatch/internal/learner"
	"github.com/vijay-prabhu/aptmatch/internal/listing"
	"github.com/vijay-prabhu/aptmatch/internal/model"
	"github.com/vijay-prabhu/aptmatch/internal/ranking"
	"github.com/vijay-prabhu/aptmatch/internal/scoring"
)

// Swipe is one recorded like or pass
type Swipe struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ListingID string    `json:"listing_id"`
	Liked     bool      `json:"liked"`
	SessionID *string   `json:"session_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Settings are the explicit preferences a user has set
type Settings struct {
	Location *listing.Coordinates    `json:"location,omitempty"`
	Filters  filter.Criteria         `json:"filters"`
	Weights  *scoring.ScoringWeights `json:"weights,omitempty"`
}

// Profile is the stored state for one user
type Profile struct {
	UserID         string              `json:"user_id"`
	Settings       Settings            `json:"settings"`
	Learned        *learner.Stored     `json:"learned,omitempty"`
	LearnedAt      *time.Time          `json:"learned_at,omitempty"`
	Model          *model.ModelWeights `json:"model,omitempty"`
	ModelTrainedAt *time.Time          `json:"model_trained_at,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// UserPreferences converts the profile into ranking input. fallback supplies
// the home location when the profile has none.
func (p *Profile) UserPreferences(fallback *listing.Coordinates) ranking.UserPreferences {
	if p == nil {
		return ranking.UserPreferences{Location: fallback}
	}
	loc := p.Settings.Location
	if loc == nil {
		loc = fallback
	}
	return ranking.UserPreferences{
		Location: loc,
		Filters:  p.Settings.Filters,
		Weights:  p.Settings.Weights,
		Learned:  p.Learned,
	}
}

// SwipeStats summarizes a user's swipe log
type SwipeStats struct {
	Total     int        `json:"total"`
	Liked     int        `json:"liked"`
	Passed    int        `json:"passed"`
	Listings  int        `json:"distinct_listings"`
	Sessions  int        `json:"sessions"`
	FirstAt   *time.Time `json:"first_at,omitempty"`
	LastAt    *time.Time `json:"last_at,omitempty"`
	LikeRatio float64    `json:"like_ratio"`
}

// Stats represents aggregate statistics for one user
type Stats struct {
	UserID         string     `json:"user_id"`
	Listings       int        `json:"listings"`
	Unswiped       int        `json:"unswiped"`
	Swipes         SwipeStats `json:"swipes"`
	HasLearned     bool       `json:"has_learned"`
	LearnedAt      *time.Time `json:"learned_at,omitempty"`
	HasModel       bool       `json:"has_model"`
	ModelTrainedAt *time.Time `json:"model_trained_at,omitempty"`
	ModelAccuracy  *float64   `json:"model_accuracy,omitempty"`
}

// ListOptions contains options for listing listings
type ListOptions struct {
	MaxPrice    *float64
	MinBedrooms *int
	Limit       int
	Offset      int
}

// SwipeOptions contains options for listing swipes
type SwipeOptions struct {
	SessionID *string
	Since     *time.Time
	Limit     int
}

// NullString is a helper to convert *string to sql.NullString
func NullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// NullTime is a helper to convert *time.Time to sql.NullTime
func NullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// StringPtr converts sql.NullString to *string
func StringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

// TimePtr converts sql.NullTime to *time.Time
func TimePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	return &nt.Time
}

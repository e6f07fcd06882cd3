package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/vijay-prabhu/aptmatch/internal/tracker"
	"github.com/vijay-prabhu/aptmatch/internal/validation"
)

func (s *Server) registerHandlers() {
	s.handlers["get_feed"] = s.handleGetFeed
	s.handlers["record_swipe"] = s.handleRecordSwipe
	s.handlers["train_model"] = s.handleTrainModel
	s.handlers["get_learned_preferences"] = s.handleGetLearned
	s.handlers["suggest_weights"] = s.handleSuggestWeights
	s.handlers["explain_listing"] = s.handleExplainListing
	s.handlers["get_stats"] = s.handleGetStats
}

type userParams struct {
	UserID string `json:"user_id" validate:"omitempty,max=128"`
}

type getFeedParams struct {
	UserID string `json:"user_id" validate:"omitempty,max=128"`
	Limit  int    `json:"limit" validate:"gte=0,lte=1000"`
}

type recordSwipeParams struct {
	UserID    string `json:"user_id" validate:"omitempty,max=128"`
	ListingID string `json:"listing_id" validate:"required,max=128"`
	Liked     *bool  `json:"liked" validate:"required"`
	SessionID string `json:"session_id" validate:"omitempty,uuid"`
}

type explainParams struct {
	UserID    string `json:"user_id" validate:"omitempty,max=128"`
	ListingID string `json:"listing_id" validate:"required,max=128"`
}

// decode unmarshals and validates tool arguments; absent arguments decode to the zero value
func decode(params json.RawMessage, v interface{}) error {
	if len(params) > 0 {
		if err := json.Unmarshal(params, v); err != nil {
			return fmt.Errorf("invalid parameters: %w", err)
		}
	}
	if err := validation.Struct(v); err != nil {
		return fmt.Errorf("invalid parameters: %w", err)
	}
	return nil
}

func (s *Server) user(id string) string {
	if id == "" {
		return s.config.User.ID
	}
	return id
}

func (s *Server) handleGetFeed(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p getFeedParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	return s.tracker.Feed(ctx, s.user(p.UserID), p.Limit)
}

func (s *Server) handleRecordSwipe(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p recordSwipeParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}

	var session *string
	if p.SessionID != "" {
		session = &p.SessionID
	}
	return s.tracker.RecordSwipe(ctx, s.user(p.UserID), p.ListingID, *p.Liked, session)
}

func (s *Server) handleTrainModel(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p userParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}

	res, err := s.tracker.Train(ctx, s.user(p.UserID), nil)
	if err != nil {
		return nil, err
	}
	if !res.Success {
		return nil, errors.New(res.Error)
	}
	return res, nil
}

func (s *Server) handleGetLearned(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p userParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}

	stored, err := s.tracker.Learned(ctx, s.user(p.UserID))
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return "No learned preferences yet. Swipe on a few listings first.", nil
	}
	return stored, nil
}

func (s *Server) handleSuggestWeights(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p userParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}

	suggestion, err := s.tracker.Suggest(ctx, s.user(p.UserID))
	if errors.Is(err, tracker.ErrNoModel) {
		return "No trained model yet. Call train_model first.", nil
	}
	return suggestion, err
}

func (s *Server) handleExplainListing(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p explainParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	return s.tracker.Explain(ctx, s.user(p.UserID), p.ListingID)
}

func (s *Server) handleGetStats(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p userParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}

	stats, err := s.db.GetStats(ctx, s.user(p.UserID))
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return stats, nil
}

package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/vijay-prabhu/aptmatch/internal/database"
	"github.com/vijay-prabhu/aptmatch/internal/tracker"
	"github.com/vijay-prabhu/aptmatch/internal/validation"
)

// maxBodyBytes caps request bodies
const maxBodyBytes = 1 << 20

// SwipeRequest is the body of POST /users/{userID}/swipes
type SwipeRequest struct {
	ListingID string `json:"listing_id" validate:"required,max=128"`
	Liked     *bool  `json:"liked" validate:"required"`
	SessionID string `json:"session_id,omitempty" validate:"omitempty,uuid"`
}

type userParams struct {
	UserID string `json:"user_id" validate:"required,max=128"`
}

type pageParams struct {
	Limit       int      `json:"limit" validate:"gte=0,lte=1000"`
	Offset      int      `json:"offset" validate:"gte=0"`
	MaxPrice    *float64 `json:"max_price" validate:"omitempty,gte=0"`
	MinBedrooms *int     `json:"min_bedrooms" validate:"omitempty,gte=0"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Health(r.Context()); err != nil {
		respondError(w, r, http.StatusServiceUnavailable, "UNHEALTHY", "database unavailable", err)
		return
	}
	respondOK(w, r, map[string]string{"database": "ok"})
}

func (s *Server) listListings(w http.ResponseWriter, r *http.Request) {
	params, ok := parsePage(w, r)
	if !ok {
		return
	}

	listings, err := s.db.ListListings(r.Context(), database.ListOptions{
		MaxPrice:    params.MaxPrice,
		MinBedrooms: params.MinBedrooms,
		Limit:       params.Limit,
		Offset:      params.Offset,
	})
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "DATABASE_ERROR", "failed to list listings", err)
		return
	}
	respondOK(w, r, listings)
}

func (s *Server) getListing(w http.ResponseWriter, r *http.Request) {
	l, err := s.db.GetListing(r.Context(), chi.URLParam(r, "listingID"))
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "DATABASE_ERROR", "failed to load listing", err)
		return
	}
	if l == nil {
		respondError(w, r, http.StatusNotFound, "LISTING_NOT_FOUND", "listing not found", nil)
		return
	}
	respondOK(w, r, l)
}

func (s *Server) feed(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUser(w, r)
	if !ok {
		return
	}
	params, ok := parsePage(w, r)
	if !ok {
		return
	}

	feed, err := s.tracker.Feed(r.Context(), userID, params.Limit)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "FEED_ERROR", "failed to build feed", err)
		return
	}
	respondOK(w, r, feed)
}

func (s *Server) recordSwipe(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUser(w, r)
	if !ok {
		return
	}

	var req SwipeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "INVALID_BODY", "request body must be JSON", nil)
		return
	}
	if err := validation.Struct(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}

	var session *string
	if req.SessionID != "" {
		session = &req.SessionID
	}

	res, err := s.tracker.RecordSwipe(r.Context(), userID, req.ListingID, *req.Liked, session)
	switch {
	case errors.Is(err, tracker.ErrListingNotFound):
		respondError(w, r, http.StatusNotFound, "LISTING_NOT_FOUND", err.Error(), nil)
	case err != nil:
		respondError(w, r, http.StatusInternalServerError, "SWIPE_ERROR", "failed to record swipe", err)
	default:
		respondJSON(w, r, http.StatusCreated, &Response{Status: "success", Data: res})
	}
}

func (s *Server) listSwipes(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUser(w, r)
	if !ok {
		return
	}
	params, ok := parsePage(w, r)
	if !ok {
		return
	}

	swipes, err := s.db.ListSwipes(r.Context(), userID, database.SwipeOptions{Limit: params.Limit})
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "DATABASE_ERROR", "failed to list swipes", err)
		return
	}
	respondOK(w, r, swipes)
}

func (s *Server) endSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUser(w, r)
	if !ok {
		return
	}

	summary, err := s.tracker.EndSession(r.Context(), userID)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "SESSION_ERROR", "failed to end session", err)
		return
	}
	respondOK(w, r, summary)
}

func (s *Server) train(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUser(w, r)
	if !ok {
		return
	}

	res, err := s.tracker.Train(r.Context(), userID, nil)
	switch {
	case errors.Is(err, tracker.ErrTrainingInProgress):
		respondError(w, r, http.StatusConflict, "TRAINING_IN_PROGRESS", err.Error(), nil)
	case err != nil:
		respondError(w, r, http.StatusInternalServerError, "TRAINING_ERROR", "training failed", err)
	case !res.Success:
		respondError(w, r, http.StatusUnprocessableEntity, "TRAINING_REJECTED", res.Error, nil)
	default:
		respondOK(w, r, res)
	}
}

func (s *Server) modelReport(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUser(w, r)
	if !ok {
		return
	}

	report, err := s.tracker.ModelReport(r.Context(), userID)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "DATABASE_ERROR", "failed to load model", err)
		return
	}
	respondOK(w, r, report)
}

func (s *Server) suggestWeights(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUser(w, r)
	if !ok {
		return
	}

	suggestion, err := s.tracker.Suggest(r.Context(), userID)
	switch {
	case errors.Is(err, tracker.ErrNoModel):
		respondError(w, r, http.StatusNotFound, "NO_MODEL", err.Error(), nil)
	case err != nil:
		respondError(w, r, http.StatusInternalServerError, "DATABASE_ERROR", "failed to load model", err)
	default:
		respondOK(w, r, suggestion)
	}
}

func (s *Server) learned(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUser(w, r)
	if !ok {
		return
	}

	stored, err := s.tracker.Learned(r.Context(), userID)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "DATABASE_ERROR", "failed to load learned preferences", err)
		return
	}
	if stored == nil {
		respondError(w, r, http.StatusNotFound, "NO_LEARNED_PREFERENCES", "no learned preferences yet", nil)
		return
	}
	respondOK(w, r, stored)
}

func (s *Server) explain(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUser(w, r)
	if !ok {
		return
	}

	exp, err := s.tracker.Explain(r.Context(), userID, chi.URLParam(r, "listingID"))
	switch {
	case errors.Is(err, tracker.ErrListingNotFound):
		respondError(w, r, http.StatusNotFound, "LISTING_NOT_FOUND", err.Error(), nil)
	case err != nil:
		respondError(w, r, http.StatusInternalServerError, "EXPLAIN_ERROR", "failed to explain listing", err)
	default:
		respondOK(w, r, exp)
	}
}

func parseUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	p := userParams{UserID: chi.URLParam(r, "userID")}
	if err := validation.Struct(&p); err != nil {
		respondError(w, r, http.StatusBadRequest, "INVALID_USER_ID", err.Error(), nil)
		return "", false
	}
	return p.UserID, true
}

func parsePage(w http.ResponseWriter, r *http.Request) (pageParams, bool) {
	var p pageParams
	q := r.URL.Query()

	var err error
	if v := q.Get("limit"); v != "" {
		if p.Limit, err = strconv.Atoi(v); err != nil {
			respondError(w, r, http.StatusBadRequest, "INVALID_PARAM", "limit must be an integer", nil)
			return p, false
		}
	}
	if v := q.Get("offset"); v != "" {
		if p.Offset, err = strconv.Atoi(v); err != nil {
			respondError(w, r, http.StatusBadRequest, "INVALID_PARAM", "offset must be an integer", nil)
			return p, false
		}
	}
	if v := q.Get("max_price"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			respondError(w, r, http.StatusBadRequest, "INVALID_PARAM", "max_price must be a number", nil)
			return p, false
		}
		p.MaxPrice = &f
	}
	if v := q.Get("min_bedrooms"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			respondError(w, r, http.StatusBadRequest, "INVALID_PARAM", "min_bedrooms must be an integer", nil)
			return p, false
		}
		p.MinBedrooms = &n
	}

	if err := validation.Struct(&p); err != nil {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return p, false
	}
	return p, true
}

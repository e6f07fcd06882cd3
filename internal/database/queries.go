package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/vijay-prabhu/aptmatch/internal/learner"
	"github.com/vijay-prabhu/aptmatch/internal/listing"
	"github.com/vijay-prabhu/aptmatch/internal/model"
)

// Listing queries

// UpsertListings inserts or replaces listings in a single transaction
func (db *DB) UpsertListings(ctx context.Context, listings []listing.Listing) error {
	now := time.Now()
	return db.Transaction(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO listings (id, title, price, bedrooms, bathrooms, shape, data, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				title = excluded.title,
				price = excluded.price,
				bedrooms = excluded.bedrooms,
				bathrooms = excluded.bathrooms,
				shape = excluded.shape,
				data = excluded.data,
				updated_at = excluded.updated_at
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare listing upsert: %w", err)
		}
		defer stmt.Close()

		for i := range listings {
			l := &listings[i]
			if strings.TrimSpace(l.ID) == "" {
				return fmt.Errorf("listing %d has no id", i)
			}
			data, err := json.Marshal(l)
			if err != nil {
				return fmt.Errorf("failed to encode listing %s: %w", l.ID, err)
			}
			if _, err := stmt.ExecContext(ctx,
				l.ID, l.Title, l.Price, l.Bedrooms, l.Bathrooms, string(l.Shape()), string(data), now, now,
			); err != nil {
				return fmt.Errorf("failed to upsert listing %s: %w", l.ID, err)
			}
		}
		return nil
	})
}

// GetListing retrieves a listing by ID
func (db *DB) GetListing(ctx context.Context, id string) (*listing.Listing, error) {
	var data string
	err := db.QueryRowContext(ctx, `SELECT data FROM listings WHERE id = ?`, id).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var l listing.Listing
	if err := json.Unmarshal([]byte(data), &l); err != nil {
		return nil, fmt.Errorf("failed to decode listing %s: %w", id, err)
	}
	return &l, nil
}

// ListListings retrieves listings ordered by ID
func (db *DB) ListListings(ctx context.Context, opts ListOptions) ([]listing.Listing, error) {
	query := `SELECT data FROM listings WHERE 1=1`
	args := []interface{}{}

	if opts.MaxPrice != nil {
		query += ` AND price <= ?`
		args = append(args, *opts.MaxPrice)
	}
	if opts.MinBedrooms != nil {
		query += ` AND bedrooms >= ?`
		args = append(args, *opts.MinBedrooms)
	}

	query += ` ORDER BY id`

	if opts.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, opts.Limit)
	}
	if opts.Offset > 0 {
		if opts.Limit <= 0 {
			query += ` LIMIT -1`
		}
		query += fmt.Sprintf(` OFFSET %d`, opts.Offset)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []listing.Listing
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var l listing.Listing
		if err := json.Unmarshal([]byte(data), &l); err != nil {
			return nil, fmt.Errorf("failed to decode listing: %w", err)
		}
		listings = append(listings, l)
	}

	return listings, rows.Err()
}

// CountListings returns the size of the corpus
func (db *DB) CountListings(ctx context.Context) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM listings`).Scan(&n)
	return n, err
}

// DeleteListing removes a listing. Swipes on it are kept.
func (db *DB) DeleteListing(ctx context.Context, id string) error {
	_, err := db.ExecContext(ctx, `DELETE FROM listings WHERE id = ?`, id)
	return err
}

// Swipe queries

// CreateSwipe appends a swipe to the log, assigning ID and timestamp when unset
func (db *DB) CreateSwipe(ctx context.Context, s *Swipe) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO swipes (id, user_id, listing_id, liked, session_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, s.ID, s.UserID, s.ListingID, s.Liked, NullString(s.SessionID), s.CreatedAt)

	return err
}

// ListSwipes returns a user's swipes in the order they were recorded
func (db *DB) ListSwipes(ctx context.Context, userID string, opts SwipeOptions) ([]Swipe, error) {
	query := `
		SELECT id, user_id, listing_id, liked, session_id, created_at
		FROM swipes WHERE user_id = ?
	`
	args := []interface{}{userID}

	if opts.SessionID != nil {
		query += ` AND session_id = ?`
		args = append(args, *opts.SessionID)
	}
	if opts.Since != nil {
		query += ` AND created_at >= ?`
		args = append(args, *opts.Since)
	}

	query += ` ORDER BY created_at, rowid`

	if opts.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, opts.Limit)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var swipes []Swipe
	for rows.Next() {
		var s Swipe
		var sessionID sql.NullString
		if err := rows.Scan(&s.ID, &s.UserID, &s.ListingID, &s.Liked, &sessionID, &s.CreatedAt); err != nil {
			return nil, err
		}
		s.SessionID = StringPtr(sessionID)
		swipes = append(swipes, s)
	}

	return swipes, rows.Err()
}

// SwipeHistory returns a user's full swipe log in learner form
func (db *DB) SwipeHistory(ctx context.Context, userID string) ([]learner.Swipe, error) {
	swipes, err := db.ListSwipes(ctx, userID, SwipeOptions{})
	if err != nil {
		return nil, err
	}

	history := make([]learner.Swipe, len(swipes))
	for i, s := range swipes {
		history[i] = learner.Swipe{ListingID: s.ListingID, Liked: s.Liked}
	}
	return history, nil
}

// CountSwipes returns how many swipes a user has recorded
func (db *DB) CountSwipes(ctx context.Context, userID string) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM swipes WHERE user_id = ?`, userID).Scan(&n)
	return n, err
}

// GetSwipeStats aggregates a user's swipe log
func (db *DB) GetSwipeStats(ctx context.Context, userID string) (*SwipeStats, error) {
	stats := &SwipeStats{}
	var liked sql.NullInt64
	var first, last sql.NullString

	err := db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			SUM(liked),
			COUNT(DISTINCT listing_id),
			COUNT(DISTINCT session_id),
			MIN(created_at),
			MAX(created_at)
		FROM swipes WHERE user_id = ?
	`, userID).Scan(&stats.Total, &liked, &stats.Listings, &stats.Sessions, &first, &last)
	if err != nil {
		return nil, err
	}

	stats.Liked = int(liked.Int64)
	stats.Passed = stats.Total - stats.Liked
	if stats.Total > 0 {
		stats.LikeRatio = float64(stats.Liked) / float64(stats.Total)
	}
	stats.FirstAt = parseTime(first)
	stats.LastAt = parseTime(last)

	return stats, nil
}

// Aggregates lose the DATETIME column type, so go-sqlite3 hands them back as text
func parseTime(ns sql.NullString) *time.Time {
	if !ns.Valid {
		return nil
	}
	layouts := []string{
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02T15:04:05.999999999-07:00",
		"2006-01-02 15:04:05.999999999",
		time.RFC3339Nano,
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, ns.String); err == nil {
			return &t
		}
	}
	return nil
}

// Profile queries

// GetProfile retrieves a user's profile
func (db *DB) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	p := &Profile{UserID: userID}
	var settings string
	var learned, modelJSON sql.NullString
	var learnedAt, modelTrainedAt sql.NullTime

	err := db.QueryRowContext(ctx, `
		SELECT settings, learned, learned_at, model, model_trained_at, created_at, updated_at
		FROM profiles WHERE user_id = ?
	`, userID).Scan(&settings, &learned, &learnedAt, &modelJSON, &modelTrainedAt, &p.CreatedAt, &p.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(settings), &p.Settings); err != nil {
		return nil, fmt.Errorf("failed to decode settings for %s: %w", userID, err)
	}
	if learned.Valid {
		p.Learned = &learner.Stored{}
		if err := json.Unmarshal([]byte(learned.String), p.Learned); err != nil {
			return nil, fmt.Errorf("failed to decode learned preferences for %s: %w", userID, err)
		}
	}
	if modelJSON.Valid {
		p.Model = &model.ModelWeights{}
		if err := json.Unmarshal([]byte(modelJSON.String), p.Model); err != nil {
			return nil, fmt.Errorf("failed to decode model for %s: %w", userID, err)
		}
	}
	p.LearnedAt = TimePtr(learnedAt)
	p.ModelTrainedAt = TimePtr(modelTrainedAt)

	return p, nil
}

// EnsureProfile returns the user's profile, creating an empty one if needed
func (db *DB) EnsureProfile(ctx context.Context, userID string) (*Profile, error) {
	now := time.Now()
	_, err := db.ExecContext(ctx, `
		INSERT INTO profiles (user_id, settings, created_at, updated_at)
		VALUES (?, '{}', ?, ?)
		ON CONFLICT(user_id) DO NOTHING
	`, userID, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	return db.GetProfile(ctx, userID)
}

// SaveSettings replaces a user's explicit preferences
func (db *DB) SaveSettings(ctx context.Context, userID string, settings Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	now := time.Now()
	_, err = db.ExecContext(ctx, `
		INSERT INTO profiles (user_id, settings, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET settings = excluded.settings, updated_at = excluded.updated_at
	`, userID, string(data), now, now)

	return err
}

// SaveLearned stores learned preferences, replacing any previous set
func (db *DB) SaveLearned(ctx context.Context, userID string, learned *learner.Stored) error {
	data, err := json.Marshal(learned)
	if err != nil {
		return fmt.Errorf("failed to encode learned preferences: %w", err)
	}

	now := time.Now()
	at := learned.UpdatedAt
	if at.IsZero() {
		at = now
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO profiles (user_id, settings, learned, learned_at, created_at, updated_at)
		VALUES (?, '{}', ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			learned = excluded.learned,
			learned_at = excluded.learned_at,
			updated_at = excluded.updated_at
	`, userID, string(data), at, now, now)

	return err
}

// SaveModel stores a trained model. Models are replaced wholesale.
func (db *DB) SaveModel(ctx context.Context, userID string, m *model.ModelWeights) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to encode model: %w", err)
	}

	now := time.Now()
	_, err = db.ExecContext(ctx, `
		INSERT INTO profiles (user_id, settings, model, model_trained_at, created_at, updated_at)
		VALUES (?, '{}', ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			model = excluded.model,
			model_trained_at = excluded.model_trained_at,
			updated_at = excluded.updated_at
	`, userID, string(data), m.TrainedAt, now, now)

	return err
}

// GetStats returns aggregate statistics for a user
func (db *DB) GetStats(ctx context.Context, userID string) (*Stats, error) {
	stats := &Stats{UserID: userID}

	var err error
	if stats.Listings, err = db.CountListings(ctx); err != nil {
		return nil, err
	}

	err = db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM listings
		WHERE id NOT IN (SELECT listing_id FROM swipes WHERE user_id = ?)
	`, userID).Scan(&stats.Unswiped)
	if err != nil {
		return nil, err
	}

	swipes, err := db.GetSwipeStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats.Swipes = *swipes

	profile, err := db.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile != nil {
		stats.HasLearned = profile.Learned != nil
		stats.LearnedAt = profile.LearnedAt
		if profile.Model != nil {
			stats.HasModel = true
			stats.ModelTrainedAt = profile.ModelTrainedAt
			acc := profile.Model.Accuracy
			stats.ModelAccuracy = &acc
		}
	}

	return stats, nil
}

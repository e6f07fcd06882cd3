package cli

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/vijay-prabhu/aptmatch/internal/database"
	"github.com/vijay-prabhu/aptmatch/internal/listing"
	"github.com/vijay-prabhu/aptmatch/internal/output"
	"github.com/vijay-prabhu/aptmatch/internal/tracker"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export swipe history or the ranked feed to CSV or JSON",
	Long: `Export your swipe history joined with listing details, or with --feed
the full ranked feed.

Supported formats:
  - csv: Comma-separated values (spreadsheet-compatible)
  - json: JSON array of swipe objects

Examples:
  aptmatch export --format=csv > swipes.csv
  aptmatch export --format=json > swipes.json
  aptmatch export --liked-only > shortlist.csv
  aptmatch export --feed > ranked.csv`,
	RunE: runExport,
}

var (
	exportFormat    string
	exportLikedOnly bool
	exportFeed      bool
)

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "Export format (csv, json)")
	exportCmd.Flags().BoolVar(&exportLikedOnly, "liked-only", false, "Only export liked listings")
	exportCmd.Flags().BoolVar(&exportFeed, "feed", false, "Export the ranked feed instead of swipe history")
}

func runExport(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	if exportFeed {
		feed, err := a.tracker.Feed(cmd.Context(), a.user(), math.MaxInt32)
		if err != nil {
			return err
		}
		rows := feedRows(feed)
		switch exportFormat {
		case "csv":
			return exportFeedCSV(os.Stdout, rows)
		case "json":
			return output.JSONTo(os.Stdout, rows)
		default:
			return fmt.Errorf("unknown format: %s (use csv or json)", exportFormat)
		}
	}

	rows, err := exportRows(cmd.Context(), a.db, a.user(), exportLikedOnly)
	if err != nil {
		return err
	}

	switch exportFormat {
	case "csv":
		return exportCSV(os.Stdout, rows)
	case "json":
		return output.JSONTo(os.Stdout, rows)
	default:
		return fmt.Errorf("unknown format: %s (use csv or json)", exportFormat)
	}
}

// ExportRow is one swipe with the listing details it was made on
type ExportRow struct {
	SwipedAt     string  `json:"swiped_at"`
	ListingID    string  `json:"listing_id"`
	Liked        bool    `json:"liked"`
	SessionID    string  `json:"session_id,omitempty"`
	Title        string  `json:"title,omitempty"`
	Price        float64 `json:"price,omitempty"`
	Bedrooms     int     `json:"bedrooms,omitempty"`
	Bathrooms    float64 `json:"bathrooms,omitempty"`
	SquareFeet   int     `json:"sqft,omitempty"`
	Neighborhood string  `json:"neighborhood,omitempty"`
}

func toExportRow(s database.Swipe, l *listing.Listing) ExportRow {
	row := ExportRow{
		SwipedAt:  s.CreatedAt.UTC().Format(time.RFC3339),
		ListingID: s.ListingID,
		Liked:     s.Liked,
	}
	if s.SessionID != nil {
		row.SessionID = *s.SessionID
	}
	// Listings deleted since the swipe export with IDs only
	if l != nil {
		row.Title = l.Title
		row.Price = l.Price
		row.Bedrooms = l.Bedrooms
		row.Bathrooms = l.Bathrooms
		row.SquareFeet = l.SquareFeet
		row.Neighborhood = l.Neighborhood()
	}
	return row
}

func exportRows(ctx context.Context, db *database.DB, userID string, likedOnly bool) ([]ExportRow, error) {
	swipes, err := db.ListSwipes(ctx, userID, database.SwipeOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list swipes: %w", err)
	}
	listings, err := db.ListListings(ctx, database.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list listings: %w", err)
	}
	index := listing.Index(listings)

	rows := make([]ExportRow, 0, len(swipes))
	for _, s := range swipes {
		if likedOnly && !s.Liked {
			continue
		}
		rows = append(rows, toExportRow(s, index[s.ListingID]))
	}
	return rows, nil
}

func exportCSV(out io.Writer, rows []ExportRow) error {
	w := csv.NewWriter(out)

	header := []string{
		"swiped_at", "listing_id", "liked", "session_id", "title",
		"price", "bedrooms", "bathrooms", "sqft", "neighborhood",
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, row := range rows {
		record := []string{
			row.SwipedAt,
			row.ListingID,
			strconv.FormatBool(row.Liked),
			row.SessionID,
			row.Title,
			strconv.FormatFloat(row.Price, 'f', -1, 64),
			strconv.Itoa(row.Bedrooms),
			strconv.FormatFloat(row.Bathrooms, 'f', -1, 64),
			strconv.Itoa(row.SquareFeet),
			row.Neighborhood,
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}

// FeedRow is one ranked listing in a feed export
type FeedRow struct {
	Rank       int      `json:"rank"`
	ListingID  string   `json:"listing_id"`
	Title      string   `json:"title,omitempty"`
	Price      float64  `json:"price"`
	Bedrooms   int      `json:"bedrooms"`
	Bathrooms  float64  `json:"bathrooms"`
	MatchScore float64  `json:"match_score"`
	MLScore    *float64 `json:"ml_score,omitempty"`
	TopPick    bool     `json:"top_pick"`
}

func feedRows(feed *tracker.Feed) []FeedRow {
	rows := make([]FeedRow, len(feed.Listings))
	for i, l := range feed.Listings {
		rows[i] = FeedRow{
			Rank:       i + 1,
			ListingID:  l.ID,
			Title:      l.Title,
			Price:      l.Price,
			Bedrooms:   l.Bedrooms,
			Bathrooms:  l.Bathrooms,
			MatchScore: l.MatchScore,
			MLScore:    l.MLScore,
			TopPick:    l.IsTopPick,
		}
	}
	return rows
}

func exportFeedCSV(out io.Writer, rows []FeedRow) error {
	w := csv.NewWriter(out)

	header := []string{"rank", "listing_id", "title", "price", "bedrooms", "bathrooms", "match_score", "ml_score", "top_pick"}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, row := range rows {
		ml := ""
		if row.MLScore != nil {
			ml = strconv.FormatFloat(*row.MLScore, 'f', 1, 64)
		}
		record := []string{
			strconv.Itoa(row.Rank),
			row.ListingID,
			row.Title,
			strconv.FormatFloat(row.Price, 'f', -1, 64),
			strconv.Itoa(row.Bedrooms),
			strconv.FormatFloat(row.Bathrooms, 'f', -1, 64),
			strconv.FormatFloat(row.MatchScore, 'f', 1, 64),
			ml,
			strconv.FormatBool(row.TopPick),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}

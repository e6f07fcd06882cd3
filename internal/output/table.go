package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/vijay-prabhu/aptmatch/internal/database"
	"github.com/vijay-prabhu/aptmatch/internal/learner"
	"github.com/vijay-prabhu/aptmatch/internal/listing"
	"github.com/vijay-prabhu/aptmatch/internal/model"
	"github.com/vijay-prabhu/aptmatch/internal/scoring"
	"github.com/vijay-prabhu/aptmatch/internal/tracker"
)

// Table writes data as a formatted table to stdout
func Table(data interface{}) error {
	return TableTo(os.Stdout, data)
}

// TableTo writes data as a formatted table to the given writer
func TableTo(w io.Writer, data interface{}) error {
	switch v := data.(type) {
	case *tracker.Feed:
		return feedTable(w, v)
	case []listing.Listing:
		return listingsTable(w, v)
	case *listing.Listing:
		return listingDetail(w, v)
	case []database.Swipe:
		return swipesTable(w, v)
	case *tracker.SwipeResult:
		return swipeResult(w, v)
	case *learner.Stored:
		return learnedTable(w, v)
	case *tracker.ModelReport:
		return modelReport(w, v)
	case *model.Suggestion:
		return suggestionTable(w, v)
	case model.TrainResult:
		return trainResult(w, &v)
	case *tracker.Explanation:
		return explanation(w, v)
	case *tracker.SessionSummary:
		return sessionSummary(w, v)
	case *database.Stats:
		return statsTable(w, v)
	case *database.Settings:
		return settingsTable(w, v)
	default:
		return fmt.Errorf("unsupported data type for table output: %T", data)
	}
}

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w,
		tablewriter.WithRenderer(renderer.NewBlueprint(tw.Rendition{
			Borders: tw.BorderNone,
			Symbols: tw.NewSymbols(tw.StyleASCII),
			Settings: tw.Settings{
				Separators: tw.Separators{BetweenColumns: tw.Off},
				Lines:      tw.Lines{ShowHeaderLine: tw.On},
			},
		})),
		tablewriter.WithHeaderAutoFormat(tw.Off),
		tablewriter.WithRowAlignment(tw.AlignLeft),
	)
}

func feedTable(w io.Writer, f *tracker.Feed) error {
	if len(f.Listings) == 0 {
		fmt.Fprintln(w, "No listings match your filters.")
		return nil
	}

	table := newTable(w)
	header := []string{"#", "ID", "TITLE", "PRICE", "BEDS", "SCORE", "TOP"}
	if f.ModelUsed {
		header = append(header, "ML")
	}
	table.Header(header)

	for i, l := range f.Listings {
		top := ""
		if l.IsTopPick {
			top = "*"
		}
		row := []string{
			fmt.Sprintf("%d", i+1),
			l.ID,
			truncate(l.Title, 32),
			formatPrice(l.Price),
			formatBeds(l.Bedrooms),
			fmt.Sprintf("%.0f", l.MatchScore),
			top,
		}
		if f.ModelUsed {
			ml := ""
			if l.MLScore != nil {
				ml = fmt.Sprintf("%.0f", *l.MLScore)
			}
			row = append(row, ml)
		}
		if err := table.Append(row); err != nil {
			return err
		}
	}

	if err := table.Render(); err != nil {
		return err
	}
	fmt.Fprintf(w, "\n%d of %d candidates shown, %d filtered out\n", len(f.Listings), f.Candidates, f.Filtered)
	return nil
}

func listingsTable(w io.Writer, listings []listing.Listing) error {
	if len(listings) == 0 {
		fmt.Fprintln(w, "No listings found. Run 'aptmatch seed' or 'aptmatch listings import'.")
		return nil
	}

	table := newTable(w)
	table.Header([]string{"ID", "TITLE", "PRICE", "BEDS", "BATHS", "SQFT", "SHAPE", "RATING"})
	for _, l := range listings {
		if err := table.Append([]string{
			l.ID,
			truncate(l.Title, 32),
			formatPrice(l.Price),
			formatBeds(l.Bedrooms),
			fmt.Sprintf("%g", l.Bathrooms),
			formatSqft(l.SquareFeet),
			string(l.Shape()),
			formatRating(&l),
		}); err != nil {
			return err
		}
	}
	return table.Render()
}

func listingDetail(w io.Writer, l *listing.Listing) error {
	fmt.Fprintf(w, "ID:          %s\n", l.ID)
	if l.Title != "" {
		fmt.Fprintf(w, "Title:       %s\n", l.Title)
	}
	fmt.Fprintf(w, "Price:       %s\n", formatPrice(l.Price))
	fmt.Fprintf(w, "Layout:      %s, %g bath\n", formatBeds(l.Bedrooms), l.Bathrooms)
	if l.SquareFeet > 0 {
		fmt.Fprintf(w, "Size:        %d sqft\n", l.SquareFeet)
	}
	if l.YearBuilt > 0 {
		fmt.Fprintf(w, "Built:       %d", l.YearBuilt)
		if l.RenovationYear > 0 {
			fmt.Fprintf(w, " (renovated %d)", l.RenovationYear)
		}
		fmt.Fprintln(w)
	}
	if n := l.Neighborhood(); n != "" {
		fmt.Fprintf(w, "Area:        %s\n", n)
	}
	if v := l.View(); v != "" {
		fmt.Fprintf(w, "View:        %s\n", v)
	}
	if amenities := listing.ExtractAmenities(l); len(amenities) > 0 {
		fmt.Fprintf(w, "Amenities:   %s\n", strings.Join(amenities, ", "))
	}
	fmt.Fprintf(w, "Rating:      %s\n", formatRating(l))
	fmt.Fprintf(w, "Photos:      %d\n", len(l.Images))
	if l.Description != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, wordWrap(l.Description, 78))
	}
	return nil
}

func swipesTable(w io.Writer, swipes []database.Swipe) error {
	if len(swipes) == 0 {
		fmt.Fprintln(w, "No swipes recorded.")
		return nil
	}

	table := newTable(w)
	table.Header([]string{"WHEN", "LISTING", "CHOICE", "SESSION"})
	for _, s := range swipes {
		session := ""
		if s.SessionID != nil {
			session = truncate(*s.SessionID, 8)
		}
		if err := table.Append([]string{
			s.CreatedAt.Local().Format("Jan 02 15:04"),
			s.ListingID,
			formatChoice(s.Liked),
			session,
		}); err != nil {
			return err
		}
	}
	return table.Render()
}

func swipeResult(w io.Writer, r *tracker.SwipeResult) error {
	fmt.Fprintf(w, "Recorded %s on listing %s (%d swipes total)\n", formatChoice(r.Swipe.Liked), r.Swipe.ListingID, r.Count)
	if r.Learned != nil {
		top := r.Learned.TopAmenities(3)
		if len(top) > 0 {
			fmt.Fprintf(w, "Preferences updated: you seem to like %s\n", strings.Join(top, ", "))
		} else {
			fmt.Fprintln(w, "Preferences updated")
		}
	} else if r.NextLearnIn > 0 {
		fmt.Fprintf(w, "%d more swipes until preferences are refreshed\n", r.NextLearnIn)
	}
	if r.RetrainScheduled {
		fmt.Fprintln(w, "Model retraining started in the background")
	}
	return nil
}

func learnedTable(w io.Writer, s *learner.Stored) error {
	if s == nil {
		fmt.Fprintln(w, "No learned preferences yet. Keep swiping.")
		return nil
	}

	fmt.Fprintf(w, "Learned %s\n\n", s.UpdatedAt.Local().Format("Jan 02, 2006 15:04"))

	if len(s.PreferredAmenities) > 0 {
		table := newTable(w)
		table.Header([]string{"AMENITY", "WEIGHT"})
		for _, a := range s.PreferredAmenities {
			if err := table.Append([]string{a.Amenity, fmt.Sprintf("%.2f", a.Weight)}); err != nil {
				return err
			}
		}
		if err := table.Render(); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}

	if s.AvgImageCount != nil {
		fmt.Fprintf(w, "Typical photo count:        %.0f\n", *s.AvgImageCount)
	}
	if s.AvgDescriptionLength != nil {
		fmt.Fprintf(w, "Typical description length: %.0f chars\n", *s.AvgDescriptionLength)
	}
	for _, b := range s.AvgSqftByBedrooms {
		fmt.Fprintf(w, "Preferred size, %-12s %.0f sqft\n", formatBeds(b.Bedrooms)+":", b.Sqft)
	}
	return nil
}

func modelReport(w io.Writer, r *tracker.ModelReport) error {
	fmt.Fprintf(w, "Status:      %s\n", r.Status)
	if r.Model == nil {
		fmt.Fprintln(w, "Run 'aptmatch train' after at least 5 swipes.")
		return nil
	}

	m := r.Model
	fmt.Fprintf(w, "Trained:     %s (%s ago)\n", m.TrainedAt.Local().Format("Jan 02, 2006 15:04"), r.Age)
	fmt.Fprintf(w, "Examples:    %d\n", m.TrainingSize)
	fmt.Fprintf(w, "Accuracy:    %.1f%%\n", m.Accuracy*100)
	if m.ValidationAccuracy != nil {
		fmt.Fprintf(w, "Validation:  %.1f%%\n", *m.ValidationAccuracy*100)
	}
	fmt.Fprintf(w, "Loss:        %.4f\n\n", m.Loss)

	table := newTable(w)
	table.Header([]string{"FEATURE", "WEIGHT"})
	for i, imp := range r.Importances {
		if i == 8 {
			break
		}
		if err := table.Append([]string{imp.Feature, fmt.Sprintf("%+.3f", imp.Weight)}); err != nil {
			return err
		}
	}
	return table.Render()
}

func suggestionTable(w io.Writer, s *model.Suggestion) error {
	table := newTable(w)
	table.Header([]string{"FACTOR", "WEIGHT", "IMPORTANCE"})
	for _, f := range scoring.Factors {
		if err := table.Append([]string{
			string(f),
			fmt.Sprintf("%.0f", s.Weights.Get(f)),
			fmt.Sprintf("%.3f", s.Importance[f]),
		}); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}
	fmt.Fprintf(w, "\nTop priority: %s (confidence %.0f%%)\n", s.TopPriority, s.Confidence*100)
	return nil
}

func trainResult(w io.Writer, r *model.TrainResult) error {
	if !r.Success {
		fmt.Fprintf(w, "Training skipped: %s\n", r.Error)
		return nil
	}
	fmt.Fprintf(w, "Model trained on %d swipes, accuracy %.1f%%\n", r.Weights.TrainingSize, r.Accuracy*100)
	return nil
}

func explanation(w io.Writer, e *tracker.Explanation) error {
	l := e.Listing
	fmt.Fprintf(w, "%s  %s  %s\n", l.ID, l.Title, formatPrice(l.Price))
	fmt.Fprintf(w, "Match score: %.0f (%s)\n", e.Score.Score, e.Description)
	if e.Probability != nil {
		fmt.Fprintf(w, "Model:       %.0f%% likely to be liked\n", *e.Probability*100)
	}

	if e.Passes {
		fmt.Fprintln(w, "Filters:     passes all")
	} else {
		fmt.Fprintln(w, "Filters:     excluded from your feed")
		for _, r := range e.Rejections {
			fmt.Fprintf(w, "  - %s: %s\n", r.Rule, r.Reason)
		}
	}
	fmt.Fprintln(w)

	table := newTable(w)
	table.Header([]string{"FACTOR", "WEIGHT", "SCORE", "DETAIL"})
	for _, fs := range e.Score.Breakdown {
		score := "n/a"
		if fs.Applicable {
			score = fmt.Sprintf("%d", fs.Percentage)
		}
		if err := table.Append([]string{
			string(fs.Factor),
			fmt.Sprintf("%.0f", fs.Weight),
			score,
			fs.Label,
		}); err != nil {
			return err
		}
	}
	return table.Render()
}

func sessionSummary(w io.Writer, s *tracker.SessionSummary) error {
	if s.Swipes == 0 {
		fmt.Fprintln(w, "No swipes recorded yet.")
		return nil
	}
	fmt.Fprintf(w, "Session ended after %d swipes\n", s.Swipes)
	if s.Learned != nil {
		fmt.Fprintf(w, "Preferences refreshed: %d amenities weighted\n", len(s.Learned.PreferredAmenities))
	}
	if s.Model != nil {
		return trainResult(w, s.Model)
	}
	return nil
}

func statsTable(w io.Writer, s *database.Stats) error {
	fmt.Fprintln(w, "Apartment Search Statistics")
	fmt.Fprintln(w, strings.Repeat("-", 30))
	fmt.Fprintf(w, "Listings:               %d\n", s.Listings)
	fmt.Fprintf(w, "Not yet swiped:         %d\n", s.Unswiped)
	fmt.Fprintf(w, "Swipes:                 %d\n", s.Swipes.Total)
	fmt.Fprintf(w, "Liked:                  %d\n", s.Swipes.Liked)
	fmt.Fprintf(w, "Passed:                 %d\n", s.Swipes.Passed)
	if s.Swipes.Total > 0 {
		fmt.Fprintf(w, "Like ratio:             %.1f%%\n", s.Swipes.LikeRatio*100)
	}
	fmt.Fprintf(w, "Last swipe:             %s\n", tracker.LastActivitySummary(s.Swipes.LastAt, timeNow()))

	learned := "no"
	if s.HasLearned {
		learned = "yes"
	}
	fmt.Fprintf(w, "Learned preferences:    %s\n", learned)

	if s.HasModel && s.ModelAccuracy != nil {
		fmt.Fprintf(w, "Model accuracy:         %.1f%%\n", *s.ModelAccuracy*100)
	} else {
		fmt.Fprintln(w, "Model:                  not trained")
	}
	return nil
}

func settingsTable(w io.Writer, s *database.Settings) error {
	if s.Location != nil {
		fmt.Fprintf(w, "Location:    %.4f, %.4f\n", s.Location.Latitude, s.Location.Longitude)
	} else {
		fmt.Fprintln(w, "Location:    (config default)")
	}

	f := s.Filters
	if f.IsZero() {
		fmt.Fprintln(w, "Filters:     none")
	} else {
		fmt.Fprintln(w, "Filters:")
		if f.PriceMin != nil || f.PriceMax != nil {
			fmt.Fprintf(w, "  price:         %s - %s\n", formatBound(f.PriceMin), formatBound(f.PriceMax))
		}
		if len(f.Bedrooms) > 0 {
			fmt.Fprintf(w, "  bedrooms:      %s\n", joinInts(f.Bedrooms))
		}
		if len(f.Bathrooms) > 0 {
			fmt.Fprintf(w, "  bathrooms:     %s\n", joinFloats(f.Bathrooms))
		}
		if f.RatingMin != nil || f.RatingMax != nil {
			fmt.Fprintf(w, "  rating:        %s - %s\n", formatBound(f.RatingMin), formatBound(f.RatingMax))
		}
		if len(f.RequiredAmenities) > 0 {
			fmt.Fprintf(w, "  amenities:     %s\n", strings.Join(f.RequiredAmenities, ", "))
		}
		if len(f.Views) > 0 {
			fmt.Fprintf(w, "  views:         %s\n", strings.Join(f.Views, ", "))
		}
		if len(f.Neighborhoods) > 0 {
			fmt.Fprintf(w, "  neighborhoods: %s\n", strings.Join(f.Neighborhoods, ", "))
		}
	}

	if s.Weights == nil {
		fmt.Fprintln(w, "Weights:     (config default)")
		return nil
	}
	fmt.Fprintln(w, "Weights:")
	for _, f := range scoring.Factors {
		fmt.Fprintf(w, "  %-18s %.0f\n", f, s.Weights.Get(f))
	}
	return nil
}

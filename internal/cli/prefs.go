package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vijay-prabhu/aptmatch/internal/database"
	"github.com/vijay-prabhu/aptmatch/internal/listing"
	"github.com/vijay-prabhu/aptmatch/internal/output"
	"github.com/vijay-prabhu/aptmatch/internal/scoring"
	"github.com/vijay-prabhu/aptmatch/internal/validation"
)

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Manage your filters, location and scoring weights",
}

var prefsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show saved preferences",
	RunE:  runPrefsShow,
}

var prefsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update saved preferences",
	Long: `Update saved preferences. Only the flags you pass are changed.

Examples:
  aptmatch prefs set --max-price=3800 --bedrooms=1,2
  aptmatch prefs set --location=40.7306,-73.9866
  aptmatch prefs set --amenities=dishwasher,laundry --views=city
  aptmatch prefs set --weight=distance=40 --weight=rating=0 --weight=amenities=25 ...`,
	RunE: runPrefsSet,
}

var prefsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Reset saved preferences to config defaults",
	RunE:  runPrefsClear,
}

var learnedCmd = &cobra.Command{
	Use:   "learned",
	Short: "Inspect preferences learned from your swipes",
}

var learnedShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show learned preferences",
	RunE:  runLearnedShow,
}

var learnedRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Recompute learned preferences now",
	RunE:  runLearnedRefresh,
}

var (
	prefMinPrice      float64
	prefMaxPrice      float64
	prefBedrooms      []int
	prefBathrooms     []float64
	prefRatingMin     float64
	prefAmenities     []string
	prefViews         []string
	prefNeighborhoods []string
	prefLocation      string
	prefWeights       []string
)

func init() {
	rootCmd.AddCommand(prefsCmd, learnedCmd)
	prefsCmd.AddCommand(prefsShowCmd, prefsSetCmd, prefsClearCmd)
	learnedCmd.AddCommand(learnedShowCmd, learnedRefreshCmd)

	f := prefsSetCmd.Flags()
	f.Float64Var(&prefMinPrice, "min-price", 0, "Minimum monthly price")
	f.Float64Var(&prefMaxPrice, "max-price", 0, "Maximum monthly price")
	f.IntSliceVar(&prefBedrooms, "bedrooms", nil, "Acceptable bedroom counts (0 = studio)")
	f.Float64SliceVar(&prefBathrooms, "bathrooms", nil, "Acceptable bathroom counts")
	f.Float64Var(&prefRatingMin, "rating-min", 0, "Minimum average rating (0-5)")
	f.StringSliceVar(&prefAmenities, "amenities", nil, "Required amenities")
	f.StringSliceVar(&prefViews, "views", nil, "Acceptable views")
	f.StringSliceVar(&prefNeighborhoods, "neighborhoods", nil, "Acceptable neighborhoods")
	f.StringVar(&prefLocation, "location", "", "Home location as lat,lng")
	f.StringArrayVar(&prefWeights, "weight", nil, "Scoring weight as factor=value; all five must sum to 100")
}

func loadSettings(cmd *cobra.Command, a *app) (database.Settings, error) {
	profile, err := a.db.GetProfile(cmd.Context(), a.user())
	if err != nil {
		return database.Settings{}, fmt.Errorf("failed to load profile: %w", err)
	}
	if profile == nil {
		return database.Settings{}, nil
	}
	return profile.Settings, nil
}

func runPrefsShow(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	settings, err := loadSettings(cmd, a)
	if err != nil {
		return err
	}

	return output.Output(outputFmt, &settings)
}

func runPrefsSet(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	settings, err := loadSettings(cmd, a)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	c := &settings.Filters
	if flags.Changed("min-price") {
		c.PriceMin = &prefMinPrice
	}
	if flags.Changed("max-price") {
		c.PriceMax = &prefMaxPrice
	}
	if flags.Changed("bedrooms") {
		c.Bedrooms = prefBedrooms
	}
	if flags.Changed("bathrooms") {
		c.Bathrooms = prefBathrooms
	}
	if flags.Changed("rating-min") {
		c.RatingMin = &prefRatingMin
	}
	if flags.Changed("amenities") {
		c.RequiredAmenities = prefAmenities
	}
	if flags.Changed("views") {
		c.Views = prefViews
	}
	if flags.Changed("neighborhoods") {
		c.Neighborhoods = prefNeighborhoods
	}
	if err := validation.Struct(c); err != nil {
		return fmt.Errorf("invalid filters: %w", err)
	}

	if flags.Changed("location") {
		loc, err := parseLocation(prefLocation)
		if err != nil {
			return err
		}
		settings.Location = loc
	}

	if flags.Changed("weight") {
		base := a.cfg.Scoring
		if settings.Weights != nil {
			base = *settings.Weights
		}
		w, err := parseWeights(base, prefWeights)
		if err != nil {
			return err
		}
		settings.Weights = &w
	}

	if err := a.db.SaveSettings(cmd.Context(), a.user(), settings); err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}

	return output.Output(outputFmt, &settings)
}

func runPrefsClear(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.db.SaveSettings(cmd.Context(), a.user(), database.Settings{}); err != nil {
		return fmt.Errorf("failed to clear preferences: %w", err)
	}

	fmt.Println("Preferences cleared; config defaults apply")
	return nil
}

func runLearnedShow(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	stored, err := a.tracker.Learned(cmd.Context(), a.user())
	if err != nil {
		return err
	}

	return output.Output(outputFmt, stored)
}

func runLearnedRefresh(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	stored, err := a.tracker.RefreshLearned(cmd.Context(), a.user())
	if err != nil {
		return err
	}

	return output.Output(outputFmt, stored)
}

// parseLocation parses "lat,lng"
func parseLocation(s string) (*listing.Coordinates, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return nil, fmt.Errorf("location must be lat,lng, got %q", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil || lat < -90 || lat > 90 {
		return nil, fmt.Errorf("invalid latitude %q", parts[0])
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil || lng < -180 || lng > 180 {
		return nil, fmt.Errorf("invalid longitude %q", parts[1])
	}
	return &listing.Coordinates{Latitude: lat, Longitude: lng}, nil
}

// parseWeights applies factor=value pairs over base and validates the result
func parseWeights(base scoring.ScoringWeights, pairs []string) (scoring.ScoringWeights, error) {
	w := base
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			return w, fmt.Errorf("weight must be factor=value, got %q", pair)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return w, fmt.Errorf("invalid weight value %q", value)
		}
		if err := w.Set(scoring.Factor(strings.TrimSpace(name)), v); err != nil {
			return w, err
		}
	}
	if err := w.Validate(); err != nil {
		return w, err
	}
	return w, nil
}

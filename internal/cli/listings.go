package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/vijay-prabhu/aptmatch/internal/database"
	"github.com/vijay-prabhu/aptmatch/internal/listing"
	"github.com/vijay-prabhu/aptmatch/internal/output"
)

var listingsCmd = &cobra.Command{
	Use:     "listings",
	Aliases: []string{"ls"},
	Short:   "Manage the listing corpus",
}

var listingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored listings",
	Long: `List stored listings ordered by ID.

Examples:
  aptmatch listings list                        # All listings
  aptmatch listings list --max-price=3500       # At or under $3,500
  aptmatch listings list --min-beds=2 -o json   # Two bedrooms or more as JSON`,
	RunE: runListingsList,
}

var listingsShowCmd = &cobra.Command{
	Use:   "show <listing-id>",
	Short: "Show one listing in detail",
	Args:  cobra.ExactArgs(1),
	RunE:  runListingsShow,
}

var listingsImportCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Import listings from a JSON array",
	Long: `Import listings from a JSON file containing an array of listings.
Existing listings with the same ID are replaced. Use '-' to read stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runListingsImport,
}

var listingsSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the built-in sample listings",
	RunE:  runListingsSeed,
}

var listingsDeleteCmd = &cobra.Command{
	Use:   "delete <listing-id>",
	Short: "Remove a listing from the corpus",
	Args:  cobra.ExactArgs(1),
	RunE:  runListingsDelete,
}

var (
	listMaxPrice float64
	listMinBeds  int
	listLimit    int
	listOffset   int
)

func init() {
	rootCmd.AddCommand(listingsCmd)
	listingsCmd.AddCommand(listingsListCmd, listingsShowCmd, listingsImportCmd, listingsSeedCmd, listingsDeleteCmd)

	listingsListCmd.Flags().Float64Var(&listMaxPrice, "max-price", 0, "Only listings at or below this price")
	listingsListCmd.Flags().IntVar(&listMinBeds, "min-beds", 0, "Only listings with at least this many bedrooms")
	listingsListCmd.Flags().IntVar(&listLimit, "limit", 0, "Maximum number of results")
	listingsListCmd.Flags().IntVar(&listOffset, "offset", 0, "Skip this many results")
}

func runListingsList(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	opts := database.ListOptions{Limit: listLimit, Offset: listOffset}
	if cmd.Flags().Changed("max-price") {
		opts.MaxPrice = &listMaxPrice
	}
	if cmd.Flags().Changed("min-beds") {
		opts.MinBedrooms = &listMinBeds
	}

	listings, err := a.db.ListListings(cmd.Context(), opts)
	if err != nil {
		return fmt.Errorf("failed to list listings: %w", err)
	}

	return output.Output(outputFmt, listings)
}

func runListingsShow(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	l, err := a.db.GetListing(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to load listing: %w", err)
	}
	if l == nil {
		return fmt.Errorf("listing not found: %s", args[0])
	}

	return output.Output(outputFmt, l)
}

func runListingsImport(cmd *cobra.Command, args []string) error {
	listings, err := readListings(args[0])
	if err != nil {
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	start := time.Now()
	if err := a.db.UpsertListings(cmd.Context(), listings); err != nil {
		return fmt.Errorf("failed to import listings: %w", err)
	}

	a.log.Info().Int("count", len(listings)).Dur("elapsed", time.Since(start)).Msg("listings imported")
	fmt.Printf("Imported %d listings\n", len(listings))
	return nil
}

func runListingsSeed(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	samples := listing.SampleListings()
	if err := a.db.UpsertListings(cmd.Context(), samples); err != nil {
		return fmt.Errorf("failed to seed listings: %w", err)
	}

	fmt.Printf("Loaded %d sample listings\n", len(samples))
	return nil
}

func runListingsDelete(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.db.DeleteListing(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to delete listing: %w", err)
	}

	fmt.Printf("Deleted listing %s\n", args[0])
	return nil
}

// readListings decodes a JSON array of listings from path, or stdin for "-"
func readListings(path string) ([]listing.Listing, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var listings []listing.Listing
	if err := json.Unmarshal(data, &listings); err != nil {
		return nil, fmt.Errorf("failed to parse listings: %w", err)
	}

	var missing []string
	for i, l := range listings {
		if strings.TrimSpace(l.ID) == "" {
			missing = append(missing, fmt.Sprintf("#%d", i))
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("listings without an id: %s", strings.Join(missing, ", "))
	}

	return listings, nil
}

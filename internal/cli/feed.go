package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vijay-prabhu/aptmatch/internal/output"
	"github.com/vijay-prabhu/aptmatch/internal/ranking"
	"github.com/vijay-prabhu/aptmatch/internal/tracker"
)

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Show your ranked listing feed",
	Long: `Rank the listings you have not swiped on yet, best match first.

Examples:
  aptmatch feed                # Default feed size from config
  aptmatch feed --limit=5      # Top five
  aptmatch feed --top-picks    # Only listings above the top pick threshold
  aptmatch feed -o json        # Output as JSON`,
	RunE: runFeed,
}

var whyCmd = &cobra.Command{
	Use:   "why <listing-id>",
	Short: "Explain how a listing scores for you",
	Long: `Explain a listing's match score factor by factor, including any
filter that keeps it out of your feed.`,
	Args: cobra.ExactArgs(1),
	RunE: runWhy,
}

var (
	feedLimit    int
	feedTopPicks bool
)

func init() {
	rootCmd.AddCommand(feedCmd, whyCmd)

	feedCmd.Flags().IntVar(&feedLimit, "limit", 0, "Maximum number of listings (default: ranking.default_limit)")
	feedCmd.Flags().BoolVar(&feedTopPicks, "top-picks", false, "Only show top picks")
}

func runFeed(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	if err := a.requireListings(ctx); err != nil {
		return err
	}

	feed, err := a.tracker.Feed(ctx, a.user(), feedLimit)
	if err != nil {
		return err
	}
	if feedTopPicks {
		feed.Listings = ranking.TopPicks(feed.Listings)
	}

	return output.Output(outputFmt, feed)
}

func runWhy(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	exp, err := a.tracker.Explain(cmd.Context(), a.user(), args[0])
	if errors.Is(err, tracker.ErrListingNotFound) {
		return fmt.Errorf("%w (see 'aptmatch listings list')", err)
	}
	if err != nil {
		return err
	}

	return output.Output(outputFmt, exp)
}

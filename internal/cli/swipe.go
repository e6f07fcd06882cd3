package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/vijay-prabhu/aptmatch/internal/database"
	"github.com/vijay-prabhu/aptmatch/internal/output"
	"github.com/vijay-prabhu/aptmatch/internal/tracker"
)

var swipeCmd = &cobra.Command{
	Use:   "swipe <listing-id>",
	Short: "Like or pass on a listing",
	Long: `Record a like or pass on a listing.

Learned preferences refresh automatically at swipe milestones and the model
retrains in the background as history grows.

Examples:
  aptmatch swipe 4 --like
  aptmatch swipe 7 --pass
  aptmatch swipe 2 --like --session=$(aptmatch session start)`,
	Args: cobra.ExactArgs(1),
	RunE: runSwipe,
}

var swipesCmd = &cobra.Command{
	Use:   "swipes",
	Short: "List swipe history",
	Long: `List recorded swipes, oldest first.

Examples:
  aptmatch swipes                 # Whole history
  aptmatch swipes --since=7d      # Last week
  aptmatch swipes --session=<id>  # One session`,
	RunE: runSwipes,
}

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage swipe sessions",
}

var sessionStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Print a new session ID to pass to 'swipe --session'",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(tracker.NewSessionID())
	},
}

var sessionEndCmd = &cobra.Command{
	Use:   "end",
	Short: "Refresh learned preferences and retrain the model",
	RunE:  runSessionEnd,
}

var (
	swipeLike    bool
	swipePass    bool
	swipeSession string
	swipesSince  string
	swipesSess   string
	swipesLimit  int
)

func init() {
	rootCmd.AddCommand(swipeCmd, swipesCmd, sessionCmd)
	sessionCmd.AddCommand(sessionStartCmd, sessionEndCmd)

	swipeCmd.Flags().BoolVar(&swipeLike, "like", false, "Like the listing")
	swipeCmd.Flags().BoolVar(&swipePass, "pass", false, "Pass on the listing")
	swipeCmd.Flags().StringVar(&swipeSession, "session", "", "Session ID to group swipes")
	swipeCmd.MarkFlagsMutuallyExclusive("like", "pass")
	swipeCmd.MarkFlagsOneRequired("like", "pass")

	swipesCmd.Flags().StringVar(&swipesSince, "since", "", "Filter by time (e.g., 7d, 2w, 1m)")
	swipesCmd.Flags().StringVar(&swipesSess, "session", "", "Only swipes from this session")
	swipesCmd.Flags().IntVar(&swipesLimit, "limit", 0, "Maximum number of results")
}

func runSwipe(cmd *cobra.Command, args []string) error {
	var session *string
	if swipeSession != "" {
		if _, err := uuid.Parse(swipeSession); err != nil {
			return fmt.Errorf("invalid session id %q: %w", swipeSession, err)
		}
		session = &swipeSession
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	res, err := a.tracker.RecordSwipe(cmd.Context(), a.user(), args[0], swipeLike, session)
	if errors.Is(err, tracker.ErrListingNotFound) {
		return fmt.Errorf("%w (see 'aptmatch listings list')", err)
	}
	if err != nil {
		return err
	}

	return output.Output(outputFmt, res)
}

func runSwipes(cmd *cobra.Command, args []string) error {
	opts := database.SwipeOptions{Limit: swipesLimit}
	if swipesSess != "" {
		opts.SessionID = &swipesSess
	}
	if swipesSince != "" {
		since, err := parseDuration(swipesSince)
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}
		sinceTime := time.Now().Add(-since)
		opts.Since = &sinceTime
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	swipes, err := a.db.ListSwipes(cmd.Context(), a.user(), opts)
	if err != nil {
		return fmt.Errorf("failed to list swipes: %w", err)
	}

	return output.Output(outputFmt, swipes)
}

func runSessionEnd(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	summary, err := a.tracker.EndSession(cmd.Context(), a.user())
	if err != nil {
		return err
	}

	return output.Output(outputFmt, summary)
}

// parseDuration parses a human-readable duration like "7d", "2w", "1m"
func parseDuration(s string) (time.Duration, error) {
	if len(s) < 2 {
		return 0, fmt.Errorf("invalid duration format")
	}

	unit := s[len(s)-1]
	valueStr := s[:len(s)-1]

	var value int
	if _, err := fmt.Sscanf(valueStr, "%d", &value); err != nil {
		return 0, fmt.Errorf("invalid duration value")
	}

	switch unit {
	case 'h':
		return time.Duration(value) * time.Hour, nil
	case 'd':
		return time.Duration(value) * 24 * time.Hour, nil
	case 'w':
		return time.Duration(value) * 7 * 24 * time.Hour, nil
	case 'm':
		return time.Duration(value) * 30 * 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("unknown duration unit: %c (use h, d, w, or m)", unit)
	}
}

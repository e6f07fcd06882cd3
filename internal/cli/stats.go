package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vijay-prabhu/aptmatch/internal/database"
	"github.com/vijay-prabhu/aptmatch/internal/listing"
	"github.com/vijay-prabhu/aptmatch/internal/output"
	"github.com/vijay-prabhu/aptmatch/internal/tracker"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show swipe and model statistics",
	Long: `Display swipe counts, like ratio and model status.

Examples:
  aptmatch stats             # Overall stats
  aptmatch stats --detailed  # Daily activity and per-neighborhood like rates`,
	RunE: runStats,
}

var statsDetailed bool

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().BoolVar(&statsDetailed, "detailed", false, "Show detailed statistics with breakdowns")
}

func runStats(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	stats, err := a.db.GetStats(ctx, a.user())
	if err != nil {
		return fmt.Errorf("failed to get stats: %w", err)
	}

	if !statsDetailed {
		return output.Output(outputFmt, stats)
	}

	detailed, err := getDetailedStats(ctx, a.db, stats, time.Now())
	if err != nil {
		return fmt.Errorf("failed to get detailed stats: %w", err)
	}

	if outputFmt == "json" {
		return output.JSON(detailed)
	}

	if err := output.Output(outputFmt, stats); err != nil {
		return err
	}
	printDetailedStats(detailed)
	return nil
}

// DetailedStats contains extended statistics
type DetailedStats struct {
	Basic          *database.Stats    `json:"basic"`
	LastActivity   string             `json:"last_activity"`
	RecentActivity []ActivityStat     `json:"recent_activity"`
	ByNeighborhood []NeighborhoodStat `json:"by_neighborhood"`
	ByBedrooms     []BedroomStat      `json:"by_bedrooms"`
}

// ActivityStat counts swipes on one day
type ActivityStat struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
	Liked int    `json:"liked"`
}

// NeighborhoodStat shows like rates per neighborhood
type NeighborhoodStat struct {
	Neighborhood string  `json:"neighborhood"`
	Liked        int     `json:"liked"`
	Passed       int     `json:"passed"`
	LikeRate     float64 `json:"like_rate"`
}

// BedroomStat shows like rates per bedroom count
type BedroomStat struct {
	Bedrooms int     `json:"bedrooms"`
	Liked    int     `json:"liked"`
	Passed   int     `json:"passed"`
	LikeRate float64 `json:"like_rate"`
}

type tally struct{ liked, passed int }

func (t *tally) add(liked bool) {
	if liked {
		t.liked++
	} else {
		t.passed++
	}
}

func (t tally) rate() float64 {
	if n := t.liked + t.passed; n > 0 {
		return float64(t.liked) / float64(n)
	}
	return 0
}

func getDetailedStats(ctx context.Context, db *database.DB, basic *database.Stats, now time.Time) (*DetailedStats, error) {
	swipes, err := db.ListSwipes(ctx, basic.UserID, database.SwipeOptions{})
	if err != nil {
		return nil, err
	}
	listings, err := db.ListListings(ctx, database.ListOptions{})
	if err != nil {
		return nil, err
	}
	index := listing.Index(listings)

	days := make(map[string]*ActivityStat)
	hoods := make(map[string]*tally)
	beds := make(map[int]*tally)

	for _, s := range swipes {
		day := s.CreatedAt.Local().Format("2006-01-02")
		if days[day] == nil {
			days[day] = &ActivityStat{Date: day}
		}
		days[day].Count++
		if s.Liked {
			days[day].Liked++
		}

		l := index[s.ListingID]
		if l == nil {
			continue
		}
		if n := l.Neighborhood(); n != "" {
			if hoods[n] == nil {
				hoods[n] = &tally{}
			}
			hoods[n].add(s.Liked)
		}
		if beds[l.Bedrooms] == nil {
			beds[l.Bedrooms] = &tally{}
		}
		beds[l.Bedrooms].add(s.Liked)
	}

	d := &DetailedStats{
		Basic:        basic,
		LastActivity: tracker.LastActivitySummary(basic.Swipes.LastAt, now),
	}

	for _, a := range days {
		d.RecentActivity = append(d.RecentActivity, *a)
	}
	sort.Slice(d.RecentActivity, func(i, j int) bool {
		return d.RecentActivity[i].Date > d.RecentActivity[j].Date
	})
	if len(d.RecentActivity) > 14 {
		d.RecentActivity = d.RecentActivity[:14]
	}

	for name, t := range hoods {
		d.ByNeighborhood = append(d.ByNeighborhood, NeighborhoodStat{
			Neighborhood: name, Liked: t.liked, Passed: t.passed, LikeRate: t.rate(),
		})
	}
	sort.Slice(d.ByNeighborhood, func(i, j int) bool {
		a, b := d.ByNeighborhood[i], d.ByNeighborhood[j]
		if a.LikeRate != b.LikeRate {
			return a.LikeRate > b.LikeRate
		}
		return a.Neighborhood < b.Neighborhood
	})

	for n, t := range beds {
		d.ByBedrooms = append(d.ByBedrooms, BedroomStat{
			Bedrooms: n, Liked: t.liked, Passed: t.passed, LikeRate: t.rate(),
		})
	}
	sort.Slice(d.ByBedrooms, func(i, j int) bool {
		return d.ByBedrooms[i].Bedrooms < d.ByBedrooms[j].Bedrooms
	})

	return d, nil
}

func printDetailedStats(d *DetailedStats) {
	fmt.Println()
	fmt.Printf("Last activity: %s\n", d.LastActivity)

	if len(d.RecentActivity) > 0 {
		fmt.Println()
		fmt.Println("Recent activity:")
		for _, a := range d.RecentActivity {
			fmt.Printf("  %s  %-20s %d swipes, %d liked\n", a.Date, strings.Repeat("#", min(a.Count, 20)), a.Count, a.Liked)
		}
	}

	if len(d.ByNeighborhood) > 0 {
		fmt.Println()
		fmt.Println("By neighborhood:")
		for _, n := range d.ByNeighborhood {
			fmt.Printf("  %-22s %3.0f%% liked (%d of %d)\n", n.Neighborhood, n.LikeRate*100, n.Liked, n.Liked+n.Passed)
		}
	}

	if len(d.ByBedrooms) > 0 {
		fmt.Println()
		fmt.Println("By bedrooms:")
		for _, b := range d.ByBedrooms {
			label := fmt.Sprintf("%d bed", b.Bedrooms)
			if b.Bedrooms == 0 {
				label = "studio"
			}
			fmt.Printf("  %-22s %3.0f%% liked (%d of %d)\n", label, b.LikeRate*100, b.Liked, b.Liked+b.Passed)
		}
	}
}

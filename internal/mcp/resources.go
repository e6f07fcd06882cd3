package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/vijay-prabhu/aptmatch/internal/ranking"
)

const (
	uriSummary  = "aptmatch://summary"
	uriTopPicks = "aptmatch://top-picks"
)

// Resource defines an MCP resource
type Resource struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	MimeType    string `json:"mimeType,omitempty"`
}

// ResourceDefinitions lists all available resources
var ResourceDefinitions = []Resource{
	{
		URI:         uriSummary,
		Name:        "Swipe Summary",
		Description: "Swipe counts, like ratio and model status for the configured user",
		MimeType:    "text/plain",
	},
	{
		URI:         uriTopPicks,
		Name:        "Top Picks",
		Description: "Unswiped listings scoring above the top pick threshold",
		MimeType:    "text/plain",
	},
}

type resourcesListResult struct {
	Resources []Resource `json:"resources"`
}

type readResourceParams struct {
	URI string `json:"uri"`
}

type readResourceResult struct {
	Contents []resourceContent `json:"contents"`
}

type resourceContent struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType,omitempty"`
	Text     string `json:"text,omitempty"`
}

func (s *Server) handleReadResource(ctx context.Context, uri string) (string, error) {
	switch uri {
	case uriSummary:
		return s.summaryText(ctx)
	case uriTopPicks:
		return s.topPicksText(ctx)
	default:
		return "", fmt.Errorf("unknown resource: %s", uri)
	}
}

func (s *Server) summaryText(ctx context.Context) (string, error) {
	user := s.config.User.ID
	stats, err := s.db.GetStats(ctx, user)
	if err != nil {
		return "", fmt.Errorf("database error: %w", err)
	}
	status, err := s.tracker.ModelStatus(ctx, user)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Swipe summary for %s\n\n", user)
	fmt.Fprintf(&sb, "Listings:        %d\n", stats.Listings)
	fmt.Fprintf(&sb, "Not yet swiped:  %d\n", stats.Unswiped)
	fmt.Fprintf(&sb, "Swipes:          %d (%d liked, %d passed)\n", stats.Swipes.Total, stats.Swipes.Liked, stats.Swipes.Passed)
	if stats.Swipes.Total > 0 {
		fmt.Fprintf(&sb, "Like ratio:      %.1f%%\n", stats.Swipes.LikeRatio*100)
	}
	fmt.Fprintf(&sb, "Learned prefs:   %t\n", stats.HasLearned)
	fmt.Fprintf(&sb, "Model:           %s\n", status)
	if stats.ModelAccuracy != nil {
		fmt.Fprintf(&sb, "Model accuracy:  %.1f%%\n", *stats.ModelAccuracy*100)
	}
	return sb.String(), nil
}

func (s *Server) topPicksText(ctx context.Context) (string, error) {
	feed, err := s.tracker.Feed(ctx, s.config.User.ID, 0)
	if err != nil {
		return "", err
	}

	picks := ranking.TopPicks(feed.Listings)
	if len(picks) == 0 {
		return "No top picks right now.", nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Top picks (%d):\n\n", len(picks))
	for _, p := range picks {
		title := p.Title
		if title == "" {
			title = "Listing " + p.ID
		}
		fmt.Fprintf(&sb, "- [%s] %s: $%.0f, %d bd, score %.0f\n", p.ID, title, p.Price, p.Bedrooms, p.MatchScore)
	}
	return sb.String(), nil
}

package output

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/vijay-prabhu/aptmatch/internal/listing"
)

// timeNow is swapped in tests
var timeNow = time.Now

func formatPrice(p float64) string {
	s := strconv.FormatFloat(p, 'f', 0, 64)
	// Group thousands
	var b strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 && s[i-1] != '-' {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return "$" + b.String()
}

func formatBeds(n int) string {
	switch n {
	case 0:
		return "studio"
	case 1:
		return "1 bed"
	default:
		return fmt.Sprintf("%d beds", n)
	}
}

func formatSqft(n int) string {
	if n <= 0 {
		return "-"
	}
	return strconv.Itoa(n)
}

func formatRating(l *listing.Listing) string {
	if !l.HasRating() {
		return "-"
	}
	return fmt.Sprintf("%.1f (%d)", *l.AverageRating, l.TotalRatings)
}

func formatChoice(liked bool) string {
	if liked {
		return "like"
	}
	return "pass"
}

func formatBound(f *float64) string {
	if f == nil {
		return "any"
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}

func joinFloats(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strings.Join(parts, ", ")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

// wordWrap wraps text at the specified width
func wordWrap(text string, width int) string {
	var result strings.Builder

	for _, line := range strings.Split(text, "\n") {
		if len(line) <= width {
			result.WriteString(line)
			result.WriteString("\n")
			continue
		}

		words := strings.Fields(line)
		if len(words) == 0 {
			result.WriteString("\n")
			continue
		}

		current := words[0]
		for _, word := range words[1:] {
			if len(current)+1+len(word) <= width {
				current += " " + word
			} else {
				result.WriteString(current)
				result.WriteString("\n")
				current = word
			}
		}
		result.WriteString(current)
		result.WriteString("\n")
	}

	return strings.TrimSuffix(result.String(), "\n")
}

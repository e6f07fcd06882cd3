package tracker

import (
	"fmt"
	"time"

	"github.com/vijay-prabhu/aptmatch/internal/model"
)

// ModelStatus describes whether a user's stored model can be used for ranking
type ModelStatus string

const (
	ModelNone    ModelStatus = "none"
	ModelFresh   ModelStatus = "fresh"
	ModelStale   ModelStatus = "stale"
	ModelInvalid ModelStatus = "invalid"
)

// ComputeModelStatus classifies a stored model at now
func ComputeModelStatus(m *model.ModelWeights, now time.Time, maxAge time.Duration) ModelStatus {
	if m == nil {
		return ModelNone
	}
	if m.ValidAt(now, maxAge) {
		return ModelFresh
	}
	// Well-formed but too old
	if m.ValidAt(m.TrainedAt, maxAge) {
		return ModelStale
	}
	return ModelInvalid
}

// Milestones are the swipe counts at which the tracker recomputes state
type Milestones struct {
	InitialSwipes int
	RefreshEvery  int
	RetrainEvery  int
}

// ShouldLearn reports whether the count-th swipe triggers recomputing
// learned preferences: at InitialSwipes, then every RefreshEvery swipes.
func (m Milestones) ShouldLearn(count int) bool {
	if count < m.InitialSwipes || m.InitialSwipes <= 0 {
		return false
	}
	if count == m.InitialSwipes {
		return true
	}
	return m.RefreshEvery > 0 && (count-m.InitialSwipes)%m.RefreshEvery == 0
}

// ShouldRetrain reports whether the count-th swipe triggers background
// retraining. Training needs at least model.MinTrainingSwipes swipes.
func (m Milestones) ShouldRetrain(count int) bool {
	if count < model.MinTrainingSwipes || m.RetrainEvery <= 0 {
		return false
	}
	return count%m.RetrainEvery == 0
}

// NextLearn returns how many more swipes until preferences are recomputed
func (m Milestones) NextLearn(count int) int {
	if count < m.InitialSwipes {
		return m.InitialSwipes - count
	}
	if m.RefreshEvery <= 0 {
		return 0
	}
	return m.RefreshEvery - (count-m.InitialSwipes)%m.RefreshEvery
}

// LastActivitySummary returns a human-readable summary of when the user last swiped
func LastActivitySummary(last *time.Time, now time.Time) string {
	if last == nil {
		return "No swipes yet"
	}

	days := int(now.Sub(*last).Hours() / 24)

	switch {
	case days <= 0:
		return "Today"
	case days == 1:
		return "Yesterday"
	case days < 7:
		return formatDays(days) + " ago"
	case days < 30:
		return formatWeeks(days/7) + " ago"
	default:
		return formatDays(days) + " ago"
	}
}

func formatDays(days int) string {
	if days == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", days)
}

func formatWeeks(weeks int) string {
	if weeks == 1 {
		return "1 week"
	}
	return fmt.Sprintf("%d weeks", weeks)
}

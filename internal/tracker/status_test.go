package tracker

import (
	"testing"
	"time"

	"github.com/vijay-prabhu/aptmatch/internal/features"
	"github.com/vijay-prabhu/aptmatch/internal/model"
)

func wellFormedModel(trainedAt time.Time) *model.ModelWeights {
	m := &model.ModelWeights{
		Weights:   make([][]float64, features.Count),
		Biases:    []float64{0},
		TrainedAt: trainedAt,
	}
	for i := range m.Weights {
		m.Weights[i] = []float64{0.1}
	}
	return m
}

func TestComputeModelStatus(t *testing.T) {
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	week := 7 * 24 * time.Hour

	broken := wellFormedModel(now)
	broken.Biases = nil

	tests := []struct {
		name     string
		model    *model.ModelWeights
		expected ModelStatus
	}{
		{"no model", nil, ModelNone},
		{"trained yesterday", wellFormedModel(now.Add(-24 * time.Hour)), ModelFresh},
		{"exactly max age", wellFormedModel(now.Add(-week)), ModelFresh},
		{"older than max age", wellFormedModel(now.Add(-week - time.Hour)), ModelStale},
		{"malformed", broken, ModelInvalid},
		{"never trained", wellFormedModel(time.Time{}), ModelInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeModelStatus(tt.model, now, week); got != tt.expected {
				t.Errorf("ComputeModelStatus() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestMilestones(t *testing.T) {
	ms := Milestones{InitialSwipes: 5, RefreshEvery: 10, RetrainEvery: 10}

	var learnAt, retrainAt []int
	for count := 1; count <= 40; count++ {
		if ms.ShouldLearn(count) {
			learnAt = append(learnAt, count)
		}
		if ms.ShouldRetrain(count) {
			retrainAt = append(retrainAt, count)
		}
	}

	wantLearn := []int{5, 15, 25, 35}
	wantRetrain := []int{10, 20, 30, 40}
	if !equalInts(learnAt, wantLearn) {
		t.Errorf("learn milestones = %v, want %v", learnAt, wantLearn)
	}
	if !equalInts(retrainAt, wantRetrain) {
		t.Errorf("retrain milestones = %v, want %v", retrainAt, wantRetrain)
	}

	nextTests := []struct {
		count int
		want  int
	}{
		{0, 5},
		{4, 1},
		{5, 10},
		{6, 9},
		{14, 1},
		{15, 10},
	}
	for _, tt := range nextTests {
		if got := ms.NextLearn(tt.count); got != tt.want {
			t.Errorf("NextLearn(%d) = %d, want %d", tt.count, got, tt.want)
		}
	}

	// Retraining never fires below the trainer's minimum
	small := Milestones{RetrainEvery: 2}
	if small.ShouldRetrain(2) || small.ShouldRetrain(4) {
		t.Error("retrain should wait for the minimum number of swipes")
	}
	if !small.ShouldRetrain(6) {
		t.Error("expected retrain at 6 swipes")
	}
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestLastActivitySummary(t *testing.T) {
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	ago := func(days int) *time.Time {
		at := now.Add(-time.Duration(days) * 24 * time.Hour)
		return &at
	}

	tests := []struct {
		name     string
		last     *time.Time
		expected string
	}{
		{"never", nil, "No swipes yet"},
		{"today", ago(0), "Today"},
		{"yesterday", ago(1), "Yesterday"},
		{"days", ago(3), "3 days ago"},
		{"one week", ago(8), "1 week ago"},
		{"weeks", ago(20), "2 weeks ago"},
		{"long ago", ago(45), "45 days ago"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LastActivitySummary(tt.last, now); got != tt.expected {
				t.Errorf("LastActivitySummary() = %q, want %q", got, tt.expected)
			}
		})
	}
}

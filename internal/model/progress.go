package model

import "time"

// Progress reports the state of a training run after an epoch
type Progress struct {
	Epoch     int       // Epochs completed
	Epochs    int       // Total epochs in this run
	Loss      float64   // Mean training loss after this epoch
	Accuracy  float64   // Training accuracy after this epoch
	StartedAt time.Time // When training started (for ETA calculation)
}

// ProgressCallback is called once per epoch during training
type ProgressCallback func(Progress)

// ETA returns the estimated time remaining based on epochs completed
func (p Progress) ETA() time.Duration {
	if p.Epoch == 0 || p.Epochs == 0 || p.StartedAt.IsZero() {
		return 0
	}
	elapsed := time.Since(p.StartedAt)
	perEpoch := elapsed / time.Duration(p.Epoch)
	return perEpoch * time.Duration(p.Epochs-p.Epoch)
}

// Percentage returns the completion percentage (0-100)
func (p Progress) Percentage() int {
	if p.Epochs == 0 {
		return 0
	}
	return (p.Epoch * 100) / p.Epochs
}

package model

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/vijay-prabhu/aptmatch/internal/features"
	"github.com/vijay-prabhu/aptmatch/internal/learner"
	"github.com/vijay-prabhu/aptmatch/internal/listing"
)

// Advisory failure messages returned in TrainResult.Error
const (
	ErrInsufficientData = "Insufficient training data. Need at least 5 swipes."
	ErrNeedBothClasses  = "Need examples of both liked and disliked apartments."
)

// MinTrainingSwipes is the smallest swipe history a model is trained on
const MinTrainingSwipes = 5

// Adam hyperparameters
const (
	adamBeta1   = 0.9
	adamBeta2   = 0.999
	adamEpsilon = 1e-7
)

// TrainConfig contains hyperparameters for training
type TrainConfig struct {
	// Epochs is the number of passes over the training set.
	// Default: 100.
	Epochs int

	// LearningRate is the Adam step size.
	// Default: 0.01.
	LearningRate float64

	// MaxBatchSize caps the mini-batch; the batch is min(MaxBatchSize, N).
	// Default: 32.
	MaxBatchSize int

	// ValidationSplit is the fraction of examples held out for validation.
	// Default: 0.2.
	ValidationSplit float64

	// MinValidationSize is the example count below which no validation
	// split is taken.
	// Default: 20.
	MinValidationSize int

	// Seed for reproducible initialization and shuffling.
	// If 0, uses a default seed.
	Seed int64
}

// DefaultTrainConfig returns default training configuration
func DefaultTrainConfig() TrainConfig {
	return TrainConfig{
		Epochs:            100,
		LearningRate:      0.01,
		MaxBatchSize:      32,
		ValidationSplit:   0.2,
		MinValidationSize: 20,
		Seed:              42,
	}
}

func (c TrainConfig) withDefaults() TrainConfig {
	d := DefaultTrainConfig()
	if c.Epochs <= 0 {
		c.Epochs = d.Epochs
	}
	if c.LearningRate <= 0 {
		c.LearningRate = d.LearningRate
	}
	if c.MaxBatchSize <= 0 {
		c.MaxBatchSize = d.MaxBatchSize
	}
	if c.ValidationSplit <= 0 || c.ValidationSplit >= 1 {
		c.ValidationSplit = d.ValidationSplit
	}
	if c.MinValidationSize <= 0 {
		c.MinValidationSize = d.MinValidationSize
	}
	if c.Seed == 0 {
		c.Seed = d.Seed
	}
	return c
}

// TrainOptions configure a single training run
type TrainOptions struct {
	Config       TrainConfig
	UserLocation *listing.Coordinates
	Progress     ProgressCallback

	// Now returns the training timestamp; defaults to time.Now
	Now func() time.Time
}

// TrainResult is the outcome of a training run. Precondition failures are
// reported through Success and Error rather than a Go error.
type TrainResult struct {
	Success  bool          `json:"success"`
	Weights  *ModelWeights `json:"weights,omitempty"`
	Accuracy float64       `json:"accuracy,omitempty"`
	Error    string        `json:"error,omitempty"`
}

type example struct {
	x     features.Vector
	label float64
}

// TrainModel trains with default hyperparameters
func TrainModel(listings []listing.Listing, history []learner.Swipe, userLocation *listing.Coordinates) TrainResult {
	return Train(context.Background(), listings, history, TrainOptions{UserLocation: userLocation})
}

// Train fits a logistic regression over the swiped listings. It is retrained
// from scratch on every call. Cancelling ctx aborts between epochs.
func Train(ctx context.Context, listings []listing.Listing, history []learner.Swipe, opts TrainOptions) TrainResult {
	if msg := checkHistory(history); msg != "" {
		return TrainResult{Error: msg}
	}

	cfg := opts.Config.withDefaults()
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	trainedAt := now()

	stats := features.CalculateStatsForYear(listings, trainedAt.Year())
	examples := buildExamples(listings, history, stats, opts.UserLocation)
	if msg := checkExamples(examples); msg != "" {
		return TrainResult{Error: msg}
	}

	trainSet, valSet := split(examples, cfg)

	rng := rand.New(rand.NewSource(cfg.Seed))
	w, b := xavierInit(rng)
	opt := newAdam(cfg.LearningRate)

	batchSize := min(cfg.MaxBatchSize, len(trainSet))
	order := make([]int, len(trainSet))
	for i := range order {
		order[i] = i
	}

	startedAt := time.Now()
	var loss, acc float64
	for epoch := 1; epoch <= cfg.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return TrainResult{Error: fmt.Sprintf("training cancelled: %v", err)}
		}

		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

		for start := 0; start < len(order); start += batchSize {
			end := min(start+batchSize, len(order))
			gw, gb := gradients(w, b, trainSet, order[start:end])
			opt.step(&w, &b, gw, gb)
		}

		loss, acc = evaluate(w, b, trainSet)
		if opts.Progress != nil {
			opts.Progress(Progress{
				Epoch:     epoch,
				Epochs:    cfg.Epochs,
				Loss:      loss,
				Accuracy:  acc,
				StartedAt: startedAt,
			})
		}
	}

	mw := &ModelWeights{
		Weights:      make([][]float64, features.Count),
		Biases:       []float64{b},
		FeatureStats: stats,
		TrainedAt:    trainedAt,
		TrainingSize: len(examples),
		Accuracy:     acc,
		Loss:         loss,
	}
	for i := range w {
		mw.Weights[i] = []float64{w[i]}
	}
	if len(valSet) > 0 {
		_, valAcc := evaluate(w, b, valSet)
		mw.ValidationAccuracy = &valAcc
	}

	return TrainResult{Success: true, Weights: mw, Accuracy: acc}
}

// checkHistory enforces the swipe-count and class-balance preconditions
func checkHistory(history []learner.Swipe) string {
	if len(history) < MinTrainingSwipes {
		return ErrInsufficientData
	}
	var liked, disliked bool
	for _, s := range history {
		if s.Liked {
			liked = true
		} else {
			disliked = true
		}
	}
	if !liked || !disliked {
		return ErrNeedBothClasses
	}
	return ""
}

// checkExamples repeats the preconditions after swipes for missing listings
// were dropped
func checkExamples(examples []example) string {
	if len(examples) < MinTrainingSwipes {
		return ErrInsufficientData
	}
	var pos, neg int
	for _, e := range examples {
		if e.label == 1 {
			pos++
		} else {
			neg++
		}
	}
	if pos == 0 || neg == 0 {
		return ErrNeedBothClasses
	}
	return ""
}

func buildExamples(listings []listing.Listing, history []learner.Swipe, stats features.Stats, loc *listing.Coordinates) []example {
	idx := listing.Index(listings)
	examples := make([]example, 0, len(history))
	for _, s := range history {
		l, ok := idx[s.ListingID]
		if !ok {
			continue
		}
		x, err := features.Extract(l, stats, loc)
		if err != nil {
			continue
		}
		var label float64
		if s.Liked {
			label = 1
		}
		examples = append(examples, example{x: x, label: label})
	}
	return examples
}

// split holds out the trailing fraction of examples for validation once
// there are enough of them
func split(examples []example, cfg TrainConfig) ([]example, []example) {
	if len(examples) < cfg.MinValidationSize {
		return examples, nil
	}
	nVal := int(float64(len(examples)) * cfg.ValidationSplit)
	if nVal < 1 || nVal >= len(examples) {
		return examples, nil
	}
	cut := len(examples) - nVal
	return examples[:cut], examples[cut:]
}

// xavierInit draws weights from U(-l, l) with l = sqrt(6/(fanIn+fanOut))
func xavierInit(rng *rand.Rand) (features.Vector, float64) {
	limit := math.Sqrt(6.0 / float64(features.Count+1))
	var w features.Vector
	for i := range w {
		w[i] = (rng.Float64()*2 - 1) * limit
	}
	return w, 0
}

func predictRaw(w features.Vector, b float64, x features.Vector) float64 {
	z := b
	for i := range x {
		z += w[i] * x[i]
	}
	return sigmoid(z)
}

// gradients of mean binary cross-entropy over the batch
func gradients(w features.Vector, b float64, set []example, batch []int) (features.Vector, float64) {
	var gw features.Vector
	var gb float64
	n := float64(len(batch))
	for _, i := range batch {
		e := set[i]
		diff := predictRaw(w, b, e.x) - e.label
		for j := range gw {
			gw[j] += diff * e.x[j] / n
		}
		gb += diff / n
	}
	return gw, gb
}

// evaluate returns mean binary cross-entropy and accuracy at threshold 0.5
func evaluate(w features.Vector, b float64, set []example) (float64, float64) {
	if len(set) == 0 {
		return 0, 0
	}
	const eps = 1e-7
	var loss float64
	var correct int
	for _, e := range set {
		p := math.Min(math.Max(predictRaw(w, b, e.x), eps), 1-eps)
		loss -= e.label*math.Log(p) + (1-e.label)*math.Log(1-p)
		if (p >= 0.5) == (e.label == 1) {
			correct++
		}
	}
	n := float64(len(set))
	return loss / n, float64(correct) / n
}

// adam keeps first and second moment estimates for every parameter
type adam struct {
	lr     float64
	t      int
	mw, vw features.Vector
	mb, vb float64
}

func newAdam(lr float64) *adam {
	return &adam{lr: lr}
}

func (a *adam) step(w *features.Vector, b *float64, gw features.Vector, gb float64) {
	a.t++
	c1 := 1 - math.Pow(adamBeta1, float64(a.t))
	c2 := 1 - math.Pow(adamBeta2, float64(a.t))

	for i := range w {
		a.mw[i] = adamBeta1*a.mw[i] + (1-adamBeta1)*gw[i]
		a.vw[i] = adamBeta2*a.vw[i] + (1-adamBeta2)*gw[i]*gw[i]
		w[i] -= a.lr * (a.mw[i] / c1) / (math.Sqrt(a.vw[i]/c2) + adamEpsilon)
	}
	a.mb = adamBeta1*a.mb + (1-adamBeta1)*gb
	a.vb = adamBeta2*a.vb + (1-adamBeta2)*gb*gb
	*b -= a.lr * (a.mb / c1) / (math.Sqrt(a.vb/c2) + adamEpsilon)
}

package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vijay-prabhu/aptmatch/internal/database"
	"github.com/vijay-prabhu/aptmatch/internal/model"
	"github.com/vijay-prabhu/aptmatch/internal/output"
	"github.com/vijay-prabhu/aptmatch/internal/tracker"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train your like-probability model",
	Long: `Train a logistic model on your swipe history.

Needs at least 5 swipes with both likes and passes. Training also runs
automatically in the background every training.retrain_every swipes.`,
	RunE: runTrain,
}

var modelCmd = &cobra.Command{
	Use:   "model",
	Short: "Inspect the trained model",
}

var modelShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show model status, accuracy and feature importances",
	RunE:  runModelShow,
}

var modelSuggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Suggest scoring weights from the model",
	Long: `Derive scoring weights from the model's feature importances.

Use --apply to save the suggestion as your scoring weights.`,
	RunE: runModelSuggest,
}

var predictCmd = &cobra.Command{
	Use:   "predict <listing-id>",
	Short: "Predict how likely you are to like a listing",
	Args:  cobra.ExactArgs(1),
	RunE:  runPredict,
}

var (
	trainQuiet   bool
	suggestApply bool
)

func init() {
	rootCmd.AddCommand(trainCmd, modelCmd, predictCmd)
	modelCmd.AddCommand(modelShowCmd, modelSuggestCmd)

	trainCmd.Flags().BoolVarP(&trainQuiet, "quiet", "q", false, "Suppress progress output")
	modelSuggestCmd.Flags().BoolVar(&suggestApply, "apply", false, "Save the suggested weights to your preferences")
}

func runTrain(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	terminal := NewTerminal()
	var progress model.ProgressCallback
	if !trainQuiet && terminal.IsTerminal && outputFmt == "table" {
		var last time.Time
		progress = func(p model.Progress) {
			if p.Epoch < p.Epochs && time.Since(last) < 100*time.Millisecond {
				return
			}
			last = time.Now()
			terminal.ClearLine()
			fmt.Fprint(os.Stdout, terminal.TrainingLine(p))
			terminal.Flush()
		}
	}

	start := time.Now()
	res, err := a.tracker.Train(cmd.Context(), a.user(), progress)
	if progress != nil {
		terminal.ClearLine()
	}
	if errors.Is(err, tracker.ErrTrainingInProgress) {
		return fmt.Errorf("%w, try again shortly", err)
	}
	if err != nil {
		return err
	}

	if res.Success && outputFmt == "table" {
		fmt.Println(terminal.Color(ColorGreen, fmt.Sprintf("Trained in %s", time.Since(start).Round(time.Millisecond))))
	}
	return output.Output(outputFmt, res)
}

func runModelShow(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	report, err := a.tracker.ModelReport(cmd.Context(), a.user())
	if err != nil {
		return err
	}

	return output.Output(outputFmt, report)
}

func runModelSuggest(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	suggestion, err := a.tracker.Suggest(ctx, a.user())
	if errors.Is(err, tracker.ErrNoModel) {
		return fmt.Errorf("%w (run 'aptmatch train' first)", err)
	}
	if err != nil {
		return err
	}

	if suggestApply {
		profile, err := a.db.GetProfile(ctx, a.user())
		if err != nil {
			return fmt.Errorf("failed to load profile: %w", err)
		}
		var settings database.Settings
		if profile != nil {
			settings = profile.Settings
		}
		w := suggestion.Weights
		settings.Weights = &w
		if err := a.db.SaveSettings(ctx, a.user(), settings); err != nil {
			return fmt.Errorf("failed to save weights: %w", err)
		}
		a.log.Info().Str("user", a.user()).Msg("suggested weights applied")
	}

	return output.Output(outputFmt, suggestion)
}

type prediction struct {
	ListingID   string  `json:"listing_id"`
	Probability float64 `json:"probability"`
}

func runPredict(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	p, err := a.tracker.Predict(cmd.Context(), a.user(), args[0])
	if errors.Is(err, tracker.ErrNoModel) {
		return fmt.Errorf("%w (run 'aptmatch train' first)", err)
	}
	if err != nil {
		return err
	}

	if outputFmt == "json" {
		return output.JSON(prediction{ListingID: args[0], Probability: p})
	}
	fmt.Printf("Listing %s: %.0f%% likely to be a like\n", args[0], p*100)
	return nil
}

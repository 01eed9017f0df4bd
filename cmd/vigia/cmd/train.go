package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomas/vigia/internal/adapters/socket"
	"github.com/tomas/vigia/internal/app"
)

var (
	trainFile      string
	trainSynthetic int
	trainLaplace   bool
	trainSeed      int64
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Fit the Bayesian risk model",
	Long: "Fits the fire-risk model from a labeled CSV (--file) or from\n" +
		"synthetic weather samples (--synthetic N). Works with or without daemon.",
	RunE: runTrain,
}

func init() {
	trainCmd.Flags().StringVar(&trainFile, "file", "", "Labeled training CSV (temp,humidity,wind,risk)")
	trainCmd.Flags().IntVar(&trainSynthetic, "synthetic", 0, "Number of synthetic samples to generate")
	trainCmd.Flags().BoolVar(&trainLaplace, "laplace", false, "Apply Laplace smoothing to CPT rows")
	trainCmd.Flags().Int64Var(&trainSeed, "seed", 0, "Random seed for synthetic generation (0 = time-based)")
}

func runTrain(cmd *cobra.Command, args []string) error {
	root := projectRoot()
	params := socket.TrainParams{
		Path:      trainFile,
		Synthetic: trainSynthetic,
		Laplace:   trainLaplace,
		Seed:      trainSeed,
	}
	if params.Path == "" && params.Synthetic <= 0 {
		return fmt.Errorf("either --file or --synthetic is required")
	}

	// Train via the daemon when it holds the database
	client := socket.NewClient(socket.SocketPath(root))
	if client.Ping() {
		result, err := client.Train(params)
		if err != nil {
			return err
		}
		fmt.Printf("▲ model trained on %d samples (%d skipped)\n", result.Samples, result.Skipped)
		return nil
	}

	a, err := app.New(offlineConfig(root))
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	defer a.Stop()

	result, err := a.Train(params)
	if err != nil {
		return err
	}
	fmt.Printf("▲ model trained on %d samples (%d skipped)\n", result.Samples, result.Skipped)
	return nil
}

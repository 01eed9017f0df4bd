package cmd

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomas/vigia/internal/adapters/csvfeed"
	"github.com/tomas/vigia/internal/adapters/socket"
	"github.com/tomas/vigia/internal/app"
	"github.com/tomas/vigia/internal/domain/risk"
	"github.com/tomas/vigia/internal/domain/synth"
)

var (
	simulateCount int
	simulateSeed  int64
	simulateOut   string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a synthetic reading stream through the pipeline",
	Long: "Generates a synthetic reading stream and assesses it, or writes\n" +
		"it to a CSV file (--out) for later processing.",
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().IntVar(&simulateCount, "count", 48, "Number of readings to generate")
	simulateCmd.Flags().Int64Var(&simulateSeed, "seed", 0, "Random seed (0 = time-based)")
	simulateCmd.Flags().StringVar(&simulateOut, "out", "", "Write the stream to a CSV file instead of assessing it")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	root := projectRoot()

	if simulateOut != "" {
		return writeSimulatedCSV(simulateOut)
	}

	// With a running daemon, feed the generated stream through the socket
	// so the daemon accumulates the state.
	client := socket.NewClient(socket.SocketPath(root))
	if client.Ping() {
		seed := simulateSeed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		rng := rand.New(rand.NewSource(seed))
		start := time.Now().AddDate(0, 0, -simulateCount/8)

		skipped := 0
		var assessments []risk.Assessment
		for _, r := range synth.ReadingStream(rng, start, simulateCount) {
			assessment, err := client.Assess(r)
			if err != nil {
				skipped++
				continue
			}
			assessments = append(assessments, *assessment)
		}
		fmt.Print(formatReport(risk.BuildReport(assessments, skipped)))
		return nil
	}

	a, err := app.New(offlineConfig(root))
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	defer a.Stop()

	report, err := a.Simulate(simulateCount, simulateSeed)
	if err != nil {
		return err
	}
	fmt.Print(formatReport(report))
	return nil
}

// writeSimulatedCSV generates the stream and writes it as a feed-format CSV.
func writeSimulatedCSV(path string) error {
	seed := simulateSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	start := time.Now().AddDate(0, 0, -simulateCount/8)
	readings := synth.ReadingStream(rng, start, simulateCount)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := csvfeed.WriteReadings(f, readings); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Printf("▲ wrote %d synthetic readings to %s\n", len(readings), path)
	return nil
}

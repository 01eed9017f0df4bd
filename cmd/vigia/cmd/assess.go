package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomas/vigia/internal/adapters/socket"
	"github.com/tomas/vigia/internal/app"
	"github.com/tomas/vigia/internal/domain/risk"
)

var (
	assessZone  string
	assessTemp  float64
	assessHum   float64
	assessWind  float64
	assessEvent string
	assessNote  string
	assessFile  string
)

var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Assess a reading or a CSV of readings",
	Long: "Runs readings through the rule engine and the trained model.\n" +
		"Single reading with --zone/--temp/--hum/--wind, or a whole file with --file.",
	RunE: runAssess,
}

func init() {
	assessCmd.Flags().StringVar(&assessZone, "zone", "", "Monitoring zone name")
	assessCmd.Flags().Float64Var(&assessTemp, "temp", 0, "Temperature in °C")
	assessCmd.Flags().Float64Var(&assessHum, "hum", 0, "Relative humidity in %")
	assessCmd.Flags().Float64Var(&assessWind, "wind", 0, "Wind speed in km/h")
	assessCmd.Flags().StringVar(&assessEvent, "event", "", "Observed event type")
	assessCmd.Flags().StringVar(&assessNote, "note", "", "Free-text observer note")
	assessCmd.Flags().StringVar(&assessFile, "file", "", "CSV file of readings")
}

func runAssess(cmd *cobra.Command, args []string) error {
	root := projectRoot()

	if assessFile != "" {
		return runAssessFile(root, assessFile)
	}

	if assessZone == "" {
		return fmt.Errorf("either --zone or --file is required")
	}

	reading := risk.Reading{
		Timestamp: time.Now(),
		Zone:      assessZone,
		TempC:     assessTemp,
		Humidity:  assessHum,
		WindKmh:   assessWind,
		Event:     assessEvent,
		Note:      assessNote,
	}

	// Prefer the daemon so zone state and history accumulate in one place
	client := socket.NewClient(socket.SocketPath(root))
	if client.Ping() {
		assessment, err := client.Assess(reading)
		if err != nil {
			return err
		}
		fmt.Print(formatAssessment(assessment))
		return nil
	}

	a, err := app.New(offlineConfig(root))
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	defer a.Stop()

	assessment, err := a.AssessReading(reading)
	if err != nil {
		return err
	}
	fmt.Print(formatAssessment(assessment))
	return nil
}

func runAssessFile(root, path string) error {
	client := socket.NewClient(socket.SocketPath(root))
	if client.Ping() {
		return fmt.Errorf("daemon is running, drop the file into .vigia/drops/ instead")
	}

	a, err := app.New(offlineConfig(root))
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	defer a.Stop()

	report, err := a.AssessFile(path)
	if err != nil {
		return err
	}
	fmt.Print(formatReport(report))
	return nil
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomas/vigia/internal/adapters/socket"
	"github.com/tomas/vigia/internal/app"
)

var (
	inferTemp float64
	inferHum  float64
	inferWind float64
)

var inferCmd = &cobra.Command{
	Use:   "infer",
	Short: "Query the trained model for raw sensor values",
	RunE:  runInfer,
}

func init() {
	inferCmd.Flags().Float64Var(&inferTemp, "temp", 0, "Temperature in °C")
	inferCmd.Flags().Float64Var(&inferHum, "hum", 0, "Relative humidity in %")
	inferCmd.Flags().Float64Var(&inferWind, "wind", 0, "Wind speed in km/h")
	inferCmd.MarkFlagRequired("temp")
	inferCmd.MarkFlagRequired("hum")
	inferCmd.MarkFlagRequired("wind")
}

func runInfer(cmd *cobra.Command, args []string) error {
	root := projectRoot()

	client := socket.NewClient(socket.SocketPath(root))
	if client.Ping() {
		result, err := client.Infer(socket.InferParams{
			TempC: inferTemp, Humidity: inferHum, WindKmh: inferWind,
		})
		if err != nil {
			return err
		}
		fmt.Print(formatPosterior(result.Posterior, result.Level))
		return nil
	}

	a, err := app.New(offlineConfig(root))
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	defer a.Stop()

	posterior, level, err := a.Posterior(inferTemp, inferHum, inferWind)
	if err != nil {
		return err
	}
	fmt.Print(formatPosterior(posterior, level))
	return nil
}

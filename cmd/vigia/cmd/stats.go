package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomas/vigia/internal/adapters/socket"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show daemon counters",
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	root := projectRoot()
	client := socket.NewClient(socket.SocketPath(root))

	if !client.Ping() {
		return fmt.Errorf("daemon not running. Start with: vigia daemon start")
	}

	result, err := client.Stats()
	if err != nil {
		return err
	}

	fmt.Print(formatStats(result))
	return nil
}

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tomas/vigia/internal/adapters/bbolt"
	"github.com/tomas/vigia/internal/adapters/socket"
	"github.com/tomas/vigia/internal/domain/risk"
)

var reportLimit int

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize recent assessments by severity",
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().IntVar(&reportLimit, "limit", 100, "Number of recent assessments to include")
}

func runReport(cmd *cobra.Command, args []string) error {
	root := projectRoot()

	client := socket.NewClient(socket.SocketPath(root))
	if client.Ping() {
		report, err := client.Report(reportLimit)
		if err != nil {
			return err
		}
		fmt.Print(formatReport(report))
		return nil
	}

	// Daemon not running: read history straight from the store
	dbPath := filepath.Join(root, ".vigia", "vigia.db")
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Println("▲ no assessment history yet")
		return nil
	}

	store, err := bbolt.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	assessments, err := store.RecentAssessments(filepath.Base(root), reportLimit)
	if err != nil {
		return err
	}
	fmt.Print(formatReport(risk.BuildReport(assessments, 0)))
	return nil
}

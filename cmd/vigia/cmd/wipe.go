package cmd

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tomas/vigia/internal/adapters/bbolt"
	"github.com/tomas/vigia/internal/adapters/socket"
)

var wipeForce bool

var wipeCmd = &cobra.Command{
	Use:   "wipe",
	Short: "Clear all vigia data for project",
	Long:  "Deletes the trained model, assessment history, and zone states. Works with or without daemon.",
	RunE:  runWipe,
}

func init() {
	wipeCmd.Flags().BoolVar(&wipeForce, "force", false, "Skip confirmation prompt")
}

func runWipe(cmd *cobra.Command, args []string) error {
	root := projectRoot()

	if !wipeForce {
		fmt.Printf("⚠ This will delete all vigia data for %s. Continue? [y/N] ", filepath.Base(root))
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		answer = strings.TrimSpace(strings.ToLower(answer))
		if answer != "y" && answer != "yes" {
			fmt.Println("cancelled")
			return nil
		}
	}

	// If daemon is running, wipe via socket
	client := socket.NewClient(socket.SocketPath(root))
	if client.Ping() {
		if err := client.Wipe(); err != nil {
			return err
		}
		fmt.Println("▲ project data wiped (daemon)")
		return nil
	}

	// Daemon not running, wipe bbolt directly
	dbPath := filepath.Join(root, ".vigia", "vigia.db")
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Println("▲ no data to wipe")
		return nil
	}

	store, err := bbolt.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	if err := store.DeleteProject(filepath.Base(root)); err != nil {
		return err
	}

	fmt.Println("▲ project data wiped")
	return nil
}

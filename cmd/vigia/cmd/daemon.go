package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tomas/vigia/internal/adapters/socket"
	"github.com/tomas/vigia/internal/app"
	"github.com/tomas/vigia/internal/logging"
)

var (
	daemonHTTPPort int
	daemonFeedPath string
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Manage the vigia daemon",
}

var daemonStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the daemon",
	RunE:  runDaemonStart,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the daemon",
	RunE:  runDaemonStop,
}

func init() {
	daemonStartCmd.Flags().IntVar(&daemonHTTPPort, "http-port", 0, "Dashboard port (default: derived from project path)")
	daemonStartCmd.Flags().StringVar(&daemonFeedPath, "feed", "", "Live feed CSV to tail")
	daemonCmd.AddCommand(daemonStartCmd)
	daemonCmd.AddCommand(daemonStopCmd)
}

func runDaemonStart(cmd *cobra.Command, args []string) error {
	root := projectRoot()
	sockPath := socket.SocketPath(root)

	// Check if already running
	client := socket.NewClient(sockPath)
	if client.Ping() {
		fmt.Println("▲ daemon already running")
		return nil
	}

	paths := app.NewPaths(root)
	if err := paths.EnsureDirs(); err != nil {
		return fmt.Errorf("init: %w", err)
	}

	logger, err := logging.NewDaemonLogger(paths.DaemonLog)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	a, err := app.New(app.Config{
		ProjectRoot: root,
		RulesPath:   rulesPath,
		HTTPPort:    daemonHTTPPort,
		FeedPath:    daemonFeedPath,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}

	if err := a.Start(); err != nil {
		return err
	}

	_ = os.WriteFile(paths.PIDFile, []byte(strconv.Itoa(os.Getpid())), 0644)

	fmt.Printf("▲ vigia daemon started at %s\n", sockPath)
	fmt.Printf("▲ dashboard at %s\n", a.WebServer.URL())

	// Wait for a signal or a remote shutdown request
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		fmt.Println("\n▲ shutting down...")
	case <-a.Server.ShutdownCh():
		fmt.Println("▲ remote stop received, shutting down...")
	}

	return a.Stop()
}

func runDaemonStop(cmd *cobra.Command, args []string) error {
	root := projectRoot()
	sockPath := socket.SocketPath(root)
	client := socket.NewClient(sockPath)

	if !client.Ping() {
		fmt.Println("▲ daemon is not running")
		return nil
	}

	if err := client.Shutdown(); err != nil {
		return err
	}

	fmt.Println("▲ daemon stopped")
	return nil
}

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tomas/vigia/internal/app"
)

var rootCmd = &cobra.Command{
	Use:   "vigia",
	Short: "vigia — forest fire risk monitor",
	Long:  "Rule-based fire risk alerts and Bayesian risk inference over field sensor readings.",
}

// rulesPath overrides the embedded rule pack (--rules).
var rulesPath string

// offlineConfig builds the App config for commands that run without a daemon.
func offlineConfig(root string) app.Config {
	return app.Config{ProjectRoot: root, RulesPath: rulesPath}
}

// projectRoot returns the project root (cwd by default).
func projectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	return dir
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rulesPath, "rules", "", "Rule pack override (YAML file or directory)")
	rootCmd.AddCommand(assessCmd)
	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(inferCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(wipeCmd)
}

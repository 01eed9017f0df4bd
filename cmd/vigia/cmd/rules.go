package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomas/vigia/internal/domain/rules"
	"github.com/tomas/vigia/rulepack"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the loaded rule base",
	RunE:  runRules,
}

func runRules(cmd *cobra.Command, args []string) error {
	var (
		ruleSet []rules.Rule
		err     error
	)
	if rulesPath != "" {
		ruleSet, err = rules.LoadFromPath(rulesPath)
	} else {
		ruleSet, err = rules.LoadFromFS(rulepack.FS, "rules")
	}
	if err != nil {
		return fmt.Errorf("load rules: %w", err)
	}

	fmt.Print(formatRules(ruleSet))
	return nil
}

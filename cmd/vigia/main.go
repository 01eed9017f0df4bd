// vigia is a forest fire risk monitor.
// Single binary, zero config: rule-based alerts plus a Bayesian risk model.
package main

import (
	"os"

	"github.com/tomas/vigia/cmd/vigia/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// Command stmbench drives the OrecEager engine through a workload
// outside of the `go test` harness, and optionally exposes the engine's
// commit/abort counters over HTTP.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "stmbench",
		Short: "Drive the OrecEager STM engine through benchmark scenarios",
	}

	rootCmd.AddCommand(
		newRunCommand(),
		newServeCommand(),
	)

	cobra.EnablePrefixMatching = true

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// redraft is the CLI for the research pipeline: run a single query, run a
// batch of queries concurrently, or serve the pipeline over HTTP.
//
// Usage:
//
//	redraft run "What are the impacts of AI on the world"
//	redraft batch -f queries.yaml [--concurrency=4]
//	redraft serve [--listen=:8080]
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagConfig  string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:           "redraft",
	Short:         "Turn a query into a reviewed, refined, evidence-cited answer",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to a YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "log pipeline progress and print intermediate stages")

	rootCmd.AddCommand(runCmd, batchCmd, serveCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "redraft: %v\n", err)
		os.Exit(1)
	}
}

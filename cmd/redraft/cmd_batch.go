package main

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/smhanov/redraft"
	"github.com/smhanov/redraft/config"
)

var (
	flagBatchFile        string
	flagBatchConcurrency int
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run a YAML file of queries as independent concurrent pipelines",
	Long: `Reads a YAML file of the form

    queries:
      - What are the impacts of AI on the world
      - How do vaccines work

and runs each query through its own pipeline instance. Runs share no state,
so they execute concurrently up to the --concurrency limit. Output is
printed in input order once all runs finish.`,
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringVarP(&flagBatchFile, "file", "f", "", "YAML file of queries (required)")
	batchCmd.Flags().IntVar(&flagBatchConcurrency, "concurrency", 4, "maximum pipelines in flight")
	_ = batchCmd.MarkFlagRequired("file")
}

type batchFile struct {
	Queries []string `yaml:"queries"`
}

func runBatch(cmd *cobra.Command, _ []string) error {
	data, err := os.ReadFile(flagBatchFile)
	if err != nil {
		return err
	}
	var bf batchFile
	if err := yaml.Unmarshal(data, &bf); err != nil {
		return fmt.Errorf("parse %s: %w", flagBatchFile, err)
	}
	if len(bf.Queries) == 0 {
		return fmt.Errorf("%s contains no queries", flagBatchFile)
	}

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	pipeline, err := buildPipeline(cfg, logger)
	if err != nil {
		return err
	}

	var mu sync.Mutex
	states := make(map[int]redraft.State)

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(flagBatchConcurrency)
	for i, query := range bf.Queries {
		i, query := i, query
		g.Go(func() error {
			st, err := pipeline.Run(ctx, query)
			if err != nil {
				return fmt.Errorf("query %d: %w", i+1, err)
			}
			mu.Lock()
			states[i] = st
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	indexes := make([]int, 0, len(states))
	for i := range states {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)
	for _, i := range indexes {
		st := states[i]
		fmt.Printf("=== %s ===\n", st.Query)
		if flagVerbose {
			fmt.Println(st.Snapshot())
		} else {
			fmt.Println(st.FinalAnswer)
		}
		fmt.Println()
	}
	return nil
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smhanov/redraft/config"
)

var runCmd = &cobra.Command{
	Use:   "run <query>",
	Short: "Run the pipeline once and print the final answer",
	Args:  cobra.ExactArgs(1),
	RunE:  runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
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

	st, err := pipeline.Run(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if flagVerbose {
		fmt.Println(st.Snapshot())
		return nil
	}
	fmt.Println(st.FinalAnswer)
	return nil
}

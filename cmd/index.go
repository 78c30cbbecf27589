package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var indexCmd = &cobra.Command{
	Use:   "index [file]",
	Short: "Load alumni records from a JSON file into the store",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runIndex(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)

	indexCmd.Flags().StringSlice("remove", nil, "alumni ids to delete from the store")
}

func runIndex(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	logger := newLogger()
	config := mustConfig(logger)

	file := config.CorpusFile
	if len(args) == 1 {
		file = args[0]
	}
	// the memory store would load corpus-file on open and again below
	config.CorpusFile = ""

	st, err := newStore(ctx, config, logger)
	if err != nil {
		logger.Fatal("opening the alumni store", zap.Error(err))
	}
	defer st.Close()

	remove, _ := cmd.Flags().GetStringSlice("remove")
	for _, id := range remove {
		if err := st.Delete(ctx, id); err != nil {
			logger.Warn("deleting alumni", zap.String("candidate_id", id), zap.Error(err))
			continue
		}
		logger.Info("alumni deleted", zap.String("candidate_id", id))
	}

	if file == "" {
		if len(remove) == 0 {
			logger.Fatal("nothing to index", zap.String("hint", "pass a file or set corpus-file in the configuration"))
		}
		return
	}

	if _, err := ingest(ctx, st, file, logger); err != nil {
		logger.Fatal("indexing alumni", zap.String("file", file), zap.Error(err))
	}

	stats, err := st.Stats(ctx)
	if err != nil {
		logger.Fatal("reading store statistics", zap.Error(err))
	}
	logger.Info("store ready", zap.Int("count", stats.Count), zap.String("driver", stats.Driver))
}

package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print alumni store statistics",
	Run: func(_ *cobra.Command, _ []string) {
		runStats()
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats() {
	ctx := context.Background()
	logger := newLogger()
	config := mustConfig(logger)

	st, err := newStore(ctx, config, logger)
	if err != nil {
		logger.Fatal("opening the alumni store", zap.Error(err))
	}
	defer st.Close()

	stats, err := st.Stats(ctx)
	if err != nil {
		logger.Fatal("reading store statistics", zap.Error(err))
	}

	logger.Info("store statistics",
		zap.Int("count", stats.Count),
		zap.String("similarity_method", stats.Method),
		zap.String("driver", stats.Driver),
	)
}

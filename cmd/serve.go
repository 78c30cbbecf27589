package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/alumni-referrer/internal/api"
	"github.com/spigell/alumni-referrer/internal/metrics"
	"github.com/spigell/alumni-referrer/internal/referral"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	Run: func(_ *cobra.Command, _ []string) {
		runServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("addr", "a", "", "listen address (default is serve.addr)")
	viper.BindPFlag("serve.addr", serveCmd.Flags().Lookup("addr"))
}

func runServe() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := newLogger()
	config := mustConfig(logger)

	logger.Info("starting the alumni-referrer", zap.String("version", version), zap.String("addr", config.Serve.Addr))

	st, err := newStore(ctx, config, logger)
	if err != nil {
		logger.Fatal("opening the alumni store", zap.Error(err))
	}
	defer st.Close()

	manager := metrics.NewManager()

	svc, err := newSearchService(config, st, manager, logger)
	if err != nil {
		logger.Fatal("creating the search service", zap.Error(err))
	}

	if !viper.GetBool("debug") {
		gin.SetMode(gin.ReleaseMode)
	}

	router := api.NewRouter(api.Deps{
		Search:   svc,
		Profiles: st,
		Stats:    st,
		Composer: newComposer(ctx, config, manager, logger),
		Analyzer: referral.NewAnalyzer(),
		Recorder: manager,
		Metrics:  manager.Handler(),
		Logger:   logger,
	})

	server := &http.Server{
		Addr:              config.Serve.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("serving http", zap.Error(err))
		}
	case <-ctx.Done():
		logger.Info("shutting down", zap.String("reason", "signal received"))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutting down http server", zap.Error(err))
		}
	}
}

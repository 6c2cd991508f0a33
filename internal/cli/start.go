package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rarescolibaba/timethread/internal/category"
	"github.com/rarescolibaba/timethread/internal/config"
	"github.com/rarescolibaba/timethread/internal/logger"
	"github.com/rarescolibaba/timethread/internal/monitor"
	"github.com/rarescolibaba/timethread/internal/proc"
	"github.com/rarescolibaba/timethread/internal/server"
	"github.com/rarescolibaba/timethread/internal/store"
	"github.com/rarescolibaba/timethread/internal/uptime"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the timethread daemon",
	Long:  `Start the tracking daemon in foreground mode.`,
	RunE:  runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg := config.LoadOrDefault(cfgFile)

	// Override listen address if specified via flag
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = port
	}
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = host
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	log.Info("timethread starting",
		"version", Version,
		"config", cfgFile,
	)

	st, err := store.New(cfg.Persistence.DataDir, log)
	if err != nil {
		return fmt.Errorf("failed to open data store: %w", err)
	}

	classifier := category.NewClassifier()
	for pattern, cat := range cfg.Categories.Overrides {
		classifier.SetOverride(pattern, cat)
	}

	probe := uptime.NewProbe(log)
	source := proc.NewSystemSource(cfg.StartTimeTimeout())

	m := monitor.New(source, classifier, st, probe, monitor.Options{
		PollInterval:  cfg.PollInterval(),
		FlushInterval: cfg.FlushInterval(),
		Allowlist:     cfg.Monitoring.Allowlist,
		Exclude:       cfg.Monitoring.Exclude,
	}, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m.Start(ctx)

	srv := server.New(cfg, m, st, probe, log, Version)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// srv.Start returns as soon as Shutdown closes the listener, so runStart
	// must wait for this goroutine: it performs the final flush via m.Stop.
	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-sigCh

		log.Info("shutdown signal received")
		signal.Stop(sigCh)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown error", "error", err)
		}

		// Stops the poll loops and runs a final flush.
		m.Stop()
		cancel()
	}()

	log.Info("timethread ready", "addr", srv.Addr())

	if err := srv.Start(); err != nil && err != http.ErrServerClosed {
		// Listen failed before any signal; still flush what the initial
		// poll tracked.
		m.Stop()
		return fmt.Errorf("server error: %w", err)
	}

	<-shutdownDone

	log.Info("timethread stopped")
	return nil
}

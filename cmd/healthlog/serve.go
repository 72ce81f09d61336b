package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/vbonduro/healthlog/internal/metrics"
	"github.com/vbonduro/healthlog/internal/tracker"
	"github.com/vbonduro/healthlog/internal/web"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	tr := a.newTracker(metrics.New(reg))
	tr.Open(ctx)
	defer func() {
		if err := tr.Close(); err != nil {
			a.logger.Error("failed to close tracker", "error", err)
		}
	}()

	go watchFailures(ctx, tr, a)

	server := web.NewServer(tr, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), a.cfg.LibraryLimit, a.logger)
	errc := make(chan error, 1)
	go func() { errc <- server.ListenAndServe(a.cfg.ListenAddr) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// watchFailures surfaces updates and deletes that no store accepted.
func watchFailures(ctx context.Context, tr *tracker.Tracker, a *app) {
	for {
		select {
		case <-ctx.Done():
			return
		case f := <-tr.Failures():
			a.logger.Warn("change not persisted; it will be lost on restart",
				"op", f.Op, "entry_id", f.EntryID, "error", f.Err)
		}
	}
}

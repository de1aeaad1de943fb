package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rochester-stm/orec/internal/txn"
)

func newServeCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose the engine's commit/abort/validation-failure counters over /metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveMetrics(addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":9090", "address to listen on")
	return cmd
}

func serveMetrics(addr string) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer logger.Sync()

	reg := prometheus.NewRegistry()
	if err := txn.RegisterMetrics(reg); err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	logger.Info("serving metrics", zap.String("addr", addr))
	return http.ListenAndServe(addr, mux)
}

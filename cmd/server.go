package cmd

import (
	"context"
	"net/http"
	"time"

	"dexscout/catalog"
	"dexscout/monitoring"
	"dexscout/utils"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type metricsServer struct {
	srv *http.Server
}

func startMetricsServer(ctx context.Context, addr string, cat *catalog.Catalog) *metricsServer {
	mux := http.NewServeMux()
	mux.Handle("/health", monitoring.HealthHandler(cat))
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           utils.RequestLogger(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}
	monitoring.StartMetricsCollection(ctx, 5*time.Second)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			utils.Error(err, "Metrics server error", "addr", addr)
		}
	}()
	utils.Logger.Infow("Metrics server listening", "addr", addr)
	return &metricsServer{srv: srv}
}

func (m *metricsServer) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.srv.Shutdown(ctx); err != nil {
		utils.Error(err, "Metrics server shutdown")
	}
}

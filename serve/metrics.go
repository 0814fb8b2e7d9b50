package serve

import (
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Paranoid-AF/codelet"
)

var (
	// requestsTotal counts handled requests by kind and outcome
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "codelet_requests_total",
		Help: "Total daemon requests by kind and outcome",
	}, []string{"kind", "outcome"})

	// requestDuration tracks end-to-end request latency
	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "codelet_request_duration_seconds",
		Help:    "Daemon request duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
	}, []string{"kind"})

	requestsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "codelet_requests_in_flight",
		Help: "Completion requests currently being handled",
	})

	configReloads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "codelet_config_reloads_total",
		Help: "Total engine reloads",
	})
)

func observeRequest(kind, result string, start time.Time) {
	requestsTotal.WithLabelValues(kind, result).Inc()
	requestDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}

// outcome labels a completion response: "ok", "empty" or its error code.
func outcome(resp *codelet.Response) string {
	switch {
	case resp.Error != nil:
		return resp.Error.Code
	case resp.Completion == "":
		return "empty"
	default:
		return "ok"
	}
}

// MetricsServer exposes the daemon metrics over HTTP.
type MetricsServer struct {
	srv      *http.Server
	listener net.Listener
}

// ListenMetrics binds addr and starts serving /metrics in the background.
func ListenMetrics(addr string) (*MetricsServer, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	m := &MetricsServer{
		srv:      &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second},
		listener: listener,
	}

	go func() {
		if err := m.srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server error", "error", err)
		}
	}()
	slog.Info("serving metrics", "addr", listener.Addr().String())
	return m, nil
}

// Addr returns the bound address.
func (m *MetricsServer) Addr() string {
	return m.listener.Addr().String()
}

// Close stops the metrics server.
func (m *MetricsServer) Close() error {
	return m.srv.Close()
}

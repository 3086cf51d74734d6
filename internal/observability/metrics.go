package observability

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nicolasllerenas/hackathon-tecsup/internal/platform/logger"
)

// Metrics records client-side request and polling counters on a private
// registry. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry        *prometheus.Registry
	requests        *prometheus.CounterVec
	latency         *prometheus.HistogramVec
	credentialWipes prometheus.Counter
	polls           *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "connectu",
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "Outbound API requests by route, status and error kind.",
		}, []string{"method", "route", "status", "kind"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "connectu",
			Subsystem: "client",
			Name:      "request_duration_seconds",
			Help:      "Outbound API request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		credentialWipes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "connectu",
			Subsystem: "client",
			Name:      "credential_wipes_total",
			Help:      "Stored credentials cleared after a 401.",
		}),
		polls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "connectu",
			Subsystem: "chat",
			Name:      "polls_total",
			Help:      "Chat poll ticks by result (ok, error, skipped).",
		}, []string{"result"}),
	}
	m.registry.MustRegister(m.requests, m.latency, m.credentialWipes, m.polls)
	return m
}

func (m *Metrics) ObserveRequest(method, route string, status int, kind string, d time.Duration) {
	if m == nil {
		return
	}
	if kind == "" {
		kind = "none"
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status), kind).Inc()
	m.latency.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) IncCredentialWipe() {
	if m == nil {
		return
	}
	m.credentialWipes.Inc()
}

func (m *Metrics) ObservePoll(result string) {
	if m == nil {
		return
	}
	m.polls.WithLabelValues(result).Inc()
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string, log *logger.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	log.Info("metrics listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics records tool call counts and latencies.
type Metrics struct {
	registry *prometheus.Registry
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		calls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wamcp_tool_calls_total",
				Help: "Tool calls by tool name and HTTP status",
			},
			[]string{"tool", "status"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wamcp_tool_duration_seconds",
				Help:    "Duration of tool calls in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"tool"},
		),
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) instrument(tool string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.calls.WithLabelValues(tool, strconv.Itoa(status)).Inc()
		m.duration.WithLabelValues(tool).Observe(time.Since(start).Seconds())
	}
}

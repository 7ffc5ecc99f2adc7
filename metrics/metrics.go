package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"statuscheck-go/status"
)

// Metrics holds the Prometheus collectors for checks, hops and the API.
type Metrics struct {
	FlowsTotal   *prometheus.CounterVec
	FlowDuration prometheus.Histogram
	Outcomes     *prometheus.CounterVec
	Failures     *prometheus.CounterVec

	HopsTotal   *prometheus.CounterVec
	HopDuration *prometheus.HistogramVec

	RequestsTotal *prometheus.CounterVec
	WSConnections prometheus.Gauge

	gatherer prometheus.Gatherer
}

// New registers every collector on reg.
func New(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		FlowsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "statuscheck_flows_total",
				Help: "Completed status check flows by result",
			},
			[]string{"ok"},
		),
		FlowDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "statuscheck_flow_duration_seconds",
				Help:    "Wall time of a full status check flow",
				Buckets: []float64{.25, .5, 1, 2.5, 5, 10, 20, 40, 60},
			},
		),
		Outcomes: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "statuscheck_outcomes_total",
				Help: "Successful checks by certificate outcome",
			},
			[]string{"outcome"},
		),
		Failures: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "statuscheck_failures_total",
				Help: "Failed checks by error kind",
			},
			[]string{"kind"},
		),
		HopsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "statuscheck_http_hops_total",
				Help: "HTTP round-trips to the external site",
			},
			[]string{"method", "status"},
		),
		HopDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "statuscheck_http_hop_duration_seconds",
				Help:    "Duration of a single HTTP round-trip",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 15},
			},
			[]string{"method"},
		),
		RequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "statuscheck_api_requests_total",
				Help: "API requests by route and status code",
			},
			[]string{"route", "code"},
		),
		WSConnections: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "statuscheck_ws_connections",
				Help: "Open websocket connections",
			},
		),
		gatherer: reg,
	}
}

// ObserveHop records one HTTP round-trip. It matches session.HopFunc.
func (m *Metrics) ObserveHop(method string, code int, elapsed time.Duration) {
	m.HopsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	m.HopDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// Observe records a completed flow.
func (m *Metrics) Observe(_ context.Context, c status.Completion) error {
	res := c.Result
	if res == nil {
		return nil
	}
	m.FlowsTotal.WithLabelValues(strconv.FormatBool(res.OK)).Inc()
	m.FlowDuration.Observe(c.Duration.Seconds())
	if res.OK {
		m.Outcomes.WithLabelValues(string(res.Structured.Outcome)).Inc()
	} else {
		m.Failures.WithLabelValues(string(res.ErrorKind)).Inc()
	}
	return nil
}

// ObserveRequest counts an API response.
func (m *Metrics) ObserveRequest(route string, code int) {
	m.RequestsTotal.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "renovation"

const (
	LabelSuccess = "success"
	LabelError   = "error"
)

// Metrics holds the collectors exported on /metrics.
type Metrics struct {
	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	BlobOps         *prometheus.CounterVec
	BlobOpDuration  *prometheus.HistogramVec
	OrphanBlobs     prometheus.Counter
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Count of HTTP requests by route and status",
		}, []string{"method", "route", "status"}),

		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Histogram of HTTP request latency",
			Buckets:   prometheus.ExponentialBuckets(1e-3, 4, 8),
		}, []string{"method", "route"}),

		BlobOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "blob",
			Name:      "operations_total",
			Help:      "Count of blob store operations by outcome",
		}, []string{"op", "result"}),

		BlobOpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "blob",
			Name:      "operation_duration_seconds",
			Help:      "Histogram of blob store operation latency",
			Buckets:   prometheus.ExponentialBuckets(1e-3, 4, 8),
		}, []string{"op"}),

		OrphanBlobs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orphan_blobs_total",
			Help:      "Blobs written whose document record could not be inserted",
		}),
	}

	reg.MustRegister(m.PrometheusCollectors()...)
	return m
}

func (m *Metrics) PrometheusCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.Requests,
		m.RequestDuration,
		m.BlobOps,
		m.BlobOpDuration,
		m.OrphanBlobs,
	}
}

// Middleware records one sample per request, labelled by the matched route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		m.Requests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.RequestDuration.WithLabelValues(method, route).Observe(time.Since(started).Seconds())
	}
}

// ObserveBlobOp implements storage.Observer.
func (m *Metrics) ObserveBlobOp(op string, started time.Time, err error) {
	if m == nil {
		return
	}
	result := LabelSuccess
	if err != nil {
		result = LabelError
	}
	m.BlobOps.WithLabelValues(op, result).Inc()
	m.BlobOpDuration.WithLabelValues(op).Observe(time.Since(started).Seconds())
}

// OrphanBlob counts a blob left behind by a failed document insert.
func (m *Metrics) OrphanBlob() {
	if m == nil {
		return
	}
	m.OrphanBlobs.Inc()
}

// Handler serves the collectors gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/anachak/anachak/internal/common/config"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry    *prometheus.Registry
	httpReqCnt  *prometheus.CounterVec
	httpDur     *prometheus.HistogramVec
	httpInfl    *prometheus.GaugeVec
	remoteCnt   *prometheus.CounterVec
	remoteDur   *prometheus.HistogramVec
	deletionCnt *prometheus.CounterVec
	uploadCnt   *prometheus.CounterVec
}

func New(cfg config.MetricsConfig) *Metrics {
	ns := cfg.Namespace
	buckets := cfg.Buckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}
	r := prometheus.NewRegistry()
	r.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	r.MustRegister(collectors.NewGoCollector())

	httpReqCnt := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "http_requests_total"}, []string{"method", "route", "status"})
	httpDur := prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: ns, Name: "http_request_duration_seconds", Buckets: buckets}, []string{"method", "route", "status"})
	httpInfl := prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: ns, Name: "http_requests_inflight"}, []string{"route"})
	r.MustRegister(httpReqCnt, httpDur, httpInfl)

	// auth, database and storage collaborator calls
	remoteCnt := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "remote_calls_total"}, []string{"collaborator", "op", "status"})
	remoteDur := prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: ns, Name: "remote_call_duration_seconds", Buckets: buckets}, []string{"collaborator", "op"})
	r.MustRegister(remoteCnt, remoteDur)

	deletionCnt := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "deletions_total"}, []string{"resource", "outcome"})
	uploadCnt := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "media_uploads_total"}, []string{"outcome"})
	r.MustRegister(deletionCnt, uploadCnt)

	return &Metrics{
		registry:    r,
		httpReqCnt:  httpReqCnt,
		httpDur:     httpDur,
		httpInfl:    httpInfl,
		remoteCnt:   remoteCnt,
		remoteDur:   remoteDur,
		deletionCnt: deletionCnt,
		uploadCnt:   uploadCnt,
	}
}

// RemoteCall records one collaborator call. A nil receiver is a no-op.
func (m *Metrics) RemoteCall(collaborator, op string, since time.Time, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.remoteCnt.WithLabelValues(collaborator, op, status).Inc()
	m.remoteDur.WithLabelValues(collaborator, op).Observe(time.Since(since).Seconds())
}

// Deletion records the terminal state of a confirmed delete
func (m *Metrics) Deletion(resource, outcome string) {
	if m == nil {
		return
	}
	m.deletionCnt.WithLabelValues(resource, outcome).Inc()
}

// Upload records an accepted, rejected or failed image upload
func (m *Metrics) Upload(outcome string) {
	if m == nil {
		return
	}
	m.uploadCnt.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpInfl.WithLabelValues(route).Inc()
		start := time.Now()
		c.Next()
		status := strconv.Itoa(c.Writer.Status())
		m.httpReqCnt.WithLabelValues(c.Request.Method, route, status).Inc()
		m.httpDur.WithLabelValues(c.Request.Method, route, status).Observe(time.Since(start).Seconds())
		m.httpInfl.WithLabelValues(route).Dec()
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

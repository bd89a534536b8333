package metrics

import (
	"regexp"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestDuration tracks HTTP request duration in seconds by method, path, status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// RequestTotal counts HTTP requests by method, path, status.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// MailQueueDepth is the number of emails waiting for a worker.
	MailQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "mail_queue_depth",
			Help: "Number of emails waiting in the in-process queue",
		},
	)

	// MailTotal counts email outcomes by result (sent, failed, spilled).
	MailTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mail_messages_total",
			Help: "Total number of emails processed by result",
		},
		[]string{"result"},
	)

	PostsCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "posts_created_total",
			Help: "Total number of posts created",
		},
	)

	// FollowTotal counts follow graph changes by action (follow, unfollow).
	FollowTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "follow_graph_changes_total",
			Help: "Total number of follow graph edges added or removed",
		},
		[]string{"action"},
	)
)

var (
	numericPathSegment = regexp.MustCompile(`/[0-9]+(/|$)`)
	initOnce           sync.Once
)

func init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestDuration, RequestTotal, MailQueueDepth, MailTotal, PostsCreatedTotal, FollowTotal)
	})
}

// NormalizePath reduces cardinality by replacing numeric path segments with {id}.
// Used when no route pattern is known (e.g. 404s).
func NormalizePath(path string) string {
	return numericPathSegment.ReplaceAllString(path, "/{id}$1")
}

// RecordRequest records duration and count for an HTTP request.
func RecordRequest(method, path string, statusCode int, durationSeconds float64) {
	path = NormalizePath(path)
	status := strconv.Itoa(statusCode)
	RequestDuration.WithLabelValues(method, path, status).Observe(durationSeconds)
	RequestTotal.WithLabelValues(method, path, status).Inc()
}

func IncMail(result string) {
	MailTotal.WithLabelValues(result).Inc()
}

func SetMailQueueDepth(n int) {
	MailQueueDepth.Set(float64(n))
}

func IncPostsCreated() {
	PostsCreatedTotal.Inc()
}

func IncFollow(action string) {
	FollowTotal.WithLabelValues(action).Inc()
}

package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "courseselect",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total status API requests.",
		},
		[]string{"method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "courseselect",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Status API request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
	inboundMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "courseselect",
			Subsystem: "protocol",
			Name:      "inbound_total",
			Help:      "Server-to-client messages by command.",
		},
		[]string{"command"},
	)
	outboundMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "courseselect",
			Subsystem: "protocol",
			Name:      "outbound_total",
			Help:      "Client-to-server messages by command.",
		},
		[]string{"command"},
	)
	notices = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "courseselect",
			Subsystem: "session",
			Name:      "notices_total",
			Help:      "User-facing notices by severity.",
		},
		[]string{"severity"},
	)
	connects = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "courseselect",
			Subsystem: "session",
			Name:      "connects_total",
			Help:      "Websocket connection attempts by result.",
		},
		[]string{"result"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, inboundMessages, outboundMessages, notices, connects)
	})
}

func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(method, path, statusLabel).Observe(duration.Seconds())
}

// RecordInbound counts one inbound line. Unrecognized command names are
// folded into one label to keep cardinality bounded.
func RecordInbound(command string, known bool) {
	RegisterMetrics()
	if !known {
		command = "unknown"
	}
	inboundMessages.WithLabelValues(command).Inc()
}

func RecordOutbound(command string) {
	RegisterMetrics()
	outboundMessages.WithLabelValues(command).Inc()
}

func RecordNotice(severity string) {
	RegisterMetrics()
	notices.WithLabelValues(severity).Inc()
}

func RecordConnect(success bool) {
	RegisterMetrics()
	result := "failure"
	if success {
		result = "success"
	}
	connects.WithLabelValues(result).Inc()
}

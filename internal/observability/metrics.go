package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	linesRead = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "serialnode",
			Name:      "lines_read_total",
			Help:      "Raw lines read from a source.",
		},
		[]string{"node"},
	)
	framesDecoded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "serialnode",
			Name:      "frames_decoded_total",
			Help:      "Lines decoded into frames, by kind tag.",
		},
		[]string{"node", "kind"},
	)
	linesDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "serialnode",
			Name:      "lines_dropped_total",
			Help:      "Lines that did not yield a frame.",
		},
		[]string{"node"},
	)
	wsClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "serialnode",
		Subsystem: "hub",
		Name:      "ws_clients",
		Help:      "Connected websocket clients.",
	})
	decodeDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "serialnode",
		Name:      "decode_duration_seconds",
		Help:      "Time spent decoding a single line.",
		Buckets:   prometheus.ExponentialBuckets(1e-7, 4, 10),
	})
)

// RegisterMetrics registers all collectors on the default registerer once.
func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(linesRead, framesDecoded, linesDropped, wsClients, decodeDuration)
	})
}

// RecordLine counts one raw line read by node.
func RecordLine(node string) {
	RegisterMetrics()
	linesRead.WithLabelValues(node).Inc()
}

// RecordDecode records the outcome of decoding one line. kind is ignored when ok is false.
func RecordDecode(node, kind string, ok bool, d time.Duration) {
	RegisterMetrics()
	decodeDuration.Observe(d.Seconds())
	if !ok {
		linesDropped.WithLabelValues(node).Inc()
		return
	}
	framesDecoded.WithLabelValues(node, kind).Inc()
}

// SetWSClients sets the websocket client gauge.
func SetWSClients(n int) {
	RegisterMetrics()
	wsClients.Set(float64(n))
}

package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	interpretations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gymchat",
		Subsystem: "interpret",
		Name:      "requests_total",
		Help:      "Utterances interpreted, by outcome.",
	}, []string{"outcome"})
	resolveRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gymchat",
		Subsystem: "resolver",
		Name:      "requests_total",
		Help:      "Semantic resolver calls, by result.",
	}, []string{"result"})
	resolveDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "gymchat",
		Subsystem: "resolver",
		Name:      "request_duration_seconds",
		Help:      "Latency of semantic resolver calls.",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 8),
	})
	transcriptions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gymchat",
		Subsystem: "speech",
		Name:      "requests_total",
		Help:      "Speech-to-text calls, by result.",
	}, []string{"result"})
	recordPersistGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "gymchat",
		Subsystem: "persistence",
		Name:      "last_record_persisted_timestamp_seconds",
		Help:      "Unix timestamp of the most recent record persisted.",
	})
)

func init() {
	prometheus.MustRegister(interpretations, resolveRequests, resolveDuration, transcriptions, recordPersistGauge)
}

// RecordInterpretation counts one finished interpretation.
func RecordInterpretation(outcome string) {
	interpretations.WithLabelValues(outcome).Inc()
}

// RecordResolve counts one resolver call and its latency.
func RecordResolve(err error, d time.Duration) {
	resolveRequests.WithLabelValues(result(err)).Inc()
	resolveDuration.Observe(d.Seconds())
}

// RecordTranscription counts one speech-to-text call.
func RecordTranscription(err error) {
	transcriptions.WithLabelValues(result(err)).Inc()
}

// RecordPersisted updates the persistence watermark gauge.
func RecordPersisted(ts time.Time) {
	if ts.IsZero() {
		return
	}
	recordPersistGauge.Set(float64(ts.Unix()))
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

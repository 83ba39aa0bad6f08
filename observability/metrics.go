package observability

import (
	"time"

	gu "github.com/xraph/go-utils/metrics"
)

// Metrics holds metric instruments for Scribe, backed by any go-utils MetricFactory
// (e.g. the forge-managed metrics system via fapp.Metrics()).
type Metrics struct {
	EventsReceived     gu.Counter
	EventsRejected     gu.Counter
	EventsIgnored      gu.Counter
	DispatchesTotal    gu.Counter
	ProcessorsMatched  gu.Counter
	ProcessorSucceeded gu.Counter
	ProcessorFailed    gu.Counter
	ProcessorLatency   gu.Histogram
	InFlight           gu.Gauge
}

// NewMetrics creates Scribe metric instruments using the supplied factory.
// Pass fapp.Metrics() from a forge extension, or gu.NewMetricsCollector()
// for standalone usage.
func NewMetrics(factory gu.MetricFactory) *Metrics {
	return &Metrics{
		EventsReceived:     factory.Counter("scribe_events_received_total"),
		EventsRejected:     factory.Counter("scribe_events_rejected_total"),
		EventsIgnored:      factory.Counter("scribe_events_ignored_total"),
		DispatchesTotal:    factory.Counter("scribe_dispatches_total"),
		ProcessorsMatched:  factory.Counter("scribe_processors_matched_total"),
		ProcessorSucceeded: factory.Counter("scribe_processor_succeeded_total"),
		ProcessorFailed:    factory.Counter("scribe_processor_failed_total"),
		ProcessorLatency:   factory.Histogram("scribe_processor_latency_seconds"),
		InFlight:           factory.Gauge("scribe_processors_in_flight"),
	}
}

// RecordReceived counts an inbound webhook body.
func (m *Metrics) RecordReceived() {
	if m == nil {
		return
	}
	m.EventsReceived.Inc()
}

// RecordRejected counts a request refused before dispatch.
func (m *Metrics) RecordRejected(reason string) {
	if m == nil {
		return
	}
	m.EventsRejected.WithLabels(map[string]string{"reason": reason}).Inc()
}

// RecordIgnored counts an event of an unknown type.
func (m *Metrics) RecordIgnored() {
	if m == nil {
		return
	}
	m.EventsIgnored.Inc()
}

// RecordDispatch counts a dispatch and the number of processors it matched.
func (m *Metrics) RecordDispatch(matched int) {
	if m == nil {
		return
	}
	m.DispatchesTotal.Inc()
	for range matched {
		m.ProcessorsMatched.Inc()
	}
}

// ProcessorStarted marks an executor as running.
func (m *Metrics) ProcessorStarted() {
	if m == nil {
		return
	}
	m.InFlight.Inc()
}

// RecordProcessor records a finished executor and its latency.
func (m *Metrics) RecordProcessor(processorID string, success bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.InFlight.Dec()
	m.ProcessorLatency.Observe(elapsed.Seconds())
	if success {
		m.ProcessorSucceeded.Inc()
		return
	}
	m.ProcessorFailed.Inc()
}

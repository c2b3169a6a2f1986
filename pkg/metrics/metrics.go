package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the connector's Prometheus collectors. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	noncesIssued       prometheus.Counter
	nonceResyncs       prometheus.Counter
	channelTransitions *prometheus.CounterVec
	ledgerTxs          *prometheus.CounterVec
	disputes           prometheus.Counter
	openChannels       prometheus.Gauge
}

// New creates a Metrics instance registered on its own registry.
func New(namespace string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		noncesIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "nonces_issued_total",
			Help:      "Number of nonces handed out by the allocator",
		}),
		nonceResyncs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "nonce_resyncs_total",
			Help:      "Number of nonce cursor resynchronizations from the ledger",
		}),
		channelTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "channel_transitions_total",
			Help:      "Number of channel state transitions by target state",
		}, []string{"state"}),
		ledgerTxs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_transactions_total",
			Help:      "Number of ledger transactions by kind and result",
		}, []string{"kind", "result"}),
		disputes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "channel_disputes_total",
			Help:      "Number of balance claims escalated to the ledger",
		}),
		openChannels: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "channels_open",
			Help:      "Number of channels currently open",
		}),
	}

	m.registry.MustRegister(
		m.noncesIssued,
		m.nonceResyncs,
		m.channelTransitions,
		m.ledgerTxs,
		m.disputes,
		m.openChannels,
		collectors.NewGoCollector(),
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) NonceIssued() {
	if m == nil {
		return
	}
	m.noncesIssued.Inc()
}

func (m *Metrics) NonceResynced() {
	if m == nil {
		return
	}
	m.nonceResyncs.Inc()
}

// ChannelTransition records a transition into state. Entering OPEN increments
// the open gauge; leaving it is reported with from.
func (m *Metrics) ChannelTransition(from, to string) {
	if m == nil {
		return
	}
	m.channelTransitions.WithLabelValues(to).Inc()
	if to == "OPEN" && from != "OPEN" {
		m.openChannels.Inc()
	}
	if from == "OPEN" && to != "OPEN" {
		m.openChannels.Dec()
	}
}

func (m *Metrics) LedgerTx(kind string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.ledgerTxs.WithLabelValues(kind, result).Inc()
}

func (m *Metrics) Dispute() {
	if m == nil {
		return
	}
	m.disputes.Inc()
}

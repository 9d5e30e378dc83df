package txn

import "github.com/prometheus/client_golang/prometheus"

// metrics holds the counters a Manager updates across its lifetime.
// Manager.Metrics exposes them for an operator to register with their own
// prometheus.Registerer, so multiple Managers in one process don't collide
// on metric name registration.
type metrics struct {
	commits      prometheus.Counter
	rollbacks    prometheus.Counter
	prunes       prometheus.Counter
	readersOpen  prometheus.Gauge
	writersOpen  prometheus.Gauge
	historyDepth prometheus.Gauge
}

func newMetrics(name string) *metrics {
	labels := prometheus.Labels{"zone": name}
	return &metrics{
		commits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dnscore_txn_commits_total", Help: "Committed writer transactions.", ConstLabels: labels,
		}),
		rollbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dnscore_txn_rollbacks_total", Help: "Rolled-back writer transactions.", ConstLabels: labels,
		}),
		prunes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dnscore_txn_prunes_total", Help: "Versions dropped by the pruning policy.", ConstLabels: labels,
		}),
		readersOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dnscore_txn_readers_open", Help: "Currently open reader transactions.", ConstLabels: labels,
		}),
		writersOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dnscore_txn_writers_open", Help: "Currently open writer transactions (0 or 1).", ConstLabels: labels,
		}),
		historyDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dnscore_txn_history_depth", Help: "Superseded versions currently retained.", ConstLabels: labels,
		}),
	}
}

// Collectors returns every metric so a caller can prometheus.MustRegister
// them (or register through their own registry to control collisions
// across multiple Managers).
func (m *metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.commits, m.rollbacks, m.prunes, m.readersOpen, m.writersOpen, m.historyDepth,
	}
}

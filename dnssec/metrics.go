package dnssec

import "github.com/prometheus/client_golang/prometheus"

// SignVerifyOps counts SignRRset and VerifyRRSIGAt calls by operation and
// outcome, labeled by algorithm so a dashboard can single out a rollout of
// a new algorithm without code changes.
var SignVerifyOps = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "dnscore_dnssec_ops_total",
		Help: "DNSSEC sign/verify operations by outcome.",
	},
	[]string{"op", "outcome", "algorithm"},
)

func init() {
	prometheus.MustRegister(SignVerifyOps)
}

func observe(op string, algorithm string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	SignVerifyOps.WithLabelValues(op, outcome, algorithm).Inc()
}

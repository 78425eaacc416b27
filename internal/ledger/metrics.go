package ledger

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reconciliationsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kharcha_reconciliations_applied_total",
		Help: "Reconciliations that produced at least one ledger entry, by source record kind.",
	}, []string{"source"})

	reconciliationsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kharcha_reconciliations_rejected_total",
		Help: "Reconciliations rejected by the repayment guard, by source record kind.",
	}, []string{"source"})
)

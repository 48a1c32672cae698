package transaction

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tinoosan/fintrack/internal/ledger"
)

var postings = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "fintrack",
		Name:      "ledger_transactions_total",
		Help:      "Transaction create attempts by payment type and outcome",
	},
	[]string{"payment_type", "outcome"},
)

func observe(paymentType string, err error) {
	label := "unknown"
	if pt, ok := ledger.ParsePaymentType(paymentType); ok {
		label = string(pt)
	}
	postings.WithLabelValues(label, outcome(err)).Inc()
}

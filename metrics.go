package tkv

import (
	"fmt"
	"io"

	"github.com/VictoriaMetrics/metrics"
)

// storeMetrics holds every counter the package exports.
var storeMetrics = metrics.NewSet()

func countOp(op, db string) {
	storeMetrics.GetOrCreateCounter(fmt.Sprintf(`tkv_operations_total{op=%q,db=%q}`, op, db)).Inc()
}

func countTxn(state txnState, outcome string) {
	storeMetrics.GetOrCreateCounter(fmt.Sprintf(`tkv_transactions_total{mode=%q,outcome=%q}`, state, outcome)).Inc()
}

func countError(kind Kind) {
	storeMetrics.GetOrCreateCounter(fmt.Sprintf(`tkv_errors_total{kind=%q}`, kind)).Inc()
}

// WriteMetrics writes the store counters in Prometheus text format.
func WriteMetrics(w io.Writer) {
	storeMetrics.WritePrometheus(w)
}

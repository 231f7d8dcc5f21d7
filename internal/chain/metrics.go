package chain

import "expvar"

var (
	metricQueryTotal        = expvar.NewInt("chain_query_total")
	metricQueryErrors       = expvar.NewInt("chain_query_errors_total")
	metricQueryUnauthorized = expvar.NewInt("chain_query_unauthorized_total")
	metricBroadcastTotal    = expvar.NewInt("chain_broadcast_total")
	metricBroadcastErrors   = expvar.NewInt("chain_broadcast_errors_total")
)

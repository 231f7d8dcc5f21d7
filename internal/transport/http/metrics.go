package httptransport

import "expvar"

var (
	metricActionSubmitTotal  = expvar.NewInt("api_action_submit_total")
	metricActionSubmitErrors = expvar.NewInt("api_action_submit_errors_total")

	metricSSEConnectionsTotal  = expvar.NewInt("api_sse_connections_total")
	metricSSEConnectionsActive = expvar.NewInt("api_sse_connections_active")

	metricCrossOriginRefused = expvar.NewInt("api_cross_origin_refused_total")
)

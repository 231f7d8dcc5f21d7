package action

import "expvar"

var (
	metricSubmitTotal        = expvar.NewInt("action_submit_total")
	metricSubmitErrors       = expvar.NewInt("action_submit_errors_total")
	metricSubmitRejected     = expvar.NewInt("action_submit_rejected_total")
	metricSubmitNotSubmitted = expvar.NewInt("action_submit_not_submitted_total")
	metricInstantiateTotal   = expvar.NewInt("action_instantiate_total")
	metricGuardRejected      = expvar.NewInt("action_guard_rejected_total")
)

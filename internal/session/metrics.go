package session

import "expvar"

var (
	metricConnectTotal    = expvar.NewInt("session_connect_total")
	metricConnectErrors   = expvar.NewInt("session_connect_errors_total")
	metricDisconnectTotal = expvar.NewInt("session_disconnect_total")
	metricRestoreTotal    = expvar.NewInt("session_restore_attempts_total")
)

package poller

import "expvar"

var (
	metricPollTicks           = expvar.NewInt("poll_ticks_total")
	metricPollSkipped         = expvar.NewInt("poll_skipped_in_flight_total")
	metricPollBackoffSkips    = expvar.NewInt("poll_backoff_skips_total")
	metricPollFetches         = expvar.NewInt("poll_fetches_total")
	metricPollFailures        = expvar.NewInt("poll_failures_total")
	metricSubscriptionsActive = expvar.NewInt("poll_subscriptions_active")
)

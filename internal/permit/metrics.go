package permit

import "expvar"

var (
	metricPermitHits          = expvar.NewInt("permit_cache_hits_total")
	metricPermitMisses        = expvar.NewInt("permit_cache_misses_total")
	metricPermitSigns         = expvar.NewInt("permit_signs_total")
	metricPermitRetries       = expvar.NewInt("permit_unauthorized_retries_total")
	metricPermitInvalidations = expvar.NewInt("permit_invalidations_total")
)

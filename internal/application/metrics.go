package application

import "expvar"

// counters are published under /debug/vars as "accounts".
var counters = expvar.NewMap("accounts")

const (
	metricRegistered     = "registered"
	metricLogins         = "logins"
	metricLoginFailures  = "login_failures"
	metricRefreshes      = "refreshes"
	metricRefreshRejects = "refresh_rejects"
	metricLogouts        = "logouts"
	metricUploadFailures = "upload_failures"
)

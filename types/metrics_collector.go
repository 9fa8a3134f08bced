package types

// MetricsCollector defines methods for recording operational metrics.
//
// Implementations should be non-blocking and must be safe for concurrent use;
// HTTP handlers call into the collector from many goroutines.
//
// This interface composes smaller, domain-focused interfaces.
type MetricsCollector interface {
	RosterMetrics
	GroupingMetrics
	HTTPMetrics
}

// RosterMetrics defines metrics for roster loading.
type RosterMetrics interface {
	// RecordRosterLoad records a roster load attempt.
	//
	// Parameters:
	//   - source: Roster source name (e.g., "static", "sqlite")
	//   - duration: Time taken in seconds
	//   - success: true if the provider returned a roster
	RecordRosterLoad(source string, duration float64, success bool)

	// RecordRosterSize sets the current roster size (gauge metric).
	RecordRosterSize(count int)
}

// GroupingMetrics defines metrics for partition passes.
type GroupingMetrics interface {
	// RecordGrouping records a partition pass.
	//
	// Parameters:
	//   - strategy: Strategy name (e.g., "balanced")
	//   - requested: Group count requested by the caller
	//   - effective: Number of groups actually produced
	RecordGrouping(strategy string, requested, effective int)
}

// HTTPMetrics defines metrics for the HTTP surface.
type HTTPMetrics interface {
	// RecordHTTPRequest records a served request.
	//
	// Parameters:
	//   - route: Route pattern (e.g., "GET /api/people")
	//   - code: HTTP status code
	//   - duration: Time taken in seconds
	RecordHTTPRequest(route string, code int, duration float64)
}

package metrics

import "github.com/arloliu/grouper/types"

// NopMetrics implements a no-op metrics collector.
//
// All metrics are discarded. Useful for testing or when metrics are disabled.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNop creates a new no-op metrics collector.
//
// Returns:
//   - *NopMetrics: A new no-op metrics collector instance
//
// Example:
//
//	svc, err := grouper.NewService(&cfg, src, grouper.WithMetrics(metrics.NewNop()))
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// RosterMetrics implementation

// RecordRosterLoad discards the roster load metric.
func (n *NopMetrics) RecordRosterLoad(_ /* source */ string, _ /* duration */ float64, _ /* success */ bool) {
	// No-op
}

// RecordRosterSize discards the roster size metric.
func (n *NopMetrics) RecordRosterSize(_ /* count */ int) {
	// No-op
}

// GroupingMetrics implementation

// RecordGrouping discards the grouping metric.
func (n *NopMetrics) RecordGrouping(_ /* strategy */ string, _ /* requested */, _ /* effective */ int) {
	// No-op
}

// HTTPMetrics implementation

// RecordHTTPRequest discards the HTTP request metric.
func (n *NopMetrics) RecordHTTPRequest(_ /* route */ string, _ /* code */ int, _ /* duration */ float64) {
	// No-op
}

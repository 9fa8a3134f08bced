// Package testing provides test utilities for the grouper module.
//
// This package offers helpers for setting up test environments, particularly
// an embedded NATS server for testing the JetStream KV roster provider. It
// follows Go's convention of providing testing utilities in a dedicated
// package (similar to net/http/httptest).
//
// Key utilities:
//   - StartEmbeddedNATS: Single NATS server with JetStream
//   - CreateJetStreamKV: Convenience wrapper for KV bucket creation
//   - NewTestLogger: types.Logger that writes to testing.T
//
// Example usage:
//
//	import (
//	    "testing"
//	    groupertest "github.com/arloliu/grouper/testing"
//	)
//
//	func TestMyComponent(t *testing.T) {
//	    _, nc := groupertest.StartEmbeddedNATS(t)
//	    // Use nc for your tests
//	}
package testing

// Package server exposes a grouper Service over HTTP.
//
// It serves the roster and group JSON API, the server-rendered shuffle page,
// health and readiness probes and, when configured, Prometheus metrics. UI
// state (group count text, last groups, member list visibility) is kept per
// browser session in a TTL cache keyed by a cookie.
package server

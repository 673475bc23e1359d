// Package metrics exposes Prometheus counters for the sync runs.
//
// The registry is private to the process. The serve command exposes it on
// /metrics; one-shot CLI runs push it to a Pushgateway when
// metrics.pushgateway_url is set.
package metrics

// Package metrics exposes gate activity as Prometheus counters.
//
// A Metrics value implements auth.Observer; pass it to auth.WithObserver and
// mount Handler on the configured metrics path.
package metrics

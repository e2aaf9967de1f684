// Package prometheus renders famguard metrics in Prometheus text
// exposition format.
//
// [NewPrometheusExporter] accepts a [famguard.Engine] and exposes an
// [net/http.Handler] serving every counter and histogram. Counter
// names are prefixed famguard_*_total; the single histogram is
// famguard_validate_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount
//     the Handler.
//   - Mutate engine state.
package prometheus

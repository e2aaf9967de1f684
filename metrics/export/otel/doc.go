// Package otel provides OpenTelemetry metric exporter bindings for
// famguard counters and histograms.
//
// [NewOTelExporter] registers an Int64ObservableCounter per engine
// counter and Int64ObservableGauge per histogram bucket. A single
// callback reads [famguard.Engine.MetricsSnapshot] on each collection
// cycle.
//
// # What this package must NOT do
//
//   - Own the OTel MeterProvider — callers supply the Meter.
//   - Mutate engine state.
package otel

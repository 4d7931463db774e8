// Package prometheus renders goRevoke metrics in Prometheus text exposition format.
//
// [NewPrometheusExporter] accepts a [goRevoke.Engine] and exposes an [http.Handler]
// that renders all goRevoke counters. Counter names are prefixed gorevoke_*_total.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the Handler.
//   - Mutate engine state.
package prometheus

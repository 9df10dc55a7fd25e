// Package control
// Author: momentics <momentics@gmail.com>
//
// Runtime observation layer of a thermostress run.
//
// Provides:
//   - MetricsExporter, an api.Metrics backed by Prometheus collectors
//   - DebugProbes, named state probes dumped as JSON at /debug/state
//   - Platform probes describing the host the run is pinned on
package control

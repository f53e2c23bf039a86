// Package metrics defines the interfaces and records used to observe a
// simulation run. Sinks like PromSink and InfluxSink consume one
// StepRecord per supervisor step and can be combined with NewMultiSink.
// The factory helpers return a MultiSink automatically when multiple
// sinks are configured.
package metrics

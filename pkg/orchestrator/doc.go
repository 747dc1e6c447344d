// Package orchestrator wires the load → rules → external validator → report
// pipeline, providing dependency injection friendly helpers for consumers that
// prefer a single entry point.
package orchestrator

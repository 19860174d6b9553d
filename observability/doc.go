// Package observability exports shield metrics through OpenTelemetry and
// health snapshots over the breaker registry.
package observability

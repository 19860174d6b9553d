// Package logger wraps zerolog with shield-specific conventions:
// component-tagged loggers, standard field names for breakers and retry
// attempts, and construction from config or environment.
package logger

// Package errors provides unified error handling for the shield library.
// It implements structured error types with error codes, HTTP status
// mapping, and retryable detection, so callers can branch on what went
// wrong without string matching.
package errors

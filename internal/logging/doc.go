// Package logging provides structured logging helpers built on
// log/slog: shared attribute-key constants, attribute constructors, and
// PII-safe rendering of email addresses for log correlation.
package logging

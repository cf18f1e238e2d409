// Package logging builds the slog loggers used across the application.
// It provides a compact console handler for terminals and a JSON handler
// for machine-readable logs, selected through configuration.
package logging

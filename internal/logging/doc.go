// Package logging wraps log/slog with the handlers and field conventions the
// rest of the pipeline relies on: a console handler for interactive use, a
// JSON handler for machine consumption, Attr aliases, and helpers that derive
// structured fields (item_id, stage, correlation_id) from a context.
package logging

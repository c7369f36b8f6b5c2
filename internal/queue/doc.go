// Package queue persists batch items in SQLite and exposes the lifecycle
// statuses the workflow manager drives items through.
//
// Each item corresponds to one source URL. Statuses move strictly forward:
// pending -> acquiring -> acquired -> identifying -> identified -> resolving
// -> resolved -> organizing -> completed, with failed as the only terminal
// error state. A failed item never re-enters the pipeline within the same run;
// RetryFailed re-enqueues it explicitly.
package queue

// Package workflow coordinates batch processing of queue items.
//
// The manager walks a fixed stage pipeline (acquire, identify, resolve,
// organize) keyed by queue status. Run drains every item to a terminal state
// one at a time, emitting progress events along the way; a failed stage marks
// only its item failed and never aborts the batch.
package workflow

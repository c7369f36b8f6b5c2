// Command soundminer is the CLI for the acquisition and identification
// pipeline: queue URLs, run batches, and inspect results.
package main

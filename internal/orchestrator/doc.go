// Package orchestrator fans staging and publishing work out across a bounded
// worker pool. Records are processed in parallel while each record's channels
// run sequentially, and per-unit failures are collected into a report instead
// of aborting the batch.
package orchestrator

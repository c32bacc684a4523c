// Package check implements the asynchronous check job lifecycle. The Engine
// validates submissions, enqueues pending checks, and runs the processing
// pipeline (segment, embed, search, score, report); the Worker drains the
// queue on a bounded goroutine pool and periodically expires and reclaims
// stale checks.
//
// Status transitions are enforced by storage: pending moves to processing
// via an atomic claim, transient failures requeue until the attempt budget
// is spent, and completed, failed, cancelled, and expired are terminal.
package check

// Package analysis runs the scoring pipeline and publishes its results.
//
// A run fetches subjects from a source, optionally enriches them with
// verdicts in parallel, scores and explains every subject, lays out the
// topology and finally swaps the new Snapshot in atomically. Readers always
// see a complete snapshot: the previous one while a run is in flight, and
// the previous one again if the run fails.
//
// At most one run is in flight. Analyze and Trigger report ErrBusy when a run
// is already executing; the request is dropped, not queued. After Stop,
// Trigger reports ErrStopped.
package analysis

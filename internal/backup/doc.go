// Package backup implements the resumable library sync engine.
//
// The core abstraction is Engine, which orchestrates full and selective
// runs over the catalog: strictly sequential paginated fetches, courtesy
// pacing between pages, rate-limit bookkeeping, and cursor persistence
// after every page so an interrupted run restarts at the exact offset it
// stopped at. Operations emit progress updates via channels for
// non-blocking status reporting to the CLI layer.
//
// A run ends in one of three outcomes. Completed hands back the fetched
// data for merging. Interrupted means the catalog pushed back (throttle or
// transient failure): the partial snapshot and marked cursor are on disk
// and the main snapshot is untouched. Failed means a fatal error such as a
// refresh that would not take; nothing is offered for resume.
package backup

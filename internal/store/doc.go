// Package store owns the on-disk snapshot state and the reconciliation that
// feeds it.
//
// The file layout under the storage directory mirrors what the backup
// produces: spotify_backup.json (the main snapshot), liked_songs.json (a
// convenience copy of the liked collection), .partial_backup.json (written
// only by interrupted runs), folders.json (local-only playlist folder
// paths), history/ (rotated snapshot copies) and update_log.json
// (reconciliation statistics). Interrupted runs never touch the main
// snapshot file; only a completed merge replaces it.
//
// [MergeFull] and [MergeSelective] are pure functions over snapshots; the
// backup engine wraps them with load/save plumbing.
package store

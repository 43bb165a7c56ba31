// Package models defines the domain types for the SpotiUp backup engine.
//
// The package contains three categories of types:
//
// 1. Item types: [Track] with its [TrackKey] identity pair
//   - Equality and hashing are defined over (ID, URI), independent of
//     mutable fields like popularity or genre backfill
//   - [IdentitySet] builds the set representation the merge engine diffs
//
// 2. Collection types: [Playlist] and [LikedCollection]
//   - Playlists carry a snapshot ID (Spotify's version token) enabling
//     skip-if-unchanged during merges; the liked collection has none and
//     is always compared set-wise
//   - The Folder field is local-only organizational metadata, never sent
//     upstream and preserved across merges
//
// 3. The persisted [Snapshot]: the complete reconciled local copy of the
// user's library, produced by the merge engine and consumed by the next
// backup run.
//
// Invariant: a collection's declared total and its actual track list may
// legitimately diverge (local tracks, filtered items). Consumers must use
// [Playlist.TrackCount], never the declared total, for truth.
package models

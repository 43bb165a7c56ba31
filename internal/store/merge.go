package store

import (
	"github.com/dayeggpi/spotiup/internal/models"
)

// MergeStats tallies what a reconciliation changed.
//
// Track counts come from identity-set differences, never from ordered
// comparison: remote reordering without content change contributes zero.
type MergeStats struct {
	PlaylistsAdded   int `json:"playlists_added"`
	PlaylistsUpdated int `json:"playlists_updated"`
	PlaylistsRemoved int `json:"playlists_removed"`
	TracksAdded      int `json:"tracks_added"`
	TracksRemoved    int `json:"tracks_removed"`
	TracksUpdated    int `json:"tracks_updated"`
}

// Empty reports whether the reconciliation changed nothing.
func (s MergeStats) Empty() bool {
	return s == MergeStats{}
}

// MergeFull reconciles a freshly fetched snapshot against the previous one.
//
// For each fetched playlist: unseen ID means added (all its tracks count as
// added); a matching snapshot ID means the old stored playlist is kept
// verbatim, including its track list, so an unchanged remote entity causes
// zero churn even when incidental fields differ in the fetched copy; a
// differing snapshot ID means updated, with track deltas computed by
// identity-set difference. Playlists present before but absent from the
// fetch are removed and contribute their full stored track count. The liked
// collection has no version token and is always compared set-wise.
//
// The merged snapshot preserves the fetched playlist order. Folder paths are
// local-only metadata and carry over from the old entry whenever a stored
// playlist is replaced. Aggregate counts are recomputed, never carried over.
//
// A nil old snapshot means first save: everything in fetched counts as added.
func MergeFull(old, fetched *models.Snapshot) (*models.Snapshot, MergeStats) {
	var stats MergeStats

	merged := &models.Snapshot{
		Version:    models.SnapshotVersion,
		UserID:     fetched.UserID,
		UserName:   fetched.UserName,
		Liked:      fetched.Liked,
		ExportedAt: fetched.ExportedAt,
	}

	merged.Playlists = make([]models.Playlist, 0, len(fetched.Playlists))
	for _, pl := range fetched.Playlists {
		var oldPl *models.Playlist
		if old != nil {
			oldPl = old.Playlist(pl.ID)
		}

		switch {
		case oldPl == nil:
			stats.PlaylistsAdded++
			stats.TracksAdded += len(pl.Tracks)
			merged.Playlists = append(merged.Playlists, pl)

		case oldPl.SnapshotID == pl.SnapshotID:
			merged.Playlists = append(merged.Playlists, *oldPl)

		default:
			stats.PlaylistsUpdated++
			added, removed := setDelta(oldPl.Tracks, pl.Tracks)
			stats.TracksAdded += added
			stats.TracksRemoved += removed
			pl.Folder = oldPl.Folder
			merged.Playlists = append(merged.Playlists, pl)
		}
	}

	if old != nil {
		fetchedIDs := make(map[string]struct{}, len(fetched.Playlists))
		for _, pl := range fetched.Playlists {
			fetchedIDs[pl.ID] = struct{}{}
		}
		for _, pl := range old.Playlists {
			if _, ok := fetchedIDs[pl.ID]; !ok {
				stats.PlaylistsRemoved++
				stats.TracksRemoved += len(pl.Tracks)
			}
		}
	}

	var oldLiked []models.Track
	if old != nil {
		oldLiked = old.Liked.Tracks
	}
	added, removed := setDelta(oldLiked, fetched.Liked.Tracks)
	stats.TracksAdded += added
	stats.TracksRemoved += removed

	merged.Recount()
	return merged, stats
}

// MergeSelective replaces individual playlists in the previous snapshot with
// wholesale re-fetched copies.
//
// Each replacement found in the old snapshot by ID is swapped in place,
// preserving playlist order. Track deltas use the same identity-set
// comparison as [MergeFull]; additionally the intersection of old and new
// identity sets counts as updated, since a wholesale re-fetch refreshes
// mutable fields (popularity and the like) even when identity is unchanged.
// Replacement IDs not present in the old snapshot are ignored.
//
// Returns nil when old is nil; selective merge needs an existing snapshot.
func MergeSelective(old *models.Snapshot, replacements []models.Playlist) (*models.Snapshot, MergeStats) {
	var stats MergeStats
	if old == nil {
		return nil, stats
	}

	merged := *old
	merged.Playlists = make([]models.Playlist, len(old.Playlists))
	copy(merged.Playlists, old.Playlists)

	for _, repl := range replacements {
		idx := -1
		for i := range merged.Playlists {
			if merged.Playlists[i].ID == repl.ID {
				idx = i
				break
			}
		}
		if idx < 0 {
			continue
		}

		oldPl := merged.Playlists[idx]
		oldSet := models.IdentitySet(oldPl.Tracks)
		newSet := models.IdentitySet(repl.Tracks)

		for key := range newSet {
			if _, ok := oldSet[key]; ok {
				stats.TracksUpdated++
			} else {
				stats.TracksAdded++
			}
		}
		for key := range oldSet {
			if _, ok := newSet[key]; !ok {
				stats.TracksRemoved++
			}
		}

		stats.PlaylistsUpdated++
		repl.Folder = oldPl.Folder
		merged.Playlists[idx] = repl
	}

	merged.Recount()
	return &merged, stats
}

// setDelta returns how many track identities were added and removed between
// the old and new lists.
func setDelta(oldTracks, newTracks []models.Track) (added, removed int) {
	oldSet := models.IdentitySet(oldTracks)
	newSet := models.IdentitySet(newTracks)

	for key := range newSet {
		if _, ok := oldSet[key]; !ok {
			added++
		}
	}
	for key := range oldSet {
		if _, ok := newSet[key]; !ok {
			removed++
		}
	}
	return added, removed
}

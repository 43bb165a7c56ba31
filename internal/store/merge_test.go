package store

import (
	"reflect"
	"testing"

	"github.com/dayeggpi/spotiup/internal/models"
)

func track(id string) models.Track {
	return models.Track{
		ID:   id,
		URI:  "spotify:track:" + id,
		Name: "Track " + id,
	}
}

func playlist(id, snapshotID string, tracks ...models.Track) models.Playlist {
	return models.Playlist{
		ID:          id,
		Name:        "Playlist " + id,
		SnapshotID:  snapshotID,
		TotalTracks: len(tracks),
		Tracks:      tracks,
	}
}

func snapshot(playlists []models.Playlist, liked ...models.Track) *models.Snapshot {
	s := &models.Snapshot{
		Version:   models.SnapshotVersion,
		UserID:    "user1",
		Playlists: playlists,
		Liked:     models.LikedCollection{Tracks: liked, Total: len(liked)},
	}
	s.Recount()
	return s
}

func TestMergeFullFirstSave(t *testing.T) {
	fetched := snapshot(
		[]models.Playlist{
			playlist("p1", "a", track("t1"), track("t2")),
			playlist("p2", "b", track("t3")),
		},
		track("l1"),
	)

	merged, stats := MergeFull(nil, fetched)

	want := MergeStats{PlaylistsAdded: 2, TracksAdded: 4}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}
	if merged.TotalPlaylists != 2 || merged.TotalTracks != 3 {
		t.Errorf("aggregates = (%d, %d)", merged.TotalPlaylists, merged.TotalTracks)
	}
}

func TestMergeFullIdempotent(t *testing.T) {
	fetched := snapshot(
		[]models.Playlist{
			playlist("p1", "a", track("t1"), track("t2")),
			playlist("p2", "b", track("t3")),
		},
		track("l1"), track("l2"),
	)

	first, stats1 := MergeFull(nil, fetched)
	if stats1.Empty() {
		t.Fatal("first merge should report additions")
	}

	second, stats2 := MergeFull(first, fetched)

	if !stats2.Empty() {
		t.Errorf("second merge of identical data should be a no-op, got %+v", stats2)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("merging the same data twice should yield identical snapshots")
	}
}

func TestMergeFullKeepsUnchangedVerbatim(t *testing.T) {
	old := snapshot([]models.Playlist{
		playlist("p1", "a", track("t1"), track("t2")),
	})
	old.Playlists[0].Folder = "Favorites/Road"
	old.Playlists[0].SyncedAt = "2025-01-01T00:00:00Z"

	// Fetched copy has the same version token but different incidental
	// fields and a diverged track list.
	fetchedPl := playlist("p1", "a", track("t1"))
	fetchedPl.Name = "Renamed"
	fetched := snapshot([]models.Playlist{fetchedPl})

	merged, stats := MergeFull(old, fetched)

	if !stats.Empty() {
		t.Errorf("unchanged token should yield zero stats, got %+v", stats)
	}
	got := merged.Playlist("p1")
	if !reflect.DeepEqual(*got, old.Playlists[0]) {
		t.Errorf("stored playlist should be kept verbatim, got %+v", got)
	}
}

func TestMergeFullUpdatedDeltas(t *testing.T) {
	old := snapshot([]models.Playlist{
		playlist("p1", "a", track("t1"), track("t2"), track("t3")),
	})
	old.Playlists[0].Folder = "Archive"

	fetched := snapshot([]models.Playlist{
		playlist("p1", "a2", track("t2"), track("t3"), track("t4"), track("t5")),
	})

	merged, stats := MergeFull(old, fetched)

	want := MergeStats{PlaylistsUpdated: 1, TracksAdded: 2, TracksRemoved: 1}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}
	got := merged.Playlist("p1")
	if got.SnapshotID != "a2" || len(got.Tracks) != 4 {
		t.Errorf("updated playlist should be replaced, got %+v", got)
	}
	if got.Folder != "Archive" {
		t.Errorf("folder path should carry over, got %q", got.Folder)
	}
}

func TestMergeFullReorderIsNotChurn(t *testing.T) {
	old := snapshot([]models.Playlist{
		playlist("p1", "a", track("t1"), track("t2"), track("t3")),
	})
	// Reorders bump the version token remotely but must not count as
	// track churn.
	fetched := snapshot([]models.Playlist{
		playlist("p1", "a2", track("t3"), track("t1"), track("t2")),
	})

	_, stats := MergeFull(old, fetched)

	want := MergeStats{PlaylistsUpdated: 1}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}
}

func TestMergeFullScenario(t *testing.T) {
	// Old: P1 (token a, [t1 t2]) and P2 (token b, [t3]).
	// Fetch: P1 unchanged and new P3 (token c, [t4 t5]).
	old := snapshot([]models.Playlist{
		playlist("p1", "a", track("t1"), track("t2")),
		playlist("p2", "b", track("t3")),
	})
	fetched := snapshot([]models.Playlist{
		playlist("p1", "a", track("t1"), track("t2")),
		playlist("p3", "c", track("t4"), track("t5")),
	})

	merged, stats := MergeFull(old, fetched)

	want := MergeStats{
		PlaylistsAdded:   1,
		PlaylistsRemoved: 1,
		TracksAdded:      2,
		TracksRemoved:    1,
	}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}
	if merged.Playlist("p2") != nil {
		t.Error("removed playlist should not survive the merge")
	}
	if merged.TotalPlaylists != 2 || merged.TotalTracks != 4 {
		t.Errorf("aggregates = (%d, %d)", merged.TotalPlaylists, merged.TotalTracks)
	}
}

func TestMergeFullLikedSetWise(t *testing.T) {
	old := snapshot(nil, track("l1"), track("l2"), track("l3"))
	fetched := snapshot(nil, track("l2"), track("l3"), track("l4"))

	merged, stats := MergeFull(old, fetched)

	want := MergeStats{TracksAdded: 1, TracksRemoved: 1}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}
	if merged.Liked.TrackCount() != 3 {
		t.Errorf("liked count = %d", merged.Liked.TrackCount())
	}
}

func TestMergeSelective(t *testing.T) {
	old := snapshot([]models.Playlist{
		playlist("p1", "a", track("t1"), track("t2")),
		playlist("p2", "b", track("t3")),
	})
	old.Playlists[1].Folder = "Mixes"

	replacement := playlist("p2", "b2", track("t3"), track("t4"))

	merged, stats := MergeSelective(old, []models.Playlist{replacement})

	// t3 survives the replacement, so it counts as updated.
	want := MergeStats{PlaylistsUpdated: 1, TracksAdded: 1, TracksUpdated: 1}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}

	if got := merged.Playlist("p1"); !reflect.DeepEqual(*got, old.Playlists[0]) {
		t.Error("untouched playlist should be unchanged")
	}
	got := merged.Playlist("p2")
	if got.SnapshotID != "b2" || len(got.Tracks) != 2 {
		t.Errorf("replacement should land in place, got %+v", got)
	}
	if got.Folder != "Mixes" {
		t.Errorf("folder path should carry over, got %q", got.Folder)
	}
	if merged.Playlists[1].ID != "p2" {
		t.Error("playlist order should be preserved")
	}
}

func TestMergeSelectiveIgnoresUnknownIDs(t *testing.T) {
	old := snapshot([]models.Playlist{
		playlist("p1", "a", track("t1")),
	})

	merged, stats := MergeSelective(old, []models.Playlist{
		playlist("ghost", "x", track("t9")),
	})

	if !stats.Empty() {
		t.Errorf("unknown ID should have zero effect, got %+v", stats)
	}
	if len(merged.Playlists) != 1 || merged.Playlist("ghost") != nil {
		t.Error("unknown playlist must not be invented")
	}
}

func TestMergeSelectiveNeedsSnapshot(t *testing.T) {
	merged, stats := MergeSelective(nil, []models.Playlist{playlist("p1", "a")})
	if merged != nil || !stats.Empty() {
		t.Error("selective merge without an old snapshot should be a no-op")
	}
}

package models

import "testing"

func TestTrackKey(t *testing.T) {
	a := Track{ID: "t1", URI: "spotify:track:t1", Popularity: 10}
	b := Track{ID: "t1", URI: "spotify:track:t1", Popularity: 85, Genres: []string{"rock"}}
	c := Track{ID: "", URI: "spotify:local:foo", IsLocal: true}

	if a.Key() != b.Key() {
		t.Error("tracks with same ID and URI should share a key regardless of mutable fields")
	}
	if a.Key() == c.Key() {
		t.Error("local track with distinct URI should not collide")
	}
}

func TestIdentitySet(t *testing.T) {
	tracks := []Track{
		{ID: "t1", URI: "u1"},
		{ID: "t2", URI: "u2"},
		{ID: "t1", URI: "u1"}, // duplicate collapses
	}

	set := IdentitySet(tracks)
	if len(set) != 2 {
		t.Errorf("expected 2 identities, got %d", len(set))
	}
	if _, ok := set[TrackKey{ID: "t2", URI: "u2"}]; !ok {
		t.Error("missing identity for t2")
	}
}

func TestArtistsString(t *testing.T) {
	tc := []struct {
		name    string
		artists []string
		want    string
	}{
		{name: "multiple", artists: []string{"CHVRCHES", "Hayley Williams"}, want: "CHVRCHES, Hayley Williams"},
		{name: "single", artists: []string{"Sylvan Esso"}, want: "Sylvan Esso"},
		{name: "empty", artists: nil, want: "Unknown Artist"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := Track{Artists: tt.artists}.ArtistsString()
			if got != tt.want {
				t.Errorf("ArtistsString() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPlaylistTrackCount(t *testing.T) {
	// The declared total and the real list can diverge; the list wins.
	pl := Playlist{
		TotalTracks: 100,
		Tracks:      []Track{{ID: "t1", URI: "u1"}, {ID: "t2", URI: "u2"}},
	}
	if got := pl.TrackCount(); got != 2 {
		t.Errorf("TrackCount() = %d, want 2", got)
	}
}

func TestSnapshotRecount(t *testing.T) {
	snap := Snapshot{
		TotalPlaylists: 99,
		TotalTracks:    999,
		Playlists: []Playlist{
			{ID: "p1", Tracks: []Track{{ID: "t1", URI: "u1"}}},
			{ID: "p2", Tracks: []Track{{ID: "t2", URI: "u2"}, {ID: "t3", URI: "u3"}}},
		},
	}

	snap.Recount()

	if snap.TotalPlaylists != 2 {
		t.Errorf("TotalPlaylists = %d, want 2", snap.TotalPlaylists)
	}
	if snap.TotalTracks != 3 {
		t.Errorf("TotalTracks = %d, want 3", snap.TotalTracks)
	}
}

func TestSnapshotPlaylistLookup(t *testing.T) {
	snap := Snapshot{Playlists: []Playlist{{ID: "p1", Name: "Focus"}, {ID: "p2", Name: "Gym"}}}

	if pl := snap.Playlist("p2"); pl == nil || pl.Name != "Gym" {
		t.Errorf("Playlist(p2) = %+v, want Gym", pl)
	}
	if pl := snap.Playlist("missing"); pl != nil {
		t.Errorf("Playlist(missing) = %+v, want nil", pl)
	}
}

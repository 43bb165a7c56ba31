package models

// Snapshot is the complete persisted local state: the owning user, the
// ordered playlist list, the liked collection, and aggregate counts.
type Snapshot struct {
	Version        string          `json:"version"`
	UserID         string          `json:"user_id"`
	UserName       string          `json:"user_name,omitempty"`
	Playlists      []Playlist      `json:"playlists"`
	Liked          LikedCollection `json:"liked_songs"`
	TotalPlaylists int             `json:"playlist_count"`
	TotalTracks    int             `json:"total_tracks"`
	ExportedAt     string          `json:"exported_at"`
}

// SnapshotVersion is the on-disk schema version written into new snapshots.
const SnapshotVersion = "1.0"

// Recount recomputes the aggregate counts from the playlist list.
//
// Counts are always derived, never carried over from stale totals.
func (s *Snapshot) Recount() {
	s.TotalPlaylists = len(s.Playlists)
	total := 0
	for i := range s.Playlists {
		total += len(s.Playlists[i].Tracks)
	}
	s.TotalTracks = total
}

// Playlist returns the stored playlist with the given ID, or nil.
func (s *Snapshot) Playlist(id string) *Playlist {
	for i := range s.Playlists {
		if s.Playlists[i].ID == id {
			return &s.Playlists[i]
		}
	}
	return nil
}

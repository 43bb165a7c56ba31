package models

// Playlist represents a playlist with all its tracks as stored in the snapshot.
type Playlist struct {
	ID            string            `json:"playlist_id"`
	URI           string            `json:"uri"`
	Name          string            `json:"name"`
	Description   string            `json:"description,omitempty"`
	OwnerID       string            `json:"owner_id"`
	OwnerName     string            `json:"owner_name"`
	Public        bool              `json:"is_public"`
	Collaborative bool              `json:"is_collaborative"`
	SnapshotID    string            `json:"snapshot_id"`
	TotalTracks   int               `json:"total_tracks"`
	Tracks        []Track           `json:"tracks"`
	Folder        string            `json:"folder_path,omitempty"`
	SyncedAt      string            `json:"last_synced,omitempty"`
	ExternalURL   map[string]string `json:"external_urls,omitempty"`
}

// TrackCount returns the actual number of tracks in the list.
//
// TotalTracks is the total declared by the remote service and may diverge
// from the list (local tracks, filtered items); the list length is truth.
func (p *Playlist) TrackCount() int {
	return len(p.Tracks)
}

// TotalDurationMS sums the duration of every track in the playlist.
func (p *Playlist) TotalDurationMS() int {
	total := 0
	for _, t := range p.Tracks {
		total += t.DurationMS
	}
	return total
}

// LikedCollection holds the user's liked songs.
//
// It has no snapshot ID, so change detection always falls back to
// track-identity-set comparison.
type LikedCollection struct {
	Tracks   []Track `json:"tracks"`
	Total    int     `json:"total_tracks"`
	SyncedAt string  `json:"last_synced,omitempty"`
}

// TrackCount returns the actual number of liked tracks.
func (l *LikedCollection) TrackCount() int {
	return len(l.Tracks)
}

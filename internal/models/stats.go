package models

// Statistics summarizes a snapshot for display.
type Statistics struct {
	PlaylistCount      int     `json:"playlist_count"`
	LikedSongsCount    int     `json:"liked_songs_count"`
	UniqueTracks       int     `json:"unique_tracks"`
	UniqueArtists      int     `json:"unique_artists"`
	UniqueAlbums       int     `json:"unique_albums"`
	GenresFound        int     `json:"genres_found"`
	TotalDurationHours float64 `json:"total_duration_hours"`
	LastBackup         string  `json:"last_backup"`
}

// Statistics computes display statistics across all playlists and liked songs.
//
// Uniqueness is by track identity, artist name, and album name; duration
// sums every stored occurrence, duplicates included.
func (s *Snapshot) Statistics() Statistics {
	tracks := make(map[TrackKey]struct{})
	artists := make(map[string]struct{})
	albums := make(map[string]struct{})
	genres := make(map[string]struct{})
	totalMS := 0

	tally := func(list []Track) {
		for _, t := range list {
			tracks[t.Key()] = struct{}{}
			for _, a := range t.Artists {
				if a != "" {
					artists[a] = struct{}{}
				}
			}
			if t.AlbumName != "" {
				albums[t.AlbumName] = struct{}{}
			}
			for _, g := range t.Genres {
				genres[g] = struct{}{}
			}
			totalMS += t.DurationMS
		}
	}

	for i := range s.Playlists {
		tally(s.Playlists[i].Tracks)
	}
	tally(s.Liked.Tracks)

	return Statistics{
		PlaylistCount:      len(s.Playlists),
		LikedSongsCount:    len(s.Liked.Tracks),
		UniqueTracks:       len(tracks),
		UniqueArtists:      len(artists),
		UniqueAlbums:       len(albums),
		GenresFound:        len(genres),
		TotalDurationHours: float64(totalMS) / (1000 * 60 * 60),
		LastBackup:         s.ExportedAt,
	}
}

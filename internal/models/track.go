package models

import "strings"

// TrackKey is the identity of a track: catalog ID plus URI.
//
// Two tracks with the same key are the same track regardless of mutable
// fields like popularity or genre backfill. Local files have an empty ID
// but a unique URI, so the pair stays distinct.
type TrackKey struct {
	ID  string
	URI string
}

// Track represents a single track as stored in the snapshot.
type Track struct {
	ID          string            `json:"track_id"`
	URI         string            `json:"uri"`
	Name        string            `json:"name"`
	Artists     []string          `json:"artists"`
	ArtistIDs   []string          `json:"artist_ids,omitempty"`
	AlbumName   string            `json:"album_name"`
	AlbumID     string            `json:"album_id"`
	DurationMS  int               `json:"duration_ms"`
	AddedAt     string            `json:"added_at,omitempty"`
	TrackNumber int               `json:"track_number,omitempty"`
	DiscNumber  int               `json:"disc_number,omitempty"`
	Explicit    bool              `json:"explicit"`
	Popularity  int               `json:"popularity,omitempty"`
	Genres      []string          `json:"genres,omitempty"`
	ReleaseDate string            `json:"release_date,omitempty"`
	ExternalURL map[string]string `json:"external_urls,omitempty"`
	IsLocal     bool              `json:"is_local"`
}

// Key returns the track's identity pair.
func (t Track) Key() TrackKey {
	return TrackKey{ID: t.ID, URI: t.URI}
}

// ArtistsString returns the artists as a comma-separated string for display.
func (t Track) ArtistsString() string {
	if len(t.Artists) == 0 {
		return "Unknown Artist"
	}
	return strings.Join(t.Artists, ", ")
}

// IdentitySet builds the set of track identities used by the merge engine.
//
// Comparison happens over this set rather than the ordered list: remote
// reordering without content change must not register as track churn.
func IdentitySet(tracks []Track) map[TrackKey]struct{} {
	set := make(map[TrackKey]struct{}, len(tracks))
	for _, t := range tracks {
		set[t.Key()] = struct{}{}
	}
	return set
}

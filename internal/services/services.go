package services

import (
	"context"

	"github.com/dayeggpi/spotiup/internal/models"
	"golang.org/x/oauth2"
)

// Catalog defines the paginated read operations the backup engine needs
// from a remote music catalog.
//
// Every method may fail with a throttle signal (a [shared.RateLimitError]
// carrying a retry-after hint) or an authorization-expired signal
// ([shared.ErrTokenExpired]); the engine reacts to both, the adapter only
// classifies.
type Catalog interface {
	// CurrentUser retrieves the authenticated user's identity.
	CurrentUser(ctx context.Context) (*UserProfile, error)

	// PlaylistPage retrieves one page of the user's playlists starting at
	// the given item offset. Track lists are not populated.
	PlaylistPage(ctx context.Context, offset int) (*PlaylistPage, error)

	// PlaylistTrackPage retrieves one page of a playlist's tracks.
	PlaylistTrackPage(ctx context.Context, playlistID string, offset int) (*TrackPage, error)

	// LikedTrackPage retrieves one page of the user's liked songs.
	LikedTrackPage(ctx context.Context, offset int) (*TrackPage, error)

	// Playlist retrieves a single playlist's metadata (no tracks).
	Playlist(ctx context.Context, playlistID string) (*models.Playlist, error)

	// ArtistGenres retrieves the genre list for an artist.
	ArtistGenres(ctx context.Context, artistID string) ([]string, error)

	// RefreshAuth forces a token refresh using the stored refresh token.
	RefreshAuth(ctx context.Context) error

	// Name returns the name of the service (e.g., "Spotify")
	Name() string
}

// OAuthProvider is the subset of the catalog adapter the CLI auth flow
// needs: building the authorization URL and exchanging the callback code.
type OAuthProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	OAuthConfig() *oauth2.Config
}

// UserProfile identifies the owning user of the library being backed up.
type UserProfile struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email,omitempty"`
	Country     string `json:"country,omitempty"`
	Product     string `json:"product,omitempty"`
}

// PlaylistPage is one page of a paginated playlist listing.
//
// Next reports whether another page exists; the caller advances its offset
// by Limit to fetch it. Offsets (not opaque tokens) are what the resume
// cursor persists.
type PlaylistPage struct {
	Items  []models.Playlist
	Total  int
	Limit  int
	Offset int
	Next   bool
}

// TrackPage is one page of a paginated track listing (playlist or liked).
type TrackPage struct {
	Items  []models.Track
	Total  int
	Limit  int
	Offset int
	Next   bool
}

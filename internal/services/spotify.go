package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dayeggpi/spotiup/internal/models"
	"github.com/dayeggpi/spotiup/internal/ratelimit"
	"github.com/dayeggpi/spotiup/internal/shared"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
)

// Page sizes match the Spotify API maximums for each listing.
const (
	playlistPageSize = 50
	trackPageSize    = 100
	likedPageSize    = 50
)

// requestTimeout bounds individual remote calls. The engine treats a
// timeout as a generic fetch error at the page boundary.
const requestTimeout = 30 * time.Second

// SpotifyCatalog implements [Catalog] for the Spotify Web API.
//
// Uses [oauth2] for authentication and a [spotify.Client] for requests.
// All wire errors are classified into the shared taxonomy before they
// leave this package.
type SpotifyCatalog struct {
	config *oauth2.Config
	token  *oauth2.Token
	client *spotify.Client
	logger *log.Logger

	// onTokenRefresh is invoked with the new token after a successful
	// refresh so the caller can persist it.
	onTokenRefresh func(*oauth2.Token)
}

// NewSpotifyCatalog creates a Spotify catalog adapter from stored
// credentials. A persisted token, if present, is attached immediately.
func NewSpotifyCatalog(creds *shared.SpotifyConfig, logger *log.Logger) (*SpotifyCatalog, error) {
	if creds == nil || creds.ClientID == "" || creds.ClientSecret == "" {
		return nil, fmt.Errorf("%w: spotify client_id and client_secret", shared.ErrMissingCredentials)
	}

	config := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		RedirectURL:  creds.RedirectURI,
		Scopes: []string{
			spotifyauth.ScopeUserReadPrivate,
			spotifyauth.ScopeUserReadEmail,
			spotifyauth.ScopePlaylistReadPrivate,
			spotifyauth.ScopePlaylistReadCollaborative,
			spotifyauth.ScopeUserLibraryRead,
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyauth.AuthURL,
			TokenURL: spotifyauth.TokenURL,
		},
	}

	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	s := &SpotifyCatalog{config: config, logger: logger}

	if token := creds.Token(); token != nil {
		s.SetToken(token)
	}

	return s, nil
}

func (s *SpotifyCatalog) Name() string {
	return "Spotify"
}

// OAuthConfig exposes the OAuth2 configuration for the callback server.
func (s *SpotifyCatalog) OAuthConfig() *oauth2.Config {
	return s.config
}

// AuthCodeURL returns the authorization URL for the user to visit.
func (s *SpotifyCatalog) AuthCodeURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange trades an authorization code for tokens.
func (s *SpotifyCatalog) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := s.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange auth code: %w", err)
	}
	return token, nil
}

// SetToken attaches a token and rebuilds the API client around it.
func (s *SpotifyCatalog) SetToken(token *oauth2.Token) {
	s.token = token

	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{
		Timeout: requestTimeout,
	})
	s.client = spotify.New(s.config.Client(ctx, token))
}

// OnTokenRefresh registers a callback invoked with each refreshed token.
func (s *SpotifyCatalog) OnTokenRefresh(fn func(*oauth2.Token)) {
	s.onTokenRefresh = fn
}

// RefreshAuth forces a token refresh using the stored refresh token.
//
// Returns [shared.ErrNoRefreshToken] when no refresh token is available
// and [shared.ErrRefreshFailed] when the refresh itself fails.
func (s *SpotifyCatalog) RefreshAuth(ctx context.Context) error {
	if s.token == nil || s.token.RefreshToken == "" {
		return shared.ErrNoRefreshToken
	}

	// Expire the access token so the token source is forced to refresh.
	stale := &oauth2.Token{
		RefreshToken: s.token.RefreshToken,
		Expiry:       time.Now().Add(-time.Minute),
	}

	fresh, err := s.config.TokenSource(ctx, stale).Token()
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}

	if fresh.RefreshToken == "" {
		fresh.RefreshToken = s.token.RefreshToken
	}

	s.SetToken(fresh)
	s.logger.Info("spotify token refreshed", "expiry", fresh.Expiry)

	if s.onTokenRefresh != nil {
		s.onTokenRefresh(fresh)
	}

	return nil
}

// CurrentUser retrieves the authenticated user's profile.
func (s *SpotifyCatalog) CurrentUser(ctx context.Context) (*UserProfile, error) {
	if s.client == nil {
		return nil, shared.ErrNotAuthenticated
	}

	user, err := s.client.CurrentUser(ctx)
	if err != nil {
		return nil, s.classify(err, "fetching user profile")
	}

	return &UserProfile{
		ID:          user.ID,
		DisplayName: user.DisplayName,
		Email:       user.Email,
		Country:     user.Country,
		Product:     user.Product,
	}, nil
}

// PlaylistPage retrieves one page of the current user's playlists.
func (s *SpotifyCatalog) PlaylistPage(ctx context.Context, offset int) (*PlaylistPage, error) {
	if s.client == nil {
		return nil, shared.ErrNotAuthenticated
	}

	page, err := s.client.CurrentUsersPlaylists(ctx, spotify.Limit(playlistPageSize), spotify.Offset(offset))
	if err != nil {
		return nil, s.classify(err, "fetching playlists")
	}

	items := make([]models.Playlist, 0, len(page.Playlists))
	for _, sp := range page.Playlists {
		items = append(items, playlistFromSimple(sp))
	}

	return &PlaylistPage{
		Items:  items,
		Total:  int(page.Total),
		Limit:  playlistPageSize,
		Offset: offset,
		Next:   page.Next != "",
	}, nil
}

// PlaylistTrackPage retrieves one page of a playlist's tracks.
func (s *SpotifyCatalog) PlaylistTrackPage(ctx context.Context, playlistID string, offset int) (*TrackPage, error) {
	if s.client == nil {
		return nil, shared.ErrNotAuthenticated
	}

	page, err := s.client.GetPlaylistItems(ctx, spotify.ID(playlistID), spotify.Limit(trackPageSize), spotify.Offset(offset))
	if err != nil {
		return nil, s.classify(err, fmt.Sprintf("fetching tracks for playlist %s", playlistID))
	}

	items := make([]models.Track, 0, len(page.Items))
	for _, item := range page.Items {
		// Episodes and withdrawn tracks come back without a track object.
		if item.Track.Track == nil {
			continue
		}
		items = append(items, trackFromFull(item.Track.Track, item.AddedAt, item.IsLocal))
	}

	return &TrackPage{
		Items:  items,
		Total:  int(page.Total),
		Limit:  trackPageSize,
		Offset: offset,
		Next:   page.Next != "",
	}, nil
}

// LikedTrackPage retrieves one page of the user's saved tracks.
func (s *SpotifyCatalog) LikedTrackPage(ctx context.Context, offset int) (*TrackPage, error) {
	if s.client == nil {
		return nil, shared.ErrNotAuthenticated
	}

	page, err := s.client.CurrentUsersTracks(ctx, spotify.Limit(likedPageSize), spotify.Offset(offset))
	if err != nil {
		return nil, s.classify(err, "fetching liked songs")
	}

	items := make([]models.Track, 0, len(page.Tracks))
	for _, saved := range page.Tracks {
		items = append(items, trackFromFull(&saved.FullTrack, saved.AddedAt, false))
	}

	return &TrackPage{
		Items:  items,
		Total:  int(page.Total),
		Limit:  likedPageSize,
		Offset: offset,
		Next:   page.Next != "",
	}, nil
}

// Playlist retrieves a single playlist's metadata without its track list.
func (s *SpotifyCatalog) Playlist(ctx context.Context, playlistID string) (*models.Playlist, error) {
	if s.client == nil {
		return nil, shared.ErrNotAuthenticated
	}

	fp, err := s.client.GetPlaylist(ctx, spotify.ID(playlistID))
	if err != nil {
		return nil, s.classify(err, fmt.Sprintf("fetching playlist %s", playlistID))
	}

	pl := playlistFromSimple(fp.SimplePlaylist)
	pl.Description = fp.Description
	pl.TotalTracks = int(fp.Tracks.Total)
	return &pl, nil
}

// ArtistGenres retrieves the genre list for an artist.
func (s *SpotifyCatalog) ArtistGenres(ctx context.Context, artistID string) ([]string, error) {
	if s.client == nil {
		return nil, shared.ErrNotAuthenticated
	}

	artist, err := s.client.GetArtist(ctx, spotify.ID(artistID))
	if err != nil {
		return nil, s.classify(err, fmt.Sprintf("fetching artist %s", artistID))
	}

	return artist.Genres, nil
}

// classify maps a wire error into the shared taxonomy.
//
// 429 (or free-text rate limit wording) becomes a [shared.RateLimitError]
// carrying the retry-after hint, 401 becomes [shared.ErrTokenExpired], and
// everything else is wrapped as [shared.ErrTransientFetch].
func (s *SpotifyCatalog) classify(err error, context string) error {
	var serr spotify.Error
	if errors.As(err, &serr) {
		switch serr.Status {
		case http.StatusTooManyRequests:
			// The client does not expose the Retry-After header, so the
			// hint has to come out of the message text.
			retryAfter := ratelimit.ParseRetryAfter(err.Error())
			s.logger.Warn("spotify rate limit hit", "context", context, "retry_after", retryAfter)
			return &shared.RateLimitError{RetryAfter: retryAfter, Context: context}
		case http.StatusUnauthorized:
			return fmt.Errorf("%w: %s", shared.ErrTokenExpired, context)
		}
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "rate") && strings.Contains(msg, "limit") {
		return &shared.RateLimitError{
			RetryAfter: ratelimit.ParseRetryAfter(err.Error()),
			Context:    context,
		}
	}
	if strings.Contains(msg, "expired") || strings.Contains(msg, "401") {
		return fmt.Errorf("%w: %s", shared.ErrTokenExpired, context)
	}

	return fmt.Errorf("%w: %s: %v", shared.ErrTransientFetch, context, err)
}

// trackFromFull converts a Spotify track into the snapshot representation.
func trackFromFull(ft *spotify.FullTrack, addedAt string, isLocal bool) models.Track {
	artists := make([]string, 0, len(ft.Artists))
	artistIDs := make([]string, 0, len(ft.Artists))
	for _, a := range ft.Artists {
		if a.Name != "" {
			artists = append(artists, a.Name)
		}
		if a.ID != "" {
			artistIDs = append(artistIDs, string(a.ID))
		}
	}
	if len(artists) == 0 {
		artists = []string{"Unknown Artist"}
	}

	name := ft.Name
	if name == "" {
		name = "Unknown Track"
	}
	album := ft.Album.Name
	if album == "" {
		album = "Unknown Album"
	}

	return models.Track{
		ID:          string(ft.ID),
		URI:         string(ft.URI),
		Name:        name,
		Artists:     artists,
		ArtistIDs:   artistIDs,
		AlbumName:   album,
		AlbumID:     string(ft.Album.ID),
		DurationMS:  int(ft.Duration),
		AddedAt:     addedAt,
		TrackNumber: int(ft.TrackNumber),
		DiscNumber:  int(ft.DiscNumber),
		Explicit:    ft.Explicit,
		Popularity:  int(ft.Popularity),
		ReleaseDate: ft.Album.ReleaseDate,
		ExternalURL: ft.ExternalURLs,
		IsLocal:     isLocal,
	}
}

// playlistFromSimple converts playlist metadata; the track list is fetched
// separately, page by page.
func playlistFromSimple(sp spotify.SimplePlaylist) models.Playlist {
	return models.Playlist{
		ID:            string(sp.ID),
		URI:           string(sp.URI),
		Name:          sp.Name,
		OwnerID:       sp.Owner.ID,
		OwnerName:     sp.Owner.DisplayName,
		Public:        sp.IsPublic,
		Collaborative: sp.Collaborative,
		SnapshotID:    sp.SnapshotID,
		TotalTracks:   int(sp.Tracks.Total),
		ExternalURL:   sp.ExternalURLs,
	}
}

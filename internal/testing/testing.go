// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"

	"github.com/dayeggpi/spotiup/internal/models"
	"github.com/dayeggpi/spotiup/internal/services"
)

// MockCatalog is a test double for [services.Catalog] backed by in-memory
// playlists and liked tracks.
//
// Every paginated method records the offsets it was asked for, so resume
// tests can assert that an interrupted listing restarts at the exact page
// it stopped at. The Err* fields inject failures; ErrAfterTrackPages makes
// the track listing fail only once that many pages were served.
type MockCatalog struct {
	User      *services.UserProfile
	Playlists []models.Playlist
	Liked     []models.Track
	Genres    map[string][]string

	PageLimit int // defaults to 50

	ErrCurrentUser     error
	ErrPlaylistPage    error
	ErrTrackPage       error
	ErrLikedPage       error
	ErrPlaylist        error
	ErrArtistGenres    error
	ErrRefreshAuth     error
	ErrAfterTrackPages int  // 0 means ErrTrackPage applies immediately
	ClearErrOnRefresh  bool // a successful RefreshAuth resets the Err* fields

	PlaylistOffsets []int
	TrackOffsets    map[string][]int
	LikedOffsets    []int
	RefreshCalls    int

	trackPagesServed int
}

// NewMockCatalog creates a MockCatalog over the given library.
func NewMockCatalog(playlists []models.Playlist, liked []models.Track) *MockCatalog {
	return &MockCatalog{
		User:         &services.UserProfile{ID: "user1", DisplayName: "Test User"},
		Playlists:    playlists,
		Liked:        liked,
		PageLimit:    50,
		TrackOffsets: make(map[string][]int),
	}
}

func (m *MockCatalog) CurrentUser(ctx context.Context) (*services.UserProfile, error) {
	if m.ErrCurrentUser != nil {
		return nil, m.ErrCurrentUser
	}
	return m.User, nil
}

func (m *MockCatalog) PlaylistPage(ctx context.Context, offset int) (*services.PlaylistPage, error) {
	m.PlaylistOffsets = append(m.PlaylistOffsets, offset)
	if m.ErrPlaylistPage != nil {
		return nil, m.ErrPlaylistPage
	}

	items, next := pageOf(m.Playlists, offset, m.PageLimit)
	metas := make([]models.Playlist, len(items))
	for i, pl := range items {
		metas[i] = pl
		metas[i].Tracks = nil
	}
	return &services.PlaylistPage{
		Items:  metas,
		Total:  len(m.Playlists),
		Limit:  m.PageLimit,
		Offset: offset,
		Next:   next,
	}, nil
}

func (m *MockCatalog) PlaylistTrackPage(ctx context.Context, playlistID string, offset int) (*services.TrackPage, error) {
	m.TrackOffsets[playlistID] = append(m.TrackOffsets[playlistID], offset)
	if m.ErrTrackPage != nil {
		if m.trackPagesServed >= m.ErrAfterTrackPages {
			return nil, m.ErrTrackPage
		}
	}
	m.trackPagesServed++

	pl := m.playlist(playlistID)
	if pl == nil {
		return nil, fmt.Errorf("mock: no playlist %s", playlistID)
	}
	items, next := pageOf(pl.Tracks, offset, m.PageLimit)
	return &services.TrackPage{
		Items:  items,
		Total:  len(pl.Tracks),
		Limit:  m.PageLimit,
		Offset: offset,
		Next:   next,
	}, nil
}

func (m *MockCatalog) LikedTrackPage(ctx context.Context, offset int) (*services.TrackPage, error) {
	m.LikedOffsets = append(m.LikedOffsets, offset)
	if m.ErrLikedPage != nil {
		return nil, m.ErrLikedPage
	}

	items, next := pageOf(m.Liked, offset, m.PageLimit)
	return &services.TrackPage{
		Items:  items,
		Total:  len(m.Liked),
		Limit:  m.PageLimit,
		Offset: offset,
		Next:   next,
	}, nil
}

func (m *MockCatalog) Playlist(ctx context.Context, playlistID string) (*models.Playlist, error) {
	if m.ErrPlaylist != nil {
		return nil, m.ErrPlaylist
	}
	pl := m.playlist(playlistID)
	if pl == nil {
		return nil, fmt.Errorf("mock: no playlist %s", playlistID)
	}
	meta := *pl
	meta.Tracks = nil
	return &meta, nil
}

func (m *MockCatalog) ArtistGenres(ctx context.Context, artistID string) ([]string, error) {
	if m.ErrArtistGenres != nil {
		return nil, m.ErrArtistGenres
	}
	return m.Genres[artistID], nil
}

func (m *MockCatalog) RefreshAuth(ctx context.Context) error {
	m.RefreshCalls++
	if m.ErrRefreshAuth != nil {
		return m.ErrRefreshAuth
	}
	if m.ClearErrOnRefresh {
		m.ErrCurrentUser = nil
		m.ErrPlaylistPage = nil
		m.ErrTrackPage = nil
		m.ErrLikedPage = nil
		m.ErrPlaylist = nil
	}
	return nil
}

func (m *MockCatalog) Name() string { return "mock" }

func (m *MockCatalog) playlist(id string) *models.Playlist {
	for i := range m.Playlists {
		if m.Playlists[i].ID == id {
			return &m.Playlists[i]
		}
	}
	return nil
}

func pageOf[T any](items []T, offset, limit int) ([]T, bool) {
	if offset >= len(items) {
		return nil, false
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end], end < len(items)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

package store

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/dayeggpi/spotiup/internal/models"
	"github.com/dayeggpi/spotiup/internal/shared"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(&shared.StorageConfig{
		Dir:            t.TempDir(),
		HistoryLimit:   2,
		UpdateLogLimit: 3,
	}, shared.NewLogger(io.Discard))
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	return s
}

func TestNewStore(t *testing.T) {
	t.Run("missing dir is invalid", func(t *testing.T) {
		_, err := NewStore(&shared.StorageConfig{}, nil)
		if !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("creates the storage dir", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "storage")
		_, err := NewStore(&shared.StorageConfig{Dir: dir}, shared.NewLogger(io.Discard))
		if err != nil {
			t.Fatalf("NewStore() error = %v", err)
		}
		if _, err := os.Stat(dir); err != nil {
			t.Errorf("storage dir should exist: %v", err)
		}
	})
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := newTestStore(t)

	if got, err := s.LoadSnapshot(); err != nil || got != nil {
		t.Fatalf("empty store should load (nil, nil), got (%v, %v)", got, err)
	}

	saved := snapshot(
		[]models.Playlist{playlist("p1", "a", track("t1"), track("t2"))},
		track("l1"),
	)
	if err := s.SaveSnapshot(saved); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}

	got, err := s.LoadSnapshot()
	if err != nil {
		t.Fatalf("LoadSnapshot() error = %v", err)
	}
	if got.UserID != "user1" || got.TotalPlaylists != 1 || got.TotalTracks != 2 {
		t.Errorf("loaded snapshot = %+v", got)
	}
	if got.Liked.TrackCount() != 1 {
		t.Errorf("liked count = %d", got.Liked.TrackCount())
	}

	// The liked convenience copy is written alongside the snapshot.
	if _, err := os.Stat(filepath.Join(s.Dir(), likedFile)); err != nil {
		t.Errorf("liked songs file should exist: %v", err)
	}
}

func TestLoadSnapshotCorrupt(t *testing.T) {
	s := newTestStore(t)

	path := filepath.Join(s.Dir(), snapshotFile)
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := s.LoadSnapshot()
	if !errors.Is(err, shared.ErrCorruptState) {
		t.Errorf("expected ErrCorruptState, got %v", err)
	}
}

func TestPartialLifecycle(t *testing.T) {
	s := newTestStore(t)

	if got, err := s.LoadPartial(); err != nil || got != nil {
		t.Fatalf("no partial should load (nil, nil), got (%v, %v)", got, err)
	}

	partial := snapshot([]models.Playlist{playlist("p1", "a", track("t1"))})
	if err := s.SavePartial(partial); err != nil {
		t.Fatalf("SavePartial() error = %v", err)
	}

	got, err := s.LoadPartial()
	if err != nil || got == nil {
		t.Fatalf("LoadPartial() = (%v, %v)", got, err)
	}

	// The main snapshot stays untouched by partial writes.
	if main, err := s.LoadSnapshot(); err != nil || main != nil {
		t.Errorf("main snapshot should remain absent, got (%v, %v)", main, err)
	}

	if err := s.ClearPartial(); err != nil {
		t.Fatalf("ClearPartial() error = %v", err)
	}
	if got, _ := s.LoadPartial(); got != nil {
		t.Error("partial should be gone after Clear")
	}
	if err := s.ClearPartial(); err != nil {
		t.Errorf("clearing an absent partial should not fail: %v", err)
	}
}

func TestHistoryRotation(t *testing.T) {
	s := newTestStore(t)

	for i := 0; i < 4; i++ {
		snap := snapshot([]models.Playlist{playlist("p1", "a", track("t1"))})
		if err := s.SaveSnapshot(snap); err != nil {
			t.Fatalf("SaveSnapshot() #%d error = %v", i, err)
		}
	}

	// First save has nothing to rotate; the next three rotate, pruned to
	// the configured limit of 2.
	entries, err := s.History()
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("history length = %d, want 2", len(entries))
	}
	if entries[0].Name <= entries[1].Name {
		t.Error("history should be listed newest first")
	}
}

func TestFolders(t *testing.T) {
	s := newTestStore(t)

	if got := s.Folders(); len(got) != 0 {
		t.Errorf("fresh store should have no folders, got %v", got)
	}

	if err := s.SetFolder("p1", "Favorites/Road"); err != nil {
		t.Fatalf("SetFolder() error = %v", err)
	}
	if err := s.SetFolder("p2", "Archive"); err != nil {
		t.Fatalf("SetFolder() error = %v", err)
	}

	got := s.Folders()
	if got["p1"] != "Favorites/Road" || got["p2"] != "Archive" {
		t.Errorf("folders = %v", got)
	}

	// Empty path removes the assignment.
	if err := s.SetFolder("p2", ""); err != nil {
		t.Fatalf("SetFolder() error = %v", err)
	}
	if got := s.Folders(); len(got) != 1 {
		t.Errorf("folders after removal = %v", got)
	}

	if err := s.SetFolder("", "x"); !errors.Is(err, shared.ErrMissingArgument) {
		t.Errorf("empty playlist id should be rejected, got %v", err)
	}
}

func TestFoldersAppliedOnSaveAndLoad(t *testing.T) {
	s := newTestStore(t)

	if err := s.SetFolder("p1", "Favorites"); err != nil {
		t.Fatal(err)
	}

	snap := snapshot([]models.Playlist{
		playlist("p1", "a", track("t1")),
		playlist("p2", "b", track("t2")),
	})
	if err := s.SaveSnapshot(snap); err != nil {
		t.Fatal(err)
	}

	got, err := s.LoadSnapshot()
	if err != nil {
		t.Fatal(err)
	}
	if got.Playlist("p1").Folder != "Favorites" {
		t.Error("folder path should be applied to the snapshot")
	}
	if got.Playlist("p2").Folder != "" {
		t.Error("unassigned playlist should have no folder")
	}
}

func TestUpdateLogTrimming(t *testing.T) {
	s := newTestStore(t)

	for i := 0; i < 5; i++ {
		entry := UpdateLogEntry{
			ID:        shared.GenerateID(),
			Operation: "full",
			Stats:     MergeStats{PlaylistsAdded: i},
		}
		if err := s.AppendUpdateLog(entry); err != nil {
			t.Fatalf("AppendUpdateLog() #%d error = %v", i, err)
		}
	}

	entries, err := s.UpdateLog()
	if err != nil {
		t.Fatalf("UpdateLog() error = %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("log length = %d, want 3", len(entries))
	}
	// Newest entries survive the trim.
	if entries[len(entries)-1].Stats.PlaylistsAdded != 4 {
		t.Errorf("last entry = %+v", entries[len(entries)-1])
	}
	if entries[0].Stats.PlaylistsAdded != 2 {
		t.Errorf("first entry = %+v", entries[0])
	}
}

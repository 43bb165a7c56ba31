package backup

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/dayeggpi/spotiup/internal/shared"
)

func newTestCursorStore(t *testing.T) *CursorStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".backup_progress.json")
	return NewCursorStore(path, shared.NewLogger(io.Discard))
}

func TestHasPendingWork(t *testing.T) {
	planned := []PlannedPlaylist{{ID: "p1"}, {ID: "p2"}}

	tc := []struct {
		name   string
		cursor *Cursor
		want   bool
	}{
		{
			name:   "nil cursor",
			cursor: nil,
			want:   false,
		},
		{
			name:   "not interrupted",
			cursor: &Cursor{Planned: planned, Interrupted: false},
			want:   false,
		},
		{
			name:   "interrupted with playlists left",
			cursor: &Cursor{Planned: planned, CompletedIDs: []string{"p1"}, Interrupted: true},
			want:   true,
		},
		{
			name:   "interrupted with only liked left",
			cursor: &Cursor{Planned: planned, CompletedIDs: []string{"p1", "p2"}, Interrupted: true},
			want:   true,
		},
		{
			name: "interrupted but everything done",
			cursor: &Cursor{
				Planned:      planned,
				CompletedIDs: []string{"p1", "p2"},
				LikedDone:    true,
				Interrupted:  true,
			},
			want: false,
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cursor.HasPendingWork(); got != tt.want {
				t.Errorf("HasPendingWork() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCursorMarkCompleted(t *testing.T) {
	c := &Cursor{
		Planned:       []PlannedPlaylist{{ID: "p1"}, {ID: "p2"}},
		CurrentID:     "p1",
		CurrentOffset: 200,
	}

	c.MarkCompleted("p1")

	if !c.IsCompleted("p1") || c.IsCompleted("p2") {
		t.Errorf("completed state wrong: %v", c.CompletedIDs)
	}
	if c.CurrentID != "" || c.CurrentOffset != 0 {
		t.Error("in-flight position should reset on completion")
	}

	// Marking twice must not duplicate the entry.
	c.MarkCompleted("p1")
	if len(c.CompletedIDs) != 1 {
		t.Errorf("completed IDs = %v", c.CompletedIDs)
	}
}

func TestCursorStoreRoundTrip(t *testing.T) {
	s := newTestCursorStore(t)

	if got, err := s.Load(); err != nil || got != nil {
		t.Fatalf("empty store should load (nil, nil), got (%v, %v)", got, err)
	}

	saved := &Cursor{
		RunID:         shared.GenerateID(),
		StartedAt:     "2025-06-01T12:00:00Z",
		Planned:       []PlannedPlaylist{{ID: "p1", Name: "First"}},
		CurrentID:     "p1",
		CurrentOffset: 200,
		Interrupted:   true,
	}
	if err := s.Save(saved); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if saved.UpdatedAt == "" {
		t.Error("Save should stamp UpdatedAt")
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.RunID != saved.RunID || got.CurrentOffset != 200 || !got.Interrupted {
		t.Errorf("loaded cursor = %+v", got)
	}
	if len(got.Planned) != 1 || got.Planned[0].Name != "First" {
		t.Errorf("planned = %v", got.Planned)
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if got, _ := s.Load(); got != nil {
		t.Error("cursor should be gone after Clear")
	}
	if err := s.Clear(); err != nil {
		t.Errorf("clearing an absent cursor should not fail: %v", err)
	}
}

func TestCursorStoreCorrupt(t *testing.T) {
	s := newTestCursorStore(t)

	if err := os.WriteFile(s.path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	// A corrupt cursor must never block a fresh run.
	got, err := s.Load()
	if err != nil || got != nil {
		t.Errorf("corrupt cursor should load (nil, nil), got (%v, %v)", got, err)
	}
}

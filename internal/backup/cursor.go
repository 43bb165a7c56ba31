package backup

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dayeggpi/spotiup/internal/shared"
)

// PlannedPlaylist is one entry of the enumeration plan persisted in the cursor.
type PlannedPlaylist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Cursor is the persisted resume state of a full backup run.
//
// It records the full plan, which playlists finished, and the exact page
// offset inside the playlist (or the liked collection) that was in flight
// when the run stopped. Offsets always point at the next unfetched page.
type Cursor struct {
	RunID            string            `json:"run_id"`
	StartedAt        string            `json:"started_at"`
	UpdatedAt        string            `json:"updated_at"`
	Planned          []PlannedPlaylist `json:"planned"`
	CompletedIDs     []string          `json:"completed_ids"`
	CurrentID        string            `json:"current_id,omitempty"`
	CurrentOffset    int               `json:"current_offset"`
	LikedOffset      int               `json:"liked_offset"`
	LikedDone        bool              `json:"liked_done"`
	Interrupted      bool              `json:"interrupted"`
	RateLimitedUntil *time.Time        `json:"rate_limited_until,omitempty"`
}

// HasPendingWork reports whether the cursor describes an interrupted run
// with anything left to fetch.
func (c *Cursor) HasPendingWork() bool {
	if c == nil || !c.Interrupted {
		return false
	}
	return len(c.CompletedIDs) < len(c.Planned) || !c.LikedDone
}

// IsCompleted reports whether the playlist already finished in this run.
func (c *Cursor) IsCompleted(id string) bool {
	for _, done := range c.CompletedIDs {
		if done == id {
			return true
		}
	}
	return false
}

// MarkCompleted records a finished playlist and resets the in-flight position.
func (c *Cursor) MarkCompleted(id string) {
	if !c.IsCompleted(id) {
		c.CompletedIDs = append(c.CompletedIDs, id)
	}
	c.CurrentID = ""
	c.CurrentOffset = 0
}

// CursorStore persists the resume cursor as a JSON file.
type CursorStore struct {
	path   string
	logger *log.Logger
}

// NewCursorStore creates a cursor store writing to the given path.
func NewCursorStore(path string, logger *log.Logger) *CursorStore {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &CursorStore{path: path, logger: logger}
}

// Save writes the cursor atomically, stamping UpdatedAt.
func (s *CursorStore) Save(c *Cursor) error {
	if c == nil {
		return fmt.Errorf("%w: nil cursor", shared.ErrInvalidInput)
	}
	c.UpdatedAt = time.Now().UTC().Format(time.RFC3339)

	data, err := shared.MarshalJSON(c, true)
	if err != nil {
		return err
	}
	if err := shared.WriteFileAtomic(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to save cursor: %w", err)
	}
	return nil
}

// Load reads the cursor.
//
// A missing file means no cursor. An unreadable one is treated the same
// after a warning; a corrupt cursor must never block a fresh run.
func (s *CursorStore) Load() (*Cursor, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		s.logger.Warn("ignoring unreadable cursor file", "path", s.path, "error", err)
		return nil, nil
	}

	var c Cursor
	if err := json.Unmarshal(data, &c); err != nil {
		s.logger.Warn("ignoring corrupt cursor file", "path", s.path, "error", err)
		return nil, nil
	}
	return &c, nil
}

// Clear removes the cursor file. Missing is not an error.
func (s *CursorStore) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear cursor: %w", err)
	}
	return nil
}

package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dayeggpi/spotiup/internal/models"
	"github.com/dayeggpi/spotiup/internal/shared"
)

const (
	snapshotFile  = "spotify_backup.json"
	likedFile     = "liked_songs.json"
	partialFile   = ".partial_backup.json"
	cursorFile    = ".backup_progress.json"
	foldersFile   = "folders.json"
	updateLogFile = "update_log.json"
	historyDir    = "history"
)

const (
	defaultHistoryLimit   = 10
	defaultUpdateLogLimit = 100
)

// Store persists snapshots and their surrounding bookkeeping under a single
// storage directory: the main snapshot, a liked-songs convenience copy, the
// partial snapshot left behind by interrupted runs, local folder metadata,
// rotated history copies, and the update log.
type Store struct {
	dir            string
	historyLimit   int
	updateLogLimit int
	logger         *log.Logger
}

// UpdateLogEntry records one reconciliation in the update log.
type UpdateLogEntry struct {
	ID        string     `json:"id"`
	Timestamp string     `json:"timestamp"`
	Operation string     `json:"operation"`
	Stats     MergeStats `json:"stats"`
}

// HistoryEntry describes one rotated snapshot copy.
type HistoryEntry struct {
	Name    string
	Path    string
	SavedAt time.Time
	Size    int64
}

// NewStore creates the storage directory if needed and returns a Store over it.
func NewStore(cfg *shared.StorageConfig, logger *log.Logger) (*Store, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("%w: storage dir not set", shared.ErrInvalidConfig)
	}
	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir: %w", err)
	}

	historyLimit := cfg.HistoryLimit
	if historyLimit <= 0 {
		historyLimit = defaultHistoryLimit
	}
	updateLogLimit := cfg.UpdateLogLimit
	if updateLogLimit <= 0 {
		updateLogLimit = defaultUpdateLogLimit
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &Store{
		dir:            cfg.Dir,
		historyLimit:   historyLimit,
		updateLogLimit: updateLogLimit,
		logger:         logger,
	}, nil
}

// Dir returns the storage directory.
func (s *Store) Dir() string {
	return s.dir
}

// CursorPath returns the path of the resume cursor file.
//
// The cursor itself is owned by the backup engine; the store only anchors
// its location to the storage directory.
func (s *Store) CursorPath() string {
	return filepath.Join(s.dir, cursorFile)
}

// SaveSnapshot persists the snapshot as the main backup file.
//
// Local folder paths are applied first, the previous snapshot is rotated
// into history, and the liked-songs convenience copy is written alongside.
// All writes are atomic; a crash leaves either the old file or the new one.
func (s *Store) SaveSnapshot(snapshot *models.Snapshot) error {
	if snapshot == nil {
		return fmt.Errorf("%w: nil snapshot", shared.ErrInvalidInput)
	}

	s.applyFolders(snapshot)
	snapshot.Recount()

	if err := s.rotateHistory(); err != nil {
		return err
	}

	if err := s.writeJSON(filepath.Join(s.dir, snapshotFile), snapshot); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	if err := s.writeJSON(filepath.Join(s.dir, likedFile), &snapshot.Liked); err != nil {
		return fmt.Errorf("failed to save liked songs: %w", err)
	}

	s.logger.Info("snapshot saved",
		"playlists", snapshot.TotalPlaylists,
		"tracks", snapshot.TotalTracks,
		"liked", snapshot.Liked.TrackCount())
	return nil
}

// LoadSnapshot reads the main snapshot.
//
// A missing file returns (nil, nil); there simply is no snapshot yet. An
// unreadable or unparseable file wraps [shared.ErrCorruptState].
func (s *Store) LoadSnapshot() (*models.Snapshot, error) {
	snapshot, err := s.readSnapshot(filepath.Join(s.dir, snapshotFile))
	if err != nil || snapshot == nil {
		return snapshot, err
	}
	s.applyFolders(snapshot)
	return snapshot, nil
}

// SavePartial persists the partial snapshot left behind by an interrupted run.
func (s *Store) SavePartial(snapshot *models.Snapshot) error {
	if snapshot == nil {
		return fmt.Errorf("%w: nil snapshot", shared.ErrInvalidInput)
	}
	snapshot.Recount()
	if err := s.writeJSON(filepath.Join(s.dir, partialFile), snapshot); err != nil {
		return fmt.Errorf("failed to save partial snapshot: %w", err)
	}
	return nil
}

// LoadPartial reads the partial snapshot, (nil, nil) when absent.
func (s *Store) LoadPartial() (*models.Snapshot, error) {
	return s.readSnapshot(filepath.Join(s.dir, partialFile))
}

// ClearPartial removes the partial snapshot. Missing is not an error.
func (s *Store) ClearPartial() error {
	err := os.Remove(filepath.Join(s.dir, partialFile))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear partial snapshot: %w", err)
	}
	return nil
}

// Folders returns the local playlist-to-folder map.
//
// Folder paths exist only locally and are never sent upstream. A missing or
// unreadable folders file yields an empty map; folder metadata is cosmetic
// and never blocks a backup.
func (s *Store) Folders() map[string]string {
	data, err := os.ReadFile(filepath.Join(s.dir, foldersFile))
	if err != nil {
		return map[string]string{}
	}

	var folders map[string]string
	if err := json.Unmarshal(data, &folders); err != nil {
		s.logger.Warn("ignoring unreadable folders file", "error", err)
		return map[string]string{}
	}
	return folders
}

// SetFolder assigns a folder path to a playlist ID, or removes the
// assignment when path is empty.
func (s *Store) SetFolder(playlistID, path string) error {
	if playlistID == "" {
		return fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}

	folders := s.Folders()
	if path == "" {
		delete(folders, playlistID)
	} else {
		folders[playlistID] = path
	}

	if err := s.writeJSON(filepath.Join(s.dir, foldersFile), folders); err != nil {
		return fmt.Errorf("failed to save folders: %w", err)
	}
	return nil
}

// AppendUpdateLog appends one entry to the update log, trimming it to the
// configured limit (newest entries kept).
func (s *Store) AppendUpdateLog(entry UpdateLogEntry) error {
	entries, err := s.UpdateLog()
	if err != nil {
		s.logger.Warn("resetting unreadable update log", "error", err)
		entries = nil
	}

	entries = append(entries, entry)
	if len(entries) > s.updateLogLimit {
		entries = entries[len(entries)-s.updateLogLimit:]
	}

	if err := s.writeJSON(filepath.Join(s.dir, updateLogFile), entries); err != nil {
		return fmt.Errorf("failed to save update log: %w", err)
	}
	return nil
}

// UpdateLog returns the update log entries, oldest first.
func (s *Store) UpdateLog() ([]UpdateLogEntry, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, updateLogFile))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read update log: %w", err)
	}

	var entries []UpdateLogEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: update log: %v", shared.ErrCorruptState, err)
	}
	return entries, nil
}

// History lists the rotated snapshot copies, newest first.
func (s *Store) History() ([]HistoryEntry, error) {
	dir := filepath.Join(s.dir, historyDir)
	items, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	var entries []HistoryEntry
	for _, item := range items {
		if item.IsDir() {
			continue
		}
		info, err := item.Info()
		if err != nil {
			continue
		}
		entries = append(entries, HistoryEntry{
			Name:    item.Name(),
			Path:    filepath.Join(dir, item.Name()),
			SavedAt: info.ModTime(),
			Size:    info.Size(),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name > entries[j].Name
	})
	return entries, nil
}

// rotateHistory copies the current snapshot file into history/ before it is
// overwritten, then prunes history to the configured limit.
func (s *Store) rotateHistory() error {
	current := filepath.Join(s.dir, snapshotFile)
	data, err := os.ReadFile(current)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read snapshot for rotation: %w", err)
	}

	dir := filepath.Join(s.dir, historyDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create history dir: %w", err)
	}

	name := fmt.Sprintf("spotify_backup_%s.json", time.Now().UTC().Format("20060102T150405.000000000"))
	if err := shared.WriteFileAtomic(filepath.Join(dir, name), data, 0644); err != nil {
		return fmt.Errorf("failed to rotate snapshot: %w", err)
	}

	entries, err := s.History()
	if err != nil {
		return err
	}
	for _, entry := range entries[min(s.historyLimit, len(entries)):] {
		if err := os.Remove(entry.Path); err != nil {
			s.logger.Warn("failed to prune history entry", "name", entry.Name, "error", err)
		}
	}
	return nil
}

// applyFolders stamps locally stored folder paths onto the snapshot's
// playlists. Fetched data never carries folder paths.
func (s *Store) applyFolders(snapshot *models.Snapshot) {
	folders := s.Folders()
	if len(folders) == 0 {
		return
	}
	for i := range snapshot.Playlists {
		if path, ok := folders[snapshot.Playlists[i].ID]; ok {
			snapshot.Playlists[i].Folder = path
		}
	}
}

func (s *Store) readSnapshot(path string) (*models.Snapshot, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrCorruptState, err)
	}

	var snapshot models.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrCorruptState, filepath.Base(path), err)
	}
	return &snapshot, nil
}

func (s *Store) writeJSON(path string, v any) error {
	data, err := shared.MarshalJSON(v, true)
	if err != nil {
		return err
	}
	return shared.WriteFileAtomic(path, data, 0644)
}

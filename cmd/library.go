package main

import (
	"context"
	"fmt"

	"github.com/dayeggpi/spotiup/internal/models"
	"github.com/dayeggpi/spotiup/internal/shared"
	"github.com/urfave/cli/v3"
)

// loadSnapshot reads the local snapshot, failing with a backup hint when
// none has been saved yet.
func (r *Runner) loadSnapshot() (*models.Snapshot, error) {
	st, err := r.openStore()
	if err != nil {
		return nil, err
	}

	snapshot, err := st.LoadSnapshot()
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		return nil, fmt.Errorf("%w: run 'spotiup backup run' first", shared.ErrMissingSnapshot)
	}

	return snapshot, nil
}

// LibraryPlaylists lists the playlists stored in the local snapshot.
func (r *Runner) LibraryPlaylists(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	snapshot, err := r.loadSnapshot()
	if err != nil {
		return err
	}

	if useJSON {
		return r.writeJSON(snapshot.Playlists, pretty)
	}

	r.writePlain("Library of %s: %d playlists, %d liked songs\n\n",
		snapshot.UserName, len(snapshot.Playlists), snapshot.Liked.TrackCount())

	for i, p := range snapshot.Playlists {
		r.writePlain("%d. %s\n", i+1, p.Name)
		r.writePlain("   ID: %s\n", p.ID)
		r.writePlain("   Tracks: %d\n", p.TrackCount())
		r.writePlain("   Visibility: %s\n", shared.VisibilityString(p.Public))
		if p.Folder != "" {
			r.writePlain("   Folder: %s\n", p.Folder)
		}
		if p.SyncedAt != "" {
			r.writePlain("   Synced: %s\n", p.SyncedAt)
		}
		r.writePlain("\n")
	}

	return nil
}

// LibraryStats prints aggregate statistics over the local snapshot.
func (r *Runner) LibraryStats(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")

	snapshot, err := r.loadSnapshot()
	if err != nil {
		return err
	}

	stats := snapshot.Statistics()
	if useJSON {
		return r.writeJSON(stats, true)
	}

	r.writePlain("Library statistics (%s)\n\n", snapshot.UserName)
	r.writePlain("  Playlists: %d\n", stats.PlaylistCount)
	r.writePlain("  Liked songs: %d\n", stats.LikedSongsCount)
	r.writePlain("  Unique tracks: %d\n", stats.UniqueTracks)
	r.writePlain("  Unique artists: %d\n", stats.UniqueArtists)
	r.writePlain("  Unique albums: %d\n", stats.UniqueAlbums)
	if stats.GenresFound > 0 {
		r.writePlain("  Genres found: %d\n", stats.GenresFound)
	}
	r.writePlain("  Total duration: %.1f hours\n", stats.TotalDurationHours)
	if stats.LastBackup != "" {
		r.writePlain("  Last backup: %s\n", stats.LastBackup)
	}

	return nil
}

// LibraryHistory lists the rotated snapshot backups, newest first.
func (r *Runner) LibraryHistory(ctx context.Context, cmd *cli.Command) error {
	st, err := r.openStore()
	if err != nil {
		return err
	}

	entries, err := st.History()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		r.writePlain("No snapshot history yet.\n")
		return nil
	}

	r.writePlain("Snapshot history (%d entries, newest first):\n\n", len(entries))
	for i, e := range entries {
		r.writePlain("%d. %s (%d bytes)\n", i+1, e.Name, e.Size)
	}

	return nil
}

// LibraryLog shows the recorded merge operations, oldest first.
func (r *Runner) LibraryLog(ctx context.Context, cmd *cli.Command) error {
	st, err := r.openStore()
	if err != nil {
		return err
	}

	entries, err := st.UpdateLog()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		r.writePlain("No updates recorded yet.\n")
		return nil
	}

	r.writePlain("Update log (%d entries):\n\n", len(entries))
	for _, e := range entries {
		r.writePlain("%s  %s\n", e.Timestamp, e.Operation)
		r.printMergeStats(e.Stats)
	}

	return nil
}

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/dayeggpi/spotiup/internal/backup"
	"github.com/dayeggpi/spotiup/internal/store"
	"github.com/urfave/cli/v3"
)

// BackupRun fetches the full library and merges it into the local snapshot.
func (r *Runner) BackupRun(ctx context.Context, cmd *cli.Command) error {
	resume := cmd.Bool("resume")
	useJSON := cmd.Bool("json")

	engine, cleanup, err := r.openEngine()
	if err != nil {
		return err
	}
	defer cleanup()

	opts := r.backupOptions(cmd)

	if resume && !engine.CanResume() {
		r.writePlain("Nothing to resume; starting a fresh backup.\n")
	}

	result, runErr := r.runWithProgress(func(progress chan<- backup.ProgressUpdate) (*backup.Result, error) {
		return engine.FullBackup(ctx, progress, opts, resume)
	})

	switch {
	case result != nil && result.Outcome == backup.Completed:
		merged, stats, err := engine.MergeFull(result.Snapshot)
		if err != nil {
			return fmt.Errorf("backup fetched but merge failed: %w", err)
		}

		if useJSON {
			return r.writeJSON(stats, true)
		}

		r.writePlainln("✓ Backup complete")
		r.writePlain("  Playlists: %d  Liked songs: %d\n", len(merged.Playlists), merged.Liked.TrackCount())
		r.printMergeStats(stats)
		return nil

	case result != nil && result.Outcome == backup.Interrupted:
		return r.reportInterruption(result, "spotiup backup run --resume")

	default:
		return runErr
	}
}

// BackupStatus shows the pending resume state left by an interrupted run.
func (r *Runner) BackupStatus(ctx context.Context, cmd *cli.Command) error {
	engine, cleanup, err := r.openEngine()
	if err != nil {
		return err
	}
	defer cleanup()

	info := engine.ResumeInfo()
	if info == nil {
		r.writePlain("No interrupted backup; nothing to resume.\n")
		return nil
	}

	r.writePlain("Interrupted backup found (run %s)\n", info.RunID)
	r.writePlain("  Playlists: %d/%d complete\n", info.Completed, info.Planned)
	if info.LikedDone {
		r.writePlain("  Liked songs: done\n")
	} else {
		r.writePlain("  Liked songs: pending\n")
	}
	if info.RateLimitedUntil != nil {
		r.writePlain("  Rate limited until: %s\n", info.RateLimitedUntil.Format(time.RFC3339))
	}
	if info.UpdatedAt != "" {
		r.writePlain("  Last progress: %s\n", info.UpdatedAt)
	}
	r.writePlain("\nRun 'spotiup backup run --resume' to continue.\n")

	return nil
}

// backupOptions combines command flags with the configured sync defaults.
func (r *Runner) backupOptions(cmd *cli.Command) backup.Options {
	return backup.Options{
		ExcludeSpotifyOwned:  cmd.Bool("exclude-owned") || r.config.Sync.ExcludeSpotifyOwned,
		ExcludeCollaborative: cmd.Bool("exclude-collab") || r.config.Sync.ExcludeCollaborative,
		EnrichGenres:         cmd.Bool("genres") || r.config.Sync.EnrichGenres,
	}
}

// runWithProgress drains engine progress updates onto the output writer
// while the run executes.
func (r *Runner) runWithProgress(run func(chan<- backup.ProgressUpdate) (*backup.Result, error)) (*backup.Result, error) {
	progress := make(chan backup.ProgressUpdate, 64)
	done := make(chan struct{})

	go func() {
		defer close(done)
		var last string
		for update := range progress {
			// Page-level updates repeat the playlist name; only the
			// latest count for each message shape is worth a line.
			if update.Message == last {
				continue
			}
			last = update.Message
			r.writePlain("%s\n", update.Message)
		}
	}()

	result, err := run(progress)
	close(progress)
	<-done

	return result, err
}

// reportInterruption explains why the run stopped and how to continue.
func (r *Runner) reportInterruption(result *backup.Result, resumeHint string) error {
	r.writePlainln("⚠ Backup interrupted")
	r.writePlain("  Playlists completed: %d/%d\n", result.CompletedCount, result.PlannedCount)
	if !result.AvailableAt.IsZero() {
		r.writePlain("  Rate limited; retry after %s (%s)\n",
			time.Until(result.AvailableAt).Round(time.Second), result.AvailableAt.Format(time.RFC3339))
	}
	if result.CanResume {
		r.writePlain("  Progress saved. Continue with: %s\n", resumeHint)
	}
	if result.Reason != nil {
		return fmt.Errorf("backup interrupted: %w", result.Reason)
	}
	return fmt.Errorf("backup interrupted")
}

func (r *Runner) printMergeStats(stats store.MergeStats) {
	if stats.Empty() {
		r.writePlain("  No changes since last backup.\n")
		return
	}
	r.writePlain("  Playlists: +%d added, %d updated, -%d removed\n",
		stats.PlaylistsAdded, stats.PlaylistsUpdated, stats.PlaylistsRemoved)
	r.writePlain("  Tracks: +%d added, %d changed, -%d removed\n",
		stats.TracksAdded, stats.TracksUpdated, stats.TracksRemoved)
}

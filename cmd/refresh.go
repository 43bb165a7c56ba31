package main

import (
	"context"
	"fmt"

	"github.com/dayeggpi/spotiup/internal/backup"
	"github.com/urfave/cli/v3"
)

// Refresh re-fetches the named playlists and merges them into the snapshot
// in place, leaving every other playlist untouched.
func (r *Runner) Refresh(ctx context.Context, cmd *cli.Command) error {
	ids := cmd.StringSlice("id")
	useJSON := cmd.Bool("json")

	engine, cleanup, err := r.openEngine()
	if err != nil {
		return err
	}
	defer cleanup()

	opts := backup.Options{
		EnrichGenres: cmd.Bool("genres") || r.config.Sync.EnrichGenres,
	}

	result, runErr := r.runWithProgress(func(progress chan<- backup.ProgressUpdate) (*backup.Result, error) {
		return engine.SelectiveRefresh(ctx, progress, ids, opts)
	})

	switch {
	case result != nil && result.Outcome == backup.Completed:
		_, stats, err := engine.MergeSelective(result.Playlists)
		if err != nil {
			return fmt.Errorf("refresh fetched but merge failed: %w", err)
		}

		if useJSON {
			return r.writeJSON(stats, true)
		}

		r.writePlainln("✓ Refresh complete")
		r.writePlain("  Playlists refreshed: %d\n", len(result.Playlists))
		r.printMergeStats(stats)
		return nil

	case result != nil && result.Outcome == backup.Interrupted:
		return r.reportInterruption(result, "spotiup refresh")

	default:
		return runErr
	}
}

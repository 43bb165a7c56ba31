package backup

import (
	"context"
	"errors"
	"fmt"

	"github.com/dayeggpi/spotiup/internal/models"
	"github.com/dayeggpi/spotiup/internal/services"
	"github.com/dayeggpi/spotiup/internal/shared"
)

// SelectiveRefresh re-fetches the given playlists wholesale: metadata and
// the full track list, from offset zero.
//
// No cursor is kept; a refresh is short enough that interruption simply
// ends the run with a partial count the caller can retry in full. The
// returned playlists are replacements for [Engine.MergeSelective]; nothing
// is merged or persisted here.
func (e *Engine) SelectiveRefresh(ctx context.Context, progress chan<- ProgressUpdate, ids []string, opts Options) (*Result, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: playlist ids", shared.ErrMissingArgument)
	}

	var done []models.Playlist

	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			return failedResult(err)
		}
		if err := e.pacer.WaitN(ctx, 2); err != nil {
			return failedResult(ctx.Err())
		}

		var meta *models.Playlist
		err := e.remote(ctx, "refreshing playlist "+id, func() error {
			var ferr error
			meta, ferr = e.catalog.Playlist(ctx, id)
			return ferr
		})
		if err != nil {
			return e.refreshFailure(len(done), len(ids), err)
		}

		e.sendProgress(progress, refreshUpdate(i+1, len(ids), meta.Name))

		offset := 0
		for {
			if err := ctx.Err(); err != nil {
				return failedResult(err)
			}
			if err := e.pacer.Wait(ctx); err != nil {
				return failedResult(ctx.Err())
			}

			var page *services.TrackPage
			err := e.remote(ctx, "refreshing tracks of "+meta.Name, func() error {
				var ferr error
				page, ferr = e.catalog.PlaylistTrackPage(ctx, id, offset)
				return ferr
			})
			if err != nil {
				return e.refreshFailure(len(done), len(ids), err)
			}

			e.enrich(ctx, opts, page.Items)
			meta.Tracks = append(meta.Tracks, page.Items...)
			offset += page.Limit

			if !page.Next {
				break
			}
		}

		meta.SyncedAt = nowStamp()
		done = append(done, *meta)
	}

	e.logger.Info("selective refresh completed", "playlists", len(done))

	return &Result{
		Outcome:        Completed,
		Playlists:      done,
		CompletedCount: len(done),
		PlannedCount:   len(ids),
	}, nil
}

// refreshFailure ends a selective run. There is no cursor, so nothing is
// resumable; the caller retries the whole refresh.
func (e *Engine) refreshFailure(completed, planned int, err error) (*Result, error) {
	if errors.Is(err, shared.ErrAuthFailed) {
		return failedResult(err)
	}

	res := &Result{
		Outcome:        Interrupted,
		CompletedCount: completed,
		PlannedCount:   planned,
		CanResume:      false,
	}
	if at, ok := e.tracker.AvailableAt(); ok {
		res.AvailableAt = at
	}
	e.logger.Warn("selective refresh interrupted",
		"error", err,
		"completed", completed,
		"planned", planned)
	return res, nil
}

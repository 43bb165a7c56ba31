package backup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dayeggpi/spotiup/internal/models"
	"github.com/dayeggpi/spotiup/internal/ratelimit"
	"github.com/dayeggpi/spotiup/internal/services"
	"github.com/dayeggpi/spotiup/internal/shared"
	"github.com/dayeggpi/spotiup/internal/store"
	"golang.org/x/time/rate"
)

// GenreProvider resolves an artist ID to its genre list, normally through a
// cache in front of the catalog.
type GenreProvider interface {
	Genres(ctx context.Context, artistID string) ([]string, error)
}

// Options controls what a backup run fetches.
type Options struct {
	ExcludeSpotifyOwned  bool // skip playlists owned by the "spotify" user
	ExcludeCollaborative bool
	EnrichGenres         bool
}

// Outcome classifies how a run ended.
type Outcome int

const (
	Completed Outcome = iota
	Interrupted
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Completed:
		return "completed"
	case Interrupted:
		return "interrupted"
	case Failed:
		return "failed"
	default:
		return ""
	}
}

// Result describes how a sync run ended.
//
// Completed full runs carry the fetched Snapshot; completed selective runs
// carry the re-fetched Playlists. Interrupted runs report progress counts,
// whether a resume cursor was left behind, and the rate-limit expiry when
// one is known (zero for transient interruptions).
type Result struct {
	Outcome        Outcome
	Snapshot       *models.Snapshot
	Playlists      []models.Playlist
	AvailableAt    time.Time
	CompletedCount int
	PlannedCount   int
	CanResume      bool
	Reason         error
}

// ResumeInfo summarizes the pending work recorded in the resume cursor.
type ResumeInfo struct {
	RunID            string
	Completed        int
	Planned          int
	LikedDone        bool
	RateLimitedUntil *time.Time
	UpdatedAt        string
}

// Engine orchestrates backup runs: paginated fetching through the catalog,
// rate-limit tracking, cursor persistence, and merge-and-save wrappers.
//
// A single Engine drives one run at a time; all remote calls are strictly
// sequential, so resume state is always a single playlist and offset.
type Engine struct {
	catalog services.Catalog
	store   *store.Store
	cursors *CursorStore
	tracker *ratelimit.Tracker
	pacer   *rate.Limiter
	genres  GenreProvider
	logger  *log.Logger
}

// NewEngine creates an Engine over the given catalog and store.
//
// pageDelay is the courtesy delay between remote page fetches (twice that
// between playlists); zero selects the 100ms default. genres may be nil to
// disable enrichment entirely.
func NewEngine(catalog services.Catalog, st *store.Store, genres GenreProvider, pageDelay time.Duration, logger *log.Logger) *Engine {
	if pageDelay <= 0 {
		pageDelay = 100 * time.Millisecond
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Engine{
		catalog: catalog,
		store:   st,
		cursors: NewCursorStore(st.CursorPath(), logger),
		tracker: ratelimit.NewTracker(),
		pacer:   rate.NewLimiter(rate.Every(pageDelay), 2),
		genres:  genres,
		logger:  logger,
	}
}

// Store returns the engine's snapshot store.
func (e *Engine) Store() *store.Store {
	return e.store
}

// CanResume reports whether an interrupted run left pending work behind.
func (e *Engine) CanResume() bool {
	cur, _ := e.cursors.Load()
	return cur.HasPendingWork()
}

// ResumeInfo returns a summary of the pending cursor, or nil when there is
// nothing to resume.
func (e *Engine) ResumeInfo() *ResumeInfo {
	cur, _ := e.cursors.Load()
	if !cur.HasPendingWork() {
		return nil
	}
	return &ResumeInfo{
		RunID:            cur.RunID,
		Completed:        len(cur.CompletedIDs),
		Planned:          len(cur.Planned),
		LikedDone:        cur.LikedDone,
		RateLimitedUntil: cur.RateLimitedUntil,
		UpdatedAt:        cur.UpdatedAt,
	}
}

// FullBackup fetches the user's complete library: every playlist with its
// tracks, then the liked collection.
//
// The cursor is persisted after every fetched page. A throttle or transient
// fetch failure interrupts the run: the partial snapshot and the marked
// cursor are written, the main snapshot stays untouched, and the returned
// Result says when the catalog becomes available again. Context
// cancellation is not an interruption; the run fails and the cursor is not
// marked, so nothing is offered for resume.
//
// With resume set, a pending cursor continues exactly where it stopped:
// completed playlists are skipped and the in-flight listing restarts at the
// persisted offset. Without pending work a fresh run starts.
func (e *Engine) FullBackup(ctx context.Context, progress chan<- ProgressUpdate, opts Options, resume bool) (*Result, error) {
	cur, partial := e.loadResumeState(resume)

	if cur == nil {
		var res *Result
		cur, partial, res = e.startRun(ctx, progress, opts)
		if res != nil {
			return res, res.Reason
		}
	}

	e.logger.Info("backup run",
		"run_id", cur.RunID,
		"planned", len(cur.Planned),
		"completed", len(cur.CompletedIDs))

	for i, planned := range cur.Planned {
		if cur.IsCompleted(planned.ID) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return failedResult(err)
		}

		e.sendProgress(progress, playlistUpdate(i+1, len(cur.Planned), planned.Name))

		if err := e.pacer.WaitN(ctx, 2); err != nil {
			return failedResult(ctx.Err())
		}

		target := partial.Playlist(planned.ID)
		if target == nil {
			// The partial snapshot lost this entry (stale or missing
			// file); re-fetch the metadata before the track pages.
			var meta *models.Playlist
			err := e.remote(ctx, "fetching playlist "+planned.Name, func() error {
				var ferr error
				meta, ferr = e.catalog.Playlist(ctx, planned.ID)
				return ferr
			})
			if err != nil {
				return e.handleFetchFailure(cur, partial, planned.ID, 0, err)
			}
			partial.Playlists = append(partial.Playlists, *meta)
			target = &partial.Playlists[len(partial.Playlists)-1]
		}

		offset := 0
		if cur.CurrentID == planned.ID {
			offset = cur.CurrentOffset
		}

		for {
			if err := ctx.Err(); err != nil {
				return failedResult(err)
			}
			if err := e.pacer.Wait(ctx); err != nil {
				return failedResult(ctx.Err())
			}

			var page *services.TrackPage
			err := e.remote(ctx, "fetching tracks of "+planned.Name, func() error {
				var ferr error
				page, ferr = e.catalog.PlaylistTrackPage(ctx, planned.ID, offset)
				return ferr
			})
			if err != nil {
				return e.handleFetchFailure(cur, partial, planned.ID, offset, err)
			}

			e.enrich(ctx, opts, page.Items)
			target.Tracks = append(target.Tracks, page.Items...)
			offset += page.Limit

			e.sendProgress(progress, playlistPageUpdate(i+1, len(cur.Planned), len(target.Tracks), page.Total, planned.Name))

			cur.CurrentID = planned.ID
			cur.CurrentOffset = offset
			if err := e.persistProgress(cur, partial); err != nil {
				return failedResult(err)
			}

			if !page.Next {
				break
			}
		}

		target.SyncedAt = nowStamp()
		cur.MarkCompleted(planned.ID)
		if err := e.persistProgress(cur, partial); err != nil {
			return failedResult(err)
		}
	}

	if !cur.LikedDone {
		for {
			if err := ctx.Err(); err != nil {
				return failedResult(err)
			}
			if err := e.pacer.Wait(ctx); err != nil {
				return failedResult(ctx.Err())
			}

			var page *services.TrackPage
			err := e.remote(ctx, "fetching liked songs", func() error {
				var ferr error
				page, ferr = e.catalog.LikedTrackPage(ctx, cur.LikedOffset)
				return ferr
			})
			if err != nil {
				return e.handleFetchFailure(cur, partial, "", cur.LikedOffset, err)
			}

			e.enrich(ctx, opts, page.Items)
			partial.Liked.Tracks = append(partial.Liked.Tracks, page.Items...)
			partial.Liked.Total = page.Total
			cur.LikedOffset += page.Limit

			e.sendProgress(progress, likedUpdate(len(partial.Liked.Tracks), page.Total))

			if !page.Next {
				cur.LikedDone = true
			}
			if err := e.persistProgress(cur, partial); err != nil {
				return failedResult(err)
			}
			if cur.LikedDone {
				break
			}
		}
		partial.Liked.SyncedAt = nowStamp()
	}

	partial.ExportedAt = nowStamp()
	partial.Recount()

	if err := e.cursors.Clear(); err != nil {
		e.logger.Warn("failed to clear cursor after completed run", "error", err)
	}
	if err := e.store.ClearPartial(); err != nil {
		e.logger.Warn("failed to clear partial snapshot", "error", err)
	}

	e.logger.Info("backup completed",
		"run_id", cur.RunID,
		"playlists", partial.TotalPlaylists,
		"tracks", partial.TotalTracks,
		"liked", partial.Liked.TrackCount())

	return &Result{
		Outcome:        Completed,
		Snapshot:       partial,
		CompletedCount: len(cur.CompletedIDs),
		PlannedCount:   len(cur.Planned),
	}, nil
}

// MergeFull reconciles a fetched snapshot against the stored one and
// persists the merged result.
//
// An unreadable stored snapshot is treated as absent; the fetch then counts
// as a first full save.
func (e *Engine) MergeFull(fetched *models.Snapshot) (*models.Snapshot, store.MergeStats, error) {
	var stats store.MergeStats
	if fetched == nil {
		return nil, stats, fmt.Errorf("%w: nil snapshot", shared.ErrInvalidInput)
	}

	old, err := e.store.LoadSnapshot()
	if err != nil {
		e.logger.Warn("treating unreadable snapshot as absent", "error", err)
		old = nil
	}

	merged, stats := store.MergeFull(old, fetched)
	merged.ExportedAt = nowStamp()

	if err := e.store.SaveSnapshot(merged); err != nil {
		return nil, stats, err
	}
	e.logUpdate("full", stats)
	return merged, stats, nil
}

// MergeSelective replaces the given playlists in the stored snapshot and
// persists the result. It requires an existing snapshot.
func (e *Engine) MergeSelective(replacements []models.Playlist) (*models.Snapshot, store.MergeStats, error) {
	var stats store.MergeStats

	old, err := e.store.LoadSnapshot()
	if err != nil {
		return nil, stats, err
	}
	if old == nil {
		return nil, stats, shared.ErrMissingSnapshot
	}

	merged, stats := store.MergeSelective(old, replacements)
	merged.ExportedAt = nowStamp()

	if err := e.store.SaveSnapshot(merged); err != nil {
		return nil, stats, err
	}
	e.logUpdate("selective", stats)
	return merged, stats, nil
}

// loadResumeState returns the pending cursor and partial snapshot, or nils
// when a fresh run should start.
func (e *Engine) loadResumeState(resume bool) (*Cursor, *models.Snapshot) {
	if !resume {
		return nil, nil
	}

	cur, _ := e.cursors.Load()
	if !cur.HasPendingWork() {
		e.logger.Info("nothing to resume, starting fresh run")
		return nil, nil
	}

	partial, err := e.store.LoadPartial()
	if err != nil || partial == nil {
		e.logger.Warn("resume cursor present but partial snapshot unusable, starting fresh run", "error", err)
		return nil, nil
	}

	cur.Interrupted = false
	cur.RateLimitedUntil = nil
	return cur, partial
}

// startRun fetches the user profile and enumerates the playlist plan for a
// fresh run. A non-nil Result means the run ended before any plan existed;
// no cursor is written in that case, so there is nothing to resume.
func (e *Engine) startRun(ctx context.Context, progress chan<- ProgressUpdate, opts Options) (*Cursor, *models.Snapshot, *Result) {
	var user *services.UserProfile
	err := e.remote(ctx, "fetching user profile", func() error {
		var ferr error
		user, ferr = e.catalog.CurrentUser(ctx)
		return ferr
	})
	if err != nil {
		res, _ := e.preplanFailure(err)
		return nil, nil, res
	}

	playlists, err := e.enumerate(ctx, progress, opts)
	if err != nil {
		res, _ := e.preplanFailure(err)
		return nil, nil, res
	}

	cur := &Cursor{
		RunID:     shared.GenerateID(),
		StartedAt: nowStamp(),
		Planned:   make([]PlannedPlaylist, 0, len(playlists)),
	}
	partial := &models.Snapshot{
		Version:   models.SnapshotVersion,
		UserID:    user.ID,
		UserName:  user.DisplayName,
		Playlists: playlists,
	}
	for _, pl := range playlists {
		cur.Planned = append(cur.Planned, PlannedPlaylist{ID: pl.ID, Name: pl.Name})
	}

	if err := e.persistProgress(cur, partial); err != nil {
		res, _ := failedResult(err)
		return nil, nil, res
	}
	return cur, partial, nil
}

// enumerate lists all playlists (metadata only, no tracks), applying the
// exclusion filters before anything is planned.
func (e *Engine) enumerate(ctx context.Context, progress chan<- ProgressUpdate, opts Options) ([]models.Playlist, error) {
	var all []models.Playlist
	offset := 0

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := e.pacer.Wait(ctx); err != nil {
			return nil, ctx.Err()
		}

		var page *services.PlaylistPage
		err := e.remote(ctx, "enumerating playlists", func() error {
			var ferr error
			page, ferr = e.catalog.PlaylistPage(ctx, offset)
			return ferr
		})
		if err != nil {
			return nil, err
		}

		for _, pl := range page.Items {
			if opts.ExcludeSpotifyOwned && pl.OwnerID == "spotify" {
				continue
			}
			if opts.ExcludeCollaborative && pl.Collaborative {
				continue
			}
			all = append(all, pl)
		}

		e.sendProgress(progress, enumerateUpdate(len(all)))

		if !page.Next {
			return all, nil
		}
		offset += page.Limit
	}
}

// remote runs one catalog call with the shared failure policy: the
// rate-limit tracker is consulted first (an active limit short-circuits the
// call), a throttle response records into the tracker, and an expired token
// gets exactly one transparent refresh followed by a single retry.
func (e *Engine) remote(ctx context.Context, op string, fn func() error) error {
	if at, ok := e.tracker.AvailableAt(); ok {
		return &shared.RateLimitError{RetryAfter: time.Until(at), Context: op}
	}

	err := fn()
	if err == nil {
		return nil
	}

	var rle *shared.RateLimitError
	if errors.As(err, &rle) {
		e.tracker.Record(rle.RetryAfter, op)
		return err
	}

	if errors.Is(err, shared.ErrTokenExpired) {
		e.logger.Info("access token expired, refreshing", "op", op)
		if rerr := e.catalog.RefreshAuth(ctx); rerr != nil {
			return fmt.Errorf("%w: %v", shared.ErrAuthFailed, rerr)
		}
		if err = fn(); err == nil {
			return nil
		}
		if errors.As(err, &rle) {
			e.tracker.Record(rle.RetryAfter, op)
		}
		return err
	}

	return err
}

// enrich backfills genres on the fetched tracks through the genre provider.
//
// Enrichment never aborts a run: failures are logged and skipped. A
// throttle seen here still lands in the tracker (inside the catalog
// adapter's classification), so the next remote call interrupts cleanly.
func (e *Engine) enrich(ctx context.Context, opts Options, tracks []models.Track) {
	if !opts.EnrichGenres || e.genres == nil {
		return
	}
	if e.tracker.IsLimited() {
		return
	}

	for i := range tracks {
		if len(tracks[i].Genres) > 0 {
			continue
		}
		seen := make(map[string]struct{})
		for _, artistID := range tracks[i].ArtistIDs {
			genres, err := e.genres.Genres(ctx, artistID)
			if err != nil {
				var rle *shared.RateLimitError
				if errors.As(err, &rle) {
					e.tracker.Record(rle.RetryAfter, "genre enrichment")
					return
				}
				e.logger.Debug("genre lookup failed", "artist", artistID, "error", err)
				continue
			}
			for _, g := range genres {
				if _, ok := seen[g]; ok {
					continue
				}
				seen[g] = struct{}{}
				tracks[i].Genres = append(tracks[i].Genres, g)
			}
		}
	}
}

// handleFetchFailure converts a page-fetch error into the run's terminal
// result. Throttles and transient failures interrupt with a resumable
// cursor; auth failures are fatal.
func (e *Engine) handleFetchFailure(cur *Cursor, partial *models.Snapshot, currentID string, offset int, err error) (*Result, error) {
	if errors.Is(err, shared.ErrAuthFailed) {
		return failedResult(err)
	}

	cur.Interrupted = true
	cur.CurrentID = currentID
	cur.CurrentOffset = offset
	if at, ok := e.tracker.AvailableAt(); ok {
		cur.RateLimitedUntil = &at
	}

	if perr := e.persistProgress(cur, partial); perr != nil {
		return failedResult(perr)
	}

	res := &Result{
		Outcome:        Interrupted,
		CompletedCount: len(cur.CompletedIDs),
		PlannedCount:   len(cur.Planned),
		CanResume:      true,
	}
	if at, ok := e.tracker.AvailableAt(); ok {
		res.AvailableAt = at
		e.logger.Warn("run interrupted by rate limit",
			"run_id", cur.RunID,
			"available_at", at.Format(time.RFC3339),
			"completed", res.CompletedCount,
			"planned", res.PlannedCount)
	} else {
		e.logger.Warn("run interrupted by fetch failure",
			"run_id", cur.RunID,
			"error", err,
			"completed", res.CompletedCount,
			"planned", res.PlannedCount)
	}
	return res, nil
}

// preplanFailure ends a run that died before a plan existed. Nothing was
// persisted, so nothing can be resumed.
func (e *Engine) preplanFailure(err error) (*Result, error) {
	if errors.Is(err, shared.ErrRateLimited) || errors.Is(err, shared.ErrTransientFetch) {
		res := &Result{Outcome: Interrupted, CanResume: false}
		if at, ok := e.tracker.AvailableAt(); ok {
			res.AvailableAt = at
		}
		e.logger.Warn("run interrupted before any plan existed", "error", err)
		return res, nil
	}
	return failedResult(err)
}

func (e *Engine) persistProgress(cur *Cursor, partial *models.Snapshot) error {
	if err := e.cursors.Save(cur); err != nil {
		return err
	}
	return e.store.SavePartial(partial)
}

func (e *Engine) logUpdate(operation string, stats store.MergeStats) {
	entry := store.UpdateLogEntry{
		ID:        shared.GenerateID(),
		Timestamp: nowStamp(),
		Operation: operation,
		Stats:     stats,
	}
	if err := e.store.AppendUpdateLog(entry); err != nil {
		e.logger.Warn("failed to append update log entry", "error", err)
	}
}

func failedResult(reason error) (*Result, error) {
	return &Result{Outcome: Failed, Reason: reason}, reason
}

func nowStamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

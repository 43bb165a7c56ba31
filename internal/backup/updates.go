package backup

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	Enumerate Phase = iota
	FetchTracks
	FetchLiked
	EnrichGenres
	Refresh
)

func (p Phase) String() string {
	switch p {
	case Enumerate:
		return "enumerate"
	case FetchTracks:
		return "fetch_tracks"
	case FetchLiked:
		return "fetch_liked"
	case EnrichGenres:
		return "enrich_genres"
	case Refresh:
		return "refresh"
	default:
		return ""
	}
}

func enumerateUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Enumerate,
		Step:    count,
		Total:   count,
		Message: fmt.Sprintf("Enumerating playlists (%d found)...", count),
	}
}

func playlistUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Fetching playlist %d/%d (%s)...", step, total, name),
	}
}

func playlistPageUpdate(step, total, fetched, declared int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Fetching playlist %d/%d (%s): %d/%d tracks", step, total, name, fetched, declared),
	}
}

func likedUpdate(fetched, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchLiked,
		Step:    fetched,
		Total:   total,
		Message: fmt.Sprintf("Fetching liked songs: %d/%d", fetched, total),
	}
}

func refreshUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Refresh,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Refreshing playlist %d/%d (%s)...", step, total, name),
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

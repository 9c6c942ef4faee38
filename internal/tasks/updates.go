package tasks

import (
	"fmt"

	"github.com/desertthunder/tidalctl/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
}

// Operation phase enumeration
type Phase int

const (
	FetchDestination Phase = iota
	DetectRemovals
	FilterSource
	AddTracks
	FetchRotation
	RotateTracks
	ScanPlaylists
	FetchFavorites
	LikeTracks
)

func (p Phase) String() string {
	switch p {
	case FetchDestination:
		return "fetch_destination"
	case DetectRemovals:
		return "detect_removals"
	case FilterSource:
		return "filter_source"
	case AddTracks:
		return "add_tracks"
	case FetchRotation:
		return "fetch_rotation"
	case RotateTracks:
		return "rotate_tracks"
	case ScanPlaylists:
		return "scan_playlists"
	case FetchFavorites:
		return "fetch_favorites"
	case LikeTracks:
		return "like_tracks"
	default:
		return ""
	}
}

func filterSourceUpdate(step, total int, playlist *models.Playlist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FilterSource,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Filtering %s (%d tracks)...", step, total, playlist.Name, playlist.TrackCount),
	}
}

func addTracksUpdate(count int, destination string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AddTracks,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Adding %d tracks to %s...", count, destination),
	}
}

func rotateUpdate(count int, master, archive string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RotateTracks,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Moving %d tracks from %s to %s...", count, master, archive),
	}
}

func likeProgressUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   LikeTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Progress: %d/%d tracks liked", step, total),
	}
}

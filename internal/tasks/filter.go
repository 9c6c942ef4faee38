package tasks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/tidalctl/internal/models"
	"github.com/desertthunder/tidalctl/internal/shared"
	"github.com/desertthunder/tidalctl/internal/store"
)

// Outcome is the terminal state of one track in the filter pipeline.
type Outcome int

const (
	OutcomeAdded     Outcome = iota // passed every filter, queued for the destination
	OutcomeBlocked                  // a genre matched the blocklist
	OutcomeSkipped                  // no genres and unknown_genre_policy = skip
	OutcomeDuplicate                // already in the destination or accepted earlier this run
	OutcomeExcluded                 // manually removed from the destination, never re-add
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAdded:
		return "added"
	case OutcomeBlocked:
		return "blocked"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeDuplicate:
		return "duplicate"
	case OutcomeExcluded:
		return "excluded"
	default:
		return ""
	}
}

// Decision records the verdict for one newly evaluated track.
type Decision struct {
	Track   models.Track
	Genres  []string
	Outcome Outcome
}

// FilterResult contains everything a filter run decided.
type FilterResult struct {
	Destination     *models.Playlist // nil when creation was skipped under dry-run
	Decisions       []Decision
	Added           int
	Blocked         int
	Skipped         int
	Duplicates      int
	Excluded        int
	RemovedDetected int // manual removals newly merged into the removed set
}

// Filter evaluates every source playlist and appends the surviving tracks to
// the destination playlist.
//
// Tracks already in the processed set are not re-evaluated, which makes the
// operation idempotent: a second run with no new tracks adds nothing.
func (e *Engine) Filter(ctx context.Context, progress chan<- ProgressUpdate) (*FilterResult, error) {
	if e.svc == nil {
		return nil, fmt.Errorf("%w: Tidal service not initialized", shared.ErrServiceUnavailable)
	}
	if e.resolver == nil {
		return nil, fmt.Errorf("%w: genre resolver not initialized", shared.ErrServiceUnavailable)
	}

	sourceIDs := e.config.SourcePlaylistIDs
	if len(sourceIDs) == 0 {
		return nil, fmt.Errorf("%w: no source_playlist_ids configured", shared.ErrInvalidConfig)
	}

	result := &FilterResult{}

	e.sendProgress(progress, ProgressUpdate{Phase: FetchDestination, Step: 1, Total: 1, Message: "Resolving destination playlist..."})

	destination, err := e.destinationPlaylist(ctx)
	if err != nil {
		return nil, err
	}
	result.Destination = destination

	// Current destination membership, used for dedup and removal detection.
	membership := store.NewTrackSet()
	if destination != nil {
		tracks, err := e.svc.PlaylistTracks(ctx, destination.ID)
		if err != nil {
			return nil, fmt.Errorf("could not fetch destination tracks: %w", err)
		}
		for _, track := range tracks {
			membership.Add(track.ID)
		}
		e.logger.Infof("destination playlist has %d existing tracks", membership.Len())
	}

	// Tracks present in the last committed snapshot but gone from the
	// destination were removed by a human; exclude them permanently.
	e.sendProgress(progress, ProgressUpdate{Phase: DetectRemovals, Step: 1, Total: 1, Message: "Checking for removed tracks..."})
	if removed := e.state.DetectRemoved(membership); len(removed) > 0 {
		e.logger.Infof("detected %d tracks removed by user, permanently excluding", len(removed))
		e.state.MarkRemoved(removed...)
		result.RemovedDetected = len(removed)
	}
	if n := e.state.Removed.Len(); n > 0 {
		e.logger.Infof("total removed tracks (never re-add): %d", n)
	}

	var toAdd []models.Track
	for i, sourceID := range sourceIDs {
		source, err := e.svc.Playlist(ctx, sourceID)
		if err != nil {
			e.logger.Errorf("could not fetch source playlist %s: %v", sourceID, err)
			continue
		}

		e.sendProgress(progress, filterSourceUpdate(i+1, len(sourceIDs), source))
		e.logger.Infof("processing playlist: %s (%d tracks)", source.Name, source.TrackCount)

		tracks, err := e.svc.PlaylistTracks(ctx, sourceID)
		if err != nil {
			e.logger.Errorf("could not fetch tracks of %s: %v", sourceID, err)
			continue
		}

		for _, track := range tracks {
			decision, accepted := e.evaluate(ctx, track, membership)
			if decision == nil {
				continue // seen in a previous run
			}

			result.Decisions = append(result.Decisions, *decision)
			if accepted {
				toAdd = append(toAdd, track)
				membership.Add(track.ID)
			}
		}
	}

	for _, decision := range result.Decisions {
		switch decision.Outcome {
		case OutcomeAdded:
			result.Added++
		case OutcomeBlocked:
			result.Blocked++
		case OutcomeSkipped:
			result.Skipped++
		case OutcomeDuplicate:
			result.Duplicates++
		case OutcomeExcluded:
			result.Excluded++
		}
	}

	switch {
	case len(toAdd) == 0:
		e.logger.Info("no new tracks to add")
	case e.dryRun:
		e.logger.Infof("[DRY RUN] Would add %d tracks to destination playlist", len(toAdd))
	default:
		ids := make([]string, len(toAdd))
		for i, track := range toAdd {
			ids[i] = track.ID
		}

		e.sendProgress(progress, addTracksUpdate(len(ids), destination.Name))
		e.logger.Infof("adding %d tracks to %s", len(ids), destination.Name)

		if err := e.svc.AddTracks(ctx, destination.ID, ids); err != nil {
			return result, fmt.Errorf("failed to add tracks: %w", err)
		}
	}

	e.state.ReplaceSnapshot(membership)
	return result, nil
}

// evaluate runs the per-track pipeline. It returns nil for tracks processed
// in an earlier run, and reports whether the track was accepted for
// addition.
func (e *Engine) evaluate(ctx context.Context, track models.Track, membership *store.TrackSet) (*Decision, bool) {
	if e.state.Processed.Has(track.ID) {
		e.logger.Debugf("skipping already processed: %s", track.Title)
		return nil, false
	}

	labels, err := e.resolver.Resolve(ctx, track)
	if err != nil {
		e.logger.Warnf("genre lookup failed for %s - %s: %v", track.Artist, track.Title, err)
		labels = nil
	}

	display := "unknown"
	if len(labels) > 0 {
		display = strings.Join(labels, ", ")
	}

	decision := &Decision{Track: track, Genres: labels}
	e.state.MarkProcessed(track.ID)

	if isBlocked(labels, e.config.GenreBlocklist) {
		e.logger.Infof("BLOCKED: %s - %s [%s]", track.Artist, track.Title, display)
		decision.Outcome = OutcomeBlocked
		return decision, false
	}

	if len(labels) == 0 {
		if e.config.UnknownGenrePolicy == "skip" {
			e.logger.Infof("SKIPPED (unknown genre): %s - %s", track.Artist, track.Title)
			decision.Outcome = OutcomeSkipped
			return decision, false
		}
		e.logger.Infof("KEEPING (unknown genre): %s - %s", track.Artist, track.Title)
	}

	if e.state.Removed.Has(track.ID) {
		e.logger.Infof("EXCLUDED (removed by user): %s - %s", track.Artist, track.Title)
		decision.Outcome = OutcomeExcluded
		return decision, false
	}

	if membership.Has(track.ID) {
		e.logger.Debugf("duplicate, already in destination: %s", track.Title)
		decision.Outcome = OutcomeDuplicate
		return decision, false
	}

	e.logger.Infof("ADDING: %s - %s [%s]", track.Artist, track.Title, display)
	decision.Outcome = OutcomeAdded
	return decision, true
}

// destinationPlaylist resolves the configured destination: by ID when set,
// then by name among the user's playlists, then by creating it. Creation is
// skipped under dry-run, in which case the destination is nil.
func (e *Engine) destinationPlaylist(ctx context.Context) (*models.Playlist, error) {
	if id := e.config.DestinationPlaylistID; id != "" {
		playlist, err := e.svc.Playlist(ctx, id)
		if err == nil {
			return playlist, nil
		}
		e.logger.Warnf("could not fetch destination playlist %s: %v", id, err)
	}

	name := e.config.DestinationPlaylist
	if name == "" {
		name = "New Music"
	}

	playlists, err := e.svc.UserPlaylists(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list user playlists: %w", err)
	}

	for _, playlist := range playlists {
		if playlist.Name == name {
			e.logger.Infof("found existing destination playlist: %s (%s)", playlist.Name, playlist.ID)
			return &playlist, nil
		}
	}

	if e.dryRun {
		e.logger.Infof("[DRY RUN] Would create playlist: %s", name)
		return nil, nil
	}

	e.logger.Infof("creating destination playlist: %s", name)
	description := fmt.Sprintf("Filtered new music - updated %s", time.Now().UTC().Format("2006-01-02"))
	return e.svc.CreatePlaylist(ctx, name, description)
}

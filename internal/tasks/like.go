package tasks

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/tidalctl/internal/models"
	"github.com/desertthunder/tidalctl/internal/shared"
	"github.com/desertthunder/tidalctl/internal/store"
)

// LikeResult reports what a bulk-favorite pass did.
type LikeResult struct {
	Playlists []models.Playlist
	Candidate int // unique tracks across the matched playlists
	Liked     int // newly favorited this run
	Failed    int
}

// Like favorites every track of the user's playlists whose name starts with
// the configured prefix. Tracks already in the favorites library are left
// alone, and a failure on one track does not stop the rest.
func (e *Engine) Like(ctx context.Context, progress chan<- ProgressUpdate) (*LikeResult, error) {
	if e.svc == nil {
		return nil, fmt.Errorf("%w: Tidal service not initialized", shared.ErrServiceUnavailable)
	}

	prefix := e.config.Like.PlaylistPrefix
	if prefix == "" {
		return nil, fmt.Errorf("%w: like.playlist_prefix is required", shared.ErrInvalidConfig)
	}

	e.sendProgress(progress, ProgressUpdate{Phase: ScanPlaylists, Step: 1, Total: 1, Message: "Scanning user playlists..."})

	playlists, err := e.svc.UserPlaylists(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list user playlists: %w", err)
	}

	result := &LikeResult{}
	for _, playlist := range playlists {
		if strings.HasPrefix(playlist.Name, prefix) {
			result.Playlists = append(result.Playlists, playlist)
		}
	}
	if len(result.Playlists) == 0 {
		return nil, fmt.Errorf("%w: no playlists named with prefix %q", shared.ErrPlaylistNotFound, prefix)
	}
	e.logger.Infof("found %d playlists with prefix %q", len(result.Playlists), prefix)

	// One upfront favorites fetch; a failure here only costs dedup.
	e.sendProgress(progress, ProgressUpdate{Phase: FetchFavorites, Step: 1, Total: 1, Message: "Fetching favorites library..."})
	seen := store.NewTrackSet()
	favorites, err := e.svc.FavoriteTracks(ctx)
	if err != nil {
		e.logger.Warnf("could not fetch existing favorites, deduplication degraded: %v", err)
	}
	for _, track := range favorites {
		seen.Add(track.ID)
	}

	var toLike []models.Track
	for _, playlist := range result.Playlists {
		tracks, err := e.svc.PlaylistTracks(ctx, playlist.ID)
		if err != nil {
			e.logger.Errorf("could not fetch tracks of %s: %v", playlist.Name, err)
			continue
		}
		for _, track := range tracks {
			if seen.Has(track.ID) {
				continue
			}
			seen.Add(track.ID)
			toLike = append(toLike, track)
		}
	}
	result.Candidate = len(toLike)

	if len(toLike) == 0 {
		e.logger.Info("all tracks are already favorited")
		return result, nil
	}

	if e.dryRun {
		e.logger.Infof("[DRY RUN] Would favorite %d tracks", len(toLike))
		return result, nil
	}

	e.logger.Infof("favoriting %d tracks", len(toLike))
	for i, track := range toLike {
		if err := e.svc.AddFavorite(ctx, track.ID); err != nil {
			e.logger.Warnf("could not favorite %s - %s: %v", track.Artist, track.Title, err)
			result.Failed++
			continue
		}
		result.Liked++

		if (i+1)%100 == 0 {
			e.sendProgress(progress, likeProgressUpdate(i+1, len(toLike)))
			e.logger.Infof("favorited %d/%d", i+1, len(toLike))
		}
	}

	e.logger.Infof("done, favorited %d new tracks", result.Liked)
	return result, nil
}

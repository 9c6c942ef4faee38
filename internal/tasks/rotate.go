package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/tidalctl/internal/models"
	"github.com/desertthunder/tidalctl/internal/shared"
)

// RotateResult reports what a rotation moved (or would move).
type RotateResult struct {
	Master   *models.Playlist
	Archive  *models.Playlist
	Overflow int
	Rotated  []models.Track
}

// Rotate moves the oldest tracks of the master playlist to the archive when
// the master exceeds its configured size. Tracks at the lowest positions are
// the oldest, so the first overflow entries are appended to the archive and
// then deleted from the master by their original indices.
func (e *Engine) Rotate(ctx context.Context, progress chan<- ProgressUpdate) (*RotateResult, error) {
	if e.svc == nil {
		return nil, fmt.Errorf("%w: Tidal service not initialized", shared.ErrServiceUnavailable)
	}

	cfg := e.config.Rotate
	if cfg.MasterPlaylistID == "" || cfg.ArchivePlaylistID == "" {
		return nil, fmt.Errorf("%w: rotate.master_playlist_id and rotate.archive_playlist_id are required", shared.ErrInvalidConfig)
	}

	maxTracks := cfg.MaxTracks
	if maxTracks <= 0 {
		maxTracks = 200
	}

	e.sendProgress(progress, ProgressUpdate{Phase: FetchRotation, Step: 1, Total: 1, Message: "Fetching master and archive playlists..."})

	master, err := e.svc.Playlist(ctx, cfg.MasterPlaylistID)
	if err != nil {
		return nil, fmt.Errorf("could not fetch master playlist: %w", err)
	}
	archive, err := e.svc.Playlist(ctx, cfg.ArchivePlaylistID)
	if err != nil {
		return nil, fmt.Errorf("could not fetch archive playlist: %w", err)
	}

	result := &RotateResult{Master: master, Archive: archive}

	tracks, err := e.svc.PlaylistTracks(ctx, master.ID)
	if err != nil {
		return nil, fmt.Errorf("could not fetch master tracks: %w", err)
	}

	// The fetched list is authoritative; the playlist's reported count can
	// lag behind recent mutations.
	overflow := len(tracks) - maxTracks
	if overflow <= 0 {
		e.logger.Infof("%s has %d tracks (max %d), nothing to rotate", master.Name, len(tracks), maxTracks)
		return result, nil
	}
	result.Overflow = overflow
	result.Rotated = tracks[:overflow]

	e.sendProgress(progress, rotateUpdate(overflow, master.Name, archive.Name))
	e.logger.Infof("%s has %d tracks, rotating oldest %d to %s", master.Name, len(tracks), overflow, archive.Name)

	if e.dryRun {
		for _, track := range result.Rotated {
			e.logger.Infof("[DRY RUN] Would rotate: %s - %s", track.Artist, track.Title)
		}
		return result, nil
	}

	ids := make([]string, overflow)
	indices := make([]int, overflow)
	for i, track := range result.Rotated {
		ids[i] = track.ID
		indices[i] = i
	}

	if err := e.svc.AddTracks(ctx, archive.ID, ids); err != nil {
		return result, fmt.Errorf("failed to append to archive: %w", err)
	}

	// Removal happens only after the archive append succeeds so a failure
	// never loses tracks.
	if err := e.svc.RemoveTracksByIndex(ctx, master.ID, indices); err != nil {
		return result, fmt.Errorf("failed to trim master playlist: %w", err)
	}

	e.logger.Infof("rotated %d tracks", overflow)
	return result, nil
}

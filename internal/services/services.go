// package services implements the Tidal API client used by the curation
// engine.
//
// The engine consumes the [Service] interface; the concrete implementation
// talks to the Tidal v1 API with a persisted session token.
package services

import (
	"context"

	"github.com/desertthunder/tidalctl/internal/models"
)

// Service defines the playlist and favorites operations the curation engine
// needs from Tidal.
type Service interface {
	// CurrentUser validates the session and returns the logged-in user.
	CurrentUser(ctx context.Context) (*User, error)

	// Playlist retrieves playlist metadata by ID.
	Playlist(ctx context.Context, playlistID string) (*models.Playlist, error)

	// PlaylistTracks retrieves all tracks of a playlist in playlist order
	// (position 0 is the oldest entry).
	PlaylistTracks(ctx context.Context, playlistID string) ([]models.Track, error)

	// UserPlaylists retrieves all playlists owned by the current user.
	UserPlaylists(ctx context.Context) ([]models.Playlist, error)

	// CreatePlaylist creates a new user playlist.
	CreatePlaylist(ctx context.Context, name, description string) (*models.Playlist, error)

	// AddTracks appends the given tracks to the end of a playlist.
	AddTracks(ctx context.Context, playlistID string, trackIDs []string) error

	// RemoveTracksByIndex removes playlist entries by position in one batch.
	// Indices refer to the ordering at the time of the last fetch.
	RemoveTracksByIndex(ctx context.Context, playlistID string, indices []int) error

	// FavoriteTracks retrieves the user's favorited tracks, bounded.
	FavoriteTracks(ctx context.Context) ([]models.Track, error)

	// AddFavorite favorites a single track.
	AddFavorite(ctx context.Context, trackID string) error
}

// User is the authenticated Tidal user.
type User struct {
	ID          int64
	CountryCode string
}

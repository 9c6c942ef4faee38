// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/desertthunder/tidalctl/internal/models"
	"github.com/desertthunder/tidalctl/internal/services"
)

// MockService is a stateful in-memory test double for [services.Service].
// Playlists and favorites are plain maps the test seeds directly; mutating
// calls are applied to them so assertions can inspect the end state.
type MockService struct {
	User      services.User
	Playlists map[string]*models.Playlist
	Tracks    map[string][]models.Track
	Favorites []models.Track

	// per-method error overrides
	PlaylistErr       error
	PlaylistTracksErr error
	UserPlaylistsErr  error
	AddTracksErr      error
	RemoveErr         error
	FavoritesErr      error
	AddFavoriteErr    error

	AddFavoriteCalls int
	CreatedPlaylists []string
}

func NewMockService() *MockService {
	return &MockService{
		User:      services.User{ID: 777, CountryCode: "US"},
		Playlists: map[string]*models.Playlist{},
		Tracks:    map[string][]models.Track{},
	}
}

// SetPlaylist registers a playlist and its tracks in one call.
func (m *MockService) SetPlaylist(id, name string, tracks ...models.Track) {
	m.Playlists[id] = &models.Playlist{ID: id, Name: name, TrackCount: len(tracks)}
	m.Tracks[id] = tracks
}

func (m *MockService) CurrentUser(ctx context.Context) (*services.User, error) {
	user := m.User
	return &user, nil
}

func (m *MockService) Playlist(ctx context.Context, playlistID string) (*models.Playlist, error) {
	if m.PlaylistErr != nil {
		return nil, m.PlaylistErr
	}
	playlist, ok := m.Playlists[playlistID]
	if !ok {
		return nil, fmt.Errorf("playlist %s not found", playlistID)
	}
	copied := *playlist
	return &copied, nil
}

func (m *MockService) PlaylistTracks(ctx context.Context, playlistID string) ([]models.Track, error) {
	if m.PlaylistTracksErr != nil {
		return nil, m.PlaylistTracksErr
	}
	if _, ok := m.Playlists[playlistID]; !ok {
		return nil, fmt.Errorf("playlist %s not found", playlistID)
	}
	return append([]models.Track(nil), m.Tracks[playlistID]...), nil
}

func (m *MockService) UserPlaylists(ctx context.Context) ([]models.Playlist, error) {
	if m.UserPlaylistsErr != nil {
		return nil, m.UserPlaylistsErr
	}
	var playlists []models.Playlist
	for _, playlist := range m.Playlists {
		playlists = append(playlists, *playlist)
	}
	return playlists, nil
}

func (m *MockService) CreatePlaylist(ctx context.Context, name, description string) (*models.Playlist, error) {
	id := fmt.Sprintf("created-%d", len(m.CreatedPlaylists)+1)
	m.SetPlaylist(id, name)
	m.Playlists[id].Description = description
	m.CreatedPlaylists = append(m.CreatedPlaylists, name)
	return m.Playlist(ctx, id)
}

func (m *MockService) AddTracks(ctx context.Context, playlistID string, trackIDs []string) error {
	if m.AddTracksErr != nil {
		return m.AddTracksErr
	}
	if _, ok := m.Playlists[playlistID]; !ok {
		return fmt.Errorf("playlist %s not found", playlistID)
	}
	for _, id := range trackIDs {
		m.Tracks[playlistID] = append(m.Tracks[playlistID], models.Track{ID: id})
	}
	m.Playlists[playlistID].TrackCount = len(m.Tracks[playlistID])
	return nil
}

func (m *MockService) RemoveTracksByIndex(ctx context.Context, playlistID string, indices []int) error {
	if m.RemoveErr != nil {
		return m.RemoveErr
	}
	tracks, ok := m.Tracks[playlistID]
	if !ok {
		return fmt.Errorf("playlist %s not found", playlistID)
	}
	drop := map[int]bool{}
	for _, i := range indices {
		if i < 0 || i >= len(tracks) {
			return errors.New("index out of range")
		}
		drop[i] = true
	}
	var kept []models.Track
	for i, track := range tracks {
		if !drop[i] {
			kept = append(kept, track)
		}
	}
	m.Tracks[playlistID] = kept
	m.Playlists[playlistID].TrackCount = len(kept)
	return nil
}

func (m *MockService) FavoriteTracks(ctx context.Context) ([]models.Track, error) {
	if m.FavoritesErr != nil {
		return nil, m.FavoritesErr
	}
	return append([]models.Track(nil), m.Favorites...), nil
}

func (m *MockService) AddFavorite(ctx context.Context, trackID string) error {
	m.AddFavoriteCalls++
	if m.AddFavoriteErr != nil {
		return m.AddFavoriteErr
	}
	m.Favorites = append(m.Favorites, models.Track{ID: trackID})
	return nil
}

// TrackIDs extracts the IDs of a playlist's tracks in order.
func (m *MockService) TrackIDs(playlistID string) []string {
	var ids []string
	for _, track := range m.Tracks[playlistID] {
		ids = append(ids, track.ID)
	}
	return ids
}

// MockResolver is a test double for [genres.Resolver] backed by a fixed
// artist-to-genres table.
type MockResolver struct {
	Genres     map[string][]string
	ResolveErr error
	Saved      int
	Calls      int
}

func (m *MockResolver) Resolve(ctx context.Context, track models.Track) ([]string, error) {
	m.Calls++
	if m.ResolveErr != nil {
		return nil, m.ResolveErr
	}
	return m.Genres[track.Artist], nil
}

func (m *MockResolver) Save() error {
	m.Saved++
	return nil
}

func (m *MockResolver) Name() string { return "mock" }

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertNoFile(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("File should not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

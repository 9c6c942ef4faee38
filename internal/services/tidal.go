// Tidal v1 API implementation of [Service].
//
// Playlist mutation endpoints are guarded by ETags: the current tag is read
// with a metadata GET and echoed back via If-None-Match, so a concurrent
// edit from another client fails the batch instead of corrupting it.

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/tidalctl/internal/models"
	"github.com/desertthunder/tidalctl/internal/shared"
)

const (
	defaultTidalAPIURL = "https://api.tidal.com/v1"

	// favoritesBound caps how many favorites are fetched for the dedup set.
	favoritesBound = 10000

	pageLimit = 100
)

// TidalService implements [Service] against the Tidal v1 API.
type TidalService struct {
	baseURL    string
	session    *Session
	httpClient *http.Client
}

// NewTidalService creates a service from a loaded session. An empty baseURL
// selects the public API endpoint.
func NewTidalService(baseURL string, session *Session) *TidalService {
	if baseURL == "" {
		baseURL = defaultTidalAPIURL
	}

	return &TidalService{
		baseURL:    baseURL,
		session:    session,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// AccessToken exposes the session bearer token for the genre resolver.
func (t *TidalService) AccessToken() string {
	if t.session == nil {
		return ""
	}
	return t.session.AccessToken
}

func (t *TidalService) userID() int64 {
	if t.session == nil {
		return 0
	}
	return t.session.UserID
}

// request performs an authenticated call and decodes the JSON response into
// result when non-nil. It returns the response ETag for mutation guards.
func (t *TidalService) request(ctx context.Context, method, endpoint string, query url.Values, form url.Values, etag string, result any) (string, error) {
	if t.session == nil {
		return "", fmt.Errorf("%w: no session loaded", shared.ErrNotAuthenticated)
	}

	if query == nil {
		query = url.Values{}
	}
	query.Set("countryCode", t.session.CountryCode)
	apiURL := t.baseURL + endpoint + "?" + query.Encode()

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+t.session.AccessToken)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return "", fmt.Errorf("%w: re-run the login command", shared.ErrSessionExpired)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: %s %s: status %d", shared.ErrAPIRequest, method, endpoint, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return "", fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return resp.Header.Get("ETag"), nil
}

// tidalPlaylist is the wire shape of a playlist resource.
type tidalPlaylist struct {
	UUID           string `json:"uuid"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	NumberOfTracks int    `json:"numberOfTracks"`
}

func (p tidalPlaylist) model() models.Playlist {
	return models.Playlist{
		ID:          p.UUID,
		Name:        p.Title,
		Description: p.Description,
		TrackCount:  p.NumberOfTracks,
	}
}

// tidalTrack is the wire shape of a track resource.
type tidalTrack struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Artist struct {
		Name string `json:"name"`
	} `json:"artist"`
}

func (t tidalTrack) model() models.Track {
	return models.Track{
		ID:     strconv.FormatInt(t.ID, 10),
		Artist: t.Artist.Name,
		Title:  t.Title,
	}
}

// CurrentUser validates the session against the sessions endpoint.
func (t *TidalService) CurrentUser(ctx context.Context) (*User, error) {
	var payload struct {
		UserID      int64  `json:"userId"`
		CountryCode string `json:"countryCode"`
	}

	if _, err := t.request(ctx, http.MethodGet, "/sessions", nil, nil, "", &payload); err != nil {
		return nil, err
	}

	return &User{ID: payload.UserID, CountryCode: payload.CountryCode}, nil
}

// Playlist retrieves playlist metadata by ID.
func (t *TidalService) Playlist(ctx context.Context, playlistID string) (*models.Playlist, error) {
	var payload tidalPlaylist

	endpoint := fmt.Sprintf("/playlists/%s", playlistID)
	if _, err := t.request(ctx, http.MethodGet, endpoint, nil, nil, "", &payload); err != nil {
		return nil, err
	}

	playlist := payload.model()
	return &playlist, nil
}

// PlaylistTracks retrieves the full ordered track listing of a playlist.
func (t *TidalService) PlaylistTracks(ctx context.Context, playlistID string) ([]models.Track, error) {
	endpoint := fmt.Sprintf("/playlists/%s/tracks", playlistID)

	var tracks []models.Track
	for offset := 0; ; offset += pageLimit {
		var page struct {
			Items              []tidalTrack `json:"items"`
			TotalNumberOfItems int          `json:"totalNumberOfItems"`
		}

		query := url.Values{}
		query.Set("limit", strconv.Itoa(pageLimit))
		query.Set("offset", strconv.Itoa(offset))

		if _, err := t.request(ctx, http.MethodGet, endpoint, query, nil, "", &page); err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			tracks = append(tracks, item.model())
		}

		if len(page.Items) < pageLimit || len(tracks) >= page.TotalNumberOfItems {
			break
		}
	}

	return tracks, nil
}

// UserPlaylists retrieves every playlist owned by the current user.
func (t *TidalService) UserPlaylists(ctx context.Context) ([]models.Playlist, error) {
	endpoint := fmt.Sprintf("/users/%d/playlists", t.userID())

	var playlists []models.Playlist
	for offset := 0; ; offset += pageLimit {
		var page struct {
			Items              []tidalPlaylist `json:"items"`
			TotalNumberOfItems int             `json:"totalNumberOfItems"`
		}

		query := url.Values{}
		query.Set("limit", strconv.Itoa(pageLimit))
		query.Set("offset", strconv.Itoa(offset))

		if _, err := t.request(ctx, http.MethodGet, endpoint, query, nil, "", &page); err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			playlists = append(playlists, item.model())
		}

		if len(page.Items) < pageLimit || len(playlists) >= page.TotalNumberOfItems {
			break
		}
	}

	return playlists, nil
}

// CreatePlaylist creates a new playlist for the current user.
func (t *TidalService) CreatePlaylist(ctx context.Context, name, description string) (*models.Playlist, error) {
	endpoint := fmt.Sprintf("/users/%d/playlists", t.userID())

	form := url.Values{}
	form.Set("title", name)
	form.Set("description", description)

	var payload tidalPlaylist
	if _, err := t.request(ctx, http.MethodPost, endpoint, nil, form, "", &payload); err != nil {
		return nil, err
	}

	playlist := payload.model()
	return &playlist, nil
}

// etagFor reads the current ETag of a playlist resource.
func (t *TidalService) etagFor(ctx context.Context, playlistID string) (string, error) {
	endpoint := fmt.Sprintf("/playlists/%s", playlistID)
	etag, err := t.request(ctx, http.MethodGet, endpoint, nil, nil, "", nil)
	if err != nil {
		return "", err
	}
	return etag, nil
}

// AddTracks appends tracks to a playlist in the given order.
func (t *TidalService) AddTracks(ctx context.Context, playlistID string, trackIDs []string) error {
	if len(trackIDs) == 0 {
		return nil
	}

	etag, err := t.etagFor(ctx, playlistID)
	if err != nil {
		return err
	}

	form := url.Values{}
	form.Set("trackIds", strings.Join(trackIDs, ","))
	form.Set("onDupes", "SKIP")

	endpoint := fmt.Sprintf("/playlists/%s/items", playlistID)
	_, err = t.request(ctx, http.MethodPost, endpoint, nil, form, etag, nil)
	return err
}

// RemoveTracksByIndex removes playlist entries by position in a single
// batch, so later indices are interpreted against the original ordering.
func (t *TidalService) RemoveTracksByIndex(ctx context.Context, playlistID string, indices []int) error {
	if len(indices) == 0 {
		return nil
	}

	etag, err := t.etagFor(ctx, playlistID)
	if err != nil {
		return err
	}

	positions := make([]string, len(indices))
	for i, idx := range indices {
		positions[i] = strconv.Itoa(idx)
	}

	endpoint := fmt.Sprintf("/playlists/%s/items/%s", playlistID, strings.Join(positions, ","))
	_, err = t.request(ctx, http.MethodDelete, endpoint, nil, nil, etag, nil)
	return err
}

// FavoriteTracks retrieves the user's favorites, capped at favoritesBound.
func (t *TidalService) FavoriteTracks(ctx context.Context) ([]models.Track, error) {
	endpoint := fmt.Sprintf("/users/%d/favorites/tracks", t.userID())

	var tracks []models.Track
	for offset := 0; offset < favoritesBound; offset += pageLimit {
		var page struct {
			Items []struct {
				Item tidalTrack `json:"item"`
			} `json:"items"`
			TotalNumberOfItems int `json:"totalNumberOfItems"`
		}

		query := url.Values{}
		query.Set("limit", strconv.Itoa(pageLimit))
		query.Set("offset", strconv.Itoa(offset))

		if _, err := t.request(ctx, http.MethodGet, endpoint, query, nil, "", &page); err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			tracks = append(tracks, item.Item.model())
		}

		if len(page.Items) < pageLimit || len(tracks) >= page.TotalNumberOfItems {
			break
		}
	}

	return tracks, nil
}

// AddFavorite favorites a single track.
func (t *TidalService) AddFavorite(ctx context.Context, trackID string) error {
	endpoint := fmt.Sprintf("/users/%d/favorites/tracks", t.userID())

	form := url.Values{}
	form.Set("trackIds", trackID)

	_, err := t.request(ctx, http.MethodPost, endpoint, nil, form, "", nil)
	return err
}

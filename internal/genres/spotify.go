// Spotify fallback implementation of [Resolver].
//
// Tracks are resolved by their artist name: a client-credentials token is
// exchanged for API access, the artist search endpoint is queried, and the
// genre list of the first match wins. Used when the Tidal catalog has no
// usable genre data for a library.

package genres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tidalctl/internal/models"
	"github.com/desertthunder/tidalctl/internal/shared"
	"github.com/desertthunder/tidalctl/internal/store"
	spotifyclient "github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"
)

// artistSearcher finds the genre labels of the closest artist match. The
// indirection keeps the zmb3 client out of unit tests.
type artistSearcher interface {
	searchArtistGenres(ctx context.Context, name string) (labels []string, found bool, err error)
}

// SpotifyResolver resolves track genres by artist search on Spotify.
type SpotifyResolver struct {
	cache   *store.Cache
	limiter *rate.Limiter
	search  artistSearcher
	logger  *log.Logger
}

// NewSpotifyResolver creates the fallback resolver from client credentials.
func NewSpotifyResolver(clientID, clientSecret string, cfg shared.SpotifyConfig, logger *log.Logger) (*SpotifyResolver, error) {
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("%w: SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET must be set", shared.ErrMissingCredentials)
	}

	cache, err := store.OpenCache(cfg.CachePath)
	if err != nil {
		return nil, err
	}

	return &SpotifyResolver{
		cache:   cache,
		limiter: rate.NewLimiter(rate.Every(minInterval(cfg.MinIntervalMS)), 1),
		search:  newSpotifySearch(clientID, clientSecret),
		logger:  logger,
	}, nil
}

// Name identifies the strategy.
func (r *SpotifyResolver) Name() string {
	return "spotify"
}

// Save persists the artist-genre cache.
func (r *SpotifyResolver) Save() error {
	return r.cache.Save()
}

// Resolve looks up the track's artist, case-insensitively, consulting the
// cache first. An artist with no search match resolves to an empty list,
// which is cached like any other result.
func (r *SpotifyResolver) Resolve(ctx context.Context, track models.Track) ([]string, error) {
	key := "artist:" + strings.ToLower(track.Artist)
	if labels, ok := r.cache.List(key); ok {
		return labels, nil
	}

	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	labels, found, err := r.search.searchArtistGenres(ctx, track.Artist)
	if err != nil {
		return nil, fmt.Errorf("%w: spotify search for %q: %v", shared.ErrAPIRequest, track.Artist, err)
	}
	if !found {
		r.logger.Debugf("no spotify match for artist %q", track.Artist)
		labels = []string{}
	}

	r.cache.SetList(key, labels)
	return labels, nil
}

// spotifySearch is the production artistSearcher backed by zmb3/spotify.
type spotifySearch struct {
	client *spotifyclient.Client
}

func newSpotifySearch(clientID, clientSecret string) *spotifySearch {
	ctx := context.Background()
	cc := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}

	// Refresh roughly a minute before the token's stated expiry.
	source := oauth2.ReuseTokenSourceWithExpiry(nil, cc.TokenSource(ctx), time.Minute)

	httpClient := oauth2.NewClient(ctx, source)
	httpClient.Timeout = requestTimeout

	return &spotifySearch{client: spotifyclient.New(httpClient)}
}

func (s *spotifySearch) searchArtistGenres(ctx context.Context, name string) ([]string, bool, error) {
	result, err := s.client.Search(ctx, name, spotifyclient.SearchTypeArtist, spotifyclient.Limit(1))
	if err != nil {
		return nil, false, err
	}

	if result.Artists == nil || len(result.Artists.Artists) == 0 {
		return nil, false, nil
	}

	return result.Artists.Artists[0].Genres, true, nil
}

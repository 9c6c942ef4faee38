// Tidal v2 catalog implementation of [Resolver].
//
// Genre data comes from two endpoints: GET /v2/tracks/{id}?include=genres
// yields genre identifiers, and GET /v2/genres/{id} resolves each identifier
// to a display name. Responses follow the JSON:API convention.

package genres

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tidalctl/internal/models"
	"github.com/desertthunder/tidalctl/internal/shared"
	"github.com/desertthunder/tidalctl/internal/store"
)

const defaultTidalOpenAPIURL = "https://openapi.tidal.com/v2"

// TokenProvider supplies the bearer token for catalog requests. The Tidal
// session service implements it.
type TokenProvider interface {
	AccessToken() string
}

// TidalResolver resolves track genres from the Tidal v2 catalog API.
type TidalResolver struct {
	base   string
	auth   TokenProvider
	fetch  *fetcher
	cache  *store.Cache
	names  *nameLookup
	logger *log.Logger
}

// NewTidalResolver creates a catalog-native resolver. An empty baseURL
// selects the public openapi endpoint.
func NewTidalResolver(auth TokenProvider, baseURL string, cfg shared.TidalConfig, logger *log.Logger) (*TidalResolver, error) {
	if baseURL == "" {
		baseURL = defaultTidalOpenAPIURL
	}

	cache, err := store.OpenCache(cfg.GenreCachePath)
	if err != nil {
		return nil, err
	}

	return &TidalResolver{
		base:   baseURL,
		auth:   auth,
		fetch:  newFetcher(minInterval(cfg.MinIntervalMS)),
		cache:  cache,
		names:  newNameLookup(cache),
		logger: logger,
	}, nil
}

// Name identifies the strategy.
func (r *TidalResolver) Name() string {
	return "tidal"
}

// Save persists the genre cache.
func (r *TidalResolver) Save() error {
	return r.cache.Save()
}

// Resolve returns the genre labels for track, consulting the cache first.
func (r *TidalResolver) Resolve(ctx context.Context, track models.Track) ([]string, error) {
	key := "track:" + track.ID
	if labels, ok := r.cache.List(key); ok {
		return labels, nil
	}

	var payload struct {
		Data struct {
			Relationships struct {
				Genres struct {
					Data []struct {
						ID string `json:"id"`
					} `json:"data"`
				} `json:"genres"`
			} `json:"relationships"`
		} `json:"data"`
	}

	endpoint := fmt.Sprintf("/tracks/%s?include=genres", track.ID)
	if err := r.get(ctx, endpoint, &payload); err != nil {
		return nil, fmt.Errorf("%w: track %s: %v", shared.ErrAPIRequest, track.ID, err)
	}

	refs := payload.Data.Relationships.Genres.Data
	labels := make([]string, 0, len(refs))
	complete := true
	for _, ref := range refs {
		name, ok := r.genreName(ctx, ref.ID)
		if !ok {
			complete = false
		}
		labels = append(labels, name)
	}

	// Lists holding placeholders are not cached, so the track is retried
	// once the catalog recovers.
	if complete {
		r.cache.SetList(key, labels)
	}
	return labels, nil
}

// genreName resolves a genre identifier to its display name through the
// two-tier name lookup. A failed lookup degrades to an "Unknown(<id>)"
// placeholder so the genre is not dropped silently; placeholders are never
// cached. The second return reports whether a real name was found.
func (r *TidalResolver) genreName(ctx context.Context, id string) (string, bool) {
	if name, ok := r.names.get(id); ok {
		return name, true
	}

	var payload struct {
		Data struct {
			Attributes struct {
				GenreName string `json:"genreName"`
			} `json:"attributes"`
		} `json:"data"`
	}

	if err := r.get(ctx, "/genres/"+id, &payload); err != nil {
		r.logger.Warnf("failed to fetch genre %s: %v", id, err)
		return fmt.Sprintf("Unknown(%s)", id), false
	}

	name := payload.Data.Attributes.GenreName
	r.names.put(id, name)
	return name, true
}

// get performs a rate-limited authenticated GET against the v2 API.
func (r *TidalResolver) get(ctx context.Context, endpoint string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.base+endpoint, nil)
	if err != nil {
		return err
	}

	req.Header.Set("Authorization", "Bearer "+r.auth.AccessToken())
	req.Header.Set("Content-Type", "application/vnd.api+json")

	resp, err := r.fetch.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(result)
}

// nameLookup is the two-tier genre id → name cache: a run-local memo checked
// first, falling back to the persistent cache, both populated on miss.
type nameLookup struct {
	memo  map[string]string
	cache *store.Cache
}

func newNameLookup(cache *store.Cache) *nameLookup {
	return &nameLookup{memo: map[string]string{}, cache: cache}
}

func (n *nameLookup) get(id string) (string, bool) {
	if name, ok := n.memo[id]; ok {
		return name, true
	}
	if name, ok := n.cache.Name(id); ok {
		n.memo[id] = name
		return name, true
	}
	return "", false
}

func (n *nameLookup) put(id, name string) {
	n.memo[id] = name
	n.cache.SetName(id, name)
}

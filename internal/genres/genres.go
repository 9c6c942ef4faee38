// package genres resolves Tidal tracks to genre labels.
//
// Two interchangeable strategies implement [Resolver]: a catalog-native
// lookup against the Tidal v2 API and a fallback that searches Spotify by
// artist name. Both sit on a file-backed [store.Cache] and throttle outbound
// requests to a configured minimum interval. The strategy is chosen once at
// startup from the genre_detection config key and never switched mid-run.
package genres

import (
	"context"
	"net/http"
	"time"

	"github.com/desertthunder/tidalctl/internal/models"
	"golang.org/x/time/rate"
)

// requestTimeout bounds every outbound catalog call. There are no retries;
// a failed call degrades to an empty or placeholder result upstream.
const requestTimeout = 30 * time.Second

// Resolver resolves a track to its genre labels.
type Resolver interface {
	// Resolve returns the genre labels for track, possibly empty. An error
	// indicates the lookup itself failed, which is distinguishable from a
	// track that legitimately has no genres.
	Resolve(ctx context.Context, track models.Track) ([]string, error)

	// Save persists the resolver's cache to disk. Called once at the end of
	// a non-dry-run invocation.
	Save() error

	// Name identifies the strategy ("tidal" or "spotify").
	Name() string
}

// fetcher issues HTTP requests with a minimum interval between calls on one
// client instance. The wait in [fetcher.Do] is the only serialization point
// for outbound catalog traffic; the calling pipeline is sequential.
type fetcher struct {
	client  *http.Client
	limiter *rate.Limiter
}

func newFetcher(minInterval time.Duration) *fetcher {
	if minInterval <= 0 {
		minInterval = 100 * time.Millisecond
	}
	return &fetcher{
		client:  &http.Client{Timeout: requestTimeout},
		limiter: rate.NewLimiter(rate.Every(minInterval), 1),
	}
}

// Do blocks until the inter-request interval has elapsed, then issues req.
func (f *fetcher) Do(req *http.Request) (*http.Response, error) {
	if err := f.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return f.client.Do(req)
}

// minInterval converts a config value in milliseconds to a duration,
// defaulting to 100ms.
func minInterval(ms int) time.Duration {
	if ms <= 0 {
		return 100 * time.Millisecond
	}
	return time.Duration(ms) * time.Millisecond
}

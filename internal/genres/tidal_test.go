package genres

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"reflect"
	"sync/atomic"
	"testing"

	"github.com/desertthunder/tidalctl/internal/models"
	"github.com/desertthunder/tidalctl/internal/shared"
)

type staticToken string

func (s staticToken) AccessToken() string { return string(s) }

// catalogServer fakes the two v2 endpoints the resolver touches and counts
// hits per path.
type catalogServer struct {
	*httptest.Server
	trackHits int64
	genreHits int64

	trackGenres map[string][]string // track id -> genre ids
	genreNames  map[string]string   // genre id -> name
	failTracks  bool
	failGenres  bool
}

func newCatalogServer(t *testing.T) *catalogServer {
	t.Helper()
	cs := &catalogServer{
		trackGenres: map[string][]string{},
		genreNames:  map[string]string{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /tracks/{id}", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&cs.trackHits, 1)
		if cs.failTracks {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		ids, ok := cs.trackGenres[r.PathValue("id")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		refs := ""
		for i, id := range ids {
			if i > 0 {
				refs += ","
			}
			refs += fmt.Sprintf(`{"id":%q,"type":"genres"}`, id)
		}
		fmt.Fprintf(w, `{"data":{"relationships":{"genres":{"data":[%s]}}}}`, refs)
	})
	mux.HandleFunc("GET /genres/{id}", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&cs.genreHits, 1)
		if cs.failGenres {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		name, ok := cs.genreNames[r.PathValue("id")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprintf(w, `{"data":{"attributes":{"genreName":%q}}}`, name)
	})

	cs.Server = httptest.NewServer(mux)
	t.Cleanup(cs.Close)
	return cs
}

func newTestResolver(t *testing.T, server *catalogServer, cachePath string) *TidalResolver {
	t.Helper()
	if cachePath == "" {
		cachePath = filepath.Join(t.TempDir(), "tidal_genres.json")
	}

	cfg := shared.TidalConfig{GenreCachePath: cachePath, MinIntervalMS: 1}
	resolver, err := NewTidalResolver(staticToken("test-token"), server.URL, cfg, shared.NewLogger(nil))
	if err != nil {
		t.Fatalf("failed to create resolver: %v", err)
	}
	return resolver
}

func TestTidalResolver(t *testing.T) {
	ctx := context.Background()

	t.Run("Resolves And Caches Track Genres", func(t *testing.T) {
		server := newCatalogServer(t)
		server.trackGenres["42"] = []string{"7", "9"}
		server.genreNames["7"] = "House"
		server.genreNames["9"] = "Techno"

		resolver := newTestResolver(t, server, "")

		labels, err := resolver.Resolve(ctx, models.Track{ID: "42", Artist: "KiNK", Title: "Perth"})
		if err != nil {
			t.Fatalf("resolve failed: %v", err)
		}
		if !reflect.DeepEqual(labels, []string{"House", "Techno"}) {
			t.Errorf("expected [House Techno], got %v", labels)
		}

		// Second resolve hits the cache, not the server.
		if _, err := resolver.Resolve(ctx, models.Track{ID: "42"}); err != nil {
			t.Fatalf("cached resolve failed: %v", err)
		}
		if server.trackHits != 1 {
			t.Errorf("expected 1 track fetch, got %d", server.trackHits)
		}
	})

	t.Run("Genre Names Are Shared Across Tracks", func(t *testing.T) {
		server := newCatalogServer(t)
		server.trackGenres["1"] = []string{"7"}
		server.trackGenres["2"] = []string{"7"}
		server.genreNames["7"] = "House"

		resolver := newTestResolver(t, server, "")

		if _, err := resolver.Resolve(ctx, models.Track{ID: "1"}); err != nil {
			t.Fatal(err)
		}
		if _, err := resolver.Resolve(ctx, models.Track{ID: "2"}); err != nil {
			t.Fatal(err)
		}

		if server.genreHits != 1 {
			t.Errorf("expected genre 7 fetched once, got %d fetches", server.genreHits)
		}
	})

	t.Run("Failed Name Lookup Degrades To Placeholder", func(t *testing.T) {
		server := newCatalogServer(t)
		server.trackGenres["5"] = []string{"404"}
		server.failGenres = true

		resolver := newTestResolver(t, server, "")

		labels, err := resolver.Resolve(ctx, models.Track{ID: "5"})
		if err != nil {
			t.Fatalf("resolve should succeed despite name failure: %v", err)
		}
		if !reflect.DeepEqual(labels, []string{"Unknown(404)"}) {
			t.Errorf("expected placeholder label, got %v", labels)
		}
	})

	t.Run("Placeholders Are Not Cached As Names", func(t *testing.T) {
		server := newCatalogServer(t)
		server.trackGenres["5"] = []string{"8"}
		server.trackGenres["6"] = []string{"8"}
		server.genreNames["8"] = "Ambient"
		server.failGenres = true

		resolver := newTestResolver(t, server, "")

		if _, err := resolver.Resolve(ctx, models.Track{ID: "5"}); err != nil {
			t.Fatal(err)
		}

		// Lookup recovers; the next track resolves the real name.
		server.failGenres = false
		labels, err := resolver.Resolve(ctx, models.Track{ID: "6"})
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(labels, []string{"Ambient"}) {
			t.Errorf("expected [Ambient] after recovery, got %v", labels)
		}

		// The placeholder list was not cached either, so the first track
		// resolves to the real name on retry.
		labels, err = resolver.Resolve(ctx, models.Track{ID: "5"})
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(labels, []string{"Ambient"}) {
			t.Errorf("expected [Ambient] on retry, got %v", labels)
		}
	})

	t.Run("Track Fetch Failure Is An Error", func(t *testing.T) {
		server := newCatalogServer(t)
		server.failTracks = true

		resolver := newTestResolver(t, server, "")

		_, err := resolver.Resolve(ctx, models.Track{ID: "9"})
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}

		// Failures are not cached; the track is retried next time.
		server.failTracks = false
		server.trackGenres["9"] = nil
		labels, err := resolver.Resolve(ctx, models.Track{ID: "9"})
		if err != nil {
			t.Fatalf("expected recovery, got %v", err)
		}
		if len(labels) != 0 {
			t.Errorf("expected no genres, got %v", labels)
		}
	})

	t.Run("Save Persists Across Resolvers", func(t *testing.T) {
		server := newCatalogServer(t)
		server.trackGenres["42"] = []string{"7"}
		server.genreNames["7"] = "House"

		cachePath := filepath.Join(t.TempDir(), "tidal_genres.json")

		resolver := newTestResolver(t, server, cachePath)
		if _, err := resolver.Resolve(ctx, models.Track{ID: "42"}); err != nil {
			t.Fatal(err)
		}
		if err := resolver.Save(); err != nil {
			t.Fatalf("save failed: %v", err)
		}

		fresh := newTestResolver(t, server, cachePath)
		labels, err := fresh.Resolve(ctx, models.Track{ID: "42"})
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(labels, []string{"House"}) {
			t.Errorf("expected persisted [House], got %v", labels)
		}
		if server.trackHits != 1 {
			t.Errorf("persisted cache should prevent refetch, got %d track hits", server.trackHits)
		}
	})
}

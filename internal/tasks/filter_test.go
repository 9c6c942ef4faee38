package tasks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/desertthunder/tidalctl/internal/models"
	"github.com/desertthunder/tidalctl/internal/shared"
	"github.com/desertthunder/tidalctl/internal/store"
	internaltest "github.com/desertthunder/tidalctl/internal/testing"
)

func testConfig(t *testing.T) *shared.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := shared.DefaultConfig()
	cfg.SourcePlaylistIDs = []string{"src-1"}
	cfg.DestinationPlaylistID = "dest"
	cfg.GenreBlocklist = []string{"metal", "classic rock"}
	cfg.State.ProcessedPath = filepath.Join(dir, "processed.json")
	cfg.State.RemovedPath = filepath.Join(dir, "removed.json")
	cfg.State.SnapshotPath = filepath.Join(dir, "snapshot.json")
	return cfg
}

func newTestEngine(t *testing.T, cfg *shared.Config, svc *internaltest.MockService, resolver *internaltest.MockResolver, dryRun bool) *Engine {
	t.Helper()
	state, err := store.LoadTrackState(cfg.State.ProcessedPath, cfg.State.RemovedPath, cfg.State.SnapshotPath)
	if err != nil {
		t.Fatalf("LoadTrackState() error = %v", err)
	}
	opts := EngineOpts{
		Service: svc,
		State:   state,
		Config:  cfg,
		DryRun:  dryRun,
	}
	if resolver != nil {
		opts.Resolver = resolver
	}
	return NewEngine(opts)
}

func track(id, artist, title string) models.Track {
	return models.Track{ID: id, Artist: artist, Title: title}
}

func TestFilter(t *testing.T) {
	t.Run("adds tracks passing the blocklist", func(t *testing.T) {
		cfg := testConfig(t)
		svc := internaltest.NewMockService()
		svc.SetPlaylist("dest", "New Music")
		svc.SetPlaylist("src-1", "Arrivals",
			track("1", "Daft Punk", "One More Time"),
			track("2", "Metallica", "One"),
			track("3", "CCR", "Fortunate Son"),
		)
		resolver := &internaltest.MockResolver{Genres: map[string][]string{
			"Daft Punk": {"french house", "electro"},
			"Metallica": {"thrash metal"}, // blocklist term "metal" is a substring
			"CCR":       {"rock"},         // genre is a substring of blocklist term "classic rock"
		}}

		engine := newTestEngine(t, cfg, svc, resolver, false)
		result, err := engine.Filter(context.Background(), nil)
		if err != nil {
			t.Fatalf("Filter() error = %v", err)
		}

		if result.Added != 1 || result.Blocked != 2 {
			t.Errorf("Added = %d, Blocked = %d, want 1 and 2", result.Added, result.Blocked)
		}
		ids := svc.TrackIDs("dest")
		if len(ids) != 1 || ids[0] != "1" {
			t.Errorf("destination tracks = %v, want [1]", ids)
		}
	})

	t.Run("second run is a no-op", func(t *testing.T) {
		cfg := testConfig(t)
		svc := internaltest.NewMockService()
		svc.SetPlaylist("dest", "New Music")
		svc.SetPlaylist("src-1", "Arrivals", track("1", "Daft Punk", "One More Time"))
		resolver := &internaltest.MockResolver{Genres: map[string][]string{"Daft Punk": {"house"}}}

		engine := newTestEngine(t, cfg, svc, resolver, false)
		if _, err := engine.Filter(context.Background(), nil); err != nil {
			t.Fatalf("first Filter() error = %v", err)
		}
		if err := engine.Commit(); err != nil {
			t.Fatalf("Commit() error = %v", err)
		}

		engine = newTestEngine(t, cfg, svc, resolver, false)
		result, err := engine.Filter(context.Background(), nil)
		if err != nil {
			t.Fatalf("second Filter() error = %v", err)
		}

		if result.Added != 0 || len(result.Decisions) != 0 {
			t.Errorf("second run decided %d tracks, want 0", len(result.Decisions))
		}
		if got := len(svc.TrackIDs("dest")); got != 1 {
			t.Errorf("destination has %d tracks after second run, want 1", got)
		}
	})

	t.Run("user removals are permanent", func(t *testing.T) {
		cfg := testConfig(t)
		svc := internaltest.NewMockService()
		svc.SetPlaylist("dest", "New Music", track("1", "Daft Punk", "One More Time"))
		svc.SetPlaylist("src-1", "Arrivals", track("1", "Daft Punk", "One More Time"))
		resolver := &internaltest.MockResolver{Genres: map[string][]string{"Daft Punk": {"house"}}}

		engine := newTestEngine(t, cfg, svc, resolver, false)
		if _, err := engine.Filter(context.Background(), nil); err != nil {
			t.Fatalf("Filter() error = %v", err)
		}
		if err := engine.Commit(); err != nil {
			t.Fatalf("Commit() error = %v", err)
		}

		// Simulate the user deleting the track from the destination, then a
		// later run seeing it again in a fresh source playlist.
		svc.SetPlaylist("dest", "New Music")
		svc.SetPlaylist("src-2", "Arrivals 2", track("1", "Daft Punk", "One More Time"))
		cfg.SourcePlaylistIDs = []string{"src-2"}

		engine = newTestEngine(t, cfg, svc, resolver, false)
		result, err := engine.Filter(context.Background(), nil)
		if err != nil {
			t.Fatalf("Filter() error = %v", err)
		}

		if result.RemovedDetected != 1 {
			t.Errorf("RemovedDetected = %d, want 1", result.RemovedDetected)
		}
		if got := len(svc.TrackIDs("dest")); got != 0 {
			t.Errorf("removed track was re-added, destination has %d tracks", got)
		}
	})

	t.Run("unknown genre policy", func(t *testing.T) {
		run := func(policy string) *FilterResult {
			cfg := testConfig(t)
			cfg.UnknownGenrePolicy = policy
			svc := internaltest.NewMockService()
			svc.SetPlaylist("dest", "New Music")
			svc.SetPlaylist("src-1", "Arrivals", track("1", "Obscure Act", "Demo"))
			resolver := &internaltest.MockResolver{Genres: map[string][]string{}}

			engine := newTestEngine(t, cfg, svc, resolver, false)
			result, err := engine.Filter(context.Background(), nil)
			if err != nil {
				t.Fatalf("Filter() error = %v", err)
			}
			return result
		}

		if result := run("keep"); result.Added != 1 {
			t.Errorf("keep policy: Added = %d, want 1", result.Added)
		}
		if result := run("skip"); result.Skipped != 1 || result.Added != 0 {
			t.Errorf("skip policy: Skipped = %d, Added = %d, want 1 and 0", result.Skipped, result.Added)
		}
	})

	t.Run("resolver failure is treated as unknown", func(t *testing.T) {
		cfg := testConfig(t)
		svc := internaltest.NewMockService()
		svc.SetPlaylist("dest", "New Music")
		svc.SetPlaylist("src-1", "Arrivals", track("1", "Daft Punk", "One More Time"))
		resolver := &internaltest.MockResolver{ResolveErr: errors.New("rate limited")}

		engine := newTestEngine(t, cfg, svc, resolver, false)
		result, err := engine.Filter(context.Background(), nil)
		if err != nil {
			t.Fatalf("Filter() error = %v", err)
		}
		if result.Added != 1 {
			t.Errorf("Added = %d, want 1 under keep policy", result.Added)
		}
	})

	t.Run("deduplicates across source playlists", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.SourcePlaylistIDs = []string{"src-1", "src-2"}
		svc := internaltest.NewMockService()
		svc.SetPlaylist("dest", "New Music")
		svc.SetPlaylist("src-1", "Arrivals A", track("1", "Daft Punk", "One More Time"))
		svc.SetPlaylist("src-2", "Arrivals B", track("1", "Daft Punk", "One More Time"))
		resolver := &internaltest.MockResolver{Genres: map[string][]string{"Daft Punk": {"house"}}}

		engine := newTestEngine(t, cfg, svc, resolver, false)
		result, err := engine.Filter(context.Background(), nil)
		if err != nil {
			t.Fatalf("Filter() error = %v", err)
		}

		if result.Added != 1 {
			t.Errorf("Added = %d, want 1", result.Added)
		}
		if got := len(svc.TrackIDs("dest")); got != 1 {
			t.Errorf("destination has %d tracks, want 1", got)
		}
	})

	t.Run("falls back to name then creates destination", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.DestinationPlaylistID = ""
		cfg.DestinationPlaylist = "Fresh Finds"
		svc := internaltest.NewMockService()
		svc.SetPlaylist("src-1", "Arrivals", track("1", "Daft Punk", "One More Time"))
		resolver := &internaltest.MockResolver{Genres: map[string][]string{"Daft Punk": {"house"}}}

		engine := newTestEngine(t, cfg, svc, resolver, false)
		result, err := engine.Filter(context.Background(), nil)
		if err != nil {
			t.Fatalf("Filter() error = %v", err)
		}

		if len(svc.CreatedPlaylists) != 1 || svc.CreatedPlaylists[0] != "Fresh Finds" {
			t.Errorf("created playlists = %v, want [Fresh Finds]", svc.CreatedPlaylists)
		}
		if result.Destination == nil || result.Destination.Name != "Fresh Finds" {
			t.Errorf("Destination = %+v, want Fresh Finds", result.Destination)
		}
	})

	t.Run("dry run mutates nothing", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.DestinationPlaylistID = ""
		cfg.DestinationPlaylist = "Fresh Finds"
		svc := internaltest.NewMockService()
		svc.SetPlaylist("src-1", "Arrivals", track("1", "Daft Punk", "One More Time"))
		resolver := &internaltest.MockResolver{Genres: map[string][]string{"Daft Punk": {"house"}}}

		engine := newTestEngine(t, cfg, svc, resolver, true)
		result, err := engine.Filter(context.Background(), nil)
		if err != nil {
			t.Fatalf("Filter() error = %v", err)
		}
		if err := engine.Commit(); err != nil {
			t.Fatalf("Commit() error = %v", err)
		}

		if result.Added != 1 {
			t.Errorf("Added = %d, want 1 in preview", result.Added)
		}
		if len(svc.CreatedPlaylists) != 0 {
			t.Errorf("dry run created playlists: %v", svc.CreatedPlaylists)
		}
		if resolver.Saved != 0 {
			t.Error("dry run saved the genre cache")
		}
		for _, path := range []string{cfg.State.ProcessedPath, cfg.State.RemovedPath, cfg.State.SnapshotPath} {
			if _, err := os.Stat(path); err == nil {
				t.Errorf("dry run wrote state file %s", path)
			}
		}
	})

	t.Run("no sources configured", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.SourcePlaylistIDs = nil
		engine := newTestEngine(t, cfg, internaltest.NewMockService(), &internaltest.MockResolver{}, false)

		if _, err := engine.Filter(context.Background(), nil); !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("Filter() error = %v, want ErrInvalidConfig", err)
		}
	})
}

func TestIsBlocked(t *testing.T) {
	blocklist := []string{"Metal", "classic rock"}

	tests := []struct {
		name   string
		labels []string
		want   bool
	}{
		{"substring of genre", []string{"death metal"}, true},
		{"genre is substring of term", []string{"rock"}, true},
		{"case insensitive", []string{"METAL"}, true},
		{"no match", []string{"house", "techno"}, false},
		{"empty labels", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isBlocked(tt.labels, blocklist); got != tt.want {
				t.Errorf("isBlocked(%v) = %v, want %v", tt.labels, got, tt.want)
			}
		})
	}
}

package tasks

import (
	"context"
	"errors"
	"testing"

	"github.com/desertthunder/tidalctl/internal/models"
	"github.com/desertthunder/tidalctl/internal/shared"
	internaltest "github.com/desertthunder/tidalctl/internal/testing"
)

func TestLike(t *testing.T) {
	t.Run("favorites tracks from prefixed playlists", func(t *testing.T) {
		cfg := testConfig(t)
		svc := internaltest.NewMockService()
		svc.SetPlaylist("p1", "_CBM House",
			track("1", "Daft Punk", "One More Time"),
			track("2", "Justice", "D.A.N.C.E."),
		)
		svc.SetPlaylist("p2", "_CBM Techno", track("3", "Amelie Lens", "Higher"))
		svc.SetPlaylist("p3", "Road Trip", track("4", "Eagles", "Take It Easy"))

		engine := newTestEngine(t, cfg, svc, nil, false)
		result, err := engine.Like(context.Background(), nil)
		if err != nil {
			t.Fatalf("Like() error = %v", err)
		}

		if len(result.Playlists) != 2 {
			t.Errorf("matched %d playlists, want 2", len(result.Playlists))
		}
		if result.Liked != 3 {
			t.Errorf("Liked = %d, want 3", result.Liked)
		}
		for _, favorite := range svc.Favorites {
			if favorite.ID == "4" {
				t.Error("favorited a track from an unmatched playlist")
			}
		}
	})

	t.Run("skips existing favorites and duplicates", func(t *testing.T) {
		cfg := testConfig(t)
		svc := internaltest.NewMockService()
		svc.Favorites = []models.Track{track("1", "Daft Punk", "One More Time")}
		svc.SetPlaylist("p1", "_CBM House",
			track("1", "Daft Punk", "One More Time"),
			track("2", "Justice", "D.A.N.C.E."),
		)
		svc.SetPlaylist("p2", "_CBM More House", track("2", "Justice", "D.A.N.C.E."))

		engine := newTestEngine(t, cfg, svc, nil, false)
		result, err := engine.Like(context.Background(), nil)
		if err != nil {
			t.Fatalf("Like() error = %v", err)
		}

		if result.Candidate != 1 || result.Liked != 1 {
			t.Errorf("Candidate = %d, Liked = %d, want 1 and 1", result.Candidate, result.Liked)
		}
		if svc.AddFavoriteCalls != 1 {
			t.Errorf("AddFavorite called %d times, want 1", svc.AddFavoriteCalls)
		}
	})

	t.Run("continues past single-track failures", func(t *testing.T) {
		cfg := testConfig(t)
		svc := internaltest.NewMockService()
		svc.SetPlaylist("p1", "_CBM House",
			track("1", "Daft Punk", "One More Time"),
			track("2", "Justice", "D.A.N.C.E."),
		)
		svc.AddFavoriteErr = errors.New("server error")

		engine := newTestEngine(t, cfg, svc, nil, false)
		result, err := engine.Like(context.Background(), nil)
		if err != nil {
			t.Fatalf("Like() error = %v", err)
		}

		if result.Failed != 2 || result.Liked != 0 {
			t.Errorf("Failed = %d, Liked = %d, want 2 and 0", result.Failed, result.Liked)
		}
		if svc.AddFavoriteCalls != 2 {
			t.Errorf("AddFavorite called %d times, want 2", svc.AddFavoriteCalls)
		}
	})

	t.Run("degrades when favorites fetch fails", func(t *testing.T) {
		cfg := testConfig(t)
		svc := internaltest.NewMockService()
		svc.FavoritesErr = errors.New("timeout")
		svc.SetPlaylist("p1", "_CBM House", track("1", "Daft Punk", "One More Time"))

		engine := newTestEngine(t, cfg, svc, nil, false)
		result, err := engine.Like(context.Background(), nil)
		if err != nil {
			t.Fatalf("Like() error = %v", err)
		}
		if result.Liked != 1 {
			t.Errorf("Liked = %d, want 1", result.Liked)
		}
	})

	t.Run("dry run favorites nothing", func(t *testing.T) {
		cfg := testConfig(t)
		svc := internaltest.NewMockService()
		svc.SetPlaylist("p1", "_CBM House", track("1", "Daft Punk", "One More Time"))

		engine := newTestEngine(t, cfg, svc, nil, true)
		result, err := engine.Like(context.Background(), nil)
		if err != nil {
			t.Fatalf("Like() error = %v", err)
		}

		if result.Candidate != 1 || result.Liked != 0 || svc.AddFavoriteCalls != 0 {
			t.Errorf("dry run: Candidate = %d, Liked = %d, calls = %d", result.Candidate, result.Liked, svc.AddFavoriteCalls)
		}
	})

	t.Run("errors when no playlist matches", func(t *testing.T) {
		cfg := testConfig(t)
		svc := internaltest.NewMockService()
		svc.SetPlaylist("p1", "Road Trip")

		engine := newTestEngine(t, cfg, svc, nil, false)
		if _, err := engine.Like(context.Background(), nil); !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("Like() error = %v, want ErrPlaylistNotFound", err)
		}
	})
}

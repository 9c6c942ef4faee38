package main

import (
	"context"
	"time"

	"github.com/desertthunder/tidalctl/internal/repositories"
	"github.com/desertthunder/tidalctl/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Like favorites every track of the prefixed playlists.
func (r *Runner) Like(ctx context.Context, cmd *cli.Command) error {
	if err := r.prepare(ctx, cmd, false); err != nil {
		return err
	}

	started := time.Now().UTC()
	result, err := r.runLike(ctx)
	if err != nil {
		return err
	}

	r.recordRun(repositories.RunRecord{
		Command:   "like",
		Liked:     result.Liked,
		StartedAt: started,
	})

	return nil
}

func (r *Runner) runLike(ctx context.Context) (*tasks.LikeResult, error) {
	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			r.writePlain("%s\n", update.Message)
		}
	}()

	result, err := r.engine.Like(ctx, progressCh)
	close(progressCh)
	// The drain goroutine shares r.output; wait for it before the summary.
	<-done
	if err != nil {
		return nil, err
	}

	r.writePlainHeader("Like Complete")
	r.writePlain("Playlists matched: %d\n", len(result.Playlists))
	r.writePlain("New favorites: %d\n", result.Liked)
	if result.Failed > 0 {
		r.writePlain("Failed: %d\n", result.Failed)
	}

	return result, nil
}

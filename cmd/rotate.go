package main

import (
	"context"
	"time"

	"github.com/desertthunder/tidalctl/internal/repositories"
	"github.com/desertthunder/tidalctl/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Rotate trims the master playlist into the archive.
func (r *Runner) Rotate(ctx context.Context, cmd *cli.Command) error {
	if err := r.prepare(ctx, cmd, false); err != nil {
		return err
	}

	started := time.Now().UTC()
	result, err := r.runRotate(ctx)
	if err != nil {
		return err
	}

	r.recordRun(repositories.RunRecord{
		Command:   "rotate",
		Rotated:   result.Overflow,
		StartedAt: started,
	})

	return nil
}

func (r *Runner) runRotate(ctx context.Context) (*tasks.RotateResult, error) {
	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			r.writePlain("%s\n", update.Message)
		}
	}()

	result, err := r.engine.Rotate(ctx, progressCh)
	close(progressCh)
	// The drain goroutine shares r.output; wait for it before the summary.
	<-done
	if err != nil {
		return nil, err
	}

	if result.Overflow == 0 {
		r.writePlain("Nothing to rotate: %s is within its limit\n", result.Master.Name)
		return result, nil
	}

	r.writePlainHeader("Rotation Complete")
	r.writePlain("Moved %d tracks from %s to %s\n", result.Overflow, result.Master.Name, result.Archive.Name)
	for _, track := range result.Rotated {
		r.writePlain("  - %s - %s\n", track.Artist, track.Title)
	}

	return result, nil
}

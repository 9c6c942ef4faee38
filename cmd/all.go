package main

import (
	"context"
	"time"

	"github.com/desertthunder/tidalctl/internal/repositories"
	"github.com/urfave/cli/v3"
)

// All runs filter, rotate, and like as one batch.
//
// State and caches are committed once at the end, after every stage has run.
func (r *Runner) All(ctx context.Context, cmd *cli.Command) error {
	if err := r.prepare(ctx, cmd, true); err != nil {
		return err
	}

	started := time.Now().UTC()
	record := repositories.RunRecord{Command: "all", StartedAt: started}

	filterResult, err := r.runFilter(ctx)
	if err != nil {
		return err
	}
	record.Added = filterResult.Added
	record.Blocked = filterResult.Blocked
	record.Skipped = filterResult.Skipped
	record.Duplicates = filterResult.Duplicates
	record.Excluded = filterResult.Excluded
	record.Removed = filterResult.RemovedDetected

	rotateResult, err := r.runRotate(ctx)
	if err != nil {
		return err
	}
	record.Rotated = rotateResult.Overflow

	likeResult, err := r.runLike(ctx)
	if err != nil {
		return err
	}
	record.Liked = likeResult.Liked

	if err := r.engine.Commit(); err != nil {
		return err
	}

	r.recordRun(record)
	return nil
}

package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/tidalctl/internal/repositories"
	"github.com/desertthunder/tidalctl/internal/shared"
	"github.com/urfave/cli/v3"
)

// History lists recent curation runs from the history database.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	if r.config == nil {
		config, err := shared.LoadConfig(cmd.String("config"))
		if err != nil {
			return err
		}
		r.config = config
	}

	path := r.config.History.DatabasePath
	if path == "" {
		return fmt.Errorf("%w: history.database_path is not configured", shared.ErrMissingConfig)
	}

	db, err := repositories.Open(path)
	if err != nil {
		return err
	}
	defer db.Close()

	records, err := repositories.NewRunRepository(db).Recent(int(cmd.Int("limit")))
	if err != nil {
		return err
	}
	if len(records) == 0 {
		r.writePlain("No runs recorded yet\n")
		return nil
	}

	r.writePlainHeader("Run History")
	for _, record := range records {
		r.writePlain("%s  %s\n", record.StartedAt.Format("2006-01-02 15:04"), record.Command)
		switch record.Command {
		case "rotate":
			r.writePlain("  rotated %d\n", record.Rotated)
		case "like":
			r.writePlain("  liked %d\n", record.Liked)
		default:
			r.writePlain("  added %d, blocked %d, skipped %d, duplicates %d, excluded %d\n",
				record.Added, record.Blocked, record.Skipped, record.Duplicates, record.Excluded)
			if record.Command == "all" {
				r.writePlain("  rotated %d, liked %d\n", record.Rotated, record.Liked)
			}
		}
	}

	return nil
}

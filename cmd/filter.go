package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/tidalctl/internal/repositories"
	"github.com/desertthunder/tidalctl/internal/tasks"
	"github.com/desertthunder/tidalctl/internal/ui"
	"github.com/urfave/cli/v3"
)

// Filter runs the genre filter over the configured source playlists.
func (r *Runner) Filter(ctx context.Context, cmd *cli.Command) error {
	if err := r.prepare(ctx, cmd, true); err != nil {
		return err
	}

	if cmd.Bool("ui") {
		return r.filterUI(ctx)
	}

	started := time.Now().UTC()
	result, err := r.runFilter(ctx)
	if err != nil {
		return err
	}
	if err := r.engine.Commit(); err != nil {
		return err
	}

	r.recordRun(repositories.RunRecord{
		Command:    "filter",
		Added:      result.Added,
		Blocked:    result.Blocked,
		Skipped:    result.Skipped,
		Duplicates: result.Duplicates,
		Excluded:   result.Excluded,
		Removed:    result.RemovedDetected,
		StartedAt:  started,
	})

	return nil
}

// filterUI launches the interactive review screen. The --ui flag implies
// dry-run, so quitting the screen leaves everything untouched.
func (r *Runner) filterUI(ctx context.Context) error {
	model := ui.NewModel(ctx, r.engine)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running review UI: %w", err)
	}
	return model.Err()
}

func (r *Runner) runFilter(ctx context.Context) (*tasks.FilterResult, error) {
	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			r.writePlain("%s\n", update.Message)
		}
	}()

	result, err := r.engine.Filter(ctx, progressCh)
	close(progressCh)
	// The drain goroutine shares r.output; wait for it before the summary.
	<-done
	if err != nil {
		return nil, err
	}

	r.writePlainHeader("Filter Complete")
	if result.Destination != nil {
		r.writePlain("Destination: %s\n", result.Destination.Name)
	}
	r.writePlain("Added: %d\n", result.Added)
	r.writePlain("Blocked: %d\n", result.Blocked)
	r.writePlain("Skipped: %d\n", result.Skipped)
	r.writePlain("Duplicates: %d\n", result.Duplicates)
	r.writePlain("Excluded (previously removed): %d\n", result.Excluded)
	if result.RemovedDetected > 0 {
		r.writePlain("Newly detected removals: %d\n", result.RemovedDetected)
	}

	if blocked := decisionLines(result, tasks.OutcomeBlocked); len(blocked) > 0 {
		r.writePlain("\nBlocked tracks:\n%s", strings.Join(blocked, ""))
	}

	return result, nil
}

func decisionLines(result *tasks.FilterResult, outcome tasks.Outcome) []string {
	var lines []string
	for _, decision := range result.Decisions {
		if decision.Outcome != outcome {
			continue
		}
		genres := strings.Join(decision.Genres, ", ")
		lines = append(lines, fmt.Sprintf("  - %s - %s [%s]\n", decision.Track.Artist, decision.Track.Title, genres))
	}
	return lines
}

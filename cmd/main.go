package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/tidalctl/internal/shared"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
)

func main() {
	godotenv.Load()

	logger := shared.NewLogger(nil)
	runner := NewRunner(RunnerOpts{Logger: logger})

	app := &cli.Command{
		Name:     "tidalctl",
		Usage:    "Curate Tidal playlists: genre filtering, rotation, and bulk favorites",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrNotAuthenticated) {
			logger.Error("not logged in, run: tidalctl login")
			os.Exit(1)
		}
		logger.Fatalf("application error: %v", err)
	}
}

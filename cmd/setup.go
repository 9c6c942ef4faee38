package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/tidalctl/internal/repositories"
	"github.com/desertthunder/tidalctl/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup writes a starter config file and initializes the history database
// when one is configured.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if _, err := os.Stat(configPath); err == nil {
		r.logger.Infof("config file already exists: %s", configPath)
	} else {
		if err := shared.CreateConfigFile(configPath); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
		r.writePlain("Created %s, edit it before running filter\n", configPath)
	}

	config, err := shared.LoadConfig(configPath)
	if err != nil {
		return err
	}

	if config.History.DatabasePath != "" {
		r.logger.Infof("initializing history database: %s", config.History.DatabasePath)
		db, err := repositories.Open(config.History.DatabasePath)
		if err != nil {
			return fmt.Errorf("failed to initialize history database: %w", err)
		}
		db.Close()
	}

	return nil
}

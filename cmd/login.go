package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/tidalctl/internal/services"
	"github.com/desertthunder/tidalctl/internal/shared"
	"github.com/urfave/cli/v3"
)

// Login runs the Tidal device authorization flow and persists the session.
func (r *Runner) Login(ctx context.Context, cmd *cli.Command) error {
	config, err := shared.LoadConfig(cmd.String("config"))
	if err != nil {
		r.logger.Warn("config not found, using default session path")
		config = shared.DefaultConfig()
	}

	session, err := services.LoginDeviceFlow(ctx, r.output)
	if err != nil {
		return err
	}

	if err := session.Save(config.Tidal.SessionPath); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	r.logger.Infof("logged in as user %d (%s)", session.UserID, session.CountryCode)
	r.writePlain("Session saved to %s\n", config.Tidal.SessionPath)
	return nil
}

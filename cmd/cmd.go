// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func curationFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   "config.toml",
		},
		&cli.BoolFlag{
			Name:  "dry-run",
			Usage: "Preview changes without modifying playlists or state",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Enable debug logging",
		},
	}
}

// setupCommand creates the config file and history database
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create a starter configuration file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}

// loginCommand authenticates with Tidal via the device flow
func loginCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Authenticate with Tidal using the device authorization flow",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Login,
	}
}

// filterCommand runs the genre filter over the source playlists
func filterCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "filter",
		Usage: "Filter new arrivals into the destination playlist by genre",
		Flags: append(curationFlags(),
			&cli.BoolFlag{
				Name:  "ui",
				Usage: "Review decisions interactively (implies --dry-run)",
			},
		),
		Action: r.Filter,
	}
}

// rotateCommand trims the master playlist into the archive
func rotateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "rotate",
		Usage:  "Move the oldest master playlist tracks to the archive",
		Flags:  curationFlags(),
		Action: r.Rotate,
	}
}

// likeCommand favorites tracks from prefixed playlists
func likeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "like",
		Usage:  "Favorite every track in playlists matching the configured prefix",
		Flags:  curationFlags(),
		Action: r.Like,
	}
}

// allCommand runs filter, rotate, and like in sequence
func allCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "all",
		Usage:  "Run filter, rotate, and like in sequence",
		Flags:  curationFlags(),
		Action: r.All,
	}
}

// historyCommand lists past runs from the history database
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show recent curation runs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of runs to show",
				Value: 20,
			},
		},
		Action: r.History,
	}
}

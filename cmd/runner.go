package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tidalctl/internal/genres"
	"github.com/desertthunder/tidalctl/internal/repositories"
	"github.com/desertthunder/tidalctl/internal/services"
	"github.com/desertthunder/tidalctl/internal/shared"
	"github.com/desertthunder/tidalctl/internal/store"
	"github.com/desertthunder/tidalctl/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config   *shared.Config
	svc      services.Service
	resolver genres.Resolver
	engine   *tasks.Engine
	logger   *log.Logger
	output   io.Writer
	dryRun   bool
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Service and Resolver are normally built by prepare from the loaded config;
// tests inject doubles here to skip session loading.
type RunnerOpts struct {
	Config   *shared.Config
	Service  services.Service
	Resolver genres.Resolver
	Logger   *log.Logger
	Output   io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:   opts.Config,
		svc:      opts.Service,
		resolver: opts.Resolver,
		logger:   opts.Logger,
		output:   opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, loginCommand, filterCommand, rotateCommand, likeCommand, allCommand, historyCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// prepare loads configuration and builds the service, resolver, state, and
// engine a curation command needs. Dependencies injected through RunnerOpts
// are kept as-is. Commands that never resolve genres pass needResolver false
// so they work without Spotify credentials or a genre cache.
func (r *Runner) prepare(ctx context.Context, cmd *cli.Command, needResolver bool) error {
	if r.config == nil {
		config, err := shared.LoadConfig(cmd.String("config"))
		if err != nil {
			return err
		}
		if err := config.Validate(); err != nil {
			return err
		}
		r.config = config
	}

	if cmd.Bool("verbose") {
		shared.Verbose(r.logger)
	}
	// --ui is review-only, so it implies dry-run. Only filter defines the
	// flag, so check that it exists before reading it.
	r.dryRun = r.config.DryRun || cmd.Bool("dry-run") || (definesFlag(cmd, "ui") && cmd.Bool("ui"))
	if r.dryRun {
		r.logger.Info("dry-run mode, no changes will be made")
	}

	if r.svc == nil {
		session, err := services.LoadSession(r.config.Tidal.SessionPath)
		if err != nil {
			return err
		}
		r.svc = services.NewTidalService("", session)
	}

	if r.resolver == nil && needResolver {
		resolver, err := r.buildResolver()
		if err != nil {
			return err
		}
		r.resolver = resolver
	}

	state, err := store.LoadTrackState(
		r.config.State.ProcessedPath,
		r.config.State.RemovedPath,
		r.config.State.SnapshotPath,
	)
	if err != nil {
		return err
	}

	r.engine = tasks.NewEngine(tasks.EngineOpts{
		Service:  r.svc,
		Resolver: r.resolver,
		State:    state,
		Config:   r.config,
		Logger:   r.logger,
		DryRun:   r.dryRun,
	})

	return nil
}

// definesFlag reports whether cmd declares a flag with the given name.
func definesFlag(cmd *cli.Command, name string) bool {
	for _, flag := range cmd.Flags {
		for _, n := range flag.Names() {
			if n == name {
				return true
			}
		}
	}
	return false
}

func (r *Runner) buildResolver() (genres.Resolver, error) {
	switch r.config.GenreDetection {
	case "spotify":
		return genres.NewSpotifyResolver(
			os.Getenv("SPOTIFY_CLIENT_ID"),
			os.Getenv("SPOTIFY_CLIENT_SECRET"),
			r.config.Spotify,
			r.logger,
		)
	default:
		auth, ok := r.svc.(genres.TokenProvider)
		if !ok {
			return nil, fmt.Errorf("%w: service does not expose a session token", shared.ErrServiceUnavailable)
		}
		return genres.NewTidalResolver(auth, "", r.config.Tidal, r.logger)
	}
}

// recordRun appends a row to the run history database when one is configured.
// Dry runs are never recorded. History failures are logged, never fatal.
func (r *Runner) recordRun(record repositories.RunRecord) {
	if r.dryRun {
		return
	}
	path := ""
	if r.config != nil {
		path = r.config.History.DatabasePath
	}
	if path == "" {
		return
	}

	db, err := repositories.Open(path)
	if err != nil {
		r.logger.Warnf("could not open history database: %v", err)
		return
	}
	defer db.Close()

	if err := repositories.NewRunRepository(db).Record(&record); err != nil {
		r.logger.Warnf("could not record run: %v", err)
	}
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}

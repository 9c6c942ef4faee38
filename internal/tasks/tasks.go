// package tasks implements the curation operations: genre filtering into a
// destination playlist, master → archive rotation, and bulk favoriting.
//
// The core abstraction is [Engine], which owns the Tidal service, the genre
// resolver, and the durable track state for one invocation. Operations emit
// progress updates via channels for non-blocking status reporting. All
// persistence happens in a single [Engine.Commit] at run end, which dry-run
// mode skips entirely.
package tasks

import (
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tidalctl/internal/genres"
	"github.com/desertthunder/tidalctl/internal/services"
	"github.com/desertthunder/tidalctl/internal/shared"
	"github.com/desertthunder/tidalctl/internal/store"
)

// Engine orchestrates the filter, rotate, and like operations.
type Engine struct {
	svc      services.Service
	resolver genres.Resolver
	state    *store.TrackState
	config   *shared.Config
	logger   *log.Logger
	dryRun   bool
}

// EngineOpts contains the dependencies for creating an [Engine].
type EngineOpts struct {
	Service  services.Service
	Resolver genres.Resolver
	State    *store.TrackState
	Config   *shared.Config
	Logger   *log.Logger
	DryRun   bool
}

// NewEngine creates an Engine with the provided dependencies.
func NewEngine(opts EngineOpts) *Engine {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &Engine{
		svc:      opts.Service,
		resolver: opts.Resolver,
		state:    opts.State,
		config:   opts.Config,
		logger:   opts.Logger,
		dryRun:   opts.DryRun,
	}
}

// DryRun reports whether the engine is in preview mode.
func (e *Engine) DryRun() bool {
	return e.dryRun
}

// Commit persists the genre cache and the three track-state sets. Under
// dry-run it does nothing, leaving every file byte-identical.
func (e *Engine) Commit() error {
	if e.dryRun {
		e.logger.Info("[DRY RUN] Skipping state and cache persistence")
		return nil
	}

	if e.resolver != nil {
		if err := e.resolver.Save(); err != nil {
			return err
		}
	}
	if e.state != nil {
		return e.state.Commit()
	}
	return nil
}

// sendProgress sends a progress update through the channel without blocking.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// isBlocked reports whether any resolved genre matches the blocklist.
//
// Matching is case-insensitive substring containment in either direction: a
// blocklist term "metal" blocks the genre "death metal", and a blocklist
// term "classic rock" is blocked by the genre "rock". Short terms therefore
// match broadly ("pop" blocks "k-pop" and "synthpop"); existing
// configurations rely on this.
func isBlocked(labels, blocklist []string) bool {
	for _, blocked := range blocklist {
		blockedLower := strings.ToLower(blocked)
		for _, label := range labels {
			labelLower := strings.ToLower(label)
			if strings.Contains(labelLower, blockedLower) || strings.Contains(blockedLower, labelLower) {
				return true
			}
		}
	}
	return false
}

package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
//
// Playlist identifiers and filtering policy live at the top level; the
// per-command and per-strategy settings live in their own tables.
type Config struct {
	SourcePlaylistIDs      []string `toml:"source_playlist_ids"`
	DestinationPlaylistID  string   `toml:"destination_playlist_id"`
	DestinationPlaylist    string   `toml:"destination_playlist_name"`
	GenreDetection         string   `toml:"genre_detection"`
	GenreBlocklist         []string `toml:"genre_blocklist"`
	UnknownGenrePolicy     string   `toml:"unknown_genre_policy"`
	DryRun                 bool     `toml:"dry_run"`

	Rotate  RotateConfig  `toml:"rotate"`
	Like    LikeConfig    `toml:"like"`
	State   StateConfig   `toml:"state"`
	Tidal   TidalConfig   `toml:"tidal"`
	Spotify SpotifyConfig `toml:"spotify"`
	History HistoryConfig `toml:"history"`
}

// RotateConfig controls the master → archive rotation command.
type RotateConfig struct {
	MasterPlaylistID  string `toml:"master_playlist_id"`
	ArchivePlaylistID string `toml:"archive_playlist_id"`
	MaxTracks         int    `toml:"max_tracks"`
}

// LikeConfig controls the bulk-favorite command.
type LikeConfig struct {
	PlaylistPrefix string `toml:"playlist_prefix"`
}

// StateConfig locates the persisted track-set files.
type StateConfig struct {
	ProcessedPath string `toml:"processed_path"`
	RemovedPath   string `toml:"removed_path"`
	SnapshotPath  string `toml:"snapshot_path"`
}

// TidalConfig contains Tidal session and genre-lookup settings.
type TidalConfig struct {
	SessionPath    string `toml:"session_path"`
	GenreCachePath string `toml:"genre_cache_path"`
	MinIntervalMS  int    `toml:"min_interval_ms"`
}

// SpotifyConfig contains settings for the Spotify genre fallback.
//
// Client credentials are read from the SPOTIFY_CLIENT_ID and
// SPOTIFY_CLIENT_SECRET environment variables, not from the config file.
type SpotifyConfig struct {
	CachePath     string `toml:"cache_path"`
	MinIntervalMS int    `toml:"min_interval_ms"`
}

// HistoryConfig enables the optional sqlite run-history database.
// An empty path disables history recording.
type HistoryConfig struct {
	DatabasePath string `toml:"database_path"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Unset keys fall back to the embedded example defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingConfig, err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return config, nil
}

// DefaultConfig returns a Config with defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks invariants that every command depends on.
func (c *Config) Validate() error {
	switch c.GenreDetection {
	case "tidal", "spotify":
	default:
		return fmt.Errorf("%w: unknown genre_detection method %q", ErrInvalidConfig, c.GenreDetection)
	}

	switch c.UnknownGenrePolicy {
	case "keep", "skip":
	default:
		return fmt.Errorf("%w: unknown_genre_policy must be \"keep\" or \"skip\", got %q", ErrInvalidConfig, c.UnknownGenrePolicy)
	}

	return nil
}

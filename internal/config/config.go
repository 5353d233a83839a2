// Package config handles repository configuration.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/matsen/hairball/internal/reduce"
)

// Config represents repository configuration stored in .hairball/config.json.
// Zero values mean "unset"; Resolve fills them from the global config and
// built-in defaults.
type Config struct {
	DefaultMaxNodes int    `json:"default_max_nodes,omitempty"` // Node budget for reduction
	Theme           string `json:"theme,omitempty"`             // dark, light
	Renderer        string `json:"renderer,omitempty"`          // auto, vector, raster, soft
	FrameRate       int    `json:"frame_rate,omitempty"`        // Scheduler frames per second
	Seed            int64  `json:"seed,omitempty"`              // Pins reduction sampling and layout jitter
}

const (
	HairballDir = ".hairball"
	ConfigFile  = "config.json"
	NodesFile   = "nodes.jsonl"
	EdgesFile   = "edges.jsonl"
	CacheDir    = "cache"
	DBFile      = "cache.db"
)

// DefaultFrameRate is the scheduler rate used when nothing is configured.
const DefaultFrameRate = 60

// MaxFrameRate caps configured frame rates.
const MaxFrameRate = 240

// ValidRenderers lists the supported renderer values.
var ValidRenderers = []string{"auto", "vector", "raster", "soft"}

// Validation sentinels.
var (
	ErrInvalidMaxNodes  = errors.New("default_max_nodes must be positive")
	ErrInvalidRenderer  = errors.New("invalid renderer")
	ErrInvalidFrameRate = errors.New("frame_rate out of range")
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DefaultMaxNodes: reduce.DefaultMaxNodes,
		Theme:           "dark",
		Renderer:        "auto",
		FrameRate:       DefaultFrameRate,
	}
}

// HairballPath returns the path to the .hairball directory from a root path.
func HairballPath(root string) string {
	return filepath.Join(root, HairballDir)
}

// ConfigPath returns the path to config.json from a root path.
func ConfigPath(root string) string {
	return filepath.Join(root, HairballDir, ConfigFile)
}

// NodesPath returns the path to nodes.jsonl from a root path.
func NodesPath(root string) string {
	return filepath.Join(root, HairballDir, NodesFile)
}

// EdgesPath returns the path to edges.jsonl from a root path.
func EdgesPath(root string) string {
	return filepath.Join(root, HairballDir, EdgesFile)
}

// CachePath returns the path to the cache directory from a root path.
func CachePath(root string) string {
	return filepath.Join(root, HairballDir, CacheDir)
}

// DBPath returns the path to the cache database from a root path.
func DBPath(root string) string {
	return filepath.Join(root, HairballDir, CacheDir, DBFile)
}

// IsRepository checks if the given path contains a hairball repository.
func IsRepository(root string) bool {
	info, err := os.Stat(HairballPath(root))
	return err == nil && info.IsDir()
}

// FindRepository walks up from the given path to find a hairball repository.
// Returns the repository root path or an error if not found.
func FindRepository(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	for {
		if IsRepository(abs) {
			return abs, nil
		}

		parent := filepath.Dir(abs)
		if parent == abs {
			return "", fmt.Errorf("not in a hairball repository (no .hairball directory found)")
		}
		abs = parent
	}
}

// Init creates the .hairball directory tree and writes the default
// config. Fails if the repository already exists.
func Init(root string) (*Config, error) {
	if IsRepository(root) {
		return nil, fmt.Errorf("already a hairball repository: %s", root)
	}
	if err := os.MkdirAll(CachePath(root), 0755); err != nil {
		return nil, fmt.Errorf("creating repository: %w", err)
	}

	cfg := Default()
	if err := cfg.Save(root); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load reads configuration from the repository at the given root.
func Load(root string) (*Config, error) {
	data, err := os.ReadFile(ConfigPath(root))
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return &cfg, nil
}

// Save writes configuration to the repository at the given root.
func (c *Config) Save(root string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(ConfigPath(root), data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// Resolve returns the effective configuration for a repository: built-in
// defaults, overlaid by the global config, the repository config, and
// HAIRBALL_* environment variables, in that order. The repository config
// may be absent.
func Resolve(root string) (*Config, error) {
	cfg := Default()

	global, err := LoadGlobalConfig()
	if err != nil {
		return nil, err
	}
	cfg.merge(global.asConfig())

	if _, err := os.Stat(ConfigPath(root)); err == nil {
		repo, err := Load(root)
		if err != nil {
			return nil, err
		}
		cfg.merge(*repo)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// merge overlays set fields of other onto c.
func (c *Config) merge(other Config) {
	if other.DefaultMaxNodes != 0 {
		c.DefaultMaxNodes = other.DefaultMaxNodes
	}
	if other.Theme != "" {
		c.Theme = other.Theme
	}
	if other.Renderer != "" {
		c.Renderer = other.Renderer
	}
	if other.FrameRate != 0 {
		c.FrameRate = other.FrameRate
	}
	if other.Seed != 0 {
		c.Seed = other.Seed
	}
}

// applyEnv overrides fields from HAIRBALL_* environment variables.
func (c *Config) applyEnv() error {
	if v := os.Getenv("HAIRBALL_THEME"); v != "" {
		c.Theme = v
	}
	if v := os.Getenv("HAIRBALL_RENDERER"); v != "" {
		c.Renderer = v
	}
	if v := os.Getenv("HAIRBALL_MAX_NODES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing HAIRBALL_MAX_NODES: %w", err)
		}
		c.DefaultMaxNodes = n
	}
	if v := os.Getenv("HAIRBALL_FRAME_RATE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing HAIRBALL_FRAME_RATE: %w", err)
		}
		c.FrameRate = n
	}
	if v := os.Getenv("HAIRBALL_SEED"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("parsing HAIRBALL_SEED: %w", err)
		}
		c.Seed = n
	}
	return nil
}

// Validate checks field ranges. Theme names are validated where themes
// are resolved, so an unknown theme fails at render time with its own
// error.
func (c *Config) Validate() error {
	if c.DefaultMaxNodes <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidMaxNodes, c.DefaultMaxNodes)
	}
	if !validRenderer(c.Renderer) {
		return fmt.Errorf("%w: %s (valid: %v)", ErrInvalidRenderer, c.Renderer, ValidRenderers)
	}
	if c.FrameRate < 1 || c.FrameRate > MaxFrameRate {
		return fmt.Errorf("%w: %d (valid: 1-%d)", ErrInvalidFrameRate, c.FrameRate, MaxFrameRate)
	}
	return nil
}

func validRenderer(r string) bool {
	for _, valid := range ValidRenderers {
		if r == valid {
			return true
		}
	}
	return false
}

// ValidateRenderer checks a single renderer value, for callers that set
// one field without a full config to validate.
func ValidateRenderer(r string) error {
	if !validRenderer(r) {
		return fmt.Errorf("%w: %s (valid: %v)", ErrInvalidRenderer, r, ValidRenderers)
	}
	return nil
}

// ValidateFrameRate checks a single frame rate value.
func ValidateFrameRate(fps int) error {
	if fps < 1 || fps > MaxFrameRate {
		return fmt.Errorf("%w: %d (valid: 1-%d)", ErrInvalidFrameRate, fps, MaxFrameRate)
	}
	return nil
}

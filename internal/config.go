package internal

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variable overrides.
const (
	EnvProjectDir = "CLAUDE_LOG_VIEWER_DIR"
	EnvPort       = "CLAUDE_LOG_VIEWER_PORT"
)

// Duration wraps time.Duration so YAML config files can use
// human-readable values like "2s" or "750ms".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Config holds all runtime settings for the viewer.
type Config struct {
	// ProjectDir is the watched directory tree containing source logs
	// and generated HTML artifacts.
	ProjectDir string `yaml:"project_dir"`
	// Port is the loopback TCP port for the HTTP server.
	Port int `yaml:"port"`
	// PollInterval is how often the change detector scans the tree.
	PollInterval Duration `yaml:"poll_interval"`
	// DebounceWindow is how long the tree must stay quiet after a
	// detected change before a regeneration fires.
	DebounceWindow Duration `yaml:"debounce_window"`
	// GeneratorCommand is the external report generator argv.
	GeneratorCommand []string `yaml:"generator_command"`
	// GeneratorTimeout bounds a single generator run.
	GeneratorTimeout Duration `yaml:"generator_timeout"`
	// HistoryPath is the sqlite file recording regeneration runs.
	// Kept outside ProjectDir so writes don't trigger the watcher.
	HistoryPath string `yaml:"history_path"`
	// CachePath is the YAML session index cache used for fast startup.
	CachePath string `yaml:"cache_path"`
}

// DefaultConfig returns the built-in defaults, resolved against the
// user's home directory.
func DefaultConfig() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	cacheDir := filepath.Join(home, ".cache", "claude-log-viewer")
	return Config{
		ProjectDir:       filepath.Join(home, ".claude", "projects"),
		Port:             8080,
		PollInterval:     Duration(2 * time.Second),
		DebounceWindow:   Duration(750 * time.Millisecond),
		GeneratorCommand: []string{"uvx", "claude-code-log@latest"},
		GeneratorTimeout: Duration(120 * time.Second),
		HistoryPath:      filepath.Join(cacheDir, "history.db"),
		CachePath:        filepath.Join(cacheDir, "index.yaml"),
	}
}

// DefaultConfigPath returns the default config file location.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "claude-log-viewer", "config.yaml")
}

// LoadConfig builds a Config from defaults, an optional YAML file, and
// environment overrides, in that order. A missing file at the default
// location is not an error; a missing explicit path is.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, &ConfigError{Field: path, Err: err}
			}
		case os.IsNotExist(err) && !explicit:
			// No config file is fine; defaults apply.
		default:
			return cfg, &ConfigError{Field: path, Err: err}
		}
	}

	if dir := os.Getenv(EnvProjectDir); dir != "" {
		cfg.ProjectDir = dir
	}
	if port := os.Getenv(EnvPort); port != "" {
		n, err := strconv.Atoi(port)
		if err != nil {
			return cfg, &ConfigError{Field: EnvPort, Err: err}
		}
		cfg.Port = n
	}

	return cfg, nil
}

// Validate checks the config for fatal problems. The project directory
// must exist and the generator tool must be locatable; a tool that
// disappears later is a recoverable per-run failure, but one missing at
// startup is fatal.
func (c Config) Validate() error {
	info, err := os.Stat(c.ProjectDir)
	if err != nil {
		return &ConfigError{Field: "project_dir", Err: err}
	}
	if !info.IsDir() {
		return &ConfigError{Field: "project_dir", Err: fmt.Errorf("%s is not a directory", c.ProjectDir)}
	}
	if c.Port <= 0 || c.Port > 65535 {
		return &ConfigError{Field: "port", Err: fmt.Errorf("invalid port %d", c.Port)}
	}
	if len(c.GeneratorCommand) == 0 {
		return &ConfigError{Field: "generator_command", Err: fmt.Errorf("empty command")}
	}
	if _, err := exec.LookPath(c.GeneratorCommand[0]); err != nil {
		return &ConfigError{Field: "generator_command", Err: err}
	}
	return nil
}

// Addr returns the loopback listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf("127.0.0.1:%d", c.Port)
}

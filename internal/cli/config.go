package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/tailscale/hujson"
)

// Config holds all configuration options.
type Config struct {
	// From config files (serialized)
	Path              string `json:"path"`
	Strict            *bool  `json:"strict,omitempty"`
	RecoverReadErrors *bool  `json:"recover_read_errors,omitempty"`
	LogLevel          string `json:"log_level,omitempty"`

	// Resolved values (computed, not serialized)
	EffectiveCwd string     `json:"-"` // Absolute working directory (from -C flag or os.Getwd)
	PathAbs      string     `json:"-"` // Absolute snapshot path
	Level        slog.Level `json:"-"`

	// Sources tracks which config files were loaded (for diagnostics)
	Sources ConfigSources `json:"-"`
}

// ConfigSources tracks which config files were loaded.
type ConfigSources struct {
	Global  string // Path to global config if loaded, empty otherwise
	Project string // Path to project config if loaded, empty otherwise
}

// ConfigFileName is the default project config file name.
const ConfigFileName = ".opcache.json"

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Path:              filepath.Join(".opcache", "cache.json"),
		Strict:            new(bool),
		RecoverReadErrors: new(bool),
		LogLevel:          "warn",
	}
}

// StrictEnabled reports whether corruption fails the load.
func (c Config) StrictEnabled() bool { return c.Strict != nil && *c.Strict }

// RecoverEnabled reports whether unreadable snapshots are reset.
func (c Config) RecoverEnabled() bool { return c.RecoverReadErrors != nil && *c.RecoverReadErrors }

// getGlobalConfigPath returns the path to the global config file.
// Uses $XDG_CONFIG_HOME/opcache/config.json if set, otherwise ~/.config/opcache/config.json.
// Returns empty string if home directory cannot be determined.
func getGlobalConfigPath(env map[string]string) string {
	if xdgConfig := env["XDG_CONFIG_HOME"]; xdgConfig != "" {
		return filepath.Join(xdgConfig, "opcache", "config.json")
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", "opcache", "config.json")
	}

	return ""
}

// LoadConfigInput holds the inputs for LoadConfig.
type LoadConfigInput struct {
	WorkDirOverride string            // -C/--cwd flag value; if empty, os.Getwd() is used
	ConfigPath      string            // -c/--config flag value
	Overrides       Config            // flag values; zero fields mean no override
	Env             map[string]string // environment variables
}

// LoadConfig loads configuration with the following precedence (highest wins):
// 1. Defaults
// 2. Global user config (~/.config/opcache/config.json or $XDG_CONFIG_HOME/opcache/config.json)
// 3. Project config file at default location (.opcache.json, if exists)
// 4. Explicit config file via ConfigPath (if non-empty)
// 5. CLI overrides.
//
// The snapshot path in the returned Config is resolved to an absolute path.
func LoadConfig(input LoadConfigInput) (Config, error) {
	workDir := input.WorkDirOverride
	if workDir == "" {
		var err error

		workDir, err = os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("cannot get working directory: %w", err)
		}
	}

	if !filepath.IsAbs(workDir) {
		abs, err := filepath.Abs(workDir)
		if err != nil {
			return Config{}, fmt.Errorf("cannot resolve working directory: %w", err)
		}

		workDir = abs
	}

	cfg := DefaultConfig()

	globalCfg, globalPath, err := loadGlobalConfig(input.Env)
	if err != nil {
		return Config{}, err
	}

	cfg.Sources.Global = globalPath
	cfg = mergeConfig(cfg, globalCfg)

	projectCfg, projectPath, err := loadProjectConfig(workDir, input.ConfigPath)
	if err != nil {
		return Config{}, err
	}

	cfg.Sources.Project = projectPath
	cfg = mergeConfig(cfg, projectCfg)

	cfg = mergeConfig(cfg, input.Overrides)

	err = validateConfig(&cfg)
	if err != nil {
		return Config{}, err
	}

	cfg.EffectiveCwd = workDir

	if filepath.IsAbs(cfg.Path) {
		cfg.PathAbs = filepath.Clean(cfg.Path)
	} else {
		cfg.PathAbs = filepath.Join(workDir, cfg.Path)
	}

	return cfg, nil
}

func loadGlobalConfig(env map[string]string) (Config, string, error) {
	globalCfgPath := getGlobalConfigPath(env)
	if globalCfgPath == "" {
		return Config{}, "", nil
	}

	globalCfg, loaded, err := loadConfigFile(globalCfgPath, false)
	if err != nil {
		return Config{}, "", err
	}

	if !loaded {
		return Config{}, "", nil
	}

	return globalCfg, globalCfgPath, nil
}

// loadProjectConfig loads the project config file (.opcache.json) or an explicit config file.
func loadProjectConfig(workDir, configPath string) (Config, string, error) {
	cfgFile := filepath.Join(workDir, ConfigFileName)
	mustExist := false

	if configPath != "" {
		cfgFile = configPath
		if !filepath.IsAbs(cfgFile) {
			cfgFile = filepath.Join(workDir, cfgFile)
		}

		mustExist = true

		_, statErr := os.Stat(cfgFile)
		if statErr != nil {
			return Config{}, "", fmt.Errorf("%w: %s", ErrConfigFileNotFound, configPath)
		}
	}

	fileCfg, loaded, err := loadConfigFile(cfgFile, mustExist)
	if err != nil {
		return Config{}, "", err
	}

	if !loaded {
		return Config{}, "", nil
	}

	return fileCfg, cfgFile, nil
}

// loadConfigFile loads a config file. If mustExist is false, missing files return zero config.
func loadConfigFile(path string, mustExist bool) (Config, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !mustExist {
			return Config{}, false, nil
		}

		return Config{}, false, fmt.Errorf("%w: %s: %w", ErrConfigFileRead, path, err)
	}

	cfg, parseErr := parseConfig(data)
	if parseErr != nil {
		return Config{}, false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, parseErr)
	}

	return cfg, true, nil
}

func parseConfig(data []byte) (Config, error) {
	// Standardize JSONC to JSON
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	var cfg Config

	unmarshalErr := json.Unmarshal(standardized, &cfg)
	if unmarshalErr != nil {
		return Config{}, fmt.Errorf("invalid JSON: %w", unmarshalErr)
	}

	// An explicit "path": "" is an error, not "use the default".
	var raw map[string]any

	_ = json.Unmarshal(standardized, &raw)

	if val, exists := raw["path"]; exists {
		if str, ok := val.(string); ok && str == "" {
			return Config{}, ErrPathEmpty
		}
	}

	return cfg, nil
}

func mergeConfig(base, overlay Config) Config {
	if overlay.Path != "" {
		base.Path = overlay.Path
	}

	if overlay.Strict != nil {
		base.Strict = overlay.Strict
	}

	if overlay.RecoverReadErrors != nil {
		base.RecoverReadErrors = overlay.RecoverReadErrors
	}

	if overlay.LogLevel != "" {
		base.LogLevel = overlay.LogLevel
	}

	return base
}

func validateConfig(cfg *Config) error {
	if strings.TrimSpace(cfg.Path) == "" {
		return ErrPathEmpty
	}

	err := cfg.Level.UnmarshalText([]byte(cfg.LogLevel))
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, cfg.LogLevel)
	}

	return nil
}

// FormatConfig renders the file-backed fields as JSON.
func FormatConfig(cfg Config) (string, error) {
	out := cfg
	out.Path = cfg.PathAbs

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", fmt.Errorf("format config: %w", err)
	}

	return string(data), nil
}

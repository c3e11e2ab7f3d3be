/*
Package config manages TOML config for weldsplit.
*/
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/bastiangx/weldsplit/internal/utils"
	"github.com/bastiangx/weldsplit/pkg/segment"
	"github.com/charmbracelet/log"
)

// FileName is the config file looked up in the config dir.
const FileName = "weldsplit.toml"

// Config holds the entire config structure
type Config struct {
	Search SearchConfig `toml:"search"`
	Server ServerConfig `toml:"server"`
	CLI    CliConfig    `toml:"cli"`
}

// SearchConfig holds segmentation options.
type SearchConfig struct {
	Mode       string `toml:"mode"`
	MaxSteps   int    `toml:"max_steps"`
	TimeoutMs  int    `toml:"timeout_ms"`
	MaxWeldLen int    `toml:"max_weld_len"`
}

// ServerConfig has IPC server related options.
type ServerConfig struct {
	AllowExhaustive bool `toml:"allow_exhaustive"`
	MaxSteps        int  `toml:"max_steps"`
}

// CliConfig holds cli interface options.
type CliConfig struct {
	ShowIDs bool `toml:"show_ids"`
	Color   bool `toml:"color"`
}

// GetConfigDir returns the config directory with fallback priority:
// 1. ~/.config/weldsplit
// 2. ~/Library/Application Support/weldsplit (macOS)
// 3. Current executable dir
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Errorf("Failed to get home directory: %v", err)
		return utils.GetExecutableDir()
	}
	primaryPath := filepath.Join(homeDir, ".config", "weldsplit")
	if result := utils.CheckDirStatus(primaryPath); result.Writable {
		return primaryPath, nil
	}
	macOSPath := filepath.Join(homeDir, "Library", "Application Support", "weldsplit")
	if result := utils.CheckDirStatus(macOSPath); result.Writable {
		return macOSPath, nil
	}
	execDir, err := utils.GetExecutableDir()
	if err != nil {
		log.Errorf("Failed to get executable directory: %v", err)
		return "", err
	}
	return execDir, nil
}

// GetDefaultConfigPath returns the default path for weldsplit.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, FileName), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from -config flag
// 2. Default path: [UserConfigDir]/weldsplit/weldsplit.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}

	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Search: SearchConfig{
			Mode:       "dp",
			MaxSteps:   0,
			TimeoutMs:  0,
			MaxWeldLen: 4096,
		},
		Server: ServerConfig{
			AllowExhaustive: true,
			MaxSteps:        1_000_000,
		},
		CLI: CliConfig{
			ShowIDs: true,
			Color:   true,
		},
	}
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	return LoadConfig(configPath)
}

// LoadConfig loads from a TOML file. A file that does not fully parse still
// contributes every section that does.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	return config, nil
}

// tryPartialParse attempts to parse a TOML file section by section
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if section, ok := utils.ExtractSection(tempConfig, "search"); ok {
		extractSearchConfig(section, &config.Search)
	}
	if section, ok := utils.ExtractSection(tempConfig, "server"); ok {
		extractServerConfig(section, &config.Server)
	}
	if section, ok := utils.ExtractSection(tempConfig, "cli"); ok {
		extractCliConfig(section, &config.CLI)
	}
	return config, nil
}

func extractSearchConfig(data map[string]any, search *SearchConfig) {
	if val, ok := utils.ExtractString(data, "mode"); ok {
		search.Mode = val
	}
	if val, ok := utils.ExtractInt64(data, "max_steps"); ok {
		search.MaxSteps = val
	}
	if val, ok := utils.ExtractInt64(data, "timeout_ms"); ok {
		search.TimeoutMs = val
	}
	if val, ok := utils.ExtractInt64(data, "max_weld_len"); ok {
		search.MaxWeldLen = val
	}
}

func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractBool(data, "allow_exhaustive"); ok {
		server.AllowExhaustive = val
	}
	if val, ok := utils.ExtractInt64(data, "max_steps"); ok {
		server.MaxSteps = val
	}
}

func extractCliConfig(data map[string]any, cli *CliConfig) {
	if val, ok := utils.ExtractBool(data, "show_ids"); ok {
		cli.ShowIDs = val
	}
	if val, ok := utils.ExtractBool(data, "color"); ok {
		cli.Color = val
	}
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}

// SearchOptions converts the search section into segment options.
func (c *Config) SearchOptions() (segment.Options, error) {
	mode, err := segment.ParseMode(c.Search.Mode)
	if err != nil {
		return segment.Options{}, err
	}
	return segment.Options{
		Mode:     mode,
		MaxSteps: int64(c.Search.MaxSteps),
		Timeout:  time.Duration(c.Search.TimeoutMs) * time.Millisecond,
	}, nil
}

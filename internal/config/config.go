package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultLibraryURL is where the default circuit library is fetched from
	// when no local copy exists.
	DefaultLibraryURL = "https://raw.githubusercontent.com/ilman01/LIP/refs/heads/main/master.circ"

	// DefaultMenuURL is where the default selection menu is fetched from when
	// no local copy exists.
	DefaultMenuURL = "https://raw.githubusercontent.com/ilman01/LIP/refs/heads/main/select_options.json"
)

// Config represents the application configuration
type Config struct {
	Library     string `yaml:"library"`
	LibraryURL  string `yaml:"library_url"`
	Menu        string `yaml:"menu"`
	MenuURL     string `yaml:"menu_url"`
	UnitTag     string `yaml:"unit_tag"`
	JournalPath string `yaml:"journal_path"`
	LogLevel    string `yaml:"log_level"`
	Output      string `yaml:"output"`
}

// Load loads configuration from multiple sources with precedence:
// 1. Environment variables
// 2. ./.env.local (dotenv) - walks up parent directories to find it
// 3. ~/.config/circmerge/config.yaml (YAML)
func Load() (*Config, error) {
	cfg := &Config{
		Library:    "master.circ",
		LibraryURL: DefaultLibraryURL,
		Menu:       "select_options.json",
		MenuURL:    DefaultMenuURL,
		UnitTag:    "circuit",
		LogLevel:   "info",
		Output:     "table",
	}

	// Load .env.local if it exists (walking up parent directories)
	if envPath := findEnvLocal(); envPath != "" {
		_ = godotenv.Load(envPath)
	}

	// YAML config is optional, but a file that exists must parse
	if err := loadYAMLConfig(cfg); err != nil {
		return nil, err
	}

	if library := os.Getenv("CIRCMERGE_LIBRARY"); library != "" {
		cfg.Library = library
	}
	if libraryURL := os.Getenv("CIRCMERGE_LIBRARY_URL"); libraryURL != "" {
		cfg.LibraryURL = libraryURL
	}
	if menu := os.Getenv("CIRCMERGE_MENU"); menu != "" {
		cfg.Menu = menu
	}
	if menuURL := os.Getenv("CIRCMERGE_MENU_URL"); menuURL != "" {
		cfg.MenuURL = menuURL
	}
	if unitTag := os.Getenv("CIRCMERGE_UNIT_TAG"); unitTag != "" {
		cfg.UnitTag = unitTag
	}
	if journal := getEnvOrFile("CIRCMERGE_JOURNAL", "CIRCMERGE_JOURNAL_FILE"); journal != "" {
		cfg.JournalPath = journal
	}
	if logLevel := os.Getenv("CIRCMERGE_LOG_LEVEL"); logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if output := os.Getenv("CIRCMERGE_OUTPUT"); output != "" {
		cfg.Output = output
	}

	cfg.JournalPath = expandHome(cfg.JournalPath)

	return cfg, nil
}

// loadYAMLConfig loads configuration from ~/.config/circmerge/config.yaml.
// A missing home directory or file is not an error.
func loadYAMLConfig(cfg *Config) error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil
	}

	configPath := filepath.Join(homeDir, ".config", "circmerge", "config.yaml")
	data, err := os.ReadFile(configPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", configPath, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", configPath, err)
	}
	return nil
}

// getEnvOrFile gets an environment variable value, or reads it from a file
// if the _FILE variant is set
func getEnvOrFile(envVar, fileVar string) string {
	if val := os.Getenv(envVar); val != "" {
		return val
	}

	if filePath := os.Getenv(fileVar); filePath != "" {
		data, err := os.ReadFile(filePath)
		if err == nil {
			return strings.TrimSpace(string(data))
		}
	}

	return ""
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(homeDir, strings.TrimPrefix(p, "~"))
}

// findEnvLocal searches for .env.local starting from cwd and walking up
// parent directories. Stops at the user's home directory.
// Returns the path to .env.local if found, empty string otherwise.
func findEnvLocal() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// If we can't get home dir, just check cwd
		if _, err := os.Stat(".env.local"); err == nil {
			return ".env.local"
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	// Clean paths for reliable comparison
	homeDir = filepath.Clean(homeDir)
	dir := filepath.Clean(cwd)

	for {
		envPath := filepath.Join(dir, ".env.local")
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}

		// Stop if we've reached home directory
		if dir == homeDir {
			break
		}

		// Get parent directory
		parent := filepath.Dir(dir)

		// Stop if we've reached the filesystem root
		if parent == dir {
			break
		}

		dir = parent
	}

	return ""
}

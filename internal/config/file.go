package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileConfig is the optional YAML file named by LEAGUE_CONFIG_FILE. Environment
// variables take precedence over every value in it.
type FileConfig struct {
	Store     FileStoreConfig     `yaml:"store"`
	GitHub    FileGitHubConfig    `yaml:"github"`
	Directory FileDirectoryConfig `yaml:"directory"`
}

type FileStoreConfig struct {
	Kind     string `yaml:"kind"`
	FilePath string `yaml:"file_path"`
	LeagueID string `yaml:"league_id"`
}

type FileGitHubConfig struct {
	Repo   string `yaml:"repo"`
	Branch string `yaml:"branch"`
	APIURL string `yaml:"api_url"`
}

type FileDirectoryConfig struct {
	BaseURL string `yaml:"base_url"`
	// Members maps account usernames to display names.
	Members map[string]string `yaml:"members"`
}

// LoadFile reads a YAML config file. An empty path yields an empty config.
func LoadFile(path string) (FileConfig, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return FileConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return FileConfig{}, fmt.Errorf("read config file %s: %w", path, err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("parse config file %s: %w", path, err)
	}

	members := make(map[string]string, len(cfg.Directory.Members))
	for username, display := range cfg.Directory.Members {
		username = strings.TrimSpace(username)
		if username == "" {
			return FileConfig{}, fmt.Errorf("parse config file %s: directory member with empty username", path)
		}
		members[username] = strings.TrimSpace(display)
	}
	cfg.Directory.Members = members

	return cfg, nil
}

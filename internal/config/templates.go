package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# Bargain Hunt simulator configuration

# Master seed for play and balance runs
seed = 1
# Optional economy document (JSON, TOML or YAML); relative to this directory
economy_path = ""

[show]
items_per_team = 3
starting_budget = 300.0
# Reserved for the expert's leftover purchase until the quota is met
expert_min_budget = 1.0
market_seconds = 35.0
play_width = 740.0
play_height = 700.0
teams = 2

[market]
team_speed = 160.0
buy_radius = 28.0
pace_multiplier = 0.55
# Base chance of walking back to a previously considered item
backtrack_probability = 0.18
buy_decision_seconds = [1.2, 3.4]
expert_chat_probability = 0.35
expert_chat_seconds = [2.0, 4.5]
stall_cooldown = 3.0
reroute_cooldown = 2.5
considered_cap = 6
min_expected_price = 12.0

[experts]
# Leave empty to use the generated roster
roster_path = ""
roster_size = 10
roster_seed = 2024
regen_allowed = true
force_regen = false
effect_strength = 1.0

[items]
# Item source: synthetic, default, generated, combined
source = "synthetic"
default_path = ""
generated_path = ""

[logging]
level = "info"
console = true
file = false
file_path = ""
max_size_mb = 50
max_backups = 5
max_age_days = 14

[store]
# SQLite database for balance run history; empty uses the config directory
path = ""
`

func createTemplateConfig(configDir, name string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, name+".toml")
	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}

	return nil
}

// WriteTemplate writes the commented config template into configDir. An
// existing file is kept unless force is set.
func WriteTemplate(configDir string, force bool) (string, error) {
	path := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(path); err == nil && !force {
		return path, fmt.Errorf("%s already exists", path)
	}
	return path, createTemplateConfig(configDir, "config")
}

// DefaultStorePath returns the run-history database path for a config.
func (c *Config) DefaultStorePath(configDir string) string {
	if c.Store.Path != "" {
		return c.Store.Path
	}
	if configDir == "" {
		configDir = DefaultConfigDir()
	}
	return filepath.Join(configDir, "history.db")
}

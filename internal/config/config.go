// Package config provides configuration management for the simulator.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/viper"

	apperrors "bargain-hunt/internal/errors"
)

// Config holds all application configuration.
type Config struct {
	Show        ShowConfig     `mapstructure:"show"`
	Market      MarketConfig   `mapstructure:"market"`
	Experts     ExpertsConfig  `mapstructure:"experts"`
	Items       ItemsConfig    `mapstructure:"items"`
	Logging     LoggingConfig  `mapstructure:"logging"`
	Store       StoreConfig    `mapstructure:"store"`
	Seed        int64          `mapstructure:"seed"`
	EconomyPath string         `mapstructure:"economy_path"`
	Economy     *BalanceConfig `mapstructure:"-"` // Loaded separately
}

// ShowConfig holds the rules of one episode.
type ShowConfig struct {
	ItemsPerTeam    int     `mapstructure:"items_per_team"`
	StartingBudget  float64 `mapstructure:"starting_budget"`
	ExpertMinBudget float64 `mapstructure:"expert_min_budget"`
	MarketSeconds   float64 `mapstructure:"market_seconds"`
	PlayWidth       float64 `mapstructure:"play_width"`
	PlayHeight      float64 `mapstructure:"play_height"`
	Teams           int     `mapstructure:"teams"`
}

// MarketConfig holds the pacing of the market-phase AI.
type MarketConfig struct {
	TeamSpeed             float64    `mapstructure:"team_speed"`
	BuyRadius             float64    `mapstructure:"buy_radius"`
	PaceMultiplier        float64    `mapstructure:"pace_multiplier"`
	BacktrackProbability  float64    `mapstructure:"backtrack_probability"`
	BuyDecisionSeconds    FloatRange `mapstructure:"buy_decision_seconds"`
	ExpertChatProbability float64    `mapstructure:"expert_chat_probability"`
	ExpertChatSeconds     FloatRange `mapstructure:"expert_chat_seconds"`
	StallCooldown         float64    `mapstructure:"stall_cooldown"`
	RerouteCooldown       float64    `mapstructure:"reroute_cooldown"`
	ConsideredCap         int        `mapstructure:"considered_cap"`
	MinExpectedPrice      float64    `mapstructure:"min_expected_price"`
}

// ExpertsConfig controls roster loading and expert influence.
type ExpertsConfig struct {
	RosterPath     string  `mapstructure:"roster_path"`
	RosterSize     int     `mapstructure:"roster_size"`
	RosterSeed     int64   `mapstructure:"roster_seed"`
	RegenAllowed   bool    `mapstructure:"regen_allowed"`
	ForceRegen     bool    `mapstructure:"force_regen"`
	EffectStrength float64 `mapstructure:"effect_strength"`
}

// ItemsConfig selects the item template source.
type ItemsConfig struct {
	Source        string `mapstructure:"source"` // default, generated, combined, synthetic
	DefaultPath   string `mapstructure:"default_path"`
	GeneratedPath string `mapstructure:"generated_path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Console    bool   `mapstructure:"console"`
	File       bool   `mapstructure:"file"`
	FilePath   string `mapstructure:"file_path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// StoreConfig holds run-history storage configuration.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// Item sources.
const (
	SourceDefault   = "default"
	SourceGenerated = "generated"
	SourceCombined  = "combined"
	SourceSynthetic = "synthetic"
)

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/bargain-hunt"
	}
	return filepath.Join(home, ".config", "bargain-hunt")
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Show: ShowConfig{
			ItemsPerTeam:    3,
			StartingBudget:  300,
			ExpertMinBudget: 1.0,
			MarketSeconds:   35,
			PlayWidth:       740,
			PlayHeight:      700,
			Teams:           2,
		},
		Market: MarketConfig{
			TeamSpeed:             160,
			BuyRadius:             28,
			PaceMultiplier:        0.55,
			BacktrackProbability:  0.18,
			BuyDecisionSeconds:    FloatRange{1.2, 3.4},
			ExpertChatProbability: 0.35,
			ExpertChatSeconds:     FloatRange{2.0, 4.5},
			StallCooldown:         3.0,
			RerouteCooldown:       2.5,
			ConsideredCap:         6,
			MinExpectedPrice:      12,
		},
		Experts: ExpertsConfig{
			RosterSize:     10,
			RosterSeed:     2024,
			RegenAllowed:   true,
			EffectStrength: 1.0,
		},
		Items: ItemsConfig{
			Source: SourceSynthetic,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Console:    true,
			MaxSizeMB:  50,
			MaxBackups: 5,
			MaxAgeDays: 14,
		},
		Seed:    1,
		Economy: DefaultBalanceConfig(),
	}
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := Default()

	if err := loadConfigFile(configDir, "config", cfg); err != nil {
		return nil, fmt.Errorf("loading config.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if cfg.EconomyPath != "" {
		path := cfg.EconomyPath
		if !filepath.IsAbs(path) {
			path = filepath.Join(configDir, path)
		}
		econ, err := LoadBalance(path)
		if err != nil {
			return nil, fmt.Errorf("loading economy: %w", err)
		}
		cfg.Economy = econ
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func loadConfigFile(configDir, name string, target *Config) error {
	v := viper.New()
	v.SetConfigName(name)
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found, create template and keep defaults
			return createTemplateConfig(configDir, name)
		}
		return apperrors.NewConfigError(filepath.Join(configDir, name+".toml"), "", err)
	}

	return v.Unmarshal(target)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("BARGAIN_HUNT_SEED"); v != "" {
		if seed, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Seed = seed
		}
	}
	if v := os.Getenv("BARGAIN_HUNT_ITEM_SOURCE"); v != "" {
		cfg.Items.Source = v
	}
	if v := os.Getenv("BARGAIN_HUNT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("BARGAIN_HUNT_ECONOMY"); v != "" {
		cfg.EconomyPath = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Show.ItemsPerTeam <= 0 {
		return apperrors.InvalidField("show.items_per_team", "must be positive, got %d", c.Show.ItemsPerTeam)
	}
	if c.Show.StartingBudget <= 0 {
		return apperrors.InvalidField("show.starting_budget", "must be positive, got %.2f", c.Show.StartingBudget)
	}
	if c.Show.ExpertMinBudget < 0 || c.Show.ExpertMinBudget >= c.Show.StartingBudget {
		return apperrors.InvalidField("show.expert_min_budget", "must be in [0, starting_budget), got %.2f", c.Show.ExpertMinBudget)
	}
	if c.Show.MarketSeconds <= 0 {
		return apperrors.InvalidField("show.market_seconds", "must be positive")
	}
	if c.Show.Teams < 1 {
		return apperrors.InvalidField("show.teams", "need at least one team")
	}

	if c.Market.TeamSpeed < 0 || c.Market.PaceMultiplier < 0 {
		return apperrors.InvalidField("market.team_speed", "speed and pace must be non-negative")
	}
	if c.Market.BuyRadius <= 0 {
		return apperrors.InvalidField("market.buy_radius", "must be positive")
	}
	if err := checkProbability("market.backtrack_probability", c.Market.BacktrackProbability); err != nil {
		return err
	}
	if err := checkProbability("market.expert_chat_probability", c.Market.ExpertChatProbability); err != nil {
		return err
	}
	if err := c.Market.BuyDecisionSeconds.check("market.buy_decision_seconds"); err != nil {
		return err
	}
	if err := c.Market.ExpertChatSeconds.check("market.expert_chat_seconds"); err != nil {
		return err
	}
	if c.Market.ConsideredCap < 1 {
		return apperrors.InvalidField("market.considered_cap", "must be at least 1")
	}

	if c.Experts.RosterSize < 1 {
		return apperrors.InvalidField("experts.roster_size", "must be at least 1")
	}
	if c.Experts.EffectStrength < 0 {
		return apperrors.InvalidField("experts.effect_strength", "must be non-negative")
	}

	switch c.Items.Source {
	case SourceDefault, SourceGenerated, SourceCombined, SourceSynthetic:
	default:
		return apperrors.NewConfigError("", "items.source", fmt.Errorf("%q: %w", c.Items.Source, apperrors.ErrUnknownItemSource))
	}

	if c.Economy == nil {
		return apperrors.InvalidField("economy", "not loaded")
	}
	return c.Economy.Validate()
}

func checkProbability(field string, p float64) error {
	if p < 0 || p > 1 {
		return apperrors.InvalidField(field, "must be in [0, 1], got %.3f", p)
	}
	return nil
}

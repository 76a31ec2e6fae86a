package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"bargain-hunt/internal/config"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and manage the show rules and economy tuning.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			showConfig(output, app.Config)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(map[string]string{"path": app.ConfigDir})
			}
			output.Println(app.ConfigDir)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]bool{"valid": true})
			}
			output.Success("✓ Configuration is valid")
			return nil
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a commented config.toml template",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			path, err := config.WriteTemplate(app.ConfigDir, force)
			if err != nil {
				output.Warning("%v (use --force to overwrite)", err)
				return nil
			}
			output.Success("✓ Wrote %s", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config.toml")
	cmd.AddCommand(initCmd)

	var preset string
	economyCmd := &cobra.Command{
		Use:   "economy <file>",
		Short: "Write the economy tuning to a JSON, TOML or YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			econ := app.Config.Economy
			if preset != "" {
				var err error
				if econ, err = config.Preset(preset); err != nil {
					return err
				}
			}
			path := args[0]
			if !filepath.IsAbs(path) && filepath.Dir(path) == "." {
				path = filepath.Join(app.ConfigDir, path)
			}
			if err := config.SaveBalance(econ, path); err != nil {
				return err
			}
			output.Success("✓ Economy written to %s", path)
			output.Dim("Point economy_path in config.toml at it to use it.")
			return nil
		},
	}
	economyCmd.Flags().StringVar(&preset, "preset", "", "write a preset (default, realistic) instead of the active economy")
	cmd.AddCommand(economyCmd)

	return cmd
}

func showConfig(output *Output, cfg *config.Config) {
	output.Bold("Show")
	output.Printf("  Teams:             %d\n", cfg.Show.Teams)
	output.Printf("  Items per team:    %d\n", cfg.Show.ItemsPerTeam)
	output.Printf("  Starting budget:   %s\n", FormatMoney(cfg.Show.StartingBudget))
	output.Printf("  Expert reserve:    %s\n", FormatMoney(cfg.Show.ExpertMinBudget))
	output.Printf("  Market time:       %.0fs\n", cfg.Show.MarketSeconds)
	output.Println()

	output.Bold("Market AI")
	output.Printf("  Team speed:        %.0f (pace x%.2f)\n", cfg.Market.TeamSpeed, cfg.Market.PaceMultiplier)
	output.Printf("  Buy radius:        %.0f\n", cfg.Market.BuyRadius)
	output.Printf("  Backtrack chance:  %s\n", FormatRate(cfg.Market.BacktrackProbability))
	output.Printf("  Expert chat:       %s for %.1f-%.1fs\n", FormatRate(cfg.Market.ExpertChatProbability),
		cfg.Market.ExpertChatSeconds.Lo(), cfg.Market.ExpertChatSeconds.Hi())
	output.Printf("  Decision time:     %.1f-%.1fs\n", cfg.Market.BuyDecisionSeconds.Lo(), cfg.Market.BuyDecisionSeconds.Hi())
	output.Println()

	output.Bold("Experts")
	path := cfg.Experts.RosterPath
	if path == "" {
		path = "(generated in memory)"
	}
	output.Printf("  Roster:            %s\n", path)
	output.Printf("  Roster size:       %d\n", cfg.Experts.RosterSize)
	output.Printf("  Effect strength:   %.2f\n", cfg.Experts.EffectStrength)
	output.Println()

	output.Bold("Economy")
	econ := cfg.Economy
	output.Printf("  Version:           %d\n", econ.Version)
	output.Printf("  Fair pricing:      %.2f-%.2f of value\n", econ.ShopPricing.Fair.Lo(), econ.ShopPricing.Fair.Hi())
	output.Printf("  Haggle chance:     %s (max %s)\n", FormatRate(econ.Negotiation.BaseChance), FormatRate(econ.Negotiation.MaxChance))
	output.Printf("  Auction clamp:     x%.2f\n", econ.AuctionHouse.ClampMultiplier)
	output.Printf("  Gavel threshold:   %s\n", FormatMoney(econ.Gavel.ProfitThreshold))
	output.Println()

	output.Bold("Items")
	output.Printf("  Source:            %s\n", cfg.Items.Source)
}

package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"bargain-hunt/internal/agents"
	"bargain-hunt/internal/catalog"
	"bargain-hunt/internal/config"
	"bargain-hunt/internal/logging"
	"bargain-hunt/internal/store"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2024-06-01"
)

// App holds the application dependencies. Config and logger are loaded
// before any command runs; the store opens on first use.
type App struct {
	ConfigDir string
	Config    *config.Config
	Logger    zerolog.Logger
	Store     store.RunStore

	logOut io.Writer
}

// NewRootCmd creates the root command for the CLI. Logs go to logOut,
// which defaults to stderr.
func NewRootCmd(logOut io.Writer) *cobra.Command {
	if logOut == nil {
		logOut = os.Stderr
	}
	app := &App{Logger: zerolog.Nop(), logOut: logOut}

	rootCmd := &cobra.Command{
		Use:   "bargainhunt",
		Short: "Bargain Hunt - antiques game show simulator",
		Long: `Bargain Hunt simulates a televised antiques game show.

Two teams shop a market against the clock, hand their leftover money to an
expert for a bonus buy, and everything goes under the hammer. The team with
the best profit wins.

Use 'bargainhunt play' to watch one episode and 'bargainhunt balance' to run
seeded batches for tuning the economy.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.load(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if app.Store != nil {
				return app.Store.Close()
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/bargain-hunt)")
	rootCmd.PersistentFlags().String("economy", "", "economy file or preset (default, realistic)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
	rootCmd.AddCommand(newPlayCmd(app))
	rootCmd.AddCommand(newBalanceCmd(app))
	rootCmd.AddCommand(newHistoryCmd(app))
	rootCmd.AddCommand(newExpertsCmd(app))
	rootCmd.AddCommand(newItemsCmd(app))

	return rootCmd
}

func (a *App) load(cmd *cobra.Command) error {
	dir, _ := cmd.Flags().GetString("config")
	if dir == "" {
		dir = config.DefaultConfigDir()
	}
	cfg, err := config.Load(dir)
	if err != nil {
		return err
	}

	if econ, _ := cmd.Flags().GetString("economy"); econ != "" {
		if cfg.Economy, err = loadEconomy(econ); err != nil {
			return err
		}
	}

	debug, _ := cmd.Flags().GetBool("debug")
	if debug {
		cfg.Logging.Level = "debug"
	}

	a.ConfigDir = dir
	a.Config = cfg
	a.Logger = logging.NewLoggerWithConfig(logging.LogConfig{
		Level:      cfg.Logging.Level,
		Console:    cfg.Logging.Console,
		File:       cfg.Logging.File,
		FilePath:   cfg.Logging.FilePath,
		MaxSize:    cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAge:     cfg.Logging.MaxAgeDays,
		Out:        a.logOut,
	})
	a.Logger.Debug().Str("config_dir", dir).Msg("Configuration loaded")
	return nil
}

// loadEconomy resolves a preset name or an economy file.
func loadEconomy(nameOrPath string) (*config.BalanceConfig, error) {
	if _, err := os.Stat(nameOrPath); err == nil {
		return config.LoadBalance(nameOrPath)
	}
	return config.Preset(nameOrPath)
}

// openStore opens the run-history database on first use.
func (a *App) openStore() (store.RunStore, error) {
	if a.Store != nil {
		return a.Store, nil
	}
	path := a.Config.DefaultStorePath(a.ConfigDir)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	s, err := store.NewSQLiteStore(path)
	if err != nil {
		return nil, err
	}
	a.Logger.Debug().Str("path", path).Msg("SQLite store initialized")
	a.Store = s
	return s, nil
}

func (a *App) roster() ([]agents.ExpertProfile, error) {
	return agents.LoadRosterFromConfig(a.Config.Experts)
}

func (a *App) factory() (*catalog.Factory, error) {
	return catalog.FactoryFromConfig(a.Config.Items, a.Config.Economy)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			}
			output.Printf("Bargain Hunt v%s\n", Version)
			output.Dim("Build date: %s", BuildDate)
			return nil
		},
	}
}

package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"bargain-hunt/internal/balance"
	"bargain-hunt/internal/store"
)

func newHistoryCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse recorded balance runs",
		Long:  "List, inspect, export and delete balance runs recorded in the history database.",
	}

	cmd.AddCommand(newHistoryListCmd(app))
	cmd.AddCommand(newHistoryShowCmd(app))
	cmd.AddCommand(newHistoryExportCmd(app))
	cmd.AddCommand(newHistoryDeleteCmd(app))
	return cmd
}

func newHistoryListCmd(app *App) *cobra.Command {
	var (
		filter store.RunFilter
		days   int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			s, err := app.openStore()
			if err != nil {
				return err
			}
			if days > 0 {
				filter.Since = time.Now().UTC().AddDate(0, 0, -days)
			}
			runs, err := s.ListRuns(ctx, filter)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				type item struct {
					ID             string    `json:"id"`
					CreatedAt      time.Time `json:"created_at"`
					Seed           int64     `json:"seed"`
					Runs           int       `json:"runs"`
					PricingStyle   string    `json:"pricing_style"`
					Mode           string    `json:"mode"`
					TeamProfitMean float64   `json:"team_profit_mean"`
					GavelRate      float64   `json:"gavel_rate"`
				}
				out := make([]item, len(runs))
				for i, r := range runs {
					out[i] = item{r.ID, r.CreatedAt, r.Seed, r.Runs, r.PricingStyle, r.Mode, r.TeamProfitMean, r.GavelRate}
				}
				return output.JSON(out)
			}

			if len(runs) == 0 {
				output.Info("No balance runs recorded yet.")
				output.Dim("Tip: 'bargainhunt balance' records every batch it runs.")
				return nil
			}

			table := NewTable(output, "ID", "When", "Mode", "Style", "Seed", "Runs", "Team profit", "Gavel")
			for _, r := range runs {
				table.AddRow(
					ShortID(r.ID),
					FormatDateTime(r.CreatedAt),
					r.Mode,
					r.PricingStyle,
					FormatSeed(r.Seed),
					FormatCount(r.Runs),
					output.FormatProfit(r.TeamProfitMean),
					FormatRate(r.GavelRate),
				)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&filter.Mode, "mode", "", "only runs in this mode")
	cmd.Flags().StringVar(&filter.PricingStyle, "style", "", "only runs with this pricing style")
	cmd.Flags().IntVar(&days, "days", 0, "only runs from the last N days")
	cmd.Flags().IntVarP(&filter.Limit, "limit", "l", 20, "maximum number of runs")
	return cmd
}

// findRun resolves a full id or a unique prefix.
func findRun(ctx context.Context, s store.RunStore, id string) (*store.RunRecord, error) {
	if r, err := s.GetRun(ctx, id); err == nil {
		return r, nil
	}
	runs, err := s.ListRuns(ctx, store.RunFilter{})
	if err != nil {
		return nil, err
	}
	var match *store.RunRecord
	for i := range runs {
		if len(runs[i].ID) >= len(id) && runs[i].ID[:len(id)] == id {
			if match != nil {
				return nil, errAmbiguous(id)
			}
			match = &runs[i]
		}
	}
	if match == nil {
		return s.GetRun(ctx, id)
	}
	return match, nil
}

func newHistoryShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show the report of a recorded run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx := context.Background()

			s, err := app.openStore()
			if err != nil {
				return err
			}
			rec, err := findRun(ctx, s, args[0])
			if err != nil {
				return err
			}
			rep, err := rec.Report()
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(rep)
			}
			output.Dim("Run %s recorded %s", rec.ID, FormatDateTime(rec.CreatedAt))
			output.Println()
			printReport(output, rep)
			return nil
		},
	}
}

func newHistoryExportCmd(app *App) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Export a recorded run's rows as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx := context.Background()

			s, err := app.openStore()
			if err != nil {
				return err
			}
			rec, err := findRun(ctx, s, args[0])
			if err != nil {
				return err
			}
			rows, err := s.GetRunRows(ctx, rec.ID)
			if err != nil {
				return err
			}

			if outPath == "" {
				return balance.WriteCSV(output.Writer(), rows)
			}
			if err := balance.SaveCSV(rows, outPath); err != nil {
				return err
			}
			output.Success("✓ %d rows written to %s", len(rows), outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "output", "o", "", "write to a file instead of stdout")
	return cmd
}

func newHistoryDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a recorded run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx := context.Background()

			s, err := app.openStore()
			if err != nil {
				return err
			}
			rec, err := findRun(ctx, s, args[0])
			if err != nil {
				return err
			}
			if err := s.DeleteRun(ctx, rec.ID); err != nil {
				return err
			}
			output.Success("✓ Deleted run %s", ShortID(rec.ID))
			return nil
		},
	}
}

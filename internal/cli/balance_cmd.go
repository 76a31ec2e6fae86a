package cli

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"bargain-hunt/internal/analysis"
	"bargain-hunt/internal/balance"
	"bargain-hunt/internal/logging"
	"bargain-hunt/internal/store"
	"bargain-hunt/pkg/utils"
)

func newBalanceCmd(app *App) *cobra.Command {
	var (
		runs       int
		seed       int64
		style      string
		items      int
		mode       string
		workers    int
		step       float64
		csvPath    string
		reportPath string
		noSave     bool
	)

	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Run a seeded batch of episodes and report the economics",
		Long: `Run a batch of seeded episodes headlessly and summarise profits, appraisal
and auction ratios, haggling, golden gavels and auction moods.

Quick mode prices, haggles, appraises and sells a fixed number of items per
team. Full mode plays every episode end to end with the market AI.`,
		Example: `  bargainhunt balance --runs 500 --style overpriced
  bargainhunt balance --mode full --runs 50 --csv out/rows.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			m, err := balance.ParseMode(mode)
			if err != nil {
				return err
			}
			opts := balance.DefaultOptions(app.Config)
			opts.Runs = runs
			opts.Seed = seed
			opts.PricingStyle = style
			opts.Mode = m
			opts.Workers = workers
			opts.StepSeconds = step
			if items > 0 {
				opts.ItemsPerTeam = items
			}

			ctx, stop := signal.NotifyContext(logging.WithLogger(context.Background(), app.Logger), os.Interrupt)
			defer stop()

			start := time.Now()
			res, err := balance.Run(ctx, opts)
			if err != nil {
				return err
			}
			took := time.Since(start)

			if csvPath != "" {
				if err := balance.SaveCSV(res.Rows(), csvPath); err != nil {
					return err
				}
			}
			if reportPath != "" {
				if err := balance.SaveReport(res.Report, reportPath); err != nil {
					return err
				}
			}

			var runID string
			if !noSave {
				runID, err = saveRun(ctx, app, res)
				if err != nil {
					app.Logger.Warn().Err(err).Msg("Failed to record run history")
				}
			}

			if output.IsJSON() {
				return output.JSON(res.Report)
			}
			printReport(output, res.Report)
			output.Println()
			output.Dim("%d runs in %s", runs, FormatDuration(took))
			if csvPath != "" {
				output.Dim("Rows written to %s", csvPath)
			}
			if reportPath != "" {
				output.Dim("Report written to %s", reportPath)
			}
			if runID != "" {
				output.Dim("Saved as run %s", ShortID(runID))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&runs, "runs", "n", 100, "number of episodes")
	cmd.Flags().Int64Var(&seed, "seed", 42, "master seed")
	cmd.Flags().StringVar(&style, "style", "fair", "shop pricing style (fair, overpriced, chaotic; mixed in full mode)")
	cmd.Flags().IntVar(&items, "items", 0, "items per team (default: show rules)")
	cmd.Flags().StringVar(&mode, "mode", string(balance.ModeQuick), "quick or full")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "parallel workers (default: CPU count)")
	cmd.Flags().Float64Var(&step, "step", 0.1, "full mode simulation step in seconds")
	cmd.Flags().StringVar(&csvPath, "csv", "", "write per-team rows to this CSV file")
	cmd.Flags().StringVar(&reportPath, "report", "", "write the JSON report to this file")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not record the run in history")
	return cmd
}

func saveRun(ctx context.Context, app *App, res *balance.Result) (string, error) {
	s, err := app.openStore()
	if err != nil {
		return "", err
	}
	rec, err := store.NewRunRecord(res)
	if err != nil {
		return "", err
	}
	if err := s.SaveRun(ctx, rec, res.Rows()); err != nil {
		return "", err
	}
	return rec.ID, nil
}

func printReport(output *Output, r *balance.Report) {
	output.Bold("Balance report")
	output.Printf("  Seed %d · %s pricing · %s mode · %d runs · %d items per team\n",
		r.Meta.Seed, r.Meta.PricingStyle, r.Meta.Mode, r.Meta.Runs, r.Meta.ItemsPerTeam)
	output.Println()

	table := NewTable(output, "Metric", "Count", "Mean", "Std", "P10", "Median", "P90", "Pos", "Neg")
	addDist := func(name string, d analysis.Distribution, f func(float64) string) {
		table.AddRow(name, strconv.Itoa(d.Count), f(d.Mean), f(d.StdEst), f(d.P10), f(d.Median), f(d.P90),
			FormatRate(d.PctPos), FormatRate(d.PctNeg))
	}
	addDist("Item profit", r.Profit.Item, FormatProfit)
	addDist("Team profit", r.Profit.Team, FormatProfit)
	addDist("Appraisal / paid", r.AppraisalRatio, utils.FormatRatio)
	addDist("Sold / paid", r.AuctionRatio, utils.FormatRatio)
	addDist("Haggle discount", r.Negotiation.Discounts, FormatRatioValue)
	table.Render()
	output.Println()

	output.Printf("  Haggle success:  %s\n", FormatRate(r.Negotiation.SuccessRate))
	output.Printf("  Golden gavels:   %d of %d (%s)\n", r.Gavel.Awards, r.Gavel.Eligible, FormatRate(r.Gavel.Rate))
	output.Printf("  Moods:          ")
	for _, m := range r.MoodNames() {
		output.Printf(" %s=%d", m, r.Moods[m])
	}
	output.Println()
}

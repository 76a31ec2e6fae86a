package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"bargain-hunt/internal/agents"
	"bargain-hunt/internal/config"
	"bargain-hunt/internal/episode"
	apperrors "bargain-hunt/internal/errors"
	"bargain-hunt/internal/logging"
	"bargain-hunt/internal/models"
)

// playSummary is the JSON form of a finished episode.
type playSummary struct {
	Seed       int64                `json:"seed"`
	Mood       string               `json:"mood"`
	Auctioneer string               `json:"auctioneer"`
	Winner     string               `json:"winner"`
	Teams      []playTeam           `json:"teams"`
	Results    []models.RoundResult `json:"results"`
}

type playTeam struct {
	Name        string  `json:"name"`
	Color       string  `json:"color"`
	Expert      string  `json:"expert"`
	Strategy    string  `json:"strategy"`
	SpendPlan   string  `json:"spend_plan"`
	Spent       float64 `json:"spent"`
	Revenue     float64 `json:"revenue"`
	Profit      float64 `json:"profit"`
	GoldenGavel bool    `json:"golden_gavel"`
	ExpertPick  string  `json:"expert_pick,omitempty"`
	PickChoice  string  `json:"pick_choice"`
}

func newPlayCmd(app *App) *cobra.Command {
	var (
		seed        int64
		step        float64
		expertPicks string
		style       string
	)

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play one episode and show the results",
		Long: `Play one complete episode headlessly: market, expert handoff, appraisal,
both auctions and the results. The same seed always plays the same show.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if !cmd.Flags().Changed("seed") {
				seed = app.Config.Seed
			}

			var decide *bool
			switch expertPicks {
			case "auto":
			case "include", "exclude":
				v := expertPicks == "include"
				decide = &v
			default:
				return fmt.Errorf("--expert-picks must be auto, include or exclude, got %q: %w", expertPicks, apperrors.ErrInputValidation)
			}

			switch style {
			case config.StyleFair, config.StyleOverpriced, config.StyleChaotic, config.StyleMixed:
			default:
				return apperrors.InvalidField("style", "must be fair, overpriced, chaotic or mixed, got %q", style)
			}

			roster, err := app.roster()
			if err != nil {
				return err
			}
			factory, err := app.factory()
			if err != nil {
				return err
			}

			opts := episode.OptionsFromConfig(app.Config, seed)
			opts.Roster = roster
			opts.Factory = factory
			opts.PricingStyle = style
			opts.Logger = &app.Logger

			ep := episode.New(opts)
			if err := ep.Setup(); err != nil {
				return err
			}
			show := episode.NewShow(ep)
			if decide != nil {
				for i := range ep.Teams {
					show.Decide(i, *decide)
				}
			}

			ctx := logging.WithLogger(context.Background(), app.Logger)
			start := time.Now()
			if err := show.Run(ctx, step); err != nil {
				return err
			}
			app.Logger.Debug().Dur("took", time.Since(start)).Msg("Episode finished")

			if output.IsJSON() {
				return output.JSON(summarize(ep))
			}
			printEpisode(output, ep)
			return nil
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 0, "episode seed (default: config seed)")
	cmd.Flags().Float64Var(&step, "step", 0.1, "simulation step in seconds")
	cmd.Flags().StringVar(&expertPicks, "expert-picks", "auto", "expert pick reveal: auto, include or exclude")
	cmd.Flags().StringVar(&style, "style", config.StyleMixed, "stall pricing style: fair, overpriced, chaotic or mixed")
	return cmd
}

func strategyName(t *agents.Team) string {
	if t.Strategy == nil {
		return "-"
	}
	return t.Strategy.Name()
}

func expertName(t *agents.Team) string {
	if t.Expert == nil {
		return "-"
	}
	return t.Expert.Name()
}

func planName(t *agents.Team) string {
	if t.SpendPlan == nil {
		return "-"
	}
	return string(t.SpendPlan.Name)
}

func summarize(ep *episode.Episode) playSummary {
	s := playSummary{
		Seed:       ep.Seed,
		Mood:       ep.House.Mood,
		Auctioneer: ep.Auctioneer.Name,
		Results:    ep.Results,
	}
	if ep.Winner != nil {
		s.Winner = ep.Winner.Name
	}
	for _, t := range ep.Teams {
		pt := playTeam{
			Name:        t.Name,
			Color:       t.Color,
			Expert:      expertName(t),
			Strategy:    strategyName(t),
			SpendPlan:   planName(t),
			Spent:       t.Spend,
			Revenue:     t.Revenue,
			Profit:      t.Profit,
			GoldenGavel: t.GoldenGavel,
			PickChoice:  t.ExpertPickIncluded.String(),
		}
		if t.ExpertPickItem != nil {
			pt.ExpertPick = t.ExpertPickItem.Name
		}
		s.Teams = append(s.Teams, pt)
	}
	return s
}

func printEpisode(output *Output, ep *episode.Episode) {
	output.Bold("Episode %d", ep.Seed)
	output.Printf("  Auctioneer: %s   Room mood: %s\n", ep.Auctioneer.Name, ep.House.Mood)
	output.Println()

	for _, t := range ep.Teams {
		output.Printf("%s  %s\n", output.TeamColor(t.Name+" team", t.Color),
			output.DimText(fmt.Sprintf("%s · expert %s · %s · %s", t.Relationship, expertName(t), strategyName(t), planName(t))))

		table := NewTable(output, "Item", "Category", "Paid", "Appraised", "Sold", "Profit")
		for _, it := range t.TeamItems() {
			table.AddRow(
				TruncateString(it.Name, 32),
				it.Category,
				FormatMoney(it.ShopPrice),
				FormatMoney(it.AppraisedValue),
				FormatMoney(it.AuctionPrice),
				output.FormatProfit(it.Profit()),
			)
		}
		table.Render()

		if pick := t.ExpertPickItem; pick != nil {
			line := fmt.Sprintf("  Expert pick: %s for %s (%s)", pick.Name, FormatMoney(pick.ShopPrice), t.ExpertPickIncluded)
			if t.ExpertPickIncluded == agents.PickIncluded {
				line += fmt.Sprintf(", sold for %s", FormatMoney(pick.AuctionPrice))
			}
			output.Println(line)
		} else {
			output.Dim("  No expert pick")
		}
		output.Println()
	}

	output.Bold("Results")
	table := NewTable(output, "Team", "Spent", "Sold", "Profit", "ROI", "Gavel")
	for i, r := range ep.Results {
		t := ep.Teams[i]
		gavel := ""
		if t.GoldenGavel {
			gavel = output.Yellow("★")
		}
		table.AddRow(
			output.TeamColor(t.Name, t.Color),
			FormatMoney(r.SpentTotal),
			FormatMoney(r.SoldTotal),
			output.FormatProfit(r.Profit),
			FormatPercent(r.ROI),
			gavel,
		)
	}
	table.Render()
	output.Println()

	if ep.Winner != nil {
		output.Success("Winner: %s team with %s", ep.Winner.Name, FormatProfit(ep.Winner.Profit))
	}
}

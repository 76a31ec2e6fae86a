package cli

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"bargain-hunt/internal/agents"
	apperrors "bargain-hunt/internal/errors"
)

func newExpertsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "experts",
		Short: "Inspect and regenerate the expert roster",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the expert roster",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			roster, err := app.roster()
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(roster)
			}

			table := NewTable(output, "ID", "Name", "Specialty", "Style", "Accuracy", "Haggling", "Risk", "Trust")
			for _, p := range roster {
				table.AddRow(
					p.ID,
					p.FullName,
					p.Specialty,
					p.SignatureStyle,
					fmt.Sprintf("%.2f", p.AppraisalAccuracy),
					fmt.Sprintf("%.2f", p.NegotiationSkill),
					fmt.Sprintf("%.2f", p.RiskAppetite),
					fmt.Sprintf("%.2f", p.TrustFactor),
				)
			}
			table.Render()
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Show one expert profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			roster, err := app.roster()
			if err != nil {
				return err
			}
			for _, p := range roster {
				if p.ID != args[0] {
					continue
				}
				if output.IsJSON() {
					return output.JSON(p)
				}
				printExpert(output, p)
				return nil
			}
			return fmt.Errorf("expert %q: %w", args[0], apperrors.ErrDataNotFound)
		},
	})

	var (
		path  string
		seed  int64
		size  int
		force bool
	)
	regen := &cobra.Command{
		Use:   "regen",
		Short: "Generate a roster file",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if path == "" {
				path = app.Config.Experts.RosterPath
			}
			if path == "" {
				path = filepath.Join(app.ConfigDir, "experts.json")
			}
			if !cmd.Flags().Changed("seed") {
				seed = app.Config.Experts.RosterSeed
			}
			if !cmd.Flags().Changed("size") {
				size = app.Config.Experts.RosterSize
			}

			roster, err := agents.LoadRoster(path, size, true, force, seed)
			if err != nil {
				return err
			}
			output.Success("✓ Roster of %d experts at %s", len(roster), path)
			if !force {
				output.Dim("An existing roster of the right size is kept; use --force to replace it.")
			}
			return nil
		},
	}
	regen.Flags().StringVar(&path, "path", "", "roster file (default: experts.roster_path or <config>/experts.json)")
	regen.Flags().Int64Var(&seed, "seed", 0, "generation seed (default: experts.roster_seed)")
	regen.Flags().IntVar(&size, "size", 0, "roster size (default: experts.roster_size)")
	regen.Flags().BoolVar(&force, "force", false, "replace an existing roster")
	cmd.AddCommand(regen)

	return cmd
}

func printExpert(output *Output, p agents.ExpertProfile) {
	output.Bold("%s", p.FullName)
	output.Dim("%s · %d years · %s", p.Specialty, p.YearsExperience, p.SignatureStyle)
	output.Printf("  \"%s\"\n", p.Catchphrase)
	output.Println()
	output.Printf("  Appraisal accuracy: %.2f\n", p.AppraisalAccuracy)
	output.Printf("  Negotiation skill:  %.2f\n", p.NegotiationSkill)
	output.Printf("  Risk appetite:      %.2f\n", p.RiskAppetite)
	output.Printf("  Time management:    %.2f\n", p.TimeManagement)
	output.Printf("  Trust factor:       %.2f\n", p.TrustFactor)
	output.Printf("  Mood baseline:      %s\n", p.MoodBaseline)

	if len(p.CategoryBias) > 0 {
		cats := make([]string, 0, len(p.CategoryBias))
		for c := range p.CategoryBias {
			cats = append(cats, c)
		}
		sort.Strings(cats)
		parts := make([]string, len(cats))
		for i, c := range cats {
			parts[i] = fmt.Sprintf("%s x%.2f", c, p.CategoryBias[c])
		}
		output.Printf("  Category bias:      %s\n", strings.Join(parts, ", "))
	}
}

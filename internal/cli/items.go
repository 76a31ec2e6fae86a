package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"bargain-hunt/internal/config"
	apperrors "bargain-hunt/internal/errors"
	"bargain-hunt/internal/models"
	"bargain-hunt/internal/rng"
	"bargain-hunt/internal/trading"
)

func newItemsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "items",
		Short: "Inspect the item catalogue",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "source",
		Short: "Show where item templates come from",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			factory, err := app.factory()
			if err != nil {
				return err
			}
			info := map[string]interface{}{
				"source":         app.Config.Items.Source,
				"default_path":   app.Config.Items.DefaultPath,
				"generated_path": app.Config.Items.GeneratedPath,
				"templates":      factory.TemplateCount(),
			}
			if output.IsJSON() {
				return output.JSON(info)
			}
			output.Printf("  Source:     %s\n", app.Config.Items.Source)
			output.Printf("  Templates:  %d\n", factory.TemplateCount())
			if factory.TemplateCount() == 0 {
				output.Dim("  Items are generated synthetically.")
			}
			return nil
		},
	})

	var (
		count int
		seed  int64
		style string
	)
	sample := &cobra.Command{
		Use:   "sample",
		Short: "Generate and price a sample of items",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			switch style {
			case config.StyleFair, config.StyleOverpriced, config.StyleChaotic:
			default:
				return apperrors.InvalidField("style", "unknown pricing style %q", style)
			}
			factory, err := app.factory()
			if err != nil {
				return err
			}

			g := rng.New(seed)
			pricer := trading.NewPricer(app.Config.Economy)
			items := make([]*models.Item, count)
			for i := range items {
				items[i] = factory.MakeItem(g, i+1)
				pricer.SetShopPrice(items[i], g, style)
			}

			if output.IsJSON() {
				return output.JSON(items)
			}
			table := NewTable(output, "#", "Name", "Category", "Era", "Cond", "Rarity", "Value", "Price")
			for _, it := range items {
				table.AddRow(
					fmt.Sprintf("%d", it.ID),
					TruncateString(it.Name, 32),
					it.Category,
					it.Era,
					fmt.Sprintf("%.2f", it.Condition),
					fmt.Sprintf("%.2f", it.Rarity),
					FormatMoney(it.TrueValue),
					FormatMoney(it.ShopPrice),
				)
			}
			table.Render()
			return nil
		},
	}
	sample.Flags().IntVarP(&count, "count", "n", 10, "number of items")
	sample.Flags().Int64Var(&seed, "seed", 1, "generation seed")
	sample.Flags().StringVar(&style, "style", config.StyleFair, "pricing style (fair, overpriced, chaotic)")
	cmd.AddCommand(sample)

	return cmd
}

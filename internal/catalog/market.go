package catalog

import (
	"fmt"

	"bargain-hunt/internal/config"
	"bargain-hunt/internal/models"
	"bargain-hunt/internal/rng"
	"bargain-hunt/internal/trading"
)

// stallLayout returns the fixed stall anchor points inside the play area.
func stallLayout(area models.Rect) []models.Vec {
	x0, y0, w, h := area.X, area.Y, area.W, area.H
	return []models.Vec{
		{X: x0 + 60, Y: y0 + 60},
		{X: x0 + w - 220, Y: y0 + 70},
		{X: x0 + 80, Y: y0 + h - 180},
		{X: x0 + w - 240, Y: y0 + h - 190},
		{X: x0 + w/2 - 80, Y: y0 + 120},
		{X: x0 + w/2 - 80, Y: y0 + h - 230},
	}
}

// GenerateMarket lays out stalls, draws their pricing styles and stocks
// them with priced items. A stallStyle other than "" or mixed replaces every
// stall's drawn style; the draw still happens so the rest of the market is
// the same whatever style is forced. Item ids start at 1 and the returned
// next id is free for later items.
func GenerateMarket(g *rng.RNG, area models.Rect, factory *Factory, pricer *trading.Pricer, cfg *config.BalanceConfig, stallStyle string) (*models.Market, int) {
	forced := stallStyle != "" && stallStyle != config.StyleMixed
	sc := cfg.Stalls
	layout := stallLayout(area)
	count := sc.Count
	if count > len(layout) {
		count = len(layout)
	}

	stalls := make([]*models.Stall, 0, count)
	for i := 0; i < count; i++ {
		pos := layout[i]
		style := rng.Choice(g, config.PricingStyles)
		if forced {
			style = stallStyle
		}
		chance := sc.DiscountChance
		if style == config.StyleOverpriced {
			chance = sc.OverpricedDiscountChance
		}
		stalls = append(stalls, &models.Stall{
			ID:             i + 1,
			Name:           fmt.Sprintf("Stall %d (%s)", i+1, style),
			Rect:           models.Rect{X: float64(int(pos.X)), Y: float64(int(pos.Y)), W: sc.Width, H: sc.Height},
			PricingStyle:   style,
			DiscountChance: chance,
			DiscountMin:    sc.Discount.Lo(),
			DiscountMax:    sc.Discount.Hi(),
		})
	}

	nextID := 1
	for _, st := range stalls {
		n := g.IntRange(sc.ItemsPerStall[0], sc.ItemsPerStall[1])
		for j := 0; j < n; j++ {
			it := factory.MakeItem(g, nextID)
			nextID++
			pricer.SetShopPrice(it, g, st.PricingStyle)
			st.Items = append(st.Items, it)
		}
	}
	return models.NewMarket(stalls), nextID
}

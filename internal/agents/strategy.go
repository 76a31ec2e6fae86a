package agents

import (
	"fmt"
	"math"
	"sort"

	"bargain-hunt/internal/config"
	apperrors "bargain-hunt/internal/errors"
	"bargain-hunt/internal/models"
	"bargain-hunt/internal/rng"
	"bargain-hunt/internal/trading"
)

// ShoppingContext is what a strategy may see while a team shops.
type ShoppingContext struct {
	Market          *models.Market
	Team            *Team
	ItemsPerTeam    int
	ExpertMinBudget float64
	// MinExpectedPriceCap bounds the per-slot reserve; the market's cheapest
	// item lowers it further.
	MinExpectedPriceCap float64
	// BonusScale weights team confidence in the haggling bonus.
	BonusScale float64
}

// Reserve is the money held back for the expert while slots remain open.
func (c *ShoppingContext) Reserve() float64 {
	if c.Team.CanBuyMore(c.ItemsPerTeam) {
		return c.ExpertMinBudget
	}
	return 0
}

// UsableBudget is the budget left after the expert reserve.
func (c *ShoppingContext) UsableBudget() float64 {
	return math.Max(0, c.Team.BudgetLeft-c.Reserve())
}

// RemainingSlots is the number of open team purchase slots.
func (c *ShoppingContext) RemainingSlots() int {
	n := c.ItemsPerTeam - c.Team.TeamItemCount()
	if n < 0 {
		return 0
	}
	return n
}

// MinExpectedPrice is the per-slot reserve used by the spend plan.
func (c *ShoppingContext) MinExpectedPrice() float64 {
	return math.Min(c.MinExpectedPriceCap, c.Market.MinItemPrice(c.MinExpectedPriceCap))
}

// Bonus is the team's haggling bonus.
func (c *ShoppingContext) Bonus() float64 {
	return c.Team.NegotiationBonus(c.BonusScale)
}

// Allows reports whether price is affordable and keeps the team's spend plan.
func (c *ShoppingContext) Allows(price float64) bool {
	usable := c.UsableBudget()
	if price > usable {
		return false
	}
	plan := c.Team.SpendPlan
	if plan == nil {
		return true
	}
	return plan.AllowsPurchase(price, c.Team.TeamItemCount(), c.Team.BudgetStart, usable,
		c.RemainingSlots(), c.MinExpectedPrice())
}

// Candidates returns the stall items the team may buy right now.
func (c *ShoppingContext) Candidates(stall *models.Stall) []*models.Item {
	var out []*models.Item
	for _, it := range stall.Items {
		if c.Allows(it.ShopPrice) {
			out = append(out, it)
		}
	}
	return out
}

// Strategy decides where a team walks and what it buys.
type Strategy interface {
	// Name returns the strategy's registry name.
	Name() string

	// ChooseSpendPlan picks the team's budget pacing for the episode.
	ChooseSpendPlan(g *rng.RNG) *SpendPlan

	// PickTargetStall returns the stall to walk to, or nil if none is worth it.
	PickTargetStall(ctx *ShoppingContext, g *rng.RNG) *models.Stall

	// DecidePurchase returns the item to buy at stall, or nil to move on.
	DecidePurchase(ctx *ShoppingContext, stall *models.Stall, g *rng.RNG) *models.Item
}

// StrategyFactory builds a strategy from the economy's thresholds.
type StrategyFactory func(cfg config.StrategyConfig) Strategy

var strategies = map[string]StrategyFactory{}

// RegisterStrategy adds a strategy under name.
func RegisterStrategy(name string, factory StrategyFactory) {
	strategies[name] = factory
}

// NewStrategy builds the named strategy.
func NewStrategy(name string, cfg config.StrategyConfig) (Strategy, error) {
	f, ok := strategies[name]
	if !ok {
		return nil, fmt.Errorf("strategy %q: %w", name, apperrors.ErrInputValidation)
	}
	return f(cfg), nil
}

// StrategyNames lists registered strategies in sorted order.
func StrategyNames() []string {
	names := make([]string, 0, len(strategies))
	for n := range strategies {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// recommend asks the team's expert for the best candidate, falling back to
// the cheapest one when the team has no expert.
func recommend(ctx *ShoppingContext, candidates []*models.Item, stall *models.Stall, g *rng.RNG) *models.Item {
	if len(candidates) == 0 {
		return nil
	}
	if ctx.Team.Expert == nil {
		best := candidates[0]
		for _, it := range candidates[1:] {
			if it.ShopPrice < best.ShopPrice {
				best = it
			}
		}
		return best
	}
	return ctx.Team.Expert.Recommend(candidates, ctx.UsableBudget(), trading.TermsFor(stall), ctx.Bonus(), g)
}

// estimate returns the expert's value of item. A team without an expert
// can only go on the shop price.
func estimate(ctx *ShoppingContext, item *models.Item, g *rng.RNG) float64 {
	if ctx.Team.Expert == nil {
		return item.ShopPrice
	}
	return ctx.Team.Expert.EstimateValue(item, g)
}

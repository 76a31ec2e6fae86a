package agents

import (
	"math"

	"bargain-hunt/internal/config"
	"bargain-hunt/internal/models"
	"bargain-hunt/internal/rng"
)

// ValueHunterName is the registry name of ValueHunter.
const ValueHunterName = "ValueHunter"

func init() {
	RegisterStrategy(ValueHunterName, func(cfg config.StrategyConfig) Strategy {
		return NewValueHunter(cfg)
	})
}

// ValueHunter heads for stalls with the most buyable stock and buys when the
// expert sees a clear margin.
type ValueHunter struct {
	cfg config.StrategyConfig
}

// NewValueHunter creates a ValueHunter.
func NewValueHunter(cfg config.StrategyConfig) *ValueHunter {
	return &ValueHunter{cfg: cfg}
}

// Name implements Strategy.
func (s *ValueHunter) Name() string { return ValueHunterName }

// ChooseSpendPlan implements Strategy.
func (s *ValueHunter) ChooseSpendPlan(g *rng.RNG) *SpendPlan {
	return PickSpendPlan(g)
}

// PickTargetStall scores stalls by the number of plan-compliant items, with
// a nudge towards stylish stock for tasteful teams.
func (s *ValueHunter) PickTargetStall(ctx *ShoppingContext, g *rng.RNG) *models.Stall {
	var best *models.Stall
	bestScore := math.Inf(-1)
	taste := ctx.Team.AvgTaste()

	for _, st := range ctx.Market.Stalls {
		if ctx.Team.OnCooldown(st.ID) {
			continue
		}
		cands := ctx.Candidates(st)
		if len(cands) == 0 {
			continue
		}
		style := 0.0
		for _, it := range cands {
			style += it.StyleScore
		}
		style /= float64(len(cands))

		score := float64(len(cands)) + s.cfg.TasteWeight*taste*style + g.Uniform(0, s.cfg.ValueJitter)
		if score > bestScore {
			best, bestScore = st, score
		}
	}
	return best
}

// DecidePurchase buys the expert's pick when its estimate beats the price by
// the value margin.
func (s *ValueHunter) DecidePurchase(ctx *ShoppingContext, stall *models.Stall, g *rng.RNG) *models.Item {
	rec := recommend(ctx, ctx.Candidates(stall), stall, g)
	if rec == nil {
		return nil
	}
	if estimate(ctx, rec, g)-rec.ShopPrice > s.cfg.ValueMargin {
		return rec
	}
	return nil
}

package agents

import (
	"math"

	"bargain-hunt/internal/config"
	"bargain-hunt/internal/models"
	"bargain-hunt/internal/rng"
)

// RiskAverseName is the registry name of RiskAverse.
const RiskAverseName = "RiskAverse"

func init() {
	RegisterStrategy(RiskAverseName, func(cfg config.StrategyConfig) Strategy {
		return NewRiskAverse(cfg)
	})
}

// RiskAverse prefers stalls with well-kept stock and refuses shabby items.
type RiskAverse struct {
	cfg config.StrategyConfig
}

// NewRiskAverse creates a RiskAverse strategy.
func NewRiskAverse(cfg config.StrategyConfig) *RiskAverse {
	return &RiskAverse{cfg: cfg}
}

// Name implements Strategy.
func (s *RiskAverse) Name() string { return RiskAverseName }

// ChooseSpendPlan implements Strategy.
func (s *RiskAverse) ChooseSpendPlan(g *rng.RNG) *SpendPlan {
	return PickSpendPlan(g)
}

// PickTargetStall scores stalls by the mean condition of buyable items.
func (s *RiskAverse) PickTargetStall(ctx *ShoppingContext, g *rng.RNG) *models.Stall {
	var best *models.Stall
	bestScore := math.Inf(-1)

	for _, st := range ctx.Market.Stalls {
		if ctx.Team.OnCooldown(st.ID) {
			continue
		}
		cands := ctx.Candidates(st)
		if len(cands) == 0 {
			continue
		}
		cond := 0.0
		for _, it := range cands {
			cond += it.Condition
		}
		score := cond/float64(len(cands)) + g.Uniform(0, s.cfg.RiskJitter)
		if score > bestScore {
			best, bestScore = st, score
		}
	}
	return best
}

// DecidePurchase buys the expert's pick if it is in decent condition and
// clears the smaller risk margin.
func (s *RiskAverse) DecidePurchase(ctx *ShoppingContext, stall *models.Stall, g *rng.RNG) *models.Item {
	rec := recommend(ctx, ctx.Candidates(stall), stall, g)
	if rec == nil || rec.Condition < s.cfg.RiskMinCondition {
		return nil
	}
	if estimate(ctx, rec, g)-rec.ShopPrice > s.cfg.RiskMargin {
		return rec
	}
	return nil
}

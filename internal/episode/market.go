package episode

import (
	"fmt"
	"math"

	"bargain-hunt/internal/agents"
	"bargain-hunt/internal/logging"
	"bargain-hunt/internal/models"
	"bargain-hunt/internal/rng"
	"bargain-hunt/internal/trading"
	"bargain-hunt/pkg/utils"
)

// UpdateMarketAI advances every team by dt seconds. Teams act in list order
// and see purchases made earlier in the same tick. speed is the base walking
// speed before the pace multiplier; radius is the buying distance.
func (e *Episode) UpdateMarketAI(dt, speed, radius float64) {
	if e.Phase != PhaseMarket || e.Market == nil {
		return
	}
	paced := speed * e.cfg.Market.PaceMultiplier

	for _, t := range e.Teams {
		e.initMarketBehavior(t)
		e.decayCooldowns(t, dt)
		e.pruneConsidered(t)

		if t.SpendPlan == nil {
			if t.Strategy != nil {
				t.SpendPlan = t.Strategy.ChooseSpendPlan(e.rng)
			} else {
				t.SpendPlan = agents.PickSpendPlan(e.rng)
			}
		}

		if !t.CanBuyMore(e.ItemsPerTeam) {
			t.MarketState = agents.StateDone
			t.LastAction = "Done shopping"
			continue
		}

		switch t.MarketState {
		case agents.StateConsulting:
			e.tickConsulting(t, dt)
			continue
		case agents.StateConsidering:
			e.tickConsidering(t, dt)
			continue
		}

		target := e.validTarget(t)
		if target == nil {
			target = e.chooseNextTarget(t)
		}
		if target == nil {
			t.LastAction = "No stalls left"
			continue
		}

		center := target.Center()
		moveTowards(t, center, dt, paced)
		t.LastAction = "Walking to " + target.Name

		if t.Pos.Dist(center) <= radius {
			e.arrive(t, target)
		}
	}
}

func (e *Episode) shopping(t *agents.Team) *agents.ShoppingContext {
	return &agents.ShoppingContext{
		Market:              e.Market,
		Team:                t,
		ItemsPerTeam:        e.ItemsPerTeam,
		ExpertMinBudget:     e.ExpertMinBudget,
		MinExpectedPriceCap: e.cfg.Market.MinExpectedPrice,
		BonusScale:          e.economy.Team.ConfidenceBonusScale,
	}
}

func (e *Episode) initMarketBehavior(t *agents.Team) {
	if t.MarketState == "" {
		t.MarketState = agents.StateBrowsing
	}
	if t.StallCooldowns == nil {
		t.StallCooldowns = make(map[int]float64)
	}
	if t.RevisitProbability == 0 {
		jitter := e.rng.Uniform(0.85, 1.15)
		t.RevisitProbability = rng.Clamp(e.cfg.Market.BacktrackProbability*jitter, 0.05, 0.6)
	}
}

func (e *Episode) decayCooldowns(t *agents.Team, dt float64) {
	for id, left := range t.StallCooldowns {
		if left-dt <= 0 {
			delete(t.StallCooldowns, id)
		} else {
			t.StallCooldowns[id] = left - dt
		}
	}
}

// pruneConsidered drops remembered items that are gone or out of budget and
// keeps only the newest entries.
func (e *Episode) pruneConsidered(t *agents.Team) {
	usable := e.shopping(t).UsableBudget()
	kept := t.Considered[:0]
	for _, c := range t.Considered {
		if _, it := e.lookup(c.StallID, c.ItemID); it != nil && it.ShopPrice <= usable {
			kept = append(kept, c)
		}
	}
	if limit := e.cfg.Market.ConsideredCap; len(kept) > limit {
		kept = kept[len(kept)-limit:]
	}
	t.Considered = kept
}

func (e *Episode) lookup(stallID, itemID int) (*models.Stall, *models.Item) {
	st := e.Market.Stall(stallID)
	if st == nil {
		return nil, nil
	}
	return st, st.Item(itemID)
}

func (e *Episode) tickConsulting(t *agents.Team, dt float64) {
	t.StateTimer -= dt
	t.TimeSpentConsulting += dt
	if t.StateTimer > 0 {
		return
	}

	t.MarketState = agents.StateConsidering
	decision := 1.0
	if t.Pending != nil {
		decision = t.Pending.DecisionTime
	}
	t.StateTimer = math.Max(0.5, decision)

	t.LastAction = "Refocusing after chat"
	if t.Pending != nil {
		if _, it := e.lookup(t.Pending.StallID, t.Pending.ItemID); it != nil {
			t.LastAction = "Considering " + it.Name
		}
	}
}

func (e *Episode) tickConsidering(t *agents.Team, dt float64) {
	t.StateTimer -= dt
	t.TimeSpentConsidering += dt
	if t.StateTimer > 0 {
		return
	}
	e.finalizeDecision(t)
}

// validTarget returns the team's current target if it still holds something
// the team may buy. A target that no longer qualifies is cooled down.
func (e *Episode) validTarget(t *agents.Team) *models.Stall {
	if t.TargetStallID == 0 {
		return nil
	}
	st := e.Market.Stall(t.TargetStallID)
	if st == nil || len(st.Items) == 0 {
		t.TargetStallID, t.TargetForced = 0, false
		return nil
	}
	if !e.stallHasBuyable(t, st) {
		t.StallCooldowns[st.ID] = e.cfg.Market.StallCooldown
		t.TargetStallID, t.TargetForced = 0, false
		return nil
	}
	return st
}

// stallHasBuyable reports whether the stall has an item the team may buy.
// Desperation targets only need raw affordability.
func (e *Episode) stallHasBuyable(t *agents.Team, st *models.Stall) bool {
	ctx := e.shopping(t)
	usable := ctx.UsableBudget()
	if usable <= 0 {
		return false
	}
	if t.TargetForced {
		return st.Cheapest(usable) != nil
	}
	return len(ctx.Candidates(st)) > 0
}

// chooseNextTarget asks the strategy for a stall, then tries to walk back to
// a remembered item, then falls back to the cheapest affordable stall.
func (e *Episode) chooseNextTarget(t *agents.Team) *models.Stall {
	ctx := e.shopping(t)

	var target *models.Stall
	if t.Strategy != nil {
		target = t.Strategy.PickTargetStall(ctx, e.rng)
	}
	if target != nil {
		if t.MarketState == agents.StateBacktracking {
			t.MarketState = agents.StateBrowsing
			t.Pending = nil
		}
		t.TargetStallID, t.TargetForced = target.ID, false
		return target
	}

	if st, entry := e.pickBacktrack(t); st != nil {
		t.MarketState = agents.StateBacktracking
		t.Pending = &agents.PendingDecision{StallID: entry.StallID, ItemID: entry.ItemID}
		t.TargetStallID, t.TargetForced = st.ID, false
		t.LastAction = "Heading back to reconsider"
		return st
	}

	if st := e.desperationStall(t); st != nil {
		t.TargetStallID, t.TargetForced = st.ID, true
		return st
	}
	t.TargetStallID, t.TargetForced = 0, false
	return nil
}

func (e *Episode) pickBacktrack(t *agents.Team) (*models.Stall, agents.ConsideredItem) {
	if len(t.Considered) == 0 || !e.rng.Bernoulli(t.RevisitProbability) {
		return nil, agents.ConsideredItem{}
	}

	usable := e.shopping(t).UsableBudget()
	attempts := len(t.Considered)
	if attempts > 3 {
		attempts = 3
	}
	for i := 0; i < attempts && len(t.Considered) > 0; i++ {
		idx := e.rng.IntN(len(t.Considered))
		entry := t.Considered[idx]
		st, it := e.lookup(entry.StallID, entry.ItemID)
		if it == nil {
			t.Considered = append(t.Considered[:idx], t.Considered[idx+1:]...)
			continue
		}
		if it.ShopPrice <= usable {
			return st, entry
		}
	}
	return nil, agents.ConsideredItem{}
}

// desperationStall returns the off-cooldown stall with the cheapest item the
// team can afford, ignoring the spend plan.
func (e *Episode) desperationStall(t *agents.Team) *models.Stall {
	usable := e.shopping(t).UsableBudget()
	var best *models.Stall
	bestPrice := math.Inf(1)
	for _, st := range e.Market.Stalls {
		if len(st.Items) == 0 || t.OnCooldown(st.ID) {
			continue
		}
		if it := st.Cheapest(usable); it != nil && it.ShopPrice < bestPrice {
			best, bestPrice = st, it.ShopPrice
		}
	}
	return best
}

func moveTowards(t *agents.Team, to models.Vec, dt, speed float64) {
	dx, dy := to.X-t.Pos.X, to.Y-t.Pos.Y
	dist := math.Hypot(dx, dy)
	if dist < 1e-6 {
		return
	}
	step := math.Min(dist, speed*dt)
	t.Pos.X += dx / dist * step
	t.Pos.Y += dy / dist * step
}

// arrive picks an item at the target stall and starts deliberating, or
// cools the stall down and moves on.
func (e *Episode) arrive(t *agents.Team, st *models.Stall) {
	var item *models.Item
	if t.MarketState == agents.StateBacktracking && t.Pending != nil {
		item = st.Item(t.Pending.ItemID)
	}
	if item == nil && t.Strategy != nil {
		item = t.Strategy.DecidePurchase(e.shopping(t), st, e.rng)
	}
	if item == nil && t.TargetForced {
		item = st.Cheapest(e.shopping(t).UsableBudget())
	}

	if item != nil {
		e.beginConsidering(t, st, item, t.TargetForced)
		return
	}

	t.StallCooldowns[st.ID] = e.cfg.Market.StallCooldown
	t.TargetStallID, t.TargetForced = 0, false
	t.MarketState = agents.StateBrowsing
	t.Pending = nil
	t.LastAction = "Expert says: keep looking"
}

func (e *Episode) beginConsidering(t *agents.Team, st *models.Stall, item *models.Item, forced bool) {
	mc := e.cfg.Market
	decision := e.rng.Uniform(mc.BuyDecisionSeconds.Lo(), mc.BuyDecisionSeconds.Hi())
	t.Pending = &agents.PendingDecision{
		StallID:      st.ID,
		ItemID:       item.ID,
		Forced:       forced,
		DecisionTime: decision,
	}

	weight, factor := 1.0, 1.0
	if t.Expert != nil {
		weight = 1 + (t.Expert.TrustFactor()-0.5)*0.6
		factor = t.Expert.ConsultationTimeFactor()
	}
	chatP := rng.Clamp(mc.ExpertChatProbability*weight, 0.05, 0.95)

	if e.rng.Bernoulli(chatP) {
		t.StateTimer = e.rng.Uniform(mc.ExpertChatSeconds.Lo(), mc.ExpertChatSeconds.Hi()) * factor
		t.MarketState = agents.StateConsulting
		t.LastAction = "Consulting expert about " + item.Name
		return
	}
	t.StateTimer = decision * factor
	t.MarketState = agents.StateConsidering
	t.LastAction = "Considering " + item.Name
}

// purchaseValid re-checks a pending purchase against the current budget.
func (e *Episode) purchaseValid(t *agents.Team, item *models.Item, forced bool) bool {
	ctx := e.shopping(t)
	if item.ShopPrice > ctx.UsableBudget() {
		return false
	}
	return forced || ctx.Allows(item.ShopPrice)
}

func (e *Episode) finalizeDecision(t *agents.Team) {
	pending := t.Pending
	t.Pending = nil
	t.StateTimer = 0
	if pending == nil {
		e.resetToBrowsing(t, nil)
		return
	}

	st, item := e.lookup(pending.StallID, pending.ItemID)
	if item == nil {
		t.LastAction = "Item moved; re-routing"
		e.resetToBrowsing(t, nil)
		return
	}

	if !e.purchaseValid(t, item, pending.Forced) {
		e.remember(t, st, item, pending.Forced)
		t.LastAction = "Changed mind after thinking"
		e.resetToBrowsing(t, st)
		return
	}

	if !pending.Forced && e.rng.Bernoulli(t.RevisitProbability) {
		e.remember(t, st, item, pending.Forced)
		t.LastAction = "Holding off on " + item.Name
		e.resetToBrowsing(t, st)
		return
	}

	e.completePurchase(t, st, item)
	e.forget(t, item)
	t.MarketState = agents.StateBrowsing
	t.TargetStallID, t.TargetForced = 0, false
}

func (e *Episode) resetToBrowsing(t *agents.Team, st *models.Stall) {
	if st != nil {
		t.StallCooldowns[st.ID] = e.cfg.Market.RerouteCooldown
	}
	t.TargetStallID, t.TargetForced = 0, false
	t.MarketState = agents.StateBrowsing
	t.Pending = nil
	t.StateTimer = 0
}

// remember adds an item to the backtrack list, evicting the oldest entry
// past the cap. Desperation picks are never remembered.
func (e *Episode) remember(t *agents.Team, st *models.Stall, item *models.Item, forced bool) {
	if forced {
		return
	}
	for _, c := range t.Considered {
		if c.ItemID == item.ID {
			return
		}
	}
	t.Considered = append(t.Considered, agents.ConsideredItem{StallID: st.ID, ItemID: item.ID})
	if len(t.Considered) > e.cfg.Market.ConsideredCap {
		t.Considered = t.Considered[1:]
	}
}

func (e *Episode) forget(t *agents.Team, item *models.Item) {
	kept := t.Considered[:0]
	for _, c := range t.Considered {
		if c.ItemID != item.ID {
			kept = append(kept, c)
		}
	}
	t.Considered = kept
}

// completePurchase haggles for item and buys it if the team can still pay
// while keeping the expert reserve.
func (e *Episode) completePurchase(t *agents.Team, st *models.Stall, item *models.Item) {
	reserve := e.shopping(t).Reserve()
	out := e.pricer.Negotiate(item, e.rng, trading.TermsFor(st), e.shopping(t).Bonus())

	if item.ShopPrice > t.BudgetLeft {
		t.LastAction = "Couldn't afford after negotiation"
		return
	}
	remaining := utils.SubMoney(t.BudgetLeft, item.ShopPrice)
	if remaining < reserve {
		t.LastAction = fmt.Sprintf("Need %s saved for expert", utils.FormatCurrency(reserve))
		t.StallCooldowns[st.ID] = e.cfg.Market.RerouteCooldown
		t.TargetStallID, t.TargetForced = 0, false
		return
	}

	if err := e.Market.RemoveItem(item); err != nil {
		logging.WithTeam(e.logger, t.Name).Error().Err(err).Msg("Purchase of unstocked item")
		return
	}
	t.ItemsBought = append(t.ItemsBought, item)
	t.BudgetLeft = remaining

	t.LastAction = fmt.Sprintf("Bought: %s %s", item.Name, utils.FormatCurrency(item.ShopPrice))
	if out.Success {
		t.LastAction += fmt.Sprintf(" (-%.0f%%)", out.Discount*100)
	}
	logging.LogPurchase(logging.WithTeam(e.logger, t.Name), item.Name, item.ShopPrice, out.Success, t.BudgetLeft)
}

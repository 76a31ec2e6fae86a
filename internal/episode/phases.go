package episode

import (
	"math"

	"bargain-hunt/internal/agents"
	"bargain-hunt/internal/analysis/scoring"
	apperrors "bargain-hunt/internal/errors"
	"bargain-hunt/internal/logging"
	"bargain-hunt/internal/models"
	"bargain-hunt/pkg/utils"
)

// ReserveExpertBudget ends the market and hands each team's leftover cash to
// its expert. Leftovers under the expert minimum rule the pick out.
func (e *Episode) ReserveExpertBudget() error {
	if err := e.require(PhaseMarket); err != nil {
		return err
	}
	for _, t := range e.Teams {
		t.ExpertPickBudget = utils.Round2(t.BudgetLeft)
		t.BudgetLeft = 0
		t.ExpertPickItem = nil
		t.TargetStallID, t.TargetForced = 0, false
		t.Pending = nil
		if t.ExpertPickBudget < e.ExpertMinBudget {
			t.ExpertPickIncluded = agents.PickExcluded
		} else {
			t.ExpertPickIncluded = agents.PickUndecided
		}
		t.LastAction = "Reserved " + utils.FormatCurrency(t.ExpertPickBudget) + " for expert"
	}
	e.Phase = PhaseExpertHandoff
	return nil
}

// PrepareExpertPicks lets each expert shop the market with the team's
// reserved leftover.
func (e *Episode) PrepareExpertPicks() error {
	if err := e.require(PhaseExpertHandoff); err != nil {
		return err
	}
	for _, t := range e.Teams {
		leftover := utils.Round2(t.ExpertPickBudget)
		t.ExpertPickBudget = leftover

		var pick *agents.LeftoverPick
		if leftover >= e.ExpertMinBudget && t.Expert != nil {
			pick = t.Expert.ChooseLeftoverPurchase(e.Market, leftover, e.rng)
		}
		if pick == nil {
			t.ExpertPickItem = nil
			t.ExpertPickIncluded = agents.PickExcluded
			t.LastAction = "Expert couldn't find an item"
			continue
		}

		if err := e.Market.RemoveItem(pick.Item); err != nil {
			return apperrors.Wrapf(err, "expert pick for %s", t.Name)
		}
		item := pick.Item
		item.IsExpertPick = true
		item.ExpertEstimate = pick.Estimate
		t.ExpertPickItem = item
		t.ExpertPickBudget = utils.Round2(math.Max(0, leftover-item.ShopPrice))
		t.LastAction = "Expert shopping with " + utils.FormatCurrency(leftover)

		logging.LogExpertPick(logging.WithTeam(e.logger, t.Name), t.Expert.Name(), item.Name, item.ShopPrice, item.ExpertEstimate)
	}
	e.Phase = PhaseExpertShopping
	return nil
}

// StartAppraisal values every team purchase and expert pick.
func (e *Episode) StartAppraisal() error {
	if err := e.require(PhaseExpertShopping); err != nil {
		return err
	}
	e.Phase = PhaseAppraisal
	for _, t := range e.Teams {
		for _, it := range t.ItemsBought {
			e.appraise(it)
		}
		if t.ExpertPickItem != nil && !t.ExpertPickItem.Appraised {
			e.appraise(t.ExpertPickItem)
		}
	}
	e.AppraisalDone = true
	return nil
}

func (e *Episode) appraise(it *models.Item) {
	it.AppraisedValue = e.Auctioneer.Appraise(it, e.rng)
	it.Appraised = true
}

func (e *Episode) resetAuction(lots []models.AuctionLot) {
	e.AuctionQueue = lots
	e.AuctionCursor = 0
	e.AuctionDone = len(lots) == 0
}

// StartTeamAuction queues every team purchase, team by team.
func (e *Episode) StartTeamAuction() error {
	if err := e.require(PhaseAppraisal); err != nil {
		return err
	}
	var lots []models.AuctionLot
	for i, t := range e.Teams {
		items := t.TeamItems()
		for j, it := range items {
			lots = append(lots, models.AuctionLot{
				TeamIndex: i,
				TeamName:  t.Name,
				Item:      it,
				Position:  j + 1,
				TeamTotal: len(items),
			})
		}
	}
	e.resetAuction(lots)
	e.Phase = PhaseAuctionTeam
	return nil
}

// StepAuction sells the next queued lot. It returns nil once the queue is
// empty.
func (e *Episode) StepAuction() (*Sale, error) {
	if e.Phase != PhaseAuctionTeam && e.Phase != PhaseAuctionExpert {
		return nil, apperrors.NewPhaseError(PhaseAuctionTeam.String()+"|"+PhaseAuctionExpert.String(), e.Phase.String())
	}
	if e.AuctionCursor >= len(e.AuctionQueue) {
		e.AuctionDone = true
		return nil, nil
	}

	lot := e.AuctionQueue[e.AuctionCursor]
	price := e.House.Sell(lot.Item, e.rng)
	lot.Item.AuctionPrice = price
	lot.Item.Sold = true

	sale := Sale{Lot: lot, Price: price}
	e.Sales = append(e.Sales, sale)
	e.AuctionCursor++
	if e.AuctionCursor >= len(e.AuctionQueue) {
		e.AuctionDone = true
	}

	logging.LogSale(logging.WithTeam(logging.WithPhase(e.logger, e.Phase.String()), lot.TeamName), lot.Item.Name, lot.Item.ShopPrice, price)
	return &sale, nil
}

// RunAuction sells every remaining lot in the current queue.
func (e *Episode) RunAuction() error {
	for !e.AuctionDone {
		if _, err := e.StepAuction(); err != nil {
			return err
		}
	}
	return nil
}

// BeginReveal moves from the team auction to the expert reveal.
func (e *Episode) BeginReveal() error {
	if err := e.require(PhaseAuctionTeam); err != nil {
		return err
	}
	if !e.AuctionDone {
		return apperrors.NewPhaseError("team auction finished", "team auction in progress")
	}
	e.Phase = PhaseExpertReveal
	return nil
}

// MarkExpertChoice records whether the team keeps its expert pick in the
// score. A team without a pick is always excluded.
func (e *Episode) MarkExpertChoice(t *agents.Team, include bool) error {
	if err := e.require(PhaseExpertReveal); err != nil {
		return err
	}
	if t.ExpertPickItem == nil {
		t.ExpertPickIncluded = agents.PickExcluded
		return nil
	}
	if include {
		t.ExpertPickIncluded = agents.PickIncluded
		t.LastAction = "Including expert pick: " + t.ExpertPickItem.Name
	} else {
		t.ExpertPickIncluded = agents.PickExcluded
		t.LastAction = "Declined the expert item"
	}
	return nil
}

// ExpertChoicesDone reports whether every expert pick has a decision.
func (e *Episode) ExpertChoicesDone() bool {
	for _, t := range e.Teams {
		if t.ExpertPickItem != nil && t.ExpertPickIncluded == agents.PickUndecided {
			return false
		}
	}
	return true
}

// RevealScore rates how keen a team is to keep its expert pick. Positive
// scores lean towards including it.
func (e *Episode) RevealScore(t *agents.Team) float64 {
	rc := e.economy.Reveal
	pick := t.ExpertPickItem
	if pick == nil {
		return math.Inf(-1)
	}

	estimate := pick.AppraisedValue
	if estimate == 0 {
		estimate = pick.ExpertEstimate
	}
	if estimate == 0 {
		estimate = pick.ShopPrice
	}
	margin := (estimate - pick.ShopPrice) / math.Max(1, pick.ShopPrice)

	// Teams that did badly at the auction are keener to gamble.
	profit := 0.0
	for _, it := range t.TeamItems() {
		if it.Sold {
			profit += it.Profit()
		}
	}
	performance := math.Tanh(-profit / math.Max(1, rc.PerformanceScale))

	rapport := 0.0
	if t.Expert != nil {
		rapport = t.Expert.TrustFactor() - 0.5
	}

	score := rc.MarginWeight*margin +
		rc.PerformanceWeight*performance +
		rc.RapportWeight*rapport +
		rc.TasteWeight*(t.AvgTaste()-0.5)
	return score + rc.Noise*e.rng.Uniform(-1, 1)
}

// AutoDecideExpertPicks decides every undecided pick from RevealScore.
func (e *Episode) AutoDecideExpertPicks() error {
	if err := e.require(PhaseExpertReveal); err != nil {
		return err
	}
	for _, t := range e.Teams {
		if t.ExpertPickItem == nil || t.ExpertPickIncluded != agents.PickUndecided {
			continue
		}
		include := e.RevealScore(t) >= e.economy.Reveal.Threshold
		if err := e.MarkExpertChoice(t, include); err != nil {
			return err
		}
	}
	return nil
}

// HasIncludedExpertItems reports whether any team kept its pick.
func (e *Episode) HasIncludedExpertItems() bool {
	for _, t := range e.Teams {
		if t.ExpertPickItem != nil && t.ExpertPickIncluded == agents.PickIncluded {
			return true
		}
	}
	return false
}

// StartExpertAuction queues the included expert picks. Undecided picks are
// decided automatically first.
func (e *Episode) StartExpertAuction() error {
	if err := e.require(PhaseExpertReveal); err != nil {
		return err
	}
	if !e.ExpertChoicesDone() {
		if err := e.AutoDecideExpertPicks(); err != nil {
			return err
		}
	}

	var lots []models.AuctionLot
	for i, t := range e.Teams {
		if t.ExpertPickItem != nil && t.ExpertPickIncluded == agents.PickIncluded {
			lots = append(lots, models.AuctionLot{
				TeamIndex: i,
				TeamName:  t.Name,
				Item:      t.ExpertPickItem,
				Position:  1,
				TeamTotal: 1,
				IsBonus:   true,
			})
		}
	}
	e.resetAuction(lots)
	e.Phase = PhaseAuctionExpert
	return nil
}

// ComputeResults scores every team and names the winner.
func (e *Episode) ComputeResults() error {
	if err := e.require(PhaseAuctionExpert); err != nil {
		return err
	}
	if !e.AuctionDone {
		return apperrors.NewPhaseError("expert auction finished", "expert auction in progress")
	}

	scoring.Score(e.Teams, e.ItemsPerTeam)
	e.Winner = scoring.Winner(e.Teams)
	e.Results = make([]models.RoundResult, len(e.Teams))
	for i, t := range e.Teams {
		e.Results[i] = scoring.RoundResultFromTeam(t)
	}
	e.ResultsDone = true
	e.Phase = PhaseResults
	return nil
}

// FinishFromMarket runs every phase after the market with automatic expert
// reveal decisions.
func (e *Episode) FinishFromMarket() error {
	steps := []func() error{
		e.ReserveExpertBudget,
		e.PrepareExpertPicks,
		e.StartAppraisal,
		e.StartTeamAuction,
		e.RunAuction,
		e.BeginReveal,
		e.AutoDecideExpertPicks,
		e.StartExpertAuction,
		e.RunAuction,
		e.ComputeResults,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

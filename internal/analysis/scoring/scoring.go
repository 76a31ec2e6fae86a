// Package scoring rolls up team results after the auction.
package scoring

import (
	"bargain-hunt/internal/agents"
	"bargain-hunt/internal/models"
	"bargain-hunt/pkg/utils"
)

// ComputeTeamTotals sets spend, revenue and profit over the items that count
// for the team: its own purchases plus an included expert pick.
func ComputeTeamTotals(team *agents.Team) {
	items := team.IncludedItems()
	paid := make([]float64, len(items))
	sold := make([]float64, len(items))
	for i, it := range items {
		paid[i] = it.ShopPrice
		sold[i] = it.AuctionPrice
	}
	team.Spend = utils.SumMoney(paid...)
	team.Revenue = utils.SumMoney(sold...)
	team.Profit = utils.SubMoney(team.Revenue, team.Spend)
}

// GoldenGavel reports whether the team bought exactly itemsPerTeam items of
// its own and every one sold above its price.
func GoldenGavel(team *agents.Team, itemsPerTeam int) bool {
	items := team.TeamItems()
	if len(items) != itemsPerTeam {
		return false
	}
	for _, it := range items {
		if it.AuctionPrice <= it.ShopPrice {
			return false
		}
	}
	return true
}

// Score computes totals and the golden gavel for every team.
func Score(teams []*agents.Team, itemsPerTeam int) {
	for _, t := range teams {
		ComputeTeamTotals(t)
		t.GoldenGavel = GoldenGavel(t, itemsPerTeam)
	}
}

// Winner returns the team with the highest profit. Ties go to the earlier
// team; nil for no teams.
func Winner(teams []*agents.Team) *agents.Team {
	var best *agents.Team
	for _, t := range teams {
		if best == nil || t.Profit > best.Profit {
			best = t
		}
	}
	return best
}

// RoundResultFromItems summarises a team's sold items.
func RoundResultFromItems(teamName string, items []*models.Item) models.RoundResult {
	r := models.RoundResult{TeamName: teamName}
	paid := make([]float64, 0, len(items))
	sold := make([]float64, 0, len(items))

	for _, it := range items {
		r.Lots = append(r.Lots, models.LotResult{
			ItemName:  it.Name,
			Category:  it.Category,
			Paid:      it.ShopPrice,
			Appraised: it.AppraisedValue,
			Sold:      it.AuctionPrice,
			IsBonus:   it.IsExpertPick,
		})
		paid = append(paid, it.ShopPrice)
		sold = append(sold, it.AuctionPrice)
	}

	r.SpentTotal = utils.SumMoney(paid...)
	r.SoldTotal = utils.SumMoney(sold...)
	r.Profit = utils.SubMoney(r.SoldTotal, r.SpentTotal)
	if r.SpentTotal != 0 {
		r.ROI = r.SoldTotal/r.SpentTotal - 1
	}

	for i := range r.Lots {
		lot := &r.Lots[i]
		if r.BestLot == nil || lot.Profit() > r.BestLot.Profit() {
			r.BestLot = lot
		}
		if r.WorstLot == nil || lot.Profit() < r.WorstLot.Profit() {
			r.WorstLot = lot
		}
	}
	return r
}

// RoundResultFromTeam summarises the items that count for team.
func RoundResultFromTeam(team *agents.Team) models.RoundResult {
	return RoundResultFromItems(team.Name, team.IncludedItems())
}

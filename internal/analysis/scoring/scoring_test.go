package scoring

import (
	"testing"

	"bargain-hunt/internal/agents"
	"bargain-hunt/internal/models"
)

func teamWith(name string, sales ...[2]float64) *agents.Team {
	t := agents.NewTeam(name, "", 300, nil, nil, models.Vec{})
	for i, s := range sales {
		t.ItemsBought = append(t.ItemsBought, &models.Item{
			ID: i + 1, Name: name, ShopPrice: s[0], AuctionPrice: s[1],
		})
	}
	return t
}

func TestGoldenGavel(t *testing.T) {
	tests := []struct {
		name string
		team *agents.Team
		want bool
	}{
		{"all three profit", teamWith("a", [2]float64{10, 20}, [2]float64{15, 16}, [2]float64{30, 45}), true},
		{"one loss", teamWith("b", [2]float64{10, 20}, [2]float64{15, 14}, [2]float64{30, 45}), false},
		{"break even", teamWith("c", [2]float64{10, 20}, [2]float64{15, 15}, [2]float64{30, 45}), false},
		{"only two items", teamWith("d", [2]float64{10, 200}, [2]float64{15, 300}), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GoldenGavel(tt.team, 3); got != tt.want {
				t.Errorf("GoldenGavel = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGoldenGavelIgnoresExpertPick(t *testing.T) {
	team := teamWith("a", [2]float64{10, 20}, [2]float64{15, 16}, [2]float64{30, 45})
	pick := &models.Item{ShopPrice: 50, AuctionPrice: 5, IsExpertPick: true}
	team.ItemsBought = append(team.ItemsBought, pick)
	team.ExpertPickItem = pick
	team.ExpertPickIncluded = agents.PickIncluded

	if !GoldenGavel(team, 3) {
		t.Error("losing expert pick should not cost the gavel")
	}
}

func TestComputeTeamTotals(t *testing.T) {
	team := teamWith("a", [2]float64{10.10, 20.20}, [2]float64{15, 14})
	pick := &models.Item{ShopPrice: 5, AuctionPrice: 25, IsExpertPick: true}
	team.ItemsBought = append(team.ItemsBought, pick)
	team.ExpertPickItem = pick

	ComputeTeamTotals(team)
	if team.Spend != 25.10 || team.Revenue != 34.20 || team.Profit != 9.10 {
		t.Errorf("excluded pick: spend %.2f revenue %.2f profit %.2f", team.Spend, team.Revenue, team.Profit)
	}

	team.ExpertPickIncluded = agents.PickIncluded
	ComputeTeamTotals(team)
	if team.Spend != 30.10 || team.Profit != 29.10 {
		t.Errorf("included pick: spend %.2f profit %.2f", team.Spend, team.Profit)
	}
}

func TestWinnerTieGoesToFirst(t *testing.T) {
	a := teamWith("a")
	b := teamWith("b")
	a.Profit, b.Profit = 40, 40

	if got := Winner([]*agents.Team{a, b}); got != a {
		t.Errorf("Winner = %s, want a", got.Name)
	}
	b.Profit = 41
	if got := Winner([]*agents.Team{a, b}); got != b {
		t.Errorf("Winner = %s, want b", got.Name)
	}
	if Winner(nil) != nil {
		t.Error("Winner(nil) should be nil")
	}
}

func TestRoundResult(t *testing.T) {
	team := teamWith("a", [2]float64{10, 30}, [2]float64{20, 15}, [2]float64{30, 40})
	r := RoundResultFromTeam(team)

	if r.SpentTotal != 60 || r.SoldTotal != 85 || r.Profit != 25 {
		t.Errorf("totals = %.2f / %.2f / %.2f", r.SpentTotal, r.SoldTotal, r.Profit)
	}
	if r.BestLot == nil || r.BestLot.Profit() != 20 {
		t.Errorf("BestLot = %+v", r.BestLot)
	}
	if r.WorstLot == nil || r.WorstLot.Profit() != -5 {
		t.Errorf("WorstLot = %+v", r.WorstLot)
	}

	empty := RoundResultFromTeam(teamWith("b"))
	if empty.ROI != 0 || empty.BestLot != nil {
		t.Errorf("empty result = %+v", empty)
	}
}

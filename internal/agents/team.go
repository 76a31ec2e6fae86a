package agents

import (
	"bargain-hunt/internal/models"
)

// MarketState is a team's position in the market-phase state machine.
type MarketState string

// Market states.
const (
	StateBrowsing     MarketState = "BROWSING"
	StateConsidering  MarketState = "CONSIDERING_ITEM"
	StateConsulting   MarketState = "CONSULTING_EXPERT"
	StateBacktracking MarketState = "BACKTRACKING"
	StateDone         MarketState = "DONE"
)

// PickDecision records whether an expert pick counts towards the score.
type PickDecision int

// Expert pick decisions. PickUndecided means the team has not been asked.
const (
	PickUndecided PickDecision = iota
	PickIncluded
	PickExcluded
)

func (d PickDecision) String() string {
	switch d {
	case PickIncluded:
		return "included"
	case PickExcluded:
		return "excluded"
	}
	return "undecided"
}

// PendingDecision is the item a team is deliberating over or walking back to.
type PendingDecision struct {
	StallID      int
	ItemID       int
	Forced       bool
	DecisionTime float64
}

// ConsideredItem is an item the team passed on and may revisit.
type ConsideredItem struct {
	StallID int
	ItemID  int
}

// Team is one shopping team and its market-phase state. Stall ids start at
// 1, so a zero TargetStallID means no target.
type Team struct {
	Name             string
	Color            string
	Relationship     string
	RelationshipType string
	Contestants      []models.Contestant

	BudgetStart float64
	BudgetLeft  float64
	Strategy    Strategy
	Expert      *Expert
	SpendPlan   *SpendPlan

	Pos           models.Vec
	TargetStallID int
	// TargetForced marks a desperation target chosen outside the spend plan.
	TargetForced bool

	ItemsBought        []*models.Item
	ExpertPickItem     *models.Item
	ExpertPickBudget   float64
	ExpertPickIncluded PickDecision

	MarketState          MarketState
	StateTimer           float64
	Pending              *PendingDecision
	StallCooldowns       map[int]float64
	Considered           []ConsideredItem
	RevisitProbability   float64
	TimeSpentConsulting  float64
	TimeSpentConsidering float64
	LastAction           string

	Spend       float64
	Revenue     float64
	Profit      float64
	GoldenGavel bool
}

// NewTeam creates a team with a full budget at pos.
func NewTeam(name, color string, budget float64, strategy Strategy, expert *Expert, pos models.Vec) *Team {
	return &Team{
		Name:           name,
		Color:          color,
		BudgetStart:    budget,
		BudgetLeft:     budget,
		Strategy:       strategy,
		Expert:         expert,
		Pos:            pos,
		StallCooldowns: make(map[int]float64),
	}
}

// TeamItems returns the items bought by the contestants themselves.
func (t *Team) TeamItems() []*models.Item {
	out := make([]*models.Item, 0, len(t.ItemsBought))
	for _, it := range t.ItemsBought {
		if !it.IsExpertPick {
			out = append(out, it)
		}
	}
	return out
}

// TeamItemCount returns the number of non-expert purchases.
func (t *Team) TeamItemCount() int {
	n := 0
	for _, it := range t.ItemsBought {
		if !it.IsExpertPick {
			n++
		}
	}
	return n
}

// CanBuyMore reports whether the team still has open purchase slots.
func (t *Team) CanBuyMore(itemsPerTeam int) bool {
	return t.TeamItemCount() < itemsPerTeam
}

// IncludedItems returns the items that count towards the score.
func (t *Team) IncludedItems() []*models.Item {
	items := t.TeamItems()
	if t.ExpertPickItem != nil && t.ExpertPickIncluded == PickIncluded {
		items = append(items, t.ExpertPickItem)
	}
	return items
}

// OnCooldown reports whether the team is avoiding a stall.
func (t *Team) OnCooldown(stallID int) bool {
	return t.StallCooldowns[stallID] > 0
}

// AvgConfidence returns the mean contestant confidence, 0.5 with no cast.
func (t *Team) AvgConfidence() float64 {
	if len(t.Contestants) == 0 {
		return 0.5
	}
	sum := 0.0
	for _, c := range t.Contestants {
		sum += c.Confidence
	}
	return sum / float64(len(t.Contestants))
}

// AvgTaste returns the mean contestant taste, 0.5 with no cast.
func (t *Team) AvgTaste() float64 {
	if len(t.Contestants) == 0 {
		return 0.5
	}
	sum := 0.0
	for _, c := range t.Contestants {
		sum += c.Taste
	}
	return sum / float64(len(t.Contestants))
}

// NegotiationBonus combines the expert's haggling help with the team's
// confidence; confident teams haggle slightly better.
func (t *Team) NegotiationBonus(confidenceScale float64) float64 {
	bonus := 0.0
	if t.Expert != nil {
		bonus = t.Expert.NegotiationBonus()
	}
	return bonus + (t.AvgConfidence()-0.5)*confidenceScale
}

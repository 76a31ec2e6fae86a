package agents

import "bargain-hunt/internal/rng"

// PlanName identifies a spend plan.
type PlanName string

// Named spend plans.
const (
	BigTwoSmall    PlanName = "big_two_small"
	OneMedTwoSmall PlanName = "one_med_two_small"
	ThreeSmall     PlanName = "three_small"
)

// planEpsilon absorbs float error in the reserve comparison.
const planEpsilon = 1e-6

// SpendPlan paces a team's budget across its purchases. PriceCaps[i] is the
// fraction of the starting budget the (i+1)th purchase may cost; purchases
// past the end of the list use the last cap.
type SpendPlan struct {
	Name      PlanName
	PriceCaps []float64
}

// MaxPriceForPurchase returns the price cap for the purchase at index.
func (p *SpendPlan) MaxPriceForPurchase(index int, budgetStart float64) float64 {
	if len(p.PriceCaps) == 0 {
		return budgetStart
	}
	if index >= len(p.PriceCaps) {
		index = len(p.PriceCaps) - 1
	}
	if index < 0 {
		index = 0
	}
	return budgetStart * p.PriceCaps[index]
}

// AllowsPurchase reports whether buying at price keeps the plan. The last
// open slot is exempt from the cap, and enough budget must remain to buy
// the other open slots at minExpectedPrice each.
func (p *SpendPlan) AllowsPurchase(price float64, index int, budgetStart, budgetLeft float64, remainingSlots int, minExpectedPrice float64) bool {
	if price > budgetLeft {
		return false
	}

	if price > p.MaxPriceForPurchase(index, budgetStart) && remainingSlots > 1 {
		return false
	}

	slotsAfter := remainingSlots - 1
	if slotsAfter < 0 {
		slotsAfter = 0
	}
	reserved := float64(slotsAfter) * minExpectedPrice
	return budgetLeft-price >= reserved-planEpsilon
}

// DefaultSpendPlans returns the stock plans in draw order.
func DefaultSpendPlans() []*SpendPlan {
	return []*SpendPlan{
		{Name: BigTwoSmall, PriceCaps: []float64{0.68, 0.22, 0.22}},
		{Name: OneMedTwoSmall, PriceCaps: []float64{0.52, 0.26, 0.26}},
		{Name: ThreeSmall, PriceCaps: []float64{0.38, 0.38, 0.38}},
	}
}

// PickSpendPlan draws one of the stock plans.
func PickSpendPlan(g *rng.RNG) *SpendPlan {
	return rng.Choice(g, DefaultSpendPlans())
}

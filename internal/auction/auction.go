// Package auction appraises bought items and sells them at the auction house.
package auction

import (
	"math"

	"bargain-hunt/internal/config"
	"bargain-hunt/internal/models"
	"bargain-hunt/internal/rng"
	"bargain-hunt/pkg/utils"
)

// Auctioneer produces pre-auction valuations. Its accuracy is independent of
// the shopping experts.
type Auctioneer struct {
	Name     string
	Accuracy float64
	Bias     map[string]float64

	cfg config.AuctioneerConfig
}

// NewAuctioneer creates an auctioneer with the economy's default accuracy
// and category bias.
func NewAuctioneer(name string, cfg *config.BalanceConfig) *Auctioneer {
	return &Auctioneer{
		Name:     name,
		Accuracy: cfg.Auctioneer.DefaultAccuracy,
		Bias:     cfg.Auctioneer.BiasByCategory,
		cfg:      cfg.Auctioneer,
	}
}

// Sigma returns the log-normal spread of appraisals.
func (a *Auctioneer) Sigma() float64 {
	return math.Max(a.cfg.SigmaFloor, (1-a.Accuracy)*a.cfg.SigmaScale)
}

// Appraise estimates item's sale value, clamped to [1, true value × ratio cap].
func (a *Auctioneer) Appraise(item *models.Item, g *rng.RNG) float64 {
	est := item.TrueValue * g.LogNormal(0, a.Sigma())
	if b, ok := a.Bias[item.Category]; ok {
		est *= b
	}
	hi := math.Max(1, item.TrueValue*a.cfg.AppraisalRatioCap)
	return utils.Round2(rng.Clamp(est, 1, hi))
}

// House is one episode's auction room: per-category demand and a mood.
type House struct {
	Demand map[string]float64
	Mood   string

	cfg config.AuctionHouseConfig
}

// NewHouse creates a house with fixed demand and mood.
func NewHouse(demand map[string]float64, mood string, cfg *config.BalanceConfig) *House {
	return &House{Demand: demand, Mood: mood, cfg: cfg.AuctionHouse}
}

// Generate draws demand for every category in config order, then a weighted
// mood.
func Generate(g *rng.RNG, cfg *config.BalanceConfig) *House {
	ah := cfg.AuctionHouse
	demand := make(map[string]float64, len(ah.Categories))
	for _, c := range ah.Categories {
		demand[c] = g.Uniform(ah.DemandRange.Lo(), ah.DemandRange.Hi())
	}

	weights := make([]float64, len(config.MoodOrder))
	for i, m := range config.MoodOrder {
		weights[i] = ah.MoodProbs[m]
	}
	mood := config.MoodMixed
	if i := g.WeightedIndex(weights); i >= 0 {
		mood = config.MoodOrder[i]
	}

	return NewHouse(demand, mood, cfg)
}

// DemandFor returns the demand multiplier of category, 1 when unknown.
func (h *House) DemandFor(category string) float64 {
	if d, ok := h.Demand[category]; ok {
		return d
	}
	return 1
}

// ConditionMultiplier maps an item's condition onto a price multiplier.
func (h *House) ConditionMultiplier(condition float64) float64 {
	return h.cfg.ConditionBase + h.cfg.ConditionScale*condition
}

// Sell returns the hammer price of item. The combined multiplier over true
// value is clamped to [1/clamp, clamp] and the price floored at 1.
func (h *House) Sell(item *models.Item, g *rng.RNG) float64 {
	tuning := h.cfg.Mood(h.Mood)
	noise := g.LogNormal(0, tuning.Sigma)

	mult := h.DemandFor(item.Category) * h.ConditionMultiplier(item.Condition) * tuning.Multiplier * noise
	clamp := h.cfg.ClampMultiplier
	mult = rng.Clamp(mult, 1/clamp, clamp)

	price := math.Min(utils.Round2(item.TrueValue*mult), item.TrueValue*clamp)
	return math.Max(1, price)
}

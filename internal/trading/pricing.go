// Package trading prices stall stock and resolves haggling.
package trading

import (
	"math"

	"bargain-hunt/internal/config"
	"bargain-hunt/internal/models"
	"bargain-hunt/internal/rng"
	"bargain-hunt/pkg/utils"
)

// Terms are the haggling parameters a seller offers.
type Terms struct {
	BaseChance  float64
	DiscountMin float64
	DiscountMax float64
}

// TermsFor returns the haggling terms of a stall.
func TermsFor(s *models.Stall) Terms {
	return Terms{
		BaseChance:  s.DiscountChance,
		DiscountMin: s.DiscountMin,
		DiscountMax: s.DiscountMax,
	}
}

// Outcome reports one negotiation attempt.
type Outcome struct {
	Success  bool
	Discount float64
	Before   float64
	After    float64
}

// Pricer sets shop prices and resolves negotiations from the economy config.
type Pricer struct {
	shop config.ShopPricingConfig
	neg  config.NegotiationConfig
}

// NewPricer creates a pricer for cfg.
func NewPricer(cfg *config.BalanceConfig) *Pricer {
	return &Pricer{
		shop: cfg.ShopPricing,
		neg:  cfg.Negotiation,
	}
}

// MinPrice returns the shop price floor.
func (p *Pricer) MinPrice() float64 {
	return p.shop.MinPrice
}

// SetShopPrice prices item as a random fraction of its true value drawn from
// the style's range, never below the price floor.
func (p *Pricer) SetShopPrice(item *models.Item, g *rng.RNG, style string) {
	r := p.shop.Fraction(style)
	frac := g.Uniform(r.Lo(), r.Hi())
	item.ShopPrice = math.Max(p.shop.MinPrice, utils.Round2(item.TrueValue*frac))
}

// Chance returns the success probability for terms plus a haggling bonus.
func (p *Pricer) Chance(terms Terms, bonus float64) float64 {
	return math.Max(0, math.Min(p.neg.MaxChance, terms.BaseChance+bonus))
}

// window returns the discount window after config overrides and clamping.
func (p *Pricer) window(terms Terms) (float64, float64) {
	lo, hi := terms.DiscountMin, terms.DiscountMax
	if p.neg.DiscountMin != nil {
		lo = *p.neg.DiscountMin
	}
	if p.neg.DiscountMax != nil {
		hi = *p.neg.DiscountMax
	}
	lo = rng.Clamp(lo, p.neg.DiscountFloor, p.neg.DiscountCeiling)
	hi = rng.Clamp(hi, p.neg.DiscountFloor, p.neg.DiscountCeiling)
	if hi < lo {
		lo, hi = hi, lo
	}
	return lo, hi
}

// Negotiate makes one haggling attempt on item. On success the shop price
// drops by a discount drawn from the terms window; on failure nothing
// changes. The floor price still applies.
func (p *Pricer) Negotiate(item *models.Item, g *rng.RNG, terms Terms, bonus float64) Outcome {
	out := Outcome{Before: item.ShopPrice, After: item.ShopPrice}
	if !g.Bernoulli(p.Chance(terms, bonus)) {
		return out
	}

	lo, hi := p.window(terms)
	disc := g.Uniform(lo, hi)
	item.ShopPrice = math.Max(p.shop.MinPrice, utils.Round2(item.ShopPrice*(1.0-disc)))
	item.WasNegotiated = true
	item.NegotiationDiscount = disc

	out.Success = true
	out.Discount = disc
	out.After = item.ShopPrice
	return out
}

// ExpectedPrice estimates the post-haggle price without drawing from the RNG.
// share scales how much of the mean discount the buyer counts on.
func (p *Pricer) ExpectedPrice(price float64, terms Terms, bonus, share float64) float64 {
	lo, hi := p.window(terms)
	mean := (lo + hi) / 2
	return math.Max(p.shop.MinPrice, price*(1.0-share*p.Chance(terms, bonus)*mean))
}

package trading

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"bargain-hunt/internal/config"
	"bargain-hunt/internal/models"
	"bargain-hunt/internal/rng"
)

func TestProperty_ShopPriceRespectsFloor(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	p := NewPricer(config.DefaultBalanceConfig())

	properties.Property("shop price never below the floor", prop.ForAll(
		func(seed int64, trueValue float64, style string) bool {
			item := &models.Item{TrueValue: trueValue}
			p.SetShopPrice(item, rng.New(seed), style)
			return item.ShopPrice >= p.MinPrice()
		},
		gen.Int64(),
		gen.Float64Range(0.5, 2000),
		gen.OneConstOf(config.StyleFair, config.StyleOverpriced, config.StyleChaotic),
	))

	properties.TestingRun(t)
}

func TestShopPriceFollowsStyleRange(t *testing.T) {
	cfg := config.DefaultBalanceConfig()
	p := NewPricer(cfg)
	g := rng.New(3)
	for _, style := range config.PricingStyles {
		r := cfg.ShopPricing.Fraction(style)
		for i := 0; i < 200; i++ {
			item := &models.Item{TrueValue: 200}
			p.SetShopPrice(item, g, style)
			lo := 200*r.Lo() - 0.01
			hi := 200*r.Hi() + 0.01
			if item.ShopPrice < lo || item.ShopPrice > hi {
				t.Fatalf("%s price %.2f outside [%.2f, %.2f]", style, item.ShopPrice, lo, hi)
			}
		}
	}
}

func TestNegotiationBoundsAndRate(t *testing.T) {
	cfg := config.DefaultBalanceConfig()
	cfg.Negotiation.DiscountCeiling = 0.3
	p := NewPricer(cfg)
	g := rng.New(11)

	terms := Terms{BaseChance: 0.5, DiscountMin: 0.05, DiscountMax: 0.5}
	const trials = 2000
	successes := 0
	for i := 0; i < trials; i++ {
		item := &models.Item{ShopPrice: 100}
		out := p.Negotiate(item, g, terms, 0)
		if !out.Success {
			if item.ShopPrice != 100 {
				t.Fatalf("failed negotiation changed price to %.2f", item.ShopPrice)
			}
			continue
		}
		successes++
		if out.Discount < cfg.Negotiation.DiscountFloor || out.Discount > cfg.Negotiation.DiscountCeiling {
			t.Fatalf("discount %.3f outside [%.2f, %.2f]", out.Discount,
				cfg.Negotiation.DiscountFloor, cfg.Negotiation.DiscountCeiling)
		}
		if !item.WasNegotiated || item.ShopPrice >= 100 {
			t.Fatalf("successful negotiation left price at %.2f", item.ShopPrice)
		}
	}

	rate := float64(successes) / trials
	if math.Abs(rate-0.5) > 0.05 {
		t.Errorf("success rate %.3f not within 0.05 of 0.5", rate)
	}
}

func TestNegotiationChanceCapped(t *testing.T) {
	cfg := config.DefaultBalanceConfig()
	cfg.Negotiation.MaxChance = 0.4
	p := NewPricer(cfg)
	if got := p.Chance(Terms{BaseChance: 0.3}, 0.5); got != 0.4 {
		t.Errorf("Chance = %.2f, want cap 0.4", got)
	}
}

func TestNegotiationOverrideWindow(t *testing.T) {
	cfg := config.DefaultBalanceConfig()
	min, max := 0.1, 0.1
	cfg.Negotiation.DiscountMin = &min
	cfg.Negotiation.DiscountMax = &max
	cfg.Negotiation.MaxChance = 1
	p := NewPricer(cfg)

	item := &models.Item{ShopPrice: 50}
	out := p.Negotiate(item, rng.New(1), Terms{BaseChance: 1, DiscountMin: 0.3, DiscountMax: 0.4}, 0)
	if !out.Success || math.Abs(out.Discount-0.1) > 1e-9 || item.ShopPrice != 45 {
		t.Errorf("override window not applied: %+v price %.2f", out, item.ShopPrice)
	}
}

package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	apperrors "bargain-hunt/internal/errors"
)

func TestDefaultsValidate(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if err := RealisticBalanceConfig().Validate(); err != nil {
		t.Fatalf("realistic preset invalid: %v", err)
	}
}

func TestLoadWritesTemplateAndKeepsDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "config.toml")); err != nil {
		t.Fatalf("template not written: %v", err)
	}
	if cfg.Show.ItemsPerTeam != 3 || cfg.Market.TeamSpeed != 160 {
		t.Errorf("unexpected defaults: %+v", cfg.Show)
	}

	// Second load reads the template back.
	again, err := Load(dir)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if again.Market.BuyDecisionSeconds != (FloatRange{1.2, 3.4}) {
		t.Errorf("buy_decision_seconds = %v", again.Market.BuyDecisionSeconds)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := Default()
	cfg.Market.BuyDecisionSeconds = FloatRange{3, 1}
	if err := cfg.Validate(); !apperrors.Is(err, apperrors.ErrConfigInvalid) {
		t.Errorf("inverted range: got %v", err)
	}

	cfg = Default()
	cfg.Items.Source = "catalogue"
	if err := cfg.Validate(); !apperrors.Is(err, apperrors.ErrUnknownItemSource) {
		t.Errorf("unknown source: got %v", err)
	}

	econ := DefaultBalanceConfig()
	econ.AuctionHouse.MoodProbs = map[string]float64{MoodHot: 0}
	if err := econ.Validate(); err == nil {
		t.Error("zero mood weights accepted")
	}
}

func TestBalanceRoundTrip(t *testing.T) {
	for _, name := range []string{"economy.json", "economy.toml", "economy.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			want := RealisticBalanceConfig()
			min, max := 0.04, 0.22
			want.Negotiation.DiscountMin = &min
			want.Negotiation.DiscountMax = &max
			want.Auctioneer.BiasByCategory = map[string]float64{"silverware": 1.05}

			if err := SaveBalance(want, path); err != nil {
				t.Fatalf("SaveBalance: %v", err)
			}
			got, err := LoadBalance(path)
			if err != nil {
				t.Fatalf("LoadBalance: %v", err)
			}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("round trip mismatch:\n got  %+v\n want %+v", got, want)
			}
		})
	}
}

func TestBalancePartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.json")
	doc := `{
  "shop_pricing": {"fair": [0.6, 0.8]},
  "auction_house": {"moods": {"hot": {"multiplier": 1.2}}},
  "gavel": {"probability": 0.5}
}`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := LoadBalance(path)
	if err != nil {
		t.Fatalf("LoadBalance: %v", err)
	}
	def := DefaultBalanceConfig()

	if got.ShopPricing.Fair != (FloatRange{0.6, 0.8}) {
		t.Errorf("fair = %v", got.ShopPricing.Fair)
	}
	if got.ShopPricing.Chaotic != def.ShopPricing.Chaotic {
		t.Errorf("chaotic changed: %v", got.ShopPricing.Chaotic)
	}
	if got.Gavel.Probability != 0.5 || got.Gavel.ProfitThreshold != def.Gavel.ProfitThreshold {
		t.Errorf("gavel = %+v", got.Gavel)
	}
	hot := got.AuctionHouse.Moods[MoodHot]
	if hot.Multiplier != 1.2 || hot.Sigma != def.AuctionHouse.Moods[MoodHot].Sigma {
		t.Errorf("hot mood = %+v", hot)
	}
	if got.AuctionHouse.Moods[MoodCold] != def.AuctionHouse.Moods[MoodCold] {
		t.Errorf("cold mood changed: %+v", got.AuctionHouse.Moods[MoodCold])
	}
}

func TestLoadBalanceMissingFile(t *testing.T) {
	_, err := LoadBalance(filepath.Join(t.TempDir(), "missing.json"))
	if err == nil {
		t.Fatal("expected error for missing economy document")
	}
	var cfgErr *apperrors.ConfigError
	if !apperrors.As(err, &cfgErr) {
		t.Errorf("expected ConfigError, got %T", err)
	}
}

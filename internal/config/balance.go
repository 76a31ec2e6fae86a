package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	apperrors "bargain-hunt/internal/errors"
)

// BalanceVersion is the economy document version written by SaveBalance.
const BalanceVersion = 2

// FloatRange is an inclusive [lo, hi] pair, serialized as a two-element array.
type FloatRange [2]float64

// Lo returns the lower bound.
func (r FloatRange) Lo() float64 { return r[0] }

// Hi returns the upper bound.
func (r FloatRange) Hi() float64 { return r[1] }

func (r FloatRange) check(field string) error {
	if r[0] > r[1] {
		return apperrors.InvalidField(field, "range is inverted: [%.3f, %.3f]", r[0], r[1])
	}
	return nil
}

// Pricing styles.
const (
	StyleFair       = "fair"
	StyleOverpriced = "overpriced"
	StyleChaotic    = "chaotic"
	// StyleMixed lets every stall draw its own style.
	StyleMixed = "mixed"
)

// PricingStyles lists the stall pricing styles in draw order.
var PricingStyles = []string{StyleFair, StyleOverpriced, StyleChaotic}

// Auction moods.
const (
	MoodHot   = "hot"
	MoodCold  = "cold"
	MoodMixed = "mixed"
)

// MoodOrder is the fixed iteration order used for mood draws.
var MoodOrder = []string{MoodHot, MoodCold, MoodMixed}

// BalanceConfig holds every numeric knob that affects economic outcomes.
type BalanceConfig struct {
	Version      int                `mapstructure:"version" json:"version"`
	ShopPricing  ShopPricingConfig  `mapstructure:"shop_pricing" json:"shop_pricing"`
	Negotiation  NegotiationConfig  `mapstructure:"negotiation" json:"negotiation"`
	Auctioneer   AuctioneerConfig   `mapstructure:"auctioneer" json:"auctioneer"`
	AuctionHouse AuctionHouseConfig `mapstructure:"auction_house" json:"auction_house"`
	TrueValue    TrueValueConfig    `mapstructure:"true_value" json:"true_value"`
	Gavel        GavelConfig        `mapstructure:"gavel" json:"gavel"`
	Stalls       StallsConfig       `mapstructure:"stalls" json:"stalls"`
	Expert       ExpertConfig       `mapstructure:"expert" json:"expert"`
	Strategy     StrategyConfig     `mapstructure:"strategy" json:"strategy"`
	Team         TeamConfig         `mapstructure:"team" json:"team"`
	Reveal       RevealConfig       `mapstructure:"reveal" json:"reveal"`
}

// ShopPricingConfig holds the shop-price fraction of true value per stall style.
type ShopPricingConfig struct {
	Fair       FloatRange `mapstructure:"fair" json:"fair"`
	Overpriced FloatRange `mapstructure:"overpriced" json:"overpriced"`
	Chaotic    FloatRange `mapstructure:"chaotic" json:"chaotic"`
	MinPrice   float64    `mapstructure:"min_price" json:"min_price"`
}

// Fraction returns the price-fraction range for a style. Unknown styles
// price as chaotic.
func (c ShopPricingConfig) Fraction(style string) FloatRange {
	switch style {
	case StyleFair:
		return c.Fair
	case StyleOverpriced:
		return c.Overpriced
	default:
		return c.Chaotic
	}
}

// NegotiationConfig bounds haggling outcomes. DiscountMin and DiscountMax,
// when set, replace the per-stall discount window.
type NegotiationConfig struct {
	BaseChance      float64  `mapstructure:"base_chance" json:"base_chance"`
	MaxChance       float64  `mapstructure:"max_chance" json:"max_chance"`
	DiscountMin     *float64 `mapstructure:"discount_min" json:"discount_min,omitempty"`
	DiscountMax     *float64 `mapstructure:"discount_max" json:"discount_max,omitempty"`
	DiscountFloor   float64  `mapstructure:"discount_floor" json:"discount_floor"`
	DiscountCeiling float64  `mapstructure:"discount_ceiling" json:"discount_ceiling"`
}

// AuctioneerConfig holds the appraisal noise model.
type AuctioneerConfig struct {
	SigmaFloor        float64            `mapstructure:"sigma_floor" json:"sigma_floor"`
	SigmaScale        float64            `mapstructure:"sigma_scale" json:"sigma_scale"`
	BiasByCategory    map[string]float64 `mapstructure:"bias_by_category" json:"bias_by_category"`
	DefaultAccuracy   float64            `mapstructure:"default_accuracy" json:"default_accuracy"`
	AppraisalRatioCap float64            `mapstructure:"appraisal_ratio_cap" json:"appraisal_ratio_cap"`
}

// MoodTuning is the sale multiplier and noise for one auction mood.
type MoodTuning struct {
	Multiplier float64 `mapstructure:"multiplier" json:"multiplier"`
	Sigma      float64 `mapstructure:"sigma" json:"sigma"`
}

// AuctionHouseConfig holds the sale price model.
type AuctionHouseConfig struct {
	Categories      []string              `mapstructure:"categories" json:"categories"`
	DemandRange     FloatRange            `mapstructure:"demand_range" json:"demand_range"`
	MoodProbs       map[string]float64    `mapstructure:"mood_probs" json:"mood_probs"`
	Moods           map[string]MoodTuning `mapstructure:"moods" json:"moods"`
	ClampMultiplier float64               `mapstructure:"clamp_multiplier" json:"clamp_multiplier"`
	ConditionBase   float64               `mapstructure:"condition_base" json:"condition_base"`
	ConditionScale  float64               `mapstructure:"condition_scale" json:"condition_scale"`
}

// Mood returns the tuning for a mood, falling back to the mixed defaults.
func (c AuctionHouseConfig) Mood(name string) MoodTuning {
	if m, ok := c.Moods[name]; ok {
		return m
	}
	return MoodTuning{Multiplier: 1.0, Sigma: 0.28}
}

// TrueValueConfig holds the synthetic item value model.
type TrueValueConfig struct {
	FallbackSigma  float64 `mapstructure:"fallback_sigma" json:"fallback_sigma"`
	Base           float64 `mapstructure:"base" json:"base"`
	Span           float64 `mapstructure:"span" json:"span"`
	RarityWeight   float64 `mapstructure:"rarity_weight" json:"rarity_weight"`
	StyleWeight    float64 `mapstructure:"style_weight" json:"style_weight"`
	ConditionBase  float64 `mapstructure:"condition_base" json:"condition_base"`
	ConditionScale float64 `mapstructure:"condition_scale" json:"condition_scale"`
}

// GavelConfig holds the quick-runner golden gavel award rule.
type GavelConfig struct {
	ProfitThreshold float64 `mapstructure:"profit_threshold" json:"profit_threshold"`
	Probability     float64 `mapstructure:"probability" json:"probability"`
}

// MaxStalls is the number of stall positions in the market layout.
const MaxStalls = 6

// StallsConfig controls market generation.
type StallsConfig struct {
	Count                    int        `mapstructure:"count" json:"count"`
	ItemsPerStall            [2]int     `mapstructure:"items_per_stall" json:"items_per_stall"`
	DiscountChance           float64    `mapstructure:"discount_chance" json:"discount_chance"`
	OverpricedDiscountChance float64    `mapstructure:"overpriced_discount_chance" json:"overpriced_discount_chance"`
	Discount                 FloatRange `mapstructure:"discount" json:"discount"`
	Width                    float64    `mapstructure:"width" json:"width"`
	Height                   float64    `mapstructure:"height" json:"height"`
}

// ExpertConfig maps expert profile traits onto valuation and negotiation.
type ExpertConfig struct {
	SigmaFloor            float64 `mapstructure:"sigma_floor" json:"sigma_floor"`
	SigmaScale            float64 `mapstructure:"sigma_scale" json:"sigma_scale"`
	NegotiationScale      float64 `mapstructure:"negotiation_scale" json:"negotiation_scale"`
	OptimismScale         float64 `mapstructure:"optimism_scale" json:"optimism_scale"`
	SpecialtyBoost        float64 `mapstructure:"specialty_boost" json:"specialty_boost"`
	SpecialtyScoreBonus   float64 `mapstructure:"specialty_score_bonus" json:"specialty_score_bonus"`
	ConditionWeight       float64 `mapstructure:"condition_weight" json:"condition_weight"`
	RiskWeight            float64 `mapstructure:"risk_weight" json:"risk_weight"`
	ExpectedDiscountShare float64 `mapstructure:"expected_discount_share" json:"expected_discount_share"`
	LeftoverJitter        float64 `mapstructure:"leftover_jitter" json:"leftover_jitter"`
	TimeFactorScale       float64 `mapstructure:"time_factor_scale" json:"time_factor_scale"`
}

// StrategyConfig holds shopping strategy thresholds.
type StrategyConfig struct {
	ValueMargin      float64 `mapstructure:"value_margin" json:"value_margin"`
	ValueJitter      float64 `mapstructure:"value_jitter" json:"value_jitter"`
	RiskMargin       float64 `mapstructure:"risk_margin" json:"risk_margin"`
	RiskMinCondition float64 `mapstructure:"risk_min_condition" json:"risk_min_condition"`
	RiskJitter       float64 `mapstructure:"risk_jitter" json:"risk_jitter"`
	TasteWeight      float64 `mapstructure:"taste_weight" json:"taste_weight"`
}

// TeamConfig holds contestant influence on haggling.
type TeamConfig struct {
	ConfidenceBonusScale float64 `mapstructure:"confidence_bonus_scale" json:"confidence_bonus_scale"`
}

// RevealConfig weights the automatic include/exclude call on expert picks.
type RevealConfig struct {
	MarginWeight      float64 `mapstructure:"margin_weight" json:"margin_weight"`
	PerformanceWeight float64 `mapstructure:"performance_weight" json:"performance_weight"`
	PerformanceScale  float64 `mapstructure:"performance_scale" json:"performance_scale"`
	RapportWeight     float64 `mapstructure:"rapport_weight" json:"rapport_weight"`
	TasteWeight       float64 `mapstructure:"taste_weight" json:"taste_weight"`
	Noise             float64 `mapstructure:"noise" json:"noise"`
	Threshold         float64 `mapstructure:"threshold" json:"threshold"`
}

// DefaultCategories is the fixed item category enum.
var DefaultCategories = []string{
	"ceramics", "clocks", "tools", "glassware", "prints", "toys", "silverware", "books",
}

// DefaultBalanceConfig returns the documented defaults.
func DefaultBalanceConfig() *BalanceConfig {
	return &BalanceConfig{
		Version: BalanceVersion,
		ShopPricing: ShopPricingConfig{
			Fair:       FloatRange{0.55, 0.9},
			Overpriced: FloatRange{0.85, 1.25},
			Chaotic:    FloatRange{0.45, 1.45},
			MinPrice:   5.0,
		},
		Negotiation: NegotiationConfig{
			BaseChance:      0.18,
			MaxChance:       0.95,
			DiscountFloor:   0.0,
			DiscountCeiling: 0.85,
		},
		Auctioneer: AuctioneerConfig{
			SigmaFloor:        0.03,
			SigmaScale:        0.55,
			BiasByCategory:    map[string]float64{},
			DefaultAccuracy:   0.82,
			AppraisalRatioCap: 1.55,
		},
		AuctionHouse: AuctionHouseConfig{
			Categories:  append([]string(nil), DefaultCategories...),
			DemandRange: FloatRange{0.85, 1.25},
			MoodProbs:   map[string]float64{MoodHot: 1.0, MoodCold: 1.0, MoodMixed: 1.0},
			Moods: map[string]MoodTuning{
				MoodHot:   {Multiplier: 1.03, Sigma: 0.30},
				MoodCold:  {Multiplier: 0.9, Sigma: 0.26},
				MoodMixed: {Multiplier: 1.0, Sigma: 0.28},
			},
			ClampMultiplier: 2.4,
			ConditionBase:   0.65,
			ConditionScale:  0.75,
		},
		TrueValue: TrueValueConfig{
			FallbackSigma:  0.35,
			Base:           20,
			Span:           180,
			RarityWeight:   0.55,
			StyleWeight:    0.45,
			ConditionBase:  0.55,
			ConditionScale: 0.75,
		},
		Gavel: GavelConfig{
			ProfitThreshold: 225.0,
			Probability:     0.25,
		},
		Stalls: StallsConfig{
			Count:                    6,
			ItemsPerStall:            [2]int{6, 10},
			DiscountChance:           0.18,
			OverpricedDiscountChance: 0.10,
			Discount:                 FloatRange{0.05, 0.20},
			Width:                    170,
			Height:                   110,
		},
		Expert: ExpertConfig{
			SigmaFloor:            0.05,
			SigmaScale:            0.65,
			NegotiationScale:      0.12,
			OptimismScale:         0.2,
			SpecialtyBoost:        1.05,
			SpecialtyScoreBonus:   0.1,
			ConditionWeight:       10,
			RiskWeight:            0.3,
			ExpectedDiscountShare: 0.5,
			LeftoverJitter:        6.0,
			TimeFactorScale:       0.8,
		},
		Strategy: StrategyConfig{
			ValueMargin:      12.0,
			ValueJitter:      0.25,
			RiskMargin:       6.0,
			RiskMinCondition: 0.55,
			RiskJitter:       0.1,
			TasteWeight:      0.5,
		},
		Team: TeamConfig{
			ConfidenceBonusScale: 0.1,
		},
		Reveal: RevealConfig{
			MarginWeight:      1.0,
			PerformanceWeight: 0.4,
			PerformanceScale:  100,
			RapportWeight:     0.5,
			TasteWeight:       0.3,
			Noise:             0.25,
			Threshold:         0.0,
		},
	}
}

// RealisticBalanceConfig returns the tuned preset with occasional losses and
// rarer golden gavels.
func RealisticBalanceConfig() *BalanceConfig {
	c := DefaultBalanceConfig()
	c.ShopPricing.Fair = FloatRange{0.75, 1.05}
	c.ShopPricing.Overpriced = FloatRange{0.95, 1.45}
	c.ShopPricing.Chaotic = FloatRange{0.60, 1.60}
	c.Negotiation.MaxChance = 0.65
	c.Negotiation.DiscountCeiling = 0.35
	c.Auctioneer.DefaultAccuracy = 0.80
	c.Auctioneer.AppraisalRatioCap = 1.40
	c.AuctionHouse.DemandRange = FloatRange{0.80, 1.15}
	c.AuctionHouse.MoodProbs = map[string]float64{MoodHot: 0.25, MoodCold: 0.30, MoodMixed: 0.45}
	c.AuctionHouse.Moods = map[string]MoodTuning{
		MoodHot:   {Multiplier: 1.01, Sigma: 0.26},
		MoodCold:  {Multiplier: 0.86, Sigma: 0.30},
		MoodMixed: {Multiplier: 1.00, Sigma: 0.28},
	}
	c.AuctionHouse.ClampMultiplier = 2.0
	c.Gavel.ProfitThreshold = 350.0
	c.Gavel.Probability = 0.18
	return c
}

// Preset returns a named economy preset.
func Preset(name string) (*BalanceConfig, error) {
	switch strings.ToLower(name) {
	case "", "default":
		return DefaultBalanceConfig(), nil
	case "realistic":
		return RealisticBalanceConfig(), nil
	}
	return nil, apperrors.InvalidField("economy", "unknown preset %q", name)
}

// LoadBalance reads an economy document (JSON, TOML or YAML by extension)
// and decodes it over the defaults, so keys missing from the document keep
// their default values.
func LoadBalance(path string) (*BalanceConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewConfigError(path, "", apperrors.ErrConfigNotFound)
		}
		return nil, apperrors.NewConfigError(path, "", err)
	}

	cfg := DefaultBalanceConfig()
	defaultMoods := make(map[string]MoodTuning, len(cfg.AuctionHouse.Moods))
	for k, m := range cfg.AuctionHouse.Moods {
		defaultMoods[k] = m
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, apperrors.NewConfigError(path, "", err)
	}
	fillMoodDefaults(cfg, defaultMoods, v)

	if err := cfg.Validate(); err != nil {
		return nil, apperrors.NewConfigError(path, "", err)
	}
	return cfg, nil
}

// fillMoodDefaults restores fields a partial mood entry left out. Map values
// decode into fresh structs, so an entry naming only its multiplier would
// otherwise end up with zero sigma.
func fillMoodDefaults(cfg *BalanceConfig, defaults map[string]MoodTuning, v *viper.Viper) {
	for name, mood := range cfg.AuctionHouse.Moods {
		prefix := "auction_house.moods." + name + "."
		if !v.IsSet(prefix + "multiplier") {
			mood.Multiplier = 1.0
			if d, ok := defaults[name]; ok {
				mood.Multiplier = d.Multiplier
			}
		}
		if !v.IsSet(prefix + "sigma") {
			mood.Sigma = defaults[MoodMixed].Sigma
			if d, ok := defaults[name]; ok {
				mood.Sigma = d.Sigma
			}
		}
		cfg.AuctionHouse.Moods[name] = mood
	}
}

// SaveBalance writes cfg to path. The format follows the file extension.
func SaveBalance(cfg *BalanceConfig, path string) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding economy: %w", err)
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("encoding economy: %w", err)
	}

	v := viper.New()
	if err := v.MergeConfigMap(doc); err != nil {
		return fmt.Errorf("encoding economy: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating economy directory: %w", err)
	}
	if err := v.WriteConfigAs(path); err != nil {
		return apperrors.NewConfigError(path, "", err)
	}
	return nil
}

// Clone returns a deep copy of the config.
func (c *BalanceConfig) Clone() *BalanceConfig {
	out := *c
	if c.Negotiation.DiscountMin != nil {
		v := *c.Negotiation.DiscountMin
		out.Negotiation.DiscountMin = &v
	}
	if c.Negotiation.DiscountMax != nil {
		v := *c.Negotiation.DiscountMax
		out.Negotiation.DiscountMax = &v
	}
	out.Auctioneer.BiasByCategory = make(map[string]float64, len(c.Auctioneer.BiasByCategory))
	for k, v := range c.Auctioneer.BiasByCategory {
		out.Auctioneer.BiasByCategory[k] = v
	}
	out.AuctionHouse.Categories = append([]string(nil), c.AuctionHouse.Categories...)
	out.AuctionHouse.MoodProbs = make(map[string]float64, len(c.AuctionHouse.MoodProbs))
	for k, v := range c.AuctionHouse.MoodProbs {
		out.AuctionHouse.MoodProbs[k] = v
	}
	out.AuctionHouse.Moods = make(map[string]MoodTuning, len(c.AuctionHouse.Moods))
	for k, v := range c.AuctionHouse.Moods {
		out.AuctionHouse.Moods[k] = v
	}
	return &out
}

// Validate validates the economy config.
func (c *BalanceConfig) Validate() error {
	for field, r := range map[string]FloatRange{
		"shop_pricing.fair":          c.ShopPricing.Fair,
		"shop_pricing.overpriced":    c.ShopPricing.Overpriced,
		"shop_pricing.chaotic":       c.ShopPricing.Chaotic,
		"auction_house.demand_range": c.AuctionHouse.DemandRange,
		"stalls.discount":            c.Stalls.Discount,
	} {
		if err := r.check(field); err != nil {
			return err
		}
		if r.Lo() < 0 {
			return apperrors.InvalidField(field, "must be non-negative")
		}
	}
	if c.ShopPricing.MinPrice <= 0 {
		return apperrors.InvalidField("shop_pricing.min_price", "must be positive")
	}

	n := c.Negotiation
	if err := checkProbability("negotiation.base_chance", n.BaseChance); err != nil {
		return err
	}
	if err := checkProbability("negotiation.max_chance", n.MaxChance); err != nil {
		return err
	}
	if n.DiscountFloor < 0 || n.DiscountCeiling >= 1 || n.DiscountFloor > n.DiscountCeiling {
		return apperrors.InvalidField("negotiation.discount_ceiling", "need 0 <= floor <= ceiling < 1")
	}
	if n.DiscountMin != nil && n.DiscountMax != nil && *n.DiscountMin > *n.DiscountMax {
		return apperrors.InvalidField("negotiation.discount_min", "exceeds discount_max")
	}

	if c.Auctioneer.SigmaFloor < 0 || c.Auctioneer.SigmaScale < 0 {
		return apperrors.InvalidField("auctioneer.sigma_floor", "noise parameters must be non-negative")
	}
	if c.Auctioneer.AppraisalRatioCap <= 0 {
		return apperrors.InvalidField("auctioneer.appraisal_ratio_cap", "must be positive")
	}

	ah := c.AuctionHouse
	if len(ah.Categories) == 0 {
		return apperrors.InvalidField("auction_house.categories", "must not be empty")
	}
	if ah.ClampMultiplier < 1 {
		return apperrors.InvalidField("auction_house.clamp_multiplier", "must be at least 1")
	}
	total := 0.0
	for mood, w := range ah.MoodProbs {
		if w < 0 {
			return apperrors.InvalidField("auction_house.mood_probs."+mood, "must be non-negative")
		}
		total += w
	}
	if total <= 0 {
		return apperrors.InvalidField("auction_house.mood_probs", "weights sum to zero")
	}

	if c.TrueValue.FallbackSigma < 0 {
		return apperrors.InvalidField("true_value.fallback_sigma", "must be non-negative")
	}
	if err := checkProbability("gavel.probability", c.Gavel.Probability); err != nil {
		return err
	}

	s := c.Stalls
	if s.Count < 1 || s.Count > MaxStalls {
		return apperrors.InvalidField("stalls.count", "must be in [1, %d]", MaxStalls)
	}
	if s.ItemsPerStall[0] < 1 || s.ItemsPerStall[0] > s.ItemsPerStall[1] {
		return apperrors.InvalidField("stalls.items_per_stall", "need 1 <= min <= max")
	}
	if err := checkProbability("stalls.discount_chance", s.DiscountChance); err != nil {
		return err
	}
	if err := checkProbability("stalls.overpriced_discount_chance", s.OverpricedDiscountChance); err != nil {
		return err
	}

	if c.Expert.SigmaFloor < 0 || c.Expert.SigmaScale < 0 {
		return apperrors.InvalidField("expert.sigma_floor", "noise parameters must be non-negative")
	}
	if c.Expert.ExpectedDiscountShare < 0 || c.Expert.ExpectedDiscountShare > 1 {
		return apperrors.InvalidField("expert.expected_discount_share", "must be in [0, 1]")
	}
	if c.Strategy.RiskMinCondition < 0 || c.Strategy.RiskMinCondition > 1 {
		return apperrors.InvalidField("strategy.risk_min_condition", "must be in [0, 1]")
	}
	if c.Reveal.Noise < 0 {
		return apperrors.InvalidField("reveal.noise", "must be non-negative")
	}
	return nil
}

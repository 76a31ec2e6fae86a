package agents

import (
	"math"

	"bargain-hunt/internal/config"
	"bargain-hunt/internal/models"
	"bargain-hunt/internal/rng"
	"bargain-hunt/internal/trading"
	"bargain-hunt/pkg/utils"
)

// ExpertProfile is one roster entry. Traits are in [0,1]; CategoryBias maps a
// category to a valuation multiplier.
type ExpertProfile struct {
	ID                string             `json:"id"`
	FullName          string             `json:"full_name"`
	Specialty         string             `json:"specialty"`
	YearsExperience   int                `json:"years_experience"`
	SignatureStyle    string             `json:"signature_style"`
	AppraisalAccuracy float64            `json:"appraisal_accuracy"`
	NegotiationSkill  float64            `json:"negotiation_skill"`
	RiskAppetite      float64            `json:"risk_appetite"`
	CategoryBias      map[string]float64 `json:"category_bias"`
	TimeManagement    float64            `json:"time_management"`
	TrustFactor       float64            `json:"trust_factor"`
	Catchphrase       string             `json:"catchphrase"`
	MoodBaseline      string             `json:"mood_baseline"`
}

// Expert is a profile at runtime. EffectStrength pulls every trait towards
// neutral (0) or exaggerates it (>1); 1 uses the profile as written.
type Expert struct {
	Profile        ExpertProfile
	EffectStrength float64

	cfg    config.ExpertConfig
	pricer *trading.Pricer
}

// NewExpert wraps profile with the economy's expert tuning.
func NewExpert(profile ExpertProfile, effectStrength float64, cfg *config.BalanceConfig) *Expert {
	return &Expert{
		Profile:        profile,
		EffectStrength: effectStrength,
		cfg:            cfg.Expert,
		pricer:         trading.NewPricer(cfg),
	}
}

// Name returns the expert's display name.
func (e *Expert) Name() string {
	return e.Profile.FullName
}

// scaled applies the effect strength to a trait around its neutral midpoint.
func (e *Expert) scaled(trait float64) float64 {
	return rng.Clamp(0.5+(trait-0.5)*e.EffectStrength, 0, 1)
}

// Sigma returns the log-normal spread of the expert's valuations.
func (e *Expert) Sigma() float64 {
	return math.Max(e.cfg.SigmaFloor, (1-e.scaled(e.Profile.AppraisalAccuracy))*e.cfg.SigmaScale)
}

// NegotiationBonus is what the expert adds to a team's haggling chance.
func (e *Expert) NegotiationBonus() float64 {
	return e.scaled(e.Profile.NegotiationSkill) * e.cfg.NegotiationScale
}

// Optimism inflates valuations for risk-hungry experts.
func (e *Expert) Optimism() float64 {
	return 1 + (e.scaled(e.Profile.RiskAppetite)-0.5)*e.cfg.OptimismScale
}

// ConsultationTimeFactor scales deliberation time; good time managers are quicker.
func (e *Expert) ConsultationTimeFactor() float64 {
	return rng.Clamp(1+(0.5-e.scaled(e.Profile.TimeManagement))*e.cfg.TimeFactorScale, 0.5, 1.5)
}

// TrustFactor returns how much the team listens to this expert.
func (e *Expert) TrustFactor() float64 {
	return e.scaled(e.Profile.TrustFactor)
}

// CategoryMultiplier returns the expert's bias towards category.
func (e *Expert) CategoryMultiplier(category string) float64 {
	if b, ok := e.Profile.CategoryBias[category]; ok {
		return 1 + (b-1)*e.EffectStrength
	}
	if category == e.Profile.Specialty {
		return e.cfg.SpecialtyBoost
	}
	return 1
}

// EstimateValue draws the expert's private valuation of item.
func (e *Expert) EstimateValue(item *models.Item, g *rng.RNG) float64 {
	noise := g.LogNormal(0, e.Sigma())
	return item.TrueValue * noise * e.CategoryMultiplier(item.Category) * e.Optimism()
}

// score ranks an item for purchase at an expected price.
func (e *Expert) score(item *models.Item, estimate, price float64) float64 {
	margin := estimate - price
	if margin > 0 {
		margin *= 1 + e.cfg.RiskWeight*(e.scaled(e.Profile.RiskAppetite)-0.5)
	}
	if item.Category == e.Profile.Specialty {
		margin += math.Abs(margin) * e.cfg.SpecialtyScoreBonus
	}
	return margin + e.cfg.ConditionWeight*(item.Condition-0.5)
}

// Recommend returns the best of items whose expected negotiated price fits
// budget, or nil. bonus is the team's total haggling bonus.
func (e *Expert) Recommend(items []*models.Item, budget float64, terms trading.Terms, bonus float64, g *rng.RNG) *models.Item {
	var best *models.Item
	bestScore := math.Inf(-1)
	for _, it := range items {
		expected := e.pricer.ExpectedPrice(it.ShopPrice, terms, bonus, e.cfg.ExpectedDiscountShare)
		if expected > budget {
			continue
		}
		s := e.score(it, e.EstimateValue(it, g), expected)
		if s > bestScore {
			best, bestScore = it, s
		}
	}
	return best
}

// LeftoverPick is the expert's purchase with a team's leftover money.
type LeftoverPick struct {
	Item     *models.Item
	Stall    *models.Stall
	Estimate float64
	Outcome  trading.Outcome
}

// ChooseLeftoverPurchase picks the best remaining item priced within
// leftover and haggles for it once. The item stays in the market; the
// caller removes it. Returns nil when nothing fits.
func (e *Expert) ChooseLeftoverPurchase(market *models.Market, leftover float64, g *rng.RNG) *LeftoverPick {
	var pick *LeftoverPick
	bestScore := math.Inf(-1)
	for _, s := range market.Stalls {
		for _, it := range s.Items {
			if it.ShopPrice > leftover {
				continue
			}
			est := e.EstimateValue(it, g)
			sc := e.score(it, est, it.ShopPrice) + e.cfg.LeftoverJitter*g.Float64()
			if sc > bestScore {
				bestScore = sc
				pick = &LeftoverPick{Item: it, Stall: s, Estimate: utils.Round2(est)}
			}
		}
	}
	if pick == nil {
		return nil
	}

	pick.Outcome = e.pricer.Negotiate(pick.Item, g, trading.TermsFor(pick.Stall), e.NegotiationBonus())
	return pick
}

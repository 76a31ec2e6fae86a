// Package episode runs one full game: market, expert handoff, appraisal,
// auctions and results.
package episode

import (
	"fmt"

	"github.com/rs/zerolog"

	"bargain-hunt/internal/agents"
	"bargain-hunt/internal/auction"
	"bargain-hunt/internal/casting"
	"bargain-hunt/internal/catalog"
	"bargain-hunt/internal/config"
	apperrors "bargain-hunt/internal/errors"
	"bargain-hunt/internal/logging"
	"bargain-hunt/internal/models"
	"bargain-hunt/internal/rng"
	"bargain-hunt/internal/trading"
)

// Phase is a stage of the episode. Phases only move forward.
type Phase int

// Episode phases in order.
const (
	PhaseMarket Phase = iota
	PhaseExpertHandoff
	PhaseExpertShopping
	PhaseAppraisal
	PhaseAuctionTeam
	PhaseExpertReveal
	PhaseAuctionExpert
	PhaseResults
)

var phaseNames = [...]string{
	"MARKET", "EXPERT_HANDOFF", "EXPERT_SHOPPING", "APPRAISAL",
	"AUCTION_TEAM", "EXPERT_REVEAL", "AUCTION_EXPERT", "RESULTS",
}

func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

var teamColors = []string{"Red", "Blue", "Green", "Yellow", "Purple", "Orange"}

// Options configure a new episode.
type Options struct {
	Seed            int64
	PlayRect        models.Rect
	ItemsPerTeam    int
	StartingBudget  float64
	ExpertMinBudget float64
	// PricingStyle forces one style on every stall; empty or mixed draws per stall.
	PricingStyle string

	Config  *config.Config
	Roster  []agents.ExpertProfile
	Factory *catalog.Factory
	Logger  *zerolog.Logger
}

// OptionsFromConfig fills episode options from the app config.
func OptionsFromConfig(cfg *config.Config, seed int64) Options {
	return Options{
		Seed:            seed,
		PlayRect:        models.Rect{W: cfg.Show.PlayWidth, H: cfg.Show.PlayHeight},
		ItemsPerTeam:    cfg.Show.ItemsPerTeam,
		StartingBudget:  cfg.Show.StartingBudget,
		ExpertMinBudget: cfg.Show.ExpertMinBudget,
		Config:          cfg,
	}
}

// Sale is one hammer fall.
type Sale struct {
	Lot   models.AuctionLot
	Price float64
}

// Episode is the aggregate root of one game. It owns the RNG and every
// piece of mutable game state; nothing in it is safe for concurrent use.
type Episode struct {
	Seed            int64
	PlayRect        models.Rect
	ItemsPerTeam    int
	StartingBudget  float64
	ExpertMinBudget float64
	PricingStyle    string

	Market     *models.Market
	House      *auction.House
	Auctioneer *auction.Auctioneer
	Teams      []*agents.Team
	NextItemID int

	Phase         Phase
	AppraisalDone bool
	AuctionDone   bool
	ResultsDone   bool

	AuctionQueue  []models.AuctionLot
	AuctionCursor int
	Sales         []Sale
	Winner        *agents.Team
	Results       []models.RoundResult

	cfg     *config.Config
	economy *config.BalanceConfig
	roster  []agents.ExpertProfile
	factory *catalog.Factory
	pricer  *trading.Pricer
	rng     *rng.RNG
	logger  zerolog.Logger
}

// New creates an episode in the market phase. Call Setup to populate it.
func New(opts Options) *Episode {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	economy := cfg.Economy
	if economy == nil {
		economy = config.DefaultBalanceConfig()
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	return &Episode{
		Seed:            opts.Seed,
		PlayRect:        opts.PlayRect,
		ItemsPerTeam:    opts.ItemsPerTeam,
		StartingBudget:  opts.StartingBudget,
		ExpertMinBudget: opts.ExpertMinBudget,
		PricingStyle:    opts.PricingStyle,
		NextItemID:      1,
		Phase:           PhaseMarket,
		cfg:             cfg,
		economy:         economy,
		roster:          opts.Roster,
		factory:         opts.Factory,
		pricer:          trading.NewPricer(economy),
		rng:             rng.New(opts.Seed),
		logger:          logging.WithEpisode(logger, opts.Seed),
	}
}

// RNG returns the episode's random source.
func (e *Episode) RNG() *rng.RNG {
	return e.rng
}

// Economy returns the economy tuning in use.
func (e *Episode) Economy() *config.BalanceConfig {
	return e.economy
}

// Setup builds the market, auction house, experts and teams from the seed.
// It always starts from a fresh RNG, so the same seed yields the same state.
func (e *Episode) Setup() error {
	e.rng = rng.New(e.Seed)
	e.Phase = PhaseMarket
	e.AppraisalDone, e.AuctionDone, e.ResultsDone = false, false, false
	e.AuctionQueue, e.AuctionCursor, e.Sales = nil, 0, nil
	e.Winner, e.Results = nil, nil

	factory := e.factory
	if factory == nil {
		f, err := catalog.FactoryFromConfig(e.cfg.Items, e.economy)
		if err != nil {
			return apperrors.Wrap(err, "building item factory")
		}
		factory = f
	}

	e.Market, e.NextItemID = catalog.GenerateMarket(e.rng, e.PlayRect, factory, e.pricer, e.economy, e.PricingStyle)
	e.House = auction.Generate(e.rng, e.economy)
	e.Auctioneer = auction.NewAuctioneer("Chloe", e.economy)

	count := e.cfg.Show.Teams
	if count < 1 {
		count = 2
	}

	roster := e.roster
	if roster == nil {
		r, err := agents.LoadRosterFromConfig(e.cfg.Experts)
		if err != nil {
			return apperrors.Wrap(err, "loading expert roster")
		}
		roster = r
	}
	experts, err := agents.AssignExperts(e.rng, roster, count, e.cfg.Experts.EffectStrength, e.economy)
	if err != nil {
		return err
	}

	profiles, err := casting.GenerateTeams(e.rng, count, teamColors)
	if err != nil {
		return err
	}

	strategyNames := []string{agents.ValueHunterName, agents.RiskAverseName}
	e.Teams = make([]*agents.Team, count)
	for i, p := range profiles {
		strategy, err := agents.NewStrategy(strategyNames[i%len(strategyNames)], e.economy.Strategy)
		if err != nil {
			return err
		}
		color := "Team"
		if i < len(teamColors) {
			color = teamColors[i]
		}
		t := agents.NewTeam(p.Name, color, e.StartingBudget, strategy, experts[i], e.startPosition(i, count))
		t.Relationship = p.Relationship
		t.RelationshipType = p.RelationshipType
		t.Contestants = p.Contestants
		e.Teams[i] = t
	}

	for _, t := range e.Teams {
		t.SpendPlan = t.Strategy.ChooseSpendPlan(e.rng)
	}

	e.logger.Debug().
		Int("stalls", len(e.Market.Stalls)).
		Int("items", e.Market.ItemCount()).
		Str("mood", e.House.Mood).
		Int("teams", len(e.Teams)).
		Msg("Episode set up")
	return nil
}

// startPosition spreads teams across the middle row of the play area.
func (e *Episode) startPosition(i, count int) models.Vec {
	r := e.PlayRect
	y := r.Y + r.H/2
	if count == 1 {
		return models.Vec{X: r.X + 90, Y: y}
	}
	span := r.W - 210
	return models.Vec{X: r.X + 90 + span*float64(i)/float64(count-1), Y: y}
}

// TeamIndex returns the index of team, or -1.
func (e *Episode) TeamIndex(team *agents.Team) int {
	for i, t := range e.Teams {
		if t == team {
			return i
		}
	}
	return -1
}

// MarketDone reports whether every team has filled its quota.
func (e *Episode) MarketDone() bool {
	for _, t := range e.Teams {
		if t.CanBuyMore(e.ItemsPerTeam) {
			return false
		}
	}
	return true
}

// require checks the episode is in want.
func (e *Episode) require(want Phase) error {
	if e.Phase != want {
		return apperrors.NewPhaseError(want.String(), e.Phase.String())
	}
	return nil
}

// CheckInvariants verifies budget, quota and ownership rules.
func (e *Episode) CheckInvariants() error {
	for _, t := range e.Teams {
		if t.BudgetLeft < 0 {
			return apperrors.NewInvariantError("budget-floor", t.Name,
				fmt.Sprintf("budget_left %.2f is negative", t.BudgetLeft))
		}
		if n := t.TeamItemCount(); n > e.ItemsPerTeam {
			return apperrors.NewInvariantError("purchase-cap", t.Name,
				fmt.Sprintf("%d items bought, quota %d", n, e.ItemsPerTeam))
		}
		if e.Phase == PhaseMarket && t.CanBuyMore(e.ItemsPerTeam) && t.BudgetLeft < e.ExpertMinBudget-1e-9 {
			return apperrors.NewInvariantError("expert-reserve", t.Name,
				fmt.Sprintf("budget_left %.2f below reserve %.2f with slots open", t.BudgetLeft, e.ExpertMinBudget))
		}
		if e.Market != nil {
			for _, it := range t.ItemsBought {
				if e.Market.StallOf(it) != nil {
					return apperrors.NewInvariantError("single-owner", t.Name,
						fmt.Sprintf("item %d is both bought and stocked", it.ID))
				}
			}
		}
	}
	if e.Market != nil {
		return e.Market.CheckOwnership()
	}
	return nil
}

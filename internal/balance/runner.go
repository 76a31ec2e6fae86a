// Package balance runs batches of seeded episodes headlessly and summarises
// their economics for tuning the pricing model.
package balance

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"bargain-hunt/internal/agents"
	"bargain-hunt/internal/analysis/scoring"
	"bargain-hunt/internal/auction"
	"bargain-hunt/internal/catalog"
	"bargain-hunt/internal/config"
	"bargain-hunt/internal/episode"
	apperrors "bargain-hunt/internal/errors"
	"bargain-hunt/internal/logging"
	"bargain-hunt/internal/models"
	"bargain-hunt/internal/performance"
	"bargain-hunt/internal/rng"
	"bargain-hunt/internal/trading"
)

// Mode selects how much of the game each run simulates.
type Mode string

const (
	// ModeQuick prices, haggles, appraises and sells synthetic purchases
	// without the market AI.
	ModeQuick Mode = "quick"
	// ModeFull plays a complete episode per run.
	ModeFull Mode = "full"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeQuick, ModeFull:
		return Mode(s), nil
	}
	return "", fmt.Errorf("balance mode %q: %w", s, apperrors.ErrInputValidation)
}

// Options configure a batch.
type Options struct {
	Runs         int
	Seed         int64
	PricingStyle string
	ItemsPerTeam int
	Mode         Mode
	Workers      int
	StepSeconds  float64 // full mode show tick

	Config  *config.Config
	Factory *catalog.Factory
	Roster  []agents.ExpertProfile
	Logger  *zerolog.Logger
}

// DefaultOptions returns a quick fair-priced batch of 100 runs.
func DefaultOptions(cfg *config.Config) Options {
	return Options{
		Runs:         100,
		Seed:         42,
		PricingStyle: config.StyleFair,
		ItemsPerTeam: cfg.Show.ItemsPerTeam,
		Mode:         ModeQuick,
		StepSeconds:  0.1,
		Config:       cfg,
	}
}

func (o Options) validate() error {
	if o.Runs < 0 {
		return apperrors.InvalidField("runs", "must be non-negative, got %d", o.Runs)
	}
	if o.ItemsPerTeam <= 0 {
		return apperrors.InvalidField("items_per_team", "must be positive, got %d", o.ItemsPerTeam)
	}
	if o.Config == nil {
		return apperrors.InvalidField("config", "missing")
	}
	switch o.PricingStyle {
	case config.StyleFair, config.StyleOverpriced, config.StyleChaotic:
	case config.StyleMixed:
		if o.Mode != ModeFull {
			return apperrors.InvalidField("pricing_style", "%q needs a market, use full mode", o.PricingStyle)
		}
	default:
		return apperrors.InvalidField("pricing_style", "unknown style %q", o.PricingStyle)
	}
	if _, err := ParseMode(string(o.Mode)); err != nil {
		return err
	}
	if o.Mode == ModeFull && o.StepSeconds <= 0 {
		return apperrors.InvalidField("step_seconds", "must be positive, got %v", o.StepSeconds)
	}
	return nil
}

// EpisodeResult is what one run contributes to the report.
type EpisodeResult struct {
	RunIndex             int                  `json:"run_index"`
	Seed                 int64                `json:"seed"`
	Mood                 string               `json:"mood"`
	GavelAwarded         bool                 `json:"gavel_awarded"`
	Teams                []models.RoundResult `json:"teams"`
	NegotiationDiscounts []float64            `json:"negotiation_discounts"`
	NegotiationSuccesses int                  `json:"negotiation_successes"`
	NegotiationTotal     int                  `json:"negotiation_total"`
	Winner               string               `json:"winner,omitempty"`
}

// Result bundles the aggregate report with the per-run results it came from.
type Result struct {
	Report   *Report
	Episodes []EpisodeResult
}

// Rows flattens the batch for CSV export.
func (r *Result) Rows() []Row {
	return Rows(r.Episodes, r.Report.Meta.Seed)
}

// Run executes the batch. Each run gets its own seed drawn in order from a
// master generator, so results do not depend on the worker count.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	logger := logging.FromContext(ctx)
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	logger = logger.With().Int64("master_seed", opts.Seed).Logger()

	factory := opts.Factory
	if factory == nil {
		var err error
		factory, err = catalog.FactoryFromConfig(opts.Config.Items, opts.Config.Economy)
		if err != nil {
			return nil, apperrors.Wrap(err, "building item factory")
		}
	}
	roster := opts.Roster
	if roster == nil && opts.Mode == ModeFull {
		var err error
		roster, err = agents.LoadRosterFromConfig(opts.Config.Experts)
		if err != nil {
			return nil, apperrors.Wrap(err, "loading expert roster")
		}
	}

	master := rng.New(opts.Seed)
	seeds := make([]int64, opts.Runs)
	for i := range seeds {
		seeds[i] = master.Int63()
	}

	pool := performance.NewWorkerPool(opts.Workers)
	pool.Start()
	defer pool.Stop()

	logger.Info().
		Int("runs", opts.Runs).
		Str("mode", string(opts.Mode)).
		Str("style", opts.PricingStyle).
		Int("workers", pool.Workers()).
		Msg("Balance batch started")

	episodes, err := performance.RunIndexed(ctx, pool, opts.Runs, func(ctx context.Context, i int) (EpisodeResult, error) {
		runLog := logging.WithRun(logger, i)
		var (
			res EpisodeResult
			err error
		)
		switch opts.Mode {
		case ModeFull:
			res, err = runFull(ctx, opts, factory, roster, seeds[i], runLog)
		default:
			res = runQuick(opts, factory, seeds[i])
		}
		if err != nil {
			return EpisodeResult{}, apperrors.Wrapf(err, "run %d (seed %d)", i, seeds[i])
		}
		res.RunIndex = i
		res.Seed = seeds[i]
		runLog.Debug().Str("mood", res.Mood).Bool("gavel", res.GavelAwarded).Msg("Run finished")
		return res, nil
	})
	if err != nil {
		return nil, err
	}

	report := Aggregate(episodes, opts)
	logger.Info().
		Int("episodes", len(episodes)).
		Float64("team_profit_mean", report.Profit.Team.Mean).
		Float64("gavel_rate", report.Gavel.Rate).
		Msg("Balance batch finished")

	return &Result{Report: report, Episodes: episodes}, nil
}

// quickTeams are the fixed pair of teams the quick mode shops for.
func quickTeams() []*agents.Team {
	mk := func(name, color string) *agents.Team {
		t := agents.NewTeam(name, color, 400, nil, nil, models.Vec{})
		t.Contestants = []models.Contestant{
			{Name: "Alex", Role: "Captain", Confidence: 0.6, Taste: 0.55},
			{Name: "Jamie", Role: "Spotter", Confidence: 0.55, Taste: 0.6},
		}
		return t
	}
	return []*agents.Team{mk("Team A", "Red"), mk("Team B", "Blue")}
}

// quickExpertBonus is the haggling edge of the generalist expert the quick
// teams shop with.
const quickExpertBonus = 0.05

func runQuick(opts Options, factory *catalog.Factory, seed int64) EpisodeResult {
	econ := opts.Config.Economy
	g := rng.New(seed)
	pricer := trading.NewPricer(econ)
	auctioneer := auction.NewAuctioneer("Headless Auctioneer", econ)
	house := auction.Generate(g, econ)
	terms := trading.Terms{
		BaseChance:  econ.Negotiation.BaseChance,
		DiscountMin: econ.Stalls.Discount.Lo(),
		DiscountMax: econ.Stalls.Discount.Hi(),
	}

	res := EpisodeResult{Mood: house.Mood}
	nextID := 1
	for _, team := range quickTeams() {
		bonus := quickExpertBonus + team.NegotiationBonus(econ.Team.ConfidenceBonusScale)
		items := make([]*models.Item, 0, opts.ItemsPerTeam)
		for n := 0; n < opts.ItemsPerTeam; n++ {
			item := factory.MakeItem(g, nextID)
			nextID++
			pricer.SetShopPrice(item, g, opts.PricingStyle)

			out := pricer.Negotiate(item, g, terms, bonus)
			res.NegotiationTotal++
			if out.Success {
				res.NegotiationSuccesses++
				res.NegotiationDiscounts = append(res.NegotiationDiscounts, out.Discount)
			}

			item.AppraisedValue = auctioneer.Appraise(item, g)
			item.Appraised = true
			item.AuctionPrice = house.Sell(item, g)
			item.Sold = true
			items = append(items, item)
		}
		res.Teams = append(res.Teams, scoring.RoundResultFromItems(team.Name, items))
	}
	res.GavelAwarded = quickGavel(res.Teams, g, econ.Gavel)
	return res
}

// quickGavel awards the gavel when the best lot of the day clears the
// profit threshold and the probability roll passes.
func quickGavel(teams []models.RoundResult, g *rng.RNG, cfg config.GavelConfig) bool {
	var best *models.LotResult
	for _, tr := range teams {
		if tr.BestLot == nil {
			continue
		}
		if best == nil || tr.BestLot.Profit() > best.Profit() {
			best = tr.BestLot
		}
	}
	if best == nil || best.Profit() < cfg.ProfitThreshold {
		return false
	}
	return g.Bernoulli(cfg.Probability)
}

func runFull(ctx context.Context, opts Options, factory *catalog.Factory, roster []agents.ExpertProfile, seed int64, logger zerolog.Logger) (EpisodeResult, error) {
	eo := episode.OptionsFromConfig(opts.Config, seed)
	eo.ItemsPerTeam = opts.ItemsPerTeam
	eo.Factory = factory
	eo.Roster = roster
	eo.PricingStyle = opts.PricingStyle
	eo.Logger = &logger

	ep := episode.New(eo)
	if err := ep.Setup(); err != nil {
		return EpisodeResult{}, err
	}
	if err := episode.NewShow(ep).Run(logging.WithLogger(ctx, logger), opts.StepSeconds); err != nil {
		return EpisodeResult{}, err
	}

	res := EpisodeResult{
		Mood:  ep.House.Mood,
		Teams: ep.Results,
	}
	if ep.Winner != nil {
		res.Winner = ep.Winner.Name
	}
	for _, t := range ep.Teams {
		if t.GoldenGavel {
			res.GavelAwarded = true
		}
		bought := t.TeamItems()
		if t.ExpertPickItem != nil {
			bought = append(bought, t.ExpertPickItem)
		}
		for _, it := range bought {
			res.NegotiationTotal++
			if it.WasNegotiated {
				res.NegotiationSuccesses++
				res.NegotiationDiscounts = append(res.NegotiationDiscounts, it.NegotiationDiscount)
			}
		}
	}
	return res, nil
}

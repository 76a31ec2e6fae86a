package balance

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"bargain-hunt/internal/agents"
	"bargain-hunt/internal/config"
	apperrors "bargain-hunt/internal/errors"
	"bargain-hunt/internal/logging"
	"bargain-hunt/internal/models"
	"bargain-hunt/internal/rng"
)

func quickOptions(runs int) Options {
	opts := DefaultOptions(config.Default())
	opts.Runs = runs
	opts.Seed = 7
	return opts
}

func TestRunQuickCounts(t *testing.T) {
	opts := quickOptions(40)
	res, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(res.Episodes) != 40 {
		t.Fatalf("episodes = %d, want 40", len(res.Episodes))
	}
	for i, ep := range res.Episodes {
		if ep.RunIndex != i {
			t.Errorf("episode %d has run index %d", i, ep.RunIndex)
		}
		if len(ep.Teams) != 2 {
			t.Errorf("episode %d has %d teams", i, len(ep.Teams))
		}
		if ep.NegotiationTotal != 2*opts.ItemsPerTeam {
			t.Errorf("episode %d negotiated %d times", i, ep.NegotiationTotal)
		}
	}

	r := res.Report
	if r.Gavel.Eligible != 40 {
		t.Errorf("gavel eligible = %d", r.Gavel.Eligible)
	}
	moods := 0
	for _, n := range r.Moods {
		moods += n
	}
	if moods != 40 {
		t.Errorf("mood histogram counts %d episodes", moods)
	}
	if r.Profit.Item.Count != 40*2*opts.ItemsPerTeam {
		t.Errorf("item profit count = %d", r.Profit.Item.Count)
	}
	if r.Negotiation.SuccessRate < 0 || r.Negotiation.SuccessRate > 1 {
		t.Errorf("success rate = %v", r.Negotiation.SuccessRate)
	}
	if r.Meta.Seed != 7 || r.Meta.PricingStyle != config.StyleFair || r.Config == nil {
		t.Errorf("meta = %+v, config nil = %v", r.Meta, r.Config == nil)
	}
	if got := len(res.Rows()); got != 80 {
		t.Errorf("rows = %d, want 80", got)
	}
}

func TestRunIndependentOfWorkers(t *testing.T) {
	single := quickOptions(30)
	single.Workers = 1
	many := quickOptions(30)
	many.Workers = 6

	a, err := Run(context.Background(), single)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Run(context.Background(), many)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a.Rows(), b.Rows()) {
		t.Error("rows differ between 1 and 6 workers")
	}
	if !reflect.DeepEqual(a.Report.Moods, b.Report.Moods) {
		t.Error("mood histograms differ")
	}
}

func TestRunSeedChangesOutcome(t *testing.T) {
	a, _ := Run(context.Background(), quickOptions(10))
	opts := quickOptions(10)
	opts.Seed = 8
	b, _ := Run(context.Background(), opts)
	if reflect.DeepEqual(a.Rows(), b.Rows()) {
		t.Error("different seeds produced identical batches")
	}
}

func TestOverpricedStyleLowersProfit(t *testing.T) {
	fair := quickOptions(200)
	over := quickOptions(200)
	over.PricingStyle = config.StyleOverpriced

	a, err := Run(context.Background(), fair)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Run(context.Background(), over)
	if err != nil {
		t.Fatal(err)
	}
	if b.Report.Profit.Item.Mean >= a.Report.Profit.Item.Mean {
		t.Errorf("overpriced mean profit %.2f not below fair %.2f",
			b.Report.Profit.Item.Mean, a.Report.Profit.Item.Mean)
	}
}

func TestRunFull(t *testing.T) {
	cfg := config.Default()
	opts := DefaultOptions(cfg)
	opts.Mode = ModeFull
	opts.Runs = 3
	opts.Seed = 11
	opts.StepSeconds = 0.25
	opts.Roster = agents.GenerateRoster(cfg.Experts.RosterSize, cfg.Experts.RosterSeed)

	res, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	for _, ep := range res.Episodes {
		if len(ep.Teams) != cfg.Show.Teams {
			t.Errorf("run %d: %d team results", ep.RunIndex, len(ep.Teams))
		}
		if ep.Winner == "" {
			t.Errorf("run %d: no winner", ep.RunIndex)
		}
		if ep.NegotiationSuccesses > ep.NegotiationTotal {
			t.Errorf("run %d: %d successes of %d", ep.RunIndex, ep.NegotiationSuccesses, ep.NegotiationTotal)
		}
	}
	if res.Report.Meta.Mode != ModeFull {
		t.Errorf("mode = %s", res.Report.Meta.Mode)
	}
}

func TestRunLogsThroughContext(t *testing.T) {
	cfg := config.Default()
	opts := DefaultOptions(cfg)
	opts.Mode = ModeFull
	opts.Runs = 2
	opts.Seed = 5
	opts.Workers = 1
	opts.StepSeconds = 0.25
	opts.Roster = agents.GenerateRoster(cfg.Experts.RosterSize, cfg.Experts.RosterSeed)

	var buf bytes.Buffer
	ctx := logging.WithLogger(context.Background(), zerolog.New(&buf).Level(zerolog.DebugLevel))
	if _, err := Run(ctx, opts); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		`"message":"Balance batch started"`,
		`"message":"Show finished"`,
		`"event":"purchase"`,
		`"master_seed":5`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %s", want)
		}
	}
}

func TestRunFullUsesPricingStyle(t *testing.T) {
	cfg := config.Default()
	roster := agents.GenerateRoster(cfg.Experts.RosterSize, cfg.Experts.RosterSeed)
	run := func(style string) *Result {
		opts := DefaultOptions(cfg)
		opts.Mode = ModeFull
		opts.Runs = 3
		opts.Seed = 11
		opts.StepSeconds = 0.25
		opts.PricingStyle = style
		opts.Roster = roster
		res, err := Run(context.Background(), opts)
		if err != nil {
			t.Fatalf("%s: %v", style, err)
		}
		if res.Report.Meta.PricingStyle != style {
			t.Errorf("meta style = %s, want %s", res.Report.Meta.PricingStyle, style)
		}
		return res
	}

	fair := run(config.StyleFair)
	dear := run(config.StyleOverpriced)
	if reflect.DeepEqual(fair.Rows(), dear.Rows()) {
		t.Error("fair and overpriced full runs produced identical rows")
	}
	run(config.StyleMixed)
}

func TestRunCancelled(t *testing.T) {
	opts := quickOptions(5)
	opts.Mode = ModeFull
	opts.Roster = agents.GenerateRoster(10, 2024)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Run(ctx, opts); err == nil {
		t.Error("Run() with cancelled context should fail")
	}
}

func TestOptionsValidation(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Options)
	}{
		{"negative runs", func(o *Options) { o.Runs = -1 }},
		{"no items", func(o *Options) { o.ItemsPerTeam = 0 }},
		{"bad style", func(o *Options) { o.PricingStyle = "bargain" }},
		{"mixed style in quick mode", func(o *Options) { o.PricingStyle = config.StyleMixed }},
		{"bad mode", func(o *Options) { o.Mode = "slow" }},
		{"full without step", func(o *Options) { o.Mode = ModeFull; o.StepSeconds = 0 }},
		{"no config", func(o *Options) { o.Config = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := quickOptions(1)
			tt.modify(&opts)
			if _, err := Run(context.Background(), opts); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestParseMode(t *testing.T) {
	if m, err := ParseMode("full"); err != nil || m != ModeFull {
		t.Errorf("ParseMode(full) = %v, %v", m, err)
	}
	if _, err := ParseMode("turbo"); !errors.Is(err, apperrors.ErrInputValidation) {
		t.Errorf("ParseMode(turbo) error = %v", err)
	}
}

func TestAggregateEmpty(t *testing.T) {
	r := Aggregate(nil, quickOptions(0))
	if r.Profit.Item.Count != 0 || r.Gavel.Rate != 0 || r.Negotiation.SuccessRate != 0 {
		t.Errorf("empty report = %+v", r)
	}
	if r.Meta.Seed != 7 || r.Config == nil {
		t.Error("empty report should still carry meta and config")
	}
}

func TestAggregateNoProfit(t *testing.T) {
	loss := models.LotResult{ItemName: "Chipped jug", Paid: 40, Appraised: 30, Sold: 20}
	ep := EpisodeResult{
		Mood: config.MoodCold,
		Teams: []models.RoundResult{{
			TeamName: "Red",
			Lots:     []models.LotResult{loss},
			Profit:   -20,
		}},
		NegotiationTotal: 1,
	}
	r := Aggregate([]EpisodeResult{ep}, quickOptions(1))

	if r.Profit.Item.PctPos != 0 || r.Profit.Item.PctNeg != 1 {
		t.Errorf("item profit = %+v", r.Profit.Item)
	}
	if r.AppraisalRatio.Mean != 0.75 || r.AuctionRatio.Mean != 0.5 {
		t.Errorf("ratios = %v / %v", r.AppraisalRatio.Mean, r.AuctionRatio.Mean)
	}
	if r.Moods[config.MoodCold] != 1 {
		t.Errorf("moods = %v", r.Moods)
	}
}

func TestQuickGavel(t *testing.T) {
	big := models.LotResult{ItemName: "Clock", Paid: 50, Sold: 400}
	small := models.LotResult{ItemName: "Spoon", Paid: 5, Sold: 9}
	teams := []models.RoundResult{{BestLot: &small}, {BestLot: &big}}

	g := rng.New(1)
	if !quickGavel(teams, g, config.GavelConfig{ProfitThreshold: 300, Probability: 1}) {
		t.Error("gavel should be awarded for a 350 profit lot")
	}
	if quickGavel(teams, g, config.GavelConfig{ProfitThreshold: 300, Probability: 0}) {
		t.Error("probability 0 should never award")
	}
	if quickGavel(teams, g, config.GavelConfig{ProfitThreshold: 400, Probability: 1}) {
		t.Error("below threshold should not award")
	}
	if quickGavel([]models.RoundResult{{}}, g, config.GavelConfig{Probability: 1}) {
		t.Error("no lots should not award")
	}
}

func TestCSVColumnOrder(t *testing.T) {
	rows := []Row{
		{Seed: 3, RunIndex: 0, Mood: "hot", GavelAwarded: true, TeamName: "Red", SpentTotal: 60, SoldTotal: 90, ProfitTotal: 30, ROI: 0.5, BestLotName: "Vase", BestLotProfit: 25},
		{Seed: 3, RunIndex: 0, Mood: "hot", TeamName: "Blue", SpentTotal: 80, SoldTotal: 40, ProfitTotal: -40, ROI: -0.5},
	}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, rows); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if lines[0] != strings.Join(Columns, ",") {
		t.Errorf("header = %q", lines[0])
	}
	if len(lines) != 3 {
		t.Fatalf("got %d lines", len(lines))
	}

	back, err := ReadCSV(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(back, rows) {
		t.Errorf("ReadCSV() = %+v", back)
	}
}

func TestWriteCSVEmpty(t *testing.T) {
	data, err := EncodeCSV(nil)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(data)) != strings.Join(Columns, ",") {
		t.Errorf("empty csv = %q", data)
	}
}

func TestSaveReportAndCSV(t *testing.T) {
	res, err := Run(context.Background(), quickOptions(3))
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	if err := SaveReport(res.Report, dir+"/out/report.json"); err != nil {
		t.Fatal(err)
	}
	if err := SaveCSV(res.Rows(), dir+"/out/rows.csv"); err != nil {
		t.Fatal(err)
	}
}

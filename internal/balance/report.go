package balance

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"

	"bargain-hunt/internal/analysis"
	"bargain-hunt/internal/config"
	apperrors "bargain-hunt/internal/errors"
)

// Meta identifies the batch a report came from.
type Meta struct {
	Seed         int64     `json:"seed"`
	PricingStyle string    `json:"pricing_style"`
	Mode         Mode      `json:"mode"`
	Runs         int       `json:"runs"`
	ItemsPerTeam int       `json:"items_per_team"`
	GeneratedAt  time.Time `json:"generated_at"`
}

// ProfitStats holds per-lot and per-team profit distributions.
type ProfitStats struct {
	Item analysis.Distribution `json:"item"`
	Team analysis.Distribution `json:"team"`
}

// NegotiationStats summarises haggling across the batch.
type NegotiationStats struct {
	SuccessRate float64               `json:"success_rate"`
	Discounts   analysis.Distribution `json:"discounts"`
}

// GavelStats counts golden gavel awards.
type GavelStats struct {
	Awards   int     `json:"awards"`
	Eligible int     `json:"eligible"`
	Rate     float64 `json:"rate"`
}

// Report is the aggregate outcome of a batch.
type Report struct {
	Meta           Meta                  `json:"meta"`
	Config         *config.BalanceConfig `json:"config"`
	Profit         ProfitStats           `json:"profit"`
	AppraisalRatio analysis.Distribution `json:"appraisal_ratio"`
	AuctionRatio   analysis.Distribution `json:"auction_ratio"`
	Negotiation    NegotiationStats      `json:"negotiation"`
	Gavel          GavelStats            `json:"gavel"`
	Moods          map[string]int        `json:"moods"`
}

// Aggregate summarises episode results. Empty batches and batches without a
// single profitable lot still produce a full report.
func Aggregate(episodes []EpisodeResult, opts Options) *Report {
	var (
		lotProfits, teamProfits []float64
		appraisal, auctionRatio []float64
		discounts               []float64
		negOK, negTotal         int
	)
	r := &Report{
		Meta: Meta{
			Seed:         opts.Seed,
			PricingStyle: opts.PricingStyle,
			Mode:         opts.Mode,
			Runs:         opts.Runs,
			ItemsPerTeam: opts.ItemsPerTeam,
			GeneratedAt:  time.Now().UTC(),
		},
		Moods: make(map[string]int),
	}
	if opts.Config != nil {
		r.Config = opts.Config.Economy
	}

	for _, ep := range episodes {
		r.Gavel.Eligible++
		if ep.GavelAwarded {
			r.Gavel.Awards++
		}
		r.Moods[ep.Mood]++
		discounts = append(discounts, ep.NegotiationDiscounts...)
		negOK += ep.NegotiationSuccesses
		negTotal += ep.NegotiationTotal

		for _, tr := range ep.Teams {
			teamProfits = append(teamProfits, tr.Profit)
			for _, lot := range tr.Lots {
				lotProfits = append(lotProfits, lot.Profit())
				if lot.Paid != 0 {
					appraisal = append(appraisal, lot.Appraised/lot.Paid)
					auctionRatio = append(auctionRatio, lot.Sold/lot.Paid)
				}
			}
		}
	}

	r.Profit.Item = analysis.Summarize(lotProfits)
	r.Profit.Team = analysis.Summarize(teamProfits)
	r.AppraisalRatio = analysis.Summarize(appraisal)
	r.AuctionRatio = analysis.Summarize(auctionRatio)
	r.Negotiation.Discounts = analysis.Summarize(discounts)
	if negTotal > 0 {
		r.Negotiation.SuccessRate = float64(negOK) / float64(negTotal)
	}
	if r.Gavel.Eligible > 0 {
		r.Gavel.Rate = float64(r.Gavel.Awards) / float64(r.Gavel.Eligible)
	}
	return r
}

// MoodNames returns the moods seen, sorted.
func (r *Report) MoodNames() []string {
	names := make([]string, 0, len(r.Moods))
	for m := range r.Moods {
		names = append(names, m)
	}
	sort.Strings(names)
	return names
}

// JSON encodes the report with indentation.
func (r *Report) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// SaveReport writes the report as JSON, creating parent directories.
func SaveReport(r *Report, path string) error {
	data, err := r.JSON()
	if err != nil {
		return apperrors.Wrap(err, "encoding report")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.Wrapf(err, "creating %s", filepath.Dir(path))
	}
	return os.WriteFile(path, data, 0644)
}

package episode

import (
	"context"
	"fmt"
	"time"

	apperrors "bargain-hunt/internal/errors"
	"bargain-hunt/internal/logging"
)

// Show drives an episode through its phases one tick at a time, the way the
// on-screen game does, without any rendering.
type Show struct {
	Episode *Episode

	MarketTimeLeft float64
	Elapsed        float64

	decisions   map[int]bool
	phaseStart  float64
	marketSpeed float64
	buyRadius   float64
}

// NewShow wraps ep, which must already be set up.
func NewShow(ep *Episode) *Show {
	mc := ep.cfg.Market
	return &Show{
		Episode:        ep,
		MarketTimeLeft: ep.cfg.Show.MarketSeconds,
		decisions:      make(map[int]bool),
		marketSpeed:    mc.TeamSpeed,
		buyRadius:      mc.BuyRadius,
	}
}

// Done reports whether results are in.
func (s *Show) Done() bool {
	return s.Episode.Phase == PhaseResults
}

// Skip ends the current wait. In the market it runs the clock out.
func (s *Show) Skip() {
	if s.Episode.Phase == PhaseMarket {
		s.MarketTimeLeft = 0
	}
}

// Decide records a manual include/exclude call for a team's expert pick. It
// takes effect at the reveal instead of the automatic decision.
func (s *Show) Decide(teamIndex int, include bool) {
	s.decisions[teamIndex] = include
}

// Update advances the show by dt seconds. The market ticks every team;
// later phases take one step per update, one lot per auction beat.
func (s *Show) Update(dt float64) error {
	ep := s.Episode
	s.Elapsed += dt
	from := ep.Phase

	var err error
	switch ep.Phase {
	case PhaseMarket:
		s.MarketTimeLeft -= dt
		ep.UpdateMarketAI(dt, s.marketSpeed, s.buyRadius)
		if s.MarketTimeLeft <= 0 || ep.MarketDone() {
			s.MarketTimeLeft = 0
			err = ep.ReserveExpertBudget()
		}
	case PhaseExpertHandoff:
		err = ep.PrepareExpertPicks()
	case PhaseExpertShopping:
		err = ep.StartAppraisal()
	case PhaseAppraisal:
		err = ep.StartTeamAuction()
	case PhaseAuctionTeam:
		if ep.AuctionDone {
			err = ep.BeginReveal()
		} else {
			_, err = ep.StepAuction()
		}
	case PhaseExpertReveal:
		err = s.reveal()
	case PhaseAuctionExpert:
		if ep.AuctionDone {
			err = ep.ComputeResults()
		} else {
			_, err = ep.StepAuction()
		}
	case PhaseResults:
		return nil
	}
	if err != nil {
		return err
	}

	if ep.Phase != from {
		elapsed := time.Duration((s.Elapsed - s.phaseStart) * float64(time.Second))
		logging.LogPhase(ep.logger, from.String(), ep.Phase.String(), elapsed)
		s.phaseStart = s.Elapsed
	}
	return nil
}

func (s *Show) reveal() error {
	ep := s.Episode
	for i, t := range ep.Teams {
		include, ok := s.decisions[i]
		if !ok || t.ExpertPickItem == nil {
			continue
		}
		if err := ep.MarkExpertChoice(t, include); err != nil {
			return err
		}
	}
	if err := ep.AutoDecideExpertPicks(); err != nil {
		return err
	}
	return ep.StartExpertAuction()
}

// Run updates the show with a fixed step until results are in or ctx is done.
// It logs through the logger carried by ctx, if any.
func (s *Show) Run(ctx context.Context, dt float64) error {
	if dt <= 0 {
		return apperrors.NewConfigError("", "dt", fmt.Errorf("step must be positive, got %v: %w", dt, apperrors.ErrInputValidation))
	}
	for !s.Done() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.Update(dt); err != nil {
			return err
		}
	}
	logging.FromContext(ctx).Debug().
		Int64("seed", s.Episode.Seed).
		Float64("show_seconds", s.Elapsed).
		Msg("Show finished")
	return nil
}

// Package store persists balance-run history.
package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"bargain-hunt/internal/balance"
)

// RunStore defines the interface for balance-run persistence.
type RunStore interface {
	// Runs
	SaveRun(ctx context.Context, run *RunRecord, rows []balance.Row) error
	GetRun(ctx context.Context, id string) (*RunRecord, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]RunRecord, error)
	DeleteRun(ctx context.Context, id string) error

	// Rows
	GetRunRows(ctx context.Context, id string) ([]balance.Row, error)

	// Lifecycle
	Close() error
}

// RunRecord is one stored balance batch.
type RunRecord struct {
	ID             string
	CreatedAt      time.Time
	Seed           int64
	Runs           int
	PricingStyle   string
	Mode           string
	ItemsPerTeam   int
	TeamProfitMean float64
	GavelRate      float64
	ConfigJSON     string
	ReportJSON     string
}

// RunFilter represents filters for listing runs.
type RunFilter struct {
	Mode         string
	PricingStyle string
	Since        time.Time
	Limit        int
}

// NewRunRecord snapshots a finished batch for storage under a fresh id.
func NewRunRecord(res *balance.Result) (*RunRecord, error) {
	r := res.Report
	cfg, err := json.Marshal(r.Config)
	if err != nil {
		return nil, err
	}
	rep, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}

	created := r.Meta.GeneratedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	return &RunRecord{
		ID:             uuid.NewString(),
		CreatedAt:      created,
		Seed:           r.Meta.Seed,
		Runs:           r.Meta.Runs,
		PricingStyle:   r.Meta.PricingStyle,
		Mode:           string(r.Meta.Mode),
		ItemsPerTeam:   r.Meta.ItemsPerTeam,
		TeamProfitMean: r.Profit.Team.Mean,
		GavelRate:      r.Gavel.Rate,
		ConfigJSON:     string(cfg),
		ReportJSON:     string(rep),
	}, nil
}

// Report decodes the stored report.
func (r *RunRecord) Report() (*balance.Report, error) {
	var rep balance.Report
	if err := json.Unmarshal([]byte(r.ReportJSON), &rep); err != nil {
		return nil, err
	}
	return &rep, nil
}

package balance

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"

	apperrors "bargain-hunt/internal/errors"
)

// Row is one team in one run, in export column order.
type Row struct {
	Seed          int64   `csv:"seed"`
	RunIndex      int     `csv:"run_index"`
	Mood          string  `csv:"mood"`
	GavelAwarded  bool    `csv:"gavel_awarded"`
	TeamName      string  `csv:"team_name"`
	SpentTotal    float64 `csv:"spent_total"`
	SoldTotal     float64 `csv:"sold_total"`
	ProfitTotal   float64 `csv:"profit_total"`
	ROI           float64 `csv:"roi"`
	BestLotName   string  `csv:"best_lot_name"`
	BestLotProfit float64 `csv:"best_lot_profit"`
}

// Columns is the fixed CSV header.
var Columns = []string{
	"seed", "run_index", "mood", "gavel_awarded", "team_name",
	"spent_total", "sold_total", "profit_total", "roi",
	"best_lot_name", "best_lot_profit",
}

// Rows flattens episodes to one row per team per run.
func Rows(episodes []EpisodeResult, seed int64) []Row {
	var rows []Row
	for _, ep := range episodes {
		for _, tr := range ep.Teams {
			row := Row{
				Seed:         seed,
				RunIndex:     ep.RunIndex,
				Mood:         ep.Mood,
				GavelAwarded: ep.GavelAwarded,
				TeamName:     tr.TeamName,
				SpentTotal:   tr.SpentTotal,
				SoldTotal:    tr.SoldTotal,
				ProfitTotal:  tr.Profit,
				ROI:          tr.ROI,
			}
			if tr.BestLot != nil {
				row.BestLotName = tr.BestLot.ItemName
				row.BestLotProfit = tr.BestLot.Profit()
			}
			rows = append(rows, row)
		}
	}
	return rows
}

// WriteCSV writes rows with a header line.
func WriteCSV(w io.Writer, rows []Row) error {
	if len(rows) == 0 {
		// gocsv needs at least one element to derive a header from
		_, err := io.WriteString(w, strings.Join(Columns, ",")+"\n")
		return err
	}
	return gocsv.Marshal(&rows, w)
}

// ReadCSV parses rows written by WriteCSV.
func ReadCSV(r io.Reader) ([]Row, error) {
	var rows []Row
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, apperrors.Wrap(err, "decoding csv rows")
	}
	return rows, nil
}

// EncodeCSV returns the CSV document for rows.
func EncodeCSV(rows []Row) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SaveCSV writes rows to path, creating parent directories.
func SaveCSV(rows []Row, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.Wrapf(err, "creating %s", filepath.Dir(path))
	}
	f, err := os.Create(path)
	if err != nil {
		return apperrors.Wrapf(err, "creating %s", path)
	}
	defer f.Close()

	if err := WriteCSV(f, rows); err != nil {
		return apperrors.Wrapf(err, "writing %s", path)
	}
	return nil
}

package models

// AuctionLot sequences one item through the auction. Lots exist only for
// the duration of an auction phase.
type AuctionLot struct {
	TeamIndex int
	TeamName  string
	Item      *Item
	Position  int
	TeamTotal int
	IsBonus   bool
}

// LotResult is the outcome of one sold lot.
type LotResult struct {
	ItemName  string
	Category  string
	Paid      float64
	Appraised float64
	Sold      float64
	IsBonus   bool
}

// Profit returns sale price minus price paid.
func (l LotResult) Profit() float64 {
	return l.Sold - l.Paid
}

// RoundResult summarises one team's auction.
type RoundResult struct {
	TeamName   string
	Lots       []LotResult
	SpentTotal float64
	SoldTotal  float64
	Profit     float64
	ROI        float64
	BestLot    *LotResult
	WorstLot   *LotResult
}

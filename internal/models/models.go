// Package models provides domain models for the simulator.
package models

import "math"

// Item is an antique or collectable for sale. TrueValue is ground truth and
// is never read by shopping decisions directly; agents see noisy estimates.
type Item struct {
	ID          int
	Name        string
	Category    string
	Era         string
	Condition   float64
	Rarity      float64
	StyleScore  float64
	TrueValue   float64
	Description string
	Image       string
	Attributes  map[string]string

	ShopPrice           float64
	AppraisedValue      float64
	AuctionPrice        float64
	Appraised           bool
	Sold                bool
	IsExpertPick        bool
	WasNegotiated       bool
	NegotiationDiscount float64
	ExpertEstimate      float64
}

// Profit returns the auction result minus what was paid.
func (it *Item) Profit() float64 {
	return it.AuctionPrice - it.ShopPrice
}

// Vec is a point in the play area.
type Vec struct {
	X float64
	Y float64
}

// Dist returns the straight-line distance to o.
func (v Vec) Dist(o Vec) float64 {
	return math.Hypot(o.X-v.X, o.Y-v.Y)
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	X float64
	Y float64
	W float64
	H float64
}

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Vec {
	return Vec{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// Contestant is one member of a shopping team.
type Contestant struct {
	ID               string
	Name             string
	Age              int
	HairColor        string
	Occupation       string
	Relationship     string
	RelationshipType string
	Mood             string
	Role             string
	Confidence       float64
	Taste            float64
}

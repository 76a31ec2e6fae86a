package models

import (
	"fmt"

	apperrors "bargain-hunt/internal/errors"
)

// Stall is a market booth. It exclusively owns its unsold items.
type Stall struct {
	ID             int
	Name           string
	Rect           Rect
	PricingStyle   string
	DiscountChance float64
	DiscountMin    float64
	DiscountMax    float64
	Items          []*Item
}

// Center returns the stall's centre point.
func (s *Stall) Center() Vec {
	return s.Rect.Center()
}

// Has reports whether the stall still stocks item.
func (s *Stall) Has(item *Item) bool {
	for _, it := range s.Items {
		if it == item {
			return true
		}
	}
	return false
}

// Item returns the stocked item with the given id, or nil.
func (s *Stall) Item(id int) *Item {
	for _, it := range s.Items {
		if it.ID == id {
			return it
		}
	}
	return nil
}

// Cheapest returns the lowest-priced item not above maxPrice, or nil.
func (s *Stall) Cheapest(maxPrice float64) *Item {
	var best *Item
	for _, it := range s.Items {
		if it.ShopPrice > maxPrice {
			continue
		}
		if best == nil || it.ShopPrice < best.ShopPrice {
			best = it
		}
	}
	return best
}

func (s *Stall) remove(item *Item) bool {
	for i, it := range s.Items {
		if it == item {
			s.Items = append(s.Items[:i], s.Items[i+1:]...)
			return true
		}
	}
	return false
}

// Market owns every stall. Every unsold item belongs to exactly one stall.
type Market struct {
	Stalls []*Stall
}

// NewMarket returns a market over the given stalls.
func NewMarket(stalls []*Stall) *Market {
	return &Market{Stalls: stalls}
}

// Stall returns the stall with the given id, or nil.
func (m *Market) Stall(id int) *Stall {
	for _, s := range m.Stalls {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// StallOf returns the stall currently stocking item, or nil.
func (m *Market) StallOf(item *Item) *Stall {
	for _, s := range m.Stalls {
		if s.Has(item) {
			return s
		}
	}
	return nil
}

// AllRemainingItems returns every unsold item in stall order.
func (m *Market) AllRemainingItems() []*Item {
	var out []*Item
	for _, s := range m.Stalls {
		out = append(out, s.Items...)
	}
	return out
}

// ItemCount returns the number of unsold items.
func (m *Market) ItemCount() int {
	n := 0
	for _, s := range m.Stalls {
		n += len(s.Items)
	}
	return n
}

// MinItemPrice returns the cheapest shop price on sale, or def when the
// market is empty.
func (m *Market) MinItemPrice(def float64) float64 {
	found := false
	min := def
	for _, s := range m.Stalls {
		for _, it := range s.Items {
			if !found || it.ShopPrice < min {
				min = it.ShopPrice
				found = true
			}
		}
	}
	return min
}

// RemoveItem takes item off whichever stall stocks it.
func (m *Market) RemoveItem(item *Item) error {
	for _, s := range m.Stalls {
		if s.remove(item) {
			return nil
		}
	}
	return fmt.Errorf("item %d %q: %w", item.ID, item.Name, apperrors.ErrItemNotStocked)
}

// CheckOwnership verifies that no item is stocked by more than one stall.
func (m *Market) CheckOwnership() error {
	seen := make(map[*Item]int)
	for _, s := range m.Stalls {
		for _, it := range s.Items {
			if prev, ok := seen[it]; ok {
				return apperrors.NewInvariantError("single-owner", "",
					fmt.Sprintf("item %d stocked by stalls %d and %d", it.ID, prev, s.ID))
			}
			seen[it] = s.ID
		}
	}
	return nil
}

package models

import (
	"testing"

	apperrors "bargain-hunt/internal/errors"
)

func testMarket() (*Market, []*Item) {
	items := []*Item{
		{ID: 1, Name: "a", ShopPrice: 25},
		{ID: 2, Name: "b", ShopPrice: 18},
		{ID: 3, Name: "c", ShopPrice: 40},
	}
	m := NewMarket([]*Stall{
		{ID: 1, Items: []*Item{items[0], items[1]}},
		{ID: 2, Items: []*Item{items[2]}},
	})
	return m, items
}

func TestMarketQueries(t *testing.T) {
	m, items := testMarket()

	if got := m.MinItemPrice(12); got != 18 {
		t.Errorf("MinItemPrice = %.2f, want 18", got)
	}
	if got := m.Stall(1).Cheapest(20); got != items[1] {
		t.Errorf("Cheapest(20) = %v", got)
	}
	if got := m.Stall(2).Cheapest(20); got != nil {
		t.Errorf("Cheapest(20) on stall 2 = %v, want nil", got)
	}
	if got := m.StallOf(items[2]); got == nil || got.ID != 2 {
		t.Errorf("StallOf = %v", got)
	}
	if n := len(m.AllRemainingItems()); n != 3 {
		t.Errorf("AllRemainingItems = %d", n)
	}
}

func TestMarketRemoveItem(t *testing.T) {
	m, items := testMarket()

	if err := m.RemoveItem(items[0]); err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	if m.Stall(1).Has(items[0]) || m.ItemCount() != 2 {
		t.Error("item still stocked after removal")
	}
	if err := m.RemoveItem(items[0]); !apperrors.Is(err, apperrors.ErrItemNotStocked) {
		t.Errorf("second removal: got %v", err)
	}

	m.Stall(1).Items = nil
	m.Stall(2).Items = nil
	if got := m.MinItemPrice(12); got != 12 {
		t.Errorf("empty MinItemPrice = %.2f, want default", got)
	}
}

func TestCheckOwnership(t *testing.T) {
	m, items := testMarket()
	if err := m.CheckOwnership(); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	m.Stall(2).Items = append(m.Stall(2).Items, items[0])
	if err := m.CheckOwnership(); !apperrors.Is(err, apperrors.ErrInvariant) {
		t.Errorf("double ownership not detected: %v", err)
	}
}

package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"bargain-hunt/internal/config"
	apperrors "bargain-hunt/internal/errors"
	"bargain-hunt/internal/models"
	"bargain-hunt/internal/rng"
	"bargain-hunt/internal/trading"
)

func TestProperty_SyntheticItemsHavePositiveValue(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	f := NewFactory(&ItemDatabase{}, config.DefaultBalanceConfig())

	properties.Property("true value positive and traits bounded", prop.ForAll(
		func(seed int64, id int) bool {
			it := f.MakeItem(rng.New(seed), id)
			return it.TrueValue > 0 &&
				it.Condition >= 0.25 && it.Condition <= 1 &&
				it.Rarity >= 0.05 && it.Rarity <= 1 &&
				it.StyleScore >= 0.05 && it.StyleScore <= 1
		},
		gen.Int64(),
		gen.IntRange(1, 10000),
	))

	properties.TestingRun(t)
}

func TestMakeItemDeterministic(t *testing.T) {
	f := NewFactory(nil, config.DefaultBalanceConfig())
	a := f.MakeItem(rng.New(99), 7)
	b := f.MakeItem(rng.New(99), 7)
	if a.Name != b.Name || a.TrueValue != b.TrueValue || a.Category != b.Category {
		t.Fatalf("same rng state produced different items: %+v vs %+v", a, b)
	}
	if a.ID != 7 {
		t.Errorf("ID = %d, want 7", a.ID)
	}
}

func TestLoadJSONLSetsImageAndAttributes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.jsonl")
	line := `{"item_id": "it_test", "title": "Test Generated Item", "category": "decor", "era": "art-deco",` +
		` "condition_score": 0.75, "rarity_score": 0.25, "true_value": 123.0,` +
		` "image_filename": "assets/items/generated/it_test.png", "item_type": "vase", "year_hint": 1933,` +
		` "materials": ["glass", "brass"]}`
	if err := os.WriteFile(path, []byte(line+"\n\n"), 0644); err != nil {
		t.Fatal(err)
	}

	db, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if db.Len() != 1 {
		t.Fatalf("templates = %d, want 1", db.Len())
	}
	tmpl := db.Templates[0]
	if tmpl.Image != "assets/items/generated/it_test.png" {
		t.Errorf("image = %q", tmpl.Image)
	}
	want := map[string]string{
		"dataset_id": "it_test",
		"materials":  "glass, brass",
		"item_type":  "vase",
		"year_hint":  "1933",
	}
	for k, v := range want {
		if tmpl.Attributes[k] != v {
			t.Errorf("attribute %s = %q, want %q", k, tmpl.Attributes[k], v)
		}
	}

	item := tmpl.Instantiate(99)
	if item.ID != 99 || item.Image != tmpl.Image || item.Condition != 0.75 || item.TrueValue != 123 {
		t.Errorf("instantiated item mismatch: %+v", item)
	}
	item.Attributes["materials"] = "changed"
	if tmpl.Attributes["materials"] != "glass, brass" {
		t.Error("instantiated item shares attribute map with template")
	}
}

func TestLoadJSONLRejectsMissingField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.jsonl")
	line := `{"title": "No value", "category": "toys", "era": "70s", "condition_score": 0.5, "rarity_score": 0.5}`
	if err := os.WriteFile(path, []byte(line+"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := LoadJSONL(path)
	var te *apperrors.TemplateError
	if !apperrors.As(err, &te) {
		t.Fatalf("expected TemplateError, got %v", err)
	}
	if te.Field != "true_value" || te.Line != 1 {
		t.Errorf("TemplateError = %+v", te)
	}
}

func TestLoadRejectsOutOfRangeValues(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name  string
		file  string
		doc   string
		field string
		line  int
	}{
		{
			name:  "jsonl negative value",
			file:  "neg.jsonl",
			doc:   `{"title": "Jug", "category": "ceramics", "era": "60s", "condition_score": 0.5, "rarity_score": 0.5, "true_value": -40}`,
			field: "true_value",
			line:  1,
		},
		{
			name: "jsonl condition above one",
			file: "cond.jsonl",
			doc: `{"title": "Jug", "category": "ceramics", "era": "60s", "condition_score": 0.5, "rarity_score": 0.5, "true_value": 20}
{"title": "Vase", "category": "glassware", "era": "70s", "condition_score": 1.7, "rarity_score": 0.5, "true_value": 40}`,
			field: "condition",
			line:  2,
		},
		{
			name:  "json zero value",
			file:  "zero.json",
			doc:   `[{"name": "Tin robot", "category": "toys", "era": "50s", "true_value": 0}]`,
			field: "true_value",
			line:  1,
		},
		{
			name:  "json negative rarity",
			file:  "rarity.json",
			doc:   `[{"name": "Tin robot", "category": "toys", "era": "50s", "rarity": -0.1, "true_value": 30}]`,
			field: "rarity",
			line:  1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			if err := os.WriteFile(path, []byte(tt.doc+"\n"), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			var te *apperrors.TemplateError
			if !apperrors.As(err, &te) {
				t.Fatalf("expected TemplateError, got %v", err)
			}
			if te.Field != tt.field || te.Line != tt.line || te.Path != path {
				t.Errorf("TemplateError = %+v", te)
			}
			if !apperrors.Is(err, apperrors.ErrTemplateInvalid) {
				t.Errorf("error does not match ErrTemplateInvalid: %v", err)
			}
		})
	}
}

func TestLoadJSONArrayDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.json")
	doc := `[{"name": "Brass carriage clock", "category": "clocks", "era": "victorian", "true_value": 140}]`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}
	db, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	tmpl := db.Templates[0]
	if tmpl.Condition != 0.6 || tmpl.Rarity != 0.5 || tmpl.StyleScore != 0.5 || tmpl.TrueValue != 140 {
		t.Errorf("defaults not applied: %+v", tmpl)
	}

	missing, err := LoadJSON(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil || missing.Len() != 0 {
		t.Errorf("missing file: db=%v err=%v", missing, err)
	}
}

func TestFactoryFromConfigUnknownSource(t *testing.T) {
	_, err := FactoryFromConfig(config.ItemsConfig{Source: "attic"}, config.DefaultBalanceConfig())
	if !apperrors.Is(err, apperrors.ErrUnknownItemSource) {
		t.Errorf("expected ErrUnknownItemSource, got %v", err)
	}
}

func TestGenerateMarket(t *testing.T) {
	cfg := config.DefaultBalanceConfig()
	f := NewFactory(nil, cfg)
	p := trading.NewPricer(cfg)
	area := models.Rect{X: 0, Y: 0, W: 740, H: 700}

	m, next := GenerateMarket(rng.New(5), area, f, p, cfg, config.StyleMixed)
	if len(m.Stalls) != 6 {
		t.Fatalf("stalls = %d, want 6", len(m.Stalls))
	}
	seen := map[int]bool{}
	for _, st := range m.Stalls {
		if n := len(st.Items); n < 6 || n > 10 {
			t.Errorf("stall %d has %d items", st.ID, n)
		}
		wantChance := cfg.Stalls.DiscountChance
		if st.PricingStyle == config.StyleOverpriced {
			wantChance = cfg.Stalls.OverpricedDiscountChance
		}
		if st.DiscountChance != wantChance {
			t.Errorf("stall %d (%s) discount chance %.2f", st.ID, st.PricingStyle, st.DiscountChance)
		}
		for _, it := range st.Items {
			if seen[it.ID] {
				t.Errorf("duplicate item id %d", it.ID)
			}
			seen[it.ID] = true
			if it.ShopPrice < cfg.ShopPricing.MinPrice {
				t.Errorf("item %d priced %.2f below floor", it.ID, it.ShopPrice)
			}
		}
	}
	if next != m.ItemCount()+1 {
		t.Errorf("next id = %d, items = %d", next, m.ItemCount())
	}
	if err := m.CheckOwnership(); err != nil {
		t.Error(err)
	}

	again, _ := GenerateMarket(rng.New(5), area, f, p, cfg, config.StyleMixed)
	a, b := m.AllRemainingItems(), again.AllRemainingItems()
	if len(a) != len(b) {
		t.Fatalf("regenerated market differs in size")
	}
	for i := range a {
		if a[i].Name != b[i].Name || a[i].ShopPrice != b[i].ShopPrice {
			t.Fatalf("regenerated market differs at item %d", i)
		}
	}
}

func TestGenerateMarketForcedStyle(t *testing.T) {
	cfg := config.DefaultBalanceConfig()
	f := NewFactory(nil, cfg)
	p := trading.NewPricer(cfg)
	area := models.Rect{W: 740, H: 700}

	fair, _ := GenerateMarket(rng.New(9), area, f, p, cfg, config.StyleFair)
	dear, _ := GenerateMarket(rng.New(9), area, f, p, cfg, config.StyleOverpriced)

	for i, st := range dear.Stalls {
		if st.PricingStyle != config.StyleOverpriced || fair.Stalls[i].PricingStyle != config.StyleFair {
			t.Fatalf("stall %d styles %s / %s", st.ID, fair.Stalls[i].PricingStyle, st.PricingStyle)
		}
		if st.DiscountChance != cfg.Stalls.OverpricedDiscountChance {
			t.Errorf("overpriced stall %d discount chance %.2f", st.ID, st.DiscountChance)
		}
	}

	a, b := fair.AllRemainingItems(), dear.AllRemainingItems()
	if len(a) != len(b) {
		t.Fatalf("forcing a style changed the stock: %d vs %d items", len(a), len(b))
	}
	var fairTotal, dearTotal float64
	for i := range a {
		if a[i].Name != b[i].Name || a[i].TrueValue != b[i].TrueValue {
			t.Fatalf("item %d differs between styles", i)
		}
		if b[i].ShopPrice < a[i].ShopPrice {
			t.Errorf("item %d overpriced %.2f below fair %.2f", i, b[i].ShopPrice, a[i].ShopPrice)
		}
		fairTotal += a[i].ShopPrice
		dearTotal += b[i].ShopPrice
	}
	if dearTotal <= fairTotal {
		t.Errorf("overpriced market total %.2f not above fair %.2f", dearTotal, fairTotal)
	}
}

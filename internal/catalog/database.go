// Package catalog builds market items from template documents or a
// synthetic generator, and stocks the market.
package catalog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	apperrors "bargain-hunt/internal/errors"
	"bargain-hunt/internal/models"
	"bargain-hunt/internal/rng"
)

// ItemTemplate is a reusable item definition.
type ItemTemplate struct {
	Name        string            `json:"name"`
	Category    string            `json:"category"`
	Era         string            `json:"era"`
	Condition   float64           `json:"condition"`
	Rarity      float64           `json:"rarity"`
	StyleScore  float64           `json:"style_score"`
	TrueValue   float64           `json:"true_value"`
	Description string            `json:"description,omitempty"`
	Image       string            `json:"image,omitempty"`
	Attributes  map[string]string `json:"attributes,omitempty"`
}

// Instantiate creates an unpriced item from the template.
func (t ItemTemplate) Instantiate(id int) *models.Item {
	attrs := make(map[string]string, len(t.Attributes))
	for k, v := range t.Attributes {
		attrs[k] = v
	}
	return &models.Item{
		ID:          id,
		Name:        t.Name,
		Category:    t.Category,
		Era:         t.Era,
		Condition:   t.Condition,
		Rarity:      t.Rarity,
		StyleScore:  t.StyleScore,
		TrueValue:   t.TrueValue,
		Description: t.Description,
		Image:       t.Image,
		Attributes:  attrs,
	}
}

// Template defaults for optional numeric fields of JSON array records.
const (
	defaultCondition = 0.6
	defaultRarity    = 0.5
	defaultStyle     = 0.5
	defaultValue     = 50.0
)

// ItemDatabase holds item templates.
type ItemDatabase struct {
	Templates []ItemTemplate
}

// Len returns the number of templates.
func (db *ItemDatabase) Len() int {
	if db == nil {
		return 0
	}
	return len(db.Templates)
}

// Pick returns a uniformly chosen template, or false when the database is empty.
func (db *ItemDatabase) Pick(g *rng.RNG) (ItemTemplate, bool) {
	if db.Len() == 0 {
		return ItemTemplate{}, false
	}
	return rng.Choice(g, db.Templates), true
}

type arrayRecord struct {
	Name        string            `json:"name"`
	Category    string            `json:"category"`
	Era         string            `json:"era"`
	Condition   *float64          `json:"condition"`
	Rarity      *float64          `json:"rarity"`
	StyleScore  *float64          `json:"style_score"`
	TrueValue   *float64          `json:"true_value"`
	Description string            `json:"description"`
	Image       string            `json:"image"`
	Attributes  map[string]string `json:"attributes"`
}

// LoadJSON reads a JSON array of item records. A missing file yields an
// empty database.
func LoadJSON(path string) (*ItemDatabase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &ItemDatabase{}, nil
		}
		return nil, fmt.Errorf("reading item templates: %w", err)
	}

	var records []arrayRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, apperrors.NewTemplateError(path, 0, "", err)
	}

	db := &ItemDatabase{Templates: make([]ItemTemplate, 0, len(records))}
	for i, r := range records {
		for field, v := range map[string]string{"name": r.Name, "category": r.Category, "era": r.Era} {
			if v == "" {
				return nil, apperrors.NewTemplateError(path, i+1, field, nil)
			}
		}
		tmpl := ItemTemplate{
			Name:        r.Name,
			Category:    r.Category,
			Era:         r.Era,
			Condition:   orDefault(r.Condition, defaultCondition),
			Rarity:      orDefault(r.Rarity, defaultRarity),
			StyleScore:  orDefault(r.StyleScore, defaultStyle),
			TrueValue:   orDefault(r.TrueValue, defaultValue),
			Description: r.Description,
			Image:       r.Image,
			Attributes:  r.Attributes,
		}
		if err := tmpl.validate(); err != nil {
			err.Path, err.Line = path, i+1
			return nil, err
		}
		db.Templates = append(db.Templates, tmpl)
	}
	return db, nil
}

// validate checks value ranges: true_value must be positive and the
// scores must lie in [0, 1].
func (t ItemTemplate) validate() *apperrors.TemplateError {
	if t.TrueValue <= 0 {
		return apperrors.NewTemplateError("", 0, "true_value",
			fmt.Errorf("must be positive, got %.2f: %w", t.TrueValue, apperrors.ErrTemplateInvalid))
	}
	for _, s := range []struct {
		field string
		v     float64
	}{{"condition", t.Condition}, {"rarity", t.Rarity}, {"style_score", t.StyleScore}} {
		if s.v < 0 || s.v > 1 {
			return apperrors.NewTemplateError("", 0, s.field,
				fmt.Errorf("must be in [0, 1], got %.3f: %w", s.v, apperrors.ErrTemplateInvalid))
		}
	}
	return nil
}

func orDefault(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

// jsonlKnown lists keys consumed by the loader; anything else becomes an attribute.
var jsonlKnown = map[string]bool{
	"item_id": true, "title": true, "name": true, "category": true, "era": true,
	"condition_score": true, "condition": true, "rarity_score": true, "rarity": true,
	"style_score": true, "true_value": true, "description": true,
	"image_filename": true, "image": true, "attributes": true,
}

// LoadJSONL reads one item record per line. Required fields are title (or
// name), category, era, condition_score, rarity_score and true_value.
// Unknown fields are kept as string attributes, lists joined with ", ",
// and item_id is stored as the dataset_id attribute.
func LoadJSONL(path string) (*ItemDatabase, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &ItemDatabase{}, nil
		}
		return nil, fmt.Errorf("reading item templates: %w", err)
	}
	defer f.Close()

	db := &ItemDatabase{}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var raw map[string]interface{}
		if err := json.Unmarshal([]byte(text), &raw); err != nil {
			return nil, apperrors.NewTemplateError(path, line, "", err)
		}
		tmpl, err := templateFromRecord(raw)
		if err != nil {
			var te *apperrors.TemplateError
			if apperrors.As(err, &te) {
				te.Path, te.Line = path, line
			}
			return nil, err
		}
		db.Templates = append(db.Templates, tmpl)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading item templates: %w", err)
	}
	return db, nil
}

func templateFromRecord(raw map[string]interface{}) (ItemTemplate, error) {
	var t ItemTemplate
	var ok bool

	if t.Name, ok = firstString(raw, "title", "name"); !ok {
		return t, apperrors.NewTemplateError("", 0, "title", nil)
	}
	if t.Category, ok = firstString(raw, "category"); !ok {
		return t, apperrors.NewTemplateError("", 0, "category", nil)
	}
	if t.Era, ok = firstString(raw, "era"); !ok {
		return t, apperrors.NewTemplateError("", 0, "era", nil)
	}
	if t.Condition, ok = firstFloat(raw, "condition_score", "condition"); !ok {
		return t, apperrors.NewTemplateError("", 0, "condition_score", nil)
	}
	if t.Rarity, ok = firstFloat(raw, "rarity_score", "rarity"); !ok {
		return t, apperrors.NewTemplateError("", 0, "rarity_score", nil)
	}
	if t.TrueValue, ok = firstFloat(raw, "true_value"); !ok {
		return t, apperrors.NewTemplateError("", 0, "true_value", nil)
	}
	if t.StyleScore, ok = firstFloat(raw, "style_score"); !ok {
		t.StyleScore = defaultStyle
	}
	t.Description, _ = firstString(raw, "description")
	t.Image, _ = firstString(raw, "image_filename", "image")

	t.Attributes = make(map[string]string)
	if nested, ok := raw["attributes"].(map[string]interface{}); ok {
		for k, v := range nested {
			t.Attributes[k] = attributeString(v)
		}
	}
	keys := make([]string, 0, len(raw))
	for k := range raw {
		if !jsonlKnown[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		t.Attributes[k] = attributeString(raw[k])
	}
	if id, ok := raw["item_id"]; ok && id != nil {
		t.Attributes["dataset_id"] = attributeString(id)
	}
	if err := t.validate(); err != nil {
		return t, err
	}
	return t, nil
}

func firstString(raw map[string]interface{}, keys ...string) (string, bool) {
	for _, k := range keys {
		if s, ok := raw[k].(string); ok && s != "" {
			return s, true
		}
	}
	return "", false
}

func firstFloat(raw map[string]interface{}, keys ...string) (float64, bool) {
	for _, k := range keys {
		switch v := raw[k].(type) {
		case float64:
			return v, true
		case string:
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

func attributeString(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case []interface{}:
		parts := make([]string, 0, len(x))
		for _, e := range x {
			parts = append(parts, attributeString(e))
		}
		return strings.Join(parts, ", ")
	default:
		b, _ := json.Marshal(x)
		return string(b)
	}
}

// Load reads a template document, choosing the format by extension.
func Load(path string) (*ItemDatabase, error) {
	if strings.HasSuffix(strings.ToLower(path), ".jsonl") {
		return LoadJSONL(path)
	}
	return LoadJSON(path)
}

// Combine concatenates databases in order.
func Combine(dbs ...*ItemDatabase) *ItemDatabase {
	out := &ItemDatabase{}
	for _, db := range dbs {
		if db != nil {
			out.Templates = append(out.Templates, db.Templates...)
		}
	}
	return out
}

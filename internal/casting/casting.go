// Package casting generates random contestant pairs for an episode.
package casting

import (
	"fmt"
	"math"
	"strings"

	apperrors "bargain-hunt/internal/errors"
	"bargain-hunt/internal/models"
	"bargain-hunt/internal/rng"
)

// Relationship types.
const (
	Siblings    = "siblings"
	Friends     = "friends"
	Colleagues  = "colleagues"
	Couple      = "couple"
	ParentChild = "parent_child"
	Neighbours  = "neighbours"
)

// Relationship describes how a contestant pair knows each other.
type Relationship struct {
	Type          string
	Label         string
	Description   string
	SharedSurname bool
	TeamTitle     string
}

// TeamProfile is a cast team before it is given a budget and strategy.
type TeamProfile struct {
	Name             string
	Relationship     string
	RelationshipType string
	Contestants      []models.Contestant
}

type weighted struct {
	value  string
	weight float64
}

var (
	firstNames = []string{
		"Amelia", "Arthur", "Beatrice", "Callum", "Chloe", "Declan", "Ella", "Ethan", "Freya", "George",
		"Harriet", "Imogen", "Isla", "Jacob", "Jasmine", "Kieran", "Layla", "Lewis", "Maya", "Naomi",
		"Noah", "Oliver", "Priya", "Rahul", "Rosie", "Sam", "Sophie", "Theo", "Toby", "Yasmin",
	}
	surnames = []string{
		"Ahmed", "Bennett", "Campbell", "Davies", "Evans", "Fletcher", "Gallagher", "Hughes", "Jackson",
		"Jones", "Khan", "Marshall", "Morgan", "Patel", "Roberts", "Singh", "Smith", "Taylor",
		"Thompson", "Walker", "Wilson",
	}
	occupations = []string{
		"teacher", "nurse", "electrician", "youth worker", "graphic designer", "librarian",
		"civil servant", "history student", "shop owner", "paramedic", "retired postie", "engineer",
		"cafe manager", "museum guide", "office admin", "train driver",
	}
	hairColours = []weighted{
		{"brown", 0.38}, {"blonde", 0.22}, {"black", 0.20}, {"grey", 0.12}, {"red", 0.08},
	}
	moods = []weighted{
		{"buzzing", 0.2}, {"focused", 0.2}, {"quietly confident", 0.18},
		{"nervous", 0.14}, {"excited", 0.16}, {"cautiously optimistic", 0.12},
	}
	roleSets = [][2]string{
		{"Team Captain", "Spotter"},
		{"Strategist", "Dealer"},
		{"Buyer", "Researcher"},
	}
)

// Relationships is the pool of pairings teams are cast from.
var Relationships = []Relationship{
	{Siblings, "Sisters", "sisters who binge car boot sales", true, "Siblings"},
	{Siblings, "Brothers", "brothers raised on antiques fairs", true, "Brothers"},
	{Friends, "Best mates", "best mates since uni", false, "Best Mates"},
	{Colleagues, "Work pals", "colleagues from the office", false, "Workmates"},
	{Couple, "Married", "a married duo who love a bargain", false, "Married Duo"},
	{ParentChild, "Family team", "parent and grown-up child", true, "Family Pair"},
	{Neighbours, "Neighbours", "neighbours who swap antiques tips", false, "Neighbours"},
}

func pickWeighted(g *rng.RNG, options []weighted) string {
	weights := make([]float64, len(options))
	for i, o := range options {
		weights[i] = o.weight
	}
	idx := g.WeightedIndex(weights)
	if idx < 0 {
		return ""
	}
	return options[idx].value
}

func triangularInt(g *rng.RNG, lo, hi, mode int) int {
	return int(math.Round(g.Triangular(float64(lo), float64(hi), float64(mode))))
}

func pair(g *rng.RNG, rel Relationship, roles [2]string) []models.Contestant {
	shared := ""
	if rel.SharedSurname {
		shared = rng.Choice(g, surnames)
	}
	first := rng.Choice(g, firstNames)
	others := make([]string, 0, len(firstNames)-1)
	for _, n := range firstNames {
		if n != first {
			others = append(others, n)
		}
	}
	second := rng.Choice(g, others)

	out := make([]models.Contestant, 0, 2)
	for i, name := range []string{first, second} {
		surname := shared
		if surname == "" {
			surname = rng.Choice(g, surnames)
		}
		c := models.Contestant{
			Name:             name + " " + surname,
			Age:              triangularInt(g, 20, 72, 46),
			HairColor:        pickWeighted(g, hairColours),
			Occupation:       rng.Choice(g, occupations),
			Mood:             pickWeighted(g, moods),
			Confidence:       rng.Clamp(0.45+g.Float64()*0.4, 0, 1),
			Taste:            rng.Clamp(0.5+g.Float64()*0.35, 0, 1),
			Relationship:     rel.Description,
			RelationshipType: rel.Type,
			Role:             roles[i],
		}
		c.ID = fmt.Sprintf("%s-%d-%d", rel.Type, g.IntRange(1000, 9999), i+1)
		out = append(out, c)
	}
	return out
}

// GenerateTeams casts count teams with distinct relationships. Team names
// combine the colour label with the relationship title.
func GenerateTeams(g *rng.RNG, count int, colorLabels []string) ([]TeamProfile, error) {
	if count > len(Relationships) {
		return nil, apperrors.InvalidField("show.teams", "at most %d teams can be cast, got %d", len(Relationships), count)
	}

	pool := append([]Relationship(nil), Relationships...)
	rng.Shuffle(g, pool)

	teams := make([]TeamProfile, 0, count)
	for i, rel := range pool[:count] {
		roles := rng.Choice(g, roleSets)
		label := "Team"
		if i < len(colorLabels) {
			label = colorLabels[i]
		}
		teams = append(teams, TeamProfile{
			Name:             strings.TrimSpace(label + " " + rel.TeamTitle),
			Relationship:     rel.Description,
			RelationshipType: rel.Type,
			Contestants:      pair(g, rel, roles),
		})
	}
	return teams, nil
}

package agents

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"bargain-hunt/internal/config"
	apperrors "bargain-hunt/internal/errors"
	"bargain-hunt/internal/rng"
	"bargain-hunt/pkg/utils"
)

var (
	rosterNames = []string{
		"Alex Grant", "Priya Desai", "Callum Price", "Beatrice Lowe",
		"Marcus Flint", "Serena Moore", "Hugo Bell", "Lila Chen",
		"Carmen Alvarez", "Ned Okoro", "Vera Singh", "Tom Hollins",
	}
	rosterSpecialties = []string{
		"ceramics", "silverware", "tools", "prints", "toys", "glassware", "clocks", "books",
	}
	rosterStyles = []string{
		"no-nonsense appraiser", "warm mentor", "methodical researcher", "risky gambler",
		"budget hawk", "story-first picker", "calm negotiator",
	}
	rosterMoods        = []string{"calm", "excitable", "methodical", "skeptical"}
	rosterCatchphrases = []string{
		"Let's not pay twice.",
		"I like the bones of this.",
		"Trust the patina.",
		"Let's make a cheeky offer.",
	}
)

// GenerateRoster builds a deterministic roster of size experts from seed.
func GenerateRoster(size int, seed int64) []ExpertProfile {
	g := rng.New(seed)
	profiles := make([]ExpertProfile, 0, size)
	for i := 0; i < size; i++ {
		name := rosterNames[i%len(rosterNames)]
		specialty := rosterSpecialties[i%len(rosterSpecialties)]

		p := ExpertProfile{
			ID:             fmt.Sprintf("expert_%02d_%s", i, strings.ReplaceAll(strings.ToLower(name), " ", "_")),
			FullName:       name,
			Specialty:      specialty,
			SignatureStyle: rosterStyles[i%len(rosterStyles)],
			Catchphrase:    rosterCatchphrases[i%len(rosterCatchphrases)],
		}
		p.YearsExperience = 8 + i + g.IntRange(0, 6)
		p.AppraisalAccuracy = utils.Round2(0.72 + g.Uniform(0, 0.2))
		p.NegotiationSkill = utils.Round2(0.55 + g.Uniform(-0.12, 0.25))
		p.RiskAppetite = utils.Round2(0.35 + g.Uniform(-0.15, 0.4))
		p.CategoryBias = map[string]float64{specialty: utils.Round2(1.05 + g.Uniform(0, 0.12))}
		p.TimeManagement = utils.Round2(0.5 + g.Uniform(-0.15, 0.35))
		p.TrustFactor = utils.Round2(0.5 + g.Uniform(-0.1, 0.25))
		p.MoodBaseline = rng.Choice(g, rosterMoods)
		profiles = append(profiles, p)
	}
	return profiles
}

// SaveRoster writes profiles to path as indented JSON.
func SaveRoster(path string, profiles []ExpertProfile) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating roster dir: %w", err)
	}
	data, err := json.MarshalIndent(profiles, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding roster: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// LoadRoster reads the persistent expert roster from path. A missing file is
// generated from seed when regen is allowed; force always regenerates. An
// empty path generates the roster in memory.
func LoadRoster(path string, size int, regen, force bool, seed int64) ([]ExpertProfile, error) {
	if path == "" {
		return GenerateRoster(size, seed), nil
	}

	_, statErr := os.Stat(path)
	missing := os.IsNotExist(statErr)

	if force || (regen && missing) {
		profiles := GenerateRoster(size, seed)
		if err := SaveRoster(path, profiles); err != nil {
			return nil, apperrors.NewRosterError(path, size, len(profiles), err)
		}
		return profiles, nil
	}

	if missing {
		return nil, apperrors.NewRosterError(path, size, 0, apperrors.ErrRosterNotFound)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewRosterError(path, size, 0, err)
	}

	var profiles []ExpertProfile
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, apperrors.NewRosterError(path, size, 0, err)
	}
	if len(profiles) != size {
		return nil, apperrors.NewRosterError(path, size, len(profiles), apperrors.ErrRosterSize)
	}
	return profiles, nil
}

// LoadRosterFromConfig loads the roster the experts config points at.
func LoadRosterFromConfig(cfg config.ExpertsConfig) ([]ExpertProfile, error) {
	return LoadRoster(cfg.RosterPath, cfg.RosterSize, cfg.RegenAllowed, cfg.ForceRegen, cfg.RosterSeed)
}

// AssignExperts draws count distinct experts for an episode. For a pair it
// takes one cautious and one bold expert when the roster has both.
func AssignExperts(g *rng.RNG, roster []ExpertProfile, count int, effectStrength float64, cfg *config.BalanceConfig) ([]*Expert, error) {
	if count > len(roster) {
		return nil, apperrors.NewRosterError("", count, len(roster),
			fmt.Errorf("cannot assign %d experts: %w", count, apperrors.ErrRosterSize))
	}

	ordered := make([]ExpertProfile, len(roster))
	copy(ordered, roster)
	rng.Shuffle(g, ordered)

	var selected []ExpertProfile
	if count == 2 {
		var cautious, bold []ExpertProfile
		for _, p := range ordered {
			if p.RiskAppetite < 0.5 {
				cautious = append(cautious, p)
			} else {
				bold = append(bold, p)
			}
		}
		if len(cautious) > 0 && len(bold) > 0 {
			selected = []ExpertProfile{rng.Choice(g, cautious), rng.Choice(g, bold)}
		} else {
			selected = ordered[:2]
		}
	} else {
		selected = ordered[:count]
	}

	seen := make(map[string]bool)
	unique := make([]ExpertProfile, 0, count)
	for _, p := range selected {
		if seen[p.ID] || len(unique) == count {
			continue
		}
		unique = append(unique, p)
		seen[p.ID] = true
	}
	for _, p := range ordered {
		if len(unique) == count {
			break
		}
		if !seen[p.ID] {
			unique = append(unique, p)
			seen[p.ID] = true
		}
	}

	experts := make([]*Expert, len(unique))
	for i, p := range unique {
		experts[i] = NewExpert(p, effectStrength, cfg)
	}
	return experts, nil
}

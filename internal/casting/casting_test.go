package casting

import (
	"strings"
	"testing"

	"bargain-hunt/internal/rng"
)

func TestGenerateTeams(t *testing.T) {
	teams, err := GenerateTeams(rng.New(12), 2, []string{"Red", "Blue"})
	if err != nil {
		t.Fatalf("GenerateTeams: %v", err)
	}
	if len(teams) != 2 {
		t.Fatalf("teams = %d", len(teams))
	}
	if !strings.HasPrefix(teams[0].Name, "Red ") || !strings.HasPrefix(teams[1].Name, "Blue ") {
		t.Errorf("team names = %q, %q", teams[0].Name, teams[1].Name)
	}
	if teams[0].Relationship == teams[1].Relationship {
		t.Error("teams share a relationship")
	}

	for _, team := range teams {
		if len(team.Contestants) != 2 {
			t.Fatalf("%s has %d contestants", team.Name, len(team.Contestants))
		}
		a, b := team.Contestants[0], team.Contestants[1]
		if strings.Fields(a.Name)[0] == strings.Fields(b.Name)[0] {
			t.Errorf("%s: contestants share a first name", team.Name)
		}
		for _, c := range team.Contestants {
			if c.Age < 20 || c.Age > 72 {
				t.Errorf("age %d out of range", c.Age)
			}
			if c.Confidence < 0.45 || c.Confidence > 0.85 || c.Taste < 0.5 || c.Taste > 0.85 {
				t.Errorf("traits out of range: %+v", c)
			}
			if c.Role == "" || c.HairColor == "" || c.Mood == "" {
				t.Errorf("missing flavour fields: %+v", c)
			}
		}
	}
}

func TestGenerateTeamsDeterministic(t *testing.T) {
	a, _ := GenerateTeams(rng.New(3), 2, nil)
	b, _ := GenerateTeams(rng.New(3), 2, nil)
	for i := range a {
		if a[i].Name != b[i].Name || a[i].Contestants[0].Name != b[i].Contestants[0].Name {
			t.Fatalf("team %d differs between runs", i)
		}
	}
}

func TestGenerateTeamsTooMany(t *testing.T) {
	if _, err := GenerateTeams(rng.New(1), len(Relationships)+1, nil); err == nil {
		t.Error("expected error when casting more teams than relationships")
	}
}

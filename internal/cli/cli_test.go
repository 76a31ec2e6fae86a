package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bargain-hunt/internal/balance"
)

// execute runs the CLI against a private config directory.
func execute(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(io.Discard)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append(args, "--config", dir))
	err := root.Execute()
	return out.String(), err
}

func TestVersionJSON(t *testing.T) {
	out, err := execute(t, t.TempDir(), "version", "--json")
	if err != nil {
		t.Fatal(err)
	}
	var v map[string]string
	if err := json.Unmarshal([]byte(out), &v); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if v["version"] != Version {
		t.Errorf("version = %q", v["version"])
	}
}

func TestConfigCommands(t *testing.T) {
	dir := t.TempDir()
	if _, err := execute(t, dir, "config", "validate"); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "config.toml")); err != nil {
		t.Errorf("config template not written: %v", err)
	}

	out, err := execute(t, dir, "config", "show")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Items per team:    3") {
		t.Errorf("config show output:\n%s", out)
	}

	if _, err := execute(t, dir, "config", "economy", "economy.yaml", "--preset", "realistic"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "economy.yaml")); err != nil {
		t.Errorf("economy file not written: %v", err)
	}
	if _, err := execute(t, dir, "config", "show", "--economy", filepath.Join(dir, "economy.yaml")); err != nil {
		t.Errorf("loading saved economy: %v", err)
	}
}

func TestPlayDeterministic(t *testing.T) {
	dir := t.TempDir()
	a, err := execute(t, dir, "play", "--seed", "5", "--step", "0.2", "--json")
	if err != nil {
		t.Fatal(err)
	}
	b, err := execute(t, dir, "play", "--seed", "5", "--step", "0.2", "--json")
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Error("same seed played differently")
	}

	var s playSummary
	if err := json.Unmarshal([]byte(a), &s); err != nil {
		t.Fatal(err)
	}
	if s.Winner == "" || len(s.Teams) != 2 || len(s.Results) != 2 {
		t.Errorf("summary = %+v", s)
	}
}

func TestPlayText(t *testing.T) {
	out, err := execute(t, t.TempDir(), "play", "--seed", "9", "--step", "0.2", "--expert-picks", "exclude")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Episode 9", "Results", "Winner:"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "(included)") {
		t.Error("excluded picks reported as included")
	}
}

func TestPlayBadExpertPicks(t *testing.T) {
	if _, err := execute(t, t.TempDir(), "play", "--expert-picks", "maybe"); err == nil {
		t.Error("expected error")
	}
}

func TestBalanceRecordsHistory(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "rows.csv")

	out, err := execute(t, dir, "balance", "--runs", "6", "--seed", "3", "--csv", csvPath, "--json")
	if err != nil {
		t.Fatal(err)
	}
	var rep balance.Report
	if err := json.Unmarshal([]byte(out), &rep); err != nil {
		t.Fatalf("invalid report: %v", err)
	}
	if rep.Gavel.Eligible != 6 {
		t.Errorf("eligible = %d", rep.Gavel.Eligible)
	}

	data, err := os.ReadFile(csvPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), strings.Join(balance.Columns, ",")) {
		t.Errorf("csv header = %q", strings.SplitN(string(data), "\n", 2)[0])
	}

	out, err = execute(t, dir, "history", "list", "--json")
	if err != nil {
		t.Fatal(err)
	}
	var runs []map[string]interface{}
	if err := json.Unmarshal([]byte(out), &runs); err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Fatalf("history has %d runs", len(runs))
	}
	id := runs[0]["id"].(string)

	out, err = execute(t, dir, "history", "export", ShortID(id))
	if err != nil {
		t.Fatal(err)
	}
	if got := len(strings.Split(strings.TrimSpace(out), "\n")); got != 1+6*2 {
		t.Errorf("export has %d lines", got)
	}

	if _, err := execute(t, dir, "history", "delete", id); err != nil {
		t.Fatal(err)
	}
	out, _ = execute(t, dir, "history", "list")
	if !strings.Contains(out, "No balance runs") {
		t.Errorf("history after delete:\n%s", out)
	}
}

func TestBalanceNoSave(t *testing.T) {
	dir := t.TempDir()
	if _, err := execute(t, dir, "balance", "--runs", "2", "--no-save"); err != nil {
		t.Fatal(err)
	}
	out, err := execute(t, dir, "history", "list", "--json")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "[]" {
		t.Errorf("history = %s", out)
	}
}

func TestBalanceBadMode(t *testing.T) {
	if _, err := execute(t, t.TempDir(), "balance", "--mode", "turbo"); err == nil {
		t.Error("expected error")
	}
}

func TestPlayStyle(t *testing.T) {
	dir := t.TempDir()
	fair, err := execute(t, dir, "play", "--seed", "5", "--step", "0.2", "--style", "fair", "--json")
	if err != nil {
		t.Fatal(err)
	}
	over, err := execute(t, dir, "play", "--seed", "5", "--step", "0.2", "--style", "overpriced", "--json")
	if err != nil {
		t.Fatal(err)
	}
	if fair == over {
		t.Error("fair and overpriced markets played the same show")
	}

	if _, err := execute(t, dir, "play", "--style", "bargain"); err == nil {
		t.Error("expected error for unknown style")
	}
}

func TestExpertsCommands(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, dir, "experts", "list", "--json")
	if err != nil {
		t.Fatal(err)
	}
	var roster []map[string]interface{}
	if err := json.Unmarshal([]byte(out), &roster); err != nil {
		t.Fatal(err)
	}
	if len(roster) != 10 {
		t.Errorf("roster size = %d", len(roster))
	}

	out, err = execute(t, dir, "experts", "show", "expert_00_alex_grant")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Appraisal accuracy") {
		t.Errorf("show output:\n%s", out)
	}

	if _, err := execute(t, dir, "experts", "regen"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "experts.json")); err != nil {
		t.Errorf("roster file not written: %v", err)
	}
}

func TestItemsSample(t *testing.T) {
	out, err := execute(t, t.TempDir(), "items", "sample", "--count", "4", "--json")
	if err != nil {
		t.Fatal(err)
	}
	var items []map[string]interface{}
	if err := json.Unmarshal([]byte(out), &items); err != nil {
		t.Fatal(err)
	}
	if len(items) != 4 {
		t.Errorf("got %d items", len(items))
	}

	if _, err := execute(t, t.TempDir(), "items", "sample", "--style", "bargain"); err == nil {
		t.Error("unknown style should fail")
	}
}

func TestTableRender(t *testing.T) {
	var buf bytes.Buffer
	out := &Output{writer: &buf}
	table := NewTable(out, "Name", "Price")
	table.AddRow("Teapot", "$12.00")
	table.AddRow("Mantel clock", "$140.00")
	table.Render()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[2], "Teapot        $12.00") {
		t.Errorf("row not padded: %q", lines[2])
	}
}

func TestFormatHelpers(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{TruncateString("Victorian mahogany writing slope", 12), "Victorian..."},
		{TruncateString("Jug", 12), "Jug"},
		{ShortID("3f2a9c1e-0000-4000-8000-000000000000"), "3f2a9c1e"},
		{FormatPercent(0.25), "+25.00%"},
		{FormatRate(0.185), "18.5%"},
		{FormatProfit(-12.5), "-$12.50"},
		{stripANSI("\x1b[32mgreen\x1b[0m"), "green"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}

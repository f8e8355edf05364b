package names

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultRules(t *testing.T) {
	rules := DefaultRules()
	if rules.Version != 1 {
		t.Fatalf("version=%d", rules.Version)
	}
	if rules.DashMatch != MatchContains {
		t.Fatalf("dash_match=%q", rules.DashMatch)
	}
	if len(rules.Aliases) != 4 || rules.Aliases[0].From != "G-SAT" || rules.Aliases[3].From != "HOTBIRD" {
		t.Fatalf("aliases=%+v", rules.Aliases)
	}
	if len(rules.DashInsert) != 28 {
		t.Fatalf("dash_insert len=%d", len(rules.DashInsert))
	}
	if len(rules.DashRemove) != 2 {
		t.Fatalf("dash_remove len=%d", len(rules.DashRemove))
	}
	if rules.HotBird.Owner != "EUTELSAT" {
		t.Fatalf("hot_bird=%+v", rules.HotBird)
	}
}

func TestLoadRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.toml")
	body := `
version = 2
dash_match = "prefix"
series_marker = "SERIES"
dash_insert = ["INTELSAT"]

[[alias]]
from = "IS-"
to = "INTELSAT "
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	rules, err := LoadRules(path)
	if err != nil {
		t.Fatal(err)
	}
	c, err := New(rules)
	if err != nil {
		t.Fatal(err)
	}
	if got := c.Canonicalize("is-903"); got != "INTELSAT-903" {
		t.Fatalf("got %q", got)
	}
}

func TestParseRulesInvalid(t *testing.T) {
	cases := map[string]string{
		"bad version":           "version = 0\nseries_marker = \"SERIES\"\n",
		"bad dash match":        "version = 1\nseries_marker = \"SERIES\"\ndash_match = \"anywhere\"\n",
		"no marker":             "version = 1\n",
		"empty alias":           "version = 1\nseries_marker = \"SERIES\"\n[[alias]]\nfrom = \"\"\nto = \"X\"\n",
		"half hot bird":         "version = 1\nseries_marker = \"SERIES\"\n[hot_bird]\nbrand = \"HOT BIRD\"\n",
		"not toml":              "version = = 1",
		"dash list under table": "version = 1\nseries_marker = \"SERIES\"\n[hot_bird]\nbrand = \"HOT BIRD\"\nowner = \"EUTELSAT\"\ndash_insert = [\"INTELSAT\"]\n",
		"unknown key":           "version = 1\nseries_marker = \"SERIES\"\ndash_inserts = [\"INTELSAT\"]\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseRules([]byte(body)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoad(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if got := c.Canonicalize("hotbird 13c"); got != "EUTELSAT HOT BIRD 13C" {
		t.Fatalf("got %q", got)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("expected error for missing rule file")
	}
}

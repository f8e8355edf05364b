package names

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed rules.toml
var defaultRulesTOML []byte

const (
	MatchContains = "contains"
	MatchPrefix   = "prefix"
)

// Rules is the rule table driving Canonicalize. It is plain data so every
// source shares one reconciled table instead of carrying its own literals.
type Rules struct {
	Version      int           `toml:"version"       json:"version"`
	DashMatch    string        `toml:"dash_match"    json:"dash_match"`
	SeriesMarker string        `toml:"series_marker" json:"series_marker"`
	Spelling     []SpellingFix `toml:"spelling"      json:"spelling"`
	Aliases      []Alias       `toml:"alias"         json:"alias"`
	HotBird      HotBirdRule   `toml:"hot_bird"      json:"hot_bird"`
	DashInsert   []string      `toml:"dash_insert"   json:"dash_insert"`
	DashRemove   []string      `toml:"dash_remove"   json:"dash_remove"`
}

type SpellingFix struct {
	Wrong string `toml:"wrong" json:"wrong"`
	Right string `toml:"right" json:"right"`
}

type Alias struct {
	From string `toml:"from" json:"from"`
	To   string `toml:"to"   json:"to"`
}

// HotBirdRule prefixes Brand with Owner when the owner is missing.
type HotBirdRule struct {
	Brand string `toml:"brand" json:"brand"`
	Owner string `toml:"owner" json:"owner"`
}

// DefaultRules returns the embedded rule table.
func DefaultRules() Rules {
	rules, err := ParseRules(defaultRulesTOML)
	if err != nil {
		panic(fmt.Sprintf("names: embedded rules are invalid: %v", err))
	}
	return rules
}

// LoadRules reads a complete rule table from a TOML file. Unlike the
// service config it is not layered over defaults: a rule file replaces the
// embedded table entirely.
func LoadRules(path string) (Rules, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, err
	}
	rules, err := ParseRules(b)
	if err != nil {
		return Rules{}, fmt.Errorf("%s: %w", path, err)
	}
	return rules, nil
}

func ParseRules(b []byte) (Rules, error) {
	var rules Rules
	dec := toml.NewDecoder(bytes.NewReader(b)).DisallowUnknownFields()
	if err := dec.Decode(&rules); err != nil {
		return Rules{}, err
	}
	if rules.DashMatch == "" {
		rules.DashMatch = MatchContains
	}
	if err := rules.validate(); err != nil {
		return Rules{}, err
	}
	return rules, nil
}

func (r Rules) validate() error {
	if r.Version < 1 {
		return errors.New("version must be >= 1")
	}
	switch r.DashMatch {
	case MatchContains, MatchPrefix:
	default:
		return fmt.Errorf("dash_match must be %q or %q, got %q", MatchContains, MatchPrefix, r.DashMatch)
	}
	if strings.TrimSpace(r.SeriesMarker) == "" {
		return errors.New("series_marker must not be empty")
	}
	for i, fix := range r.Spelling {
		if fix.Wrong == "" || fix.Right == "" {
			return fmt.Errorf("spelling[%d]: wrong and right must not be empty", i)
		}
	}
	for i, a := range r.Aliases {
		if a.From == "" {
			return fmt.Errorf("alias[%d]: from must not be empty", i)
		}
	}
	if (r.HotBird.Brand == "") != (r.HotBird.Owner == "") {
		return errors.New("hot_bird: brand and owner must be set together")
	}
	for i, p := range r.DashInsert {
		if p == "" {
			return fmt.Errorf("dash_insert[%d] must not be empty", i)
		}
	}
	for i, p := range r.DashRemove {
		if p == "" {
			return fmt.Errorf("dash_remove[%d] must not be empty", i)
		}
	}
	return nil
}

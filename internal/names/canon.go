// Package names standardizes satellite names so that records scraped from
// different sites for the same spacecraft share one key.
//
// Every site spells operators differently: hyphenated or not, with a
// parenthetical alternate name, with or without the owning brand. A raw
// name is first split into a primary and secondary part, then each part is
// run through an ordered list of rewrites taken from a Rules table.
package names

import (
	"errors"
	"strings"
)

// ErrEmptyName reports a raw name with nothing left to key on.
var ErrEmptyName = errors.New("empty satellite name")

// Names is the canonical form of a raw name. Secondary is empty when the
// raw name carried no alternate.
type Names struct {
	Primary   string
	Secondary string
}

// Canonicalizer applies a fixed rule table. It holds no mutable state and
// is safe for concurrent use.
type Canonicalizer struct {
	rules Rules
}

// New validates rules and returns a canonicalizer bound to them. Rule
// strings are upper-cased since they are matched against upper-cased names.
func New(rules Rules) (*Canonicalizer, error) {
	if rules.DashMatch == "" {
		rules.DashMatch = MatchContains
	}
	if err := rules.validate(); err != nil {
		return nil, err
	}
	return &Canonicalizer{rules: upperRules(rules)}, nil
}

// Default returns a canonicalizer over the embedded rule table.
func Default() *Canonicalizer {
	c, err := New(DefaultRules())
	if err != nil {
		panic(err)
	}
	return c
}

// Load uses the rule file at path, or the embedded table when path is empty.
func Load(path string) (*Canonicalizer, error) {
	if path == "" {
		return Default(), nil
	}
	rules, err := LoadRules(path)
	if err != nil {
		return nil, err
	}
	return New(rules)
}

// Rules returns the upper-cased table the canonicalizer applies.
func (c *Canonicalizer) Rules() Rules {
	return c.rules
}

// Canonicalize maps one name (a primary or secondary part, or a bare full
// name) to its canonical spelling. Steps run in a fixed order and each one
// sees the output of the previous.
func (c *Canonicalizer) Canonicalize(name string) string {
	s := strings.ReplaceAll(name, ")", "")
	s = strings.TrimSpace(s)
	s = strings.ToUpper(s)

	for _, fix := range c.rules.Spelling {
		if strings.Contains(s, fix.Wrong) && !strings.Contains(s, fix.Right) {
			s = strings.Replace(s, fix.Wrong, fix.Right, 1)
		}
	}

	for _, a := range c.rules.Aliases {
		if strings.Contains(s, a.From) {
			s = strings.ReplaceAll(s, a.From, a.To)
			break
		}
	}

	if hb := c.rules.HotBird; hb.Brand != "" {
		if strings.Contains(s, hb.Brand) && !strings.Contains(s, hb.Owner) {
			s = strings.Replace(s, hb.Brand, hb.Owner+" "+hb.Brand, 1)
		}
	}

	if c.wantsDash(s) && !strings.Contains(s, c.rules.SeriesMarker) {
		s = strings.Replace(s, " ", "-", 1)
	}

	for _, p := range c.rules.DashRemove {
		if strings.Contains(s, p) {
			s = strings.Replace(s, "-", " ", 1)
			break
		}
	}

	return s
}

// CanonicalizeFullName splits raw into its primary and secondary parts and
// canonicalizes each. It is the entry point for every source.
func (c *Canonicalizer) CanonicalizeFullName(raw string) (Names, error) {
	if strings.TrimSpace(raw) == "" {
		return Names{}, ErrEmptyName
	}
	parts := SplitName(raw)
	out := Names{Primary: c.Canonicalize(parts.Primary)}
	if out.Primary == "" {
		return Names{}, ErrEmptyName
	}
	if parts.Secondary != "" {
		out.Secondary = c.Canonicalize(parts.Secondary)
	}
	return out, nil
}

func (c *Canonicalizer) wantsDash(s string) bool {
	for _, p := range c.rules.DashInsert {
		if c.rules.DashMatch == MatchPrefix {
			if strings.HasPrefix(s, p) {
				return true
			}
			continue
		}
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

func upperRules(r Rules) Rules {
	out := r
	out.SeriesMarker = strings.ToUpper(r.SeriesMarker)
	out.Spelling = make([]SpellingFix, len(r.Spelling))
	for i, fix := range r.Spelling {
		out.Spelling[i] = SpellingFix{Wrong: strings.ToUpper(fix.Wrong), Right: strings.ToUpper(fix.Right)}
	}
	out.Aliases = make([]Alias, len(r.Aliases))
	for i, a := range r.Aliases {
		out.Aliases[i] = Alias{From: strings.ToUpper(a.From), To: strings.ToUpper(a.To)}
	}
	out.HotBird = HotBirdRule{Brand: strings.ToUpper(r.HotBird.Brand), Owner: strings.ToUpper(r.HotBird.Owner)}
	out.DashInsert = upperAll(r.DashInsert)
	out.DashRemove = upperAll(r.DashRemove)
	return out
}

func upperAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToUpper(s)
	}
	return out
}

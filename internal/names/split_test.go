package names

import "testing"

func TestSplitName(t *testing.T) {
	cases := []struct {
		name          string
		raw           string
		wantPrimary   string
		wantSecondary string
	}{
		{name: "parenthetical", raw: "ASTRA 2E (EUTELSAT 28E)", wantPrimary: "ASTRA 2E ", wantSecondary: "EUTELSAT 28E"},
		{name: "double dash before slash", raw: "FOO--BAR/BAZ", wantPrimary: "FOO", wantSecondary: "BAR/BAZ"},
		{name: "slash before double dash", raw: "FOO/BAR--BAZ", wantPrimary: "FOO", wantSecondary: "BAR--BAZ"},
		{name: "arrow beats double dash at same index", raw: "YAMAL 402 --> 401", wantPrimary: "YAMAL 402 ", wantSecondary: " 401"},
		{name: "spaced arrow beats double dash at same index", raw: "ASIASAT 7 -- > 5", wantPrimary: "ASIASAT 7 ", wantSecondary: " 5"},
		{name: "no delimiter", raw: "NILESAT 201", wantPrimary: "NILESAT 201", wantSecondary: ""},
		{name: "single hyphen is not a delimiter", raw: "ABS-2", wantPrimary: "ABS-2", wantSecondary: ""},
		{name: "only first paren stripped", raw: "A (B) (C)", wantPrimary: "A ", wantSecondary: "B) (C"},
		{name: "unclosed paren", raw: "BADR 7 (ARABSAT 6B", wantPrimary: "BADR 7 ", wantSecondary: "ARABSAT 6B"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := SplitName(tc.raw)
			if got.Primary != tc.wantPrimary || got.Secondary != tc.wantSecondary {
				t.Fatalf("SplitName(%q) = {%q, %q}, want {%q, %q}", tc.raw, got.Primary, got.Secondary, tc.wantPrimary, tc.wantSecondary)
			}
		})
	}
}

package util

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSafeKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"INTELSAT 903", "INTELSAT 903"},
		{" NSS-12/NSS-703 ", "NSS-12-NSS-703"},
		{`A:B*C?"D"<E>|F\G`, "A_B_C__D__E__F_G"},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			if got := SafeKey(tc.in); got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
		})
	}

	if got := SafeKey(strings.Repeat("X", 250)); len(got) != 200 {
		t.Fatalf("len=%d", len(got))
	}
	got := SafeKey("A" + strings.Repeat("Ü", 150))
	if len(got) != 199 || !utf8.ValidString(got) {
		t.Fatalf("len=%d valid=%v", len(got), utf8.ValidString(got))
	}
}

func TestOptString(t *testing.T) {
	if OptString("  ") != nil {
		t.Fatal("blank should be nil")
	}
	if v := OptString("http://example.test"); v == nil || *v != "http://example.test" {
		t.Fatalf("got %v", v)
	}
}

func TestNormalizeSpaces(t *testing.T) {
	if got := NormalizeSpaces("  HOT \t BIRD\n13C "); got != "HOT BIRD 13C" {
		t.Fatalf("got %q", got)
	}
}

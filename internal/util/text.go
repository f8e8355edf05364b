package util

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	reSpaces  = regexp.MustCompile(`\s+`)
	reKeyJunk = regexp.MustCompile(`[\\:*?"<>|]`)
)

func StringPtr(v string) *string { return &v }

func IntPtr(v int) *int { return &v }

// OptString returns nil for blank values so optional columns stay NULL.
func OptString(v string) *string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return &v
}

func NormalizeSpaces(input string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(input, " "))
}

// SafeKey turns a canonical satellite name into a single object-store or
// directory path segment of at most 200 bytes, cut on a rune boundary.
// "/" would otherwise create a nested prefix.
func SafeKey(name string) string {
	s := strings.ReplaceAll(strings.TrimSpace(name), "/", "-")
	s = reKeyJunk.ReplaceAllString(s, "_")
	if len(s) > 200 {
		cut := 200
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut]
	}
	return s
}

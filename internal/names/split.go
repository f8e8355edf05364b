package names

import "strings"

// Delimiters separate a primary name from its alternates, in tie-break
// order. "-->" is listed before "--" so the longer arrow wins when both
// start at the same index.
var Delimiters = []string{"(", "-->", "-- >", "--", "/"}

// Parts is a raw name split at its first delimiter. Neither part is trimmed.
type Parts struct {
	Primary   string
	Secondary string
}

// SplitName splits raw once, at whichever delimiter occurs earliest. With
// no delimiter the whole string is the primary. When the split happens on
// "(" a single trailing ")" is dropped from the secondary.
func SplitName(raw string) Parts {
	best, at := "", -1
	for _, d := range Delimiters {
		i := strings.Index(raw, d)
		if i < 0 {
			continue
		}
		if at < 0 || i < at {
			best, at = d, i
		}
	}
	if at < 0 {
		return Parts{Primary: raw}
	}

	secondary := raw[at+len(best):]
	if best == "(" {
		secondary = strings.TrimSuffix(secondary, ")")
	}
	return Parts{Primary: raw[:at], Secondary: secondary}
}

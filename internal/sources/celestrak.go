package sources

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/akhenakh/sgp4"

	"satlink/internal"
)

// Celestrak reads a three-line TLE feed: name, line 1, line 2.
type Celestrak struct {
	client *Client
	url    string
}

func NewCelestrak(client *Client, url string) *Celestrak {
	return &Celestrak{client: client, url: url}
}

func (c *Celestrak) ID() internal.SourceID { return internal.SourceCelestrak }

func (c *Celestrak) Fetch(ctx context.Context) ([]internal.RawItem, error) {
	body, err := c.client.Get(ctx, c.url)
	if err != nil {
		return nil, err
	}
	items := ParseTLEFeed(string(body))
	if len(items) == 0 {
		return nil, fmt.Errorf("celestrak: no TLE sets in %d bytes", len(body))
	}
	return items, nil
}

// ParseTLEFeed groups the feed in threes. Sets whose lines are not a TLE
// pair or whose name line is blank are skipped.
func ParseTLEFeed(raw string) []internal.RawItem {
	lines := []string{}
	for _, line := range strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}

	out := []internal.RawItem{}
	for i := 0; i+2 < len(lines); i += 3 {
		name, l1, l2 := lines[i], lines[i+1], lines[i+2]
		if !strings.HasPrefix(l1, "1 ") || !strings.HasPrefix(l2, "2 ") {
			// out of step with the feed; resync on the next name line
			i -= 2
			continue
		}
		norad, ok := noradID(name, l1, l2)
		if !ok || strings.TrimSpace(name) == "" {
			continue
		}
		out = append(out, internal.RawItem{
			Source:  internal.SourceCelestrak,
			Name:    name,
			Payload: internal.Payload{TLE: &internal.TLE{Line1: l1, Line2: l2, NoradID: norad}},
		})
	}
	return out
}

func noradID(name, l1, l2 string) (int, bool) {
	if tle, err := sgp4.ParseTLE(name + "\n" + l1 + "\n" + l2); err == nil {
		return tle.SatelliteNumber, true
	}
	if len(l1) < 7 {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(l1[2:7]))
	if err != nil {
		return 0, false
	}
	return n, true
}

package catalog

import (
	"fmt"
	"sort"
	"time"

	"github.com/agnivade/levenshtein"

	"satlink/internal"
	"satlink/internal/names"
)

// SourceBatch is the completed output of one source for a refresh cycle.
type SourceBatch struct {
	Source internal.SourceID
	Items  []internal.RawItem
}

// Index joins records from every source under their canonical primary
// name. It is never mutated after BuildIndex or NewIndex returns.
type Index struct {
	canon       *names.Canonicalizer
	byPrimary   map[string][]internal.Record
	bySecondary map[string][]string
	keys        []string
	records     []internal.Record
	builtAt     time.Time
}

// BuildIndex canonicalizes every item and files it under its primary name.
// Records that land on the same key are all kept, in input order; that
// collision is the join. A blank name aborts the build.
func BuildIndex(canon *names.Canonicalizer, batches []SourceBatch) (*Index, error) {
	total := 0
	for _, b := range batches {
		total += len(b.Items)
	}

	records := make([]internal.Record, 0, total)
	for _, b := range batches {
		for i, item := range b.Items {
			n, err := canon.CanonicalizeFullName(item.Name)
			if err != nil {
				return nil, fmt.Errorf("source %s item %d: %w", b.Source, i, err)
			}
			source := b.Source
			if source == "" {
				source = item.Source
			}
			records = append(records, internal.Record{
				Primary:   n.Primary,
				Secondary: n.Secondary,
				RawName:   item.Name,
				Source:    source,
				Payload:   item.Payload,
			})
		}
	}

	return NewIndex(canon, records), nil
}

// Recanonicalize re-keys records from their raw names under canon. Records
// without a raw name keep their stored keys. changed reports whether any
// key moved.
func Recanonicalize(canon *names.Canonicalizer, records []internal.Record) (out []internal.Record, changed bool, err error) {
	out = make([]internal.Record, len(records))
	for i, r := range records {
		out[i] = r
		if r.RawName == "" {
			continue
		}
		n, err := canon.CanonicalizeFullName(r.RawName)
		if err != nil {
			return nil, false, fmt.Errorf("record %d (%q): %w", i, r.RawName, err)
		}
		if n.Primary != r.Primary || n.Secondary != r.Secondary {
			out[i].Primary = n.Primary
			out[i].Secondary = n.Secondary
			changed = true
		}
	}
	return out, changed, nil
}

// NewIndex indexes records whose names are already canonical, such as rows
// read back from storage.
func NewIndex(canon *names.Canonicalizer, records []internal.Record) *Index {
	idx := &Index{
		canon:       canon,
		byPrimary:   map[string][]internal.Record{},
		bySecondary: map[string][]string{},
		records:     make([]internal.Record, len(records)),
		builtAt:     time.Now().UTC(),
	}
	copy(idx.records, records)

	for _, r := range records {
		if _, ok := idx.byPrimary[r.Primary]; !ok {
			idx.keys = append(idx.keys, r.Primary)
		}
		idx.byPrimary[r.Primary] = append(idx.byPrimary[r.Primary], r)

		if r.Secondary != "" && !containsString(idx.bySecondary[r.Secondary], r.Primary) {
			idx.bySecondary[r.Secondary] = append(idx.bySecondary[r.Secondary], r.Primary)
		}
	}
	sort.Strings(idx.keys)

	return idx
}

// Lookup runs query through the same canonicalization as the records and
// returns everything filed under the resulting key. A miss is an empty
// slice, not an error.
func (idx *Index) Lookup(query string) []internal.Record {
	key, ok := idx.queryKey(query)
	if !ok {
		return []internal.Record{}
	}
	found := idx.byPrimary[key]
	out := make([]internal.Record, len(found))
	copy(out, found)
	return out
}

// Get returns the records filed under an exact canonical key.
func (idx *Index) Get(primary string) []internal.Record {
	found := idx.byPrimary[primary]
	out := make([]internal.Record, len(found))
	copy(out, found)
	return out
}

// LookupSource is Lookup restricted to one source type.
func (idx *Index) LookupSource(query string, source internal.SourceID) []internal.Record {
	out := []internal.Record{}
	for _, r := range idx.Lookup(query) {
		if r.Source == source {
			out = append(out, r)
		}
	}
	return out
}

// Resolve returns the primary keys query refers to, either directly or as
// a secondary name of some record.
func (idx *Index) Resolve(query string) []string {
	key, ok := idx.queryKey(query)
	if !ok {
		return []string{}
	}
	out := []string{}
	if _, ok := idx.byPrimary[key]; ok {
		out = append(out, key)
	}
	for _, primary := range idx.bySecondary[key] {
		if !containsString(out, primary) {
			out = append(out, primary)
		}
	}
	return out
}

// Suggest returns up to n primary keys closest to query by edit distance.
func (idx *Index) Suggest(query string, n int) []string {
	key, ok := idx.queryKey(query)
	if !ok || n <= 0 {
		return []string{}
	}

	type scored struct {
		key  string
		dist int
	}
	maxDist := len(key)/2 + 1
	candidates := make([]scored, 0, len(idx.keys))
	for _, k := range idx.keys {
		d := levenshtein.ComputeDistance(key, k)
		if d <= maxDist {
			candidates = append(candidates, scored{key: k, dist: d})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].dist < candidates[j].dist
	})
	if len(candidates) > n {
		candidates = candidates[:n]
	}

	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.key)
	}
	return out
}

// Keys returns the distinct primary names, sorted.
func (idx *Index) Keys() []string {
	out := make([]string, len(idx.keys))
	copy(out, idx.keys)
	return out
}

// Len is the number of distinct satellites.
func (idx *Index) Len() int {
	return len(idx.keys)
}

// Records returns every record in insertion order.
func (idx *Index) Records() []internal.Record {
	out := make([]internal.Record, len(idx.records))
	copy(out, idx.records)
	return out
}

func (idx *Index) BuiltAt() time.Time {
	return idx.builtAt
}

func (idx *Index) Canonicalizer() *names.Canonicalizer {
	return idx.canon
}

func (idx *Index) queryKey(query string) (string, bool) {
	n, err := idx.canon.CanonicalizeFullName(query)
	if err != nil {
		return "", false
	}
	return n.Primary, true
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

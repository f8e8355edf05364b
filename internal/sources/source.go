// Package sources holds the scrapers that feed the record linker. Each
// source returns raw items with the name text exactly as published; the
// catalog package does all name handling.
package sources

import (
	"context"
	"sort"

	"satlink/internal"
	"satlink/internal/config"
)

type Source interface {
	ID() internal.SourceID
	Fetch(ctx context.Context) ([]internal.RawItem, error)
}

// FromConfig builds every source the configuration enables, in a fixed
// order: celestrak, altervista, sheets by source id, plan archive.
func FromConfig(cfg config.Config, client *Client) []Source {
	out := []Source{}
	if cfg.CelestrakURL != "" {
		out = append(out, NewCelestrak(client, cfg.CelestrakURL))
	}
	if cfg.AltervistaURL != "" {
		out = append(out, NewAltervista(client, cfg.AltervistaURL))
	}
	for _, id := range sortedSourceIDs(cfg.SheetSources) {
		out = append(out, NewSheet(id, cfg.SheetSources[id]))
	}
	if cfg.PlanArchiveDir != "" {
		out = append(out, NewPlanArchive(cfg.PlanArchiveDir))
	}
	return out
}

// Select keeps the sources whose id is listed; an empty list keeps all.
func Select(all []Source, ids []string) []Source {
	if len(ids) == 0 {
		return all
	}
	want := map[internal.SourceID]bool{}
	for _, id := range ids {
		want[internal.SourceID(id)] = true
	}
	out := []Source{}
	for _, s := range all {
		if want[s.ID()] {
			out = append(out, s)
		}
	}
	return out
}

func sortedSourceIDs(m map[internal.SourceID]string) []internal.SourceID {
	out := make([]internal.SourceID, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

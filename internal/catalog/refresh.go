package catalog

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"satlink/internal"
	"satlink/internal/config"
	"satlink/internal/export"
	"satlink/internal/sources"
	"satlink/internal/storage"
)

const (
	lastRefreshKey  = "refresh.last"
	rulesVersionKey = "rules.version"
)

// Publisher receives the records of every successful refresh.
type Publisher interface {
	PublishRecords(ctx context.Context, records []internal.Record) ([]string, error)
}

type SourceReport struct {
	Source   internal.SourceID
	Items    int
	Duration time.Duration
	Err      error
}

type RefreshResult struct {
	TraceID   string
	Records   int
	Keys      int
	Carried   int
	Sources   []SourceReport
	Exported  []string
	Published []string
}

// Failed lists the sources that did not contribute to this refresh.
func (r RefreshResult) Failed() []SourceReport {
	out := []SourceReport{}
	for _, s := range r.Sources {
		if s.Err != nil {
			out = append(out, s)
		}
	}
	return out
}

type RefreshService struct {
	db        *storage.DB
	store     *Store
	sources   []sources.Source
	cfg       config.Config
	publisher Publisher
	logger    *log.Logger
}

func NewRefreshService(db *storage.DB, store *Store, srcs []sources.Source, cfg config.Config, logger *log.Logger) *RefreshService {
	if logger == nil {
		logger = log.Default()
	}
	return &RefreshService{db: db, store: store, sources: srcs, cfg: cfg, logger: logger}
}

func (s *RefreshService) WithPublisher(p Publisher) *RefreshService {
	s.publisher = p
	return s
}

// Refresh fetches every source, rebuilds the index and swaps it in. A
// source that fails keeps its records from the previous cycle, as do
// stored sources that are not part of this service. A failing source is
// logged and reported but only fails the refresh when no source succeeded.
func (s *RefreshService) Refresh(ctx context.Context) (RefreshResult, error) {
	start := time.Now()
	result := RefreshResult{TraceID: traceID()}
	if len(s.sources) == 0 {
		return result, errors.New("no sources configured")
	}

	reports := make([]SourceReport, len(s.sources))
	batches := make([]SourceBatch, len(s.sources))

	var g errgroup.Group
	g.SetLimit(max(1, s.cfg.FetchWorkers))
	for i, src := range s.sources {
		g.Go(func() error {
			began := time.Now()
			items, err := src.Fetch(ctx)
			reports[i] = SourceReport{Source: src.ID(), Items: len(items), Duration: time.Since(began), Err: err}
			if err == nil {
				batches[i] = SourceBatch{Source: src.ID(), Items: items}
			}
			return nil
		})
	}
	_ = g.Wait()
	result.Sources = reports
	fetchDone := time.Now()

	if err := ctx.Err(); err != nil {
		return result, err
	}

	canon := s.store.Current().Canonicalizer()
	previous, err := s.db.ListRecords()
	if err != nil {
		return result, err
	}
	previous, _, err = Recanonicalize(canon, previous)
	if err != nil {
		return result, fmt.Errorf("carry forward: %w", err)
	}
	bySource := map[internal.SourceID][]internal.Record{}
	for _, r := range previous {
		bySource[r.Source] = append(bySource[r.Source], r)
	}

	completed := []SourceBatch{}
	var errs []error
	for i, rep := range reports {
		if rep.Err != nil {
			s.logger.Printf("refresh %s: source %s failed after %s: %v", result.TraceID, rep.Source, rep.Duration.Round(time.Millisecond), rep.Err)
			errs = append(errs, fmt.Errorf("%s: %w", rep.Source, rep.Err))
			continue
		}
		completed = append(completed, batches[i])
	}
	if len(completed) == 0 {
		return result, fmt.Errorf("every source failed: %w", errors.Join(errs...))
	}

	built, err := BuildIndex(canon, completed)
	if err != nil {
		return result, err
	}
	fresh := map[internal.SourceID][]internal.Record{}
	for _, r := range built.Records() {
		fresh[r.Source] = append(fresh[r.Source], r)
	}

	records := make([]internal.Record, 0, len(built.Records())+len(previous))
	selected := map[internal.SourceID]bool{}
	for _, rep := range reports {
		if selected[rep.Source] {
			continue
		}
		selected[rep.Source] = true
		if rep.Err != nil {
			records = append(records, bySource[rep.Source]...)
			result.Carried += len(bySource[rep.Source])
			continue
		}
		records = append(records, fresh[rep.Source]...)
	}
	for _, r := range previous {
		if !selected[r.Source] {
			records = append(records, r)
			result.Carried++
		}
	}

	idx := NewIndex(canon, records)
	buildDone := time.Now()

	records = idx.Records()
	if err := s.db.ReplaceRecords(records); err != nil {
		return result, err
	}
	if err := s.db.SetMetadata(rulesVersionKey, strconv.Itoa(canon.Rules().Version)); err != nil {
		return result, err
	}
	s.store.Swap(idx)
	result.Records = len(records)
	result.Keys = idx.Len()

	if s.cfg.RefreshAutoExport {
		paths, err := export.WriteSourceCSVs(s.cfg.OutputDir, records)
		if err != nil {
			return result, err
		}
		result.Exported = paths
	}
	if s.publisher != nil {
		uploaded, err := s.publisher.PublishRecords(ctx, records)
		result.Published = uploaded
		if err != nil {
			return result, fmt.Errorf("publish: %w", err)
		}
	}

	counts := map[string]int{
		"records":       result.Records,
		"keys":          result.Keys,
		"carried":       result.Carried,
		"failedSources": len(errs),
	}
	for _, rep := range reports {
		if rep.Err == nil {
			counts["source."+string(rep.Source)] = rep.Items
		}
	}
	timings := map[string]float64{
		"fetchMs": float64(fetchDone.Sub(start).Milliseconds()),
		"buildMs": float64(buildDone.Sub(fetchDone).Milliseconds()),
		"totalMs": float64(time.Since(start).Milliseconds()),
	}
	if err := s.db.InsertRefresh(result.TraceID, timings, counts); err != nil {
		return result, err
	}
	if err := s.db.SetMetadata(lastRefreshKey, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return result, err
	}

	s.logger.Printf("refresh %s: %d records under %d names from %d/%d sources (%d carried) in %s",
		result.TraceID, result.Records, result.Keys, len(completed), len(s.sources), result.Carried, time.Since(start).Round(time.Millisecond))
	return result, nil
}

// Restore loads the last persisted records into store, so lookups work
// before the first refresh of a new process. Records are re-keyed from
// their raw names under the store's rule table; when that moves any key
// the rewritten rows are saved back.
func Restore(db *storage.DB, store *Store) (*Index, error) {
	records, err := db.ListRecords()
	if err != nil {
		return nil, err
	}
	canon := store.Current().Canonicalizer()
	records, changed, err := Recanonicalize(canon, records)
	if err != nil {
		return nil, fmt.Errorf("restore: %w", err)
	}
	if changed {
		if err := db.ReplaceRecords(records); err != nil {
			return nil, err
		}
	}
	version := strconv.Itoa(canon.Rules().Version)
	stored, err := db.GetMetadata(rulesVersionKey)
	if err != nil {
		return nil, err
	}
	if stored == nil || *stored != version {
		if err := db.SetMetadata(rulesVersionKey, version); err != nil {
			return nil, err
		}
	}
	idx := NewIndex(canon, records)
	store.Swap(idx)
	return idx, nil
}

// LastRefresh reports when the last successful refresh finished.
func LastRefresh(db *storage.DB) (time.Time, bool) {
	v, err := db.GetMetadata(lastRefreshKey)
	if err != nil || v == nil {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, *v)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func traceID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("refresh-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}

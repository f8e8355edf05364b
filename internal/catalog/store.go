package catalog

import (
	"sync/atomic"

	"satlink/internal"
	"satlink/internal/names"
)

// Store publishes the current Index to readers. A refresh builds a new
// Index off to the side and swaps it in with a single pointer write, so
// readers never see a partial index and never take a lock.
type Store struct {
	current atomic.Pointer[Index]
}

// NewStore starts with an empty index so Current never returns nil.
func NewStore(canon *names.Canonicalizer) *Store {
	s := &Store{}
	s.current.Store(NewIndex(canon, nil))
	return s
}

func (s *Store) Current() *Index {
	return s.current.Load()
}

// Swap installs idx and returns the index it replaced.
func (s *Store) Swap(idx *Index) *Index {
	return s.current.Swap(idx)
}

func (s *Store) Lookup(query string) []internal.Record {
	return s.Current().Lookup(query)
}

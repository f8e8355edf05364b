package catalog

import (
	"sync"
	"testing"

	"satlink/internal"
	"satlink/internal/names"
)

func TestStoreSwap(t *testing.T) {
	store := NewStore(names.Default())
	if got := store.Lookup("INTELSAT 903"); got == nil || len(got) != 0 {
		t.Fatalf("empty store lookup=%#v", got)
	}

	first := store.Current()
	next := NewIndex(names.Default(), []internal.Record{{Primary: "INTELSAT 903", Source: internal.SourceCelestrak}})
	if old := store.Swap(next); old != first {
		t.Fatal("swap should return the replaced index")
	}
	if got := store.Lookup("intelsat 903"); len(got) != 1 {
		t.Fatalf("got=%+v", got)
	}
}

func TestStoreConcurrentReaders(t *testing.T) {
	canon := names.Default()
	store := NewStore(canon)
	a := NewIndex(canon, []internal.Record{{Primary: "THURAYA 3", Source: internal.SourceLyngsat}})
	b := NewIndex(canon, []internal.Record{
		{Primary: "THURAYA 3", Source: internal.SourceLyngsat},
		{Primary: "THURAYA 3", Source: internal.SourceAltervista},
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				n := len(store.Lookup("Thuraya-3"))
				if n != 0 && n != 1 && n != 2 {
					t.Errorf("torn read: %d records", n)
					return
				}
			}
		}()
	}
	for j := 0; j < 200; j++ {
		if j%2 == 0 {
			store.Swap(a)
		} else {
			store.Swap(b)
		}
	}
	wg.Wait()
}

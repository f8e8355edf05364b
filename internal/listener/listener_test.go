package listener

import (
	"context"
	"errors"
	"io"
	"log"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"satlink/internal/catalog"
	"satlink/internal/storage"
)

type countingRefresher struct {
	calls  atomic.Int32
	fail   bool
	cancel context.CancelFunc
	stopAt int32
}

func (r *countingRefresher) Refresh(ctx context.Context) (catalog.RefreshResult, error) {
	n := r.calls.Add(1)
	if n >= r.stopAt && r.cancel != nil {
		r.cancel()
	}
	if r.fail {
		return catalog.RefreshResult{}, errors.New("all sources down")
	}
	return catalog.RefreshResult{TraceID: "t"}, nil
}

func TestRunRefreshesOnInterval(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	r := &countingRefresher{cancel: cancel, stopAt: 3, fail: true}

	svc := NewService(nil, r, 5*time.Millisecond, log.New(io.Discard, "", 0))
	if err := svc.Run(ctx); err != nil {
		t.Fatal(err)
	}
	if got := r.calls.Load(); got != 3 {
		t.Fatalf("calls=%d", got)
	}
}

func TestRunWaitsForStaleRefresh(t *testing.T) {
	db, err := storage.Open(filepath.Join(t.TempDir(), "satlink.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	if err := db.SetMetadata("refresh.last", time.Now().UTC().Format(time.RFC3339)); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	r := &countingRefresher{stopAt: 1}

	svc := NewService(db, r, time.Hour, log.New(io.Discard, "", 0))
	if err := svc.Run(ctx); err != nil {
		t.Fatal(err)
	}
	if got := r.calls.Load(); got != 0 {
		t.Fatalf("calls=%d", got)
	}
}

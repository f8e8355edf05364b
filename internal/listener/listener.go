package listener

import (
	"context"
	"log"
	"time"

	"satlink/internal/catalog"
	"satlink/internal/storage"
)

type Refresher interface {
	Refresh(ctx context.Context) (catalog.RefreshResult, error)
}

// Service refreshes the catalog on a fixed interval. A cycle that fails
// is logged and the loop waits for the next tick; the last good index
// stays in place.
type Service struct {
	db        *storage.DB
	refresher Refresher
	interval  time.Duration
	logger    *log.Logger
}

func NewService(db *storage.DB, refresher Refresher, interval time.Duration, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{db: db, refresher: refresher, interval: interval, logger: logger}
}

func (s *Service) Run(ctx context.Context) error {
	wait := s.untilDue()
	for {
		if wait > 0 {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(wait):
			}
		}
		if ctx.Err() != nil {
			return nil
		}
		s.runCycle(ctx)
		wait = s.interval
	}
}

func (s *Service) runCycle(ctx context.Context) {
	res, err := s.refresher.Refresh(ctx)
	if err != nil {
		s.logger.Printf("listener cycle error: %v", err)
		return
	}
	s.logger.Printf("listener cycle done trace=%s records=%d names=%d failed=%d", res.TraceID, res.Records, res.Keys, len(res.Failed()))
}

// untilDue is the time left before the persisted last refresh goes stale,
// so a restarted daemon does not refresh again straight away.
func (s *Service) untilDue() time.Duration {
	if s.db == nil {
		return 0
	}
	last, ok := catalog.LastRefresh(s.db)
	if !ok {
		return 0
	}
	return time.Until(last.Add(s.interval))
}

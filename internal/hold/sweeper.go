package hold

import (
	"context"
	"log"
	"time"

	"github.com/iliyamo/movie-seat-booking/internal/ledger"
)

// DefaultSweepInterval is how often the background sweep runs when no
// interval is configured.  Expired holds are also reclaimed lazily on
// access, so the timer only bounds how long a dead hold can linger.
const DefaultSweepInterval = 30 * time.Second

// Sweeper periodically runs the ledger's expiry sweep.  The sweep is
// idempotent, so the timer may overlap with lazy expiry and with
// sweeps triggered elsewhere without harm.
type Sweeper struct {
	ledger   *ledger.Ledger
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewSweeper constructs a sweeper over the given ledger.  A
// non-positive interval falls back to DefaultSweepInterval.
func NewSweeper(l *ledger.Ledger, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{
		ledger:   l,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start runs the sweep loop until the context is cancelled or Stop is
// called.  It is intended to run in its own goroutine.
func (s *Sweeper) Start(ctx context.Context) {
	log.Printf("hold-sweeper: started (interval=%s)", s.interval)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	defer close(s.doneCh)
	for {
		select {
		case <-ctx.Done():
			log.Printf("hold-sweeper: stopped (context cancelled)")
			return
		case <-s.stopCh:
			log.Printf("hold-sweeper: stopped")
			return
		case <-ticker.C:
			if n := s.ledger.SweepExpired(time.Now()); n > 0 {
				log.Printf("hold-sweeper: expired %d hold(s)", n)
			}
		}
	}
}

// Stop signals the loop to exit and waits for it to finish.
func (s *Sweeper) Stop() {
	close(s.stopCh)
	<-s.doneCh
}

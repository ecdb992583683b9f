package scheduler

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// TickHandler receives the 1 Hz countdown ticks for the active round. The
// session implements it; the handler owns the countdown value and decides
// when the round ends.
type TickHandler interface {
	HandleRoundTick(roundNumber int)
}

// Scheduler drives the countdown for at most one round at a time as an
// explicit cancellable task. In production it runs on the real clock; tests
// inject a clockwork.FakeClock.
type Scheduler struct {
	clock   clockwork.Clock
	handler TickHandler

	mu   sync.Mutex
	stop chan struct{}
}

// New returns an idle scheduler.
func New(clock clockwork.Clock, handler TickHandler) *Scheduler {
	return &Scheduler{
		clock:   clock,
		handler: handler,
	}
}

// Start begins a fresh countdown task for a round, cancelling any previous
// one. Ticks fire once per second until the duration is exhausted or Cancel
// is called.
func (s *Scheduler) Start(roundNumber, durationSec int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stop != nil {
		close(s.stop)
	}
	stop := make(chan struct{})
	s.stop = stop

	log.Debug().Int("round", roundNumber).Int("duration_sec", durationSec).Msg("round countdown started")
	go s.run(roundNumber, durationSec, stop)
}

// Cancel synchronously stops the active countdown task. No tick for the
// cancelled round is produced after Cancel returns to a caller that holds the
// session lock, because in-flight ticks serialize behind that same lock and
// are discarded by the handler once the round is sealed.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
}

func (s *Scheduler) run(roundNumber, durationSec int, stop chan struct{}) {
	ticker := s.clock.NewTicker(time.Second)
	defer ticker.Stop()

	remaining := durationSec
	for {
		select {
		case <-stop:
			log.Debug().Int("round", roundNumber).Msg("round countdown cancelled")
			return
		case <-ticker.Chan():
			s.handler.HandleRoundTick(roundNumber)
			remaining--
			if remaining <= 0 {
				return
			}
		}
	}
}

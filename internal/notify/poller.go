package notify

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bugtrackhq/bugtrack/internal/logging"
)

// DefaultInterval is how often the poller refreshes notifications.
const DefaultInterval = 30 * time.Second

// Poller periodically refreshes a Center on a fixed interval. A tick
// that arrives while the previous fetch is still in flight is skipped
// rather than queued, so fetches never overlap.
type Poller struct {
	center   *Center
	interval time.Duration

	inFlight atomic.Bool
	cancel   context.CancelFunc
	done     chan struct{}
	once     sync.Once
}

// NewPoller creates a poller over the center. A non-positive interval
// falls back to DefaultInterval.
func NewPoller(center *Center, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{center: center, interval: interval}
}

// Start fetches once immediately, then refreshes every interval until
// Stop is called or ctx is cancelled. Start returns after spawning the
// polling goroutine.
func (p *Poller) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	p.done = make(chan struct{})

	go func() {
		defer close(p.done)

		p.poll(ctx)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.poll(ctx)
			}
		}
	}()
}

// Stop cancels the polling context and waits for the goroutine to
// exit. Cancelling aborts any in-flight request, so a fetch racing
// with Stop cannot land its result in the center afterwards.
func (p *Poller) Stop() {
	p.once.Do(func() {
		if p.cancel != nil {
			p.cancel()
			<-p.done
		}
	})
}

func (p *Poller) poll(ctx context.Context) {
	if !p.inFlight.CompareAndSwap(false, true) {
		logging.Debug("skipping notification poll, previous fetch still in flight")
		return
	}
	defer p.inFlight.Store(false)

	if err := p.center.Fetch(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		logging.Warn("notification poll failed", "error", err)
	}
}

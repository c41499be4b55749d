package viewport

import (
	"context"
	"slices"
	"time"
)

// DefaultPollInterval is how often the surface geometry is re-read.
const DefaultPollInterval = 100 * time.Millisecond

// Poller recomputes overlays on a fixed timer and on explicit notifications
// such as window resize or scroll. It only reads the field snapshot handed to
// it by compute and shares no state with baking.
type Poller struct {
	interval time.Duration
	compute  func() []Overlay
	sink     func([]Overlay)
	notify   chan struct{}
}

// NewPoller creates a poller. compute builds the current overlays and sink
// receives them whenever they differ from the last delivered frame.
func NewPoller(interval time.Duration, compute func() []Overlay, sink func([]Overlay)) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		interval: interval,
		compute:  compute,
		sink:     sink,
		notify:   make(chan struct{}, 1),
	}
}

// Notify requests an immediate recompute. It never blocks; notifications that
// arrive while one is already queued are merged.
func (p *Poller) Notify() {
	select {
	case p.notify <- struct{}{}:
	default:
	}
}

// Run polls until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	var last []Overlay
	delivered := false
	refresh := func() {
		frame := p.compute()
		if delivered && slices.Equal(last, frame) {
			return
		}
		last = frame
		delivered = true
		p.sink(frame)
	}

	refresh()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			refresh()
		case <-p.notify:
			refresh()
		}
	}
}

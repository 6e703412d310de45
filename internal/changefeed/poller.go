package changefeed

import (
	"context"
	"time"

	"github.com/tobro-digital/agency-platform/pkg/logging"
)

// Poller re-invokes a refresh function on a fixed interval. It is the
// degraded-mode synchronizer for deployments where the store offers no live
// change feed: state converges within one interval instead of on push.
type Poller struct {
	interval time.Duration
	refresh  func(ctx context.Context)
	logger   *logging.Logger
}

// NewPoller creates a poller. The default interval matches the legacy
// banner check cadence.
func NewPoller(refresh func(ctx context.Context), logger *logging.Logger) *Poller {
	if logger == nil {
		logger = logging.Default()
	}
	return &Poller{
		interval: 2 * time.Second,
		refresh:  refresh,
		logger:   logger,
	}
}

// WithInterval overrides the polling interval.
func (p *Poller) WithInterval(interval time.Duration) *Poller {
	if interval > 0 {
		p.interval = interval
	}
	return p
}

// Start blocks, invoking refresh every interval until ctx is cancelled.
func (p *Poller) Start(ctx context.Context) {
	if p.refresh == nil {
		return
	}
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Debug("poller started", "interval", p.interval)
	for {
		select {
		case <-ctx.Done():
			p.logger.Debug("poller stopped")
			return
		case <-ticker.C:
			p.refresh(ctx)
		}
	}
}
